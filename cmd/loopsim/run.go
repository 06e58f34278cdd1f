package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/loopsim/internal/dynamo"
	"github.com/san-kum/loopsim/internal/metrics"
)

func newRunCmd() *cobra.Command {
	var (
		pf    paramFlags
		save  bool
		label string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "run one simulation and print a summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, p, err := pf.resolve(cmd, cfg)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			return runSimulation(ctx, p, save, label)
		},
	}
	pf.register(cmd)
	cmd.Flags().BoolVar(&save, "save", false, "store the run under the data directory")
	cmd.Flags().StringVar(&label, "label", "loop", "label prefix for the saved run id")
	return cmd
}

func runSimulation(ctx context.Context, p dynamo.Params, save bool, label string) error {
	sim, err := dynamo.New(p)
	if err != nil {
		return err
	}
	metrics.Attach(sim, metrics.Standard(p))

	logger().Info("running simulation",
		zap.Float64("v0", p.V0),
		zap.Float64("radius", p.Radius),
		zap.Stringer("model", p.Model),
		zap.Stringer("termination", p.Termination))

	start := time.Now()
	result, err := sim.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	if save {
		st, err := openStore()
		if err != nil {
			return err
		}
		runID, err := st.Save(label, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	return printSummary(result)
}

func printSummary(res *dynamo.Result) error {
	p := res.Params
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "model\t%s (critical v0 %.3f m/s)\n", p.Model, p.CriticalSpeed())
	fmt.Fprintf(w, "v0\t%.3f m/s\n", p.V0)
	fmt.Fprintf(w, "samples\t%d\n", len(res.Samples))
	fmt.Fprintf(w, "stop reason\t%s\n", res.Reason)
	if last, ok := res.Last(); ok {
		fmt.Fprintf(w, "final sample\tt=%.3f x=%.3f y=%.3f |v|=%.3f %s\n", last.T, last.X, last.Y, last.Speed, last.Phase)
	}
	if res.Launch != nil {
		l := res.Launch
		fmt.Fprintf(w, "launch\tt=%.3f θ=%.4f at (%.3f, %.3f) v=(%.3f, %.3f)\n", l.T, l.Theta, l.X, l.Y, l.VX, l.VY)
	} else {
		fmt.Fprintln(w, "launch\tnone")
	}
	if res.Clamped > 0 {
		fmt.Fprintf(w, "clamped\t%d samples\n", res.Clamped)
	}

	if len(res.Metrics) > 0 {
		fmt.Fprintln(w, "\nmetrics:")
		names := make([]string, 0, len(res.Metrics))
		for name := range res.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "  %s\t%.6f\n", name, res.Metrics[name])
		}
	}
	return w.Flush()
}
