package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	json "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/san-kum/loopsim/internal/automation"
	"github.com/san-kum/loopsim/internal/config"
	"github.com/san-kum/loopsim/internal/dynamo"
	"github.com/san-kum/loopsim/internal/storage"
)

func newSweepCmd() *cobra.Command {
	var (
		pf           paramFlags
		minV0, maxV0 float64
		steps        int
		concurrency  int
		asJSON       bool
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "run a range of initial speeds in parallel",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, p, err := pf.resolve(cmd, cfg)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			report, err := automation.RunSweep(ctx, automation.Sweep{
				Base: p, Min: minV0, Max: maxV0, Steps: steps, Concurrency: concurrency,
			}, logger())
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.ConfigCompatibleWithStandardLibrary.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			fmt.Printf("model %s, critical v0 %.3f m/s, %d runs in %v\n\n",
				report.Model, report.CriticalSpeed, len(report.Results), report.Elapsed)
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "V0\tLOOP\tLAUNCH θ\tAIRTIME\tLANDING X\tREASON")
			for _, r := range report.Results {
				launch, air, landing := "-", "-", "-"
				if r.Launched {
					launch = fmt.Sprintf("%.4f", r.LaunchAngle)
					air = fmt.Sprintf("%.3f", r.Airtime)
				}
				if r.Reason == dynamo.GroundContact {
					landing = fmt.Sprintf("%.3f", r.LandingX)
				}
				fmt.Fprintf(w, "%.3f\t%s\t%s\t%s\t%s\t%s\n",
					r.V0, yesNo(r.Completed), launch, air, landing, r.Reason)
			}
			return w.Flush()
		},
	}
	pf.register(cmd)
	cmd.Flags().Float64Var(&minV0, "min", 5, "smallest v0")
	cmd.Flags().Float64Var(&maxV0, "max", 20, "largest v0")
	cmd.Flags().IntVar(&steps, "steps", 16, "number of runs")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "runs in flight")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func newScenarioCmd() *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "execute the runs listed in a YAML scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}

			var st *storage.Store
			if save {
				if st, err = openStore(); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			outcomes, runErr := automation.RunScenario(ctx, sc, cfg, st, logger())

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RUN\tV0\tLOOP\tLAUNCHED\tREASON\tID")
			for _, o := range outcomes {
				id := o.RunID
				if id == "" {
					id = "-"
				}
				fmt.Fprintf(w, "%s\t%.3f\t%s\t%s\t%s\t%s\n",
					o.Name, o.Summary.V0, yesNo(o.Summary.Completed), yesNo(o.Summary.Launched), o.Summary.Reason, id)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			return runErr
		},
	}
	cmd.Flags().BoolVar(&save, "save", true, "store every run under the data directory")
	return cmd
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list the built-in presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tMODEL\tV0\tDT\tTERMINATION\tDESCRIPTION")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%s\t%.2f\t%g\t%s\t%s\n",
					name, p.ForceModel, p.V0, p.Dt, p.Termination, p.Description)
			}
			return w.Flush()
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
