package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/loopsim/internal/dynamo"
	"github.com/san-kum/loopsim/internal/export"
	"github.com/san-kum/loopsim/internal/storage"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			runs, err := st.List()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no runs found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTIME\tMODEL\tV0\tDT\tSAMPLES\tREASON")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%.3f\t%.4fs\t%d\t%s\n",
					run.ID,
					run.Timestamp.Format("2006-01-02 15:04:05"),
					run.Params.Model,
					run.Params.V0,
					run.Params.Dt,
					run.Samples,
					run.Reason,
				)
			}
			return w.Flush()
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [run_id]",
		Short: "print the summary of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := loadResult(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("run: %s\n", args[0])
			return printSummary(res)
		},
	}
}

func newPlotCmd() *cobra.Command {
	var width, height int
	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot speed, normal force and height against time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			samples, err := st.LoadSamples(args[0])
			if err != nil {
				return err
			}
			if len(samples) < 2 {
				return fmt.Errorf("run %s has too few samples to plot", args[0])
			}

			fmt.Printf("run: %s\n", meta.ID)
			fmt.Printf("samples: %d  t: 0 .. %.3f s\n\n", len(samples), samples[len(samples)-1].T)

			series := []struct {
				caption string
				value   func(dynamo.Sample) float64
			}{
				{"speed |v| (m/s)", func(s dynamo.Sample) float64 { return s.Speed }},
				{"normal force F (m/s², 0 off the track)", func(s dynamo.Sample) float64 { return s.NormalForce }},
				{"height y (m)", func(s dynamo.Sample) float64 { return s.Y }},
			}
			for _, sr := range series {
				data := make([]float64, len(samples))
				for i, s := range samples {
					data[i] = sr.value(s)
				}
				fmt.Println(asciigraph.Plot(data,
					asciigraph.Height(height),
					asciigraph.Width(width),
					asciigraph.Caption(sr.caption),
				))
				fmt.Println()
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 80, "plot width in columns")
	cmd.Flags().IntVar(&height, "height", 10, "plot height in rows")
	return cmd
}

func newExportCSVCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the samples of a run as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			samples, err := st.LoadSamples(args[0])
			if err != nil {
				return err
			}
			return writeOutput(out, func(w io.Writer) error {
				return storage.WriteSamplesCSV(w, samples)
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newExportJSONCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run with its parameters and metrics as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := loadResult(args[0])
			if err != nil {
				return err
			}
			return writeOutput(out, func(w io.Writer) error {
				return export.WriteJSON(w, res)
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newSVGCmd() *cobra.Command {
	var (
		out           string
		width, height int
	)
	cmd := &cobra.Command{
		Use:   "svg [run_id]",
		Short: "draw the trajectory of a run as SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := loadResult(args[0])
			if err != nil {
				return err
			}
			if out == "" {
				out = args[0] + ".svg"
			}
			return writeOutput(out, func(w io.Writer) error {
				_, err := io.WriteString(w, export.TrajectoryToSVG(res, width, height))
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default <run_id>.svg)")
	cmd.Flags().IntVar(&width, "width", 800, "image width")
	cmd.Flags().IntVar(&height, "height", 800, "image height")
	return cmd
}

func newGIFCmd() *cobra.Command {
	var (
		out   string
		every int
	)
	cmd := &cobra.Command{
		Use:   "gif [run_id]",
		Short: "render a run as an animated GIF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := loadResult(args[0])
			if err != nil {
				return err
			}
			if out == "" {
				out = args[0] + ".gif"
			}
			return writeOutput(out, func(w io.Writer) error {
				return export.AnimationGIF(w, res, every)
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default <run_id>.gif)")
	cmd.Flags().IntVar(&every, "every", 5, "render one frame every N samples")
	return cmd
}

func loadResult(runID string) (*dynamo.Result, error) {
	st, err := openStore()
	if err != nil {
		return nil, err
	}
	return st.LoadResult(runID)
}

// writeOutput runs fn against stdout, or against path when one is given.
func writeOutput(path string, fn func(io.Writer) error) error {
	if path == "" {
		return fn(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger().Info("wrote file", zap.String("path", path))
	return nil
}
