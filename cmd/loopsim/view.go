package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/loopsim/internal/config"
	"github.com/san-kum/loopsim/internal/dynamo"
	"github.com/san-kum/loopsim/internal/gui"
	"github.com/san-kum/loopsim/internal/metrics"
	"github.com/san-kum/loopsim/internal/viz"
)

type viewFlags struct {
	fps           int
	stepsPerFrame int
}

func (f *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.fps, "fps", 0, "frame rate (default from config)")
	cmd.Flags().IntVar(&f.stepsPerFrame, "steps-per-frame", 0, "simulation steps per frame (default from config)")
}

func (f *viewFlags) pace(c *config.Config) (int, int) {
	return c.Pace(f.fps, f.stepsPerFrame)
}

func newLiveCmd() *cobra.Command {
	var (
		pf      paramFlags
		vf      viewFlags
		gifPath string
	)
	cmd := &cobra.Command{
		Use:   "live",
		Short: "animate a run in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, p, err := pf.resolve(cmd, cfg)
			if err != nil {
				return err
			}
			sim, err := newViewSimulator(p)
			if err != nil {
				return err
			}
			fps, steps := vf.pace(c)
			return viz.Run(sim, viz.Options{
				Title:         "looping roller coaster",
				FPS:           fps,
				StepsPerFrame: steps,
				GIFPath:       gifPath,
				// Info lines would tear the alternate screen.
				Logger: logger().WithOptions(zap.IncreaseLevel(zap.WarnLevel)),
			})
		},
	}
	pf.register(cmd)
	vf.register(cmd)
	cmd.Flags().StringVar(&gifPath, "gif", "loopsim.gif", "where G writes the recording")
	return cmd
}

func newGUICmd() *cobra.Command {
	var (
		pf paramFlags
		vf viewFlags
	)
	cmd := &cobra.Command{
		Use:   "gui",
		Short: "animate a run in a 3D window",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, p, err := pf.resolve(cmd, cfg)
			if err != nil {
				return err
			}
			sim, err := newViewSimulator(p)
			if err != nil {
				return err
			}
			fps, steps := vf.pace(c)
			gui.Run(sim, gui.Options{
				Title:         "Looping Roller Coaster",
				FPS:           fps,
				StepsPerFrame: steps,
				Logger:        logger(),
			})
			return nil
		},
	}
	pf.register(cmd)
	vf.register(cmd)
	return cmd
}

func runMenu(cmd *cobra.Command, args []string) error {
	names := config.ListPresets()
	items := make([]viz.MenuItem, len(names))
	for i, name := range names {
		items[i] = viz.MenuItem{Name: name, Description: config.GetPreset(name).Description}
	}
	name, err := viz.Pick(items)
	if err != nil || name == "" {
		return err
	}

	c := *cfg
	if err := c.ApplyPreset(name); err != nil {
		return err
	}
	p, err := c.Params()
	if err != nil {
		return err
	}
	sim, err := newViewSimulator(p)
	if err != nil {
		return err
	}
	fps, steps := c.Pace(0, 0)
	return viz.Run(sim, viz.Options{
		Title:         name,
		FPS:           fps,
		StepsPerFrame: steps,
		Logger:        logger().WithOptions(zap.IncreaseLevel(zap.WarnLevel)),
	})
}

func newViewSimulator(p dynamo.Params) (*dynamo.Simulator, error) {
	sim, err := dynamo.New(p)
	if err != nil {
		return nil, err
	}
	metrics.Attach(sim, metrics.Standard(p))
	return sim, nil
}
