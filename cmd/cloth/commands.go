package main

import (
	"context"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"diesel.com/cloth/app"
	C "diesel.com/cloth/cloth"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

//newScene builds the cloth and its scene from the loaded config
func (c *cli) newScene() (*app.Scene, C.Colliders, error) {
	physics, err := c.cfg.Physics()
	if err != nil {
		return nil, C.Colliders{}, err
	}
	colliders, err := c.cfg.Colliders()
	if err != nil {
		return nil, C.Colliders{}, err
	}

	seed := c.cfg.Run.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	cloth, err := C.New(physics, colliders, rand.New(rand.NewSource(seed)), c.log)
	if err != nil {
		return nil, C.Colliders{}, err
	}
	c.log.WithFields(logrus.Fields{
		"width":   physics.Width,
		"height":  physics.Height,
		"springs": len(cloth.Springs()),
		"pin":     physics.Pin.String(),
		"seed":    seed,
	}).Info("cloth ready")
	return app.NewScene(cloth, c.cfg.TickInterval(), c.log), colliders, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func (c *cli) viewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Render the cloth in an OpenGL window",
		RunE: func(cmd *cobra.Command, args []string) error {
			scene, colliders, err := c.newScene()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			return app.RunViewer(ctx, scene, colliders, c.cfg.View, c.log)
		},
	}
}

func (c *cli) termCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "term",
		Short: "Render the cloth in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			//the screen owns stderr while the viewer runs
			if c.opts.logFile == "" {
				c.log.SetOutput(io.Discard)
			}
			scene, colliders, err := c.newScene()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			return app.RunTerminal(ctx, scene, colliders, c.cfg.View, c.log)
		},
	}
}

func (c *cli) simCmd() *cobra.Command {
	var ticks int
	var failOnDiverge bool
	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Run headless for a number of ticks and print a report",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("ticks") {
				c.cfg.Run.Ticks = ticks
			}
			if c.cfg.Run.Ticks < 1 {
				return errors.Errorf("ticks %d must be positive", c.cfg.Run.Ticks)
			}
			scene, _, err := c.newScene()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			var summary app.Summary
			prev := scene.Latest()
			dt := float64(scene.Config().TimeStep)
			start := time.Now()
			err = scene.RunTicks(ctx, c.cfg.Run.Ticks, func(f *app.Frame) {
				summary.Add(f, app.Measure(f, prev, dt))
				prev = f
			})
			summary.Wall = time.Since(start)
			if err != nil && err != context.Canceled {
				return err
			}

			if err := app.WriteReport(cmd.OutOrStdout(), &summary); err != nil {
				return errors.Wrap(err, "writing report")
			}
			if failOnDiverge && summary.DivergedTicks > 0 {
				return errors.Errorf("simulation diverged at tick %d", summary.FirstDiverged)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&ticks, "ticks", "n", 0, "ticks to run (default run.ticks)")
	cmd.Flags().BoolVar(&failOnDiverge, "fail-on-diverge", false, "exit non-zero when any tick diverged")
	return cmd
}

func (c *cli) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.cfg.Physics(); err != nil {
				c.log.WithError(err).Warn("configuration does not validate")
			}
			return app.WriteConfig(cmd.OutOrStdout(), c.cfg)
		},
	}
}
