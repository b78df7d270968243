package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sweeney/watchface/internal/assets"
	"github.com/sweeney/watchface/internal/face"
	"github.com/sweeney/watchface/internal/render"
	"github.com/sweeney/watchface/internal/sim"
	"github.com/sweeney/watchface/internal/timer"
	"github.com/sweeney/watchface/internal/xslog"
)

func simCmd(flags *flagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "sim",
		Short: "Run the face in the terminal",
		Long:  "Runs the face in the terminal with keys for tap, battery, plug, charge and bluetooth.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			set, err := assets.Load(cfg.AssetDir)
			if err != nil {
				return fmt.Errorf("load assets: %w", err)
			}
			defer set.Close()
			frame, err := render.NewFrame(set)
			if err != nil {
				return fmt.Errorf("init frame: %w", err)
			}

			loop := timer.NewLoop(firingBuffer)
			model := sim.New(sim.Options{
				Face:      cfg.Face,
				Frame:     frame,
				Scheduler: loop,
				Firings:   loop.C(),
				Ticks:     face.MinuteTicks(ctx, time.Now),
				Battery:   fixedBattery(cfg.Fixed),
				Connected: cfg.Fixed.Connected,
				// The program owns the terminal.
				Logger: xslog.Discard(),
			})

			p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil && ctx.Err() == nil {
				return fmt.Errorf("run simulator: %w", err)
			}
			model.Controller().Close()
			return nil
		},
	}
}
