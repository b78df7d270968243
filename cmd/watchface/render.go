package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sweeney/watchface/internal/assets"
	"github.com/sweeney/watchface/internal/config"
	"github.com/sweeney/watchface/internal/face"
	"github.com/sweeney/watchface/internal/render"
	"github.com/sweeney/watchface/internal/timer"
	"github.com/sweeney/watchface/internal/xslog"
)

type renderOptions struct {
	out     string
	at      string
	overlay bool
	braille bool
}

func renderCmd(flags *flagValues) *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one frame to PNG",
		Long: "Renders the face at a given time with the configured battery and " +
			"bluetooth state. Writes PNG to --out, or braille text with --braille.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			at := time.Now()
			if opts.at != "" {
				at, err = time.Parse(time.RFC3339, opts.at)
				if err != nil {
					return fmt.Errorf("parse --at: %w", err)
				}
			}
			return renderFrame(cmd.OutOrStdout(), cfg, at, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.out, "out", "o", "face.png", `Output file ("-" for stdout)`)
	cmd.Flags().StringVar(&opts.at, "at", "", "Time to render, RFC 3339 (default now)")
	cmd.Flags().BoolVar(&opts.overlay, "overlay", true, "Render with the status overlay showing")
	cmd.Flags().BoolVar(&opts.braille, "braille", false, "Print braille text instead of writing PNG")
	return cmd
}

// renderFrame starts a face on a virtual clock at at and draws one frame.
func renderFrame(stdout io.Writer, cfg config.Config, at time.Time, opts *renderOptions) error {
	set, err := assets.Load(cfg.AssetDir)
	if err != nil {
		return fmt.Errorf("load assets: %w", err)
	}
	defer set.Close()
	frame, err := render.NewFrame(set)
	if err != nil {
		return fmt.Errorf("init frame: %w", err)
	}

	clock := timer.NewManual(at)
	src := staticSource{battery: fixedBattery(cfg.Fixed), connected: cfg.Fixed.Connected}
	ctrl := face.NewController(cfg.Face, face.Platform{
		Scheduler: clock,
		Screen:    frame,
		Canvas:    frame,
		Vibrator:  logVibrator{logger: xslog.Discard()},
		Battery:   src,
		Bluetooth: src,
	}, face.WithLogger(xslog.Discard()))
	ctrl.Start()
	defer ctrl.Close()
	if !opts.overlay {
		clock.Advance(face.DisplayTimeout)
	}
	ctrl.Handle(face.RedrawRequested{})

	if opts.braille {
		_, err := fmt.Fprintln(stdout, render.Braille(frame.Render()))
		return err
	}

	if opts.out == "-" {
		return frame.PNG(stdout)
	}
	f, err := os.Create(opts.out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := frame.PNG(f); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}
