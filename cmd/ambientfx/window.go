package main

import (
	"context"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cineverse/ambientfx/internal/fxconfig"
	"github.com/cineverse/ambientfx/internal/render/ebitenfx"
)

var (
	windowWidth  int
	windowHeight int
	windowWatch  bool
)

var windowCmd = &cobra.Command{
	Use:   "window",
	Short: "Show the backdrop in a desktop window",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgs, err := loadLayers(configPath)
		if err != nil {
			return err
		}

		ebiten.SetWindowTitle("CineVerse Ambient")
		ebiten.SetWindowSize(windowWidth, windowHeight)
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

		g := ebitenfx.New(windowWidth, windowHeight, cfgs, logger)
		defer g.Close()

		if windowWatch {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			go func() {
				if err := fxconfig.Watch(ctx, configPath, 0, logger, g.Reload); err != nil {
					logger.Warn("config watch stopped", zap.Error(err))
				}
			}()
		}

		if err := ebiten.RunGame(g); err != nil {
			return fmt.Errorf("run window: %w", err)
		}
		return nil
	},
}

func init() {
	windowCmd.Flags().IntVar(&windowWidth, "width", 1280, "window width in pixels")
	windowCmd.Flags().IntVar(&windowHeight, "height", 720, "window height in pixels")
	windowCmd.Flags().BoolVar(&windowWatch, "watch", false, "reload the config file when it changes")
}
