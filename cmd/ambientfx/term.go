package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cineverse/ambientfx/internal/fxconfig"
	"github.com/cineverse/ambientfx/internal/render/termfx"
)

var (
	termFPS   int
	termWatch bool
)

var termCmd = &cobra.Command{
	Use:   "term",
	Short: "Render the backdrop in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgs, err := loadLayers(configPath)
		if err != nil {
			return err
		}

		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("open terminal: %w", err)
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("init terminal: %w", err)
		}

		host := termfx.NewHost(screen, termFPS, logger)
		host.Start(cfgs)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			defer cancel()
			return host.Run(gctx)
		})
		if termWatch {
			g.Go(func() error {
				return fxconfig.Watch(gctx, configPath, 0, logger, host.Reload)
			})
		}
		return g.Wait()
	},
}

func init() {
	termCmd.Flags().IntVar(&termFPS, "fps", 30, "frames per second")
	termCmd.Flags().BoolVar(&termWatch, "watch", false, "reload the config file when it changes")
}
