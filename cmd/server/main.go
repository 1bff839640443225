package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	router "github.com/dkeye/huddle/internal/adapters/http"
	"github.com/dkeye/huddle/internal/app"
	"github.com/dkeye/huddle/internal/config"
	"github.com/dkeye/huddle/internal/domain"
	"github.com/dkeye/huddle/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgFile string
		rooms   []string
	)
	cmd := &cobra.Command{
		Use:   "huddle-server",
		Short: "Relay text chat and voice between members of a room",
		Long: `huddle-server relays chat lines and raw audio frames between the
members of a room. Rooms are fixed at startup, from the config file and
from --room flags.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.Setup("info", nil)
			cfg, err := config.LoadServer(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			logging.Setup(cfg.LogLevel, nil)

			for _, spec := range rooms {
				rc, err := config.ParseRoomSpec(spec)
				if err != nil {
					return err
				}
				cfg.Rooms = append(cfg.Rooms, rc)
			}
			return run(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&cfgFile, "config", "", "config file (default config/config.$CONFIG_ENV.yaml)")
	cmd.Flags().Int("port", 8000, "listen port")
	cmd.Flags().String("mode", "release", "gin mode: debug, release or test")
	cmd.Flags().String("log-level", "info", "log level")
	cmd.Flags().StringArrayVar(&rooms, "room", nil, "room to create, id:capacity or id:name:capacity (repeatable)")
	return cmd
}

func run(parent context.Context, cfg *config.ServerConfig) error {
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	registry := app.NewRoomRegistry()
	for _, rc := range cfg.Rooms {
		if _, err := registry.Create(domain.RoomID(rc.ID), domain.RoomName(rc.Name), rc.Capacity); err != nil {
			return fmt.Errorf("room %s: %w", rc.ID, err)
		}
	}
	if len(cfg.Rooms) == 0 {
		return errors.New("no rooms configured: add rooms to the config file or pass --room")
	}
	for _, s := range registry.List() {
		log.Info().Str("room", string(s.ID)).Str("name", string(s.Name)).Int("capacity", s.Capacity).Msg("available room")
	}

	orch := app.NewOrchestrator(registry)
	r := router.SetupRouter(ctx, cfg, orch)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("huddle server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
	return nil
}
