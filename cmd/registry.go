package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/provider-verify/internal/registry"
)

var (
	registryPort     int
	registryFixtures string
)

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Mock NPI registry tools",
}

var registryServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a mock NPI registry over HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if registryPort != 0 {
			cfg.Server.Port = registryPort
		}
		if registryFixtures != "" {
			cfg.Server.FixturesPath = registryFixtures
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		fixtures, err := loadFixtures(cfg.Server.FixturesPath)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           registry.NewServer(fixtures).Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down registry server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting registry server",
			zap.Int("port", cfg.Server.Port),
			zap.Int("providers", len(fixtures)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "registry: listen")
		}
		return nil
	},
}

func loadFixtures(path string) (registry.Fixtures, error) {
	if path == "" {
		return registry.DefaultFixtures(), nil
	}
	f, err := registry.LoadFixturesFromFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "registry: load fixtures")
	}
	return f, nil
}

func init() {
	registryServeCmd.Flags().IntVar(&registryPort, "port", 0, "server port (default from config)")
	registryServeCmd.Flags().StringVar(&registryFixtures, "fixtures", "", "YAML or JSON fixtures file (default: built-in providers)")
	registryCmd.AddCommand(registryServeCmd)
	rootCmd.AddCommand(registryCmd)
}
