package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pentesthub/pentest-hub/internal/api"
	"github.com/pentesthub/pentest-hub/internal/pprof"
	"github.com/pentesthub/pentest-hub/internal/samples"
	"github.com/pentesthub/pentest-hub/internal/sql"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE:  runServe,
	}
	cmd.Flags().String("listen-addr", ":8000", "Address the API listens on")
	cmd.Flags().String("pprof-addr", "", "Address of the pprof server; disabled when empty")
	cmd.Flags().Bool("seed-samples", true, "Install the bundled sample templates when missing")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	listenAddr, _ := cmd.Flags().GetString("listen-addr") //nolint:errcheck
	pprofAddr, _ := cmd.Flags().GetString("pprof-addr")   //nolint:errcheck
	seed, _ := cmd.Flags().GetBool("seed-samples")        //nolint:errcheck

	ctx, logger, err := commandLogger(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cmd, sql.DefaultDatabaseInitializer, logger)
	if err != nil {
		return err
	}
	defer app.Close()
	logger.Info("Report renderer ready", zap.String("docx", app.renderer.Capability().DocxMode()))

	if seed {
		installed, err := samples.Seed(ctx, app.templates, app.blobs)
		if err != nil {
			return fmt.Errorf("failed to seed sample templates: %w", err)
		}
		logger.Info("Sample templates seeded", zap.Int("installed", installed))
	}

	e, err := api.New(app.apiDeps(logger))
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting API server", zap.String("addr", listenAddr))
		if err := e.Start(listenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("Shutting down API server")
		if err := e.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("api server shutdown failed: %w", err)
		}
		return nil
	})
	if pprofAddr != "" {
		g.Go(func() error {
			return pprof.StartPprofServer(gctx, pprofAddr)
		})
	}
	return g.Wait()
}
