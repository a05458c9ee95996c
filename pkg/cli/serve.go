package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/towebp/pkg/cli/config"
	controller "github.com/m-mizutani/towebp/pkg/controller/http"
	"github.com/m-mizutani/towebp/pkg/infra/imgconv"
	"github.com/m-mizutani/towebp/pkg/usecase"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func cmdServe() *cli.Command {
	var (
		serverCfg    config.Server
		converterCfg config.Converter
		sentryCfg    config.Sentry
	)

	flags := append(serverCfg.Flags(), converterCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			opts, err := converterCfg.Options(c.IsSet)
			if err != nil {
				return err
			}

			if err := sentryCfg.Configure(); err != nil {
				return err
			}
			if sentryCfg.Enabled() {
				defer sentry.Flush(2 * time.Second)
			}

			logger.Info("Starting towebp server",
				slog.String("addr", serverCfg.Addr),
				slog.Int("quality", opts.Quality),
				slog.Int("max_width", opts.MaxWidth),
				slog.Int("max_height", opts.MaxHeight),
				slog.Int64("max_upload_size", serverCfg.MaxUploadSize),
				slog.Bool("sentry", sentryCfg.Enabled()),
			)

			encoder, err := imgconv.New(imgconv.WithOptions(*opts))
			if err != nil {
				return err
			}

			// Create use cases
			convertUC := usecase.NewConvert(encoder)
			archiveUC := usecase.NewArchive()

			// Create HTTP server with options
			server, err := controller.NewServer(
				ctx,
				convertUC,
				archiveUC,
				controller.WithAddr(serverCfg.Addr),
				controller.WithMaxUploadSize(serverCfg.MaxUploadSize),
				controller.WithEncoderName(imgconv.Name),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			eg, egCtx := errgroup.WithContext(ctx)

			eg.Go(func() error {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return goerr.Wrap(err, "HTTP server error", goerr.V("addr", serverCfg.Addr))
				}
				return nil
			})

			eg.Go(func() error {
				// Wait for interrupt signal
				sigChan := make(chan os.Signal, 1)
				signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
				defer signal.Stop(sigChan)

				select {
				case <-egCtx.Done():
					logger.Info("Context cancelled, shutting down...")
				case sig := <-sigChan:
					logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
				}

				// Graceful shutdown
				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}
				return nil
			})

			if err := eg.Wait(); err != nil {
				return err
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
