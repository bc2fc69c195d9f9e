package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/ifrs-modeler/pkg/cli/config"
	httpctrl "github.com/secmon-lab/ifrs-modeler/pkg/controller/http"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/model"
	"github.com/secmon-lab/ifrs-modeler/pkg/service/worker"
	"github.com/secmon-lab/ifrs-modeler/pkg/usecase"
	"github.com/secmon-lab/ifrs-modeler/pkg/utils/async"
	"github.com/secmon-lab/ifrs-modeler/pkg/utils/logging"
	"github.com/secmon-lab/ifrs-modeler/pkg/utils/safe"
)

func cmdServe(version string) *cli.Command {
	var addr string
	var staticDir string
	var autoSaveDelay time.Duration
	var catalogCfg config.Catalog
	var repoCfg config.Repository
	var storageCfg config.Storage
	var authCfg config.Auth
	var sentryCfg config.Sentry
	var slackCfg config.Slack

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("IFRS_MODELER_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "static-dir",
			Usage:       "Directory of the built admin UI served for non-API paths",
			Sources:     cli.EnvVars("IFRS_MODELER_STATIC_DIR"),
			Destination: &staticDir,
		},
		&cli.DurationFlag{
			Name:        "autosave-delay",
			Usage:       "Idle time after the last edit before a draft is saved",
			Value:       worker.DefaultAutoSaveDelay,
			Sources:     cli.EnvVars("IFRS_MODELER_AUTOSAVE_DELAY"),
			Destination: &autoSaveDelay,
		},
	}

	// Add shared config flags
	flags = append(flags, catalogCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, storageCfg.Flags()...)
	flags = append(flags, authCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the model definition API server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			flush, err := sentryCfg.Configure(version)
			if err != nil {
				return err
			}
			defer flush()

			catalog, err := catalogCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load catalogue")
			}

			authUC, err := authCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure authentication")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure repository")
			}
			defer safe.Close(ctx, repo)

			blobStorage, storageCloser, err := storageCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure upload storage")
			}
			if storageCloser != nil {
				defer safe.Close(ctx, storageCloser)
			}

			notifier, err := slackCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure slack notifications")
			}

			ucOpts := []usecase.Option{
				usecase.WithCatalog(catalog),
				usecase.WithAuth(authUC),
				usecase.WithDraftStore(usecase.NewDraftStore()),
				usecase.WithDispatcher(async.NewDispatcher()),
			}
			if blobStorage != nil {
				ucOpts = append(ucOpts, usecase.WithStorage(blobStorage))
			}
			if notifier != nil {
				ucOpts = append(ucOpts, usecase.WithNotifier(notifier))
			}
			uc := usecase.New(repo, ucOpts...)

			// The saver calls back into the use case, so it is attached after construction
			saver := worker.NewAutoSaver(autoSaveDelay, func(ctx context.Context, id model.ModelDefinitionID) error {
				_, err := uc.Model.Save(ctx, id, 0)
				return err
			})
			uc.Model.SetAutoSaver(saver)

			httpOpts := []httpctrl.Options{
				httpctrl.WithAuth(authUC),
			}
			if staticDir != "" {
				info, err := os.Stat(staticDir)
				if err != nil || !info.IsDir() {
					return goerr.New("static-dir is not a directory", goerr.V("path", staticDir))
				}
				httpOpts = append(httpOpts, httpctrl.WithStaticFS(os.DirFS(staticDir)))
				logging.Default().Info("Serving admin UI", "dir", staticDir)
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, httpOpts...),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			// Start server in goroutine
			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server",
					"addr", addr,
					"autosave_delay", autoSaveDelay,
					"repository", repoCfg.Backend(),
					"storage", storageCfg.Backend(),
					"no_authn", authUC.IsNoAuthn(),
				)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			// Wait for shutdown signal or server error
			select {
			case err := <-errCh:
				saver.Stop()
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				// Create shutdown context with timeout
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				// Attempt graceful shutdown
				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				// No request can touch a draft any more
				saver.Stop()
				uc.Wait()

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
