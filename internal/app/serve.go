package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arcadecheck/arcadecheck/internal/checklog"
	"github.com/arcadecheck/arcadecheck/internal/config"
	"github.com/arcadecheck/arcadecheck/internal/domain"
	"github.com/arcadecheck/arcadecheck/internal/httpapi"
	"github.com/arcadecheck/arcadecheck/internal/repo/filestore"
	"github.com/arcadecheck/arcadecheck/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the periodic checkers and the web dashboard",
	Long: `Start the service: one check loop per configured source plus the
read-only web dashboard. Runs until interrupted.`,
	Example: `  # Run with built-in defaults
  arcadecheck serve

  # Run with a custom config
  arcadecheck serve --config /etc/arcadecheck/config.yaml`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	path := config.Resolve(cfgPath)
	cfg, found, err := config.LoadOrDefault(path)
	if err != nil {
		return err
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if path != "" && !found {
		logger.Warn("config_not_found", zap.String("path", path))
	}

	events := checklog.New(cfg.CheckLog.Path)
	store := filestore.New(cfg.Storage.DataDir, cfg.Storage.LastCheckFile, cfg.VersionFiles())
	client := buildFetcher(cfg)
	notifier := buildNotifier(cfg)
	if notifier == nil {
		logger.Warn("no_notifier_configured")
	}

	checkers := buildCheckers(cfg, client, store, notifier, logger, events)
	jobs := make([]scheduler.Job, 0, len(checkers))
	sources := make([]domain.Source, 0, len(checkers))
	for i, c := range checkers {
		jobs = append(jobs, scheduler.Job{
			Name:     string(c.Source.ID),
			Interval: cfg.Sources[i].Interval(),
			Runner:   c,
		})
		sources = append(sources, c.Source)
	}
	sched := scheduler.New(logger, jobs)

	api := httpapi.NewServer(logger, httpapi.Config{
		Title:        cfg.Web.Title,
		LogPath:      cfg.CheckLog.Path,
		LogLines:     cfg.Web.LogLines,
		AllowedHosts: cfg.Web.AllowedHosts,
		RatePerMin:   cfg.Web.RatePerMin,
		RateBurst:    cfg.Web.RateBurst,
	}, sources, store, store)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{Addr: cfg.Web.Addr, Handler: api.Router()}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("web_listen", zap.String("addr", cfg.Web.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	schedDone := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(schedDone)
	}()

	select {
	case err := <-errCh:
		logger.Error("web_error", zap.Error(err))
		stop()
		<-schedDone
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("web_shutdown_error", zap.Error(err))
	}
	<-schedDone
	return nil
}
