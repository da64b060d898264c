package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	domrepo "SignalPull/internal/domain/repository"
	"SignalPull/internal/handler/api"
	"SignalPull/internal/scheduler"
	icache "SignalPull/internal/service/cache"
	"SignalPull/internal/usecase"
	pkgch "SignalPull/pkg/clickhouse"
	"SignalPull/pkg/config"
	xhttp "SignalPull/pkg/http"
	"SignalPull/pkg/http/middleware"
	applogger "SignalPull/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	pipe       *usecase.Pipeline
	sched      *scheduler.Scheduler
	chClient   *pkgch.Client
	store      domrepo.RunStore
	publisher  domrepo.ActionPublisher
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	pipe *usecase.Pipeline,
	sched *scheduler.Scheduler,
	chClient *pkgch.Client,
	store domrepo.RunStore,
	publisher domrepo.ActionPublisher,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		pipe:      pipe,
		sched:     sched,
		chClient:  chClient,
		store:     store,
		publisher: publisher,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := api.NewSignalsEchoHandler(a.log, a.pipe)

	export := api.NewExportHandler(a.pipe)
	export.SetLogger(a.log)
	if a.cfg.Redis.Enabled {
		export.SetCache(icache.NewRedisCache(icache.RedisConfig{
			Addr:     a.cfg.Redis.Addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		}))
	} else {
		export.SetCache(icache.NewTTLCache())
	}

	a.httpServer = xhttp.NewServer(signals,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	e := a.httpServer.Echo()
	exportMetrics := middleware.Metrics(a.log, 2*time.Second)
	e.GET("/export/actions.json", echo.WrapHandler(exportMetrics(export.ActionsJSON())))
	e.GET("/export/actions.csv", echo.WrapHandler(exportMetrics(export.ActionsCSV())))
	e.GET("/export/diagnostics.csv", echo.WrapHandler(exportMetrics(export.DiagnosticsCSV())))
	e.GET("/healthz", a.healthHandler)

	if cronSpec := a.cfg.Pipeline.Cron; cronSpec != "" {
		if _, err := a.sched.Add(cronSpec); err != nil {
			a.log.Error("invalid cron spec", applogger.String("cron", cronSpec), applogger.Error(err))
			return err
		}
		a.sched.Start()
		a.log.Info("scheduler armed", applogger.String("cron", cronSpec))
	}

	if a.cfg.Pipeline.RunOnStart {
		go func() {
			runCtx, runCancel := context.WithTimeout(ctx, a.cfg.Pipeline.RunTimeout)
			defer runCancel()
			if _, err := a.pipe.Run(runCtx); err != nil {
				a.log.Error("startup run failed", applogger.Error(err))
			}
		}()
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("http server listening", applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

func (a *App) healthHandler(c echo.Context) error {
	hctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()
	if a.store != nil {
		if err := a.store.Health(hctx); err != nil {
			return xhttp.AppErrorResponse(c, xhttp.InternalError("store unavailable"))
		}
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	if a.sched != nil {
		a.sched.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	// Flush the log collector before the producer goes away.
	a.log.RemoveCollector()

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("publisher close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
