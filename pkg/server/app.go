package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"MacroCast/pkg/config"
	xhttp "MacroCast/pkg/http"
	applogger "MacroCast/pkg/logger"
)

// App encapsulates the HTTP service lifecycle.
type App struct {
	cfg         *config.Config
	log         *applogger.Logger
	httpHandler xhttp.Handler
	httpServer  *xhttp.Server
	extra       []xhttp.ServerOption
}

// New creates a new App instance with all dependencies. Extra options are
// applied after the config-derived ones.
func New(cfg *config.Config, l *applogger.Logger, h xhttp.Handler, extra ...xhttp.ServerOption) *App {
	if l == nil {
		l = applogger.Nop()
	}
	a := &App{cfg: cfg, log: l, httpHandler: h, extra: extra}
	a.httpServer = a.buildServer()
	return a
}

func (a *App) buildServer() *xhttp.Server {
	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
	}
	opts := []xhttp.ServerOption{
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(true),
		xhttp.WithMetrics(metricsPath, a.cfg.Metrics.SlowThreshold),
		xhttp.WithLogger(a.log),
	}
	return xhttp.NewServer(a.httpHandler, append(opts, a.extra...)...)
}

// Server exposes the HTTP server, mainly for tests.
func (a *App) Server() *xhttp.Server {
	return a.httpServer
}

// Run starts the HTTP server and blocks until SIGINT or SIGTERM.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("macrocast started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("cache_backend", a.cfg.Cache.Backend),
	)

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops the HTTP server. Caches are closed by the DI
// cleanup.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.httpServer.ShutdownTimeout())
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		return err
	}
	a.log.Info("shutdown complete")
	return nil
}
