package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SwingRadar/internal/scheduler"
	"SwingRadar/internal/services/exchange"
	"SwingRadar/pkg/config"
	xhttp "SwingRadar/pkg/http"
	applogger "SwingRadar/pkg/logger"
)

// App encapsulates the application lifecycle: ticker stream, analysis
// scheduler, HTTP server, and the infrastructure clients that need
// closing on shutdown.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	scheduler  *scheduler.Scheduler
	stream     *exchange.TickerStream
	handler    xhttp.Handler
	httpServer *xhttp.Server
	closers    []io.Closer
}

func New(
	cfg *config.Config,
	logger *applogger.Logger,
	sched *scheduler.Scheduler,
	stream *exchange.TickerStream,
	handler xhttp.Handler,
	closers []io.Closer,
) *App {
	return &App{
		cfg:       cfg,
		logger:    logger,
		scheduler: sched,
		stream:    stream,
		handler:   handler,
		closers:   closers,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithRequestMetrics(a.logger, 2*time.Second),
	)

	if a.stream != nil {
		go a.stream.Run(ctx)
		a.logger.Info("ticker stream started",
			applogger.String("url", a.cfg.Exchange.Stream.WebSocketURL))
	}

	if err := a.scheduler.Start(ctx); err != nil {
		return err
	}

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown(ctx)
}

func (a *App) shutdown(ctx context.Context) error {
	// stop scheduling first so no pass starts mid-shutdown
	a.scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.logger.Warn("resource close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
