package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/specialistvlad/extforge/internal/ctxlog"
	"github.com/specialistvlad/extforge/internal/natsdispatch"
	"github.com/specialistvlad/extforge/internal/server"
)

const shutdownTimeout = 5 * time.Second

// Serve verifies every registered rule, then exposes the dispatcher over
// HTTP and, when configured, NATS. It blocks until ctx is done.
func (a *App) Serve(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	if err := a.dispatcher.Verify(ctx); err != nil {
		return err
	}

	var health func(context.Context) error
	if a.config.NATS.URL != "" {
		nc, err := nats.Connect(a.config.NATS.URL, nats.Name("extforge"))
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer nc.Close()
		if _, err := natsdispatch.NewHandler(a.dispatcher).Start(ctx, nc, a.config.NATS.Subject); err != nil {
			return err
		}
		health = func(context.Context) error {
			if !nc.IsConnected() {
				return fmt.Errorf("nats: %v", nc.Status())
			}
			return nil
		}
	}

	if err := a.startServer(a.config.Server.Addr, health); err != nil {
		return err
	}
	<-ctx.Done()
	a.logger.Info("Shutting down.")
	return a.closeServer()
}

// Addr returns the address the HTTP server listens on, or "" before Serve
// has started it.
func (a *App) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.addr
}

// startServer initializes and runs the HTTP server in the background.
func (a *App) startServer(addr string, health func(context.Context) error) error {
	a.logger.Debug("Configuring HTTP server.")
	opts := []server.Option{server.WithGatherer(a.gatherer), server.WithLogger(a.logger)}
	if health != nil {
		opts = append(opts, server.WithHealthCheck(health))
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	srv := &http.Server{
		Handler:           server.New(a.dispatcher, opts...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.mu.Lock()
	a.httpServer = srv
	a.addr = ln.Addr().String()
	a.mu.Unlock()

	go func() {
		a.logger.Info("HTTP server starting", "address", ln.Addr().String())
		// Serve returns ErrServerClosed on graceful shutdown.
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP server failed unexpectedly", "error", err)
		}
	}()
	return nil
}

func (a *App) closeServer() error {
	a.mu.Lock()
	srv := a.httpServer
	a.httpServer = nil
	a.addr = ""
	a.mu.Unlock()

	if srv == nil {
		a.logger.Debug("HTTP server was not running.")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.logger.Info("Shutting down HTTP server...")
	if err := srv.Shutdown(ctx); err != nil {
		a.logger.Error("HTTP server shutdown failed", "error", err)
		return err
	}
	a.logger.Debug("HTTP server shut down gracefully.")
	return nil
}
