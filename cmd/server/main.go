// Package main starts the progression gRPC service and its HTTP previews.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xtding233/progression-engine/internal/config"
	"github.com/xtding233/progression-engine/internal/rpc"
)

func main() {
	cfg, err := ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse config: %v\n", err)
		os.Exit(2)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config, logger *slog.Logger) error {
	loader := config.NewLoader(cfg.ConfigDir, logger)
	balance, err := loader.Load(cfg.Profile)
	if err != nil {
		return fmt.Errorf("load balance: %w", err)
	}
	svc, err := rpc.NewService(balance, rpc.WithLogger(logger))
	if err != nil {
		return err
	}
	grpcServer, err := rpc.Listen(cfg.GRPCAddr, svc, logger)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return grpcServer.Serve(gctx) })

	if cfg.WatchInterval > 0 {
		reload := func(path string) {
			loader.Invalidate()
			b, err := loader.Load(cfg.Profile)
			if err != nil {
				logger.Error("balance reload rejected, keeping previous", "path", path, "error", err)
				return
			}
			if err := svc.Reload(b); err != nil {
				logger.Error("balance reload failed", "path", path, "error", err)
			}
		}
		watcher := config.NewFileWatcher(loader.Paths().Files(cfg.Profile), cfg.WatchInterval, reload, logger)
		g.Go(func() error { return watcher.Run(gctx) })
	}

	if cfg.HTTPAddr != "" {
		httpServer := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           newMux(svc),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("http server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve http: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}
