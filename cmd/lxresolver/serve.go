package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/xiaoxiao0301/lx-source-resolver/internal/handler"
	"github.com/xiaoxiao0301/lx-source-resolver/internal/metrics"
	"github.com/xiaoxiao0301/lx-source-resolver/internal/resolver"
	"github.com/xiaoxiao0301/lx-source-resolver/pkg/logger"
)

const defaultShutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP host adapter",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	// 优雅关闭
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	log := a.log
	log.Info("Starting lx-source-resolver",
		logger.String("status", string(a.tracker.Status())),
		logger.Int("providers", len(a.resolver.Providers())),
		logger.String("cache_backend", a.store.Stats(ctx).Backend),
	)

	if a.cfg.Server.Mode != "" {
		gin.SetMode(a.cfg.Server.Mode)
	}
	m := metrics.New()
	a.resolver.WithMetrics(m)
	m.RegisterCache(func() (int, uint64, uint64) {
		stats := a.store.Stats(context.Background())
		return stats.Size, stats.Hits, stats.Misses
	})

	h := handler.New(a.plugin, a.store, a.tracker, log)
	router := handler.NewRouter(h, log, handler.RouterConfig{
		RateLimit: a.cfg.Server.RateLimit,
		RateBurst: a.cfg.Server.RateBurst,
		Metrics:   m,
	})
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.Server.HTTPPort),
		Handler:      router,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	// 定期清理过期缓存
	g.Go(func() error {
		<-resolver.StartSweeper(gctx, a.store, a.cfg.Cache.SweepInterval, log)
		return nil
	})

	g.Go(func() error {
		log.Info("Starting HTTP server", logger.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down lx-source-resolver")

		timeout := a.cfg.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = defaultShutdownTimeout
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", logger.Error(err))
		return err
	}
	log.Info("lx-source-resolver stopped")
	return nil
}
