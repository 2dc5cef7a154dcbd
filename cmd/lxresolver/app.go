package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/xiaoxiao0301/lx-source-resolver/internal/cache"
	"github.com/xiaoxiao0301/lx-source-resolver/internal/handler"
	"github.com/xiaoxiao0301/lx-source-resolver/internal/plugin"
	"github.com/xiaoxiao0301/lx-source-resolver/internal/resolver"
	"github.com/xiaoxiao0301/lx-source-resolver/internal/status"
	"github.com/xiaoxiao0301/lx-source-resolver/internal/upstream"
	"github.com/xiaoxiao0301/lx-source-resolver/pkg/config"
	"github.com/xiaoxiao0301/lx-source-resolver/pkg/logger"
	"github.com/xiaoxiao0301/lx-source-resolver/pkg/telemetry"
)

const tracingShutdownTimeout = 5 * time.Second

// app 组装后的服务组件
type app struct {
	cfg      *config.Config
	log      logger.Logger
	store    cache.Store
	tracker  *status.Tracker
	resolver *resolver.Resolver
	plugin   *plugin.Plugin
	closers  []func() error
}

// newApp 加载配置并初始化全部组件，启动健康检查
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.NewFileLoader(cfgFile).Load()
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	log, err := newLogger(cfg.Log)
	if err != nil {
		return nil, err
	}

	shutdownTracing, err := telemetry.Init(ctx, &telemetry.Config{
		ServiceName:    handler.ServiceName,
		ServiceVersion: handler.Version,
		Environment:    cfg.Tracing.Environment,
		OTLPEndpoint:   cfg.Tracing.OTLPEndpoint,
		SampleRatio:    cfg.Tracing.SampleRatio,
		Enabled:        cfg.Tracing.Enabled,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init tracing: %w", err)
	}
	closeTracing := func() error {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), tracingShutdownTimeout)
		defer cancel()
		return shutdownTracing(shutdownCtx)
	}

	store, closeStore, err := cache.New(ctx, cfg.Cache, cfg.Redis)
	if err != nil {
		_ = closeTracing()
		return nil, fmt.Errorf("failed to init cache: %w", err)
	}

	providers, err := upstream.NewProviders(cfg.Providers, log)
	if err != nil {
		_ = closeStore()
		_ = closeTracing()
		return nil, fmt.Errorf("failed to init providers: %w", err)
	}

	tracker := status.NewTracker()
	checker := status.NewChecker(status.CheckerConfig{
		URL:            cfg.Status.URL,
		Timeout:        cfg.Status.Timeout,
		ProbeProviders: cfg.Status.ProbeProviders,
	}, tracker, providers, log)
	checker.Run(ctx)

	r := resolver.New(providers, store, tracker, log)
	p := plugin.New(r, tracker, plugin.Config{Name: cfg.Plugin.Name, MaxSearchCount: cfg.Plugin.MaxSearchCount}, log)

	return &app{
		cfg:      cfg,
		log:      log,
		store:    store,
		tracker:  tracker,
		resolver: r,
		plugin:   p,
		closers:  []func() error{closeStore, closeTracing},
	}, nil
}

// newLogger 日志输出到 stderr，stdout 留给命令结果
func newLogger(cfg config.LogConfig) (logger.Logger, error) {
	level, err := logger.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	return logger.New(&logger.Config{
		Level:      level,
		Output:     os.Stderr,
		Caller:     true,
		File:       cfg.File,
		MaxSizeMB:  cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAgeDays: cfg.MaxAgeDays,
	})
}

func (a *app) Close() {
	for _, closer := range a.closers {
		if err := closer(); err != nil {
			a.log.Error("Failed to close resource", logger.Error(err))
		}
	}
}
