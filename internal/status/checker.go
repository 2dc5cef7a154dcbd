package status

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/xiaoxiao0301/lx-source-resolver/internal/upstream"
	"github.com/xiaoxiao0301/lx-source-resolver/pkg/logger"
)

const (
	defaultCheckTimeout = 5 * time.Second
	maxConcurrentProbes = 4
)

// Checker 启动健康检查
type Checker struct {
	url        string
	timeout    time.Duration
	httpClient *http.Client
	providers  []upstream.Provider
	probe      bool
	tracker    *Tracker
	logger     logger.Logger
}

// CheckerConfig 健康检查配置
type CheckerConfig struct {
	URL            string
	Timeout        time.Duration
	ProbeProviders bool
}

// NewChecker 创建健康检查器；providers 仅在开启探测时使用
func NewChecker(cfg CheckerConfig, tracker *Tracker, providers []upstream.Provider, log logger.Logger) *Checker {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultCheckTimeout
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Checker{
		url:        cfg.URL,
		timeout:    cfg.Timeout,
		httpClient: &http.Client{},
		providers:  providers,
		probe:      cfg.ProbeProviders,
		tracker:    tracker,
		logger:     log,
	}
}

// Run 执行检查并更新状态
//
// 远程状态不可达或格式错误只会降级；明确的 enabled:false 会禁用服务。
func (c *Checker) Run(ctx context.Context) Status {
	c.tracker.Set(Checking, "")

	result, reason := c.checkRemote(ctx)
	if result == Disabled {
		c.tracker.Set(Disabled, reason)
		c.logger.Error("Service disabled by status endpoint", logger.String("reason", reason))
		return Disabled
	}

	if c.probe && len(c.providers) > 0 {
		if ok := c.probeProviders(ctx); ok == 0 {
			result = Degraded
			reason = "no provider reachable"
		}
	}

	c.tracker.Set(result, reason)
	c.logger.Info("Startup check finished",
		logger.String("status", string(result)),
		logger.String("reason", reason),
	)
	return result
}

func (c *Checker) checkRemote(ctx context.Context) (Status, string) {
	if c.url == "" {
		return Ready, ""
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return Degraded, fmt.Sprintf("build status request: %v", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Status endpoint unreachable", logger.String("url", c.url), logger.Error(err))
		return Degraded, "status endpoint unreachable"
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || resp.StatusCode != http.StatusOK {
		c.logger.Warn("Status endpoint returned an error",
			logger.String("url", c.url),
			logger.Int("status", resp.StatusCode),
		)
		return Degraded, fmt.Sprintf("status endpoint returned http %d", resp.StatusCode)
	}

	if !gjson.ValidBytes(body) {
		c.logger.Warn("Status endpoint returned malformed body", logger.String("url", c.url))
		return Degraded, "malformed status response"
	}

	root := gjson.ParseBytes(body)
	enabled := root.Get("data.enabled")
	if !enabled.Exists() {
		enabled = root.Get("enabled")
	}
	if enabled.Exists() && enabled.Type == gjson.False {
		msg := root.Get("data.message").String()
		if msg == "" {
			msg = root.Get("message").String()
		}
		if msg == "" {
			msg = "service disabled"
		}
		return Disabled, msg
	}

	return Ready, ""
}

// probeProviders 并发探测提供方，返回可达数量
func (c *Checker) probeProviders(ctx context.Context) int {
	var reachable atomic.Int32
	g := new(errgroup.Group)
	g.SetLimit(maxConcurrentProbes)

	for _, p := range c.providers {
		prober, ok := p.(upstream.Prober)
		if !ok {
			reachable.Add(1)
			continue
		}
		id := p.ID()
		g.Go(func() error {
			start := time.Now()
			if err := prober.Probe(ctx); err != nil {
				c.logger.Warn("Provider probe failed",
					logger.String("provider", id),
					logger.Duration("elapsed", time.Since(start)),
					logger.Error(err),
				)
				return nil
			}
			reachable.Add(1)
			c.logger.Debug("Provider reachable",
				logger.String("provider", id),
				logger.Duration("elapsed", time.Since(start)),
			)
			return nil
		})
	}
	_ = g.Wait()

	return int(reachable.Load())
}
