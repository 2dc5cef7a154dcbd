package upstream

import (
	"context"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/xiaoxiao0301/lx-source-resolver/pkg/errors"
	"github.com/xiaoxiao0301/lx-source-resolver/pkg/logger"
)

const (
	// DefaultTimeout 默认请求超时
	DefaultTimeout = 8 * time.Second

	defaultUserAgent = "Mozilla/5.0"
	maxBodySize      = 1 << 20
)

// Client HTTP客户端基类
type Client struct {
	id         string
	baseURL    string
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     logger.Logger
}

// ClientConfig 客户端配置
type ClientConfig struct {
	ID        string
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // 每秒请求数，0 表示不限
	Burst     int
	UserAgent string
}

// NewClient 创建HTTP客户端
func NewClient(cfg ClientConfig, log logger.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if log == nil {
		log = logger.Nop()
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		id:        cfg.ID,
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		timeout:   cfg.Timeout,
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: limiter,
		logger:  log.WithFields(logger.String("provider", cfg.ID)),
	}
}

// ID 提供方ID
func (c *Client) ID() string { return c.id }

// Timeout 单次请求超时
func (c *Client) Timeout() time.Duration { return c.timeout }

// Get 发送GET请求
//
// 超时由 timeout 参数控制（<=0 时使用客户端默认值），同时受 ctx 取消约束。
// 不重试：失败直接返回分类后的错误。
func (c *Client) Get(ctx context.Context, query url.Values, timeout time.Duration) ([]byte, error) {
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if stderrors.Is(err, context.Canceled) {
				return nil, classify(ctx, err)
			}
			return nil, errors.Wrap(err, errors.KindNetworkTimeout, "rate limit wait exceeded timeout")
		}
	}

	reqURL := c.baseURL + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindNetworkError, "create request failed")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("Upstream request failed",
			logger.String("url", reqURL),
			logger.Duration("elapsed", time.Since(start)),
			logger.Error(err),
		)
		return nil, classify(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, classify(ctx, err)
	}

	c.logger.Debug("Upstream request done",
		logger.String("url", reqURL),
		logger.Int("status", resp.StatusCode),
		logger.Int("bytes", len(body)),
		logger.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Newf(errors.KindAPIError, "upstream returned http %d", resp.StatusCode).
			WithDetails(map[string]interface{}{"code": int64(resp.StatusCode)})
	}

	return body, nil
}

// Probe 探测接口可达性（HEAD），任何HTTP响应都视为可达
func (c *Client) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classify(ctx, err)
	}
	resp.Body.Close()
	return nil
}

// classify 将传输层错误映射为 NETWORK_TIMEOUT / NETWORK_ERROR
func classify(ctx context.Context, err error) *errors.Error {
	var netErr net.Error
	switch {
	case stderrors.Is(err, context.DeadlineExceeded),
		stderrors.Is(ctx.Err(), context.DeadlineExceeded),
		stderrors.As(err, &netErr) && netErr.Timeout():
		return errors.Wrap(err, errors.KindNetworkTimeout, "request timed out")
	case stderrors.Is(err, context.Canceled):
		return errors.Wrap(err, errors.KindNetworkError, "request cancelled")
	default:
		return errors.Wrap(err, errors.KindNetworkError, "request failed")
	}
}
