// Package resolver 多提供方回退解析
//
// 状态流转: CACHE_LOOKUP -> NEGOTIATING -> TRYING_PROVIDER(i) -> SUCCESS | TRYING_PROVIDER(i+1) | EXHAUSTED
package resolver

import (
	"context"
	stderrors "errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/xiaoxiao0301/lx-source-resolver/internal/cache"
	"github.com/xiaoxiao0301/lx-source-resolver/internal/metrics"
	"github.com/xiaoxiao0301/lx-source-resolver/internal/quality"
	"github.com/xiaoxiao0301/lx-source-resolver/internal/status"
	"github.com/xiaoxiao0301/lx-source-resolver/internal/upstream"
	"github.com/xiaoxiao0301/lx-source-resolver/internal/validator"
	"github.com/xiaoxiao0301/lx-source-resolver/pkg/errors"
	"github.com/xiaoxiao0301/lx-source-resolver/pkg/logger"
)

const tracerName = "lx-source-resolver/resolver"

// Result 解析成功结果
type Result struct {
	URL           string `json:"url"`
	ObservedTier  string `json:"observed_tier"`
	RequestedTier string `json:"requested_tier"`
	ProviderID    string `json:"provider_id"`
	SongName      string `json:"song_name,omitempty"`
	Artist        string `json:"artist,omitempty"`
	Quality       string `json:"quality,omitempty"`
	Cached        bool   `json:"cached"`
}

// Resolver 按优先级依次尝试提供方
type Resolver struct {
	providers []upstream.Provider
	cache     cache.Store
	status    *status.Tracker
	logger    logger.Logger
	tracer    trace.Tracer
	metrics   *metrics.Metrics
}

// New 创建解析器；providers 的顺序即优先级
func New(providers []upstream.Provider, store cache.Store, tracker *status.Tracker, log logger.Logger) *Resolver {
	if store == nil {
		store = cache.NewMemoryCache(cache.DefaultTTL, nil)
	}
	if tracker == nil {
		tracker = status.NewTracker()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Resolver{
		providers: providers,
		cache:     store,
		status:    tracker,
		logger:    log,
		tracer:    otel.Tracer(tracerName),
	}
}

// WithMetrics 设置指标采集
func (r *Resolver) WithMetrics(m *metrics.Metrics) *Resolver {
	r.metrics = m
	return r
}

// Providers 已配置的提供方
func (r *Resolver) Providers() []upstream.Provider {
	return r.providers
}

// Cache 缓存存储
func (r *Resolver) Cache() cache.Store {
	return r.cache
}

// Resolve 解析播放地址；失败时返回 *Failure
func (r *Resolver) Resolve(ctx context.Context, req SongRequest, requestedTier string) (*Result, error) {
	if requestedTier == "" {
		requestedTier = quality.DefaultTier.String()
	}
	label := quality.Label(requestedTier)

	ctx, span := r.tracer.Start(ctx, "resolver.Resolve", trace.WithAttributes(
		attribute.String("song.platform", string(req.Platform)),
		attribute.String("song.id", req.ID),
		attribute.String("quality.requested", label),
	))
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(
		logger.String("platform", string(req.Platform)),
		logger.String("song_id", req.ID),
		logger.String("tier", label),
	)

	res, failure := r.resolve(ctx, log, req, requestedTier, label)
	if failure != nil {
		r.metrics.ObserveResolve(string(req.Platform), string(failure.Kind))
		span.SetStatus(codes.Error, string(failure.Kind))
		span.SetAttributes(attribute.Int("resolver.attempts", len(failure.Attempts)))
		return nil, failure
	}

	result := "success"
	if res.Cached {
		result = "cached"
	}
	r.metrics.ObserveResolve(string(req.Platform), result)

	span.SetAttributes(
		attribute.String("resolver.provider", res.ProviderID),
		attribute.String("quality.observed", res.ObservedTier),
		attribute.Bool("resolver.cached", res.Cached),
	)
	span.SetStatus(codes.Ok, "")
	return res, nil
}

func (r *Resolver) resolve(ctx context.Context, log logger.Logger, req SongRequest, requestedTier, label string) (*Result, *Failure) {
	if req.ID == "" {
		return nil, newFailure(errors.KindParamError, MsgMissingID)
	}

	if r.status.Disabled() {
		msg := r.status.Snapshot().Reason
		if msg == "" {
			msg = MsgDisabled
		}
		return nil, newFailure(errors.KindServiceDisabled, msg)
	}

	// CACHE_LOOKUP
	key := cache.Key{Platform: string(req.Platform), SongID: req.ID, Tier: label}
	entry, err := r.cache.Get(ctx, key)
	switch {
	case err == nil:
		log.Debug("Cache hit", logger.String("provider", entry.ProviderID))
		return &Result{
			URL:           entry.URL,
			ObservedTier:  entry.Tier,
			RequestedTier: label,
			ProviderID:    entry.ProviderID,
			SongName:      entry.SongName,
			Artist:        entry.Artist,
			Quality:       entry.Quality,
			Cached:        true,
		}, nil
	case !stderrors.Is(err, cache.ErrCacheMiss):
		log.Warn("Cache lookup failed", logger.Error(err))
	}

	// NEGOTIATING
	candidates := upstream.ForPlatform(r.providers, req.Platform)
	if len(candidates) == 0 {
		f := newFailure(errors.KindUnsupportedPlatform, MsgUnsupported)
		f.Attempts = []ProviderAttempt{{Tier: label, Outcome: OutcomeUnsupported, Kind: errors.KindUnsupportedPlatform}}
		log.Warn("No provider for platform")
		return nil, f
	}

	// TRYING_PROVIDER(i)
	attempts := make([]ProviderAttempt, 0, len(candidates))
	for _, p := range candidates {
		tier := quality.Negotiate(requestedTier, p.Tiers(req.Platform))
		attempt, result := r.try(ctx, p, req, tier)
		attempts = append(attempts, attempt)
		r.metrics.ObserveAttempt(attempt.ProviderID, string(attempt.Outcome), attempt.Latency)

		if attempt.Outcome == OutcomeSuccess {
			r.store(ctx, log, key, tier, p.ID(), result)
			log.Info("Resolved",
				logger.String("provider", p.ID()),
				logger.String("observed_tier", tier.String()),
				logger.Int("attempts", len(attempts)),
			)
			return &Result{
				URL:           result.URL,
				ObservedTier:  tier.String(),
				RequestedTier: label,
				ProviderID:    p.ID(),
				SongName:      result.Meta.Name,
				Artist:        result.Meta.Artist,
				Quality:       result.Meta.Quality,
			}, nil
		}

		log.Warn("Provider attempt failed",
			logger.String("provider", attempt.ProviderID),
			logger.String("negotiated_tier", attempt.Tier),
			logger.String("outcome", string(attempt.Outcome)),
			logger.String("kind", string(attempt.Kind)),
			logger.String("detail", attempt.Detail),
			logger.Duration("latency", attempt.Latency),
		)

		if ctx.Err() != nil {
			break
		}
	}

	// EXHAUSTED
	f := exhausted(attempts)
	log.Warn("Resolution exhausted",
		logger.String("kind", string(f.Kind)),
		logger.Int("attempts", len(attempts)),
		logger.Any("attempt_detail", attempts),
	)
	return nil, f
}

// try 调用单个提供方并校验响应
func (r *Resolver) try(ctx context.Context, p upstream.Provider, req SongRequest, tier quality.Tier) (ProviderAttempt, validator.Result) {
	ctx, span := r.tracer.Start(ctx, "provider.Fetch", trace.WithAttributes(
		attribute.String("provider.id", p.ID()),
		attribute.String("quality.negotiated", tier.String()),
		attribute.Int64("provider.timeout_ms", p.Timeout().Milliseconds()),
	))
	defer span.End()

	attempt := ProviderAttempt{ProviderID: p.ID(), Tier: tier.String()}
	start := time.Now()

	raw, err := p.Fetch(ctx, req.ID, tier, req.Platform)
	attempt.Latency = time.Since(start)
	if err != nil {
		attempt.Kind = errors.KindOf(err)
		if attempt.Kind == "" {
			attempt.Kind = errors.KindNetworkError
		}
		attempt.Code = codeOf(err)
		attempt.Outcome = outcomeOf(attempt.Kind)
		attempt.Detail = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, string(attempt.Kind))
		return attempt, validator.Result{}
	}

	res := validator.Validate(raw, p.Schema())
	if !res.OK {
		attempt.Kind = res.Kind
		attempt.Code = res.Code
		attempt.Outcome = outcomeOf(res.Kind)
		attempt.Detail = res.Detail
		span.SetStatus(codes.Error, string(res.Kind))
		return attempt, res
	}

	attempt.Outcome = OutcomeSuccess
	span.SetStatus(codes.Ok, "")
	return attempt, res
}

// store 写入前顺带清理过期条目
func (r *Resolver) store(ctx context.Context, log logger.Logger, key cache.Key, tier quality.Tier, providerID string, res validator.Result) {
	if swept := r.cache.SweepExpired(ctx); swept > 0 {
		log.Debug("Swept expired cache entries", logger.Int("count", swept))
	}

	err := r.cache.Put(ctx, key, &cache.Entry{
		URL:        res.URL,
		Tier:       tier.String(),
		ProviderID: providerID,
		SongName:   res.Meta.Name,
		Artist:     res.Meta.Artist,
		Quality:    res.Meta.Quality,
	})
	if err != nil {
		log.Warn("Cache write failed", logger.Error(err))
	}
}

// codeOf 取出 API_ERROR 携带的状态码
func codeOf(err error) int64 {
	var e *errors.Error
	if !stderrors.As(err, &e) {
		return 0
	}
	if details, ok := e.Details.(map[string]interface{}); ok {
		if code, ok := details["code"].(int64); ok {
			return code
		}
	}
	return 0
}
