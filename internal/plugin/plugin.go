// Package plugin 宿主插件协议适配
package plugin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/xiaoxiao0301/lx-source-resolver/internal/resolver"
	"github.com/xiaoxiao0301/lx-source-resolver/internal/status"
	"github.com/xiaoxiao0301/lx-source-resolver/internal/upstream"
	"github.com/xiaoxiao0301/lx-source-resolver/pkg/errors"
	"github.com/xiaoxiao0301/lx-source-resolver/pkg/logger"
)

// 宿主动作
const (
	ActionMusicURL = "musicUrl"
	ActionSearch   = "search"
)

const (
	defaultPage           = 1
	defaultLimit          = 10
	defaultMaxSearchCount = 20
)

// Request 宿主请求 {action, source, info}
type Request struct {
	Action string                 `json:"action"`
	Source string                 `json:"source"`
	Info   map[string]interface{} `json:"info"`
}

// DecodeRequest 解析宿主请求体，数字解码为 json.Number
func DecodeRequest(r io.Reader) (Request, error) {
	var req Request
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		return Request{}, err
	}
	return req, nil
}

// Config 插件配置
type Config struct {
	Name           string // 宿主展示的插件名
	MaxSearchCount int
}

// Plugin 将 Resolver 适配为宿主的请求/响应协议
type Plugin struct {
	resolver *resolver.Resolver
	status   *status.Tracker
	cfg      Config
	logger   logger.Logger
}

// New 创建插件
func New(r *resolver.Resolver, tracker *status.Tracker, cfg Config, log logger.Logger) *Plugin {
	if cfg.MaxSearchCount <= 0 {
		cfg.MaxSearchCount = defaultMaxSearchCount
	}
	if tracker == nil {
		tracker = status.NewTracker()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Plugin{resolver: r, status: tracker, cfg: cfg, logger: log}
}

// Handle 分发宿主请求
//
// musicUrl 成功返回播放地址字符串，失败返回 Error() 为用户提示的错误；
// search 总是返回 *SearchResponse。
func (p *Plugin) Handle(ctx context.Context, req Request) (interface{}, error) {
	switch req.Action {
	case ActionMusicURL:
		url, err := p.musicURL(ctx, req)
		if err != nil {
			return nil, err
		}
		return url, nil
	case ActionSearch:
		return p.Search(ctx, req), nil
	default:
		return nil, errors.New(errors.KindParamError, fmt.Sprintf("unsupported action: %s", req.Action))
	}
}

func (p *Plugin) musicURL(ctx context.Context, req Request) (string, error) {
	musicInfo, ok := req.Info["musicInfo"].(map[string]interface{})
	if !ok || len(musicInfo) == 0 {
		return "", errors.New(errors.KindParamError, "missing music info")
	}

	tier, _ := req.Info["type"].(string)
	if tier == "" {
		tier = "128k"
	}

	song, err := resolver.NewSongRequest(musicInfo, platformOf(req.Source))
	if err != nil {
		return "", err
	}

	res, err := p.resolver.Resolve(ctx, song, tier)
	if err != nil {
		return "", err
	}
	return res.URL, nil
}

// platformOf 无法识别的来源原样保留，由 Resolver 报告不支持
func platformOf(source string) upstream.Platform {
	if platform, ok := upstream.ParsePlatform(source); ok {
		return platform
	}
	return upstream.Platform(source)
}

// sourceCode 响应中回显的来源代码
func sourceCode(source string) string {
	if platform, ok := upstream.ParsePlatform(source); ok {
		return platform.Code()
	}
	return source
}
