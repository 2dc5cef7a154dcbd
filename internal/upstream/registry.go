package upstream

import (
	"context"
	"fmt"

	"github.com/xiaoxiao0301/lx-source-resolver/pkg/config"
	"github.com/xiaoxiao0301/lx-source-resolver/pkg/logger"
)

// Prober 可探测可达性的提供方
type Prober interface {
	Probe(ctx context.Context) error
}

// NewProviders 按配置顺序创建提供方
func NewProviders(cfgs []config.ProviderConfig, log logger.Logger) ([]Provider, error) {
	providers := make([]Provider, 0, len(cfgs))
	for _, pc := range cfgs {
		platforms := make([]Platform, 0, len(pc.Platforms))
		for _, name := range pc.Platforms {
			p, ok := ParsePlatform(name)
			if !ok {
				return nil, fmt.Errorf("provider %q: unknown platform %q", pc.ID, name)
			}
			platforms = append(platforms, p)
		}

		cc := ClientConfig{
			ID:        pc.ID,
			BaseURL:   pc.BaseURL,
			Timeout:   pc.Timeout,
			RateLimit: pc.RateLimit,
			Burst:     pc.Burst,
			UserAgent: pc.UserAgent,
		}

		switch pc.Kind {
		case config.ProviderKindMain:
			providers = append(providers, NewMainAPIClient(cc, platforms, pc.SearchTimeout, log))
		case config.ProviderKindBackup:
			providers = append(providers, NewBackupAPIClient(cc, platforms, log))
		default:
			return nil, fmt.Errorf("provider %q: unknown kind %q", pc.ID, pc.Kind)
		}
	}
	return providers, nil
}

// ForPlatform 过滤出支持平台的提供方（保持顺序）
func ForPlatform(providers []Provider, platform Platform) []Provider {
	var out []Provider
	for _, p := range providers {
		if p.Supports(platform) {
			out = append(out, p)
		}
	}
	return out
}
