package plugin

import (
	"github.com/xiaoxiao0301/lx-source-resolver/internal/quality"
	"github.com/xiaoxiao0301/lx-source-resolver/internal/upstream"
	"github.com/xiaoxiao0301/lx-source-resolver/pkg/errors"
)

// Announcement 启动时发送给宿主的能力声明
type Announcement struct {
	Name         string                `json:"name,omitempty"`
	OpenDevTools bool                  `json:"openDevTools"`
	Sources      map[string]SourceInfo `json:"sources"`
}

// SourceInfo 单个来源的能力
type SourceInfo struct {
	Name               string            `json:"name"`
	Type               string            `json:"type"`
	Actions            []string          `json:"actions"`
	Qualitys           []string          `json:"qualitys"`
	QualityName        map[string]string `json:"qualityName"`
	MaxSearchCount     int               `json:"maxSearchCount"`
	HotSearchable      bool              `json:"hotSearchable"`
	Importable         bool              `json:"importable"`
	SupportBitRateTest bool              `json:"supportBitRateTest"`
}

// Inited 由提供方配置静态推导能力声明；服务被禁用时返回错误
func (p *Plugin) Inited() (*Announcement, error) {
	if p.status.Disabled() {
		msg := p.status.Snapshot().Reason
		if msg == "" {
			msg = "service is disabled"
		}
		return nil, errors.New(errors.KindServiceDisabled, msg)
	}

	ann := &Announcement{Name: p.cfg.Name, Sources: make(map[string]SourceInfo)}
	for _, platform := range upstream.Platforms() {
		providers := upstream.ForPlatform(p.resolver.Providers(), platform)
		if len(providers) == 0 {
			continue
		}

		var tiers []quality.Tier
		searchable := false
		for _, provider := range providers {
			tiers = append(tiers, provider.Tiers(platform)...)
			if _, ok := provider.(upstream.Searcher); ok {
				searchable = true
			}
		}
		set := quality.NewTierSet(tiers...)

		names := make(map[string]string, len(set))
		for _, t := range set {
			names[t.String()] = t.DisplayName()
		}

		actions := []string{ActionMusicURL}
		if searchable {
			actions = append(actions, ActionSearch)
		}

		ann.Sources[platform.Code()] = SourceInfo{
			Name:               platform.DisplayName(),
			Type:               "music",
			Actions:            actions,
			Qualitys:           set.Strings(),
			QualityName:        names,
			MaxSearchCount:     p.cfg.MaxSearchCount,
			HotSearchable:      searchable,
			Importable:         true,
			SupportBitRateTest: false,
		}
	}
	return ann, nil
}
