package plugin

import (
	"context"
	"encoding/json"

	"github.com/xiaoxiao0301/lx-source-resolver/internal/upstream"
	"github.com/xiaoxiao0301/lx-source-resolver/pkg/logger"
)

// SearchResponse 搜索响应，失败时为空列表
type SearchResponse struct {
	List    []upstream.SearchResult `json:"list"`
	Total   int                     `json:"total"`
	Page    int                     `json:"page"`
	Limit   int                     `json:"limit"`
	Source  string                  `json:"source"`
	AllPage int                     `json:"allPage"`
}

func emptySearch(source string, page, limit int) *SearchResponse {
	return &SearchResponse{
		List:    []upstream.SearchResult{},
		Page:    page,
		Limit:   limit,
		Source:  source,
		AllPage: 1,
	}
}

// Search 依次询问平台的可搜索提供方，取第一个非空结果；从不返回错误
func (p *Plugin) Search(ctx context.Context, req Request) *SearchResponse {
	source := sourceCode(req.Source)

	keyword, _ := req.Info["keyword"].(string)
	if keyword == "" {
		return emptySearch(source, defaultPage, defaultLimit)
	}

	page := intValue(req.Info["page"], defaultPage)
	limit := intValue(req.Info["limit"], defaultLimit)
	if limit > p.cfg.MaxSearchCount {
		limit = p.cfg.MaxSearchCount
	}

	if p.status.Disabled() {
		return emptySearch(source, page, limit)
	}

	platform := platformOf(req.Source)
	log := p.logger.WithContext(ctx).WithFields(
		logger.String("platform", string(platform)),
		logger.String("keyword", keyword),
	)

	for _, provider := range upstream.ForPlatform(p.resolver.Providers(), platform) {
		searcher, ok := provider.(upstream.Searcher)
		if !ok {
			continue
		}

		results, err := searcher.Search(ctx, platform, keyword, page, limit)
		if err != nil {
			log.Warn("Search failed", logger.String("provider", provider.ID()), logger.Error(err))
			continue
		}
		if len(results) == 0 {
			continue
		}

		if len(results) > limit {
			results = results[:limit]
		}
		return &SearchResponse{
			List:    results,
			Total:   len(results),
			Page:    page,
			Limit:   limit,
			Source:  source,
			AllPage: allPages(len(results), limit),
		}
	}

	return emptySearch(source, page, limit)
}

// allPages max(1, ceil(total/limit))
func allPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 1
	}
	pages := (total + limit - 1) / limit
	if pages < 1 {
		return 1
	}
	return pages
}

func intValue(v interface{}, def int) int {
	var n int
	switch val := v.(type) {
	case float64:
		n = int(val)
	case int:
		n = val
	case int64:
		n = int(val)
	case json.Number:
		i, err := val.Int64()
		if err != nil {
			return def
		}
		n = int(i)
	default:
		return def
	}
	if n <= 0 {
		return def
	}
	return n
}
