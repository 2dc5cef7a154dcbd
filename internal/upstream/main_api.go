package upstream

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"github.com/xiaoxiao0301/lx-source-resolver/internal/quality"
	"github.com/xiaoxiao0301/lx-source-resolver/internal/validator"
	"github.com/xiaoxiao0301/lx-source-resolver/pkg/logger"
)

// DefaultSearchTimeout 搜索请求默认超时
const DefaultSearchTimeout = 5 * time.Second

// mainQualityCodes 主接口 yz 参数
var mainQualityCodes = map[quality.Tier]string{
	quality.Tier128k:   "1",
	quality.Tier320k:   "2",
	quality.TierFLAC:   "3",
	quality.TierFLAC24: "4",
	quality.TierHiRes:  "5",
	quality.TierAtmos:  "6",
	quality.TierMaster: "7",
}

var mainSchema = validator.Schema{
	CodePath:    "status",
	SuccessCode: 200,
	SuccessPath: "success",
	DataPath:    "data",
	URLPath:     "url",
	NamePath:    "name",
	ArtistPath:  "artists",
	QualityPath: "level",
}

// MainAPIClient 单源解析接口客户端
// GET {base}?id={id}&yz={code}，搜索为 GET {base}?msg={keyword}&sm={limit}
type MainAPIClient struct {
	*Client
	platforms     map[Platform]bool
	tiers         quality.TierSet
	searchTimeout time.Duration
}

// NewMainAPIClient 创建主接口客户端，platforms 为空时仅支持网易云
func NewMainAPIClient(cfg ClientConfig, platforms []Platform, searchTimeout time.Duration, log logger.Logger) *MainAPIClient {
	if len(platforms) == 0 {
		platforms = []Platform{PlatformNetease}
	}
	if searchTimeout <= 0 {
		searchTimeout = DefaultSearchTimeout
	}

	set := make(map[Platform]bool, len(platforms))
	for _, p := range platforms {
		set[p] = true
	}

	tiers := make([]quality.Tier, 0, len(mainQualityCodes))
	for t := range mainQualityCodes {
		tiers = append(tiers, t)
	}

	return &MainAPIClient{
		Client:        NewClient(cfg, log),
		platforms:     set,
		tiers:         quality.NewTierSet(tiers...),
		searchTimeout: searchTimeout,
	}
}

// Supports 是否支持平台
func (m *MainAPIClient) Supports(platform Platform) bool {
	return m.platforms[platform]
}

// Tiers 支持的音质
func (m *MainAPIClient) Tiers(Platform) quality.TierSet {
	return m.tiers
}

// Schema 响应结构
func (m *MainAPIClient) Schema() validator.Schema {
	return mainSchema
}

// QualityCode 音质对应的 yz 参数，未知音质使用 128k
func (m *MainAPIClient) QualityCode(tier quality.Tier) string {
	if code, ok := mainQualityCodes[tier]; ok {
		return code
	}
	return mainQualityCodes[quality.Tier128k]
}

// Fetch 获取播放地址原始响应
func (m *MainAPIClient) Fetch(ctx context.Context, songID string, tier quality.Tier, _ Platform) ([]byte, error) {
	q := url.Values{}
	q.Set("id", songID)
	q.Set("yz", m.QualityCode(tier))
	return m.Get(ctx, q, 0)
}

// Search 关键词搜索；接口返回单个对象或对象数组
func (m *MainAPIClient) Search(ctx context.Context, platform Platform, keyword string, _, limit int) ([]SearchResult, error) {
	q := url.Values{}
	q.Set("msg", keyword)
	q.Set("sm", strconv.Itoa(limit))

	body, err := m.Get(ctx, q, m.searchTimeout)
	if err != nil {
		return nil, err
	}

	root := gjson.ParseBytes(body)
	if root.Get("status").Int() != 200 || !root.Get("success").Bool() {
		return nil, nil
	}
	data := root.Get("data")
	if !data.Exists() || data.Type == gjson.Null {
		return nil, nil
	}

	var results []SearchResult
	collect := func(item gjson.Result) {
		id := item.Get("id").String()
		if id == "" {
			return
		}
		name := item.Get("name").String()
		if name == "" {
			name = keyword
		}
		singer := item.Get("artists").String()
		if singer == "" {
			singer = UnknownSinger
		}
		results = append(results, SearchResult{
			SongMID:   id,
			ID:        id,
			Name:      name,
			Singer:    singer,
			AlbumName: item.Get("album").String(),
			Source:    platform.Code(),
			Interval:  DefaultInterval,
			Img:       item.Get("pic").String(),
		})
	}

	if data.IsArray() {
		data.ForEach(func(_, item gjson.Result) bool {
			collect(item)
			return true
		})
	} else {
		collect(data)
	}
	return results, nil
}
