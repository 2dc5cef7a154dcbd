package upstream

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/xiaoxiao0301/lx-source-resolver/internal/quality"
	"github.com/xiaoxiao0301/lx-source-resolver/internal/validator"
	"github.com/xiaoxiao0301/lx-source-resolver/pkg/logger"
)

// backupBitrates 备用接口 br 参数
var backupBitrates = map[quality.Tier]string{
	quality.Tier128k: "128",
	quality.Tier192k: "192",
	quality.Tier320k: "320",
	quality.TierFLAC: "999",
}

// backupSources 备用接口 source 参数
var backupSources = map[Platform]string{
	PlatformNetease: "netease",
	PlatformQQ:      "tencent",
	PlatformKugou:   "kugou",
	PlatformKuwo:    "kuwo",
	PlatformMigu:    "migu",
}

var backupSchema = validator.Schema{
	URLPath:     "url",
	QualityPath: "br",
}

// BackupAPIClient 多源聚合接口客户端
// GET {base}?types=url&source={source}&id={id}&br={bitrate}
type BackupAPIClient struct {
	*Client
	platforms map[Platform]bool
	tiers     quality.TierSet
}

// NewBackupAPIClient 创建备用接口客户端，platforms 为空时支持全部平台
func NewBackupAPIClient(cfg ClientConfig, platforms []Platform, log logger.Logger) *BackupAPIClient {
	if len(platforms) == 0 {
		platforms = Platforms()
	}

	set := make(map[Platform]bool, len(platforms))
	for _, p := range platforms {
		set[p] = true
	}

	return &BackupAPIClient{
		Client:    NewClient(cfg, log),
		platforms: set,
		tiers:     quality.NewTierSet(quality.Tier128k, quality.Tier192k, quality.Tier320k, quality.TierFLAC),
	}
}

// Supports 是否支持平台
func (b *BackupAPIClient) Supports(platform Platform) bool {
	return b.platforms[platform]
}

// Tiers 支持的音质
func (b *BackupAPIClient) Tiers(Platform) quality.TierSet {
	return b.tiers
}

// Schema 响应结构：根对象即数据
func (b *BackupAPIClient) Schema() validator.Schema {
	return backupSchema
}

// Bitrate 音质对应的 br 参数
func (b *BackupAPIClient) Bitrate(tier quality.Tier) string {
	if br, ok := backupBitrates[tier]; ok {
		return br
	}
	return backupBitrates[quality.Tier128k]
}

// Fetch 获取播放地址原始响应
func (b *BackupAPIClient) Fetch(ctx context.Context, songID string, tier quality.Tier, platform Platform) ([]byte, error) {
	q := url.Values{}
	q.Set("types", "url")
	q.Set("source", backupSources[platform])
	q.Set("id", songID)
	q.Set("br", b.Bitrate(tier))
	return b.Get(ctx, q, 0)
}

// Search 关键词搜索
// GET {base}?types=search&source={source}&name={keyword}&count={limit}&pages={page}
func (b *BackupAPIClient) Search(ctx context.Context, platform Platform, keyword string, page, limit int) ([]SearchResult, error) {
	q := url.Values{}
	q.Set("types", "search")
	q.Set("source", backupSources[platform])
	q.Set("name", keyword)
	q.Set("count", strconv.Itoa(limit))
	q.Set("pages", strconv.Itoa(page))

	body, err := b.Get(ctx, q, 0)
	if err != nil {
		return nil, err
	}

	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return nil, fmt.Errorf("unexpected search response: %.64s", body)
	}

	var results []SearchResult
	root.ForEach(func(_, item gjson.Result) bool {
		id := item.Get("id").String()
		if id == "" {
			return true
		}

		var singers []string
		item.Get("artist").ForEach(func(_, a gjson.Result) bool {
			singers = append(singers, a.String())
			return true
		})
		singer := strings.Join(singers, "/")
		if singer == "" {
			singer = UnknownSinger
		}

		results = append(results, SearchResult{
			SongMID:   id,
			ID:        id,
			Name:      item.Get("name").String(),
			Singer:    singer,
			AlbumName: item.Get("album").String(),
			Source:    platform.Code(),
			Interval:  DefaultInterval,
		})
		return true
	})
	return results, nil
}
