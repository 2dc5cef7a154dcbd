// Package upstream 上游音源提供方客户端
package upstream

import (
	"context"
	"strings"
	"time"

	"github.com/xiaoxiao0301/lx-source-resolver/internal/quality"
	"github.com/xiaoxiao0301/lx-source-resolver/internal/validator"
)

// Platform 音乐平台
type Platform string

const (
	PlatformNetease Platform = "netease"
	PlatformQQ      Platform = "qq"
	PlatformKugou   Platform = "kugou"
	PlatformKuwo    Platform = "kuwo"
	PlatformMigu    Platform = "migu"
)

// 平台 <-> 宿主来源代码
var platformCodes = map[Platform]string{
	PlatformNetease: "wy",
	PlatformQQ:      "tx",
	PlatformKugou:   "kg",
	PlatformKuwo:    "kw",
	PlatformMigu:    "mg",
}

var platformNames = map[Platform]string{
	PlatformNetease: "网易云音乐",
	PlatformQQ:      "QQ音乐",
	PlatformKugou:   "酷狗音乐",
	PlatformKuwo:    "酷我音乐",
	PlatformMigu:    "咪咕音乐",
}

// Platforms 全部平台（固定顺序）
func Platforms() []Platform {
	return []Platform{PlatformNetease, PlatformQQ, PlatformKugou, PlatformKuwo, PlatformMigu}
}

// ParsePlatform 解析平台名或宿主来源代码（忽略大小写）
func ParsePlatform(s string) (Platform, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for p, code := range platformCodes {
		if s == string(p) || s == code {
			return p, true
		}
	}
	return "", false
}

// Code 宿主来源代码，例如 wy
func (p Platform) Code() string {
	return platformCodes[p]
}

// DisplayName 平台中文名
func (p Platform) DisplayName() string {
	return platformNames[p]
}

// Provider 上游提供方
//
// Resolver 只会对 Supports 返回 true 的平台调用 Fetch。
type Provider interface {
	ID() string
	Supports(platform Platform) bool
	Tiers(platform Platform) quality.TierSet
	Schema() validator.Schema
	Timeout() time.Duration
	// Fetch 返回原始响应体；网络错误与非2xx状态返回 *errors.Error
	Fetch(ctx context.Context, songID string, tier quality.Tier, platform Platform) ([]byte, error)
}

// Searcher 可选的搜索能力
type Searcher interface {
	Search(ctx context.Context, platform Platform, keyword string, page, limit int) ([]SearchResult, error)
}

// SearchResult 搜索结果条目
type SearchResult struct {
	SongMID   string `json:"songmid"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	Singer    string `json:"singer"`
	AlbumName string `json:"albumName"`
	Source    string `json:"source"`
	Interval  string `json:"interval"`
	Img       string `json:"img"`
}

// DefaultInterval 缺少时长时使用
const DefaultInterval = "03:00"

// UnknownSinger 缺少歌手时使用
const UnknownSinger = "未知"
