package resolver

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/xiaoxiao0301/lx-source-resolver/internal/upstream"
	"github.com/xiaoxiao0301/lx-source-resolver/pkg/errors"
)

// IDAliases 歌曲ID可能出现的字段名，按优先级排列
var IDAliases = []string{"songmid", "id", "mid", "hash", "copyrightId"}

// SongRequest 解析请求中的歌曲
type SongRequest struct {
	ID       string
	Name     string
	Singer   string
	Platform upstream.Platform
}

// NewSongRequest 从宿主的 musicInfo 构造请求
func NewSongRequest(musicInfo map[string]interface{}, platform upstream.Platform) (SongRequest, error) {
	id, ok := NormalizeID(musicInfo)
	if !ok {
		return SongRequest{}, errors.New(errors.KindParamError, "missing song id")
	}
	return SongRequest{
		ID:       id,
		Name:     stringify(musicInfo["name"]),
		Singer:   stringify(musicInfo["singer"]),
		Platform: platform,
	}, nil
}

// NormalizeID 返回第一个非空别名字段的值
func NormalizeID(musicInfo map[string]interface{}) (string, bool) {
	for _, alias := range IDAliases {
		if id := stringify(musicInfo[alias]); id != "" {
			return id, true
		}
	}
	return "", false
}

func stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return ""
	}
}
