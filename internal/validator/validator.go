// Package validator 上游响应校验
//
// 校验按固定顺序进行，第一个失败的检查决定错误类型:
// 空响应/无效响应/JSON解析 -> 状态码 -> 成功标志 -> data -> url字段 -> url格式。
package validator

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/xiaoxiao0301/lx-source-resolver/pkg/errors"
)

// minPayloadLen 小于该长度的响应视为无效
const minPayloadLen = 5

// Schema 描述提供方响应中各字段的 gjson 路径
type Schema struct {
	CodePath    string // 状态码字段，空表示不检查
	SuccessCode int64
	SuccessPath string // 成功标志字段，空表示不检查
	DataPath    string // data 字段，空表示根对象

	// 以下路径相对于 data
	URLPath     string
	NamePath    string
	ArtistPath  string
	QualityPath string
}

// Metadata 响应中回显的歌曲信息，仅用于诊断
type Metadata struct {
	Name    string `json:"name,omitempty"`
	Artist  string `json:"artist,omitempty"`
	Quality string `json:"quality,omitempty"`
}

// Result 校验结果
type Result struct {
	OK     bool
	URL    string
	Meta   Metadata
	Kind   errors.Kind
	Detail string
	Code   int64 // API_ERROR 时观察到的状态码
}

// Err 失败结果转换为结构化错误，成功时返回 nil
func (r Result) Err() *errors.Error {
	if r.OK {
		return nil
	}
	e := errors.New(r.Kind, r.Detail)
	if r.Kind == errors.KindAPIError {
		e.WithDetails(map[string]interface{}{"code": r.Code})
	}
	return e
}

func fail(kind errors.Kind, format string, args ...interface{}) Result {
	return Result{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Validate 校验原始响应并提取音频URL
func Validate(raw []byte, schema Schema) Result {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return fail(errors.KindEmptyResponse, "empty response body")
	}
	if len(trimmed) < minPayloadLen {
		return fail(errors.KindInvalidResponse, "response too short: %q", trimmed)
	}
	if !gjson.ValidBytes(trimmed) {
		return fail(errors.KindJSONParseError, "response is not valid JSON: %s", preview(trimmed))
	}

	root := gjson.ParseBytes(trimmed)
	// JSON 文本被包在字符串里时再解析一次
	if root.Type == gjson.String && gjson.Valid(root.Str) {
		root = gjson.Parse(root.Str)
	}
	if !root.IsObject() {
		return fail(errors.KindInvalidResponse, "response is not a JSON object: %s", preview(trimmed))
	}

	if schema.CodePath != "" {
		if code := root.Get(schema.CodePath); code.Exists() && code.Int() != schema.SuccessCode {
			r := fail(errors.KindAPIError, "api returned status %s", code.Raw)
			r.Code = code.Int()
			return r
		}
	}

	if schema.SuccessPath != "" {
		if ok := root.Get(schema.SuccessPath); ok.Exists() && !truthy(ok) {
			msg := root.Get("message").String()
			if msg == "" {
				msg = root.Get("msg").String()
			}
			return fail(errors.KindAPIFailed, "api reported failure: %s", msg)
		}
	}

	data := root
	if schema.DataPath != "" {
		data = root.Get(schema.DataPath)
		if !truthy(data) {
			return fail(errors.KindNoData, "response has no %s", schema.DataPath)
		}
	}

	u := data.Get(schema.URLPath)
	if !truthy(u) || u.String() == "" {
		return fail(errors.KindNoAudioURL, "response has no %s", schema.URLPath)
	}

	audioURL := strings.TrimSpace(u.String())
	if !isHTTPURL(audioURL) {
		return fail(errors.KindInvalidURL, "invalid audio url: %s", audioURL)
	}

	return Result{
		OK:  true,
		URL: audioURL,
		Meta: Metadata{
			Name:    field(data, schema.NamePath),
			Artist:  artists(data, schema.ArtistPath),
			Quality: field(data, schema.QualityPath),
		},
	}
}

// truthy 与 JS 的真值判断一致：缺失、null、false、0、"" 均为假
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.Null:
		return false
	case gjson.False:
		return false
	case gjson.Number:
		return r.Num != 0
	case gjson.String:
		return r.Str != ""
	default:
		return r.Exists()
	}
}

func isHTTPURL(s string) bool {
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return false
	}
	u, err := url.Parse(s)
	return err == nil && u.Host != ""
}

func field(data gjson.Result, path string) string {
	if path == "" {
		return ""
	}
	return data.Get(path).String()
}

// artists 歌手字段可能是字符串、字符串数组或 {name} 对象数组
func artists(data gjson.Result, path string) string {
	if path == "" {
		return ""
	}
	r := data.Get(path)
	if !r.IsArray() {
		return r.String()
	}
	var names []string
	r.ForEach(func(_, v gjson.Result) bool {
		if v.IsObject() {
			v = v.Get("name")
		}
		if s := v.String(); s != "" {
			names = append(names, s)
		}
		return true
	})
	return strings.Join(names, "/")
}

func preview(b []byte) string {
	const limit = 64
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
