package plugin

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaoxiao0301/lx-source-resolver/internal/resolver"
	"github.com/xiaoxiao0301/lx-source-resolver/internal/status"
	"github.com/xiaoxiao0301/lx-source-resolver/internal/upstream"
	"github.com/xiaoxiao0301/lx-source-resolver/pkg/errors"
	"github.com/xiaoxiao0301/lx-source-resolver/pkg/logger"
)

func newPlugin(t *testing.T, tracker *status.Tracker, providers ...upstream.Provider) *Plugin {
	t.Helper()
	r := resolver.New(providers, nil, tracker, logger.Nop())
	return New(r, tracker, Config{Name: "lx source resolver", MaxSearchCount: 20}, logger.Nop())
}

func mainServer(t *testing.T, handler http.HandlerFunc) upstream.Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return upstream.NewMainAPIClient(upstream.ClientConfig{ID: "main", BaseURL: srv.URL}, nil, 0, nil)
}

func decodeRequest(t *testing.T, raw string) Request {
	t.Helper()
	req, err := DecodeRequest(strings.NewReader(raw))
	require.NoError(t, err)
	return req
}

func TestHandle_MusicURL(t *testing.T) {
	p := newPlugin(t, nil, mainServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "186016", r.URL.Query().Get("id"))
		assert.Equal(t, "2", r.URL.Query().Get("yz"))
		w.Write([]byte(`{"status":200,"success":true,"data":{"url":"https://cdn.example/a.mp3"}}`))
	}))

	got, err := p.Handle(context.Background(), decodeRequest(t,
		`{"action":"musicUrl","source":"wy","info":{"type":"320k","musicInfo":{"id":186016,"name":"晴天"}}}`))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/a.mp3", got)
}

func TestHandle_MusicURLLargeNumericID(t *testing.T) {
	p := newPlugin(t, nil, mainServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "9007199254740993", r.URL.Query().Get("id"))
		w.Write([]byte(`{"status":200,"success":true,"data":{"url":"https://cdn.example/a.mp3"}}`))
	}))

	_, err := p.Handle(context.Background(), decodeRequest(t,
		`{"action":"musicUrl","source":"wy","info":{"musicInfo":{"id":9007199254740993}}}`))
	require.NoError(t, err)
}

func TestDecodeRequest_Invalid(t *testing.T) {
	_, err := DecodeRequest(strings.NewReader(`{"action":`))
	assert.Error(t, err)
}

func TestHandle_MusicURLDefaultsTo128k(t *testing.T) {
	p := newPlugin(t, nil, mainServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("yz"))
		w.Write([]byte(`{"status":200,"success":true,"data":{"url":"https://cdn.example/a.mp3"}}`))
	}))

	_, err := p.Handle(context.Background(), decodeRequest(t, `{"action":"musicUrl","source":"wy","info":{"musicInfo":{"songmid":"1"}}}`))
	require.NoError(t, err)
}

func TestHandle_MusicURLFailureIsUserMessage(t *testing.T) {
	p := newPlugin(t, nil, mainServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":200,"success":true,"data":{}}`))
	}))

	got, err := p.Handle(context.Background(), decodeRequest(t, `{"action":"musicUrl","source":"wy","info":{"musicInfo":{"songmid":"1"}}}`))
	require.Error(t, err)
	assert.Nil(t, got)
	assert.Equal(t, resolver.MsgNoSource, err.Error())
}

func TestHandle_MusicURLBadRequests(t *testing.T) {
	p := newPlugin(t, nil, mainServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no upstream call expected")
	}))

	tests := []struct {
		name string
		raw  string
		kind errors.Kind
	}{
		{"missing info", `{"action":"musicUrl","source":"wy"}`, errors.KindParamError},
		{"missing musicInfo", `{"action":"musicUrl","source":"wy","info":{"type":"flac"}}`, errors.KindParamError},
		{"missing id", `{"action":"musicUrl","source":"wy","info":{"musicInfo":{"name":"x"}}}`, errors.KindParamError},
		{"unsupported platform", `{"action":"musicUrl","source":"tx","info":{"musicInfo":{"songmid":"1"}}}`, errors.KindUnsupportedPlatform},
		{"unknown source", `{"action":"musicUrl","source":"spotify","info":{"musicInfo":{"songmid":"1"}}}`, errors.KindUnsupportedPlatform},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Handle(context.Background(), decodeRequest(t, tt.raw))
			require.Error(t, err)
			assert.Equal(t, tt.kind, errors.KindOf(err))
		})
	}
}

func TestHandle_UnsupportedAction(t *testing.T) {
	p := newPlugin(t, nil)
	_, err := p.Handle(context.Background(), Request{Action: "lyric", Source: "wy"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported action: lyric")
}

func TestHandle_Search(t *testing.T) {
	p := newPlugin(t, nil, mainServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "晴天", r.URL.Query().Get("msg"))
		w.Write([]byte(`{"status":200,"success":true,"data":{"id":186016,"name":"晴天","artists":"周杰伦","album":"叶惠美"}}`))
	}))

	got, err := p.Handle(context.Background(), decodeRequest(t, `{"action":"search","source":"wy","info":{"keyword":"晴天","page":1,"limit":10}}`))
	require.NoError(t, err)

	res := got.(*SearchResponse)
	require.Len(t, res.List, 1)
	assert.Equal(t, "186016", res.List[0].SongMID)
	assert.Equal(t, "周杰伦", res.List[0].Singer)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, 1, res.AllPage)
	assert.Equal(t, "wy", res.Source)
}

// 网络失败时搜索降级为空结果
func TestHandle_SearchNetworkError(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	l.Close()

	down := upstream.NewMainAPIClient(upstream.ClientConfig{ID: "main", BaseURL: "http://" + addr}, nil, 0, nil)
	p := newPlugin(t, nil, down)

	got, err := p.Handle(context.Background(), decodeRequest(t, `{"action":"search","source":"wy","info":{"keyword":"晴天","page":2,"limit":5}}`))
	require.NoError(t, err)

	res := got.(*SearchResponse)
	assert.Empty(t, res.List)
	assert.NotNil(t, res.List)
	assert.Equal(t, 0, res.Total)
	assert.Equal(t, 1, res.AllPage)
	assert.Equal(t, 2, res.Page)
	assert.Equal(t, 5, res.Limit)
}

func TestSearch_NoKeyword(t *testing.T) {
	p := newPlugin(t, nil)
	res := p.Search(context.Background(), Request{Action: ActionSearch, Source: "wy", Info: map[string]interface{}{}})
	assert.Equal(t, &SearchResponse{List: []upstream.SearchResult{}, Page: 1, Limit: 10, Source: "wy", AllPage: 1}, res)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"list":[],"total":0,"page":1,"limit":10,"source":"wy","allPage":1}`, string(data))
}

func TestAllPages(t *testing.T) {
	assert.Equal(t, 1, allPages(0, 10))
	assert.Equal(t, 1, allPages(10, 10))
	assert.Equal(t, 2, allPages(11, 10))
	assert.Equal(t, 1, allPages(3, 0))
}

func TestInited(t *testing.T) {
	mainClient := upstream.NewMainAPIClient(upstream.ClientConfig{ID: "main", BaseURL: "http://main.invalid"}, nil, 0, nil)
	backup := upstream.NewBackupAPIClient(upstream.ClientConfig{ID: "backup", BaseURL: "http://backup.invalid"},
		[]upstream.Platform{upstream.PlatformNetease, upstream.PlatformQQ}, nil)
	p := newPlugin(t, nil, mainClient, backup)

	ann, err := p.Inited()
	require.NoError(t, err)
	assert.Equal(t, "lx source resolver", ann.Name)
	assert.False(t, ann.OpenDevTools)
	require.Len(t, ann.Sources, 2)

	wy := ann.Sources["wy"]
	assert.Equal(t, "music", wy.Type)
	assert.Equal(t, []string{"musicUrl", "search"}, wy.Actions)
	assert.Equal(t, []string{"128k", "192k", "320k", "flac", "flac24bit", "hires", "atmos", "master"}, wy.Qualitys)
	assert.Equal(t, "24Bit", wy.QualityName["flac24bit"])
	assert.Equal(t, 20, wy.MaxSearchCount)
	assert.True(t, wy.Importable)
	assert.False(t, wy.SupportBitRateTest)

	tx := ann.Sources["tx"]
	assert.Equal(t, []string{"128k", "192k", "320k", "flac"}, tx.Qualitys)
}

func TestInited_Disabled(t *testing.T) {
	tracker := status.NewTracker()
	tracker.Set(status.Disabled, "插件已停用")
	p := newPlugin(t, tracker)

	_, err := p.Inited()
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindServiceDisabled))

	res := p.Search(context.Background(), Request{Source: "wy", Info: map[string]interface{}{"keyword": "x"}})
	assert.Empty(t, res.List)
}
