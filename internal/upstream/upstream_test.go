package upstream

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaoxiao0301/lx-source-resolver/internal/quality"
	"github.com/xiaoxiao0301/lx-source-resolver/internal/validator"
	"github.com/xiaoxiao0301/lx-source-resolver/pkg/config"
	"github.com/xiaoxiao0301/lx-source-resolver/pkg/errors"
	"github.com/xiaoxiao0301/lx-source-resolver/pkg/logger"
)

func TestParsePlatform(t *testing.T) {
	tests := []struct {
		in   string
		want Platform
	}{
		{"wy", PlatformNetease},
		{"NetEase", PlatformNetease},
		{"tx", PlatformQQ},
		{"kg", PlatformKugou},
		{"kw", PlatformKuwo},
		{" mg ", PlatformMigu},
	}
	for _, tt := range tests {
		got, ok := ParsePlatform(tt.in)
		require.True(t, ok, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, ok := ParsePlatform("spotify")
	assert.False(t, ok)
	assert.Equal(t, "wy", PlatformNetease.Code())
}

func TestMainAPIClient_Fetch(t *testing.T) {
	var gotQuery atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query())
		assert.Equal(t, "Mozilla/5.0", r.Header.Get("User-Agent"))
		w.Write([]byte(`{"status":200,"success":true,"data":{"url":"https://cdn.example/a.mp3"}}`))
	}))
	defer srv.Close()

	c := NewMainAPIClient(ClientConfig{ID: "main", BaseURL: srv.URL}, nil, 0, logger.Nop())
	assert.True(t, c.Supports(PlatformNetease))
	assert.False(t, c.Supports(PlatformQQ))
	assert.False(t, c.Tiers(PlatformNetease).Contains(quality.Tier192k))
	assert.True(t, c.Tiers(PlatformNetease).Contains(quality.TierMaster))

	body, err := c.Fetch(context.Background(), "12345", quality.TierFLAC, PlatformNetease)
	require.NoError(t, err)

	res := validator.Validate(body, c.Schema())
	require.True(t, res.OK)
	assert.Equal(t, "https://cdn.example/a.mp3", res.URL)

	q := gotQuery.Load().(url.Values)
	assert.Equal(t, "12345", q.Get("id"))
	assert.Equal(t, "3", q.Get("yz"))
}

func TestMainAPIClient_QualityCodes(t *testing.T) {
	c := NewMainAPIClient(ClientConfig{ID: "main", BaseURL: "http://x"}, nil, 0, nil)
	want := map[quality.Tier]string{
		quality.Tier128k: "1", quality.Tier320k: "2", quality.TierFLAC: "3", quality.TierFLAC24: "4",
		quality.TierHiRes: "5", quality.TierAtmos: "6", quality.TierMaster: "7", quality.Tier192k: "1",
	}
	for tier, code := range want {
		assert.Equal(t, code, c.QualityCode(tier), tier.String())
	}
}

func TestMainAPIClient_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "晴天", r.URL.Query().Get("msg"))
		assert.Equal(t, "10", r.URL.Query().Get("sm"))
		w.Write([]byte(`{"status":200,"success":true,"data":{"id":186016,"name":"晴天","album":"叶惠美","pic":"https://img.example/1.jpg"}}`))
	}))
	defer srv.Close()

	c := NewMainAPIClient(ClientConfig{ID: "main", BaseURL: srv.URL}, nil, 0, logger.Nop())
	results, err := c.Search(context.Background(), PlatformNetease, "晴天", 1, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, SearchResult{
		SongMID:   "186016",
		ID:        "186016",
		Name:      "晴天",
		Singer:    UnknownSinger,
		AlbumName: "叶惠美",
		Source:    "wy",
		Interval:  DefaultInterval,
		Img:       "https://img.example/1.jpg",
	}, results[0])
}

func TestMainAPIClient_SearchNotSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":200,"success":false}`))
	}))
	defer srv.Close()

	c := NewMainAPIClient(ClientConfig{ID: "main", BaseURL: srv.URL}, nil, 0, logger.Nop())
	results, err := c.Search(context.Background(), PlatformNetease, "x", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestBackupAPIClient_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "url", q.Get("types"))
		assert.Equal(t, "tencent", q.Get("source"))
		assert.Equal(t, "003OUlho2HcRHC", q.Get("id"))
		assert.Equal(t, "999", q.Get("br"))
		w.Write([]byte(`{"url":"https://m.example/b.flac","br":999,"size":3000}`))
	}))
	defer srv.Close()

	c := NewBackupAPIClient(ClientConfig{ID: "backup", BaseURL: srv.URL}, nil, logger.Nop())
	for _, p := range Platforms() {
		assert.True(t, c.Supports(p), p)
	}
	assert.Equal(t, quality.TierFLAC, c.Tiers(PlatformQQ).Highest())

	body, err := c.Fetch(context.Background(), "003OUlho2HcRHC", quality.TierFLAC, PlatformQQ)
	require.NoError(t, err)
	res := validator.Validate(body, c.Schema())
	require.True(t, res.OK)
	assert.Equal(t, "999", res.Meta.Quality)
}

func TestBackupAPIClient_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "search", r.URL.Query().Get("types"))
		assert.Equal(t, "2", r.URL.Query().Get("pages"))
		w.Write([]byte(`[{"id":"1","name":"A","artist":["X","Y"],"album":"L","pic_id":"p1"},{"name":"no id"}]`))
	}))
	defer srv.Close()

	c := NewBackupAPIClient(ClientConfig{ID: "backup", BaseURL: srv.URL}, nil, logger.Nop())
	results, err := c.Search(context.Background(), PlatformKugou, "A", 2, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "X/Y", results[0].Singer)
	assert.Equal(t, "kg", results[0].Source)
	assert.Empty(t, results[0].Img, "pic_id is not an image url")
}

func TestClient_HTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{ID: "x", BaseURL: srv.URL}, nil)
	_, err := c.Get(context.Background(), nil, 0)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindAPIError))
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(ClientConfig{ID: "slow", BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, nil)
	start := time.Now()
	_, err := c.Get(context.Background(), nil, 0)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindNetworkTimeout), err.Error())
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestClient_ConnectionRefused(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	l.Close()

	c := NewClient(ClientConfig{ID: "down", BaseURL: "http://" + addr}, nil)
	_, err = c.Get(context.Background(), nil, 0)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindNetworkError), err.Error())
}

func TestClient_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(ClientConfig{ID: "x", BaseURL: srv.URL}, nil)
	_, err := c.Get(ctx, nil, 0)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindNetworkError))
}

func TestClient_RateLimitWaits(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{ID: "x", BaseURL: srv.URL, RateLimit: 20, Burst: 1}, nil)
	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.Get(context.Background(), nil, 0)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), calls.Load())
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestClient_Probe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{ID: "x", BaseURL: srv.URL}, nil)
	assert.NoError(t, c.Probe(context.Background()))
}

func TestNewProviders(t *testing.T) {
	providers, err := NewProviders(config.DefaultProviders(), logger.Nop())
	require.NoError(t, err)
	require.Len(t, providers, 2)
	assert.IsType(t, &MainAPIClient{}, providers[0])
	assert.IsType(t, &BackupAPIClient{}, providers[1])

	netease := ForPlatform(providers, PlatformNetease)
	require.Len(t, netease, 2)
	assert.Equal(t, "wyy-main", netease[0].ID())

	qq := ForPlatform(providers, PlatformQQ)
	require.Len(t, qq, 1)
	assert.Equal(t, "gd-backup", qq[0].ID())

	_, err = NewProviders([]config.ProviderConfig{{ID: "x", Kind: "main", Platforms: []string{"spotify"}}}, nil)
	assert.Error(t, err)
}
