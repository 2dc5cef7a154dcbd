package resolver

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaoxiao0301/lx-source-resolver/internal/cache"
	"github.com/xiaoxiao0301/lx-source-resolver/internal/upstream"
)

// 两个实例共享 Redis 缓存，第二个实例不再请求上游
func TestResolve_SharedRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	first := &fakeProvider{id: "main", platforms: []upstream.Platform{upstream.PlatformNetease}, tiers: allTiers(), body: okBody}
	second := &fakeProvider{id: "main", platforms: []upstream.Platform{upstream.PlatformNetease}, tiers: allTiers(), body: okBody}

	req := SongRequest{ID: "1", Platform: upstream.PlatformNetease}
	r1 := New([]upstream.Provider{first}, cache.NewRedisCache(client, "", time.Minute), nil, nil)
	r2 := New([]upstream.Provider{second}, cache.NewRedisCache(client, "", time.Minute), nil, nil)

	res, err := r1.Resolve(context.Background(), req, "flac")
	require.NoError(t, err)
	assert.False(t, res.Cached)

	res, err = r2.Resolve(context.Background(), req, "lossless")
	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.Equal(t, "https://cdn.example/a.mp3", res.URL)
	assert.Equal(t, "晴天", res.SongName)
	assert.Equal(t, 0, second.callCount())
}
