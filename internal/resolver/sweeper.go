package resolver

import (
	"context"
	"time"

	"github.com/xiaoxiao0301/lx-source-resolver/internal/cache"
	"github.com/xiaoxiao0301/lx-source-resolver/pkg/logger"
)

// StartSweeper 定期清理过期缓存，ctx 取消后退出
func StartSweeper(ctx context.Context, store cache.Store, interval time.Duration, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if interval <= 0 {
		close(done)
		return done
	}

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := store.SweepExpired(ctx); n > 0 {
					log.Debug("Cache cleanup", logger.Int("expired", n))
				}
			}
		}
	}()
	return done
}
