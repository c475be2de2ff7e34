package middleware

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/anirudhprmar/pushup-t3/internal/domain/events"
	"github.com/anirudhprmar/pushup-t3/internal/infrastructure/cache"
)

type cachedResponse struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

type bodyRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// userCachePattern matches every cached read for one user, in the key
// scheme CacheMiddleware writes.
func userCachePattern(userID string) string {
	return fmt.Sprintf("resp:%s:*", userID)
}

type patternClearer interface {
	ClearByPattern(ctx context.Context, pattern string) error
}

// StartCacheInvalidation drains dashboard events published by other
// instances and clears the affected user's cached reads. The drain
// loop ends when the event channel closes on ctx cancellation.
func StartCacheInvalidation(ctx context.Context, redisCache *cache.RedisCache) error {
	if redisCache == nil {
		return nil
	}
	eventCh, err := redisCache.SubscribeDashboardEvents(ctx)
	if err != nil {
		return err
	}
	go drainInvalidations(ctx, redisCache, eventCh)
	return nil
}

func drainInvalidations(ctx context.Context, clearer patternClearer, eventCh <-chan events.DashboardEvent) {
	for event := range eventCh {
		_ = clearer.ClearByPattern(ctx, userCachePattern(event.UserID))
	}
}

// CacheMiddleware serves GET responses from redis, keyed per user and
// path. Writes anywhere under /api clear the user's cached reads.
func CacheMiddleware(redisCache *cache.RedisCache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisCache == nil {
			c.Next()
			return
		}

		userID, ok := UserID(c)
		if !ok {
			c.Next()
			return
		}

		if c.Request.Method != http.MethodGet {
			c.Next()
			if c.Writer.Status() < 400 {
				_ = redisCache.ClearByPattern(c.Request.Context(), userCachePattern(userID.String()))
			}
			return
		}

		key := fmt.Sprintf("resp:%s:%s?%s", userID, c.Request.URL.Path, c.Request.URL.RawQuery)

		var cached cachedResponse
		err := redisCache.Get(c.Request.Context(), key, &cached)
		if err == nil {
			c.Header("X-Cache", "HIT")
			c.Data(cached.Status, "application/json", cached.Body)
			c.Abort()
			return
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.Next()
			return
		}

		recorder := &bodyRecorder{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = recorder
		c.Header("X-Cache", "MISS")
		c.Next()

		if recorder.Status() == http.StatusOK {
			_ = redisCache.Set(c.Request.Context(), key, cachedResponse{
				Status: recorder.Status(),
				Body:   recorder.body.Bytes(),
			}, ttl)
		}
	}
}
