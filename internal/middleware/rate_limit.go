package middleware

import (
	"hash/fnv"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/guttosm/meal-ledger/internal/domain/dto"
	"github.com/guttosm/meal-ledger/internal/i18n"
)

const (
	// defaultNumShards is the default number of shards for the rate limiter.
	defaultNumShards = 16
)

// visitor holds the token bucket of one client.
type visitor struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// rateLimiterShard is a single shard of the rate limiter.
type rateLimiterShard struct {
	mu       sync.Mutex
	visitors map[string]*visitor
}

// ShardedRateLimiter gives every client a token bucket that refills rate
// tokens per window and holds at most rate tokens. Clients are spread over
// shards to reduce lock contention.
type ShardedRateLimiter struct {
	shards    []*rateLimiterShard
	numShards int
	rate      int
	window    time.Duration
	limit     rate.Limit
	stopOnce  sync.Once
	stopCh    chan struct{}
}

// RateLimiter is an alias for ShardedRateLimiter.
type RateLimiter = ShardedRateLimiter

// NewRateLimiter allows n requests per window and client.
func NewRateLimiter(n int, window time.Duration) *ShardedRateLimiter {
	return NewShardedRateLimiter(n, window, defaultNumShards)
}

// NewShardedRateLimiter creates a rate limiter with a custom shard count.
func NewShardedRateLimiter(n int, window time.Duration, numShards int) *ShardedRateLimiter {
	if numShards <= 0 {
		numShards = defaultNumShards
	}
	if n <= 0 {
		n = 1
	}
	if window <= 0 {
		window = time.Minute
	}

	shards := make([]*rateLimiterShard, numShards)
	for i := range shards {
		shards[i] = &rateLimiterShard{
			visitors: make(map[string]*visitor),
		}
	}

	rl := &ShardedRateLimiter{
		shards:    shards,
		numShards: numShards,
		rate:      n,
		window:    window,
		limit:     rate.Every(window / time.Duration(n)),
		stopCh:    make(chan struct{}),
	}

	go rl.cleanup()
	return rl
}

// getShard returns the shard for the given identifier using FNV hash.
func (rl *ShardedRateLimiter) getShard(identifier string) *rateLimiterShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(identifier))
	return rl.shards[h.Sum32()%uint32(rl.numShards)]
}

// checkRateLimit takes a token from the client's bucket.
func (rl *ShardedRateLimiter) checkRateLimit(identifier string) (allowed bool, remaining int) {
	shard := rl.getShard(identifier)

	shard.mu.Lock()
	v, ok := shard.visitors[identifier]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.rate)}
		shard.visitors[identifier] = v
	}
	v.lastAccess = time.Now()
	shard.mu.Unlock()

	allowed = v.limiter.Allow()
	remaining = max(int(math.Floor(v.limiter.Tokens())), 0)
	return allowed, remaining
}

// retryAfter is the time, in whole seconds, until one token is back.
func (rl *ShardedRateLimiter) retryAfter() int {
	return max(int(math.Ceil((rl.window / time.Duration(rl.rate)).Seconds())), 1)
}

// RateLimit returns a middleware that limits requests per client IP.
func (rl *ShardedRateLimiter) RateLimit() gin.HandlerFunc {
	return rl.limitBy("ip", func(c *gin.Context) string {
		return c.ClientIP()
	})
}

// RouteRateLimit limits requests per client IP and route, for endpoints that
// are much more expensive than the rest of the API.
func (rl *ShardedRateLimiter) RouteRateLimit() gin.HandlerFunc {
	return rl.limitBy("route", func(c *gin.Context) string {
		return c.FullPath() + "|" + c.ClientIP()
	})
}

func (rl *ShardedRateLimiter) limitBy(kind string, key func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identifier := key(c)
		allowed, remaining := rl.checkRateLimit(identifier)

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.rate))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			log.Warn().
				Str("request_id", GetRequestID(c)).
				Str("limit_type", kind).
				Str("client_ip", c.ClientIP()).
				Str("path", c.Request.URL.Path).
				Msg("Rate limit exceeded")

			c.Header("Retry-After", strconv.Itoa(rl.retryAfter()))
			errorResp := dto.NewError(dto.ErrCodeRateLimit,
				i18n.GetTranslator().Translate(i18n.ErrKeyRateLimitExceeded, i18n.GetLocale(c))).
				WithRequestID(GetRequestID(c))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResp)
			return
		}

		c.Next()
	}
}

// cleanup periodically forgets clients that have been idle for a while.
func (rl *ShardedRateLimiter) cleanup() {
	ticker := time.NewTicker(max(rl.window, time.Minute))
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			rl.cleanupExpired(now)
		case <-rl.stopCh:
			return
		}
	}
}

// cleanupExpired drops clients idle for more than two windows. Their bucket
// would be full again by then, so forgetting them changes nothing.
func (rl *ShardedRateLimiter) cleanupExpired(now time.Time) {
	threshold := rl.window * 2

	for _, shard := range rl.shards {
		shard.mu.Lock()
		for id, v := range shard.visitors {
			if now.Sub(v.lastAccess) > threshold {
				delete(shard.visitors, id)
			}
		}
		shard.mu.Unlock()
	}
}

// Stop ends the cleanup loop. It is safe to call more than once.
func (rl *ShardedRateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopCh)
	})
}

// Stats returns current rate limiter statistics.
func (rl *ShardedRateLimiter) Stats() (totalVisitors int, perShard []int) {
	perShard = make([]int, rl.numShards)
	for i, shard := range rl.shards {
		shard.mu.Lock()
		perShard[i] = len(shard.visitors)
		totalVisitors += perShard[i]
		shard.mu.Unlock()
	}
	return totalVisitors, perShard
}
