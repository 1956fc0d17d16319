package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/shubhamprakash681/truefeed/pkg/response"
)

// ipFromCtx extracts the client IP from Gin context, falling back to "unknown"
func ipFromCtx(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

func normalizePath(c *gin.Context) string {
	if fp := c.FullPath(); fp != "" {
		return fp
	}
	return c.Request.URL.Path
}

// KeyFunc builds a rate-limit key from the request
type KeyFunc func(c *gin.Context) string

// KeyByIP returns a key function that limits by client IP only
func KeyByIP() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:ip:" + ipFromCtx(c)
	}
}

// KeyByIPAndPath returns a key function that limits by client IP and route
func KeyByIPAndPath() KeyFunc {
	return func(c *gin.Context) string {
		return "rl:path:" + normalizePath(c) + ":ip:" + ipFromCtx(c)
	}
}

// Decision is the outcome of one Take.
type Decision struct {
	Allowed   bool
	Remaining int
	Reset     time.Duration
}

// Limiter counts requests per key within a window of max requests.
type Limiter interface {
	Take(ctx context.Context, key string, max int, window time.Duration) (Decision, error)
}

// Lua script: atomic INCR + set PEXPIRE when new
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("PTTL", KEYS[1])}
`)

// RedisLimiter is a fixed window shared by every replica.
type RedisLimiter struct {
	rdb *redis.Client
}

func NewRedisLimiter(rdb *redis.Client) *RedisLimiter {
	return &RedisLimiter{rdb: rdb}
}

func (l *RedisLimiter) Take(ctx context.Context, key string, max int, window time.Duration) (Decision, error) {
	res, err := incrExpireScript.Run(ctx, l.rdb, []string{key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return Decision{}, err
	}
	count := int(res[0])
	var reset time.Duration
	if len(res) > 1 && res[1] > 0 {
		reset = time.Duration(res[1]) * time.Millisecond
	}
	remaining := max - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{Allowed: count <= max, Remaining: remaining, Reset: reset}, nil
}

type keyLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// LocalLimiter is the in-process fallback used when Redis is not configured.
// Each key gets a token bucket of max tokens refilled over window.
type LocalLimiter struct {
	mu       sync.Mutex
	limiters map[string]*keyLimiter
	idle     time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewLocalLimiter starts a cleanup loop that drops keys idle for longer than idle.
func NewLocalLimiter(idle time.Duration) *LocalLimiter {
	l := &LocalLimiter{
		limiters: make(map[string]*keyLimiter),
		idle:     idle,
		stopCh:   make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

func (l *LocalLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

func (l *LocalLimiter) Take(_ context.Context, key string, max int, window time.Duration) (Decision, error) {
	now := time.Now()
	l.mu.Lock()
	kl, ok := l.limiters[key]
	if !ok {
		kl = &keyLimiter{limiter: rate.NewLimiter(rate.Every(window/time.Duration(max)), max)}
		l.limiters[key] = kl
	}
	kl.lastAccess = now
	l.mu.Unlock()

	allowed := kl.limiter.AllowN(now, 1)
	remaining := int(kl.limiter.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return Decision{Allowed: allowed, Remaining: remaining, Reset: window / time.Duration(max)}, nil
}

// Len reports how many keys are tracked.
func (l *LocalLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

func (l *LocalLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.idle)
	defer ticker.Stop()
	for {
		select {
		case <-l.stopCh:
			return
		case now := <-ticker.C:
			l.prune(now)
		}
	}
}

func (l *LocalLimiter) prune(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, kl := range l.limiters {
		if now.Sub(kl.lastAccess) > l.idle {
			delete(l.limiters, k)
		}
	}
}

type AllowFunc func(*gin.Context) bool // return true for bypass limit

// RateLimit with standard headers (limit/remaining/reset) and an optional allowlist bypass.
// A limiter error fails open.
func RateLimit(l Limiter, max int, window time.Duration, keyFn KeyFunc, allow AllowFunc) gin.HandlerFunc {
	if l == nil || max <= 0 || window <= 0 || keyFn == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if allow != nil && allow(c) {
			c.Next()
			return
		}
		if strings.EqualFold(c.Request.Method, http.MethodOptions) {
			c.Next()
			return
		}

		d, err := l.Take(c.Request.Context(), keyFn(c), max, window)
		if err != nil {
			c.Next()
			return
		}

		resetSec := int(d.Reset.Seconds())
		c.Header("X-RateLimit-Limit", strconv.Itoa(max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

		if !d.Allowed {
			if resetSec > 0 {
				c.Header("Retry-After", strconv.Itoa(resetSec))
			}
			response.Abort(c, http.StatusTooManyRequests, "Too many requests, please try again later", nil)
			return
		}
		c.Next()
	}
}
