package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const rateLimitPrefix = "rl:init:"

// RateLimit caps requests per client IP to maxPerMin. With Redis it keeps a
// fixed one-minute window shared by every instance; without Redis it falls back
// to a token bucket per IP in this process. A non-positive maxPerMin disables
// the limit.
func RateLimit(cache *redis.Client, maxPerMin int, logger *slog.Logger) fiber.Handler {
	if maxPerMin <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	if cache == nil {
		return localRateLimit(maxPerMin)
	}
	return func(c *fiber.Ctx) error {
		window := time.Now().Unix() / 60
		key := rateLimitPrefix + c.IP() + ":" + strconv.FormatInt(window, 10)

		cnt, err := cache.Incr(c.UserContext(), key).Result()
		if err != nil {
			logger.Warn("rate limit lookup failed", slog.Any("error", err))
			return c.Next() // fail-open on cache errors
		}
		if cnt == 1 {
			cache.Expire(c.UserContext(), key, time.Minute)
		}
		if cnt > int64(maxPerMin) {
			return tooManyRequests(c)
		}
		return c.Next()
	}
}

const (
	visitorIdleTTL     = 3 * time.Minute
	visitorSweepPeriod = time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// visitors keeps one token bucket per client IP. Entries idle for longer than
// visitorIdleTTL are dropped, at most once per visitorSweepPeriod.
type visitors struct {
	mu        sync.Mutex
	ips       map[string]*visitor
	every     rate.Limit
	burst     int
	lastSweep time.Time
}

func newVisitors(maxPerMin int) *visitors {
	return &visitors{
		ips:   make(map[string]*visitor),
		every: rate.Every(time.Minute / time.Duration(maxPerMin)),
		burst: maxPerMin,
	}
}

func (v *visitors) allow(ip string, now time.Time) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if now.Sub(v.lastSweep) >= visitorSweepPeriod {
		v.evictIdle(now)
		v.lastSweep = now
	}

	vis, ok := v.ips[ip]
	if !ok {
		vis = &visitor{limiter: rate.NewLimiter(v.every, v.burst)}
		v.ips[ip] = vis
	}
	vis.lastSeen = now
	return vis.limiter.AllowN(now, 1)
}

// evictIdle must be called with mu held. An idle bucket has refilled
// completely, so dropping it does not change any decision.
func (v *visitors) evictIdle(now time.Time) {
	for ip, vis := range v.ips {
		if now.Sub(vis.lastSeen) > visitorIdleTTL {
			delete(v.ips, ip)
		}
	}
}

func (v *visitors) size() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.ips)
}

func localRateLimit(maxPerMin int) fiber.Handler {
	v := newVisitors(maxPerMin)
	return func(c *fiber.Ctx) error {
		if !v.allow(c.IP(), time.Now()) {
			return tooManyRequests(c)
		}
		return c.Next()
	}
}

func tooManyRequests(c *fiber.Ctx) error {
	c.Set(fiber.HeaderRetryAfter, "60")
	return fiber.NewError(http.StatusTooManyRequests, "too many requests, try again later")
}
