package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/portal-unk/portal-api/internal/pkg/xerr"
)

// 公开的分享验证接口按来源 IP 做令牌桶限流，
// 限制对 4 位 PIN 的暴力尝试
type rateLimiter struct {
	visitors map[string]*visitor
	mutex    sync.Mutex
}

type visitor struct {
	tokens     int
	capacity   int
	refillRate int // 每分钟补充的令牌数
	lastRefill time.Time
	lastSeen   time.Time
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{visitors: make(map[string]*visitor)}
	go rl.cleanupRoutine()
	return rl
}

// RateLimitMiddleware 按来源 IP 限制每分钟请求数
func RateLimitMiddleware(requestsPerMinute int) gin.HandlerFunc {
	rl := newRateLimiter()

	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP(), requestsPerMinute) {
			xerr.AbortWithError(c, http.StatusTooManyRequests, xerr.TooManyRequestsCode, "请求频率过高，请稍后再试")
			return
		}
		c.Next()
	}
}

func (rl *rateLimiter) allow(ip string, requestsPerMinute int) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := time.Now()
	v, exists := rl.visitors[ip]
	if !exists {
		v = &visitor{
			tokens:     requestsPerMinute,
			capacity:   requestsPerMinute,
			refillRate: requestsPerMinute,
			lastRefill: now,
		}
		rl.visitors[ip] = v
	}
	v.lastSeen = now

	// 按经过的分钟数补充令牌
	tokensToAdd := int(now.Sub(v.lastRefill).Minutes()) * v.refillRate
	if tokensToAdd > 0 {
		v.tokens += tokensToAdd
		if v.tokens > v.capacity {
			v.tokens = v.capacity
		}
		v.lastRefill = now
	}

	if v.tokens > 0 {
		v.tokens--
		return true
	}
	return false
}

func (rl *rateLimiter) cleanupRoutine() {
	for {
		time.Sleep(10 * time.Minute)

		rl.mutex.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastSeen) > 10*time.Minute {
				delete(rl.visitors, ip)
			}
		}
		rl.mutex.Unlock()
	}
}
