package middleware

import (
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"flavorgraph/internal/infrastructure/config"
	"flavorgraph/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimiter 令牌桶限流器
type RateLimiter struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	rate     float64 // 每秒補充的令牌數
	lastTime time.Time
	now      func() time.Time
}

// NewRateLimiter 創建新的限流器，window 內最多 requests 次
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	return newRateLimiter(requests, window, time.Now)
}

func newRateLimiter(requests int, window time.Duration, now func() time.Time) *RateLimiter {
	return &RateLimiter{
		tokens:   float64(requests),
		capacity: float64(requests),
		rate:     float64(requests) / window.Seconds(),
		lastTime: now(),
		now:      now,
	}
}

// Allow 檢查是否允許請求
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	elapsed := now.Sub(rl.lastTime).Seconds()
	rl.lastTime = now

	rl.tokens = math.Min(rl.capacity, rl.tokens+elapsed*rl.rate)

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

// full 令牌是否已補滿，可供清理
func (rl *RateLimiter) full() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	elapsed := rl.now().Sub(rl.lastTime).Seconds()
	return rl.tokens+elapsed*rl.rate >= rl.capacity
}

// ClientLimiter 以用戶端 IP 區分的限流器集合
type ClientLimiter struct {
	mu        sync.Mutex
	clients   map[string]*RateLimiter
	requests  int
	window    time.Duration
	lastPrune time.Time
	now       func() time.Time
}

// NewClientLimiter 創建以用戶端區分的限流器
func NewClientLimiter(requests int, window time.Duration) *ClientLimiter {
	return &ClientLimiter{
		clients:   make(map[string]*RateLimiter),
		requests:  requests,
		window:    window,
		lastPrune: time.Now(),
		now:       time.Now,
	}
}

// Allow 檢查指定用戶端是否允許請求
func (cl *ClientLimiter) Allow(client string) bool {
	cl.mu.Lock()
	if now := cl.now(); now.Sub(cl.lastPrune) > cl.window {
		cl.pruneLocked()
		cl.lastPrune = now
	}
	rl, ok := cl.clients[client]
	if !ok {
		rl = newRateLimiter(cl.requests, cl.window, cl.now)
		cl.clients[client] = rl
	}
	cl.mu.Unlock()
	return rl.Allow()
}

// Clients 目前追蹤的用戶端數
func (cl *ClientLimiter) Clients() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return len(cl.clients)
}

// pruneLocked 移除令牌已補滿的用戶端
func (cl *ClientLimiter) pruneLocked() {
	for client, rl := range cl.clients {
		if rl.full() {
			delete(cl.clients, client)
		}
	}
}

// RateLimit 限流中間件，設定停用時直接放行
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled || cfg.Requests <= 0 || cfg.Window <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return rateLimitWith(NewClientLimiter(cfg.Requests, cfg.Window), cfg.Window)
}

func rateLimitWith(limiter *ClientLimiter, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			common.LogInfo("Rate limit exceeded",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)

			c.Header("Retry-After", fmt.Sprintf("%d", int(math.Ceil(window.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, common.ErrorResponse{
				Code:      common.ErrCodeTooManyRequests,
				Message:   common.ErrTooManyRequests.Message,
				RequestID: common.RequestID(c),
			})
			return
		}

		c.Next()
	}
}
