package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"flavorgraph/internal/pkg/common"
)

const defaultDedupWindow = time.Second

// Deduplicator 記錄近期寫入請求的指紋
type Deduplicator struct {
	mu          sync.Mutex
	requests    map[string]time.Time
	window      time.Duration
	lastCleanup time.Time
	now         func() time.Time
}

// NewDeduplicator 創建去重器，window <= 0 時使用預設一秒
func NewDeduplicator(window time.Duration) *Deduplicator {
	if window <= 0 {
		window = defaultDedupWindow
	}
	return &Deduplicator{
		requests:    make(map[string]time.Time),
		window:      window,
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

// Seen 指紋在時間窗內出現過則回傳 true，否則記錄之
func (d *Deduplicator) Seen(fingerprint string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if now.Sub(d.lastCleanup) > 10*d.window {
		if n := d.cleanupLocked(now); n > 0 {
			common.LogDebug("已清理去重指紋", zap.Int("removed", n))
		}
		d.lastCleanup = now
	}

	if last, ok := d.requests[fingerprint]; ok && now.Sub(last) <= d.window {
		return true
	}
	d.requests[fingerprint] = now
	return false
}

// Len 目前記錄的指紋數
func (d *Deduplicator) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.requests)
}

func (d *Deduplicator) cleanupLocked(now time.Time) int {
	removed := 0
	for k, t := range d.requests {
		if now.Sub(t) > d.window {
			delete(d.requests, k)
			removed++
		}
	}
	return removed
}

// Deduplication 寫入請求去重中間件，只處理 POST
func Deduplication(d *Deduplicator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		fingerprint := c.Request.Method + ":" + c.Request.URL.Path + ":" + c.ClientIP()
		if c.Request.Body != nil {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				common.LogError("Failed to read request body", zap.Error(err))
				c.Next()
				return
			}
			hash := sha256.Sum256(body)
			fingerprint += ":" + hex.EncodeToString(hash[:])

			c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
		}

		if d.Seen(fingerprint) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, common.ErrorResponse{
				Code:      common.ErrCodeTooManyRequests,
				Message:   "duplicate request",
				RequestID: common.RequestID(c),
			})
			return
		}

		c.Next()
	}
}
