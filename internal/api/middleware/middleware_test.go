package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"flavorgraph/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func TestRateLimiterRefill(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	rl := newRateLimiter(2, time.Second, clock.now)

	assert.True(t, rl.Allow())
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow())

	clock.advance(500 * time.Millisecond)
	assert.True(t, rl.Allow())
	assert.False(t, rl.Allow())

	clock.advance(10 * time.Second)
	assert.True(t, rl.full())
}

func TestClientLimiterIsolatesClients(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	cl := NewClientLimiter(1, time.Minute)
	cl.now = clock.now
	cl.lastPrune = clock.t

	assert.True(t, cl.Allow("a"))
	assert.False(t, cl.Allow("a"))
	assert.True(t, cl.Allow("b"))
	assert.Equal(t, 2, cl.Clients())

	clock.advance(2 * time.Minute)
	assert.True(t, cl.Allow("c"))
	assert.Equal(t, 1, cl.Clients())
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(config.RateLimitConfig{Enabled: true, Requests: 1, Window: time.Minute}))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "TOO_MANY_REQUESTS")
}

func TestRateLimitDisabled(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(config.RateLimitConfig{Enabled: false, Requests: 1, Window: time.Minute}))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestDeduplication(t *testing.T) {
	d := NewDeduplicator(time.Minute)
	r := gin.New()
	r.Use(Deduplication(d))
	var bodies []string
	r.POST("/items", func(c *gin.Context) {
		raw, _ := c.GetRawData()
		bodies = append(bodies, string(raw))
		c.Status(http.StatusCreated)
	})
	r.GET("/items", func(c *gin.Context) { c.Status(http.StatusOK) })

	post := func(body string) int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(body)))
		return w.Code
	}

	assert.Equal(t, http.StatusCreated, post(`{"id":"a"}`))
	assert.Equal(t, http.StatusTooManyRequests, post(`{"id":"a"}`))
	assert.Equal(t, http.StatusCreated, post(`{"id":"b"}`))
	// 處理程序仍能讀到完整請求體
	assert.Equal(t, []string{`{"id":"a"}`, `{"id":"b"}`}, bodies)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestDeduplicatorExpires(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	d := NewDeduplicator(0)
	d.now = clock.now
	d.lastCleanup = clock.t

	assert.False(t, d.Seen("x"))
	assert.True(t, d.Seen("x"))
	clock.advance(2 * time.Second)
	assert.False(t, d.Seen("x"))

	assert.False(t, d.Seen("y"))
	clock.advance(20 * time.Second)
	assert.False(t, d.Seen("z"))
	assert.Equal(t, 1, d.Len())
}

func TestBodySizeLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodySizeLimit(8))
	r.POST("/echo", func(c *gin.Context) {
		if _, err := c.GetRawData(); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("short")))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("far too long for the limit")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(), Logger())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(10 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	r.GET("/fast", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fast", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
