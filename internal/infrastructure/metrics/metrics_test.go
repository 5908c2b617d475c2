package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/health", "200"))
	RecordHTTPRequest("GET", "/health", 200, 5*time.Millisecond)
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/health", "200"))
	assert.Equal(t, before+1, after)
}

func TestRecordFallback(t *testing.T) {
	before := testutil.ToFloat64(StrategyFallbacks.WithLabelValues("quantum", "unknown_algorithm"))
	RecordFallback("quantum", "unknown_algorithm")
	assert.Equal(t, before+1, testutil.ToFloat64(StrategyFallbacks.WithLabelValues("quantum", "unknown_algorithm")))
}

func TestSetCatalogSize(t *testing.T) {
	SetCatalogSize(5, 17, 8)
	assert.Equal(t, 5.0, testutil.ToFloat64(CatalogSize.WithLabelValues("recipe")))
	assert.Equal(t, 17.0, testutil.ToFloat64(CatalogSize.WithLabelValues("ingredient")))
	assert.Equal(t, 8.0, testutil.ToFloat64(CatalogSize.WithLabelValues("compatibility")))
}

func TestCacheCounters(t *testing.T) {
	hits := testutil.ToFloat64(CacheHits.WithLabelValues("suggestion"))
	misses := testutil.ToFloat64(CacheMisses.WithLabelValues("suggestion"))
	RecordCacheHit("suggestion")
	RecordCacheMiss("suggestion")
	RecordCacheMiss("suggestion")
	assert.Equal(t, hits+1, testutil.ToFloat64(CacheHits.WithLabelValues("suggestion")))
	assert.Equal(t, misses+2, testutil.ToFloat64(CacheMisses.WithLabelValues("suggestion")))
}
