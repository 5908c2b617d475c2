package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP 指標
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flavorgraph_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flavorgraph_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// 匹配引擎指標
	SuggestionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flavorgraph_suggestion_duration_seconds",
			Help:    "Duration of recipe suggestion runs by algorithm",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"algorithm"},
	)

	StrategyFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flavorgraph_strategy_fallbacks_total",
			Help: "Total number of matching strategy fallbacks to greedy",
		},
		[]string{"requested", "reason"},
	)

	BacktrackingExplorations = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flavorgraph_backtracking_explorations",
			Help:    "Number of search nodes visited per backtracking run",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	// 快取指標
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flavorgraph_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flavorgraph_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)

	// 隊列指標
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flavorgraph_queue_depth",
			Help: "Current number of tasks waiting in the matching queue",
		},
	)

	QueueRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flavorgraph_queue_rejected_total",
			Help: "Total number of tasks rejected because the queue was full",
		},
	)

	// 資料集指標
	CatalogSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "flavorgraph_catalog_entities",
			Help: "Number of entities currently held in the catalog",
		},
		[]string{"kind"}, // "recipe", "ingredient", "compatibility"
	)

	IndexRebuilds = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flavorgraph_index_rebuilds_total",
			Help: "Total number of graph and matcher index rebuilds",
		},
	)
)

// RecordHTTPRequest 記錄一次 HTTP 請求
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	HTTPRequestDuration.WithLabelValues(method, route, code).Observe(duration.Seconds())
	HTTPRequestsTotal.WithLabelValues(method, route, code).Inc()
}

// RecordSuggestion 記錄一次推薦運算
func RecordSuggestion(algorithm string, duration time.Duration) {
	SuggestionDuration.WithLabelValues(algorithm).Observe(duration.Seconds())
}

// RecordFallback 記錄策略降級
func RecordFallback(requested, reason string) {
	StrategyFallbacks.WithLabelValues(requested, reason).Inc()
}

// RecordExplorations 記錄回溯搜尋節點數
func RecordExplorations(n int) {
	BacktrackingExplorations.Observe(float64(n))
}

// RecordCacheHit 記錄快取命中
func RecordCacheHit(cache string) {
	CacheHits.WithLabelValues(cache).Inc()
}

// RecordCacheMiss 記錄快取未命中
func RecordCacheMiss(cache string) {
	CacheMisses.WithLabelValues(cache).Inc()
}

// SetCatalogSize 更新資料集大小
func SetCatalogSize(recipes, ingredients, compatibilities int) {
	CatalogSize.WithLabelValues("recipe").Set(float64(recipes))
	CatalogSize.WithLabelValues("ingredient").Set(float64(ingredients))
	CatalogSize.WithLabelValues("compatibility").Set(float64(compatibilities))
	IndexRebuilds.Inc()
}
