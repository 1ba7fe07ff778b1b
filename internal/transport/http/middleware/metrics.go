package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpReqTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Count of HTTP requests"},
		[]string{"path", "method", "status"},
	)
	httpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latency of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"},
	)
	rpcCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "rpc_calls_total", Help: "Count of RPC calls by outcome"},
		[]string{"procedure", "kind"},
	)
	rpcLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rpc_call_duration_seconds",
			Help:    "Latency of RPC calls",
			Buckets: prometheus.DefBuckets,
		}, []string{"procedure"},
	)
	inflight = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "http_inflight_requests", Help: "Requests holding a concurrency slot"},
	)
)

func init() { prometheus.MustRegister(httpReqTotal, httpLatency, rpcCalls, rpcLatency, inflight) }

func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			// 未匹配路由不按原始 URL 打标签，防止标签爆炸
			path = "unmatched"
		}
		httpReqTotal.WithLabelValues(path, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		httpLatency.WithLabelValues(path, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

func observeRPC(procedure, kind string, d time.Duration) {
	rpcCalls.WithLabelValues(procedure, kind).Inc()
	rpcLatency.WithLabelValues(procedure).Observe(d.Seconds())
}

// MetricsHandler /metrics
func MetricsHandler() gin.HandlerFunc { return gin.WrapH(promhttp.Handler()) }
