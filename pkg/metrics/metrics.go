// Package metrics 定义 Prometheus 指标与 gin 指标中间件
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var reqCnt = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pronet_http_requests_total",
	Help: "Number of HTTP requests",
}, []string{"code", "method", "path"})

var reqDur = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "pronet_http_request_duration_seconds",
	Help:    "HTTP request latencies in seconds",
	Buckets: prometheus.DefBuckets,
}, []string{"code", "method", "path"})

// ConnectionTransitions 连接请求状态变更次数
var ConnectionTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pronet_connection_transitions_total",
	Help: "Number of connection request operations by outcome",
}, []string{"action"})

// ReactionToggles 反应切换次数
var ReactionToggles = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pronet_reaction_toggles_total",
	Help: "Number of reaction toggles by resulting action",
}, []string{"action"})

// NotificationsCreated 通知创建次数
var NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pronet_notifications_created_total",
	Help: "Number of notifications created by type",
}, []string{"type"})

// WebSocketClients 当前在线的 WebSocket 连接数
var WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "pronet_websocket_clients",
	Help: "Number of connected websocket clients",
})

// Middleware 记录请求数量与耗时，path 使用路由模板避免高基数
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "/metrics" || path == "/health" {
			c.Next()
			return
		}
		if path == "" {
			path = "unmatched"
		}

		start := time.Now()
		c.Next()

		code := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method
		reqDur.WithLabelValues(code, method, path).Observe(time.Since(start).Seconds())
		reqCnt.WithLabelValues(code, method, path).Inc()
	}
}

// Handler /metrics 处理器
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
