package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "class"

// Recorder Prometheus 指标集合，使用独立 Registry 便于测试
type Recorder struct {
	registry *prometheus.Registry

	syncTotal    *prometheus.CounterVec
	clockOffset  prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New 创建 Recorder 并注册全部指标
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		syncTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clock_sync_total",
			Help:      "网络校时请求次数（按时间接口与结果）",
		}, []string{"provider", "result"}),
		clockOffset: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "clock_offset_seconds",
			Help:      "最近一次成功校时的网络时间与本地时间偏移",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP 请求总数",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP 请求耗时",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	r.registry.MustRegister(
		r.syncTotal,
		r.clockOffset,
		r.httpRequests,
		r.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveSync 记录一次校时结果（实现 clock.Observer）
func (r *Recorder) ObserveSync(provider string, ok bool, offset time.Duration) {
	result := "failure"
	if ok {
		result = "success"
		r.clockOffset.Set(offset.Seconds())
	}
	r.syncTotal.WithLabelValues(provider, result).Inc()
}

// Middleware 记录请求数与耗时
// path 使用路由模板（如 /api/v1/weeks/:week），未匹配路由统一记为 unmatched
func (r *Recorder) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method

		r.httpRequests.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		r.httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler /metrics 抓取端点
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
