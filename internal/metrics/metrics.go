// Package metrics 提供Prometheus监控指标
package metrics

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kebiao"

// Metrics 指标集合，使用独立注册表
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	assignTotal     *prometheus.CounterVec
	assignDuration  *prometheus.HistogramVec
	searchNodes     prometheus.Histogram
	checkRejections *prometheus.CounterVec
	fairnessGini    prometheus.Gauge
	roomFreeRate    *prometheus.GaugeVec
}

// New 创建并注册指标
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP请求总数",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP请求延迟",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		}, []string{"method", "path"}),
		assignTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assign_total",
			Help:      "排课次数，按结果分类",
		}, []string{"outcome"}),
		assignDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "assign_duration_seconds",
			Help:      "排课耗时",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0},
		}, []string{"outcome"}),
		searchNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_nodes",
			Help:      "单次排课访问的搜索节点数",
			Buckets:   prometheus.ExponentialBuckets(10, 10, 7),
		}),
		checkRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "check_rejections_total",
			Help:      "冲突检查拒绝次数，按约束类型",
		}, []string{"check"}),
		fairnessGini: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "workload_gini",
			Help:      "最近一次工作量统计的基尼系数",
		}),
		roomFreeRate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "room_free_rate",
			Help:      "最近一次空闲统计的教室空闲率(%)",
		}, []string{"room"}),
	}

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "goroutines",
		Help:      "当前协程数",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(
		m.requestTotal, m.requestDuration,
		m.assignTotal, m.assignDuration, m.searchNodes,
		m.checkRejections, m.fairnessGini, m.roomFreeRate,
		goroutines,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler 返回 /metrics 处理器
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry 返回注册表
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequestMetrics 记录请求指标
func (m *Metrics) RecordRequestMetrics(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveAssign 记录一次排课结果
func (m *Metrics) ObserveAssign(outcome string, duration time.Duration, nodes int) {
	if m == nil {
		return
	}
	m.assignTotal.WithLabelValues(outcome).Inc()
	m.assignDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	m.searchNodes.Observe(float64(nodes))
}

// RecordCheckRejection 记录冲突检查拒绝
func (m *Metrics) RecordCheckRejection(check string) {
	if m == nil {
		return
	}
	m.checkRejections.WithLabelValues(check).Inc()
}

// SetFairnessGini 设置工作量基尼系数
func (m *Metrics) SetFairnessGini(gini float64) {
	if m == nil {
		return
	}
	m.fairnessGini.Set(gini)
}

// SetRoomFreeRate 设置教室空闲率
func (m *Metrics) SetRoomFreeRate(room string, rate float64) {
	if m == nil {
		return
	}
	m.roomFreeRate.WithLabelValues(room).Set(rate)
}
