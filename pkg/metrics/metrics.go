// Package metrics 收银系统的Prometheus指标
//
// # 指标类型
//
//   - Counter: 只增不减的累计值(请求数、加菜次数、审计写入数)
//   - Gauge: 可增可减的瞬时值(处理中的请求、审计队列长度)
//   - Histogram: 观测值分布(请求耗时)
//
// 所有指标在包初始化时通过promauto注册到默认Registry,
// /metrics端点由promhttp.Handler()暴露。
//
// # 命名规范
//
//  1. Counter以_total结尾
//  2. Histogram以单位结尾(_seconds)
//  3. 标签只用有限取值的维度(method、state、type),不要用订单ID
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pos"

var (
	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数
	// 标签:method、path(路由模板,不是原始URL)、status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration HTTP请求耗时
	// 桶设置：1ms、10ms、100ms、500ms、1s、5s、10s
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP请求耗时（秒）",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_progress",
			Help:      "正在处理的HTTP请求数",
		},
	)

	// 订单业务指标

	// OrderLinesAddedTotal 加菜成功次数
	OrderLinesAddedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_lines_added_total",
			Help:      "订单明细添加总数",
		},
	)

	// OrderTransitionsTotal 订单状态变更次数
	// 标签:state(目标状态 VALIDEE/ANNULEE)
	OrderTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_transitions_total",
			Help:      "订单状态变更总数",
		},
		[]string{"state"},
	)

	// 库存指标

	// StockMovementsTotal 库存流水记录数
	// 标签:type(ENTREE/SORTIE)
	StockMovementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_movements_total",
			Help:      "库存流水总数",
		},
		[]string{"type"},
	)

	// StockMovementsRejectedTotal 因库存不足被拒绝的出库
	StockMovementsRejectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stock_movements_rejected_total",
			Help:      "库存不足被拒绝的出库总数",
		},
	)

	// 审计指标

	// AuditEntriesTotal 审计日志处理结果
	// 标签:result(written/dropped/failed)
	AuditEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_entries_total",
			Help:      "审计日志处理总数",
		},
		[]string{"result"},
	)

	// AuditQueueLength 审计队列中等待写入的条目数
	AuditQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "audit_queue_length",
			Help:      "审计队列长度",
		},
	)

	// 缓存与消息指标

	// DashboardCacheTotal 看板缓存命中情况
	// 标签:result(hit/miss)
	DashboardCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dashboard_cache_total",
			Help:      "看板缓存查询总数",
		},
		[]string{"result"},
	)

	// EventsPublishedTotal 领域事件发布结果
	// 标签:routing_key、result(success/failure)
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "领域事件发布总数",
		},
		[]string{"routing_key", "result"},
	)

	// CircuitBreakerState 熔断器状态(0=CLOSED 1=OPEN 2=HALF_OPEN)
	// 标签:name
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "熔断器状态",
		},
		[]string{"name"},
	)
)

// 审计结果标签
const (
	AuditWritten = "written"
	AuditDropped = "dropped"
	AuditFailed  = "failed"
)

// IncCounterVec 按标签递增CounterVec
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	counter.With(labels).Inc()
}

// ObserveHistogramVec 按标签记录Histogram观测值
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	histogram.With(labels).Observe(value)
}

// ObserveRequest 记录一次HTTP请求
func ObserveRequest(method, path, status string, seconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(seconds)
}
