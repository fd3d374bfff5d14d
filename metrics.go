package reopenx

import (
	"github.com/prometheus/client_golang/prometheus"
)

// 重开结果标签值
const (
	resultOK        = "ok"
	resultSyncError = "sync_error"
	resultOpenError = "open_error"
)

var _ prometheus.Collector = (*Metrics)(nil)

// Metrics 是 File 的 Prometheus 指标集合，按文件路径区分。
// 一个 Metrics 可以被多个 File 共享，自行注册到任意 prometheus.Registerer。
type Metrics struct {
	writes  *prometheus.CounterVec
	bytes   *prometheus.CounterVec
	reopens *prometheus.CounterVec
}

// NewMetrics 创建指标集合，namespace 为空时不加前缀。
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reopenx",
			Name:      "writes_total",
			Help:      "Number of write calls that reached the underlying file.",
		}, []string{"path"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reopenx",
			Name:      "written_bytes_total",
			Help:      "Bytes written to the underlying file.",
		}, []string{"path"}),
		reopens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reopenx",
			Name:      "reopens_total",
			Help:      "Rotation attempts by result.",
		}, []string{"path", "result"}),
	}
}

// Describe 实现 prometheus.Collector。
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.writes.Describe(ch)
	m.bytes.Describe(ch)
	m.reopens.Describe(ch)
}

// Collect 实现 prometheus.Collector。
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.writes.Collect(ch)
	m.bytes.Collect(ch)
	m.reopens.Collect(ch)
}

func (m *Metrics) observeWrite(path string, n int) {
	if m == nil {
		return
	}
	m.writes.WithLabelValues(path).Inc()
	m.bytes.WithLabelValues(path).Add(float64(n))
}

func (m *Metrics) observeReopen(path, result string) {
	if m == nil {
		return
	}
	m.reopens.WithLabelValues(path, result).Inc()
}
