package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Gateway 持久层指标
type Gateway struct {
	UnitsOfWork *prometheus.CounterVec
	Retries     prometheus.Counter
	Duration    prometheus.Histogram
}

// NewGateway 创建并注册持久层指标；reg 为 nil 时只创建不注册（测试用）
func NewGateway(reg prometheus.Registerer) *Gateway {
	m := &Gateway{
		UnitsOfWork: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sgte",
			Subsystem: "db",
			Name:      "units_of_work_total",
			Help:      "工作单元执行次数，按结果分类 (ok|busy|fault|error)",
		}, []string{"result"}),
		Retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sgte",
			Subsystem: "db",
			Name:      "lock_retries_total",
			Help:      "因数据库锁竞争而重试的次数",
		}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sgte",
			Subsystem: "db",
			Name:      "unit_of_work_seconds",
			Help:      "工作单元耗时（含重试）",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5, 15},
		}),
	}
	if reg != nil {
		reg.MustRegister(m.UnitsOfWork, m.Retries, m.Duration)
	}
	return m
}
