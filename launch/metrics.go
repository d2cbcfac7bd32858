package launch

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "launchpad"

// Metrics counts launch activity. A nil *Metrics records nothing.
type Metrics struct {
	operations  *prometheus.CounterVec
	rejections  *prometheus.CounterVec
	fatal       prometheus.Counter
	volume      *prometheus.CounterVec
	payouts     *prometheus.CounterVec
	transitions *prometheus.CounterVec
}

func NewMetrics(r prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "operations",
			Help:      "number of committed operations",
		}, []string{"op"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rejections",
			Help:      "number of rejected operations by error kind",
		}, []string{"op", "kind"}),
		fatal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "fatal_arithmetic",
			Help:      "number of operations aborted by an arithmetic fault",
		}),
		volume: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "currency_volume",
			Help:      "currency base units traded",
		}, []string{"side"}),
		payouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "payouts",
			Help:      "currency base units paid out of vaults",
		}, []string{"pool"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "transitions",
			Help:      "number of lifecycle transitions",
		}, []string{"status"}),
	}
	if r == nil {
		return m, nil
	}
	return m, errors.Join(
		r.Register(m.operations),
		r.Register(m.rejections),
		r.Register(m.fatal),
		r.Register(m.volume),
		r.Register(m.payouts),
		r.Register(m.transitions),
	)
}

func (m *Metrics) observe(op string, err error) {
	if m == nil {
		return
	}
	if err == nil {
		m.operations.WithLabelValues(op).Inc()
		return
	}
	kind := Kind(err)
	m.rejections.WithLabelValues(op, kind.String()).Inc()
	if kind == KindArithmetic {
		m.fatal.Inc()
	}
}

func (m *Metrics) traded(side string, amount uint64) {
	if m == nil {
		return
	}
	m.volume.WithLabelValues(side).Add(float64(amount))
}

func (m *Metrics) paid(p Pool, amount uint64) {
	if m == nil || amount == 0 {
		return
	}
	m.payouts.WithLabelValues(p.String()).Add(float64(amount))
}

func (m *Metrics) transitioned(s Status) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(s.String()).Inc()
}
