package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PaymentMetrics records outcomes of the verification-to-order pipeline.
type PaymentMetrics struct {
	verifyDuration *prometheus.HistogramVec
	verifications  *prometheus.CounterVec
	mismatches     prometheus.Counter
	materialized   prometheus.Counter
}

// NewPaymentMetrics registers the payment pipeline metrics on the provided registerer.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	verifyDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payment_verify_duration_seconds",
		Help:    "Duration of gateway verification calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})
	verifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_verifications_total",
		Help: "Payment verification attempts by result.",
	}, []string{"result"})
	mismatches := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payment_amount_mismatches_total",
		Help: "Verifications rejected because the gateway amount disagreed with the expected total.",
	})
	materialized := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_materialized_total",
		Help: "Orders successfully created from verified payments.",
	})
	reg.MustRegister(verifyDuration, verifications, mismatches, materialized)
	return &PaymentMetrics{
		verifyDuration: verifyDuration,
		verifications:  verifications,
		mismatches:     mismatches,
		materialized:   materialized,
	}
}

// ObserveVerifyDuration records the duration of one verification attempt.
func (p *PaymentMetrics) ObserveVerifyDuration(result string, duration time.Duration) {
	if p == nil || p.verifyDuration == nil {
		return
	}
	p.verifyDuration.WithLabelValues(normalizeLabel(result)).Observe(duration.Seconds())
}

// IncVerification counts one verification attempt with its result label.
func (p *PaymentMetrics) IncVerification(result string) {
	if p == nil || p.verifications == nil {
		return
	}
	p.verifications.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncMismatch counts an amount reconciliation failure.
func (p *PaymentMetrics) IncMismatch() {
	if p == nil || p.mismatches == nil {
		return
	}
	p.mismatches.Inc()
}

// IncMaterialized counts one successfully created order.
func (p *PaymentMetrics) IncMaterialized() {
	if p == nil || p.materialized == nil {
		return
	}
	p.materialized.Inc()
}

func normalizeLabel(result string) string {
	if result == "" {
		return "unknown"
	}
	return result
}
