package metrics

import "github.com/prometheus/client_golang/prometheus"

// SchedulingMetrics exposes counters/histograms for the placement
// engine. A nil receiver disables all observation, so wiring metrics
// stays optional.
type SchedulingMetrics struct {
	reservationsTotal *prometheus.CounterVec
	relocationsTotal  *prometheus.CounterVec
	meetingClaims     *prometheus.CounterVec
	placementLatency  *prometheus.HistogramVec
}

func NewSchedulingMetrics(reg prometheus.Registerer) *SchedulingMetrics {
	m := &SchedulingMetrics{
		reservationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "barbery",
			Subsystem: "scheduling",
			Name:      "reservations_total",
			Help:      "Total slot reservation attempts",
		}, []string{"outcome", "status"}),
		relocationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "barbery",
			Subsystem: "scheduling",
			Name:      "relocations_total",
			Help:      "Total appointment relocation attempts",
		}, []string{"outcome", "appointment_type"}),
		meetingClaims: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "barbery",
			Subsystem: "scheduling",
			Name:      "meeting_claims_total",
			Help:      "Total proposed-meeting booking attempts",
		}, []string{"outcome"}),
		placementLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "barbery",
			Subsystem: "scheduling",
			Name:      "placement_latency_seconds",
			Help:      "Latency of placement operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.reservationsTotal, m.relocationsTotal, m.meetingClaims, m.placementLatency)
	return m
}

func (m *SchedulingMetrics) ObserveReservation(outcome, status string) {
	if m == nil {
		return
	}
	m.reservationsTotal.WithLabelValues(outcome, status).Inc()
}

func (m *SchedulingMetrics) ObserveRelocation(outcome, appointmentType string) {
	if m == nil {
		return
	}
	m.relocationsTotal.WithLabelValues(outcome, appointmentType).Inc()
}

func (m *SchedulingMetrics) ObserveMeetingClaim(outcome string) {
	if m == nil {
		return
	}
	m.meetingClaims.WithLabelValues(outcome).Inc()
}

func (m *SchedulingMetrics) ObservePlacementLatency(operation string, seconds float64) {
	if m == nil {
		return
	}
	m.placementLatency.WithLabelValues(operation).Observe(seconds)
}
