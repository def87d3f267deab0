package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	SessionEventStarted   = "started"
	SessionEventRejected  = "rejected"
	SessionEventDecoded   = "decoded"
	SessionEventIgnored   = "ignored"
	SessionEventCancelled = "cancelled"
)

// SessionMetrics counts scan session transitions.
type SessionMetrics struct {
	events *prometheus.CounterVec
}

func NewSessionMetrics(reg prometheus.Registerer) *SessionMetrics {
	if reg == nil {
		return &SessionMetrics{}
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scan_sessions_total",
		Help: "Scan session events.",
	}, []string{"event"})
	reg.MustRegister(events)
	return &SessionMetrics{events: events}
}

func (s *SessionMetrics) IncEvent(event string) {
	if s == nil || s.events == nil {
		return
	}
	s.events.WithLabelValues(normalizeLabel(event)).Inc()
}
