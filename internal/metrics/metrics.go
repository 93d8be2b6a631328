package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Sink records dispatch outcomes. Implementations must be safe for
// concurrent use; the coordinator reports from per-incident goroutines.
type Sink interface {
	IncidentSubmitted()
	IncidentFinished(state string)
	OfferResolved(outcome string)
	TimeToAssign(d time.Duration)
}

// PromSink exports dispatch metrics through Prometheus collectors. If the
// collectors are already registered, the existing ones are reused.
type PromSink struct {
	submitted    prometheus.Counter
	finished     *prometheus.CounterVec
	offers       *prometheus.CounterVec
	timeToAssign prometheus.Histogram
}

func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	submitted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_incidents_submitted_total",
		Help: "Total number of emergency alerts submitted",
	})
	finished := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_incidents_finished_total",
		Help: "Incidents that reached a terminal or assigned state",
	}, []string{"state"})
	offers := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_offers_total",
		Help: "Offers by final outcome",
	}, []string{"outcome"})
	timeToAssign := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dispatch_time_to_assign_seconds",
		Help:    "Time between alert submission and assignment commit",
		Buckets: []float64{1, 5, 10, 20, 30, 60, 120, 300},
	})

	collectors := []prometheus.Collector{submitted, finished, offers, timeToAssign}
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			are, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				return nil, err
			}
			collectors[i] = are.ExistingCollector
		}
	}

	return &PromSink{
		submitted:    collectors[0].(prometheus.Counter),
		finished:     collectors[1].(*prometheus.CounterVec),
		offers:       collectors[2].(*prometheus.CounterVec),
		timeToAssign: collectors[3].(prometheus.Histogram),
	}, nil
}

func (s *PromSink) IncidentSubmitted() {
	s.submitted.Inc()
}

func (s *PromSink) IncidentFinished(state string) {
	s.finished.WithLabelValues(state).Inc()
}

func (s *PromSink) OfferResolved(outcome string) {
	s.offers.WithLabelValues(outcome).Inc()
}

func (s *PromSink) TimeToAssign(d time.Duration) {
	s.timeToAssign.Observe(d.Seconds())
}

// NopSink drops every observation. Used where metrics are not wired.
type NopSink struct{}

func (NopSink) IncidentSubmitted()         {}
func (NopSink) IncidentFinished(string)    {}
func (NopSink) OfferResolved(string)       {}
func (NopSink) TimeToAssign(time.Duration) {}
