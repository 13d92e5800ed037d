package metrics

import (
	"context"

	eventbus "github.com/hanpama/gqlengine/internal/eventbus"
	events "github.com/hanpama/gqlengine/internal/events"
	"github.com/prometheus/client_golang/prometheus"
)

// Collectors holds the Prometheus collectors fed from executor events.
type Collectors struct {
	executions         *prometheus.CounterVec
	executionDuration  *prometheus.HistogramVec
	fieldErrors        prometheus.Counter
	activeSubscription prometheus.Gauge
	subscriptionEvents *prometheus.CounterVec
}

func New() *Collectors {
	return &Collectors{
		executions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gqlengine_executions_total",
				Help: "Executed operations by type and outcome.",
			},
			[]string{"type", "outcome"},
		),
		executionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gqlengine_execution_duration_seconds",
				Help:    "Execution latency by operation type.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"type"},
		),
		fieldErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gqlengine_field_errors_total",
			Help: "Field errors absorbed by a nullable position.",
		}),
		activeSubscription: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gqlengine_subscriptions_active",
			Help: "Open subscription streams.",
		}),
		subscriptionEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gqlengine_subscription_events_total",
				Help: "Source events mapped to results, by outcome.",
			},
			[]string{"outcome"},
		),
	}
}

func (c *Collectors) Describe(ch chan<- *prometheus.Desc) {
	c.executions.Describe(ch)
	c.executionDuration.Describe(ch)
	c.fieldErrors.Describe(ch)
	c.activeSubscription.Describe(ch)
	c.subscriptionEvents.Describe(ch)
}

func (c *Collectors) Collect(ch chan<- prometheus.Metric) {
	c.executions.Collect(ch)
	c.executionDuration.Collect(ch)
	c.fieldErrors.Collect(ch)
	c.activeSubscription.Collect(ch)
	c.subscriptionEvents.Collect(ch)
}

// Attach updates the collectors from events published on bus.
func (c *Collectors) Attach(bus *eventbus.Bus) (detach func()) {
	unsubs := []func(){
		eventbus.SubscribeOn(bus, func(_ context.Context, e events.ExecutionFinish) {
			c.executions.WithLabelValues(e.OperationType, outcome(e)).Inc()
			c.executionDuration.WithLabelValues(e.OperationType).Observe(e.Duration.Seconds())
		}),
		eventbus.SubscribeOn(bus, func(context.Context, events.FieldError) {
			c.fieldErrors.Inc()
		}),
		eventbus.SubscribeOn(bus, func(context.Context, events.SubscriptionStart) {
			c.activeSubscription.Inc()
		}),
		eventbus.SubscribeOn(bus, func(_ context.Context, e events.SubscriptionEvent) {
			if e.Errors > 0 {
				c.subscriptionEvents.WithLabelValues("error").Inc()
				return
			}
			c.subscriptionEvents.WithLabelValues("ok").Inc()
		}),
		eventbus.SubscribeOn(bus, func(context.Context, events.SubscriptionStop) {
			c.activeSubscription.Dec()
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func outcome(e events.ExecutionFinish) string {
	switch {
	case e.DataOmitted:
		return "rejected"
	case len(e.Errors) > 0:
		return "partial"
	default:
		return "ok"
	}
}
