package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/TailoredAgents/joslyn-api"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Ledger metrics
	EventsAppendedTotal    metric.Int64Counter
	EventAppendErrorsTotal metric.Int64Counter

	// Usage/cost metrics
	UsageRecordsTotal  metric.Int64Counter
	UsageCostCents     metric.Int64Counter
	RateTableMissTotal metric.Int64Counter

	// Queue metrics
	JobsEnqueuedTotal    metric.Int64Counter
	EnqueueFailuresTotal metric.Int64Counter

	// Access metrics
	AccessDeniedTotal metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// initMetrics creates and registers all metric instruments
func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.EventsAppendedTotal, _ = meter.Int64Counter(
		"joslyn.events.appended.total",
		metric.WithDescription("Total number of ledger events appended"),
		metric.WithUnit("{event}"),
	)

	m.EventAppendErrorsTotal, _ = meter.Int64Counter(
		"joslyn.events.append.errors.total",
		metric.WithDescription("Total number of ledger append failures"),
		metric.WithUnit("{error}"),
	)

	m.UsageRecordsTotal, _ = meter.Int64Counter(
		"joslyn.usage.records.total",
		metric.WithDescription("Total number of usage records written"),
		metric.WithUnit("{record}"),
	)

	m.UsageCostCents, _ = meter.Int64Counter(
		"joslyn.usage.cost.cents",
		metric.WithDescription("Accumulated model usage cost in cents"),
		metric.WithUnit("{cent}"),
	)

	m.RateTableMissTotal, _ = meter.Int64Counter(
		"joslyn.pricing.rate_table.misses.total",
		metric.WithDescription("Total number of cost computations that fell back to default or zero rates"),
		metric.WithUnit("{miss}"),
	)

	m.JobsEnqueuedTotal, _ = meter.Int64Counter(
		"joslyn.jobs.enqueued.total",
		metric.WithDescription("Total number of background jobs enqueued"),
		metric.WithUnit("{job}"),
	)

	m.EnqueueFailuresTotal, _ = meter.Int64Counter(
		"joslyn.jobs.enqueue.failures.total",
		metric.WithDescription("Total number of enqueue attempts that exhausted retries"),
		metric.WithUnit("{failure}"),
	)

	m.AccessDeniedTotal, _ = meter.Int64Counter(
		"joslyn.access.denied.total",
		metric.WithDescription("Total number of role checks that were denied"),
		metric.WithUnit("{denial}"),
	)

	return m
}
