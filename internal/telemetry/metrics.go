package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/wolfeidau/reservations"

// Metrics holds the instruments recorded by the request pipeline.
type Metrics struct {
	OriginRejectedTotal  metric.Int64Counter
	SessionsCreated      metric.Int64Counter
	SessionsDestroyed    metric.Int64Counter
	SessionCommitErrors  metric.Int64Counter
	ReservationsCreated  metric.Int64Counter
	PanicsRecoveredTotal metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the process wide instruments. Instruments created before Init is called
// are delegated to the meter provider once it is installed.
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.OriginRejectedTotal, _ = meter.Int64Counter(
		"reservations.http.origin_rejected.total",
		metric.WithDescription("Requests rejected by the origin policy"),
		metric.WithUnit("{request}"),
	)

	m.SessionsCreated, _ = meter.Int64Counter(
		"reservations.sessions.created.total",
		metric.WithDescription("Sessions persisted for the first time"),
		metric.WithUnit("{session}"),
	)

	m.SessionsDestroyed, _ = meter.Int64Counter(
		"reservations.sessions.destroyed.total",
		metric.WithDescription("Sessions destroyed by logout or regeneration"),
		metric.WithUnit("{session}"),
	)

	m.SessionCommitErrors, _ = meter.Int64Counter(
		"reservations.sessions.commit_errors.total",
		metric.WithDescription("Session store writes that failed"),
		metric.WithUnit("{error}"),
	)

	m.ReservationsCreated, _ = meter.Int64Counter(
		"reservations.reservations.created.total",
		metric.WithDescription("Reservations accepted"),
		metric.WithUnit("{reservation}"),
	)

	m.PanicsRecoveredTotal, _ = meter.Int64Counter(
		"reservations.http.panics.total",
		metric.WithDescription("Handler panics converted into 500 responses"),
		metric.WithUnit("{panic}"),
	)

	return m
}
