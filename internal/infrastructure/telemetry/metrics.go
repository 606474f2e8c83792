package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// WorkflowMetrics counts review workflow outcomes. The zero value and a nil
// pointer are both safe to use and record nothing.
type WorkflowMetrics struct {
	submitted    metric.Int64Counter
	decided      metric.Int64Counter
	ledger       metric.Int64Counter
	sinkFailures metric.Int64Counter
	handlerFails metric.Int64Counter
}

// NewWorkflowMetrics registers the workflow instruments on mp, or on the
// global meter provider when mp is nil.
func NewWorkflowMetrics(mp metric.MeterProvider) (*WorkflowMetrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(TracerName)

	var (
		m   WorkflowMetrics
		err error
	)
	if m.submitted, err = meter.Int64Counter("sgi.workflow.submitted",
		metric.WithDescription("Submissions awaiting review, by workflow")); err != nil {
		return nil, err
	}
	if m.decided, err = meter.Int64Counter("sgi.workflow.decided",
		metric.WithDescription("Review decisions, by workflow and outcome")); err != nil {
		return nil, err
	}
	if m.ledger, err = meter.Int64Counter("sgi.contribution.ledger_entries",
		metric.WithDescription("Confirmed contributions appended to the ledger")); err != nil {
		return nil, err
	}
	if m.sinkFailures, err = meter.Int64Counter("sgi.sink.failures",
		metric.WithDescription("Notification or email deliveries that failed")); err != nil {
		return nil, err
	}
	if m.handlerFails, err = meter.Int64Counter("sgi.event.handler_failures",
		metric.WithDescription("Event handlers that returned an error, by event type")); err != nil {
		return nil, err
	}
	return &m, nil
}

// Submitted records a new submission for workflow ("report", "fortuna")
func (m *WorkflowMetrics) Submitted(ctx context.Context, workflow string) {
	if m == nil || m.submitted == nil {
		return
	}
	m.submitted.Add(ctx, 1, metric.WithAttributes(attribute.String("workflow", workflow)))
}

// Decided records a decision; outcome is approved, rejected or already_decided
func (m *WorkflowMetrics) Decided(ctx context.Context, workflow, outcome string) {
	if m == nil || m.decided == nil {
		return
	}
	m.decided.Add(ctx, 1, metric.WithAttributes(
		attribute.String("workflow", workflow),
		attribute.String("outcome", outcome),
	))
}

// LedgerAppended records n confirmed contributions
func (m *WorkflowMetrics) LedgerAppended(ctx context.Context, n int) {
	if m == nil || m.ledger == nil || n == 0 {
		return
	}
	m.ledger.Add(ctx, int64(n))
}

// SinkFailed records a failed delivery on sink ("notification", "email")
func (m *WorkflowMetrics) SinkFailed(ctx context.Context, sink string) {
	if m == nil || m.sinkFailures == nil {
		return
	}
	m.sinkFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("sink", sink)))
}

// HandlerFailed records an event handler error for eventType
func (m *WorkflowMetrics) HandlerFailed(ctx context.Context, eventType string) {
	if m == nil || m.handlerFails == nil {
		return
	}
	m.handlerFails.Add(ctx, 1, metric.WithAttributes(attribute.String("event_type", eventType)))
}
