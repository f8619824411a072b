package processor

import (
	"context"

	"github.com/r3e-network/discovery-pipeline/pkg/cloudevent"
	"github.com/r3e-network/discovery-pipeline/pkg/metrics"
	"github.com/r3e-network/discovery-pipeline/pkg/tracing"
)

// Pipeline runs the five ordered stages over one discovered event's data.
// Each stage is idempotent; re-running Process on its own output is a no-op
// beyond stable metadata.
type Pipeline struct {
	RedactionOptions RedactionOptions
	Correlation CorrelationStore
	Publisher *cloudevent.Publisher
	Tracer *tracing.Tracer
}

func NewPipeline(correlation CorrelationStore, publisher *cloudevent.Publisher) *Pipeline {
	return &Pipeline{
		RedactionOptions: DefaultRedactionOptions(),
		Correlation:      correlation,
		Publisher:        publisher,
		Tracer:           tracing.NewGlobalTracer("processor"),
	}
}

// Process runs the stage chain over env.Data in place, then publishes the
// scored event on the processing exchange, preserving correlation back to
// the original event.
func (p *Pipeline) Process(ctx context.Context, env cloudevent.Envelope) error {
	ctx, endSpan := p.Tracer.StartSpan(ctx, "processor.process", map[string]string{
		"event_type": env.Type,
	})
	var stageErr error
	defer func() { endSpan(stageErr) }()

	entityKind := EntityFromEventType(env.Type)
	data := env.Data
	if data == nil {
		data = map[string]interface{}{}
	}

	applyCandidateIdentification(data)
	applyEnrichment(entityKind, data)
	applyRedaction(data, p.RedactionOptions)
	applyScoring(entityKind, data)
	applyCorrelation(ctx, entityKind, data, p.Correlation)
	metrics.ProcessorMessagesHandled.WithLabelValues(entityKind).Inc()

	routingKey, eventType := cloudevent.ScoredRoutingKey(entityKind)
	outEnv := cloudevent.DerivedFrom(env, cloudevent.ProcessorSource, eventType, data)

	if p.Publisher == nil {
		return nil
	}
	stageErr = p.Publisher.Publish(ctx, routingKey, outEnv)
	return stageErr
}
