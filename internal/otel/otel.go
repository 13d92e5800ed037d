package otel

import (
	"context"
	"sync"

	eventbus "github.com/hanpama/gqlengine/internal/eventbus"
	events "github.com/hanpama/gqlengine/internal/events"
	reqid "github.com/hanpama/gqlengine/internal/reqid"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const instrumentation = "gqlengine"

// Setup exports traces over OTLP/gRPC and attaches span subscribers to bus.
// If endpoint is empty, no telemetry is configured.
func Setup(ctx context.Context, bus *eventbus.Bus, endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	otel.SetTracerProvider(tp)

	detach := Attach(bus, tp.Tracer(instrumentation))
	return func(ctx context.Context) error {
		detach()
		return tp.Shutdown(ctx)
	}, nil
}

// Attach opens a span per operation and per subscription from the events
// published on bus. Field errors are recorded on the enclosing operation span.
func Attach(bus *eventbus.Bus, tracer trace.Tracer) (detach func()) {
	s := &subscriber{tracer: tracer}
	unsubs := []func(){
		eventbus.SubscribeOn(bus, s.executionStart),
		eventbus.SubscribeOn(bus, s.executionFinish),
		eventbus.SubscribeOn(bus, s.fieldError),
		eventbus.SubscribeOn(bus, s.subscriptionStart),
		eventbus.SubscribeOn(bus, s.subscriptionEvent),
		eventbus.SubscribeOn(bus, s.subscriptionStop),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

type subscriber struct {
	tracer   trace.Tracer
	opSpans  sync.Map // rid -> trace.Span
	subSpans sync.Map // subscription id -> trace.Span
}

func (s *subscriber) executionStart(ctx context.Context, e events.ExecutionStart) {
	rid, _ := reqid.FromContext(ctx)
	_, span := s.tracer.Start(ctx, "graphql.execute", trace.WithAttributes(
		attribute.String("graphql.operation.name", e.OperationName),
		attribute.String("graphql.operation.type", e.OperationType),
	))
	s.opSpans.Store(rid, span)
}

func (s *subscriber) executionFinish(ctx context.Context, e events.ExecutionFinish) {
	rid, _ := reqid.FromContext(ctx)
	v, ok := s.opSpans.LoadAndDelete(rid)
	if !ok {
		return
	}
	span := v.(trace.Span)
	span.SetAttributes(
		attribute.Int("graphql.error_count", len(e.Errors)),
		attribute.Bool("graphql.data_omitted", e.DataOmitted),
	)
	if e.DataOmitted {
		span.SetStatus(codes.Error, "execution did not start")
	}
	span.End()
}

func (s *subscriber) fieldError(ctx context.Context, e events.FieldError) {
	rid, _ := reqid.FromContext(ctx)
	v, ok := s.opSpans.Load(rid)
	if !ok {
		return
	}
	span := v.(trace.Span)
	span.AddEvent("graphql.field_error", trace.WithAttributes(
		attribute.String("graphql.field.path", e.Path),
		attribute.String("exception.message", e.Message),
	))
}

func (s *subscriber) subscriptionStart(ctx context.Context, e events.SubscriptionStart) {
	_, span := s.tracer.Start(ctx, "graphql.subscription", trace.WithAttributes(
		attribute.String("graphql.subscription.id", e.SubscriptionID),
		attribute.String("graphql.operation.name", e.OperationName),
		attribute.String("graphql.subscription.field", e.Field),
	))
	s.subSpans.Store(e.SubscriptionID, span)
}

func (s *subscriber) subscriptionEvent(_ context.Context, e events.SubscriptionEvent) {
	v, ok := s.subSpans.Load(e.SubscriptionID)
	if !ok {
		return
	}
	v.(trace.Span).AddEvent("graphql.subscription.event", trace.WithAttributes(
		attribute.Int("graphql.error_count", e.Errors),
		attribute.Int64("graphql.duration_us", e.Duration.Microseconds()),
	))
}

func (s *subscriber) subscriptionStop(_ context.Context, e events.SubscriptionStop) {
	v, ok := s.subSpans.LoadAndDelete(e.SubscriptionID)
	if !ok {
		return
	}
	span := v.(trace.Span)
	span.SetAttributes(attribute.Int64("graphql.subscription.events", e.Events))
	span.End()
}
