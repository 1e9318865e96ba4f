// Package telemetry exports OpenTelemetry spans for the stages of the Stellar
// pipeline.
package telemetry

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

var tracerName = "github.com/thomasrohde/stellar/pkg/telemetry"

// Stage names one pipeline pass.
type Stage string

const (
	StageRun       Stage = "run"
	StageLex       Stage = "lex"
	StageParse     Stage = "parse"
	StageInterpret Stage = "interpret"
	StageCheck     Stage = "check"
	StageFormat    Stage = "format"
)

// Instrumenter starts spans for pipeline stages.
type Instrumenter interface {
	Start(ctx context.Context, info StageStart) (context.Context, StageSpan)
	Shutdown(ctx context.Context) error
}

// StageStart describes a stage that is about to run.
type StageStart struct {
	Stage  Stage
	File   string
	Mode   string
	RunID  string
	Source int // length of the source in bytes
}

// StageResult describes how a stage finished.
type StageResult struct {
	Err           error
	Diagnostics   int
	Statements    int
	RuntimeErrors int
}

// StageSpan is ended exactly once per started stage.
type StageSpan interface {
	End(result StageResult)
}

// Option attaches extra span processors, e.g. a tracetest recorder.
type Option func(*[]sdktrace.SpanProcessor)

func WithSpanProcessor(proc sdktrace.SpanProcessor) Option {
	return func(procs *[]sdktrace.SpanProcessor) {
		if proc != nil {
			*procs = append(*procs, proc)
		}
	}
}

type manager struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	shutdown sync.Once
}

// New returns a no-op Instrumenter unless cfg names an OTLP endpoint or a
// span processor is supplied.
func New(cfg Config, opts ...Option) (Instrumenter, error) {
	var procs []sdktrace.SpanProcessor
	for _, opt := range opts {
		opt(&procs)
	}

	if !cfg.Enabled() && len(procs) == 0 {
		return Noop(), nil
	}

	res, err := resource.New(
		context.Background(),
		resource.WithSchemaURL(semconv.SchemaURL),
		resource.WithAttributes(buildResourceAttributes(cfg)...),
	)
	if err != nil {
		return nil, err
	}

	tpOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if cfg.Enabled() {
		exporter, err := newExporter(cfg)
		if err != nil {
			return nil, err
		}
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exporter))
	}
	for _, proc := range procs {
		tpOpts = append(tpOpts, sdktrace.WithSpanProcessor(proc))
	}

	tp := sdktrace.NewTracerProvider(tpOpts...)
	return &manager{tracer: tp.Tracer(tracerName), provider: tp}, nil
}

func (m *manager) Start(ctx context.Context, info StageStart) (context.Context, StageSpan) {
	ctx, span := m.tracer.Start(
		ctx,
		"stellar."+string(info.Stage),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(buildSpanAttributes(info)...),
	)
	return ctx, &stageSpan{span: span}
}

func (m *manager) Shutdown(ctx context.Context) error {
	if m == nil || m.provider == nil {
		return nil
	}
	var shutdownErr error
	m.shutdown.Do(func() {
		shutdownErr = m.provider.Shutdown(ctx)
	})
	return shutdownErr
}

type stageSpan struct {
	span trace.Span
}

func (ss *stageSpan) End(result StageResult) {
	if ss == nil || ss.span == nil {
		return
	}

	ss.span.SetAttributes(
		attribute.Int("stellar.diagnostics", result.Diagnostics),
		attribute.Int("stellar.statements", result.Statements),
		attribute.Int("stellar.runtime_errors", result.RuntimeErrors),
	)

	switch {
	case result.Err != nil:
		ss.span.RecordError(result.Err)
		ss.span.SetStatus(codes.Error, result.Err.Error())
	case result.Diagnostics > 0:
		ss.span.SetStatus(codes.Error, "diagnostics reported")
	case result.RuntimeErrors > 0:
		ss.span.SetStatus(codes.Error, "runtime errors reported")
	default:
		ss.span.SetStatus(codes.Ok, "OK")
	}
	ss.span.End()
}

// Noop returns an Instrumenter that records nothing.
func Noop() Instrumenter {
	return noopInstrumenter{}
}

type noopInstrumenter struct{}

type noopSpan struct{}

func (noopInstrumenter) Start(ctx context.Context, _ StageStart) (context.Context, StageSpan) {
	return ctx, noopSpan{}
}

func (noopInstrumenter) Shutdown(context.Context) error { return nil }

func (noopSpan) End(StageResult) {}

func newExporter(cfg Config) (sdktrace.SpanExporter, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("telemetry endpoint is required")
	}

	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	clientOpts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		clientOpts = append(clientOpts, otlptracegrpc.WithInsecure())
	}
	if len(cfg.Headers) > 0 {
		clientOpts = append(clientOpts, otlptracegrpc.WithHeaders(cfg.Headers))
	}

	client := otlptracegrpc.NewClient(clientOpts...)
	return otlptrace.New(ctx, client)
}

func buildResourceAttributes(cfg Config) []attribute.KeyValue {
	name := cfg.ServiceName
	if strings.TrimSpace(name) == "" {
		name = defaultServiceName
	}
	attrs := []attribute.KeyValue{semconv.ServiceName(name)}
	if strings.TrimSpace(cfg.Version) != "" {
		attrs = append(attrs, semconv.ServiceVersion(cfg.Version))
	}
	return attrs
}

func buildSpanAttributes(info StageStart) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("stellar.stage", string(info.Stage)),
		attribute.Int("stellar.source_bytes", info.Source),
	}
	if info.File != "" {
		attrs = append(attrs, attribute.String("stellar.file", info.File))
	}
	if info.Mode != "" {
		attrs = append(attrs, attribute.String("stellar.mode", info.Mode))
	}
	if info.RunID != "" {
		attrs = append(attrs, attribute.String("stellar.run_id", info.RunID))
	}
	return attrs
}
