package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"interviewprep/internal/config"
	"interviewprep/internal/errors"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// ObservabilityConfig holds configuration for observability
type ObservabilityConfig struct {
	ServiceName    string
	ServiceVersion string
	Enabled        bool
	ConsoleOutput  bool
	PrettyPrint    bool
	SampleRate     float64
	Prometheus     PrometheusConfig
}

// Metrics holds the instruments recorded by the backend client and the front ends.
// The zero value is usable and records nothing.
type Metrics struct {
	tracer oteltrace.Tracer

	// Remote call metrics
	RemoteCallDuration metric.Float64Histogram
	RemoteCalls        metric.Int64Counter
	RemoteCallErrors   metric.Int64Counter

	// Business metrics
	SkillsDetected     metric.Int64Histogram
	QuestionsGenerated metric.Int64Counter
	CodeAnalyses       metric.Int64Counter

	// Front end metrics
	ActiveSessions metric.Int64UpDownCounter
	RateLimitHits  metric.Int64Counter

	// Breaker metrics
	BreakerTransitions metric.Int64Counter
}

// ObservabilityManager manages OpenTelemetry setup
type ObservabilityManager struct {
	config         ObservabilityConfig
	fullConfig     *config.Config
	logger         *errors.Logger
	tracerProvider *trace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	metrics        *Metrics
	shutdownFuncs  []func(context.Context) error
}

// NewObservabilityManager creates a new observability manager
func NewObservabilityManager(obsConfig ObservabilityConfig, fullConfig *config.Config, logger *errors.Logger) (*ObservabilityManager, error) {
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	om := &ObservabilityManager{
		config:     obsConfig,
		fullConfig: fullConfig,
		logger:     logger,
	}
	if !obsConfig.Enabled {
		return om, nil
	}

	res, err := om.createResource()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize resource: %w", err)
	}

	if err := om.initTracing(res); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if err := om.initMetrics(res); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	return om, nil
}

// createResource describes this process to every exporter
func (om *ObservabilityManager) createResource() (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(om.config.ServiceName),
			semconv.ServiceVersion(om.config.ServiceVersion),
			attribute.String("service.instance.id", om.getServiceInstanceID()),
		),
	)
}

// initTracing sets up OpenTelemetry tracing
func (om *ObservabilityManager) initTracing(res *resource.Resource) error {
	var exporter trace.SpanExporter
	var err error

	switch {
	case om.config.ConsoleOutput:
		opts := []stdouttrace.Option{}
		if om.config.PrettyPrint {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}
		exporter, err = stdouttrace.New(opts...)
	case om.fullConfig != nil && om.fullConfig.Observability.OTLP.Enabled:
		exporter, err = om.createOTLPExporter()
	default:
		exporter = &noOpSpanExporter{}
	}
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(trace.TraceIDRatioBased(om.config.SampleRate)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	om.tracerProvider = tp
	om.shutdownFuncs = append(om.shutdownFuncs, tp.Shutdown)
	return nil
}

// initMetrics sets up OpenTelemetry metrics
func (om *ObservabilityManager) initMetrics(res *resource.Resource) error {
	readers, err := om.setupMetricReaders()
	if err != nil {
		return err
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	for _, reader := range readers {
		opts = append(opts, sdkmetric.WithReader(reader))
	}

	mp := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(mp)
	om.meterProvider = mp
	om.shutdownFuncs = append(om.shutdownFuncs, mp.Shutdown)

	metrics, err := NewMetrics(mp.Meter(om.config.ServiceName), om.tracerProvider.Tracer(om.config.ServiceName+".backend"))
	if err != nil {
		return err
	}
	om.metrics = metrics
	return nil
}

// setupMetricReaders sets up all metric readers based on configuration
func (om *ObservabilityManager) setupMetricReaders() ([]sdkmetric.Reader, error) {
	var readers []sdkmetric.Reader

	if om.config.ConsoleOutput {
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create console metric exporter: %w", err)
		}
		readers = append(readers, sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(om.getMetricsCollectionInterval())))
	}

	if om.fullConfig != nil && om.fullConfig.Observability.OTLP.Enabled {
		reader, err := om.createOTLPMetricsReader()
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metrics reader: %w", err)
		}
		readers = append(readers, reader)
	}

	if om.config.Prometheus.Enabled {
		reader, handler, err := SetupPrometheusExporter(om.config.Prometheus)
		if err != nil {
			return nil, err
		}
		srv, err := StartPrometheusServer(handler, om.config.Prometheus.Port, om.logger)
		if err != nil {
			return nil, err
		}
		om.shutdownFuncs = append(om.shutdownFuncs, srv.Shutdown)
		readers = append(readers, reader)
	}

	if len(readers) == 0 {
		readers = append(readers, sdkmetric.NewManualReader())
	}

	return readers, nil
}

// NewMetrics creates every instrument on meter
func NewMetrics(meter metric.Meter, tracer oteltrace.Tracer) (*Metrics, error) {
	m := &Metrics{tracer: tracer}
	var err error

	if m.RemoteCallDuration, err = meter.Float64Histogram(
		"interviewprep_backend_call_duration_seconds",
		metric.WithDescription("Time spent waiting for the interview backend"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create backend call duration metric: %w", err)
	}

	if m.RemoteCalls, err = meter.Int64Counter(
		"interviewprep_backend_calls_total",
		metric.WithDescription("Total number of backend calls"),
	); err != nil {
		return nil, fmt.Errorf("failed to create backend call count metric: %w", err)
	}

	if m.RemoteCallErrors, err = meter.Int64Counter(
		"interviewprep_backend_errors_total",
		metric.WithDescription("Total number of failed backend calls by error type"),
	); err != nil {
		return nil, fmt.Errorf("failed to create backend error count metric: %w", err)
	}

	if m.SkillsDetected, err = meter.Int64Histogram(
		"interviewprep_skills_detected",
		metric.WithDescription("Number of skills returned per résumé analysis"),
	); err != nil {
		return nil, fmt.Errorf("failed to create skills detected metric: %w", err)
	}

	if m.QuestionsGenerated, err = meter.Int64Counter(
		"interviewprep_question_sets_total",
		metric.WithDescription("Total number of generated question sets"),
	); err != nil {
		return nil, fmt.Errorf("failed to create question sets metric: %w", err)
	}

	if m.CodeAnalyses, err = meter.Int64Counter(
		"interviewprep_code_analyses_total",
		metric.WithDescription("Total number of code analyses"),
	); err != nil {
		return nil, fmt.Errorf("failed to create code analyses metric: %w", err)
	}

	if m.ActiveSessions, err = meter.Int64UpDownCounter(
		"interviewprep_sessions_active",
		metric.WithDescription("Browser sessions currently held in memory"),
	); err != nil {
		return nil, fmt.Errorf("failed to create active sessions metric: %w", err)
	}

	if m.RateLimitHits, err = meter.Int64Counter(
		"interviewprep_rate_limit_hits_total",
		metric.WithDescription("Total number of rate limit hits"),
	); err != nil {
		return nil, fmt.Errorf("failed to create rate limit hits metric: %w", err)
	}

	if m.BreakerTransitions, err = meter.Int64Counter(
		"interviewprep_breaker_transitions_total",
		metric.WithDescription("Circuit breaker state transitions"),
	); err != nil {
		return nil, fmt.Errorf("failed to create breaker transition metric: %w", err)
	}

	return m, nil
}

// GetMetrics returns the metrics instance
func (om *ObservabilityManager) GetMetrics() *Metrics {
	if om == nil || om.metrics == nil {
		return &Metrics{}
	}
	return om.metrics
}

// HTTPMiddleware returns HTTP middleware with OpenTelemetry instrumentation
func (om *ObservabilityManager) HTTPMiddleware() func(http.Handler) http.Handler {
	if om == nil || !om.config.Enabled {
		return func(h http.Handler) http.Handler { return h }
	}

	return otelhttp.NewMiddleware(
		om.config.ServiceName,
		otelhttp.WithTracerProvider(om.tracerProvider),
		otelhttp.WithMeterProvider(om.meterProvider),
	)
}

// Transport wraps base so that outgoing backend requests carry trace context
func (om *ObservabilityManager) Transport(base http.RoundTripper) http.RoundTripper {
	if om == nil || !om.config.Enabled {
		return base
	}
	return otelhttp.NewTransport(base,
		otelhttp.WithTracerProvider(om.tracerProvider),
		otelhttp.WithMeterProvider(om.meterProvider),
	)
}

// Tracer returns a tracer for the service
func (om *ObservabilityManager) Tracer(name string) oteltrace.Tracer {
	if om == nil || !om.config.Enabled {
		return noop.NewTracerProvider().Tracer(name)
	}
	return om.tracerProvider.Tracer(name)
}

// Shutdown gracefully shuts down all observability components
func (om *ObservabilityManager) Shutdown(ctx context.Context) error {
	if om == nil {
		return nil
	}
	for _, shutdown := range om.shutdownFuncs {
		if err := shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}

// TrackRemoteCall wraps one backend call in a span and records its outcome
func (m *Metrics) TrackRemoteCall(ctx context.Context, endpoint string, fn func(context.Context) error) error {
	if m == nil || m.RemoteCalls == nil {
		return fn(ctx)
	}

	tracer := m.tracer
	if tracer == nil {
		tracer = otel.Tracer("interviewprep.backend")
	}
	ctx, span := tracer.Start(ctx, "backend"+endpoint)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start).Seconds()

	attrs := []attribute.KeyValue{
		attribute.String("endpoint", endpoint),
		attribute.Bool("success", err == nil),
	}
	m.RemoteCallDuration.Record(ctx, elapsed, metric.WithAttributes(attrs...))
	m.RemoteCalls.Add(ctx, 1, metric.WithAttributes(attrs...))
	span.SetAttributes(attrs...)

	if err != nil {
		errType := string(errors.TypeOf(err))
		m.RemoteCallErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("endpoint", endpoint),
			attribute.String("error_type", errType),
		))
		span.RecordError(err)
		span.SetStatus(codes.Error, errType)
	}
	return err
}

// RecordSkills records the size of one analysis result
func (m *Metrics) RecordSkills(ctx context.Context, count int) {
	if m == nil || m.SkillsDetected == nil {
		return
	}
	m.SkillsDetected.Record(ctx, int64(count))
}

// RecordQuestions counts one generated question set. flow is "generate" or "upload".
func (m *Metrics) RecordQuestions(ctx context.Context, flow string) {
	if m == nil || m.QuestionsGenerated == nil {
		return
	}
	m.QuestionsGenerated.Add(ctx, 1, metric.WithAttributes(attribute.String("flow", flow)))
}

// RecordCodeAnalysis counts one completed code analysis
func (m *Metrics) RecordCodeAnalysis(ctx context.Context) {
	if m == nil || m.CodeAnalyses == nil {
		return
	}
	m.CodeAnalyses.Add(ctx, 1)
}

// RecordRateLimitHit counts a rejected request. scope is "server", "client" or "backend".
func (m *Metrics) RecordRateLimitHit(ctx context.Context, scope string) {
	if m == nil || m.RateLimitHits == nil {
		return
	}
	m.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attribute.String("scope", scope)))
}

// SessionOpened and SessionClosed track live browser sessions
func (m *Metrics) SessionOpened(ctx context.Context) {
	if m == nil || m.ActiveSessions == nil {
		return
	}
	m.ActiveSessions.Add(ctx, 1)
}

func (m *Metrics) SessionClosed(ctx context.Context) {
	if m == nil || m.ActiveSessions == nil {
		return
	}
	m.ActiveSessions.Add(ctx, -1)
}

// RecordBreakerTransition counts a circuit breaker state change
func (m *Metrics) RecordBreakerTransition(ctx context.Context, name, to string) {
	if m == nil || m.BreakerTransitions == nil {
		return
	}
	m.BreakerTransitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("breaker", name),
		attribute.String("state", to),
	))
}

// No-op exporter used when neither console nor OTLP output is configured
type noOpSpanExporter struct{}

func (n *noOpSpanExporter) ExportSpans(ctx context.Context, spans []trace.ReadOnlySpan) error {
	return nil
}

func (n *noOpSpanExporter) Shutdown(ctx context.Context) error {
	return nil
}

// createOTLPExporter creates an OTLP HTTP trace exporter
func (om *ObservabilityManager) createOTLPExporter() (trace.SpanExporter, error) {
	otlpConfig := om.fullConfig.Observability.OTLP

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpointURL(otlpConfig.Endpoint),
	}
	if otlpConfig.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(otlpConfig.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(otlpConfig.Headers))
	}

	exporter, err := otlptracehttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}
	return exporter, nil
}

// createOTLPMetricsReader creates an OTLP HTTP metrics reader
func (om *ObservabilityManager) createOTLPMetricsReader() (sdkmetric.Reader, error) {
	otlpConfig := om.fullConfig.Observability.OTLP

	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpointURL(otlpConfig.Endpoint),
	}
	if otlpConfig.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	if len(otlpConfig.Headers) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(otlpConfig.Headers))
	}

	exporter, err := otlpmetrichttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	return sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(om.getMetricsCollectionInterval())), nil
}

func (om *ObservabilityManager) getServiceInstanceID() string {
	if om.fullConfig != nil && om.fullConfig.Observability.ServiceInstance != "" {
		return om.fullConfig.Observability.ServiceInstance
	}
	return om.config.ServiceName + "-1"
}

func (om *ObservabilityManager) getMetricsCollectionInterval() time.Duration {
	if om.fullConfig != nil && om.fullConfig.Observability.Metrics.CollectionInterval > 0 {
		return om.fullConfig.Observability.Metrics.CollectionInterval
	}
	return 15 * time.Second
}
