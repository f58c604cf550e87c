package observability

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"interviewprep/internal/config"
	"interviewprep/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/trace/noop"
)

func collectSum(t *testing.T, reader *sdkmetric.ManualReader, name string) []metricdata.DataPoint[int64] {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)
			return sum.DataPoints
		}
	}
	return nil
}

func TestTrackRemoteCallRecordsOutcome(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(mp.Meter("test"), noop.NewTracerProvider().Tracer("test"))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, m.TrackRemoteCall(ctx, "/analyze", func(context.Context) error { return nil }))

	failure := errors.NewRateLimitError(errors.ErrCodeRateLimited, "busy", nil)
	err = m.TrackRemoteCall(ctx, "/generate", func(context.Context) error { return failure })
	assert.Same(t, failure, err)

	var total int64
	for _, dp := range collectSum(t, reader, "interviewprep_backend_calls_total") {
		total += dp.Value
	}
	assert.Equal(t, int64(2), total)

	errPoints := collectSum(t, reader, "interviewprep_backend_errors_total")
	require.Len(t, errPoints, 1)
	v, ok := errPoints[0].Attributes.Value("error_type")
	require.True(t, ok)
	assert.Equal(t, "rate_limit", v.AsString())
}

func TestZeroMetricsAreSafe(t *testing.T) {
	var m *Metrics
	called := false
	err := m.TrackRemoteCall(context.Background(), "/analyze", func(context.Context) error {
		called = true
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, called)

	empty := &Metrics{}
	empty.RecordSkills(context.Background(), 3)
	empty.RecordQuestions(context.Background(), "generate")
	empty.RecordCodeAnalysis(context.Background())
	empty.RecordRateLimitHit(context.Background(), "server")
	empty.SessionOpened(context.Background())
	empty.SessionClosed(context.Background())
	empty.RecordBreakerTransition(context.Background(), "backend", "open")
}

func TestDisabledManagerPassesThrough(t *testing.T) {
	om, err := NewObservabilityManager(GetObservabilityConfig(nil, "test"), nil, nil)
	require.NoError(t, err)

	base := http.DefaultTransport
	assert.Equal(t, base, om.Transport(base))
	assert.NotNil(t, om.GetMetrics())

	h := http.NotFoundHandler()
	wrapped := om.HTTPMiddleware()(h)
	assert.NotNil(t, wrapped)
	assert.NoError(t, om.Shutdown(context.Background()))
}

func TestPrometheusExporterServesOwnRegistry(t *testing.T) {
	reader, handler, err := SetupPrometheusExporter(PrometheusConfig{Enabled: true})
	require.NoError(t, err)

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(mp.Meter("test"), noop.NewTracerProvider().Tracer("test"))
	require.NoError(t, err)
	m.RecordCodeAnalysis(context.Background())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "interviewprep_code_analyses")

	// a second exporter must not collide with the first
	_, _, err = SetupPrometheusExporter(PrometheusConfig{Enabled: true})
	assert.NoError(t, err)
}

func TestGetObservabilityConfigDefaults(t *testing.T) {
	cfg := &config.Config{Observability: config.ObservabilityConfig{Enabled: true}}
	got := GetObservabilityConfig(cfg, "1.2.3")
	assert.Equal(t, "interviewprep", got.ServiceName)
	assert.Equal(t, "1.2.3", got.ServiceVersion)
	assert.Equal(t, "9090", got.Prometheus.Port)
	assert.True(t, got.Enabled)

	cfg.Observability.ServiceVersion = "pinned"
	assert.Equal(t, "pinned", GetObservabilityConfig(cfg, "1.2.3").ServiceVersion)
}
