package observability

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"interviewprep/internal/errors"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
)

// PrometheusConfig holds Prometheus-specific configuration
type PrometheusConfig struct {
	Enabled  bool
	Endpoint string
	Port     string
}

// SetupPrometheusExporter creates an exporter on a private registry and a
// handler that serves only that registry. Each manager gets its own registry,
// so building several in one process never collides on metric names.
func SetupPrometheusExporter(cfg PrometheusConfig) (metric.Reader, http.Handler, error) {
	reg := prom.NewRegistry()
	exporter, err := prometheus.New(prometheus.WithRegisterer(reg), prometheus.WithoutScopeInfo())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(endpoint, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	return exporter, mux, nil
}

// StartPrometheusServer binds port before returning so that a port conflict
// fails startup, then serves handler in the background.
func StartPrometheusServer(handler http.Handler, port string, logger *errors.Logger) (*http.Server, error) {
	ln, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return nil, fmt.Errorf("failed to listen for Prometheus on port %s: %w", port, err)
	}

	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("Serving Prometheus metrics", "addr", ln.Addr().String())
	go func() {
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.LogError(err, "Prometheus server error", "addr", ln.Addr().String())
		}
	}()

	return server, nil
}
