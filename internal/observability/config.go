package observability

import (
	"interviewprep/internal/config"
)

const defaultServiceName = "interviewprep"

// GetObservabilityConfig derives the manager settings from the application
// config. A nil cfg yields a disabled manager.
func GetObservabilityConfig(cfg *config.Config, version string) ObservabilityConfig {
	if cfg == nil {
		return ObservabilityConfig{
			ServiceName:    defaultServiceName,
			ServiceVersion: version,
			SampleRate:     1.0,
		}
	}
	obs := cfg.Observability

	out := ObservabilityConfig{
		ServiceName:    obs.ServiceName,
		ServiceVersion: obs.ServiceVersion,
		Enabled:        obs.Enabled,
		ConsoleOutput:  obs.ConsoleOutput,
		PrettyPrint:    obs.Console.PrettyPrint,
		SampleRate:     obs.SampleRate,
		Prometheus: PrometheusConfig{
			Enabled:  obs.Prometheus.Enabled,
			Endpoint: obs.Prometheus.Endpoint,
			Port:     obs.Prometheus.Port,
		},
	}
	if out.ServiceName == "" {
		out.ServiceName = defaultServiceName
	}
	if out.ServiceVersion == "" {
		out.ServiceVersion = version
	}
	if out.Prometheus.Port == "" {
		out.Prometheus.Port = "9090"
	}
	return out
}
