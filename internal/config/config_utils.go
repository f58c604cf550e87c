package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
)

// applyFallbacks fills values that depend on other settings
func (c *Config) applyFallbacks() {
	c.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(c.Backend.BaseURL), "/")
	c.applyObservabilityDefaults()
}

// applyObservabilityDefaults applies default observability configuration values
func (c *Config) applyObservabilityDefaults() {
	if c.Observability.ServiceInstance == "" {
		c.Observability.ServiceInstance = generateServiceInstanceID(c.Observability.ServiceName)
	}

	// Set console output based on log level if not explicitly configured
	if c.App.LogLevel == "debug" && !c.Observability.ConsoleOutput {
		c.Observability.ConsoleOutput = true
	}
}

// generateServiceInstanceID names this process for exporters as
// service-hostname-pid
func generateServiceInstanceID(serviceName string) string {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = uuid.NewString()[:8]
	}
	return fmt.Sprintf("%s-%s-%d", serviceName, hostname, os.Getpid())
}
