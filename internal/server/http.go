package server

import (
	"context"
	"sync"
	"time"

	"interviewprep/internal/codepanel"
	"interviewprep/internal/config"
	"interviewprep/internal/errors"
	"interviewprep/internal/observability"
	"interviewprep/internal/resume"
	"interviewprep/internal/wizard"
)

// Backend is everything a browser session needs from the remote service
type Backend interface {
	wizard.Backend
	codepanel.Analyzer
	Stats() map[string]any
	Healthy() bool
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Server holds configuration for the browser front end
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	Backend  Backend
	Resumes  *resume.Loader
	Sessions *SessionStore

	om      *observability.ObservabilityManager
	metrics *observability.Metrics
	pages   *pages

	closeOnce sync.Once

	// Logger
	Logger *errors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	SessionTTL     time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// ConfigFrom derives a ServerConfig from the application configuration.
// Requests may carry one résumé plus form overhead.
func ConfigFrom(cfg *config.Config, version string) ServerConfig {
	var maxRequest int64
	if cfg.App.MaxFileSize > 0 {
		maxRequest = cfg.App.MaxFileSize + 1<<20
	}
	rl := cfg.Server.RateLimit
	return ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Version:        version,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		SessionTTL:     cfg.Server.SessionTTL,
		MaxRequestSize: maxRequest,
		RateLimit:      &rl,
	}
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, backend Backend, om *observability.ObservabilityManager, logger *errors.Logger) (*Server, error) {
	if logger == nil {
		logger = errors.NewNopLogger()
	}

	p, err := loadPages()
	if err != nil {
		return nil, errors.NewInternalError("TEMPLATE_PARSE_FAILED", "Failed to parse page templates", err)
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(cfg.RateLimit.RequestsPerMin, cfg.RateLimit.BurstCapacity, logger)
	}

	metrics := om.GetMetrics()
	sessions := NewSessionStore(cfg.SessionTTL, func() *Session {
		return &Session{
			Wizard: wizard.NewController(backend, logger),
			Code:   codepanel.New(backend, logger),
		}
	}, SessionHooks{
		OnOpen:  func() { metrics.SessionOpened(context.Background()) },
		OnClose: func() { metrics.SessionClosed(context.Background()) },
	}, logger)

	var maxFile int64
	if appCfg != nil {
		maxFile = appCfg.App.MaxFileSize
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Backend:        backend,
		Resumes:        resume.NewLoader(maxFile, logger),
		Sessions:       sessions,
		om:             om,
		metrics:        metrics,
		pages:          p,
		Logger:         logger,
	}, nil
}
