package server

import (
	"fmt"
	"io"
)

// displayServerInfo shows server configuration information
func (s *Server) displayServerInfo(w io.Writer, addr string) {
	_, _ = fmt.Fprintf(w, "Interview prep running at http://%s\n", addr)
	s.displayEndpoints(w)
	s.displayRequestLimitInfo(w)
	s.displayRateLimitInfo(w)
}

// displayEndpoints shows available endpoints
func (s *Server) displayEndpoints(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Available endpoints:")
	_, _ = fmt.Fprintln(w, "  GET  /          - Interview questions tab")
	_, _ = fmt.Fprintln(w, "  GET  /code      - Code analysis tab")
	_, _ = fmt.Fprintln(w, "  GET  /state     - Session state (JSON)")
	_, _ = fmt.Fprintln(w, "  POST /analyze   - Select a CV and detect skills")
	_, _ = fmt.Fprintln(w, "  POST /generate  - Generate interview questions")
	_, _ = fmt.Fprintln(w, "  POST /upload    - Legacy single-step generation")
	_, _ = fmt.Fprintln(w, "  POST /code      - Analyze code")
	_, _ = fmt.Fprintln(w, "  GET  /health    - Health check")
	_, _ = fmt.Fprintln(w, "  GET  /stats     - Server statistics")
	if s.AppConfig != nil {
		_, _ = fmt.Fprintf(w, "Backend: %s\n", s.AppConfig.Backend.BaseURL)
	}
}

// displayRequestLimitInfo shows request size limit configuration
func (s *Server) displayRequestLimitInfo(w io.Writer) {
	if s.MaxRequestSize > 0 {
		_, _ = fmt.Fprintf(w, "Request size limit: %d bytes (%.1f MB)\n", s.MaxRequestSize, float64(s.MaxRequestSize)/(1024*1024))
	} else {
		_, _ = fmt.Fprintln(w, "Request size limit: DISABLED")
	}
}

// displayRateLimitInfo shows rate limiting configuration
func (s *Server) displayRateLimitInfo(w io.Writer) {
	if s.RateLimit != nil && s.RateLimit.Enabled {
		_, _ = fmt.Fprintf(w, "Rate limiting: ENABLED (%d requests/min, burst: %d)\n",
			s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
		if s.RateLimit.ByIP {
			_, _ = fmt.Fprintln(w, "  - Per IP address rate limiting enabled")
		}
	} else {
		_, _ = fmt.Fprintln(w, "Rate limiting: DISABLED")
	}
}
