package server

import (
	"net/http"
)

// Handler returns the routed handler wrapped in the observability middleware
func (s *Server) Handler() http.Handler {
	return s.om.HTTPMiddleware()(s.setupRoutes())
}

// setupRoutes configures all HTTP routes and middleware
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	limit := s.rateLimitMiddleware()
	size := s.requestSizeLimitMiddleware()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /stats", s.statsHandler)

	mux.HandleFunc("GET /{$}", s.withSession(s.interviewPage))
	mux.HandleFunc("GET /code", s.withSession(s.codePage))
	mux.HandleFunc("GET /state", s.withSession(s.stateHandler))

	mux.HandleFunc("POST /analyze", limit(size(s.withSession(s.analyzeHandler))))
	mux.HandleFunc("POST /generate", limit(size(s.withSession(s.generateHandler))))
	mux.HandleFunc("POST /upload", limit(size(s.withSession(s.uploadHandler))))
	mux.HandleFunc("POST /code", limit(size(s.withSession(s.analyzeCodeHandler))))

	return mux
}

// requestSizeLimitMiddleware limits the size of incoming requests
func (s *Server) requestSizeLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if s.MaxRequestSize > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, s.MaxRequestSize)
			}

			next(w, r)
		}
	}
}
