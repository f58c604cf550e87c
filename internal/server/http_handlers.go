package server

import (
	"encoding/json"
	"net/http"
)

// sessionView is the JSON form of one browser session
type sessionView struct {
	SessionID string        `json:"sessionId"`
	Notice    string        `json:"notice,omitempty"`
	Wizard    wizardView    `json:"wizard"`
	Code      codePanelView `json:"code"`
}

type wizardView struct {
	Stage          string   `json:"stage"`
	Loading        bool     `json:"loading"`
	File           string   `json:"file,omitempty"`
	Experience     string   `json:"experience"`
	QuestionType   string   `json:"questionType"`
	JobDescription string   `json:"jobDescription,omitempty"`
	Skills         []string `json:"skills"`
	Selected       []string `json:"selectedSkills"`
	Questions      string   `json:"questions,omitempty"`
	Error          string   `json:"error,omitempty"`
}

type codePanelView struct {
	Code     string `json:"code"`
	Loading  bool   `json:"loading"`
	Analysis string `json:"analysis,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (s *Server) sessionView(sess *Session) sessionView {
	st := sess.Wizard.State()
	code := sess.Code.State()

	v := sessionView{
		SessionID: sess.ID,
		Notice:    sess.TakeFlash(),
		Wizard: wizardView{
			Stage:          st.Stage.String(),
			Loading:        st.Loading,
			Experience:     st.Experience.Descriptor(),
			QuestionType:   string(st.QuestionType),
			JobDescription: st.JobDescription,
			Skills:         nonNil(st.Skills),
			Selected:       nonNil(st.Selected),
			Questions:      st.Questions,
			Error:          st.Error,
		},
		Code: codePanelView{
			Code:     code.Code,
			Loading:  code.Loading,
			Analysis: code.Analysis,
			Error:    code.Error,
		},
	}
	if st.File != nil {
		v.Wizard.File = st.File.Name
	}
	return v
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// stateHandler returns the session state as JSON
func (s *Server) stateHandler(w http.ResponseWriter, r *http.Request, sess *Session) {
	writeJSON(w, http.StatusOK, s.sessionView(sess))
}

// healthHandler reports the backend breakers. Any open breaker degrades the service.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	healthy := s.Backend.Healthy()

	response := map[string]any{
		"status":           "healthy",
		"service":          "interviewprep",
		"version":          s.Version,
		"circuit_breakers": s.Backend.Stats(),
	}
	if s.AppConfig != nil {
		response["backend"] = map[string]any{
			"base_url": s.AppConfig.Backend.BaseURL,
			"healthy":  healthy,
		}
	}

	status := http.StatusOK
	if !healthy {
		response["status"] = "degraded"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, response)
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "interviewprep",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"active_sessions":        s.Sessions.Len(),
		},
		"circuit_breakers": s.Backend.Stats(),
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
		}
	}

	writeJSON(w, http.StatusOK, response)
}

// writeJSON writes v with the given status
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:   error,
		Message: message,
	})
}
