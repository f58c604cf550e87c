package backend

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"interviewprep/internal/config"
	"interviewprep/internal/errors"
	"interviewprep/internal/types"
)

func testConfig(baseURL string) config.BackendConfig {
	return config.BackendConfig{
		BaseURL:   baseURL,
		Timeout:   5 * time.Second,
		UserAgent: "interviewprep-test",
	}
}

func codeOf(err error) string {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

var resume = types.UploadedFile{Name: "cv.pdf", Content: []byte("%PDF-1.4 fake")}

func TestAnalyzeSendsFileAndParsesSkills(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != EndpointAnalyze || r.Method != http.MethodPost {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Request-ID") == "" {
			t.Error("Expected X-Request-ID header")
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("Expected file part: %v", err)
			return
		}
		content, _ := io.ReadAll(file)
		if header.Filename != "cv.pdf" || string(content) != "%PDF-1.4 fake" {
			t.Errorf("Unexpected file part %q %q", header.Filename, content)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`["Java","SQL","Java"," "]`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil, nil)
	skills, err := client.Analyze(context.Background(), types.AnalyzeRequest{File: resume})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if !reflect.DeepEqual(skills, []string{"Java", "SQL"}) {
		t.Errorf("Expected [Java SQL], got %v", skills)
	}
}

func TestGenerateEncodesForm(t *testing.T) {
	tests := []struct {
		name           string
		req            types.GenerateRequest
		wantJobDesc    []string
		wantSkills     []string
		wantExperience string
	}{
		{
			name: "all fields",
			req: types.GenerateRequest{
				File:           resume,
				Experience:     "Experienced (Range: 5-8 years)",
				QuestionType:   types.QuestionProgramming,
				JobDescription: "Backend engineer",
				SelectedSkills: []string{"SQL", "Java", "Go"},
			},
			wantJobDesc:    []string{"Backend engineer"},
			wantSkills:     []string{"SQL", "Java", "Go"},
			wantExperience: "Experienced (Range: 5-8 years)",
		},
		{
			name: "empty job description and no skills are omitted",
			req: types.GenerateRequest{
				File:         resume,
				Experience:   "Fresher",
				QuestionType: types.QuestionMixed,
			},
			wantExperience: "Fresher",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != EndpointGenerate {
					t.Errorf("Unexpected path %s", r.URL.Path)
				}
				if err := r.ParseMultipartForm(1 << 20); err != nil {
					t.Errorf("ParseMultipartForm: %v", err)
					return
				}
				form := r.MultipartForm.Value
				if got := form["experienceLevel"]; !reflect.DeepEqual(got, []string{tt.wantExperience}) {
					t.Errorf("experienceLevel = %v", got)
				}
				if got := form["questionType"]; !reflect.DeepEqual(got, []string{string(tt.req.QuestionType)}) {
					t.Errorf("questionType = %v", got)
				}
				if got := form["jobDescription"]; !reflect.DeepEqual(got, tt.wantJobDesc) {
					t.Errorf("jobDescription = %v, want %v", got, tt.wantJobDesc)
				}
				if got := form["selectedSkills"]; !reflect.DeepEqual(got, tt.wantSkills) {
					t.Errorf("selectedSkills = %v, want %v", got, tt.wantSkills)
				}
				if len(r.MultipartForm.File["file"]) != 1 {
					t.Error("Expected exactly one file part")
				}
				_, _ = w.Write([]byte("1. What is a goroutine?"))
			}))
			defer server.Close()

			client := NewClient(testConfig(server.URL), nil, nil)
			questions, err := client.Generate(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			if questions != "1. What is a goroutine?" {
				t.Errorf("Unexpected questions %q", questions)
			}
		})
	}
}

func TestUploadEncodesExperienceOnly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != EndpointUpload {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
			return
		}
		if len(r.MultipartForm.Value) != 1 || r.FormValue("experienceLevel") != "Fresher" {
			t.Errorf("Unexpected fields %v", r.MultipartForm.Value)
		}
		_, _ = w.Write([]byte("questions"))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil, nil)
	got, err := client.Upload(context.Background(), types.UploadRequest{File: resume, Experience: "Fresher"})
	if err != nil || got != "questions" {
		t.Fatalf("Upload = %q, %v", got, err)
	}
}

func TestAnalyzeCodeSendsBodyVerbatim(t *testing.T) {
	for _, code := range []string{"", "func main() {}\n\t// tabs kept"} {
		var received []byte
		var contentType string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			received, _ = io.ReadAll(r.Body)
			contentType = r.Header.Get("Content-Type")
			_, _ = w.Write([]byte("looks fine"))
		}))

		client := NewClient(testConfig(server.URL), nil, nil)
		got, err := client.AnalyzeCode(context.Background(), types.CodeAnalysisRequest{Code: code})
		server.Close()

		if err != nil || got != "looks fine" {
			t.Fatalf("AnalyzeCode(%q) = %q, %v", code, got, err)
		}
		if string(received) != code {
			t.Errorf("Expected body %q, got %q", code, received)
		}
		if contentType != "text/plain; charset=utf-8" {
			t.Errorf("Unexpected content type %q", contentType)
		}
	}
}

func TestOversizedResponseIsRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("0123456789abcdef"))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil, nil)

	client.maxBody = 16
	got, err := client.Generate(context.Background(), types.GenerateRequest{File: resume, Experience: "Fresher"})
	if err != nil || got != "0123456789abcdef" {
		t.Fatalf("Expected a body at the limit to pass, got %q, %v", got, err)
	}

	client.maxBody = 15
	got, err = client.Generate(context.Background(), types.GenerateRequest{File: resume, Experience: "Fresher"})
	if codeOf(err) != errors.ErrCodeInvalidResponse || !errors.IsTransport(err) {
		t.Errorf("Expected INVALID_RESPONSE transport error, got %v", err)
	}
	if got != "" {
		t.Errorf("Expected no partial questions, got %q", got)
	}
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantType errors.ErrorType
		wantCode string
	}{
		{"rate limited", http.StatusTooManyRequests, "slow down", errors.ErrorTypeRateLimit, errors.ErrCodeRateLimited},
		{"server error", http.StatusInternalServerError, "boom", errors.ErrorTypeTransport, errors.ErrCodeBackendStatus},
		{"bad request", http.StatusBadRequest, "no file", errors.ErrorTypeTransport, errors.ErrCodeBackendStatus},
		{"unreadable skills", http.StatusOK, "<html>", errors.ErrorTypeTransport, errors.ErrCodeInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(testConfig(server.URL), nil, nil)
			_, err := client.Analyze(context.Background(), types.AnalyzeRequest{File: resume})
			if errors.TypeOf(err) != tt.wantType {
				t.Errorf("Expected type %s, got %s (%v)", tt.wantType, errors.TypeOf(err), err)
			}
			if codeOf(err) != tt.wantCode {
				t.Errorf("Expected code %s, got %s", tt.wantCode, codeOf(err))
			}
		})
	}
}

func TestUnreachableBackendIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(testConfig(url), nil, nil)
	_, err := client.Generate(context.Background(), types.GenerateRequest{File: resume, Experience: "Fresher"})
	if !errors.IsTransport(err) || codeOf(err) != errors.ErrCodeBackendUnavailable {
		t.Errorf("Expected BACKEND_UNAVAILABLE transport error, got %v", err)
	}
}

func TestCircuitBreakerOpensOnFailures(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.CircuitBreaker = config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		MinRequests:      2,
		FailureThreshold: 0.5,
	}
	client := NewClient(cfg, nil, nil)

	for range 2 {
		_, err := client.AnalyzeCode(context.Background(), types.CodeAnalysisRequest{Code: "x"})
		if codeOf(err) != errors.ErrCodeBackendStatus {
			t.Fatalf("Expected BACKEND_STATUS before tripping, got %v", err)
		}
	}

	_, err := client.AnalyzeCode(context.Background(), types.CodeAnalysisRequest{Code: "x"})
	if !errors.IsTransport(err) || codeOf(err) != errors.ErrCodeCircuitOpen {
		t.Errorf("Expected CIRCUIT_OPEN, got %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("Expected 2 backend hits, got %d", hits.Load())
	}
	if client.Healthy() {
		t.Error("Expected client to report unhealthy with an open breaker")
	}

	// other endpoints have their own breaker
	_, err = client.Analyze(context.Background(), types.AnalyzeRequest{File: resume})
	if codeOf(err) != errors.ErrCodeBackendStatus {
		t.Errorf("Expected analyze breaker to stay closed, got %v", err)
	}
}

func TestCircuitBreakerIgnoresRateLimits(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.CircuitBreaker = config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		MinRequests:      1,
		FailureThreshold: 0.1,
	}
	client := NewClient(cfg, nil, nil)

	for i := range 5 {
		_, err := client.Generate(context.Background(), types.GenerateRequest{File: resume, Experience: "Fresher"})
		if !errors.IsRateLimit(err) {
			t.Fatalf("call %d: expected rate limit error, got %v", i, err)
		}
	}
}

func TestOutboundLimiterRejectsWithoutCalling(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMin: 1, BurstCapacity: 1}
	client := NewClient(cfg, nil, nil)

	if _, err := client.AnalyzeCode(context.Background(), types.CodeAnalysisRequest{}); err != nil {
		t.Fatalf("First call should pass: %v", err)
	}
	_, err := client.AnalyzeCode(context.Background(), types.CodeAnalysisRequest{})
	if !errors.IsRateLimit(err) || codeOf(err) != errors.ErrCodeClientThrottled {
		t.Errorf("Expected CLIENT_RATE_LIMITED, got %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("Expected 1 backend hit, got %d", hits.Load())
	}
}
