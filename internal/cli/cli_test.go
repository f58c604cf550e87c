package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"interviewprep/internal/config"
	"interviewprep/internal/errors"
	"interviewprep/internal/types"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend answers the four endpoints and records the last form it received
type fakeBackend struct {
	mu       sync.Mutex
	form     url.Values
	code     string
	status   int
	skills   []string
	endpoint []string
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.endpoint = append(f.endpoint, r.URL.Path)

	if f.status != 0 {
		w.WriteHeader(f.status)
		return
	}

	switch r.URL.Path {
	case "/analyze":
		_ = json.NewEncoder(w).Encode(f.skills)
	case "/generate", "/upload":
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.form = r.MultipartForm.Value
		_, _ = io.WriteString(w, "1. What is a goroutine?")
	case "/analyze-code":
		body, _ := io.ReadAll(r.Body)
		f.code = string(body)
		_, _ = io.WriteString(w, "Looks fine.")
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newBackend(t *testing.T, skills ...string) (*fakeBackend, *config.Config) {
	t.Helper()
	fb := &fakeBackend{skills: skills}
	ts := httptest.NewServer(fb)
	t.Cleanup(ts.Close)

	cfg := &config.Config{
		Backend: config.BackendConfig{BaseURL: ts.URL, Timeout: 5 * time.Second, UserAgent: "interviewprep-test"},
		App: config.AppConfig{
			LogLevel:         "info",
			DefaultFormat:    "text",
			SupportedFormats: []string{"json", "text", "markdown", "yaml", "xlsx"},
			MaxFileSize:      1 << 20,
		},
	}
	return fb, cfg
}

// resetFlags restores flag defaults left over from a previous Execute
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
}

func run(t *testing.T, cfg *config.Config, stdin string, args ...string) (string, error) {
	t.Helper()
	for _, c := range rootCmd.Commands() {
		resetFlags(c)
	}

	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(strings.NewReader(stdin))
	err := Execute(context.Background(), cfg, errors.NewNopLogger())
	return out.String(), err
}

func writeCV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cv.txt")
	require.NoError(t, os.WriteFile(path, []byte("Go, SQL, Docker"), 0600))
	return path
}

func TestAnalyzeCommand(t *testing.T) {
	_, cfg := newBackend(t, "Go", "SQL")

	out, err := run(t, cfg, "", "analyze", writeCV(t))
	require.NoError(t, err)
	assert.Contains(t, out, "=== DETECTED SKILLS ===")
	assert.Contains(t, out, "1. Go\n")
	assert.Contains(t, out, "2. SQL\n")
}

func TestGenerateCommand(t *testing.T) {
	fb, cfg := newBackend(t, "Go", "SQL", "Docker")
	jd := filepath.Join(t.TempDir(), "job.txt")
	require.NoError(t, os.WriteFile(jd, []byte("  Backend role\n"), 0600))

	out, err := run(t, cfg, "", "generate", writeCV(t),
		"--range", "5-8",
		"--type", "programming",
		"--job-description-file", jd,
		"--exclude-skill", "docker",
		"--skill", "Ruby",
		"--format", "json")
	require.NoError(t, err)

	var set types.QuestionSet
	require.NoError(t, json.Unmarshal([]byte(out), &set))
	assert.Equal(t, "Experienced (Range: 5-8 years)", set.Experience)
	assert.Equal(t, "Programming", set.QuestionType)
	assert.True(t, set.JobDescription)
	assert.Equal(t, "1. What is a goroutine?", set.Questions)

	fb.mu.Lock()
	defer fb.mu.Unlock()
	assert.Equal(t, []string{"/analyze", "/generate"}, fb.endpoint)
	assert.Equal(t, []string{"Experienced (Range: 5-8 years)"}, fb.form["experienceLevel"])
	assert.Equal(t, []string{"Backend role"}, fb.form["jobDescription"])
	// Ruby is not among the detected skills, so nothing is kept
	assert.Empty(t, fb.form["selectedSkills"])
}

func TestGenerateKeepsOnlyNamedSkills(t *testing.T) {
	fb, cfg := newBackend(t, "Go", "SQL", "Docker")

	_, err := run(t, cfg, "", "generate", writeCV(t), "--skill", "sql", "--skill", "Docker", "--exclude-skill", "Docker")
	require.NoError(t, err)

	fb.mu.Lock()
	defer fb.mu.Unlock()
	assert.Equal(t, []string{"SQL"}, fb.form["selectedSkills"])
	assert.Equal(t, []string{"Fresher"}, fb.form["experienceLevel"])
	assert.Equal(t, []string{"Mixed"}, fb.form["questionType"])
}

func TestGenerateBusyBackend(t *testing.T) {
	fb, cfg := newBackend(t, "Go")
	cfg.Backend.BaseURL = throttleAfterAnalyze(t, fb)

	_, err := run(t, cfg, "", "generate", writeCV(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Server is busy. Please try again in a minute.")
	assert.True(t, errors.IsRateLimit(err))
}

// throttleAfterAnalyze fronts fb with a server that answers /generate with 429
func throttleAfterAnalyze(t *testing.T, fb *fakeBackend) string {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/generate" {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fb.ServeHTTP(w, r)
	}))
	t.Cleanup(ts.Close)
	return ts.URL
}

func TestAnalyzeFailureExits(t *testing.T) {
	fb, cfg := newBackend(t)
	fb.status = http.StatusInternalServerError

	_, err := run(t, cfg, "", "analyze", writeCV(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to analyze CV. Please try again.")
}

func TestMissingCV(t *testing.T) {
	fb, cfg := newBackend(t, "Go")

	_, err := run(t, cfg, "", "analyze", filepath.Join(t.TempDir(), "absent.pdf"))
	require.Error(t, err)

	fb.mu.Lock()
	defer fb.mu.Unlock()
	assert.Empty(t, fb.endpoint, "no call may be made without a readable CV")
}

func TestUploadCommand(t *testing.T) {
	fb, cfg := newBackend(t)

	out, err := run(t, cfg, "", "upload", writeCV(t), "--experience", "experienced", "--range", ">15", "--format", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "# Interview Questions")
	assert.Contains(t, out, "**Experience:** Experienced (Range: >15 years)")

	fb.mu.Lock()
	defer fb.mu.Unlock()
	assert.Equal(t, []string{"/upload"}, fb.endpoint)
	assert.Equal(t, []string{"Experienced (Range: >15 years)"}, fb.form["experienceLevel"])
}

func TestAnalyzeCodeFromStdin(t *testing.T) {
	fb, cfg := newBackend(t)

	out, err := run(t, cfg, "func main() {}\n", "analyze-code", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "analysis: Looks fine.")
	assert.Contains(t, out, "bytes: 15")

	fb.mu.Lock()
	defer fb.mu.Unlock()
	assert.Equal(t, "func main() {}\n", fb.code)
}

func TestAnalyzeCodeEmptyInputIsSent(t *testing.T) {
	fb, cfg := newBackend(t)

	_, err := run(t, cfg, "", "analyze-code", "-")
	require.NoError(t, err)

	fb.mu.Lock()
	defer fb.mu.Unlock()
	assert.Equal(t, []string{"/analyze-code"}, fb.endpoint)
	assert.Equal(t, "", fb.code)
}

func TestInvalidFlagsAreRejected(t *testing.T) {
	fb, cfg := newBackend(t, "Go")
	cv := writeCV(t)

	tests := []struct {
		name string
		args []string
	}{
		{"format", []string{"analyze", cv, "--format", "xml"}},
		{"experience", []string{"generate", cv, "--experience", "senior"}},
		{"range", []string{"generate", cv, "--range", "3-4"}},
		{"question type", []string{"generate", cv, "--type", "Essay"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, cfg, "", tt.args...)
			assert.Error(t, err)
		})
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()
	assert.Empty(t, fb.endpoint)
}

func TestVersionCommand(t *testing.T) {
	_, cfg := newBackend(t)
	out, err := run(t, cfg, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "interviewprep version "+Version)
}

func TestWizardLoggerWithoutFileIsSilent(t *testing.T) {
	logger, closeLog, err := wizardLogger(&config.Config{})
	require.NoError(t, err)
	defer closeLog()
	assert.NotNil(t, logger)

	path := filepath.Join(t.TempDir(), "logs", "wizard.log")
	logger, closeLog2, err := wizardLogger(&config.Config{App: config.AppConfig{LogLevel: "info", LogFile: path}})
	require.NoError(t, err)
	logger.Info("hello")
	closeLog2()

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"msg":"hello"`)
}
