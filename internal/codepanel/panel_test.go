package codepanel

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"

	"interviewprep/internal/errors"
	"interviewprep/internal/types"
)

type fakeAnalyzer struct {
	mu       sync.Mutex
	received []string
	result   string
	err      error
}

func (f *fakeAnalyzer) AnalyzeCode(ctx context.Context, req types.CodeAnalysisRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.received = append(f.received, req.Code)
	return f.result, f.err
}

func TestNewPanelHasDefaultBuffer(t *testing.T) {
	p := New(&fakeAnalyzer{}, nil)
	st := p.State()
	if st.Code != DefaultCode || st.Loading || st.Analysis != "" {
		t.Errorf("Unexpected initial state %+v", st)
	}
	if st.AnalyzeLabel() != "Analyze Code" {
		t.Errorf("Unexpected label %q", st.AnalyzeLabel())
	}
}

func TestAnalyzeCode(t *testing.T) {
	tests := []struct {
		name         string
		code         string
		err          error
		wantAnalysis string
		wantError    string
	}{
		{"non-empty success", "class A {}", nil, "O(1)", ""},
		{"empty success", "", nil, "O(1)", ""},
		{"non-empty failure", "class A {}", errors.NewTransportError(errors.ErrCodeBackendStatus, "500", nil), "", MsgAnalyzeFailed},
		{"empty failure", "", errors.NewRateLimitError(errors.ErrCodeRateLimited, "429", nil), "", MsgAnalyzeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := &fakeAnalyzer{result: "O(1)", err: tt.err}
			p := New(analyzer, nil)
			p.EditCode(tt.code)

			res := p.AnalyzeCode(context.Background()).Result()
			if len(analyzer.received) != 1 || analyzer.received[0] != tt.code {
				t.Fatalf("Expected one call with %q, got %q", tt.code, analyzer.received)
			}
			if res.Value.Analysis != tt.wantAnalysis || res.Value.Error != tt.wantError {
				t.Errorf("Got analysis %q error %q", res.Value.Analysis, res.Value.Error)
			}
			if res.Value.Loading {
				t.Error("Expected loading to end")
			}
			if (tt.err != nil) != (res.Err != nil) {
				t.Errorf("Unexpected task error %v", res.Err)
			}
		})
	}
}

func TestAnalyzeClearsPreviousResult(t *testing.T) {
	analyzer := &fakeAnalyzer{result: "first"}
	p := New(analyzer, nil)
	p.AnalyzeCode(context.Background()).Result()

	analyzer.mu.Lock()
	analyzer.result = ""
	analyzer.err = errors.NewTransportError(errors.ErrCodeBackendUnavailable, "down", nil)
	analyzer.mu.Unlock()

	res := p.AnalyzeCode(context.Background()).Result()
	if res.Value.Analysis != "" || res.Value.Error != MsgAnalyzeFailed {
		t.Errorf("Expected previous analysis cleared, got %+v", res.Value)
	}
}

type panickingAnalyzer struct{}

func (panickingAnalyzer) AnalyzeCode(ctx context.Context, req types.CodeAnalysisRequest) (string, error) {
	panic("analyzer exploded")
}

func TestAnalyzeCodePanicEndsLoading(t *testing.T) {
	p := New(panickingAnalyzer{}, nil)

	res := p.AnalyzeCode(context.Background()).Result()
	if errors.TypeOf(res.Err) != errors.ErrorTypeInternal {
		t.Errorf("Expected an internal error, got %v", res.Err)
	}

	st := p.State()
	if st.Loading {
		t.Error("Expected loading to end after a panic")
	}
	if st.Error != MsgAnalyzeFailed {
		t.Errorf("Expected %q, got %q", MsgAnalyzeFailed, st.Error)
	}
	if st.AnalyzeLabel() != "Analyze Code" {
		t.Errorf("Expected the control to be usable again, got %q", st.AnalyzeLabel())
	}
}

// gatedAnalyzer holds each call until its reply is sent on the channel
type gatedAnalyzer struct {
	replies chan string
}

func (g *gatedAnalyzer) AnalyzeCode(ctx context.Context, req types.CodeAnalysisRequest) (string, error) {
	return <-g.replies, nil
}

func TestStaleAnalysisIsSuperseded(t *testing.T) {
	g := &gatedAnalyzer{replies: make(chan string)}
	p := New(g, nil)

	first := p.AnalyzeCode(context.Background())
	second := p.AnalyzeCode(context.Background())

	// both calls are in flight before either reply, so the first is stale
	// whichever goroutine takes which reply
	g.replies <- "one"
	g.replies <- "two"
	stale, latest := first.Result(), second.Result()

	if !stderrors.Is(stale.Err, ErrSuperseded) {
		t.Errorf("Expected ErrSuperseded for the older call, got %v", stale.Err)
	}
	if latest.Err != nil {
		t.Errorf("Unexpected error for the latest call: %v", latest.Err)
	}
	if st := p.State(); st.Loading || st.Analysis == "" {
		t.Errorf("Expected the latest analysis to be shown, got %+v", st)
	}
}
