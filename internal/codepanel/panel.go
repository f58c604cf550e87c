// Package codepanel is the code analysis side panel: an editable buffer and
// one remote call that sends it verbatim.
package codepanel

import (
	"context"
	stderrors "errors"
	"sync"

	"interviewprep/internal/errors"
	"interviewprep/internal/task"
	"interviewprep/internal/types"
)

// DefaultCode is the buffer content of a new panel
const DefaultCode = "// Write your code here..."

// MsgAnalyzeFailed is shown for any failed analysis
const MsgAnalyzeFailed = "Failed to analyze code. Please try again."

// ErrSuperseded is the task error when a newer AnalyzeCode call replaced this one
var ErrSuperseded = stderrors.New("code analysis superseded by a newer call")

// Analyzer is the remote side of the panel
type Analyzer interface {
	AnalyzeCode(ctx context.Context, req types.CodeAnalysisRequest) (string, error)
}

// State is one snapshot of the panel
type State struct {
	Code     string
	Loading  bool
	Analysis string
	Error    string
	LastErr  error

	generation uint64
}

// AnalyzeLabel is the caption of the analyze control
func (s State) AnalyzeLabel() string {
	if s.Loading {
		return "Analyzing..."
	}
	return "Analyze Code"
}

// Panel owns one State
type Panel struct {
	mu       sync.Mutex
	state    State
	analyzer Analyzer
	logger   *errors.Logger
}

// New creates a panel holding DefaultCode
func New(analyzer Analyzer, logger *errors.Logger) *Panel {
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	return &Panel{
		state:    State{Code: DefaultCode},
		analyzer: analyzer,
		logger:   logger,
	}
}

// State returns the current snapshot
func (p *Panel) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// EditCode replaces the buffer unconditionally
func (p *Panel) EditCode(text string) State {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Code = text
	return p.state
}

// AnalyzeCode sends the buffer as it is, empty included. Only the most recent
// call may update the panel.
func (p *Panel) AnalyzeCode(ctx context.Context) *task.Task[State] {
	p.mu.Lock()
	p.state.Loading = true
	p.state.Analysis = ""
	p.state.Error = ""
	p.state.LastErr = nil
	p.state.generation++
	gen := p.state.generation
	req := types.CodeAnalysisRequest{Code: p.state.Code}
	p.mu.Unlock()

	p.logger.Debug("Analyzing code", "bytes", len(req.Code))

	return task.Go(ctx, func(ctx context.Context) (State, error) {
		analysis, err := task.Recover(func() (string, error) { return p.analyzer.AnalyzeCode(ctx, req) })

		p.mu.Lock()
		defer p.mu.Unlock()
		if gen != p.state.generation {
			return p.state, ErrSuperseded
		}
		p.state.Loading = false
		if err != nil {
			p.state.Error = MsgAnalyzeFailed
			p.state.LastErr = err
			p.logger.LogError(err, "Code analysis failed", "bytes", len(req.Code))
			return p.state, err
		}
		p.state.Analysis = analysis
		return p.state, nil
	})
}
