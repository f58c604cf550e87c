package wizard

import (
	"context"
	stderrors "errors"
	"sync"

	"interviewprep/internal/errors"
	"interviewprep/internal/task"
	"interviewprep/internal/types"
)

// ErrSuperseded is the task error when a response arrived after a newer
// action (a new file, or a newer call) and was discarded.
var ErrSuperseded = stderrors.New("response superseded by a newer action")

// Backend is the remote side of the wizard
type Backend interface {
	Analyze(ctx context.Context, req types.AnalyzeRequest) ([]string, error)
	Generate(ctx context.Context, req types.GenerateRequest) (string, error)
	Upload(ctx context.Context, req types.UploadRequest) (string, error)
}

// Controller owns one wizard State and applies transitions to it under a lock.
// Remote operations return a task that resolves to the state after the
// response has been applied.
type Controller struct {
	mu        sync.Mutex
	state     State
	backend   Backend
	logger    *errors.Logger
	listeners []func(State)
}

// NewController creates a controller in the initial state
func NewController(backend Backend, logger *errors.Logger) *Controller {
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	return &Controller{
		state:   Initial(),
		backend: backend,
		logger:  logger,
	}
}

// State returns a copy of the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// OnChange registers fn to be called with every new state. Calls happen
// outside the lock, in the goroutine that caused the change.
func (c *Controller) OnChange(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// apply runs transition under the lock and notifies listeners when it changed something
func (c *Controller) apply(transition func(State) (State, bool)) State {
	c.mu.Lock()
	next, changed := transition(c.state)
	if changed {
		c.state = next
	}
	snapshot := c.state.Clone()
	listeners := c.listeners
	c.mu.Unlock()

	if changed {
		for _, fn := range listeners {
			fn(snapshot.Clone())
		}
	}
	return snapshot
}

// SelectFile stores a new résumé and resets the flow. Pending responses become stale.
func (c *Controller) SelectFile(file types.UploadedFile) State {
	c.logger.Debug("Résumé selected", "file", file.Name, "bytes", file.Size())
	return c.apply(func(s State) (State, bool) {
		return SelectFile(s, file), true
	})
}

// ToggleSkill flips the selection of one detected skill
func (c *Controller) ToggleSkill(name string) State {
	return c.apply(func(s State) (State, bool) {
		return ToggleSkill(s, name), true
	})
}

// SetExperience sets the experience level and range
func (c *Controller) SetExperience(level types.ExperienceLevel, r types.ExperienceRange) (State, error) {
	var setErr error
	st := c.apply(func(s State) (State, bool) {
		next, err := SetExperience(s, level, r)
		setErr = err
		return next, err == nil
	})
	return st, setErr
}

// SetQuestionType sets the question type
func (c *Controller) SetQuestionType(q types.QuestionType) (State, error) {
	var setErr error
	st := c.apply(func(s State) (State, bool) {
		next, err := SetQuestionType(s, q)
		setErr = err
		return next, err == nil
	})
	return st, setErr
}

// SetJobDescription sets the optional job description
func (c *Controller) SetJobDescription(text string) State {
	return c.apply(func(s State) (State, bool) {
		return SetJobDescription(s, text), true
	})
}

// Analyze sends the résumé to /analyze. Without a file it resolves at once
// with a validation error and makes no call.
func (c *Controller) Analyze(ctx context.Context) *task.Task[State] {
	var req types.AnalyzeRequest
	gen, st, err := c.begin(func(s State) (State, error) {
		next, r, err := BeginAnalyze(s)
		req = r
		return next, err
	})
	if err != nil {
		return task.Resolved(st, err)
	}

	return task.Go(ctx, func(ctx context.Context) (State, error) {
		skills, callErr := task.Recover(func() ([]string, error) { return c.backend.Analyze(ctx, req) })
		return c.complete("analyze", gen, callErr, func(s State) (State, bool) {
			return CompleteAnalyze(s, gen, skills, callErr)
		})
	})
}

// Generate sends the configured request to /generate
func (c *Controller) Generate(ctx context.Context) *task.Task[State] {
	var req types.GenerateRequest
	gen, st, err := c.begin(func(s State) (State, error) {
		next, r, err := BeginGenerate(s)
		req = r
		return next, err
	})
	if err != nil {
		return task.Resolved(st, err)
	}

	c.logger.Debug("Generating questions",
		"experience", req.Experience,
		"question_type", req.QuestionType,
		"selected_skills", len(req.SelectedSkills),
		"job_description", req.JobDescription != "")

	return task.Go(ctx, func(ctx context.Context) (State, error) {
		questions, callErr := task.Recover(func() (string, error) { return c.backend.Generate(ctx, req) })
		return c.complete("generate", gen, callErr, func(s State) (State, bool) {
			return CompleteGenerate(s, gen, questions, callErr)
		})
	})
}

// Upload runs the legacy single-step flow against /upload
func (c *Controller) Upload(ctx context.Context) *task.Task[State] {
	var req types.UploadRequest
	gen, st, err := c.begin(func(s State) (State, error) {
		next, r, err := BeginUpload(s)
		req = r
		return next, err
	})
	if err != nil {
		return task.Resolved(st, err)
	}

	return task.Go(ctx, func(ctx context.Context) (State, error) {
		questions, callErr := task.Recover(func() (string, error) { return c.backend.Upload(ctx, req) })
		return c.complete("upload", gen, callErr, func(s State) (State, bool) {
			return CompleteUpload(s, gen, questions, callErr)
		})
	})
}

// begin applies a Begin* transition. On a precondition failure the error
// state is still applied so that the message is shown.
func (c *Controller) begin(transition func(State) (State, error)) (uint64, State, error) {
	var beginErr error
	var gen uint64
	st := c.apply(func(s State) (State, bool) {
		next, err := transition(s)
		beginErr = err
		gen = next.Generation
		return next, true
	})
	if beginErr != nil {
		c.logger.LogError(beginErr, "Wizard precondition failed")
	}
	return gen, st, beginErr
}

// complete applies a Complete* transition and maps the outcome onto the task result
func (c *Controller) complete(op string, gen uint64, callErr error, transition func(State) (State, bool)) (State, error) {
	applied := false
	st := c.apply(func(s State) (State, bool) {
		next, ok := transition(s)
		applied = ok
		return next, ok
	})

	switch {
	case !applied:
		c.logger.Info("Discarded stale response", "operation", op, "generation", gen, "current", st.Generation)
		return st, ErrSuperseded
	case callErr != nil:
		c.logger.LogError(callErr, "Wizard operation failed", "operation", op, "message", st.Error)
		return st, callErr
	default:
		c.logger.Debug("Wizard operation succeeded", "operation", op, "stage", st.Stage.String())
		return st, nil
	}
}
