// Package wizard holds the interview-prep flow: pick a résumé, analyze it,
// configure the request, generate questions.
//
// State transitions are pure functions from one State to the next. The
// Controller serialises them and performs the remote calls.
package wizard

import (
	"slices"

	"interviewprep/internal/errors"
	"interviewprep/internal/types"
)

// User-facing messages. Every failure is reduced to one of these.
const (
	MsgFileMissing    = "Please select a CV file."
	MsgAnalyzeFailed  = "Failed to analyze CV. Please try again."
	MsgGenerateFailed = "Failed to generate questions. Please try again."
	MsgServerBusy     = "Server is busy. Please try again in a minute."
)

// Stage is the phase of the flow and decides which form fragments render
type Stage int

const (
	AwaitingFile Stage = iota
	Configuring
	ResultReady
)

func (s Stage) String() string {
	switch s {
	case AwaitingFile:
		return "AwaitingFile"
	case Configuring:
		return "Configuring"
	case ResultReady:
		return "ResultReady"
	default:
		return "Unknown"
	}
}

// State is one snapshot of the wizard. Values returned by transitions never
// share mutable slices with their input.
type State struct {
	Stage   Stage
	Loading bool

	File           *types.UploadedFile
	Experience     types.ExperienceSelection
	QuestionType   types.QuestionType
	JobDescription string

	// Skills is the SkillSet in backend order; Selected is a subset kept in the same order.
	Skills   []string
	Selected []string

	Questions string

	Error   string
	LastErr error

	// Generation increases on every file selection and every remote call.
	// A response carrying an older value is stale.
	Generation uint64
}

// Initial returns the state of a fresh wizard
func Initial() State {
	return State{
		Stage:        AwaitingFile,
		Experience:   types.DefaultExperience(),
		QuestionType: types.QuestionMixed,
	}
}

// Clone returns a deep copy of s
func (s State) Clone() State {
	s.Skills = slices.Clone(s.Skills)
	s.Selected = slices.Clone(s.Selected)
	return s
}

// IsSelected reports whether skill is currently selected
func (s State) IsSelected(skill string) bool {
	return slices.Contains(s.Selected, skill)
}

// HasFile reports whether a résumé has been chosen
func (s State) HasFile() bool {
	return s.File != nil
}

// AnalyzeLabel is the caption of the analyze control
func (s State) AnalyzeLabel() string {
	if s.Loading {
		return "Analyzing..."
	}
	return "Analyze CV"
}

// GenerateLabel is the caption of the generate control
func (s State) GenerateLabel() string {
	if s.Loading {
		return "Generating Questions..."
	}
	return "Generate Questions"
}

// SelectFile stores file and resets everything derived from the previous one.
// Experience, question type and job description survive.
func SelectFile(s State, file types.UploadedFile) State {
	next := s
	next.File = &file
	next.Stage = AwaitingFile
	next.Loading = false
	next.Skills = nil
	next.Selected = nil
	next.Questions = ""
	next.Error = ""
	next.LastErr = nil
	next.Generation++
	return next
}

// ToggleSkill removes name from Selected when present and adds it back otherwise.
// Names outside Skills are ignored.
func ToggleSkill(s State, name string) State {
	if !slices.Contains(s.Skills, name) {
		return s
	}
	next := s
	if s.IsSelected(name) {
		next.Selected = slices.DeleteFunc(slices.Clone(s.Selected), func(v string) bool { return v == name })
		return next
	}
	selected := make([]string, 0, len(s.Selected)+1)
	for _, skill := range s.Skills {
		if skill == name || s.IsSelected(skill) {
			selected = append(selected, skill)
		}
	}
	next.Selected = selected
	return next
}

// SetExperience replaces the experience selection. An empty range keeps the current one.
func SetExperience(s State, level types.ExperienceLevel, r types.ExperienceRange) (State, error) {
	if level != types.Fresher && level != types.Experienced {
		return s, errors.NewValidationError(errors.ErrCodeInvalidRequest, "unknown experience level", nil).
			WithContext("level", string(level))
	}
	if r == "" {
		r = s.Experience.Range
	}
	if !slices.Contains(types.ExperienceRanges, r) {
		return s, errors.NewValidationError(errors.ErrCodeInvalidRequest, "unknown experience range", nil).
			WithContext("range", string(r))
	}
	next := s
	next.Experience = types.ExperienceSelection{Level: level, Range: r}
	return next, nil
}

// SetQuestionType replaces the question type
func SetQuestionType(s State, q types.QuestionType) (State, error) {
	if !slices.Contains(types.QuestionTypes, q) {
		return s, errors.NewValidationError(errors.ErrCodeInvalidRequest, "unknown question type", nil).
			WithContext("questionType", string(q))
	}
	next := s
	next.QuestionType = q
	return next, nil
}

// SetJobDescription replaces the optional job description
func SetJobDescription(s State, text string) State {
	next := s
	next.JobDescription = text
	return next
}

// missingFile is the state after an operation that needs a file was invoked without one
func missingFile(s State) (State, error) {
	err := errors.NewValidationError(errors.ErrCodeFileMissing, MsgFileMissing, nil)
	next := s
	next.Error = MsgFileMissing
	next.LastErr = err
	return next, err
}

// begin marks a remote call as in flight and claims a new generation for it
func begin(s State) State {
	next := s
	next.Loading = true
	next.Error = ""
	next.LastErr = nil
	next.Generation++
	return next
}

// BeginAnalyze validates the precondition and enters Loading. Analyzing again
// starts the flow over: the stage returns to AwaitingFile and the previous
// skills and questions are dropped, so a failure cannot leave them behind.
// On error the returned state carries the message and no call must be made.
func BeginAnalyze(s State) (State, types.AnalyzeRequest, error) {
	if !s.HasFile() {
		next, err := missingFile(s)
		return next, types.AnalyzeRequest{}, err
	}
	next := begin(s)
	next.Stage = AwaitingFile
	next.Skills = nil
	next.Selected = nil
	next.Questions = ""
	return next, types.AnalyzeRequest{File: *s.File}, nil
}

// CompleteAnalyze applies the /analyze outcome of the call started at generation.
// It reports false, leaving s untouched, when the response is stale.
func CompleteAnalyze(s State, generation uint64, skills []string, err error) (State, bool) {
	if generation != s.Generation {
		return s, false
	}
	next := s
	next.Loading = false
	if err != nil {
		next.Error = MsgAnalyzeFailed
		next.LastErr = err
		return next, true
	}
	next.Skills = slices.Clone(skills)
	next.Selected = slices.Clone(skills)
	next.Questions = ""
	next.Stage = Configuring
	return next, true
}

// BeginGenerate validates the precondition, clears the previous result and enters Loading
func BeginGenerate(s State) (State, types.GenerateRequest, error) {
	if !s.HasFile() {
		next, err := missingFile(s)
		return next, types.GenerateRequest{}, err
	}
	next := begin(s)
	next.Questions = ""
	req := types.GenerateRequest{
		File:           *s.File,
		Experience:     s.Experience.Descriptor(),
		QuestionType:   s.QuestionType,
		JobDescription: s.JobDescription,
		SelectedSkills: slices.Clone(s.Selected),
	}
	return next, req, nil
}

// CompleteGenerate applies the /generate outcome. A rate limited call gets its own message.
func CompleteGenerate(s State, generation uint64, questions string, err error) (State, bool) {
	if generation != s.Generation {
		return s, false
	}
	next := s
	next.Loading = false
	if err != nil {
		next.Error = MsgGenerateFailed
		if errors.IsRateLimit(err) {
			next.Error = MsgServerBusy
		}
		next.LastErr = err
		return next, true
	}
	next.Questions = questions
	next.Stage = ResultReady
	return next, true
}

// BeginUpload starts the legacy single-step flow
func BeginUpload(s State) (State, types.UploadRequest, error) {
	if !s.HasFile() {
		next, err := missingFile(s)
		return next, types.UploadRequest{}, err
	}
	next := begin(s)
	next.Questions = ""
	return next, types.UploadRequest{File: *s.File, Experience: s.Experience.Descriptor()}, nil
}

// CompleteUpload applies the /upload outcome. Every failure gets the generic message.
func CompleteUpload(s State, generation uint64, questions string, err error) (State, bool) {
	if generation != s.Generation {
		return s, false
	}
	next := s
	next.Loading = false
	if err != nil {
		next.Error = MsgGenerateFailed
		next.LastErr = err
		return next, true
	}
	next.Questions = questions
	next.Stage = ResultReady
	return next, true
}
