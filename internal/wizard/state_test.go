package wizard

import (
	"reflect"
	"slices"
	"testing"

	"interviewprep/internal/errors"
	"interviewprep/internal/types"
)

var cv = types.UploadedFile{Name: "cv.pdf", Content: []byte("pdf")}

func configured(skills ...string) State {
	s := SelectFile(Initial(), cv)
	s, _, _ = BeginAnalyze(s)
	s, _ = CompleteAnalyze(s, s.Generation, skills, nil)
	return s
}

func TestInitialState(t *testing.T) {
	s := Initial()
	if s.Stage != AwaitingFile || s.Loading || s.HasFile() {
		t.Errorf("Unexpected initial state %+v", s)
	}
	if s.QuestionType != types.QuestionMixed {
		t.Errorf("Expected Mixed, got %s", s.QuestionType)
	}
	if s.Experience.Descriptor() != "Fresher" {
		t.Errorf("Expected Fresher, got %s", s.Experience.Descriptor())
	}
}

func TestAnalyzeWithoutFile(t *testing.T) {
	s, _, err := BeginAnalyze(Initial())
	if !errors.IsValidation(err) {
		t.Fatalf("Expected validation error, got %v", err)
	}
	if s.Error != MsgFileMissing {
		t.Errorf("Expected %q, got %q", MsgFileMissing, s.Error)
	}
	if s.Loading {
		t.Error("Expected no loading without a call")
	}
}

func TestAnalyzeSuccessSelectsEverything(t *testing.T) {
	s := configured("Java", "SQL")

	if s.Stage != Configuring {
		t.Errorf("Expected Configuring, got %s", s.Stage)
	}
	if !reflect.DeepEqual(s.Skills, []string{"Java", "SQL"}) || !reflect.DeepEqual(s.Selected, []string{"Java", "SQL"}) {
		t.Errorf("Unexpected skills %v / selected %v", s.Skills, s.Selected)
	}
	if s.Loading {
		t.Error("Expected loading to end")
	}
}

func TestAnalyzeFailureKeepsStage(t *testing.T) {
	s := SelectFile(Initial(), cv)
	s, _, _ = BeginAnalyze(s)
	s, applied := CompleteAnalyze(s, s.Generation, nil, errors.NewTransportError(errors.ErrCodeBackendStatus, "500", nil))

	if !applied || s.Stage != AwaitingFile || s.Error != MsgAnalyzeFailed || s.Loading {
		t.Errorf("Unexpected state after failure %+v", s)
	}
}

func TestReanalyzeFailureReturnsToAwaitingFile(t *testing.T) {
	s := configured("Java", "SQL")
	s, _, err := BeginAnalyze(s)
	if err != nil {
		t.Fatalf("BeginAnalyze failed: %v", err)
	}
	if s.Stage != AwaitingFile || s.Skills != nil || s.Selected != nil || !s.Loading {
		t.Errorf("Expected a fresh analysis to clear the previous skills, got %+v", s)
	}

	s, _ = CompleteAnalyze(s, s.Generation, nil, errors.NewTransportError(errors.ErrCodeBackendStatus, "500", nil))
	if s.Stage != AwaitingFile || len(s.Skills) != 0 || s.Error != MsgAnalyzeFailed {
		t.Errorf("Unexpected state after failed re-analysis %+v", s)
	}
	if !s.HasFile() {
		t.Error("Expected the résumé to be kept for a retry")
	}
}

func TestToggleSkill(t *testing.T) {
	s := configured("Java", "SQL", "Go")

	s = ToggleSkill(s, "SQL")
	if !reflect.DeepEqual(s.Selected, []string{"Java", "Go"}) {
		t.Errorf("Expected SQL removed, got %v", s.Selected)
	}

	s = ToggleSkill(s, "Java")
	s = ToggleSkill(s, "SQL")
	// re-added skills take their SkillSet position
	if !reflect.DeepEqual(s.Selected, []string{"SQL", "Go"}) {
		t.Errorf("Expected [SQL Go], got %v", s.Selected)
	}

	s = ToggleSkill(s, "Rust")
	if slices.Contains(s.Selected, "Rust") {
		t.Error("Unknown skill must not be selected")
	}
	for _, sel := range s.Selected {
		if !slices.Contains(s.Skills, sel) {
			t.Errorf("Selected %q is not in Skills", sel)
		}
	}
}

func TestToggleDoesNotAliasPreviousState(t *testing.T) {
	before := configured("Java", "SQL")
	after := ToggleSkill(before, "Java")

	if !reflect.DeepEqual(before.Selected, []string{"Java", "SQL"}) {
		t.Errorf("Previous state was mutated: %v", before.Selected)
	}
	if !reflect.DeepEqual(after.Selected, []string{"SQL"}) {
		t.Errorf("Unexpected selection %v", after.Selected)
	}
}

func TestGenerateDescriptor(t *testing.T) {
	tests := []struct {
		name     string
		level    types.ExperienceLevel
		r        types.ExperienceRange
		expected string
	}{
		{"experienced 5-8", types.Experienced, types.Range5To8, "Experienced (Range: 5-8 years)"},
		{"fresher ignores range", types.Fresher, types.Range10To15, "Fresher"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := SetExperience(configured("Java"), tt.level, tt.r)
			if err != nil {
				t.Fatalf("SetExperience: %v", err)
			}
			_, req, err := BeginGenerate(s)
			if err != nil {
				t.Fatalf("BeginGenerate: %v", err)
			}
			if req.Experience != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, req.Experience)
			}
		})
	}
}

func TestGenerateRequestFields(t *testing.T) {
	s := configured("Java", "SQL", "Go")
	s = ToggleSkill(s, "SQL")
	s, _ = SetQuestionType(s, types.QuestionTheoretical)
	s = SetJobDescription(s, "Payments team")

	next, req, err := BeginGenerate(s)
	if err != nil {
		t.Fatalf("BeginGenerate: %v", err)
	}
	if !next.Loading || next.Error != "" {
		t.Errorf("Expected loading with no error, got %+v", next)
	}
	if req.QuestionType != types.QuestionTheoretical || req.JobDescription != "Payments team" {
		t.Errorf("Unexpected request %+v", req)
	}
	if !reflect.DeepEqual(req.SelectedSkills, []string{"Java", "Go"}) {
		t.Errorf("Unexpected skills %v", req.SelectedSkills)
	}
	if req.File.Name != "cv.pdf" {
		t.Errorf("Expected the selected file, got %q", req.File.Name)
	}
}

func TestGenerateOutcomes(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantStage Stage
		wantMsg   string
	}{
		{"success", nil, ResultReady, ""},
		{"rate limited", errors.NewRateLimitError(errors.ErrCodeRateLimited, "429", nil), Configuring, MsgServerBusy},
		{"transport", errors.NewTransportError(errors.ErrCodeBackendStatus, "500", nil), Configuring, MsgGenerateFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _ := BeginGenerate(configured("Java"))
			s, applied := CompleteGenerate(s, s.Generation, "Q1", tt.err)
			if !applied {
				t.Fatal("Expected response to apply")
			}
			if s.Stage != tt.wantStage || s.Error != tt.wantMsg {
				t.Errorf("Expected %s %q, got %s %q", tt.wantStage, tt.wantMsg, s.Stage, s.Error)
			}
			if tt.err == nil && s.Questions != "Q1" {
				t.Errorf("Expected questions stored, got %q", s.Questions)
			}
			if tt.err != nil && s.Questions != "" {
				t.Errorf("Expected no questions on failure, got %q", s.Questions)
			}
		})
	}
}

func TestUploadRateLimitUsesGenericMessage(t *testing.T) {
	s, req, err := BeginUpload(SelectFile(Initial(), cv))
	if err != nil {
		t.Fatalf("BeginUpload: %v", err)
	}
	if req.Experience != "Fresher" {
		t.Errorf("Unexpected experience %q", req.Experience)
	}
	s, _ = CompleteUpload(s, s.Generation, "", errors.NewRateLimitError(errors.ErrCodeRateLimited, "429", nil))
	if s.Error != MsgGenerateFailed {
		t.Errorf("Expected %q, got %q", MsgGenerateFailed, s.Error)
	}
}

func TestSelectFileResets(t *testing.T) {
	s := configured("Java", "SQL")
	s.Error = "left over"
	s = SetJobDescription(s, "keep me")

	s = SelectFile(s, types.UploadedFile{Name: "other.pdf"})
	if s.Stage != AwaitingFile || s.Skills != nil || s.Selected != nil || s.Error != "" {
		t.Errorf("Expected reset, got %+v", s)
	}
	if s.JobDescription != "keep me" {
		t.Error("Job description should survive a new file")
	}
	if s.File.Name != "other.pdf" {
		t.Errorf("Expected new file, got %q", s.File.Name)
	}
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	s := SelectFile(Initial(), cv)
	s, _, _ = BeginAnalyze(s)
	inflight := s.Generation

	s = SelectFile(s, types.UploadedFile{Name: "new.pdf"})
	if s.Loading {
		t.Error("Selecting a file should end loading")
	}

	after, applied := CompleteAnalyze(s, inflight, []string{"Java"}, nil)
	if applied {
		t.Error("Expected stale response to be discarded")
	}
	if after.Stage != AwaitingFile || after.Skills != nil {
		t.Errorf("Stale response leaked into state %+v", after)
	}
}

func TestSettersRejectUnknownValues(t *testing.T) {
	s := Initial()
	if _, err := SetExperience(s, "Senior", ""); !errors.IsValidation(err) {
		t.Errorf("Expected validation error, got %v", err)
	}
	if _, err := SetExperience(s, types.Experienced, "1-2"); !errors.IsValidation(err) {
		t.Errorf("Expected validation error, got %v", err)
	}
	if _, err := SetQuestionType(s, "Behavioural"); !errors.IsValidation(err) {
		t.Errorf("Expected validation error, got %v", err)
	}

	next, err := SetExperience(s, types.Experienced, "")
	if err != nil || next.Experience.Range != types.Range2To5 {
		t.Errorf("Empty range should keep the current one, got %+v (%v)", next.Experience, err)
	}
}

func TestLabels(t *testing.T) {
	s := Initial()
	if s.AnalyzeLabel() != "Analyze CV" || s.GenerateLabel() != "Generate Questions" {
		t.Error("Unexpected idle labels")
	}
	s.Loading = true
	if s.AnalyzeLabel() != "Analyzing..." || s.GenerateLabel() != "Generating Questions..." {
		t.Error("Unexpected loading labels")
	}
}
