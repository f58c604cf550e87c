package types

import (
	"fmt"
	"slices"
	"strings"
)

// ExperienceLevel is the seniority tag selected by the user
type ExperienceLevel string

const (
	Fresher     ExperienceLevel = "Fresher"
	Experienced ExperienceLevel = "Experienced"
)

// ExperienceRange is the year range attached to an Experienced selection
type ExperienceRange string

const (
	Range2To5   ExperienceRange = "2-5"
	Range5To8   ExperienceRange = "5-8"
	Range8To10  ExperienceRange = "8-10"
	Range10To15 ExperienceRange = "10-15"
	RangeOver15 ExperienceRange = ">15"
)

// ExperienceRanges lists the selectable ranges in display order
var ExperienceRanges = []ExperienceRange{Range2To5, Range5To8, Range8To10, Range10To15, RangeOver15}

// Label returns the human readable form shown next to a range option
func (r ExperienceRange) Label() string {
	if r == RangeOver15 {
		return "More than 15 years"
	}
	return string(r) + " years"
}

// ParseExperienceLevel accepts the level case-insensitively
func ParseExperienceLevel(s string) (ExperienceLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fresher":
		return Fresher, nil
	case "experienced":
		return Experienced, nil
	default:
		return "", fmt.Errorf("unknown experience level '%s' (expected Fresher or Experienced)", s)
	}
}

// ParseExperienceRange validates s against the fixed set of ranges
func ParseExperienceRange(s string) (ExperienceRange, error) {
	r := ExperienceRange(strings.TrimSpace(s))
	if slices.Contains(ExperienceRanges, r) {
		return r, nil
	}
	return "", fmt.Errorf("unknown experience range '%s' (expected one of %v)", s, ExperienceRanges)
}

// ExperienceSelection is Fresher, or Experienced with a range.
// Range is kept while Fresher is selected so that switching back restores it,
// but it never leaves the client in that case.
type ExperienceSelection struct {
	Level ExperienceLevel `json:"level"`
	Range ExperienceRange `json:"range,omitempty"`
}

// DefaultExperience is the initial selection of a new wizard
func DefaultExperience() ExperienceSelection {
	return ExperienceSelection{Level: Fresher, Range: Range2To5}
}

// Descriptor composes the single experience string sent to the backend
func (e ExperienceSelection) Descriptor() string {
	if e.Level == Experienced {
		return fmt.Sprintf("%s (Range: %s years)", Experienced, e.Range)
	}
	return string(Fresher)
}

// QuestionType selects the kind of questions to generate
type QuestionType string

const (
	QuestionMixed       QuestionType = "Mixed"
	QuestionProgramming QuestionType = "Programming"
	QuestionTheoretical QuestionType = "Theoretical"
)

// QuestionTypes lists the selectable question types in display order
var QuestionTypes = []QuestionType{QuestionMixed, QuestionProgramming, QuestionTheoretical}

// Label returns the human readable form of a question type option
func (q QuestionType) Label() string {
	switch q {
	case QuestionProgramming:
		return "Programming Only"
	case QuestionTheoretical:
		return "Theoretical Only"
	default:
		return "Mixed"
	}
}

// ParseQuestionType accepts the type case-insensitively
func ParseQuestionType(s string) (QuestionType, error) {
	for _, q := range QuestionTypes {
		if strings.EqualFold(string(q), strings.TrimSpace(s)) {
			return q, nil
		}
	}
	return "", fmt.Errorf("unknown question type '%s' (expected one of %v)", s, QuestionTypes)
}

// UploadedFile is the résumé blob chosen by the user
type UploadedFile struct {
	Name    string `json:"name"`
	Content []byte `json:"-"`
}

// Size returns the content length in bytes
func (f UploadedFile) Size() int {
	return len(f.Content)
}

// AnalyzeRequest is the body of POST /analyze
type AnalyzeRequest struct {
	File UploadedFile
}

// GenerateRequest is the body of POST /generate
type GenerateRequest struct {
	File           UploadedFile
	Experience     string
	QuestionType   QuestionType
	JobDescription string   // omitted from the form when empty
	SelectedSkills []string // one form entry per skill, in order
}

// UploadRequest is the body of the legacy POST /upload
type UploadRequest struct {
	File       UploadedFile
	Experience string
}

// CodeAnalysisRequest is the body of POST /analyze-code
type CodeAnalysisRequest struct {
	Code string
}

// SkillAnalysis is the CLI output of the analyze command
type SkillAnalysis struct {
	File   string   `json:"file" yaml:"file"`
	Skills []string `json:"skills" yaml:"skills"`
}

// QuestionSet is the CLI output of the generate and upload commands
type QuestionSet struct {
	File           string   `json:"file" yaml:"file"`
	Experience     string   `json:"experience" yaml:"experience"`
	QuestionType   string   `json:"questionType,omitempty" yaml:"questionType,omitempty"`
	JobDescription bool     `json:"jobDescription" yaml:"jobDescription"`
	SelectedSkills []string `json:"selectedSkills,omitempty" yaml:"selectedSkills,omitempty"`
	Questions      string   `json:"questions" yaml:"questions"`
}

// CodeAnalysis is the CLI output of the analyze-code command
type CodeAnalysis struct {
	Source   string `json:"source" yaml:"source"`
	Bytes    int    `json:"bytes" yaml:"bytes"`
	Analysis string `json:"analysis" yaml:"analysis"`
}
