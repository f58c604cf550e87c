package formatters

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"interviewprep/internal/types"

	"gopkg.in/yaml.v3"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("yaml", "any", &YAMLFormatter{})
	registry.RegisterFormatter("text", "SkillAnalysis", &SkillsTextFormatter{})
	registry.RegisterFormatter("markdown", "SkillAnalysis", &SkillsMarkdownFormatter{})
	registry.RegisterFormatter("text", "QuestionSet", &QuestionsTextFormatter{})
	registry.RegisterFormatter("markdown", "QuestionSet", &QuestionsMarkdownFormatter{})
	registry.RegisterFormatter("text", "CodeAnalysis", &CodeTextFormatter{})
	registry.RegisterFormatter("markdown", "CodeAnalysis", &CodeMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.SkillAnalysis:
		return "SkillAnalysis"
	case types.QuestionSet:
		return "QuestionSet"
	case types.CodeAnalysis:
		return "CodeAnalysis"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData) + "\n", nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// YAMLFormatter handles YAML formatting for any data type
type YAMLFormatter struct{}

func (yf *YAMLFormatter) Format(data any) (string, error) {
	var b strings.Builder
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(data); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (yf *YAMLFormatter) SupportedType() string {
	return "any"
}

// SkillsTextFormatter handles text formatting for detected skills
type SkillsTextFormatter struct{}

func (f *SkillsTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.SkillAnalysis)
	if !ok {
		return "", fmt.Errorf("expected SkillAnalysis, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== DETECTED SKILLS ===\n")
	output.WriteString(fmt.Sprintf("File: %s\n\n", result.File))
	if len(result.Skills) == 0 {
		output.WriteString("No skills detected.\n")
		return output.String(), nil
	}
	for i, skill := range result.Skills {
		output.WriteString(fmt.Sprintf("%d. %s\n", i+1, skill))
	}

	return output.String(), nil
}

func (f *SkillsTextFormatter) SupportedType() string {
	return "SkillAnalysis"
}

// SkillsMarkdownFormatter handles markdown formatting for detected skills
type SkillsMarkdownFormatter struct{}

func (f *SkillsMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.SkillAnalysis)
	if !ok {
		return "", fmt.Errorf("expected SkillAnalysis, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Detected Skills\n\n")
	output.WriteString(fmt.Sprintf("**File:** %s\n\n", result.File))
	if len(result.Skills) == 0 {
		output.WriteString("_No skills detected._\n")
		return output.String(), nil
	}
	for _, skill := range result.Skills {
		output.WriteString("- ")
		output.WriteString(skill)
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (f *SkillsMarkdownFormatter) SupportedType() string {
	return "SkillAnalysis"
}

// QuestionsTextFormatter handles text formatting for generated questions
type QuestionsTextFormatter struct{}

func (f *QuestionsTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.QuestionSet)
	if !ok {
		return "", fmt.Errorf("expected QuestionSet, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== INTERVIEW QUESTIONS ===\n")
	output.WriteString(fmt.Sprintf("File: %s\n", result.File))
	output.WriteString(fmt.Sprintf("Experience: %s\n", result.Experience))
	if result.QuestionType != "" {
		output.WriteString(fmt.Sprintf("Question type: %s\n", result.QuestionType))
	}
	if len(result.SelectedSkills) > 0 {
		output.WriteString(fmt.Sprintf("Skills: %s\n", strings.Join(result.SelectedSkills, ", ")))
	}
	if result.JobDescription {
		output.WriteString("Job description: provided\n")
	}
	output.WriteString("\n")
	output.WriteString(result.Questions)
	output.WriteString("\n")

	return output.String(), nil
}

func (f *QuestionsTextFormatter) SupportedType() string {
	return "QuestionSet"
}

// QuestionsMarkdownFormatter handles markdown formatting for generated questions.
// The backend already answers in markdown, so the questions are embedded as is.
type QuestionsMarkdownFormatter struct{}

func (f *QuestionsMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.QuestionSet)
	if !ok {
		return "", fmt.Errorf("expected QuestionSet, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Interview Questions\n\n")
	output.WriteString(fmt.Sprintf("- **File:** %s\n", result.File))
	output.WriteString(fmt.Sprintf("- **Experience:** %s\n", result.Experience))
	if result.QuestionType != "" {
		output.WriteString(fmt.Sprintf("- **Question type:** %s\n", result.QuestionType))
	}
	if len(result.SelectedSkills) > 0 {
		output.WriteString(fmt.Sprintf("- **Skills:** %s\n", strings.Join(result.SelectedSkills, ", ")))
	}
	if result.JobDescription {
		output.WriteString("- **Job description:** provided\n")
	}
	output.WriteString("\n")
	output.WriteString(result.Questions)
	output.WriteString("\n")

	return output.String(), nil
}

func (f *QuestionsMarkdownFormatter) SupportedType() string {
	return "QuestionSet"
}

// CodeTextFormatter handles text formatting for code analysis
type CodeTextFormatter struct{}

func (f *CodeTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.CodeAnalysis)
	if !ok {
		return "", fmt.Errorf("expected CodeAnalysis, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== CODE ANALYSIS ===\n")
	output.WriteString(fmt.Sprintf("Source: %s (%d bytes)\n\n", result.Source, result.Bytes))
	output.WriteString(result.Analysis)
	output.WriteString("\n")

	return output.String(), nil
}

func (f *CodeTextFormatter) SupportedType() string {
	return "CodeAnalysis"
}

// CodeMarkdownFormatter handles markdown formatting for code analysis
type CodeMarkdownFormatter struct{}

func (f *CodeMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.CodeAnalysis)
	if !ok {
		return "", fmt.Errorf("expected CodeAnalysis, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Code Analysis\n\n")
	output.WriteString(fmt.Sprintf("**Source:** %s (%d bytes)\n\n", result.Source, result.Bytes))
	output.WriteString(result.Analysis)
	output.WriteString("\n")

	return output.String(), nil
}

func (f *CodeMarkdownFormatter) SupportedType() string {
	return "CodeAnalysis"
}

// GlobalRegistry is the default formatter registry instance
var GlobalRegistry = NewFormatterRegistry()
