package formatters

import (
	"strings"
	"testing"

	"interviewprep/internal/types"

	"gopkg.in/yaml.v3"
)

func TestFormatByTypeAndFormat(t *testing.T) {
	skills := types.SkillAnalysis{File: "cv.pdf", Skills: []string{"Java", "SQL"}}
	questions := types.QuestionSet{
		File:           "cv.pdf",
		Experience:     "Experienced - 2-5 years",
		QuestionType:   "Mixed",
		SelectedSkills: []string{"Java"},
		Questions:      "1. What is a JVM?",
	}
	code := types.CodeAnalysis{Source: "main.go", Bytes: 12, Analysis: "O(n)"}

	tests := []struct {
		name   string
		data   any
		format string
		want   []string
	}{
		{"skills text", skills, "text", []string{"=== DETECTED SKILLS ===", "1. Java\n", "2. SQL\n"}},
		{"skills markdown", skills, "markdown", []string{"# Detected Skills", "- Java\n", "- SQL\n"}},
		{"questions text", questions, "text", []string{"Experience: Experienced - 2-5 years", "Skills: Java", "1. What is a JVM?"}},
		{"questions markdown", questions, "markdown", []string{"# Interview Questions", "**Question type:** Mixed", "1. What is a JVM?"}},
		{"code text", code, "text", []string{"Source: main.go (12 bytes)", "O(n)"}},
		{"code markdown", code, "markdown", []string{"# Code Analysis", "O(n)"}},
		{"skills json", skills, "json", []string{`"file": "cv.pdf"`, `"Java"`}},
		{"questions json", questions, "json", []string{`"questionType": "Mixed"`, `"jobDescription": false`}},
	}

	registry := NewFormatterRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := registry.Format(tt.data, tt.format)
			if err != nil {
				t.Fatalf("Format failed: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("Expected output to contain %q, got:\n%s", want, out)
				}
			}
		})
	}
}

func TestEmptySkillList(t *testing.T) {
	out, err := NewFormatterRegistry().Format(types.SkillAnalysis{File: "cv.pdf"}, "text")
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if !strings.Contains(out, "No skills detected.") {
		t.Errorf("Unexpected output:\n%s", out)
	}
}

func TestYAMLFormatterUsesFieldTags(t *testing.T) {
	in := types.QuestionSet{File: "cv.pdf", Experience: "Fresher", Questions: "Q1"}
	out, err := NewFormatterRegistry().Format(in, "yaml")
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	var decoded map[string]any
	if err := yaml.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("Output is not YAML: %v", err)
	}
	if decoded["experience"] != "Fresher" || decoded["questions"] != "Q1" {
		t.Errorf("Unexpected document %v", decoded)
	}
	if _, ok := decoded["questionType"]; ok {
		t.Error("Expected empty questionType to be omitted")
	}
}

func TestUnknownFormat(t *testing.T) {
	_, err := NewFormatterRegistry().Format(types.CodeAnalysis{}, "xml")
	if err == nil || !strings.Contains(err.Error(), "no formatter found for format 'xml'") {
		t.Errorf("Expected unknown format error, got %v", err)
	}
}

func TestWrongTypeIsRejected(t *testing.T) {
	if _, err := (&SkillsTextFormatter{}).Format(types.CodeAnalysis{}); err == nil {
		t.Error("Expected type mismatch error")
	}
}

func TestGetSupportedFormats(t *testing.T) {
	got := NewFormatterRegistry().GetSupportedFormats()
	want := []string{"json", "markdown", "text", "yaml"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Expected %v, got %v", want, got)
	}
}
