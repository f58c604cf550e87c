package types

import "testing"

func TestExperienceDescriptor(t *testing.T) {
	tests := []struct {
		name      string
		selection ExperienceSelection
		expected  string
	}{
		{
			name:      "fresher ignores range",
			selection: ExperienceSelection{Level: Fresher, Range: Range10To15},
			expected:  "Fresher",
		},
		{
			name:      "experienced 5-8",
			selection: ExperienceSelection{Level: Experienced, Range: Range5To8},
			expected:  "Experienced (Range: 5-8 years)",
		},
		{
			name:      "experienced over 15",
			selection: ExperienceSelection{Level: Experienced, Range: RangeOver15},
			expected:  "Experienced (Range: >15 years)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.selection.Descriptor(); got != tt.expected {
				t.Errorf("Expected descriptor '%s', got '%s'", tt.expected, got)
			}
		})
	}
}

func TestParseEnumerations(t *testing.T) {
	if level, err := ParseExperienceLevel("experienced"); err != nil || level != Experienced {
		t.Errorf("Expected Experienced, got %q (err %v)", level, err)
	}
	if _, err := ParseExperienceLevel("senior"); err == nil {
		t.Error("Expected error for unknown level")
	}

	if r, err := ParseExperienceRange(">15"); err != nil || r != RangeOver15 {
		t.Errorf("Expected >15, got %q (err %v)", r, err)
	}
	if _, err := ParseExperienceRange("1-2"); err == nil {
		t.Error("Expected error for unknown range")
	}

	if q, err := ParseQuestionType("programming"); err != nil || q != QuestionProgramming {
		t.Errorf("Expected Programming, got %q (err %v)", q, err)
	}
	if _, err := ParseQuestionType("behavioural"); err == nil {
		t.Error("Expected error for unknown question type")
	}
}

func TestDefaultExperience(t *testing.T) {
	d := DefaultExperience()
	if d.Level != Fresher || d.Range != Range2To5 {
		t.Errorf("Unexpected default experience: %+v", d)
	}
}
