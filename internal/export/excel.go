// Package export writes CLI results to Excel workbooks.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"interviewprep/internal/types"

	"github.com/xuri/excelize/v2"
)

const summarySheet = "Summary"

// IsWorkbookPath reports whether path names an .xlsx file
func IsWorkbookPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}

// Write renders data as a workbook into w
func Write(data any, w io.Writer) error {
	f, err := Workbook(data)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return f.Write(w)
}

// WriteFile renders data as a workbook at path, adding .xlsx when missing
func WriteFile(data any, path string) error {
	if !IsWorkbookPath(path) {
		path += ".xlsx"
	}
	path = filepath.Clean(path)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("cannot create directory %s: %w", dir, err)
		}
	}

	f, err := Workbook(data)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return f.SaveAs(path)
}

// Workbook builds a workbook with a Summary sheet and one detail sheet
func Workbook(data any) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		_ = f.Close()
		return nil, err
	}

	s, err := newStyles(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	switch v := data.(type) {
	case types.SkillAnalysis:
		err = skillsWorkbook(f, s, v)
	case types.QuestionSet:
		err = questionsWorkbook(f, s, v)
	case types.CodeAnalysis:
		err = codeWorkbook(f, s, v)
	default:
		err = fmt.Errorf("cannot export %T to a workbook", data)
	}
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

type styles struct {
	header int
	label  int
	wrap   int
}

func newStyles(f *excelize.File) (styles, error) {
	var s styles
	var err error

	s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return s, err
	}

	s.label, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return s, err
	}

	s.wrap, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	return s, err
}

// summary writes a title row followed by label/value pairs
func summary(f *excelize.File, s styles, title string, pairs [][2]string) error {
	if err := f.SetColWidth(summarySheet, "A", "A", 22); err != nil {
		return err
	}
	if err := f.SetColWidth(summarySheet, "B", "B", 60); err != nil {
		return err
	}

	if err := f.SetCellValue(summarySheet, "A1", title); err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "A1", "B1", s.header); err != nil {
		return err
	}
	if err := f.MergeCell(summarySheet, "A1", "B1"); err != nil {
		return err
	}

	pairs = append(pairs, [2]string{"Generated:", time.Now().Format("2006-01-02 15:04:05")})
	for i, p := range pairs {
		row := i + 3
		label := fmt.Sprintf("A%d", row)
		if err := f.SetCellValue(summarySheet, label, p[0]); err != nil {
			return err
		}
		if err := f.SetCellStyle(summarySheet, label, label, s.label); err != nil {
			return err
		}
		if err := f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), p[1]); err != nil {
			return err
		}
	}
	return nil
}

// list writes a numbered single-column sheet
func list(f *excelize.File, s styles, sheet, heading string, items []string) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "A", 6); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "B", 100); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A1", &[]any{"#", heading}); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "B1", s.header); err != nil {
		return err
	}

	for i, item := range items {
		row := i + 2
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &[]any{i + 1, item}); err != nil {
			return err
		}
		cell := fmt.Sprintf("B%d", row)
		if err := f.SetCellStyle(sheet, cell, cell, s.wrap); err != nil {
			return err
		}
	}
	return nil
}

func skillsWorkbook(f *excelize.File, s styles, v types.SkillAnalysis) error {
	if err := summary(f, s, "Detected Skills", [][2]string{
		{"File:", v.File},
		{"Skills:", fmt.Sprintf("%d", len(v.Skills))},
	}); err != nil {
		return err
	}
	return list(f, s, "Skills", "Skill", v.Skills)
}

func questionsWorkbook(f *excelize.File, s styles, v types.QuestionSet) error {
	jd := "not provided"
	if v.JobDescription {
		jd = "provided"
	}
	if err := summary(f, s, "Interview Questions", [][2]string{
		{"File:", v.File},
		{"Experience:", v.Experience},
		{"Question type:", v.QuestionType},
		{"Skills:", strings.Join(v.SelectedSkills, ", ")},
		{"Job description:", jd},
	}); err != nil {
		return err
	}
	return list(f, s, "Questions", "Line", nonBlankLines(v.Questions))
}

func codeWorkbook(f *excelize.File, s styles, v types.CodeAnalysis) error {
	if err := summary(f, s, "Code Analysis", [][2]string{
		{"Source:", v.Source},
		{"Bytes:", fmt.Sprintf("%d", v.Bytes)},
	}); err != nil {
		return err
	}
	return list(f, s, "Analysis", "Line", nonBlankLines(v.Analysis))
}

// nonBlankLines splits backend text so each line gets its own row
func nonBlankLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimRight(line, " \t\r"); strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
