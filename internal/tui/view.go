package tui

import (
	"fmt"
	"strings"

	"interviewprep/internal/resume"
	"interviewprep/internal/types"
	"interviewprep/internal/wizard"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	if m.tab == TabCode {
		b.WriteString(m.renderCode())
	} else {
		b.WriteString(m.renderInterview())
	}

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(NoticeStyle.Render(m.notice))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(m.helpKeys()))
	return b.String()
}

func (m Model) renderTabs() string {
	title := TitleStyle.Render("interviewprep")
	if m.version != "" {
		title += LabelStyle.Render(" " + m.version)
	}

	tabs := make([]string, 0, 2)
	for _, t := range []Tab{TabInterview, TabCode} {
		style := InactiveTabStyle
		if t == m.tab {
			style = ActiveTabStyle
		}
		tabs = append(tabs, style.Render(t.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, append([]string{title, "  "}, tabs...)...)
}

func (m Model) renderInterview() string {
	st := m.state
	var b strings.Builder

	b.WriteString(m.path.View())
	b.WriteString("\n")
	if st.File != nil {
		b.WriteString(LabelStyle.Render(fmt.Sprintf("Selected: %s (%s)",
			st.File.Name, resume.FormatFileSize(int64(st.File.Size())))))
		b.WriteString("\n")
	}
	b.WriteString(m.button(fieldAnalyze, st.AnalyzeLabel()))
	b.WriteString("\n")

	if st.Error != "" {
		b.WriteString(ErrorStyle.Render(st.Error))
		b.WriteString("\n")
	}

	if st.Stage == wizard.AwaitingFile {
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(m.row(fieldExperience, "Experience", options(
		[]string{string(types.Fresher), string(types.Experienced)}, string(st.Experience.Level))))
	if st.Experience.Level == types.Experienced {
		labels := make([]string, len(types.ExperienceRanges))
		for i, r := range types.ExperienceRanges {
			labels[i] = r.Label()
		}
		b.WriteString(m.row(fieldRange, "Range", options(labels, st.Experience.Range.Label())))
	}

	qlabels := make([]string, len(types.QuestionTypes))
	for i, q := range types.QuestionTypes {
		qlabels[i] = q.Label()
	}
	b.WriteString(m.row(fieldQuestionType, "Question type", options(qlabels, st.QuestionType.Label())))

	b.WriteString(m.label(fieldJobDescription, "Job description"))
	b.WriteString("\n")
	b.WriteString(m.jobDes.View())
	b.WriteString("\n")

	if len(st.Skills) > 0 {
		b.WriteString(m.label(fieldSkills, fmt.Sprintf("Skills (%d of %d selected)", len(st.Selected), len(st.Skills))))
		b.WriteString("\n")
		for i, skill := range st.Skills {
			box := "[ ]"
			if st.IsSelected(skill) {
				box = "[x]"
			}
			line := fmt.Sprintf("  %s %s", box, skill)
			if m.focus == fieldSkills && i == m.skillCursor {
				line = FocusedStyle.Render("> " + line[2:])
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	b.WriteString(m.button(fieldGenerate, st.GenerateLabel()))
	b.WriteString("\n")

	if st.Stage == wizard.ResultReady {
		b.WriteString("\n")
		b.WriteString(SuccessStyle.Render("Interview Questions"))
		b.WriteString("\n")
		b.WriteString(PanelStyle.Render(m.result.View()))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) renderCode() string {
	st := m.codeState
	var b strings.Builder

	b.WriteString(m.editor.View())
	b.WriteString("\n")
	b.WriteString(FocusedButtonStyle.Render(st.AnalyzeLabel()))
	b.WriteString("\n")

	if st.Error != "" {
		b.WriteString(ErrorStyle.Render(st.Error))
		b.WriteString("\n")
	}
	if st.Analysis != "" {
		b.WriteString(PanelStyle.Render(st.Analysis))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) label(f field, text string) string {
	if m.focus == f {
		return FocusedStyle.Render("> " + text)
	}
	return LabelStyle.Render("  " + text)
}

func (m Model) row(f field, name, value string) string {
	return m.label(f, name+":") + " " + value + "\n"
}

func (m Model) button(f field, text string) string {
	if m.focus == f {
		return FocusedButtonStyle.Render(text)
	}
	return ButtonStyle.Render(text)
}

// options renders a one-line radio group with current marked
func options(labels []string, current string) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		if l == current {
			parts[i] = FocusedStyle.Render("(•) " + l)
		} else {
			parts[i] = "( ) " + l
		}
	}
	return strings.Join(parts, "  ")
}

func (m Model) helpKeys() []key.Binding {
	if m.tab == TabCode {
		return []key.Binding{keys.AnalyzeIt, keys.SwitchTab, keys.Quit}
	}
	bindings := []key.Binding{keys.Next, keys.Activate}
	switch m.focus {
	case fieldExperience, fieldRange, fieldQuestionType:
		bindings = append(bindings, keys.Left)
	case fieldSkills:
		bindings = append(bindings, keys.Up, keys.Toggle)
	}
	if m.state.Stage == wizard.ResultReady {
		bindings = append(bindings, keys.Scroll)
	}
	return append(bindings, keys.SwitchTab, keys.Quit)
}
