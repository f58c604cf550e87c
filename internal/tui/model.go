// Package tui is the terminal front end: the interview wizard and the code
// analysis panel as two tabs of one bubbletea program.
package tui

import (
	"context"
	stderrors "errors"
	"slices"

	"interviewprep/internal/codepanel"
	"interviewprep/internal/errors"
	"interviewprep/internal/resume"
	"interviewprep/internal/task"
	"interviewprep/internal/types"
	"interviewprep/internal/wizard"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Tab is one of the two screens
type Tab int

const (
	TabInterview Tab = iota
	TabCode
)

func (t Tab) String() string {
	switch t {
	case TabInterview:
		return "Interview Questions"
	case TabCode:
		return "Code Analysis"
	default:
		return "Unknown"
	}
}

type field int

const (
	fieldPath field = iota
	fieldAnalyze
	fieldExperience
	fieldRange
	fieldQuestionType
	fieldJobDescription
	fieldSkills
	fieldGenerate
)

type wizardDoneMsg struct {
	result task.Result[wizard.State]
}

type codeDoneMsg struct {
	result task.Result[codepanel.State]
}

// resumeChangedMsg is sent by the file watcher when the résumé on disk changes
type resumeChangedMsg struct {
	path string
}

// Options wires the model to its controllers
type Options struct {
	Wizard     *wizard.Controller
	Code       *codepanel.Panel
	Loader     *resume.Loader
	ResumePath string
	Version    string
	Logger     *errors.Logger
}

// Model is the bubbletea model for the whole program
type Model struct {
	ctx    context.Context
	wizard *wizard.Controller
	code   *codepanel.Panel
	loader *resume.Loader
	logger *errors.Logger

	version string
	tab     Tab
	focus   field
	notice  string

	path   textinput.Model
	jobDes textarea.Model
	editor textarea.Model
	result viewport.Model
	help   help.Model

	state       wizard.State
	codeState   codepanel.State
	skillCursor int

	width  int
	height int
}

// New creates the model. Remote calls made from it run on ctx.
func New(ctx context.Context, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = errors.NewNopLogger()
	}

	path := textinput.New()
	path.Placeholder = "path/to/cv.pdf"
	path.Prompt = "CV: "
	path.Width = 60
	path.SetValue(opts.ResumePath)
	path.Focus()

	jd := textarea.New()
	jd.Placeholder = "Paste the job description (optional)"
	jd.ShowLineNumbers = false
	jd.CharLimit = 0
	jd.SetWidth(70)
	jd.SetHeight(4)

	editor := textarea.New()
	editor.CharLimit = 0
	editor.SetWidth(80)
	editor.SetHeight(14)

	m := Model{
		ctx:     ctx,
		wizard:  opts.Wizard,
		code:    opts.Code,
		loader:  opts.Loader,
		logger:  opts.Logger,
		version: opts.Version,
		path:    path,
		jobDes:  jd,
		editor:  editor,
		result:  viewport.New(80, 12),
		help:    help.New(),
	}
	m.state = m.wizard.State()
	m.codeState = m.code.State()
	m.editor.SetValue(m.codeState.Code)
	m.jobDes.SetValue(m.state.JobDescription)
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tea.SetWindowTitle("interviewprep"))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case wizardDoneMsg:
		return m.wizardDone(msg), nil

	case codeDoneMsg:
		m.codeState = m.code.State()
		return m, nil

	case resumeChangedMsg:
		if msg.path != m.path.Value() {
			return m, nil
		}
		if m.selectResume() {
			m.notice = "Résumé changed on disk. Analyze it again to refresh the skills."
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.SwitchTab):
			return m.switchTab(), nil
		}
		if m.tab == TabCode {
			return m.updateCode(msg)
		}
		return m.updateInterview(msg)
	}

	return m, nil
}

func (m Model) switchTab() Model {
	if m.tab == TabInterview {
		m.tab = TabCode
		m.blurFocused()
		m.editor.Focus()
		return m
	}
	m.tab = TabInterview
	m.editor.Blur()
	m.focusCurrent()
	return m
}

func (m Model) updateCode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.AnalyzeIt) {
		m.codeState = m.code.EditCode(m.editor.Value())
		t := m.code.AnalyzeCode(m.ctx)
		m.codeState = m.code.State()
		return m, waitCode(t)
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	m.codeState = m.code.EditCode(m.editor.Value())
	return m, cmd
}

func (m Model) updateInterview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Next):
		m.moveFocus(1)
		return m, nil
	case key.Matches(msg, keys.Prev):
		m.moveFocus(-1)
		return m, nil
	case key.Matches(msg, keys.Scroll):
		var cmd tea.Cmd
		m.result, cmd = m.result.Update(msg)
		return m, cmd
	}

	switch m.focus {
	case fieldPath:
		if key.Matches(msg, keys.Activate) {
			if m.selectResume() {
				m.notice = "Loaded " + m.state.File.Name + ". Press enter on Analyze CV."
				m.setFocus(fieldAnalyze)
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.path, cmd = m.path.Update(msg)
		return m, cmd

	case fieldAnalyze:
		if key.Matches(msg, keys.Activate) {
			return m.run(m.wizard.Analyze)
		}

	case fieldExperience:
		if key.Matches(msg, keys.Left, keys.Right, keys.Toggle) {
			level := types.Experienced
			if m.state.Experience.Level == types.Experienced {
				level = types.Fresher
			}
			m.setExperience(level, m.state.Experience.Range)
		}

	case fieldRange:
		if step := direction(msg); step != 0 {
			m.setExperience(m.state.Experience.Level,
				cycle(types.ExperienceRanges, m.state.Experience.Range, step))
		}

	case fieldQuestionType:
		if step := direction(msg); step != 0 {
			st, err := m.wizard.SetQuestionType(cycle(types.QuestionTypes, m.state.QuestionType, step))
			m.state = st
			m.noteErr(err)
		}

	case fieldJobDescription:
		var cmd tea.Cmd
		m.jobDes, cmd = m.jobDes.Update(msg)
		m.state = m.wizard.SetJobDescription(m.jobDes.Value())
		return m, cmd

	case fieldSkills:
		switch {
		case key.Matches(msg, keys.Up):
			if m.skillCursor > 0 {
				m.skillCursor--
			}
		case key.Matches(msg, keys.Down):
			if m.skillCursor < len(m.state.Skills)-1 {
				m.skillCursor++
			}
		case key.Matches(msg, keys.Toggle):
			if m.skillCursor < len(m.state.Skills) {
				m.state = m.wizard.ToggleSkill(m.state.Skills[m.skillCursor])
			}
		}

	case fieldGenerate:
		if key.Matches(msg, keys.Activate) {
			return m.run(m.wizard.Generate)
		}
	}

	return m, nil
}

// run starts a wizard operation. The returned command is the only one, so
// the caller can execute it to obtain the completion message.
func (m Model) run(op func(context.Context) *task.Task[wizard.State]) (tea.Model, tea.Cmd) {
	m.notice = ""
	t := op(m.ctx)
	m.state = m.wizard.State()
	return m, waitWizard(t)
}

func (m Model) wizardDone(msg wizardDoneMsg) Model {
	before := m.state.Stage
	m.state = m.wizard.State()
	if stderrors.Is(msg.result.Err, wizard.ErrSuperseded) {
		return m
	}

	m.result.SetContent(m.state.Questions)
	m.result.GotoTop()
	if m.skillCursor >= len(m.state.Skills) {
		m.skillCursor = 0
	}
	if msg.result.OK() && before != m.state.Stage && m.state.Stage == wizard.Configuring {
		m.setFocus(fieldExperience)
	}
	return m
}

// selectResume loads the path in the input and hands it to the wizard
func (m *Model) selectResume() bool {
	file, report, err := m.loader.Load(m.path.Value())
	if err != nil {
		m.noteErr(err)
		return false
	}
	if !report.IsPDF {
		m.logger.Warn("Résumé is not a PDF", "path", report.Path)
	}
	m.state = m.wizard.SelectFile(file)
	m.result.SetContent("")
	return true
}

func (m *Model) setExperience(level types.ExperienceLevel, r types.ExperienceRange) {
	st, err := m.wizard.SetExperience(level, r)
	m.state = st
	m.noteErr(err)
	if !slices.Contains(m.fields(), m.focus) {
		m.setFocus(fieldExperience)
	}
}

func (m *Model) noteErr(err error) {
	if err == nil {
		return
	}
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		m.notice = appErr.Message
		return
	}
	m.notice = err.Error()
}

// fields lists the focusable fields for the current stage in tab order
func (m Model) fields() []field {
	fs := []field{fieldPath, fieldAnalyze}
	if m.state.Stage == wizard.AwaitingFile {
		return fs
	}
	fs = append(fs, fieldExperience)
	if m.state.Experience.Level == types.Experienced {
		fs = append(fs, fieldRange)
	}
	fs = append(fs, fieldQuestionType, fieldJobDescription)
	if len(m.state.Skills) > 0 {
		fs = append(fs, fieldSkills)
	}
	return append(fs, fieldGenerate)
}

func (m *Model) moveFocus(step int) {
	fs := m.fields()
	i := slices.Index(fs, m.focus)
	if i < 0 {
		i = 0
	}
	m.setFocus(fs[(i+step+len(fs))%len(fs)])
}

func (m *Model) setFocus(f field) {
	m.blurFocused()
	m.focus = f
	m.focusCurrent()
}

func (m *Model) blurFocused() {
	m.path.Blur()
	m.jobDes.Blur()
}

func (m *Model) focusCurrent() {
	switch m.focus {
	case fieldPath:
		m.path.Focus()
	case fieldJobDescription:
		m.jobDes.Focus()
	}
}

func (m *Model) resize() {
	w := max(m.width-4, 20)
	m.path.Width = w - len(m.path.Prompt) - 1
	m.jobDes.SetWidth(w)
	m.editor.SetWidth(w)
	m.editor.SetHeight(max(m.height-12, 5))
	m.result.Width = w
	m.result.Height = max(m.height/3, 5)
}

func direction(msg tea.KeyMsg) int {
	switch {
	case key.Matches(msg, keys.Left):
		return -1
	case key.Matches(msg, keys.Right, keys.Toggle):
		return 1
	}
	return 0
}

// cycle returns the option step positions away from current, wrapping around
func cycle[T comparable](options []T, current T, step int) T {
	i := slices.Index(options, current)
	if i < 0 {
		return options[0]
	}
	return options[(i+step+len(options))%len(options)]
}

func waitWizard(t *task.Task[wizard.State]) tea.Cmd {
	return func() tea.Msg {
		return wizardDoneMsg{result: t.Result()}
	}
}

func waitCode(t *task.Task[codepanel.State]) tea.Cmd {
	return func() tea.Msg {
		return codeDoneMsg{result: t.Result()}
	}
}
