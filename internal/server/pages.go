package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"interviewprep/internal/codepanel"
	"interviewprep/internal/resume"
	"interviewprep/internal/types"
	"interviewprep/internal/wizard"
)

//go:embed templates/*.html
var templateFS embed.FS

type pages struct {
	tmpl *template.Template
}

func loadPages() (*pages, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &pages{tmpl: tmpl}, nil
}

// pageData is what both tabs render from
type pageData struct {
	Tab           string
	Version       string
	Notice        string
	MaxFileSize   string
	Wizard        wizard.State
	Code          codepanel.State
	Ranges        []types.ExperienceRange
	QuestionTypes []types.QuestionType
}

// ShowConfig is true from the Configuring stage on, so a result can be regenerated
func (d pageData) ShowConfig() bool {
	return d.Wizard.Stage == wizard.Configuring || d.Wizard.Stage == wizard.ResultReady
}

// ShowResult is true when generated questions are available
func (d pageData) ShowResult() bool {
	return d.Wizard.Stage == wizard.ResultReady
}

// Experienced reports whether the range selector applies
func (d pageData) Experienced() bool {
	return d.Wizard.Experience.Level == types.Experienced
}

// Busy is true while either tab waits for the backend
func (d pageData) Busy() bool {
	return d.Wizard.Loading || d.Code.Loading
}

func (s *Server) pageData(tab string, sess *Session) pageData {
	d := pageData{
		Tab:           tab,
		Version:       s.Version,
		Notice:        sess.TakeFlash(),
		Wizard:        sess.Wizard.State(),
		Code:          sess.Code.State(),
		Ranges:        types.ExperienceRanges,
		QuestionTypes: types.QuestionTypes,
	}
	if s.AppConfig != nil && s.AppConfig.App.MaxFileSize > 0 {
		d.MaxFileSize = resume.FormatFileSize(s.AppConfig.App.MaxFileSize)
	}
	return d
}

// render executes name into a buffer first so that a template error
// still yields a clean 500
func (s *Server) render(w http.ResponseWriter, name string, data pageData) {
	var buf bytes.Buffer
	if err := s.pages.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		s.Logger.LogError(err, "Failed to render page", "template", name)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		s.Logger.Debug("Failed to write page", "template", name, "error", err)
	}
}

func (s *Server) interviewPage(w http.ResponseWriter, r *http.Request, sess *Session) {
	s.render(w, "interview.html", s.pageData("interview", sess))
}

func (s *Server) codePage(w http.ResponseWriter, r *http.Request, sess *Session) {
	s.render(w, "code.html", s.pageData("code", sess))
}
