package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"slices"
	"strings"

	"interviewprep/internal/codepanel"
	"interviewprep/internal/errors"
	"interviewprep/internal/resume"
	"interviewprep/internal/task"
	"interviewprep/internal/types"
	"interviewprep/internal/wizard"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// multipartMemory is how much of a multipart form is kept in memory
const multipartMemory = 32 << 20

// withSession resolves the browser session before calling next
func (s *Server) withSession(next func(http.ResponseWriter, *http.Request, *Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		next(w, r, s.Sessions.Get(w, r))
	}
}

// analyzeHandler selects the posted résumé, if any, and runs Analyze
func (s *Server) analyzeHandler(w http.ResponseWriter, r *http.Request, sess *Session) {
	ctx, span := s.om.Tracer("interviewprep.web").Start(r.Context(), "web.analyze")
	defer span.End()

	if err := parseForm(r); err != nil {
		s.rejectForm(w, r, sess, span, err, "/")
		return
	}
	file, ok, err := s.readResume(r)
	if err != nil {
		s.rejectForm(w, r, sess, span, err, "/")
		return
	}
	if ok {
		span.SetAttributes(attribute.String("resume.name", file.Name), attribute.Int("resume.bytes", file.Size()))
		sess.Wizard.SelectFile(file)
	}

	awaitTask(ctx, sess.Wizard.Analyze(context.WithoutCancel(ctx)), span)
	s.respond(w, r, sess, "/")
}

// generateHandler applies the posted configuration and runs Generate
func (s *Server) generateHandler(w http.ResponseWriter, r *http.Request, sess *Session) {
	ctx, span := s.om.Tracer("interviewprep.web").Start(r.Context(), "web.generate")
	defer span.End()

	if err := parseForm(r); err != nil {
		s.rejectForm(w, r, sess, span, err, "/")
		return
	}
	if err := applyConfiguration(sess.Wizard, r.PostForm); err != nil {
		s.rejectForm(w, r, sess, span, err, "/")
		return
	}

	st := sess.Wizard.State()
	span.SetAttributes(
		attribute.String("experience", st.Experience.Descriptor()),
		attribute.String("question_type", string(st.QuestionType)),
		attribute.Int("selected_skills", len(st.Selected)),
	)

	awaitTask(ctx, sess.Wizard.Generate(context.WithoutCancel(ctx)), span)
	s.respond(w, r, sess, "/")
}

// uploadHandler runs the legacy single-step flow: résumé and experience in one form
func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request, sess *Session) {
	ctx, span := s.om.Tracer("interviewprep.web").Start(r.Context(), "web.upload")
	defer span.End()

	if err := parseForm(r); err != nil {
		s.rejectForm(w, r, sess, span, err, "/")
		return
	}
	file, ok, err := s.readResume(r)
	if err != nil {
		s.rejectForm(w, r, sess, span, err, "/")
		return
	}
	if ok {
		sess.Wizard.SelectFile(file)
	}
	if err := applyConfiguration(sess.Wizard, r.PostForm); err != nil {
		s.rejectForm(w, r, sess, span, err, "/")
		return
	}

	awaitTask(ctx, sess.Wizard.Upload(context.WithoutCancel(ctx)), span)
	s.respond(w, r, sess, "/")
}

// analyzeCodeHandler stores the posted buffer and analyzes it
func (s *Server) analyzeCodeHandler(w http.ResponseWriter, r *http.Request, sess *Session) {
	ctx, span := s.om.Tracer("interviewprep.web").Start(r.Context(), "web.analyze_code")
	defer span.End()

	if err := parseForm(r); err != nil {
		s.rejectForm(w, r, sess, span, err, "/code")
		return
	}
	if r.PostForm.Has("code") {
		sess.Code.EditCode(r.PostForm.Get("code"))
	}
	span.SetAttributes(attribute.Int("code.bytes", len(sess.Code.State().Code)))

	awaitTask(ctx, sess.Code.AnalyzeCode(context.WithoutCancel(ctx)), span)
	s.respond(w, r, sess, "/code")
}

// awaitTask waits for t while the request lasts. The task itself runs on a
// context detached from the request, so a closed tab still records the result
// in the session.
func awaitTask[T any](ctx context.Context, t *task.Task[T], span oteltrace.Span) {
	res, err := t.Wait(ctx)
	if err != nil {
		span.SetAttributes(attribute.Bool("request.abandoned", true))
		return
	}
	if res.Err != nil && !superseded(res.Err) {
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Err.Error())
		span.SetAttributes(attribute.String("error.type", string(errors.TypeOf(res.Err))))
		return
	}
	span.SetAttributes(attribute.Bool("success", res.Err == nil))
}

// parseForm accepts both multipart and url-encoded bodies
func parseForm(r *http.Request) error {
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(multipartMemory)
	} else {
		err = r.ParseForm()
	}
	if err == nil {
		return nil
	}
	var maxBytesErr *http.MaxBytesError
	if stderrors.As(err, &maxBytesErr) {
		return errors.NewValidationError(errors.ErrCodeFileTooLarge,
			"Request is too large (limit is "+resume.FormatFileSize(maxBytesErr.Limit)+")", err)
	}
	return errors.NewValidationError(errors.ErrCodeInvalidRequest, "Malformed form submission", err)
}

// readResume returns the "file" part of a parsed form after preflight.
// ok is false when no file was posted.
func (s *Server) readResume(r *http.Request) (file types.UploadedFile, ok bool, err error) {
	if r.MultipartForm == nil {
		return types.UploadedFile{}, false, nil
	}
	part, header, err := r.FormFile("file")
	if stderrors.Is(err, http.ErrMissingFile) {
		return types.UploadedFile{}, false, nil
	}
	if err != nil {
		return types.UploadedFile{}, false, errors.NewValidationError(errors.ErrCodeInvalidRequest, "Malformed file upload", err)
	}
	defer func() { _ = part.Close() }()

	name := filepath.Base(header.Filename)
	if name == "" || name == "." {
		return types.UploadedFile{}, false, nil
	}
	content, err := io.ReadAll(part)
	if err != nil {
		return types.UploadedFile{}, false, errors.NewIOError(errors.ErrCodeFileNotReadable, "Failed to read uploaded file", err)
	}

	var report resume.Report
	file, err = s.Resumes.Inspect(name, content, &report)
	if err != nil {
		return types.UploadedFile{}, false, err
	}
	return file, true, nil
}

// superseded reports a response discarded because a newer call replaced it
func superseded(err error) bool {
	return stderrors.Is(err, wizard.ErrSuperseded) || stderrors.Is(err, codepanel.ErrSuperseded)
}

// applyConfiguration copies the configuration fields present in form into c.
// skillsPresent marks a submitted checklist so that unchecking every skill
// is distinguishable from not sending the list.
func applyConfiguration(c *wizard.Controller, form url.Values) error {
	st := c.State()

	if level := form.Get("experience"); level != "" {
		if _, err := c.SetExperience(types.ExperienceLevel(level), types.ExperienceRange(form.Get("range"))); err != nil {
			return err
		}
	}
	if q := form.Get("questionType"); q != "" {
		if _, err := c.SetQuestionType(types.QuestionType(q)); err != nil {
			return err
		}
	}
	if form.Has("jobDescription") {
		c.SetJobDescription(form.Get("jobDescription"))
	}
	if form.Has("skillsPresent") {
		want := form["skill"]
		for _, skill := range st.Skills {
			if st.IsSelected(skill) != slices.Contains(want, skill) {
				c.ToggleSkill(skill)
			}
		}
	}
	return nil
}

// rejectForm reports a request that never reached the backend
func (s *Server) rejectForm(w http.ResponseWriter, r *http.Request, sess *Session, span oteltrace.Span, err error, page string) {
	span.RecordError(err)
	span.SetAttributes(attribute.String("error.type", "validation"))
	s.Logger.LogError(err, "Rejected form submission", "endpoint", r.URL.Path, "session_id", sess.ID)

	msg := err.Error()
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		msg = appErr.Message
	}

	if wantsJSON(r) {
		writeErrorResponse(w, "Invalid request", msg, http.StatusBadRequest)
		return
	}
	sess.Flash(msg)
	http.Redirect(w, r, page, http.StatusSeeOther)
}

// respond redirects browsers back to page and answers API clients with the session state
func (s *Server) respond(w http.ResponseWriter, r *http.Request, sess *Session, page string) {
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, s.sessionView(sess))
		return
	}
	http.Redirect(w, r, page, http.StatusSeeOther)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
