package backend

import (
	"bytes"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
	"strings"

	"interviewprep/internal/types"
)

// Multipart field names understood by the backend
const (
	fieldFile           = "file"
	fieldExperience     = "experienceLevel"
	fieldQuestionType   = "questionType"
	fieldJobDescription = "jobDescription"
	fieldSelectedSkills = "selectedSkills"
)

// formField is one ordered name/value pair. Order is kept so that
// repeated fields are encoded deterministically.
type formField struct {
	name  string
	value string
}

// encodeForm writes file followed by fields and returns the body and its content type
func encodeForm(file types.UploadedFile, fields []formField) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		fieldFile, escapeQuotes(filepath.Base(file.Name))))
	h.Set("Content-Type", contentTypeFor(file.Name))

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(file.Content); err != nil {
		return nil, "", fmt.Errorf("failed to write file part: %w", err)
	}

	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", f.name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}
	return body, w.FormDataContentType(), nil
}

func generateFields(req types.GenerateRequest) []formField {
	fields := []formField{
		{fieldExperience, req.Experience},
		{fieldQuestionType, string(req.QuestionType)},
	}
	if req.JobDescription != "" {
		fields = append(fields, formField{fieldJobDescription, req.JobDescription})
	}
	for _, skill := range req.SelectedSkills {
		fields = append(fields, formField{fieldSelectedSkills, skill})
	}
	return fields
}

func uploadFields(req types.UploadRequest) []formField {
	return []formField{{fieldExperience, req.Experience}}
}

func contentTypeFor(name string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
