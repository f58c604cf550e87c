// Package resume reads a résumé from disk, checks it before it is uploaded,
// and watches it for changes.
package resume

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"interviewprep/internal/errors"
	"interviewprep/internal/types"

	"github.com/ledongthuc/pdf"
)

// Report describes what preflight found in a résumé
type Report struct {
	Path      string `json:"path"`
	Bytes     int64  `json:"bytes"`
	IsPDF     bool   `json:"isPdf"`
	Pages     int    `json:"pages,omitempty"`
	TextRunes int    `json:"textRunes,omitempty"`
}

// HasText reports whether any page yielded extractable text
func (r Report) HasText() bool {
	return r.TextRunes > 0
}

// Loader reads résumés subject to a size limit
type Loader struct {
	maxSize int64
	logger  *errors.Logger
}

// NewLoader creates a loader. maxSize <= 0 disables the size check.
func NewLoader(maxSize int64, logger *errors.Logger) *Loader {
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	return &Loader{maxSize: maxSize, logger: logger}
}

// Load reads path and runs preflight on it. Only a PDF that cannot be
// parsed is rejected on content; anything else is left to the backend.
func (l *Loader) Load(path string) (types.UploadedFile, Report, error) {
	report := Report{Path: path}

	if err := l.checkPath(path, &report); err != nil {
		return types.UploadedFile{}, report, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return types.UploadedFile{}, report, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", path), err)
	}

	file, err := l.Inspect(filepath.Base(path), content, &report)
	return file, report, err
}

// Inspect runs preflight on in-memory content, as received from a browser upload
func (l *Loader) Inspect(name string, content []byte, report *Report) (types.UploadedFile, error) {
	report.Bytes = int64(len(content))
	if err := l.checkSize(name, report.Bytes); err != nil {
		return types.UploadedFile{}, err
	}

	report.IsPDF = IsPDF(name)
	if !report.IsPDF {
		l.logger.Warn("Résumé is not a PDF, sending it as is", "file", name)
		return types.UploadedFile{Name: name, Content: content}, nil
	}

	pages, runes, err := inspectPDF(content)
	if err != nil {
		return types.UploadedFile{}, errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("%s is not a readable PDF", name), err)
	}
	report.Pages = pages
	report.TextRunes = runes
	if runes == 0 {
		l.logger.Warn("PDF has no extractable text, it may be a scan", "file", name, "pages", pages)
	}

	l.logger.Debug("Résumé preflight passed", "file", name, "bytes", report.Bytes, "pages", pages)
	return types.UploadedFile{Name: name, Content: content}, nil
}

func (l *Loader) checkPath(path string, report *Report) error {
	if path == "" {
		return errors.NewValidationError(errors.ErrCodeFileMissing, "Please select a CV file.", nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", path), err)
		}
		return errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot access file: %s", path), err)
	}
	if info.IsDir() {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Path is a directory, not a file: %s", path), nil)
	}
	report.Bytes = info.Size()
	return l.checkSize(path, info.Size())
}

func (l *Loader) checkSize(name string, size int64) error {
	if l.maxSize > 0 && size > l.maxSize {
		return errors.NewValidationError(errors.ErrCodeFileTooLarge,
			fmt.Sprintf("%s is %s, the limit is %s", name, FormatFileSize(size), FormatFileSize(l.maxSize)), nil).
			WithContext("bytes", size)
	}
	return nil
}

// inspectPDF counts pages and extractable text runes.
// The parser panics on some malformed input, which is reported as an error.
func inspectPDF(content []byte) (pages, runes int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return 0, 0, err
	}

	pages = r.NumPage()
	if pages == 0 {
		return 0, 0, fmt.Errorf("PDF has no pages")
	}
	for i := 1; i <= pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, textErr := page.GetPlainText(nil)
		if textErr != nil {
			continue
		}
		runes += len([]rune(strings.TrimSpace(text)))
	}
	return pages, runes, nil
}

// IsPDF reports whether name has a .pdf extension
func IsPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// FormatFileSize returns a human-readable file size
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
