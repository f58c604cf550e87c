package common

import (
	"fmt"
	"slices"

	"interviewprep/internal/errors"
)

// ValidateOutputFormat checks format against each allow list in turn. An
// empty list places no restriction, so callers can pass the configured
// formats alongside the ones an OutputHandler can actually produce.
func ValidateOutputFormat(format string, allowed ...[]string) error {
	if format == "" {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat, "output format is required", nil)
	}
	for _, list := range allowed {
		if len(list) > 0 && !slices.Contains(list, format) {
			return errors.NewValidationError(errors.ErrCodeInvalidFormat,
				fmt.Sprintf("unsupported output format '%s'. Supported formats: %v", format, list), nil).
				WithContext("format", format)
		}
	}
	return nil
}
