package common

import (
	"fmt"
	"io"
	"os"

	"interviewprep/internal/errors"
	"interviewprep/internal/export"
	"interviewprep/internal/formatters"
)

// FormatXLSX selects the workbook exporter instead of a text formatter
const FormatXLSX = "xlsx"

// CommandConfig holds common configuration for commands
type CommandConfig struct {
	OutputFile   string
	OutputFormat string
}

// OutputHandler handles formatting and writing output
type OutputHandler struct {
	fileProcessor *FileProcessor
	registry      *formatters.FormatterRegistry
	logger        *errors.Logger
	stdout        io.Writer
}

// NewOutputHandler creates a new output handler writing to os.Stdout
func NewOutputHandler(logger *errors.Logger) *OutputHandler {
	return NewOutputHandlerWithWriter(logger, os.Stdout)
}

// NewOutputHandlerWithWriter creates an output handler writing to w when no
// output file is configured
func NewOutputHandlerWithWriter(logger *errors.Logger, w io.Writer) *OutputHandler {
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	return &OutputHandler{
		fileProcessor: NewFileProcessor(logger),
		registry:      formatters.GlobalRegistry,
		logger:        logger,
		stdout:        w,
	}
}

// HandleOutput formats data and writes it to the specified output.
// An .xlsx output file or the xlsx format writes a workbook.
func (oh *OutputHandler) HandleOutput(data any, config CommandConfig) error {
	if err := oh.fileProcessor.ValidateOutputFile(config.OutputFile); err != nil {
		return err
	}

	if config.OutputFormat == FormatXLSX || (config.OutputFile != "" && export.IsWorkbookPath(config.OutputFile)) {
		return oh.writeWorkbook(data, config)
	}

	output, err := oh.registry.Format(data, config.OutputFormat)
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Failed to format output as %s", config.OutputFormat), err)
	}

	if config.OutputFile != "" {
		if err := oh.fileProcessor.WriteFile(config.OutputFile, output); err != nil {
			return err
		}
		oh.logger.Info("Output written successfully",
			"file", config.OutputFile, "format", config.OutputFormat)
		return nil
	}

	_, err = fmt.Fprint(oh.stdout, output)
	return err
}

func (oh *OutputHandler) writeWorkbook(data any, config CommandConfig) error {
	if config.OutputFile == "" {
		if err := export.Write(data, oh.stdout); err != nil {
			return errors.NewIOError("FILE_WRITE_FAILED", "Failed to write workbook", err)
		}
		return nil
	}
	if err := export.WriteFile(data, config.OutputFile); err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write workbook: %s", config.OutputFile), err)
	}
	oh.logger.Info("Workbook written successfully", "file", config.OutputFile)
	return nil
}

// GetSupportedFormats returns all supported output formats
func (oh *OutputHandler) GetSupportedFormats() []string {
	return append(oh.registry.GetSupportedFormats(), FormatXLSX)
}
