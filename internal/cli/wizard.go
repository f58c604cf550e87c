package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"interviewprep/internal/backend"
	"interviewprep/internal/codepanel"
	"interviewprep/internal/config"
	"interviewprep/internal/errors"
	"interviewprep/internal/resume"
	"interviewprep/internal/tui"
	"interviewprep/internal/wizard"

	"github.com/spf13/cobra"
)

var wizardCmd = &cobra.Command{
	Use:   "wizard [cv-file]",
	Short: "Run the interactive terminal front end",
	Long: `Open the interview-prep wizard in the terminal.

The Interview Questions tab walks through selecting a CV, analyzing it,
choosing experience, question type, job description and skills, and
generating questions. The Code Analysis tab holds an editable buffer.

Logs go to app.logFile while the wizard runs; without one they are dropped.
With --watch the CV is reloaded whenever it changes on disk.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWizard,
}

var (
	wizardWatch    bool
	wizardDebounce time.Duration
)

func init() {
	wizardCmd.Flags().BoolVarP(&wizardWatch, "watch", "w", false, "Reload the CV when it changes on disk")
	wizardCmd.Flags().DurationVar(&wizardDebounce, "watch-debounce", 500*time.Millisecond, "Delay before reloading a changed CV")
}

func runWizard(cmd *cobra.Command, args []string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}

	logger, closeLog, err := wizardLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	var path string
	if len(args) == 1 {
		path = args[0]
	}
	if wizardWatch && path == "" {
		return errors.NewValidationError(errors.ErrCodeFileMissing, "--watch needs a CV file argument", nil)
	}

	// console exporters would draw over the terminal UI
	cfg.Observability.ConsoleOutput = false
	om, shutdown, err := startObservability(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer shutdown()
	client := backend.NewClient(cfg.Backend, logger, om)

	logger.Info("Starting terminal front end", "backend", cfg.Backend.BaseURL, "watch", wizardWatch)
	return tui.Run(cmd.Context(), tui.RunOptions{
		Options: tui.Options{
			Wizard:     wizard.NewController(client, logger),
			Code:       codepanel.New(client, logger),
			Loader:     resume.NewLoader(cfg.App.MaxFileSize, logger),
			ResumePath: path,
			Version:    Version,
			Logger:     logger,
		},
		Watch:         wizardWatch,
		WatchDebounce: wizardDebounce,
	})
}

// wizardLogger writes to app.logFile so that log lines never reach the
// terminal the wizard is drawing on
func wizardLogger(cfg *config.Config) (*errors.Logger, func(), error) {
	if cfg.App.LogFile == "" {
		return errors.NewNopLogger(), func() {}, nil
	}

	level, err := errors.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		return nil, nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, err.Error(), err)
	}

	path := filepath.Clean(cfg.App.LogFile)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, nil, fmt.Errorf("cannot create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, errors.NewIOError(errors.ErrCodeFileNotReadable, fmt.Sprintf("Cannot open log file: %s", path), err)
	}
	return errors.NewLoggerWithWriter(f, level), func() { _ = f.Close() }, nil
}
