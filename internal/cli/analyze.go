package cli

import (
	"context"
	"fmt"

	"interviewprep/internal/backend"
	"interviewprep/internal/common"
	"interviewprep/internal/config"
	"interviewprep/internal/errors"
	"interviewprep/internal/resume"
	"interviewprep/internal/types"
	"interviewprep/internal/wizard"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [cv-file]",
	Short: "Detect the skills listed in a CV",
	Long: `Send a CV to the backend and print the skills it detects.

The CV is checked locally first: it must exist, fit within app.maxFileSize
and, for a PDF, be readable. Other file types are sent as they are.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: outputPreRun(&analyzeConfig),
	RunE:    runAnalyze,
}

var analyzeConfig common.CommandConfig

func init() {
	addOutputFlags(analyzeCmd, &analyzeConfig)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return err
	}

	om, shutdown, err := startObservability(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer shutdown()
	client := backend.NewClient(cfg.Backend, logger, om)

	return common.RunCommandTo(cmd.Context(), common.NewOutputHandlerWithWriter(logger, cmd.OutOrStdout()),
		logger, analyzeConfig, "analyze",
		func(ctx context.Context) (types.SkillAnalysis, error) {
			ctrl, err := analyzedWizard(ctx, cfg, logger, client, args[0])
			if err != nil {
				return types.SkillAnalysis{}, err
			}
			st := ctrl.State()
			return types.SkillAnalysis{File: st.File.Name, Skills: st.Skills}, nil
		})
}

// loadResume reads path with the configured size limit
func loadResume(cfg *config.Config, logger *errors.Logger, path string) (types.UploadedFile, error) {
	file, report, err := resume.NewLoader(cfg.App.MaxFileSize, logger).Load(path)
	if err != nil {
		return types.UploadedFile{}, err
	}
	logger.Info("Résumé loaded",
		"file", file.Name,
		"size", resume.FormatFileSize(report.Bytes),
		"pdf", report.IsPDF,
		"pages", report.Pages)
	return file, nil
}

// analyzedWizard runs the first wizard step on path and returns the
// controller in the Configuring stage
func analyzedWizard(ctx context.Context, cfg *config.Config, logger *errors.Logger, b wizard.Backend, path string) (*wizard.Controller, error) {
	file, err := loadResume(cfg, logger, path)
	if err != nil {
		return nil, err
	}

	ctrl := wizard.NewController(b, logger)
	ctrl.SelectFile(file)
	if res := ctrl.Analyze(ctx).Result(); !res.OK() {
		return nil, userFailure(res.Value.Error, res.Err)
	}
	return ctrl, nil
}

// userFailure prefixes err with the message shown to the user for it
func userFailure(message string, err error) error {
	if message == "" {
		return err
	}
	return fmt.Errorf("%s: %w", message, err)
}
