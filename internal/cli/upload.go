package cli

import (
	"context"

	"interviewprep/internal/backend"
	"interviewprep/internal/common"
	"interviewprep/internal/types"
	"interviewprep/internal/wizard"

	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload [cv-file]",
	Short: "Generate questions in one step through the legacy upload endpoint",
	Long: `Send a CV and an experience level to /upload and print the questions.

This skips skill detection, so there is no skill selection, question type
or job description.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := outputPreRun(&uploadConfig)(cmd, args); err != nil {
			return err
		}
		return uploadFlags.parseExperience(cmd)
	},
	RunE: runUpload,
}

var (
	uploadConfig common.CommandConfig
	uploadFlags  wizardFlags
)

func init() {
	addOutputFlags(uploadCmd, &uploadConfig)
	addExperienceFlags(uploadCmd, &uploadFlags)
}

func runUpload(cmd *cobra.Command, args []string) error {
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
		logger, uploadConfig, "upload",
		func(ctx context.Context) (types.QuestionSet, error) {
			file, err := loadResume(cfg, logger, args[0])
			if err != nil {
				return types.QuestionSet{}, err
			}

			ctrl := wizard.NewController(client, logger)
			ctrl.SelectFile(file)
			if _, err := ctrl.SetExperience(uploadFlags.level, uploadFlags.rng); err != nil {
				return types.QuestionSet{}, err
			}

			res := ctrl.Upload(ctx).Result()
			if !res.OK() {
				return types.QuestionSet{}, userFailure(res.Value.Error, res.Err)
			}
			return types.QuestionSet{
				File:       res.Value.File.Name,
				Experience: res.Value.Experience.Descriptor(),
				Questions:  res.Value.Questions,
			}, nil
		})
}
