package cli

import (
	"context"

	"interviewprep/internal/backend"
	"interviewprep/internal/codepanel"
	"interviewprep/internal/common"
	"interviewprep/internal/types"

	"github.com/spf13/cobra"
)

var analyzeCodeCmd = &cobra.Command{
	Use:   "analyze-code [source-file]",
	Short: "Ask the backend to analyze a code snippet",
	Long: `Send a source file to /analyze-code and print the analysis.

With no argument, or with '-', the code is read from stdin. The content is
sent exactly as read, an empty file included.`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: outputPreRun(&analyzeCodeConfig),
	RunE:    runAnalyzeCode,
}

var analyzeCodeConfig common.CommandConfig

func init() {
	addOutputFlags(analyzeCodeCmd, &analyzeCodeConfig)
}

func runAnalyzeCode(cmd *cobra.Command, args []string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return err
	}

	source := "-"
	if len(args) == 1 {
		source = args[0]
	}
	code, err := common.NewFileProcessor(logger).WithStdin(cmd.InOrStdin()).ReadFile(source)
	if err != nil {
		return err
	}

	om, shutdown, err := startObservability(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer shutdown()

	panel := codepanel.New(backend.NewClient(cfg.Backend, logger, om), logger)
	panel.EditCode(code)

	return common.RunCommandTo(cmd.Context(), common.NewOutputHandlerWithWriter(logger, cmd.OutOrStdout()),
		logger, analyzeCodeConfig, "analyze-code",
		func(ctx context.Context) (types.CodeAnalysis, error) {
			res := panel.AnalyzeCode(ctx).Result()
			if !res.OK() {
				return types.CodeAnalysis{}, userFailure(res.Value.Error, res.Err)
			}
			return types.CodeAnalysis{Source: source, Bytes: len(code), Analysis: res.Value.Analysis}, nil
		})
}

