package cli

import (
	"context"
	"fmt"
	"time"

	"interviewprep/internal/common"
	"interviewprep/internal/config"
	"interviewprep/internal/errors"
	"interviewprep/internal/observability"

	"github.com/spf13/cobra"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}

// Use variables of these types as the keys.
var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

var rootCmd = &cobra.Command{
	Use:   "interviewprep",
	Short: "Prepare for interviews with questions generated from your CV",
	Long: `Interviewprep sends your CV to the interview-prep backend, which detects
your skills and generates interview questions for the experience level,
question type and skills you choose. It can also analyze a code snippet.

Use "wizard" for the interactive terminal front end, "serve" for the
browser front end, or the one-shot commands for scripting.`,
	SilenceUsage: true,
}

func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	// Attach the config and logger to the context, making them available to all subcommands
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

func getConfigFromContext(ctx context.Context) (*config.Config, error) {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg, nil
	}
	return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "config not found in context", nil)
}

func getLoggerFromContext(ctx context.Context) (*errors.Logger, error) {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger, nil
	}
	return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "logger not found in context", nil)
}

// addOutputFlags registers --output and --format on cmd, filling cc
func addOutputFlags(cmd *cobra.Command, cc *common.CommandConfig) {
	cmd.Flags().StringVarP(&cc.OutputFile, "output", "o", "", "Output file path (default: stdout, .xlsx writes a workbook)")
	cmd.Flags().StringVar(&cc.OutputFormat, "format", "", "Output format: json, text, markdown, yaml or xlsx")

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return []string{}, cobra.ShellCompDirectiveError
		}
		return cfg.App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
	})
}

// outputPreRun applies the default format and checks it is both configured
// and producible
func outputPreRun(cc *common.CommandConfig) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfigFromContext(cmd.Context())
		if err != nil {
			return err
		}
		if cc.OutputFormat == "" {
			cc.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(cc.OutputFormat, cfg.App.SupportedFormats,
			common.NewOutputHandler(nil).GetSupportedFormats())
	}
}

// startObservability builds the manager for one command. The returned
// function flushes exporters and must be called before exit.
func startObservability(ctx context.Context, cfg *config.Config, logger *errors.Logger) (*observability.ObservabilityManager, func(), error) {
	om, err := observability.NewObservabilityManager(observability.GetObservabilityConfig(cfg, Version), cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	shutdown := func() {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := om.Shutdown(sctx); err != nil {
			logger.LogError(err, "Failed to shut down observability")
		}
	}
	return om, shutdown, nil
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(analyzeCodeCmd)
	rootCmd.AddCommand(wizardCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}
