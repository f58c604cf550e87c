package common

import (
	"context"
	"time"

	"interviewprep/internal/errors"
)

// OperationFunc produces the result of one command
type OperationFunc[Output any] func(context.Context) (Output, error)

// RunCommand runs operation and hands its result to the output handler.
// Failures are logged once here so commands only return them.
func RunCommand[Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	name string,
	operation OperationFunc[Output],
) error {
	return RunCommandTo(ctx, NewOutputHandler(logger), logger, cmdConfig, name, operation)
}

// RunCommandTo is RunCommand with an explicit output handler
func RunCommandTo[Output any](
	ctx context.Context,
	out *OutputHandler,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	name string,
	operation OperationFunc[Output],
) error {
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	if err := ValidateOutputFormat(cmdConfig.OutputFormat, out.GetSupportedFormats()); err != nil {
		return err
	}

	start := time.Now()
	logger.Debug("Command started", "command", name, "format", cmdConfig.OutputFormat)

	result, err := operation(ctx)
	if err != nil {
		logger.LogError(err, "Command failed", "command", name, "duration", time.Since(start))
		return err
	}

	logger.Info("Command completed", "command", name, "duration", time.Since(start))
	return out.HandleOutput(result, cmdConfig)
}
