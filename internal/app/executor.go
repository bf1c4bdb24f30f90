package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aqwal-app/aqwal/internal/platform/logging"
)

// ExecutionStep names a phase of a staged write. Writes that touch the
// store or the remote table run as validate, perform, verify, archive,
// respond, so a failure never leaves half-applied state behind.
type ExecutionStep string

const (
	StepValidate ExecutionStep = "validate"
	StepPerform  ExecutionStep = "perform"
	StepVerify   ExecutionStep = "verify"
	StepArchive  ExecutionStep = "archive"
	StepRespond  ExecutionStep = "respond"
)

// ExecutionError wraps a step failure with the step it occurred in.
type ExecutionError struct {
	Step    ExecutionStep
	Message string
	Cause   error
}

func (e *ExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Step, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s failed: %s", e.Step, e.Message)
}

// Unwrap returns the underlying cause so domain error predicates keep
// working through the wrapper.
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

func stepError(step ExecutionStep, message string, cause error) error {
	return &ExecutionError{Step: step, Message: message, Cause: cause}
}

// GetExecutionStep extracts the step from an execution error.
func GetExecutionStep(err error) (ExecutionStep, bool) {
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Step, true
	}

	return "", false
}

// Executor runs staged writes and logs each step.
type Executor struct {
	logger *slog.Logger
}

// NewExecutor creates a new executor with the given logger.
func NewExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{logger: logger}
}

// Operation defines the step functions of a staged write. Nil steps are
// skipped. P is what Perform produced, V what Verify confirmed, O the
// caller-facing result.
type Operation[I, P, V, O any] struct {
	// Name identifies this operation for logging.
	Name string

	// Validate checks inputs and preconditions before any state changes.
	Validate func(ctx context.Context, input I) error

	// Perform executes the write itself.
	Perform func(ctx context.Context, input I) (P, error)

	// Verify confirms the write took effect. Perform's return value is
	// not trusted on its own.
	Verify func(ctx context.Context, input I, performed P) (V, error)

	// Archive persists any follow-on state, only after verification.
	Archive func(ctx context.Context, input I, verified V) error

	// Respond shapes the result for the caller.
	Respond func(ctx context.Context, input I, verified V) (O, error)
}

// Execute runs an operation through all five steps, stopping at the
// first failure. The returned error carries the failing step.
func Execute[I, P, V, O any](ctx context.Context, exec *Executor, op Operation[I, P, V, O], input I) (O, error) {
	var zero O

	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = exec.logger
	}

	logger = logger.With(slog.String("operation", op.Name))
	start := time.Now()

	if op.Validate != nil {
		if err := op.Validate(ctx, input); err != nil {
			logger.WarnContext(ctx, "validation failed", slog.Any("error", err))

			return zero, stepError(StepValidate, "input validation failed", err)
		}
	}

	var (
		performed P
		err       error
	)

	if op.Perform != nil {
		performed, err = op.Perform(ctx, input)
		if err != nil {
			logger.ErrorContext(ctx, "perform failed", slog.Any("error", err))

			return zero, stepError(StepPerform, "operation failed", err)
		}
	}

	var verified V

	if op.Verify != nil {
		verified, err = op.Verify(ctx, input, performed)
		if err != nil {
			logger.ErrorContext(ctx, "verification failed", slog.Any("error", err))

			return zero, stepError(StepVerify, "verification failed", err)
		}
	}

	if op.Archive != nil {
		if err := op.Archive(ctx, input, verified); err != nil {
			logger.ErrorContext(ctx, "archive failed", slog.Any("error", err))

			return zero, stepError(StepArchive, "state persistence failed", err)
		}
	}

	var result O

	if op.Respond != nil {
		result, err = op.Respond(ctx, input, verified)
		if err != nil {
			logger.WarnContext(ctx, "respond formatting failed", slog.Any("error", err))

			return zero, err
		}
	}

	logger.InfoContext(ctx, "operation completed",
		slog.Duration("duration", time.Since(start)),
	)

	return result, nil
}
