package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqwal-app/aqwal/internal/domain"
)

func newTestExecutor() *Executor {
	return NewExecutor(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestExecute_AllStepsRun(t *testing.T) {
	var order []string

	op := Operation[int, int, int, string]{
		Name: "test.op",
		Validate: func(_ context.Context, input int) error {
			order = append(order, "validate")
			return nil
		},
		Perform: func(_ context.Context, input int) (int, error) {
			order = append(order, "perform")
			return input * 2, nil
		},
		Verify: func(_ context.Context, _ int, performed int) (int, error) {
			order = append(order, "verify")
			return performed, nil
		},
		Archive: func(_ context.Context, _ int, _ int) error {
			order = append(order, "archive")
			return nil
		},
		Respond: func(_ context.Context, _ int, verified int) (string, error) {
			order = append(order, "respond")
			return "done", nil
		},
	}

	result, err := Execute(context.Background(), newTestExecutor(), op, 21)

	require.NoError(t, err)
	assert.Equal(t, "done", result)
	assert.Equal(t, []string{"validate", "perform", "verify", "archive", "respond"}, order)
}

func TestExecute_NilStepsSkipped(t *testing.T) {
	op := Operation[int, int, int, int]{
		Name: "test.sparse",
		Perform: func(_ context.Context, input int) (int, error) {
			return input + 1, nil
		},
		Respond: func(_ context.Context, _ int, _ int) (int, error) {
			return 42, nil
		},
	}

	result, err := Execute(context.Background(), newTestExecutor(), op, 1)

	require.NoError(t, err)
	assert.Equal(t, 42, result)
}

func TestExecute_StopsAtFirstFailure(t *testing.T) {
	tests := []struct {
		name         string
		failStep     ExecutionStep
		expectedStep ExecutionStep
	}{
		{name: "validate failure", failStep: StepValidate, expectedStep: StepValidate},
		{name: "perform failure", failStep: StepPerform, expectedStep: StepPerform},
		{name: "verify failure", failStep: StepVerify, expectedStep: StepVerify},
		{name: "archive failure", failStep: StepArchive, expectedStep: StepArchive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			boom := errors.New("boom")
			var performRan, archiveRan bool

			op := Operation[int, int, int, int]{
				Name: "test.failing",
				Validate: func(_ context.Context, _ int) error {
					if tt.failStep == StepValidate {
						return boom
					}
					return nil
				},
				Perform: func(_ context.Context, _ int) (int, error) {
					performRan = true
					if tt.failStep == StepPerform {
						return 0, boom
					}
					return 1, nil
				},
				Verify: func(_ context.Context, _ int, performed int) (int, error) {
					if tt.failStep == StepVerify {
						return 0, boom
					}
					return performed, nil
				},
				Archive: func(_ context.Context, _ int, _ int) error {
					archiveRan = true
					if tt.failStep == StepArchive {
						return boom
					}
					return nil
				},
			}

			_, err := Execute(context.Background(), newTestExecutor(), op, 0)

			require.Error(t, err)
			require.ErrorIs(t, err, boom)

			step, ok := GetExecutionStep(err)
			require.True(t, ok)
			assert.Equal(t, tt.expectedStep, step)

			if tt.failStep == StepValidate {
				assert.False(t, performRan, "perform must not run after validate failure")
			}

			if tt.failStep == StepValidate || tt.failStep == StepPerform || tt.failStep == StepVerify {
				assert.False(t, archiveRan, "archive must not run after an earlier failure")
			}
		})
	}
}

func TestExecute_DomainErrorsSurviveWrapping(t *testing.T) {
	op := Operation[int, int, int, int]{
		Name: "test.domain-error",
		Perform: func(_ context.Context, _ int) (int, error) {
			return 0, domain.NewUnavailableError("quote-table", "connection refused")
		},
	}

	_, err := Execute(context.Background(), newTestExecutor(), op, 0)

	require.Error(t, err)
	assert.True(t, domain.IsUnavailable(err), "wrapping must preserve the domain error")
}

func TestGetExecutionStep_NonExecutionError(t *testing.T) {
	_, ok := GetExecutionStep(errors.New("plain"))
	assert.False(t, ok)
}
