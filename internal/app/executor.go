package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/garage-service/internal/domain"
	"github.com/jsamuelsen/garage-service/internal/platform/logging"
)

// State-changing parking operations run in five steps:
//
//  1. VALIDATE - check inputs before anything is loaded
//  2. PERFORM  - load the car and apply the transition to a private copy
//  3. VERIFY   - confirm the copy is in the expected state
//  4. ARCHIVE  - save the copy
//  5. RESPOND  - emit metrics and events, build the result
//
// Nothing is saved unless perform and verify succeed, so a rejected
// transition never reaches the repository. The context is checked before
// each step up to archive: a request that ran out of time stops where it is.
// Once archive has saved the change, respond runs detached from cancellation
// so the caller always learns about a change that was made.

// ExecutionStep names one of the five steps.
type ExecutionStep string

const (
	StepValidate ExecutionStep = "validate"
	StepPerform  ExecutionStep = "perform"
	StepVerify   ExecutionStep = "verify"
	StepArchive  ExecutionStep = "archive"
	StepRespond  ExecutionStep = "respond"
)

// ExecutionError records the step an operation stopped at.
type ExecutionError struct {
	Step    ExecutionStep
	Message string
	Cause   error
}

func (e *ExecutionError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s failed: %s", e.Step, e.Message)
	}

	return fmt.Sprintf("%s failed: %s: %v", e.Step, e.Message, e.Cause)
}

func (e *ExecutionError) Unwrap() error { return e.Cause }

func newStepError(step ExecutionStep, message string, cause error) error {
	return &ExecutionError{Step: step, Message: message, Cause: cause}
}

// GetExecutionStep returns the step err stopped at, if err came from Execute.
func GetExecutionStep(err error) (ExecutionStep, bool) {
	var execErr *ExecutionError
	if !errors.As(err, &execErr) {
		return "", false
	}

	return execErr.Step, true
}

// Executor runs operations, logging each step and adding it as an event to
// the active span.
type Executor struct {
	logger *slog.Logger
}

// NewExecutor creates an executor. A nil logger means slog.Default. A logger
// carried by the context takes precedence at execution time.
func NewExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{logger: logger}
}

// Operation holds one function per step. Nil steps are skipped and pass the
// zero value on.
type Operation[I, P, V, O any] struct {
	Name string

	Validate func(ctx context.Context, input I) error
	Perform  func(ctx context.Context, input I) (P, error)
	Verify   func(ctx context.Context, input I, performed P) (V, error)
	Archive  func(ctx context.Context, input I, verified V) error
	Respond  func(ctx context.Context, input I, verified V) (O, error)
}

// Execute runs op on input and stops at the first failing step.
func Execute[I, P, V, O any](ctx context.Context, exec *Executor, op Operation[I, P, V, O], input I) (O, error) {
	var (
		performed P
		verified  V
		result    O
		zero      O
	)

	r := stepRunner{
		logger: logging.FromContextOr(ctx, exec.logger).With(slog.String("operation", op.Name)),
		span:   trace.SpanFromContext(ctx),
		name:   op.Name,
	}

	steps := []struct {
		step    ExecutionStep
		message string
		skip    bool
		run     func() error
	}{
		{StepValidate, "input validation failed", op.Validate == nil, func() error {
			return op.Validate(ctx, input)
		}},
		{StepPerform, "operation failed", op.Perform == nil, func() (err error) {
			performed, err = op.Perform(ctx, input)
			return err
		}},
		{StepVerify, "verification failed", op.Verify == nil, func() (err error) {
			verified, err = op.Verify(ctx, input, performed)
			return err
		}},
		{StepArchive, "state persistence failed", op.Archive == nil, func() error {
			return op.Archive(ctx, input, verified)
		}},
		{StepRespond, "respond failed", op.Respond == nil, func() (err error) {
			result, err = op.Respond(ctx, input, verified)
			return err
		}},
	}

	start := time.Now()

	for _, s := range steps {
		if s.skip {
			continue
		}

		if err := ctx.Err(); err != nil {
			return zero, r.fail(ctx, s.step, "request ended before step", err)
		}

		if err := s.run(); err != nil {
			return zero, r.fail(ctx, s.step, s.message, err)
		}

		if s.step == StepArchive {
			ctx = context.WithoutCancel(ctx)
		}

		r.logger.Log(ctx, logging.LevelTrace, "step completed", slog.String("step", string(s.step)))
		r.span.AddEvent(string(s.step))
	}

	r.logger.InfoContext(ctx, "operation completed", slog.Duration("duration", time.Since(start)))

	return result, nil
}

type stepRunner struct {
	logger *slog.Logger
	span   trace.Span
	name   string
}

// fail logs and wraps a step failure. Failures the caller caused are warnings.
func (r stepRunner) fail(ctx context.Context, step ExecutionStep, message string, err error) error {
	level := slog.LevelError
	if isClientError(err) {
		level = slog.LevelWarn
	}

	r.logger.Log(ctx, level, message, slog.String("step", string(step)), slog.Any("error", err))
	r.span.AddEvent("step failed", trace.WithAttributes(
		attribute.String("step", string(step)),
		attribute.String("operation", r.name),
	))

	return newStepError(step, message, err)
}

func isClientError(err error) bool {
	return domain.IsInvalidState(err) ||
		domain.IsValidation(err) ||
		domain.IsNotFound(err) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
