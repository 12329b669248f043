package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// step is one fallible action of a workflow. compensate, when set, undoes run after a
// later step fails.
type step struct {
	name       string
	run        func(ctx context.Context) error
	compensate func(ctx context.Context) error
}

// StepError reports which workflow step failed. It unwraps to the step's error.
type StepError struct {
	Workflow    string
	Step        string
	Compensated bool
	Err         error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s failed at %s: %v", e.Workflow, e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// runSteps executes steps in order. When one fails, the compensations of the steps that
// already completed run in reverse order on a context that outlives cancellation of ctx.
func runSteps(ctx context.Context, log *zap.Logger, workflow string, steps []step) error {
	var done []step
	for _, s := range steps {
		if err := s.run(ctx); err != nil {
			log.Debug("workflow step failed",
				zap.String("workflow", workflow),
				zap.String("step", s.name),
				zap.Error(err),
			)
			return &StepError{
				Workflow:    workflow,
				Step:        s.name,
				Compensated: compensate(context.WithoutCancel(ctx), log, workflow, done),
				Err:         err,
			}
		}
		done = append(done, s)
	}
	return nil
}

// compensate reports whether any compensation ran and all of them succeeded.
func compensate(ctx context.Context, log *zap.Logger, workflow string, done []step) bool {
	ran, ok := false, true
	for i := len(done) - 1; i >= 0; i-- {
		if done[i].compensate == nil {
			continue
		}
		ran = true
		if err := done[i].compensate(ctx); err != nil {
			ok = false
			log.Error("workflow compensation failed",
				zap.String("workflow", workflow),
				zap.String("step", done[i].name),
				zap.Error(err),
			)
		}
	}
	return ran && ok
}
