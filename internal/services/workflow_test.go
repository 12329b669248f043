package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRunSteps_CompensatesCompletedStepsInReverse(t *testing.T) {
	var trail []string
	record := func(s string) func(context.Context) error {
		return func(context.Context) error {
			trail = append(trail, s)
			return nil
		}
	}
	boom := errors.New("boom")

	err := runSteps(context.Background(), zaptest.NewLogger(t), "test", []step{
		{name: "one", run: record("run one"), compensate: record("undo one")},
		{name: "two", run: record("run two")},
		{name: "three", run: record("run three"), compensate: record("undo three")},
		{name: "four", run: func(context.Context) error { return boom }, compensate: record("undo four")},
	})

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "four", stepErr.Step)
	assert.True(t, stepErr.Compensated)
	assert.Equal(t, []string{"run one", "run two", "run three", "undo three", "undo one"}, trail)
}

func TestRunSteps_CompensationSurvivesCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var compensateErr error

	err := runSteps(ctx, zaptest.NewLogger(t), "test", []step{
		{
			name: "write",
			run:  func(context.Context) error { return nil },
			compensate: func(ctx context.Context) error {
				compensateErr = ctx.Err()
				return nil
			},
		},
		{
			name: "fail",
			run: func(context.Context) error {
				cancel()
				return context.Canceled
			},
		},
	})
	require.Error(t, err)
	assert.NoError(t, compensateErr)
}

func TestRunSteps_FirstStepFailureHasNothingToCompensate(t *testing.T) {
	err := runSteps(context.Background(), zaptest.NewLogger(t), "test", []step{
		{name: "only", run: func(context.Context) error { return errors.New("nope") }},
	})
	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.False(t, stepErr.Compensated)
}
