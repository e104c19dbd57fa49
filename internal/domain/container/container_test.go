package container_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetgrid/fleetd/internal/domain/container"
	"github.com/fleetgrid/fleetd/internal/domain/shared"
)

func newTestContainer(t *testing.T, typ container.Type, maxIterations int) *container.Container {
	t.Helper()
	clock := shared.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	c, err := container.New("c-1", typ, 1, maxIterations, nil, clock)
	require.NoError(t, err)
	return c
}

func TestNew_RejectsUnknownType(t *testing.T) {
	_, err := container.New("c-1", container.Type("NOT_A_TYPE"), 1, -1, nil, nil)
	require.Error(t, err)
	assert.Equal(t, shared.KindBadRequest, shared.KindOf(err))
}

func TestLifecycle_LegalTransitions(t *testing.T) {
	c := newTestContainer(t, container.TypeNavigate, -1)
	assert.Equal(t, container.ContainerStatusPending, c.Status())

	require.NoError(t, c.Start())
	assert.Equal(t, container.ContainerStatusRunning, c.Status())
	require.NotNil(t, c.StartedAt())

	require.NoError(t, c.Stop())
	assert.Equal(t, container.ContainerStatusStopping, c.Status())

	require.NoError(t, c.MarkStopped())
	assert.Equal(t, container.ContainerStatusStopped, c.Status())
	require.NotNil(t, c.StoppedAt())
	assert.True(t, c.IsFinished())
}

func TestLifecycle_IllegalTransitionFails(t *testing.T) {
	c := newTestContainer(t, container.TypeNavigate, -1)

	err := c.Complete()
	require.Error(t, err)
	assert.Equal(t, shared.KindInvalidTransition, shared.KindOf(err))
	assert.Equal(t, container.ContainerStatusPending, c.Status())
}

func TestLifecycle_FailFromRunningThenRestart(t *testing.T) {
	c := newTestContainer(t, container.TypeNavigate, -1)
	require.NoError(t, c.Start())

	cause := shared.NewTransientError("api unreachable", nil)
	require.NoError(t, c.Fail(cause))
	assert.Equal(t, container.ContainerStatusFailed, c.Status())
	assert.Equal(t, cause, c.LastError())

	require.True(t, c.CanRestart())
	require.NoError(t, c.ResetForRestart())
	assert.Equal(t, container.ContainerStatusPending, c.Status())
	assert.Equal(t, 1, c.RestartCount())
	assert.Nil(t, c.LastError())
}

func TestLifecycle_CanRestartRespectsMaxRestarts(t *testing.T) {
	c := newTestContainer(t, container.TypeNavigate, -1)
	c.SetMaxRestarts(1)
	require.NoError(t, c.Start())
	require.NoError(t, c.Fail(shared.NewTransientError("boom", nil)))

	require.True(t, c.CanRestart())
	require.NoError(t, c.ResetForRestart())

	require.NoError(t, c.Start())
	require.NoError(t, c.Fail(shared.NewTransientError("boom again", nil)))
	assert.False(t, c.CanRestart())

	err := c.ResetForRestart()
	require.Error(t, err)
	assert.Equal(t, shared.KindInvalidTransition, shared.KindOf(err))
}

func TestIterationControl_BoundedBudget(t *testing.T) {
	c := newTestContainer(t, container.TypeNavigate, 2)
	require.NoError(t, c.Start())

	assert.True(t, c.ShouldContinue())
	require.NoError(t, c.IncrementIteration())
	assert.Equal(t, 1, c.CurrentIteration())

	assert.True(t, c.ShouldContinue())
	require.NoError(t, c.IncrementIteration())
	assert.Equal(t, 2, c.CurrentIteration())

	assert.False(t, c.ShouldContinue())
}

func TestIterationControl_UnboundedNeverStops(t *testing.T) {
	c := newTestContainer(t, container.TypeNavigate, -1)
	require.NoError(t, c.Start())
	for i := 0; i < 100; i++ {
		require.True(t, c.ShouldContinue())
		require.NoError(t, c.IncrementIteration())
	}
}

func TestIterationControl_IllegalOutsideRunning(t *testing.T) {
	c := newTestContainer(t, container.TypeNavigate, -1)
	err := c.IncrementIteration()
	require.Error(t, err)
	assert.Equal(t, shared.KindInvalidTransition, shared.KindOf(err))
}

func TestType_Resumable(t *testing.T) {
	assert.False(t, container.TypeNavigate.Resumable())
	assert.False(t, container.TypeDock.Resumable())
	assert.False(t, container.TypePurchaseShip.Resumable())
	assert.True(t, container.TypeContractWorkflow.Resumable())
	assert.True(t, container.TypeMiningCoordinator.Resumable())
}

func TestAllTypes_EveryTypeValid(t *testing.T) {
	for _, typ := range container.AllTypes {
		assert.True(t, typ.Valid(), "type %s should be valid", typ)
	}
	assert.False(t, container.Type("BOGUS").Valid())
}
