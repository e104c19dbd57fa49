package api_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetgrid/fleetd/internal/adapters/api"
	"github.com/fleetgrid/fleetd/internal/domain/shared"
)

var errBoom = errors.New("boom")

func TestCircuitBreaker_StaysClosedBelowThreshold(t *testing.T) {
	clock := shared.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	cb := api.NewCircuitBreaker(3, time.Minute, clock)

	for i := 0; i < 2; i++ {
		err := cb.Call(func() error { return errBoom })
		require.Error(t, err)
	}
	assert.Equal(t, api.CircuitClosed, cb.GetState())
}

func TestCircuitBreaker_OpensAtThreshold(t *testing.T) {
	clock := shared.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	cb := api.NewCircuitBreaker(3, time.Minute, clock)

	for i := 0; i < 3; i++ {
		_ = cb.Call(func() error { return errBoom })
	}
	assert.Equal(t, api.CircuitOpen, cb.GetState())

	err := cb.Call(func() error { return nil })
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrCircuitOpen)
}

func TestCircuitBreaker_HalfOpensAfterTimeout(t *testing.T) {
	clock := shared.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	cb := api.NewCircuitBreaker(2, time.Minute, clock)

	for i := 0; i < 2; i++ {
		_ = cb.Call(func() error { return errBoom })
	}
	require.Equal(t, api.CircuitOpen, cb.GetState())

	clock.Advance(59 * time.Second)
	err := cb.Call(func() error { return nil })
	require.Error(t, err, "just under the timeout the circuit must still reject")

	clock.Advance(2 * time.Second)
	err = cb.Call(func() error { return nil })
	require.NoError(t, err, "past the timeout a call is let through to probe recovery")
	assert.Equal(t, api.CircuitClosed, cb.GetState(), "a successful probe in half-open closes the circuit")
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	clock := shared.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	cb := api.NewCircuitBreaker(1, time.Minute, clock)

	_ = cb.Call(func() error { return errBoom })
	require.Equal(t, api.CircuitOpen, cb.GetState())

	clock.Advance(time.Minute)
	err := cb.Call(func() error { return errBoom })
	require.Error(t, err)
	assert.Equal(t, api.CircuitOpen, cb.GetState(), "a failed half-open probe reopens the circuit")
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	clock := shared.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	cb := api.NewCircuitBreaker(3, time.Minute, clock)

	_ = cb.Call(func() error { return errBoom })
	_ = cb.Call(func() error { return errBoom })
	assert.Equal(t, 2, cb.GetFailureCount())

	_ = cb.Call(func() error { return nil })
	assert.Equal(t, 0, cb.GetFailureCount())
	assert.Equal(t, api.CircuitClosed, cb.GetState())
}

func TestCircuitBreaker_Reset(t *testing.T) {
	clock := shared.NewMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	cb := api.NewCircuitBreaker(1, time.Minute, clock)

	_ = cb.Call(func() error { return errBoom })
	require.Equal(t, api.CircuitOpen, cb.GetState())

	cb.Reset()
	assert.Equal(t, api.CircuitClosed, cb.GetState())
	assert.Equal(t, 0, cb.GetFailureCount())
}
