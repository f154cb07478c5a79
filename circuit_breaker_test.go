package servicepoint

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCircuitBreakerConfig(t *testing.T) {
	newBreaker := NewCircuitBreakerConfig(1, time.Minute, time.Minute)
	cb := newBreaker("display:2342")
	require.NotNil(t, cb)
	assert.Equal(t, gobreaker.StateClosed, cb.State())

	ok, err := cb.Execute(func() (bool, error) { return true, nil })
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCircuitBreakerTripsOnFailureRatio(t *testing.T) {
	cb := NewCircuitBreakerConfig(1, time.Minute, time.Minute)("display")
	fail := func() (bool, error) { return false, errors.New("failure") }
	succeed := func() (bool, error) { return true, nil }

	// 1 failure out of 3 stays below 60%
	_, _ = cb.Execute(succeed)
	_, _ = cb.Execute(succeed)
	_, _ = cb.Execute(fail)
	assert.Equal(t, gobreaker.StateClosed, cb.State())

	// 3 failures out of 5
	_, _ = cb.Execute(fail)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
	_, _ = cb.Execute(fail)
	assert.Equal(t, gobreaker.StateOpen, cb.State())

	_, err := cb.Execute(succeed)
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestCircuitBreakerHalfOpen(t *testing.T) {
	cb := NewCircuitBreakerConfig(1, time.Minute, 20*time.Millisecond)("display")

	for range 3 {
		_, _ = cb.Execute(func() (bool, error) { return false, errors.New("failure") })
	}
	require.Equal(t, gobreaker.StateOpen, cb.State())

	require.Eventually(t, func() bool {
		return cb.State() == gobreaker.StateHalfOpen
	}, time.Second, 5*time.Millisecond)

	_, err := cb.Execute(func() (bool, error) { return true, nil })
	require.NoError(t, err)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}
