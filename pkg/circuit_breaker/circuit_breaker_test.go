package circuit_breaker_test

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/versewell/library-service/pkg/circuit_breaker"
)

func Test_circuitBreaker_Call(t *testing.T) {
	t.Parallel()

	ok := func() error { return nil }
	fail := func() error { return errors.New("service error") }

	cb := circuit_breaker.New(10, 100*time.Millisecond, 0.5, 3)

	for i := 0; i < 20; i++ {
		require.NoError(t, cb.Call(ok))
	}

	// trip the breaker
	for i := 0; i < 10; i++ {
		_ = cb.Call(fail)
	}
	err := cb.Call(ok)
	require.ErrorIs(t, err, circuit_breaker.ErrOpenCB)

	// wait out the timeout, probe in half-open until closed again
	time.Sleep(150 * time.Millisecond)
	for i := 0; i < 5; i++ {
		require.NoError(t, cb.Call(ok))
	}
	require.NoError(t, cb.Call(ok))

	// half-open failure snaps back to open
	for i := 0; i < 10; i++ {
		_ = cb.Call(fail)
	}
	time.Sleep(150 * time.Millisecond)
	require.Error(t, cb.Call(fail))
	require.ErrorIs(t, cb.Call(ok), circuit_breaker.ErrOpenCB)
}
