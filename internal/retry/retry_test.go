package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo(t *testing.T) {
	t.Parallel()

	t.Run("returns immediately on success", func(t *testing.T) {
		t.Parallel()
		attempts := 0
		err := Do(context.Background(), func() error {
			attempts++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("retries until the operation succeeds", func(t *testing.T) {
		t.Parallel()
		attempts := 0
		err := Do(context.Background(), func() error {
			attempts++
			if attempts < 3 {
				return errors.New("transient")
			}
			return nil
		}, WithInitialDelay(time.Millisecond))
		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("gives up after the retry budget", func(t *testing.T) {
		t.Parallel()
		attempts := 0
		boom := errors.New("persistent")
		err := Do(context.Background(), func() error {
			attempts++
			return boom
		}, WithMaxRetries(2), WithInitialDelay(time.Millisecond))

		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 3, attempts, "first attempt plus two retries")
	})

	t.Run("stops on fatal errors", func(t *testing.T) {
		t.Parallel()
		attempts := 0
		err := Do(context.Background(), func() error {
			attempts++
			return Fatal(errors.New("bad credentials"))
		}, WithInitialDelay(time.Millisecond))

		require.Error(t, err)
		assert.Equal(t, 1, attempts)
		assert.True(t, IsFatal(err))
	})

	t.Run("stops when the context is cancelled", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		attempts := 0
		err := Do(ctx, func() error {
			attempts++
			return errors.New("transient")
		}, WithInitialDelay(time.Millisecond))

		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, attempts)
	})
}

func TestFatal(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Fatal(nil))

	inner := errors.New("nope")
	wrapped := Fatal(inner)
	assert.True(t, IsFatal(wrapped))
	assert.ErrorIs(t, wrapped, inner)
	assert.Equal(t, "nope", wrapped.Error())

	assert.False(t, IsFatal(errors.New("plain")))
}
