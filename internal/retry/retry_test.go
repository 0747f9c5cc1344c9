package retry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDoSucceedsOnAttemptK(t *testing.T) {
	p := Policy{MaxAttempts: 10, Delay: time.Millisecond}

	calls := 0
	err := p.Do(context.Background(), testLogger(), "flaky", func() error {
		calls++
		if calls < 4 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 4, calls, "must stop at the first success")
}

func TestDoFirstAttemptSucceeds(t *testing.T) {
	p := Policy{MaxAttempts: 3, Delay: time.Millisecond}

	calls := 0
	err := p.Do(context.Background(), testLogger(), "ok", func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestDoExhaustion(t *testing.T) {
	p := Policy{MaxAttempts: 5, Delay: 0}

	sentinel := errors.New("portal down")
	calls := 0
	err := p.Do(context.Background(), testLogger(), "doomed", func() error {
		calls++
		return sentinel
	})

	require.Equal(t, 5, calls, "must try exactly MaxAttempts times")
	require.ErrorIs(t, err, ErrExhausted)
	require.ErrorIs(t, err, sentinel, "last failure must stay visible")
}

func TestDoContextCancelled(t *testing.T) {
	p := Policy{MaxAttempts: 1000, Delay: 50 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := p.Do(ctx, testLogger(), "cancelled", func() error {
		calls++
		return errors.New("still failing")
	})

	require.ErrorIs(t, err, context.Canceled)
	require.Less(t, calls, 1000)
}

func TestDoZeroAttempts(t *testing.T) {
	p := Policy{}
	err := p.Do(context.Background(), testLogger(), "empty", func() error { return nil })
	require.Error(t, err)
}
