package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddRejectsBadSpec(t *testing.T) {
	s := New(nil, time.Second)
	err := s.Add("broken", "every tuesday", func(context.Context) error { return nil })
	assert.Error(t, err)
}

func TestJobsRunAndStop(t *testing.T) {
	s := New(time.UTC, time.Second)

	var runs, failures atomic.Int32
	require.NoError(t, s.Add("tick", "@every 1s", func(ctx context.Context) error {
		_, hasDeadline := ctx.Deadline()
		if hasDeadline {
			runs.Add(1)
		}
		return nil
	}))
	require.NoError(t, s.Add("fail", "@every 1s", func(context.Context) error {
		failures.Add(1)
		return errors.New("boom")
	}))

	s.Start()
	assert.Eventually(t, func() bool {
		return runs.Load() > 0 && failures.Load() > 0
	}, 5*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
