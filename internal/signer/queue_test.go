package signer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aegis-sign/jadesigner/pkg/apierrors"
	"github.com/stretchr/testify/require"
)

func TestUnlockQueueRunsInSubmissionOrder(t *testing.T) {
	q := newUnlockQueue(8, nil)
	defer q.Close()

	gate := make(chan struct{})
	started := make(chan struct{})
	var mu sync.Mutex
	var order []int

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = q.Do(context.Background(), func(context.Context) error {
			close(started)
			<-gate
			return nil
		})
	}()
	<-started

	for i := 1; i <= 5; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = q.Do(context.Background(), func(context.Context) error {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				return nil
			})
		}()
		require.Eventually(t, func() bool { return q.Depth() == i }, time.Second, time.Millisecond)
	}
	close(gate)
	wg.Wait()
	require.Equal(t, []int{1, 2, 3, 4, 5}, order)
}

func TestUnlockQueueFull(t *testing.T) {
	q := newUnlockQueue(1, nil)
	defer q.Close()

	gate := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = q.Do(context.Background(), func(context.Context) error {
			close(started)
			<-gate
			return nil
		})
	}()
	<-started
	go func() { _ = q.Do(context.Background(), func(context.Context) error { return nil }) }()
	require.Eventually(t, func() bool { return q.Depth() == 1 }, time.Second, time.Millisecond)

	err := q.Do(context.Background(), func(context.Context) error { return nil })
	require.True(t, apierrors.HasCode(err, apierrors.CodeRetryLater))
	close(gate)
}

func TestUnlockQueueSkipsAbandonedJobs(t *testing.T) {
	q := newUnlockQueue(4, nil)
	defer q.Close()

	gate := make(chan struct{})
	started := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = q.Do(context.Background(), func(context.Context) error {
			close(started)
			<-gate
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	ran := false
	err := q.Do(ctx, func(context.Context) error {
		ran = true
		return nil
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	close(gate)
	<-done

	require.NoError(t, q.Do(context.Background(), func(context.Context) error { return nil }))
	require.False(t, ran)
}
