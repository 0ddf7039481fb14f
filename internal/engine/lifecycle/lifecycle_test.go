package lifecycle_test

import (
	"context"
	"errors"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/estatedesk/internal/core/domain"
	"go.trai.ch/estatedesk/internal/engine/lifecycle"
)

// blockingFetch returns a fetch that waits for release and then applies value to *dst.
func blockingFetch(release <-chan struct{}, dst *string, value string) lifecycle.Fetch {
	return func(ctx context.Context) (lifecycle.Apply, error) {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, errors.Join(domain.ErrCancelled, ctx.Err())
		}
		return func() { *dst = value }, nil
	}
}

func TestManager_AppliesCurrentGeneration(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := lifecycle.NewManager()
		var state string
		var begun []uint64

		req := m.Issue(context.Background(), lifecycle.Task{
			Begin: func(gen uint64) { begun = append(begun, gen) },
			Fetch: func(context.Context) (lifecycle.Apply, error) {
				return func() { state = "loaded" }, nil
			},
		})

		outcome, err := req.Wait(context.Background())
		require.NoError(t, err)
		assert.Equal(t, lifecycle.OutcomeApplied, outcome)
		assert.Equal(t, "loaded", state)
		assert.Equal(t, []uint64{1}, begun)
		assert.Equal(t, uint64(1), req.Generation())
	})
}

func TestManager_DiscardsSupersededResult(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := lifecycle.NewManager()
		var state string
		slow := make(chan struct{})
		fast := make(chan struct{})

		g1 := m.Issue(context.Background(), lifecycle.Task{Fetch: blockingFetch(slow, &state, "first")})
		g2 := m.Issue(context.Background(), lifecycle.Task{Fetch: blockingFetch(fast, &state, "second")})

		close(fast)
		outcome, _ := g2.Wait(context.Background())
		assert.Equal(t, lifecycle.OutcomeApplied, outcome)

		close(slow)
		outcome, _ = g1.Wait(context.Background())
		assert.Equal(t, lifecycle.OutcomeStale, outcome)
		assert.Equal(t, "second", state, "a late response must not overwrite the newer generation")
		assert.Equal(t, uint64(2), m.Current())
	})
}

func TestManager_FailOnlyForCurrentGeneration(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := lifecycle.NewManager()
		boom := errors.New("backend down")
		var failures []uint64
		release := make(chan struct{})

		failing := lifecycle.Task{
			Fetch: func(ctx context.Context) (lifecycle.Apply, error) {
				<-release
				return nil, boom
			},
			Fail: func(gen uint64, err error) {
				assert.ErrorIs(t, err, boom)
				failures = append(failures, gen)
			},
		}

		old := m.Issue(context.Background(), failing)
		current := m.Issue(context.Background(), failing)
		close(release)

		oldOutcome, oldErr := old.Wait(context.Background())
		curOutcome, curErr := current.Wait(context.Background())

		assert.Equal(t, lifecycle.OutcomeStale, oldOutcome)
		assert.ErrorIs(t, oldErr, boom)
		assert.Equal(t, lifecycle.OutcomeFailed, curOutcome)
		assert.ErrorIs(t, curErr, boom)
		assert.Equal(t, []uint64{2}, failures)
	})
}

func TestManager_CancelIsSilent(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := lifecycle.NewManager()
		var state string
		failed := false

		req := m.Issue(context.Background(), lifecycle.Task{
			Fetch: blockingFetch(make(chan struct{}), &state, "never"),
			Fail:  func(uint64, error) { failed = true },
		})
		synctest.Wait()
		req.Cancel()

		outcome, err := req.Wait(context.Background())
		require.NoError(t, err)
		assert.Equal(t, lifecycle.OutcomeCancelled, outcome)
		assert.False(t, failed)
		assert.Empty(t, state)
	})
}

func TestManager_CloseDiscardsLateCompletion(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := lifecycle.NewManager()
		var state string
		release := make(chan struct{})

		// The fetch ignores its context, simulating a response already on the wire.
		req := m.Issue(context.Background(), lifecycle.Task{
			Fetch: func(context.Context) (lifecycle.Apply, error) {
				<-release
				return func() { state = "after teardown" }, nil
			},
		})
		synctest.Wait()

		m.Close()
		close(release)

		outcome, _ := req.Wait(context.Background())
		assert.Equal(t, lifecycle.OutcomeCancelled, outcome)
		assert.Empty(t, state)
		assert.True(t, m.Closed())
	})
}

func TestManager_IssueAfterClose(t *testing.T) {
	m := lifecycle.NewManager()
	m.Close()

	called := false
	req := m.Issue(context.Background(), lifecycle.Task{
		Begin: func(uint64) { called = true },
		Fetch: func(context.Context) (lifecycle.Apply, error) {
			called = true
			return nil, nil
		},
	})

	select {
	case <-req.Done():
	default:
		t.Fatal("request issued after close must be settled immediately")
	}
	outcome, err := req.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, lifecycle.OutcomeCancelled, outcome)
	assert.False(t, called)
	assert.Zero(t, m.Current())
}

func TestManager_ParentContextCancellation(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := lifecycle.NewManager()
		var state string
		ctx, cancel := context.WithCancel(context.Background())

		req := m.Issue(ctx, lifecycle.Task{Fetch: blockingFetch(make(chan struct{}), &state, "x")})
		synctest.Wait()
		cancel()

		outcome, _ := req.Wait(context.Background())
		assert.Equal(t, lifecycle.OutcomeCancelled, outcome)
	})
}

func TestRequest_WaitHonoursContext(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := lifecycle.NewManager()
		var state string
		req := m.Issue(context.Background(), lifecycle.Task{Fetch: blockingFetch(make(chan struct{}), &state, "x")})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		outcome, err := req.Wait(ctx)
		assert.Equal(t, lifecycle.OutcomePending, outcome)
		require.ErrorIs(t, err, context.Canceled)

		req.Cancel()
		<-req.Done()
	})
}

func TestManager_SettledSeesEveryOutcome(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		m := lifecycle.NewManager()
		var state string
		settled := map[uint64]lifecycle.Outcome{}
		record := func(gen uint64, o lifecycle.Outcome) { settled[gen] = o }

		release := make(chan struct{})
		first := m.Issue(context.Background(), lifecycle.Task{
			Fetch:   blockingFetch(release, &state, "old"),
			Settled: record,
		})
		second := m.Issue(context.Background(), lifecycle.Task{
			Fetch:   blockingFetch(release, &state, "new"),
			Settled: record,
		})
		close(release)

		<-first.Done()
		<-second.Done()
		assert.Equal(t, map[uint64]lifecycle.Outcome{
			1: lifecycle.OutcomeStale,
			2: lifecycle.OutcomeApplied,
		}, settled)
		assert.Equal(t, "new", state)
	})
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "stale", lifecycle.OutcomeStale.String())
	assert.Equal(t, "cancelled", lifecycle.OutcomeCancelled.String())
}
