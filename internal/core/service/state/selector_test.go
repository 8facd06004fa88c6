package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dysonfactory/internal/core/domain"
)

type fakeFeed struct {
	connected bool
	state     *domain.FactoryState
	err       error
}

func (f *fakeFeed) Connect(ctx context.Context) error { return nil }
func (f *fakeFeed) IsConnected() bool                 { return f.connected }
func (f *fakeFeed) Latest() *domain.FactoryState      { return f.state }
func (f *fakeFeed) Close()                            {}

func (f *fakeFeed) CurrentState(ctx context.Context) (*domain.FactoryState, error) {
	return f.state, f.err
}

type fakeArchive struct {
	state *domain.FactoryState
	err   error
}

func (f *fakeArchive) Latest(ctx context.Context) (*domain.FactoryState, error) {
	return f.state, f.err
}

func (f *fakeArchive) ParseFile(ctx context.Context, path string) (*domain.FactoryState, error) {
	return f.state, f.err
}

func stateAt(ts int64) *domain.FactoryState {
	return &domain.FactoryState{Timestamp: time.Unix(ts, 0), Planets: map[int]*domain.PlanetState{}}
}

func TestSelectorCurrentState(t *testing.T) {
	ctx := context.Background()

	t.Run("should prefer the live feed while connected", func(t *testing.T) {
		feedState := stateAt(100)
		selector := NewSelector(
			&fakeFeed{connected: true, state: feedState},
			&fakeArchive{state: stateAt(50)},
		)

		got, err := selector.CurrentState(ctx)
		require.NoError(t, err)
		assert.Same(t, feedState, got)
	})

	t.Run("should fall back to the archive when disconnected", func(t *testing.T) {
		archiveState := stateAt(50)
		selector := NewSelector(
			&fakeFeed{connected: false},
			&fakeArchive{state: archiveState},
		)

		got, err := selector.CurrentState(ctx)
		require.NoError(t, err)
		assert.Same(t, archiveState, got)
	})

	t.Run("should surface the chosen source error unchanged", func(t *testing.T) {
		selector := NewSelector(
			&fakeFeed{connected: false},
			&fakeArchive{err: domain.ErrNoSnapshotsFound},
		)

		_, err := selector.CurrentState(ctx)
		assert.ErrorIs(t, err, domain.ErrNoSnapshotsFound)
	})

	t.Run("should not switch mid call when the feed errors", func(t *testing.T) {
		selector := NewSelector(
			&fakeFeed{connected: true, err: domain.ErrTimeout},
			&fakeArchive{state: stateAt(50)},
		)

		_, err := selector.CurrentState(ctx)
		assert.ErrorIs(t, err, domain.ErrTimeout)
	})

	t.Run("should use the archive when no feed is configured", func(t *testing.T) {
		archiveState := stateAt(50)
		selector := NewSelector(nil, &fakeArchive{state: archiveState})

		got, err := selector.CurrentState(ctx)
		require.NoError(t, err)
		assert.Same(t, archiveState, got)
	})
}
