package port

import (
	"context"

	"dysonfactory/internal/core/domain"
)

// LiveFeed maintains a long-lived connection to the in-game telemetry plugin
// and exposes the latest known factory state.
type LiveFeed interface {
	// Connect opens the feed connection and starts the receive loop. A
	// failure is not fatal; callers fall back to the save archive.
	Connect(ctx context.Context) error

	// IsConnected reports whether the connection is open and at least one
	// state has been received.
	IsConnected() bool

	// CurrentState returns the latest known state, attempting one connect
	// if disconnected and waiting up to the poll budget for a first frame.
	CurrentState(ctx context.Context) (*domain.FactoryState, error)

	// Latest returns the last delivered state without connecting or
	// waiting; nil when no frame has ever arrived.
	Latest() *domain.FactoryState

	// Close cancels the receive loop and closes the connection. Idempotent.
	Close()
}

// ArchiveReader locates and decodes archived save snapshots.
type ArchiveReader interface {
	// Latest decodes the most recently modified save file.
	Latest(ctx context.Context) (*domain.FactoryState, error)

	// ParseFile decodes a specific save file.
	ParseFile(ctx context.Context, path string) (*domain.FactoryState, error)
}

// SaveDecoder decodes one save file into the raw frame schema. The
// proprietary byte layout lives behind this port.
type SaveDecoder interface {
	Decode(ctx context.Context, path string) (*domain.RawFrame, error)
}

// StateSource yields the current factory state from the best available
// source.
type StateSource interface {
	CurrentState(ctx context.Context) (*domain.FactoryState, error)
}
