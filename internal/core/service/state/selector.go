// Package state selects the factory state source for each analysis call.
package state

import (
	"context"
	"log/slog"

	"dysonfactory/internal/core/domain"
	"dysonfactory/internal/core/port"
)

// Selector prefers the live feed while it is connected and falls back to the
// save archive otherwise. The choice is made once at the top of each call;
// an error from the chosen source surfaces unchanged rather than triggering
// a mid-call switch.
type Selector struct {
	feed    port.LiveFeed
	archive port.ArchiveReader
}

func NewSelector(feed port.LiveFeed, archive port.ArchiveReader) *Selector {
	return &Selector{feed: feed, archive: archive}
}

// CurrentState returns the freshest factory state from the chosen source.
func (s *Selector) CurrentState(ctx context.Context) (*domain.FactoryState, error) {
	if s.feed != nil && s.feed.IsConnected() {
		slog.Debug("Using live factory feed")
		return s.feed.CurrentState(ctx)
	}
	slog.Debug("Using save archive, feed not connected")
	return s.archive.Latest(ctx)
}
