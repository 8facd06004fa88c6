package archive

import (
	"context"
	"fmt"

	"dysonfactory/internal/core/domain"
)

// UnimplementedDecoder is the default SaveDecoder until a real save format
// decoder is wired in. It always fails: surfacing the missing decoder as a
// decode error keeps it distinguishable from a factory that produces
// nothing.
type UnimplementedDecoder struct{}

func (UnimplementedDecoder) Decode(ctx context.Context, path string) (*domain.RawFrame, error) {
	return nil, fmt.Errorf("%w: no decoder configured for %s files", domain.ErrDecodeFailed, SaveExtension)
}
