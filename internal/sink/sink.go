package sink

import (
	"context"

	"fraudstream/internal/domain"
)

// Sink consumes the merged outcome stream. Implementations must accept
// both variants and distinguish them themselves.
type Sink interface {
	Write(ctx context.Context, outcome domain.Outcome) error
	Close() error
}
