package collector

import (
	"context"
	"errors"

	"github.com/jaymes17/catalyst-chart/internal/model"
)

// ErrNoData is returned when the upstream has no history for a symbol.
var ErrNoData = errors.New("no price history")

// Fetcher defines the interface for fetching a price history with its events.
type Fetcher interface {
	FetchSeries(ctx context.Context, symbol string, rng model.Range) (*model.Series, error)
	Name() string
}
