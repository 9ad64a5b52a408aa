package realtime

import (
	"context"
	"errors"

	"ChartFeed/internal/model"
)

// ErrAlreadySubscribed is returned when Subscribe is called twice on a handle.
var ErrAlreadySubscribed = errors.New("feed already subscribed")

// TickFunc receives ticks one at a time, in arrival order.
type TickFunc func(model.Tick)

// Feed is a per-session realtime subscription handle.
type Feed interface {
	Subscribe(ctx context.Context, assetID string, onTick TickFunc) error
	Unsubscribe() error
}
