package realtime

import (
	"context"
	"sync"

	"ChartFeed/internal/model"
)

// ChanFeed delivers ticks pushed through Send. It is used for replays and
// tests where no network stream exists.
type ChanFeed struct {
	ticks chan model.Tick

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewChanFeed creates a feed with the given buffer size.
func NewChanFeed(buffer int) *ChanFeed {
	return &ChanFeed{ticks: make(chan model.Tick, buffer)}
}

// Send queues a tick. It blocks when the buffer is full.
func (f *ChanFeed) Send(t model.Tick) {
	f.ticks <- t
}

func (f *ChanFeed) Subscribe(ctx context.Context, _ string, onTick TickFunc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancel != nil {
		return ErrAlreadySubscribed
	}
	ctx, cancel := context.WithCancel(ctx)
	f.cancel = cancel

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case t := <-f.ticks:
				onTick(t)
			}
		}
	}()
	return nil
}

func (f *ChanFeed) Unsubscribe() error {
	f.mu.Lock()
	cancel := f.cancel
	f.cancel = nil
	f.mu.Unlock()
	if cancel != nil {
		cancel()
		f.wg.Wait()
	}
	return nil
}
