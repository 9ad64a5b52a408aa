package realtime

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"ChartFeed/internal/model"
)

const (
	pingInterval  = 20 * time.Second
	maxRetryDelay = 60 * time.Second
)

// subscribeMessage asks the server to stream ticks for one asset.
type subscribeMessage struct {
	Type  string `json:"type"`
	Asset string `json:"asset"`
}

// tickMessage is the wire envelope of one tick.
type tickMessage struct {
	Type  string     `json:"type"`
	Asset string     `json:"asset"`
	Data  model.Tick `json:"data"`
}

// WSFeed streams ticks over a websocket and reconnects with exponential
// backoff until Unsubscribe is called.
type WSFeed struct {
	URL        string
	RetryDelay time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWSFeed creates an idle feed handle for url.
func NewWSFeed(url string) *WSFeed {
	return &WSFeed{URL: url, RetryDelay: 2 * time.Second}
}

// Subscribe starts streaming ticks for assetID. onTick is called from a
// single goroutine.
func (f *WSFeed) Subscribe(ctx context.Context, assetID string, onTick TickFunc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancel != nil {
		return ErrAlreadySubscribed
	}
	ctx, cancel := context.WithCancel(ctx)
	f.cancel = cancel

	f.wg.Add(1)
	go f.connectLoop(ctx, assetID, onTick)
	return nil
}

// Unsubscribe stops the stream and waits for the reader to exit.
func (f *WSFeed) Unsubscribe() error {
	f.mu.Lock()
	cancel := f.cancel
	f.cancel = nil
	f.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	f.wg.Wait()
	return nil
}

func (f *WSFeed) connectLoop(ctx context.Context, assetID string, onTick TickFunc) {
	defer f.wg.Done()

	delay := f.RetryDelay
	if delay <= 0 {
		delay = 2 * time.Second
	}
	for {
		err := f.stream(ctx, assetID, onTick)
		if ctx.Err() != nil {
			return
		}
		log.Printf("[WARN] realtime %s: %v, reconnecting in %v", assetID, err, delay)
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay *= 2
		if delay > maxRetryDelay {
			delay = maxRetryDelay
		}
	}
}

func (f *WSFeed) stream(ctx context.Context, assetID string, onTick TickFunc) error {
	conn, _, err := websocket.Dial(ctx, f.URL, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.CloseNow()

	if err := wsjson.Write(ctx, conn, subscribeMessage{Type: "subscribe", Asset: assetID}); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	log.Printf("[INFO] realtime subscribed to %s", assetID)

	pingCtx, stopPing := context.WithCancel(ctx)
	defer stopPing()
	go keepAlive(pingCtx, conn)

	for {
		var msg tickMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if ctx.Err() != nil {
				conn.Close(websocket.StatusNormalClosure, "unsubscribe")
				return ctx.Err()
			}
			return fmt.Errorf("read: %w", err)
		}
		if msg.Type != "" && msg.Type != "tick" {
			continue
		}
		if msg.Asset != "" && msg.Asset != assetID {
			continue
		}
		onTick(msg.Data)
	}
}

func keepAlive(ctx context.Context, conn *websocket.Conn) {
	t := time.NewTicker(pingInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := conn.Ping(pctx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
