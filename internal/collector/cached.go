package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"ChartFeed/internal/cache"
	"ChartFeed/internal/model"
)

// Store is the key/value cache CachedFeed reads through.
type Store interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// CachedFeed serves historical and day-level data from a cache, falling
// back to the wrapped feed. Cache errors never fail a fetch.
type CachedFeed struct {
	Inner Feed
	Store Store
	TTL   time.Duration
}

// NewCachedFeed wraps inner with store.
func NewCachedFeed(inner Feed, store Store, ttl time.Duration) *CachedFeed {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedFeed{Inner: inner, Store: store, TTL: ttl}
}

func (c *CachedFeed) Name() string { return "cached-" + c.Inner.Name() }

func candlesKey(assetID, periodValue string) string {
	return fmt.Sprintf("candles:%s:%s", assetID, periodValue)
}

func (c *CachedFeed) FetchCandles(ctx context.Context, periodValue, assetID string) ([]model.RawPoint, error) {
	key := candlesKey(assetID, periodValue)
	var points []model.RawPoint
	if c.load(ctx, key, &points) {
		return points, nil
	}
	points, err := c.Inner.FetchCandles(ctx, periodValue, assetID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, points)
	return points, nil
}

func (c *CachedFeed) FetchDayCandles(ctx context.Context, start, end time.Time, assetID string) ([]model.RawDayVolume, error) {
	key := fmt.Sprintf("days:%s:%d:%d", assetID, start.Unix(), end.Unix())
	var days []model.RawDayVolume
	if c.load(ctx, key, &days) {
		return days, nil
	}
	days, err := c.Inner.FetchDayCandles(ctx, start, end, assetID)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, days)
	return days, nil
}

// Invalidate drops the cached candles for one asset and period so the next
// fetch reaches the wrapped feed.
func (c *CachedFeed) Invalidate(ctx context.Context, assetID, periodValue string) error {
	key := candlesKey(assetID, periodValue)
	if err := c.Store.Delete(ctx, key); err != nil {
		return fmt.Errorf("invalidate %s: %w", key, err)
	}
	return nil
}

func (c *CachedFeed) load(ctx context.Context, key string, dest interface{}) bool {
	err := c.Store.Get(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		log.Printf("[WARN] cache get %s: %v", key, err)
	}
	return false
}

func (c *CachedFeed) store(ctx context.Context, key string, value interface{}) {
	if err := c.Store.Set(ctx, key, value, c.TTL); err != nil {
		log.Printf("[WARN] cache set %s: %v", key, err)
	}
}
