package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"ChartFeed/internal/model"
)

// APIFetcher implements Feed against the asset candles REST API.
type APIFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewAPIFetcher creates a fetcher with optional proxy support.
func NewAPIFetcher(baseURL, apiKey, proxyURL string, timeout time.Duration) *APIFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &APIFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (f *APIFetcher) Name() string { return "api" }

// candlePoint is the wire shape of one historical bucket.
type candlePoint struct {
	Time     time.Time `json:"time"`
	PriceBTC float64   `json:"priceBtc"`
	PriceUSD float64   `json:"priceUsd"`
	Volume   float64   `json:"volume"`
}

type dayCandle struct {
	Time   time.Time `json:"time"`
	Volume float64   `json:"volume"`
}

func (f *APIFetcher) FetchCandles(ctx context.Context, periodValue, assetID string) ([]model.RawPoint, error) {
	q := url.Values{}
	q.Set("period", periodValue)
	endpoint := fmt.Sprintf("%s/api/v1/assets/%s/candles?%s", f.BaseURL, url.PathEscape(assetID), q.Encode())

	var raw []candlePoint
	if err := f.getResult(ctx, endpoint, &raw); err != nil {
		return nil, fmt.Errorf("fetch candles: %w", err)
	}
	points := make([]model.RawPoint, len(raw))
	for i, c := range raw {
		points[i] = model.RawPoint{Time: c.Time.UTC(), PriceBTC: c.PriceBTC, PriceUSD: c.PriceUSD, Volume: c.Volume}
	}
	return points, nil
}

func (f *APIFetcher) FetchDayCandles(ctx context.Context, start, end time.Time, assetID string) ([]model.RawDayVolume, error) {
	q := url.Values{}
	q.Set("from", start.UTC().Format(time.RFC3339))
	q.Set("to", end.UTC().Format(time.RFC3339))
	endpoint := fmt.Sprintf("%s/api/v1/assets/%s/candles/day?%s", f.BaseURL, url.PathEscape(assetID), q.Encode())

	var raw []dayCandle
	if err := f.getResult(ctx, endpoint, &raw); err != nil {
		return nil, fmt.Errorf("fetch day candles: %w", err)
	}
	days := make([]model.RawDayVolume, len(raw))
	for i, d := range raw {
		days[i] = model.RawDayVolume{Time: d.Time.UTC(), Volume: d.Volume}
	}
	return days, nil
}

// getResult decodes the "result" member of a JSON envelope into dst.
func (f *APIFetcher) getResult(ctx context.Context, endpoint string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if len(envelope.Result) == 0 {
		return fmt.Errorf("decode: missing result")
	}
	if err := json.Unmarshal(envelope.Result, dst); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}
