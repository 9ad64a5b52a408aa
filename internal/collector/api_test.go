package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestAPIFetcher_FetchCandles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/assets/ethereum/candles" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("period"); got != "30d" {
			t.Errorf("period = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("authorization = %q", got)
		}
		w.Write([]byte(`{"result":[
			{"time":"2024-01-02T00:00:00Z","priceBtc":0.05,"priceUsd":2100,"volume":12},
			{"time":"2024-01-01T00:00:00Z","priceBtc":0.04,"priceUsd":2000,"volume":10}
		]}`))
	}))
	defer srv.Close()

	f := NewAPIFetcher(srv.URL, "secret", "", time.Second)
	points, err := f.FetchCandles(context.Background(), "30d", "ethereum")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	// feed order is preserved; the series builder sorts
	if points[0].PriceBTC != 0.05 || points[1].Volume != 10 {
		t.Errorf("unexpected points %+v", points)
	}
	if !points[1].Time.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected time %v", points[1].Time)
	}
}

func TestAPIFetcher_FetchDayCandles(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(48 * time.Hour)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/candles/day") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("from"); got != "2024-01-01T00:00:00Z" {
			t.Errorf("from = %q", got)
		}
		w.Write([]byte(`{"result":[{"time":"2024-01-01T00:00:00Z","volume":500}]}`))
	}))
	defer srv.Close()

	days, err := NewAPIFetcher(srv.URL, "", "", 0).FetchDayCandles(context.Background(), start, end, "ethereum")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 1 || days[0].Volume != 500 {
		t.Errorf("unexpected days %+v", days)
	}
}

func TestAPIFetcher_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"bad status", http.StatusBadGateway, "upstream down"},
		{"bad json", http.StatusOK, "{not json"},
		{"missing result", http.StatusOK, `{"data":[]}`},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			w.Write([]byte(tt.body))
		}))
		_, err := NewAPIFetcher(srv.URL, "", "", time.Second).FetchCandles(context.Background(), "1d", "x")
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
		srv.Close()
	}
}
