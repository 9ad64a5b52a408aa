package series

import (
	"math"
	"reflect"
	"testing"
	"time"

	"ChartFeed/internal/model"
)

var (
	baseAsset = model.Asset{ID: model.BaseAssetID, TickerSymbol: "BTC", BTCUSDRate: 60000, Volume24h: 42}
	altAsset  = model.Asset{ID: "ethereum", TickerSymbol: "ETH", BTCUSDRate: 3, Volume24h: 99}
)

func ts(sec int64) time.Time { return time.Unix(sec, 0).UTC() }

func TestBuild_SinglePointBaseAsset(t *testing.T) {
	points := []model.RawPoint{{Time: ts(100), PriceBTC: 1, PriceUSD: 2, Volume: 5}}
	rows := Build(points, nil, baseAsset, model.BaseCurrency)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	r := rows[0]
	if r.Open != 1 || r.Close != 1 || r.High != 1 || r.Low != 1 {
		t.Errorf("expected OHLC all 1, got %+v", r)
	}
	if r.Volume24 != 0 {
		t.Errorf("expected volume24 0, got %v", r.Volume24)
	}
	if r.Volume != 5 {
		t.Errorf("expected volume 5, got %v", r.Volume)
	}
	if r.DateLabel != "1970-01-01 00:01" {
		t.Errorf("unexpected date label %q", r.DateLabel)
	}
}

func TestBuild_NonBaseAssetConverts(t *testing.T) {
	points := []model.RawPoint{{Time: ts(100), PriceBTC: 1, PriceUSD: 2, Volume: 5}}
	rows := Build(points, nil, altAsset, model.USD)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	r := rows[0]
	if r.Open != 3 || r.Close != 3 || r.High != 3 || r.Low != 3 {
		t.Errorf("expected OHLC all 3, got %+v", r)
	}
	if r.PriceBTC != 1 || r.PriceUSD != 2 {
		t.Errorf("raw prices not carried: %+v", r)
	}
}

func TestBuild_SortsAscending(t *testing.T) {
	points := []model.RawPoint{
		{Time: ts(300), PriceBTC: 3},
		{Time: ts(100), PriceBTC: 1},
		{Time: ts(500), PriceBTC: 5},
		{Time: ts(200), PriceBTC: 2},
	}
	rows := Build(points, nil, baseAsset, model.BTC)
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	for i := 0; i+1 < len(rows); i++ {
		if !rows[i].Instant.Before(rows[i+1].Instant) {
			t.Errorf("rows %d and %d out of order: %v >= %v", i, i+1, rows[i].Instant, rows[i+1].Instant)
		}
		if rows[i].Close != float64(rows[i].Instant.Unix()/100) {
			t.Errorf("row %d lost its price: %+v", i, rows[i])
		}
	}
}

func TestBuild_Volume24FromDayBuckets(t *testing.T) {
	day := 24 * time.Hour
	at := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	points := []model.RawPoint{
		{Time: at, PriceBTC: 1},
		{Time: at.Add(day), PriceBTC: 1},
	}
	days := []model.RawDayVolume{
		{Time: at.Add(-day), Volume: 1},
		{Time: at, Volume: 10},
		{Time: at.Add(day), Volume: 100},
	}
	rows := Build(points, days, altAsset, model.BTC)
	if rows[0].Volume24 != 10 {
		t.Errorf("first row volume24 = %v, want 10", rows[0].Volume24)
	}
	if rows[1].Volume24 != 100 {
		t.Errorf("second row volume24 = %v, want 100", rows[1].Volume24)
	}

	usd := Build(points, days, altAsset, model.USD)
	if usd[0].Volume24 != 30 {
		t.Errorf("converted volume24 = %v, want 30", usd[0].Volume24)
	}
}

func TestBuild_SkipsUnconvertiblePoints(t *testing.T) {
	noRate := altAsset
	noRate.BTCUSDRate = 0
	rows := Build([]model.RawPoint{{Time: ts(1), PriceBTC: 1}}, nil, noRate, model.USD)
	if len(rows) != 0 {
		t.Fatalf("expected unconvertible point to be skipped, got %d rows", len(rows))
	}
	rows = Build([]model.RawPoint{{Time: ts(1), PriceBTC: math.NaN()}}, nil, baseAsset, model.BTC)
	if len(rows) != 0 {
		t.Fatalf("expected NaN price to be skipped, got %d rows", len(rows))
	}
}

func TestBuild_Idempotent(t *testing.T) {
	points := []model.RawPoint{
		{Time: ts(300), PriceBTC: 3, Volume: 1},
		{Time: ts(100), PriceBTC: 1, Volume: 2},
	}
	days := []model.RawDayVolume{{Time: ts(100), Volume: 4}}
	a := Build(points, days, altAsset, model.USD)
	b := Build(points, days, altAsset, model.USD)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Build not deterministic:\n%+v\n%+v", a, b)
	}
	if !points[0].Time.Equal(ts(300)) {
		t.Error("Build must not reorder its input")
	}
}

func TestBuild_Empty(t *testing.T) {
	rows := Build(nil, nil, baseAsset, model.USD)
	if rows == nil || len(rows) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", rows)
	}
}
