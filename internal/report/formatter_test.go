package report

import (
	"strings"
	"testing"
	"time"

	"ChartFeed/internal/model"
)

var (
	eth = model.Asset{ID: "ethereum", TickerSymbol: "ETH", Rate: 0.05, BTCUSDRate: 60000}
	btc = model.Asset{ID: model.BaseAssetID, TickerSymbol: "BTC", Rate: 1, BTCUSDRate: 60000}
)

func TestFormatPopup(t *testing.T) {
	at := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		row     model.OHLCVRow
		asset   model.Asset
		display model.Currency
		want    []string
		absent  []string
	}{
		{
			name:    "non-base in USD",
			row:     model.NewRow(at, 3000, 0.05, 3000, 1500, 2500000),
			asset:   eth,
			display: model.USD,
			want:    []string{"2024-05-01 08:00", "USD: 3000.00", "BTC: 0.05000000", "Volume: 1.50K", "Volume 24h: 2.50M"},
		},
		{
			name:    "base in USD has no BTC line",
			row:     model.NewRow(at, 60000, 1, 60000, 10, 0),
			asset:   btc,
			display: model.USD,
			want:    []string{"USD: 60000.00", "Volume: 10.00"},
			absent:  []string{"BTC:", "Volume 24h"},
		},
		{
			name:    "BTC display",
			row:     model.NewRow(at, 0.05, 0.05, 3000, 0, 0),
			asset:   eth,
			display: model.BTC,
			want:    []string{"USD: 3000.00", "BTC: 0.05000000"},
		},
		{
			name:    "missing rate",
			row:     model.NewRow(at, 0.05, 0.05, 3000, 0, 0),
			asset:   model.Asset{ID: "ethereum", TickerSymbol: "ETH"},
			display: model.BTC,
			want:    []string{"USD: -"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatPopup(tt.row, tt.asset, tt.display)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("popup missing %q:\n%s", w, got)
				}
			}
			for _, a := range tt.absent {
				if strings.Contains(got, a) {
					t.Errorf("popup should not contain %q:\n%s", a, got)
				}
			}
		})
	}
}

func TestFormatLegend(t *testing.T) {
	if got := FormatLegend(eth, model.USD); got != "ETH 3000.00 USD" {
		t.Errorf("legend = %q", got)
	}
	if got := FormatLegend(eth, model.BTC); got != "ETH 0.05000000 BTC" {
		t.Errorf("legend = %q", got)
	}
}

func TestFormatSeriesSummary(t *testing.T) {
	p := model.Period{Title: "1W"}
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	rows := []model.OHLCVRow{
		model.NewRow(at, 100, 0, 0, 0, 0),
		model.NewRow(at.Add(time.Hour), 150, 0, 0, 0, 0),
		model.NewRow(at.Add(2*time.Hour), 110, 0, 0, 0, 0),
	}

	got := FormatSeriesSummary(model.SeriesState{Rows: rows}, eth, model.USD, p)
	for _, w := range []string{"ETH | USD | 1W", "rows: 3", "last: 110.00", "range: 100.00 - 150.00", "change: +10.00%"} {
		if !strings.Contains(got, w) {
			t.Errorf("summary missing %q:\n%s", w, got)
		}
	}

	if got := FormatSeriesSummary(model.SeriesState{Loading: true}, eth, model.USD, p); !strings.Contains(got, "loading") {
		t.Errorf("loading summary = %q", got)
	}
	if got := FormatSeriesSummary(model.SeriesState{Empty: true}, eth, model.USD, p); !strings.Contains(got, "no data") {
		t.Errorf("empty summary = %q", got)
	}
}
