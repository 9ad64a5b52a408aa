package model

import "time"

// Currency is a display currency symbol.
type Currency string

const (
	USD Currency = "USD"
	BTC Currency = "BTC"
)

// BaseCurrency is the unit raw rates are denominated in.
const BaseCurrency = BTC

// BaseAssetID identifies the asset whose rates need no conversion.
const BaseAssetID = "bitcoin"

// DefaultCurrencies lists the selectable display currencies.
var DefaultCurrencies = []Currency{USD, BTC}

// Valid reports whether c is one of DefaultCurrencies.
func (c Currency) Valid() bool {
	for _, d := range DefaultCurrencies {
		if c == d {
			return true
		}
	}
	return false
}

// Asset identifies the charted instrument.
type Asset struct {
	ID           string  `json:"id" yaml:"id"`
	TickerSymbol string  `json:"tickerSymbol" yaml:"ticker_symbol"`
	Rate         float64 `json:"rate" yaml:"rate"`
	BTCUSDRate   float64 `json:"btcUsdRate" yaml:"btc_usd_rate"`
	Volume24h    float64 `json:"volume24h" yaml:"volume_24h"`
}

// IsBase reports whether the asset is the base asset.
func (a Asset) IsBase() bool { return a.ID == BaseAssetID }

// RawPoint is one historical bucket sample. Prices are point-sampled.
type RawPoint struct {
	Time     time.Time `json:"time"`
	PriceBTC float64   `json:"priceBtc"`
	PriceUSD float64   `json:"priceUsd"`
	Volume   float64   `json:"volume"`
}

// RawDayVolume is a day-bucketed volume sample.
type RawDayVolume struct {
	Time   time.Time `json:"time"`
	Volume float64   `json:"volume"`
}

// Tick is a realtime observation. Nil fields were absent on the wire.
type Tick struct {
	Time     *int64   `json:"time"` // unix seconds
	PriceBTC *float64 `json:"priceBtc"`
	PriceUSD *float64 `json:"priceUsd"`
	Volume   float64  `json:"volume"`
}

// Instant returns the tick time in UTC. ok is false when the time is missing.
func (t Tick) Instant() (time.Time, bool) {
	if t.Time == nil {
		return time.Time{}, false
	}
	return time.Unix(*t.Time, 0).UTC(), true
}

// OHLCVRow is a single chart row. Open, Close, High and Low always hold the
// same converted price.
type OHLCVRow struct {
	DateLabel string    `json:"date"`
	Instant   time.Time `json:"dt"`
	Open      float64   `json:"open"`
	Close     float64   `json:"close"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	PriceBTC  float64   `json:"priceBtc"`
	PriceUSD  float64   `json:"priceUsd"`
	Volume    float64   `json:"volume"`
	Volume24  float64   `json:"volume24"`
}

// DateLabelLayout formats OHLCVRow.DateLabel.
const DateLabelLayout = "2006-01-02 15:04"

// NewRow builds a single-sample row at instant t.
func NewRow(t time.Time, price, priceBTC, priceUSD, volume, volume24 float64) OHLCVRow {
	t = t.UTC()
	return OHLCVRow{
		DateLabel: t.Format(DateLabelLayout),
		Instant:   t,
		Open:      price,
		Close:     price,
		High:      price,
		Low:       price,
		PriceBTC:  priceBTC,
		PriceUSD:  priceUSD,
		Volume:    volume,
		Volume24:  volume24,
	}
}

// SeriesState is the per-session chart series.
type SeriesState struct {
	Rows    []OHLCVRow
	Loading bool
	Empty   bool
}

// Clone returns a copy that shares no row storage with s.
func (s SeriesState) Clone() SeriesState {
	out := s
	if s.Rows != nil {
		out.Rows = make([]OHLCVRow, len(s.Rows))
		copy(out.Rows, s.Rows)
	}
	return out
}

// Overlay is a study derived from the current series.
type Overlay struct {
	Name   string
	Values []float64
}

// Preferences are the chart engine options a preset sets.
type Preferences struct {
	ShowVolume   bool
	ShowFooter   bool
	AllowZoom    bool
	AllowScroll  bool
	MaintainSpan bool
	Magnet       bool
}
