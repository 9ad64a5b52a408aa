package report

import (
	"fmt"
	"math"
	"strings"

	"ChartFeed/internal/calculator"
	"ChartFeed/internal/model"
)

// FormatPopup formats the crosshair popup for one row: its price in both
// currencies and its volumes.
func FormatPopup(row model.OHLCVRow, asset model.Asset, display model.Currency) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s\n", row.DateLabel))
	usd, btc, hasBTC := calculator.DualPrice(row, asset, display)
	b.WriteString(fmt.Sprintf("USD: %s\n", formatPrice(usd, model.USD)))
	if hasBTC {
		b.WriteString(fmt.Sprintf("BTC: %s\n", formatPrice(btc, model.BTC)))
	}
	b.WriteString(fmt.Sprintf("Volume: %s\n", formatAmount(row.Volume)))
	if row.Volume24 > 0 {
		b.WriteString(fmt.Sprintf("Volume 24h: %s\n", formatAmount(row.Volume24)))
	}
	return b.String()
}

// FormatLegend formats the chart legend: ticker and current rate.
func FormatLegend(asset model.Asset, display model.Currency) string {
	return fmt.Sprintf("%s %s %s", asset.TickerSymbol, formatPrice(calculator.LegendRate(asset, display), display), display)
}

// FormatSeriesSummary describes a loaded series in a few lines.
func FormatSeriesSummary(state model.SeriesState, asset model.Asset, display model.Currency, p model.Period) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s | %s | %s\n", asset.TickerSymbol, display, p.Title))

	switch {
	case state.Loading:
		b.WriteString("loading...\n")
		return b.String()
	case state.Empty || len(state.Rows) == 0:
		b.WriteString("no data\n")
		return b.String()
	}

	first, last := state.Rows[0], state.Rows[len(state.Rows)-1]
	high, low := math.Inf(-1), math.Inf(1)
	for _, r := range state.Rows {
		high = math.Max(high, r.High)
		low = math.Min(low, r.Low)
	}
	b.WriteString(fmt.Sprintf("rows: %d (%s .. %s)\n", len(state.Rows), first.DateLabel, last.DateLabel))
	b.WriteString(fmt.Sprintf("last: %s\n", formatPrice(last.Close, display)))
	b.WriteString(fmt.Sprintf("range: %s - %s\n", formatPrice(low, display), formatPrice(high, display)))
	if first.Close > 0 {
		b.WriteString(fmt.Sprintf("change: %+.2f%%\n", (last.Close-first.Close)/first.Close*100))
	}
	return b.String()
}

func formatPrice(v float64, c model.Currency) string {
	if !calculator.Finite(v) {
		return "-"
	}
	if c == model.BTC {
		return fmt.Sprintf("%.8f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

func formatAmount(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.2fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.2fK", v/1e3)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
