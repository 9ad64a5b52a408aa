package series

import (
	"sort"

	"ChartFeed/internal/calculator"
	"ChartFeed/internal/model"
)

// Build turns historical points into chart rows sorted by instant. Volumes
// are converted with the same rate as prices. Points whose price cannot be
// converted are skipped. Same-instant points are kept as-is: the historical
// feed is expected to return one point per bucket.
func Build(points []model.RawPoint, days []model.RawDayVolume, asset model.Asset, display model.Currency) []model.OHLCVRow {
	rows := make([]model.OHLCVRow, 0, len(points))
	for _, p := range points {
		price := calculator.Convert(p.PriceBTC, asset, display)
		if !calculator.Finite(price) {
			continue
		}
		var vol24 float64
		if len(days) > 0 {
			vol24 = nonNegative(calculator.Convert(calculator.Volume24(days, p.Time), asset, display))
		}
		rows = append(rows, model.NewRow(
			p.Time,
			price,
			p.PriceBTC,
			p.PriceUSD,
			nonNegative(calculator.Convert(p.Volume, asset, display)),
			vol24,
		))
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Instant.Before(rows[j].Instant) })
	return rows
}

func nonNegative(v float64) float64 {
	if !calculator.Finite(v) || v < 0 {
		return 0
	}
	return v
}
