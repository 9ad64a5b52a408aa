package calculator

import (
	"errors"
	"math"

	"ChartFeed/internal/model"
)

// CalculateSMA computes the simple moving average of the last period prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// SMASeries returns the rolling SMA for every row. Rows before the first full
// window are NaN so the overlay keeps one value per row.
func SMASeries(rows []model.OHLCVRow, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	closes := ExtractCloses(rows)
	out := make([]float64, len(closes))
	for i := range closes {
		if i+1 < period {
			out[i] = math.NaN()
			continue
		}
		v, err := CalculateSMA(closes[:i+1], period)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ExtractCloses returns the close of every row.
func ExtractCloses(rows []model.OHLCVRow) []float64 {
	closes := make([]float64, len(rows))
	for i, r := range rows {
		closes[i] = r.Close
	}
	return closes
}

// ExtractVolumes returns the volume of every row.
func ExtractVolumes(rows []model.OHLCVRow) []float64 {
	vols := make([]float64, len(rows))
	for i, r := range rows {
		vols[i] = r.Volume
	}
	return vols
}
