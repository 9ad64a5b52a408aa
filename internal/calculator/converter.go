package calculator

import (
	"math"

	"ChartFeed/internal/model"
)

// Convert turns a rate denominated in the base currency into the display
// currency. The base asset and a base-currency display are identities. A
// missing BTC/USD rate yields NaN; callers filter non-finite results.
func Convert(rateInBase float64, asset model.Asset, display model.Currency) float64 {
	if asset.IsBase() || display == model.BaseCurrency {
		return rateInBase
	}
	if !validRate(asset.BTCUSDRate) {
		return math.NaN()
	}
	return rateInBase * asset.BTCUSDRate
}

// ConvertUSD turns a USD rate into the display currency.
func ConvertUSD(rateUSD float64, asset model.Asset, display model.Currency) float64 {
	if display == model.USD {
		return rateUSD
	}
	if !validRate(asset.BTCUSDRate) {
		return math.NaN()
	}
	return rateUSD / asset.BTCUSDRate
}

// DualPrice returns a row's price in both currencies. hasBTC is false when
// the BTC figure should not be shown (the base asset quoted in USD).
func DualPrice(row model.OHLCVRow, asset model.Asset, display model.Currency) (usd, btc float64, hasBTC bool) {
	if display == model.BTC {
		if !validRate(asset.BTCUSDRate) {
			return math.NaN(), row.Low, true
		}
		return row.High * asset.BTCUSDRate, row.Low, true
	}
	if asset.IsBase() {
		return row.High, 0, false
	}
	return row.High, ConvertUSD(row.Low, asset, model.BTC), true
}

// LegendRate is the asset's current rate in the display currency.
func LegendRate(asset model.Asset, display model.Currency) float64 {
	return Convert(asset.Rate, asset, display)
}

// Finite reports whether v is neither NaN nor infinite.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func validRate(r float64) bool {
	return Finite(r) && r > 0
}
