package preset

import (
	"fmt"
	"log"

	"ChartFeed/internal/calculator"
	"ChartFeed/internal/model"
)

// Preset tags.
const (
	PriceVol    = "price-vol"
	PriceVolMin = "price-vol-min"
	PriceOnly   = "price-only"
)

// DefaultTag is used when no preset is configured.
const DefaultTag = PriceVol

// SMAPeriod is the window of the moving-average overlay.
const SMAPeriod = 20

// OverlayFunc derives a study from a freshly loaded series. It may return nil.
type OverlayFunc func(rows []model.OHLCVRow) *model.Overlay

// Bundle is the configuration a preset tag selects.
type Bundle struct {
	Tag         string
	Preferences model.Preferences
	NewOverlay  OverlayFunc
}

var bundles = map[string]Bundle{
	PriceVol: {
		Tag: PriceVol,
		Preferences: model.Preferences{
			ShowVolume: true, ShowFooter: true, AllowZoom: true,
			AllowScroll: true, MaintainSpan: true, Magnet: true,
		},
		NewOverlay: volumeOverlay,
	},
	PriceVolMin: {
		Tag:         PriceVolMin,
		Preferences: model.Preferences{ShowVolume: true, MaintainSpan: true},
		NewOverlay:  smaOverlay,
	},
	PriceOnly: {
		Tag:         PriceOnly,
		Preferences: model.Preferences{ShowFooter: true, AllowZoom: true, AllowScroll: true},
	},
}

// Lookup returns the bundle registered for tag.
func Lookup(tag string) (Bundle, error) {
	b, ok := bundles[tag]
	if !ok {
		return Bundle{}, fmt.Errorf("unknown preset %q", tag)
	}
	return b, nil
}

// Tags lists the registered preset tags.
func Tags() []string {
	return []string{PriceVol, PriceVolMin, PriceOnly}
}

func volumeOverlay(rows []model.OHLCVRow) *model.Overlay {
	return &model.Overlay{Name: "volume", Values: calculator.ExtractVolumes(rows)}
}

func smaOverlay(rows []model.OHLCVRow) *model.Overlay {
	vals, err := calculator.SMASeries(rows, SMAPeriod)
	if err != nil {
		log.Printf("[WARN] sma overlay: %v", err)
		return nil
	}
	return &model.Overlay{Name: fmt.Sprintf("sma%d", SMAPeriod), Values: vals}
}
