package calculator

import (
	"math"
	"testing"
	"time"

	"ChartFeed/internal/model"
)

func rowsWithCloses(closes ...float64) []model.OHLCVRow {
	rows := make([]model.OHLCVRow, len(closes))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		rows[i] = model.NewRow(base.Add(time.Duration(i)*time.Hour), c, c, c, float64(i), 0)
	}
	return rows
}

func TestCalculateSMA(t *testing.T) {
	got, err := CalculateSMA([]float64{1, 2, 3, 4}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 3.5 {
		t.Errorf("SMA = %v, want 3.5", got)
	}
	if _, err := CalculateSMA([]float64{1}, 2); err == nil {
		t.Error("expected error for insufficient data")
	}
	if _, err := CalculateSMA([]float64{1}, 0); err == nil {
		t.Error("expected error for zero period")
	}
}

func TestSMASeries(t *testing.T) {
	out, err := SMASeries(rowsWithCloses(2, 4, 6, 8), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 4 {
		t.Fatalf("expected 4 values, got %d", len(out))
	}
	if !math.IsNaN(out[0]) || !math.IsNaN(out[1]) {
		t.Errorf("expected NaN before full window, got %v", out[:2])
	}
	if out[2] != 4 || out[3] != 6 {
		t.Errorf("SMA values = %v, want [_, _, 4, 6]", out)
	}
}

func TestExtractVolumes(t *testing.T) {
	vols := ExtractVolumes(rowsWithCloses(1, 1, 1))
	for i, v := range vols {
		if v != float64(i) {
			t.Errorf("volume[%d] = %v, want %d", i, v, i)
		}
	}
}
