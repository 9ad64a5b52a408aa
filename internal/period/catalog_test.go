package period

import (
	"testing"
	"time"
)

func TestLookup(t *testing.T) {
	for _, p := range Periods {
		got, ok := Lookup(p.Title)
		if !ok {
			t.Fatalf("Lookup(%q) not found", p.Title)
		}
		if got != p {
			t.Errorf("Lookup(%q) = %+v, want %+v", p.Title, got, p)
		}
		if got.BucketWidth() <= 0 {
			t.Errorf("%s: expected positive bucket width", p.Title)
		}
	}
	if _, ok := Lookup("5Y"); ok {
		t.Error("expected unknown title to be absent")
	}
	if Default().Title != Title1M {
		t.Errorf("default period = %q, want %q", Default().Title, Title1M)
	}
}

func TestWindowFor(t *testing.T) {
	now := time.Date(2024, 3, 15, 13, 45, 0, 0, time.UTC)
	tests := []struct {
		title    string
		ok       bool
		lookback time.Duration
	}{
		{Title1D, false, 0},
		{Title1W, false, 0},
		{Title1M, true, 30 * day},
		{Title3M, true, 90 * day},
		{Title1Y, true, 365 * day},
		{TitleAll, true, 5 * 365 * day},
		{"bogus", false, 0},
	}
	for _, tt := range tests {
		w, ok := WindowFor(tt.title, now)
		if ok != tt.ok {
			t.Errorf("%s: ok = %v, want %v", tt.title, ok, tt.ok)
			continue
		}
		if !ok {
			continue
		}
		wantEnd := time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC)
		if !w.End.Equal(wantEnd) {
			t.Errorf("%s: end = %v, want %v", tt.title, w.End, wantEnd)
		}
		if got := w.End.Sub(w.Start); got != tt.lookback+day {
			t.Errorf("%s: span = %v, want %v", tt.title, got, tt.lookback+day)
		}
	}
}

func TestAllReturnsCopy(t *testing.T) {
	all := All()
	all[0].Title = "changed"
	if Periods[0].Title == "changed" {
		t.Error("All must not expose the backing table")
	}
}
