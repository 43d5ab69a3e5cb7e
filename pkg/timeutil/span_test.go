package timeutil

import (
	"testing"
	"time"
)

func TestParseSpanDefault(t *testing.T) {
	days, label, err := ParseSpan("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days != 7 {
		t.Fatalf("expected 7 days, got %d", days)
	}
	if label != "1w" {
		t.Fatalf("expected label 1w, got %s", label)
	}
}

func TestParseSpanComposite(t *testing.T) {
	days, label, err := ParseSpan("1w 10d")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days != 17 {
		t.Fatalf("expected 17 days, got %d", days)
	}
	if label != "2w3d" {
		t.Fatalf("unexpected label: %s", label)
	}
}

func TestParseSpanInvalid(t *testing.T) {
	for _, in := range []string{"noop", "3h", "0d"} {
		if _, _, err := ParseSpan(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestWindow(t *testing.T) {
	anchor := time.Date(2026, time.January, 5, 15, 30, 0, 0, time.UTC)

	from, to := Window(anchor, 7)
	if got := from.Format("2006-01-02") + ".." + to.Format("2006-01-02"); got != "2026-01-05..2026-01-11" {
		t.Fatalf("forward window = %s", got)
	}
	from, to = Window(anchor, -7)
	if got := from.Format("2006-01-02") + ".." + to.Format("2006-01-02"); got != "2025-12-30..2026-01-05" {
		t.Fatalf("backward window = %s", got)
	}
}
