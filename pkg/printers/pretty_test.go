package printers

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/apptcal/pkg/app"
	"tableflip.dev/apptcal/pkg/appointment"
)

func init() {
	color.NoColor = true
}

func TestCalendarHelpers(t *testing.T) {
	feb := time.Date(2024, 2, 10, 0, 0, 0, 0, time.Local)
	if got := DaysIn(feb); got != 29 {
		t.Fatalf("DaysIn(Feb 2024) = %d", got)
	}
	if got := StartDay(feb); got != time.Thursday {
		t.Fatalf("StartDay(Feb 2024) = %s", got)
	}
	if got := NextMonth(time.Date(2024, 12, 31, 0, 0, 0, 0, time.Local)); got.Month() != time.January || got.Year() != 2025 {
		t.Fatalf("NextMonth(Dec 31) = %s", got)
	}
}

func TestCountByDay(t *testing.T) {
	jan := time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local)
	count := CountByDay(jan, appointment.Samples(time.Now()))
	if len(count) != 31 {
		t.Fatalf("len = %d", len(count))
	}
	if count[4] != 4 || count[14] != 1 || count[19] != 1 {
		t.Fatalf("count = %v", count)
	}
}

func TestPlannerGroupsByDay(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf}
	pp.Planner(appointment.Samples(time.Now())...)

	out := buf.String()
	gym := strings.Index(out, "Gym Session")
	meeting := strings.Index(out, "Work Meeting")
	if gym < 0 || meeting < 0 || gym > meeting {
		t.Fatalf("planner order wrong:\n%s", out)
	}
	if !strings.Contains(out, "Monday, January 5, 2026 - 4 appointments") {
		t.Fatalf("missing day heading:\n%s", out)
	}
}

func TestStatus(t *testing.T) {
	var buf bytes.Buffer
	pp := PrettyPrint{Out: &buf}
	pp.Status(app.Status{PendingCount: 2, HasUnsyncedChanges: true, Filter: appointment.FilterAll, ViewMode: appointment.ViewMonth})

	out := buf.String()
	for _, want := range []string{"offline", "2 changes pending", "month"} {
		if !strings.Contains(out, want) {
			t.Fatalf("status output missing %q:\n%s", want, out)
		}
	}
}
