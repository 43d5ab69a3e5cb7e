package options

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/apptcal/pkg/appointment"
)

const (
	layoutISO      = "2006-1-2"
	layoutISOShort = "1/2"
)

// OnOptions selects a day.
type OnOptions struct {
	OnString string
}

func AddOnArgs(cmd *cobra.Command, o *OnOptions) {
	cmd.Flags().StringVar(&o.OnString, "on", "",
		`Specify a date, example: --on="2026-2-28", --on="2/28", --on=today or --on=tomorrow.`)
}

// GetOn resolves the flag against now and returns it in storage form. An
// empty flag yields an empty string.
func (o *OnOptions) GetOn(now time.Time) (string, error) {
	return ParseDay(o.OnString, now)
}

// ParseDay accepts the forms documented on --on.
func ParseDay(raw string, now time.Time) (string, error) {
	raw = strings.TrimSpace(raw)
	switch strings.ToLower(raw) {
	case "":
		return "", nil
	case "today":
		return now.Format(appointment.DateLayout), nil
	case "tomorrow":
		return now.AddDate(0, 0, 1).Format(appointment.DateLayout), nil
	}

	t, err := time.ParseInLocation(layoutISO, raw, now.Location())
	if err == nil {
		return t.Format(appointment.DateLayout), nil
	}
	t, err = time.ParseInLocation(layoutISOShort, raw, now.Location())
	if err != nil {
		return "", fmt.Errorf("%w: %q", appointment.ErrInvalidDate, raw)
	}
	// Let the year be the same.
	t = t.AddDate(now.Year(), 0, 0)
	// I am gonna assume if you said 1/3 on 12/5, you meant next year, not 11 months ago.
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if t.Before(today) {
		t = t.AddDate(1, 0, 0)
	}
	return t.Format(appointment.DateLayout), nil
}
