package event

import (
	"strings"
	"time"
)

// ISOLayout is the layout dates are stored and exported with.
const ISOLayout = "2006-01-02"

var dateLayouts = []string{
	"02/01/06",   // 24/10/20, what the event list shows
	"2/1/06",     // 4/1/21
	"02/01/2006", // 24/10/2020
	"2/1/2006",
	ISOLayout, // already normalized, e.g. read back from the store
}

// ParseDate parses the day-first dates used on mtgtop8.
// Returns time.Time{} (zero value) if parsing fails.
func ParseDate(dateText string) time.Time {
	dateText = strings.TrimSpace(dateText)
	if dateText == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, dateText); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// FormatDate renders t with ISOLayout, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(ISOLayout)
}

// OnOrAfter reports whether the event happened on or after day. Events with an
// unknown date are never on or after anything.
func (e Event) OnOrAfter(day time.Time) bool {
	if e.Date.IsZero() {
		return false
	}
	return !e.Date.Before(day)
}
