package event

import (
	"strings"
	"time"
)

// Event represents one tournament listed on the format page
type Event struct {
	ID       int64     `json:"id,omitempty"`
	Name     string    `json:"name"`
	Link     string    `json:"link"`
	DateText string    `json:"date_text,omitempty"`
	Date     time.Time `json:"date"`
}

// NewEvent creates an Event from the raw cells of the event list. The date text is
// parsed with ParseDate; an unparseable date leaves Date zero.
func NewEvent(name, link, dateText string) Event {
	dateText = strings.TrimSpace(dateText)
	return Event{
		Name:     strings.TrimSpace(name),
		Link:     strings.TrimSpace(link),
		DateText: dateText,
		Date:     ParseDate(dateText),
	}
}

// ISODate returns the event date as YYYY-MM-DD, or "" when unknown.
func (e Event) ISODate() string {
	return FormatDate(e.Date)
}
