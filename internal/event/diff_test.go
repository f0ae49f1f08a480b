package event

import (
	"testing"
)

func TestIsUpToDate(t *testing.T) {
	page := []Event{
		NewEvent("A", "?e=3&f=ST", "03/01/21"),
		NewEvent("B", "?e=2&f=ST", "02/01/21"),
	}

	tests := []struct {
		name  string
		known LinkSet
		want  bool
	}{
		{name: "no known links", known: nil, want: false},
		{name: "disjoint", known: NewLinkSet("?e=1&f=ST"), want: false},
		{name: "one known link on page", known: NewLinkSet("?e=1&f=ST", "?e=2&f=ST"), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUpToDate(page, tt.known); got != tt.want {
				t.Errorf("IsUpToDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDiff(t *testing.T) {
	stored := NewLinkSet("?e=1&f=ST")
	current := []Event{
		NewEvent("Old", "?e=1&f=ST", "01/01/21"),
		NewEvent("Mid", "?e=2&f=ST", "02/01/21"),
		NewEvent("New", "?e=3&f=ST", "03/01/21"),
		NewEvent("Mid again", "?e=2&f=ST", "02/01/21"),
	}

	result := Diff(stored, current)

	if len(result.NewEvents) != 2 {
		t.Fatalf("NewEvents = %d, want 2", len(result.NewEvents))
	}
	if result.NewEvents[0].Link != "?e=3&f=ST" || result.NewEvents[1].Link != "?e=2&f=ST" {
		t.Errorf("NewEvents order = %v, want newest first", result.NewEvents)
	}
	if result.Known != 1 {
		t.Errorf("Known = %d, want 1", result.Known)
	}
}

func TestDiff_Empty(t *testing.T) {
	result := Diff(nil, nil)
	if result.NewEvents == nil || len(result.NewEvents) != 0 {
		t.Errorf("Diff(nil, nil) NewEvents = %v, want empty slice", result.NewEvents)
	}
}
