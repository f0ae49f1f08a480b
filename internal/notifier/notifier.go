package notifier

import (
	"context"
	"fmt"

	"github.com/pfrederiksen/mtgtop8-sync/internal/config"
	"github.com/pfrederiksen/mtgtop8-sync/internal/event"
)

// Notifier defines the interface for posting event notifications
type Notifier interface {
	// Notify posts one notification per event
	Notify(ctx context.Context, events []event.Event) error
}

// Kinds accepted by New.
const (
	KindNone    = ""
	KindDryRun  = "dryrun"
	KindTwitter = "twitter"
)

// New returns the notifier selected by kind, or nil for KindNone.
func New(kind string, creds config.TwitterConfig) (Notifier, error) {
	switch kind {
	case KindNone:
		return nil, nil
	case KindDryRun:
		return NewDryRunNotifier(nil), nil
	case KindTwitter:
		n, err := NewTwitterNotifier(creds)
		if err != nil {
			return nil, err
		}
		return n, nil
	default:
		return nil, fmt.Errorf("unknown notifier: %s", kind)
	}
}
