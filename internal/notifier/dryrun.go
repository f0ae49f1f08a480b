package notifier

import (
	"context"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/pfrederiksen/mtgtop8-sync/internal/event"
)

// DryRunNotifier prints what would be posted without posting it
type DryRunNotifier struct {
	out io.Writer
}

// NewDryRunNotifier creates a dry-run notifier writing to out, or stdout when nil.
func NewDryRunNotifier(out io.Writer) *DryRunNotifier {
	if out == nil {
		out = os.Stdout
	}
	return &DryRunNotifier{out: out}
}

// Notify prints the posts that would be made
func (n *DryRunNotifier) Notify(_ context.Context, events []event.Event) error {
	for i, evt := range events {
		post := formatPost(evt)
		fmt.Fprintf(n.out, "--- Post %d/%d ---\n", i+1, len(events))
		fmt.Fprintln(n.out, post)
		fmt.Fprintf(n.out, "\n(Length: %d characters)\n\n", utf8.RuneCountInString(post))
	}
	return nil
}
