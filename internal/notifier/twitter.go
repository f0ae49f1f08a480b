package notifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"

	"github.com/pfrederiksen/mtgtop8-sync/internal/config"
	"github.com/pfrederiksen/mtgtop8-sync/internal/event"
	"github.com/pfrederiksen/mtgtop8-sync/internal/logger"
)

const (
	maxPostLength = 280
	postDelay     = 2 * time.Second
)

// statusUpdater is satisfied by *twitter.StatusService.
type statusUpdater interface {
	Update(status string, params *twitter.StatusUpdateParams) (*twitter.Tweet, *http.Response, error)
}

// TwitterNotifier posts events to Twitter
type TwitterNotifier struct {
	statuses statusUpdater
	delay    time.Duration
}

// NewTwitterNotifier creates a Twitter notifier from OAuth1 credentials.
func NewTwitterNotifier(creds config.TwitterConfig) (*TwitterNotifier, error) {
	if !creds.Complete() {
		return nil, errors.New("missing required Twitter credentials")
	}

	oauthConfig := oauth1.NewConfig(creds.APIKey, creds.APISecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessSecret)
	httpClient := oauthConfig.Client(oauth1.NoContext, token)
	client := twitter.NewClient(httpClient)

	return &TwitterNotifier{statuses: client.Statuses, delay: postDelay}, nil
}

// Notify posts one tweet per event
func (n *TwitterNotifier) Notify(ctx context.Context, events []event.Event) error {
	for i, evt := range events {
		if _, _, err := n.statuses.Update(formatPost(evt), nil); err != nil {
			return fmt.Errorf("failed to post tweet for event %s: %w", evt.Link, err)
		}
		logger.IncrCounter("notifier.posts")

		// Rate limiting: wait between tweets
		if i < len(events)-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(n.delay):
			}
		}
	}
	return nil
}

// formatPost formats an event as a post of at most maxPostLength characters
func formatPost(evt event.Event) string {
	var b strings.Builder
	b.WriteString("🏆 New Standard results on mtgtop8!\n\n")
	b.WriteString(evt.Name + "\n")
	if d := evt.ISODate(); d != "" {
		fmt.Fprintf(&b, "📅 %s\n", d)
	}
	if evt.Link != "" {
		fmt.Fprintf(&b, "\n🔗 %s\n", evt.Link)
	}
	b.WriteString("\n#MTG #MTGStandard")

	post := b.String()
	if utf8.RuneCountInString(post) > maxPostLength {
		runes := []rune(post)
		post = string(runes[:maxPostLength-3]) + "..."
	}
	return post
}
