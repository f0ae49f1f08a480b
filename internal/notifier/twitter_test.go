package notifier

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/mtgtop8-sync/internal/config"
	"github.com/pfrederiksen/mtgtop8-sync/internal/event"
)

func testEvents() []event.Event {
	return []event.Event{
		event.NewEvent("Standard Challenge @ MTGO", "https://www.mtgtop8.com/event?e=28112&f=ST", "03/10/20"),
		event.NewEvent("SCG Tour Online", "https://www.mtgtop8.com/event?e=28109&f=ST", "02/10/20"),
	}
}

func TestFormatPost(t *testing.T) {
	tests := []struct {
		name     string
		event    event.Event
		contains []string
		excludes []string
	}{
		{
			name:  "complete event",
			event: testEvents()[0],
			contains: []string{
				"Standard Challenge @ MTGO",
				"📅 2020-10-03",
				"🔗 https://www.mtgtop8.com/event?e=28112&f=ST",
				"#MTGStandard",
			},
		},
		{
			name:     "event without date",
			event:    event.NewEvent("Local Store Champs", "https://www.mtgtop8.com/event?e=1&f=ST", "soon"),
			contains: []string{"Local Store Champs", "#MTG"},
			excludes: []string{"📅"},
		},
		{
			name:     "very long name gets truncated",
			event:    event.NewEvent(strings.Repeat("Extremely Long Tournament Name ", 12), "https://www.mtgtop8.com/event?e=2&f=ST", "03/10/20"),
			contains: []string{"..."},
			excludes: []string{"#MTGStandard"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatPost(tt.event)
			assert.LessOrEqual(t, utf8.RuneCountInString(got), maxPostLength)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, got, unwanted)
			}
		})
	}
}

func TestDryRunNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewDryRunNotifier(&buf)

	require.NoError(t, n.Notify(context.Background(), testEvents()))
	out := buf.String()
	assert.Contains(t, out, "--- Post 1/2 ---")
	assert.Contains(t, out, "--- Post 2/2 ---")
	assert.Contains(t, out, "SCG Tour Online")
}

type fakeStatuses struct {
	posted []string
	failOn int
}

func (f *fakeStatuses) Update(status string, _ *twitter.StatusUpdateParams) (*twitter.Tweet, *http.Response, error) {
	if f.failOn > 0 && len(f.posted)+1 == f.failOn {
		return nil, nil, errors.New("rate limited")
	}
	f.posted = append(f.posted, status)
	return &twitter.Tweet{Text: status}, nil, nil
}

func TestTwitterNotifier_Notify(t *testing.T) {
	t.Run("posts every event", func(t *testing.T) {
		fake := &fakeStatuses{}
		n := &TwitterNotifier{statuses: fake, delay: time.Millisecond}

		require.NoError(t, n.Notify(context.Background(), testEvents()))
		require.Len(t, fake.posted, 2)
		assert.Contains(t, fake.posted[1], "SCG Tour Online")
	})

	t.Run("stops on first failure", func(t *testing.T) {
		fake := &fakeStatuses{failOn: 2}
		n := &TwitterNotifier{statuses: fake, delay: time.Millisecond}

		err := n.Notify(context.Background(), testEvents())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "e=28109")
		assert.Len(t, fake.posted, 1)
	})

	t.Run("honors cancellation between posts", func(t *testing.T) {
		fake := &fakeStatuses{}
		n := &TwitterNotifier{statuses: fake, delay: time.Hour}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := n.Notify(ctx, testEvents())
		assert.ErrorIs(t, err, context.Canceled)
		assert.Len(t, fake.posted, 1)
	})
}

func TestNew(t *testing.T) {
	n, err := New(KindNone, config.TwitterConfig{})
	require.NoError(t, err)
	assert.Nil(t, n)

	n, err = New(KindDryRun, config.TwitterConfig{})
	require.NoError(t, err)
	assert.IsType(t, &DryRunNotifier{}, n)

	_, err = New(KindTwitter, config.TwitterConfig{APIKey: "k"})
	assert.EqualError(t, err, "missing required Twitter credentials")

	n, err = New(KindTwitter, config.TwitterConfig{APIKey: "k", APISecret: "s", AccessToken: "t", AccessSecret: "a"})
	require.NoError(t, err)
	assert.IsType(t, &TwitterNotifier{}, n)

	_, err = New("carrier-pigeon", config.TwitterConfig{})
	assert.EqualError(t, err, "unknown notifier: carrier-pigeon")
}
