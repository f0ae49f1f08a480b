package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pfrederiksen/mtgtop8-sync/internal/config"
	"github.com/pfrederiksen/mtgtop8-sync/internal/event"
	"github.com/pfrederiksen/mtgtop8-sync/internal/notifier"
)

var (
	resultFile = flag.String("result-file", "", "Path to the JSON output of 'mtgtop8-sync run --format json' (or read from stdin)")
	configFile = flag.String("config", "", "Config file holding twitter credentials")
	dryRun     = flag.Bool("dry-run", false, "Print posts without publishing")
	maxPosts   = flag.Int("max-posts", 10, "Maximum number of posts to publish")
)

func main() {
	flag.Parse()

	// Read the run result from file or stdin
	var reader io.Reader
	if *resultFile != "" {
		f, err := os.Open(*resultFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening result file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		reader = f
	} else {
		reader = os.Stdin
	}

	var result struct {
		Events struct {
			NewEvents []event.Event `json:"new_events"`
		} `json:"events"`
	}
	if err := json.NewDecoder(reader).Decode(&result); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing JSON: %v\n", err)
		os.Exit(1)
	}

	events := result.Events.NewEvents
	if len(events) == 0 {
		fmt.Println("No new events to announce")
		os.Exit(0)
	}
	if len(events) > *maxPosts {
		events = events[:*maxPosts]
	}

	var n notifier.Notifier
	if *dryRun {
		n = notifier.NewDryRunNotifier(os.Stdout)
		fmt.Printf("DRY RUN MODE - Would post %d events:\n\n", len(events))
	} else {
		cfg, err := config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		client, err := notifier.NewTwitterNotifier(cfg.Twitter)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error initializing Twitter client: %v\n", err)
			os.Exit(1)
		}
		n = client
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := n.Notify(ctx, events); err != nil {
		fmt.Fprintf(os.Stderr, "Error posting events: %v\n", err)
		os.Exit(1)
	}

	if !*dryRun {
		fmt.Printf("Successfully posted %d events\n", len(events))
	}
}
