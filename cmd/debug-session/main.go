// Command debug-session dumps saved play sessions: scene, sanity, choice
// history, and the most recent voice transcriptions. It reads Redis when
// REDIS_ADDR is set, the local file store otherwise.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/parallelpaths/game-companion/cache"
	"github.com/parallelpaths/game-companion/config"
	"github.com/parallelpaths/game-companion/interfaces"
	"github.com/parallelpaths/game-companion/store"
)

// transcriptReader is satisfied by both store backends.
type transcriptReader interface {
	Transcriptions(ctx context.Context, sessionID string, n int64) ([]string, error)
}

func main() {
	sessionID := flag.String("session", "", "dump a single session instead of all of them")
	transcripts := flag.Int64("transcripts", 10, "number of recent transcriptions to show per session")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Fatal error loading config: %v", err)
	}

	st, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open session store: %v", err)
	}
	defer func() { _ = st.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ids := []string{*sessionID}
	if *sessionID == "" {
		ids, err = st.ListSessionIDs(ctx)
		if err != nil {
			log.Fatalf("Failed to list sessions: %v", err)
		}
		if len(ids) == 0 {
			fmt.Println("No saved sessions.")
			return
		}
	}

	for _, id := range ids {
		dumpSession(ctx, st, id, *transcripts)
	}
}

func openStore(cfg *config.Config) (interfaces.Store, error) {
	db, err := cache.New(&cfg.Redis)
	if err != nil {
		return nil, err
	}
	if db != nil {
		return db, nil
	}
	return store.New("")
}

func dumpSession(ctx context.Context, st interfaces.Store, id string, transcripts int64) {
	fmt.Printf("\n--- Session: %s ---\n", id)

	state, err := st.LoadSession(ctx, id)
	if err != nil {
		log.Printf("Failed to load session %s: %v", id, err)
		return
	}

	fmt.Printf("Player: %s\n", state.PlayerName)
	fmt.Printf("Scene:  %s\n", state.Scene)
	fmt.Printf("Sanity: %d%%\n", state.Sanity)
	fmt.Printf("Messages in history: %d\n", len(state.History))

	if len(state.ChoicesMade) > 0 {
		fmt.Println("Choices:")
		for scene, choice := range state.ChoicesMade {
			fmt.Printf("  - %s: %s\n", scene, choice)
		}
	}

	reader, ok := st.(transcriptReader)
	if !ok {
		return
	}
	lines, err := reader.Transcriptions(ctx, id, transcripts)
	if err != nil {
		log.Printf("Failed to load transcriptions for %s: %v", id, err)
		return
	}
	if len(lines) > 0 {
		fmt.Println("Recent transcriptions:")
		for _, line := range lines {
			fmt.Printf("  - %s\n", line)
		}
	}
}
