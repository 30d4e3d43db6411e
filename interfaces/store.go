package interfaces

import (
	"context"

	"github.com/parallelpaths/game-companion/story"
)

// Store is the interface for the session persistence module.
type Store interface {
	SaveSession(ctx context.Context, state *story.State) error
	LoadSession(ctx context.Context, sessionID string) (*story.State, error)
	ListSessionIDs(ctx context.Context) ([]string, error)
	LogTranscription(ctx context.Context, sessionID, speaker, transcript string) error
	Ping(ctx context.Context) error
	Close() error
}
