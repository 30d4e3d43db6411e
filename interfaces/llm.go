// Package interfaces defines the contracts between the interaction loop
// and its collaborators.
package interfaces

import (
	"context"

	"github.com/parallelpaths/game-companion/story"
)

// StreamChunk is one increment of a streamed model reply. Done marks the
// final chunk; Delta is empty on it unless the provider flushed trailing
// text with the terminator.
type StreamChunk struct {
	Delta string
	Done  bool
	Err   error
}

// Dialogue is the interface for the story generation collaborator.
type Dialogue interface {
	// StreamNarrative sends the player's input together with the session
	// history and returns a channel of reply chunks. The channel is closed
	// after the Done chunk.
	StreamNarrative(ctx context.Context, state *story.State, input string) (<-chan StreamChunk, error)

	// GenerateCodex produces a one-shot codex entry for the given category
	// (Environment, Item or Lore), grounded in the current scene.
	GenerateCodex(ctx context.Context, state *story.State, category story.Category) (string, error)
}
