// Package story holds the narrative game state: the conversation history,
// the player's sanity, and the choices made so far.
package story

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single entry in the conversation history.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Category tags a codex generation request.
type Category string

const (
	CategoryEnvironment Category = "Environment"
	CategoryItem        Category = "Item"
	CategoryLore        Category = "Lore"
)

const (
	// MaxSanity and MinSanity bound the player's sanity stat.
	MaxSanity = 100
	MinSanity = 0

	// sanitySwing is the largest sanity change a single choice can cause.
	sanitySwing = 5
)

// State is the mutable game state for one play session.
type State struct {
	SessionID   string            `json:"session_id"`
	PlayerName  string            `json:"player_name"`
	Scene       string            `json:"scene"`
	Sanity      int               `json:"sanity"`
	ChoicesMade map[string]string `json:"choices_made"`
	History     []Message         `json:"history"`

	historyLimit int
	sanityDelta  func() int
}

// NewState creates a fresh session. historyLimit caps the conversation
// history; system messages are always retained.
func NewState(playerName string, historyLimit int) *State {
	return &State{
		SessionID:    uuid.NewString(),
		PlayerName:   playerName,
		Scene:        "intro",
		Sanity:       MaxSanity,
		ChoicesMade:  make(map[string]string),
		historyLimit: historyLimit,
		sanityDelta: func() int {
			return rand.Intn(2*sanitySwing+1) - sanitySwing
		},
	}
}

// Restore rebinds the unexported fields after a state has been
// deserialized from the session store.
func (s *State) Restore(historyLimit int) {
	s.historyLimit = historyLimit
	if s.ChoicesMade == nil {
		s.ChoicesMade = make(map[string]string)
	}
	if s.sanityDelta == nil {
		s.sanityDelta = func() int {
			return rand.Intn(2*sanitySwing+1) - sanitySwing
		}
	}
	s.clampSanity()
}

// Clone returns a deep copy that is safe to hand to another goroutine
// while the original keeps accumulating turns.
func (s *State) Clone() *State {
	clone := *s
	clone.History = append([]Message(nil), s.History...)
	clone.ChoicesMade = make(map[string]string, len(s.ChoicesMade))
	for scene, choice := range s.ChoicesMade {
		clone.ChoicesMade[scene] = choice
	}
	return &clone
}

// AddToHistory appends a message and trims the history to the configured
// limit. System messages survive trimming; the oldest other messages are
// dropped first.
func (s *State) AddToHistory(role Role, content string) {
	s.History = append(s.History, Message{Role: role, Content: content})

	if len(s.History) <= s.historyLimit {
		return
	}

	var system, other []Message
	for _, msg := range s.History {
		if msg.Role == RoleSystem {
			system = append(system, msg)
		} else {
			other = append(other, msg)
		}
	}
	for len(system)+len(other) > s.historyLimit && len(other) > 0 {
		other = other[1:]
	}
	s.History = append(system, other...)
}

// ApplyChoice records the player's decision for the current scene, shifts
// sanity by a bounded random amount, and advances to the next scene.
func (s *State) ApplyChoice(choice string) {
	s.ChoicesMade[s.Scene] = choice
	s.Sanity += s.sanityDelta()
	s.clampSanity()
	s.Scene = fmt.Sprintf("scene_%d", len(s.ChoicesMade))
}

func (s *State) clampSanity() {
	if s.Sanity > MaxSanity {
		s.Sanity = MaxSanity
	}
	if s.Sanity < MinSanity {
		s.Sanity = MinSanity
	}
}
