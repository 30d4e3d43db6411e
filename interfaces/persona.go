package interfaces

import (
	"encoding/json"
	"fmt"
	"os"
)

// Persona describes the narrator the dialogue collaborator should play.
// It is loaded from a JSON file so the game's voice can be changed without
// rebuilding; the system prompt is rendered from it.
type Persona struct {
	Identity  Identity  `json:"identity"`
	Setting   Setting   `json:"setting"`
	Mechanics Mechanics `json:"mechanics"`
	Style     Style     `json:"style"`
}

type Identity struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type Setting struct {
	Era     string `json:"era"`
	Premise string `json:"premise"`
}

type Mechanics struct {
	Rules       []string `json:"rules"`
	Endings     []string `json:"endings"`
	TrackSanity bool     `json:"track_sanity"`
}

type Style struct {
	Tone      []string `json:"tone"`
	Verbosity string   `json:"verbosity"`
}

// LoadPersona reads a persona document from disk.
func LoadPersona(path string) (*Persona, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read persona file %s: %w", path, err)
	}
	persona := &Persona{}
	if err := json.Unmarshal(data, persona); err != nil {
		return nil, fmt.Errorf("could not parse persona file %s: %w", path, err)
	}
	return persona, nil
}

// DefaultPersona is the built-in "Parallel Paths" narrator.
func DefaultPersona() *Persona {
	return &Persona{
		Identity: Identity{
			Name: "Parallel Paths",
			Role: "narrative engine for a branching psychological thriller",
		},
		Setting: Setting{
			Era:     "1984",
			Premise: "the player is a young programmer creating their first video game, and strange reality-bending phenomena begin to blur the line between their game and reality",
		},
		Mechanics: Mechanics{
			Rules: []string{
				"Present atmospheric, vivid descriptions of each scene with psychological elements",
				"Always offer exactly TWO choices that meaningfully affect the story, marked \"CHOICE A:\" and \"CHOICE B:\"",
				"Include occasional references to being watched, controlled, or existing in multiple timelines",
				"Create morally ambiguous scenarios without clear right or wrong answers",
				"Reference previous player choices to create a personalized narrative",
				"If the player asks meta questions about the game, respond in character as the game itself having awareness",
			},
			Endings: []string{
				"Success but at a terrible cost",
				"Discovery of a deeper conspiracy",
				"Mental breakdown",
				"Transcendence beyond reality",
				"Becoming trapped in a loop",
			},
			TrackSanity: true,
		},
		Style: Style{
			Tone:      []string{"atmospheric", "unsettling", "intimate"},
			Verbosity: "measured",
		},
	}
}
