// Package ui implements the interaction loop: a bubbletea program that owns
// the screen, polls keyboard input, and dispatches to the dialogue and
// speech collaborators.
package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/sirupsen/logrus"

	"github.com/parallelpaths/game-companion/interfaces"
	"github.com/parallelpaths/game-companion/story"
	"github.com/parallelpaths/game-companion/system"
	"github.com/parallelpaths/game-companion/worker"
)

// Options wires the collaborators into the interaction loop. Recognizer,
// Synthesizer, Store and Pool may be nil; the matching features are then off.
type Options struct {
	Dialogue    interfaces.Dialogue
	Recognizer  interfaces.SpeechToText
	Synthesizer interfaces.Synthesizer
	Store       interfaces.Store
	Pool        *worker.Pool
	State       *story.State
	MaxInputLen int
	Log         *logrus.Entry
}

// Model is the bubbletea model for the game.
type Model struct {
	textinput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	renderer  *glamour.TermRenderer

	dialogue interfaces.Dialogue
	stt      interfaces.SpeechToText
	synth    interfaces.Synthesizer
	store    interfaces.Store
	pool     *worker.Pool
	log      *logrus.Entry

	state       *story.State
	currentText string
	choices     []string
	selected    int

	isLoading     bool // one collaborator call may be in flight at a time
	isStreaming   bool
	skipRequested bool
	listening     bool
	showHelp      bool
	showDebug     bool
	audioOn       bool
	voiceOn       bool

	stream       <-chan interfaces.StreamChunk
	streamCancel func()

	stats       system.Stats
	maxInputLen int
	width       int
	height      int
	ready       bool
}

// New builds the interaction loop model.
func New(opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "Type to interact, or press H for help..."
	ti.CharLimit = opts.MaxInputLen
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	// The opening scene request is dispatched from Init.
	opts.State.AddToHistory(story.RoleUser, openingPrompt)

	return Model{
		textinput:   ti,
		spinner:     sp,
		dialogue:    opts.Dialogue,
		stt:         opts.Recognizer,
		synth:       opts.Synthesizer,
		store:       opts.Store,
		pool:        opts.Pool,
		log:         opts.Log,
		state:       opts.State,
		audioOn:     opts.Synthesizer != nil,
		voiceOn:     opts.Recognizer != nil,
		isLoading:   true,
		maxInputLen: opts.MaxInputLen,
	}
}

// Init opens the session by asking the narrative engine for the first scene.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		m.startNarrativeCmd(openingPrompt),
	)
}
