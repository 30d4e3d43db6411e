// Package app wires the collaborators together and runs the interactive
// session.
package app

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/parallelpaths/game-companion/cache"
	"github.com/parallelpaths/game-companion/config"
	"github.com/parallelpaths/game-companion/health"
	"github.com/parallelpaths/game-companion/interfaces"
	"github.com/parallelpaths/game-companion/llm"
	"github.com/parallelpaths/game-companion/speech"
	"github.com/parallelpaths/game-companion/store"
	"github.com/parallelpaths/game-companion/story"
	"github.com/parallelpaths/game-companion/ui"
	"github.com/parallelpaths/game-companion/worker"
)

const (
	speechWorkers   = 1
	speechQueueSize = 4
)

// App holds every collaborator needed for one play session.
type App struct {
	Config     *config.Config
	Log        *logrus.Logger
	Persona    *interfaces.Persona
	Store      interfaces.Store
	Dialogue   interfaces.Dialogue
	Recognizer interfaces.SpeechToText
	Synth      interfaces.Synthesizer
	Pool       *worker.Pool
	State      *story.State
}

// New builds the application. Azure OpenAI is required; the speech and
// session-store collaborators are optional and their absence only disables
// the corresponding features.
func New(cfg *config.Config, log *logrus.Logger) (*App, error) {
	persona := interfaces.DefaultPersona()
	if cfg.Game.PersonaFile != "" {
		loaded, err := interfaces.LoadPersona(cfg.Game.PersonaFile)
		if err != nil {
			log.WithError(err).WithField("path", cfg.Game.PersonaFile).
				Warn("Failed to load persona file, using the built-in persona")
		} else {
			persona = loaded
		}
	}

	llmClient, err := llm.NewClient(cfg.OpenAI, persona, log.WithField("component", "llm"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Azure OpenAI client: %w", err)
	}

	a := &App{
		Config:   cfg,
		Log:      log,
		Persona:  persona,
		Dialogue: llmClient,
		State:    story.NewState(cfg.Game.PlayerName, cfg.Game.HistoryLimit),
	}

	// Redis when configured, JSON files on disk otherwise. The interface
	// stays nil only when both fail, so the UI can check it with a plain
	// nil comparison.
	db, err := cache.New(&cfg.Redis)
	switch {
	case err != nil:
		log.WithError(err).Warn("Failed to connect to session store, sessions will not be persisted")
	case db != nil:
		a.Store = db
	default:
		fs, err := store.New("")
		if err != nil {
			log.WithError(err).Warn("Failed to open local session store, sessions will not be persisted")
		} else {
			a.Store = fs
		}
	}

	if cfg.Speech.Enabled {
		recognizer, err := speech.NewRecognizer(cfg.Speech, log.WithField("component", "speech"))
		if err != nil {
			log.WithError(err).Warn("Failed to initialize speech recognizer, voice input disabled")
		} else {
			a.Recognizer = recognizer
		}

		synth, err := speech.NewSynthesizer(cfg.Speech, log.WithField("component", "speech"))
		if err != nil {
			log.WithError(err).Warn("Failed to initialize speech synthesizer, narration disabled")
		} else {
			a.Synth = synth
			a.Pool = worker.New(speechWorkers, speechQueueSize)
		}
	} else {
		log.Info("Azure Speech credentials not set, voice features disabled")
	}

	return a, nil
}

// Run starts the speech worker pool and blocks inside the interactive
// session until the player quits.
func (a *App) Run() error {
	for _, line := range strings.Split(health.Report(a.Config, a.Store), "\n") {
		a.Log.Info(line)
	}

	if a.Pool != nil {
		a.Pool.Start()
	}
	defer a.Close()

	model := ui.New(ui.Options{
		Dialogue:    a.Dialogue,
		Recognizer:  a.Recognizer,
		Synthesizer: a.Synth,
		Store:       a.Store,
		Pool:        a.Pool,
		State:       a.State,
		MaxInputLen: a.Config.Game.MaxInputLen,
		Log:         logrus.NewEntry(a.Log),
	})

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithOutput(os.Stdout))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("session ended with an error: %w", err)
	}
	return nil
}

// Close releases every collaborator that holds external resources.
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Stop()
	}
	if a.Recognizer != nil {
		a.Recognizer.Close()
	}
	if a.Synth != nil {
		a.Synth.Close()
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Log.WithError(err).Warn("Failed to close session store")
		}
	}
}
