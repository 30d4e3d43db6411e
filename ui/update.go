package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/parallelpaths/game-companion/interfaces"
	"github.com/parallelpaths/game-companion/story"
	"github.com/parallelpaths/game-companion/system"
	"github.com/parallelpaths/game-companion/worker"
)

const (
	// openingPrompt seeds the first scene of a new session.
	openingPrompt = "Start the story by introducing the setting and main character. Make it atmospheric and intriguing."

	// listenTimeout is how long voice capture waits for the player.
	listenTimeout = 10 * time.Second

	// nothingHeard is shown when voice capture times out.
	nothingHeard = "Sorry, I didn't hear anything."

	codexTimeout = 30 * time.Second
	saveTimeout  = 5 * time.Second

	// statsInterval paces debug overlay refreshes. The first CPU sample is
	// a since-boot figure; the following ones cover real intervals.
	statsInterval = 2 * time.Second
)

// Messages delivered back into the loop by collaborator commands.
type (
	streamStartedMsg struct {
		ch     <-chan interfaces.StreamChunk
		cancel func()
	}
	chunkMsg interfaces.StreamChunk
	codexMsg struct {
		category story.Category
		text     string
	}
	transcriptMsg string
	statsMsg      system.Stats
	statsTickMsg  struct{}
	errMsg        struct{ err error }
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg), nil

	case streamStartedMsg:
		m.isStreaming = true
		m.stream = msg.ch
		m.streamCancel = msg.cancel
		return m, waitForChunk(msg.ch)

	case chunkMsg:
		return m.handleChunk(interfaces.StreamChunk(msg))

	case codexMsg:
		m.isLoading = false
		m.currentText = fmt.Sprintf("## Codex — %s\n\n%s", msg.category, msg.text)
		m.choices = nil
		m.syncViewport()
		return m, nil

	case transcriptMsg:
		return m.handleTranscript(string(msg))

	case statsMsg:
		m.stats = system.Stats(msg)
		if m.showDebug {
			return m, statsTick()
		}
		return m, nil

	case statsTickMsg:
		if m.showDebug {
			return m, statsCmd()
		}
		return m, nil

	case errMsg:
		m.isLoading = false
		m.isStreaming = false
		m.skipRequested = false
		m.listening = false
		m.currentText = fmt.Sprintf("Error communicating with Azure OpenAI: %v", msg.err)
		m.syncViewport()
		if m.log != nil {
			m.log.WithError(msg.err).Error("collaborator call failed")
		}
		return m, nil

	case spinner.TickMsg:
		if m.isLoading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.textinput, cmd = m.textinput.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m.quit()

	case tea.KeyEsc:
		// Esc first skips an in-progress reveal, then quits.
		if m.isStreaming && m.streamCancel != nil {
			m.skipRequested = true
			m.streamCancel()
			return m, nil
		}
		return m.quit()

	case tea.KeyEnter:
		if m.isLoading {
			return m, nil
		}
		if text := m.textinput.Value(); text != "" {
			return m.submitText(text)
		}
		if len(m.choices) > 0 {
			return m.submitChoice()
		}
		return m, nil

	case tea.KeyUp:
		if !m.isLoading && m.selected > 0 {
			m.selected--
		}
		return m, nil

	case tea.KeyDown:
		if !m.isLoading && m.selected < len(m.choices)-1 {
			m.selected++
		}
		return m, nil

	case tea.KeyTab:
		if !m.isLoading && len(m.choices) > 0 {
			m.selected = (m.selected + 1) % len(m.choices)
		}
		return m, nil
	}

	// Hotkeys are the uppercase runes from the help screen; they only fire
	// while the input line is empty so lowercase typing stays unaffected.
	if m.textinput.Value() == "" && len(msg.Runes) == 1 {
		if model, cmd, handled := m.handleHotkey(msg.Runes[0]); handled {
			return model, cmd
		}
	}

	var cmd tea.Cmd
	m.textinput, cmd = m.textinput.Update(msg)
	return m, cmd
}

func (m Model) handleHotkey(key rune) (Model, tea.Cmd, bool) {
	switch key {
	case 'H':
		m.showHelp = !m.showHelp
		return m, nil, true

	case 'D':
		m.showDebug = !m.showDebug
		if m.showDebug {
			return m, statsCmd(), true
		}
		return m, nil, true

	case 'M':
		if m.synth != nil {
			m.audioOn = !m.audioOn
		}
		return m, nil, true

	case 'V':
		if m.isLoading || !m.voiceOn {
			return m, nil, true
		}
		m.isLoading = true
		m.listening = true
		return m, tea.Batch(m.listenCmd(), m.spinner.Tick), true

	case 'E':
		return m.requestCodex(story.CategoryEnvironment)

	case 'I':
		return m.requestCodex(story.CategoryItem)

	case 'L':
		return m.requestCodex(story.CategoryLore)
	}

	return m, nil, false
}

func (m Model) requestCodex(category story.Category) (Model, tea.Cmd, bool) {
	if m.isLoading {
		return m, nil, true
	}
	m.isLoading = true
	return m, tea.Batch(m.codexCmd(category), m.spinner.Tick), true
}

// submitText sends typed (or transcribed) input to the narrative engine.
// The cap counts runes, not bytes, so multibyte input is never torn.
func (m Model) submitText(text string) (tea.Model, tea.Cmd) {
	if runes := []rune(text); len(runes) > m.maxInputLen {
		text = string(runes[:m.maxInputLen])
	}
	m.textinput.Reset()
	m.state.AddToHistory(story.RoleUser, text)
	return m.startNarrative(text)
}

// submitChoice commits the highlighted story choice.
func (m Model) submitChoice() (tea.Model, tea.Cmd) {
	choice := m.choices[m.selected]
	m.state.ApplyChoice(choice)
	m.state.AddToHistory(story.RoleUser, "I choose: "+choice)
	return m.startNarrative("I choose: " + choice)
}

func (m Model) startNarrative(input string) (tea.Model, tea.Cmd) {
	m.isLoading = true
	m.currentText = ""
	m.choices = nil
	m.selected = 0
	m.syncViewport()
	return m, tea.Batch(m.startNarrativeCmd(input), m.spinner.Tick)
}

func (m Model) handleChunk(chunk interfaces.StreamChunk) (tea.Model, tea.Cmd) {
	if chunk.Err != nil {
		// A torn-down read after the player pressed Esc is a skip, not a
		// failure: reveal what already arrived.
		if !m.skipRequested {
			return m.Update(errMsg{chunk.Err})
		}
		chunk = interfaces.StreamChunk{Done: true}
	}

	m.currentText += chunk.Delta

	if !chunk.Done {
		m.syncViewport()
		return m, waitForChunk(m.stream)
	}

	m.skipRequested = false
	m.isLoading = false
	m.isStreaming = false
	m.stream = nil
	if m.streamCancel != nil {
		m.streamCancel()
		m.streamCancel = nil
	}

	reply := m.currentText
	m.state.AddToHistory(story.RoleAssistant, reply)
	m.choices = story.ExtractChoices(reply)
	m.selected = 0
	m.syncViewport()

	m.speakNarrative(reply)
	return m, m.saveSessionCmd()
}

func (m Model) handleTranscript(text string) (tea.Model, tea.Cmd) {
	m.listening = false
	if text == "" {
		m.isLoading = false
		m.currentText = nothingHeard
		m.syncViewport()
		return m, nil
	}

	m.state.AddToHistory(story.RoleUser, text)
	model, cmd := m.startNarrative(text)
	return model, tea.Batch(cmd, m.logTranscriptCmd(text))
}

// speakNarrative hands the narration to the speech worker pool.
func (m Model) speakNarrative(reply string) {
	if !m.audioOn || m.synth == nil || m.pool == nil {
		return
	}
	m.pool.Submit(worker.SpeechJob{
		Text:  story.Narrative(reply),
		Synth: m.synth,
		Log:   m.log,
	})
}

func (m Model) handleResize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height

	headerHeight := 3
	choiceHeight := 4
	inputHeight := 3

	bodyHeight := msg.Height - headerHeight - choiceHeight - inputHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}

	if !m.ready {
		m.viewport = viewport.New(msg.Width-4, bodyHeight)
		m.ready = true
	} else {
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = bodyHeight
	}
	m.textinput.Width = msg.Width - 8

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(msg.Width-8),
	)
	if err == nil {
		m.renderer = renderer
	}

	m.syncViewport()
	return m
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.streamCancel != nil {
		m.streamCancel()
	}
	return m, tea.Quit
}

// --- commands ---

func (m Model) startNarrativeCmd(input string) tea.Cmd {
	dialogue := m.dialogue
	state := m.state
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(context.Background())
		ch, err := dialogue.StreamNarrative(ctx, state, input)
		if err != nil {
			cancel()
			return errMsg{err}
		}
		return streamStartedMsg{ch: ch, cancel: cancel}
	}
}

func waitForChunk(ch <-chan interfaces.StreamChunk) tea.Cmd {
	return func() tea.Msg {
		chunk, ok := <-ch
		if !ok {
			return chunkMsg(interfaces.StreamChunk{Done: true})
		}
		return chunkMsg(chunk)
	}
}

func (m Model) codexCmd(category story.Category) tea.Cmd {
	dialogue := m.dialogue
	state := m.state
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), codexTimeout)
		defer cancel()
		text, err := dialogue.GenerateCodex(ctx, state, category)
		if err != nil {
			return errMsg{err}
		}
		return codexMsg{category: category, text: text}
	}
}

func (m Model) listenCmd() tea.Cmd {
	stt := m.stt
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), listenTimeout)
		defer cancel()
		text, err := stt.Listen(ctx)
		if err != nil {
			return errMsg{err}
		}
		return transcriptMsg(text)
	}
}

func (m Model) saveSessionCmd() tea.Cmd {
	if m.store == nil {
		return nil
	}
	store := m.store
	// Snapshot on the loop goroutine; the live state gains history entries
	// as soon as the player takes the next turn.
	state := m.state.Clone()
	log := m.log
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if err := store.SaveSession(ctx, state); err != nil && log != nil {
			log.WithError(err).Error("failed to save session")
		}
		return nil
	}
}

func (m Model) logTranscriptCmd(text string) tea.Cmd {
	if m.store == nil {
		return nil
	}
	store := m.store
	sessionID := m.state.SessionID
	speaker := m.state.PlayerName
	log := m.log
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if err := store.LogTranscription(ctx, sessionID, speaker, text); err != nil && log != nil {
			log.WithError(err).Error("failed to log transcription")
		}
		return nil
	}
}

func statsCmd() tea.Cmd {
	return func() tea.Msg {
		stats, err := system.Snapshot()
		if err != nil {
			return statsMsg(system.Stats{})
		}
		return statsMsg(stats)
	}
}

func statsTick() tea.Cmd {
	return tea.Tick(statsInterval, func(time.Time) tea.Msg {
		return statsTickMsg{}
	})
}
