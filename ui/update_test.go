package ui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parallelpaths/game-companion/interfaces"
	"github.com/parallelpaths/game-companion/story"
	"github.com/parallelpaths/game-companion/system"
)

// fakeDialogue records every call so tests can assert exactly which
// requests a keypress produced.
type fakeDialogue struct {
	mu          sync.Mutex
	streamCalls []string
	codexCalls  []story.Category
}

func (f *fakeDialogue) StreamNarrative(ctx context.Context, state *story.State, input string) (<-chan interfaces.StreamChunk, error) {
	f.mu.Lock()
	f.streamCalls = append(f.streamCalls, input)
	f.mu.Unlock()

	ch := make(chan interfaces.StreamChunk, 2)
	ch <- interfaces.StreamChunk{Delta: "The hallway narrows.\n\nCHOICE A: Run\nCHOICE B: Hide"}
	ch <- interfaces.StreamChunk{Done: true}
	close(ch)
	return ch, nil
}

func (f *fakeDialogue) GenerateCodex(ctx context.Context, state *story.State, category story.Category) (string, error) {
	f.mu.Lock()
	f.codexCalls = append(f.codexCalls, category)
	f.mu.Unlock()
	return "A flickering CRT monitor hums in the corner.", nil
}

// fakeStore records every saved state so tests can inspect the snapshots.
type fakeStore struct {
	mu    sync.Mutex
	saved []*story.State
}

func (f *fakeStore) SaveSession(_ context.Context, state *story.State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, state)
	return nil
}

func (f *fakeStore) LoadSession(_ context.Context, _ string) (*story.State, error) {
	return nil, nil
}

func (f *fakeStore) ListSessionIDs(_ context.Context) ([]string, error) { return nil, nil }

func (f *fakeStore) LogTranscription(_ context.Context, _, _, _ string) error { return nil }

func (f *fakeStore) Ping(_ context.Context) error { return nil }

func (f *fakeStore) Close() error { return nil }

func newTestModel(dialogue interfaces.Dialogue) Model {
	m := New(Options{
		Dialogue:    dialogue,
		State:       story.NewState("Stefan", 20),
		MaxInputLen: 50,
	})
	m.isLoading = false // New starts mid-opening-scene; tests start idle
	return m
}

// runCmd executes a command tree and collects every message it produces,
// flattening batches the way the bubbletea runtime would.
func runCmd(cmd tea.Cmd) []tea.Msg {
	var msgs []tea.Msg
	var walk func(tea.Cmd)
	walk = func(c tea.Cmd) {
		if c == nil {
			return
		}
		msg := c()
		if batch, ok := msg.(tea.BatchMsg); ok {
			for _, sub := range batch {
				walk(sub)
			}
			return
		}
		if msg != nil {
			msgs = append(msgs, msg)
		}
	}
	walk(cmd)
	return msgs
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestCodexHotkeys(t *testing.T) {
	cases := []struct {
		key      rune
		category story.Category
	}{
		{'E', story.CategoryEnvironment},
		{'I', story.CategoryItem},
		{'L', story.CategoryLore},
	}

	for _, tc := range cases {
		t.Run(string(tc.category), func(t *testing.T) {
			fake := &fakeDialogue{}
			m := newTestModel(fake)

			model, cmd := m.Update(keyRune(tc.key))
			msgs := runCmd(cmd)

			require.Len(t, fake.codexCalls, 1)
			assert.Equal(t, tc.category, fake.codexCalls[0])
			assert.Empty(t, fake.streamCalls)

			var codex codexMsg
			found := false
			for _, msg := range msgs {
				if c, ok := msg.(codexMsg); ok {
					codex = c
					found = true
				}
			}
			require.True(t, found, "expected a codexMsg from the command")
			assert.Equal(t, tc.category, codex.category)

			updated, _ := model.Update(codex)
			assert.Contains(t, updated.(Model).currentText, "CRT monitor")
			assert.False(t, updated.(Model).isLoading)
		})
	}
}

func TestCodexHotkeyIgnoredWhileLoading(t *testing.T) {
	fake := &fakeDialogue{}
	m := newTestModel(fake)
	m.isLoading = true

	_, cmd := m.Update(keyRune('E'))
	runCmd(cmd)

	assert.Empty(t, fake.codexCalls)
}

func TestHotkeyTypesWhenInputNotEmpty(t *testing.T) {
	fake := &fakeDialogue{}
	m := newTestModel(fake)
	m.textinput.SetValue("look at th")

	model, cmd := m.Update(keyRune('E'))
	runCmd(cmd)

	assert.Empty(t, fake.codexCalls)
	assert.Equal(t, "look at thE", model.(Model).textinput.Value())
}

func TestEnterSubmitsTypedText(t *testing.T) {
	fake := &fakeDialogue{}
	m := newTestModel(fake)
	m.textinput.SetValue("open the east door")

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msgs := runCmd(cmd)

	require.Len(t, fake.streamCalls, 1)
	assert.Equal(t, "open the east door", fake.streamCalls[0])

	um := model.(Model)
	assert.True(t, um.isLoading)
	assert.Empty(t, um.textinput.Value())

	last := um.state.History[len(um.state.History)-1]
	assert.Equal(t, story.RoleUser, last.Role)
	assert.Equal(t, "open the east door", last.Content)

	found := false
	for _, msg := range msgs {
		if _, ok := msg.(streamStartedMsg); ok {
			found = true
		}
	}
	assert.True(t, found, "expected a streamStartedMsg from the command")
}

func TestEnterTruncatesLongInput(t *testing.T) {
	fake := &fakeDialogue{}
	m := newTestModel(fake)
	m.textinput.SetValue(strings.Repeat("x", 80))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	runCmd(cmd)

	require.Len(t, fake.streamCalls, 1)
	assert.Len(t, fake.streamCalls[0], 50)
}

func TestEnterCommitsSelectedChoice(t *testing.T) {
	fake := &fakeDialogue{}
	m := newTestModel(fake)
	m.choices = []string{"Run", "Hide"}
	m.selected = 1

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	runCmd(cmd)

	require.Len(t, fake.streamCalls, 1)
	assert.Equal(t, "I choose: Hide", fake.streamCalls[0])

	um := model.(Model)
	assert.Equal(t, "Hide", um.state.ChoicesMade["intro"])
	assert.Equal(t, "scene_1", um.state.Scene)
}

func TestTabCyclesChoices(t *testing.T) {
	m := newTestModel(&fakeDialogue{})
	m.choices = []string{"Run", "Hide"}

	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 1, model.(Model).selected)

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 0, model.(Model).selected)
}

func TestStreamAccumulatesAndExtractsChoices(t *testing.T) {
	fake := &fakeDialogue{}
	m := newTestModel(fake)
	m.isLoading = true
	m.isStreaming = true

	model, _ := m.Update(chunkMsg(interfaces.StreamChunk{Delta: "The hallway "}))
	model, _ = model.Update(chunkMsg(interfaces.StreamChunk{Delta: "narrows.\n\nCHOICE A: Run\nCHOICE B: Hide"}))
	model, _ = model.Update(chunkMsg(interfaces.StreamChunk{Done: true}))

	um := model.(Model)
	assert.False(t, um.isLoading)
	assert.Equal(t, []string{"Run", "Hide"}, um.choices)

	last := um.state.History[len(um.state.History)-1]
	assert.Equal(t, story.RoleAssistant, last.Role)
	assert.Contains(t, last.Content, "The hallway narrows.")
}

func TestEmptyTranscriptShowsNothingHeard(t *testing.T) {
	fake := &fakeDialogue{}
	m := newTestModel(fake)
	m.isLoading = true
	m.listening = true

	model, _ := m.Update(transcriptMsg(""))

	um := model.(Model)
	assert.False(t, um.isLoading)
	assert.False(t, um.listening)
	assert.Equal(t, nothingHeard, um.currentText)
	assert.Empty(t, fake.streamCalls)
}

func TestTranscriptFeedsNarrative(t *testing.T) {
	fake := &fakeDialogue{}
	m := newTestModel(fake)
	m.isLoading = true
	m.listening = true

	_, cmd := m.Update(transcriptMsg("go down the stairs"))
	runCmd(cmd)

	require.Len(t, fake.streamCalls, 1)
	assert.Equal(t, "go down the stairs", fake.streamCalls[0])
}

func TestHelpToggle(t *testing.T) {
	m := newTestModel(&fakeDialogue{})

	model, _ := m.Update(keyRune('H'))
	assert.True(t, model.(Model).showHelp)

	model, _ = model.Update(keyRune('H'))
	assert.False(t, model.(Model).showHelp)
}

func TestVoiceHotkeyIgnoredWithoutRecognizer(t *testing.T) {
	fake := &fakeDialogue{}
	m := newTestModel(fake)

	model, cmd := m.Update(keyRune('V'))
	assert.Nil(t, cmd)
	assert.False(t, model.(Model).listening)
}

func TestEscSkipRevealsPartialReply(t *testing.T) {
	fake := &fakeDialogue{}
	m := newTestModel(fake)
	m.isLoading = true
	m.isStreaming = true
	m.streamCancel = func() {}
	m.currentText = "The hallway narrows.\n\nCHOICE A: Run\nCHOICE B: Hide"

	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	model, _ = model.Update(chunkMsg(interfaces.StreamChunk{Err: context.Canceled, Done: true}))

	um := model.(Model)
	assert.False(t, um.isLoading)
	assert.Contains(t, um.currentText, "The hallway narrows.")
	assert.Equal(t, []string{"Run", "Hide"}, um.choices)

	last := um.state.History[len(um.state.History)-1]
	assert.Equal(t, story.RoleAssistant, last.Role)
	assert.Contains(t, last.Content, "The hallway narrows.")
}

func TestStreamErrorWithoutSkipReported(t *testing.T) {
	m := newTestModel(&fakeDialogue{})
	m.isLoading = true
	m.isStreaming = true

	model, _ := m.Update(chunkMsg(interfaces.StreamChunk{Err: assert.AnError, Done: true}))

	um := model.(Model)
	assert.False(t, um.isLoading)
	assert.Contains(t, um.currentText, "Error communicating with Azure OpenAI")
}

func TestEnterKeepsMultibyteInputIntact(t *testing.T) {
	fake := &fakeDialogue{}
	m := newTestModel(fake)
	m.textinput.SetValue(strings.Repeat("語", 20))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	runCmd(cmd)

	require.Len(t, fake.streamCalls, 1)
	sent := fake.streamCalls[0]
	assert.True(t, utf8.ValidString(sent))
	assert.Equal(t, 20, utf8.RuneCountInString(sent))
}

func TestMultibyteTruncationOnRuneBoundary(t *testing.T) {
	fake := &fakeDialogue{}
	m := newTestModel(fake)

	_, cmd := m.submitText(strings.Repeat("語", 60))
	runCmd(cmd)

	require.Len(t, fake.streamCalls, 1)
	sent := fake.streamCalls[0]
	assert.True(t, utf8.ValidString(sent))
	assert.Equal(t, 50, utf8.RuneCountInString(sent))
}

func TestSaveUsesStateSnapshot(t *testing.T) {
	fake := &fakeDialogue{}
	st := &fakeStore{}
	m := New(Options{
		Dialogue:    fake,
		Store:       st,
		State:       story.NewState("Stefan", 20),
		MaxInputLen: 50,
	})
	m.isStreaming = true
	m.currentText = "The reel spins.\n\nCHOICE A: Run\nCHOICE B: Hide"

	model, cmd := m.Update(chunkMsg(interfaces.StreamChunk{Done: true}))
	runCmd(cmd)

	um := model.(Model)
	require.Len(t, st.saved, 1)
	saved := st.saved[0]
	require.NotSame(t, um.state, saved)
	savedLen := len(saved.History)

	// Later turns must not leak into the snapshot the save command holds.
	um.state.AddToHistory(story.RoleUser, "next turn")
	assert.Len(t, saved.History, savedLen)
}

func TestDoneChunkTrailingTextKept(t *testing.T) {
	m := newTestModel(&fakeDialogue{})
	m.isLoading = true
	m.isStreaming = true
	m.currentText = "The tape clicks"

	model, _ := m.Update(chunkMsg(interfaces.StreamChunk{Delta: " to a stop.", Done: true}))

	um := model.(Model)
	last := um.state.History[len(um.state.History)-1]
	assert.Equal(t, "The tape clicks to a stop.", last.Content)
}

func TestDebugStatsRefreshWhileVisible(t *testing.T) {
	m := newTestModel(&fakeDialogue{})
	m.showDebug = true

	model, cmd := m.Update(statsMsg(system.Stats{CPUPercent: 10}))
	assert.NotNil(t, cmd, "visible overlay schedules the next sample")
	assert.Equal(t, 10.0, model.(Model).stats.CPUPercent)

	um := model.(Model)
	um.showDebug = false
	_, cmd = um.Update(statsMsg(system.Stats{}))
	assert.Nil(t, cmd, "hidden overlay stops sampling")
	_, cmd = um.Update(statsTickMsg{})
	assert.Nil(t, cmd)
}

func TestErrorStopsLoading(t *testing.T) {
	m := newTestModel(&fakeDialogue{})
	m.isLoading = true
	m.isStreaming = true

	model, _ := m.Update(errMsg{assert.AnError})

	um := model.(Model)
	assert.False(t, um.isLoading)
	assert.False(t, um.isStreaming)
	assert.Contains(t, um.currentText, "Error communicating with Azure OpenAI")
}
