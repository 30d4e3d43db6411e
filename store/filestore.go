// Package store persists sessions as JSON files on disk. It is the
// fallback when no Redis address is configured.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/parallelpaths/game-companion/story"
)

const (
	stateFile      = "state.json"
	transcriptFile = "transcript.log"
)

// FileStore keeps one directory per session under its root.
type FileStore struct {
	root string
}

// New creates the root directory if needed. An empty root defaults to
// ~/.game-companion/sessions.
func New(root string) (*FileStore, error) {
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home directory: %w", err)
		}
		root = filepath.Join(home, ".game-companion", "sessions")
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("could not create session directory: %w", err)
	}
	return &FileStore{root: root}, nil
}

func (f *FileStore) sessionDir(sessionID string) string {
	return filepath.Join(f.root, sessionID)
}

func (f *FileStore) SaveSession(_ context.Context, state *story.State) error {
	dir := f.sessionDir(state.SessionID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, stateFile), data, 0644)
}

func (f *FileStore) LoadSession(_ context.Context, sessionID string) (*story.State, error) {
	data, err := os.ReadFile(filepath.Join(f.sessionDir(sessionID), stateFile))
	if err != nil {
		return nil, err
	}

	var state story.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("corrupt session %s: %w", sessionID, err)
	}
	return &state, nil
}

func (f *FileStore) ListSessionIDs(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(f.root, entry.Name(), stateFile)); err == nil {
			ids = append(ids, entry.Name())
		}
	}
	return ids, nil
}

// LogTranscription appends one line per recognized utterance.
func (f *FileStore) LogTranscription(_ context.Context, sessionID, speaker, transcript string) error {
	dir := f.sessionDir(sessionID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	file, err := os.OpenFile(filepath.Join(dir, transcriptFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	line := fmt.Sprintf("%s %s: %s\n", time.Now().UTC().Format(time.RFC3339), speaker, strings.TrimSpace(transcript))
	_, err = file.WriteString(line)
	return err
}

// Transcriptions returns the most recent n transcript lines, newest first.
func (f *FileStore) Transcriptions(_ context.Context, sessionID string, n int64) ([]string, error) {
	data, err := os.ReadFile(filepath.Join(f.sessionDir(sessionID), transcriptFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	var recent []string
	for i := len(lines) - 1; i >= 0 && int64(len(recent)) < n; i-- {
		recent = append(recent, lines[i])
	}
	return recent, nil
}

func (f *FileStore) Ping(_ context.Context) error {
	_, err := os.Stat(f.root)
	return err
}

func (f *FileStore) Close() error { return nil }
