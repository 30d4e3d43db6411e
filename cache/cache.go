// Package cache persists game sessions and transcription logs in Redis.
// Persistence is optional; New returns nil when no address is configured
// and callers treat a nil store as "do not persist".
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/parallelpaths/game-companion/config"
	"github.com/parallelpaths/game-companion/story"
)

const (
	keyPrefix      = "game-companion:"
	maxTranscripts = 50
)

// ErrSessionNotFound is returned when no saved state exists for a session ID.
var ErrSessionNotFound = errors.New("session not found")

// DB is the Redis-backed session store.
type DB struct {
	rdb *redis.Client
}

// New connects to Redis. A nil config or empty address yields a nil store
// without error, matching "persistence not configured".
func New(cfg *config.RedisConfig) (*DB, error) {
	if cfg == nil || cfg.Addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("could not connect to session store at %s: %w", cfg.Addr, err)
	}
	return &DB{rdb: rdb}, nil
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("%ssession:%s:state", keyPrefix, sessionID)
}

func transcriptKey(sessionID string) string {
	return fmt.Sprintf("%ssession:%s:transcripts", keyPrefix, sessionID)
}

// SaveSession stores the full game state as JSON.
func (db *DB) SaveSession(ctx context.Context, state *story.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("could not marshal session state: %w", err)
	}
	return db.rdb.Set(ctx, sessionKey(state.SessionID), data, 0).Err()
}

// LoadSession restores a saved game state.
func (db *DB) LoadSession(ctx context.Context, sessionID string) (*story.State, error) {
	data, err := db.rdb.Get(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("could not load session %s: %w", sessionID, err)
	}
	state := &story.State{}
	if err := json.Unmarshal([]byte(data), state); err != nil {
		return nil, fmt.Errorf("could not unmarshal session %s: %w", sessionID, err)
	}
	return state, nil
}

// ListSessionIDs enumerates every saved session.
func (db *DB) ListSessionIDs(ctx context.Context) ([]string, error) {
	var ids []string
	pattern := keyPrefix + "session:*:state"
	iter := db.rdb.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		trimmed := strings.TrimPrefix(iter.Val(), keyPrefix)
		parts := strings.Split(trimmed, ":")
		if len(parts) == 3 {
			ids = append(ids, parts[1])
		}
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// LogTranscription records a voice transcript against the session, keeping
// only the most recent entries.
func (db *DB) LogTranscription(ctx context.Context, sessionID, speaker, transcript string) error {
	entry, err := json.Marshal(map[string]string{
		"speaker":    speaker,
		"transcript": transcript,
	})
	if err != nil {
		return fmt.Errorf("could not marshal transcript: %w", err)
	}
	pipe := db.rdb.Pipeline()
	pipe.LPush(ctx, transcriptKey(sessionID), entry)
	pipe.LTrim(ctx, transcriptKey(sessionID), 0, maxTranscripts-1)
	_, err = pipe.Exec(ctx)
	return err
}

// Transcriptions returns the most recent voice transcripts for a session.
func (db *DB) Transcriptions(ctx context.Context, sessionID string, n int64) ([]string, error) {
	return db.rdb.LRange(ctx, transcriptKey(sessionID), 0, n-1).Result()
}

func (db *DB) Ping(ctx context.Context) error {
	return db.rdb.Ping(ctx).Err()
}

func (db *DB) Close() error {
	return db.rdb.Close()
}
