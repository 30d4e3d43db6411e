// Package health performs the pre-loop checks on the external collaborators.
package health

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/parallelpaths/game-companion/config"
	"github.com/parallelpaths/game-companion/interfaces"
)

const checkTimeout = 5 * time.Second

// GetOpenAIStatus checks that the Azure OpenAI endpoint is reachable.
// Any HTTP response counts as reachable; auth happens per request later.
func GetOpenAIStatus(cfg *config.OpenAIConfig) string {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(cfg.Endpoint, "/"), nil)
	if err != nil {
		return fmt.Sprintf("ERROR: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Sprintf("ERROR: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	return "OK"
}

// GetSpeechStatus reports whether voice features are available.
func GetSpeechStatus(cfg *config.SpeechConfig) string {
	if !cfg.Enabled {
		return "Disabled (missing credentials)"
	}
	return "OK"
}

// GetStoreStatus checks the session store. Redis when configured, local
// files otherwise.
func GetStoreStatus(store interfaces.Store, cfg *config.RedisConfig) string {
	if store == nil {
		if cfg == nil || cfg.Addr == "" {
			return "Not configured"
		}
		return "ERROR: initialization failed"
	}
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		return fmt.Sprintf("ERROR: %v", err)
	}
	if cfg != nil && cfg.Addr != "" {
		return "OK (redis)"
	}
	return "OK (local files)"
}

// Report assembles the startup checklist printed before the loop begins.
func Report(cfg *config.Config, store interfaces.Store) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Azure OpenAI:  %s\n", GetOpenAIStatus(&cfg.OpenAI))
	fmt.Fprintf(&b, "Azure Speech:  %s\n", GetSpeechStatus(&cfg.Speech))
	fmt.Fprintf(&b, "Session store: %s", GetStoreStatus(store, &cfg.Redis))
	return b.String()
}
