package llm

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"github.com/parallelpaths/game-companion/interfaces"
)

// streamEvent mirrors the chat-completions SSE payload we care about.
type streamEvent struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
}

// processStream parses the server-sent event body of a streaming completion.
// Lines arrive as `data: {...}` with a final `data: [DONE]`. Each content
// delta is forwarded as a chunk; a Done chunk always terminates the stream.
func processStream(body io.Reader, out chan<- interfaces.StreamChunk) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}

		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			break
		}

		var ev streamEvent
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			// Partial events are not fatal; skip them.
			continue
		}

		for _, choice := range ev.Choices {
			if choice.Delta.Content != "" {
				out <- interfaces.StreamChunk{Delta: choice.Delta.Content}
			}
		}
	}

	if err := scanner.Err(); err != nil {
		out <- interfaces.StreamChunk{Err: err, Done: true}
		return
	}

	out <- interfaces.StreamChunk{Done: true}
}
