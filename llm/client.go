// Package llm implements the Azure OpenAI dialogue collaborator.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"

	"github.com/sirupsen/logrus"

	"github.com/parallelpaths/game-companion/config"
	"github.com/parallelpaths/game-companion/interfaces"
	"github.com/parallelpaths/game-companion/story"
)

const (
	maxTokens   = 800
	temperature = 0.7
)

// Client talks to an Azure OpenAI chat-completions deployment.
type Client struct {
	httpClient   *http.Client
	endpoint     string
	apiKey       string
	deployment   string
	apiVersion   string
	systemPrompt string
	log          *logrus.Entry
}

// NewClient builds the client and renders the system prompt from the persona.
func NewClient(cfg config.OpenAIConfig, persona *interfaces.Persona, log *logrus.Entry) (*Client, error) {
	systemPrompt, err := createSystemMessage(persona)
	if err != nil {
		return nil, fmt.Errorf("failed to create system message: %w", err)
	}

	return &Client{
		httpClient:   &http.Client{},
		endpoint:     strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:       cfg.APIKey,
		deployment:   cfg.Deployment,
		apiVersion:   cfg.APIVersion,
		systemPrompt: systemPrompt,
		log:          log,
	}, nil
}

func createSystemMessage(persona *interfaces.Persona) (string, error) {
	funcMap := template.FuncMap{
		"join": strings.Join,
		"inc":  func(i int) int { return i + 1 },
	}

	tmpl, err := template.New("systemMessage").Funcs(funcMap).Parse(systemMessageTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse system message template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, persona); err != nil {
		return "", fmt.Errorf("failed to execute system message template: %w", err)
	}

	return buf.String(), nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

func (c *Client) completionsURL() string {
	return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		c.endpoint, c.deployment, c.apiVersion)
}

// generateContextBlock renders the per-turn state summary that precedes the
// conversation history.
func (c *Client) generateContextBlock(state *story.State) (string, error) {
	tmpl, err := template.New("contextBlock").Parse(contextBlockTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse context block template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, state); err != nil {
		return "", fmt.Errorf("failed to execute context block template: %w", err)
	}

	return buf.String(), nil
}

// createPayload assembles the request body: system prompt, state context
// block, then the trimmed session history. The caller is expected to have
// already appended the player's input to the history.
func (c *Client) createPayload(state *story.State, stream bool) ([]byte, error) {
	contextBlock, err := c.generateContextBlock(state)
	if err != nil {
		return nil, err
	}

	messages := []chatMessage{
		{Role: "system", Content: c.systemPrompt},
		{Role: "system", Content: contextBlock},
	}
	for _, msg := range state.History {
		messages = append(messages, chatMessage{Role: string(msg.Role), Content: msg.Content})
	}

	return json.Marshal(chatRequest{
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Stream:      stream,
	})
}

func (c *Client) newRequest(ctx context.Context, payload []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.completionsURL(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// StreamNarrative sends the session history to the deployment and streams the
// reply. The input parameter is informational; it must already be the last
// user message in the state history.
func (c *Client) StreamNarrative(ctx context.Context, state *story.State, input string) (<-chan interfaces.StreamChunk, error) {
	payload, err := c.createPayload(state, true)
	if err != nil {
		return nil, fmt.Errorf("failed to create payload: %w", err)
	}

	req, err := c.newRequest(ctx, payload)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to azure openai: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, fmt.Errorf("azure openai returned non-200 status: %s, body: %s", resp.Status, string(body))
	}

	c.log.WithField("input_len", len(input)).Debug("streaming narrative reply")

	out := make(chan interfaces.StreamChunk)
	go func() {
		defer close(out)
		defer func() { _ = resp.Body.Close() }()
		processStream(resp.Body, out)
	}()

	return out, nil
}

// GenerateCodex performs a one-shot, non-streaming completion for a codex
// entry in the given category.
func (c *Client) GenerateCodex(ctx context.Context, state *story.State, category story.Category) (string, error) {
	tmpl, err := template.New("codexPrompt").Parse(codexPromptTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse codex prompt template: %w", err)
	}

	var buf bytes.Buffer
	data := struct {
		State    *story.State
		Category story.Category
	}{state, category}
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute codex prompt template: %w", err)
	}

	payload, err := json.Marshal(chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: c.systemPrompt},
			{Role: "user", Content: buf.String()},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal codex request: %w", err)
	}

	req, err := c.newRequest(ctx, payload)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send codex request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("azure openai returned non-200 status: %s, body: %s", resp.Status, string(body))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode codex response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("azure openai returned no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}
