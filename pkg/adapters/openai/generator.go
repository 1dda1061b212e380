// Package openai implements ports.Generator on top of an OpenAI-compatible chat completion API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aretw0/sentinel/pkg/ports"
	"github.com/sashabaranov/go-openai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = openai.GPT4oMini

// ErrEmptyCompletion is returned when the API answers without any choice.
var ErrEmptyCompletion = errors.New("empty completion")

// Generator sends a single prompt plus the style instruction and returns the first choice.
type Generator struct {
	client *openai.Client
	model  string
}

// Option configures the Generator.
type Option func(*openai.ClientConfig, *Generator)

// WithBaseURL points the client at an OpenAI-compatible endpoint (OpenRouter, a local server...).
func WithBaseURL(url string) Option {
	return func(c *openai.ClientConfig, _ *Generator) {
		if url != "" {
			c.BaseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithModel overrides DefaultModel.
func WithModel(model string) Option {
	return func(_ *openai.ClientConfig, g *Generator) {
		if model != "" {
			g.model = model
		}
	}
}

// WithHTTPClient overrides the transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *openai.ClientConfig, _ *Generator) {
		c.HTTPClient = hc
	}
}

// New creates a Generator authenticated with apiKey.
func New(apiKey string, opts ...Option) *Generator {
	config := openai.DefaultConfig(apiKey)
	g := &Generator{model: DefaultModel}
	for _, opt := range opts {
		opt(&config, g)
	}
	g.client = openai.NewClientWithConfig(config)
	return g
}

var _ ports.Generator = (*Generator)(nil)

// Model returns the configured model name.
func (g *Generator) Model() string {
	return g.model
}

// Generate implements ports.Generator.
func (g *Generator) Generate(ctx context.Context, req ports.GenerateRequest) (string, error) {
	var msgs []openai.ChatCompletionMessage
	if req.Instruction != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.Instruction})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    g.model,
		Messages: msgs,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
