// Package lorem is a mock connector that generates lorem ipsum text.
// Used for testing and development without requiring real credentials.
package lorem

import (
	"context"
	"fmt"
	"strings"
	"time"

	loremgen "github.com/bozaro/golorem"
	"github.com/tidwall/sjson"

	chatconnect "github.com/cobaltleaf/chatconnect-go"
)

// Connector implements the chatconnect.Connector interface with generated
// lorem ipsum text. It is always configured.
//
// The model name controls streaming speed:
//   - lorem-slow: 2 words/second
//   - lorem-medium: 10 words/second
//   - lorem-fast: 30 words/second
type Connector struct {
	generator *loremgen.Lorem
	logger    chatconnect.Logger
	defaults  *chatconnect.GenerationParams
	model     string
}

// Option customizes a Connector.
type Option func(*Connector)

// WithLogger sets the structured logging collaborator.
func WithLogger(logger chatconnect.Logger) Option {
	return func(c *Connector) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDefaults sets the configured generation defaults.
func WithDefaults(params *chatconnect.GenerationParams) Option {
	return func(c *Connector) {
		if params != nil {
			c.defaults = params
		}
	}
}

// New creates a lorem connector. Model defaults to "lorem-fast" when empty.
func New(model string, opts ...Option) *Connector {
	if model == "" {
		model = "lorem-fast"
	}
	c := &Connector{
		generator: loremgen.New(),
		logger:    chatconnect.NopLogger{},
		defaults:  chatconnect.DefaultParams(),
		model:     model,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsConfigured always returns true; the mock needs no credentials.
func (c *Connector) IsConfigured() bool {
	return true
}

// ModelName returns the currently selected model.
func (c *Connector) ModelName() string {
	return c.model
}

// streamDelay returns the delay between words based on the model name.
func (c *Connector) streamDelay() time.Duration {
	if strings.Contains(c.model, "slow") {
		return 500 * time.Millisecond
	}
	if strings.Contains(c.model, "medium") {
		return 100 * time.Millisecond
	}
	return 33 * time.Millisecond
}

// GenerateResponse generates a complete lorem ipsum response.
// Roughly one word per requested token, capped for sanity.
func (c *Connector) GenerateResponse(ctx context.Context, conversation []chatconnect.Message, overrides *chatconnect.GenerationParams) (string, error) {
	resolved := c.defaults.Resolve(overrides)
	if err := resolved.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", chatconnect.ErrInvalidRequest, err)
	}
	words := targetWords(resolved)
	return c.generator.Sentence(words, words), nil
}

// GenerateStream streams lorem ipsum one word at a time. Each word takes a
// detour through a synthetic content_block_delta payload and the shared
// chunk decoder, so consumers exercise the same decode path the real
// connectors use.
func (c *Connector) GenerateStream(ctx context.Context, conversation []chatconnect.Message, overrides *chatconnect.GenerationParams) <-chan string {
	deltas := make(chan string)

	go func() {
		defer close(deltas)

		resolved := c.defaults.Resolve(overrides)
		if err := resolved.Validate(); err != nil {
			err = fmt.Errorf("%w: %v", chatconnect.ErrInvalidRequest, err)
			classified := chatconnect.Classify(err, map[string]interface{}{"model": c.model})
			c.logger.Error("generation failed", chatconnect.Fields{
				"error":      err.Error(),
				"error_kind": classified.Kind.String(),
			})
			select {
			case deltas <- classified.Message:
			case <-ctx.Done():
			}
			return
		}

		c.logger.Info("invoking model", chatconnect.Fields{
			"model":         c.model,
			"message_count": len(conversation),
		})

		delay := c.streamDelay()
		words := targetWords(resolved)
		sent := 0

		for sent < words {
			word := c.generator.Word(2, 12)
			if sent > 0 {
				word = " " + word
			}

			decoded := chatconnect.DecodeChunk(buildChunk(word))
			if !decoded.HasText() {
				continue
			}

			select {
			case deltas <- decoded.Text:
				sent++
			case <-ctx.Done():
				return
			}

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return
			}
		}

		c.logger.Info("stream complete", chatconnect.Fields{
			"event_count":    sent,
			"content_chunks": sent,
		})
	}()

	return deltas
}

// buildChunk wraps one word in the content_block_delta wire shape.
func buildChunk(text string) []byte {
	chunk := []byte(`{"type":"content_block_delta","index":0}`)
	chunk, _ = sjson.SetBytes(chunk, "delta.type", "text_delta")
	chunk, _ = sjson.SetBytes(chunk, "delta.text", text)
	return chunk
}

// targetWords estimates a word budget from max_tokens, capped to keep mock
// runs short.
func targetWords(params *chatconnect.GenerationParams) int {
	words := params.GetMaxTokens(chatconnect.DefaultMaxTokens) / 4
	if words < 1 {
		words = 1
	}
	if words > 200 {
		words = 200
	}
	return words
}
