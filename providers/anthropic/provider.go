// Package anthropic implements the chatconnect.Connector interface over the
// Anthropic API directly, without a Bedrock endpoint in between.
package anthropic

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	chatconnect "github.com/cobaltleaf/chatconnect-go"
)

// Connector implements the chatconnect.Connector interface for Claude models
// through the Anthropic SDK. Configuration reduces to one API key.
type Connector struct {
	apiKey   string
	client   anthropic.Client
	defaults *chatconnect.GenerationParams
	logger   chatconnect.Logger
	model    string
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

// WithDefaults sets the configured generation defaults that caller overrides
// merge over.
func WithDefaults(params *chatconnect.GenerationParams) Option {
	return func(c *Connector) {
		if params != nil {
			c.defaults = params
		}
	}
}

// New creates an Anthropic connector. An empty API key is not an error:
// the connector is constructed unconfigured and reports that through
// IsConfigured and a terminal delta on the streaming path.
func New(apiKey, model string, opts ...Option) *Connector {
	c := &Connector{
		apiKey:   apiKey,
		client:   anthropic.NewClient(option.WithAPIKey(apiKey)),
		defaults: chatconnect.DefaultParams(),
		logger:   chatconnect.NopLogger{},
		model:    model,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsConfigured reports whether an API key is present.
func (c *Connector) IsConfigured() bool {
	return c.apiKey != ""
}

// ModelName returns the currently selected model.
func (c *Connector) ModelName() string {
	return c.model
}

// GenerateResponse generates a complete response in one blocking call.
func (c *Connector) GenerateResponse(ctx context.Context, conversation []chatconnect.Message, overrides *chatconnect.GenerationParams) (string, error) {
	if !c.IsConfigured() {
		return "", chatconnect.ErrNotConfigured
	}

	apiParams, err := c.buildMessageParams(conversation, overrides)
	if err != nil {
		return "", err
	}

	message, err := c.client.Messages.New(ctx, apiParams)
	if err != nil {
		return "", fmt.Errorf("anthropic API call failed: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", nil
}

// buildMessageParams constructs Anthropic API parameters from the
// conversation and resolved generation parameters. Shared between
// GenerateResponse and GenerateStream.
func (c *Connector) buildMessageParams(conversation []chatconnect.Message, overrides *chatconnect.GenerationParams) (anthropic.MessageNewParams, error) {
	resolved := c.defaults.Resolve(overrides)
	if err := resolved.Validate(); err != nil {
		return anthropic.MessageNewParams{}, fmt.Errorf("%w: %v", chatconnect.ErrInvalidRequest, err)
	}

	wireReq := chatconnect.FormatConversation(conversation, resolved)

	var system []anthropic.TextBlockParam
	messages := make([]anthropic.MessageParam, 0, len(wireReq.Messages))
	for _, msg := range wireReq.Messages {
		switch msg.Role {
		case chatconnect.RoleAssistant.String():
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		case chatconnect.RoleSystem.String():
			system = append(system, anthropic.TextBlockParam{Type: "text", Text: msg.Content})
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	if len(messages) == 0 {
		// System-only conversations still need one turn.
		messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock("Hello")))
	}

	apiParams := anthropic.MessageNewParams{
		Model:       anthropic.Model(resolved.GetModel(c.model)),
		Messages:    messages,
		MaxTokens:   int64(resolved.GetMaxTokens(chatconnect.DefaultMaxTokens)),
		Temperature: anthropic.Float(resolved.GetTemperature(chatconnect.DefaultTemperature)),
		TopP:        anthropic.Float(resolved.GetTopP(chatconnect.DefaultTopP)),
		TopK:        anthropic.Int(int64(resolved.GetTopK(chatconnect.DefaultTopK))),
	}
	if len(system) > 0 {
		apiParams.System = system
	}

	return apiParams, nil
}
