// Package bedrock implements the chatconnect.Connector interface over an
// AWS Bedrock-style invoke endpoint.
package bedrock

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	chatconnect "github.com/cobaltleaf/chatconnect-go"
)

// Connector implements the chatconnect.Connector interface for Bedrock
// model endpoints. It is configured iff its credential bundle is complete;
// an unconfigured connector never issues a network call.
type Connector struct {
	creds      chatconnect.Credentials
	catalog    *chatconnect.Catalog
	defaults   *chatconnect.GenerationParams
	logger     chatconnect.Logger
	httpClient *http.Client
	baseURL    string
	modelName  string
	signer     *signer
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

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Connector) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the endpoint base URL. Used for regional endpoints,
// gateways, and tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Connector) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithModel selects the initial model by catalog display name.
func WithModel(name string) Option {
	return func(c *Connector) {
		if name != "" {
			c.modelName = name
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

// New creates a Bedrock connector with an explicit credential bundle and
// model catalog. Incomplete credentials are not an error here: the connector
// is constructed unconfigured and reports that through IsConfigured and a
// terminal delta on the streaming path.
func New(creds chatconnect.Credentials, catalog *chatconnect.Catalog, opts ...Option) *Connector {
	c := &Connector{
		creds:      creds,
		catalog:    catalog,
		defaults:   chatconnect.DefaultParams(),
		logger:     chatconnect.NopLogger{},
		httpClient: &http.Client{Timeout: 120 * time.Second},
		baseURL:    fmt.Sprintf("https://bedrock-runtime.%s.amazonaws.com", creds.Region),
		modelName:  catalog.DefaultModel(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.signer = newSigner(creds)
	return c
}

// IsConfigured reports whether the credential bundle is complete.
func (c *Connector) IsConfigured() bool {
	return c.creds.IsComplete()
}

// ModelName returns the display name of the currently selected model.
func (c *Connector) ModelName() string {
	return c.modelName
}

// SetModel selects a different model by catalog display name.
func (c *Connector) SetModel(name string) {
	c.modelName = name
}

// GenerateResponse generates a complete response in one blocking call.
func (c *Connector) GenerateResponse(ctx context.Context, conversation []chatconnect.Message, overrides *chatconnect.GenerationParams) (string, error) {
	if !c.IsConfigured() {
		return "", chatconnect.ErrNotConfigured
	}

	resolved := c.defaults.Resolve(overrides)
	if err := resolved.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", chatconnect.ErrInvalidRequest, err)
	}

	modelID := c.catalog.ModelID(resolved.GetModel(c.modelName))
	wireReq := chatconnect.FormatConversation(conversation, resolved)

	c.logger.Debug("invoking model", chatconnect.Fields{
		"model":         c.modelName,
		"model_id":      modelID,
		"message_count": len(wireReq.Messages),
	})

	body, err := c.invoke(ctx, modelID, wireReq, false)
	if err != nil {
		return "", err
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	var wireResp chatconnect.WireResponse
	if err := json.Unmarshal(raw, &wireResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	return wireResp.Text(), nil
}

// invoke issues one signed POST against the invoke or the streaming invoke
// route and returns the response body. The caller owns closing it.
func (c *Connector) invoke(ctx context.Context, modelID string, wireReq *chatconnect.WireRequest, streaming bool) (io.ReadCloser, error) {
	payload, err := json.Marshal(wireReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	route := "invoke"
	if streaming {
		route = "invoke-with-response-stream"
	}
	url := fmt.Sprintf("%s/model/%s/%s", c.baseURL, modelID, route)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if streaming {
		httpReq.Header.Set("Accept", "text/event-stream")
	}

	if err := c.signer.sign(httpReq, payload, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to sign request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("bedrock request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		raw, _ := io.ReadAll(resp.Body)
		// The endpoint embeds its exception marker (ValidationException,
		// AccessDeniedException, ...) in the body; keep it in the error text
		// so classification can see it.
		return nil, fmt.Errorf("bedrock error (HTTP %d): %s", resp.StatusCode, string(raw))
	}

	return resp.Body, nil
}
