package chatconnect

import "fmt"

// GenerationParams represents the tunable parameters of one generation call.
// All fields are optional pointers to distinguish "not set" from "set to zero
// value"; unset fields fall back to configured defaults at request time.
type GenerationParams struct {
	// Model is the catalog display name of the model to use
	// (e.g. "Claude 3.7 V1"); resolved to a provider model id via the Catalog
	Model *string `json:"model,omitempty"`

	// MaxTokens sets the maximum number of tokens to generate (1-4096)
	MaxTokens *int `json:"max_tokens,omitempty"`

	// Temperature controls randomness (0.0-1.0)
	Temperature *float64 `json:"temperature,omitempty"`

	// TopP (nucleus sampling) - cumulative probability cutoff (0.0-1.0)
	TopP *float64 `json:"top_p,omitempty"`

	// TopK limits sampling to top K tokens (0-500)
	TopK *int `json:"top_k,omitempty"`
}

// Default generation settings, matching the shipped configuration.
const (
	DefaultMaxTokens   = 4096
	DefaultTemperature = 0.7
	DefaultTopP        = 0.9
	DefaultTopK        = 250
)

// DefaultParams returns the generation defaults used when the caller supplies
// no overrides.
func DefaultParams() *GenerationParams {
	maxTokens := DefaultMaxTokens
	temperature := DefaultTemperature
	topP := DefaultTopP
	topK := DefaultTopK
	return &GenerationParams{
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
		TopP:        &topP,
		TopK:        &topK,
	}
}

// Resolve merges caller overrides over the receiver's values and returns a
// new GenerationParams. Fields set in overrides win; unset fields keep the
// receiver's value. Neither input is mutated. The result is immutable for
// the duration of one generation call.
func (gp *GenerationParams) Resolve(overrides *GenerationParams) *GenerationParams {
	resolved := &GenerationParams{}
	if gp != nil {
		*resolved = *gp
	}
	if overrides == nil {
		return resolved
	}
	if overrides.Model != nil {
		resolved.Model = overrides.Model
	}
	if overrides.MaxTokens != nil {
		resolved.MaxTokens = overrides.MaxTokens
	}
	if overrides.Temperature != nil {
		resolved.Temperature = overrides.Temperature
	}
	if overrides.TopP != nil {
		resolved.TopP = overrides.TopP
	}
	if overrides.TopK != nil {
		resolved.TopK = overrides.TopK
	}
	return resolved
}

// Validate checks parameter ranges. A nil receiver is valid.
func (gp *GenerationParams) Validate() error {
	if gp == nil {
		return nil
	}

	if gp.Temperature != nil {
		if *gp.Temperature < 0.0 || *gp.Temperature > 1.0 {
			return fmt.Errorf("temperature must be between 0.0 and 1.0, got %f", *gp.Temperature)
		}
	}

	if gp.TopP != nil {
		if *gp.TopP < 0.0 || *gp.TopP > 1.0 {
			return fmt.Errorf("top_p must be between 0.0 and 1.0, got %f", *gp.TopP)
		}
	}

	if gp.TopK != nil {
		if *gp.TopK < 0 || *gp.TopK > 500 {
			return fmt.Errorf("top_k must be between 0 and 500, got %d", *gp.TopK)
		}
	}

	if gp.MaxTokens != nil {
		if *gp.MaxTokens < 1 || *gp.MaxTokens > 4096 {
			return fmt.Errorf("max_tokens must be between 1 and 4096, got %d", *gp.MaxTokens)
		}
	}

	return nil
}

// GetModel returns the model name with default fallback
func (gp *GenerationParams) GetModel(defaultValue string) string {
	if gp != nil && gp.Model != nil {
		return *gp.Model
	}
	return defaultValue
}

// GetMaxTokens returns max_tokens with default fallback
func (gp *GenerationParams) GetMaxTokens(defaultValue int) int {
	if gp != nil && gp.MaxTokens != nil {
		return *gp.MaxTokens
	}
	return defaultValue
}

// GetTemperature returns temperature with default fallback
func (gp *GenerationParams) GetTemperature(defaultValue float64) float64 {
	if gp != nil && gp.Temperature != nil {
		return *gp.Temperature
	}
	return defaultValue
}

// GetTopP returns top_p with default fallback
func (gp *GenerationParams) GetTopP(defaultValue float64) float64 {
	if gp != nil && gp.TopP != nil {
		return *gp.TopP
	}
	return defaultValue
}

// GetTopK returns top_k with default fallback
func (gp *GenerationParams) GetTopK(defaultValue int) int {
	if gp != nil && gp.TopK != nil {
		return *gp.TopK
	}
	return defaultValue
}
