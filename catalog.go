package chatconnect

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/models.yaml
var modelCatalogYAML []byte

// Catalog maps model display names to the provider model ids the endpoint
// actually understands. The embedded catalog ships with the library; callers
// can override it from a file or programmatically.
//
// The catalog is informational: it resolves names, it does not validate what
// the endpoint will accept.
type Catalog struct {
	mu           sync.RWMutex
	defaultModel string
	models       map[string]string
}

// catalogFile is the YAML layout of a catalog document.
type catalogFile struct {
	Version      string            `yaml:"version"`
	LastUpdated  string            `yaml:"last_updated"`
	DefaultModel string            `yaml:"default_model"`
	Models       map[string]string `yaml:"models"`
}

// NewCatalog loads the embedded model catalog.
func NewCatalog() (*Catalog, error) {
	return parseCatalog(modelCatalogYAML)
}

// LoadCatalogFromFile loads a catalog from a YAML file, replacing the
// embedded one entirely.
func LoadCatalogFromFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return parseCatalog(data)
}

func parseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(file.Models) == 0 {
		return nil, fmt.Errorf("catalog defines no models")
	}
	return &Catalog{
		defaultModel: file.DefaultModel,
		models:       file.Models,
	}, nil
}

// DefaultModel returns the configured default model display name.
func (c *Catalog) DefaultModel() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.defaultModel
}

// ModelNames returns the sorted display names of every model in the catalog.
func (c *Catalog) ModelNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.models))
	for name := range c.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register adds or replaces a model mapping.
func (c *Catalog) Register(name, modelID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.models[name] = modelID
}

// ModelID resolves a display name to a provider model id. The fallback chain
// is: the requested model, then the default model, then any model in the
// catalog (first by sorted name), then "".
func (c *Catalog) ModelID(name string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if id, ok := c.models[name]; ok {
		return id
	}
	if id, ok := c.models[c.defaultModel]; ok {
		return id
	}

	names := make([]string, 0, len(c.models))
	for n := range c.models {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		return c.models[n]
	}
	return ""
}
