package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// TreesConfig holds the registered family trees (read/write).
type TreesConfig struct {
	Trees map[string]TreeEntry `yaml:"trees,omitempty"`
}

// TreeEntry holds configuration for a specific tree.
type TreeEntry struct {
	Description string    `yaml:"description,omitempty"`
	CreatedAt   time.Time `yaml:"created_at"`
}

// LoadTrees loads tree configuration from the .lineage directory.
func LoadTrees(basePath string) (*TreesConfig, error) {
	treesFile := TreesFilePath(basePath)

	data, err := os.ReadFile(treesFile)
	if os.IsNotExist(err) {
		// Return empty config if file doesn't exist
		return &TreesConfig{
			Trees: make(map[string]TreeEntry),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading trees file: %w", err)
	}

	var cfg TreesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing trees file: %w", err)
	}

	if cfg.Trees == nil {
		cfg.Trees = make(map[string]TreeEntry)
	}

	return &cfg, nil
}

// Save writes the trees configuration to the trees file.
func (c *TreesConfig) Save(basePath string) error {
	configDir := filepath.Join(basePath, DefaultConfigDir)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling trees config: %w", err)
	}

	if err := os.WriteFile(TreesFilePath(basePath), data, 0600); err != nil {
		return fmt.Errorf("writing trees file: %w", err)
	}

	return nil
}

// Add adds a tree to the configuration.
func (c *TreesConfig) Add(name string, entry TreeEntry) {
	if c.Trees == nil {
		c.Trees = make(map[string]TreeEntry)
	}
	c.Trees[name] = entry
}

// Remove removes a tree from the configuration.
func (c *TreesConfig) Remove(name string) {
	if c.Trees != nil {
		delete(c.Trees, name)
	}
}

// Get returns the configuration for a specific tree.
func (c *TreesConfig) Get(name string) (*TreeEntry, error) {
	if len(c.Trees) == 0 {
		return nil, errors.New("no trees configured")
	}

	entry, ok := c.Trees[name]
	if !ok {
		names := c.Names()
		if len(names) > 5 {
			names = append(names[:5], "...")
		}
		return nil, fmt.Errorf("tree %q not found (available: %s)", name, strings.Join(names, ", "))
	}

	return &entry, nil
}

// Names returns the registered tree names in sorted order.
func (c *TreesConfig) Names() []string {
	names := make([]string, 0, len(c.Trees))
	for k := range c.Trees {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Exists checks if a tree exists in the configuration.
func (c *TreesConfig) Exists(name string) bool {
	if c.Trees == nil {
		return false
	}
	_, ok := c.Trees[name]
	return ok
}
