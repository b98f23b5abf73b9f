package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigYAML is written by `lineage init`. Trees live under
// .lineage/trees unless sqlite.path pins a single database.
const DefaultConfigYAML = `# Lineage Configuration

logging:
  level: info     # debug | info | warn | error (or set LINEAGE_LOG_LEVEL)
  format: text    # text | json | logfmt

sqlite:
  # path: /custom/lineage.db (or set LINEAGE_SQLITE_PATH); default is per tree

metrics:
  # textfile: /var/lib/node_exporter/lineage.prom
`

// ErrAlreadyInitialized is returned by WriteDefault when a workspace
// already has a config file.
var ErrAlreadyInitialized = errors.New("lineage workspace already initialized")

// WriteDefault creates the .lineage directory and the default config file.
// It never overwrites an existing config.
func WriteDefault(basePath string) error {
	if err := os.MkdirAll(ConfigDir(basePath), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", ConfigDir(basePath), err)
	}

	path := ConfigFilePath(basePath)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%w: %s", ErrAlreadyInitialized, path)
	}
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	_, werr := f.WriteString(DefaultConfigYAML)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return fmt.Errorf("writing %s: %w", path, werr)
	}
	return nil
}

// Write replaces the workspace config with cfg. Invalid settings are
// rejected before anything is written.
func Write(basePath string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.MkdirAll(ConfigDir(basePath), 0755); err != nil {
		return fmt.Errorf("creating %s: %w", ConfigDir(basePath), err)
	}
	if err := os.WriteFile(ConfigFilePath(basePath), data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", ConfigFilePath(basePath), err)
	}
	return nil
}
