package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
)

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	DatabasePath  string `json:"database_path,omitempty"`
	Limit         uint   `json:"limit,omitempty"`
	BusyTimeoutMS uint   `json:"busy_timeout_ms,omitempty"`

	// Sources tracks which config files were loaded (for diagnostics)
	Sources ConfigSources `json:"-"`
}

// ConfigSources tracks which config files were loaded.
type ConfigSources struct {
	Global   string // Path to global config if loaded, empty otherwise
	Explicit string // Path to -c/--config file if loaded, empty otherwise
}

var (
	// ErrConfigFileNotFound indicates an explicitly named config file is missing.
	ErrConfigFileNotFound = errors.New("config file not found")

	// ErrConfigInvalid indicates a config file failed to parse.
	ErrConfigInvalid = errors.New("invalid config file")
)

// globalConfigPath returns the path to the global config file.
// Uses $XDG_CONFIG_HOME/bearq/config.json if set, otherwise
// ~/.config/bearq/config.json. Empty when no home is known.
func globalConfigPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "bearq", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "bearq", "config.json")
	}

	return ""
}

// LoadConfig loads configuration with the following precedence (highest wins):
// 1. Defaults (empty: the library resolves Bear's standard location)
// 2. Global user config
// 3. Explicit config file via configPath (if non-empty)
// 4. CLI overrides, applied by the caller.
func LoadConfig(configPath string, env map[string]string) (Config, error) {
	var cfg Config

	globalPath := globalConfigPath(env)
	if globalPath != "" {
		globalCfg, loaded, err := loadConfigFile(globalPath, false)
		if err != nil {
			return Config{}, err
		}

		if loaded {
			cfg = mergeConfig(cfg, globalCfg)
			cfg.Sources.Global = globalPath
		}
	}

	if configPath != "" {
		explicitCfg, loaded, err := loadConfigFile(configPath, true)
		if err != nil {
			return Config{}, err
		}

		if loaded {
			cfg = mergeConfig(cfg, explicitCfg)
			cfg.Sources.Explicit = configPath
		}
	}

	return cfg, nil
}

// loadConfigFile loads one config file. If mustExist is false, a missing file
// returns zero config.
func loadConfigFile(path string, mustExist bool) (Config, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return Config{}, false, nil
		}

		if mustExist {
			return Config{}, false, fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
		}

		return Config{}, false, nil
	}

	cfg, parseErr := parseConfig(data)
	if parseErr != nil {
		return Config{}, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, parseErr)
	}

	return cfg, true, nil
}

func parseConfig(data []byte) (Config, error) {
	// Standardize JSONC to JSON
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	unmarshalErr := json.Unmarshal(standardized, &cfg)
	if unmarshalErr != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", unmarshalErr)
	}

	return cfg, nil
}

func mergeConfig(base, overlay Config) Config {
	if overlay.DatabasePath != "" {
		base.DatabasePath = overlay.DatabasePath
	}

	if overlay.Limit != 0 {
		base.Limit = overlay.Limit
	}

	if overlay.BusyTimeoutMS != 0 {
		base.BusyTimeoutMS = overlay.BusyTimeoutMS
	}

	return base
}

// FormatConfig renders the resolved config as indented JSON.
func FormatConfig(cfg Config) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("format config: %w", err)
	}

	return string(data), nil
}
