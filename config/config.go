package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config is the root configuration structure.
type Config struct {
	Search  SearchConfig  `json:"search"`
	Backend BackendConfig `json:"backend"`
	Output  OutputConfig  `json:"output"`
}

// SearchConfig holds defaults for the upstream merge-base search.
type SearchConfig struct {
	Pattern    string   `json:"pattern"`    // Reference pattern, e.g. "upstream/*"
	Remotes    []string `json:"remotes"`    // Restrict to these remotes; empty = all
	SearchTags bool     `json:"searchTags"` // Include refs/tags in the search
	Branch     string   `json:"branch"`     // Default target branch
}

// BackendKind selects how the repository is accessed.
type BackendKind string

const (
	BackendGoGit BackendKind = "gogit" // in-process via go-git
	BackendCLI   BackendKind = "cli"   // shell out to the git executable
)

// BackendConfig holds repository access configuration.
type BackendConfig struct {
	Kind BackendKind `json:"kind"`
}

// OutputConfig holds output defaults.
type OutputConfig struct {
	Format string `json:"format"` // console, json, csv
	Top    int    `json:"top"`    // 0 = unlimited
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			Pattern: "upstream/*",
			Remotes: []string{},
			Branch:  "HEAD",
		},
		Backend: BackendConfig{
			Kind: BackendGoGit,
		},
		Output: OutputConfig{
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from a file, merging with defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		// Try default locations
		candidates := []string{".upsearch.json"}
		if home, err := os.UserHomeDir(); err == nil && home != "" {
			candidates = append(candidates, filepath.Join(home, ".upsearch.json"))
		} else if envHome := os.Getenv("HOME"); envHome != "" {
			candidates = append(candidates, filepath.Join(envHome, ".upsearch.json"))
		}
		for _, p := range candidates {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SaveConfig saves configuration to a file.
func SaveConfig(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
