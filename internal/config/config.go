package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/vidscribe/vidscribe/internal/platform"
	"github.com/vidscribe/vidscribe/internal/translate"
	"github.com/vidscribe/vidscribe/internal/whisper"
)

// Defaults are fallback values for flags the user did not pass.
type Defaults struct {
	Model     string `toml:"model"`
	Language  string `toml:"language"`
	OutputDir string `toml:"output_dir"`
}

// Ollama configures the translation backend.
type Ollama struct {
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`
}

type Config struct {
	Defaults Defaults `toml:"defaults"`
	Ollama   Ollama   `toml:"ollama"`
}

func Default() Config {
	return Config{
		Defaults: Defaults{
			Model:    whisper.DefaultModel,
			Language: "auto",
		},
		Ollama: Ollama{
			Model:   translate.DefaultModel,
			BaseURL: translate.DefaultBaseURL,
		},
	}
}

// Load reads a toml config file and merges it over the defaults. A missing
// file is not an error; the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	return normalize(cfg), nil
}

// LoadDefault loads the config from the platform's config file location.
func LoadDefault() (Config, error) {
	path, err := platform.ResolveConfigFile()
	if err != nil {
		return Default(), err
	}
	return Load(path)
}

func normalize(cfg Config) Config {
	defaults := Default()

	if strings.TrimSpace(cfg.Defaults.Model) == "" {
		cfg.Defaults.Model = defaults.Defaults.Model
	}
	if strings.TrimSpace(cfg.Defaults.Language) == "" {
		cfg.Defaults.Language = defaults.Defaults.Language
	}
	if strings.TrimSpace(cfg.Ollama.Model) == "" {
		cfg.Ollama.Model = defaults.Ollama.Model
	}
	if strings.TrimSpace(cfg.Ollama.BaseURL) == "" {
		cfg.Ollama.BaseURL = defaults.Ollama.BaseURL
	}

	return cfg
}
