package config

import (
	"fmt"
	"os"
	"strings"
)

const (
	DefaultEndpoint = "https://openrouter.ai/api/v1"
	DefaultModel    = "openai/gpt-4o-mini"
	DefaultReferer  = "https://github.com/vaultchat/vaultchat"
	DefaultTitle    = "vaultchat"
)

type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

type APIConfig struct {
	Endpoint string `toml:"endpoint"`
	Model    string `toml:"model"`
	Referer  string `toml:"referer"`
	Title    string `toml:"title"`
}

type UserConfig struct {
	API APIConfig `toml:"api"`
}

// Config is the merged runtime configuration. It never carries the API key;
// the key only lives in the OS keyring (see CredentialStore).
type Config struct {
	DataDirectory string
	Endpoint      string
	Model         string
	Referer       string
	Title         string
	Keybindings   *KeyBindingsConfig
}

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

func (c *Config) applyUserConfig(u *UserConfig) {
	if u.API.Endpoint != "" {
		c.Endpoint = u.API.Endpoint
	}
	if u.API.Model != "" {
		c.Model = u.API.Model
	}
	if u.API.Referer != "" {
		c.Referer = u.API.Referer
	}
	if u.API.Title != "" {
		c.Title = u.API.Title
	}
}

func (c *Config) applyEnvOverrides() {
	if endpoint := os.Getenv("VAULTCHAT_ENDPOINT"); endpoint != "" {
		c.Endpoint = endpoint
	}
	if model := os.Getenv("VAULTCHAT_MODEL"); model != "" {
		c.Model = model
	}
}

// CheckDebug reports whether VAULTCHAT_DEBUG asks for a debug log.
func CheckDebug() bool {
	debug := strings.ToLower(os.Getenv("VAULTCHAT_DEBUG"))
	return debug == "true" || debug == "1"
}

func defaultConfig() *Config {
	return &Config{
		DataDirectory: DefaultSystemConfig().DataDirectory,
		Endpoint:      DefaultEndpoint,
		Model:         DefaultModel,
		Referer:       DefaultReferer,
		Title:         DefaultTitle,
		Keybindings:   DefaultKeybindings(),
	}
}

// Load reads settings.toml and <data_dir>/config.toml, creating either from
// its template when missing, then applies VAULTCHAT_* overrides.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if dataDir := os.Getenv("VAULTCHAT_DATA_DIR"); dataDir != "" {
		cfg.DataDirectory = dataDir
	} else {
		systemCfg, err := LoadSystemConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load system config: %w", err)
		}
		if systemCfg.DataDirectory != "" {
			cfg.DataDirectory = systemCfg.DataDirectory
		}
	}

	dataDir := cfg.DataDir()
	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to prepare data directory: %w", err)
	}

	userCfg, err := LoadUserConfig(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	cfg.applyUserConfig(userCfg)
	cfg.applyEnvOverrides()

	kb, err := LoadKeybindings(dataDir)
	if err != nil {
		return nil, err
	}
	cfg.Keybindings = kb

	return cfg, nil
}
