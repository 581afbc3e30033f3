package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed config.toml.sample
var configTemplate string

// Defaults applied when the config file is absent or leaves a field empty.
const (
	DefaultBaseURL           = "https://conscienciograma.onrender.com"
	DefaultModel             = "gpt-5-nano"
	DefaultTemperature       = 0.3
	DefaultMaxResultsDisplay = 10
	DefaultVectorStore       = "ALLWV"
	DefaultListenAddr        = ":8080"
	DefaultTimeout           = 30 * time.Second
)

// DefaultLexicalSources are the collections a lexical search queries when
// the caller picks none.
var DefaultLexicalSources = []string{"LO", "DAC", "CCG", "EC"}

type Config struct {
	BaseURL           string   `toml:"base_url"`
	Timeout           Duration `toml:"timeout"`
	Model             string   `toml:"model"`
	Temperature       float64  `toml:"temperature"`
	MaxResultsDisplay int      `toml:"max_results_display"`
	VectorStore       string   `toml:"vector_store"`
	ListenAddr        string   `toml:"listen_addr"`
	Debug             bool     `toml:"debug"`

	// LexicalSources overrides the collections queried by default.
	LexicalSources []string `toml:"lexical_sources,omitempty"`

	// Instructions maps preset names to system instructions sent with LLM
	// queries. The "ragbot" and "mancia" presets are consulted by the
	// commands of the same name.
	Instructions map[string]string `toml:"instructions,omitempty"`
}

type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func GetDefaultConfig() *Config {
	return &Config{
		BaseURL:           DefaultBaseURL,
		Timeout:           Duration{DefaultTimeout},
		Model:             DefaultModel,
		Temperature:       DefaultTemperature,
		MaxResultsDisplay: DefaultMaxResultsDisplay,
		VectorStore:       DefaultVectorStore,
		ListenAddr:        DefaultListenAddr,
		Instructions:      make(map[string]string),
	}
}

func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Timeout.Duration <= 0 {
		c.Timeout = Duration{DefaultTimeout}
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}
	if c.MaxResultsDisplay <= 0 {
		c.MaxResultsDisplay = DefaultMaxResultsDisplay
	}
	if c.VectorStore == "" {
		c.VectorStore = DefaultVectorStore
	}
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.Instructions == nil {
		c.Instructions = make(map[string]string)
	}
}

// Sources returns the lexical source list, falling back to the default
// collection set.
func (c *Config) Sources() []string {
	if len(c.LexicalSources) > 0 {
		return c.LexicalSources
	}
	out := make([]string, len(DefaultLexicalSources))
	copy(out, DefaultLexicalSources)
	return out
}

// Instruction returns the named instruction preset, or empty when unset.
func (c *Config) Instruction(name string) string {
	return c.Instructions[name]
}

func (c *Config) SaveConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

// SaveTemplateConfig writes the commented sample config, used by the
// init command to seed a fresh setup.
func SaveTemplateConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return os.WriteFile(configPath, []byte(configTemplate), 0644)
}

// GetConfigDir returns the configuration directory for consai
func GetConfigDir() (string, error) {
	// Use XDG_CONFIG_HOME if set, otherwise use ~/.config
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	consaiConfigDir := filepath.Join(configDir, "consai")

	// Create the directory if it doesn't exist
	if err := os.MkdirAll(consaiConfigDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory %s: %w", consaiConfigDir, err)
	}

	return consaiConfigDir, nil
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// GetStateDir returns the state directory used for the chat session file.
func GetStateDir() (string, error) {
	// Use XDG_STATE_HOME if set, otherwise use ~/.local/state
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		stateDir = filepath.Join(homeDir, ".local", "state")
	}

	consaiStateDir := filepath.Join(stateDir, "consai")

	if err := os.MkdirAll(consaiStateDir, 0755); err != nil {
		return "", fmt.Errorf("creating state directory %s: %w", consaiStateDir, err)
	}

	return consaiStateDir, nil
}
