package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sant0-9/reportgenie/internal/errs"
	"github.com/sant0-9/reportgenie/internal/style"
)

type Config struct {
	Provider string `yaml:"provider"`
	APIKey   string `yaml:"api_key,omitempty"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url,omitempty"`

	Stream      bool          `yaml:"stream"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
	RateLimit   int           `yaml:"rate_limit"`
	Retries     int           `yaml:"retries"`

	Renderer    RendererConfig    `yaml:"renderer"`
	Stylesheets map[string]string `yaml:"stylesheets,omitempty"`
	OutputDir   string            `yaml:"output_dir,omitempty"`

	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

type RendererConfig struct {
	Engine  string        `yaml:"engine"`
	Binary  string        `yaml:"binary,omitempty"`
	Timeout time.Duration `yaml:"timeout"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
}

const (
	EngineNative      = "native"
	EngineWeasyPrint  = "weasyprint"
	EngineWkhtmltopdf = "wkhtmltopdf"
	EngineAuto        = "auto"
)

func DefaultConfig() *Config {
	return &Config{
		Provider:    "gemini",
		Model:       "gemini-1.5-flash",
		Stream:      true,
		Temperature: 0.3,
		MaxTokens:   8192,
		Timeout:     2 * time.Minute,
		RateLimit:   15,
		Renderer: RendererConfig{
			Engine:  EngineNative,
			Timeout: time.Minute,
		},
		OutputDir: ".",
		Server: ServerConfig{
			Addr: ":8080",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func ConfigDir() (string, error) {
	if dir := os.Getenv("REPORTGENIE_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "reportgenie"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func Exists() bool {
	path, err := ConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Load reads the default config file. It returns nil, nil when no file exists.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads a config file over the defaults. It returns nil, nil when the
// file does not exist.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// ApplyEnv lets the environment override the file. REPORTGENIE_API_KEY wins
// over the provider's own variable, which only fills an empty key.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("REPORTGENIE_PROVIDER"); v != "" {
		c.Provider = v
	}
	if v := os.Getenv("REPORTGENIE_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("REPORTGENIE_BASE_URL"); v != "" {
		c.BaseURL = v
	}

	if v := os.Getenv("REPORTGENIE_API_KEY"); v != "" {
		c.APIKey = v
		return
	}
	if c.APIKey != "" {
		return
	}
	if p := GetProvider(c.Provider); p != nil {
		for _, name := range p.EnvVars {
			if v := os.Getenv(name); v != "" {
				c.APIKey = v
				return
			}
		}
	}
}

// Validate checks that the configured provider can be used
func (c *Config) Validate() error {
	p := GetProvider(c.Provider)
	if p == nil {
		return fmt.Errorf("unknown provider: %s", c.Provider)
	}

	if p.NeedsAPIKey && strings.TrimSpace(c.APIKey) == "" {
		hint := "run 'reportgenie setup'"
		if len(p.EnvVars) > 0 {
			hint += " or set " + p.EnvVars[0]
		}
		return errs.New(errs.KindMissingCredential,
			fmt.Sprintf("%s requires an API key (%s)", p.Name, hint))
	}

	if p.ID == "custom" && c.BaseURL == "" {
		return fmt.Errorf("custom provider requires base_url")
	}

	switch c.Renderer.Engine {
	case "", EngineNative, EngineWeasyPrint, EngineWkhtmltopdf, EngineAuto:
	default:
		return fmt.Errorf("unknown renderer engine: %s", c.Renderer.Engine)
	}

	for name := range c.Stylesheets {
		if _, err := style.Parse(name); err != nil {
			return fmt.Errorf("stylesheets: %w", err)
		}
	}

	return nil
}

// Stylesheet returns the CSS for a style, using the configured override file
// when one is set. Override keys match any name style.Parse accepts.
func (c *Config) Stylesheet(info style.Info) (string, error) {
	path := c.Stylesheets[info.Slug]
	if path == "" {
		for name, p := range c.Stylesheets {
			if s, err := style.Parse(name); err == nil && s == info.Style {
				path = p
				break
			}
		}
	}
	if path == "" {
		return info.Stylesheet, nil
	}

	data, err := os.ReadFile(expandHome(path))
	if err != nil {
		return "", fmt.Errorf("stylesheet for %s: %w", info.Slug, err)
	}
	return string(data), nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
