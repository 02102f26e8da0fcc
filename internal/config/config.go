package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"photo-gallery/internal/utils"

	"gopkg.in/yaml.v3"
)

// Config holds the gallery service configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Data    DataConfig    `yaml:"data"`
	Hosting HostingConfig `yaml:"hosting"`
	Journal JournalConfig `yaml:"journal"`
	Gallery GalleryConfig `yaml:"gallery"`
	Logging LoggingConfig `yaml:"logging"`
}

type ServerConfig struct {
	Port      int    `yaml:"port"`
	StaticDir string `yaml:"static_dir"`
}

// DataConfig locates the published photo list.
// File is served at /gallery-data.json; URL is what the loader fetches and
// defaults to that route on this server.
type DataConfig struct {
	File string `yaml:"file"`
	URL  string `yaml:"url"`
}

// HostingConfig identifies the image-hosting account and upload target.
type HostingConfig struct {
	CloudName    string `yaml:"cloud_name"`
	UploadPreset string `yaml:"upload_preset"`
	APIBase      string `yaml:"api_base"`
}

// Configured reports whether uploads can be attempted at all.
func (h HostingConfig) Configured() bool {
	return strings.TrimSpace(h.CloudName) != "" && strings.TrimSpace(h.UploadPreset) != ""
}

// JournalConfig points at the sqlite upload journal. An empty path disables it.
type JournalConfig struct {
	Path string `yaml:"path"`
}

type GalleryConfig struct {
	Locale string `yaml:"locale"` // BCP 47 tag for title collation
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:      3001,
			StaticDir: "static",
		},
		Data: DataConfig{
			File: "gallery-data.json",
		},
		Hosting: HostingConfig{
			APIBase: "https://api.cloudinary.com/v1_1",
		},
		Journal: JournalConfig{
			Path: "uploads.db",
		},
		Gallery: GalleryConfig{
			Locale: "en",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads path (if non-empty) over the defaults, then applies .env and
// environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := utils.LoadEnv(); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) applyEnvOverrides() {
	utils.OverrideInt(&c.Server.Port, "PORT")
	utils.OverrideString(&c.Server.StaticDir, "STATIC_DIR")
	utils.OverrideString(&c.Data.File, "DATA_FILE")
	utils.OverrideString(&c.Data.URL, "DATA_URL")
	utils.OverrideString(&c.Hosting.CloudName, "CLOUDINARY_CLOUD_NAME")
	utils.OverrideString(&c.Hosting.UploadPreset, "CLOUDINARY_UPLOAD_PRESET")
	utils.OverrideString(&c.Hosting.APIBase, "CLOUDINARY_API_BASE")
	utils.OverrideString(&c.Gallery.Locale, "GALLERY_LOCALE")
	utils.OverrideString(&c.Logging.Level, "LOG_LEVEL")
	utils.OverrideString(&c.Logging.Format, "LOG_FORMAT")
	// An explicitly empty JOURNAL_PATH turns the journal off.
	c.Journal.Path = utils.GetEnv("JOURNAL_PATH", c.Journal.Path)
}

// Validate checks structural settings. Hosting identifiers are checked when an
// upload is attempted, not here.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Data.File == "" && c.Data.URL == "" {
		errs = append(errs, errors.New("data.file or data.url is required"))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q must be json or console", c.Logging.Format))
	}
	return errors.Join(errs...)
}

// DataURL is the URL the loader fetches.
func (c *Config) DataURL() string {
	if c.Data.URL != "" {
		return c.Data.URL
	}
	return fmt.Sprintf("http://127.0.0.1:%d/gallery-data.json", c.Server.Port)
}
