// Package config loads MindfulU settings from defaults, an optional
// mindfulu.yaml file, an optional .env file and MINDFULU_ environment variables.
//
// Priority (highest to lowest): bound CLI flags > environment variables >
// .env file > config file > defaults. Values from a .env file never override
// variables already present in the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read by MindfulU.
const EnvPrefix = "MINDFULU"

// Configuration keys.
const (
	KeyLogLevel      = "log-level"
	KeyLogFile       = "log-file"
	KeyTestMode      = "test-mode"
	KeyChatDelay     = "delays.chat"
	KeyJournalDelay  = "delays.journal"
	KeySignInDelay   = "delays.signin"
	KeyHTTPAddr      = "http.addr"
	KeyHistoryFile   = "shell.history-file"
	KeyExportFormat  = "export.format"
	KeyMarkdownStyle = "render.style"
)

// Delays are the simulated latencies of the three interaction kinds.
type Delays struct {
	Chat    time.Duration `yaml:"chat"`
	Journal time.Duration `yaml:"journal"`
	SignIn  time.Duration `yaml:"signin"`
}

// DefaultDelays returns the latencies the companion app uses out of the box.
func DefaultDelays() Delays {
	return Delays{
		Chat:    1500 * time.Millisecond,
		Journal: 2000 * time.Millisecond,
		SignIn:  1000 * time.Millisecond,
	}
}

// Config is the resolved MindfulU configuration.
type Config struct {
	LogLevel      string
	LogFile       string
	TestMode      bool
	Delays        Delays
	HTTPAddr      string
	HistoryFile   string
	ExportFormat  string
	MarkdownStyle string
	// ConfigFile is the config file that was read, if any.
	ConfigFile string
}

// New returns a viper instance with MindfulU defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	d := DefaultDelays()
	v.SetDefault(KeyLogLevel, "")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyTestMode, false)
	v.SetDefault(KeyChatDelay, d.Chat)
	v.SetDefault(KeyJournalDelay, d.Journal)
	v.SetDefault(KeySignInDelay, d.SignIn)
	v.SetDefault(KeyHTTPAddr, ":8080")
	v.SetDefault(KeyHistoryFile, defaultHistoryFile())
	v.SetDefault(KeyExportFormat, "yaml")
	v.SetDefault(KeyMarkdownStyle, "auto")
}

// Options control where Load looks for files.
type Options struct {
	// ConfigFile is an explicit config file. When empty, mindfulu.yaml is
	// searched in the working directory and the user config directory.
	ConfigFile string
	// EnvFile is a .env file to load. Missing files are ignored.
	EnvFile string
}

// Load reads the optional .env and config files into v and resolves a Config.
func Load(v *viper.Viper, opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		if err := loadDotEnv(opts.EnvFile); err != nil {
			return nil, err
		}
	}

	if err := readConfigFile(v, opts.ConfigFile); err != nil {
		return nil, err
	}

	cfg := &Config{
		LogLevel:      v.GetString(KeyLogLevel),
		LogFile:       v.GetString(KeyLogFile),
		TestMode:      v.GetBool(KeyTestMode),
		HTTPAddr:      v.GetString(KeyHTTPAddr),
		HistoryFile:   v.GetString(KeyHistoryFile),
		ExportFormat:  strings.ToLower(v.GetString(KeyExportFormat)),
		MarkdownStyle: v.GetString(KeyMarkdownStyle),
		ConfigFile:    v.ConfigFileUsed(),
		Delays: Delays{
			Chat:    v.GetDuration(KeyChatDelay),
			Journal: v.GetDuration(KeyJournalDelay),
			SignIn:  v.GetDuration(KeySignInDelay),
		},
	}

	if cfg.TestMode {
		cfg.Delays = Delays{}
		cfg.HistoryFile = ""
		cfg.MarkdownStyle = "notty"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the resolved values are usable.
func (c *Config) Validate() error {
	if c.Delays.Chat < 0 || c.Delays.Journal < 0 || c.Delays.SignIn < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	switch c.ExportFormat {
	case "yaml", "json":
	default:
		return fmt.Errorf("invalid export format %q (expected yaml or json)", c.ExportFormat)
	}
	if c.HTTPAddr == "" {
		return fmt.Errorf("http address must not be empty")
	}
	return nil
}

func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName("mindfulu")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "mindfulu"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// loadDotEnv exports the values of a .env file that are not already set.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load .env file %s: %w", path, err)
	}
	return nil
}

func defaultHistoryFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "mindfulu", "history")
}
