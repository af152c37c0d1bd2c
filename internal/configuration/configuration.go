package configuration

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig represents the complete application configuration.
type AppConfig struct {
	// Logger — logger component configuration
	Logger LoggerConfig `mapstructure:"logger"`
	// Server — HTTP server configuration
	Server ServerConfig `mapstructure:"server"`
	// Model — paths to the scaler and model artifacts
	Model ModelConfig `mapstructure:"model"`
	// Messages — probability to message rules
	Messages MessagesConfig `mapstructure:"messages"`
}

// LoggerConfig defines logging settings.
type LoggerConfig struct {
	// Level — log level: debug, info, warn, warning, error.
	// Value is case-insensitive but checked in lowercase.
	Level string `mapstructure:"level"`
	// File — optional path of a rotating log file. Logs always go to stdout.
	File string `mapstructure:"file"`
	// MaxSize — maximal log file size in megabytes before rotation
	MaxSize int `mapstructure:"max_size"`
	// MaxBackups — number of rotated files to keep
	MaxBackups int `mapstructure:"max_backups"`
}

// ServerConfig contains HTTP server parameters.
type ServerConfig struct {
	// Port — TCP port the server listens on, on all interfaces.
	Port string `mapstructure:"port"`
	// ReadTimeout and WriteTimeout bound a single connection exchange.
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// RequestTimeout bounds the scoring of a single prediction request.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// ModelConfig points at the externally produced artifacts loaded at startup.
type ModelConfig struct {
	// Path — model artifact (MODEL_PATH)
	Path string `mapstructure:"path"`
	// Scaler — scaler artifact (SCALER_PATH)
	Scaler string `mapstructure:"scaler"`
	// URL — optional TensorFlow Serving predict endpoint used instead of the model artifact
	URL string `mapstructure:"url"`
	// Timeout — timeout of a single call to URL
	Timeout time.Duration `mapstructure:"timeout"`
}

// MessagesConfig selects the probability to message rules.
type MessagesConfig struct {
	// Rules — path to a YAML rules file. Empty means the built-in table.
	Rules string `mapstructure:"rules"`
}

// Address returns the listen address of the server.
func (n *ServerConfig) Address() string {
	return ":" + n.Port
}

// Validate checks the correctness of the entire application configuration.
// Calls validation for each nested structure and returns the first detected error.
func (c *AppConfig) Validate() error {
	if err := c.Logger.Validate(); err != nil {
		return err
	}

	if err := c.Server.Validate(); err != nil {
		return err
	}

	if err := c.Model.Validate(); err != nil {
		return err
	}

	return nil
}

// Validate checks the correctness of the logger configuration.
// Supported values: debug, info, warn, warning, error (case-insensitive).
func (l *LoggerConfig) Validate() error {
	if l.Level == "" {
		return errors.New("logger.level: must be specified")
	}

	valid := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !valid[strings.ToLower(l.Level)] {
		return fmt.Errorf("logger.level: unsupported level '%s'", l.Level)
	}

	if l.MaxSize < 0 || l.MaxBackups < 0 {
		return errors.New("logger: max_size and max_backups must not be negative")
	}

	return nil
}

// Validate checks the correctness of the server configuration.
func (n *ServerConfig) Validate() error {
	port, err := strconv.Atoi(n.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("server.port: invalid port '%s'", n.Port)
	}

	if n.ReadTimeout <= 0 || n.WriteTimeout <= 0 {
		return errors.New("server: read and write timeouts must be positive")
	}

	if n.RequestTimeout <= 0 {
		return errors.New("server.request_timeout: must be positive")
	}

	return nil
}

// Validate checks that the scaler and either the model artifact or a model server are set.
func (m *ModelConfig) Validate() error {
	if m.URL == "" && m.Path == "" {
		return errors.New("model.path: must be specified")
	}

	if m.URL != "" {
		if u, err := url.Parse(m.URL); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("model.url: invalid URL '%s'", m.URL)
		}
		if m.Timeout <= 0 {
			return errors.New("model.timeout: must be positive")
		}
	}

	if m.Scaler == "" {
		return errors.New("model.scaler: must be specified")
	}

	return nil
}

// envBindings maps configuration keys to the environment variables that override them.
var envBindings = map[string]string{
	"model.path":             "MODEL_PATH",
	"model.scaler":           "SCALER_PATH",
	"model.url":              "MODEL_URL",
	"server.port":            "PORT",
	"server.request_timeout": "REQUEST_TIMEOUT",
	"logger.level":           "LOG_LEVEL",
	"logger.file":            "LOG_FILE",
	"messages.rules":         "MESSAGES_PATH",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_timeout", 3*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.request_timeout", 5*time.Second)
	v.SetDefault("model.path", "diabetes.h5")
	v.SetDefault("model.scaler", "scaler.pkl")
	v.SetDefault("model.url", "")
	v.SetDefault("model.timeout", 2*time.Second)
	v.SetDefault("messages.rules", "")
}

// LoadConfig loads configuration using Viper.
// Built-in defaults are overridden by the optional YAML file at configPath,
// which in turn is overridden by environment variables (MODEL_PATH, SCALER_PATH, PORT, ...).
//
// Returns a pointer to AppConfig or an error if:
// - the file is given but not found or inaccessible
// - the configuration has invalid format
// - one of the sections fails validation
func LoadConfig(configPath string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", env, err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}
