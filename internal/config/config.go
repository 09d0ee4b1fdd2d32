package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all runtime configuration.
type Config struct {
	// Database session
	DBUsername     string `koanf:"personal_data_db_username"`
	DBPassword     string `koanf:"personal_data_db_password"`
	DBPasswordFile string `koanf:"personal_data_db_password_file"`
	DBHost         string `koanf:"personal_data_db_host"`
	DBName         string `koanf:"personal_data_db_name"`

	// Operational logging (stderr). The user_data logger is fixed at INFO.
	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`
}

// Database is the set of parameters needed to open a database session.
type Database struct {
	Username string
	Password string
	Host     string
	Name     string
}

// Error lists every problem found while validating configuration.
type Error struct {
	Problems []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d configuration error(s):\n  - %s", len(e.Problems), strings.Join(e.Problems, "\n  - "))
}

// defaults is the lowest-priority layer. The database name has no default.
var defaults = map[string]any{
	"personal_data_db_username":      "root",
	"personal_data_db_password":      "",
	"personal_data_db_password_file": "",
	"personal_data_db_host":          "localhost",
	"personal_data_db_name":          "",
	"log_level":                      "info",
	"log_format":                     "json",
}

// Load reads configuration from (lowest → highest priority):
//  1. Built-in defaults
//  2. YAML file at CONFIG_FILE env var path (if set)
//  3. Environment variables (always highest priority)
//
// A missing PERSONAL_DATA_DB_NAME is not an error here; it is reported by
// Database.Validate when a connection is actually requested.
func Load() (*Config, error) {
	cfg, problems, err := load()
	if err != nil {
		return nil, err
	}
	problems = append(problems, cfg.validate()...)
	if len(problems) > 0 {
		return nil, &Error{Problems: problems}
	}
	return cfg, nil
}

// LoadDatabase reads the same layers as Load but checks only the database
// settings, so a bad LOG_LEVEL or LOG_FORMAT does not block a connection.
func LoadDatabase() (Database, error) {
	cfg, problems, err := load()
	if err != nil {
		return Database{}, err
	}
	d := cfg.Database()
	if err := d.Validate(); err != nil {
		var cfgErr *Error
		if errors.As(err, &cfgErr) {
			problems = append(problems, cfgErr.Problems...)
		}
	}
	if len(problems) > 0 {
		return Database{}, &Error{Problems: problems}
	}
	return d, nil
}

// load merges every layer and resolves the password file. Problems with
// the password file are returned alongside the config.
func load() (*Config, []string, error) {
	k := koanf.New(".")

	// Layer 1: defaults.
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, nil, fmt.Errorf("config: load defaults: %w", err)
	}

	// Layer 2: optional YAML file.
	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, nil, fmt.Errorf("config: load file %s: %w", cfgFile, err)
		}
	}

	// Layer 3: environment variables.
	// Transform: "PERSONAL_DATA_DB_HOST" → "personal_data_db_host".
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, nil, fmt.Errorf("config: load env: %w", err)
	}

	cfg := &Config{}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	cfg.LogLevel = strings.TrimSpace(strings.ToLower(cfg.LogLevel))
	cfg.LogFormat = strings.TrimSpace(strings.ToLower(cfg.LogFormat))

	var problems []string

	// Docker secrets: PERSONAL_DATA_DB_PASSWORD_FILE is only consulted when
	// the password itself is empty.
	if cfg.DBPassword == "" && cfg.DBPasswordFile != "" {
		data, err := os.ReadFile(cfg.DBPasswordFile)
		if err != nil {
			problems = append(problems, fmt.Sprintf("PERSONAL_DATA_DB_PASSWORD_FILE unreadable: %v", err))
		} else {
			cfg.DBPassword = strings.TrimSpace(string(data))
		}
	}

	return cfg, problems, nil
}

func (c *Config) validate() []string {
	var errs []string

	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, "LOG_LEVEL must be one of trace, debug, info, warn, error")
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, "LOG_FORMAT must be json or text")
	}

	return errs
}

// Database returns the connection parameters.
func (c *Config) Database() Database {
	return Database{
		Username: c.DBUsername,
		Password: c.DBPassword,
		Host:     c.DBHost,
		Name:     c.DBName,
	}
}

// Validate reports a configuration error when the database name is missing.
func (d Database) Validate() error {
	if d.Name == "" {
		return &Error{Problems: []string{"PERSONAL_DATA_DB_NAME is required"}}
	}
	return nil
}
