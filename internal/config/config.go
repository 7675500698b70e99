// Package config provides functionality for managing configuration options
// for the application using command-line flags, a config file and
// environment variables.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage drivers understood by the server.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Duration is a time.Duration written as "90s", "1h" in flags and files.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"address" yaml:"address"`

	// Driver selects the secret repository: "postgres" or "sqlite".
	Driver string `json:"driver" yaml:"driver"`

	// DatabaseDSN holds the PostgreSQL connection string.
	DatabaseDSN string `json:"database_dsn" yaml:"database_dsn"`

	// SQLitePath is the SQLite database file.
	SQLitePath string `json:"sqlite_path" yaml:"sqlite_path"`

	// TLS material of the server and the CA that signs client certificates.
	CertFile string `json:"cert_file" yaml:"cert_file"`
	KeyFile  string `json:"key_file" yaml:"key_file"`
	CAFile   string `json:"ca_file" yaml:"ca_file"`

	// LogLevel is the zap level name.
	LogLevel string `json:"log_level" yaml:"log_level"`

	// CleanInterval and Retention drive the soft-delete cleaner.
	CleanInterval Duration `json:"clean_interval" yaml:"clean_interval"`
	Retention     Duration `json:"retention" yaml:"retention"`

	// Config is the path to the Config file.
	Config string `json:"-" yaml:"-"`
}

func newFlagSet(o *Options) *flag.FlagSet {
	fs := flag.NewFlagSet("secretkeeper", flag.ContinueOnError)
	fs.StringVar(&o.Port, "a", "localhost:8080", "run on ip:port server")
	fs.StringVar(&o.Driver, "driver", DriverSQLite, "storage driver: postgres | sqlite")
	fs.StringVar(&o.DatabaseDSN, "d", "", "postgres address")
	fs.StringVar(&o.SQLitePath, "sqlite", "secrets.db", "sqlite database file")
	fs.StringVar(&o.CertFile, "cert", "certs/server.crt", "server TLS certificate")
	fs.StringVar(&o.KeyFile, "key", "certs/server.key", "server TLS key")
	fs.StringVar(&o.CAFile, "ca", "certs/ca.crt", "CA that signs client certificates")
	fs.StringVar(&o.LogLevel, "log-level", "info", "log level")
	o.CleanInterval = Duration(time.Hour)
	o.Retention = Duration(30 * 24 * time.Hour)
	fs.TextVar(&o.CleanInterval, "clean-interval", o.CleanInterval, "soft-delete cleaner interval")
	fs.TextVar(&o.Retention, "retention", o.Retention, "how long deleted secrets are kept")
	fs.StringVar(&o.Config, "config", "config.json", "path to config file")
	fs.StringVar(&o.Config, "c", "config.json", "path to config file (shorthand)")
	return fs
}

// Load parses args, then the config file, then environment variables, each
// overriding the previous one. A missing config file is ignored.
func Load(args []string) (*Options, error) {
	options := &Options{}
	if err := newFlagSet(options).Parse(args); err != nil {
		return nil, err
	}

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if err := readFile(options.Config, options); err != nil {
			return nil, err
		}
	}

	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Port = serverAddress
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
		options.Driver = DriverPostgres
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		options.LogLevel = level
	}

	switch options.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unknown storage driver %q", options.Driver)
	}
	return options, nil
}

// readFile merges the JSON or YAML file at path into o.
func readFile(path string, o *Options) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error while reading config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, o)
	default:
		err = json.Unmarshal(data, o)
	}
	if err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	return nil
}

// Parse loads the configuration from the process arguments and environment.
// It exits the process on invalid configuration.
func Parse() *Options {
	options, err := Load(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return options
}
