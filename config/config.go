// Package config holds the settings of a ballotbox node.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/vocdoni/ballotbox/log"
	"go.vocdoni.io/dvote/db"
)

// EnvPrefix is prepended to the upper-cased field names when reading the
// configuration from the environment, e.g. BALLOTBOX_API_PORT.
const EnvPrefix = "BALLOTBOX_"

const (
	DefaultAPIHost = "0.0.0.0"
	DefaultAPIPort = 9090
)

// Config is the node configuration.
type Config struct {
	DataDir        string
	DBType         string
	LogLevel       string
	LogOutput      string
	LogErrorFile   string
	APIHost        string
	APIPort        int
	MetricsEnabled bool
}

// Default returns the configuration used when nothing is overridden. The data
// directory lives under the user home, falling back to the working directory.
func Default() *Config {
	dataDir := ".ballotbox"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".ballotbox")
	}
	return &Config{
		DataDir:        dataDir,
		DBType:         db.TypePebble,
		LogLevel:       log.LogLevelInfo,
		LogOutput:      "stdout",
		APIHost:        DefaultAPIHost,
		APIPort:        DefaultAPIPort,
		MetricsEnabled: true,
	}
}

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory not set")
	}
	if c.DBType != db.TypePebble {
		return fmt.Errorf("unsupported database type %q", c.DBType)
	}
	switch c.LogLevel {
	case log.LogLevelDebug, log.LogLevelInfo, log.LogLevelWarn, log.LogLevelError:
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	if c.LogOutput == "" {
		return fmt.Errorf("log output not set")
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("invalid api port %d", c.APIPort)
	}
	return nil
}

// DBDir is the directory of the ledger database.
func (c *Config) DBDir() string {
	return filepath.Join(c.DataDir, "db")
}

// LoadEnv overrides the fields whose BALLOTBOX_* variable is set. lookup is
// usually os.LookupEnv.
func (c *Config) LoadEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"DATADIR":        &c.DataDir,
		"DB_TYPE":        &c.DBType,
		"LOG_LEVEL":      &c.LogLevel,
		"LOG_OUTPUT":     &c.LogOutput,
		"LOG_ERROR_FILE": &c.LogErrorFile,
		"API_HOST":       &c.APIHost,
	}
	for name, field := range strs {
		if v, ok := lookup(EnvPrefix + name); ok {
			*field = v
		}
	}
	if v, ok := lookup(EnvPrefix + "API_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sAPI_PORT: %w", EnvPrefix, err)
		}
		c.APIPort = port
	}
	if v, ok := lookup(EnvPrefix + "METRICS"); ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sMETRICS: %w", EnvPrefix, err)
		}
		c.MetricsEnabled = enabled
	}
	return nil
}
