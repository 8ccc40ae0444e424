package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/0xpanoramix/flashbots-relay/pkg/log"
	"github.com/0xpanoramix/flashbots-relay/pkg/rpc"
	"github.com/0xpanoramix/flashbots-relay/pkg/sign"
)

const (
	configDirPathEnv     = "RELAY_CONFIG_DIR_PATH"
	defaultConfigDirPath = "."
)

type TransportKind string

const (
	TransportHTTP     TransportKind = "http"
	TransportFastHTTP TransportKind = "fasthttp"
)

// HistoryConfig selects the submission journal database.
//
// For sqlite, DSN is a file path. For postgres, DSN is a connection string.
type HistoryConfig struct {
	Driver string `env:"HISTORY_DB_DRIVER" env-default:"sqlite"`
	DSN    string `env:"HISTORY_DB_DSN" env-default:"relay-history.db"`
}

// Config represents the overall application configuration
type Config struct {
	Endpoint        string        `env:"RELAY_ENDPOINT" env-default:"https://relay.flashbots.net"`
	PrivateKeyHex   string        `env:"RELAY_PRIVATE_KEY"`
	Transport       TransportKind `env:"RELAY_TRANSPORT" env-default:"http"`
	Timeout         time.Duration `env:"RELAY_TIMEOUT" env-default:"10s"`
	MetricsTextfile string        `env:"METRICS_TEXTFILE"`

	History HistoryConfig
	Log     log.Config

	// dotEnvPath is the .env file that was loaded, empty if none was found.
	dotEnvPath string
}

// LoadConfig reads an optional .env file from RELAY_CONFIG_DIR_PATH and then
// the process environment. Variables already set in the environment win.
func LoadConfig() (*Config, error) {
	configDirPath := os.Getenv(configDirPathEnv)
	if configDirPath == "" {
		configDirPath = defaultConfigDirPath
	}

	var conf Config
	dotEnvPath := filepath.Join(configDirPath, ".env")
	if err := godotenv.Load(dotEnvPath); err == nil {
		conf.dotEnvPath = dotEnvPath
	}

	if err := cleanenv.ReadEnv(&conf); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}

	switch conf.Transport {
	case TransportHTTP, TransportFastHTTP:
	default:
		return nil, fmt.Errorf("invalid RELAY_TRANSPORT value: %q", conf.Transport)
	}
	if conf.Timeout <= 0 {
		return nil, fmt.Errorf("invalid RELAY_TIMEOUT value: %s", conf.Timeout)
	}

	return &conf, nil
}

// Signer builds the searcher signer from RELAY_PRIVATE_KEY.
func (c *Config) Signer() (*sign.EthereumSigner, error) {
	if c.PrivateKeyHex == "" {
		return nil, fmt.Errorf("%w: RELAY_PRIVATE_KEY environment variable is required", sign.ErrInvalidKey)
	}
	return sign.NewEthereumSigner(c.PrivateKeyHex)
}

// NewTransport returns the configured relay transport. Timeouts are applied
// per call through the context.
func (c *Config) NewTransport() rpc.Transport {
	if c.Transport == TransportFastHTTP {
		return rpc.NewFastHTTPTransport(nil)
	}
	return rpc.NewHTTPTransport(nil)
}
