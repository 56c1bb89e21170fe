package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/anataliocs/do-math/pkg/core/storage/dbconfig"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the default path to the config file.
const DefaultConfigPath = "./config/testnet.yml"

// Environment variables overriding the configuration.
const (
	EnvRPCURL       = "PUBLIC_RPC_URL"
	EnvPassphrase   = "PUBLIC_PASSPHRASE"
	EnvFriendbotURL = "FRIENDBOT_URL"
)

// Version is the version of the client, set at build time.
var Version string

// Config is the top-level configuration.
type Config struct {
	ApplicationConfiguration ApplicationConfiguration `yaml:"ApplicationConfiguration"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		ApplicationConfiguration: ApplicationConfiguration{
			RPC: RPC{
				DialTimeout:    5 * time.Second,
				RequestTimeout: 30 * time.Second,
			},
			Contract: Contract{
				Version: 2,
				Network: "testnet",
			},
			DBConfiguration: dbconfig.DBConfiguration{
				Type: dbconfig.InMemoryDB,
			},
		},
	}
}

// LoadFile loads config from the provided path on top of the defaults.
func LoadFile(configPath string) (Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return Config{}, fmt.Errorf("config '%s' doesn't exist", configPath)
	}

	configData, err := os.ReadFile(configPath)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read config: %w", err)
	}

	config := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(configData))
	decoder.KnownFields(true)
	err = decoder.Decode(&config)
	if err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	err = config.Validate()
	if err != nil {
		return Config{}, err
	}
	return config, nil
}

// ApplyEnv overrides RPC settings with PUBLIC_RPC_URL, PUBLIC_PASSPHRASE and
// FRIENDBOT_URL environment variables if they're set, lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	rpc := &c.ApplicationConfiguration.RPC
	for env, dst := range map[string]*string{
		EnvRPCURL:       &rpc.URL,
		EnvPassphrase:   &rpc.Passphrase,
		EnvFriendbotURL: &rpc.FriendbotURL,
	} {
		if v, ok := lookup(env); ok && v != "" {
			*dst = v
		}
	}
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	a := c.ApplicationConfiguration
	if a.Contract.Version != 1 && a.Contract.Version != 2 {
		return fmt.Errorf("unsupported contract version %d", a.Contract.Version)
	}
	if a.Contract.Network == "" {
		return errors.New("no contract network specified")
	}
	if a.RPC.DialTimeout < 0 || a.RPC.RequestTimeout < 0 {
		return errors.New("negative RPC timeout")
	}
	return nil
}
