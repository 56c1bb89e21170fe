package config

import (
	"time"

	"github.com/anataliocs/do-math/pkg/core/storage/dbconfig"
)

// ApplicationConfiguration is the client configuration.
type ApplicationConfiguration struct {
	Logger `yaml:",inline"`

	RPC             RPC                      `yaml:"RPC"`
	Contract        Contract                 `yaml:"Contract"`
	DBConfiguration dbconfig.DBConfiguration `yaml:"DBConfiguration"`
	Pprof           BasicService             `yaml:"Pprof"`
	Prometheus      BasicService             `yaml:"Prometheus"`
}

// Logger contains logger configuration.
type Logger struct {
	LogLevel string `yaml:"LogLevel"`
	LogPath  string `yaml:"LogPath"`
}

// RPC is the Stellar RPC node connection settings.
type RPC struct {
	URL string `yaml:"URL"`
	// Passphrase is the network passphrase, it's requested from the node if
	// empty.
	Passphrase string `yaml:"Passphrase"`
	// FriendbotURL is requested from the node if empty.
	FriendbotURL    string        `yaml:"FriendbotURL"`
	DialTimeout     time.Duration `yaml:"DialTimeout"`
	RequestTimeout  time.Duration `yaml:"RequestTimeout"`
	MaxConnsPerHost int           `yaml:"MaxConnsPerHost"`
}

// Contract selects the do_math contract deployment.
type Contract struct {
	// Version is the contract interface version, 1 or 2.
	Version int    `yaml:"Version"`
	Network string `yaml:"Network"`
	// ContractID overrides the known contract address for the network.
	ContractID string `yaml:"ContractID"`
	// PollInterval is the getTransaction polling interval.
	PollInterval time.Duration `yaml:"PollInterval"`
}
