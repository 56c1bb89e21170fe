/*
Package options contains a set of common CLI options and helper functions to use them.
*/
package options

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/anataliocs/do-math/cli/input"
	"github.com/anataliocs/do-math/pkg/config"
	"github.com/anataliocs/do-math/pkg/io"
	"github.com/anataliocs/do-math/pkg/rpcclient"
	"github.com/anataliocs/do-math/pkg/services/metrics"
	"github.com/anataliocs/do-math/pkg/wallet"
	"github.com/urfave/cli"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultTimeout is the default timeout for commands, it's enough to
// simulate, send and await a transaction with default validity.
const DefaultTimeout = 330 * time.Second

// RPCEndpointFlag is a long flag name for an RPC endpoint. It can be used to
// check for flag presence in the context.
const RPCEndpointFlag = "rpc-endpoint"

// RPC is a set of flags used for RPC connections (endpoint and timeout).
var RPC = []cli.Flag{
	cli.StringFlag{
		Name:  RPCEndpointFlag + ", r",
		Usage: "RPC node address (overrides configuration and " + config.EnvRPCURL + ")",
	},
	cli.DurationFlag{
		Name:  "timeout, s",
		Value: DefaultTimeout,
		Usage: "Timeout for the operation",
	},
}

// ConfigFile is a flag for commands that use configuration file.
var ConfigFile = cli.StringFlag{
	Name:  "config-file, c",
	Usage: "path to the configuration file (" + config.DefaultConfigPath + " is used if it exists)",
}

// Debug is a flag for commands that allow debug logging.
var Debug = cli.BoolFlag{
	Name:  "debug, d",
	Usage: "enable debug logging (LOTS of output, overrides configuration)",
}

// Account is a set of flags used to choose the signing account.
var Account = []cli.Flag{
	cli.StringFlag{
		Name:  "secret",
		Usage: "S… secret seed of the signing account (well-known test account is used if not set)",
	},
	cli.BoolFlag{
		Name:  "ask-secret",
		Usage: "read the secret seed of the signing account from the terminal",
	},
}

var errConflictingSecretFlags = errors.New("--secret flag conflicts with --ask-secret flag")

// GetTimeoutContext returns a context.Context with the default or a user-set timeout.
func GetTimeoutContext(ctx *cli.Context) (context.Context, func()) {
	dur := ctx.Duration("timeout")
	if dur == 0 {
		dur = DefaultTimeout
	}
	return context.WithTimeout(context.Background(), dur)
}

// GetConfigFromContext loads the configuration file given with --config-file
// (or the default one if it exists, or the built-in defaults), then applies
// environment variables and the endpoint flag on top of it.
func GetConfigFromContext(ctx *cli.Context) (config.Config, error) {
	var (
		cfg  = config.Default()
		path = ctx.String("config-file")
		err  error
	)
	if path == "" {
		if _, statErr := os.Stat(config.DefaultConfigPath); statErr == nil {
			path = config.DefaultConfigPath
		}
	}
	if path != "" {
		cfg, err = config.LoadFile(path)
		if err != nil {
			return config.Config{}, err
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	if endpoint := ctx.String(RPCEndpointFlag); endpoint != "" {
		cfg.ApplicationConfiguration.RPC.URL = endpoint
	}
	return cfg, nil
}

// GetRPCClient returns an initialized RPC client for the given configuration.
func GetRPCClient(gctx context.Context, cfg config.RPC, log *zap.Logger) (*rpcclient.Client, cli.ExitCoder) {
	if cfg.URL == "" {
		return nil, cli.NewExitError(fmt.Errorf("no RPC endpoint specified, use option '--%s', %s or configuration file", RPCEndpointFlag, config.EnvRPCURL), 1)
	}
	c, err := rpcclient.New(gctx, cfg.URL, rpcclient.Options{
		DialTimeout:     cfg.DialTimeout,
		RequestTimeout:  cfg.RequestTimeout,
		MaxConnsPerHost: cfg.MaxConnsPerHost,
		FriendbotURL:    cfg.FriendbotURL,
		Logger:          log,
	})
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	err = c.Init()
	if err != nil {
		c.Close()
		return nil, cli.NewExitError(err, 1)
	}
	return c, nil
}

// GetWallet returns the wallet for the secret given with --secret or read
// from the terminal with --ask-secret, nil is returned if neither is set.
func GetWallet(ctx *cli.Context) (*wallet.Wallet, error) {
	secret := ctx.String("secret")
	if secret != "" && ctx.Bool("ask-secret") {
		return nil, errConflictingSecretFlags
	}
	if ctx.Bool("ask-secret") {
		var err error
		secret, err = input.ReadSecret("Enter secret seed > ")
		if err != nil {
			return nil, fmt.Errorf("error reading secret: %w", err)
		}
	}
	if secret == "" {
		return nil, nil
	}
	return wallet.NewFromSecret(secret)
}

// HandleLoggingParams reads logging parameters.
// If a user selected debug level -- function enables it.
// If logPath is configured -- function creates a dir and a file for logging.
func HandleLoggingParams(debug bool, cfg config.ApplicationConfiguration) (*zap.Logger, *zap.AtomicLevel, error) {
	var (
		level = zapcore.InfoLevel
		err   error
	)
	if len(cfg.LogLevel) > 0 {
		level, err = zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, nil, fmt.Errorf("log setting: %w", err)
		}
	}
	if debug {
		level = zapcore.DebugLevel
	}

	cc := zap.NewProductionConfig()
	cc.DisableCaller = true
	cc.DisableStacktrace = true
	cc.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	cc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cc.Encoding = "console"
	cc.Level = zap.NewAtomicLevelAt(level)
	cc.Sampling = nil

	if logPath := cfg.LogPath; logPath != "" {
		if err := io.MakeDirForFile(logPath, "logger"); err != nil {
			return nil, nil, err
		}
		cc.OutputPaths = []string{logPath}
	}

	log, err := cc.Build()
	return log, &cc.Level, err
}

// StartServices starts Prometheus and pprof services if they're enabled, the
// function returned stops them.
func StartServices(cfg config.ApplicationConfiguration, log *zap.Logger) (func(), error) {
	var started []*metrics.Service
	stop := func() {
		for _, s := range started {
			s.ShutDown()
		}
	}
	for _, s := range []*metrics.Service{
		metrics.NewPrometheusService(cfg.Prometheus, log),
		metrics.NewPprofService(cfg.Pprof, log),
	} {
		if err := s.Start(); err != nil {
			stop()
			return nil, fmt.Errorf("failed to start %s service: %w", s.Name(), err)
		}
		started = append(started, s)
	}
	return stop, nil
}
