/*
Package contract implements do_math contract invocation commands.
*/
package contract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/anataliocs/do-math/cli/cmdargs"
	"github.com/anataliocs/do-math/cli/options"
	"github.com/anataliocs/do-math/pkg/config"
	"github.com/anataliocs/do-math/pkg/core/storage"
	"github.com/anataliocs/do-math/pkg/rpcclient"
	"github.com/anataliocs/do-math/pkg/rpcclient/assembled"
	"github.com/anataliocs/do-math/pkg/rpcclient/contract"
	"github.com/anataliocs/do-math/pkg/rpcclient/domath"
	"github.com/anataliocs/do-math/pkg/services/funding"
	"github.com/anataliocs/do-math/pkg/smartcontract/spec"
	"github.com/anataliocs/do-math/pkg/txstore"
	"github.com/anataliocs/do-math/pkg/wallet"
	"github.com/google/uuid"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

// NewCommands returns 'contract' command.
func NewCommands() []cli.Command {
	var commonFlags = append([]cli.Flag{options.ConfigFile, options.Debug}, options.RPC...)
	var signFlags = append(commonFlags, options.Account...)
	var invokeFlags = append([]cli.Flag{
		cli.StringFlag{
			Name:  "a",
			Usage: "first operand (decimal 128-bit signed integer)",
		},
		cli.StringFlag{
			Name:  "b",
			Usage: "second operand (decimal 128-bit signed integer)",
		},
		cli.StringFlag{
			Name:  "source",
			Usage: "G… source address passed to the contract (signing account by default)",
		},
		cli.StringFlag{
			Name:  "sac",
			Usage: "optional C… Stellar asset contract address (contract version 2 only)",
		},
		cli.Int64Flag{
			Name:  "fee",
			Usage: "base inclusion fee in stroops",
		},
		cli.Int64Flag{
			Name:  "tx-timeout",
			Usage: "transaction validity time in seconds",
		},
		cli.BoolFlag{
			Name:  "send",
			Usage: "sign, send and await the transaction (only simulate otherwise)",
		},
		cli.BoolFlag{
			Name:  "save",
			Usage: "save the simulated transaction to finish it later with 'resume'",
		},
		cli.BoolFlag{
			Name:  "force",
			Usage: "sign and send even if the call is read-only",
		},
	}, signFlags...)
	return []cli.Command{{
		Name:  "contract",
		Usage: "do_math contract invocation",
		Subcommands: []cli.Command{
			{
				Name:   "fund",
				Usage:  "fund the signing account via friendbot if it doesn't exist",
				Action: fund,
				Flags:  signFlags,
			},
			{
				Name:      "invoke",
				Usage:     "invoke do_math",
				UsageText: "do-math contract invoke --a <number> --b <number> [--source <address>] [--sac <address>] [--send | --save] [--secret <seed> | --ask-secret]",
				Description: `Builds and simulates do_math invocation printing the simulated result.
   With --send the transaction is signed, sent and awaited. With --save it's
   stored to be sent later with 'resume' command. The well-known test account
   (funded via friendbot if needed) is used unless --secret or --ask-secret
   is given.`,
				Action: invoke,
				Flags:  invokeFlags,
			},
			{
				Name:      "resume",
				Usage:     "finish saved transaction",
				UsageText: "do-math contract resume <id> [--secret <seed> | --ask-secret]",
				Action:    resume,
				Flags:     append([]cli.Flag{cli.BoolFlag{Name: "force", Usage: "sign and send even if the call is read-only"}}, signFlags...),
			},
			{
				Name:   "pending",
				Usage:  "list saved transactions",
				Action: pending,
				Flags:  []cli.Flag{options.ConfigFile, options.Debug},
			},
		},
	}}
}

// environment is the set of components commands use.
type environment struct {
	cfg   config.ApplicationConfiguration
	log   *zap.Logger
	rpc   *rpcclient.Client
	db    storage.Store
	store *txstore.Store
	stop  func()
}

func newEnvironment(gctx context.Context, ctx *cli.Context, needRPC bool) (*environment, cli.ExitCoder) {
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	e := &environment{cfg: cfg.ApplicationConfiguration, stop: func() {}}
	e.log, _, err = options.HandleLoggingParams(ctx.Bool("debug"), e.cfg)
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	e.db, err = storage.NewStore(e.cfg.DBConfiguration)
	if err != nil {
		e.Close()
		return nil, cli.NewExitError(fmt.Errorf("failed to open pending transaction store: %w", err), 1)
	}
	e.store = txstore.New(e.db)
	if !needRPC {
		return e, nil
	}
	e.stop, err = options.StartServices(e.cfg, e.log)
	if err != nil {
		e.stop = func() {}
		e.Close()
		return nil, cli.NewExitError(err, 1)
	}
	var ec cli.ExitCoder
	e.rpc, ec = options.GetRPCClient(gctx, e.cfg.RPC, e.log)
	if ec != nil {
		e.Close()
		return nil, ec
	}
	return e, nil
}

// Close releases everything environment holds.
func (e *environment) Close() {
	if e.rpc != nil {
		e.rpc.Close()
	}
	e.stop()
	if e.db != nil {
		if err := e.db.Close(); err != nil {
			e.log.Warn("failed to close pending transaction store", zap.Error(err))
		}
	}
	_ = e.log.Sync()
}

// wallet returns the wallet given via flags or the funded test one.
func (e *environment) wallet(gctx context.Context, ctx *cli.Context) (*wallet.Wallet, error) {
	w, err := options.GetWallet(ctx)
	if err != nil || w != nil {
		return w, err
	}
	f, err := funding.New(e.rpc, wallet.TestSecret, e.log)
	if err != nil {
		return nil, err
	}
	return f.Wallet(gctx)
}

func (e *environment) client(w *wallet.Wallet) (*domath.Client, error) {
	passphrase := e.cfg.RPC.Passphrase
	if passphrase == "" {
		var err error
		passphrase, err = e.rpc.Passphrase()
		if err != nil {
			return nil, err
		}
	}
	return domath.New(e.rpc, domath.Version(e.cfg.Contract.Version), e.cfg.Contract.Network, domath.Options{
		ContractID:   e.cfg.Contract.ContractID,
		Passphrase:   passphrase,
		PublicKey:    w.Address,
		Signer:       w.Signer(),
		PollInterval: e.cfg.Contract.PollInterval,
		Logger:       e.log,
	})
}

// save stores the transaction and prints its ID.
func (e *environment) save(ctx *cli.Context, tx *assembled.Transaction[*big.Int]) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return err
	}
	id, err := e.store.Add(tx.Method(), tx.Status(), data)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "Saved: %s\n", id)
	return nil
}

func exitError(err error) *cli.ExitError {
	var ae *assembled.Error
	if errors.As(err, &ae) && len(ae.Diagnostic) != 0 {
		err = fmt.Errorf("%w\n%s", err, strings.Join(ae.Diagnostic, "\n"))
	}
	return cli.NewExitError(err, 1)
}

func fund(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	gctx, cancel := options.GetTimeoutContext(ctx)
	defer cancel()
	e, ec := newEnvironment(gctx, ctx, true)
	if ec != nil {
		return ec
	}
	defer e.Close()

	w, err := options.GetWallet(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	var secret string
	if w != nil {
		secret = w.Keypair.Seed()
	}
	f, err := funding.New(e.rpc, secret, e.log)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	kp, err := f.Keypair(gctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	acc, err := e.rpc.GetAccount(kp.Address())
	if err != nil {
		return cli.NewExitError(fmt.Errorf("account %s is not funded: %w", kp.Address(), err), 1)
	}
	fmt.Fprintf(ctx.App.Writer, "Account: %s\nSequence: %d\n", acc.Address, acc.Sequence)
	return nil
}

func parseInt(ctx *cli.Context, name string) (*big.Int, error) {
	s := ctx.String(name)
	if s == "" {
		return nil, fmt.Errorf("missing --%s", name)
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("--%s: %q is not a decimal integer", name, s)
	}
	return n, nil
}

func invoke(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	if ctx.Bool("send") && ctx.Bool("save") {
		return cli.NewExitError(errors.New("--send conflicts with --save"), 1)
	}
	var (
		args domath.DoMathArgs
		err  error
	)
	if args.A, err = parseInt(ctx, "a"); err != nil {
		return cli.NewExitError(err, 1)
	}
	if args.B, err = parseInt(ctx, "b"); err != nil {
		return cli.NewExitError(err, 1)
	}
	if sac := ctx.String("sac"); sac != "" {
		args.Sac = spec.Some(sac)
	}

	gctx, cancel := options.GetTimeoutContext(ctx)
	defer cancel()
	e, ec := newEnvironment(gctx, ctx, true)
	if ec != nil {
		return ec
	}
	defer e.Close()

	w, err := e.wallet(gctx, ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	c, err := e.client(w)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	args.Source = ctx.String("source")
	if args.Source == "" {
		args.Source = w.Address
	}
	tx, err := c.DoMath(gctx, args, contract.CallOptions{
		Fee:              ctx.Int64("fee"),
		TimeoutInSeconds: ctx.Int64("tx-timeout"),
	})
	if err != nil {
		// Failed simulation is saved for later inspection if asked to.
		if tx != nil && ctx.Bool("save") {
			if serr := e.save(ctx, tx); serr != nil {
				e.log.Warn("failed to save transaction", zap.Error(serr))
			}
		}
		return exitError(err)
	}
	res, err := tx.Result()
	if err != nil {
		return exitError(err)
	}
	fmt.Fprintf(ctx.App.Writer, "Simulated result: %s\n", res.String())

	switch {
	case ctx.Bool("save"):
		if err := e.save(ctx, tx); err != nil {
			return cli.NewExitError(err, 1)
		}
	case ctx.Bool("send"):
		res, err := tx.SignAndSend(gctx, ctx.Bool("force"))
		if tx.Hash() != "" {
			fmt.Fprintf(ctx.App.Writer, "Hash: %s\n", tx.Hash())
		}
		if err != nil {
			return exitError(err)
		}
		fmt.Fprintf(ctx.App.Writer, "Result: %s\n", res.String())
	}
	return nil
}

func resume(ctx *cli.Context) error {
	if err := cmdargs.EnsureN(ctx, 1); err != nil {
		return err
	}
	id, err := uuid.Parse(ctx.Args().First())
	if err != nil {
		return cli.NewExitError(fmt.Errorf("bad transaction ID: %w", err), 1)
	}
	gctx, cancel := options.GetTimeoutContext(ctx)
	defer cancel()
	e, ec := newEnvironment(gctx, ctx, true)
	if ec != nil {
		return ec
	}
	defer e.Close()

	entry, err := e.store.Get(id)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	w, err := e.wallet(gctx, ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	c, err := e.client(w)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	tx, err := c.DoMathFromJSON(entry.Data)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	var res *big.Int
	switch tx.Status() {
	case assembled.Simulated, assembled.Signed:
		if tx.Status() == assembled.Simulated {
			err = tx.Sign(gctx, ctx.Bool("force"))
		}
		if err == nil {
			err = tx.Send(gctx)
		}
		if err == nil {
			res, err = tx.Poll(gctx)
		}
	case assembled.Submitted, assembled.Polling:
		res, err = tx.Poll(gctx)
	default:
		res, err = tx.Result()
	}
	if tx.Hash() != "" {
		fmt.Fprintf(ctx.App.Writer, "Hash: %s\n", tx.Hash())
	}
	if tx.Status().Final() {
		if derr := e.store.Delete(id); derr != nil {
			e.log.Warn("failed to delete finished transaction", zap.Error(derr))
		}
	} else if data, merr := json.Marshal(tx); merr == nil {
		if uerr := e.store.Update(id, tx.Method(), tx.Status(), data); uerr != nil {
			e.log.Warn("failed to update pending transaction", zap.Error(uerr))
		}
	}
	if err != nil {
		return exitError(err)
	}
	fmt.Fprintf(ctx.App.Writer, "Result: %s\n", res.String())
	return nil
}

func pending(ctx *cli.Context) error {
	if err := cmdargs.EnsureNone(ctx); err != nil {
		return err
	}
	e, ec := newEnvironment(context.Background(), ctx, false)
	if ec != nil {
		return ec
	}
	defer e.Close()

	entries, err := e.store.List()
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	for _, en := range entries {
		fmt.Fprintf(ctx.App.Writer, "%s\t%s\t%s\t%s\n", en.ID, en.Method, en.Status, en.Updated.Format("2006-01-02T15:04:05Z"))
	}
	return nil
}
