/*
Package contract provides a generic client for any Soroban contract described
by its spec. Every spec function can be invoked by name with named arguments,
the result is an assembled.Transaction that is already simulated (unless
asked not to) and can be signed and sent if the call changes the state.
*/
package contract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anataliocs/do-math/pkg/rpcclient/assembled"
	"github.com/anataliocs/do-math/pkg/smartcontract/spec"
	"github.com/anataliocs/do-math/pkg/wallet"
	"github.com/stellar/go-stellar-sdk/xdr"
	"go.uber.org/zap"
)

// Options are the client-wide settings.
type Options struct {
	// ContractID is the C… address of the contract.
	ContractID string
	// NetworkPassphrase identifies the network the contract is deployed to.
	NetworkPassphrase string
	// PublicKey is the G… address of the account invoking the contract,
	// read-only calls can be made without it.
	PublicKey string
	// Signer signs transactions for PublicKey.
	Signer wallet.Signer
	// PollInterval is passed to transactions, see assembled.Options.
	PollInterval time.Duration
	// Logger is used for logging, no logging is done if it's nil.
	Logger *zap.Logger
}

// CallOptions are per-call settings.
type CallOptions struct {
	// Fee is the base inclusion fee in stroops, txnbuild.MinBaseFee by
	// default.
	Fee int64
	// TimeoutInSeconds is the transaction validity and awaiting time,
	// assembled.DefaultTimeout by default.
	TimeoutInSeconds int64
	// SkipSimulation returns a Built transaction instead of Simulated one.
	SkipSimulation bool
}

// Client invokes functions of a single contract.
type Client struct {
	rpc     assembled.RPC
	spec    *spec.Spec
	opts    Options
	methods map[string]*spec.Function
}

// New creates a contract client using the given RPC connector and contract
// spec.
func New(rpc assembled.RPC, sp *spec.Spec, opts Options) (*Client, error) {
	if rpc == nil {
		return nil, errors.New("no RPC connector")
	}
	if sp == nil {
		return nil, errors.New("no contract spec")
	}
	if opts.ContractID == "" || opts.NetworkPassphrase == "" {
		return nil, errors.New("contract ID and network passphrase are mandatory")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	c := &Client{
		rpc:     rpc,
		spec:    sp,
		opts:    opts,
		methods: make(map[string]*spec.Function, len(sp.Functions())),
	}
	for _, f := range sp.Functions() {
		c.methods[f.Name] = f
	}
	return c, nil
}

// Spec returns the contract spec.
func (c *Client) Spec() *spec.Spec {
	return c.spec
}

// ContractID returns the contract address.
func (c *Client) ContractID() string {
	return c.opts.ContractID
}

func (c *Client) method(name string) (*spec.Function, error) {
	f, ok := c.methods[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", spec.ErrNoFunction, name)
	}
	return f, nil
}

func (c *Client) txOptions(name string, args []xdr.ScVal, co CallOptions) assembled.Options {
	return assembled.Options{
		ContractID:        c.opts.ContractID,
		Method:            name,
		Args:              args,
		NetworkPassphrase: c.opts.NetworkPassphrase,
		PublicKey:         c.opts.PublicKey,
		Signer:            c.opts.Signer,
		Fee:               co.Fee,
		TimeoutInSeconds:  co.TimeoutInSeconds,
		PollInterval:      c.opts.PollInterval,
		Logger:            c.opts.Logger,
	}
}

func parser[T any](sp *spec.Spec, name string, conv func(any) (T, error)) assembled.Parser[T] {
	return func(retval xdr.ScVal) (T, error) {
		v, err := sp.DecodeResult(name, retval)
		if err != nil {
			var empty T
			return empty, err
		}
		return conv(v)
	}
}

func asIs(v any) (any, error) {
	return v, nil
}

// Invoke calls the named contract function with the given arguments and
// converts its result with conv. Arguments are checked against the spec
// before any RPC request is made. Unless co.SkipSimulation is set the
// transaction is simulated. Simulation failure is returned as an error
// along with the Failed transaction, so its diagnostics can be inspected
// or saved.
func Invoke[T any](ctx context.Context, c *Client, name string, args map[string]any, co CallOptions, conv func(any) (T, error)) (*assembled.Transaction[T], error) {
	f, err := c.method(name)
	if err != nil {
		return nil, err
	}
	encoded, err := f.EncodeArgs(args)
	if err != nil {
		return nil, err
	}
	tx, err := assembled.Build(ctx, c.rpc, c.txOptions(name, encoded, co), parser(c.spec, name, conv))
	if err != nil {
		return nil, err
	}
	if !co.SkipSimulation {
		if err := tx.Simulate(ctx); err != nil {
			return tx, err
		}
	}
	return tx, nil
}

// Call is Invoke returning results as is (see spec.FromScVal for types).
func (c *Client) Call(ctx context.Context, name string, args map[string]any, co CallOptions) (*assembled.Transaction[any], error) {
	return Invoke(ctx, c, name, args, co, asIs)
}

// FromJSON restores a transaction of the named function serialized with
// MarshalJSON and converts its result with conv.
func FromJSON[T any](c *Client, name string, data []byte, conv func(any) (T, error)) (*assembled.Transaction[T], error) {
	if _, err := c.method(name); err != nil {
		return nil, err
	}
	return assembled.FromJSON(c.rpc, c.txOptions(name, nil, CallOptions{}), parser(c.spec, name, conv), data)
}

// FromJSON is FromJSON returning results as is.
func (c *Client) FromJSON(name string, data []byte) (*assembled.Transaction[any], error) {
	return FromJSON(c, name, data, asIs)
}
