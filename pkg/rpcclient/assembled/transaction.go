/*
Package assembled implements the lifecycle of a single contract invocation
transaction: it's built for the given contract function and arguments,
simulated to get resource footprint, fees and the return value, then
optionally signed, submitted and polled until it's included into a ledger.

A Transaction can be serialized into JSON at any stage and restored later to
continue from where it was left.
*/
package assembled

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anataliocs/do-math/pkg/smartcontract/spec"
	"github.com/anataliocs/do-math/pkg/sorobanrpc/result"
	"github.com/anataliocs/do-math/pkg/wallet"
	"github.com/stellar/go-stellar-sdk/txnbuild"
	"github.com/stellar/go-stellar-sdk/xdr"
	"go.uber.org/zap"
)

const (
	// DefaultTimeout is the default transaction validity and polling time.
	DefaultTimeout = 300
	// DefaultPollInterval is the default interval between getTransaction
	// requests.
	DefaultPollInterval = time.Second
)

// RPC is the set of node methods a Transaction needs.
type RPC interface {
	Context() context.Context
	GetAccount(address string) (*result.Account, error)
	SimulateTransaction(envelope string) (*result.SimulateTransaction, error)
	SendTransaction(envelope string) (*result.SendTransaction, error)
	GetTransaction(hash string) (*result.GetTransaction, error)
}

// Parser converts the return value into T.
type Parser[T any] func(retval xdr.ScVal) (T, error)

// Options are the invocation parameters.
type Options struct {
	// ContractID is the C… address of the contract.
	ContractID string
	// Method is the contract function name.
	Method string
	// Args are the arguments in the function parameter order.
	Args []xdr.ScVal
	// NetworkPassphrase identifies the network.
	NetworkPassphrase string
	// PublicKey is the G… address of the transaction source account. If
	// empty, the placeholder account is used which is only good for
	// read-only calls.
	PublicKey string
	// Signer signs the transaction, it's only needed for Sign.
	Signer wallet.Signer
	// Fee is the base inclusion fee in stroops, txnbuild.MinBaseFee is
	// used if not set. Resource fee is added to it after simulation.
	Fee int64
	// TimeoutInSeconds limits both transaction validity and awaiting,
	// DefaultTimeout is used if not set.
	TimeoutInSeconds int64
	// PollInterval is the interval between getTransaction polls,
	// DefaultPollInterval is used if not set.
	PollInterval time.Duration
	// Logger is used to log state transitions, nothing is logged if nil.
	Logger *zap.Logger
}

// Simulation is the part of simulateTransaction result needed to finish the
// transaction.
type Simulation struct {
	// TransactionData is base64 XDR SorobanTransactionData.
	TransactionData string `json:"transactionData"`
	// Auth are base64 XDR SorobanAuthorizationEntry values.
	Auth           []string `json:"auth,omitempty"`
	MinResourceFee int64    `json:"minResourceFee"`
	// Result is base64 XDR ScVal return value.
	Result       string   `json:"result,omitempty"`
	Events       []string `json:"events,omitempty"`
	LatestLedger uint32   `json:"latestLedger"`
}

// Transaction is a contract invocation transaction. It's owned by a single
// caller and is not safe for concurrent use.
type Transaction[T any] struct {
	rpc   RPC
	opts  Options
	parse Parser[T]
	log   *zap.Logger

	tx         *txnbuild.Transaction
	simulation *Simulation
	status     Status
	hash       string
	result     T
	resultXDR  []byte
	err        *Error
}

func (o *Options) fillDefaults() {
	if o.Fee <= 0 {
		o.Fee = txnbuild.MinBaseFee
	}
	if o.TimeoutInSeconds <= 0 {
		o.TimeoutInSeconds = DefaultTimeout
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}

func (o *Options) validate() error {
	if o.Method == "" {
		return errors.New("no method specified")
	}
	if o.ContractID == "" {
		return errors.New("no contract ID specified")
	}
	if o.NetworkPassphrase == "" {
		return errors.New("no network passphrase specified")
	}
	return nil
}

func newTransaction[T any](rpc RPC, opts Options, parse Parser[T]) (*Transaction[T], error) {
	opts.fillDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Transaction[T]{
		rpc:   rpc,
		opts:  opts,
		parse: parse,
		log:   opts.Logger.With(zap.String("method", opts.Method)),
	}, nil
}

// Build creates a new unsimulated transaction invoking opts.Method of
// opts.ContractID. The source account sequence is fetched from the node
// unless the placeholder account is used.
func Build[T any](ctx context.Context, rpc RPC, opts Options, parse Parser[T]) (*Transaction[T], error) {
	t, err := newTransaction(rpc, opts, parse)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var source = txnbuild.SimpleAccount{AccountID: wallet.PlaceholderAddress}
	if t.opts.PublicKey != "" && !wallet.IsPlaceholder(t.opts.PublicKey) {
		acc, err := rpc.GetAccount(t.opts.PublicKey)
		if err != nil {
			return nil, fmt.Errorf("failed to get source account: %w", err)
		}
		source = txnbuild.SimpleAccount{AccountID: acc.Address, Sequence: acc.Sequence}
	}
	op, err := invokeOperation(t.opts.ContractID, t.opts.Method, t.opts.Args)
	if err != nil {
		return nil, err
	}
	t.tx, err = assemble(source, op, t.opts.Fee, txnbuild.NewTimeout(t.opts.TimeoutInSeconds))
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction: %w", err)
	}
	t.status = Built
	t.log.Debug("transaction built", zap.String("source", source.AccountID))
	return t, nil
}

func invokeOperation(contractID string, method string, args []xdr.ScVal) (*txnbuild.InvokeHostFunction, error) {
	addr, err := spec.ScAddress(contractID)
	if err != nil {
		return nil, fmt.Errorf("bad contract ID: %w", err)
	}
	if addr.Type != xdr.ScAddressTypeScAddressTypeContract {
		return nil, fmt.Errorf("bad contract ID %s", contractID)
	}
	return &txnbuild.InvokeHostFunction{
		HostFunction: xdr.HostFunction{
			Type: xdr.HostFunctionTypeHostFunctionTypeInvokeContract,
			InvokeContract: &xdr.InvokeContractArgs{
				ContractAddress: addr,
				FunctionName:    xdr.ScSymbol(method),
				Args:            args,
			},
		},
	}, nil
}

// assemble builds a transaction, source.Sequence is the current account
// sequence (the transaction gets the next one).
func assemble(source txnbuild.SimpleAccount, op *txnbuild.InvokeHostFunction, fee int64, tb txnbuild.TimeBounds) (*txnbuild.Transaction, error) {
	return txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        &source,
		IncrementSequenceNum: true,
		Operations:           []txnbuild.Operation{op},
		BaseFee:              fee,
		Preconditions:        txnbuild.Preconditions{TimeBounds: tb},
	})
}

func (t *Transaction[T]) invokeOp() (*txnbuild.InvokeHostFunction, error) {
	ops := t.tx.Operations()
	if len(ops) != 1 {
		return nil, fmt.Errorf("expected 1 operation, got %d", len(ops))
	}
	op, ok := ops[0].(*txnbuild.InvokeHostFunction)
	if !ok || op.HostFunction.InvokeContract == nil {
		return nil, errors.New("not a contract invocation")
	}
	return op, nil
}

func (t *Transaction[T]) fail(e *Error) error {
	t.status = Failed
	t.err = e
	t.log.Debug("transaction failed", zap.Stringer("cause", e.Cause), zap.Error(e.Err))
	return e
}

func (t *Transaction[T]) setResult(retval xdr.ScVal) error {
	res, err := t.parse(retval)
	if err != nil {
		return err
	}
	raw, err := retval.MarshalBinary()
	if err != nil {
		return err
	}
	t.result = res
	t.resultXDR = raw
	return nil
}

// Method returns the invoked contract function name.
func (t *Transaction[T]) Method() string {
	return t.opts.Method
}

// Status returns the current transaction state.
func (t *Transaction[T]) Status() Status {
	return t.status
}

// Hash returns hex-encoded transaction hash once it's submitted.
func (t *Transaction[T]) Hash() string {
	return t.hash
}

// Envelope returns the current transaction.
func (t *Transaction[T]) Envelope() *txnbuild.Transaction {
	return t.tx
}

// EnvelopeXDR returns the current base64 XDR transaction envelope.
func (t *Transaction[T]) EnvelopeXDR() (string, error) {
	return t.tx.Base64()
}

// Signatures returns the signatures attached to the transaction.
func (t *Transaction[T]) Signatures() []xdr.DecoratedSignature {
	return t.tx.Signatures()
}

// Simulation returns the simulation result, nil if it wasn't simulated.
func (t *Transaction[T]) Simulation() *Simulation {
	return t.simulation
}

// Err returns the failure, nil unless the transaction is Failed.
func (t *Transaction[T]) Err() error {
	if t.err == nil {
		return nil
	}
	return t.err
}

// Result returns the simulated (for not yet confirmed transactions) or the
// actual (for confirmed ones) return value. The failure is returned for
// failed transactions.
func (t *Transaction[T]) Result() (T, error) {
	if t.err != nil {
		var empty T
		return empty, t.err
	}
	if t.resultXDR == nil {
		var empty T
		return empty, errors.New("no result yet")
	}
	return t.result, nil
}

// ResultXDR returns the raw XDR ScVal return value.
func (t *Transaction[T]) ResultXDR() []byte {
	return t.resultXDR
}
