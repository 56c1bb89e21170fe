package assembled

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stellar/go-stellar-sdk/txnbuild"
	"github.com/stellar/go-stellar-sdk/xdr"
)

type jsonTransaction struct {
	Method     string       `json:"method"`
	Fee        int64        `json:"fee"`
	Timeout    int64        `json:"timeoutInSeconds"`
	Tx         string       `json:"tx"`
	Simulation *Simulation  `json:"simulation,omitempty"`
	Status     Status       `json:"status"`
	Hash       string       `json:"hash,omitempty"`
	Result     []byte       `json:"result,omitempty"`
	Failure    *jsonFailure `json:"failure,omitempty"`
}

type jsonFailure struct {
	Cause      Cause    `json:"cause"`
	Message    string   `json:"message,omitempty"`
	Diagnostic []string `json:"diagnostic,omitempty"`
}

// MarshalJSON implements the json.Marshaler interface. Everything needed to
// continue working with the transaction is included.
func (t *Transaction[T]) MarshalJSON() ([]byte, error) {
	env, err := t.tx.Base64()
	if err != nil {
		return nil, err
	}
	j := jsonTransaction{
		Method:     t.opts.Method,
		Fee:        t.opts.Fee,
		Timeout:    t.opts.TimeoutInSeconds,
		Tx:         env,
		Simulation: t.simulation,
		Status:     t.status,
		Hash:       t.hash,
		Result:     t.resultXDR,
	}
	if t.err != nil {
		j.Failure = &jsonFailure{
			Cause:      t.err.Cause,
			Diagnostic: t.err.Diagnostic,
		}
		if t.err.Err != nil {
			j.Failure.Message = t.err.Err.Error()
		}
	}
	return json.Marshal(j)
}

// FromJSON restores a transaction serialized with MarshalJSON. opts must
// refer to the same contract, opts.Method may be omitted. The fee and timeout
// the transaction was built with override the ones from opts.
func FromJSON[T any](rpc RPC, opts Options, parse Parser[T], data []byte) (*Transaction[T], error) {
	var j jsonTransaction
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, err
	}
	if opts.Method == "" {
		opts.Method = j.Method
	} else if opts.Method != j.Method {
		return nil, fmt.Errorf("transaction calls %q instead of %q", j.Method, opts.Method)
	}
	if j.Fee > 0 {
		opts.Fee = j.Fee
	}
	if j.Timeout > 0 {
		opts.TimeoutInSeconds = j.Timeout
	}
	t, err := newTransaction(rpc, opts, parse)
	if err != nil {
		return nil, err
	}
	gtx, err := txnbuild.TransactionFromXDR(j.Tx)
	if err != nil {
		return nil, fmt.Errorf("bad transaction: %w", err)
	}
	tx, ok := gtx.Transaction()
	if !ok {
		return nil, errors.New("fee bump transactions are not supported")
	}
	t.tx = tx
	if err := t.checkInvocation(); err != nil {
		return nil, err
	}
	t.simulation = j.Simulation
	t.status = j.Status
	t.hash = j.Hash
	if j.Result != nil {
		var retval xdr.ScVal
		err := xdr.SafeUnmarshal(j.Result, &retval)
		if err == nil {
			err = t.setResult(retval)
		}
		if err != nil {
			return nil, fmt.Errorf("bad result: %w", err)
		}
	}
	if j.Failure != nil {
		t.err = &Error{Cause: j.Failure.Cause, Diagnostic: j.Failure.Diagnostic}
		if j.Failure.Message != "" {
			t.err.Err = errors.New(j.Failure.Message)
		}
	}
	return t, nil
}

// checkInvocation ensures the transaction calls the configured contract
// method.
func (t *Transaction[T]) checkInvocation() error {
	op, err := t.invokeOp()
	if err != nil {
		return err
	}
	want, err := invokeOperation(t.opts.ContractID, t.opts.Method, nil)
	if err != nil {
		return err
	}
	got := op.HostFunction.InvokeContract
	if string(got.FunctionName) != t.opts.Method {
		return fmt.Errorf("transaction calls %q instead of %q", got.FunctionName, t.opts.Method)
	}
	gotAddr, err := xdr.MarshalBase64(got.ContractAddress)
	if err != nil {
		return err
	}
	wantAddr, err := xdr.MarshalBase64(want.HostFunction.InvokeContract.ContractAddress)
	if err != nil {
		return err
	}
	if gotAddr != wantAddr {
		return fmt.Errorf("transaction calls another contract than %s", t.opts.ContractID)
	}
	return nil
}
