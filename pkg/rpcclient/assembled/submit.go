package assembled

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anataliocs/do-math/pkg/rpcclient/waiter"
	"github.com/anataliocs/do-math/pkg/sorobanrpc/result"
	"github.com/anataliocs/do-math/pkg/wallet"
	"github.com/stellar/go-stellar-sdk/txnbuild"
	"github.com/stellar/go-stellar-sdk/xdr"
	"go.uber.org/zap"
)

// Sign signs the simulated transaction with the configured Signer. Read-only
// calls are refused with ErrNoSignatureNeeded unless force is set. If the
// signer fails, *Error with CauseSigning is returned and the transaction
// stays Simulated, so signing can be retried.
func (t *Transaction[T]) Sign(ctx context.Context, force bool) error {
	if t.status != Simulated && t.status != Signed {
		return fmt.Errorf("can't sign %s transaction", t.status)
	}
	if !force && t.IsReadCall() {
		return ErrNoSignatureNeeded
	}
	if t.opts.Signer == nil {
		return newError(CauseSigning, errors.New("no signer configured"))
	}
	if wallet.IsPlaceholder(t.tx.SourceAccount().AccountID) {
		return newError(CauseSigning, errors.New("transaction is built for the placeholder account"))
	}
	env, err := t.tx.Base64()
	if err != nil {
		return err
	}
	hash, err := t.tx.HashHex(t.opts.NetworkPassphrase)
	if err != nil {
		return err
	}
	signed, err := t.opts.Signer(ctx, env, t.opts.NetworkPassphrase)
	if err != nil {
		return newError(CauseSigning, err)
	}
	gtx, err := txnbuild.TransactionFromXDR(signed)
	if err != nil {
		return newError(CauseSigning, fmt.Errorf("bad signed envelope: %w", err))
	}
	tx, ok := gtx.Transaction()
	if !ok {
		return newError(CauseSigning, errors.New("signer returned fee bump transaction"))
	}
	if h, err := tx.HashHex(t.opts.NetworkPassphrase); err != nil || h != hash {
		return newError(CauseSigning, errors.New("signer modified the transaction"))
	}
	if len(tx.Signatures()) == 0 {
		return newError(CauseSigning, errors.New("signer returned unsigned transaction"))
	}
	t.tx = tx
	t.status = Signed
	t.log.Debug("transaction signed", zap.String("hash", hash))
	return nil
}

// Send submits the signed transaction. Rejected transactions become Failed
// with CauseSubmission, they're not resubmitted.
func (t *Transaction[T]) Send(ctx context.Context) error {
	if t.status != Signed {
		return fmt.Errorf("can't send %s transaction", t.status)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	env, err := t.tx.Base64()
	if err != nil {
		return err
	}
	res, err := t.rpc.SendTransaction(env)
	if err != nil {
		return t.fail(newError(CauseSubmission, err))
	}
	if !res.Accepted() {
		var diag []string
		if res.ErrorResultXDR != "" {
			diag = append(diag, res.ErrorResultXDR)
		}
		diag = append(diag, res.DiagnosticEventsXDR...)
		return t.fail(newError(CauseSubmission, fmt.Errorf("transaction rejected with %s status", res.Status), diag...))
	}
	t.hash = res.Hash
	if t.hash == "" {
		t.hash, _ = t.tx.HashHex(t.opts.NetworkPassphrase)
	}
	t.status = Submitted
	t.log.Info("transaction submitted", zap.String("hash", t.hash))
	return nil
}

// Poll waits for the submitted transaction to be included into a ledger and
// returns its result. Transactions not seen in TimeoutInSeconds become Failed
// with CauseTimeout, failed ones get CauseExecution. Other polling failures
// (like node being unreachable or context cancellation) are CauseSubmission.
func (t *Transaction[T]) Poll(ctx context.Context) (T, error) {
	var empty T
	if t.status != Submitted && t.status != Polling {
		return empty, fmt.Errorf("can't poll %s transaction", t.status)
	}
	t.status = Polling
	w := waiter.New(t.rpc, waiter.PollConfig{PollInterval: t.opts.PollInterval})
	deadline := time.Now().Add(time.Duration(t.opts.TimeoutInSeconds) * time.Second)
	res, err := w.Wait(ctx, t.hash, deadline)
	if err != nil {
		cause := CauseSubmission
		if errors.Is(err, waiter.ErrTxNotAccepted) {
			cause = CauseTimeout
		}
		return empty, t.fail(newError(cause, err))
	}
	if res.Status != result.TransactionSuccess {
		var diag []string
		if res.ResultXDR != "" {
			diag = append(diag, res.ResultXDR)
		}
		return empty, t.fail(newError(CauseExecution, fmt.Errorf("transaction %s", res.Status), diag...))
	}
	retval, err := returnValue(res.ResultMetaXDR)
	if err != nil {
		t.log.Warn("can't get return value from transaction meta, using simulated one", zap.Error(err))
	}
	if retval != nil {
		if err := t.setResult(*retval); err != nil {
			return empty, t.fail(newError(CauseExecution, fmt.Errorf("bad return value: %w", err)))
		}
	}
	t.status = Confirmed
	t.log.Info("transaction confirmed", zap.String("hash", t.hash), zap.Uint32("ledger", res.Ledger))
	return t.Result()
}

// SignAndSend signs, sends and polls the transaction.
func (t *Transaction[T]) SignAndSend(ctx context.Context, force bool) (T, error) {
	var empty T
	if err := t.Sign(ctx, force); err != nil {
		return empty, err
	}
	if err := t.Send(ctx); err != nil {
		return empty, err
	}
	return t.Poll(ctx)
}

// returnValue extracts ScVal return value from base64 XDR TransactionMeta,
// nil is returned if there is none. Both V3 and V4 meta are supported.
func returnValue(metaXDR string) (*xdr.ScVal, error) {
	if metaXDR == "" {
		return nil, nil
	}
	var meta xdr.TransactionMeta
	if err := xdr.SafeUnmarshalBase64(metaXDR, &meta); err != nil {
		return nil, fmt.Errorf("bad transaction meta: %w", err)
	}
	if v4, ok := meta.GetV4(); ok {
		if v4.SorobanMeta == nil {
			return nil, nil
		}
		return v4.SorobanMeta.ReturnValue, nil
	}
	if v3, ok := meta.GetV3(); ok && v3.SorobanMeta != nil {
		return &v3.SorobanMeta.ReturnValue, nil
	}
	return nil, nil
}
