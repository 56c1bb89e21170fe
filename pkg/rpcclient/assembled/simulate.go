package assembled

import (
	"context"
	"errors"
	"fmt"

	"github.com/stellar/go-stellar-sdk/xdr"
	"go.uber.org/zap"
)

// Simulate simulates the transaction and attaches resource data,
// authorization entries and fees to it. The return value of the simulation
// is available via Result after that. A failed simulation makes the
// transaction Failed with CauseSimulation.
func (t *Transaction[T]) Simulate(ctx context.Context) error {
	if t.status != Built && t.status != Simulated {
		return fmt.Errorf("can't simulate %s transaction", t.status)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	env, err := t.tx.Base64()
	if err != nil {
		return err
	}
	res, err := t.rpc.SimulateTransaction(env)
	if err != nil {
		return t.fail(newError(CauseSimulation, err))
	}
	if res.IsError() {
		return t.fail(newError(CauseSimulation, errors.New(res.Error), res.Events...))
	}
	if res.RestorePreamble != nil {
		return t.fail(newError(CauseSimulation, errors.New("contract state is archived and needs to be restored"), res.Events...))
	}
	sim := &Simulation{
		TransactionData: res.TransactionData,
		MinResourceFee:  res.MinResourceFee,
		Events:          res.Events,
		LatestLedger:    res.LatestLedger,
	}
	if len(res.Results) != 0 {
		if len(res.Results[0].Auth) != 0 {
			sim.Auth = res.Results[0].Auth
		}
		sim.Result = res.Results[0].XDR
	}
	if err := t.applySimulation(sim); err != nil {
		return t.fail(newError(CauseSimulation, err, res.Events...))
	}
	if sim.Result != "" {
		var retval xdr.ScVal
		err := xdr.SafeUnmarshalBase64(sim.Result, &retval)
		if err == nil {
			err = t.setResult(retval)
		}
		if err != nil {
			return t.fail(newError(CauseSimulation, fmt.Errorf("bad return value: %w", err), res.Events...))
		}
	}
	t.simulation = sim
	t.status = Simulated
	t.log.Debug("transaction simulated",
		zap.Int64("resource fee", sim.MinResourceFee),
		zap.Int("auth entries", len(sim.Auth)),
		zap.Uint32("latest ledger", sim.LatestLedger))
	return nil
}

// applySimulation rebuilds the transaction with simulation data attached.
func (t *Transaction[T]) applySimulation(sim *Simulation) error {
	op, err := t.invokeOp()
	if err != nil {
		return err
	}
	var data xdr.SorobanTransactionData
	if err := xdr.SafeUnmarshalBase64(sim.TransactionData, &data); err != nil {
		return fmt.Errorf("bad transaction data: %w", err)
	}
	var auth = make([]xdr.SorobanAuthorizationEntry, len(sim.Auth))
	for i := range sim.Auth {
		if err := xdr.SafeUnmarshalBase64(sim.Auth[i], &auth[i]); err != nil {
			return fmt.Errorf("bad auth entry %d: %w", i, err)
		}
	}
	newOp := *op
	newOp.Auth = auth
	newOp.Ext = xdr.TransactionExt{V: 1, SorobanData: &data}

	source := t.tx.SourceAccount()
	source.Sequence = t.tx.SequenceNumber() - 1
	tx, err := assemble(source, &newOp, t.opts.Fee+sim.MinResourceFee, t.tx.Timebounds())
	if err != nil {
		return err
	}
	t.tx = tx
	return nil
}

// IsReadCall denotes whether the simulated transaction only reads the
// ledger: it needs no authorization and writes nothing. Such transactions
// don't need to be signed and sent, simulation result is the final one.
func (t *Transaction[T]) IsReadCall() bool {
	if t.simulation == nil || len(t.simulation.Auth) != 0 {
		return false
	}
	var data xdr.SorobanTransactionData
	if err := xdr.SafeUnmarshalBase64(t.simulation.TransactionData, &data); err != nil {
		return false
	}
	return len(data.Resources.Footprint.ReadWrite) == 0
}
