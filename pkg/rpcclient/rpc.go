package rpcclient

import (
	"errors"
	"fmt"

	"github.com/anataliocs/do-math/pkg/sorobanrpc"
	"github.com/anataliocs/do-math/pkg/sorobanrpc/result"
	"github.com/stellar/go-stellar-sdk/xdr"
)

var (
	errNetworkNotInitialized = errors.New("RPC client network is not initialized")

	// ErrAccountNotFound is returned from GetAccount for accounts that don't
	// exist on the ledger (not funded yet).
	ErrAccountNotFound = errors.New("account not found")
)

// GetHealth returns the node health status.
func (c *Client) GetHealth() (*result.Health, error) {
	var resp = new(result.Health)
	if err := c.performRequest(sorobanrpc.GetHealthMethod, nil, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetNetwork returns the passphrase and friendbot URL of the network.
func (c *Client) GetNetwork() (*result.Network, error) {
	var resp = new(result.Network)
	if err := c.performRequest(sorobanrpc.GetNetworkMethod, nil, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetLatestLedger returns the latest known ledger.
func (c *Client) GetLatestLedger() (*result.LatestLedger, error) {
	var resp = new(result.LatestLedger)
	if err := c.performRequest(sorobanrpc.GetLatestLedgerMethod, nil, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetLedgerEntries returns ledger entries for the given base64 XDR LedgerKey
// values. Missing entries are just not included into the result.
func (c *Client) GetLedgerEntries(keys ...string) (*result.LedgerEntries, error) {
	var (
		params = sorobanrpc.GetLedgerEntriesParams{Keys: keys}
		resp   = new(result.LedgerEntries)
	)
	if err := c.performRequest(sorobanrpc.GetLedgerEntriesMethod, params, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetAccount returns the current sequence number of the given G… account.
// ErrAccountNotFound is returned if there is no such account.
func (c *Client) GetAccount(address string) (*result.Account, error) {
	var aid xdr.AccountId
	if err := aid.SetAddress(address); err != nil {
		return nil, fmt.Errorf("bad account address: %w", err)
	}
	key, err := xdr.MarshalBase64(xdr.LedgerKey{
		Type:    xdr.LedgerEntryTypeAccount,
		Account: &xdr.LedgerKeyAccount{AccountId: aid},
	})
	if err != nil {
		return nil, err
	}
	entries, err := c.GetLedgerEntries(key)
	if err != nil {
		return nil, err
	}
	if len(entries.Entries) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, address)
	}
	var data xdr.LedgerEntryData
	if err := xdr.SafeUnmarshalBase64(entries.Entries[0].XDR, &data); err != nil {
		return nil, fmt.Errorf("bad account entry: %w", err)
	}
	acc, ok := data.GetAccount()
	if !ok {
		return nil, fmt.Errorf("ledger entry of type %s instead of account", data.Type)
	}
	return &result.Account{
		Address:  address,
		Sequence: int64(acc.SeqNum),
	}, nil
}

// SimulateTransaction simulates the given base64 XDR transaction envelope.
// Failed simulations are not errors, check result's Error field for them.
func (c *Client) SimulateTransaction(envelope string) (*result.SimulateTransaction, error) {
	var (
		params = sorobanrpc.SimulateTransactionParams{Transaction: envelope}
		resp   = new(result.SimulateTransaction)
	)
	if err := c.performRequest(sorobanrpc.SimulateTransactionMethod, params, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// SendTransaction submits the given base64 XDR transaction envelope. It
// doesn't wait for the transaction to be included into a ledger.
func (c *Client) SendTransaction(envelope string) (*result.SendTransaction, error) {
	var (
		params = sorobanrpc.SendTransactionParams{Transaction: envelope}
		resp   = new(result.SendTransaction)
	)
	if err := c.performRequest(sorobanrpc.SendTransactionMethod, params, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetTransaction returns the status of the transaction with the given hex
// hash. Unknown transactions have NOT_FOUND status.
func (c *Client) GetTransaction(hash string) (*result.GetTransaction, error) {
	var (
		params = sorobanrpc.GetTransactionParams{Hash: hash}
		resp   = new(result.GetTransaction)
	)
	if err := c.performRequest(sorobanrpc.GetTransactionMethod, params, resp); err != nil {
		return nil, err
	}
	return resp, nil
}
