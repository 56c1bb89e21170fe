/*
Package fakerpc implements a fake Stellar RPC node for tests. It knows
accounts created via its friendbot, simulates every contract call returning
the same value and includes every sent transaction into the next ledger.
*/
package fakerpc

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/anataliocs/do-math/pkg/sorobanrpc"
	"github.com/anataliocs/do-math/pkg/sorobanrpc/result"
	"github.com/stellar/go-stellar-sdk/network"
	"github.com/stellar/go-stellar-sdk/txnbuild"
	"github.com/stellar/go-stellar-sdk/xdr"
	"github.com/stretchr/testify/require"
)

const (
	// FriendbotPath is the friendbot endpoint path.
	FriendbotPath = "/friendbot"
	// DiagnosticEvent is the event returned by failed simulations.
	DiagnosticEvent = "AAAAAAAAAAAAAAAAAAAAAgAAAAAAAAADAAAADwAAAAVlcnJvcgAAAA=="
)

// Server is a fake RPC node.
type Server struct {
	*httptest.Server

	t         *testing.T
	lock      sync.Mutex
	accounts  map[string]int64
	txs       map[string]bool
	ledger    uint32
	simulated []string
	sent      []string
	funded    []string
	simErr    string

	// Passphrase is returned by getNetwork and used for hashing.
	Passphrase string
	// Result is the base64 XDR ScVal returned by simulations.
	Result string
	// SendStatus is returned by sendTransaction, PENDING by default.
	SendStatus string
}

type request struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// New starts a fake node, it's stopped when the test ends.
func New(t *testing.T, ret xdr.ScVal) *Server {
	res, err := xdr.MarshalBase64(ret)
	require.NoError(t, err)
	s := &Server{
		t:          t,
		accounts:   make(map[string]int64),
		txs:        make(map[string]bool),
		ledger:     100,
		Passphrase: network.TestNetworkPassphrase,
		Result:     res,
		SendStatus: result.SendPending,
	}
	s.Server = httptest.NewServer(s)
	t.Cleanup(s.Close)
	return s
}

// AddAccount creates an account with the given sequence.
func (s *Server) AddAccount(address string, seq int64) {
	s.lock.Lock()
	s.accounts[address] = seq
	s.lock.Unlock()
}

// FailSimulations makes subsequent simulations fail with the given host
// error and a diagnostic event, empty msg makes them succeed again.
func (s *Server) FailSimulations(msg string) {
	s.lock.Lock()
	s.simErr = msg
	s.lock.Unlock()
}

// Simulated returns envelopes received by simulateTransaction.
func (s *Server) Simulated() []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]string(nil), s.simulated...)
}

// Sent returns envelopes received by sendTransaction.
func (s *Server) Sent() []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]string(nil), s.sent...)
}

// Funded returns addresses funded via friendbot.
func (s *Server) Funded() []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]string(nil), s.funded...)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if r.Method == http.MethodGet && r.URL.Path == FriendbotPath {
		addr := r.URL.Query().Get("addr")
		if _, ok := s.accounts[addr]; ok || addr == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		s.accounts[addr] = int64(s.ledger) << 32
		s.funded = append(s.funded, addr)
		_, _ = w.Write([]byte(`{"successful":true}`))
		return
	}
	var req request
	require.NoError(s.t, json.NewDecoder(r.Body).Decode(&req))
	res, rpcErr := s.handle(req)
	var resp = map[string]any{"jsonrpc": sorobanrpc.JSONRPCVersion, "id": 1}
	if rpcErr != nil {
		resp["error"] = rpcErr
	} else {
		resp["result"] = res
	}
	require.NoError(s.t, json.NewEncoder(w).Encode(resp))
}

func (s *Server) handle(req request) (any, *sorobanrpc.Error) {
	switch req.Method {
	case sorobanrpc.GetNetworkMethod:
		return result.Network{
			FriendbotURL:    s.URL + FriendbotPath,
			Passphrase:      s.Passphrase,
			ProtocolVersion: 22,
		}, nil
	case sorobanrpc.GetLedgerEntriesMethod:
		var p sorobanrpc.GetLedgerEntriesParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, sorobanrpc.NewError(sorobanrpc.InvalidParamsCode, "invalid parameters", err.Error())
		}
		return s.ledgerEntries(p.Keys), nil
	case sorobanrpc.SimulateTransactionMethod:
		var p sorobanrpc.SimulateTransactionParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, sorobanrpc.NewError(sorobanrpc.InvalidParamsCode, "invalid parameters", err.Error())
		}
		s.simulated = append(s.simulated, p.Transaction)
		return s.simulate(), nil
	case sorobanrpc.SendTransactionMethod:
		var p sorobanrpc.SendTransactionParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, sorobanrpc.NewError(sorobanrpc.InvalidParamsCode, "invalid parameters", err.Error())
		}
		return s.send(p.Transaction), nil
	case sorobanrpc.GetTransactionMethod:
		var p sorobanrpc.GetTransactionParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return nil, sorobanrpc.NewError(sorobanrpc.InvalidParamsCode, "invalid parameters", err.Error())
		}
		s.ledger++
		var res = result.GetTransaction{Status: result.TransactionNotFound, LatestLedger: s.ledger}
		if s.txs[p.Hash] {
			res.Status = result.TransactionSuccess
			res.Ledger = s.ledger - 1
		}
		return res, nil
	}
	return nil, sorobanrpc.NewError(sorobanrpc.MethodNotFoundCode, "method not found", "")
}

func (s *Server) ledgerEntries(keys []string) result.LedgerEntries {
	var res = result.LedgerEntries{Entries: []result.LedgerEntry{}, LatestLedger: s.ledger}
	for _, k := range keys {
		var key xdr.LedgerKey
		require.NoError(s.t, xdr.SafeUnmarshalBase64(k, &key))
		if key.Account == nil {
			continue
		}
		addr := key.Account.AccountId.Address()
		seq, ok := s.accounts[addr]
		if !ok {
			continue
		}
		data, err := xdr.MarshalBase64(xdr.LedgerEntryData{
			Type:    xdr.LedgerEntryTypeAccount,
			Account: &xdr.AccountEntry{AccountId: key.Account.AccountId, SeqNum: xdr.SequenceNumber(seq)},
		})
		require.NoError(s.t, err)
		res.Entries = append(res.Entries, result.LedgerEntry{Key: k, XDR: data, LastModifiedLedger: s.ledger})
	}
	return res
}

// simulate returns soroban data with a non-empty read-write footprint, so
// that calls are never read-only.
func (s *Server) simulate() result.SimulateTransaction {
	if s.simErr != "" {
		return result.SimulateTransaction{
			Error:        s.simErr,
			Events:       []string{DiagnosticEvent},
			LatestLedger: s.ledger,
		}
	}
	var aid xdr.AccountId
	require.NoError(s.t, aid.SetAddress("GAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAWHF"))
	data, err := xdr.MarshalBase64(xdr.SorobanTransactionData{
		Resources: xdr.SorobanResources{
			Footprint: xdr.LedgerFootprint{
				ReadWrite: []xdr.LedgerKey{{
					Type:    xdr.LedgerEntryTypeAccount,
					Account: &xdr.LedgerKeyAccount{AccountId: aid},
				}},
			},
		},
		ResourceFee: 100,
	})
	require.NoError(s.t, err)
	return result.SimulateTransaction{
		TransactionData: data,
		MinResourceFee:  100,
		Results:         []result.SimulateHostFunction{{Auth: []string{}, XDR: s.Result}},
		LatestLedger:    s.ledger,
	}
}

func (s *Server) send(env string) result.SendTransaction {
	s.sent = append(s.sent, env)
	var res = result.SendTransaction{Status: s.SendStatus, LatestLedger: s.ledger}
	if !res.Accepted() {
		return res
	}
	gtx, err := txnbuild.TransactionFromXDR(env)
	require.NoError(s.t, err)
	tx, ok := gtx.Transaction()
	require.True(s.t, ok)
	res.Hash, err = tx.HashHex(s.Passphrase)
	require.NoError(s.t, err)
	s.txs[res.Hash] = true
	s.accounts[tx.SourceAccount().AccountID] = tx.SequenceNumber()
	return res
}
