/*
Package sorobanrpc contains a set of types used for JSON-RPC communication with
Stellar RPC (Soroban) servers. It defines basic request/response types and
method-specific parameters, method results live in the result subpackage.
*/
package sorobanrpc

import (
	"encoding/json"
	"fmt"
)

// JSONRPCVersion is the only JSON-RPC protocol version supported.
const JSONRPCVersion = "2.0"

// RPC method names.
const (
	GetHealthMethod           = "getHealth"
	GetNetworkMethod          = "getNetwork"
	GetLatestLedgerMethod     = "getLatestLedger"
	GetLedgerEntriesMethod    = "getLedgerEntries"
	SimulateTransactionMethod = "simulateTransaction"
	SendTransactionMethod     = "sendTransaction"
	GetTransactionMethod      = "getTransaction"
)

type (
	// Request represents JSON-RPC request. Stellar RPC methods take their
	// parameters as a JSON object, so Params is usually one of the *Params
	// structures below (or nil for parameterless methods).
	Request struct {
		JSONRPC string `json:"jsonrpc"`
		Method  string `json:"method"`
		Params  any    `json:"params,omitempty"`
		ID      uint64 `json:"id"`
	}

	// Header is a generic JSON-RPC 2.0 response header (ID and JSON-RPC version).
	Header struct {
		ID      json.RawMessage `json:"id"`
		JSONRPC string          `json:"jsonrpc"`
	}

	// HeaderAndError adds an Error (that can be empty) to the Header.
	HeaderAndError struct {
		Header
		Error *Error `json:"error,omitempty"`
	}

	// Response represents a standard raw JSON-RPC 2.0
	// response: http://www.jsonrpc.org/specification#response_object.
	Response struct {
		HeaderAndError
		Result json.RawMessage `json:"result,omitempty"`
	}

	// Error represents JSON-RPC error returned by the server.
	Error struct {
		Code    int64  `json:"code"`
		Message string `json:"message"`
		Data    string `json:"data,omitempty"`
	}
)

type (
	// SimulateTransactionParams are parameters of simulateTransaction.
	SimulateTransactionParams struct {
		Transaction    string          `json:"transaction"`
		ResourceConfig *ResourceConfig `json:"resourceConfig,omitempty"`
	}

	// ResourceConfig tunes simulation resource accounting.
	ResourceConfig struct {
		InstructionLeeway uint64 `json:"instructionLeeway"`
	}

	// SendTransactionParams are parameters of sendTransaction.
	SendTransactionParams struct {
		Transaction string `json:"transaction"`
	}

	// GetTransactionParams are parameters of getTransaction.
	GetTransactionParams struct {
		Hash string `json:"hash"`
	}

	// GetLedgerEntriesParams are parameters of getLedgerEntries, keys are
	// base64-encoded XDR LedgerKey values.
	GetLedgerEntriesParams struct {
		Keys []string `json:"keys"`
	}
)

// Standard JSON-RPC error codes.
const (
	InternalServerErrorCode = -32603
	InvalidParamsCode       = -32602
	MethodNotFoundCode      = -32601
	InvalidRequestCode      = -32600
	ParseErrorCode          = -32700
)

// NewError is an Error constructor.
func NewError(code int64, message string, data string) *Error {
	return &Error{Code: code, Message: message, Data: data}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Data == "" {
		return fmt.Sprintf("%s (%d)", e.Message, e.Code)
	}
	return fmt.Sprintf("%s (%d) - %s", e.Message, e.Code, e.Data)
}

// Is denotes whether the error matches the target one.
func (e *Error) Is(target error) bool {
	clTarget, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == clTarget.Code
}
