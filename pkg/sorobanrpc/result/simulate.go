/*
Package result contains a set of types used to represent results of Stellar
RPC calls. XDR values are kept in their base64 form, it's up to the caller to
decode them into the types it needs.
*/
package result

import (
	"encoding/json"
	"strconv"
)

// SimulateTransaction is the result of simulateTransaction call.
type SimulateTransaction struct {
	// TransactionData is a base64 XDR SorobanTransactionData to attach to
	// the transaction.
	TransactionData string `json:"transactionData,omitempty"`
	// MinResourceFee is the resource fee to add on top of the base one.
	MinResourceFee  int64                  `json:"-"`
	Events          []string               `json:"events,omitempty"`
	Results         []SimulateHostFunction `json:"results,omitempty"`
	RestorePreamble *RestorePreamble       `json:"restorePreamble,omitempty"`
	Error           string                 `json:"error,omitempty"`
	LatestLedger    uint32                 `json:"latestLedger"`
}

// SimulateHostFunction is a single host function invocation result.
type SimulateHostFunction struct {
	// Auth lists base64 XDR SorobanAuthorizationEntry values.
	Auth []string `json:"auth"`
	// XDR is the base64 XDR ScVal return value.
	XDR string `json:"xdr"`
}

// RestorePreamble is returned when some footprint entries are archived and
// must be restored before the transaction can succeed.
type RestorePreamble struct {
	TransactionData string `json:"transactionData"`
	MinResourceFee  int64  `json:"-"`
}

type simulateAux struct {
	TransactionData string                 `json:"transactionData,omitempty"`
	MinResourceFee  json.Number            `json:"minResourceFee,omitempty"`
	Events          []string               `json:"events,omitempty"`
	Results         []SimulateHostFunction `json:"results,omitempty"`
	RestorePreamble *restoreAux            `json:"restorePreamble,omitempty"`
	Error           string                 `json:"error,omitempty"`
	LatestLedger    uint32                 `json:"latestLedger"`
}

type restoreAux struct {
	TransactionData string      `json:"transactionData"`
	MinResourceFee  json.Number `json:"minResourceFee"`
}

// IsError denotes whether the simulation failed.
func (s *SimulateTransaction) IsError() bool {
	return s.Error != ""
}

// MarshalJSON implements the json.Marshaler interface.
func (s SimulateTransaction) MarshalJSON() ([]byte, error) {
	aux := simulateAux{
		TransactionData: s.TransactionData,
		MinResourceFee:  json.Number(strconv.FormatInt(s.MinResourceFee, 10)),
		Events:          s.Events,
		Results:         s.Results,
		Error:           s.Error,
		LatestLedger:    s.LatestLedger,
	}
	if s.RestorePreamble != nil {
		aux.RestorePreamble = &restoreAux{
			TransactionData: s.RestorePreamble.TransactionData,
			MinResourceFee:  json.Number(strconv.FormatInt(s.RestorePreamble.MinResourceFee, 10)),
		}
	}
	return json.Marshal(aux)
}

// UnmarshalJSON implements the json.Unmarshaler interface. Fees are accepted
// both as JSON numbers and as strings.
func (s *SimulateTransaction) UnmarshalJSON(data []byte) error {
	var aux simulateAux
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	fee, err := parseFee(aux.MinResourceFee)
	if err != nil {
		return err
	}
	*s = SimulateTransaction{
		TransactionData: aux.TransactionData,
		MinResourceFee:  fee,
		Events:          aux.Events,
		Results:         aux.Results,
		Error:           aux.Error,
		LatestLedger:    aux.LatestLedger,
	}
	if aux.RestorePreamble != nil {
		fee, err = parseFee(aux.RestorePreamble.MinResourceFee)
		if err != nil {
			return err
		}
		s.RestorePreamble = &RestorePreamble{
			TransactionData: aux.RestorePreamble.TransactionData,
			MinResourceFee:  fee,
		}
	}
	return nil
}

func parseFee(n json.Number) (int64, error) {
	if n == "" {
		return 0, nil
	}
	return strconv.ParseInt(string(n), 10, 64)
}
