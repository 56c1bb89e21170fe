package result

// sendTransaction statuses.
const (
	SendPending       = "PENDING"
	SendDuplicate     = "DUPLICATE"
	SendTryAgainLater = "TRY_AGAIN_LATER"
	SendError         = "ERROR"
)

// getTransaction statuses.
const (
	TransactionSuccess  = "SUCCESS"
	TransactionNotFound = "NOT_FOUND"
	TransactionFailed   = "FAILED"
)

// SendTransaction is the result of sendTransaction call.
type SendTransaction struct {
	Status string `json:"status"`
	Hash   string `json:"hash"`
	// ErrorResultXDR is a base64 XDR TransactionResult for ERROR status.
	ErrorResultXDR        string   `json:"errorResultXdr,omitempty"`
	DiagnosticEventsXDR   []string `json:"diagnosticEventsXdr,omitempty"`
	LatestLedger          uint32   `json:"latestLedger"`
	LatestLedgerCloseTime string   `json:"latestLedgerCloseTime,omitempty"`
}

// Accepted denotes whether the transaction was taken for processing.
func (s *SendTransaction) Accepted() bool {
	return s.Status == SendPending || s.Status == SendDuplicate
}

// GetTransaction is the result of getTransaction call.
type GetTransaction struct {
	Status                string `json:"status"`
	LatestLedger          uint32 `json:"latestLedger"`
	LatestLedgerCloseTime string `json:"latestLedgerCloseTime,omitempty"`
	OldestLedger          uint32 `json:"oldestLedger,omitempty"`
	ApplicationOrder      int    `json:"applicationOrder,omitempty"`
	FeeBump               bool   `json:"feeBump,omitempty"`
	EnvelopeXDR           string `json:"envelopeXdr,omitempty"`
	ResultXDR             string `json:"resultXdr,omitempty"`
	// ResultMetaXDR is a base64 XDR TransactionMeta, it contains the
	// contract return value.
	ResultMetaXDR string `json:"resultMetaXdr,omitempty"`
	Ledger        uint32 `json:"ledger,omitempty"`
	CreatedAt     string `json:"createdAt,omitempty"`
}

// Final denotes whether the status can't change anymore.
func (g *GetTransaction) Final() bool {
	return g.Status == TransactionSuccess || g.Status == TransactionFailed
}
