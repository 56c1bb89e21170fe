package result

// Network is the result of getNetwork call.
type Network struct {
	FriendbotURL    string `json:"friendbotUrl,omitempty"`
	Passphrase      string `json:"passphrase"`
	ProtocolVersion int    `json:"protocolVersion"`
}

// Health is the result of getHealth call.
type Health struct {
	Status                string `json:"status"`
	LatestLedger          uint32 `json:"latestLedger"`
	OldestLedger          uint32 `json:"oldestLedger"`
	LedgerRetentionWindow uint32 `json:"ledgerRetentionWindow"`
}

// LatestLedger is the result of getLatestLedger call.
type LatestLedger struct {
	ID              string `json:"id"`
	ProtocolVersion int    `json:"protocolVersion"`
	Sequence        uint32 `json:"sequence"`
}

// LedgerEntries is the result of getLedgerEntries call.
type LedgerEntries struct {
	Entries      []LedgerEntry `json:"entries"`
	LatestLedger uint32        `json:"latestLedger"`
}

// LedgerEntry is a single ledger entry, Key and XDR are base64 XDR LedgerKey
// and LedgerEntryData respectively.
type LedgerEntry struct {
	Key                string  `json:"key"`
	XDR                string  `json:"xdr"`
	LastModifiedLedger uint32  `json:"lastModifiedLedgerSeq"`
	LiveUntilLedgerSeq *uint32 `json:"liveUntilLedgerSeq,omitempty"`
}

// Account is a Stellar account state needed to build transactions.
type Account struct {
	Address  string `json:"address"`
	Sequence int64  `json:"sequence"`
}
