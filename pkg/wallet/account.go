package wallet

import (
	"github.com/stellar/go-stellar-sdk/strkey"
)

// PlaceholderAddress is the all-zero ed25519 account. It's used as the
// transaction source for read-only simulations when there is no real account
// to build a transaction for. Sequence number of it is always zero.
var PlaceholderAddress = strkey.MustEncode(strkey.VersionByteAccountID, make([]byte, 32))

// IsPlaceholder denotes whether the address is PlaceholderAddress.
func IsPlaceholder(address string) bool {
	return address == PlaceholderAddress
}
