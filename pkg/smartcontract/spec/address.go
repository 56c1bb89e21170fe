package spec

import (
	"errors"
	"fmt"

	"github.com/stellar/go-stellar-sdk/strkey"
	"github.com/stellar/go-stellar-sdk/xdr"
)

// ErrBadAddress is returned for addresses that are neither G… accounts nor
// C… contracts.
var ErrBadAddress = errors.New("invalid address")

// Addresser is anything that can provide a strkey address (like keypairs).
type Addresser interface {
	Address() string
}

func addressString(v any) (string, error) {
	switch a := v.(type) {
	case string:
		return a, nil
	case Addresser:
		return a.Address(), nil
	}
	return "", fmt.Errorf("%w: %T is not an address", ErrBadAddress, v)
}

// ScAddress converts G… account or C… contract strkey into ScAddress.
func ScAddress(addr string) (xdr.ScAddress, error) {
	if strkey.IsValidEd25519PublicKey(addr) {
		var aid xdr.AccountId
		if err := aid.SetAddress(addr); err != nil {
			return xdr.ScAddress{}, fmt.Errorf("%w: %w", ErrBadAddress, err)
		}
		return xdr.ScAddress{Type: xdr.ScAddressTypeScAddressTypeAccount, AccountId: &aid}, nil
	}
	raw, err := strkey.Decode(strkey.VersionByteContract, addr)
	if err != nil {
		return xdr.ScAddress{}, fmt.Errorf("%w: %q", ErrBadAddress, addr)
	}
	var cid xdr.ContractId
	copy(cid[:], raw)
	return xdr.ScAddress{Type: xdr.ScAddressTypeScAddressTypeContract, ContractId: &cid}, nil
}

// AddressString returns the strkey form of ScAddress.
func AddressString(a xdr.ScAddress) (string, error) {
	s, err := a.String()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBadAddress, err)
	}
	return s, nil
}
