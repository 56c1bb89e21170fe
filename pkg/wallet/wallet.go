/*
Package wallet holds Stellar keypairs used to sign contract invocations and
provides signers for them. Keys are kept in process memory only.
*/
package wallet

import (
	"fmt"

	"github.com/stellar/go-stellar-sdk/keypair"
)

// TestSecret is a well-known secret of a test account used when nothing else
// is configured. Never use it outside of test networks.
const TestSecret = "SBEIDWQVWNLPCP35EYQ6GLWKFQ2MDY7APRLOQ3AJNU6KSE7FXGA7C55W"

// Wallet is a single Stellar keypair along with its address.
type Wallet struct {
	// Keypair is the full (signing) keypair.
	Keypair *keypair.Full

	// Address is the G… public address.
	Address string
}

// New creates a new Wallet with a randomly generated keypair.
func New() (*Wallet, error) {
	kp, err := keypair.Random()
	if err != nil {
		return nil, err
	}
	return FromKeypair(kp), nil
}

// NewFromSecret creates a Wallet from the given S… secret seed.
func NewFromSecret(secret string) (*Wallet, error) {
	kp, err := keypair.ParseFull(secret)
	if err != nil {
		return nil, fmt.Errorf("invalid secret: %w", err)
	}
	return FromKeypair(kp), nil
}

// FromKeypair creates a Wallet for the given keypair.
func FromKeypair(kp *keypair.Full) *Wallet {
	return &Wallet{
		Keypair: kp,
		Address: kp.Address(),
	}
}

// Signer returns BasicSigner for the wallet keypair.
func (w *Wallet) Signer() Signer {
	return BasicSigner(w.Keypair)
}
