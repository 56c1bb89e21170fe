package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/stellar/go-stellar-sdk/keypair"
	"github.com/stellar/go-stellar-sdk/txnbuild"
)

// ErrWrongSigner is returned when asked to sign a transaction that has a
// different source account.
var ErrWrongSigner = errors.New("transaction source doesn't match the signer")

// Signer signs base64 XDR transaction envelope for the network identified by
// passphrase and returns the signed envelope. It can be backed by a local key,
// a remote service or a hardware wallet.
type Signer func(ctx context.Context, envelope string, passphrase string) (string, error)

// BasicSigner returns a Signer that signs with the given local keypair. It
// only signs transactions sourced from the keypair account.
func BasicSigner(kp *keypair.Full) Signer {
	return func(ctx context.Context, envelope string, passphrase string) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		gtx, err := txnbuild.TransactionFromXDR(envelope)
		if err != nil {
			return "", fmt.Errorf("bad envelope: %w", err)
		}
		tx, ok := gtx.Transaction()
		if !ok {
			return "", errors.New("fee bump transactions are not supported")
		}
		src := tx.SourceAccount()
		if src.AccountID != kp.Address() {
			return "", fmt.Errorf("%w: %s", ErrWrongSigner, src.AccountID)
		}
		tx, err = tx.Sign(passphrase, kp)
		if err != nil {
			return "", err
		}
		return tx.Base64()
	}
}
