package wallet

import (
	"context"
	"testing"

	"github.com/stellar/go-stellar-sdk/keypair"
	"github.com/stellar/go-stellar-sdk/network"
	"github.com/stellar/go-stellar-sdk/txnbuild"
	"github.com/stretchr/testify/require"
)

func TestNewWallet(t *testing.T) {
	w, err := New()
	require.NoError(t, err)
	require.Equal(t, w.Keypair.Address(), w.Address)

	w2, err := New()
	require.NoError(t, err)
	require.NotEqual(t, w.Address, w2.Address)
}

func TestNewFromSecret(t *testing.T) {
	w, err := NewFromSecret(TestSecret)
	require.NoError(t, err)
	require.Equal(t, TestSecret, w.Keypair.Seed())

	_, err = NewFromSecret("SBAD")
	require.Error(t, err)
}

func TestPlaceholder(t *testing.T) {
	require.Equal(t, "GAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAWHF", PlaceholderAddress)
	require.True(t, IsPlaceholder(PlaceholderAddress))
	require.False(t, IsPlaceholder(keypair.MustRandom().Address()))
}

func buildTx(t *testing.T, source string) string {
	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        &txnbuild.SimpleAccount{AccountID: source, Sequence: 1},
		IncrementSequenceNum: true,
		Operations:           []txnbuild.Operation{&txnbuild.BumpSequence{BumpTo: 5}},
		BaseFee:              txnbuild.MinBaseFee,
		Preconditions:        txnbuild.Preconditions{TimeBounds: txnbuild.NewTimeout(300)},
	})
	require.NoError(t, err)
	env, err := tx.Base64()
	require.NoError(t, err)
	return env
}

func TestBasicSigner(t *testing.T) {
	w, err := NewFromSecret(TestSecret)
	require.NoError(t, err)
	sign := w.Signer()

	signed, err := sign(context.Background(), buildTx(t, w.Address), network.TestNetworkPassphrase)
	require.NoError(t, err)

	gtx, err := txnbuild.TransactionFromXDR(signed)
	require.NoError(t, err)
	tx, ok := gtx.Transaction()
	require.True(t, ok)
	require.Len(t, tx.Signatures(), 1)

	t.Run("wrong source", func(t *testing.T) {
		_, err := sign(context.Background(), buildTx(t, keypair.MustRandom().Address()), network.TestNetworkPassphrase)
		require.ErrorIs(t, err, ErrWrongSigner)
	})
	t.Run("bad envelope", func(t *testing.T) {
		_, err := sign(context.Background(), "AAAA", network.TestNetworkPassphrase)
		require.Error(t, err)
	})
	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := sign(ctx, buildTx(t, w.Address), network.TestNetworkPassphrase)
		require.ErrorIs(t, err, context.Canceled)
	})
}
