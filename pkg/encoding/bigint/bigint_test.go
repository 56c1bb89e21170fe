package bigint

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func mustBig(t *testing.T, s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok)
	return n
}

func TestInt128RoundTrip(t *testing.T) {
	for _, s := range []string{
		"0", "1", "-1", "5",
		"18446744073709551615",
		"18446744073709551616",
		"-18446744073709551616",
		"170141183460469231731687303715884105727",
		"-170141183460469231731687303715884105728",
	} {
		n := mustBig(t, s)
		hi, lo, err := ToInt128Parts(n)
		require.NoError(t, err, s)
		require.Equal(t, 0, n.Cmp(FromInt128Parts(hi, lo)), s)
	}

	hi, lo, err := ToInt128Parts(big.NewInt(-1))
	require.NoError(t, err)
	require.Equal(t, int64(-1), hi)
	require.Equal(t, ^uint64(0), lo)

	_, _, err = ToInt128Parts(mustBig(t, "170141183460469231731687303715884105728"))
	require.ErrorIs(t, err, ErrOverflow)
	_, _, err = ToInt128Parts(mustBig(t, "-170141183460469231731687303715884105729"))
	require.ErrorIs(t, err, ErrOverflow)
}

func TestUint128RoundTrip(t *testing.T) {
	n := mustBig(t, "340282366920938463463374607431768211455")
	hi, lo, err := ToUint128Parts(n)
	require.NoError(t, err)
	require.Equal(t, ^uint64(0), hi)
	require.Equal(t, ^uint64(0), lo)
	require.Equal(t, 0, n.Cmp(FromUint128Parts(hi, lo)))

	_, _, err = ToUint128Parts(big.NewInt(-1))
	require.ErrorIs(t, err, ErrOverflow)
	_, _, err = ToUint128Parts(new(big.Int).Add(n, big.NewInt(1)))
	require.ErrorIs(t, err, ErrOverflow)
}

func TestInt256RoundTrip(t *testing.T) {
	for _, s := range []string{
		"0", "-1", "123456789012345678901234567890",
		"-57896044618658097711785492504343953926634992332820282019728792003956564819968",
		"57896044618658097711785492504343953926634992332820282019728792003956564819967",
	} {
		n := mustBig(t, s)
		hh, hl, lh, ll, err := ToInt256Parts(n)
		require.NoError(t, err, s)
		require.Equal(t, 0, n.Cmp(FromInt256Parts(hh, hl, lh, ll)), s)
	}
	_, _, _, _, err := ToInt256Parts(mustBig(t, "57896044618658097711785492504343953926634992332820282019728792003956564819968"))
	require.ErrorIs(t, err, ErrOverflow)
}

func TestUint256RoundTrip(t *testing.T) {
	v := uint256.NewInt(42)
	v.Lsh(v, 200)
	hh, hl, lh, ll := ToUint256Parts(v)
	require.Equal(t, v, FromUint256Parts(hh, hl, lh, ll))
}
