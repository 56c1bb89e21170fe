/*
Package bigint converts between math/big integers and the fixed-width hi/lo
parts Soroban uses for 128- and 256-bit values.
*/
package bigint

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"
)

// ErrOverflow is returned when a value doesn't fit into the requested width.
var ErrOverflow = errors.New("integer overflow")

var (
	mask64 = new(big.Int).SetUint64(^uint64(0))

	minI128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	maxI128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	maxU128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	minI256 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 255))
	maxI256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 255), big.NewInt(1))

	two128 = new(big.Int).Lsh(big.NewInt(1), 128)
	two256 = new(big.Int).Lsh(big.NewInt(1), 256)
)

// ToUint128Parts splits a non-negative integer below 2^128 into its high and
// low 64-bit words.
func ToUint128Parts(n *big.Int) (hi uint64, lo uint64, err error) {
	if n.Sign() < 0 || n.Cmp(maxU128) > 0 {
		return 0, 0, ErrOverflow
	}
	hi, lo = words128(n)
	return hi, lo, nil
}

// FromUint128Parts is the inverse of ToUint128Parts.
func FromUint128Parts(hi, lo uint64) *big.Int {
	n := new(big.Int).SetUint64(hi)
	n.Lsh(n, 64)
	return n.Or(n, new(big.Int).SetUint64(lo))
}

// ToInt128Parts splits a signed integer in [-2^127, 2^127) into the two's
// complement high word (signed) and low word.
func ToInt128Parts(n *big.Int) (hi int64, lo uint64, err error) {
	if n.Cmp(minI128) < 0 || n.Cmp(maxI128) > 0 {
		return 0, 0, ErrOverflow
	}
	u := n
	if n.Sign() < 0 {
		u = new(big.Int).Add(n, two128)
	}
	h, l := words128(u)
	return int64(h), l, nil
}

// FromInt128Parts is the inverse of ToInt128Parts.
func FromInt128Parts(hi int64, lo uint64) *big.Int {
	n := FromUint128Parts(uint64(hi), lo)
	if hi < 0 {
		n.Sub(n, two128)
	}
	return n
}

// ToInt256Parts splits a signed integer in [-2^255, 2^255) into four words,
// most significant first.
func ToInt256Parts(n *big.Int) (hiHi int64, hiLo, loHi, loLo uint64, err error) {
	if n.Cmp(minI256) < 0 || n.Cmp(maxI256) > 0 {
		return 0, 0, 0, 0, ErrOverflow
	}
	u := n
	if n.Sign() < 0 {
		u = new(big.Int).Add(n, two256)
	}
	var v uint256.Int
	v.SetFromBig(u)
	return int64(v[3]), v[2], v[1], v[0], nil
}

// FromInt256Parts is the inverse of ToInt256Parts.
func FromInt256Parts(hiHi int64, hiLo, loHi, loLo uint64) *big.Int {
	v := uint256.Int{loLo, loHi, hiLo, uint64(hiHi)}
	n := v.ToBig()
	if hiHi < 0 {
		n.Sub(n, two256)
	}
	return n
}

// ToUint256Parts returns the four words of v, most significant first.
func ToUint256Parts(v *uint256.Int) (hiHi, hiLo, loHi, loLo uint64) {
	return v[3], v[2], v[1], v[0]
}

// FromUint256Parts is the inverse of ToUint256Parts.
func FromUint256Parts(hiHi, hiLo, loHi, loLo uint64) *uint256.Int {
	return &uint256.Int{loLo, loHi, hiLo, hiHi}
}

func words128(n *big.Int) (hi uint64, lo uint64) {
	lo = new(big.Int).And(n, mask64).Uint64()
	hi = new(big.Int).Rsh(n, 64).Uint64()
	return hi, lo
}
