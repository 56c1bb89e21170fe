package spec

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/anataliocs/do-math/pkg/encoding/bigint"
	"github.com/holiman/uint256"
	"github.com/stellar/go-stellar-sdk/xdr"
)

// Limits for decoded values, they're not imposed by the XDR itself.
const (
	maxValueBytes  = 1 << 20
	maxValueString = 1 << 20
	maxSymbolLen   = 32
)

var (
	// ErrSchemaMismatch is returned when a value doesn't match the type it's
	// declared to have.
	ErrSchemaMismatch = errors.New("value doesn't match the contract spec")
	// ErrUnsupportedType is returned for spec types that can't be converted
	// to/from Go values (user-defined types and raw Val).
	ErrUnsupportedType = errors.New("unsupported spec type")
)

// EncodeValue converts v to an XDR-encoded ScVal of type td, see ToScVal.
func EncodeValue(td xdr.ScSpecTypeDef, v any) ([]byte, error) {
	val, err := ToScVal(td, v)
	if err != nil {
		return nil, err
	}
	return val.MarshalBinary()
}

// DecodeValue decodes an XDR-encoded ScVal that is expected to be of type td,
// see FromScVal.
func DecodeValue(td xdr.ScSpecTypeDef, b []byte) (any, error) {
	var val xdr.ScVal
	if err := xdr.SafeUnmarshal(b, &val); err != nil {
		return nil, err
	}
	return FromScVal(td, val)
}

func mismatch(td xdr.ScSpecTypeDef, v any) error {
	return fmt.Errorf("%w: can't use %T as %s", ErrSchemaMismatch, v, TypeName(td))
}

func unsupported(td xdr.ScSpecTypeDef) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedType, TypeName(td))
}

// ToScVal converts v to ScVal of type td. Integer types accept any Go
// integer, *big.Int or a decimal string; u256 also accepts *uint256.Int.
// Option<T> accepts Option, nil (None) or a bare T value (Some). Vec and
// tuple values are []any (or any other slice of acceptable element values),
// maps are []MapEntry.
func ToScVal(td xdr.ScSpecTypeDef, v any) (xdr.ScVal, error) {
	var val xdr.ScVal
	switch td.Type {
	case xdr.ScSpecTypeScSpecTypeOption:
		if td.Option == nil {
			return val, unsupported(td)
		}
		o, ok := v.(Option)
		if !ok {
			o = Option{Value: v, Some: v != nil}
		}
		if !o.Some {
			return xdr.ScVal{Type: xdr.ScValTypeScvVoid}, nil
		}
		return ToScVal(td.Option.ValueType, o.Value)
	case xdr.ScSpecTypeScSpecTypeResult:
		if td.Result == nil {
			return val, unsupported(td)
		}
		if ce, ok := v.(*ContractError); ok {
			return errorVal(ce), nil
		}
		return ToScVal(td.Result.OkType, v)
	case xdr.ScSpecTypeScSpecTypeBool:
		b, ok := v.(bool)
		if !ok {
			return val, mismatch(td, v)
		}
		return xdr.ScVal{Type: xdr.ScValTypeScvBool, B: &b}, nil
	case xdr.ScSpecTypeScSpecTypeVoid:
		if v != nil {
			return val, mismatch(td, v)
		}
		return xdr.ScVal{Type: xdr.ScValTypeScvVoid}, nil
	case xdr.ScSpecTypeScSpecTypeError:
		ce, ok := v.(*ContractError)
		if !ok {
			return val, mismatch(td, v)
		}
		return errorVal(ce), nil
	case xdr.ScSpecTypeScSpecTypeU32:
		n, err := toUint64(td, v, math.MaxUint32)
		if err != nil {
			return val, err
		}
		u := xdr.Uint32(n)
		return xdr.ScVal{Type: xdr.ScValTypeScvU32, U32: &u}, nil
	case xdr.ScSpecTypeScSpecTypeI32:
		n, err := toInt64(td, v, math.MinInt32, math.MaxInt32)
		if err != nil {
			return val, err
		}
		i := xdr.Int32(n)
		return xdr.ScVal{Type: xdr.ScValTypeScvI32, I32: &i}, nil
	case xdr.ScSpecTypeScSpecTypeU64:
		n, err := toUint64(td, v, math.MaxUint64)
		if err != nil {
			return val, err
		}
		u := xdr.Uint64(n)
		return xdr.ScVal{Type: xdr.ScValTypeScvU64, U64: &u}, nil
	case xdr.ScSpecTypeScSpecTypeTimepoint:
		n, err := toUint64(td, v, math.MaxUint64)
		if err != nil {
			return val, err
		}
		tp := xdr.TimePoint(n)
		return xdr.ScVal{Type: xdr.ScValTypeScvTimepoint, Timepoint: &tp}, nil
	case xdr.ScSpecTypeScSpecTypeDuration:
		n, err := toUint64(td, v, math.MaxUint64)
		if err != nil {
			return val, err
		}
		d := xdr.Duration(n)
		return xdr.ScVal{Type: xdr.ScValTypeScvDuration, Duration: &d}, nil
	case xdr.ScSpecTypeScSpecTypeI64:
		n, err := toInt64(td, v, math.MinInt64, math.MaxInt64)
		if err != nil {
			return val, err
		}
		i := xdr.Int64(n)
		return xdr.ScVal{Type: xdr.ScValTypeScvI64, I64: &i}, nil
	case xdr.ScSpecTypeScSpecTypeU128:
		n, err := toBig(td, v)
		if err != nil {
			return val, err
		}
		hi, lo, err := bigint.ToUint128Parts(n)
		if err != nil {
			return val, fmt.Errorf("%s: %w", TypeName(td), err)
		}
		return xdr.ScVal{Type: xdr.ScValTypeScvU128, U128: &xdr.UInt128Parts{
			Hi: xdr.Uint64(hi),
			Lo: xdr.Uint64(lo),
		}}, nil
	case xdr.ScSpecTypeScSpecTypeI128:
		n, err := toBig(td, v)
		if err != nil {
			return val, err
		}
		hi, lo, err := bigint.ToInt128Parts(n)
		if err != nil {
			return val, fmt.Errorf("%s: %w", TypeName(td), err)
		}
		return xdr.ScVal{Type: xdr.ScValTypeScvI128, I128: &xdr.Int128Parts{
			Hi: xdr.Int64(hi),
			Lo: xdr.Uint64(lo),
		}}, nil
	case xdr.ScSpecTypeScSpecTypeU256:
		u, err := toUint256(td, v)
		if err != nil {
			return val, err
		}
		hh, hl, lh, ll := bigint.ToUint256Parts(u)
		return xdr.ScVal{Type: xdr.ScValTypeScvU256, U256: &xdr.UInt256Parts{
			HiHi: xdr.Uint64(hh),
			HiLo: xdr.Uint64(hl),
			LoHi: xdr.Uint64(lh),
			LoLo: xdr.Uint64(ll),
		}}, nil
	case xdr.ScSpecTypeScSpecTypeI256:
		n, err := toBig(td, v)
		if err != nil {
			return val, err
		}
		hh, hl, lh, ll, err := bigint.ToInt256Parts(n)
		if err != nil {
			return val, fmt.Errorf("%s: %w", TypeName(td), err)
		}
		return xdr.ScVal{Type: xdr.ScValTypeScvI256, I256: &xdr.Int256Parts{
			HiHi: xdr.Int64(hh),
			HiLo: xdr.Uint64(hl),
			LoHi: xdr.Uint64(lh),
			LoLo: xdr.Uint64(ll),
		}}, nil
	case xdr.ScSpecTypeScSpecTypeBytes, xdr.ScSpecTypeScSpecTypeBytesN:
		raw, ok := v.([]byte)
		if !ok {
			return val, mismatch(td, v)
		}
		if err := checkBytesN(td, len(raw)); err != nil {
			return val, err
		}
		b := xdr.ScBytes(raw)
		return xdr.ScVal{Type: xdr.ScValTypeScvBytes, Bytes: &b}, nil
	case xdr.ScSpecTypeScSpecTypeString:
		s, ok := v.(string)
		if !ok {
			return val, mismatch(td, v)
		}
		str := xdr.ScString(s)
		return xdr.ScVal{Type: xdr.ScValTypeScvString, Str: &str}, nil
	case xdr.ScSpecTypeScSpecTypeSymbol:
		s, ok := v.(string)
		if !ok {
			return val, mismatch(td, v)
		}
		if len(s) > maxSymbolLen {
			return val, fmt.Errorf("%w: symbol %q is too long", ErrSchemaMismatch, s)
		}
		sym := xdr.ScSymbol(s)
		return xdr.ScVal{Type: xdr.ScValTypeScvSymbol, Sym: &sym}, nil
	case xdr.ScSpecTypeScSpecTypeAddress:
		s, err := addressString(v)
		if err != nil {
			return val, fmt.Errorf("%w: %w", ErrSchemaMismatch, err)
		}
		addr, err := ScAddress(s)
		if err != nil {
			return val, err
		}
		return xdr.ScVal{Type: xdr.ScValTypeScvAddress, Address: &addr}, nil
	case xdr.ScSpecTypeScSpecTypeVec, xdr.ScSpecTypeScSpecTypeTuple:
		elems, err := elemTypes(td)
		if err != nil {
			return val, err
		}
		items, ok := toSlice(v)
		if !ok {
			return val, mismatch(td, v)
		}
		if td.Type == xdr.ScSpecTypeScSpecTypeTuple && len(items) != len(elems) {
			return val, fmt.Errorf("%w: %s needs %d elements, got %d", ErrSchemaMismatch, TypeName(td), len(elems), len(items))
		}
		var vec = make(xdr.ScVec, len(items))
		for i, item := range items {
			if vec[i], err = ToScVal(elems.at(i), item); err != nil {
				return val, fmt.Errorf("element %d: %w", i, err)
			}
		}
		pv := &vec
		return xdr.ScVal{Type: xdr.ScValTypeScvVec, Vec: &pv}, nil
	case xdr.ScSpecTypeScSpecTypeMap:
		if td.Map == nil {
			return val, unsupported(td)
		}
		entries, ok := v.([]MapEntry)
		if !ok {
			return val, mismatch(td, v)
		}
		var (
			m   = make(xdr.ScMap, len(entries))
			err error
		)
		for i, e := range entries {
			if m[i].Key, err = ToScVal(td.Map.KeyType, e.Key); err != nil {
				return val, fmt.Errorf("key %d: %w", i, err)
			}
			if m[i].Val, err = ToScVal(td.Map.ValueType, e.Value); err != nil {
				return val, fmt.Errorf("value %d: %w", i, err)
			}
		}
		pm := &m
		return xdr.ScVal{Type: xdr.ScValTypeScvMap, Map: &pm}, nil
	}
	return val, unsupported(td)
}

// FromScVal converts ScVal that is expected to be of type td to a Go value.
// u32, i32, u64 and i64 are returned as the respective Go integers
// (timepoint and duration are uint64), u256 values are returned as
// *uint256.Int, other 128/256-bit ones as *big.Int. Result<T, E> values
// holding an error are returned as *ContractError error.
func FromScVal(td xdr.ScSpecTypeDef, val xdr.ScVal) (any, error) {
	switch td.Type {
	case xdr.ScSpecTypeScSpecTypeOption:
		if td.Option == nil {
			return nil, unsupported(td)
		}
		if val.Type == xdr.ScValTypeScvVoid {
			return None(), nil
		}
		v, err := FromScVal(td.Option.ValueType, val)
		if err != nil {
			return nil, err
		}
		return Some(v), nil
	case xdr.ScSpecTypeScSpecTypeResult:
		if td.Result == nil {
			return nil, unsupported(td)
		}
		if val.Type == xdr.ScValTypeScvError {
			return nil, contractError(val.Error)
		}
		return FromScVal(td.Result.OkType, val)
	case xdr.ScSpecTypeScSpecTypeBool:
		if err := expect(td, val, xdr.ScValTypeScvBool); err != nil {
			return nil, err
		}
		return *val.B, nil
	case xdr.ScSpecTypeScSpecTypeVoid:
		return nil, expect(td, val, xdr.ScValTypeScvVoid)
	case xdr.ScSpecTypeScSpecTypeError:
		if err := expect(td, val, xdr.ScValTypeScvError); err != nil {
			return nil, err
		}
		return contractError(val.Error), nil
	case xdr.ScSpecTypeScSpecTypeU32:
		if err := expect(td, val, xdr.ScValTypeScvU32); err != nil {
			return nil, err
		}
		return uint32(*val.U32), nil
	case xdr.ScSpecTypeScSpecTypeI32:
		if err := expect(td, val, xdr.ScValTypeScvI32); err != nil {
			return nil, err
		}
		return int32(*val.I32), nil
	case xdr.ScSpecTypeScSpecTypeU64:
		if err := expect(td, val, xdr.ScValTypeScvU64); err != nil {
			return nil, err
		}
		return uint64(*val.U64), nil
	case xdr.ScSpecTypeScSpecTypeTimepoint:
		if err := expect(td, val, xdr.ScValTypeScvTimepoint); err != nil {
			return nil, err
		}
		return uint64(*val.Timepoint), nil
	case xdr.ScSpecTypeScSpecTypeDuration:
		if err := expect(td, val, xdr.ScValTypeScvDuration); err != nil {
			return nil, err
		}
		return uint64(*val.Duration), nil
	case xdr.ScSpecTypeScSpecTypeI64:
		if err := expect(td, val, xdr.ScValTypeScvI64); err != nil {
			return nil, err
		}
		return int64(*val.I64), nil
	case xdr.ScSpecTypeScSpecTypeU128:
		if err := expect(td, val, xdr.ScValTypeScvU128); err != nil {
			return nil, err
		}
		return bigint.FromUint128Parts(uint64(val.U128.Hi), uint64(val.U128.Lo)), nil
	case xdr.ScSpecTypeScSpecTypeI128:
		if err := expect(td, val, xdr.ScValTypeScvI128); err != nil {
			return nil, err
		}
		return bigint.FromInt128Parts(int64(val.I128.Hi), uint64(val.I128.Lo)), nil
	case xdr.ScSpecTypeScSpecTypeU256:
		if err := expect(td, val, xdr.ScValTypeScvU256); err != nil {
			return nil, err
		}
		p := val.U256
		return bigint.FromUint256Parts(uint64(p.HiHi), uint64(p.HiLo), uint64(p.LoHi), uint64(p.LoLo)), nil
	case xdr.ScSpecTypeScSpecTypeI256:
		if err := expect(td, val, xdr.ScValTypeScvI256); err != nil {
			return nil, err
		}
		p := val.I256
		return bigint.FromInt256Parts(int64(p.HiHi), uint64(p.HiLo), uint64(p.LoHi), uint64(p.LoLo)), nil
	case xdr.ScSpecTypeScSpecTypeBytes, xdr.ScSpecTypeScSpecTypeBytesN:
		if err := expect(td, val, xdr.ScValTypeScvBytes); err != nil {
			return nil, err
		}
		if len(*val.Bytes) > maxValueBytes {
			return nil, fmt.Errorf("%w: %d bytes value is too big", ErrSchemaMismatch, len(*val.Bytes))
		}
		if err := checkBytesN(td, len(*val.Bytes)); err != nil {
			return nil, err
		}
		return []byte(*val.Bytes), nil
	case xdr.ScSpecTypeScSpecTypeString:
		if err := expect(td, val, xdr.ScValTypeScvString); err != nil {
			return nil, err
		}
		if len(*val.Str) > maxValueString {
			return nil, fmt.Errorf("%w: %d bytes string is too long", ErrSchemaMismatch, len(*val.Str))
		}
		return string(*val.Str), nil
	case xdr.ScSpecTypeScSpecTypeSymbol:
		if err := expect(td, val, xdr.ScValTypeScvSymbol); err != nil {
			return nil, err
		}
		return string(*val.Sym), nil
	case xdr.ScSpecTypeScSpecTypeAddress:
		if err := expect(td, val, xdr.ScValTypeScvAddress); err != nil {
			return nil, err
		}
		return AddressString(*val.Address)
	case xdr.ScSpecTypeScSpecTypeVec, xdr.ScSpecTypeScSpecTypeTuple:
		elems, err := elemTypes(td)
		if err != nil {
			return nil, err
		}
		if err := expect(td, val, xdr.ScValTypeScvVec); err != nil {
			return nil, err
		}
		if val.Vec == nil || *val.Vec == nil {
			return nil, fmt.Errorf("%w: missing vector body", ErrSchemaMismatch)
		}
		vec := **val.Vec
		if td.Type == xdr.ScSpecTypeScSpecTypeTuple && len(vec) != len(elems) {
			return nil, fmt.Errorf("%w: %s has %d elements", ErrSchemaMismatch, TypeName(td), len(vec))
		}
		items := make([]any, len(vec))
		for i := range vec {
			if items[i], err = FromScVal(elems.at(i), vec[i]); err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
		}
		return items, nil
	case xdr.ScSpecTypeScSpecTypeMap:
		if td.Map == nil {
			return nil, unsupported(td)
		}
		if err := expect(td, val, xdr.ScValTypeScvMap); err != nil {
			return nil, err
		}
		if val.Map == nil || *val.Map == nil {
			return nil, fmt.Errorf("%w: missing map body", ErrSchemaMismatch)
		}
		var (
			m       = **val.Map
			entries = make([]MapEntry, len(m))
			err     error
		)
		for i := range m {
			if entries[i].Key, err = FromScVal(td.Map.KeyType, m[i].Key); err != nil {
				return nil, fmt.Errorf("key %d: %w", i, err)
			}
			if entries[i].Value, err = FromScVal(td.Map.ValueType, m[i].Val); err != nil {
				return nil, fmt.Errorf("value %d: %w", i, err)
			}
		}
		return entries, nil
	}
	return nil, unsupported(td)
}

func expect(td xdr.ScSpecTypeDef, val xdr.ScVal, want xdr.ScValType) error {
	if val.Type != want {
		return fmt.Errorf("%w: expected %s, got %s", ErrSchemaMismatch, TypeName(td), val.Type)
	}
	return nil
}

// elems holds Vec element type (single one for any index) or tuple types.
type elems []xdr.ScSpecTypeDef

func (e elems) at(i int) xdr.ScSpecTypeDef {
	if len(e) == 1 {
		return e[0]
	}
	return e[i]
}

func elemTypes(td xdr.ScSpecTypeDef) (elems, error) {
	switch {
	case td.Type == xdr.ScSpecTypeScSpecTypeVec && td.Vec != nil:
		return elems{td.Vec.ElementType}, nil
	case td.Type == xdr.ScSpecTypeScSpecTypeTuple && td.Tuple != nil:
		return td.Tuple.ValueTypes, nil
	}
	return nil, unsupported(td)
}

func checkBytesN(td xdr.ScSpecTypeDef, n int) error {
	if td.Type != xdr.ScSpecTypeScSpecTypeBytesN {
		return nil
	}
	if td.BytesN == nil {
		return unsupported(td)
	}
	if n != int(td.BytesN.N) {
		return fmt.Errorf("%w: %s needs %d bytes, got %d", ErrSchemaMismatch, TypeName(td), td.BytesN.N, n)
	}
	return nil
}

func errorVal(ce *ContractError) xdr.ScVal {
	e := xdr.ScError{Type: xdr.ScErrorType(ce.Type)}
	if e.Type == xdr.ScErrorTypeSceContract {
		code := xdr.Uint32(ce.Code)
		e.ContractCode = &code
	} else {
		code := xdr.ScErrorCode(ce.Code)
		e.Code = &code
	}
	return xdr.ScVal{Type: xdr.ScValTypeScvError, Error: &e}
}

func contractError(e *xdr.ScError) *ContractError {
	ce := &ContractError{Type: int32(e.Type)}
	switch {
	case e.Type == xdr.ScErrorTypeSceContract && e.ContractCode != nil:
		ce.Code = uint32(*e.ContractCode)
	case e.Code != nil:
		ce.Code = uint32(*e.Code)
	}
	return ce
}

func toSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []string:
		res := make([]any, len(s))
		for i := range s {
			res[i] = s[i]
		}
		return res, true
	case []*big.Int:
		res := make([]any, len(s))
		for i := range s {
			res[i] = s[i]
		}
		return res, true
	case [][]byte:
		res := make([]any, len(s))
		for i := range s {
			res[i] = s[i]
		}
		return res, true
	}
	return nil, false
}

func toBig(td xdr.ScSpecTypeDef, v any) (*big.Int, error) {
	switch n := v.(type) {
	case *big.Int:
		if n == nil {
			return nil, mismatch(td, v)
		}
		return n, nil
	case *uint256.Int:
		if n == nil {
			return nil, mismatch(td, v)
		}
		return n.ToBig(), nil
	case string:
		b, ok := new(big.Int).SetString(n, 10)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not a decimal integer", ErrSchemaMismatch, n)
		}
		return b, nil
	case int:
		return big.NewInt(int64(n)), nil
	case int8:
		return big.NewInt(int64(n)), nil
	case int16:
		return big.NewInt(int64(n)), nil
	case int32:
		return big.NewInt(int64(n)), nil
	case int64:
		return big.NewInt(n), nil
	case uint:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint64:
		return new(big.Int).SetUint64(n), nil
	}
	return nil, mismatch(td, v)
}

func toUint64(td xdr.ScSpecTypeDef, v any, max uint64) (uint64, error) {
	n, err := toBig(td, v)
	if err != nil {
		return 0, err
	}
	if !n.IsUint64() || n.Uint64() > max {
		return 0, fmt.Errorf("%s: %w", TypeName(td), bigint.ErrOverflow)
	}
	return n.Uint64(), nil
}

func toInt64(td xdr.ScSpecTypeDef, v any, min, max int64) (int64, error) {
	n, err := toBig(td, v)
	if err != nil {
		return 0, err
	}
	if !n.IsInt64() || n.Int64() < min || n.Int64() > max {
		return 0, fmt.Errorf("%s: %w", TypeName(td), bigint.ErrOverflow)
	}
	return n.Int64(), nil
}

func toUint256(td xdr.ScSpecTypeDef, v any) (*uint256.Int, error) {
	if u, ok := v.(*uint256.Int); ok && u != nil {
		return u, nil
	}
	n, err := toBig(td, v)
	if err != nil {
		return nil, err
	}
	if n.Sign() < 0 {
		return nil, fmt.Errorf("%s: %w", TypeName(td), bigint.ErrOverflow)
	}
	u, overflow := uint256.FromBig(n)
	if overflow {
		return nil, fmt.Errorf("%s: %w", TypeName(td), bigint.ErrOverflow)
	}
	return u, nil
}
