package spec

import (
	"encoding/base64"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/anataliocs/do-math/internal/testserdes"
	"github.com/holiman/uint256"
	"github.com/stellar/go-stellar-sdk/xdr"
	"github.com/stretchr/testify/require"
)

const (
	doMathV1 = "AAAAAAAAAAAAAAAHZG9fbWF0aAAAAAADAAAAAAAAAAZzb3VyY2UAAAAAABMAAAAAAAAAAWEAAAAAAAALAAAAAAAAAAFiAAAAAAAACwAAAAEAAAAL"
	doMathV2 = "AAAAAAAAAAAAAAAHZG9fbWF0aAAAAAAEAAAAAAAAAAZzb3VyY2UAAAAAABMAAAAAAAAAAWEAAAAAAAALAAAAAAAAAAFiAAAAAAAACwAAAAAAAAADc2FjAAAAA+gAAAATAAAAAQAAAAs="

	zeroAccount = "GAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAWHF"
	contractID  = "CB2TOIAQHT6DZRLAZWJIZMQNBIKG2LJWBXCTXDDVVBNBZCXDSQD4H2DS"
)

var (
	u32Type  = Simple(xdr.ScSpecTypeScSpecTypeU32)
	i128Type = Simple(xdr.ScSpecTypeScSpecTypeI128)
)

func hexVal(t *testing.T, v xdr.ScVal) string {
	b, err := v.MarshalBinary()
	require.NoError(t, err)
	return hex.EncodeToString(b)
}

func TestFromBase64(t *testing.T) {
	t.Run("v1", func(t *testing.T) {
		s, err := FromBase64(doMathV1)
		require.NoError(t, err)
		f, err := s.Function("do_math")
		require.NoError(t, err)
		require.Equal(t, "do_math(source: address, a: i128, b: i128) -> i128", f.Signature())
		require.Len(t, s.Functions(), 1)
	})
	t.Run("v2", func(t *testing.T) {
		s, err := FromBase64(doMathV2)
		require.NoError(t, err)
		f, err := s.Function("do_math")
		require.NoError(t, err)
		require.Equal(t, "do_math(source: address, a: i128, b: i128, sac: Option<address>) -> i128", f.Signature())
		require.Equal(t, OptionOf(Simple(xdr.ScSpecTypeScSpecTypeAddress)), f.Inputs[3].Type)
	})
	t.Run("cached", func(t *testing.T) {
		s1, err := FromBase64(doMathV2)
		require.NoError(t, err)
		s2, err := FromBase64(doMathV2)
		require.NoError(t, err)
		require.True(t, s1 == s2)
	})
	t.Run("no function", func(t *testing.T) {
		s, err := FromBase64(doMathV1)
		require.NoError(t, err)
		_, err = s.Function("hello")
		require.ErrorIs(t, err, ErrNoFunction)
	})
	t.Run("bad base64", func(t *testing.T) {
		_, err := FromBase64("not base64!")
		require.Error(t, err)
	})
	t.Run("truncated", func(t *testing.T) {
		raw, err := base64.StdEncoding.DecodeString(doMathV2)
		require.NoError(t, err)
		_, err = Decode(raw[:len(raw)-4])
		require.Error(t, err)
	})
	t.Run("empty", func(t *testing.T) {
		_, err := Decode(nil)
		require.Error(t, err)
	})
}

func TestDecodeOtherEntries(t *testing.T) {
	var raw []byte
	for _, e := range []xdr.ScSpecEntry{
		{
			Kind: xdr.ScSpecEntryKindScSpecEntryUdtErrorEnumV0,
			UdtErrorEnumV0: &xdr.ScSpecUdtErrorEnumV0{
				Name: "MathError",
				Cases: []xdr.ScSpecUdtErrorEnumCaseV0{
					{Name: "Overflow", Value: 1},
				},
			},
		},
		{
			Kind:        xdr.ScSpecEntryKindScSpecEntryUdtStructV0,
			UdtStructV0: &xdr.ScSpecUdtStructV0{Name: "Pair"},
		},
	} {
		b, err := e.MarshalBinary()
		require.NoError(t, err)
		raw = append(raw, b...)
	}
	fn, err := base64.StdEncoding.DecodeString(doMathV2)
	require.NoError(t, err)

	s, err := Decode(append(raw, fn...))
	require.NoError(t, err)
	require.Equal(t, []string{"MathError", "Pair"}, s.TypeNames())
	name, ok := s.ErrorName(1)
	require.True(t, ok)
	require.Equal(t, "Overflow", name)

	_, err = s.DecodeResult("do_math", errorVal(&ContractError{Code: 1}))
	require.ErrorIs(t, err, ErrSchemaMismatch)

	// Spec without functions is useless.
	_, err = Decode(raw)
	require.Error(t, err)
}

func TestFunctionMarshalBinary(t *testing.T) {
	for _, d := range []string{doMathV1, doMathV2} {
		raw, err := base64.StdEncoding.DecodeString(d)
		require.NoError(t, err)
		s, err := Decode(raw)
		require.NoError(t, err)

		b, err := s.Functions()[0].MarshalBinary()
		require.NoError(t, err)
		require.Equal(t, raw, b)

		testserdes.EncodeDecodeBinary(t, s.Functions()[0], new(Function))
	}
}

func TestDuplicateParams(t *testing.T) {
	f := &Function{
		Name: "f",
		Inputs: []Param{
			{Name: "a", Type: u32Type},
			{Name: "a", Type: u32Type},
		},
	}
	b, err := f.MarshalBinary()
	require.NoError(t, err)
	_, err = Decode(b)
	require.Error(t, err)
	require.Error(t, new(Function).UnmarshalBinary(b))
}

func TestEncodeArgs(t *testing.T) {
	v1, err := FromBase64(doMathV1)
	require.NoError(t, err)
	v2, err := FromBase64(doMathV2)
	require.NoError(t, err)
	f1, _ := v1.Function("do_math")
	f2, _ := v2.Function("do_math")

	t.Run("v1 exact slots", func(t *testing.T) {
		args, err := f1.EncodeArgs(map[string]any{"source": zeroAccount, "a": 5, "b": big.NewInt(7)})
		require.NoError(t, err)
		require.Len(t, args, 3)
		require.Equal(t, "00000012"+"00000000"+"00000000"+hex.EncodeToString(make([]byte, 32)), hexVal(t, args[0]))
		require.Equal(t, "0000000a"+"0000000000000000"+"0000000000000005", hexVal(t, args[1]))
		require.Equal(t, "0000000a"+"0000000000000000"+"0000000000000007", hexVal(t, args[2]))
	})
	t.Run("v1 rejects sac", func(t *testing.T) {
		_, err := f1.EncodeArgs(map[string]any{"source": zeroAccount, "a": 5, "b": 7, "sac": contractID})
		require.ErrorIs(t, err, ErrSchemaMismatch)
	})
	t.Run("v2 missing sac is none", func(t *testing.T) {
		args, err := f2.EncodeArgs(map[string]any{"source": zeroAccount, "a": 5, "b": 7})
		require.NoError(t, err)
		require.Len(t, args, 4)
		require.Equal(t, "00000001", hexVal(t, args[3]))
	})
	t.Run("v2 explicit none", func(t *testing.T) {
		args, err := f2.EncodeArgs(map[string]any{"source": zeroAccount, "a": 5, "b": 7, "sac": None()})
		require.NoError(t, err)
		require.Equal(t, xdr.ScValTypeScvVoid, args[3].Type)
	})
	t.Run("v2 sac present", func(t *testing.T) {
		args, err := f2.EncodeArgs(map[string]any{"source": zeroAccount, "a": 5, "b": 7, "sac": Some(contractID)})
		require.NoError(t, err)
		require.Equal(t, xdr.ScAddressTypeScAddressTypeContract, args[3].Address.Type)
		vals, err := f2.DecodeArgs(args)
		require.NoError(t, err)
		require.Equal(t, Some(contractID), vals["sac"])
		require.Equal(t, zeroAccount, vals["source"])
		require.Equal(t, big.NewInt(5), vals["a"])
	})
	t.Run("missing required", func(t *testing.T) {
		_, err := f2.EncodeArgs(map[string]any{"source": zeroAccount, "a": 5})
		require.ErrorIs(t, err, ErrSchemaMismatch)
	})
	t.Run("wrong type", func(t *testing.T) {
		_, err := f2.EncodeArgs(map[string]any{"source": zeroAccount, "a": "five", "b": 7})
		require.ErrorIs(t, err, ErrSchemaMismatch)
	})
	t.Run("bad address", func(t *testing.T) {
		_, err := f2.EncodeArgs(map[string]any{"source": "GXXX", "a": 5, "b": 7})
		require.ErrorIs(t, err, ErrBadAddress)
	})
	t.Run("decode wrong count", func(t *testing.T) {
		_, err := f2.DecodeArgs([]xdr.ScVal{{Type: xdr.ScValTypeScvVoid}})
		require.ErrorIs(t, err, ErrSchemaMismatch)
	})
}

func TestScAddress(t *testing.T) {
	for _, s := range []string{zeroAccount, contractID} {
		a, err := ScAddress(s)
		require.NoError(t, err)
		back, err := AddressString(a)
		require.NoError(t, err)
		require.Equal(t, s, back)
	}
	_, err := ScAddress("SAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAWHF")
	require.ErrorIs(t, err, ErrBadAddress)
}

func TestValueRoundTrip(t *testing.T) {
	maxU256 := new(uint256.Int).Not(uint256.NewInt(0))
	minI256 := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 255))
	var testCases = []struct {
		td xdr.ScSpecTypeDef
		v  any
	}{
		{Simple(xdr.ScSpecTypeScSpecTypeBool), true},
		{Simple(xdr.ScSpecTypeScSpecTypeVoid), nil},
		{u32Type, uint32(42)},
		{Simple(xdr.ScSpecTypeScSpecTypeI32), int32(-42)},
		{Simple(xdr.ScSpecTypeScSpecTypeU64), uint64(1 << 63)},
		{Simple(xdr.ScSpecTypeScSpecTypeI64), int64(-1 << 63)},
		{Simple(xdr.ScSpecTypeScSpecTypeTimepoint), uint64(1700000000)},
		{Simple(xdr.ScSpecTypeScSpecTypeDuration), uint64(300)},
		{Simple(xdr.ScSpecTypeScSpecTypeU128), new(big.Int).Lsh(big.NewInt(1), 100)},
		{i128Type, big.NewInt(-12)},
		{Simple(xdr.ScSpecTypeScSpecTypeU256), maxU256},
		{Simple(xdr.ScSpecTypeScSpecTypeI256), minI256},
		{Simple(xdr.ScSpecTypeScSpecTypeBytes), []byte{1, 2, 3}},
		{BytesN(4), []byte{1, 2, 3, 4}},
		{Simple(xdr.ScSpecTypeScSpecTypeString), "hello"},
		{Simple(xdr.ScSpecTypeScSpecTypeSymbol), "do_math"},
		{Simple(xdr.ScSpecTypeScSpecTypeAddress), zeroAccount},
		{Simple(xdr.ScSpecTypeScSpecTypeAddress), contractID},
		{Simple(xdr.ScSpecTypeScSpecTypeError), &ContractError{Code: 3}},
		{Simple(xdr.ScSpecTypeScSpecTypeError), &ContractError{Type: int32(xdr.ScErrorTypeSceBudget), Code: 2}},
		{OptionOf(Simple(xdr.ScSpecTypeScSpecTypeAddress)), None()},
		{OptionOf(u32Type), Some(uint32(0))},
		{VecOf(Simple(xdr.ScSpecTypeScSpecTypeString)), []any{"a", "b"}},
		{TupleOf(Simple(xdr.ScSpecTypeScSpecTypeBool), u32Type), []any{false, uint32(1)}},
		{MapOf(Simple(xdr.ScSpecTypeScSpecTypeSymbol), Simple(xdr.ScSpecTypeScSpecTypeI64)), []MapEntry{{Key: "x", Value: int64(1)}}},
	}
	for _, tc := range testCases {
		t.Run(TypeName(tc.td), func(t *testing.T) {
			b, err := EncodeValue(tc.td, tc.v)
			require.NoError(t, err)
			v, err := DecodeValue(tc.td, b)
			require.NoError(t, err)
			require.Equal(t, tc.v, v)
		})
	}
}

func TestEncodeValueErrors(t *testing.T) {
	t.Run("u32 overflow", func(t *testing.T) {
		_, err := ToScVal(u32Type, 1<<32)
		require.Error(t, err)
	})
	t.Run("u128 negative", func(t *testing.T) {
		_, err := ToScVal(Simple(xdr.ScSpecTypeScSpecTypeU128), -1)
		require.Error(t, err)
	})
	t.Run("i128 overflow", func(t *testing.T) {
		_, err := ToScVal(i128Type, new(big.Int).Lsh(big.NewInt(1), 127))
		require.Error(t, err)
	})
	t.Run("bytesN length", func(t *testing.T) {
		_, err := ToScVal(BytesN(32), []byte{1})
		require.ErrorIs(t, err, ErrSchemaMismatch)
	})
	t.Run("tuple length", func(t *testing.T) {
		_, err := ToScVal(TupleOf(Simple(xdr.ScSpecTypeScSpecTypeBool)), []any{true, true})
		require.ErrorIs(t, err, ErrSchemaMismatch)
	})
	t.Run("long symbol", func(t *testing.T) {
		_, err := ToScVal(Simple(xdr.ScSpecTypeScSpecTypeSymbol), "a_symbol_that_is_way_too_long_to_fit")
		require.ErrorIs(t, err, ErrSchemaMismatch)
	})
	t.Run("udt", func(t *testing.T) {
		_, err := ToScVal(UDT("Thing"), 1)
		require.ErrorIs(t, err, ErrUnsupportedType)
	})
	t.Run("u256 from uint256", func(t *testing.T) {
		val, err := ToScVal(Simple(xdr.ScSpecTypeScSpecTypeU256), uint256.NewInt(9))
		require.NoError(t, err)
		v, err := FromScVal(Simple(xdr.ScSpecTypeScSpecTypeU256), val)
		require.NoError(t, err)
		require.Equal(t, uint256.NewInt(9), v)
	})
	t.Run("decimal string", func(t *testing.T) {
		val, err := ToScVal(i128Type, "-170141183460469231731687303715884105728")
		require.NoError(t, err)
		require.Equal(t, "0000000a"+"8000000000000000"+"0000000000000000", hexVal(t, val))
	})
}

func TestDecodeValueErrors(t *testing.T) {
	t.Run("wrong type", func(t *testing.T) {
		_, err := DecodeValue(i128Type, []byte{0, 0, 0, 3, 0, 0, 0, 1})
		require.ErrorIs(t, err, ErrSchemaMismatch)
	})
	t.Run("trailing data", func(t *testing.T) {
		_, err := DecodeValue(Simple(xdr.ScSpecTypeScSpecTypeVoid), []byte{0, 0, 0, 1, 0})
		require.Error(t, err)
	})
	t.Run("vector without body", func(t *testing.T) {
		var empty *xdr.ScVec
		_, err := FromScVal(VecOf(u32Type), xdr.ScVal{Type: xdr.ScValTypeScvVec, Vec: &empty})
		require.ErrorIs(t, err, ErrSchemaMismatch)
	})
	t.Run("result error", func(t *testing.T) {
		val, err := ToScVal(Simple(xdr.ScSpecTypeScSpecTypeError), &ContractError{Code: 7})
		require.NoError(t, err)
		_, err = FromScVal(ResultOf(u32Type, Simple(xdr.ScSpecTypeScSpecTypeError)), val)
		var ce *ContractError
		require.ErrorAs(t, err, &ce)
		require.Equal(t, uint32(7), ce.Code)
	})
	t.Run("result ok", func(t *testing.T) {
		td := ResultOf(u32Type, Simple(xdr.ScSpecTypeScSpecTypeError))
		b, err := EncodeValue(td, uint32(3))
		require.NoError(t, err)
		v, err := DecodeValue(td, b)
		require.NoError(t, err)
		require.Equal(t, uint32(3), v)
	})
}

func TestDecodeResult(t *testing.T) {
	s, err := FromBase64(doMathV2)
	require.NoError(t, err)
	val, err := ToScVal(i128Type, big.NewInt(12))
	require.NoError(t, err)
	v, err := s.DecodeResult("do_math", val)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(12), v)

	_, err = s.DecodeResult("do_math", xdr.ScVal{Type: xdr.ScValTypeScvVoid})
	require.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestTypeName(t *testing.T) {
	require.Equal(t, "Result<u32, error>", TypeName(ResultOf(u32Type, Simple(xdr.ScSpecTypeScSpecTypeError))))
	require.Equal(t, "Map<symbol, Vec<i128>>", TypeName(MapOf(Simple(xdr.ScSpecTypeScSpecTypeSymbol), VecOf(i128Type))))
	require.Equal(t, "(bool, BytesN<32>)", TypeName(TupleOf(Simple(xdr.ScSpecTypeScSpecTypeBool), BytesN(32))))
	require.Equal(t, "Thing", TypeName(UDT("Thing")))
}
