package spec

import (
	"fmt"
	"strings"

	"github.com/stellar/go-stellar-sdk/xdr"
)

var typeNames = map[xdr.ScSpecType]string{
	xdr.ScSpecTypeScSpecTypeVal:       "val",
	xdr.ScSpecTypeScSpecTypeBool:      "bool",
	xdr.ScSpecTypeScSpecTypeVoid:      "void",
	xdr.ScSpecTypeScSpecTypeError:     "error",
	xdr.ScSpecTypeScSpecTypeU32:       "u32",
	xdr.ScSpecTypeScSpecTypeI32:       "i32",
	xdr.ScSpecTypeScSpecTypeU64:       "u64",
	xdr.ScSpecTypeScSpecTypeI64:       "i64",
	xdr.ScSpecTypeScSpecTypeTimepoint: "timepoint",
	xdr.ScSpecTypeScSpecTypeDuration:  "duration",
	xdr.ScSpecTypeScSpecTypeU128:      "u128",
	xdr.ScSpecTypeScSpecTypeI128:      "i128",
	xdr.ScSpecTypeScSpecTypeU256:      "u256",
	xdr.ScSpecTypeScSpecTypeI256:      "i256",
	xdr.ScSpecTypeScSpecTypeBytes:     "bytes",
	xdr.ScSpecTypeScSpecTypeString:    "string",
	xdr.ScSpecTypeScSpecTypeSymbol:    "symbol",
	xdr.ScSpecTypeScSpecTypeAddress:   "address",
}

// OptionOf returns an Option<elem> definition.
func OptionOf(elem xdr.ScSpecTypeDef) xdr.ScSpecTypeDef {
	return xdr.ScSpecTypeDef{
		Type:   xdr.ScSpecTypeScSpecTypeOption,
		Option: &xdr.ScSpecTypeOption{ValueType: elem},
	}
}

// VecOf returns a Vec<elem> definition.
func VecOf(elem xdr.ScSpecTypeDef) xdr.ScSpecTypeDef {
	return xdr.ScSpecTypeDef{
		Type: xdr.ScSpecTypeScSpecTypeVec,
		Vec:  &xdr.ScSpecTypeVec{ElementType: elem},
	}
}

// MapOf returns a Map<key, value> definition.
func MapOf(key, value xdr.ScSpecTypeDef) xdr.ScSpecTypeDef {
	return xdr.ScSpecTypeDef{
		Type: xdr.ScSpecTypeScSpecTypeMap,
		Map:  &xdr.ScSpecTypeMap{KeyType: key, ValueType: value},
	}
}

// ResultOf returns a Result<ok, err> definition.
func ResultOf(ok, err xdr.ScSpecTypeDef) xdr.ScSpecTypeDef {
	return xdr.ScSpecTypeDef{
		Type:   xdr.ScSpecTypeScSpecTypeResult,
		Result: &xdr.ScSpecTypeResult{OkType: ok, ErrorType: err},
	}
}

// TupleOf returns a tuple definition.
func TupleOf(elems ...xdr.ScSpecTypeDef) xdr.ScSpecTypeDef {
	return xdr.ScSpecTypeDef{
		Type:  xdr.ScSpecTypeScSpecTypeTuple,
		Tuple: &xdr.ScSpecTypeTuple{ValueTypes: elems},
	}
}

// BytesN returns a BytesN<n> definition.
func BytesN(n uint32) xdr.ScSpecTypeDef {
	return xdr.ScSpecTypeDef{
		Type:   xdr.ScSpecTypeScSpecTypeBytesN,
		BytesN: &xdr.ScSpecTypeBytesN{N: xdr.Uint32(n)},
	}
}

// UDT returns a reference to the user-defined type.
func UDT(name string) xdr.ScSpecTypeDef {
	return xdr.ScSpecTypeDef{
		Type: xdr.ScSpecTypeScSpecTypeUdt,
		Udt:  &xdr.ScSpecTypeUdt{Name: name},
	}
}

// Simple returns a definition for a non-container type.
func Simple(t xdr.ScSpecType) xdr.ScSpecTypeDef {
	return xdr.ScSpecTypeDef{Type: t}
}

// TypeName returns the Rust-like name of the type, e.g. Option<address>.
func TypeName(td xdr.ScSpecTypeDef) string {
	switch td.Type {
	case xdr.ScSpecTypeScSpecTypeOption:
		if td.Option != nil {
			return "Option<" + TypeName(td.Option.ValueType) + ">"
		}
	case xdr.ScSpecTypeScSpecTypeVec:
		if td.Vec != nil {
			return "Vec<" + TypeName(td.Vec.ElementType) + ">"
		}
	case xdr.ScSpecTypeScSpecTypeResult:
		if td.Result != nil {
			return "Result<" + TypeName(td.Result.OkType) + ", " + TypeName(td.Result.ErrorType) + ">"
		}
	case xdr.ScSpecTypeScSpecTypeMap:
		if td.Map != nil {
			return "Map<" + TypeName(td.Map.KeyType) + ", " + TypeName(td.Map.ValueType) + ">"
		}
	case xdr.ScSpecTypeScSpecTypeTuple:
		if td.Tuple != nil {
			var parts = make([]string, len(td.Tuple.ValueTypes))
			for i := range td.Tuple.ValueTypes {
				parts[i] = TypeName(td.Tuple.ValueTypes[i])
			}
			return "(" + strings.Join(parts, ", ") + ")"
		}
	case xdr.ScSpecTypeScSpecTypeBytesN:
		if td.BytesN != nil {
			return fmt.Sprintf("BytesN<%d>", td.BytesN.N)
		}
	case xdr.ScSpecTypeScSpecTypeUdt:
		if td.Udt != nil {
			return td.Udt.Name
		}
	}
	if s, ok := typeNames[td.Type]; ok {
		return s
	}
	return fmt.Sprintf("unknown(%d)", int32(td.Type))
}
