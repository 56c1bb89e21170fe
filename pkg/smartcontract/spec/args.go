package spec

import (
	"fmt"
	"sort"

	"github.com/stellar/go-stellar-sdk/xdr"
)

// EncodeArgs converts named arguments into ScVal values in the function's
// declared parameter order. Unknown names and missing non-optional parameters
// are errors, missing optional ones are passed as None.
func (f *Function) EncodeArgs(args map[string]any) ([]xdr.ScVal, error) {
	var known = make(map[string]bool, len(f.Inputs))
	for _, p := range f.Inputs {
		known[p.Name] = true
	}
	var unknown []string
	for name := range args {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) != 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: %s has no parameters %v", ErrSchemaMismatch, f.Name, unknown)
	}
	var res = make([]xdr.ScVal, 0, len(f.Inputs))
	for _, p := range f.Inputs {
		v, ok := args[p.Name]
		if !ok {
			if p.Type.Type != xdr.ScSpecTypeScSpecTypeOption {
				return nil, fmt.Errorf("%w: %s: missing parameter %q", ErrSchemaMismatch, f.Name, p.Name)
			}
			v = None()
		}
		val, err := ToScVal(p.Type, v)
		if err != nil {
			return nil, fmt.Errorf("%s: parameter %q: %w", f.Name, p.Name, err)
		}
		res = append(res, val)
	}
	return res, nil
}

// DecodeArgs is the inverse of EncodeArgs, absent optional parameters are
// returned as None.
func (f *Function) DecodeArgs(vals []xdr.ScVal) (map[string]any, error) {
	if len(vals) != len(f.Inputs) {
		return nil, fmt.Errorf("%w: %s takes %d arguments, got %d", ErrSchemaMismatch, f.Name, len(f.Inputs), len(vals))
	}
	var res = make(map[string]any, len(vals))
	for i, p := range f.Inputs {
		v, err := FromScVal(p.Type, vals[i])
		if err != nil {
			return nil, fmt.Errorf("%s: parameter %q: %w", f.Name, p.Name, err)
		}
		res[p.Name] = v
	}
	return res, nil
}

// DecodeResult converts the function return value.
func (f *Function) DecodeResult(val xdr.ScVal) (any, error) {
	return FromScVal(f.ReturnType(), val)
}

// DecodeResult converts the return value of the named function. Contract
// errors get their names resolved from the spec error enums.
func (s *Spec) DecodeResult(name string, val xdr.ScVal) (any, error) {
	f, err := s.Function(name)
	if err != nil {
		return nil, err
	}
	v, err := f.DecodeResult(val)
	if ce, ok := err.(*ContractError); ok && ce.Type == 0 {
		ce.Name, _ = s.ErrorName(ce.Code)
	}
	return v, err
}
