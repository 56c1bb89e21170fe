/*
Package spec decodes Soroban contract specs (the XDR ScSpecEntry values
embedded into contract Wasm and generated clients) and uses them to build
call arguments and read return values.
*/
package spec

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/stellar/go-stellar-sdk/xdr"
)

const specCacheEntries = 64

// ErrNoFunction is returned when the requested function is not in the spec.
var ErrNoFunction = errors.New("no such function in the contract spec")

// Param is a single function input.
type Param struct {
	Doc  string
	Name string
	Type xdr.ScSpecTypeDef
}

// Function describes a single contract function: its name, ordered inputs
// and return type. Inputs are encoded in the order they're listed here.
type Function struct {
	Doc     string
	Name    string
	Inputs  []Param
	Outputs []xdr.ScSpecTypeDef
}

// Spec is a decoded contract spec. It's immutable after decoding and can be
// shared between goroutines.
type Spec struct {
	functions []*Function
	byName    map[string]*Function
	// errorCases maps contract error codes to their names for error enums.
	errorCases map[uint32]string
	udts       []string
}

var specCache, _ = lru.New(specCacheEntries) // Never errors for positive size.

// FromBase64 decodes a spec from a set of base64-encoded entries (each entry
// may also contain several concatenated ScSpecEntry values). Results are
// cached, so repeated calls with the same descriptor are cheap.
func FromBase64(entries ...string) (*Spec, error) {
	var key string
	for _, e := range entries {
		key += e + "\n"
	}
	if s, ok := specCache.Get(key); ok {
		return s.(*Spec), nil
	}
	var raw []byte
	for i, e := range entries {
		b, err := base64.StdEncoding.DecodeString(e)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		raw = append(raw, b...)
	}
	s, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	specCache.Add(key, s)
	return s, nil
}

// Decode decodes a sequence of XDR ScSpecEntry values.
func Decode(b []byte) (*Spec, error) {
	var (
		s = &Spec{
			byName:     make(map[string]*Function),
			errorCases: make(map[uint32]string),
		}
		r = bytes.NewReader(b)
	)
	for r.Len() > 0 {
		var entry xdr.ScSpecEntry
		if _, err := xdr.Unmarshal(r, &entry); err != nil {
			return nil, fmt.Errorf("decoding spec entry: %w", err)
		}
		switch entry.Kind {
		case xdr.ScSpecEntryKindScSpecEntryFunctionV0:
			f, err := newFunction(*entry.FunctionV0)
			if err != nil {
				return nil, err
			}
			if _, ok := s.byName[f.Name]; ok {
				return nil, fmt.Errorf("duplicate function %q", f.Name)
			}
			s.functions = append(s.functions, f)
			s.byName[f.Name] = f
		case xdr.ScSpecEntryKindScSpecEntryUdtStructV0:
			s.udts = append(s.udts, entry.UdtStructV0.Name)
		case xdr.ScSpecEntryKindScSpecEntryUdtUnionV0:
			s.udts = append(s.udts, entry.UdtUnionV0.Name)
		case xdr.ScSpecEntryKindScSpecEntryUdtEnumV0:
			s.udts = append(s.udts, entry.UdtEnumV0.Name)
		case xdr.ScSpecEntryKindScSpecEntryUdtErrorEnumV0:
			s.udts = append(s.udts, entry.UdtErrorEnumV0.Name)
			for _, c := range entry.UdtErrorEnumV0.Cases {
				s.errorCases[uint32(c.Value)] = c.Name
			}
		case xdr.ScSpecEntryKindScSpecEntryEventV0:
			// Events don't affect invocations.
		default:
			return nil, fmt.Errorf("unknown spec entry kind %d", entry.Kind)
		}
	}
	if len(s.functions) == 0 {
		return nil, errors.New("spec has no functions")
	}
	return s, nil
}

// Function returns the function with the given name.
func (s *Spec) Function(name string) (*Function, error) {
	f, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoFunction, name)
	}
	return f, nil
}

// Functions returns all functions in declaration order.
func (s *Spec) Functions() []*Function {
	return s.functions
}

// TypeNames returns the names of user-defined types declared in the spec.
func (s *Spec) TypeNames() []string {
	return s.udts
}

// ErrorName returns the name of the contract error with the given code if the
// spec has an error enum defining it.
func (s *Spec) ErrorName(code uint32) (string, bool) {
	n, ok := s.errorCases[code]
	return n, ok
}

func newFunction(fn xdr.ScSpecFunctionV0) (*Function, error) {
	f := &Function{
		Doc:     fn.Doc,
		Name:    string(fn.Name),
		Inputs:  make([]Param, len(fn.Inputs)),
		Outputs: fn.Outputs,
	}
	var seen = make(map[string]bool, len(fn.Inputs))
	for i, in := range fn.Inputs {
		if seen[in.Name] {
			return nil, fmt.Errorf("function %s: duplicate parameter %q", f.Name, in.Name)
		}
		seen[in.Name] = true
		f.Inputs[i] = Param{Doc: in.Doc, Name: in.Name, Type: in.Type}
	}
	return f, nil
}

// Entry returns the function as a spec entry.
func (f *Function) Entry() xdr.ScSpecEntry {
	fn := xdr.ScSpecFunctionV0{
		Doc:     f.Doc,
		Name:    xdr.ScSymbol(f.Name),
		Inputs:  make([]xdr.ScSpecFunctionInputV0, len(f.Inputs)),
		Outputs: f.Outputs,
	}
	for i, p := range f.Inputs {
		fn.Inputs[i] = xdr.ScSpecFunctionInputV0{Doc: p.Doc, Name: p.Name, Type: p.Type}
	}
	return xdr.ScSpecEntry{Kind: xdr.ScSpecEntryKindScSpecEntryFunctionV0, FunctionV0: &fn}
}

// MarshalBinary implements the encoding.BinaryMarshaler interface, the
// function is encoded as ScSpecEntry.
func (f *Function) MarshalBinary() ([]byte, error) {
	return f.Entry().MarshalBinary()
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface.
func (f *Function) UnmarshalBinary(data []byte) error {
	var entry xdr.ScSpecEntry
	if err := xdr.SafeUnmarshal(data, &entry); err != nil {
		return err
	}
	if entry.Kind != xdr.ScSpecEntryKindScSpecEntryFunctionV0 {
		return fmt.Errorf("not a function spec entry: %d", entry.Kind)
	}
	nf, err := newFunction(*entry.FunctionV0)
	if err != nil {
		return err
	}
	*f = *nf
	return nil
}

// ReturnType returns the declared return type, Void if there is none.
func (f *Function) ReturnType() xdr.ScSpecTypeDef {
	if len(f.Outputs) == 0 {
		return Simple(xdr.ScSpecTypeScSpecTypeVoid)
	}
	return f.Outputs[0]
}

// Signature returns a human-readable function signature.
func (f *Function) Signature() string {
	s := f.Name + "("
	for i, p := range f.Inputs {
		if i != 0 {
			s += ", "
		}
		s += p.Name + ": " + TypeName(p.Type)
	}
	return s + ") -> " + TypeName(f.ReturnType())
}
