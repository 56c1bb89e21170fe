package spec

import (
	"fmt"
)

// Option is a value of Option<T> type. Absent value (None) is encoded as
// Void on the wire, so it's distinct from any present value including empty
// ones.
type Option struct {
	Value any
	Some  bool
}

// Some returns a present Option holding v.
func Some(v any) Option {
	return Option{Value: v, Some: true}
}

// None returns an absent Option.
func None() Option {
	return Option{}
}

// String implements the fmt.Stringer interface.
func (o Option) String() string {
	if !o.Some {
		return "None"
	}
	return fmt.Sprintf("Some(%v)", o.Value)
}

// MapEntry is a single key-value pair of Map<K, V>. Maps are represented as
// slices to keep the order and allow non-comparable keys.
type MapEntry struct {
	Key   any
	Value any
}

// ContractError is an error value returned by a contract (ScVal Error). For
// errors raised by the contract itself Type is zero and Code is the contract
// error code.
type ContractError struct {
	Type int32
	Code uint32
	// Name is the error enum case name if the spec defines it.
	Name string
}

// Error implements the error interface.
func (e *ContractError) Error() string {
	if e.Type == 0 {
		if e.Name != "" {
			return fmt.Sprintf("contract error #%d (%s)", e.Code, e.Name)
		}
		return fmt.Sprintf("contract error #%d", e.Code)
	}
	return fmt.Sprintf("host error type %d code %d", e.Type, e.Code)
}
