package testserdes

import (
	"encoding"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// MarshalUnmarshalJSON checks if expected stays the same after
// marshal/unmarshal via JSON.
func MarshalUnmarshalJSON(t *testing.T, expected, actual any) {
	data, err := json.Marshal(expected)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, actual))
	require.Equal(t, expected, actual)
}

// BinaryMarshaler is a value that can be encoded to and decoded from binary
// form.
type BinaryMarshaler interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}

// EncodeDecodeBinary checks if expected stays the same after
// serializing/deserializing via MarshalBinary/UnmarshalBinary.
func EncodeDecodeBinary(t *testing.T, expected, actual BinaryMarshaler) {
	data, err := expected.MarshalBinary()
	require.NoError(t, err)
	require.NoError(t, actual.UnmarshalBinary(data))
	require.Equal(t, expected, actual)
}
