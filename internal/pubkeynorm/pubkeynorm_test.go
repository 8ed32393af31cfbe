package pubkeynorm

import (
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const xOnly64 = "a1b2c3d4e5f60718293a4b5c6d7e8f90a1b2c3d4e5f60718293a4b5c6d7e8f90"

func encodeNpub(t *testing.T, xOnlyHex string) string {
	t.Helper()
	raw, err := hex.DecodeString(xOnlyHex)
	require.NoError(t, err)

	converted, err := bech32.ConvertBits(raw, 8, 5, true)
	require.NoError(t, err)

	encoded, err := bech32.Encode("npub", converted)
	require.NoError(t, err)
	return encoded
}

func TestNormalize_64CharHex(t *testing.T) {
	got, err := Normalize(xOnly64)
	require.NoError(t, err)
	assert.Equal(t, "02"+xOnly64, got)
}

func TestNormalize_66CharHexUnchanged(t *testing.T) {
	for _, prefix := range []string{"02", "03"} {
		got, err := Normalize(prefix + xOnly64)
		require.NoError(t, err)
		assert.Equal(t, prefix+xOnly64, got)
	}
}

func TestNormalize_Npub(t *testing.T) {
	npub := encodeNpub(t, xOnly64)
	got, err := Normalize(npub)
	require.NoError(t, err)
	assert.Equal(t, "02"+xOnly64, got)
}

func TestNormalize_InvalidLengths(t *testing.T) {
	for _, in := range []string{"", "deadbeef", ("02" + xOnly64)[:65], "02" + xOnly64 + "ab"} {
		_, err := Normalize(in)
		assert.Error(t, err, "input %q should fail", in)
	}
}
