// Package pubkeynorm canonicalizes the three pubkey encodings a caller may
// present (npub bech32, 64-char x-only hex, 66-char compressed hex) into a
// single 66-hex-character compressed SEC1 form. No cryptographic validation
// of the curve point is performed here — the mint rejects invalid points
// downstream, and this package's job is encoding, not verification.
package pubkeynorm

import (
	"encoding/hex"
	"fmt"

	"github.com/danielducuara/cashu-walletd/internal/apperror"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

const npubPrefix = "npub"

// Normalize canonicalizes input into a 66-hex-character compressed pubkey.
func Normalize(input string) (string, error) {
	switch {
	case len(input) >= len(npubPrefix) && input[:len(npubPrefix)] == npubPrefix:
		return normalizeNpub(input)
	case len(input) == 64:
		if _, err := hex.DecodeString(input); err != nil {
			return "", apperror.Validation("invalid hex pubkey").Wrap(err)
		}
		return "02" + input, nil
	case len(input) == 66:
		if _, err := hex.DecodeString(input); err != nil {
			return "", apperror.Validation("invalid hex pubkey").Wrap(err)
		}
		return input, nil
	default:
		return "", apperror.Validation(fmt.Sprintf("unrecognized pubkey encoding (length %d)", len(input)))
	}
}

func normalizeNpub(input string) (string, error) {
	hrp, data, err := bech32.Decode(input)
	if err != nil {
		return "", apperror.Validation("invalid npub encoding").Wrap(err)
	}
	if hrp != "npub" {
		return "", apperror.Validation(fmt.Sprintf("unexpected bech32 prefix: %s", hrp))
	}

	decoded, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", apperror.Validation("invalid npub payload").Wrap(err)
	}
	if len(decoded) != 32 {
		return "", apperror.Validation(fmt.Sprintf("npub payload must be 32 bytes, got %d", len(decoded)))
	}

	return "02" + hex.EncodeToString(decoded), nil
}
