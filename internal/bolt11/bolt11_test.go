package bolt11

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/lightningnetwork/lnd/zpay32"
)

func signedTestInvoice(t *testing.T, amountSats int64, description string, expiry time.Duration) string {
	t.Helper()

	privKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	var paymentHash [32]byte
	copy(paymentHash[:], []byte("0123456789abcdef0123456789abcde"))

	opts := []func(*zpay32.Invoice){
		zpay32.Description(description),
		zpay32.Expiry(expiry),
	}
	if amountSats > 0 {
		opts = append(opts, zpay32.Amount(lnwire.NewMSatFromSatoshis(btcutil.Amount(amountSats))))
	}

	invoice, err := zpay32.NewInvoice(&chaincfg.MainNetParams, paymentHash, time.Now(), opts...)
	require.NoError(t, err)

	signer := zpay32.MessageSigner{
		SignCompact: func(hash []byte) ([]byte, error) {
			return ecdsa.SignCompact(privKey, hash, true), nil
		},
	}
	encoded, err := invoice.Encode(signer)
	require.NoError(t, err)
	return encoded
}

func TestDecode_ValidInvoice(t *testing.T) {
	encoded := signedTestInvoice(t, 1000, "coffee", time.Hour)

	invoice, err := Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), invoice.AmountSats)
	assert.Equal(t, "coffee", invoice.Description)
	assert.False(t, invoice.IsExpired)
}

func TestDecode_ExpiredInvoice(t *testing.T) {
	encoded := signedTestInvoice(t, 500, "expired test", time.Nanosecond)
	time.Sleep(time.Millisecond)

	invoice, err := Decode(encoded)
	require.NoError(t, err)
	assert.True(t, invoice.IsExpired)
}

func TestDecode_RejectsGarbage(t *testing.T) {
	_, err := Decode("not-a-bolt11-invoice")
	require.Error(t, err)
}
