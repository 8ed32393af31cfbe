package mintclient

import (
	"encoding/hex"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/elnosh/gonuts/cashu"
	"github.com/elnosh/gonuts/crypto"
)

// byAmount sorts a set of blinded messages (and their matching secrets and
// blinding factors) by ascending amount, the order the mint expects on the
// wire. The three slices are kept in lockstep.
type byAmount struct {
	messages cashu.BlindedMessages
	secrets  [][]byte
	rs       []*secp256k1.PrivateKey
}

func (b byAmount) Len() int { return len(b.messages) }

func (b byAmount) Less(i, j int) bool { return b.messages[i].Amount < b.messages[j].Amount }

func (b byAmount) Swap(i, j int) {
	b.messages[i], b.messages[j] = b.messages[j], b.messages[i]
	b.secrets[i], b.secrets[j] = b.secrets[j], b.secrets[i]
	b.rs[i], b.rs[j] = b.rs[j], b.rs[i]
}

// unblindProofs turns a mint's blinded signatures back into spendable
// proofs, given the secrets and blinding factors used to build the
// original blinded messages and the keyset the mint signed with.
func unblindProofs(signatures cashu.BlindedSignatures, secrets [][]byte, rs []*secp256k1.PrivateKey, keyset *crypto.Keyset) ([]Proof, error) {
	if len(signatures) != len(secrets) || len(signatures) != len(rs) {
		return nil, fmt.Errorf("mintclient: signature/secret/blinding-factor length mismatch")
	}

	proofs := make([]Proof, len(signatures))
	for i, sig := range signatures {
		blindedC, err := hex.DecodeString(sig.C_)
		if err != nil {
			return nil, fmt.Errorf("mintclient: invalid blinded signature: %w", err)
		}
		blindedPoint, err := secp256k1.ParsePubKey(blindedC)
		if err != nil {
			return nil, fmt.Errorf("mintclient: parse blinded signature: %w", err)
		}

		var mintPubkey []byte
		for _, kp := range keyset.KeyPairs {
			if kp.Amount == sig.Amount {
				mintPubkey = kp.PublicKey
				break
			}
		}
		if mintPubkey == nil {
			return nil, fmt.Errorf("mintclient: no keyset key for amount %d", sig.Amount)
		}
		mintPoint, err := secp256k1.ParsePubKey(mintPubkey)
		if err != nil {
			return nil, fmt.Errorf("mintclient: parse mint pubkey: %w", err)
		}

		unblinded := crypto.UnblindSignature(blindedPoint, rs[i], mintPoint)
		proofs[i] = Proof{
			ID:     sig.Id,
			Amount: sig.Amount,
			Secret: hex.EncodeToString(secrets[i]),
			C:      hex.EncodeToString(unblinded.SerializeCompressed()),
		}
	}
	return proofs, nil
}
