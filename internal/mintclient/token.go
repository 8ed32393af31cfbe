package mintclient

import (
	"fmt"

	"github.com/elnosh/gonuts/cashu"
)

// EncodeToken serializes proofs into a portable Cashu token string.
func EncodeToken(proofs []Proof, mintURL, unit string) (string, error) {
	cashuProofs := make(cashu.Proofs, len(proofs))
	for i, p := range proofs {
		cashuProofs[i] = cashu.Proof{Id: p.ID, Amount: p.Amount, Secret: p.Secret, C: p.C}
	}

	token := cashu.NewToken(cashuProofs, mintURL, cashu.Unit(unit))
	encoded, err := token.Serialize()
	if err != nil {
		return "", fmt.Errorf("mintclient: serialize token: %w", err)
	}
	return encoded, nil
}

// DecodeToken parses a Cashu token string into its mint URL, unit, and
// proofs.
func DecodeToken(encoded string) (*Token, error) {
	decoded, err := cashu.DecodeToken(encoded)
	if err != nil {
		return nil, fmt.Errorf("mintclient: decode token: %w", err)
	}

	proofs := decoded.Proofs()
	out := &Token{MintURL: decoded.Mint(), Unit: decoded.Unit().String(), Proofs: make([]Proof, len(proofs))}
	for i, p := range proofs {
		out.Proofs[i] = Proof{ID: p.Id, Amount: p.Amount, Secret: p.Secret, C: p.C}
	}
	return out, nil
}
