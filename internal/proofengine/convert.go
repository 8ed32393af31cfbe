package proofengine

import (
	"github.com/danielducuara/cashu-walletd/internal/mintclient"
	"github.com/danielducuara/cashu-walletd/internal/store"
)

func toWireProof(p *store.Proof) mintclient.Proof {
	wp := mintclient.Proof{ID: p.ProofID, Amount: uint64(p.Amount), Secret: p.Secret, C: p.C}
	if p.Witness != nil {
		wp.Witness = *p.Witness
	}
	return wp
}

func toWireProofs(proofs []*store.Proof) []mintclient.Proof {
	out := make([]mintclient.Proof, len(proofs))
	for i, p := range proofs {
		out[i] = toWireProof(p)
	}
	return out
}

func fromWireProof(p mintclient.Proof) *store.Proof {
	sp := &store.Proof{ProofID: p.ID, Amount: int64(p.Amount), Secret: p.Secret, C: p.C}
	if p.Witness != "" {
		w := p.Witness
		sp.Witness = &w
	}
	return sp
}

func fromWireProofs(proofs []mintclient.Proof) []*store.Proof {
	out := make([]*store.Proof, len(proofs))
	for i, p := range proofs {
		out[i] = fromWireProof(p)
	}
	return out
}

func secretsOf(proofs []*store.Proof) []string {
	out := make([]string, len(proofs))
	for i, p := range proofs {
		out[i] = p.Secret
	}
	return out
}

func sumAmounts(proofs []*store.Proof) int64 {
	var total int64
	for _, p := range proofs {
		total += p.Amount
	}
	return total
}

// secretSet is a lookup set over a wallet's pre-call UNSPENT secrets
// (S_in in spec §4.4.4), used to distinguish "mint returned this input
// unchanged" from "mint issued a genuinely new proof".
type secretSet map[string]struct{}

func newSecretSet(proofs []*store.Proof) secretSet {
	s := make(secretSet, len(proofs))
	for _, p := range proofs {
		s[p.Secret] = struct{}{}
	}
	return s
}

func (s secretSet) has(secret string) bool {
	_, ok := s[secret]
	return ok
}
