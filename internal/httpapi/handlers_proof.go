package httpapi

import (
	"net/http"

	"github.com/danielducuara/cashu-walletd/internal/apperror"
	"github.com/danielducuara/cashu-walletd/internal/mintclient"
	"github.com/danielducuara/cashu-walletd/internal/proofengine"
	"github.com/danielducuara/cashu-walletd/internal/pubkeynorm"
	"github.com/danielducuara/cashu-walletd/internal/store"
)

// checkUnit rejects a request that names a unit other than the wallet's
// configured one — the one discipline rule spec §6 applies to every
// mutating endpoint that takes a unit.
func checkUnit(wallet *store.Wallet, unit string) error {
	if unit != "" && unit != wallet.Unit {
		return errUnitMismatch
	}
	return nil
}

type depositRequest struct {
	Amount int64  `json:"amount"`
	Unit   string `json:"unit"`
}

type depositResponse struct {
	Quote   string `json:"quote"`
	Request string `json:"request"`
	State   string `json:"state"`
	Expiry  int64  `json:"expiry"`
}

func (s *Server) handleCreateDeposit(w http.ResponseWriter, r *http.Request) {
	wallet := walletFromContext(r)

	var req depositRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Amount <= 0 {
		writeError(w, apperror.Validation("amount must be positive"))
		return
	}
	if err := checkUnit(wallet, req.Unit); err != nil {
		writeError(w, err)
		return
	}

	quote, err := s.engine.CreateDepositQuote(r.Context(), wallet.ID, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, depositResponse{Quote: quote.Quote, Request: quote.Request, State: quote.State, Expiry: quote.Expiry})
}

func (s *Server) handleCheckDeposit(w http.ResponseWriter, r *http.Request) {
	wallet := walletFromContext(r)
	quoteID := r.PathValue("quote")

	quote, err := s.engine.CheckDepositQuote(r.Context(), wallet.ID, quoteID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, depositResponse{Quote: quote.Quote, Request: quote.Request, State: quote.State, Expiry: quote.Expiry})
}

type sendRequest struct {
	Amount       int64  `json:"amount"`
	Unit         string `json:"unit"`
	Memo         string `json:"memo,omitempty"`
	LockToPubkey string `json:"lock_to_pubkey,omitempty"`
	CashuRequest string `json:"cashu_request,omitempty"`
}

type sendResponse struct {
	Token  string `json:"token"`
	Amount int64  `json:"amount"`
	Unit   string `json:"unit"`
	Memo   string `json:"memo,omitempty"`
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	wallet := walletFromContext(r)

	var req sendRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.CashuRequest != "" {
		writeError(w, apperror.Validation("cashu_request is not supported"))
		return
	}
	if req.Amount <= 0 {
		writeError(w, apperror.Validation("amount must be positive"))
		return
	}
	if err := checkUnit(wallet, req.Unit); err != nil {
		writeError(w, err)
		return
	}

	pubkey := req.LockToPubkey
	if pubkey != "" {
		normalized, err := pubkeynorm.Normalize(pubkey)
		if err != nil {
			writeError(w, err)
			return
		}
		pubkey = normalized
	}

	bundle, err := s.engine.SendProofs(r.Context(), wallet.ID, req.Amount, pubkey)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := mintclient.EncodeToken(toMintProofs(bundle.Send), wallet.MintURL, wallet.Unit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sendResponse{Token: token, Amount: req.Amount, Unit: wallet.Unit, Memo: req.Memo})
}

type checkRequest struct {
	Token string `json:"token"`
}

type checkResponse struct {
	Amount          int64             `json:"amount"`
	Unit            string            `json:"unit"`
	State           string            `json:"state"`
	MintProofStates map[string]string `json:"mint_proof_states"`
}

// handleCheck reports a token's proof state at the mint and then reconciles
// the wallet's PENDING rows against a fresh mint query.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	wallet := walletFromContext(r)

	var req checkRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	states, token, err := s.engine.CheckTokenState(r.Context(), req.Token)
	if err != nil {
		writeError(w, err)
		return
	}

	if _, err := s.engine.ReconcileWithMint(r.Context(), wallet.ID); err != nil {
		writeError(w, err)
		return
	}

	var amount int64
	secrets := make([]string, len(token.Proofs))
	proofStates := make(map[string]string, len(token.Proofs))
	for i, p := range token.Proofs {
		amount += int64(p.Amount)
		secrets[i] = p.Secret
		proofStates[p.Secret] = string(states[p.Secret])
	}
	overall := proofengine.ReduceStates(secrets, states)

	writeJSON(w, http.StatusOK, checkResponse{Amount: amount, Unit: token.Unit, State: string(overall), MintProofStates: proofStates})
}

type receiveRequest struct {
	Token string `json:"token"`
}

type receiveResponse struct {
	Amount         int64  `json:"amount"`
	Unit           string `json:"unit"`
	Balance        int64  `json:"balance"`
	PendingBalance int64  `json:"pending_balance"`
}

func (s *Server) handleReceive(w http.ResponseWriter, r *http.Request) {
	wallet := walletFromContext(r)

	var req receiveRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	proofs, err := s.engine.ReceiveToken(r.Context(), wallet.ID, req.Token)
	if err != nil {
		writeError(w, err)
		return
	}

	var amount int64
	for _, p := range proofs {
		amount += p.Amount
	}

	unspent, pending, err := s.engine.Balance(r.Context(), wallet.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, receiveResponse{Amount: amount, Unit: wallet.Unit, Balance: unspent, PendingBalance: pending})
}

func toMintProofs(proofs []*store.Proof) []mintclient.Proof {
	out := make([]mintclient.Proof, len(proofs))
	for i, p := range proofs {
		witness := ""
		if p.Witness != nil {
			witness = *p.Witness
		}
		out[i] = mintclient.Proof{ID: p.ProofID, Amount: uint64(p.Amount), Secret: p.Secret, C: p.C, Witness: witness}
	}
	return out
}
