package httpapi

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/danielducuara/cashu-walletd/internal/apperror"
	"github.com/danielducuara/cashu-walletd/internal/proofengine"
	"github.com/danielducuara/cashu-walletd/internal/store"
)

type infoResponse struct {
	Status string     `json:"status"`
	Help   string     `json:"help"`
	Terms  string     `json:"terms"`
	Unit   string     `json:"unit"`
	Mint   string     `json:"mint"`
	Limits infoLimits `json:"limits"`
}

type infoLimits struct {
	MaxBalance               int64 `json:"max_balance"`
	MaxSend                  int64 `json:"max_send"`
	MaxPay                   int64 `json:"max_pay"`
	RateLimitMax             int   `json:"rate_limit_max"`
	RateLimitCreateWalletMax int   `json:"rate_limit_create_wallet_max"`
	RateLimitWindow          int   `json:"rate_limit_window"`
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, infoResponse{
		Status: s.cfg.Status,
		Help:   s.cfg.Help,
		Terms:  s.cfg.Terms,
		Unit:   s.cfg.Unit,
		Mint:   s.cfg.MintURL,
		Limits: infoLimits{
			MaxBalance:               s.cfg.Limits.MaxBalance,
			MaxSend:                  s.cfg.Limits.MaxSend,
			MaxPay:                   s.cfg.Limits.MaxPay,
			RateLimitMax:             s.cfg.RateLimitMax,
			RateLimitCreateWalletMax: s.cfg.CreateWalletMax,
			RateLimitWindow:          s.cfg.RateLimitWindowS,
		},
	})
}

type createWalletRequest struct {
	Name  *string `json:"name,omitempty"`
	Token string  `json:"token,omitempty"`
}

type walletResponse struct {
	Name           *string     `json:"name,omitempty"`
	AccessKey      string      `json:"access_key"`
	Mint           string      `json:"mint"`
	Unit           string      `json:"unit"`
	Balance        int64       `json:"balance"`
	PendingBalance int64       `json:"pending_balance"`
	Limits         *infoLimits `json:"limits,omitempty"`
}

// handleCreateWallet provisions a new isolated balance scope. If a token is
// given it is received immediately; a failure there rolls the wallet back
// entirely (delete proofs before the wallet row, per the RESTRICT FK).
func (s *Server) handleCreateWallet(w http.ResponseWriter, r *http.Request) {
	var req createWalletRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	accessKey, err := newAccessKey()
	if err != nil {
		writeError(w, fmt.Errorf("httpapi: generate access key: %w", err))
		return
	}

	wallet := &store.Wallet{
		AccessKey: accessKey,
		Name:      req.Name,
		MintURL:   s.cfg.MintURL,
		Unit:      s.cfg.Unit,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateWallet(r.Context(), wallet); err != nil {
		writeError(w, err)
		return
	}

	if req.Token != "" {
		if _, err := s.engine.ReceiveToken(r.Context(), wallet.ID, req.Token); err != nil {
			if derr := s.store.DeleteProofsByWallet(r.Context(), wallet.ID); derr != nil {
				writeError(w, fmt.Errorf("httpapi: rollback proofs after failed receive: %w", derr))
				return
			}
			if derr := s.store.DeleteWallet(r.Context(), wallet.ID); derr != nil {
				writeError(w, fmt.Errorf("httpapi: rollback wallet after failed receive: %w", derr))
				return
			}
			writeError(w, err)
			return
		}
	}

	unspent, pending, err := s.engine.Balance(r.Context(), wallet.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, walletResponse{
		Name: wallet.Name, AccessKey: wallet.AccessKey, Mint: wallet.MintURL, Unit: wallet.Unit,
		Balance: unspent, PendingBalance: pending,
	})
}

func (s *Server) handleGetWallet(w http.ResponseWriter, r *http.Request) {
	wallet := walletFromContext(r)
	unspent, pending, err := s.engine.Balance(r.Context(), wallet.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, walletResponse{
		Name: wallet.Name, AccessKey: wallet.AccessKey, Mint: wallet.MintURL, Unit: wallet.Unit,
		Balance: unspent, PendingBalance: pending,
		Limits: &infoLimits{
			MaxBalance: proofengine.Effective(wallet.MaxBalance, s.cfg.Limits.MaxBalance),
			MaxSend:    proofengine.Effective(wallet.MaxSend, s.cfg.Limits.MaxSend),
			MaxPay:     proofengine.Effective(wallet.MaxPay, s.cfg.Limits.MaxPay),
		},
	})
}

func newAccessKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", apperror.Unknown("failed to generate access key").Wrap(err)
	}
	return hex.EncodeToString(buf), nil
}
