package httpapi

import (
	"fmt"
	"net/http"

	"github.com/danielducuara/cashu-walletd/internal/apperror"
	"github.com/danielducuara/cashu-walletd/internal/mintclient"
)

type decodeRequest struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

type decodeResponse struct {
	Type    string `json:"type"`
	Decoded any    `json:"decoded"`
}

const (
	decodeTypeTokenV3  = "CASHU_TOKEN_V3"
	decodeTypeTokenV4  = "CASHU_TOKEN_V4"
	decodeTypeBolt11   = "BOLT11_REQUEST"
	decodeTypeCashuReq = "CASHU_REQUEST"
)

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	var req decodeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	switch req.Type {
	case decodeTypeTokenV3, decodeTypeTokenV4:
		token, err := mintclient.DecodeToken(req.Data)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, decodeResponse{Type: req.Type, Decoded: token})

	case decodeTypeBolt11:
		invoice, err := s.decodeInvoice(req.Data)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, decodeResponse{Type: req.Type, Decoded: invoice})

	case decodeTypeCashuReq:
		writeError(w, apperror.Validation("cashu_request decoding is not supported"))

	default:
		writeError(w, apperror.Validation(fmt.Sprintf("unrecognized decode type: %s", req.Type)))
	}
}

type payRequest struct {
	Bolt11Request    string `json:"bolt11_request,omitempty"`
	LightningAddress string `json:"lightning_address,omitempty"`
	Amount           int64  `json:"amount"`
	Unit             string `json:"unit"`
}

type payResponse struct {
	Quote           string `json:"quote"`
	Amount          int64  `json:"amount"`
	FeeReserve      int64  `json:"fee_reserve"`
	State           string `json:"state"`
	PaymentPreimage string `json:"payment_preimage,omitempty"`
	Expiry          int64  `json:"expiry"`
}

func (s *Server) handlePay(w http.ResponseWriter, r *http.Request) {
	wallet := walletFromContext(r)

	var req payRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := checkUnit(wallet, req.Unit); err != nil {
		writeError(w, err)
		return
	}
	if req.Bolt11Request == "" && req.LightningAddress == "" {
		writeError(w, apperror.Validation("one of bolt11_request or lightning_address is required"))
		return
	}

	invoiceStr := req.Bolt11Request
	if req.LightningAddress != "" {
		resolved, err := s.lnurl.Resolve(r.Context(), req.LightningAddress, req.Amount)
		if err != nil {
			writeError(w, err)
			return
		}
		invoiceStr = resolved
	}

	invoice, err := s.decodeInvoice(invoiceStr)
	if err != nil {
		writeError(w, err)
		return
	}
	if invoice.AmountSats != 0 && invoice.AmountSats != req.Amount {
		writeError(w, apperror.Validation("invoice amount does not match requested amount"))
		return
	}

	quote, err := s.engine.CreateMeltQuote(r.Context(), wallet.ID, invoiceStr)
	if err != nil {
		writeError(w, err)
		return
	}

	outcome, err := s.engine.MeltProofs(r.Context(), wallet.ID, quote)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, payResponse{
		Quote: outcome.Quote, Amount: int64(quote.Amount), FeeReserve: int64(quote.FeeReserve),
		State: outcome.State, PaymentPreimage: outcome.PaymentPreimage, Expiry: quote.Expiry,
	})
}

func (s *Server) handleCheckPay(w http.ResponseWriter, r *http.Request) {
	wallet := walletFromContext(r)
	quoteID := r.PathValue("quote")

	quote, err := s.engine.CheckMeltQuoteStatus(r.Context(), wallet.ID, quoteID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, payResponse{
		Quote: quote.Quote, Amount: int64(quote.Amount), FeeReserve: int64(quote.FeeReserve),
		State: string(quote.State), PaymentPreimage: quote.PaymentPreimage, Expiry: quote.Expiry,
	})
}

type rateResponse struct {
	Currency  string  `json:"currency"`
	Rate      float64 `json:"rate"`
	Timestamp int64   `json:"timestamp"`
}

func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	currency := r.PathValue("currency")

	rate, err := s.rates.GetRate(r.Context(), currency)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rateResponse{Currency: rate.Currency, Rate: rate.RatePerUnit, Timestamp: rate.TimestampMS})
}
