// Package httpapi is the thin HTTP facade wiring ProofEngine, RateCache,
// bolt11, and lnurl to the v1 route table: it decodes requests, calls into
// the engine, and encodes responses. It holds no domain logic of its own.
package httpapi

import (
	"net/http"

	"github.com/danielducuara/cashu-walletd/internal/apperror"
	"github.com/danielducuara/cashu-walletd/internal/bolt11"
	"github.com/danielducuara/cashu-walletd/internal/lnurl"
	"github.com/danielducuara/cashu-walletd/internal/proofengine"
	"github.com/danielducuara/cashu-walletd/internal/ratecache"
	"github.com/danielducuara/cashu-walletd/internal/store"
)

// Config carries the process-wide values the facade needs beyond its
// collaborators: the mint this deployment talks to, the service's public
// info strings, and rate-limit parameters.
type Config struct {
	MintURL          string
	Unit             string
	Status           string
	Help             string
	Terms            string
	Limits           proofengine.Limits
	RateLimitMax     int
	CreateWalletMax  int
	RateLimitWindowS int
}

// Server wires the engine and its collaborators to net/http.
type Server struct {
	cfg       Config
	store     *store.Store
	engine    *proofengine.Engine
	rates     *ratecache.RateCache
	lnurl     *lnurl.Resolver
	mux       *http.ServeMux
	limiter   *ipRateLimiter
	walletLim *ipRateLimiter
}

// NewServer builds the route table and middleware chain.
func NewServer(cfg Config, s *store.Store, engine *proofengine.Engine, rates *ratecache.RateCache) *Server {
	srv := &Server{
		cfg:       cfg,
		store:     s,
		engine:    engine,
		rates:     rates,
		lnurl:     lnurl.NewResolver(nil),
		mux:       http.NewServeMux(),
		limiter:   newIPRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindowS),
		walletLim: newIPRateLimiter(cfg.CreateWalletMax, cfg.RateLimitWindowS),
	}
	srv.routes()
	return srv
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /info", s.handleInfo)
	s.mux.Handle("POST /wallet", s.walletLim.limit(http.HandlerFunc(s.handleCreateWallet)))
	s.mux.Handle("GET /wallet", s.auth(http.HandlerFunc(s.handleGetWallet)))
	s.mux.Handle("POST /wallet/deposit", s.auth(http.HandlerFunc(s.handleCreateDeposit)))
	s.mux.Handle("GET /wallet/deposit/{quote}", s.auth(http.HandlerFunc(s.handleCheckDeposit)))
	s.mux.Handle("POST /wallet/send", s.auth(http.HandlerFunc(s.handleSend)))
	s.mux.Handle("POST /wallet/check", s.auth(http.HandlerFunc(s.handleCheck)))
	s.mux.Handle("POST /wallet/decode", s.auth(http.HandlerFunc(s.handleDecode)))
	s.mux.Handle("POST /wallet/pay", s.auth(http.HandlerFunc(s.handlePay)))
	s.mux.Handle("GET /wallet/pay/{quote}", s.auth(http.HandlerFunc(s.handleCheckPay)))
	s.mux.Handle("POST /wallet/receive", s.auth(http.HandlerFunc(s.handleReceive)))
	s.mux.Handle("GET /rate/{currency}", s.auth(http.HandlerFunc(s.handleRate)))
}

// Handler returns the process-wide HTTP handler, with the per-IP rate
// limiter applied ahead of routing.
func (s *Server) Handler() http.Handler {
	return s.limiter.limit(s.mux)
}

func (s *Server) decodeInvoice(payReq string) (*bolt11.Invoice, error) {
	return bolt11.Decode(payReq)
}

var errUnitMismatch = apperror.Validation("unit does not match wallet's configured unit")
