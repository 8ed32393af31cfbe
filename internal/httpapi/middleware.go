package httpapi

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/danielducuara/cashu-walletd/internal/apperror"
	"github.com/danielducuara/cashu-walletd/internal/store"

	"golang.org/x/time/rate"
)

type ctxKey int

const walletCtxKey ctxKey = iota

// auth requires a "Authorization: Bearer <access_key>" header, looks up the
// wallet it names, and attaches it to the request context.
func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			writeError(w, apperror.Unauthorized("missing bearer token"))
			return
		}
		accessKey := strings.TrimPrefix(header, prefix)

		wallet, err := s.store.FindWalletByAccessKey(r.Context(), accessKey)
		if err != nil {
			if err == store.ErrWalletNotFound {
				writeError(w, apperror.Unauthorized("unknown access key"))
				return
			}
			writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), walletCtxKey, wallet)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func walletFromContext(r *http.Request) *store.Wallet {
	w, _ := r.Context().Value(walletCtxKey).(*store.Wallet)
	return w
}

// ipRateLimiter hands out a token-bucket limiter per client IP, refilling
// to max every windowSeconds — the same shape as the teacher's Redis Incr
// counter, reimplemented with golang.org/x/time/rate since this facade has
// no per-request Redis round trip to spend on it.
type ipRateLimiter struct {
	mu       sync.Mutex
	perIP    map[string]*rate.Limiter
	max      int
	interval time.Duration
}

func newIPRateLimiter(max, windowSeconds int) *ipRateLimiter {
	if windowSeconds <= 0 {
		windowSeconds = 60
	}
	return &ipRateLimiter{
		perIP:    make(map[string]*rate.Limiter),
		max:      max,
		interval: time.Duration(windowSeconds) * time.Second,
	}
}

func (l *ipRateLimiter) limiterFor(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.perIP[ip]
	if !ok {
		refillPerSecond := rate.Limit(float64(l.max) / l.interval.Seconds())
		lim = rate.NewLimiter(refillPerSecond, l.max)
		l.perIP[ip] = lim
	}
	return lim
}

func (l *ipRateLimiter) limit(next http.Handler) http.Handler {
	if l.max <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !l.limiterFor(ip).Allow() {
			writeError(w, apperror.New(apperror.KindLimit, http.StatusTooManyRequests, "rate limit exceeded"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
