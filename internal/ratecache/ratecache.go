// Package ratecache provides fiat<->sat conversion against an upstream
// price oracle, with TTL caching and single-flight request coalescing so
// concurrent callers never trigger redundant upstream fetches.
package ratecache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/danielducuara/cashu-walletd/internal/apperror"
	"github.com/danielducuara/cashu-walletd/internal/exchange"
	"github.com/danielducuara/cashu-walletd/pkg/cache"
	"github.com/danielducuara/cashu-walletd/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	ttl            = 120 * time.Second
	upstreamDeadline = 5 * time.Second
	cacheKeyPrefix = "rate:"
	flightKey      = "rate:fetch"
)

// satsPerBTC is the number of sats in one BTC; a currency's rate per unit is
// satsPerBTC / btc_price_in_currency.
const satsPerBTC = 100_000_000

// supportedCurrencies is the fixed fiat set the cache will serve.
var supportedCurrencies = map[string]bool{
	"usd": true,
	"eur": true,
	"cad": true,
	"gbp": true,
}

// Rate is the public record returned for a currency.
type Rate struct {
	Currency    string
	RatePerUnit float64 // sats per 1 unit of fiat
	TimestampMS int64
}

// RateCache coalesces upstream BTC/fiat price fetches through a single
// in-flight fetch round and caches every supported currency, each stamped with
// the timestamp of that round — so a call for USD also warms EUR/CAD/GBP.
// A round calls the provider's GetPrice once per supported currency, so it
// makes four upstream requests, not one.
type RateCache struct {
	provider exchange.PriceProvider
	group    singleflight.Group
	nowFn    func() time.Time
}

// New constructs a RateCache backed by the given upstream price provider.
func New(provider exchange.PriceProvider) *RateCache {
	return &RateCache{provider: provider, nowFn: time.Now}
}

// GetRate returns the cached or freshly fetched rate for currency.
// Unknown currencies are rejected before any upstream call or cache read.
func (rc *RateCache) GetRate(ctx context.Context, currency string) (*Rate, error) {
	lower := strings.ToLower(currency)
	if !supportedCurrencies[lower] {
		return nil, apperror.Validation(fmt.Sprintf("unsupported currency: %s", currency)).
			WithParams(map[string]any{"currency": currency})
	}

	if cached, ok := rc.readCache(ctx, lower); ok {
		return cached, nil
	}

	// Single-flight: only one caller performs the upstream fetch; everyone
	// else (for any currency) waits on the same in-flight result.
	v, err, _ := rc.group.Do(flightKey, func() (interface{}, error) {
		return rc.fetchAndCacheAll(ctx)
	})
	if err != nil {
		// Upstream failed — fall back to a stale cache entry if one exists.
		if cached, ok := rc.readCache(context.Background(), lower); ok {
			logger.Warn("rate fetch failed, serving stale cache entry", zap.String("currency", lower), zap.Error(err))
			return cached, nil
		}
		return nil, apperror.Connection("failed to fetch exchange rate").Wrap(err)
	}

	rates := v.(map[string]*Rate)
	rate, ok := rates[lower]
	if !ok {
		if cached, ok := rc.readCache(context.Background(), lower); ok {
			return cached, nil
		}
		return nil, apperror.Connection(fmt.Sprintf("upstream did not return a rate for %s", lower))
	}
	return rate, nil
}

func (rc *RateCache) readCache(ctx context.Context, lower string) (*Rate, bool) {
	val, err := cache.Get(ctx, cacheKeyPrefix+lower)
	if err != nil || val == "" {
		return nil, false
	}
	rate, ts, ok := decodeCacheValue(val)
	if !ok {
		return nil, false
	}
	return &Rate{Currency: lower, RatePerUnit: rate, TimestampMS: ts}, true
}

func (rc *RateCache) fetchAndCacheAll(parent context.Context) (map[string]*Rate, error) {
	ctx, cancel := context.WithTimeout(context.Background(), upstreamDeadline)
	defer cancel()
	_ = parent

	timestampMS := rc.nowFn().UnixMilli()
	result := make(map[string]*Rate, len(supportedCurrencies))

	for currency := range supportedCurrencies {
		price, err := rc.provider.GetPrice(ctx, currency)
		if err != nil {
			return nil, err
		}
		ratePerUnit := satsPerBTC / price
		rate := &Rate{Currency: currency, RatePerUnit: ratePerUnit, TimestampMS: timestampMS}
		result[currency] = rate

		value := encodeCacheValue(ratePerUnit, timestampMS)
		if err := cache.Set(context.Background(), cacheKeyPrefix+currency, value, ttl); err != nil {
			logger.Warn("failed to cache exchange rate", zap.String("currency", currency), zap.Error(err))
		}
	}

	return result, nil
}

func encodeCacheValue(rate float64, timestampMS int64) string {
	return fmt.Sprintf("%f|%d", rate, timestampMS)
}

func decodeCacheValue(v string) (float64, int64, bool) {
	parts := strings.SplitN(v, "|", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	rate, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, 0, false
	}
	ts, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return rate, ts, true
}
