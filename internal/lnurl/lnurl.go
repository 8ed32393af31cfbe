// Package lnurl resolves a Lightning address ("name@domain") into a BOLT11
// invoice via the two-step LNURL-pay HTTP convention, so callers can pay a
// human-readable address the same way they pay a raw invoice.
package lnurl

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/danielducuara/cashu-walletd/internal/apperror"
	"github.com/danielducuara/cashu-walletd/pkg/logger"

	"go.uber.org/zap"
)

type payRequest struct {
	Callback    string `json:"callback"`
	MinSendable int64  `json:"minSendable"`
	MaxSendable int64  `json:"maxSendable"`
	Status      string `json:"status"`
	Reason      string `json:"reason"`
}

type payCallbackResponse struct {
	PR     string `json:"pr"`
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// Resolver resolves Lightning addresses to BOLT11 invoices.
type Resolver struct {
	httpClient *http.Client
}

// NewResolver constructs a Resolver. A nil httpClient gets a default with a
// 5-second timeout.
func NewResolver(httpClient *http.Client) *Resolver {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &Resolver{httpClient: httpClient}
}

// Resolve turns a Lightning address ("name@domain") into a BOLT11 invoice
// requesting amountSats.
func (r *Resolver) Resolve(ctx context.Context, address string, amountSats int64) (string, error) {
	name, domain, err := splitAddress(address)
	if err != nil {
		return "", err
	}

	wellKnownURL := fmt.Sprintf("https://%s/.well-known/lnurlp/%s", domain, name)
	var payReq payRequest
	if err := r.fetchJSON(ctx, wellKnownURL, &payReq); err != nil {
		return "", err
	}
	if payReq.Status == "ERROR" {
		return "", apperror.Connection(fmt.Sprintf("lnurl: %s", payReq.Reason))
	}

	amountMsat := amountSats * 1000
	if amountMsat < payReq.MinSendable || amountMsat > payReq.MaxSendable {
		return "", apperror.Validation(fmt.Sprintf("amount %d msat outside payable range [%d, %d]", amountMsat, payReq.MinSendable, payReq.MaxSendable))
	}

	callbackURL := payReq.Callback
	if strings.Contains(callbackURL, "?") {
		callbackURL += "&amount=" + strconv.FormatInt(amountMsat, 10)
	} else {
		callbackURL += "?amount=" + strconv.FormatInt(amountMsat, 10)
	}

	var callbackResp payCallbackResponse
	if err := r.fetchJSON(ctx, callbackURL, &callbackResp); err != nil {
		return "", err
	}
	if callbackResp.Status == "ERROR" {
		return "", apperror.Connection(fmt.Sprintf("lnurl: %s", callbackResp.Reason))
	}
	if callbackResp.PR == "" {
		return "", apperror.Connection("lnurl: callback returned no invoice")
	}

	return callbackResp.PR, nil
}

func splitAddress(address string) (name, domain string, err error) {
	parts := strings.SplitN(address, "@", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", apperror.Validation(fmt.Sprintf("invalid lightning address: %q", address))
	}
	return parts[0], parts[1], nil
}

func (r *Resolver) fetchJSON(ctx context.Context, url string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("lnurl: build request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		logger.Error("lnurl request failed", zap.String("url", url), zap.Error(err))
		return apperror.Connection("lnurl: request failed").Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Error("lnurl returned error", zap.String("url", url), zap.Int("status", resp.StatusCode))
		return apperror.Connection(fmt.Sprintf("lnurl: status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("lnurl: decode response from %s: %w", url, err)
	}
	return nil
}
