package mintclient

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/danielducuara/cashu-walletd/pkg/logger"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/elnosh/gonuts/cashu"
	"github.com/elnosh/gonuts/cashu/nuts/nut01"
	"github.com/elnosh/gonuts/crypto"
	"go.uber.org/zap"
)

// Client talks the Cashu-over-HTTP wire protocol to one mint.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

var (
	instances sync.Map // baseURL -> *Client
)

// For returns the process-wide shared client for baseURL, constructing it
// on first use. All subsequent callers for the same mint observe the same
// instance.
func For(baseURL string) *Client {
	if existing, ok := instances.Load(baseURL); ok {
		return existing.(*Client)
	}
	c := New(baseURL, nil)
	actual, _ := instances.LoadOrStore(baseURL, c)
	return actual.(*Client)
}

// New constructs a client for baseURL. Most callers should use For instead
// so the process shares one instance (and one connection pool) per mint.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{httpClient: httpClient, baseURL: baseURL}
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("mintclient: marshal request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("mintclient: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("mint request failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("mintclient: request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var wireErr struct {
			Code   int    `json:"code"`
			Detail string `json:"detail"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&wireErr)
		logger.Warn("mint returned error", zap.String("path", path), zap.Int("status", resp.StatusCode), zap.Int("code", wireErr.Code))
		return &OperationError{Code: wireErr.Code, Detail: wireErr.Detail, HTTPStatus: resp.StatusCode}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("mintclient: decode response from %s: %w", path, err)
	}
	return nil
}

// CreateMintQuote requests a Lightning invoice the caller can pay to mint
// amount new proofs.
func (c *Client) CreateMintQuote(ctx context.Context, amount uint64, unit string) (*MintQuote, error) {
	req := struct {
		Amount uint64 `json:"amount"`
		Unit   string `json:"unit"`
	}{amount, unit}

	var resp struct {
		Quote   string `json:"quote"`
		Request string `json:"request"`
		State   string `json:"state"`
		Expiry  int64  `json:"expiry"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/mint/quote/bolt11", req, &resp); err != nil {
		return nil, err
	}
	return &MintQuote{Quote: resp.Quote, Request: resp.Request, State: MintQuoteState(resp.State), Expiry: resp.Expiry, Amount: amount}, nil
}

// CheckMintQuote polls the mint for the current state of a previously
// created mint quote. The mint echoes the quote's original amount back in
// every response, so this is the source CheckDepositQuote uses to know how
// much to mint once the quote is PAID.
func (c *Client) CheckMintQuote(ctx context.Context, quoteID string) (*MintQuote, error) {
	var resp struct {
		Quote   string `json:"quote"`
		Request string `json:"request"`
		State   string `json:"state"`
		Expiry  int64  `json:"expiry"`
		Amount  uint64 `json:"amount"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/mint/quote/bolt11/"+quoteID, nil, &resp); err != nil {
		return nil, err
	}
	return &MintQuote{Quote: resp.Quote, Request: resp.Request, State: MintQuoteState(resp.State), Expiry: resp.Expiry, Amount: resp.Amount}, nil
}

// MintProofs exchanges a PAID mint quote for amount sats worth of fresh,
// UNSPENT proofs.
func (c *Client) MintProofs(ctx context.Context, amount uint64, quoteID string) ([]Proof, error) {
	keyset, err := c.activeKeyset(ctx)
	if err != nil {
		return nil, err
	}

	messages, secrets, blindingFactors, err := cashu.CreateBlindedMessages(amount)
	if err != nil {
		return nil, fmt.Errorf("mintclient: build blinded messages: %w", err)
	}

	req := struct {
		Quote   string               `json:"quote"`
		Outputs cashu.BlindedMessages `json:"outputs"`
	}{Quote: quoteID, Outputs: messages}

	var resp struct {
		Signatures cashu.BlindedSignatures `json:"signatures"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/mint/bolt11", req, &resp); err != nil {
		return nil, err
	}

	return unblindProofs(resp.Signatures, secrets, blindingFactors, keyset)
}

// Swap exchanges inputs for fresh proofs split into a keep bundle and a
// send bundle totalling sendAmount. When lock is non-nil the send bundle is
// locked to lock.Pubkey (NUT-11) and only redeemable by its holder.
func (c *Client) Swap(ctx context.Context, inputs []Proof, sendAmount uint64, lock *P2PKLock) (*SwapResult, error) {
	keyset, err := c.activeKeyset(ctx)
	if err != nil {
		return nil, err
	}

	var inputTotal uint64
	for _, p := range inputs {
		inputTotal += p.Amount
	}
	keepAmount := inputTotal - sendAmount

	keepMsgs, keepSecrets, keepR, err := cashu.CreateBlindedMessages(keepAmount)
	if err != nil {
		return nil, fmt.Errorf("mintclient: build keep outputs: %w", err)
	}
	sendMsgs, sendSecrets, sendR, err := cashu.CreateBlindedMessages(sendAmount)
	if err != nil {
		return nil, fmt.Errorf("mintclient: build send outputs: %w", err)
	}

	outputs := make(cashu.BlindedMessages, 0, len(keepMsgs)+len(sendMsgs))
	outputs = append(outputs, keepMsgs...)
	outputs = append(outputs, sendMsgs...)
	secrets := append(append([][]byte{}, keepSecrets...), sendSecrets...)
	rs := append(append([]*secp256k1.PrivateKey{}, keepR...), sendR...)
	sort.Sort(byAmount{outputs, secrets, rs})

	req := struct {
		Inputs  []Proof              `json:"inputs"`
		Outputs cashu.BlindedMessages `json:"outputs"`
		Lock    *P2PKLock            `json:"lock,omitempty"`
	}{Inputs: inputs, Outputs: outputs, Lock: lock}

	var resp struct {
		Signatures cashu.BlindedSignatures `json:"signatures"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/swap", req, &resp); err != nil {
		return nil, err
	}

	allProofs, err := unblindProofs(resp.Signatures, secrets, rs, keyset)
	if err != nil {
		return nil, err
	}

	result := &SwapResult{}
	keepCount := len(keepMsgs)
	for i, p := range allProofs {
		if i < keepCount {
			result.Keep = append(result.Keep, p)
		} else {
			if lock != nil {
				p.Witness = lockWitness(lock)
			}
			result.Send = append(result.Send, p)
		}
	}
	return result, nil
}

// Receive redeems an encoded token at the mint, swapping its proofs for
// fresh ones under this wallet's control.
func (c *Client) Receive(ctx context.Context, token Token) ([]Proof, error) {
	var total uint64
	for _, p := range token.Proofs {
		total += p.Amount
	}
	result, err := c.Swap(ctx, token.Proofs, total, nil)
	if err != nil {
		return nil, err
	}
	return append(result.Keep, result.Send...), nil
}

// CreateMeltQuote asks the mint what it would cost (amount + fee reserve)
// to pay a Lightning invoice on the wallet's behalf.
func (c *Client) CreateMeltQuote(ctx context.Context, bolt11 string, unit string) (*MeltQuote, error) {
	req := struct {
		Request string `json:"request"`
		Unit    string `json:"unit"`
	}{bolt11, unit}

	var resp meltQuoteWire
	if err := c.doJSON(ctx, http.MethodPost, "/v1/melt/quote/bolt11", req, &resp); err != nil {
		return nil, err
	}
	return resp.toMeltQuote(), nil
}

// CheckMeltQuote polls the mint for the authoritative state of a melt
// quote, used to resolve an ambiguous payment outcome.
func (c *Client) CheckMeltQuote(ctx context.Context, quoteID string) (*MeltQuote, error) {
	var resp meltQuoteWire
	if err := c.doJSON(ctx, http.MethodGet, "/v1/melt/quote/bolt11/"+quoteID, nil, &resp); err != nil {
		return nil, err
	}
	return resp.toMeltQuote(), nil
}

// MeltProofs instructs the mint to pay the invoice behind quote using
// proofsToSend as payment, returning any change proofs the mint issues
// back from unused fee reserve.
func (c *Client) MeltProofs(ctx context.Context, quote *MeltQuote, proofsToSend []Proof) (*MeltResult, error) {
	keyset, err := c.activeKeyset(ctx)
	if err != nil {
		return nil, err
	}

	changeMsgs, changeSecrets, changeR, err := cashu.CreateBlindedMessages(quote.FeeReserve)
	if err != nil {
		return nil, fmt.Errorf("mintclient: build change outputs: %w", err)
	}

	req := struct {
		Quote   string               `json:"quote"`
		Inputs  []Proof              `json:"inputs"`
		Outputs cashu.BlindedMessages `json:"outputs,omitempty"`
	}{Quote: quote.Quote, Inputs: proofsToSend, Outputs: changeMsgs}

	var resp struct {
		State           string                  `json:"state"`
		PaymentPreimage string                  `json:"payment_preimage"`
		Change          cashu.BlindedSignatures `json:"change"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/melt/bolt11", req, &resp); err != nil {
		return nil, err
	}

	var change []Proof
	if len(resp.Change) > 0 {
		change, err = unblindProofs(resp.Change, changeSecrets, changeR, keyset)
		if err != nil {
			return nil, err
		}
	}

	return &MeltResult{
		Quote: MeltQuote{
			Quote:           quote.Quote,
			State:           MeltQuoteState(resp.State),
			PaymentPreimage: resp.PaymentPreimage,
		},
		Change: change,
	}, nil
}

// CheckProofStates asks the mint for the current state of each proof,
// identified by secret. Used during reconciliation of PENDING proofs.
func (c *Client) CheckProofStates(ctx context.Context, secrets []string) (map[string]ProofState, error) {
	req := struct {
		Secrets []string `json:"secrets"`
	}{secrets}

	var resp struct {
		States []struct {
			Secret string `json:"secret"`
			State  string `json:"state"`
		} `json:"states"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/checkstate", req, &resp); err != nil {
		return nil, err
	}

	out := make(map[string]ProofState, len(resp.States))
	for _, s := range resp.States {
		out[s.Secret] = ProofState(s.State)
	}
	return out, nil
}

func (c *Client) activeKeyset(ctx context.Context) (*crypto.Keyset, error) {
	var resp nut01.GetKeysResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/keys", nil, &resp); err != nil {
		return nil, fmt.Errorf("mintclient: fetch keyset: %w", err)
	}
	if len(resp.Keysets) == 0 {
		return nil, fmt.Errorf("mintclient: mint returned no keysets")
	}

	keyset := &crypto.Keyset{MintURL: c.baseURL}
	for amountStr, pubkeyHex := range resp.Keysets[0].Keys {
		pubkeyBytes, err := hex.DecodeString(pubkeyHex)
		if err != nil {
			return nil, fmt.Errorf("mintclient: invalid keyset pubkey: %w", err)
		}
		var amount uint64
		if _, err := fmt.Sscanf(amountStr, "%d", &amount); err != nil {
			return nil, fmt.Errorf("mintclient: invalid keyset amount %q: %w", amountStr, err)
		}
		keyset.KeyPairs = append(keyset.KeyPairs, crypto.KeyPair{Amount: amount, PublicKey: pubkeyBytes})
	}
	keyset.Id = crypto.DeriveKeysetId(keyset.KeyPairs)
	return keyset, nil
}

func lockWitness(lock *P2PKLock) string {
	return fmt.Sprintf(`{"pubkeys":["%s"]}`, lock.Pubkey)
}

type meltQuoteWire struct {
	Quote           string `json:"quote"`
	Amount          uint64 `json:"amount"`
	FeeReserve      uint64 `json:"fee_reserve"`
	State           string `json:"state"`
	Expiry          int64  `json:"expiry"`
	PaymentPreimage string `json:"payment_preimage"`
}

func (w meltQuoteWire) toMeltQuote() *MeltQuote {
	return &MeltQuote{
		Quote:           w.Quote,
		Amount:          w.Amount,
		FeeReserve:      w.FeeReserve,
		State:           MeltQuoteState(w.State),
		Expiry:          w.Expiry,
		PaymentPreimage: w.PaymentPreimage,
	}
}
