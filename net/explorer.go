package net

import (
	"context"
	"math/big"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"token-sentry/config"
)

// Payment verification reasons. Each maps to a tailored user message in the
// premium flow; Verified=true leaves Reason empty.
const (
	ReasonNotFound       = "Transaction not found"
	ReasonWrongRecipient = "Wrong recipient wallet"
	ReasonAmountMismatch = "Payment amount mismatch"
	ReasonPending        = "Transaction still pending"
	ReasonFailedOnChain  = "Transaction failed on-chain"
)

type Verdict struct {
	Verified bool
	Reason   string
	PaidWei  *big.Int
}

type proxyTransaction struct {
	Hash        string `json:"hash"`
	To          string `json:"to"`
	Value       string `json:"value"`
	BlockNumber string `json:"blockNumber"`
}

type proxyReceipt struct {
	Status string `json:"status"`
}

// ExplorerClient verifies premium payments against a block-explorer proxy
// API (eth_getTransactionByHash / eth_getTransactionReceipt).
type ExplorerClient struct {
	base   string
	apiKey string
	wallet string
	client *resty.Client
	logger *zap.SugaredLogger
}

func NewExplorerClient(cfg *config.NetConfig, subscriptionWallet string) *ExplorerClient {
	return &ExplorerClient{
		base:   cfg.ExplorerURL,
		apiKey: cfg.ExplorerAPIKey,
		wallet: strings.ToLower(subscriptionWallet),
		client: resty.New().SetTimeout(15 * time.Second),
		logger: zap.S().Named("[explorer]"),
	}
}

// VerifyPayment checks that txHash pays the configured subscription wallet
// at least expectedWei (1% tolerance for gas variance) and is confirmed.
func (e *ExplorerClient) VerifyPayment(ctx context.Context, txHash string, expectedWei *big.Int) Verdict {
	tx := e.fetchTransaction(ctx, txHash)
	if tx == nil || tx.Hash == "" {
		return Verdict{Reason: ReasonNotFound}
	}

	var receipt *proxyReceipt
	if tx.BlockNumber != "" {
		receipt = e.fetchReceipt(ctx, txHash)
	}

	return evaluatePayment(tx, receipt, e.wallet, expectedWei)
}

func (e *ExplorerClient) fetchTransaction(ctx context.Context, txHash string) *proxyTransaction {
	var result struct {
		Result *proxyTransaction `json:"result"`
	}
	if err := e.proxyGet(ctx, "eth_getTransactionByHash", txHash, &result); err != nil {
		return nil
	}
	return result.Result
}

func (e *ExplorerClient) fetchReceipt(ctx context.Context, txHash string) *proxyReceipt {
	var result struct {
		Result *proxyReceipt `json:"result"`
	}
	if err := e.proxyGet(ctx, "eth_getTransactionReceipt", txHash, &result); err != nil {
		return nil
	}
	return result.Result
}

func (e *ExplorerClient) proxyGet(ctx context.Context, action, txHash string, out any) error {
	resp, err := e.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"module": "proxy",
			"action": action,
			"txhash": txHash,
			"apikey": e.apiKey,
		}).
		Get(e.base + "/api")
	if err != nil {
		e.logger.Warnf("Explorer %s for %s failed: %s", action, txHash, err.Error())
		return err
	}

	if err = json.Unmarshal(resp.Body(), out); err != nil {
		e.logger.Warnf("Explorer %s for %s decode failed: %s", action, txHash, err.Error())
		return err
	}
	return nil
}

// evaluatePayment is the pure verification verdict: recipient first, then
// confirmation, then amount. wallet must already be lower-cased.
func evaluatePayment(tx *proxyTransaction, receipt *proxyReceipt, wallet string, expectedWei *big.Int) Verdict {
	if tx == nil || tx.Hash == "" {
		return Verdict{Reason: ReasonNotFound}
	}

	if strings.ToLower(tx.To) != wallet {
		return Verdict{Reason: ReasonWrongRecipient}
	}

	if tx.BlockNumber == "" || receipt == nil {
		return Verdict{Reason: ReasonPending}
	}
	if receipt.Status != "0x1" {
		return Verdict{Reason: ReasonFailedOnChain}
	}

	paid, ok := parseHexWei(tx.Value)
	if !ok {
		return Verdict{Reason: ReasonAmountMismatch}
	}

	// |paid - expected| <= expected / 100
	diff := new(big.Int).Sub(paid, expectedWei)
	diff.Abs(diff)
	tolerance := new(big.Int).Div(expectedWei, big.NewInt(100))
	if diff.Cmp(tolerance) > 0 {
		return Verdict{Reason: ReasonAmountMismatch, PaidWei: paid}
	}

	return Verdict{Verified: true, PaidWei: paid}
}

func parseHexWei(value string) (*big.Int, bool) {
	return new(big.Int).SetString(strings.TrimPrefix(value, "0x"), 16)
}
