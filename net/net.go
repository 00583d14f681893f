package net

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"token-sentry/config"
)

// AnalyticsClient wraps the token-analytics REST API. Every call funnels
// through get: rate limiter, circuit breaker, one GET, JSON decode. Expected
// upstream failures are logged once with the failing URL and surfaced as
// (nil, err); callers decide what to tell the user. No retries.
type AnalyticsClient struct {
	base    string
	client  *resty.Client
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	logger  *zap.SugaredLogger
}

func NewAnalyticsClient(cfg *config.NetConfig) *AnalyticsClient {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "analytics",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &AnalyticsClient{
		base:    cfg.AnalyticsURL,
		client:  resty.New().SetTimeout(15 * time.Second),
		breaker: breaker,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		logger:  zap.S().Named("[net]"),
	}
}

func (c *AnalyticsClient) get(ctx context.Context, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	url := c.base + path
	body, err := c.breaker.Execute(func() (any, error) {
		resp, reqErr := c.client.R().SetContext(ctx).Get(url)
		if reqErr != nil {
			return nil, reqErr
		}
		if resp.StatusCode() != 200 {
			return nil, fmt.Errorf("status %d", resp.StatusCode())
		}
		return resp.Body(), nil
	})
	if err != nil {
		c.logger.Warnf("GET %s failed: %s", url, err.Error())
		return err
	}

	if err = json.Unmarshal(body.([]byte), out); err != nil {
		c.logger.Warnf("GET %s decode failed: %s", url, err.Error())
		return err
	}
	return nil
}

func (c *AnalyticsClient) GetTokenMetadata(ctx context.Context, chain, token string) (*TokenMetadata, error) {
	var metadata TokenMetadata
	if err := c.get(ctx, fmt.Sprintf("/api/v1/token-metadata/%s/%s", chain, token), &metadata); err != nil {
		return nil, err
	}
	return &metadata, nil
}

func (c *AnalyticsClient) GetMarketCapATH(ctx context.Context, chain, token string) (*MarketCapATH, error) {
	var ath MarketCapATH
	if err := c.get(ctx, fmt.Sprintf("/api/v1/market-cap-ath/%s/%s", chain, token), &ath); err != nil {
		return nil, err
	}
	return &ath, nil
}

func (c *AnalyticsClient) GetTokenHolders(ctx context.Context, chain, token string, limit int) ([]*TokenHolder, error) {
	holders := make([]*TokenHolder, 0)
	if err := c.get(ctx, fmt.Sprintf("/api/v1/token-holders/%s/%s/%d", chain, token, limit), &holders); err != nil {
		return nil, err
	}
	return holders, nil
}

func (c *AnalyticsClient) GetFirstBuyers(ctx context.Context, chain, token string, limit int) ([]*FirstBuyer, error) {
	buyers := make([]*FirstBuyer, 0)
	if err := c.get(ctx, fmt.Sprintf("/api/v1/first-buyers/%s/%s/%d", chain, token, limit), &buyers); err != nil {
		return nil, err
	}
	return buyers, nil
}

func (c *AnalyticsClient) GetTokenProfitableWallets(ctx context.Context, chain, token string, limit int) ([]*ProfitableWallet, error) {
	wallets := make([]*ProfitableWallet, 0)
	if err := c.get(ctx, fmt.Sprintf("/api/v1/profitable-wallets/%s/%s/%d", chain, token, limit), &wallets); err != nil {
		return nil, err
	}
	return wallets, nil
}

func (c *AnalyticsClient) GetTokenDeployerProjects(ctx context.Context, chain, token string) ([]*DeployerProject, error) {
	projects := make([]*DeployerProject, 0)
	if err := c.get(ctx, fmt.Sprintf("/api/v1/deployer-projects/%s/%s", chain, token), &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (c *AnalyticsClient) GetWalletStats(ctx context.Context, chain, wallet string) (*WalletStats, error) {
	var stats WalletStats
	if err := c.get(ctx, fmt.Sprintf("/api/v1/wallet-stats/%s/%s", chain, wallet), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *AnalyticsClient) GetWalletHoldingTime(ctx context.Context, chain, wallet string) (*HoldingTime, error) {
	var holding HoldingTime
	if err := c.get(ctx, fmt.Sprintf("/api/v1/wallet-holding-time/%s/%s", chain, wallet), &holding); err != nil {
		return nil, err
	}
	return &holding, nil
}

func (c *AnalyticsClient) GetWalletDeployedTokens(ctx context.Context, chain, wallet string) ([]*DeployedToken, error) {
	tokens := make([]*DeployedToken, 0)
	if err := c.get(ctx, fmt.Sprintf("/api/v1/wallet-deployed-tokens/%s/%s", chain, wallet), &tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}

func (c *AnalyticsClient) GetKOLWallets(ctx context.Context, chain string) ([]*KOLWallet, error) {
	wallets := make([]*KOLWallet, 0)
	if err := c.get(ctx, fmt.Sprintf("/api/v1/kol-wallets/%s", chain), &wallets); err != nil {
		return nil, err
	}
	return wallets, nil
}

func (c *AnalyticsClient) GetHighActivityWallets(ctx context.Context, chain string, limit int) ([]*ActiveWallet, error) {
	wallets := make([]*ActiveWallet, 0)
	if err := c.get(ctx, fmt.Sprintf("/api/v1/high-activity-wallets/%s/%d", chain, limit), &wallets); err != nil {
		return nil, err
	}
	return wallets, nil
}

func (c *AnalyticsClient) GetProfitableDeployers(ctx context.Context, chain string, limit int) ([]*ProfitableWallet, error) {
	deployers := make([]*ProfitableWallet, 0)
	if err := c.get(ctx, fmt.Sprintf("/api/v1/profitable-deployers/%s/%d", chain, limit), &deployers); err != nil {
		return nil, err
	}
	return deployers, nil
}

func (c *AnalyticsClient) GetProfitableDefiWallets(ctx context.Context, chain string, limit int) ([]*ProfitableWallet, error) {
	wallets := make([]*ProfitableWallet, 0)
	if err := c.get(ctx, fmt.Sprintf("/api/v1/profitable-defi-wallets/%s/%d", chain, limit), &wallets); err != nil {
		return nil, err
	}
	return wallets, nil
}

// GetRecentTransactions returns wallet activity inside the lookback window.
// The poller calls this once per tracked wallet per cycle.
func (c *AnalyticsClient) GetRecentTransactions(ctx context.Context, chain, wallet string, window time.Duration) ([]*Transaction, error) {
	txs := make([]*Transaction, 0)
	minutes := int(window.Minutes())
	if minutes < 1 {
		minutes = 1
	}
	path := fmt.Sprintf("/api/v1/wallet-transactions/%s/%s?minutes=%d", chain, wallet, minutes)
	if err := c.get(ctx, path, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}
