package tracker

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"token-sentry/database/models"
	"token-sentry/net"
	"token-sentry/utils"
)

const (
	defaultInterval = 60 * time.Second
	defaultLookback = 10 * time.Minute

	// processed-set bounds: truncate to keepSize once past maxSeenSize
	maxSeenSize = 10_000
	keepSize    = 5_000

	// profitable wallets fanned out per tracked token each cycle
	tokenFanout = 10
)

// Store is the slice of the database the poller needs.
type Store interface {
	GetAllActiveSubscriptions() []*models.Subscription
	TouchSubscriptionChecked(id uint)
}

// Feed supplies recent on-chain activity for tracked addresses.
type Feed interface {
	GetRecentTransactions(ctx context.Context, chain, wallet string, window time.Duration) ([]*net.Transaction, error)
	GetTokenProfitableWallets(ctx context.Context, chain, token string, limit int) ([]*net.ProfitableWallet, error)
}

// Sender delivers one alert to one user. Failures are the sender's to
// report; the poller only logs them.
type Sender interface {
	Send(telegramID int64, text string) error
}

type Stats struct {
	Cycles   int64 `json:"cycles"`
	Alerts   int64 `json:"alerts"`
	SeenSize int   `json:"seen_size"`
}

type groupKey struct {
	chain   string
	address string
}

// Tracker is the notification core: every cycle it bulk-loads active
// subscriptions, fetches each distinct tracked address's recent activity,
// dedups by transaction hash and dispatches one alert per matching
// subscription. Delivery is best-effort at-least-once; the dedup set makes
// it approximately exactly-once while the process lives.
//
// The token-centric branch re-fetches each tracked token's profitable
// wallet list every cycle, uncached. Fine at current subscription counts,
// a known scaling limit beyond that.
type Tracker struct {
	store  Store
	feed   Feed
	sender Sender

	seen     *txSet
	interval time.Duration
	lookback time.Duration

	cycles   atomic.Int64
	alerts   atomic.Int64
	seenSize atomic.Int64

	reporter *utils.Reporter
	loopWG   sync.WaitGroup
	quitCh   chan struct{}
	logger   *zap.SugaredLogger
}

func New(store Store, feed Feed, sender Sender) *Tracker {
	return &Tracker{
		store:  store,
		feed:   feed,
		sender: sender,

		seen:     newTxSet(maxSeenSize, keepSize),
		interval: defaultInterval,
		lookback: defaultLookback,

		reporter: utils.NewReporter(0, 10*time.Minute, "Tracker report, dispatched [%d] alerts in [%.2fs]"),
		quitCh:   make(chan struct{}),
		logger:   zap.S().Named("[tracker]"),
	}
}

func (t *Tracker) Start() {
	t.loopWG.Add(1)
	go t.loop()

	t.logger.Infof("Tracker started, interval [%s], lookback [%s]", t.interval, t.lookback)
}

func (t *Tracker) Stop() {
	close(t.quitCh)
	t.loopWG.Wait()
}

func (t *Tracker) Report() {
	if shouldReport, content := t.reporter.Add(0); shouldReport {
		t.logger.Info(content)
	}
}

// Stats is served from the API goroutine; it only reads counters the loop
// publishes, never the loop-owned dedup set itself.
func (t *Tracker) Stats() Stats {
	return Stats{
		Cycles:   t.cycles.Load(),
		Alerts:   t.alerts.Load(),
		SeenSize: int(t.seenSize.Load()),
	}
}

func (t *Tracker) loop() {
	defer t.loopWG.Done()

	for {
		t.runCycle()

		select {
		case <-t.quitCh:
			t.logger.Info("Tracker quit")
			return
		case <-time.After(t.interval):
		}
	}
}

// runCycle never lets one bad address or a mid-cycle panic take the loop
// down; the worst case is a logged error and a retry next interval.
func (t *Tracker) runCycle() {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Errorf("Tracker cycle panicked: %v", r)
		}
	}()

	subs := t.store.GetAllActiveSubscriptions()
	if len(subs) == 0 {
		return
	}

	walletGroups := make(map[groupKey][]*models.Subscription)
	tokenGroups := make(map[groupKey][]*models.Subscription)
	for _, sub := range subs {
		key := groupKey{chain: sub.Chain, address: strings.ToLower(sub.Address)}
		switch sub.Type {
		case models.TrackWalletTrades, models.TrackTokenDeployments:
			walletGroups[key] = append(walletGroups[key], sub)
		case models.TrackTokenProfitableWallets:
			tokenGroups[key] = append(tokenGroups[key], sub)
		default:
			t.logger.Warnf("Skipping subscription [%d] with unknown type %q", sub.ID, sub.Type)
		}
	}

	ctx := context.Background()
	t.checkWalletGroups(ctx, walletGroups)
	t.checkTokenGroups(ctx, tokenGroups)

	if evicted := t.seen.Compact(); evicted > 0 {
		t.logger.Infof("Compacted processed set, evicted [%d] ids, [%d] retained", evicted, t.seen.Len())
	}
	t.seenSize.Store(int64(t.seen.Len()))

	t.cycles.Add(1)
}

func (t *Tracker) checkWalletGroups(ctx context.Context, groups map[groupKey][]*models.Subscription) {
	for key, group := range groups {
		txs, err := t.feed.GetRecentTransactions(ctx, key.chain, key.address, t.lookback)
		if err != nil {
			// one bad address must not starve the other subscriptions
			t.logger.Warnf("Fetch transactions for %s on %s failed: %s", key.address, key.chain, err.Error())
			continue
		}

		for _, tx := range txs {
			if tx.Hash == "" || t.seen.Seen(tx.Hash) {
				continue
			}
			t.seen.Add(tx.Hash)

			for _, sub := range group {
				switch {
				case sub.Type == models.TrackWalletTrades && tx.IsTokenTransfer:
					t.dispatch(sub.TelegramID, formatWalletTradeAlert(key.address, tx))
				case sub.Type == models.TrackTokenDeployments && tx.IsContractCreation:
					t.dispatch(sub.TelegramID, formatDeploymentAlert(key.address, tx))
				}
			}
		}

		for _, sub := range group {
			t.store.TouchSubscriptionChecked(sub.ID)
		}
	}
}

func (t *Tracker) checkTokenGroups(ctx context.Context, groups map[groupKey][]*models.Subscription) {
	for key, group := range groups {
		wallets, err := t.feed.GetTokenProfitableWallets(ctx, key.chain, key.address, tokenFanout)
		if err != nil {
			t.logger.Warnf("Fetch profitable wallets for token %s on %s failed: %s", key.address, key.chain, err.Error())
			continue
		}

		for _, wallet := range wallets {
			txs, txErr := t.feed.GetRecentTransactions(ctx, key.chain, wallet.Address, t.lookback)
			if txErr != nil {
				t.logger.Warnf("Fetch transactions for %s on %s failed: %s", wallet.Address, key.chain, txErr.Error())
				continue
			}

			for _, tx := range txs {
				if tx.Hash == "" || t.seen.Seen(tx.Hash) {
					continue
				}
				t.seen.Add(tx.Hash)

				if !tx.IsTokenTransfer || strings.ToLower(tx.TokenAddress) != key.address {
					continue
				}
				for _, sub := range group {
					t.dispatch(sub.TelegramID, formatProfitableWalletAlert(wallet, tx))
				}
			}
		}

		for _, sub := range group {
			t.store.TouchSubscriptionChecked(sub.ID)
		}
	}
}

func (t *Tracker) dispatch(telegramID int64, text string) {
	if err := t.sender.Send(telegramID, text); err != nil {
		// unreachable users (blocked bot etc.) must not fail the cycle
		t.logger.Warnf("Send alert to [%d] failed: %s", telegramID, err.Error())
		return
	}

	t.alerts.Add(1)
	if shouldReport, content := t.reporter.Add(1); shouldReport {
		t.logger.Info(content)
	}
}
