package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"token-sentry/database/models"
	"token-sentry/net"
)

type fakeStore struct {
	subs    []*models.Subscription
	touched []uint
}

func (f *fakeStore) GetAllActiveSubscriptions() []*models.Subscription { return f.subs }
func (f *fakeStore) TouchSubscriptionChecked(id uint)                  { f.touched = append(f.touched, id) }

type fakeFeed struct {
	txs        map[string][]*net.Transaction
	txErrs     map[string]error
	profitable map[string][]*net.ProfitableWallet

	// when set, every fetch yields a fresh transaction hash
	freshHashes bool
	seq         int
}

func (f *fakeFeed) GetRecentTransactions(_ context.Context, _, wallet string, _ time.Duration) ([]*net.Transaction, error) {
	if err, ok := f.txErrs[wallet]; ok {
		return nil, err
	}
	if f.freshHashes {
		f.seq++
		return []*net.Transaction{{Hash: fmt.Sprintf("0x%08d", f.seq), TokenSymbol: "PEPE", IsTokenTransfer: true}}, nil
	}
	return f.txs[wallet], nil
}

func (f *fakeFeed) GetTokenProfitableWallets(_ context.Context, _, token string, _ int) ([]*net.ProfitableWallet, error) {
	return f.profitable[token], nil
}

type sentMsg struct {
	userID int64
	text   string
}

type fakeSender struct {
	sent    []sentMsg
	failFor int64
}

func (f *fakeSender) Send(telegramID int64, text string) error {
	if f.failFor != 0 && telegramID == f.failFor {
		return errors.New("user blocked the bot")
	}
	f.sent = append(f.sent, sentMsg{userID: telegramID, text: text})
	return nil
}

const trackedWallet = "0x1111111111111111111111111111111111111111"

func newTestTracker(store Store, feed Feed, sender Sender) *Tracker {
	t := New(store, feed, sender)
	return t
}

func TestWalletTradeProducesOneAlert(t *testing.T) {
	store := &fakeStore{subs: []*models.Subscription{
		{ID: 1, TelegramID: 100, Type: models.TrackWalletTrades, Address: trackedWallet, Chain: "eth", Active: true},
	}}
	feed := &fakeFeed{txs: map[string][]*net.Transaction{
		trackedWallet: {{Hash: "0xaa", TokenSymbol: "PEPE", ValueUsd: 1234, IsTokenTransfer: true}},
	}}
	sender := &fakeSender{}

	trk := newTestTracker(store, feed, sender)
	trk.runCycle()

	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(100), sender.sent[0].userID)
	assert.Contains(t, sender.sent[0].text, "0x1111…1111")
	assert.Contains(t, sender.sent[0].text, "PEPE")
	assert.Equal(t, []uint{1}, store.touched)
}

func TestSeenTransactionIsNotRedispatched(t *testing.T) {
	store := &fakeStore{subs: []*models.Subscription{
		{ID: 1, TelegramID: 100, Type: models.TrackWalletTrades, Address: trackedWallet, Chain: "eth", Active: true},
	}}
	feed := &fakeFeed{txs: map[string][]*net.Transaction{
		trackedWallet: {{Hash: "0xaa", TokenSymbol: "PEPE", IsTokenTransfer: true}},
	}}
	sender := &fakeSender{}

	trk := newTestTracker(store, feed, sender)
	trk.runCycle()
	trk.runCycle() // same tx shows up again inside the lookback window

	assert.Len(t, sender.sent, 1)
}

func TestClassificationRoutesByFlags(t *testing.T) {
	store := &fakeStore{subs: []*models.Subscription{
		{ID: 1, TelegramID: 100, Type: models.TrackWalletTrades, Address: trackedWallet, Chain: "eth", Active: true},
		{ID: 2, TelegramID: 200, Type: models.TrackTokenDeployments, Address: trackedWallet, Chain: "eth", Active: true},
	}}
	feed := &fakeFeed{txs: map[string][]*net.Transaction{
		trackedWallet: {
			{Hash: "0xaa", TokenSymbol: "PEPE", IsTokenTransfer: true},
			{Hash: "0xbb", IsContractCreation: true},
		},
	}}
	sender := &fakeSender{}

	newTestTracker(store, feed, sender).runCycle()

	require.Len(t, sender.sent, 2)
	byUser := map[int64]string{}
	for _, msg := range sender.sent {
		byUser[msg.userID] = msg.text
	}
	assert.Contains(t, byUser[100], "PEPE")
	assert.Contains(t, byUser[200], "deployment")
}

func TestOneBadAddressDoesNotStarveOthers(t *testing.T) {
	otherWallet := "0x2222222222222222222222222222222222222222"
	store := &fakeStore{subs: []*models.Subscription{
		{ID: 1, TelegramID: 100, Type: models.TrackWalletTrades, Address: trackedWallet, Chain: "eth", Active: true},
		{ID: 2, TelegramID: 200, Type: models.TrackWalletTrades, Address: otherWallet, Chain: "eth", Active: true},
	}}
	feed := &fakeFeed{
		txErrs: map[string]error{trackedWallet: errors.New("upstream timeout")},
		txs: map[string][]*net.Transaction{
			otherWallet: {{Hash: "0xcc", TokenSymbol: "WETH", IsTokenTransfer: true}},
		},
	}
	sender := &fakeSender{}

	newTestTracker(store, feed, sender).runCycle()

	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(200), sender.sent[0].userID)
}

func TestUnreachableUserDoesNotFailCycle(t *testing.T) {
	otherWallet := "0x2222222222222222222222222222222222222222"
	store := &fakeStore{subs: []*models.Subscription{
		{ID: 1, TelegramID: 100, Type: models.TrackWalletTrades, Address: trackedWallet, Chain: "eth", Active: true},
		{ID: 2, TelegramID: 200, Type: models.TrackWalletTrades, Address: otherWallet, Chain: "eth", Active: true},
	}}
	feed := &fakeFeed{txs: map[string][]*net.Transaction{
		trackedWallet: {{Hash: "0xaa", TokenSymbol: "PEPE", IsTokenTransfer: true}},
		otherWallet:   {{Hash: "0xbb", TokenSymbol: "WETH", IsTokenTransfer: true}},
	}}
	sender := &fakeSender{failFor: 100}

	trk := newTestTracker(store, feed, sender)
	trk.runCycle()

	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(200), sender.sent[0].userID)
	assert.Equal(t, int64(1), trk.Stats().Alerts)
}

func TestTokenCentricFanout(t *testing.T) {
	token := "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	profitableWallet := "0x3333333333333333333333333333333333333333"
	store := &fakeStore{subs: []*models.Subscription{
		{ID: 1, TelegramID: 100, Type: models.TrackTokenProfitableWallets, Address: token, Chain: "eth", Active: true},
	}}
	feed := &fakeFeed{
		profitable: map[string][]*net.ProfitableWallet{
			token: {{Address: profitableWallet, WinRate: 72.5}},
		},
		txs: map[string][]*net.Transaction{
			profitableWallet: {
				{Hash: "0xdd", TokenAddress: token, TokenSymbol: "MOON", IsTokenTransfer: true},
				// trade in an unrelated token is not alerted
				{Hash: "0xee", TokenAddress: "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", TokenSymbol: "DOGE", IsTokenTransfer: true},
			},
		},
	}
	sender := &fakeSender{}

	newTestTracker(store, feed, sender).runCycle()

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].text, "Profitable wallet")
	assert.Contains(t, sender.sent[0].text, "MOON")
	assert.Contains(t, sender.sent[0].text, "0x3333…3333")
}

func TestSubscriptionAddressCasingDoesNotSplitGroups(t *testing.T) {
	upper := strings.ToUpper(trackedWallet[2:])
	store := &fakeStore{subs: []*models.Subscription{
		{ID: 1, TelegramID: 100, Type: models.TrackWalletTrades, Address: trackedWallet, Chain: "eth", Active: true},
		{ID: 2, TelegramID: 200, Type: models.TrackWalletTrades, Address: "0x" + upper, Chain: "eth", Active: true},
	}}
	feed := &fakeFeed{txs: map[string][]*net.Transaction{
		trackedWallet: {{Hash: "0xaa", TokenSymbol: "PEPE", IsTokenTransfer: true}},
	}}
	sender := &fakeSender{}

	newTestTracker(store, feed, sender).runCycle()

	// one upstream fetch, both subscribers alerted
	assert.Len(t, sender.sent, 2)
}

// Stats and Report come from the API and cron goroutines while the loop
// mutates the dedup set and the reporter; this must be race-free.
func TestStatsAndReportConcurrentWithCycles(t *testing.T) {
	store := &fakeStore{subs: []*models.Subscription{
		{ID: 1, TelegramID: 100, Type: models.TrackWalletTrades, Address: trackedWallet, Chain: "eth", Active: true},
	}}
	feed := &fakeFeed{freshHashes: true}
	trk := newTestTracker(store, feed, &fakeSender{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			trk.runCycle()
		}
	}()

	for {
		select {
		case <-done:
			stats := trk.Stats()
			assert.Equal(t, int64(200), stats.Cycles)
			assert.Equal(t, 200, stats.SeenSize)
			return
		default:
			trk.Stats()
			trk.Report()
		}
	}
}

func TestStopTerminatesLoop(t *testing.T) {
	store := &fakeStore{}
	trk := newTestTracker(store, &fakeFeed{}, &fakeSender{})
	trk.interval = 10 * time.Millisecond

	trk.Start()
	time.Sleep(30 * time.Millisecond)
	done := make(chan struct{})
	go func() {
		trk.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}
