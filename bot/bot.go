package bot

import (
	"context"
	"math/big"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"token-sentry/config"
	"token-sentry/database/models"
	"token-sentry/net"
	"token-sentry/session"
)

// Store is the slice of the database the command surface needs.
type Store interface {
	EnsureUser(telegramID int64, username string) *models.User
	GetUser(telegramID int64) *models.User
	CheckRateLimit(user *models.User, scanType string, limit int) bool
	IncrementScanCount(telegramID int64, scanType, day string)
	SaveSubscription(sub *models.Subscription) error
	GetSubscription(telegramID int64, subType, address string) *models.Subscription
	GetActiveSubscriptionsForUser(telegramID int64) []*models.Subscription
	DeactivateSubscription(telegramID int64, subType, address string) bool
	GetKOLWallets() []*models.KOLWallet
	SaveKOLWallet(wallet *models.KOLWallet) error
	SetPremiumStatus(telegramID int64, premium bool, durationDays int) error
	SaveTokenSnapshot(snap *models.TokenSnapshot)
	GetTokenSnapshot(chain, address string) *models.TokenSnapshot
	SaveWalletSnapshot(snap *models.WalletSnapshot)
	GetScanCount(telegramID int64, scanType, day string) int
}

// Analytics is the analytics API surface the handlers call.
type Analytics interface {
	GetTokenMetadata(ctx context.Context, chain, token string) (*net.TokenMetadata, error)
	GetMarketCapATH(ctx context.Context, chain, token string) (*net.MarketCapATH, error)
	GetTokenHolders(ctx context.Context, chain, token string, limit int) ([]*net.TokenHolder, error)
	GetFirstBuyers(ctx context.Context, chain, token string, limit int) ([]*net.FirstBuyer, error)
	GetTokenProfitableWallets(ctx context.Context, chain, token string, limit int) ([]*net.ProfitableWallet, error)
	GetTokenDeployerProjects(ctx context.Context, chain, token string) ([]*net.DeployerProject, error)
	GetWalletStats(ctx context.Context, chain, wallet string) (*net.WalletStats, error)
	GetWalletHoldingTime(ctx context.Context, chain, wallet string) (*net.HoldingTime, error)
	GetWalletDeployedTokens(ctx context.Context, chain, wallet string) ([]*net.DeployedToken, error)
	GetKOLWallets(ctx context.Context, chain string) ([]*net.KOLWallet, error)
	GetHighActivityWallets(ctx context.Context, chain string, limit int) ([]*net.ActiveWallet, error)
	GetProfitableDeployers(ctx context.Context, chain string, limit int) ([]*net.ProfitableWallet, error)
	GetProfitableDefiWallets(ctx context.Context, chain string, limit int) ([]*net.ProfitableWallet, error)
}

// Chains covers the on-chain checks used before accepting a token tracking
// target.
type Chains interface {
	IsValidTokenContract(ctx context.Context, chain, addr string) bool
}

// Verifier confirms premium payments.
type Verifier interface {
	VerifyPayment(ctx context.Context, txHash string, expectedWei *big.Int) net.Verdict
}

type reply struct {
	text   string
	markup *tgbotapi.InlineKeyboardMarkup
}

// Bot is the Telegram command surface. Handlers are pure request/response:
// they read args, gate on quota, call one upstream accessor and format the
// answer; nothing here blocks beyond awaited I/O.
type Bot struct {
	api *tgbotapi.BotAPI

	db        Store
	analytics Analytics
	chains    Chains
	verifier  Verifier
	sessions  *session.Store

	limits  config.LimitsConfig
	premium config.PremiumConfig
	admins  map[string]bool

	logger *zap.SugaredLogger
}

func New(cfg *config.Config, db Store, analytics Analytics, chains Chains, verifier Verifier, sessions *session.Store) *Bot {
	botApi, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		panic(err)
	}

	admins := make(map[string]bool)
	for _, user := range cfg.Bot.AdminUsers {
		admins[user] = true
	}

	bot := &Bot{
		api: botApi,

		db:        db,
		analytics: analytics,
		chains:    chains,
		verifier:  verifier,
		sessions:  sessions,

		limits:  cfg.Limits,
		premium: cfg.Premium,
		admins:  admins,

		logger: zap.S().Named("[bot]"),
	}

	bot.logger.Infof("Telegram bot authorized on account [%s]", botApi.Self.UserName)

	return bot
}

func (b *Bot) Start() {
	b.logger.Info("Started telegram bot")

	go func() {
		u := tgbotapi.NewUpdate(0)
		u.Timeout = 60

		updates := b.api.GetUpdatesChan(u)
		for update := range updates {
			b.handleUpdate(update)
		}
	}()
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Errorf("Update handler panicked: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}
	if update.Message == nil || update.Message.From == nil {
		return
	}

	user := b.db.EnsureUser(update.Message.From.ID, update.Message.From.UserName)

	var rep reply
	if update.Message.IsCommand() {
		rep = b.handleCommand(ctx, user, update.Message)
	} else {
		rep = b.handleText(ctx, user, update.Message.Text)
	}

	if rep.text != "" {
		b.sendReply(update.Message.Chat.ID, update.Message.MessageID, rep)
	}
}

// Send implements the poller's dispatch contract.
func (b *Bot) Send(telegramID int64, text string) error {
	msg := tgbotapi.NewMessage(telegramID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendReply(chatID int64, msgID int, rep reply) {
	msg := tgbotapi.NewMessage(chatID, rep.text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if msgID != 0 {
		msg.ReplyToMessageID = msgID
	}
	if rep.markup != nil {
		msg.ReplyMarkup = rep.markup
	}

	if _, err := b.api.Send(msg); err != nil {
		b.logger.Errorf("Error sending message: %v", err)
	}
}

func (b *Bot) isAdmin(user *models.User) bool {
	return user.IsAdmin || b.admins[user.Username]
}
