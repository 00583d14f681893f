package bot

import (
	"context"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"token-sentry/chain"
	"token-sentry/database"
	"token-sentry/database/models"
	"token-sentry/session"
)

const defaultChain = "eth"

var chainTags = map[string]bool{"eth": true, "base": true, "bsc": true}

const (
	msgInvalidAddress      = "That doesn't look like a valid address. Expected 0x followed by 40 hex characters."
	msgUpstreamUnavailable = "The analytics service is unavailable right now, please try again in a minute."
	msgNoData              = "Could not find data for this address."
	msgUnknownCommand      = "Unknown command. See /help for the list of commands."
)

const helpText = `<b>Token commands</b> (address = token contract)
/info &lt;address&gt; — token overview
/fb &lt;address&gt; [n] — first buyers
/th &lt;address&gt; [n] — top holders
/ath &lt;address&gt; — all-time-high market cap
/pw &lt;address&gt; [n] — profitable wallets of a token
/dp &lt;address&gt; — other projects by the deployer

<b>Wallet commands</b>
/ws &lt;address&gt; — wallet stats
/ht &lt;address&gt; — holding time profile
/dt &lt;address&gt; — tokens deployed by a wallet

<b>Leaderboards</b>
/kol — KOL wallets
/ha — high-activity wallets (premium)
/pd — profitable deployers (premium)
/pdefi — profitable DeFi wallets (premium)

<b>Tracking</b>
/track wallet|deploys|token &lt;address&gt; — get alerts
/untrack — stop alerts
/subs — your active subscriptions

<b>Account</b>
/status — your quota and premium state
/premium — upgrade

Add eth, base or bsc anywhere in a command to pick the chain (default eth).`

// splitChain extracts a chain tag from the args, wherever the user put it.
func splitChain(args []string) (string, []string) {
	chainTag := defaultChain
	rest := make([]string, 0, len(args))
	for _, arg := range args {
		lower := strings.ToLower(arg)
		if chainTags[lower] {
			chainTag = lower
			continue
		}
		rest = append(rest, arg)
	}
	return chainTag, rest
}

func parseLimit(args []string, idx, def, max int) int {
	if len(args) <= idx {
		return def
	}
	n, err := strconv.Atoi(args[idx])
	if err != nil || n < 1 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

func (b *Bot) handleCommand(ctx context.Context, user *models.User, msg *tgbotapi.Message) reply {
	args := strings.Fields(msg.Text)[1:]

	switch msg.Command() {
	case "start":
		return reply{text: "Hi! I analyze ERC-20 tokens and wallets on eth, base and bsc, and can alert you on tracked addresses.\n\n" + helpText}
	case "help":
		return reply{text: helpText}
	case "info":
		return b.cmdTokenInfo(ctx, user, args)
	case "fb":
		return b.cmdFirstBuyers(ctx, user, args)
	case "th":
		return b.cmdTopHolders(ctx, user, args)
	case "ath":
		return b.cmdATH(ctx, user, args)
	case "pw":
		return b.cmdProfitableWallets(ctx, user, args)
	case "dp":
		return b.cmdDeployerProjects(ctx, user, args)
	case "ws":
		return b.cmdWalletStats(ctx, user, args)
	case "ht":
		return b.cmdHoldingTime(ctx, user, args)
	case "dt":
		return b.cmdDeployedTokens(ctx, user, args)
	case "kol":
		return b.cmdKOL(ctx, user, args)
	case "ha":
		return b.cmdHighActivity(ctx, user, args)
	case "pd":
		return b.cmdProfitableDeployers(ctx, user, args)
	case "pdefi":
		return b.cmdProfitableDefi(ctx, user, args)
	case "track":
		return b.cmdTrack(ctx, user, args)
	case "untrack":
		return b.cmdUntrack(ctx, user, args)
	case "subs":
		return b.cmdSubs(user)
	case "status":
		return b.cmdStatus(user)
	case "premium":
		return b.cmdPremium()
	case "verify":
		return b.cmdVerify(ctx, user, args)
	case "addkol":
		return b.cmdAddKOL(user, args)
	default:
		return reply{text: msgUnknownCommand}
	}
}

// handleText routes plain messages through the pending-input state; a bare
// valid address with no pending prompt is treated as /info.
func (b *Bot) handleText(ctx context.Context, user *models.User, text string) reply {
	text = strings.TrimSpace(text)
	if text == "" {
		return reply{}
	}

	pending, err := b.sessions.Get(ctx, user.TelegramID)
	if err == nil && pending != nil {
		b.sessions.Clear(ctx, user.TelegramID)
		switch pending.Kind {
		case session.AwaitTokenAddress, session.AwaitWalletAddress:
			return b.runScanCommand(ctx, user, pending.Command, []string{pending.Chain, text})
		case session.AwaitTxHash:
			return b.verifyPayment(ctx, user, text, pending.Days)
		}
	}

	if chain.IsValidAddress(text) {
		return b.cmdTokenInfo(ctx, user, []string{text})
	}
	return reply{text: "I didn't get that. See /help for the list of commands."}
}

func (b *Bot) runScanCommand(ctx context.Context, user *models.User, command string, args []string) reply {
	switch command {
	case "info":
		return b.cmdTokenInfo(ctx, user, args)
	case "fb":
		return b.cmdFirstBuyers(ctx, user, args)
	case "th":
		return b.cmdTopHolders(ctx, user, args)
	case "ath":
		return b.cmdATH(ctx, user, args)
	case "pw":
		return b.cmdProfitableWallets(ctx, user, args)
	case "dp":
		return b.cmdDeployerProjects(ctx, user, args)
	case "ws":
		return b.cmdWalletStats(ctx, user, args)
	case "ht":
		return b.cmdHoldingTime(ctx, user, args)
	case "dt":
		return b.cmdDeployedTokens(ctx, user, args)
	}
	return reply{text: msgUnknownCommand}
}

// gate enforces the free-tier daily quota. When the quota is spent it
// returns the upsell text and the caller must not issue the upstream call.
func (b *Bot) gate(user *models.User, scanType string) (string, bool) {
	limit := b.limits.TokenScansPerDay
	if scanType == models.WalletScan {
		limit = b.limits.WalletScansPerDay
	}

	if b.db.CheckRateLimit(user, scanType, limit) {
		return upsellMessage(limit), false
	}

	b.db.IncrementScanCount(user.TelegramID, scanType, database.DayKey(time.Now()))
	return "", true
}

func upsellMessage(limit int) string {
	return "You've used your " + strconv.Itoa(limit) + " free scans for today. 🔓 /premium removes the daily limit and unlocks advanced analyses."
}

func (b *Bot) premiumOnly(user *models.User) (string, bool) {
	if user.IsPremium || b.isAdmin(user) {
		return "", true
	}
	return "This analysis is for premium subscribers only. See /premium.", false
}

// askForAddress stores a pending prompt so the next plain message completes
// the command.
func (b *Bot) askForAddress(ctx context.Context, user *models.User, command, chainTag, kind, prompt string) reply {
	err := b.sessions.Set(ctx, user.TelegramID, &session.Pending{Kind: kind, Command: command, Chain: chainTag})
	if err != nil {
		b.logger.Warnf("Save pending input for [%d] error: %s", user.TelegramID, err.Error())
	}
	return reply{text: prompt}
}

// --- token scans ---

func (b *Bot) cmdTokenInfo(ctx context.Context, user *models.User, args []string) reply {
	chainTag, rest := splitChain(args)
	if len(rest) == 0 {
		return b.askForAddress(ctx, user, "info", chainTag, session.AwaitTokenAddress, "Send me the token contract address.")
	}
	if !chain.IsValidAddress(rest[0]) {
		return reply{text: msgInvalidAddress}
	}
	if upsell, ok := b.gate(user, models.TokenScan); !ok {
		return reply{text: upsell}
	}

	metadata, err := b.analytics.GetTokenMetadata(ctx, chainTag, database.NormalizeAddress(rest[0]))
	if err != nil {
		// serve the cached snapshot if we ever saw this token
		if snap := b.db.GetTokenSnapshot(chainTag, rest[0]); snap != nil {
			return reply{text: formatTokenSnapshot(chainTag, snap)}
		}
		return reply{text: msgUpstreamUnavailable}
	}
	if metadata.Symbol == "" && metadata.Name == "" {
		return reply{text: msgNoData}
	}

	b.db.SaveTokenSnapshot(&models.TokenSnapshot{
		Chain:     chainTag,
		Address:   rest[0],
		Name:      metadata.Name,
		Symbol:    metadata.Symbol,
		Deployer:  metadata.Deployer,
		MarketCap: metadata.MarketCap,
	})

	return reply{text: formatTokenInfo(chainTag, metadata)}
}

func (b *Bot) cmdFirstBuyers(ctx context.Context, user *models.User, args []string) reply {
	chainTag, rest := splitChain(args)
	if len(rest) == 0 {
		return b.askForAddress(ctx, user, "fb", chainTag, session.AwaitTokenAddress, "Send me the token contract address to list its first buyers.")
	}
	if !chain.IsValidAddress(rest[0]) {
		return reply{text: msgInvalidAddress}
	}
	if upsell, ok := b.gate(user, models.TokenScan); !ok {
		return reply{text: upsell}
	}

	buyers, err := b.analytics.GetFirstBuyers(ctx, chainTag, database.NormalizeAddress(rest[0]), parseLimit(rest, 1, 5, 20))
	if err != nil {
		return reply{text: msgUpstreamUnavailable}
	}
	if len(buyers) == 0 {
		return reply{text: msgNoData}
	}
	return reply{text: formatFirstBuyers(rest[0], buyers)}
}

func (b *Bot) cmdTopHolders(ctx context.Context, user *models.User, args []string) reply {
	chainTag, rest := splitChain(args)
	if len(rest) == 0 {
		return b.askForAddress(ctx, user, "th", chainTag, session.AwaitTokenAddress, "Send me the token contract address to list its top holders.")
	}
	if !chain.IsValidAddress(rest[0]) {
		return reply{text: msgInvalidAddress}
	}
	if upsell, ok := b.gate(user, models.TokenScan); !ok {
		return reply{text: upsell}
	}

	holders, err := b.analytics.GetTokenHolders(ctx, chainTag, database.NormalizeAddress(rest[0]), parseLimit(rest, 1, 10, 25))
	if err != nil {
		return reply{text: msgUpstreamUnavailable}
	}
	if len(holders) == 0 {
		return reply{text: msgNoData}
	}
	return reply{text: formatHolders(rest[0], holders)}
}

func (b *Bot) cmdATH(ctx context.Context, user *models.User, args []string) reply {
	chainTag, rest := splitChain(args)
	if len(rest) == 0 {
		return b.askForAddress(ctx, user, "ath", chainTag, session.AwaitTokenAddress, "Send me the token contract address.")
	}
	if !chain.IsValidAddress(rest[0]) {
		return reply{text: msgInvalidAddress}
	}
	if upsell, ok := b.gate(user, models.TokenScan); !ok {
		return reply{text: upsell}
	}

	ath, err := b.analytics.GetMarketCapATH(ctx, chainTag, database.NormalizeAddress(rest[0]))
	if err != nil {
		return reply{text: msgUpstreamUnavailable}
	}
	if ath.ATHMarketCap == 0 {
		return reply{text: msgNoData}
	}
	return reply{text: formatATH(rest[0], ath)}
}

func (b *Bot) cmdProfitableWallets(ctx context.Context, user *models.User, args []string) reply {
	chainTag, rest := splitChain(args)
	if len(rest) == 0 {
		return b.askForAddress(ctx, user, "pw", chainTag, session.AwaitTokenAddress, "Send me the token contract address to find its profitable wallets.")
	}
	if !chain.IsValidAddress(rest[0]) {
		return reply{text: msgInvalidAddress}
	}
	if upsell, ok := b.gate(user, models.TokenScan); !ok {
		return reply{text: upsell}
	}

	wallets, err := b.analytics.GetTokenProfitableWallets(ctx, chainTag, database.NormalizeAddress(rest[0]), parseLimit(rest, 1, 10, 25))
	if err != nil {
		return reply{text: msgUpstreamUnavailable}
	}
	if len(wallets) == 0 {
		return reply{text: msgNoData}
	}
	return reply{text: formatProfitableWallets("Profitable wallets of "+shortAddr(rest[0]), wallets)}
}

func (b *Bot) cmdDeployerProjects(ctx context.Context, user *models.User, args []string) reply {
	chainTag, rest := splitChain(args)
	if len(rest) == 0 {
		return b.askForAddress(ctx, user, "dp", chainTag, session.AwaitTokenAddress, "Send me the token contract address to inspect its deployer.")
	}
	if !chain.IsValidAddress(rest[0]) {
		return reply{text: msgInvalidAddress}
	}
	if upsell, ok := b.gate(user, models.TokenScan); !ok {
		return reply{text: upsell}
	}

	projects, err := b.analytics.GetTokenDeployerProjects(ctx, chainTag, database.NormalizeAddress(rest[0]))
	if err != nil {
		return reply{text: msgUpstreamUnavailable}
	}
	if len(projects) == 0 {
		return reply{text: msgNoData}
	}
	return reply{text: formatDeployerProjects(rest[0], projects)}
}

// --- wallet scans ---

func (b *Bot) cmdWalletStats(ctx context.Context, user *models.User, args []string) reply {
	chainTag, rest := splitChain(args)
	if len(rest) == 0 {
		return b.askForAddress(ctx, user, "ws", chainTag, session.AwaitWalletAddress, "Send me the wallet address.")
	}
	if !chain.IsValidAddress(rest[0]) {
		return reply{text: msgInvalidAddress}
	}
	if upsell, ok := b.gate(user, models.WalletScan); !ok {
		return reply{text: upsell}
	}

	stats, err := b.analytics.GetWalletStats(ctx, chainTag, database.NormalizeAddress(rest[0]))
	if err != nil {
		return reply{text: msgUpstreamUnavailable}
	}
	if stats.TokensTraded == 0 && stats.PnlUsd == 0 {
		return reply{text: msgNoData}
	}

	b.db.SaveWalletSnapshot(&models.WalletSnapshot{
		Chain:   chainTag,
		Address: rest[0],
		WinRate: stats.WinRate,
		PnlUsd:  stats.PnlUsd,
	})

	return reply{text: formatWalletStats(rest[0], stats)}
}

func (b *Bot) cmdHoldingTime(ctx context.Context, user *models.User, args []string) reply {
	chainTag, rest := splitChain(args)
	if len(rest) == 0 {
		return b.askForAddress(ctx, user, "ht", chainTag, session.AwaitWalletAddress, "Send me the wallet address.")
	}
	if !chain.IsValidAddress(rest[0]) {
		return reply{text: msgInvalidAddress}
	}
	if upsell, ok := b.gate(user, models.WalletScan); !ok {
		return reply{text: upsell}
	}

	holding, err := b.analytics.GetWalletHoldingTime(ctx, chainTag, database.NormalizeAddress(rest[0]))
	if err != nil {
		return reply{text: msgUpstreamUnavailable}
	}
	if holding.AvgHoldMinutes == 0 {
		return reply{text: msgNoData}
	}
	return reply{text: formatHoldingTime(rest[0], holding)}
}

func (b *Bot) cmdDeployedTokens(ctx context.Context, user *models.User, args []string) reply {
	chainTag, rest := splitChain(args)
	if len(rest) == 0 {
		return b.askForAddress(ctx, user, "dt", chainTag, session.AwaitWalletAddress, "Send me the deployer wallet address.")
	}
	if !chain.IsValidAddress(rest[0]) {
		return reply{text: msgInvalidAddress}
	}
	if upsell, ok := b.gate(user, models.WalletScan); !ok {
		return reply{text: upsell}
	}

	tokens, err := b.analytics.GetWalletDeployedTokens(ctx, chainTag, database.NormalizeAddress(rest[0]))
	if err != nil {
		return reply{text: msgUpstreamUnavailable}
	}
	if len(tokens) == 0 {
		return reply{text: msgNoData}
	}
	return reply{text: formatDeployedTokens(rest[0], tokens)}
}

// --- leaderboards ---

// cmdKOL serves the curated list and lazily seeds it from the analytics API
// the first time.
func (b *Bot) cmdKOL(ctx context.Context, user *models.User, args []string) reply {
	wallets := b.db.GetKOLWallets()
	if len(wallets) == 0 {
		chainTag, _ := splitChain(args)
		fetched, err := b.analytics.GetKOLWallets(ctx, chainTag)
		if err != nil {
			return reply{text: msgUpstreamUnavailable}
		}
		for _, kol := range fetched {
			wallet := &models.KOLWallet{
				Address:     kol.Address,
				Name:        kol.Name,
				Description: kol.Description,
				Twitter:     kol.Twitter,
				Telegram:    kol.Telegram,
			}
			if saveErr := b.db.SaveKOLWallet(wallet); saveErr == nil {
				wallets = append(wallets, wallet)
			}
		}
	}
	if len(wallets) == 0 {
		return reply{text: "The KOL list is empty right now."}
	}
	return reply{text: formatKOLList(wallets)}
}

func (b *Bot) cmdHighActivity(ctx context.Context, user *models.User, args []string) reply {
	if msg, ok := b.premiumOnly(user); !ok {
		return reply{text: msg}
	}
	chainTag, rest := splitChain(args)

	wallets, err := b.analytics.GetHighActivityWallets(ctx, chainTag, parseLimit(rest, 0, 10, 25))
	if err != nil {
		return reply{text: msgUpstreamUnavailable}
	}
	if len(wallets) == 0 {
		return reply{text: msgNoData}
	}
	return reply{text: formatActiveWallets(chainTag, wallets)}
}

func (b *Bot) cmdProfitableDeployers(ctx context.Context, user *models.User, args []string) reply {
	if msg, ok := b.premiumOnly(user); !ok {
		return reply{text: msg}
	}
	chainTag, rest := splitChain(args)

	deployers, err := b.analytics.GetProfitableDeployers(ctx, chainTag, parseLimit(rest, 0, 10, 25))
	if err != nil {
		return reply{text: msgUpstreamUnavailable}
	}
	if len(deployers) == 0 {
		return reply{text: msgNoData}
	}
	return reply{text: formatProfitableWallets("Profitable deployers on "+chainTag, deployers)}
}

func (b *Bot) cmdProfitableDefi(ctx context.Context, user *models.User, args []string) reply {
	if msg, ok := b.premiumOnly(user); !ok {
		return reply{text: msg}
	}
	chainTag, rest := splitChain(args)

	wallets, err := b.analytics.GetProfitableDefiWallets(ctx, chainTag, parseLimit(rest, 0, 10, 25))
	if err != nil {
		return reply{text: msgUpstreamUnavailable}
	}
	if len(wallets) == 0 {
		return reply{text: msgNoData}
	}
	return reply{text: formatProfitableWallets("Profitable DeFi wallets on "+chainTag, wallets)}
}

// --- account ---

func (b *Bot) cmdStatus(user *models.User) reply {
	day := database.DayKey(time.Now())
	tokenScans := b.db.GetScanCount(user.TelegramID, models.TokenScan, day)
	walletScans := b.db.GetScanCount(user.TelegramID, models.WalletScan, day)
	subs := b.db.GetActiveSubscriptionsForUser(user.TelegramID)

	return reply{text: formatStatus(user, tokenScans, b.limits.TokenScansPerDay, walletScans, b.limits.WalletScansPerDay, len(subs))}
}

// cmdAddKOL is the admin entry for curating the KOL list:
// /addkol <address> <name> [description…]
func (b *Bot) cmdAddKOL(user *models.User, args []string) reply {
	if !b.isAdmin(user) {
		return reply{text: msgUnknownCommand}
	}
	if len(args) < 2 {
		return reply{text: "Usage: /addkol <address> <name> [description]"}
	}
	if !chain.IsValidAddress(args[0]) {
		return reply{text: msgInvalidAddress}
	}

	wallet := &models.KOLWallet{
		Address:     args[0],
		Name:        args[1],
		Description: strings.Join(args[2:], " "),
	}
	if err := b.db.SaveKOLWallet(wallet); err != nil {
		return reply{text: "Could not save the KOL wallet, see logs."}
	}
	return reply{text: "Added " + wallet.Name + " (" + shortAddr(wallet.Address) + ") to the KOL list."}
}
