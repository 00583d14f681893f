package bot

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"token-sentry/common"
	"token-sentry/database/models"
	"token-sentry/net"
)

// Formatters build HTML-mode Telegram messages. Addresses render truncated
// inside <code> tags, amounts go through the shared unit formatter.

func shortAddr(addr string) string {
	return common.TruncateAddress(addr)
}

func codeAddr(addr string) string {
	return "<code>" + common.TruncateAddress(addr) + "</code>"
}

func usd(n float64) string {
	return "$" + common.FormatWithUnits(n)
}

func ago(ts int64) string {
	if ts == 0 {
		return "unknown"
	}
	return humanize.Time(time.Unix(ts, 0))
}

// weiToEth renders a decimal wei string as ETH with up to 4 decimals.
func weiToEth(priceWei string) string {
	wei, ok := new(big.Int).SetString(priceWei, 10)
	if !ok {
		return "?"
	}
	return weiToEthBig(wei)
}

func weiToEthBig(wei *big.Int) string {
	eth := new(big.Rat).SetFrac(wei, big.NewInt(1e18))
	out := eth.FloatString(4)
	out = strings.TrimRight(out, "0")
	return strings.TrimSuffix(out, ".")
}

func formatTokenInfo(chainTag string, meta *net.TokenMetadata) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🪙 <b>%s</b> (%s) on %s\n", common.EscapeHTML(meta.Name), common.EscapeHTML(meta.Symbol), chainTag)
	fmt.Fprintf(&sb, "Contract: <code>%s</code>\n", meta.Address)
	if meta.PriceUsd > 0 {
		fmt.Fprintf(&sb, "Price: $%.6f\n", meta.PriceUsd)
	}
	if meta.MarketCap > 0 {
		fmt.Fprintf(&sb, "Market cap: %s\n", usd(meta.MarketCap))
	}
	if meta.Deployer != "" {
		fmt.Fprintf(&sb, "Deployer: %s\n", codeAddr(meta.Deployer))
	}
	if meta.LaunchedAt > 0 {
		fmt.Fprintf(&sb, "Launched: %s\n", ago(meta.LaunchedAt))
	}
	sb.WriteString("\nMore: /fb /th /ath /pw /dp")
	return sb.String()
}

// formatTokenSnapshot renders the cached copy when the analytics API is down.
func formatTokenSnapshot(chainTag string, snap *models.TokenSnapshot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🪙 <b>%s</b> (%s) on %s\n", common.EscapeHTML(snap.Name), common.EscapeHTML(snap.Symbol), chainTag)
	fmt.Fprintf(&sb, "Contract: <code>%s</code>\n", snap.Address)
	if snap.MarketCap > 0 {
		fmt.Fprintf(&sb, "Market cap: %s\n", usd(snap.MarketCap))
	}
	if snap.Deployer != "" {
		fmt.Fprintf(&sb, "Deployer: %s\n", codeAddr(snap.Deployer))
	}
	fmt.Fprintf(&sb, "\n⚠️ Live data is unavailable right now; this is a cached view from %s.", humanize.Time(snap.UpdatedAt))
	return sb.String()
}

func formatFirstBuyers(token string, buyers []*net.FirstBuyer) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🏁 <b>First buyers</b> of %s\n\n", codeAddr(token))
	for i, buyer := range buyers {
		holding := "sold"
		if buyer.StillHolding {
			holding = "holding"
		}
		fmt.Fprintf(&sb, "%d. %s — bought %s %s, PnL %s, %s\n",
			i+1, codeAddr(buyer.Address), usd(buyer.AmountUsd), ago(buyer.BoughtAt), usd(buyer.PnlUsd), holding)
	}
	return sb.String()
}

func formatHolders(token string, holders []*net.TokenHolder) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 <b>Top holders</b> of %s\n\n", codeAddr(token))
	for i, holder := range holders {
		tag := ""
		if holder.IsContract {
			tag = " (contract)"
		}
		fmt.Fprintf(&sb, "%d. %s — %.2f%%%s\n", i+1, codeAddr(holder.Address), holder.Share, tag)
	}
	return sb.String()
}

func formatATH(token string, ath *net.MarketCapATH) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📈 <b>All-time-high</b> for %s\n\n", codeAddr(token))
	fmt.Fprintf(&sb, "ATH market cap: %s", usd(ath.ATHMarketCap))
	if ath.ATHDate != "" {
		fmt.Fprintf(&sb, " (%s)", ath.ATHDate)
	}
	sb.WriteString("\n")
	if ath.MarketCap > 0 {
		drawdown := (ath.MarketCap/ath.ATHMarketCap - 1) * 100
		fmt.Fprintf(&sb, "Current: %s (%s from ATH)\n", usd(ath.MarketCap), common.FormatPercentWithSign(drawdown))
	}
	return sb.String()
}

func formatProfitableWallets(title string, wallets []*net.ProfitableWallet) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "💰 <b>%s</b>\n\n", common.EscapeHTML(title))
	for i, wallet := range wallets {
		fmt.Fprintf(&sb, "%d. %s — win rate %.1f%%, profit %s over %d trades\n",
			i+1, codeAddr(wallet.Address), wallet.WinRate, usd(wallet.RealizedProfitUsd), wallet.Trades)
	}
	return sb.String()
}

func formatDeployerProjects(token string, projects []*net.DeployerProject) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🏗 <b>Deployer history</b> for %s\n\n", codeAddr(token))
	for i, project := range projects {
		status := "ATH " + usd(project.ATHMarketCap)
		if project.Rugged {
			status = "⚠️ rugged"
		}
		fmt.Fprintf(&sb, "%d. %s (%s) — launched %s, %s\n",
			i+1, common.EscapeHTML(project.Name), common.EscapeHTML(project.Symbol), ago(project.LaunchedAt), status)
	}
	return sb.String()
}

func formatWalletStats(wallet string, stats *net.WalletStats) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "👛 <b>Wallet stats</b> for %s\n\n", codeAddr(wallet))
	fmt.Fprintf(&sb, "Win rate: %.1f%%\n", stats.WinRate)
	fmt.Fprintf(&sb, "PnL: %s\n", usd(stats.PnlUsd))
	fmt.Fprintf(&sb, "Tokens traded: %d\n", stats.TokensTraded)
	if stats.AvgHoldMinutes > 0 {
		fmt.Fprintf(&sb, "Avg hold: %s\n", formatMinutes(stats.AvgHoldMinutes))
	}
	if stats.BalanceUsd > 0 {
		fmt.Fprintf(&sb, "Balance: %s\n", usd(stats.BalanceUsd))
	}
	return sb.String()
}

func formatHoldingTime(wallet string, holding *net.HoldingTime) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "⏱ <b>Holding profile</b> for %s\n\n", codeAddr(wallet))
	fmt.Fprintf(&sb, "Average hold: %s\n", formatMinutes(holding.AvgHoldMinutes))
	fmt.Fprintf(&sb, "Diamond hands: %.1f%% of positions\n", holding.Diamond)
	fmt.Fprintf(&sb, "Flipped under an hour: %.1f%%\n", holding.Flipper)
	return sb.String()
}

func formatDeployedTokens(wallet string, tokens []*net.DeployedToken) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🧱 <b>Tokens deployed</b> by %s\n\n", codeAddr(wallet))
	for i, token := range tokens {
		fmt.Fprintf(&sb, "%d. %s (%s) — launched %s, mcap %s\n",
			i+1, common.EscapeHTML(token.Name), common.EscapeHTML(token.Symbol), ago(token.LaunchedAt), usd(token.MarketCap))
	}
	return sb.String()
}

func formatActiveWallets(chainTag string, wallets []*net.ActiveWallet) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "⚡️ <b>High-activity wallets</b> on %s\n\n", chainTag)
	for i, wallet := range wallets {
		fmt.Fprintf(&sb, "%d. %s — %d txs, win rate %.1f%%, PnL %s, seen %s\n",
			i+1, codeAddr(wallet.Address), wallet.TxCount, wallet.WinRate, usd(wallet.PnlUsd), ago(wallet.LastSeen))
	}
	return sb.String()
}

func formatKOLList(wallets []*models.KOLWallet) string {
	var sb strings.Builder
	sb.WriteString("🌟 <b>KOL wallets</b>\n\n")
	for _, wallet := range wallets {
		fmt.Fprintf(&sb, "• <b>%s</b> %s", common.EscapeHTML(wallet.Name), codeAddr(wallet.Address))
		if wallet.Twitter != "" {
			fmt.Fprintf(&sb, " — @%s", common.EscapeHTML(wallet.Twitter))
		}
		sb.WriteString("\n")
		if wallet.Description != "" {
			fmt.Fprintf(&sb, "  %s\n", common.EscapeHTML(wallet.Description))
		}
	}
	sb.WriteString("\nTrack one with /track wallet &lt;address&gt;.")
	return sb.String()
}

func formatSubscriptions(subs []*models.Subscription) string {
	var sb strings.Builder
	sb.WriteString("📡 <b>Your subscriptions</b>\n\n")
	for i, sub := range subs {
		label := trackTypeNames[sub.Type]
		if sub.Metadata != "" {
			label += " (" + common.EscapeHTML(sub.Metadata) + ")"
		}
		fmt.Fprintf(&sb, "%d. %s — %s on %s\n", i+1, label, codeAddr(sub.Address), sub.Chain)
	}
	sb.WriteString("\nStop one with /untrack.")
	return sb.String()
}

func formatStatus(user *models.User, tokenScans, tokenLimit, walletScans, walletLimit, subCount int) string {
	var sb strings.Builder
	sb.WriteString("👤 <b>Your account</b>\n\n")
	if user.IsPremium {
		fmt.Fprintf(&sb, "Plan: 💎 premium until %s\n", user.PremiumUntil.UTC().Format("2006-01-02"))
		sb.WriteString("Scans: unlimited\n")
	} else {
		sb.WriteString("Plan: free\n")
		fmt.Fprintf(&sb, "Token scans today: %d/%d\n", tokenScans, tokenLimit)
		fmt.Fprintf(&sb, "Wallet scans today: %d/%d\n", walletScans, walletLimit)
	}
	fmt.Fprintf(&sb, "Active subscriptions: %d\n", subCount)
	if !user.IsPremium {
		sb.WriteString("\n/premium removes the daily limits.")
	}
	return sb.String()
}

func formatMinutes(minutes float64) string {
	switch {
	case minutes >= 60*24:
		return fmt.Sprintf("%.1f days", minutes/(60*24))
	case minutes >= 60:
		return fmt.Sprintf("%.1f hours", minutes/60)
	default:
		return fmt.Sprintf("%.0f minutes", minutes)
	}
}
