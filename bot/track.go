package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"token-sentry/chain"
	"token-sentry/database"
	"token-sentry/database/models"
)

var trackTypes = map[string]string{
	"wallet":  models.TrackWalletTrades,
	"deploys": models.TrackTokenDeployments,
	"token":   models.TrackTokenProfitableWallets,
}

var trackTypeNames = map[string]string{
	models.TrackWalletTrades:           "wallet trades",
	models.TrackTokenDeployments:       "new deployments",
	models.TrackTokenProfitableWallets: "profitable wallet moves",
}

const trackUsage = `Usage:
/track wallet &lt;address&gt; — alert on every trade of a wallet
/track deploys &lt;address&gt; — alert when a deployer ships a new contract
/track token &lt;address&gt; — alert when profitable wallets move a token`

func (b *Bot) cmdTrack(ctx context.Context, user *models.User, args []string) reply {
	chainTag, rest := splitChain(args)
	if len(rest) < 2 {
		return reply{text: trackUsage}
	}

	subType, ok := trackTypes[strings.ToLower(rest[0])]
	if !ok {
		return reply{text: trackUsage}
	}
	if !chain.IsValidAddress(rest[1]) {
		return reply{text: msgInvalidAddress}
	}

	address := database.NormalizeAddress(rest[1])
	if existing := b.db.GetSubscription(user.TelegramID, subType, address); existing != nil && existing.Active {
		return reply{text: "You are already tracking <b>" + trackTypeNames[subType] + "</b> for <code>" + shortAddr(address) + "</code>."}
	}
	metadata := ""

	if subType == models.TrackTokenProfitableWallets {
		if !b.chains.IsValidTokenContract(ctx, chainTag, address) {
			return reply{text: "Could not confirm this address is a token contract on " + chainTag + ". Check the address and the chain tag."}
		}
		// best effort, only used to label alerts nicely
		if meta, err := b.analytics.GetTokenMetadata(ctx, chainTag, address); err == nil && meta.Symbol != "" {
			metadata = meta.Symbol
		}
	}

	sub := &models.Subscription{
		TelegramID: user.TelegramID,
		Type:       subType,
		Address:    address,
		Chain:      chainTag,
		Active:     true,
		Metadata:   metadata,
	}
	if err := b.db.SaveSubscription(sub); err != nil {
		b.logger.Errorf("Save subscription for [%d] error: %s", user.TelegramID, err.Error())
		return reply{text: "Could not save the subscription, please try again."}
	}

	return reply{text: "✅ Tracking <b>" + trackTypeNames[subType] + "</b> for <code>" + shortAddr(address) + "</code> on " + chainTag + ". I'll message you when something happens. Manage with /subs."}
}

func (b *Bot) cmdUntrack(ctx context.Context, user *models.User, args []string) reply {
	_, rest := splitChain(args)

	if len(rest) >= 2 {
		subType, ok := trackTypes[strings.ToLower(rest[0])]
		if !ok {
			return reply{text: trackUsage}
		}
		if b.db.DeactivateSubscription(user.TelegramID, subType, database.NormalizeAddress(rest[1])) {
			return reply{text: "Stopped tracking <code>" + shortAddr(rest[1]) + "</code>."}
		}
		return reply{text: "No matching active subscription found. /subs lists what you track."}
	}

	subs := b.db.GetActiveSubscriptionsForUser(user.TelegramID)
	if len(subs) == 0 {
		return reply{text: "You are not tracking anything. Start with /track."}
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(subs))
	for _, sub := range subs {
		label := trackTypeNames[sub.Type] + " " + shortAddr(sub.Address)
		data := "untrack:" + sub.Type + ":" + sub.Address
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(label, data)))
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)

	return reply{text: "Pick a subscription to stop:", markup: &markup}
}

func (b *Bot) cmdSubs(user *models.User) reply {
	subs := b.db.GetActiveSubscriptionsForUser(user.TelegramID)
	if len(subs) == 0 {
		return reply{text: "You are not tracking anything. Start with /track."}
	}
	return reply{text: formatSubscriptions(subs)}
}
