package bot

import (
	"context"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"token-sentry/config"
	"token-sentry/database"
	"token-sentry/database/models"
	"token-sentry/net"
	"token-sentry/session"
)

var txHashPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

func (b *Bot) cmdPremium() reply {
	if len(b.premium.Plans) == 0 {
		return reply{text: "Premium plans are not configured right now."}
	}

	var sb strings.Builder
	sb.WriteString("💎 <b>Premium</b>\n")
	sb.WriteString("Unlimited daily scans plus the /ha, /pd and /pdefi analyses.\n\n")
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(b.premium.Plans))
	for _, plan := range b.premium.Plans {
		price := weiToEth(plan.PriceWei)
		sb.WriteString("• " + strconv.Itoa(plan.Days) + " days — " + price + " ETH\n")
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(strconv.Itoa(plan.Days)+" days ("+price+" ETH)", "premium:"+strconv.Itoa(plan.Days))))
	}
	sb.WriteString("\nPick a plan to get the payment instructions.")

	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return reply{text: sb.String(), markup: &markup}
}

// cmdVerify handles "/verify <txhash>". The plan normally comes from the
// pending state set when the user picked one; "/verify <txhash> <days>" works
// without it.
func (b *Bot) cmdVerify(ctx context.Context, user *models.User, args []string) reply {
	if len(args) == 0 {
		return reply{text: "Usage: /verify <transaction hash>"}
	}

	days := 0
	if pending, err := b.sessions.Get(ctx, user.TelegramID); err == nil && pending != nil && pending.Kind == session.AwaitTxHash {
		days = pending.Days
		b.sessions.Clear(ctx, user.TelegramID)
	}
	if days == 0 && len(args) >= 2 {
		days, _ = strconv.Atoi(args[1])
	}
	if days == 0 {
		return reply{text: "Pick a plan with /premium first, then send the transaction hash."}
	}

	return b.verifyPayment(ctx, user, args[0], days)
}

func (b *Bot) verifyPayment(ctx context.Context, user *models.User, txHash string, days int) reply {
	txHash = strings.TrimSpace(txHash)
	if !txHashPattern.MatchString(txHash) {
		return reply{text: "That doesn't look like a transaction hash. Expected 0x followed by 64 hex characters."}
	}

	plan := b.planByDays(days)
	if plan == nil {
		return reply{text: "Unknown plan. Pick one with /premium."}
	}

	expected, ok := new(big.Int).SetString(plan.PriceWei, 10)
	if !ok {
		b.logger.Errorf("Bad price_wei for %d-day plan: %s", plan.Days, plan.PriceWei)
		return reply{text: "Premium plans are misconfigured, please contact support."}
	}

	verdict := b.verifier.VerifyPayment(ctx, txHash, expected)
	if !verdict.Verified {
		return reply{text: paymentFailureMessage(verdict, weiToEth(plan.PriceWei))}
	}

	if err := b.db.SetPremiumStatus(user.TelegramID, true, plan.Days); err != nil {
		b.logger.Errorf("Set premium for [%d] error: %s", user.TelegramID, err.Error())
		return reply{text: "Payment verified but activation failed, please contact support with your transaction hash."}
	}

	b.logger.Infof("User [%d] activated %d-day premium with tx [%s]", user.TelegramID, plan.Days, txHash)
	return reply{text: "🎉 Payment verified! Premium is active for the next " + strconv.Itoa(plan.Days) + " days. Enjoy unlimited scans."}
}

func paymentFailureMessage(verdict net.Verdict, priceEth string) string {
	switch verdict.Reason {
	case net.ReasonNotFound:
		return "I can't find that transaction yet. If you just sent it, wait for a confirmation and /verify again."
	case net.ReasonPending:
		return "The transaction is still pending. Wait for it to confirm and /verify again."
	case net.ReasonWrongRecipient:
		return "That transaction pays a different wallet. Double-check the payment address from /premium."
	case net.ReasonAmountMismatch:
		msg := "The amount doesn't match the plan price of " + priceEth + " ETH."
		if verdict.PaidWei != nil {
			msg += " The transaction paid " + weiToEthBig(verdict.PaidWei) + " ETH."
		}
		return msg
	case net.ReasonFailedOnChain:
		return "That transaction failed on-chain, so no payment went through. Send a new one and /verify again."
	default:
		return "Payment verification failed: " + verdict.Reason
	}
}

func (b *Bot) planByDays(days int) *config.PremiumPlan {
	for i := range b.premium.Plans {
		if b.premium.Plans[i].Days == days {
			return &b.premium.Plans[i]
		}
	}
	return nil
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	// stop the client-side spinner regardless of outcome
	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		b.logger.Warnf("Answer callback error: %s", err.Error())
	}
	if cq.From == nil || cq.Message == nil {
		return
	}

	user := b.db.EnsureUser(cq.From.ID, cq.From.UserName)
	parts := strings.Split(cq.Data, ":")

	switch parts[0] {
	case "premium":
		if len(parts) != 2 {
			return
		}
		days, _ := strconv.Atoi(parts[1])
		plan := b.planByDays(days)
		if plan == nil {
			return
		}

		err := b.sessions.Set(ctx, user.TelegramID, &session.Pending{Kind: session.AwaitTxHash, Days: plan.Days})
		if err != nil {
			b.logger.Warnf("Save pending tx hash for [%d] error: %s", user.TelegramID, err.Error())
		}

		text := "Send <b>" + weiToEth(plan.PriceWei) + " ETH</b> on " + b.premium.Chain + " to:\n" +
			"<code>" + b.premium.Wallet + "</code>\n\n" +
			"Then reply with the transaction hash (or use /verify &lt;hash&gt;). The payment must come within 1% of the exact amount."
		b.sendReply(cq.Message.Chat.ID, 0, reply{text: text})

	case "untrack":
		if len(parts) != 3 {
			return
		}
		if b.db.DeactivateSubscription(user.TelegramID, parts[1], database.NormalizeAddress(parts[2])) {
			b.sendReply(cq.Message.Chat.ID, 0, reply{text: "Stopped tracking <code>" + shortAddr(parts[2]) + "</code>."})
		}
	}
}
