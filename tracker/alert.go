package tracker

import (
	"fmt"

	"token-sentry/common"
	"token-sentry/net"
)

// Alert texts are HTML-mode Telegram messages. Symbols come straight from
// the indexer; absent ones render as the token address instead.

func tokenLabel(tx *net.Transaction) string {
	if tx.TokenSymbol != "" {
		return common.EscapeHTML(tx.TokenSymbol)
	}
	if tx.TokenAddress != "" {
		return common.TruncateAddress(tx.TokenAddress)
	}
	return "unknown token"
}

func formatWalletTradeAlert(wallet string, tx *net.Transaction) string {
	return fmt.Sprintf(
		"🔔 <b>Wallet activity</b>\n"+
			"Wallet <code>%s</code> traded <b>%s</b>\n"+
			"Value: $%s\n"+
			"Tx: <code>%s</code>",
		common.TruncateAddress(wallet), tokenLabel(tx),
		common.FormatWithUnits(tx.ValueUsd), tx.Hash)
}

func formatDeploymentAlert(deployer string, tx *net.Transaction) string {
	return fmt.Sprintf(
		"🚀 <b>New deployment</b>\n"+
			"Deployer <code>%s</code> created a new contract\n"+
			"Tx: <code>%s</code>",
		common.TruncateAddress(deployer), tx.Hash)
}

func formatProfitableWalletAlert(wallet *net.ProfitableWallet, tx *net.Transaction) string {
	return fmt.Sprintf(
		"💰 <b>Profitable wallet activity</b>\n"+
			"Wallet <code>%s</code> (win rate %s) traded <b>%s</b>\n"+
			"Value: $%s\n"+
			"Tx: <code>%s</code>",
		common.TruncateAddress(wallet.Address), common.FormatPercentWithSign(wallet.WinRate),
		tokenLabel(tx), common.FormatWithUnits(tx.ValueUsd), tx.Hash)
}
