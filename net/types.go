package net

// Typed responses for the analytics API. Every field the formatter reads is
// explicit here; absent fields decode to zero values and are handled at the
// formatting layer, never defaulted to placeholder strings.

type TokenMetadata struct {
	Address    string  `json:"address"`
	Name       string  `json:"name"`
	Symbol     string  `json:"symbol"`
	Decimals   int     `json:"decimals"`
	Deployer   string  `json:"deployer"`
	MarketCap  float64 `json:"market_cap"`
	PriceUsd   float64 `json:"price_usd"`
	LaunchedAt int64   `json:"launched_at"`
}

type MarketCapATH struct {
	Address      string  `json:"address"`
	ATHMarketCap float64 `json:"ath_market_cap"`
	ATHDate      string  `json:"ath_date"`
	MarketCap    float64 `json:"market_cap"`
}

type TokenHolder struct {
	Address    string  `json:"address"`
	Balance    float64 `json:"balance"`
	Share      float64 `json:"share"`
	IsContract bool    `json:"is_contract"`
}

type FirstBuyer struct {
	Address      string  `json:"address"`
	BoughtAt     int64   `json:"bought_at"`
	AmountUsd    float64 `json:"amount_usd"`
	PnlUsd       float64 `json:"pnl_usd"`
	StillHolding bool    `json:"still_holding"`
}

type ProfitableWallet struct {
	Address           string  `json:"address"`
	WinRate           float64 `json:"win_rate"`
	RealizedProfitUsd float64 `json:"realized_profit_usd"`
	Trades            int     `json:"trades"`
}

type DeployerProject struct {
	TokenAddress string  `json:"token_address"`
	Name         string  `json:"name"`
	Symbol       string  `json:"symbol"`
	LaunchedAt   int64   `json:"launched_at"`
	ATHMarketCap float64 `json:"ath_market_cap"`
	Rugged       bool    `json:"rugged"`
}

type WalletStats struct {
	Address        string  `json:"address"`
	WinRate        float64 `json:"win_rate"`
	PnlUsd         float64 `json:"pnl_usd"`
	TokensTraded   int     `json:"tokens_traded"`
	AvgHoldMinutes float64 `json:"avg_hold_minutes"`
	BalanceUsd     float64 `json:"balance_usd"`
}

type HoldingTime struct {
	Address        string  `json:"address"`
	AvgHoldMinutes float64 `json:"avg_hold_minutes"`
	Diamond        float64 `json:"diamond_share"`
	Flipper        float64 `json:"flipper_share"`
}

type DeployedToken struct {
	TokenAddress string  `json:"token_address"`
	Name         string  `json:"name"`
	Symbol       string  `json:"symbol"`
	LaunchedAt   int64   `json:"launched_at"`
	MarketCap    float64 `json:"market_cap"`
}

type KOLWallet struct {
	Address     string `json:"address"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Twitter     string `json:"twitter"`
	Telegram    string `json:"telegram"`
}

type ActiveWallet struct {
	Address  string  `json:"address"`
	TxCount  int     `json:"tx_count"`
	WinRate  float64 `json:"win_rate"`
	PnlUsd   float64 `json:"pnl_usd"`
	LastSeen int64   `json:"last_seen"`
}

// Transaction is the poller feed record. Classification relies on the
// explicit flags set by the indexer, not on local heuristics.
type Transaction struct {
	Hash               string  `json:"hash"`
	From               string  `json:"from"`
	To                 string  `json:"to"`
	TokenAddress       string  `json:"token_address"`
	TokenSymbol        string  `json:"token_symbol"`
	ValueUsd           float64 `json:"value_usd"`
	IsTokenTransfer    bool    `json:"is_token_transfer"`
	IsContractCreation bool    `json:"is_contract_creation"`
	Timestamp          int64   `json:"timestamp"`
}
