package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

type BotConfig struct {
	Token      string   `toml:"token"`
	AdminUsers []string `toml:"admin_users"`
}

type NetConfig struct {
	AnalyticsURL      string  `toml:"analytics_url"`
	ExplorerURL       string  `toml:"explorer_url"`
	ExplorerAPIKey    string  `toml:"explorer_api_key"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

type RPCConfig struct {
	Eth  string `toml:"eth"`
	Base string `toml:"base"`
	Bsc  string `toml:"bsc"`
}

type LogConfig struct {
	Path  string `toml:"log_path"`
	File  string `toml:"log_file"`
	Level string `toml:"log_level"`
}

type DBConfig struct {
	Host     string `toml:"host"`
	DB       string `toml:"db"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type RedisConfig struct {
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Password string `toml:"password"`
}

type LimitsConfig struct {
	TokenScansPerDay  int `toml:"token_scans_per_day"`
	WalletScansPerDay int `toml:"wallet_scans_per_day"`
}

type PremiumPlan struct {
	Days     int    `toml:"days"`
	PriceWei string `toml:"price_wei"`
}

type PremiumConfig struct {
	Wallet string        `toml:"wallet"`
	Chain  string        `toml:"chain"`
	Plans  []PremiumPlan `toml:"plans"`
}

type ServerConfig struct {
	HttpPort int `toml:"http_port"`
}

type Config struct {
	Bot     BotConfig     `toml:"bot"`
	Net     NetConfig     `toml:"net"`
	RPC     RPCConfig     `toml:"rpc"`
	Log     LogConfig     `toml:"log"`
	DB      DBConfig      `toml:"database"`
	Redis   RedisConfig   `toml:"redis"`
	Limits  LimitsConfig  `toml:"limits"`
	Premium PremiumConfig `toml:"premium"`
	Server  ServerConfig  `toml:"server"`
}

func LoadConfig(path string) *Config {
	var config Config
	data, err := toml.DecodeFile(path, &config)
	if err != nil {
		fmt.Println(data, err)
	}

	if config.Net.RequestsPerSecond == 0 {
		config.Net.RequestsPerSecond = 5
	}
	if config.Limits.TokenScansPerDay == 0 {
		config.Limits.TokenScansPerDay = 3
	}
	if config.Limits.WalletScansPerDay == 0 {
		config.Limits.WalletScansPerDay = 3
	}

	return &config
}
