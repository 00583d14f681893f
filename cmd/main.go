package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"token-sentry/api"
	"token-sentry/bot"
	"token-sentry/chain"
	"token-sentry/config"
	"token-sentry/database"
	"token-sentry/log"
	"token-sentry/net"
	"token-sentry/session"
	"token-sentry/tracker"
)

func main() {
	cfg := config.LoadConfig("./config.toml")

	log.Init(&cfg.Log)

	db := database.New(&cfg.DB)

	sessions, err := session.New(&cfg.Redis)
	if err != nil {
		panic(err)
	}

	chains := chain.New(&cfg.RPC)
	analytics := net.NewAnalyticsClient(&cfg.Net)
	explorer := net.NewExplorerClient(&cfg.Net, cfg.Premium.Wallet)

	tgBot := bot.New(cfg, db, analytics, chains, explorer, sessions)
	tgBot.Start()

	trk := tracker.New(db, analytics, tgBot)
	trk.Start()

	apiSrv := api.New(&cfg.Server, db, trk)
	apiSrv.Start()

	c := cron.New(cron.WithSeconds())
	_, _ = c.AddFunc("0 0 */1 * * *", func() {
		db.CleanupExpiredPremium()
	})
	_, _ = c.AddFunc("0 30 0 * * *", func() {
		db.PruneScanCounts(7)
	})
	_, _ = c.AddFunc("0 */10 * * * *", func() {
		trk.Report()
	})
	c.Start()

	watchOSSignal(trk, apiSrv)
}

func watchOSSignal(trk *tracker.Tracker, apiSrv *api.Server) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	<-c

	trk.Stop()
	apiSrv.Stop()
}
