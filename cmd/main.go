package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	solaris "github.com/trevor-gituru/solaris-conexus"
	"github.com/trevor-gituru/solaris-conexus/app"
	"github.com/trevor-gituru/solaris-conexus/bot"
	"github.com/trevor-gituru/solaris-conexus/chain"
	"github.com/trevor-gituru/solaris-conexus/config"
	"github.com/trevor-gituru/solaris-conexus/db"
	"github.com/trevor-gituru/solaris-conexus/gateway"
	"github.com/trevor-gituru/solaris-conexus/power"
	"github.com/trevor-gituru/solaris-conexus/settle"
	"github.com/trevor-gituru/solaris-conexus/wallet"
)

func main() {

	conf, err := config.NewConfig()
	if err != nil {
		panic(err)
	}

	level, err := conf.LogLevel()
	if err != nil {
		panic(err)
	}
	zerolog.SetGlobalLevel(level)

	godotenv.Load()

	ch := make(chan string)

	// The bot token sits encrypted in the config; without the key the
	// dashboard runs alert-less.
	var teleBot *bot.TeleBot
	if key := os.Getenv("CRYPT_KEY"); key != "" {
		if err := conf.InitTelegram(key); err != nil {
			panic(err)
		}
		botConf, err := conf.BotConfig()
		if err != nil {
			panic(err)
		}
		teleBot, err = bot.NewTeleBot(botConf)
		if err != nil {
			panic(err)
		}
	} else {
		log.Warn().Msg("CRYPT_KEY not set, telegram alerts disabled")
	}

	stg, err := db.NewStorage(conf.Dsn())
	if err != nil {
		panic(err)
	}

	provider, err := chain.NewProvider(conf.Chain.ProviderUrl)
	if err != nil {
		panic(err)
	}

	connector := wallet.NewConnector(wallet.ConnectorConfig{
		RequiredWalletID: conf.Wallet.Id,
		ChainEndpoint:    conf.Chain.ProviderUrl,
		WatchedAsset:     conf.Chain.SctAddress,
	}, wallet.NewBridgeProvider(conf.Wallet.Id, conf.Wallet.BridgeUrl))

	gw := gateway.NewClient(conf.Api.BaseUrl)

	var alert settle.Alerter
	if teleBot != nil {
		alert = teleBot
	}
	orch := settle.New(settle.Config{
		Wallets: connector,
		Chain:   provider,
		Backend: gw,
		Journal: stg,
		Alert:   alert,
		Sct:     conf.SctToken(),
		Strk:    conf.StrkToken(),
	})

	feed := power.NewFeed(conf.Power.StreamUrl)
	sessions := gateway.NewSessionRegistry()

	dashboard := solaris.NewDashboard(solaris.DashboardConfig{
		Storage:   stg,
		Feed:      feed,
		Sessions:  sessions,
		Purchases: gw,
		Channel:   ch,
	})
	dashboard.Run()

	go func() {
		app.Run(conf.App.Port, conf.App.JwtKey, conf.App.Passkey, sessions, stg, gw, orch, feed, conf.StrkToken())
	}()

	if teleBot != nil {
		teleBot.Run(ch, stg)
	} else {
		for msg := range ch {
			log.Info().Msg(msg)
		}
	}
}
