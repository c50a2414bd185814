package main

import (
	"context"
	"flag"
	"log/slog"

	"AutoLead/ai/nlu"
	"AutoLead/bot"
	"AutoLead/bot/chat"
	"AutoLead/bot/whatsapp"
	"AutoLead/internal/config"
	repository "AutoLead/internal/database"
	"AutoLead/internal/http-server/api"
	"AutoLead/internal/lib/logger"
	"AutoLead/internal/lib/sl"
	"AutoLead/internal/service/courier"
	"AutoLead/internal/service/notify"
	"AutoLead/internal/session"
	"AutoLead/internal/ws"
)

func main() {

	configPath := flag.String("conf", "config.yml", "path to config file")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	lg := logger.SetupLogger(conf.Env)

	lg.Info("starting autolead", slog.String("config", *configPath), slog.String("env", conf.Env))
	lg.Debug("debug messages enabled")

	ctx := context.Background()

	db, err := repository.NewMongoClient(conf, lg)
	if err != nil {
		lg.With(
			sl.Err(err),
		).Error("mongo client")
	}
	if db == nil {
		lg.Error("mongo is required, enable it in the config")
		return
	}
	lg.With(
		slog.String("host", conf.Mongo.Host),
		slog.String("port", conf.Mongo.Port),
		slog.String("user", conf.Mongo.User),
		slog.String("database", conf.Mongo.Database),
	).Info("mongo client initialized")

	sessions, err := session.NewRedisStore(ctx, conf)
	if err != nil {
		lg.With(sl.Err(err)).Error("redis client")
		return
	}
	lg.With(
		slog.String("addr", conf.Redis.Addr),
	).Info("redis session store initialized")

	extractor := nlu.NewClient(conf, lg)

	engine := chat.NewEngine(sessions, db, extractor, lg)

	hub := ws.NewHub(lg.With(sl.Module("ws")))
	go hub.Run()
	engine.SetTranscriptListener(hub)

	// Telegram bot, also the delivery path for owner notifications.
	var tgBot *bot.TgBot
	if conf.Telegram.Enabled {
		tgBot, err = bot.NewTgBot(conf.Telegram.BotName, conf.Telegram.ApiKey, engine, db, lg)
		if err != nil {
			lg.Error("failed to initialize telegram bot", sl.Err(err))
		} else {
			lg.With(
				slog.String("bot_name", conf.Telegram.BotName),
			).Info("telegram bot initialized")

			go func() {
				if err := tgBot.Start(); err != nil {
					lg.Error("telegram bot error", sl.Err(err))
				}
			}()
		}
	}

	if tgBot != nil {
		engine.SetNotifier(notify.New(tgBot, db, lg))
	}

	var waBot *whatsapp.WhatsAppBot
	if conf.WhatsApp.Enabled {
		waBot = whatsapp.NewWhatsAppBot(
			conf.WhatsApp.AccessToken,
			conf.WhatsApp.VerifyToken,
			conf.WhatsApp.AppSecret,
			conf.WhatsApp.PhoneNumberID,
			engine, db, lg,
		)
		lg.With(
			slog.String("phone_number_id", conf.WhatsApp.PhoneNumberID),
		).Info("whatsapp bot initialized")
	}

	var tgSender courier.TelegramSender
	if tgBot != nil {
		tgSender = tgBot
	}
	var waSender courier.WhatsAppSender
	if waBot != nil {
		waSender = waBot
	}

	// *** blocking start with http server ***
	err = api.New(conf, lg, api.Deps{
		Auth:     db,
		Engine:   engine,
		Repo:     db,
		Courier:  courier.New(tgSender, waSender, lg),
		Hub:      hub,
		WhatsApp: waBot,
	})
	if err != nil {
		lg.Error("server start", sl.Err(err))
		return
	}
	lg.Error("service stopped")
}
