package main

import (
	"net/http"
	"strconv"
	"time"

	configPkg "github.com/KeynihAV/fxbank/pkg/config"
	deliveryPkg "github.com/KeynihAV/fxbank/pkg/fxbank/delivery"
	dialogPkg "github.com/KeynihAV/fxbank/pkg/fxbank/dialog"
	"github.com/KeynihAV/fxbank/pkg/fxbank/kvstore"
	ordersRepoPkg "github.com/KeynihAV/fxbank/pkg/fxbank/order/repo"
	ordersUsecasePkg "github.com/KeynihAV/fxbank/pkg/fxbank/order/usecase"
	rolePkg "github.com/KeynihAV/fxbank/pkg/fxbank/role"
	sessionsRepoPkg "github.com/KeynihAV/fxbank/pkg/fxbank/session/repo"
	watchdogPkg "github.com/KeynihAV/fxbank/pkg/fxbank/watchdog"
	"github.com/KeynihAV/fxbank/pkg/logging"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"go.uber.org/zap"
)

var appName = "fxbankbot"

func main() {
	logger := logging.New()
	defer logger.Zap.Sync()

	config := &configPkg.Config{}
	err := configPkg.Read(appName, config)
	if err != nil {
		logger.Zap.Fatal("read config",
			zap.String("logger", "main"),
			zap.String("err", err.Error()))
	}

	err = startBot(config, logger)
	if err != nil {
		logger.Zap.Fatal("start fxbank bot",
			zap.String("logger", "main"),
			zap.String("err", err.Error()))
	}
}

func startBot(config *configPkg.Config, logger *logging.Logger) error {
	store := kvstore.New(config.Redis.Addr, logger)

	ordersManager := ordersUsecasePkg.NewOrdersManager(ordersRepoPkg.NewOrdersRepo(store))
	rolesManager := rolePkg.NewRolesManager(store, config.Bot.BankPassword)
	dialogsManager := dialogPkg.NewManager(sessionsRepoPkg.NewSessionsRepo(store), config.Bot.BaseCurrency)

	bot, err := tgbotapi.NewBotAPI(config.Bot.Token)
	if err != nil {
		return err
	}

	mode := deliveryPkg.ModePolling
	if config.Bot.WebhookBase != "" {
		mode = deliveryPkg.ModeWebhook
	}

	logger.Zap.Info("starting fxbank bot",
		zap.String("logger", "main"),
		zap.String("mode", mode),
		zap.Int("port", config.HTTP.Port),
	)

	router := deliveryPkg.NewBotRouter(bot, dialogsManager, ordersManager, rolesManager, logger)
	srv := deliveryPkg.NewWebhookServer(config, mode, logger)

	go listenHTTP(":"+strconv.Itoa(config.HTTP.Port), srv.Router(), logger)

	if mode == deliveryPkg.ModeWebhook {
		desiredURL := config.Bot.WebhookBase + deliveryPkg.WebhookPath(config)
		resp, err := bot.SetWebhook(tgbotapi.NewWebhook(desiredURL))
		if err != nil {
			return err
		}
		if !resp.Ok {
			logger.Zap.Error("set webhook",
				zap.String("logger", "main"),
				zap.Int("code", resp.ErrorCode),
				zap.String("description", resp.Description))
		}

		wd := watchdogPkg.New(bot, desiredURL,
			time.Duration(config.Bot.WatchdogInterval)*time.Second, logger)
		wd.Start()
		defer wd.Stop()

		router.Run(srv.Updates())
		return nil
	}

	// локальный запуск без публичного URL: снимаем вебхук и поллим
	_, err = bot.RemoveWebhook()
	if err != nil {
		logger.Zap.Warn("remove webhook",
			zap.String("logger", "main"),
			zap.String("err", err.Error()))
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 20
	updates, err := bot.GetUpdatesChan(u)
	if err != nil {
		return err
	}

	router.Run(updates)
	return nil
}

func listenHTTP(addr string, handler http.Handler, logger *logging.Logger) {
	err := http.ListenAndServe(addr, handler)
	if err != nil {
		logger.Zap.Fatal("error starting http server",
			zap.String("logger", "main"),
			zap.String("err", err.Error()))
	}
}
