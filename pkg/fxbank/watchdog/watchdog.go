package watchdog

import (
	"fmt"
	"time"

	"github.com/KeynihAV/fxbank/pkg/logging"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"go.uber.org/zap"
)

// WebhookAPI - кусок бот-API, нужный для сверки вебхука.
type WebhookAPI interface {
	GetWebhookInfo() (tgbotapi.WebhookInfo, error)
	SetWebhook(config tgbotapi.WebhookConfig) (tgbotapi.APIResponse, error)
}

// Watchdog раз в интервал сверяет зарегистрированный у телеграма URL
// вебхука с желаемым и перерегистрирует при расхождении. Ошибки тика
// только логируются, следующий тик попробует снова.
type Watchdog struct {
	api        WebhookAPI
	desiredURL string
	interval   time.Duration
	logger     *logging.Logger
	stop       chan struct{}
	done       chan struct{}
}

func New(api WebhookAPI, desiredURL string, interval time.Duration, logger *logging.Logger) *Watchdog {
	return &Watchdog{
		api:        api,
		desiredURL: desiredURL,
		interval:   interval,
		logger:     logger,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (wd *Watchdog) Start() {
	go wd.loop()
}

func (wd *Watchdog) Stop() {
	close(wd.stop)
	<-wd.done
}

func (wd *Watchdog) loop() {
	defer close(wd.done)

	ticker := time.NewTicker(wd.interval)
	defer ticker.Stop()

	for {
		select {
		case <-wd.stop:
			return
		case <-ticker.C:
			err := wd.Reconcile()
			if err != nil {
				wd.logger.Zap.Error("webhook reconcile",
					zap.String("logger", "watchdog"),
					zap.String("err", err.Error()),
				)
			}
		}
	}
}

// Reconcile идемпотентен: совпадающий URL не трогаем.
func (wd *Watchdog) Reconcile() error {
	info, err := wd.api.GetWebhookInfo()
	if err != nil {
		return err
	}
	if info.URL == wd.desiredURL {
		return nil
	}

	wd.logger.Zap.Warn("webhook url drifted, re-registering",
		zap.String("logger", "watchdog"),
		zap.String("registered", info.URL),
		zap.String("desired", wd.desiredURL),
	)

	resp, err := wd.api.SetWebhook(tgbotapi.NewWebhook(wd.desiredURL))
	if err != nil {
		return err
	}
	if !resp.Ok {
		return fmt.Errorf("set webhook: code %v, description %v", resp.ErrorCode, resp.Description)
	}
	return nil
}
