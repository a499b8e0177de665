package delivery

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io/ioutil"
	"net/http"

	"github.com/KeynihAV/fxbank/pkg/common"
	configPkg "github.com/KeynihAV/fxbank/pkg/config"
	"github.com/KeynihAV/fxbank/pkg/fxbank/metrics"
	"github.com/KeynihAV/fxbank/pkg/logging"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	ModeWebhook = "webhook"
	ModePolling = "polling"

	secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"
)

type webhookAck struct {
	OK bool `json:"ok"`
}

type healthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Mode    string `json:"mode"`
}

// WebhookPath строит путь вебхука из настроенного секрета, а без него -
// из хэша токена бота, чтобы endpoint нельзя было угадать.
func WebhookPath(config *configPkg.Config) string {
	secret := config.Bot.WebhookSecret
	if secret == "" {
		sum := sha256.Sum256([]byte(config.Bot.Token))
		secret = hex.EncodeToString(sum[:])
	}
	return "/webhook/" + secret
}

// WebhookServer принимает апдейты телеграма по HTTP и отдает их
// в канал роутера. Там же живут liveness и метрики.
type WebhookServer struct {
	config  *configPkg.Config
	mode    string
	updates chan tgbotapi.Update
	logger  *logging.Logger
}

func NewWebhookServer(config *configPkg.Config, mode string, logger *logging.Logger) *WebhookServer {
	return &WebhookServer{
		config:  config,
		mode:    mode,
		updates: make(chan tgbotapi.Update, 100),
		logger:  logger,
	}
}

func (ws *WebhookServer) Updates() <-chan tgbotapi.Update {
	return ws.updates
}

func (ws *WebhookServer) Router() http.Handler {
	router := mux.NewRouter()
	router.Use(metrics.TimeTrackingMiddleware)
	router.HandleFunc(WebhookPath(ws.config), ws.handleWebhook).Methods(http.MethodPost)
	router.HandleFunc("/", ws.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return router
}

// handleWebhook всегда отвечает 200: телеграму важен только факт доставки,
// ошибка разбора - наша проблема, ретраи со стороны платформы не нужны.
// Исключение - неверный секрет в заголовке, это чужой вызов и ему 403.
func (ws *WebhookServer) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if ws.config.Bot.WebhookSecret != "" &&
		r.Header.Get(secretTokenHeader) != ws.config.Bot.WebhookSecret {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	body, err := ioutil.ReadAll(r.Body)
	defer r.Body.Close()
	if err != nil {
		ws.ack(w, r, false, err)
		return
	}

	update := tgbotapi.Update{}
	err = json.Unmarshal(body, &update)
	if err != nil {
		ws.ack(w, r, false, err)
		return
	}

	ws.updates <- update
	ws.ack(w, r, true, nil)
}

func (ws *WebhookServer) ack(w http.ResponseWriter, r *http.Request, ok bool, cause error) {
	if cause != nil {
		ws.logger.Zap.Error("webhook update",
			zap.String("logger", "webhook"),
			zap.String("err", cause.Error()),
		)
	}
	common.WriteStructToResponse(&webhookAck{OK: ok}, r.Context(), w)
}

func (ws *WebhookServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	common.WriteStructToResponse(&healthStatus{
		Status:  "ok",
		Service: "fxbankbot",
		Mode:    ws.mode,
	}, r.Context(), w)
}
