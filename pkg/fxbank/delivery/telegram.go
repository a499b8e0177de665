package delivery

import (
	"fmt"
	"strconv"
	"strings"

	dialogPkg "github.com/KeynihAV/fxbank/pkg/fxbank/dialog"
	notifyPkg "github.com/KeynihAV/fxbank/pkg/fxbank/notify"
	orderPkg "github.com/KeynihAV/fxbank/pkg/fxbank/order"
	ordersUsecasePkg "github.com/KeynihAV/fxbank/pkg/fxbank/order/usecase"
	rolePkg "github.com/KeynihAV/fxbank/pkg/fxbank/role"
	"github.com/KeynihAV/fxbank/pkg/logging"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"go.uber.org/zap"
)

const (
	msgFallback     = "Не понимаю сообщение. Используйте меню или команду /start."
	msgNoAccess     = "Нет доступа"
	msgNotFound     = "Заявка не найдена"
	msgProcessError = "Ошибка обработки"

	btnNewOrder = "Новая заявка"
)

// botAPI - используемое подмножество *tgbotapi.BotAPI, за интерфейсом
// ради тестов роутера.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	AnswerCallbackQuery(config tgbotapi.CallbackConfig) (tgbotapi.APIResponse, error)
}

type BotRouter struct {
	bot      botAPI
	dialogs  *dialogPkg.Manager
	orders   *ordersUsecasePkg.OrdersManager
	roles    *rolePkg.RolesManager
	notifier *notifyPkg.Notifier
	logger   *logging.Logger
}

func NewBotRouter(
	bot botAPI,
	dialogs *dialogPkg.Manager,
	orders *ordersUsecasePkg.OrdersManager,
	roles *rolePkg.RolesManager,
	logger *logging.Logger) *BotRouter {

	notifier := notifyPkg.NewNotifier(&tgSender{bot: bot}, roles, logger)
	return &BotRouter{
		bot:      bot,
		dialogs:  dialogs,
		orders:   orders,
		roles:    roles,
		notifier: notifier,
		logger:   logger,
	}
}

// tgSender адаптирует botAPI под notify.Sender.
type tgSender struct {
	bot botAPI
}

func (s *tgSender) SendMessage(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	_, err := s.bot.Send(msg)
	return err
}

func (br *BotRouter) Run(updates <-chan tgbotapi.Update) {
	for update := range updates {
		br.HandleUpdate(update)
	}
}

func (br *BotRouter) HandleUpdate(update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		br.handleCallback(update.CallbackQuery)
	case update.Message == nil:
		// служебные апдейты (edited_message и прочее) не интересны
	case update.Message.IsCommand():
		br.handleCommand(update.Message)
	default:
		br.handleMessage(update.Message)
	}
}

func (br *BotRouter) handleCommand(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	switch cmdTxt := message.Command(); cmdTxt {
	case "start":
		br.send(chatID, "Здравствуйте! Я помогу оформить заявку на обмен валюты.", mainKeyboard())
	case "new":
		br.startDialog(chatID)
	case "cancel":
		err := br.dialogs.Cancel(chatID)
		if err != nil {
			br.replyError(chatID, "cancel", err)
			return
		}
		br.send(chatID, "Действие отменено", mainKeyboard())
	case "bank":
		br.elevate(chatID, message.CommandArguments())
	case "orders":
		br.listPending(chatID)
	case "clear":
		br.clearPending(chatID)
	default:
		br.send(chatID, msgFallback, mainKeyboard())
	}
}

func (br *BotRouter) handleMessage(message *tgbotapi.Message) {
	chatID := message.Chat.ID

	if message.Text == btnNewOrder {
		br.startDialog(chatID)
		return
	}

	result, err := br.dialogs.Advance(chatID, message.Text)
	if err == dialogPkg.ErrNoSession {
		br.send(chatID, msgFallback, mainKeyboard())
		return
	}
	if err != nil {
		br.replyError(chatID, "advance dialog", err)
		return
	}

	switch {
	case result.Done:
		br.createOrder(chatID, result)
	case result.CounterDone:
		br.sendCounter(chatID, result)
	default:
		br.send(chatID, result.Reply, stepKeyboard(result))
	}
}

// createOrder - терминальный шаг анкеты: заявка сохраняется, клиент получает
// карточку, все банковские пользователи - уведомление с кнопками действий.
func (br *BotRouter) createOrder(chatID int64, result *dialogPkg.Result) {
	sess := result.Session
	o, err := br.orders.Create(chatID, sess.ClientName, sess.Operation,
		sess.CurrencyFrom, sess.CurrencyTo, sess.AmountSide, sess.Amount, sess.Rate)
	if err != nil {
		br.logger.Zap.Error("create order",
			zap.String("logger", "tgbot"),
			zap.Int64("chatID", chatID),
			zap.String("err", err.Error()),
		)
		br.send(chatID, fmt.Sprintf("Не удалось создать заявку: %v", err), mainKeyboard())
		return
	}

	br.send(chatID, fmt.Sprintf("Заявка #%v создана и отправлена банку.\n\n%v", o.ID, o.Summary()), mainKeyboard())
	br.notifier.ToBanks("Новая заявка:\n\n"+o.Summary(), orderActionsKeyboard(o.ID))
}

func (br *BotRouter) sendCounter(chatID int64, result *dialogPkg.Result) {
	o, err := br.orders.Counter(result.CounterOrderID, result.CounterRate)
	if err == ordersUsecasePkg.ErrNotFound {
		br.send(chatID, msgNotFound, nil)
		return
	}
	if err != nil {
		br.replyError(chatID, "counter order", err)
		return
	}

	br.send(chatID, fmt.Sprintf("Контр-курс %v по заявке #%v отправлен клиенту", o.ProposedRate, o.ID), nil)
	br.notifier.ToClient(o.ClientID,
		fmt.Sprintf("Банк предлагает курс %v по вашей заявке #%v.", o.ProposedRate, o.ID),
		counterKeyboard(o.ID))
}

func (br *BotRouter) startDialog(chatID int64) {
	prompt, err := br.dialogs.Start(chatID)
	if err != nil {
		br.replyError(chatID, "start dialog", err)
		return
	}
	br.send(chatID, prompt, nil)
}

func (br *BotRouter) elevate(chatID int64, secret string) {
	err := br.roles.Elevate(chatID, strings.TrimSpace(secret))
	if err == rolePkg.ErrBadPassword {
		br.send(chatID, "Неверный пароль", nil)
		return
	}
	if err != nil {
		br.replyError(chatID, "elevate", err)
		return
	}
	br.send(chatID, "Режим банка включен. Доступны /orders и /clear.", nil)
}

func (br *BotRouter) listPending(chatID int64) {
	if !br.isBank(chatID) {
		br.send(chatID, msgNoAccess, nil)
		return
	}

	orders, err := br.orders.Pending()
	if err != nil {
		br.replyError(chatID, "list pending", err)
		return
	}
	if len(orders) == 0 {
		br.send(chatID, "Ожидающих заявок нет", nil)
		return
	}

	for _, o := range orders {
		br.send(chatID, o.Summary(), orderActionsKeyboard(o.ID))
	}
}

func (br *BotRouter) clearPending(chatID int64) {
	if !br.isBank(chatID) {
		br.send(chatID, msgNoAccess, nil)
		return
	}

	err := br.orders.ClearPending()
	if err != nil {
		br.replyError(chatID, "clear pending", err)
		return
	}
	br.send(chatID, "Список ожидающих заявок очищен", nil)
}

func (br *BotRouter) handleCallback(callback *tgbotapi.CallbackQuery) {
	verb, orderID, err := parseAction(callback.Data)
	if err != nil {
		br.answer(callback.ID, msgProcessError, true)
		return
	}

	switch verb {
	case "accept", "reject", "order", "counter":
		br.bankAction(callback, verb, orderID)
	case "ca", "cd":
		br.clientCounterAction(callback, verb, orderID)
	default:
		br.answer(callback.ID, msgProcessError, true)
	}
}

func (br *BotRouter) bankAction(callback *tgbotapi.CallbackQuery, verb string, orderID int64) {
	chatID := callback.Message.Chat.ID

	if !br.isBank(chatID) {
		br.answer(callback.ID, msgNoAccess, true)
		return
	}

	if verb == "counter" {
		prompt, err := br.dialogs.StartCounter(chatID, orderID)
		if err != nil {
			br.answerError(callback.ID, "start counter", err)
			return
		}
		br.answer(callback.ID, "", false)
		br.send(chatID, prompt, nil)
		return
	}

	var o *orderPkg.Order
	var err error
	var ack, clientText string
	switch verb {
	case "accept":
		o, err = br.orders.Accept(orderID)
		ack = "Заявка принята ✅"
		if o != nil {
			clientText = fmt.Sprintf("✅ Ваша заявка #%v принята банком.", o.ID)
		}
	case "reject":
		o, err = br.orders.Reject(orderID)
		ack = "Заявка отклонена ❌"
		if o != nil {
			clientText = fmt.Sprintf("❌ Ваша заявка #%v отклонена банком.", o.ID)
		}
	case "order":
		o, err = br.orders.Confirm(orderID)
		ack = "Заявка сохранена как ордер 📌"
		if o != nil {
			clientText = fmt.Sprintf("📌 Ваша заявка #%v сохранена как ордер.", o.ID)
		}
	}

	if err == ordersUsecasePkg.ErrNotFound {
		br.answer(callback.ID, msgNotFound, true)
		return
	}
	if err == ordersUsecasePkg.ErrBadTransition {
		br.answer(callback.ID, "Недопустимая смена статуса", true)
		return
	}
	if err != nil {
		br.answerError(callback.ID, "bank action "+verb, err)
		return
	}

	br.editSummary(callback, o)
	br.answer(callback.ID, ack, false)
	br.notifier.ToClient(o.ClientID, clientText, nil)
}

func (br *BotRouter) clientCounterAction(callback *tgbotapi.CallbackQuery, verb string, orderID int64) {
	chatID := callback.Message.Chat.ID

	var o *orderPkg.Order
	var err error
	var ack, bankText string
	if verb == "ca" {
		o, err = br.orders.AcceptCounter(orderID, chatID)
		ack = "Курс принят ✅"
		if o != nil {
			bankText = fmt.Sprintf("Клиент принял курс %v по заявке #%v.", o.Rate, o.ID)
		}
	} else {
		o, err = br.orders.DeclineCounter(orderID, chatID)
		ack = "Отказ отправлен"
		if o != nil {
			bankText = fmt.Sprintf("Клиент отклонил предложенный курс по заявке #%v.", o.ID)
		}
	}

	if err == ordersUsecasePkg.ErrNotFound {
		br.answer(callback.ID, msgNotFound, true)
		return
	}
	if err == ordersUsecasePkg.ErrNotOwner {
		br.answer(callback.ID, msgNoAccess, true)
		return
	}
	if err == ordersUsecasePkg.ErrBadTransition {
		br.answer(callback.ID, msgProcessError, true)
		return
	}
	if err != nil {
		br.answerError(callback.ID, "counter action "+verb, err)
		return
	}

	br.editSummary(callback, o)
	br.answer(callback.ID, ack, false)
	br.notifier.ToBanks(bankText, nil)
}

// editSummary перерисовывает исходную карточку под новый статус,
// чтобы кнопки не висели на устаревшем тексте.
func (br *BotRouter) editSummary(callback *tgbotapi.CallbackQuery, o *orderPkg.Order) {
	edit := tgbotapi.NewEditMessageText(callback.Message.Chat.ID, callback.Message.MessageID, o.Summary())
	_, err := br.bot.Send(edit)
	if err != nil {
		br.logger.Zap.Error("edit summary",
			zap.String("logger", "tgbot"),
			zap.Int64("orderID", o.ID),
			zap.String("err", err.Error()),
		)
	}
}

func (br *BotRouter) isBank(chatID int64) bool {
	userRole, err := br.roles.Role(chatID)
	if err != nil {
		br.logger.Zap.Error("get role",
			zap.String("logger", "tgbot"),
			zap.Int64("chatID", chatID),
			zap.String("err", err.Error()),
		)
		return false
	}
	return userRole == rolePkg.Bank
}

func (br *BotRouter) send(chatID int64, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	_, err := br.bot.Send(msg)
	if err != nil {
		br.logger.Zap.Error("send msg",
			zap.String("logger", "tgbot"),
			zap.Int64("chatID", chatID),
			zap.String("err", err.Error()),
		)
	}
}

func (br *BotRouter) replyError(chatID int64, op string, err error) {
	br.logger.Zap.Error(op,
		zap.String("logger", "tgbot"),
		zap.Int64("chatID", chatID),
		zap.String("err", err.Error()),
	)
	br.send(chatID, msgProcessError, nil)
}

func (br *BotRouter) answer(callbackID string, text string, alert bool) {
	var cb tgbotapi.CallbackConfig
	if alert {
		cb = tgbotapi.NewCallbackWithAlert(callbackID, text)
	} else {
		cb = tgbotapi.NewCallback(callbackID, text)
	}
	_, err := br.bot.AnswerCallbackQuery(cb)
	if err != nil {
		br.logger.Zap.Error("answer callback",
			zap.String("logger", "tgbot"),
			zap.String("err", err.Error()),
		)
	}
}

func (br *BotRouter) answerError(callbackID string, op string, err error) {
	br.logger.Zap.Error(op,
		zap.String("logger", "tgbot"),
		zap.String("err", err.Error()),
	)
	br.answer(callbackID, msgProcessError, true)
}

// parseAction разбирает callback-данные вида "<действие>:<номер заявки>".
func parseAction(data string) (string, int64, error) {
	parts := strings.SplitN(data, ":", 2)
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("bad callback data: %v", data)
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("bad order id in callback: %v", data)
	}
	return parts[0], id, nil
}

func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnNewOrder)),
	)
}

func operationsKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Купить"),
			tgbotapi.NewKeyboardButton("Продать"),
			tgbotapi.NewKeyboardButton("Конвертация"),
		),
	)
}

// stepKeyboard подбирает клавиатуру под очередной вопрос анкеты.
func stepKeyboard(result *dialogPkg.Result) interface{} {
	switch result.Step {
	case dialogPkg.StepOperation:
		return operationsKeyboard()
	case dialogPkg.StepConvertDirection:
		return tgbotapi.NewReplyKeyboard(
			tgbotapi.NewKeyboardButtonRow(
				tgbotapi.NewKeyboardButton(result.Session.CurrencyFrom),
				tgbotapi.NewKeyboardButton(result.Session.CurrencyTo),
			),
		)
	}
	return nil
}

func orderActionsKeyboard(orderID int64) tgbotapi.InlineKeyboardMarkup {
	id := strconv.FormatInt(orderID, 10)
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Принять ✅", "accept:"+id),
			tgbotapi.NewInlineKeyboardButtonData("Отклонить ❌", "reject:"+id),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("В ордер 📌", "order:"+id),
			tgbotapi.NewInlineKeyboardButtonData("Свой курс", "counter:"+id),
		),
	)
}

func counterKeyboard(orderID int64) tgbotapi.InlineKeyboardMarkup {
	id := strconv.FormatInt(orderID, 10)
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Принять курс", "ca:"+id),
			tgbotapi.NewInlineKeyboardButtonData("Отказаться", "cd:"+id),
		),
	)
}
