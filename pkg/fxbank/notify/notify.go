package notify

import (
	"github.com/KeynihAV/fxbank/pkg/fxbank/role"
	"github.com/KeynihAV/fxbank/pkg/logging"
	"go.uber.org/zap"
)

// Sender - то, что умеет доставить сообщение в чат. Markup опционален
// (inline-кнопки под уведомлением).
type Sender interface {
	SendMessage(chatID int64, text string, markup interface{}) error
}

// Notifier рассылает уведомления о смене статуса заявки. Все отправки
// best-effort: ошибка пишется в лог и не возвращается, переход статуса
// не должен откатываться из-за недоставленного сообщения.
type Notifier struct {
	sender Sender
	roles  *role.RolesManager
	logger *logging.Logger
}

func NewNotifier(sender Sender, roles *role.RolesManager, logger *logging.Logger) *Notifier {
	return &Notifier{sender: sender, roles: roles, logger: logger}
}

func (n *Notifier) ToClient(chatID int64, text string, markup interface{}) {
	err := n.sender.SendMessage(chatID, text, markup)
	if err != nil {
		n.logger.Zap.Error("notify client",
			zap.String("logger", "notify"),
			zap.Int64("chatID", chatID),
			zap.String("err", err.Error()),
		)
	}
}

// ToBanks шлет всем известным банковским пользователям. Возвращает число
// удачных доставок, ошибки отдельных получателей не прерывают рассылку.
func (n *Notifier) ToBanks(text string, markup interface{}) int {
	users, err := n.roles.BankUsers()
	if err != nil {
		n.logger.Zap.Error("list bank users",
			zap.String("logger", "notify"),
			zap.String("err", err.Error()),
		)
		return 0
	}

	sent := 0
	for _, chatID := range users {
		err = n.sender.SendMessage(chatID, text, markup)
		if err != nil {
			n.logger.Zap.Error("notify bank user",
				zap.String("logger", "notify"),
				zap.Int64("chatID", chatID),
				zap.String("err", err.Error()),
			)
			continue
		}
		sent++
	}
	return sent
}
