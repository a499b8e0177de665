package dialog

import (
	"fmt"

	orderPkg "github.com/KeynihAV/fxbank/pkg/fxbank/order"
	sessionPkg "github.com/KeynihAV/fxbank/pkg/fxbank/session"
	sessionsRepoPkg "github.com/KeynihAV/fxbank/pkg/fxbank/session/repo"
)

const (
	StepClientName       = "awaiting_client_name"
	StepOperation        = "awaiting_operation"
	StepSellCurrency     = "awaiting_sell_currency"
	StepBuyCurrency      = "awaiting_buy_currency"
	StepConvertFrom      = "awaiting_convert_from"
	StepConvertTo        = "awaiting_convert_to"
	StepConvertDirection = "awaiting_convert_direction"
	StepAmount           = "awaiting_amount"
	StepRate             = "awaiting_rate"
	StepCounterRate      = "awaiting_counter_rate"

	stepDone = ""
)

var ErrNoSession = fmt.Errorf("нет активной анкеты")

// Result - итог обработки одного сообщения.
// Done: анкета собрана, Session держит все поля будущей заявки.
// CounterDone: банк ввел контр-курс для заявки CounterOrderID.
// Иначе Reply - очередной вопрос или текст ошибки валидации.
type Result struct {
	Reply          string
	Step           string
	Done           bool
	CounterDone    bool
	CounterOrderID int64
	CounterRate    float64
	Session        *sessionPkg.Session
}

type Manager struct {
	sessions     *sessionsRepoPkg.SessionsRepo
	baseCurrency string
}

func NewManager(sessions *sessionsRepoPkg.SessionsRepo, baseCurrency string) *Manager {
	return &Manager{sessions: sessions, baseCurrency: baseCurrency}
}

type stepSpec struct {
	prompt   string
	validate func(m *Manager, sess *sessionPkg.Session, input string) (string, error)
	apply    func(m *Manager, sess *sessionPkg.Session, value string)
	next     func(sess *sessionPkg.Session) string
}

// Таблица диалога: шаг -> (вопрос, валидатор, фиксация поля, следующий шаг).
// Ветвление покупка/продажа/конвертация решается в next по выбранной операции.
var steps = map[string]stepSpec{
	StepClientName: {
		prompt: "Как к вам обращаться? (имя или название компании)",
		validate: func(m *Manager, sess *sessionPkg.Session, input string) (string, error) {
			name := trimmed(input)
			if name == "" {
				return "", fmt.Errorf("имя не может быть пустым")
			}
			return name, nil
		},
		apply: func(m *Manager, sess *sessionPkg.Session, value string) { sess.ClientName = value },
		next:  func(sess *sessionPkg.Session) string { return StepOperation },
	},
	StepOperation: {
		prompt: "Выберите операцию: Купить, Продать или Конвертация",
		validate: func(m *Manager, sess *sessionPkg.Session, input string) (string, error) {
			return parseOperation(input)
		},
		apply: func(m *Manager, sess *sessionPkg.Session, value string) { sess.Operation = value },
		next: func(sess *sessionPkg.Session) string {
			switch sess.Operation {
			case orderPkg.OpSell:
				return StepSellCurrency
			case orderPkg.OpConvert:
				return StepConvertFrom
			}
			return StepBuyCurrency
		},
	},
	StepBuyCurrency: {
		prompt: "Какую валюту покупаете? (код, например USD)",
		validate: func(m *Manager, sess *sessionPkg.Session, input string) (string, error) {
			return ValidCurrency(input)
		},
		apply: func(m *Manager, sess *sessionPkg.Session, value string) {
			sess.CurrencyTo = value
			sess.CurrencyFrom = m.baseCurrency
		},
		next: func(sess *sessionPkg.Session) string { return StepAmount },
	},
	StepSellCurrency: {
		prompt: "Какую валюту продаете? (код, например USD)",
		validate: func(m *Manager, sess *sessionPkg.Session, input string) (string, error) {
			return ValidCurrency(input)
		},
		apply: func(m *Manager, sess *sessionPkg.Session, value string) {
			sess.CurrencyFrom = value
			sess.CurrencyTo = m.baseCurrency
		},
		next: func(sess *sessionPkg.Session) string { return StepAmount },
	},
	StepConvertFrom: {
		prompt: "Из какой валюты конвертируем? (код)",
		validate: func(m *Manager, sess *sessionPkg.Session, input string) (string, error) {
			return ValidCurrency(input)
		},
		apply: func(m *Manager, sess *sessionPkg.Session, value string) { sess.CurrencyFrom = value },
		next:  func(sess *sessionPkg.Session) string { return StepConvertTo },
	},
	StepConvertTo: {
		prompt: "В какую валюту конвертируем? (код)",
		validate: func(m *Manager, sess *sessionPkg.Session, input string) (string, error) {
			code, err := ValidCurrency(input)
			if err != nil {
				return "", err
			}
			if code == sess.CurrencyFrom {
				return "", fmt.Errorf("валюты должны отличаться")
			}
			return code, nil
		},
		apply: func(m *Manager, sess *sessionPkg.Session, value string) { sess.CurrencyTo = value },
		next:  func(sess *sessionPkg.Session) string { return StepConvertDirection },
	},
	StepConvertDirection: {
		prompt: "В какой валюте указана сумма?",
		validate: func(m *Manager, sess *sessionPkg.Session, input string) (string, error) {
			code, err := ValidCurrency(input)
			if err != nil {
				return "", err
			}
			switch code {
			case sess.CurrencyFrom:
				return orderPkg.SideFrom, nil
			case sess.CurrencyTo:
				return orderPkg.SideTo, nil
			}
			return "", fmt.Errorf("укажите %v или %v", sess.CurrencyFrom, sess.CurrencyTo)
		},
		apply: func(m *Manager, sess *sessionPkg.Session, value string) { sess.AmountSide = value },
		next:  func(sess *sessionPkg.Session) string { return StepAmount },
	},
	StepAmount: {
		prompt: "Укажите сумму",
		validate: func(m *Manager, sess *sessionPkg.Session, input string) (string, error) {
			return validatePositiveDecimal(input, "Не правильно введена сумма")
		},
		apply: func(m *Manager, sess *sessionPkg.Session, value string) {
			sess.Amount, _ = ParseDecimal(value)
		},
		next: func(sess *sessionPkg.Session) string { return StepRate },
	},
	StepRate: {
		prompt: "Укажите желаемый курс",
		validate: func(m *Manager, sess *sessionPkg.Session, input string) (string, error) {
			return validatePositiveDecimal(input, "Не правильно введен курс")
		},
		apply: func(m *Manager, sess *sessionPkg.Session, value string) {
			sess.Rate, _ = ParseDecimal(value)
		},
		next: func(sess *sessionPkg.Session) string { return stepDone },
	},
	StepCounterRate: {
		prompt: "Укажите ваш курс",
		validate: func(m *Manager, sess *sessionPkg.Session, input string) (string, error) {
			return validatePositiveDecimal(input, "Не правильно введен курс")
		},
		apply: func(m *Manager, sess *sessionPkg.Session, value string) {
			sess.Rate, _ = ParseDecimal(value)
		},
		next: func(sess *sessionPkg.Session) string { return stepDone },
	},
}

// Start открывает новую анкету, затирая незавершенную.
func (m *Manager) Start(userID int64) (string, error) {
	sess := &sessionPkg.Session{UserID: userID, Step: StepClientName}
	err := m.sessions.Put(sess)
	if err != nil {
		return "", err
	}
	return steps[StepClientName].prompt, nil
}

// StartCounter открывает ввод контр-курса банком по заявке orderID.
func (m *Manager) StartCounter(userID int64, orderID int64) (string, error) {
	sess := &sessionPkg.Session{UserID: userID, Step: StepCounterRate, CounterOrderID: orderID}
	err := m.sessions.Put(sess)
	if err != nil {
		return "", err
	}
	return steps[StepCounterRate].prompt, nil
}

func (m *Manager) Cancel(userID int64) error {
	return m.sessions.Clear(userID)
}

// Advance прогоняет сообщение через текущий шаг. Невалидный ввод не двигает
// состояние и ничего не фиксирует, пользователь получает тот же вопрос снова.
func (m *Manager) Advance(userID int64, input string) (*Result, error) {
	sess, err := m.sessions.Get(userID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNoSession
	}

	step, ok := steps[sess.Step]
	if !ok {
		m.sessions.Clear(userID)
		return nil, ErrNoSession
	}

	value, vErr := step.validate(m, sess, input)
	if vErr != nil {
		return &Result{
			Reply:   fmt.Sprintf("%v\nПопробуйте еще: %v", vErr.Error(), step.prompt),
			Step:    sess.Step,
			Session: sess,
		}, nil
	}

	step.apply(m, sess, value)
	next := step.next(sess)

	if next == stepDone {
		err = m.sessions.Clear(userID)
		if err != nil {
			return nil, err
		}
		if sess.Step == StepCounterRate {
			return &Result{
				CounterDone:    true,
				CounterOrderID: sess.CounterOrderID,
				CounterRate:    sess.Rate,
				Session:        sess,
			}, nil
		}
		return &Result{Done: true, Session: sess}, nil
	}

	sess.Step = next
	err = m.sessions.Put(sess)
	if err != nil {
		return nil, err
	}

	return &Result{Reply: steps[next].prompt, Step: next, Session: sess}, nil
}

func validatePositiveDecimal(input, errPrefix string) (string, error) {
	value, err := ParseDecimal(input)
	if err != nil {
		return "", fmt.Errorf("%v: %v", errPrefix, err)
	}
	if value <= 0 {
		return "", fmt.Errorf("%v: значение должно быть больше нуля", errPrefix)
	}
	return input, nil
}
