package order

import (
	"fmt"
	"strings"
)

const (
	OpBuy     = "buy"
	OpSell    = "sell"
	OpConvert = "convert"
)

const (
	StatusNew      = "new"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
	StatusOrder    = "order"
)

const (
	SideFrom = "from"
	SideTo   = "to"
)

type Order struct {
	ID           int64   `json:"id"`
	ClientID     int64   `json:"clientID"`
	ClientName   string  `json:"clientName"`
	Operation    string  `json:"operation"`
	CurrencyFrom string  `json:"currencyFrom"`
	CurrencyTo   string  `json:"currencyTo"`
	AmountSide   string  `json:"amountSide,omitempty"`
	Amount       float64 `json:"amount"`
	Rate         float64 `json:"rate"`
	ProposedRate float64 `json:"proposedRate,omitempty"`
	Status       string  `json:"status"`
	CreatedAt    int64   `json:"createdAt"`
}

func NewOrder(clientID int64, clientName, operation, currencyFrom, currencyTo, amountSide string, amount, rate float64) (*Order, error) {
	switch operation {
	case OpBuy, OpSell, OpConvert:
	default:
		return nil, fmt.Errorf("unknown operation: %v", operation)
	}
	if clientName == "" {
		return nil, fmt.Errorf("client name is empty")
	}
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive: %v", amount)
	}
	if rate <= 0 {
		return nil, fmt.Errorf("rate must be positive: %v", rate)
	}

	return &Order{
		ClientID:     clientID,
		ClientName:   clientName,
		Operation:    operation,
		CurrencyFrom: strings.ToUpper(currencyFrom),
		CurrencyTo:   strings.ToUpper(currencyTo),
		AmountSide:   amountSide,
		Amount:       amount,
		Rate:         rate,
		Status:       StatusNew,
	}, nil
}

// CanTransition описывает граф статусов: из new в любой из трех исходов,
// из rejected обратно в accepted (клиент принял контр-курс) либо снова
// в rejected (клиент отказался). Остальное запрещено.
func CanTransition(from, to string) bool {
	switch from {
	case StatusNew:
		return to == StatusAccepted || to == StatusRejected || to == StatusOrder
	case StatusRejected:
		return to == StatusAccepted || to == StatusRejected
	}
	return false
}

func opText(operation string) string {
	switch operation {
	case OpBuy:
		return "Покупка"
	case OpSell:
		return "Продажа"
	case OpConvert:
		return "Конвертация"
	}
	return operation
}

func statusText(status string) string {
	switch status {
	case StatusNew:
		return "новая"
	case StatusAccepted:
		return "принята"
	case StatusRejected:
		return "отклонена"
	case StatusOrder:
		return "ордер"
	}
	return status
}

// Summary - карточка заявки, ее же банк видит после каждой смены статуса.
func (o *Order) Summary() string {
	lines := []string{
		fmt.Sprintf("Заявка #%v (%v)", o.ID, statusText(o.Status)),
		fmt.Sprintf("Клиент: %v", o.ClientName),
		fmt.Sprintf("Операция: %v", opText(o.Operation)),
		fmt.Sprintf("Валюта: %v -> %v", o.CurrencyFrom, o.CurrencyTo),
		fmt.Sprintf("Сумма: %v", o.Amount),
		fmt.Sprintf("Курс: %v", o.Rate),
	}
	if o.ProposedRate > 0 {
		lines = append(lines, fmt.Sprintf("Курс банка: %v", o.ProposedRate))
	}
	return strings.Join(lines, "\n")
}
