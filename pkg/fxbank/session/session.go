package session

// Session - незавершенная анкета одного пользователя: текущий шаг диалога
// и накопленные поля будущей заявки. Для банка тот же механизм держит
// ввод контр-курса (CounterOrderID).
type Session struct {
	UserID         int64   `json:"userID"`
	Step           string  `json:"step"`
	ClientName     string  `json:"clientName,omitempty"`
	Operation      string  `json:"operation,omitempty"`
	CurrencyFrom   string  `json:"currencyFrom,omitempty"`
	CurrencyTo     string  `json:"currencyTo,omitempty"`
	AmountSide     string  `json:"amountSide,omitempty"`
	Amount         float64 `json:"amount,omitempty"`
	Rate           float64 `json:"rate,omitempty"`
	CounterOrderID int64   `json:"counterOrderID,omitempty"`
}
