package usecase

import (
	"fmt"
	"sync"
	"time"

	"github.com/KeynihAV/fxbank/pkg/fxbank/metrics"
	orderPkg "github.com/KeynihAV/fxbank/pkg/fxbank/order"
	ordersRepoPkg "github.com/KeynihAV/fxbank/pkg/fxbank/order/repo"
)

var (
	ErrNotFound      = ordersRepoPkg.ErrNotFound
	ErrNotOwner      = fmt.Errorf("заявка принадлежит другому клиенту")
	ErrBadTransition = fmt.Errorf("недопустимая смена статуса")
)

type OrdersManager struct {
	repo *ordersRepoPkg.OrdersRepo

	// Действия банка над одной заявкой могут гоняться друг с другом,
	// сериализуем переходы по id в рамках процесса.
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewOrdersManager(repo *ordersRepoPkg.OrdersRepo) *OrdersManager {
	return &OrdersManager{
		repo:  repo,
		locks: make(map[int64]*sync.Mutex),
	}
}

func (om *OrdersManager) Create(clientID int64, clientName, operation, currencyFrom, currencyTo, amountSide string, amount, rate float64) (*orderPkg.Order, error) {
	o, err := orderPkg.NewOrder(clientID, clientName, operation, currencyFrom, currencyTo, amountSide, amount, rate)
	if err != nil {
		return nil, err
	}
	o.CreatedAt = time.Now().Unix()

	_, err = om.repo.Add(o)
	if err != nil {
		return nil, err
	}

	metrics.OrderCreated()
	return o, nil
}

func (om *OrdersManager) ByID(id int64) (*orderPkg.Order, error) {
	return om.repo.ByID(id)
}

func (om *OrdersManager) Pending() ([]*orderPkg.Order, error) {
	return om.repo.Pending()
}

func (om *OrdersManager) ClearPending() error {
	return om.repo.ClearPending()
}

// Accept: банк принимает заявку по запрошенному клиентом курсу.
// Действия банка разрешены только над новыми заявками: из rejected
// выводят исключительно AcceptCounter/DeclineCounter самого клиента.
func (om *OrdersManager) Accept(id int64) (*orderPkg.Order, error) {
	return om.transition(id, func(o *orderPkg.Order) error {
		if o.Status != orderPkg.StatusNew {
			return ErrBadTransition
		}
		o.Status = orderPkg.StatusAccepted
		return om.repo.RemoveFromPending(id)
	})
}

// Reject: банк отклоняет заявку без встречного предложения.
func (om *OrdersManager) Reject(id int64) (*orderPkg.Order, error) {
	return om.transition(id, func(o *orderPkg.Order) error {
		if o.Status != orderPkg.StatusNew {
			return ErrBadTransition
		}
		o.Status = orderPkg.StatusRejected
		return om.repo.RemoveFromPending(id)
	})
}

// Confirm: банк превращает заявку в ордер.
func (om *OrdersManager) Confirm(id int64) (*orderPkg.Order, error) {
	return om.transition(id, func(o *orderPkg.Order) error {
		if o.Status != orderPkg.StatusNew {
			return ErrBadTransition
		}
		o.Status = orderPkg.StatusOrder
		return om.repo.RemoveFromPending(id)
	})
}

// Counter: банк предлагает свой курс. Заявка переходит в rejected,
// но остается в индексе ожидающих до ответа клиента.
func (om *OrdersManager) Counter(id int64, rate float64) (*orderPkg.Order, error) {
	if rate <= 0 {
		return nil, fmt.Errorf("rate must be positive: %v", rate)
	}
	return om.transition(id, func(o *orderPkg.Order) error {
		if !orderPkg.CanTransition(o.Status, orderPkg.StatusRejected) {
			return ErrBadTransition
		}
		o.Status = orderPkg.StatusRejected
		o.ProposedRate = rate
		return nil
	})
}

// AcceptCounter: клиент согласился на курс банка, он затирает исходный.
func (om *OrdersManager) AcceptCounter(id int64, clientID int64) (*orderPkg.Order, error) {
	return om.transition(id, func(o *orderPkg.Order) error {
		if o.ClientID != clientID {
			return ErrNotOwner
		}
		if o.ProposedRate <= 0 || !orderPkg.CanTransition(o.Status, orderPkg.StatusAccepted) {
			return ErrBadTransition
		}
		o.Status = orderPkg.StatusAccepted
		o.Rate = o.ProposedRate
		o.ProposedRate = 0
		return om.repo.RemoveFromPending(id)
	})
}

// DeclineCounter: клиент отказался, заявка остается отклоненной.
func (om *OrdersManager) DeclineCounter(id int64, clientID int64) (*orderPkg.Order, error) {
	return om.transition(id, func(o *orderPkg.Order) error {
		if o.ClientID != clientID {
			return ErrNotOwner
		}
		if !orderPkg.CanTransition(o.Status, orderPkg.StatusRejected) {
			return ErrBadTransition
		}
		o.Status = orderPkg.StatusRejected
		o.ProposedRate = 0
		return om.repo.RemoveFromPending(id)
	})
}

func (om *OrdersManager) transition(id int64, change func(o *orderPkg.Order) error) (*orderPkg.Order, error) {
	lock := om.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	o, err := om.repo.ByID(id)
	if err != nil {
		return nil, err
	}

	err = change(o)
	if err != nil {
		return nil, err
	}

	err = om.repo.Update(o)
	if err != nil {
		return nil, err
	}

	metrics.OrderTransition(o.Status)
	return o, nil
}

func (om *OrdersManager) lockFor(id int64) *sync.Mutex {
	om.mu.Lock()
	defer om.mu.Unlock()

	lock, ok := om.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		om.locks[id] = lock
	}
	return lock
}
