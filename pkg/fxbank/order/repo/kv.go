package repo

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/KeynihAV/fxbank/pkg/fxbank/kvstore"
	orderPkg "github.com/KeynihAV/fxbank/pkg/fxbank/order"
)

var ErrNotFound = fmt.Errorf("заявка не найдена")

const (
	counterKey = "orders_counter"
	pendingKey = "orders_pending"
	recordKey  = "orders_"
)

type OrdersRepo struct {
	Store kvstore.Store
}

func NewOrdersRepo(store kvstore.Store) *OrdersRepo {
	return &OrdersRepo{Store: store}
}

// Add выдает заявке следующий номер из sequence, пишет запись и
// индексирует ее в множестве ожидающих.
func (or *OrdersRepo) Add(o *orderPkg.Order) (int64, error) {
	id, err := or.Store.Incr(counterKey)
	if err != nil {
		return 0, err
	}
	o.ID = id

	err = or.write(o)
	if err != nil {
		return 0, err
	}

	err = or.Store.AddToSet(pendingKey, strconv.FormatInt(id, 10))
	if err != nil {
		return 0, err
	}

	return id, nil
}

func (or *OrdersRepo) ByID(id int64) (*orderPkg.Order, error) {
	data, ok, err := or.Store.Get(recordKey + strconv.FormatInt(id, 10))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}

	o := &orderPkg.Order{}
	err = json.Unmarshal([]byte(data), o)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (or *OrdersRepo) Update(o *orderPkg.Order) error {
	return or.write(o)
}

// Pending возвращает заявки из индекса ожидающих. Висячие элементы индекса
// (запись не нашлась) молча пропускаются.
func (or *OrdersRepo) Pending() ([]*orderPkg.Order, error) {
	members, err := or.Store.Members(pendingKey)
	if err != nil {
		return nil, err
	}

	orders := make([]*orderPkg.Order, 0, len(members))
	for _, member := range members {
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			continue
		}
		o, err := or.ByID(id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (or *OrdersRepo) RemoveFromPending(id int64) error {
	return or.Store.RemoveFromSet(pendingKey, strconv.FormatInt(id, 10))
}

// ClearPending опустошает только индекс, сами записи заявок остаются.
func (or *OrdersRepo) ClearPending() error {
	members, err := or.Store.Members(pendingKey)
	if err != nil {
		return err
	}
	for _, member := range members {
		err = or.Store.RemoveFromSet(pendingKey, member)
		if err != nil {
			return err
		}
	}
	return nil
}

func (or *OrdersRepo) write(o *orderPkg.Order) error {
	data, err := json.Marshal(o)
	if err != nil {
		return err
	}
	return or.Store.Set(recordKey+strconv.FormatInt(o.ID, 10), string(data))
}
