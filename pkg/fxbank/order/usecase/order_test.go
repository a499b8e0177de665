package usecase

import (
	"testing"

	"github.com/KeynihAV/fxbank/pkg/fxbank/kvstore"
	orderPkg "github.com/KeynihAV/fxbank/pkg/fxbank/order"
	ordersRepoPkg "github.com/KeynihAV/fxbank/pkg/fxbank/order/repo"
)

func newManagerWithOrder(t *testing.T) (*OrdersManager, *orderPkg.Order) {
	t.Helper()
	om := NewOrdersManager(ordersRepoPkg.NewOrdersRepo(kvstore.NewMemory()))
	o, err := om.Create(100, "ACME Corp", orderPkg.OpBuy, "UAH", "USD", "", 500, 41.25)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return om, o
}

func TestOrdersManager_Create(t *testing.T) {
	om := NewOrdersManager(ordersRepoPkg.NewOrdersRepo(kvstore.NewMemory()))

	tests := []struct {
		name      string
		operation string
		amount    float64
		rate      float64
		wantErr   bool
	}{
		{name: "валидная покупка", operation: orderPkg.OpBuy, amount: 500, rate: 41.25},
		{name: "нулевая сумма", operation: orderPkg.OpBuy, amount: 0, rate: 41.25, wantErr: true},
		{name: "нулевой курс", operation: orderPkg.OpSell, amount: 10, rate: 0, wantErr: true},
		{name: "неизвестная операция", operation: "swap", amount: 10, rate: 1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := om.Create(1, "клиент", tt.operation, "UAH", "USD", "", tt.amount, tt.rate)
			if (err != nil) != tt.wantErr {
				t.Errorf("Create() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if err == nil && o.Status != orderPkg.StatusNew {
				t.Errorf("новая заявка в статусе %v", o.Status)
			}
		})
	}
}

func TestOrdersManager_Accept(t *testing.T) {
	om, o := newManagerWithOrder(t)

	got, err := om.Accept(o.ID)
	if err != nil {
		t.Fatalf("Accept() error = %v", err)
	}
	if got.Status != orderPkg.StatusAccepted {
		t.Errorf("статус = %v, want accepted", got.Status)
	}

	// принятая заявка уходит из ожидающих
	pending, _ := om.Pending()
	if len(pending) != 0 {
		t.Errorf("принятая заявка осталась в ожидающих: %+v", pending)
	}

	// повторное действие над терминальным статусом запрещено
	_, err = om.Reject(o.ID)
	if err != ErrBadTransition {
		t.Errorf("Reject после Accept: err = %v, want ErrBadTransition", err)
	}
}

func TestOrdersManager_NotFound(t *testing.T) {
	om, _ := newManagerWithOrder(t)

	_, err := om.Accept(999)
	if err != ErrNotFound {
		t.Errorf("Accept(999) error = %v, want ErrNotFound", err)
	}
}

func TestOrdersManager_CounterCycle(t *testing.T) {
	om, o := newManagerWithOrder(t)

	countered, err := om.Counter(o.ID, 40.0)
	if err != nil {
		t.Fatalf("Counter() error = %v", err)
	}
	if countered.Status != orderPkg.StatusRejected || countered.ProposedRate != 40.0 {
		t.Fatalf("после контр-курса: status %v, proposed %v", countered.Status, countered.ProposedRate)
	}
	if countered.Rate != 41.25 {
		t.Errorf("исходный курс затерт раньше времени: %v", countered.Rate)
	}

	// чужой клиент не может принять курс
	_, err = om.AcceptCounter(o.ID, 777)
	if err != ErrNotOwner {
		t.Fatalf("AcceptCounter чужим клиентом: err = %v, want ErrNotOwner", err)
	}

	accepted, err := om.AcceptCounter(o.ID, 100)
	if err != nil {
		t.Fatalf("AcceptCounter() error = %v", err)
	}
	if accepted.Status != orderPkg.StatusAccepted || accepted.Rate != 40.0 || accepted.ProposedRate != 0 {
		t.Errorf("после принятия контр-курса: %+v", accepted)
	}
}

func TestOrdersManager_BankActionsAfterCounter(t *testing.T) {
	om, o := newManagerWithOrder(t)

	if _, err := om.Counter(o.ID, 40.0); err != nil {
		t.Fatalf("Counter() error = %v", err)
	}

	// пока клиент не ответил на контр-курс, банк не трогает заявку
	actions := []struct {
		name string
		call func(int64) (*orderPkg.Order, error)
	}{
		{name: "Accept", call: om.Accept},
		{name: "Reject", call: om.Reject},
		{name: "Confirm", call: om.Confirm},
	}
	for _, a := range actions {
		if _, err := a.call(o.ID); err != ErrBadTransition {
			t.Errorf("%v после контр-курса: err = %v, want ErrBadTransition", a.name, err)
		}
	}

	got, err := om.ByID(o.ID)
	if err != nil {
		t.Fatalf("ByID() error = %v", err)
	}
	if got.Status != orderPkg.StatusRejected || got.ProposedRate != 40.0 || got.Rate != 41.25 {
		t.Fatalf("заявка изменилась действиями банка: %+v", got)
	}

	accepted, err := om.AcceptCounter(o.ID, 100)
	if err != nil {
		t.Fatalf("AcceptCounter() error = %v", err)
	}
	if accepted.Status != orderPkg.StatusAccepted || accepted.Rate != 40.0 {
		t.Errorf("после принятия контр-курса: %+v", accepted)
	}
}

func TestOrdersManager_DeclineCounter(t *testing.T) {
	om, o := newManagerWithOrder(t)

	om.Counter(o.ID, 40.0)
	declined, err := om.DeclineCounter(o.ID, 100)
	if err != nil {
		t.Fatalf("DeclineCounter() error = %v", err)
	}
	if declined.Status != orderPkg.StatusRejected || declined.ProposedRate != 0 {
		t.Errorf("после отказа: status %v, proposed %v", declined.Status, declined.ProposedRate)
	}
}

func TestOrdersManager_Confirm(t *testing.T) {
	om, o := newManagerWithOrder(t)

	confirmed, err := om.Confirm(o.ID)
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if confirmed.Status != orderPkg.StatusOrder {
		t.Errorf("статус = %v, want order", confirmed.Status)
	}

	_, err = om.AcceptCounter(o.ID, 100)
	if err != ErrBadTransition {
		t.Errorf("принятие контр-курса по ордеру: err = %v, want ErrBadTransition", err)
	}
}
