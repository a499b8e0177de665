package notify

import (
	"fmt"
	"testing"

	"github.com/KeynihAV/fxbank/pkg/fxbank/kvstore"
	"github.com/KeynihAV/fxbank/pkg/fxbank/role"
	"github.com/KeynihAV/fxbank/pkg/logging"
)

type fakeSender struct {
	sent   []int64
	failOn map[int64]bool
}

func (fs *fakeSender) SendMessage(chatID int64, text string, markup interface{}) error {
	if fs.failOn[chatID] {
		return fmt.Errorf("chat %v unreachable", chatID)
	}
	fs.sent = append(fs.sent, chatID)
	return nil
}

func TestNotifier_ToClient_SwallowsErrors(t *testing.T) {
	sender := &fakeSender{failOn: map[int64]bool{5: true}}
	roles := role.NewRolesManager(kvstore.NewMemory(), "secret")
	n := NewNotifier(sender, roles, logging.New())

	// ошибка доставки не должна никуда подняться
	n.ToClient(5, "недоставляемое", nil)
	n.ToClient(6, "доставляемое", nil)

	if len(sender.sent) != 1 || sender.sent[0] != 6 {
		t.Errorf("доставлено %v, want [6]", sender.sent)
	}
}

func TestNotifier_ToBanks(t *testing.T) {
	store := kvstore.NewMemory()
	roles := role.NewRolesManager(store, "secret")
	roles.Elevate(10, "secret")
	roles.Elevate(20, "secret")
	roles.Elevate(30, "secret")

	sender := &fakeSender{failOn: map[int64]bool{20: true}}
	n := NewNotifier(sender, roles, logging.New())

	sent := n.ToBanks("новая заявка", nil)
	if sent != 2 {
		t.Errorf("ToBanks() = %v доставок, want 2", sent)
	}
	if len(sender.sent) != 2 {
		t.Errorf("фактических отправок %v, want 2", len(sender.sent))
	}
}

func TestNotifier_ToBanks_NoRecipients(t *testing.T) {
	sender := &fakeSender{}
	roles := role.NewRolesManager(kvstore.NewMemory(), "secret")
	n := NewNotifier(sender, roles, logging.New())

	sent := n.ToBanks("в пустоту", nil)
	if sent != 0 || len(sender.sent) != 0 {
		t.Errorf("рассылка без получателей: sent = %v, отправки = %v", sent, sender.sent)
	}
}
