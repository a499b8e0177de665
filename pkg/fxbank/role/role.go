package role

import (
	"fmt"
	"strconv"

	"github.com/KeynihAV/fxbank/pkg/fxbank/kvstore"
)

const (
	Client = "client"
	Bank   = "bank"
)

const (
	roleKey      = "roles_"
	bankUsersKey = "bank_users"
)

var ErrBadPassword = fmt.Errorf("неверный пароль")

// RolesManager - простая пометка client/bank на пользователе.
// Банковские chatID дополнительно копятся в множестве для рассылки.
type RolesManager struct {
	store    kvstore.Store
	password string
}

func NewRolesManager(store kvstore.Store, password string) *RolesManager {
	return &RolesManager{store: store, password: password}
}

// Role считает любого неизвестного пользователя клиентом.
func (rm *RolesManager) Role(userID int64) (string, error) {
	value, ok, err := rm.store.Get(roleKey + strconv.FormatInt(userID, 10))
	if err != nil {
		return "", err
	}
	if !ok || value == "" {
		return Client, nil
	}
	return value, nil
}

// Elevate повышает пользователя до банка по общему паролю.
// При неверном пароле состояние не меняется.
func (rm *RolesManager) Elevate(userID int64, secret string) error {
	if rm.password == "" || secret != rm.password {
		return ErrBadPassword
	}

	err := rm.store.Set(roleKey+strconv.FormatInt(userID, 10), Bank)
	if err != nil {
		return err
	}
	return rm.store.AddToSet(bankUsersKey, strconv.FormatInt(userID, 10))
}

// BankUsers - все известные банковские пользователи, адресаты рассылки.
func (rm *RolesManager) BankUsers() ([]int64, error) {
	members, err := rm.store.Members(bankUsersKey)
	if err != nil {
		return nil, err
	}

	users := make([]int64, 0, len(members))
	for _, member := range members {
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			continue
		}
		users = append(users, id)
	}
	return users, nil
}
