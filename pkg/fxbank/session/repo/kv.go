package repo

import (
	"encoding/json"
	"strconv"

	"github.com/KeynihAV/fxbank/pkg/fxbank/kvstore"
	sessionPkg "github.com/KeynihAV/fxbank/pkg/fxbank/session"
)

type SessionsRepo struct {
	Store kvstore.Store
}

func NewSessionsRepo(store kvstore.Store) *SessionsRepo {
	return &SessionsRepo{Store: store}
}

// Get возвращает nil без ошибки, если активной сессии нет.
func (sr *SessionsRepo) Get(userID int64) (*sessionPkg.Session, error) {
	data, ok, err := sr.Store.Get(sessionKey(userID))
	if err != nil {
		return nil, err
	}
	if !ok || data == "" {
		return nil, nil
	}

	sess := &sessionPkg.Session{}
	err = json.Unmarshal([]byte(data), sess)
	if err != nil {
		return nil, err
	}
	if sess.Step == "" {
		return nil, nil
	}
	return sess, nil
}

func (sr *SessionsRepo) Put(sess *sessionPkg.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return sr.Store.Set(sessionKey(sess.UserID), string(data))
}

func (sr *SessionsRepo) Clear(userID int64) error {
	return sr.Store.Set(sessionKey(userID), "")
}

func sessionKey(userID int64) string {
	return "sessions_" + strconv.FormatInt(userID, 10)
}
