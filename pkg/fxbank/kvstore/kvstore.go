package kvstore

import (
	"github.com/KeynihAV/fxbank/pkg/logging"
	"go.uber.org/zap"
)

// Store - строковое key-value хранилище с множествами и счетчиками.
// Ошибки рабочего режима поднимаются наверх, вызывающий логирует и отвечает
// пользователю общей ошибкой.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key string, value string) error
	Incr(key string) (int64, error)
	AddToSet(key string, member string) error
	RemoveFromSet(key string, member string) error
	Members(key string) ([]string, error)
}

// New выбирает бэкенд один раз на старте: redis если адрес задан и PING прошел,
// иначе карта в памяти. Выбор не пересматривается до конца жизни процесса.
func New(addr string, logger *logging.Logger) Store {
	if addr == "" {
		logger.Zap.Warn("redis addr is empty, using in-memory store",
			zap.String("logger", "kvstore"))
		return NewMemory()
	}

	rs, err := NewRedis(addr)
	if err != nil {
		logger.Zap.Warn("redis is not reachable, using in-memory store",
			zap.String("logger", "kvstore"),
			zap.String("addr", addr),
			zap.String("err", err.Error()))
		return NewMemory()
	}

	logger.Zap.Info("using redis store",
		zap.String("logger", "kvstore"),
		zap.String("addr", addr))
	return rs
}
