package kvstore

import (
	"time"

	"github.com/gomodule/redigo/redis"
)

type RedisStore struct {
	pool *redis.Pool
}

func NewRedis(addr string) (*RedisStore, error) {
	pool := &redis.Pool{
		MaxIdle:     3,
		IdleTimeout: 240 * time.Second,
		Dial: func() (redis.Conn, error) {
			return redis.DialURL(addr)
		},
	}

	conn := pool.Get()
	defer conn.Close()
	_, err := conn.Do("PING")
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &RedisStore{pool: pool}, nil
}

func (rs *RedisStore) Get(key string) (string, bool, error) {
	conn := rs.pool.Get()
	defer conn.Close()

	data, err := redis.String(conn.Do("GET", key))
	if err == redis.ErrNil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return data, true, nil
}

func (rs *RedisStore) Set(key string, value string) error {
	conn := rs.pool.Get()
	defer conn.Close()

	_, err := redis.String(conn.Do("SET", key, value))
	return err
}

func (rs *RedisStore) Incr(key string) (int64, error) {
	conn := rs.pool.Get()
	defer conn.Close()

	return redis.Int64(conn.Do("INCR", key))
}

func (rs *RedisStore) AddToSet(key string, member string) error {
	conn := rs.pool.Get()
	defer conn.Close()

	_, err := conn.Do("SADD", key, member)
	return err
}

func (rs *RedisStore) RemoveFromSet(key string, member string) error {
	conn := rs.pool.Get()
	defer conn.Close()

	_, err := conn.Do("SREM", key, member)
	return err
}

func (rs *RedisStore) Members(key string) ([]string, error) {
	conn := rs.pool.Get()
	defer conn.Close()

	members, err := redis.Strings(conn.Do("SMEMBERS", key))
	if err == redis.ErrNil {
		return nil, nil
	}
	return members, err
}
