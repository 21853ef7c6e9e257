// Package lock serializza le richieste che modificano la rosa di uno stesso utente.
package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrMissingKey indica chiave o token vuoti in Release.
var ErrMissingKey = errors.New("key and token are required")

// Manager gestisce l'acquisizione e il rilascio di lock per chiave.
type Manager interface {
	Acquire(ctx context.Context, key string) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) error
}

// RosterKey e' la chiave di lock della rosa di un utente.
func RosterKey(userID string) string {
	return "lock:roster:" + userID
}

// RedisLock implementa un lock distribuito basato su Redis, per piu' istanze del servizio.
type RedisLock struct {
	client  *redis.Client
	ttl     time.Duration
	retries int
	backoff time.Duration
}

func NewRedisLock(client *redis.Client, ttl time.Duration, retries int, backoff time.Duration) *RedisLock {
	// TTL breve evita lock orfani in caso di crash.
	return &RedisLock{
		client:  client,
		ttl:     ttl,
		retries: retries,
		backoff: backoff,
	}
}

func (l *RedisLock) Acquire(ctx context.Context, key string) (string, bool, error) {
	token := newToken()
	for attempt := 0; attempt <= l.retries; attempt++ {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return "", false, err
		}
		if ok {
			return token, true, nil
		}
		if attempt < l.retries {
			if err := sleep(ctx, l.backoff); err != nil {
				return "", false, err
			}
		}
	}
	return "", false, nil
}

func (l *RedisLock) Release(ctx context.Context, key, token string) error {
	if key == "" || token == "" {
		return ErrMissingKey
	}
	return releaseLua.Run(ctx, l.client, []string{key}, token).Err()
}

// Cancella la chiave solo se il token e' ancora il nostro.
var releaseLua = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

func newToken() string {
	return uuid.NewString()
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
