package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLocked is returned by Acquire while another holder owns the key.
var ErrLocked = errors.New("redis: lock is held by another run")

// releaseScript deletes the key only when it still carries our token, so an
// expired lock taken over by another run is left alone.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// LockStore is the subset of *redis.Client the lock needs.
type LockStore interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// Lock is a single-holder lease on a key with a TTL.
type Lock struct {
	store LockStore
	key   string
	token string
}

// Acquire takes key for ttl. The lease expires on its own if the holder dies.
func Acquire(ctx context.Context, store LockStore, key string, ttl time.Duration) (*Lock, error) {
	token := uuid.NewString()
	ok, err := store.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: acquire %s: %w", key, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, key)
	}
	return &Lock{store: store, key: key, token: token}, nil
}

func (l *Lock) Key() string { return l.key }

// Release gives the key up. Releasing a lease that already expired is not an
// error.
func (l *Lock) Release(ctx context.Context) error {
	if err := l.store.Eval(ctx, releaseScript, []string{l.key}, l.token).Err(); err != nil {
		return fmt.Errorf("redis: release %s: %w", l.key, err)
	}
	return nil
}
