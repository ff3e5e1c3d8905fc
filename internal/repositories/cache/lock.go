package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrLockNotHeld = errors.New("lock was not held or already expired")

// LockHandle releases a lock obtained from TryLock.
type LockHandle interface {
	Unlock(ctx context.Context) error
}

// Locker hands out non-blocking exclusive locks by key.
type Locker interface {
	// TryLock makes a single attempt. acquired is false, with a nil error,
	// when somebody else holds the lock.
	TryLock(ctx context.Context, key string) (handle LockHandle, acquired bool, err error)
}

// RedisLockManager is a Locker shared by every process connected to the same Redis.
type RedisLockManager struct {
	redsync *redsync.Redsync
	expiry  time.Duration
	log     *zap.Logger
}

func NewRedisLockManager(client *redis.Client, expiry time.Duration, log *zap.Logger) *RedisLockManager {
	if expiry <= 0 {
		expiry = 10 * time.Second
	}
	return &RedisLockManager{
		redsync: redsync.New(goredis.NewPool(client)),
		expiry:  expiry,
		log:     log,
	}
}

func (m *RedisLockManager) TryLock(ctx context.Context, key string) (LockHandle, bool, error) {
	mutex := m.redsync.NewMutex(key,
		redsync.WithExpiry(m.expiry),
		redsync.WithTries(1),
	)

	if err := mutex.LockContext(ctx); err != nil {
		if isContention(err) {
			m.log.Debug("lock already held", zap.String("lock_key", key))
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to attempt lock acquisition for %s: %w", key, err)
	}

	m.log.Debug("lock acquired", zap.String("lock_key", key))
	return &redisLockHandle{mutex: mutex, log: m.log}, true, nil
}

func isContention(err error) bool {
	var taken *redsync.ErrTaken
	if errors.Is(err, redsync.ErrFailed) || errors.As(err, &taken) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "lock already taken") || strings.Contains(msg, "failed to acquire lock")
}

type redisLockHandle struct {
	mutex *redsync.Mutex
	log   *zap.Logger
}

func (h *redisLockHandle) Unlock(ctx context.Context) error {
	ok, err := h.mutex.UnlockContext(ctx)
	if err != nil {
		h.log.Error("failed to release lock", zap.String("lock_key", h.mutex.Name()), zap.Error(err))
		return fmt.Errorf("unlock %s: %w", h.mutex.Name(), err)
	}
	if !ok {
		h.log.Warn("lock was not held or already expired", zap.String("lock_key", h.mutex.Name()))
		return ErrLockNotHeld
	}
	return nil
}

// LocalLocker is the single-process Locker used when Redis is disabled.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: map[string]bool{}}
}

func (l *LocalLocker) TryLock(ctx context.Context, key string) (LockHandle, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, false, nil
	}
	l.held[key] = true
	return &localLockHandle{owner: l, key: key}, true, nil
}

type localLockHandle struct {
	owner *LocalLocker
	key   string
	once  sync.Once
}

func (h *localLockHandle) Unlock(context.Context) error {
	released := false
	h.once.Do(func() {
		h.owner.mu.Lock()
		delete(h.owner.held, h.key)
		h.owner.mu.Unlock()
		released = true
	})
	if !released {
		return ErrLockNotHeld
	}
	return nil
}
