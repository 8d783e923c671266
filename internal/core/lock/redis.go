package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisLocker holds a lease on "<Prefix><key>" via SET NX PX. The lease expires
// after TTL so a crashed holder cannot wedge the key.
type RedisLocker struct {
	RDB    *redis.Client
	Prefix string
	TTL    time.Duration
	Retry  time.Duration
	Log    *zap.Logger
}

func NewRedisLocker(rdb *redis.Client, prefix string, ttl time.Duration, l *zap.Logger) *RedisLocker {
	return &RedisLocker{RDB: rdb, Prefix: prefix, TTL: ttl, Retry: 25 * time.Millisecond, Log: l}
}

func (r *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	k := r.Prefix + key
	token := uuid.NewString()
	t := time.NewTicker(r.Retry)
	defer t.Stop()
	for {
		ok, err := r.RDB.SetNX(ctx, k, token, r.TTL).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}
	return func() {
		// release on a fresh context: the caller's may already be cancelled
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, r.RDB, []string{k}, token).Err(); err != nil && r.Log != nil {
			r.Log.Warn("release redis lock", zap.String("key", k), zap.Error(err))
		}
	}, nil
}
