package persist

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Snapshotter backed by a single Redis key per exchange
// name, the same write-whole-blob/read-whole-blob shape as ATMX's
// CachedStore market-state caching, minus the read-through layer since
// here Redis is the primary, not a cache.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(addr string) *RedisStore {
	return &RedisStore{rdb: redis.NewClient(&redis.Options{Addr: addr})}
}

func (r *RedisStore) Save(ctx context.Context, name string, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, snapshotKey(name), data, 0).Err()
}

func (r *RedisStore) Load(ctx context.Context, name string) (Snapshot, bool, error) {
	data, err := r.rdb.Get(ctx, snapshotKey(name)).Bytes()
	if err == redis.Nil {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, err
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, false, err
	}
	return snap, true, nil
}

func (r *RedisStore) Delete(ctx context.Context, name string) error {
	return r.rdb.Del(ctx, snapshotKey(name)).Err()
}

func snapshotKey(name string) string {
	return fmt.Sprintf("exchange:%s:snapshot", name)
}
