package registry

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/chartdir/pkg/cache"
	"github.com/matzehuels/chartdir/pkg/chart"
	"github.com/matzehuels/chartdir/pkg/errors"
)

// maxTxRetries bounds optimistic transaction retries on contended keys.
const maxTxRetries = 5

// RedisStore keeps handles in Redis so several hosts share them. Each
// handle is a JSON value with a TTL backstop; the sweep normally reclaims
// idle handles before Redis expires them.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisStore checks the connection and returns a store using keys under
// prefix. A positive ttl is set on every write. The store does not own
// the client.
func NewRedisStore(ctx context.Context, client redis.UniversalClient, prefix string, ttl time.Duration) (*RedisStore, error) {
	err := cache.RetryWithBackoff(ctx, func() error {
		if err := client.Ping(ctx).Err(); err != nil {
			return cache.Retryable(stderrors.Join(cache.ErrNetwork, err))
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connect to redis")
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}, nil
}

func (s *RedisStore) key(id uint64) string {
	return s.prefix + "chart:" + strconv.FormatUint(id, 10)
}

func (s *RedisStore) expiry() time.Duration {
	if s.ttl < 0 {
		return 0
	}
	return s.ttl
}

func decodeRecord(data []byte) (*record, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "parse chart")
	}
	return &rec, nil
}

// watch runs fn in an optimistic transaction on key, retrying when another
// client changed the key first.
func (s *RedisStore) watch(ctx context.Context, key string, fn func(*redis.Tx) error) error {
	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, fn, key)
		if stderrors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return errors.New(errors.ErrCodeStore, "chart %s changed concurrently", key)
}

func (s *RedisStore) Create(ctx context.Context, c *chart.Chart, now time.Time) (uint64, error) {
	n, err := s.client.Incr(ctx, s.prefix+"seq").Uint64()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeStore, err, "allocate chart id")
	}
	data, err := json.Marshal(&record{ID: n, AccessTime: now, Chart: c})
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeStore, err, "marshal chart %d", n)
	}
	if err := s.client.Set(ctx, s.key(n), data, s.expiry()).Err(); err != nil {
		return 0, errors.Wrap(errors.ErrCodeStore, err, "store chart %d", n)
	}
	return n, nil
}

func (s *RedisStore) Update(ctx context.Context, id uint64, now time.Time, fn func(*chart.Chart) error) error {
	key := s.key(id)
	var ferr error
	err := s.watch(ctx, key, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if stderrors.Is(err, redis.Nil) {
			return ErrChartNotFound()
		}
		if err != nil {
			return errors.Wrap(errors.ErrCodeStore, err, "load chart %d", id)
		}
		rec, err := decodeRecord(data)
		if err != nil {
			return err
		}
		rec.AccessTime = now
		ferr = fn(rec.Chart)
		out, err := json.Marshal(rec)
		if err != nil {
			return errors.Wrap(errors.ErrCodeStore, err, "marshal chart %d", id)
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, out, s.expiry())
			return nil
		})
		return err
	})
	if err != nil {
		return err
	}
	return ferr
}

func (s *RedisStore) Delete(ctx context.Context, id uint64) error {
	n, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "remove chart %d", id)
	}
	if n == 0 {
		return ErrChartNotFound()
	}
	return nil
}

// keys returns the ids of every stored handle.
func (s *RedisStore) keys(ctx context.Context) ([]uint64, error) {
	prefix := s.prefix + "chart:"
	var ids []uint64
	iter := s.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		id, err := strconv.ParseUint(strings.TrimPrefix(iter.Val(), prefix), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "scan charts")
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *RedisStore) List(ctx context.Context) ([]Entry, error) {
	ids, err := s.keys(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(ids))
	for _, id := range ids {
		data, err := s.client.Get(ctx, s.key(id)).Bytes()
		if err != nil {
			continue
		}
		rec, err := decodeRecord(data)
		if err != nil {
			continue
		}
		out = append(out, Entry{ID: rec.ID, AccessTime: rec.AccessTime})
	}
	return out, nil
}

func (s *RedisStore) Sweep(ctx context.Context, cutoff time.Time) ([]uint64, error) {
	ids, err := s.keys(ctx)
	if err != nil {
		return nil, err
	}
	var reclaimed []uint64
	for _, id := range ids {
		key := s.key(id)
		removed := false
		err := s.watch(ctx, key, func(tx *redis.Tx) error {
			removed = false
			data, err := tx.Get(ctx, key).Bytes()
			if stderrors.Is(err, redis.Nil) {
				return nil
			}
			if err != nil {
				return err
			}
			rec, err := decodeRecord(data)
			if err != nil || !rec.AccessTime.Before(cutoff) {
				return nil
			}
			_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
				p.Del(ctx, key)
				return nil
			})
			removed = err == nil
			return err
		})
		if err != nil {
			return reclaimed, errors.Wrap(errors.ErrCodeStore, err, "sweep chart %d", id)
		}
		if removed {
			reclaimed = append(reclaimed, id)
		}
	}
	return reclaimed, nil
}

// Close does nothing; the client belongs to the caller.
func (s *RedisStore) Close() error { return nil }

var _ Store = (*RedisStore)(nil)
