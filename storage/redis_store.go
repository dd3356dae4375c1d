package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/loganlanou/profiledesk/internal/session"
)

const redisKeyPrefix = "profiledesk:session:"

// saveIfVersion writes ARGV[2] only when the stored record's version equals
// ARGV[1] (0 meaning the key must be absent). ARGV[3] is the TTL in ms.
const saveIfVersion = `
local current = redis.call('GET', KEYS[1])
local expected = tonumber(ARGV[1])
if current then
	if tonumber(cjson.decode(current).version) ~= expected then
		return 0
	end
elseif expected ~= 0 then
	return 0
end
local ttl = tonumber(ARGV[3])
if ttl > 0 then
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ttl)
else
	redis.call('SET', KEYS[1], ARGV[2])
end
return 1
`

// RedisStore keeps session records as JSON values that expire after ttl of
// inactivity. Expiry is left to redis, so it needs no sweeper. Touch only
// extends the key's TTL; the stored updatedAt keeps the last write time.
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
	now    func() time.Time
}

var _ session.Store = (*RedisStore)(nil)

func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *RedisStore) Get(ctx context.Context, id string) (*session.Record, error) {
	raw, err := s.client.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var rec session.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &rec, nil
}

func (s *RedisStore) Save(ctx context.Context, rec *session.Record) error {
	next := rec.Clone()
	next.Version = rec.Version + 1
	next.UpdatedAt = s.now().UTC()

	payload, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	ok, err := s.client.Eval(ctx, saveIfVersion, []string{redisKey(rec.ID)},
		rec.Version, string(payload), s.ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	if ok == 0 {
		return session.ErrVersionConflict
	}

	rec.Version = next.Version
	rec.UpdatedAt = next.UpdatedAt
	return nil
}

func (s *RedisStore) Touch(ctx context.Context, id string) error {
	if s.ttl <= 0 {
		return nil
	}
	if err := s.client.PExpire(ctx, redisKey(id), s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, redisKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func redisKey(id string) string {
	return redisKeyPrefix + id
}
