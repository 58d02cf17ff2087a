package orphan

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"idgate/pkg/platform/sentinel"
)

// DefaultRedisKey is the hash holding the ledger, keyed by profile id.
const DefaultRedisKey = "idgate:orphaned_profiles"

// RedisStore keeps the ledger in a Redis hash so it survives restarts and is
// shared by all gateway replicas.
type RedisStore struct {
	client redis.Cmdable
	key    string
}

func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client, key: DefaultRedisKey}
}

func (s *RedisStore) Record(ctx context.Context, rec Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode orphan record: %w", err)
	}
	if err := s.client.HSet(ctx, s.key, rec.ProfileID, payload).Err(); err != nil {
		return fmt.Errorf("record orphan %s: %w", rec.ProfileID, err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]Record, error) {
	raw, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("list orphans: %w", err)
	}
	out := make([]Record, 0, len(raw))
	for id, payload := range raw {
		var rec Record
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, fmt.Errorf("decode orphan %s: %w", id, err)
		}
		out = append(out, rec)
	}
	sortRecords(out)
	return out, nil
}

func (s *RedisStore) Delete(ctx context.Context, profileID string) error {
	n, err := s.client.HDel(ctx, s.key, profileID).Result()
	if err != nil {
		return fmt.Errorf("delete orphan %s: %w", profileID, err)
	}
	if n == 0 {
		return fmt.Errorf("orphan %s: %w", profileID, sentinel.ErrNotFound)
	}
	return nil
}
