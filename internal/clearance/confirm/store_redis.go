package confirm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"portflow/internal/clearance/models"
)

const approvalKeyPrefix = "confirm:pending:"

// RedisStore is the distributed approval store. Redis TTL is the expiry
// mechanism: an expired key simply vanishes, reverting the action to its
// not-yet-requested condition.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(caseID string, action models.ActionKind) string {
	return approvalKeyPrefix + caseID + ":" + string(action)
}

func (s *RedisStore) Get(ctx context.Context, caseID string, action models.ActionKind) (Record, bool, error) {
	raw, err := s.client.Get(ctx, redisKey(caseID, action)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("get approval record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, false, fmt.Errorf("decode approval record: %w", err)
	}
	return rec, true, nil
}

func (s *RedisStore) Put(ctx context.Context, record Record, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("approval record TTL must be positive")
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode approval record: %w", err)
	}
	if err := s.client.Set(ctx, redisKey(record.CaseID, record.Action), raw, ttl).Err(); err != nil {
		return fmt.Errorf("put approval record: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, caseID string, action models.ActionKind) error {
	if err := s.client.Del(ctx, redisKey(caseID, action)).Err(); err != nil {
		return fmt.Errorf("delete approval record: %w", err)
	}
	return nil
}
