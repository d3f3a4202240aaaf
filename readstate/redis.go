package readstate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "notifications:read:"

// RedisStore keeps one set per team: notifications:read:<teamId>.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisStore wraps an existing client. ttl > 0 refreshes the key expiry on every write.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Dial creates a client and checks the connection.
func Dial(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return rdb, nil
}

func key(teamID string) string {
	return keyPrefix + teamID
}

func (s *RedisStore) MarkRead(ctx context.Context, teamID string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	members := make([]interface{}, len(ids))
	for i, id := range ids {
		members[i] = id
	}

	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, key(teamID), members...)
	if s.ttl > 0 {
		pipe.Expire(ctx, key(teamID), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to mark notifications read for team %s: %w", teamID, err)
	}
	return nil
}

func (s *RedisStore) ReadIDs(ctx context.Context, teamID string) (map[string]bool, error) {
	ids, err := s.client.SMembers(ctx, key(teamID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load read notifications for team %s: %w", teamID, err)
	}
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
