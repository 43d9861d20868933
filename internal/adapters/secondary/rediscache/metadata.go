package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"checkpoint-registry-service/internal/core/ports/output"
)

// RepoInfoCache keeps hub repository metadata in Redis with a TTL, so
// repeated plan/status calls against the same repository do not hammer the
// hub API.
type RepoInfoCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRepoInfoCache(client *redis.Client, ttl time.Duration) ports.RepoInfoCache {
	return &RepoInfoCache{client: client, ttl: ttl}
}

func key(repoID, revision string) string {
	return fmt.Sprintf("hub:repo:%s@%s", repoID, revision)
}

func (c *RepoInfoCache) Get(ctx context.Context, repoID, revision string) (*ports.RepoInfo, error) {
	data, err := c.client.Get(ctx, key(repoID, revision)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get repo info: %w", err)
	}

	var info ports.RepoInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("unmarshal cached repo info: %w", err)
	}
	return &info, nil
}

func (c *RepoInfoCache) Set(ctx context.Context, repoID, revision string, info *ports.RepoInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("marshal repo info: %w", err)
	}
	if err := c.client.Set(ctx, key(repoID, revision), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set repo info: %w", err)
	}
	return nil
}
