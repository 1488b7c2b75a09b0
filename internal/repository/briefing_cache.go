package repository

import (
	"coinbrief_backend/internal/model"
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
)

const briefingKeyPrefix = "briefing:"

// RedisBriefingCache 简报读缓存，数据库仍是唯一真实来源
type RedisBriefingCache struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewRedisBriefingCache(rdb *redis.Client, ttl time.Duration) *RedisBriefingCache {
	return &RedisBriefingCache{Redis: rdb, TTL: ttl}
}

// Get 未命中返回 nil, nil
func (c *RedisBriefingCache) Get(ctx context.Context, slug string) (*model.Briefing, error) {
	val, err := c.Redis.Get(ctx, briefingKeyPrefix+slug).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var briefing model.Briefing
	if err := json.Unmarshal(val, &briefing); err != nil {
		return nil, err
	}
	return &briefing, nil
}

func (c *RedisBriefingCache) Set(ctx context.Context, briefing *model.Briefing) error {
	data, err := json.Marshal(briefing)
	if err != nil {
		return err
	}
	return c.Redis.Set(ctx, briefingKeyPrefix+briefing.Article.Slug, data, c.TTL).Err()
}

func (c *RedisBriefingCache) Invalidate(ctx context.Context, slug string) error {
	return c.Redis.Del(ctx, briefingKeyPrefix+slug).Err()
}
