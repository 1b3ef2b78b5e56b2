package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"videotube/internal/model"
)

// ChannelCachePrefix is the key prefix for cached channel profiles
const ChannelCachePrefix = "channel:profile:"

// ChannelCache stores the viewer-independent part of channel profiles.
type ChannelCache interface {
	// Get returns model.ErrCacheMiss when no entry exists.
	Get(ctx context.Context, username string) (*model.ChannelProfile, error)
	// Set stores the profile with IsSubscribed cleared.
	Set(ctx context.Context, profile *model.ChannelProfile) error
	Invalidate(ctx context.Context, usernames ...string) error
}

type redisChannelCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisChannelCache(client *redis.Client, ttl time.Duration) ChannelCache {
	return &redisChannelCache{client: client, ttl: ttl}
}

func channelKey(username string) string {
	return ChannelCachePrefix + username
}

func (c *redisChannelCache) Get(ctx context.Context, username string) (*model.ChannelProfile, error) {
	data, err := c.client.Get(ctx, channelKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrCacheMiss
		}
		return nil, fmt.Errorf("get channel profile: %w", err)
	}

	return decodeProfile(data)
}

func (c *redisChannelCache) Set(ctx context.Context, profile *model.ChannelProfile) error {
	data, err := encodeProfile(profile)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, channelKey(profile.Username), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set channel profile: %w", err)
	}
	return nil
}

func (c *redisChannelCache) Invalidate(ctx context.Context, usernames ...string) error {
	if len(usernames) == 0 {
		return nil
	}
	keys := make([]string, 0, len(usernames))
	for _, u := range usernames {
		keys = append(keys, channelKey(u))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate channel profiles: %w", err)
	}
	return nil
}

// encodeProfile serialises the viewer-independent part of profile.
func encodeProfile(profile *model.ChannelProfile) ([]byte, error) {
	stored := *profile
	stored.IsSubscribed = false

	data, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("encode channel profile: %w", err)
	}
	return data, nil
}

func decodeProfile(data []byte) (*model.ChannelProfile, error) {
	var p model.ChannelProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode channel profile: %w", err)
	}
	return &p, nil
}

// NopChannelCache is used when Redis is not configured.
type NopChannelCache struct{}

func (NopChannelCache) Get(context.Context, string) (*model.ChannelProfile, error) {
	return nil, model.ErrCacheMiss
}

func (NopChannelCache) Set(context.Context, *model.ChannelProfile) error { return nil }

func (NopChannelCache) Invalidate(context.Context, ...string) error { return nil }
