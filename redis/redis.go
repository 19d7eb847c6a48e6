// Package redis provides the session store and the recent-feed cache.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/vibenet/backend/api"
)

// Redis provides session storage and feed caching in Redis.
type Redis struct {
	cli        *redis.Client
	sessionTTL time.Duration
}

// Connect connects to the Redis server and pings it to ensure the
// connection is working.
func Connect(ctx context.Context, addr string, sessionTTL time.Duration) (*Redis, error) {
	cli := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := cli.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{
		cli:        cli,
		sessionTTL: sessionTTL,
	}, nil
}

const (
	sessionPrefix = "sessions"
	postPrefix    = "posts"
	maxFeedSize   = 20
)

// Create binds a fresh opaque token to email for the session TTL.
func (r *Redis) Create(ctx context.Context, email string) (string, error) {
	token := uuid.NewString()
	key := fmt.Sprintf("%s:%s", sessionPrefix, token)
	if err := r.cli.Set(ctx, key, email, r.sessionTTL).Err(); err != nil {
		return "", fmt.Errorf("set session: %w", err)
	}
	return token, nil
}

// Lookup resolves a token to its email. Unknown or expired tokens resolve
// to the empty string without error.
func (r *Redis) Lookup(ctx context.Context, token string) (string, error) {
	email, err := r.cli.Get(ctx, fmt.Sprintf("%s:%s", sessionPrefix, token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get session: %w", err)
	}
	return email, nil
}

// Destroy removes the token, ending the session.
func (r *Redis) Destroy(ctx context.Context, token string) error {
	if err := r.cli.Del(ctx, fmt.Sprintf("%s:%s", sessionPrefix, token)).Err(); err != nil {
		return fmt.Errorf("del session: %w", err)
	}
	return nil
}

// ListPosts returns the cached feed posts, newest first. The sorted set is
// scored by post id, which is creation order.
func (r *Redis) ListPosts(ctx context.Context) ([]api.Post, error) {
	keys, err := r.cli.ZRevRangeByScore(ctx, postPrefix, &redis.ZRangeBy{
		Min: "-inf",
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("zrevrange: %w", err)
	}

	out := make([]api.Post, 0, len(keys))
	for _, key := range keys {
		var p post
		if err := r.cli.HGetAll(ctx, key).Scan(&p); err != nil {
			return nil, fmt.Errorf("hgetall: %w", err)
		}
		apiPost, err := p.APIPost()
		if err != nil {
			return nil, fmt.Errorf("decode cached post: %w", err)
		}
		out = append(out, apiPost)
	}
	return out, nil
}

// InsertPost adds the post under posts:POST_ID and indexes the key in the
// sorted set, then evicts beyond the cache size.
func (r *Redis) InsertPost(ctx context.Context, p api.Post) error {
	m, err := cachePost(p)
	if err != nil {
		return fmt.Errorf("encode post: %w", err)
	}

	key := postKey(p.ID)
	err = r.cli.Watch(ctx, func(tx *redis.Tx) error {
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, m)
			pipe.ZAdd(ctx, postPrefix, redis.Z{
				Score:  float64(p.ID),
				Member: key,
			})
			return nil
		})
		return err
	}, key)
	if err != nil {
		return fmt.Errorf("redis insert post: %w", err)
	}

	if err := r.evictOldest(ctx); err != nil {
		return fmt.Errorf("evict oldest: %w", err)
	}
	return nil
}

// UpdateReactions refreshes the cached counter map for a post. Posts not
// in the cache are left alone.
func (r *Redis) UpdateReactions(ctx context.Context, postID int64, reactions map[string]int) error {
	key := postKey(postID)
	n, err := r.cli.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("exists: %w", err)
	}
	if n == 0 {
		return nil
	}
	encoded, err := encodeReactions(reactions)
	if err != nil {
		return fmt.Errorf("encode reactions: %w", err)
	}
	if err := r.cli.HSet(ctx, key, "reactions", encoded).Err(); err != nil {
		return fmt.Errorf("hset reactions: %w", err)
	}
	return nil
}

// RemovePost drops a post from the cache.
func (r *Redis) RemovePost(ctx context.Context, postID int64) error {
	key := postKey(postID)
	if err := r.cli.ZRem(ctx, postPrefix, key).Err(); err != nil {
		return fmt.Errorf("zrem: %w", err)
	}
	if err := r.cli.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("del: %w", err)
	}
	return nil
}

func postKey(postID int64) string {
	return fmt.Sprintf("%s:%d", postPrefix, postID)
}

func (r *Redis) evictOldest(ctx context.Context) error {
	keys, err := r.cli.ZRange(ctx, postPrefix, 0, int64(-maxFeedSize-1)).Result()
	if err != nil {
		return fmt.Errorf("zrange: %w", err)
	}
	for _, key := range keys {
		_ = r.cli.ZRem(ctx, postPrefix, key).Err()
		_ = r.cli.Del(ctx, key).Err()
	}
	return nil
}
