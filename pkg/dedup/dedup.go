// Package dedup provides replay suppression for inbound messages keyed
// by their provider message id.
package dedup

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/grovekeep/grove/pkg/errx"
)

// DefaultTTL bounds how long a seen message id is remembered.
const DefaultTTL = 24 * time.Hour

const keyPrefix = "grove:seen:"

// Filter remembers message ids it has seen so duplicate webhook
// deliveries can be dropped.
type Filter struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewFilter creates a filter with the default retention window.
func NewFilter(rdb *redis.Client) *Filter {
	return &Filter{rdb: rdb, ttl: DefaultTTL}
}

// NewFilterWithTTL creates a filter with a custom retention window.
func NewFilterWithTTL(rdb *redis.Client, ttl time.Duration) *Filter {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Filter{rdb: rdb, ttl: ttl}
}

// IsNew atomically records the message id and reports whether it was
// seen for the first time. An empty id is always treated as new since
// there is nothing to key on.
func (f *Filter) IsNew(ctx context.Context, messageID string) (bool, error) {
	if messageID == "" {
		return true, nil
	}

	ok, err := f.rdb.SetNX(ctx, keyPrefix+messageID, 1, f.ttl).Result()
	if err != nil {
		return false, errx.Wrap(err, "dedup check failed", errx.TypeExternal)
	}
	return ok, nil
}

// Forget drops a message id so it can be processed again.
func (f *Filter) Forget(ctx context.Context, messageID string) error {
	if messageID == "" {
		return nil
	}
	if err := f.rdb.Del(ctx, keyPrefix+messageID).Err(); err != nil {
		return errx.Wrap(err, "dedup forget failed", errx.TypeExternal)
	}
	return nil
}
