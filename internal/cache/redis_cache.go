package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RedisLog struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisLog(rdb *redis.Client, ttl time.Duration) *RedisLog {
	return &RedisLog{rdb: rdb, ttl: ttl}
}

type sentValue struct {
	ID     string    `json:"id"`
	Day    int       `json:"day"`
	SentAt time.Time `json:"sentAt"`
}

func (c *RedisLog) StoreSent(ctx context.Context, email string, day int, sentAt time.Time) error {
	key := fmt.Sprintf("drip:sent:%s", email)
	val := sentValue{
		ID:     uuid.NewString(),
		Day:    day,
		SentAt: sentAt.UTC(),
	}

	b, err := json.Marshal(val)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, key, b, c.ttl).Err()
}
