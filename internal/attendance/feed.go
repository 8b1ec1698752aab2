package attendance

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// FeedKey is the redis list holding the most recent attendance records,
// newest first. The feed worker writes it; kiosks and the API read it so
// the recent-attendance table updates without hitting Postgres per poll.
const FeedKey = "attendance:latest"

// Feed is the capped recent-attendance list in redis.
type Feed struct {
	client *redis.Client
	key    string
	cap    int64
}

// NewFeed creates a feed capped at size entries.
func NewFeed(client *redis.Client, key string, size int) *Feed {
	if key == "" {
		key = FeedKey
	}
	if size <= 0 {
		size = 10
	}
	return &Feed{client: client, key: key, cap: int64(size)}
}

// Push prepends a record and trims the list to capacity.
func (f *Feed) Push(ctx context.Context, rec Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	pipe := f.client.TxPipeline()
	pipe.LPush(ctx, f.key, b)
	pipe.LTrim(ctx, f.key, 0, f.cap-1)
	_, err = pipe.Exec(ctx)
	return err
}

// Latest returns up to n records, newest first. Corrupt entries are
// skipped rather than failing the read.
func (f *Feed) Latest(ctx context.Context, n int) ([]Record, error) {
	if n <= 0 || int64(n) > f.cap {
		n = int(f.cap)
	}
	vals, err := f.client.LRange(ctx, f.key, 0, int64(n)-1).Result()
	if err != nil {
		return nil, err
	}
	res := make([]Record, 0, len(vals))
	for _, v := range vals {
		var rec Record
		if err := json.Unmarshal([]byte(v), &rec); err != nil {
			continue
		}
		res = append(res, rec)
	}
	return res, nil
}
