package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Event kinds published by the ledger.
const (
	KindRecruited = "gangster_recruited"
	KindRemoved   = "gangster_removed"
	KindPosted    = "contract_posted"
	KindScrapped  = "contract_scrapped"
	KindAssigned  = "contract_assigned"
)

// Event is one entry of the activity feed.
type Event struct {
	ID         string         `json:"id"`
	Kind       string         `json:"kind"`
	Detail     map[string]any `json:"detail,omitempty"`
	RecordedAt time.Time      `json:"recorded_at"`
}

// RedisFeed keeps the most recent ledger events in a capped Redis list,
// newest first.
type RedisFeed struct {
	client *redis.Client
	key    string
	maxLen int64
	now    func() time.Time
}

// NewRedisFeed builds a feed writing to key, trimmed to maxLen entries.
func NewRedisFeed(client *redis.Client, key string, maxLen int64) *RedisFeed {
	if key == "" {
		key = "ledger:feed"
	}
	if maxLen <= 0 {
		maxLen = 100
	}
	return &RedisFeed{
		client: client,
		key:    key,
		maxLen: maxLen,
		now:    time.Now,
	}
}

// Publish pushes an event and trims the list in one transaction.
func (f *RedisFeed) Publish(ctx context.Context, kind string, detail map[string]any) (Event, error) {
	ev := Event{
		ID:         uuid.New().String(),
		Kind:       kind,
		Detail:     detail,
		RecordedAt: f.now().UTC(),
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		return Event{}, fmt.Errorf("marshal event: %w", err)
	}
	pipe := f.client.TxPipeline()
	pipe.LPush(ctx, f.key, raw)
	pipe.LTrim(ctx, f.key, 0, f.maxLen-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return Event{}, fmt.Errorf("publish event: %w", err)
	}
	return ev, nil
}

// Recent reads up to count events, newest first.
func (f *RedisFeed) Recent(ctx context.Context, count int64) ([]Event, error) {
	if count <= 0 || count > f.maxLen {
		count = f.maxLen
	}
	items, err := f.client.LRange(ctx, f.key, 0, count-1).Result()
	if err == redis.Nil {
		return []Event{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}
	out := make([]Event, 0, len(items))
	for _, item := range items {
		var ev Event
		if err := json.Unmarshal([]byte(item), &ev); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
		out = append(out, ev)
	}
	return out, nil
}

// Len returns the number of retained events.
func (f *RedisFeed) Len(ctx context.Context) (int64, error) {
	return f.client.LLen(ctx, f.key).Result()
}
