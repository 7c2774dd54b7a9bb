package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key patterns for live match state.
func snapshotKey(matchID string) string   { return "match:" + matchID + ":snapshot" }
func focusKey(matchID string) string      { return "match:" + matchID + ":focus" }
func eventsChannel(matchID string) string { return "match:" + matchID + ":events" }

// liveTTL bounds how long state of an abandoned match lingers.
const liveTTL = time.Hour

// SetSnapshot stores the latest snapshot JSON of a running match.
func (c *Client) SetSnapshot(ctx context.Context, matchID string, snap json.RawMessage) error {
	return c.rdb.Set(ctx, snapshotKey(matchID), []byte(snap), liveTTL).Err()
}

// GetSnapshot retrieves the latest snapshot JSON, or nil if none is stored.
func (c *Client) GetSnapshot(ctx context.Context, matchID string) (json.RawMessage, error) {
	data, err := c.rdb.Get(ctx, snapshotKey(matchID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return json.RawMessage(data), nil
}

// SetFocus replaces the focus table (target id -> attacker count) of a match.
func (c *Client) SetFocus(ctx context.Context, matchID string, counts map[string]int) error {
	key := focusKey(matchID)
	pipe := c.rdb.TxPipeline()
	pipe.Del(ctx, key)
	if len(counts) > 0 {
		fields := make(map[string]any, len(counts))
		for k, v := range counts {
			fields[k] = v
		}
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, liveTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("set focus: %w", err)
	}
	return nil
}

// GetFocus returns the focus table of a match. A missing table is empty.
func (c *Client) GetFocus(ctx context.Context, matchID string) (map[string]int, error) {
	raw, err := c.rdb.HGetAll(ctx, focusKey(matchID)).Result()
	if err != nil {
		return nil, fmt.Errorf("get focus: %w", err)
	}
	out := make(map[string]int, len(raw))
	for k, v := range raw {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("focus %s: %w", k, err)
		}
		out[k] = n
	}
	return out, nil
}

// Publish broadcasts a match event to every subscriber.
func (c *Client) Publish(ctx context.Context, matchID string, event json.RawMessage) error {
	return c.rdb.Publish(ctx, eventsChannel(matchID), []byte(event)).Err()
}

// Subscribe streams events of a match until ctx is cancelled.
func (c *Client) Subscribe(ctx context.Context, matchID string) (<-chan json.RawMessage, error) {
	pubsub := c.rdb.Subscribe(ctx, eventsChannel(matchID))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	out := make(chan json.RawMessage, 16)
	go func() {
		defer close(out)
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- json.RawMessage(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// DeleteMatchData removes all live Redis data for a match (on match end).
func (c *Client) DeleteMatchData(ctx context.Context, matchID string) error {
	return c.rdb.Del(ctx, snapshotKey(matchID), focusKey(matchID)).Err()
}
