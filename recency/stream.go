package recency

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"blogforge/apperrors"
)

// entryField is the stream field the JSON payload is stored under.
const entryField = "entry"

// StreamIndex implements Index on a Redis stream. XADD supplies the
// token, XDEL removes by token, XREVRANGE serves the reverse range read.
// The stream is trimmed to a fixed capacity on every insert, which is
// what keeps the index "most recent N" by convention.
type StreamIndex struct {
	client *redis.Client
	key    string
	maxLen int64
}

func NewStreamIndex(client *redis.Client, key string, maxLen int64) *StreamIndex {
	return &StreamIndex{client: client, key: key, maxLen: maxLen}
}

func (s *StreamIndex) Insert(ctx context.Context, e Entry) (string, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("marshal recency entry: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: s.key,
		Values: map[string]any{entryField: string(payload)},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}

	token, err := s.client.XAdd(ctx, args).Result()
	if err != nil {
		return "", &apperrors.ExternalServiceError{Service: "redis", Op: "xadd", Err: err}
	}
	return token, nil
}

func (s *StreamIndex) Delete(ctx context.Context, token string) error {
	if err := s.client.XDel(ctx, s.key, token).Err(); err != nil {
		return &apperrors.ExternalServiceError{Service: "redis", Op: "xdel", Err: err}
	}
	return nil
}

func (s *StreamIndex) Recent(ctx context.Context, k int64) ([]Entry, error) {
	msgs, err := s.client.XRevRangeN(ctx, s.key, "+", "-", k).Result()
	if err != nil {
		return nil, &apperrors.ExternalServiceError{Service: "redis", Op: "xrevrange", Err: err}
	}

	out := make([]Entry, 0, len(msgs))
	for _, m := range msgs {
		raw, ok := m.Values[entryField].(string)
		if !ok {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("unmarshal recency entry %s: %w", m.ID, err)
		}
		out = append(out, e)
	}
	return out, nil
}
