package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	added []*redis.XAddArgs
	err   error
}

func (f *fakeRedis) XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd {
	f.added = append(f.added, args)
	cmd := redis.NewStringCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
	} else {
		cmd.SetVal("1-0")
	}
	return cmd
}

func TestPublishFillsMetadataAndAppendsToStream(t *testing.T) {
	client := &fakeRedis{}
	p := NewPublisher(client, nil)

	payload := &Payload{
		EventType: EventTypeScrapeCompleted,
		JobID:     "job-1",
		Site:      "flipkart",
		Query:     "shoes",
		ListingsFound: 12,
	}
	require.NoError(t, p.Publish(context.Background(), payload))

	assert.NotEmpty(t, payload.EventID)
	assert.False(t, payload.Timestamp.IsZero())

	require.Len(t, client.added, 1)
	args := client.added[0]
	assert.Equal(t, Stream, args.Stream)
	assert.Equal(t, string(EventTypeScrapeCompleted), args.Values.(map[string]any)["event_type"])

	var decoded Payload
	require.NoError(t, json.Unmarshal([]byte(args.Values.(map[string]any)["payload"].(string)), &decoded))
	assert.Equal(t, "job-1", decoded.JobID)
	assert.Equal(t, 12, decoded.ListingsFound)
}

func TestPublishPropagatesRedisError(t *testing.T) {
	client := &fakeRedis{err: errors.New("connection refused")}
	p := NewPublisher(client, nil)

	err := p.Publish(context.Background(), &Payload{EventType: EventTypeBlockDetected})
	assert.Error(t, err)
}
