package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/DoyleJ11/brawl-draft-tracker/internal/tracker"
	pub "github.com/DoyleJ11/brawl-draft-tracker/pkg/types"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultStream    = "draft.updates"
	DefaultLatestTTL = 6 * time.Hour

	// keep the stream from growing without bound during long events
	streamMaxLen = 10000
)

// RedisPublisher mirrors every published draft snapshot into Redis: the
// latest payload under a per-match key, and an entry on an update stream for
// downstream consumers. Nothing reads it back into the tracker.
type RedisPublisher struct {
	client *redis.Client
	stream string
	ttl    time.Duration
}

func NewRedisPublisher(client *redis.Client, ttl time.Duration) *RedisPublisher {
	if ttl <= 0 {
		ttl = DefaultLatestTTL
	}
	return &RedisPublisher{
		client: client,
		stream: DefaultStream,
		ttl:    ttl,
	}
}

// Connect parses a redis:// URL and checks the server is reachable.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return client, nil
}

func LatestKey(sess tracker.Session) string {
	return fmt.Sprintf("draft:%s:%s:latest", sess.BountyID, sess.MatchID)
}

// Publish implements tracker.Publisher.
func (p *RedisPublisher) Publish(ctx context.Context, snap tracker.Snapshot) error {
	data, err := json.Marshal(pub.NewDraft(snap))
	if err != nil {
		return fmt.Errorf("marshaling draft: %w", err)
	}

	pipe := p.client.Pipeline()
	pipe.Set(ctx, LatestKey(snap.Session), data, p.ttl)
	pipe.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data":      string(data),
			"bounty_id": snap.Session.BountyID,
			"match_id":  snap.Session.MatchID,
			"version":   strconv.Itoa(snap.Version),
			"status":    string(snap.State.Status),
		},
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("writing draft to redis: %w", err)
	}
	return nil
}
