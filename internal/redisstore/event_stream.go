package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"spectrumhub/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	storyStreamKey    = "stories:events"
	storyStreamMaxLen = 1000
	reclaimIdle       = 30 * time.Second
)

// EventSink receives story events read back from the stream.
type EventSink interface {
	Broadcast(event models.StoryEvent)
}

// EventStream relays story events through a Redis Stream so every server
// instance pushes them to its own websocket clients. Each instance reads
// through its own consumer group and therefore sees every event.
type EventStream struct {
	rdb      *redis.Client
	group    string
	consumer string
	log      *zap.Logger
}

// NewEventStream names the consumer group after the host and process.
func NewEventStream(rdb *redis.Client, log *zap.Logger) *EventStream {
	hostname, _ := os.Hostname()
	instanceID := fmt.Sprintf("%s-%d", hostname, os.Getpid())
	return &EventStream{
		rdb:      rdb,
		group:    "stories:group:" + instanceID,
		consumer: "consumer-" + instanceID,
		log:      log,
	}
}

// Broadcast appends the event to the stream. Failures are logged.
func (s *EventStream) Broadcast(event models.StoryEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Publish(ctx, event); err != nil {
		s.log.Warn("failed to publish story event", zap.String("storyId", event.StoryID), zap.Error(err))
	}
}

// Publish appends the event, trimming the stream to a bounded history.
func (s *EventStream) Publish(ctx context.Context, event models.StoryEvent) error {
	if s == nil || s.rdb == nil {
		return fmt.Errorf("Redis client not available")
	}
	data, err := encodeEvent(event)
	if err != nil {
		return err
	}

	err = s.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: storyStreamKey,
		Values: map[string]interface{}{"data": data},
		MaxLen: storyStreamMaxLen,
		Approx: true,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Run forwards stream events to sink until ctx is cancelled. Only events
// added after the group is created are delivered.
func (s *EventStream) Run(ctx context.Context, sink EventSink) error {
	if s == nil || s.rdb == nil {
		return fmt.Errorf("Redis client not available")
	}

	err := s.rdb.XGroupCreateMkStream(ctx, storyStreamKey, s.group, "$").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	defer func() {
		// The group belongs to this process only.
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.rdb.XGroupDestroy(dctx, storyStreamKey, s.group).Err()
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}

		streams, err := s.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    s.group,
			Consumer: s.consumer,
			Streams:  []string{storyStreamKey, ">"},
			Count:    100,
			Block:    time.Second,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			s.log.Warn("failed to read story events", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}

		for _, stream := range streams {
			s.deliver(ctx, sink, stream.Messages)
		}
		s.reclaim(ctx, sink)
	}
}

func (s *EventStream) deliver(ctx context.Context, sink EventSink, messages []redis.XMessage) {
	for _, message := range messages {
		if err := forward(sink, message); err != nil {
			s.log.Warn("dropping malformed story event", zap.String("id", message.ID), zap.Error(err))
		}
		if err := s.rdb.XAck(ctx, storyStreamKey, s.group, message.ID).Err(); err != nil {
			s.log.Debug("failed to ack story event", zap.String("id", message.ID), zap.Error(err))
		}
	}
}

// reclaim redelivers messages that were read but never acknowledged.
func (s *EventStream) reclaim(ctx context.Context, sink EventSink) {
	pending, err := s.rdb.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: storyStreamKey,
		Group:  s.group,
		Start:  "-",
		End:    "+",
		Count:  100,
	}).Result()
	if err != nil {
		return
	}

	var stale []string
	for _, p := range pending {
		if p.Idle > reclaimIdle {
			stale = append(stale, p.ID)
		}
	}
	if len(stale) == 0 {
		return
	}

	claimed, err := s.rdb.XClaim(ctx, &redis.XClaimArgs{
		Stream:   storyStreamKey,
		Group:    s.group,
		Consumer: s.consumer,
		MinIdle:  reclaimIdle,
		Messages: stale,
	}).Result()
	if err == nil {
		s.deliver(ctx, sink, claimed)
	}
}

func forward(sink EventSink, message redis.XMessage) error {
	data, ok := message.Values["data"].(string)
	if !ok {
		return errors.New("invalid message format: missing data field")
	}
	event, err := decodeEvent(data)
	if err != nil {
		return err
	}
	sink.Broadcast(event)
	return nil
}

func encodeEvent(event models.StoryEvent) (string, error) {
	b, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("failed to marshal event: %w", err)
	}
	return string(b), nil
}

func decodeEvent(data string) (models.StoryEvent, error) {
	var event models.StoryEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return event, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if event.Type == "" {
		return event, errors.New("event has no type")
	}
	return event, nil
}
