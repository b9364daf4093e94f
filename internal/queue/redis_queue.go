package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/proptycoon/backend/internal/game/engine"
)

// MessageType defines the type of message in the queue
type MessageType string

const (
	// GameEvents carries the event list one engine mutation emitted.
	GameEvents MessageType = "game_events"
	// StateUpdate carries a full state snapshot for clients to resync from.
	StateUpdate MessageType = "state_update"
)

// ErrQueueEmpty is returned by DequeueMessage when there is nothing to pop.
var ErrQueueEmpty = errors.New("queue is empty")

// QueueMessage represents a message in the queue
type QueueMessage struct {
	Type      MessageType       `json:"type"`
	GameID    string            `json:"gameId"`
	Events    []engine.Event    `json:"events,omitempty"`
	State     *engine.GameState `json:"state,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Attempts  int               `json:"attempts"`
}

// RedisQueue buffers outbound notifications per game. The manager enqueues
// after every successful save; the worker drains into the WebSocket hub.
// Ordering is preserved per game by using one Redis list per game.
type RedisQueue struct {
	client *redis.Client
	logger *zap.SugaredLogger
}

// NewRedisQueue creates a queue on an established Redis connection.
func NewRedisQueue(client *redis.Client, logger *zap.SugaredLogger) *RedisQueue {
	return &RedisQueue{client: client, logger: logger}
}

func queueName(gameID string) string {
	return fmt.Sprintf("game:%s:events", gameID)
}

// EnqueueGameEvents pushes the events of one mutation, followed by the state
// snapshot that resulted from it.
func (q *RedisQueue) EnqueueGameEvents(ctx context.Context, gameID string, events []engine.Event, state *engine.GameState) error {
	if len(events) > 0 {
		if err := q.enqueue(ctx, gameID, QueueMessage{
			Type:      GameEvents,
			GameID:    gameID,
			Events:    events,
			Timestamp: time.Now(),
		}); err != nil {
			return err
		}
	}
	if state != nil {
		return q.enqueue(ctx, gameID, QueueMessage{
			Type:      StateUpdate,
			GameID:    gameID,
			State:     state,
			Timestamp: time.Now(),
		})
	}
	return nil
}

func (q *RedisQueue) enqueue(ctx context.Context, gameID string, msg QueueMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling queue message: %w", err)
	}
	if err := q.client.RPush(ctx, queueName(gameID), payload).Err(); err != nil {
		return fmt.Errorf("pushing to queue for game %s: %w", gameID, err)
	}
	q.logger.Debugw("message enqueued", "gameId", gameID, "type", msg.Type)
	return nil
}

// DequeueMessage pops the oldest message of a game's queue.
func (q *RedisQueue) DequeueMessage(ctx context.Context, gameID string) (*QueueMessage, error) {
	result, err := q.client.LPop(ctx, queueName(gameID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrQueueEmpty
		}
		return nil, fmt.Errorf("popping from queue for game %s: %w", gameID, err)
	}

	var msg QueueMessage
	if err := json.Unmarshal([]byte(result), &msg); err != nil {
		return nil, fmt.Errorf("unmarshaling queue message: %w", err)
	}
	return &msg, nil
}

// QueueLength returns the number of pending messages for a game.
func (q *RedisQueue) QueueLength(ctx context.Context, gameID string) (int64, error) {
	return q.client.LLen(ctx, queueName(gameID)).Result()
}

// PendingGames lists the game ids that currently have queued messages.
func (q *RedisQueue) PendingGames(ctx context.Context) ([]string, error) {
	keys, err := q.client.Keys(ctx, "game:*:events").Result()
	if err != nil {
		return nil, fmt.Errorf("listing queues: %w", err)
	}
	games := make([]string, 0, len(keys))
	for _, key := range keys {
		// game:<id>:events
		if len(key) > len("game::events") {
			games = append(games, key[len("game:"):len(key)-len(":events")])
		}
	}
	return games, nil
}

// RetryMessage puts a failed message back at the tail of its queue.
func (q *RedisQueue) RetryMessage(ctx context.Context, msg *QueueMessage) error {
	msg.Attempts++
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling queue message: %w", err)
	}
	return q.client.RPush(ctx, queueName(msg.GameID), payload).Err()
}

// MoveToDeadLetterQueue parks a message that kept failing.
func (q *RedisQueue) MoveToDeadLetterQueue(ctx context.Context, msg *QueueMessage) error {
	msg.Attempts++
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling queue message: %w", err)
	}
	dead := queueName(msg.GameID) + ":dead"
	if err := q.client.RPush(ctx, dead, payload).Err(); err != nil {
		return fmt.Errorf("pushing to dead letter queue: %w", err)
	}
	q.logger.Warnw("message moved to dead letter queue",
		"gameId", msg.GameID, "type", msg.Type, "attempts", msg.Attempts)
	return nil
}

// ClearQueue drops every pending message of a game, dead letters included.
func (q *RedisQueue) ClearQueue(ctx context.Context, gameID string) error {
	return q.client.Del(ctx, queueName(gameID), queueName(gameID)+":dead").Err()
}
