package queue

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/proptycoon/backend/internal/game/websocket"
)

// Worker drains per-game notification queues into the WebSocket hub. One
// worker serves all games; per-game ordering is preserved because each game
// has its own Redis list and messages are popped in order.
type Worker struct {
	queue       *RedisQueue
	hub         *websocket.Hub
	logger      *zap.SugaredLogger
	maxAttempts int
	pollEvery   time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewWorker creates a queue worker bound to a hub.
func NewWorker(queue *RedisQueue, hub *websocket.Hub, logger *zap.SugaredLogger) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		queue:       queue,
		hub:         hub,
		logger:      logger,
		maxAttempts: 3,
		pollEvery:   100 * time.Millisecond,
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
}

// Start begins processing messages until Stop is called.
func (w *Worker) Start() {
	go w.run()
}

// Stop shuts the worker down and waits for the loop to exit.
func (w *Worker) Stop() {
	w.cancel()
	<-w.done
}

func (w *Worker) run() {
	defer close(w.done)
	ticker := time.NewTicker(w.pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			w.logger.Info("queue worker shutting down")
			return
		case <-ticker.C:
			w.drainPending()
		}
	}
}

func (w *Worker) drainPending() {
	games, err := w.queue.PendingGames(w.ctx)
	if err != nil {
		if w.ctx.Err() == nil {
			w.logger.Errorw("failed to list pending game queues", "error", err)
		}
		return
	}
	for _, gameID := range games {
		w.drainGame(gameID)
	}
}

func (w *Worker) drainGame(gameID string) {
	for {
		select {
		case <-w.ctx.Done():
			return
		default:
		}

		msg, err := w.queue.DequeueMessage(w.ctx, gameID)
		if err != nil {
			if errors.Is(err, ErrQueueEmpty) {
				return
			}
			w.logger.Errorw("failed to dequeue message", "gameId", gameID, "error", err)
			return
		}

		if err := w.dispatch(msg); err != nil {
			w.logger.Errorw("failed to dispatch message",
				"gameId", gameID, "type", msg.Type, "attempts", msg.Attempts, "error", err)
			if msg.Attempts+1 >= w.maxAttempts {
				if dlqErr := w.queue.MoveToDeadLetterQueue(w.ctx, msg); dlqErr != nil {
					w.logger.Errorw("failed to park message in dead letter queue",
						"gameId", gameID, "error", dlqErr)
				}
				continue
			}
			if retryErr := w.queue.RetryMessage(w.ctx, msg); retryErr != nil {
				w.logger.Errorw("failed to requeue message", "gameId", gameID, "error", retryErr)
			}
			// The retried message went to the tail; stop draining this game
			// so we do not spin on it.
			return
		}
	}
}

func (w *Worker) dispatch(msg *QueueMessage) error {
	switch msg.Type {
	case GameEvents:
		w.hub.BroadcastEvents(msg.GameID, msg.Events)
		return nil
	case StateUpdate:
		w.hub.BroadcastState(msg.GameID, msg.State)
		return nil
	default:
		return errors.New("no handler registered for message type: " + string(msg.Type))
	}
}
