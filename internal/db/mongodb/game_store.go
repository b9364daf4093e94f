package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/proptycoon/backend/internal/game/engine"
	"github.com/proptycoon/backend/internal/game/models"
)

// GameStore persists games with optimistic concurrency: every save is
// conditioned on the version the caller loaded, and a mismatch surfaces as
// engine.ConflictError so the caller can reload and retry.
type GameStore struct {
	games  *mongo.Collection
	logger *zap.SugaredLogger
}

// NewGameStore creates a GameStore on the given database.
func NewGameStore(db *mongo.Database, collName string, logger *zap.SugaredLogger) *GameStore {
	if collName == "" {
		collName = "games"
	}
	return &GameStore{
		games:  db.Collection(collName),
		logger: logger,
	}
}

// EnsureIndexes creates the unique lookups the store queries by.
func (s *GameStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.games.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "gameId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "state.phase", Value: 1}, {Key: "updatedAt", Value: -1}},
		},
	})
	return err
}

// Insert stores a brand-new game at version 1.
func (s *GameStore) Insert(ctx context.Context, game *models.Game) error {
	now := time.Now()
	game.CreatedAt = now
	game.UpdatedAt = now
	game.Version = 1

	if _, err := s.games.InsertOne(ctx, game); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &engine.ConflictError{Message: fmt.Sprintf("game %s already exists", game.GameID)}
		}
		return fmt.Errorf("inserting game %s: %w", game.GameID, err)
	}
	return nil
}

// Load fetches a game by its public id.
func (s *GameStore) Load(ctx context.Context, gameID string) (*models.Game, error) {
	var game models.Game
	err := s.games.FindOne(ctx, bson.M{"gameId": gameID}).Decode(&game)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &engine.NotFoundError{Resource: "game", ID: gameID}
		}
		return nil, fmt.Errorf("loading game %s: %w", gameID, err)
	}
	return &game, nil
}

// FindByCode fetches a game by its room code.
func (s *GameStore) FindByCode(ctx context.Context, code string) (*models.Game, error) {
	var game models.Game
	err := s.games.FindOne(ctx, bson.M{"code": code}).Decode(&game)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &engine.NotFoundError{Resource: "game", ID: code}
		}
		return nil, fmt.Errorf("loading game by code %s: %w", code, err)
	}
	return &game, nil
}

// Save writes a new state for the game, conditioned on the version the
// caller loaded. On success the game's version and timestamp are bumped in
// place to match the stored document.
func (s *GameStore) Save(ctx context.Context, game *models.Game) error {
	now := time.Now()
	res, err := s.games.UpdateOne(ctx,
		bson.M{"gameId": game.GameID, "version": game.Version},
		bson.M{
			"$set": bson.M{
				"state":     game.State,
				"name":      game.Name,
				"hostId":    game.HostID,
				"updatedAt": now,
			},
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		return fmt.Errorf("saving game %s: %w", game.GameID, err)
	}
	if res.MatchedCount == 0 {
		s.logger.Warnw("stale game save rejected",
			"gameId", game.GameID, "version", game.Version)
		return &engine.ConflictError{
			Message: fmt.Sprintf("game %s was modified concurrently", game.GameID),
		}
	}
	game.Version++
	game.UpdatedAt = now
	return nil
}

// ListByPhase returns games in a given phase, newest first.
func (s *GameStore) ListByPhase(ctx context.Context, phase engine.GamePhase, limit int64) ([]*models.Game, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := s.games.Find(ctx, bson.M{"state.phase": phase}, opts)
	if err != nil {
		return nil, fmt.Errorf("listing games in phase %s: %w", phase, err)
	}
	defer cursor.Close(ctx)

	var games []*models.Game
	if err := cursor.All(ctx, &games); err != nil {
		return nil, fmt.Errorf("decoding game list: %w", err)
	}
	return games, nil
}

// DeleteIdle removes finished or abandoned games untouched since the cutoff.
func (s *GameStore) DeleteIdle(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.games.DeleteMany(ctx, bson.M{
		"updatedAt": bson.M{"$lt": cutoff},
		"state.phase": bson.M{"$in": []engine.GamePhase{
			engine.PhaseGameOver, engine.PhaseWaiting,
		}},
	})
	if err != nil {
		return 0, fmt.Errorf("deleting idle games: %w", err)
	}
	return res.DeletedCount, nil
}
