package migration

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Heng-789/GAMEPARTY-sub002/gameparty/pool"
)

const defaultCollection = "games"

// Importer copies reward pools out of the old per-game Mongo documents
// into the coordinator's store. Import is idempotent per campaign: an
// already-imported campaign (version > 0) is left alone.
type Importer struct {
	mongoDB  *mongo.Database
	store    pool.Store
	collName string
	stats    ImportStats
}

func NewImporter(mongoDB *mongo.Database, store pool.Store) *Importer {
	return &Importer{
		mongoDB:  mongoDB,
		store:    store,
		collName: defaultCollection,
	}
}

// SetCollection overrides the source collection name.
func (m *Importer) SetCollection(name string) {
	if name != "" {
		m.collName = name
	}
}

// Run walks every legacy game document and installs it as a version-1
// pool. Documents that fail invariant validation are skipped and logged,
// never "repaired".
func (m *Importer) Run(ctx context.Context) (ImportStats, error) {
	m.stats = ImportStats{StartTime: time.Now()}

	cursor, err := m.mongoDB.Collection(m.collName).Find(ctx, bson.M{}, options.Find())
	if err != nil {
		return m.stats, fmt.Errorf("failed to query legacy games: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var game LegacyGame
		if err := cursor.Decode(&game); err != nil {
			slog.Warn("Skipping undecodable legacy game", slog.Any("error", err))
			m.stats.Skipped++
			continue
		}
		if err := m.importGame(ctx, game); err != nil {
			slog.Warn("Skipping legacy game",
				slog.String("campaign_id", campaignIDOf(game)),
				slog.Any("error", err))
			m.stats.Skipped++
			continue
		}
		m.stats.Imported++
		m.stats.Claims += len(game.UsedCodes)
	}
	if err := cursor.Err(); err != nil {
		return m.stats, fmt.Errorf("legacy cursor failed: %w", err)
	}

	slog.Info("Legacy import finished",
		slog.Int("imported", m.stats.Imported),
		slog.Int("skipped", m.stats.Skipped),
		slog.Int("claims", m.stats.Claims),
		slog.Duration("took", time.Since(m.stats.StartTime)))
	return m.stats, nil
}

func (m *Importer) importGame(ctx context.Context, game LegacyGame) error {
	campaignID := campaignIDOf(game)
	if campaignID == "" {
		return fmt.Errorf("legacy game has no id")
	}

	_, err := m.store.AtomicUpdate(ctx, campaignID, func(p *pool.CodePool) error {
		if p.Version > 0 {
			return fmt.Errorf("campaign %s already imported at version %d", campaignID, p.Version)
		}

		p.Codes = append([]string{}, game.Codes...)
		p.Version = 1
		p.Cursor = 0
		p.ClaimedBy = make(map[string]pool.ClaimRecord, len(game.UsedCodes))

		for userID, claim := range game.UsedCodes {
			p.ClaimedBy[userID] = pool.ClaimRecord{
				Index:     claim.Index,
				Code:      claim.Code,
				Timestamp: claim.Timestamp,
				Version:   1,
			}
			if claim.Index+1 > p.Cursor {
				p.Cursor = claim.Index + 1
			}
		}
		return nil
	})
	return err
}

func campaignIDOf(game LegacyGame) string {
	if game.GameID != "" {
		return game.GameID
	}
	return game.ID
}
