package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Heng-789/GAMEPARTY-sub002/gameparty/database/models"
	"github.com/uptrace/bun"
)

// AnswerRepository backs pool.AnswerLedger with the answers table.
type AnswerRepository struct {
	db *bun.DB
}

func NewAnswerRepository(db *bun.DB) *AnswerRepository {
	return &AnswerRepository{db: db}
}

func (r *AnswerRepository) HasAnswer(ctx context.Context, campaignID, userID string) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*models.AnswerEntry)(nil)).
		Where("campaign_id = ? AND user_id = ?", campaignID, userID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check answer: %w", err)
	}
	return exists, nil
}

func (r *AnswerRepository) Record(ctx context.Context, campaignID, userID, answer string) error {
	entry := &models.AnswerEntry{
		CampaignID: campaignID,
		UserID:     userID,
		Answer:     answer,
		CreatedAt:  time.Now(),
	}
	if _, err := r.db.NewInsert().Model(entry).Exec(ctx); err != nil {
		return fmt.Errorf("failed to record answer: %w", err)
	}
	return nil
}

// CountForCampaign reports how many accepted answers a campaign has.
func (r *AnswerRepository) CountForCampaign(ctx context.Context, campaignID string) (int, error) {
	count, err := r.db.NewSelect().
		Model((*models.AnswerEntry)(nil)).
		Where("campaign_id = ?", campaignID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count answers: %w", err)
	}
	return count, nil
}
