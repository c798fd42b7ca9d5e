package models

import (
	"time"

	"github.com/uptrace/bun"
)

// AnswerEntry is one accepted game submission. The ledger is advisory: the
// claim path de-duplicates on its own, this table just saves callers a
// round trip and keeps submissions for moderation.
type AnswerEntry struct {
	bun.BaseModel `bun:"table:answers,alias:an"`

	ID         int64     `bun:"id,pk,autoincrement"`
	CampaignID string    `bun:"campaign_id,notnull"`
	UserID     string    `bun:"user_id,notnull"`
	Answer     string    `bun:"answer,notnull"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
