package models

import (
	"time"

	"github.com/uptrace/bun"
)

// CodePoolRow is the durable form of one campaign's reward pool. Rev is the
// storage-level CAS counter: it advances on every committed write, unlike
// Version which only bumps when the code list is replaced.
type CodePoolRow struct {
	bun.BaseModel `bun:"table:code_pools,alias:cp"`

	CampaignID string                `bun:"campaign_id,pk"`
	Version    int64                 `bun:"version,notnull,default:0"`
	Cursor     int                   `bun:"cursor,notnull,default:0"`
	Codes      []string              `bun:"codes,type:jsonb,notnull,default:'[]'"`
	ClaimedBy  map[string]ClaimEntry `bun:"claimed_by,type:jsonb,notnull,default:'{}'"`
	Rev        int64                 `bun:"rev,notnull,default:0"`
	UpdatedAt  time.Time             `bun:"updated_at,notnull,default:current_timestamp"`
}

type ClaimEntry struct {
	Index     int    `json:"index"`
	Code      string `json:"code"`
	Timestamp int64  `json:"timestamp"`
	Version   int64  `json:"version"`
}
