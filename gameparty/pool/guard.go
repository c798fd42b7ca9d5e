package pool

import (
	"context"
	"log/slog"
)

// AnswerLedger is the external answers log game validators write accepted
// submissions to.
type AnswerLedger interface {
	HasAnswer(ctx context.Context, campaignID, userID string) (bool, error)
	Record(ctx context.Context, campaignID, userID, answer string) error
}

// Guard is an optional pre-check callers use to skip a redundant Claim call
// for a user who already answered. It is purely an optimization: Claim is
// idempotent on its own, so a ledger miss, error, or race here can never
// cause a double assignment.
type Guard struct {
	ledger AnswerLedger
}

func NewGuard(ledger AnswerLedger) *Guard {
	return &Guard{ledger: ledger}
}

// AlreadyAnswered reports whether the user has an accepted answer on
// record. Ledger errors degrade to false: the claim path is the authority.
func (g *Guard) AlreadyAnswered(ctx context.Context, campaignID, userID string) bool {
	ok, err := g.ledger.HasAnswer(ctx, campaignID, userID)
	if err != nil {
		slog.Warn("Answer ledger lookup failed, falling through to claim",
			slog.String("campaign_id", campaignID),
			slog.String("user_id", userID),
			slog.Any("error", err))
		return false
	}
	return ok
}

// RecordAnswer stores an accepted submission. Failures are logged and
// swallowed for the same reason lookups are advisory.
func (g *Guard) RecordAnswer(ctx context.Context, campaignID, userID, answer string) {
	if err := g.ledger.Record(ctx, campaignID, userID, answer); err != nil {
		slog.Warn("Failed to record accepted answer",
			slog.String("campaign_id", campaignID),
			slog.String("user_id", userID),
			slog.Any("error", err))
	}
}
