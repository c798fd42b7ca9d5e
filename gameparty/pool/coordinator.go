package pool

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

type ClaimStatus string

const (
	StatusClaimed        ClaimStatus = "claimed"
	StatusAlreadyClaimed ClaimStatus = "already_claimed"
	StatusExhausted      ClaimStatus = "exhausted"
)

// ClaimOutcome is a business result, never an error. Exhausted and
// AlreadyClaimed are expected, frequent outcomes near the end of a popular
// campaign.
type ClaimOutcome struct {
	Status ClaimStatus `json:"status"`
	Code   string      `json:"code,omitempty"`
}

const maxIDLength = 128

// Coordinator hands out a campaign's ordered code list exactly once per
// user per pool version. All correctness is delegated to the store's atomic
// primitive; the coordinator itself holds no state and is safe to share.
type Coordinator struct {
	store    Store
	notifier *Notifier
	now      func() time.Time
}

func NewCoordinator(store Store, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type CoordinatorOption func(*Coordinator)

// WithNotifier publishes a post-commit summary after every successful claim.
func WithNotifier(n *Notifier) CoordinatorOption {
	return func(c *Coordinator) { c.notifier = n }
}

// WithClock overrides the claim timestamp source.
func WithClock(now func() time.Time) CoordinatorOption {
	return func(c *Coordinator) { c.now = now }
}

// Claim assigns the next unclaimed code of the campaign's current version
// to userID, or reports the code already held, or exhaustion. Safe to call
// repeatedly: a user who claims twice under an unchanged version always
// gets the same answer back. Abandoning the call mid-flight leaves no
// partial state; either the transaction committed or nothing changed.
func (c *Coordinator) Claim(ctx context.Context, campaignID, userID string) (ClaimOutcome, error) {
	if err := validateID("campaign id", campaignID); err != nil {
		return ClaimOutcome{}, err
	}
	if err := validateID("user id", userID); err != nil {
		return ClaimOutcome{}, err
	}

	var outcome ClaimOutcome
	start := c.now()

	committed, err := c.store.AtomicUpdate(ctx, campaignID, func(p *CodePool) error {
		outcome = ClaimOutcome{}

		if rec, ok := p.ClaimedBy[userID]; ok && rec.Version == p.Version {
			outcome = ClaimOutcome{Status: StatusAlreadyClaimed, Code: rec.Code}
			return SkipUpdate
		}
		// A record under an older version is stale: the user is eligible
		// again after a code replacement.

		if p.Cursor >= len(p.Codes) {
			outcome = ClaimOutcome{Status: StatusExhausted}
			return SkipUpdate
		}

		// Operator-pasted code lists can contain duplicate strings. Skip
		// forward past codes already live-assigned to someone else rather
		// than handing the same string out twice.
		live := p.liveCodes()
		i := p.Cursor
		for i < len(p.Codes) {
			if _, taken := live[p.Codes[i]]; !taken {
				break
			}
			i++
		}
		if i >= len(p.Codes) {
			outcome = ClaimOutcome{Status: StatusExhausted}
			return SkipUpdate
		}

		p.ClaimedBy[userID] = ClaimRecord{
			Index:     i,
			Code:      p.Codes[i],
			Timestamp: c.now().UnixMilli(),
			Version:   p.Version,
		}
		p.Cursor = i + 1
		outcome = ClaimOutcome{Status: StatusClaimed, Code: p.Codes[i]}
		return nil
	})
	if err != nil {
		return ClaimOutcome{}, err
	}

	slog.Debug("Claim resolved",
		slog.String("type", "claim"),
		slog.String("campaign_id", campaignID),
		slog.String("user_id", userID),
		slog.String("status", string(outcome.Status)),
		slog.Duration("took", c.now().Sub(start)))

	if c.notifier != nil && outcome.Status == StatusClaimed {
		c.notifier.Publish(committed.Summary())
	}
	return outcome, nil
}

// Peek reports the display counter for a campaign. Racy by construction;
// never use it to decide claim eligibility.
func (c *Coordinator) Peek(ctx context.Context, campaignID string) (Summary, error) {
	if err := validateID("campaign id", campaignID); err != nil {
		return Summary{}, err
	}
	p, err := c.store.Get(ctx, campaignID)
	if err != nil {
		return Summary{}, err
	}
	return p.Summary(), nil
}

func validateID(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: empty %s", ErrInvalidInput, field)
	}
	if len(value) > maxIDLength {
		return fmt.Errorf("%w: %s longer than %d bytes", ErrInvalidInput, field, maxIDLength)
	}
	return nil
}
