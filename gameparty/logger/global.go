package logger

import (
	"log/slog"
	"time"
)

// LogClaim logs a resolved claim call
func LogClaim(campaignID, userID, status string, duration time.Duration, err error) {
	attrs := []any{
		slog.String("type", "claim"),
		slog.String("campaign_id", campaignID),
		slog.String("user_id", userID),
		slog.Duration("took", duration),
	}

	if err != nil {
		slog.Error("Claim failed", append(attrs, slog.Any("error", err))...)
	} else {
		slog.Info("Claim resolved", append(attrs, slog.String("status", status))...)
	}
}

// LogQuery logs database operations
func LogQuery(query string, duration time.Duration, err error) {
	attrs := []any{
		slog.String("type", "db"),
		slog.Duration("took", duration),
	}

	if err != nil {
		slog.Error("Query failed", append(attrs,
			slog.String("query", query),
			slog.Any("error", err),
		)...)
	} else {
		slog.Debug("Query executed", append(attrs,
			slog.String("query", query),
		)...)
	}
}
