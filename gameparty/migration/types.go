package migration

import "time"

// LegacyGame mirrors one game document from the old Mongo deployment,
// where every game kept its own copy of the code list and a usedCodes map.
type LegacyGame struct {
	ID        string                 `bson:"_id"`
	GameID    string                 `bson:"gameId"`
	Codes     []string               `bson:"codes"`
	UsedCodes map[string]LegacyClaim `bson:"usedCodes"`
}

type LegacyClaim struct {
	Code      string `bson:"code"`
	Index     int    `bson:"index"`
	Timestamp int64  `bson:"timestamp"`
}

// ImportStats tracks one import run.
type ImportStats struct {
	StartTime time.Time
	Imported  int
	Skipped   int
	Claims    int
}
