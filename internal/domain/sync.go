package domain

import "time"

// SyncState records archive progress for one feed.
type SyncState struct {
	ID           int64     `db:"id"`
	SourceID     string    `db:"source_id"`
	LastSyncedAt time.Time `db:"last_synced_at"`
	LastPostLink string    `db:"last_post_link"`
	TotalSynced  int64     `db:"total_synced"`
}

// SyncStats summarizes one archive run.
type SyncStats struct {
	SourceID  string
	Fetched   int
	New       int
	Updated   int
	Skipped   int
	Errors    int
	Published int
	Duration  time.Duration
}

// Changed reports how many posts were written during the run.
func (s *SyncStats) Changed() int {
	return s.New + s.Updated
}
