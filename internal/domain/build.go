package domain

import "time"

// BuildStats holds statistics about a static build.
type BuildStats struct {
	Listed   int
	Slugs    int
	Built    int
	Skipped  int
	Duration time.Duration
}

type BuildState struct {
	ID          int64     `db:"id"`
	Site        string    `db:"site"`
	LastBuiltAt time.Time `db:"last_built_at"`
	LastPages   int64     `db:"last_pages"`
	TotalBuilds int64     `db:"total_builds"`
}
