package pages

import (
	"time"

	"spacetraveling/internal/domain"
)

// State tags what a page can currently serve.
type State int

const (
	// StateBuilding means the first fetch is still in flight.
	StateBuilding State = iota
	StateReady
	StateNotFound
)

func (s State) String() string {
	switch s {
	case StateBuilding:
		return "building"
	case StateReady:
		return "ready"
	case StateNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Page is the current value for one slug. Post is set only when Ready.
type Page struct {
	State       State
	Post        *domain.PostDetail
	GeneratedAt time.Time
}
