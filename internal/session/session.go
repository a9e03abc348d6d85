package session

import (
	"errors"
	"time"

	"DebtVsDCA/internal/model"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrStale    = errors.New("session selection changed")
)

// Session is one user's selection: which asset, which lookback, and the
// return stats last computed for that pair.
type Session struct {
	ID        uuid.UUID          `json:"id"`
	Asset     model.Asset        `json:"asset"`
	Period    model.Period       `json:"period"`
	Stats     *model.ReturnStats `json:"stats,omitempty"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// HasAsset reports whether an asset has been selected.
func (s Session) HasAsset() bool { return s.Asset.ID != "" }

func (s Session) clone() Session {
	if s.Stats != nil {
		stats := *s.Stats
		s.Stats = &stats
	}
	return s
}
