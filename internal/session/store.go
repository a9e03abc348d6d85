package session

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"DebtVsDCA/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store keeps sessions in memory with concurrency safety. When filePath is
// set every change is also written to disk as JSON.
type Store struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	filePath string
	now      func() time.Time
}

// NewStore creates a Store, loading existing sessions from filePath if given.
func NewStore(filePath string) (*Store, error) {
	s := &Store{
		sessions: make(map[uuid.UUID]*Session),
		filePath: filePath,
		now:      time.Now,
	}
	if filePath == "" {
		return s, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	var saved []Session
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	for i := range saved {
		sess := saved[i]
		s.sessions[sess.ID] = &sess
	}
	return s, nil
}

// save must be called with mu held.
func (s *Store) save() {
	if s.filePath == "" {
		return
	}
	list := make([]Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		list = append(list, *sess)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID.String() < list[j].ID.String() })

	data, err := json.MarshalIndent(list, "", "  ")
	if err == nil {
		err = os.WriteFile(s.filePath, data, 0644)
	}
	if err != nil {
		zap.S().Errorw("failed to save sessions", "path", s.filePath, "error", err)
	}
}

// Create starts a session. An empty period means DefaultPeriod.
func (s *Store) Create(asset model.Asset, period model.Period) Session {
	if period == "" {
		period = model.DefaultPeriod
	}
	sess := &Session{
		ID:        uuid.New(),
		Asset:     asset,
		Period:    period,
		UpdatedAt: s.now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	s.save()
	return sess.clone()
}

// Get returns a copy of the session.
func (s *Store) Get(id uuid.UUID) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sess.clone(), nil
}

func (s *Store) update(id uuid.UUID, fn func(*Session)) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	fn(sess)
	sess.UpdatedAt = s.now().UTC()
	s.save()
	return sess.clone(), nil
}

// SelectAsset changes the asset. Stale stats are dropped when it differs.
func (s *Store) SelectAsset(id uuid.UUID, asset model.Asset) (Session, error) {
	return s.update(id, func(sess *Session) {
		if sess.Asset.ID != asset.ID {
			sess.Stats = nil
		}
		sess.Asset = asset
	})
}

// SetPeriod changes the lookback. Stale stats are dropped when it differs.
func (s *Store) SetPeriod(id uuid.UUID, period model.Period) (Session, error) {
	return s.update(id, func(sess *Session) {
		if sess.Period != period {
			sess.Stats = nil
		}
		sess.Period = period
	})
}

// SetStats stores freshly computed return stats.
func (s *Store) SetStats(id uuid.UUID, stats model.ReturnStats) (Session, error) {
	return s.update(id, func(sess *Session) {
		sess.Stats = &stats
	})
}

// SetStatsFor stores stats only if the session still has the asset and period
// they were computed for, otherwise it returns ErrStale.
func (s *Store) SetStatsFor(id uuid.UUID, assetID string, period model.Period, stats model.ReturnStats) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if sess.Asset.ID != assetID || sess.Period != period {
		return Session{}, fmt.Errorf("%w: %s", ErrStale, id)
	}
	sess.Stats = &stats
	sess.UpdatedAt = s.now().UTC()
	s.save()
	return sess.clone(), nil
}

// List returns copies of all sessions, oldest first.
func (s *Store) List() []Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].UpdatedAt.Before(out[j].UpdatedAt)
	})
	return out
}

func (s *Store) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.sessions, id)
	s.save()
	return nil
}
