package state

import (
	"sync"
	"time"

	"github.com/genricoloni/dancedeck/internal/domain"
	"go.uber.org/zap"
)

const (
	eventBuffer     = 16
	warningInterval = 5 * time.Second
)

// Store is the process-wide playback state shared by every coordinator.
//
// playingID names the most recently activated item. It is overwritten only
// by a new activation; stopping or finishing playback leaves it in place.
type Store struct {
	logger *zap.Logger

	mu              sync.RWMutex
	selectedID      domain.Identifier
	playingID       domain.Identifier
	activation      uint64
	lastDropWarning time.Time

	events chan domain.PlaybackSnapshot
}

// NewStore creates an empty playback state
func NewStore(logger *zap.Logger) *Store {
	return &Store{
		logger: logger,
		events: make(chan domain.PlaybackSnapshot, eventBuffer),
	}
}

// Select focuses an item. It has no playback side effects.
func (s *Store) Select(id domain.Identifier) {
	s.mu.Lock()
	s.selectedID = id
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Debug("Item selected", zap.String("item", string(id)))
	s.emit(snap)
}

// SetPlayingID marks id as the playing item and returns its activation token.
// Any earlier activation becomes stale as soon as this returns.
func (s *Store) SetPlayingID(id domain.Identifier) uint64 {
	s.mu.Lock()
	previous := s.playingID
	s.playingID = id
	s.activation++
	token := s.activation
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Debug("Playing item changed",
		zap.String("previous", string(previous)),
		zap.String("item", string(id)),
		zap.Uint64("activation", token))
	s.emit(snap)
	return token
}

// PlayingID returns the most recently activated item
func (s *Store) PlayingID() domain.Identifier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.playingID
}

// SelectedID returns the focused item
func (s *Store) SelectedID() domain.Identifier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedID
}

// Activation returns the latest activation token
func (s *Store) Activation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activation
}

// IsCurrent reports whether token is still the latest activation
func (s *Store) IsCurrent(token uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return token != 0 && token == s.activation
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() domain.PlaybackSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Events returns a read-only channel emitting a snapshot after every mutation
func (s *Store) Events() <-chan domain.PlaybackSnapshot {
	return s.events
}

func (s *Store) snapshotLocked() domain.PlaybackSnapshot {
	return domain.PlaybackSnapshot{
		SelectedID: s.selectedID,
		PlayingID:  s.playingID,
		Activation: s.activation,
	}
}

// emit never blocks; observers that fall behind only miss intermediate states
func (s *Store) emit(snap domain.PlaybackSnapshot) {
	select {
	case s.events <- snap:
	default:
		s.logDropWarning()
	}
}

// logDropWarning is rate limited to avoid log spam during rapid toggling
func (s *Store) logDropWarning() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if now.Sub(s.lastDropWarning) >= warningInterval {
		s.logger.Warn("State events channel full, dropping snapshot",
			zap.String("note", "Observers only need the latest snapshot."))
		s.lastDropWarning = now
	}
}
