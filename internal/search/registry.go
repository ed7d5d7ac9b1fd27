package search

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Registry hands out one Session per client ID.
type Registry struct {
	suggester Suggester
	limit     int
	idleTTL   time.Duration
	logger    *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(suggester Suggester, limit int, idleTTL time.Duration, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		suggester: suggester,
		limit:     limit,
		idleTTL:   idleTTL,
		logger:    logger,
		sessions:  make(map[string]*Session),
	}
}

// Session returns the session for id, creating one under a fresh UUID when
// id is empty or unknown. The returned id is the one the client should reuse.
func (r *Registry) Session(id string) (string, *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok {
		return id, s
	}
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	s := NewSession(r.suggester, r.limit)
	r.sessions[id] = s
	return id, s
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Expire closes and drops sessions idle for longer than the TTL.
func (r *Registry) Expire(now time.Time) int {
	if r.idleTTL <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	expired := 0
	for id, s := range r.sessions {
		if now.Sub(s.idleSince()) > r.idleTTL {
			s.Close()
			delete(r.sessions, id)
			expired++
		}
	}
	if expired > 0 {
		r.logger.Debug("expired idle search sessions", "count", expired, "live", len(r.sessions))
	}
	return expired
}
