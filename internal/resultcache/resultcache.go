// Package resultcache memoizes computed results under semantic scope keys.
// Entries live for a fixed TTL and are invalidated by change events; a miss
// or an expired entry is never an error, callers just recompute.
package resultcache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/splitpot/splitpot/internal/domain"
	"github.com/splitpot/splitpot/internal/infrastructure/metrics"
)

// TTL is how long an entry stays valid after insertion.
const TTL = 5 * time.Minute

// Backend is the keyed byte store underneath the cache. The memory backend
// is the default; the redis backend shares results between processes.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}

// Store is the result cache used by the usecases. All backend failures are
// swallowed: a broken cache degrades to recomputation, never to an error.
type Store struct {
	backend Backend
	logger  zerolog.Logger
}

// New creates a Store on top of a backend.
func New(backend Backend, logger zerolog.Logger) *Store {
	return &Store{backend: backend, logger: logger}
}

// Get returns the cached value for a scope, or ok=false on miss or expiry.
func (s *Store) Get(ctx context.Context, scope domain.Scope) ([]byte, bool) {
	value, err := s.backend.Get(ctx, string(scope))
	if err != nil || value == nil {
		metrics.CacheMisses.Inc()
		return nil, false
	}
	metrics.CacheHits.Inc()
	return value, true
}

// Put stores a value under a scope with the fixed TTL.
func (s *Store) Put(ctx context.Context, scope domain.Scope, value []byte) {
	if err := s.backend.Set(ctx, string(scope), value, TTL); err != nil {
		s.logger.Debug().Err(err).Str("scope", string(scope)).Msg("cache put failed")
	}
}

// Invalidate drops the given scopes.
func (s *Store) Invalidate(ctx context.Context, scopes ...domain.Scope) {
	if len(scopes) == 0 {
		return
	}
	keys := make([]string, len(scopes))
	for i, sc := range scopes {
		keys[i] = string(sc)
	}
	if err := s.backend.Delete(ctx, keys...); err != nil {
		s.logger.Debug().Err(err).Msg("cache invalidate failed")
	}
}

// InvalidateByEvent drops every scope the event makes stale, including all
// calculation scopes when the event touches the record set balances are
// derived from.
func (s *Store) InvalidateByEvent(ctx context.Context, event domain.ChangeEvent) {
	scopes, allCalc := event.Invalidations()
	metrics.CacheInvalidations.WithLabelValues(event.Kind).Add(float64(len(scopes)))
	s.Invalidate(ctx, scopes...)
	if allCalc {
		if err := s.backend.DeletePrefix(ctx, domain.CalcScopePrefix); err != nil {
			s.logger.Debug().Err(err).Msg("cache calc invalidate failed")
		}
	}
}

// OptimisticInsert prepends entry to a cached JSON list so a caller can show
// a not-yet-persisted record immediately. A miss is a no-op: there is no
// stale list to patch.
func (s *Store) OptimisticInsert(ctx context.Context, scope domain.Scope, entry any) {
	raw, ok := s.Get(ctx, scope)
	if !ok {
		return
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		s.Invalidate(ctx, scope)
		return
	}
	encoded, err := json.Marshal(entry)
	if err != nil {
		return
	}

	updated, err := json.Marshal(append([]json.RawMessage{encoded}, list...))
	if err != nil {
		return
	}
	s.Put(ctx, scope, updated)
}

// OptimisticRemove removes the entry with the given id from a cached JSON
// list, restoring the list after a failed write. Entries must carry an "id"
// field.
func (s *Store) OptimisticRemove(ctx context.Context, scope domain.Scope, id string) {
	raw, ok := s.Get(ctx, scope)
	if !ok {
		return
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		s.Invalidate(ctx, scope)
		return
	}

	kept := list[:0]
	for _, item := range list {
		var probe struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(item, &probe); err == nil && probe.ID == id {
			continue
		}
		kept = append(kept, item)
	}

	updated, err := json.Marshal(kept)
	if err != nil {
		s.Invalidate(ctx, scope)
		return
	}
	s.Put(ctx, scope, updated)
}
