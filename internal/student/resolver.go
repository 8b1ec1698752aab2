package student

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/MrQuby/rfid-gate-attendance-system/internal/metrics"
)

// Lookup is the remote side of resolution, satisfied by *Repository.
type Lookup interface {
	FindByTag(ctx context.Context, tag string) (*Student, error)
}

// Resolver maps a scanned tag to a student, cache first with a store
// fallback. A store hit is merged back into the cache; a miss is terminal
// for the scan and is never cached.
type Resolver struct {
	cache Cache
	store Lookup
	log   *zap.Logger
}

// NewResolver creates a resolver.
func NewResolver(cache Cache, store Lookup, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{cache: cache, store: store, log: log}
}

// Resolve returns the active student owning the tag, or ErrTagNotResolved.
// Transport errors propagate wrapped and leave the cache untouched.
func (r *Resolver) Resolve(ctx context.Context, tag string) (*Student, error) {
	if tag == "" {
		return nil, ErrTagNotResolved
	}

	if s, ok := r.cache.GetByTag(ctx, tag); ok {
		metrics.ResolverLookups.WithLabelValues("cache").Inc()
		return s, nil
	}

	s, err := r.store.FindByTag(ctx, tag)
	if err != nil {
		return nil, fmt.Errorf("student lookup for tag %q: %w", tag, err)
	}
	if s == nil {
		metrics.ResolverLookups.WithLabelValues("miss").Inc()
		r.log.Warn("no student found for tag", zap.String("tag", tag))
		return nil, ErrTagNotResolved
	}

	metrics.ResolverLookups.WithLabelValues("store").Inc()
	r.cache.Upsert(ctx, *s)
	return s, nil
}

// Warm preloads the cache with every active student, matching the kiosk's
// startup subscription to the full student list.
func (r *Resolver) Warm(ctx context.Context, students []Student) {
	for _, s := range students {
		if s.Active() {
			r.cache.Upsert(ctx, s)
		}
	}
}
