package naming

import (
	"fmt"
	"sync"

	"renamer/pkg/models"
)

// CollisionResolver disambiguates synthesized names against the set of
// names already assigned in the current batch run plus whatever existed in
// the target directory at batch start. It is the single shared mutable
// resource in the pipeline, so every assignment happens under one lock:
// two documents can never race to the same name. State is scoped to one
// batch and torn down with it.
type CollisionResolver struct {
	mu       sync.Mutex
	assigned map[string]struct{}
	limit    int
}

// NewCollisionResolver seeds the assigned set with existing target names.
func NewCollisionResolver(existing []string, suffixLimit int) *CollisionResolver {
	if suffixLimit <= 0 {
		suffixLimit = defaultSuffixLimit
	}
	assigned := make(map[string]struct{}, len(existing))
	for _, name := range existing {
		assigned[name] = struct{}{}
	}
	return &CollisionResolver{assigned: assigned, limit: suffixLimit}
}

// Assign accepts the candidate unchanged when its full name is unused,
// otherwise appends _1, _2, ... until an unused name is found, marking the
// result disambiguated. The accepted name is reserved atomically with the
// check. Given a fixed processing order, reruns yield identical
// assignments.
func (r *CollisionResolver) Assign(candidate models.CanonicalName) (models.CanonicalName, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.assigned[candidate.String()]; !taken {
		r.assigned[candidate.String()] = struct{}{}
		return candidate, nil
	}

	for i := 1; i <= r.limit; i++ {
		next := models.CanonicalName{
			Base:          fmt.Sprintf("%s_%d", candidate.Base, i),
			Ext:           candidate.Ext,
			Disambiguated: true,
		}
		if _, taken := r.assigned[next.String()]; !taken {
			r.assigned[next.String()] = struct{}{}
			return next, nil
		}
	}

	return models.CanonicalName{}, fmt.Errorf("%w: %q after %d attempts",
		ErrCollisionExhausted, candidate.String(), r.limit)
}
