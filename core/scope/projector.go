package scope

import (
	"sync"

	"github.com/girgism/khedma/core/user"
)

// Projector memoizes Project keyed on its inputs: the acting user's identity
// and the store revision the snapshot was read at. Nothing else is cached;
// any change to the user or to a source collection recomputes the projection.
type Projector struct {
	mu sync.Mutex

	valid  bool
	userID string
	rev    uint64
	result Snapshot
}

func NewProjector() *Projector { return &Projector{} }

// Project returns the memoized projection when the (user, revision) pair is
// unchanged, recomputing otherwise. rev must come from the store the snapshot
// was assembled from.
func (p *Projector) Project(usr *user.User, snap Snapshot, rev uint64) Snapshot {
	var uid string
	if usr != nil {
		uid = usr.ID
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.valid && p.userID == uid && p.rev == rev {
		return p.result
	}

	p.result = Project(usr, snap)
	p.userID = uid
	p.rev = rev
	p.valid = true
	return p.result
}

// Invalidate drops the memoized result; the next call recomputes.
func (p *Projector) Invalidate() {
	p.mu.Lock()
	p.valid = false
	p.mu.Unlock()
}
