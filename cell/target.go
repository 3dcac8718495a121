package cell

import "sync"

// Target is a render target that can be detached. It accelerates the
// properties it was created with.
type Target struct {
	mu          sync.Mutex
	live        bool
	observed    bool
	accelerated map[string]bool
}

func NewTarget(properties ...string) *Target {
	t := new(Target)
	t.live = true
	t.accelerated = make(map[string]bool, len(properties))
	for _, p := range properties {
		t.accelerated[p] = true
	}
	return t
}

// Detach marks the target as gone.
func (t *Target) Detach() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.live = false
}

// Attach marks a detached target as live again.
func (t *Target) Attach() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.live = true
}

// Observe attaches or removes a per-frame update observer.
func (t *Target) Observe(observed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observed = observed
}

func (t *Target) HasLiveOwner() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.live
}

func (t *Target) SupportsAcceleratedProperty(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.accelerated[name]
}

func (t *Target) HasUpdateObserver() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.observed
}
