package app

import "sync"

// inFlightGuard admits at most one holder per key. A second acquire for a
// held key fails immediately instead of waiting.
type inFlightGuard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func newInFlightGuard() *inFlightGuard {
	return &inFlightGuard{active: make(map[string]struct{})}
}

func (g *inFlightGuard) tryAcquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.active[key]; busy {
		return false
	}

	g.active[key] = struct{}{}

	return true
}

func (g *inFlightGuard) release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.active, key)
}
