package syncboard

import "sync/atomic"

// redrawGuard is a non-blocking, non-reentrant lock held for the duration of
// one broadcast cycle.
type redrawGuard struct {
	held atomic.Bool
}

// acquire takes the guard if it is free. The returned release func must be
// deferred by the caller; it is safe to call more than once.
func (g *redrawGuard) acquire() (release func(), ok bool) {
	if !g.held.CompareAndSwap(false, true) {
		return nil, false
	}
	var released atomic.Bool
	return func() {
		if released.CompareAndSwap(false, true) {
			g.held.Store(false)
		}
	}, true
}

// isHeld reports whether a broadcast cycle is in progress.
func (g *redrawGuard) isHeld() bool {
	return g.held.Load()
}
