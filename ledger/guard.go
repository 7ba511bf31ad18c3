package ledger

import (
	"sync"
)

// callGuard serializes mutating calls across the whole ledger. A call that
// arrives while another one is in flight, including one made by a transfer
// recipient from inside that call, is rejected instead of waiting.
type callGuard struct {
	mu sync.Mutex
}

// enter acquires the guard. The returned release func must be deferred by
// the caller so that the guard is cleared on every exit path.
func (g *callGuard) enter() (release func(), err error) {
	if !g.mu.TryLock() {
		return nil, ErrReentrant
	}

	var once sync.Once
	return func() {
		once.Do(g.mu.Unlock)
	}, nil
}
