package service

import "sync"

// userGate serializes syncs per user key. Two concurrent syncs for the
// same user would race on the boundary read and double-insert the same
// records; queries are never blocked.
type userGate struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newUserGate() *userGate {
	return &userGate{locks: make(map[string]*sync.Mutex)}
}

func (g *userGate) lock(userKey string) func() {
	g.mu.Lock()
	l, ok := g.locks[userKey]
	if !ok {
		l = &sync.Mutex{}
		g.locks[userKey] = l
	}
	g.mu.Unlock()

	l.Lock()
	return l.Unlock
}
