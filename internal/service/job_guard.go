package service

import (
	"context"
	"slices"
	"sync"
)

// JobGuard is exported so _test packages can exercise the guard.
type JobGuard = jobGuard

// jobGuard lets at most one run of a named job proceed at a time and lets
// shutdown wait for runs in flight.
type jobGuard struct {
	mu      sync.Mutex
	running map[string]struct{}
	wg      sync.WaitGroup
}

// TryLock marks name as running. It returns false if it already is.
func (g *jobGuard) TryLock(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.running == nil {
		g.running = make(map[string]struct{})
	}
	if _, busy := g.running[name]; busy {
		return false
	}
	g.running[name] = struct{}{}
	g.wg.Add(1)
	return true
}

// Unlock releases a successful TryLock.
func (g *jobGuard) Unlock(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.running[name]; !ok {
		return
	}
	delete(g.running, name)
	g.wg.Done()
}

// Running lists the jobs currently held, sorted.
func (g *jobGuard) Running() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, 0, len(g.running))
	for name := range g.running {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// WaitAll blocks until every held job is released or ctx is done.
func (g *jobGuard) WaitAll(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}
