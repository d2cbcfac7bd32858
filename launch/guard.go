package launch

import (
	"bytes"
	"context"
	"slices"
	"sync"

	"github.com/gagliardetto/solana-go"
)

// tradeGuard rejects a trade on a launch that already has one in flight.
type tradeGuard struct {
	mu     sync.Mutex
	active map[solana.PublicKey]struct{}
}

func newTradeGuard() *tradeGuard {
	return &tradeGuard{active: make(map[solana.PublicKey]struct{})}
}

// acquire marks mint as trading. The returned release is idempotent and
// must be deferred by the caller.
func (g *tradeGuard) acquire(mint solana.PublicKey) (release func(), err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.active[mint]; ok {
		return nil, ErrReentrancy
	}
	g.active[mint] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.active, mint)
			g.mu.Unlock()
		})
	}, nil
}

func (g *tradeGuard) held(mint solana.PublicKey) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.active[mint]
	return ok
}

type callGraphKey struct{}

// callGraph lists the keys locked by the operations enclosing a context.
type callGraph struct {
	keys   []solana.PublicKey
	parent *callGraph
}

func withCallGraph(ctx context.Context, keys []solana.PublicKey) context.Context {
	parent, _ := ctx.Value(callGraphKey{}).(*callGraph)
	return context.WithValue(ctx, callGraphKey{}, &callGraph{keys: keys, parent: parent})
}

// inCallGraph reports whether an operation enclosing ctx already holds key.
func inCallGraph(ctx context.Context, key solana.PublicKey) bool {
	g, _ := ctx.Value(callGraphKey{}).(*callGraph)
	for ; g != nil; g = g.parent {
		if slices.Contains(g.keys, key) {
			return true
		}
	}
	return false
}

// lockOrder returns keys deduplicated in a fixed order so that operations
// locking several keys cannot deadlock each other.
func lockOrder(keys []solana.PublicKey) []solana.PublicKey {
	sorted := slices.Clone(keys)
	slices.SortFunc(sorted, func(a, b solana.PublicKey) int {
		return bytes.Compare(a[:], b[:])
	})
	return slices.Compact(sorted)
}
