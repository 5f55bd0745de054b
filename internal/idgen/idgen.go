// Package idgen hands out string ids of the form <prefix><n> from an explicit
// counter. Generators are values owned by a widget, not process-wide state, so
// tests can control the sequence.
package idgen

import (
	"strconv"
	"strings"
	"sync"
)

const (
	CardPrefix = "card-"
	NodePrefix = "node-custom-"

	// CardStart and NodeStart are the counter values before the first Next.
	CardStart = 200
	NodeStart = 1000
)

// Source produces unique ids.
type Source interface {
	Next() string
}

// Generator is a monotonically increasing counter. Next pre-increments, so a
// generator created with start 200 first yields "<prefix>201".
type Generator struct {
	mu     sync.Mutex
	prefix string
	last   int
}

// New creates a Generator whose first id is prefix+(start+1).
func New(prefix string, start int) *Generator {
	return &Generator{prefix: prefix, last: start}
}

// NewCardGenerator returns the board's card id generator.
func NewCardGenerator() *Generator {
	return New(CardPrefix, CardStart)
}

// NewNodeGenerator returns the tree's custom node id generator.
func NewNodeGenerator() *Generator {
	return New(NodePrefix, NodeStart)
}

func (g *Generator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last++
	return g.prefix + strconv.Itoa(g.last)
}

// Prefix returns the generator's id prefix.
func (g *Generator) Prefix() string {
	return g.prefix
}

// SeedAbove guarantees every later id has a numeric suffix strictly greater
// than n. It never moves the counter backwards.
func (g *Generator) SeedAbove(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n > g.last {
		g.last = n
	}
}

// SeedFrom scans ids and seeds the generator above the highest numeric suffix
// that carries the generator's prefix. Ids with a different prefix or a
// non-numeric suffix are ignored.
func (g *Generator) SeedFrom(ids []string) {
	if max, ok := MaxSuffix(g.prefix, ids); ok {
		g.SeedAbove(max)
	}
}

// MaxSuffix returns the largest integer n such that prefix+n appears in ids.
func MaxSuffix(prefix string, ids []string) (int, bool) {
	max, found := 0, false
	for _, id := range ids {
		rest, ok := strings.CutPrefix(id, prefix)
		if !ok || rest == "" {
			continue
		}
		n, err := strconv.Atoi(rest)
		if err != nil || n < 0 {
			continue
		}
		if !found || n > max {
			max, found = n, true
		}
	}
	return max, found
}
