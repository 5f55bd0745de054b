package loader

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/alexanderramin/kanbantree/internal/domain"
)

// Fetcher retrieves the children of a lazily loaded node.
type Fetcher interface {
	FetchChildren(ctx context.Context, nodeID string) ([]domain.TreeNode, error)
}

const (
	DefaultLatencyMin = 600 * time.Millisecond
	DefaultLatencyMax = 1000 * time.Millisecond
)

// MockFetcher serves canned children after a random delay, standing in for a
// remote API. Unknown ids resolve to an empty slice.
type MockFetcher struct {
	children map[string][]domain.TreeNode
	min, max time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// MockOption configures a MockFetcher.
type MockOption func(*MockFetcher)

// WithLatency sets the delay bounds. A zero max disables the delay.
func WithLatency(min, max time.Duration) MockOption {
	return func(f *MockFetcher) {
		if max < min {
			max = min
		}
		f.min, f.max = min, max
	}
}

// WithRand injects the random source used to pick each delay.
func WithRand(r *rand.Rand) MockOption {
	return func(f *MockFetcher) { f.rng = r }
}

// NewMockFetcher returns a fetcher over children, keyed by parent id.
func NewMockFetcher(children map[string][]domain.TreeNode, opts ...MockOption) *MockFetcher {
	f := &MockFetcher{
		children: children,
		min:      DefaultLatencyMin,
		max:      DefaultLatencyMax,
		rng:      rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x6b616e62)),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchChildren waits out the simulated latency and returns a copy of the
// canned children. It returns ctx.Err() if ctx is done first.
func (f *MockFetcher) FetchChildren(ctx context.Context, nodeID string) ([]domain.TreeNode, error) {
	if d := f.delay(); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	kids, ok := f.children[nodeID]
	if !ok {
		return []domain.TreeNode{}, nil
	}
	return domain.CloneForest(kids), nil
}

func (f *MockFetcher) delay() time.Duration {
	if f.max <= 0 {
		return 0
	}
	span := int64(f.max - f.min)
	if span <= 0 {
		return f.min
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.min + time.Duration(f.rng.Int64N(span+1))
}
