package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/alexanderramin/kanbantree/internal/domain"
	"github.com/alexanderramin/kanbantree/internal/idgen"
	"github.com/alexanderramin/kanbantree/internal/loader"
	"github.com/alexanderramin/kanbantree/internal/persist"
	"github.com/alexanderramin/kanbantree/internal/repository"
	"github.com/alexanderramin/kanbantree/internal/seed"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) names() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, 0, len(o.events))
	for _, e := range o.events {
		out = append(out, e.Name)
	}
	return out
}

func (o *recordingObserver) last() UseCaseEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.events[len(o.events)-1]
}

func setupBoard(t *testing.T, kv repository.KVStore) (BoardService, *recordingObserver) {
	t.Helper()
	if kv == nil {
		kv = repository.NewMemoryKVStore()
	}
	ids := idgen.NewCardGenerator()
	store := persist.NewBoardStore(kv, ids, zap.NewNop())
	obs := &recordingObserver{}
	return NewBoardService(context.Background(), store, ids, obs), obs
}

// gatedFetcher serves seed children but holds each fetch until released.
type gatedFetcher struct {
	inner   loader.Fetcher
	release chan struct{}
	err     error
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{
		inner:   loader.NewMockFetcher(seed.Children(), loader.WithLatency(0, 0)),
		release: make(chan struct{}),
	}
}

func (f *gatedFetcher) FetchChildren(ctx context.Context, id string) ([]domain.TreeNode, error) {
	select {
	case <-f.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.inner.FetchChildren(ctx, id)
}

type treeFixture struct {
	svc TreeService
	kv  repository.KVStore
	obs *recordingObserver
}

func setupTree(t *testing.T, f loader.Fetcher, policy loader.StalePolicy) treeFixture {
	t.Helper()
	if f == nil {
		f = loader.NewMockFetcher(seed.Children(), loader.WithLatency(0, 0))
	}
	kv := repository.NewMemoryKVStore()
	ids := idgen.NewNodeGenerator()
	store := persist.NewTreeStore(kv, ids, zap.NewNop())
	obs := &recordingObserver{}
	svc := NewTreeService(context.Background(), store, ids, loader.New(f, policy), zap.NewNop(), obs)
	t.Cleanup(svc.Close)
	return treeFixture{svc: svc, kv: kv, obs: obs}
}

func waitLoad(t *testing.T, l *Load) error {
	t.Helper()
	select {
	case <-l.Done():
		return l.Wait()
	case <-time.After(2 * time.Second):
		t.Fatalf("fetch of %s did not land", l.NodeID)
		return nil
	}
}
