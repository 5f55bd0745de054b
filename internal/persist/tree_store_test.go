package persist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alexanderramin/kanbantree/internal/domain"
	"github.com/alexanderramin/kanbantree/internal/idgen"
	"github.com/alexanderramin/kanbantree/internal/repository"
	"github.com/alexanderramin/kanbantree/internal/seed"
	"github.com/alexanderramin/kanbantree/internal/testutil"
	"github.com/alexanderramin/kanbantree/internal/tree"
)

func setupTreeStore(t *testing.T) (*TreeStore, repository.KVStore, *idgen.Generator) {
	t.Helper()
	kv := repository.NewMemoryKVStore()
	ids := idgen.NewNodeGenerator()
	return NewTreeStore(kv, ids, zap.NewNop()), kv, ids
}

func TestTreeStore_LoadEmptyReturnsSeed(t *testing.T) {
	store, _, ids := setupTreeStore(t)
	assert.Equal(t, seed.Forest(), store.Load(context.Background()))
	assert.Equal(t, "node-custom-1001", ids.Next())
}

func TestTreeStore_SaveThenLoadKeepsLazyState(t *testing.T) {
	store, _, _ := setupTreeStore(t)
	ctx := context.Background()

	forest := []domain.TreeNode{
		testutil.NewTestNode("a", testutil.WithChildren(
			testutil.NewTestNode("a1", testutil.Lazy()),
			testutil.NewTestNode("a2"),
		)),
		testutil.NewTestNode("b", testutil.Lazy()),
	}
	require.NoError(t, store.Save(ctx, forest))

	got := store.Load(ctx)
	assert.Equal(t, forest, got)
	a1, _ := tree.Find(got, "a1")
	assert.True(t, a1.NeedsFetch())
}

func TestTreeStore_SaveSettlesLoadingNodes(t *testing.T) {
	store, _, _ := setupTreeStore(t)
	ctx := context.Background()

	forest := []domain.TreeNode{
		testutil.NewTestNode("plain", testutil.Lazy(), testutil.Loading()),
		testutil.NewTestNode("with-local", testutil.WithChildren(testutil.NewTestNode("node-custom-1001")), testutil.Loading()),
	}
	require.NoError(t, store.Save(ctx, forest))

	got := store.Load(ctx)
	plain, _ := tree.Find(got, "plain")
	assert.True(t, plain.NeedsFetch())
	withLocal, _ := tree.Find(got, "with-local")
	assert.Equal(t, domain.ChildrenFetched, withLocal.State)
	assert.Len(t, withLocal.Children, 1)

	assert.True(t, forest[0].IsLoading(), "save must not modify its input")
}

func TestTreeStore_LoadReseedsNodeIDs(t *testing.T) {
	store, _, ids := setupTreeStore(t)
	ctx := context.Background()
	forest := tree.AddRoot(seed.Forest(), testutil.NewTestNode("node-custom-1042"))
	require.NoError(t, store.Save(ctx, forest))

	store.Load(ctx)
	assert.Equal(t, "node-custom-1043", ids.Next())
}

func TestTreeStore_LoadFallsBackOnDuplicateIDs(t *testing.T) {
	store, kv, _ := setupTreeStore(t)
	ctx := context.Background()
	raw := `[{"id":"x","label":"one","hasChildren":false,"children":[]},{"id":"x","label":"two","hasChildren":false,"children":[]}]`
	require.NoError(t, kv.Set(ctx, seed.TreeKey, raw))

	assert.Equal(t, seed.Forest(), store.Load(ctx))
}

func TestTreeStore_Reset(t *testing.T) {
	store, kv, _ := setupTreeStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, nil))

	assert.Equal(t, seed.Forest(), store.Reset(ctx))
	_, err := kv.Get(ctx, seed.TreeKey)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
