package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/kanbantree/internal/domain"
	"github.com/alexanderramin/kanbantree/internal/loader"
	"github.com/alexanderramin/kanbantree/internal/seed"
	"github.com/alexanderramin/kanbantree/internal/testutil"
	"github.com/alexanderramin/kanbantree/internal/tree"
)

func findNode(t *testing.T, svc TreeService, id string) domain.TreeNode {
	t.Helper()
	n, ok := tree.Find(svc.Forest(), id)
	require.True(t, ok, "node %s not found", id)
	return n
}

func TestTreeService_StartsFromSeed(t *testing.T) {
	fx := setupTree(t, nil, loader.DiscardStale)
	assert.Equal(t, seed.Forest(), fx.svc.Forest())
}

func TestTreeService_ToggleFetchesLazyChildren(t *testing.T) {
	f := newGatedFetcher()
	fx := setupTree(t, f, loader.DiscardStale)
	ctx := context.Background()

	load, err := fx.svc.Toggle(ctx, "node-1")
	require.NoError(t, err)
	require.NotNil(t, load)
	assert.True(t, fx.svc.Expanded("node-1"))
	assert.True(t, findNode(t, fx.svc, "node-1").IsLoading())

	again, err := fx.svc.Toggle(ctx, "node-1")
	require.NoError(t, err)
	assert.Nil(t, again, "collapsing never fetches")
	assert.False(t, fx.svc.Expanded("node-1"))

	close(f.release)
	require.NoError(t, waitLoad(t, load))

	n := findNode(t, fx.svc, "node-1")
	assert.Equal(t, domain.ChildrenFetched, n.State)
	assert.Equal(t, []string{"node-1-1", "node-1-2", "node-1-3"}, testutil.RootIDs(n.Children))
	assert.Contains(t, fx.obs.names(), "fetch-children")
}

func TestTreeService_ToggleFetchedNodeNeverRefetches(t *testing.T) {
	fx := setupTree(t, nil, loader.DiscardStale)
	ctx := context.Background()

	load, _ := fx.svc.Toggle(ctx, "node-3")
	require.NoError(t, waitLoad(t, load))

	_, _ = fx.svc.Toggle(ctx, "node-3")
	load, err := fx.svc.Toggle(ctx, "node-3")
	require.NoError(t, err)
	assert.Nil(t, load)
	assert.True(t, fx.svc.Expanded("node-3"))
}

func TestTreeService_ToggleLeafIsNoop(t *testing.T) {
	fx := setupTree(t, nil, loader.DiscardStale)
	load, err := fx.svc.Toggle(context.Background(), "node-4")
	require.NoError(t, err)
	assert.Nil(t, load)
	assert.False(t, fx.svc.Expanded("node-4"))

	_, err = fx.svc.Toggle(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
}

func TestTreeService_FetchSurvivesCallerCancellation(t *testing.T) {
	f := newGatedFetcher()
	fx := setupTree(t, f, loader.DiscardStale)
	ctx, cancel := context.WithCancel(context.Background())

	load, err := fx.svc.Toggle(ctx, "node-2")
	require.NoError(t, err)
	cancel()
	close(f.release)

	require.NoError(t, waitLoad(t, load))
	assert.Len(t, findNode(t, fx.svc, "node-2").Children, 3)
}

func TestTreeService_FetchErrorAllowsRetry(t *testing.T) {
	f := newGatedFetcher()
	f.err = errors.New("backend down")
	close(f.release)
	fx := setupTree(t, f, loader.DiscardStale)
	ctx := context.Background()

	load, _ := fx.svc.Toggle(ctx, "node-2")
	assert.ErrorContains(t, waitLoad(t, load), "backend down")
	assert.True(t, findNode(t, fx.svc, "node-2").NeedsFetch())
	assert.False(t, fx.svc.Expanded("node-2"))

	f.err = nil
	load, _ = fx.svc.Toggle(ctx, "node-2")
	require.NotNil(t, load)
	require.NoError(t, waitLoad(t, load))
	assert.Len(t, findNode(t, fx.svc, "node-2").Children, 3)
}

func TestTreeService_ResetDiscardsInFlightFetch(t *testing.T) {
	f := newGatedFetcher()
	fx := setupTree(t, f, loader.DiscardStale)
	ctx := context.Background()

	load, _ := fx.svc.Toggle(ctx, "node-1")
	fx.svc.Reset(ctx)
	close(f.release)
	require.NoError(t, waitLoad(t, load))

	n := findNode(t, fx.svc, "node-1")
	assert.True(t, n.NeedsFetch(), "stale result must not land on the fresh seed")
	assert.Nil(t, n.Children)
}

func TestTreeService_ReviveStaleAppliesAfterReset(t *testing.T) {
	f := newGatedFetcher()
	fx := setupTree(t, f, loader.ReviveStale)
	ctx := context.Background()

	load, _ := fx.svc.Toggle(ctx, "node-1")
	fx.svc.Reset(ctx)
	close(f.release)
	require.NoError(t, waitLoad(t, load))

	assert.Len(t, findNode(t, fx.svc, "node-1").Children, 3)
}

func TestTreeService_DeleteDuringFetchDiscards(t *testing.T) {
	f := newGatedFetcher()
	fx := setupTree(t, f, loader.DiscardStale)
	ctx := context.Background()

	load, _ := fx.svc.Toggle(ctx, "node-1")
	require.NoError(t, fx.svc.Delete(ctx, "node-1"))
	close(f.release)
	require.NoError(t, waitLoad(t, load))

	assert.Equal(t, []string{"node-2", "node-3", "node-4"}, testutil.RootIDs(fx.svc.Forest()))
}

func TestTreeService_AddChildWhileLoadingKeepsBoth(t *testing.T) {
	f := newGatedFetcher()
	fx := setupTree(t, f, loader.DiscardStale)
	ctx := context.Background()

	load, _ := fx.svc.Toggle(ctx, "node-3")
	child, err := fx.svc.AddChild(ctx, "node-3", "Queue")
	require.NoError(t, err)
	assert.Equal(t, "node-custom-1001", child.ID)

	close(f.release)
	require.NoError(t, waitLoad(t, load))

	n := findNode(t, fx.svc, "node-3")
	assert.Equal(t, []string{"node-3-1", "node-3-2", "node-custom-1001"}, testutil.RootIDs(n.Children))
}

func TestTreeService_AddChildToUnfetchedParent(t *testing.T) {
	fx := setupTree(t, nil, loader.DiscardStale)
	ctx := context.Background()

	child, err := fx.svc.AddChild(ctx, "node-2", "  Svelte ")
	require.NoError(t, err)
	assert.Equal(t, "Svelte", child.Label)

	n := findNode(t, fx.svc, "node-2")
	assert.Equal(t, domain.ChildrenFetched, n.State)
	assert.Equal(t, []string{child.ID}, testutil.RootIDs(n.Children))
	assert.True(t, fx.svc.Expanded("node-2"))

	load, err := fx.svc.Toggle(ctx, "node-2")
	require.NoError(t, err)
	assert.Nil(t, load, "the parent now counts as fetched")
}

func TestTreeService_AddRejects(t *testing.T) {
	fx := setupTree(t, nil, loader.DiscardStale)
	ctx := context.Background()

	_, err := fx.svc.AddChild(ctx, "node-1", "")
	assert.ErrorIs(t, err, domain.ErrEmptyLabel)
	_, err = fx.svc.AddChild(ctx, "ghost", "x")
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
	_, err = fx.svc.AddRoot(ctx, "\t")
	assert.ErrorIs(t, err, domain.ErrEmptyLabel)
	assert.Equal(t, uint64(0), fx.svc.Revision())
}

func TestTreeService_AddRootAndRename(t *testing.T) {
	fx := setupTree(t, nil, loader.DiscardStale)
	ctx := context.Background()

	root, err := fx.svc.AddRoot(ctx, "Ops")
	require.NoError(t, err)
	assert.Equal(t, []string{"node-1", "node-2", "node-3", "node-4", root.ID}, testutil.RootIDs(fx.svc.Forest()))

	require.NoError(t, fx.svc.Rename(ctx, root.ID, " Operations "))
	assert.Equal(t, "Operations", findNode(t, fx.svc, root.ID).Label)

	assert.ErrorIs(t, fx.svc.Rename(ctx, root.ID, "  "), domain.ErrEmptyLabel)
	assert.Equal(t, "Operations", findNode(t, fx.svc, root.ID).Label)
	assert.ErrorIs(t, fx.svc.Rename(ctx, "ghost", "x"), domain.ErrNodeNotFound)
}

func TestTreeService_DragDropMovesAfterTarget(t *testing.T) {
	fx := setupTree(t, nil, loader.DiscardStale)
	ctx := context.Background()

	require.True(t, fx.svc.DragStart("node-1"))
	fx.svc.DragOver("node-3")
	over, ok := fx.svc.OverNode()
	require.True(t, ok)
	assert.Equal(t, "node-3", over)

	require.True(t, fx.svc.Drop(ctx, "node-3"))
	assert.Equal(t, []string{"node-2", "node-3", "node-1", "node-4"}, testutil.RootIDs(fx.svc.Forest()))
	_, dragging := fx.svc.Dragging()
	assert.False(t, dragging)
}

func TestTreeService_DropIntoOwnSubtreeAppendsAtRoot(t *testing.T) {
	fx := setupTree(t, nil, loader.DiscardStale)
	ctx := context.Background()

	load, _ := fx.svc.Toggle(ctx, "node-1")
	require.NoError(t, waitLoad(t, load))

	fx.svc.DragStart("node-1")
	fx.svc.Drop(ctx, "node-1-2")

	forest := fx.svc.Forest()
	assert.Equal(t, []string{"node-2", "node-3", "node-4", "node-1"}, testutil.RootIDs(forest))
	assert.Len(t, findNode(t, fx.svc, "node-1").Children, 3)
	require.NoError(t, tree.Validate(forest))
}

func TestTreeService_DropOnSelfIsNoop(t *testing.T) {
	fx := setupTree(t, nil, loader.DiscardStale)
	fx.svc.DragStart("node-2")
	assert.True(t, fx.svc.Drop(context.Background(), "node-2"))
	assert.Equal(t, uint64(0), fx.svc.Revision())
}

func TestTreeService_MoveAfter(t *testing.T) {
	fx := setupTree(t, nil, loader.DiscardStale)
	ctx := context.Background()

	require.NoError(t, fx.svc.MoveAfter(ctx, "node-4", "node-1"))
	assert.Equal(t, []string{"node-1", "node-4", "node-2", "node-3"}, testutil.RootIDs(fx.svc.Forest()))
	assert.ErrorIs(t, fx.svc.MoveAfter(ctx, "node-4", "ghost"), domain.ErrNodeNotFound)
}

func TestTreeService_DeleteRemovesSubtreeAndPersists(t *testing.T) {
	fx := setupTree(t, nil, loader.DiscardStale)
	ctx := context.Background()

	load, _ := fx.svc.Toggle(ctx, "node-3")
	require.NoError(t, waitLoad(t, load))
	require.NoError(t, fx.svc.Delete(ctx, "node-3"))

	assert.False(t, fx.svc.Expanded("node-3"))
	raw, err := fx.kv.Get(ctx, seed.TreeKey)
	require.NoError(t, err)
	var saved []domain.TreeNode
	require.NoError(t, json.Unmarshal([]byte(raw), &saved))
	assert.Equal(t, []string{"node-1", "node-2", "node-4"}, testutil.RootIDs(saved))
	assert.Equal(t, 3, fx.obs.last().Fields["removed"])
}
