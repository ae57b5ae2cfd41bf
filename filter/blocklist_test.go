package filter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/catalogkit/core"
	"github.com/rushteam/catalogkit/store"
)

type countingStore struct {
	names []string
	err   error
	calls int
}

func (s *countingStore) GetBlocklist(context.Context, string) ([]string, error) {
	s.calls++
	return s.names, s.err
}

func TestBlocklistFilter_Names(t *testing.T) {
	f := NewBlocklistFilter([]string{"widget"}, nil, "")
	node := &FilterNode{Filters: []Filter{f}}

	qctx := &core.QueryContext{}
	out, err := node.Process(context.Background(), qctx, catalog())
	require.NoError(t, err)
	assert.Equal(t, []string{"Gadget", "Widge", "Gizmo"}, out.Names())
	assert.Equal(t, "1", qctx.Labels["filtered.filter.blocklist"].Value)
}

func TestBlocklistFilter_StoreReadOncePerQuery(t *testing.T) {
	s := &countingStore{names: []string{"Gizmo", "GADGET"}}
	f := &BlocklistFilter{Store: s, Key: "catalog:blocked"}
	node := &FilterNode{Filters: []Filter{f}}

	out, err := node.Process(context.Background(), &core.QueryContext{}, catalog())
	require.NoError(t, err)
	assert.Equal(t, []string{"Widget", "Widge"}, out.Names())
	assert.Equal(t, 1, s.calls)

	_, err = node.Process(context.Background(), &core.QueryContext{}, catalog())
	require.NoError(t, err)
	assert.Equal(t, 2, s.calls)
}

func TestBlocklistFilter_StoreError(t *testing.T) {
	f := &BlocklistFilter{Store: &countingStore{err: errors.New("down")}, Key: "k"}
	_, err := f.ShouldFilter(context.Background(), nil, catalog()[0])
	assert.Error(t, err)

	// FilterNode 遇到过滤器错误时保留记录
	out, err := (&FilterNode{Filters: []Filter{f}}).Process(context.Background(), nil, catalog())
	require.NoError(t, err)
	assert.Len(t, out, 4)
}

func TestStoreAdapter_Blocklist(t *testing.T) {
	ctx := context.Background()
	ms := store.NewMemoryStore()
	defer ms.Close()
	a := NewStoreAdapter(ms)

	names, err := a.GetBlocklist(ctx, "catalog:blocked")
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, a.SetBlocklist(ctx, "catalog:blocked", []string{"Widge"}))
	f := NewBlocklistFilter(nil, a, "catalog:blocked")
	out, err := (&FilterNode{Filters: []Filter{f}}).Process(ctx, &core.QueryContext{}, catalog())
	require.NoError(t, err)
	assert.Equal(t, []string{"Widget", "Gadget", "Gizmo"}, out.Names())

	require.NoError(t, ms.Set(ctx, "bad", []byte("{")))
	_, err = a.GetBlocklist(ctx, "bad")
	assert.Error(t, err)
}
