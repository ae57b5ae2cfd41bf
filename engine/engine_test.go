package engine

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rushteam/catalogkit/audit"
	"github.com/rushteam/catalogkit/catalog"
	"github.com/rushteam/catalogkit/config"
	_ "github.com/rushteam/catalogkit/config/builders"
	"github.com/rushteam/catalogkit/core"
	"github.com/rushteam/catalogkit/filter"
	"github.com/rushteam/catalogkit/pipeline"
	"github.com/rushteam/catalogkit/search"
)

func newTestCatalog() *catalog.Catalog {
	return catalog.New(core.Collection{
		{Name: "Widget", Category: "Tools", Price: 10, Rating: 4.5},
		{Name: "Gadget", Category: "Tools", Price: 25, Rating: 3.0},
		{Name: "Widge", Category: "Electronics", Price: 10, Rating: 2.0},
		{Name: "Gizmo", Category: "Garden", Price: 40, Rating: 5.0},
		{Name: "Hammer", Category: "Tools", Price: 15, Rating: 4.0},
	})
}

func ptr(v float64) *float64 { return &v }

func TestEngine_EmptyTermShowsAll(t *testing.T) {
	e := New(newTestCatalog())

	res, err := e.Run(context.Background(), Query{})
	require.NoError(t, err)
	assert.NotEmpty(t, res.QueryID)
	assert.Len(t, res.All, 5)
	assert.Empty(t, res.Stages)
	assert.Nil(t, res.Final)
	assert.False(t, res.Empty())
}

func TestEngine_CategoryFallbackFlow(t *testing.T) {
	e := New(newTestCatalog(), WithLogger(zaptest.NewLogger(t)))

	res, err := e.Run(context.Background(), Query{Term: "tools", MinRating: ptr(3.5)})
	require.NoError(t, err)

	assert.Equal(t, "category", res.SearchField())
	assert.True(t, res.FellBack())
	assert.Equal(t, []string{"Widget", "Gadget", "Hammer"}, res.Found().Names())
	assert.Equal(t, []string{"Gadget", "Hammer", "Widget"}, res.Sorted().Names())

	lo, hi, err := res.PriceBounds()
	require.NoError(t, err)
	assert.Equal(t, 10.0, lo)
	assert.Equal(t, 25.0, hi)

	assert.Equal(t, []string{"Gadget", "Hammer", "Widget"}, res.PriceFiltered().Names())
	assert.Equal(t, []string{"Hammer", "Widget"}, res.Final.Names())
	assert.Equal(t, "price", res.Labels["sort_key"].Value)
	assert.Equal(t, "10-25", res.Labels["price_range"].Value)
	assert.Equal(t, "3.5", res.Labels["min_rating"].Value)
}

func TestEngine_NameMatchAndOptions(t *testing.T) {
	e := New(newTestCatalog())

	res, err := e.Run(context.Background(), Query{
		Term:       "GAD",
		SortKey:    "rating",
		PriceRange: &core.PriceRange{Lo: 20, Hi: 30},
	})
	require.NoError(t, err)
	assert.Equal(t, "name", res.SearchField())
	assert.False(t, res.FellBack())
	assert.Equal(t, []string{"Gadget"}, res.Final.Names())
	assert.Equal(t, "rating", res.Labels["sort_key"].Value)

	res, err = e.Run(context.Background(), Query{Term: "tools", SortKey: "rating"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Widget", "Hammer", "Gadget"}, res.Sorted().Names())
	assert.Equal(t, []string{"Widget", "Hammer", "Gadget"}, res.Final.Names())
}

func TestEngine_NoMatch(t *testing.T) {
	e := New(newTestCatalog())

	res, err := e.Run(context.Background(), Query{Term: "zzz"})
	require.NoError(t, err)
	assert.True(t, res.Empty())
	assert.Empty(t, res.Found())
	assert.Empty(t, res.Final)

	_, _, err = res.PriceBounds()
	assert.True(t, core.IsInvalidRange(err))
}

func TestEngine_InvalidInput(t *testing.T) {
	e := New(newTestCatalog())

	_, err := e.Run(context.Background(), Query{Term: "tools", SortKey: "weight"})
	assert.True(t, core.IsInvalidInput(err))

	_, err = e.Run(context.Background(), Query{Term: "tools", PriceRange: &core.PriceRange{Lo: 30, Hi: 20}})
	assert.True(t, core.IsInvalidRange(err))

	_, err = e.Run(context.Background(), Query{Term: "tools", MinRating: ptr(7)})
	assert.True(t, core.IsInvalidRange(err))
}

func TestEngine_CatalogUntouched(t *testing.T) {
	cat := newTestCatalog()
	before := cat.Records().Names()
	e := New(cat)

	for _, key := range []string{"price", "rating"} {
		_, err := e.Run(context.Background(), Query{Term: "tools", SortKey: key})
		require.NoError(t, err)
	}
	assert.Equal(t, before, cat.Records().Names())
}

func TestEngine_RunBatch(t *testing.T) {
	e := New(newTestCatalog(), WithConcurrency(3))

	queries := make([]Query, 0, 20)
	for i := 0; i < 20; i++ {
		key := "price"
		if i%2 == 1 {
			key = "rating"
		}
		queries = append(queries, Query{Term: "tools", SortKey: key})
	}

	results, err := e.RunBatch(context.Background(), queries)
	require.NoError(t, err)
	require.Len(t, results, len(queries))

	ids := map[string]struct{}{}
	for i, res := range results {
		want := []string{"Gadget", "Hammer", "Widget"}
		if i%2 == 1 {
			want = []string{"Widget", "Hammer", "Gadget"}
		}
		assert.Equal(t, want, res.Final.Names(), fmt.Sprintf("query %d", i))
		ids[res.QueryID] = struct{}{}
	}
	assert.Len(t, ids, len(queries))
}

func TestEngine_RunBatchError(t *testing.T) {
	e := New(newTestCatalog())

	_, err := e.RunBatch(context.Background(), []Query{
		{Term: "tools"},
		{Term: "tools", SortKey: "weight"},
	})
	assert.True(t, core.IsInvalidInput(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.RunBatch(ctx, []Query{{Term: "tools"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_CustomPipeline(t *testing.T) {
	p := &pipeline.Pipeline{Nodes: []pipeline.Node{
		&search.FallbackNode{},
		&filter.MinRatingNode{Threshold: ptr(4)},
	}}
	e := New(newTestCatalog(), WithPipeline(p))

	res, err := e.Run(context.Background(), Query{Term: "tools"})
	require.NoError(t, err)
	assert.Nil(t, res.Sorted())
	assert.Nil(t, res.PriceFiltered())
	assert.Equal(t, []string{"Widget", "Hammer"}, res.Final.Names())

	out, ok := res.Stage("search.fallback")
	require.True(t, ok)
	assert.Len(t, out, 3)
}

type ratingFirst struct{ core.DefaultQueryConfig }

func (ratingFirst) DefaultSortKey() string { return "rating" }

func TestEngine_ConfiguredSortKey(t *testing.T) {
	cfg, err := pipeline.ParseYAML([]byte(`
pipeline:
  name: by-rating
  nodes:
    - type: search.fallback
    - type: rank.heap
      config: {key: rating}
`))
	require.NoError(t, err)
	p, err := config.BuildPipeline(cfg)
	require.NoError(t, err)

	e := New(newTestCatalog(), WithPipeline(p))
	res, err := e.Run(context.Background(), Query{Term: "tools"})
	require.NoError(t, err)
	assert.Equal(t, "rating", res.Labels["sort_key"].Value)
	assert.Equal(t, []string{"Widget", "Hammer", "Gadget"}, res.Final.Names())

	// 查询显式指定时覆盖 Node 配置
	res, err = e.Run(context.Background(), Query{Term: "tools", SortKey: "price"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Gadget", "Hammer", "Widget"}, res.Final.Names())
}

func TestEngine_DefaultSortKeyFromQueryConfig(t *testing.T) {
	e := New(newTestCatalog(), WithQueryConfig(&ratingFirst{}))

	res, err := e.Run(context.Background(), Query{Term: "tools"})
	require.NoError(t, err)
	assert.Equal(t, "rating", res.Labels["sort_key"].Value)
	assert.Equal(t, []string{"Widget", "Hammer", "Gadget"}, res.Sorted().Names())
}

type memCollector struct {
	mu     sync.Mutex
	events []*audit.Event
}

func (c *memCollector) Record(_ context.Context, ev *audit.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
	return nil
}

func (c *memCollector) Close() error { return nil }

func TestEngine_Collector(t *testing.T) {
	c := &memCollector{}
	e := New(newTestCatalog(), WithCollector(c))

	_, err := e.Run(context.Background(), Query{})
	require.NoError(t, err)
	res, err := e.Run(context.Background(), Query{Term: "tools", MinRating: ptr(4)})
	require.NoError(t, err)

	require.Len(t, c.events, 1)
	ev := c.events[0]
	assert.Equal(t, res.QueryID, ev.QueryID)
	assert.Equal(t, "tools", ev.Term)
	assert.Equal(t, "price", ev.SortKey)
	assert.Equal(t, "category", ev.SearchField)
	assert.True(t, ev.Fallback)
	assert.Equal(t, "10-25", ev.PriceRange)
	assert.Equal(t, "4", ev.MinRating)
	assert.Equal(t, 3, ev.Found)
	assert.Equal(t, []string{"Hammer", "Widget"}, ev.Results)
}
