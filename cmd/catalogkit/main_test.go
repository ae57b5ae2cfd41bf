package main

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CATALOGKIT_REDIS_ADDR", "")
	var out bytes.Buffer
	err := newApp(&out).Run(append([]string{"catalogkit", "--log-level", "error"}, args...))
	return out.String(), err
}

func TestListCommand(t *testing.T) {
	out, err := run(t, "list", "--catalog", "testdata/catalogue.csv")
	require.NoError(t, err)

	assert.Contains(t, out, "All Products")
	assert.Contains(t, out, "Name")
	for _, name := range []string{"Widget", "Gadget", "Widge", "Gizmo", "Hammer"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "$10")
	assert.Contains(t, out, "4.5 stars")
}

func TestQueryCommand_Stages(t *testing.T) {
	out, err := run(t, "query", "--catalog", "testdata/catalogue.csv", "--term", "tools", "--min-rating", "3.5")
	require.NoError(t, err)

	assert.Contains(t, out, "No products found for 'tools'. Trying by category...")
	assert.Contains(t, out, "Results for 'tools'")
	assert.Contains(t, out, "Sort by Price")
	assert.Contains(t, out, "Filtered by Price: $10 - $25")
	assert.Contains(t, out, "Filtered by Rating: ≥ 3.5 stars")

	// 排序表中 Gadget 在 Hammer 之前
	sorted := out[strings.Index(out, "Sort by Price"):]
	assert.Less(t, strings.Index(sorted, "Gadget"), strings.Index(sorted, "Hammer"))

	final := out[strings.Index(out, "Filtered by Rating"):]
	assert.NotContains(t, final, "Gadget")
	assert.Contains(t, final, "Hammer")
}

func TestQueryCommand_NoTermAndNoMatch(t *testing.T) {
	out, err := run(t, "query", "--catalog", "testdata/catalogue.csv")
	require.NoError(t, err)
	assert.Contains(t, out, "Search for a product to view results.")

	out, err = run(t, "query", "--catalog", "testdata/catalogue.csv", "--term", "zzz")
	require.NoError(t, err)
	assert.Contains(t, out, "No products found for 'zzz'.")
	assert.NotContains(t, out, "Sort by")
}

func TestQueryCommand_PriceAndSort(t *testing.T) {
	out, err := run(t, "query", "--catalog", "testdata/catalogue.csv",
		"--term", "tools", "--sort", "rating", "--max-price", "20")
	require.NoError(t, err)
	assert.Contains(t, out, "Sort by Rating")
	assert.Contains(t, out, "Filtered by Price: $0 - $20")

	final := out[strings.Index(out, "Filtered by Rating"):]
	assert.NotContains(t, final, "Gadget")
	assert.Contains(t, final, "Widget")
	assert.Contains(t, final, "Hammer")
}

func TestQueryCommand_MinPriceOnly(t *testing.T) {
	out, err := run(t, "query", "--catalog", "testdata/catalogue.csv", "--term", "tools", "--min-price", "12")
	require.NoError(t, err)
	assert.Contains(t, out, "Filtered by Price: $12 - $+Inf")

	final := out[strings.Index(out, "Filtered by Rating"):]
	assert.Contains(t, final, "Gadget")
	assert.Contains(t, final, "Hammer")
	assert.NotContains(t, final, "Widget")
}

func TestQueryCommand_Batch(t *testing.T) {
	out, err := run(t, "query", "--catalog", "testdata/catalogue.csv", "--term", "widg", "--term", "tools")
	require.NoError(t, err)

	first := strings.Index(out, "Results for 'widg'")
	second := strings.Index(out, "Results for 'tools'")
	require.GreaterOrEqual(t, first, 0)
	assert.Greater(t, second, first)
}

func TestQueryCommand_Pipeline(t *testing.T) {
	out, err := run(t, "query", "--catalog", "testdata/catalogue.csv",
		"--term", "tools", "--pipeline", "testdata/pipeline.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "Sort by Rating")

	final := out[strings.Index(out, "filter.node (filter)"):]
	assert.Contains(t, final, "Widget")
	assert.Contains(t, final, "Hammer")
	assert.NotContains(t, final, "Gadget")
}

func TestQueryCommand_Errors(t *testing.T) {
	_, err := run(t, "query", "--catalog", "testdata/catalogue.csv", "--term", "tools", "--sort", "weight")
	assert.ErrorContains(t, err, "weight")

	_, err = run(t, "query", "--catalog", "testdata/catalogue.csv", "--term", "tools", "--min-rating", "9")
	assert.Error(t, err)

	_, err = run(t, "list", "--catalog", "testdata/missing.csv")
	assert.Error(t, err)

	_, err = run(t, "list", "--catalog", "testdata/catalogue.csv", "--format", "xml")
	assert.ErrorContains(t, err, "catalog.format")

	var out bytes.Buffer
	err = newApp(&out).Run([]string{"catalogkit", "--log-level", "loud", "list"})
	assert.ErrorContains(t, err, "log level")
}

func TestSnapshotCommand_NeedsRedis(t *testing.T) {
	out, err := run(t, "snapshot", "--catalog", "testdata/catalogue.csv", "--key", "catalog:test")
	assert.ErrorContains(t, err, "redis.addr")
	assert.NotContains(t, out, "Saved")

	_, err = run(t, "snapshot", "--format", "store")
	assert.Error(t, err)
}

func TestSnapshotCommand_Redis(t *testing.T) {
	addr := os.Getenv("CATALOGKIT_REDIS_ADDR")
	if addr == "" {
		t.Skip("CATALOGKIT_REDIS_ADDR not set")
	}
	var out bytes.Buffer
	err := newApp(&out).Run([]string{"catalogkit", "--log-level", "error",
		"snapshot", "--catalog", "testdata/catalogue.csv", "--key", "catalogkit:test:snapshot"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), `Saved 5 products to redis key "catalogkit:test:snapshot"`)

	out.Reset()
	t.Setenv("CATALOGKIT_CATALOG_KEY", "catalogkit:test:snapshot")
	err = newApp(&out).Run([]string{"catalogkit", "--log-level", "error", "list", "--format", "store"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Hammer")
}
