package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rushteam/catalogkit/audit"
	"github.com/rushteam/catalogkit/catalog"
	"github.com/rushteam/catalogkit/core"
	"github.com/rushteam/catalogkit/pipeline"
)

type passNode struct{ name string }

func (n *passNode) Name() string        { return n.name }
func (n *passNode) Kind() pipeline.Kind { return pipeline.KindFilter }
func (n *passNode) Process(_ context.Context, _ *core.QueryContext, records core.Collection) (core.Collection, error) {
	return records, nil
}

func TestRegistry(t *testing.T) {
	Register("test.pass", func(cfg map[string]any) (pipeline.Node, error) {
		name, _ := cfg["name"].(string)
		return &passNode{name: name}, nil
	})
	Register("", nil)
	assert.Contains(t, SupportedTypes(), "test.pass")

	cfg, err := pipeline.ParseYAML([]byte(`
pipeline:
  name: demo
  nodes:
    - type: test.pass
      config: {name: first}
    - type: test.pass
`))
	require.NoError(t, err)

	p, err := BuildPipeline(cfg)
	require.NoError(t, err)
	require.Len(t, p.Nodes, 2)
	assert.Equal(t, "first", p.Nodes[0].Name())

	cfg.Pipeline.Nodes = append(cfg.Pipeline.Nodes, pipeline.NodeConfig{Type: "nope"})
	err = ValidatePipelineConfig(cfg)
	assert.ErrorContains(t, err, `unsupported node type "nope"`)

	err = ValidatePipelineConfig(&pipeline.Config{})
	assert.ErrorContains(t, err, "no nodes")
}

func TestLoadPipeline_JSON(t *testing.T) {
	Register("test.pass", func(map[string]any) (pipeline.Node, error) { return &passNode{name: "json"}, nil })

	path := filepath.Join(t.TempDir(), "pipeline.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"pipeline":{"name":"j","nodes":[{"type":"test.pass"}]}}`), 0o600))

	p, err := LoadPipeline(path)
	require.NoError(t, err)
	assert.Equal(t, "json", p.Nodes[0].Name())

	_, err = LoadPipeline(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "load pipeline")
}

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := LoadSettings("")
	require.NoError(t, err)

	assert.Equal(t, "catalogue.csv", s.Catalog.Path)
	assert.Equal(t, FormatCSV, s.Catalog.Format)
	assert.Equal(t, "price", s.DefaultSortKey())
	assert.Equal(t, 0.0, s.DefaultMinRating())
	assert.Equal(t, 4, s.DefaultBatchConcurrency())
	assert.Equal(t, "info", s.Log.Level)
}

func TestLoadSettings_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalogkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
catalog:
  path: products.yaml
  format: yaml
query:
  sort_key: rating
  min_rating: 3.5
batch:
  concurrency: 8
log:
  level: debug
`), 0o600))
	t.Setenv("CATALOGKIT_BATCH_CONCURRENCY", "2")

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "products.yaml", s.Catalog.Path)
	assert.Equal(t, FormatYAML, s.Catalog.Format)
	assert.Equal(t, "rating", s.DefaultSortKey())
	assert.Equal(t, 3.5, s.DefaultMinRating())
	assert.Equal(t, 2, s.DefaultBatchConcurrency())

	logger, err := s.NewLogger()
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	_, err = LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config")
}

func TestSettings_Validate(t *testing.T) {
	cases := []struct {
		name string
		key  string
		val  any
		want string
	}{
		{"format", "catalog.format", "xml", "catalog.format"},
		{"empty path", "catalog.path", "", "catalog.path"},
		{"sort key", "query.sort_key", "weight", "query.sort_key"},
		{"min rating", "query.min_rating", 6, "query.min_rating"},
		{"concurrency", "batch.concurrency", 0, "batch.concurrency"},
		{"log level", "log.level", "loud", "log.level"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := viper.New()
			setDefaults(v)
			v.Set(tc.key, tc.val)
			_, err := FromViper(v)
			assert.ErrorContains(t, err, tc.want)
		})
	}

	v := viper.New()
	setDefaults(v)
	v.Set("catalog.format", FormatStore)
	v.Set("catalog.key", "")
	_, err := FromViper(v)
	assert.ErrorContains(t, err, "catalog.key")
}

func TestSettings_LoaderAndStore(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	s, err := FromViper(v)
	require.NoError(t, err)

	hs, err := s.OpenStore()
	require.NoError(t, err)
	defer hs.Close()
	assert.Equal(t, "memory", hs.Name())

	l, err := s.Loader(nil, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &catalog.CSVLoader{}, l)

	s.Catalog.Format = FormatYAML
	l, err = s.Loader(nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &catalog.YAMLLoader{}, l)

	s.Catalog.Format = FormatStore
	_, err = s.Loader(nil, nil)
	assert.Error(t, err)
	l, err = s.Loader(hs, nil)
	require.NoError(t, err)
	assert.IsType(t, &catalog.StoreLoader{}, l)

	p, err := s.BuildPipeline()
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestSettings_NewCollector(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	s, err := FromViper(v)
	require.NoError(t, err)

	c, err := s.NewCollector(zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, c)

	s.Audit.Enabled = true
	c, err = s.NewCollector(zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &audit.LogCollector{}, c)

	v.Set("audit.enabled", true)
	v.Set("audit.brokers", []string{"localhost:9092"})
	v.Set("audit.topic", "")
	_, err = FromViper(v)
	assert.ErrorContains(t, err, "audit.topic")
}
