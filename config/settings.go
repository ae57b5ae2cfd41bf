package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rushteam/catalogkit/audit"
	"github.com/rushteam/catalogkit/catalog"
	"github.com/rushteam/catalogkit/core"
	"github.com/rushteam/catalogkit/filter"
	"github.com/rushteam/catalogkit/pipeline"
	"github.com/rushteam/catalogkit/rank"
	"github.com/rushteam/catalogkit/store"
)

// EnvPrefix 是环境变量前缀，例如 CATALOGKIT_CATALOG_PATH 覆盖 catalog.path。
const EnvPrefix = "CATALOGKIT"

// 目录来源
const (
	FormatCSV   = "csv"
	FormatYAML  = "yaml"
	FormatStore = "store"
)

// Settings 是进程级配置，来源优先级：环境变量 → 配置文件 → 默认值。
type Settings struct {
	Catalog  CatalogSettings  `mapstructure:"catalog"`
	Redis    RedisSettings    `mapstructure:"redis"`
	Pipeline PipelineSettings `mapstructure:"pipeline"`
	Query    QuerySettings    `mapstructure:"query"`
	Batch    BatchSettings    `mapstructure:"batch"`
	Log      LogSettings      `mapstructure:"log"`
	Audit    AuditSettings    `mapstructure:"audit"`
}

type CatalogSettings struct {
	Path   string `mapstructure:"path"`
	Format string `mapstructure:"format"`
	// Key 是 store 格式下的 Hash 名
	Key    string `mapstructure:"key"`
	Strict bool   `mapstructure:"strict"`
}

// RedisSettings 的 Addr 为空时使用进程内 MemoryStore。
type RedisSettings struct {
	Addr string `mapstructure:"addr"`
	DB   int    `mapstructure:"db"`
}

type PipelineSettings struct {
	// Path 为空时使用默认 Pipeline
	Path string `mapstructure:"path"`
}

type QuerySettings struct {
	SortKey   string  `mapstructure:"sort_key"`
	MinRating float64 `mapstructure:"min_rating"`
}

type BatchSettings struct {
	Concurrency int `mapstructure:"concurrency"`
}

type LogSettings struct {
	Level string `mapstructure:"level"`
}

// AuditSettings 控制查询事件记录：配置了 brokers 时写入 Kafka，否则写日志。
type AuditSettings struct {
	Enabled     bool     `mapstructure:"enabled"`
	Brokers     []string `mapstructure:"brokers"`
	Topic       string   `mapstructure:"topic"`
	Compression string   `mapstructure:"compression"`
}

func setDefaults(v *viper.Viper) {
	defaults := &core.DefaultQueryConfig{}
	v.SetDefault("catalog.path", "catalogue.csv")
	v.SetDefault("catalog.format", FormatCSV)
	v.SetDefault("catalog.key", "catalog:products")
	v.SetDefault("catalog.strict", false)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("pipeline.path", "")
	v.SetDefault("query.sort_key", defaults.DefaultSortKey())
	v.SetDefault("query.min_rating", defaults.DefaultMinRating())
	v.SetDefault("batch.concurrency", defaults.DefaultBatchConcurrency())
	v.SetDefault("log.level", "info")
	v.SetDefault("audit.enabled", false)
	v.SetDefault("audit.brokers", []string{})
	v.SetDefault("audit.topic", "catalogkit.queries")
	v.SetDefault("audit.compression", "")
}

// LoadSettings 读取配置。path 为空时只使用环境变量与默认值。
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return FromViper(v)
}

// FromViper 从已配置好的 viper 实例解析 Settings 并校验。
func FromViper(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate 校验取值范围。
func (s *Settings) Validate() error {
	switch s.Catalog.Format {
	case FormatCSV, FormatYAML:
		if s.Catalog.Path == "" {
			return fmt.Errorf("catalog.path is required for format %q", s.Catalog.Format)
		}
	case FormatStore:
		if s.Catalog.Key == "" {
			return fmt.Errorf("catalog.key is required for format %q", FormatStore)
		}
	default:
		return fmt.Errorf("catalog.format %q not supported (csv, yaml, store)", s.Catalog.Format)
	}
	if _, err := rank.ParseKey(s.Query.SortKey); err != nil {
		return fmt.Errorf("query.sort_key: %w", err)
	}
	if err := filter.CheckThreshold(s.Query.MinRating); err != nil {
		return fmt.Errorf("query.min_rating: %w", err)
	}
	if s.Batch.Concurrency <= 0 {
		return fmt.Errorf("batch.concurrency must be positive, got %d", s.Batch.Concurrency)
	}
	if _, err := zapcore.ParseLevel(s.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if s.Audit.Enabled && len(s.Audit.Brokers) > 0 && s.Audit.Topic == "" {
		return fmt.Errorf("audit.topic is required when audit.brokers is set")
	}
	return nil
}

// Settings 同时作为 core.QueryConfig 提供查询默认值。
var _ core.QueryConfig = (*Settings)(nil)

func (s *Settings) DefaultSortKey() string       { return s.Query.SortKey }
func (s *Settings) DefaultMinRating() float64    { return s.Query.MinRating }
func (s *Settings) DefaultBatchConcurrency() int { return s.Batch.Concurrency }

// NewLogger 按 log.level 构建 zap logger。
func (s *Settings) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(s.Log.Level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}

// OpenStore 打开目录快照所用的 HashStore：配置了 redis.addr 时连接 Redis，否则使用 MemoryStore。
func (s *Settings) OpenStore() (core.HashStore, error) {
	if s.Redis.Addr == "" {
		return store.NewMemoryStore(), nil
	}
	rs, err := store.NewRedisStore(s.Redis.Addr, s.Redis.DB)
	if err != nil {
		return nil, err
	}
	return rs, nil
}

// Loader 按 catalog.format 返回目录加载器；store 格式需要传入 HashStore。
func (s *Settings) Loader(hs core.HashStore, logger *zap.Logger) (catalog.Loader, error) {
	switch s.Catalog.Format {
	case FormatCSV:
		return &catalog.CSVLoader{Path: s.Catalog.Path, Strict: s.Catalog.Strict, Logger: logger}, nil
	case FormatYAML:
		return &catalog.YAMLLoader{Path: s.Catalog.Path}, nil
	case FormatStore:
		if hs == nil {
			return nil, fmt.Errorf("catalog.format %q needs a store", FormatStore)
		}
		return &catalog.StoreLoader{Store: hs, Key: s.Catalog.Key}, nil
	default:
		return nil, fmt.Errorf("catalog.format %q not supported", s.Catalog.Format)
	}
}

// BuildPipeline 读取 pipeline.path；未配置时返回 nil，由调用方使用默认 Pipeline。
func (s *Settings) BuildPipeline() (*pipeline.Pipeline, error) {
	if s.Pipeline.Path == "" {
		return nil, nil
	}
	return LoadPipeline(s.Pipeline.Path)
}

// NewCollector 按 audit 配置创建查询事件收集器；未启用时返回 nil。
func (s *Settings) NewCollector(logger *zap.Logger) (audit.Collector, error) {
	if !s.Audit.Enabled {
		return nil, nil
	}
	if len(s.Audit.Brokers) == 0 {
		return &audit.LogCollector{Logger: logger}, nil
	}
	kc, err := audit.NewKafkaCollector(audit.KafkaConfig{
		Brokers:     s.Audit.Brokers,
		Topic:       s.Audit.Topic,
		Compression: s.Audit.Compression,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}
	return kc, nil
}
