package audit

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"
)

// producer 是 KafkaCollector 用到的 kgo.Client 方法子集
type producer interface {
	Produce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))
	Flush(ctx context.Context) error
	Close()
}

// KafkaConfig Kafka 采集器配置
type KafkaConfig struct {
	Brokers []string
	Topic   string

	// BatchSize 缓冲达到该数量时立即发送，默认 100
	BatchSize int
	// FlushInterval 定时发送间隔，默认 1 秒
	FlushInterval time.Duration
	// ClientID 默认 catalogkit-audit
	ClientID string
	// Compression 支持 gzip、snappy、lz4、zstd，为空时不压缩
	Compression string

	Logger *zap.Logger
}

// KafkaCollector 把查询事件批量写入 Kafka，key 为 query_id。
type KafkaCollector struct {
	client        producer
	topic         string
	batchSize     int
	flushInterval time.Duration
	logger        *zap.Logger

	mu        sync.Mutex
	buffer    []*Event
	lastFlush time.Time
	closed    bool
	closeOnce sync.Once
	wg        sync.WaitGroup
	stopCh    chan struct{}
}

// NewKafkaCollector 创建 Kafka 采集器
func NewKafkaCollector(cfg KafkaConfig) (*KafkaCollector, error) {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		return nil, errors.New("audit: kafka needs brokers and a topic")
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "catalogkit-audit"
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.RequiredAcks(kgo.LeaderAck()),
		kgo.DisableIdempotentWrite(),
	}
	switch cfg.Compression {
	case "gzip":
		opts = append(opts, kgo.ProducerBatchCompression(kgo.GzipCompression()))
	case "snappy":
		opts = append(opts, kgo.ProducerBatchCompression(kgo.SnappyCompression()))
	case "lz4":
		opts = append(opts, kgo.ProducerBatchCompression(kgo.Lz4Compression()))
	case "zstd":
		opts = append(opts, kgo.ProducerBatchCompression(kgo.ZstdCompression()))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, err
	}
	return newKafkaCollector(client, cfg), nil
}

func newKafkaCollector(client producer, cfg KafkaConfig) *KafkaCollector {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	c := &KafkaCollector{
		client:        client,
		topic:         cfg.Topic,
		batchSize:     cfg.BatchSize,
		flushInterval: cfg.FlushInterval,
		logger:        cfg.Logger,
		buffer:        make([]*Event, 0, cfg.BatchSize),
		lastFlush:     time.Now(),
		stopCh:        make(chan struct{}),
	}
	c.wg.Add(1)
	go c.flushLoop()
	return c
}

// Record 缓冲事件，不阻塞查询。关闭后的调用被忽略。
func (c *KafkaCollector) Record(_ context.Context, ev *Event) error {
	if ev == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.buffer = append(c.buffer, ev)
	if len(c.buffer) >= c.batchSize {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.flush()
		}()
	}
	return nil
}

func (c *KafkaCollector) flushLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			due := len(c.buffer) > 0 && time.Since(c.lastFlush) >= c.flushInterval
			c.mu.Unlock()
			if due {
				c.flush()
			}
		case <-c.stopCh:
			return
		}
	}
}

func (c *KafkaCollector) flush() {
	c.mu.Lock()
	if len(c.buffer) == 0 {
		c.mu.Unlock()
		return
	}
	events := make([]*Event, len(c.buffer))
	copy(events, c.buffer)
	c.buffer = c.buffer[:0]
	c.lastFlush = time.Now()
	c.mu.Unlock()

	for _, ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			c.logger.Warn("audit: marshal event", zap.String("query_id", ev.QueryID), zap.Error(err))
			continue
		}
		record := &kgo.Record{
			Topic: c.topic,
			Key:   []byte(ev.QueryID),
			Value: data,
		}
		c.client.Produce(context.Background(), record, func(r *kgo.Record, err error) {
			if err != nil {
				c.logger.Warn("audit: produce failed", zap.String("query_id", string(r.Key)), zap.Error(err))
			}
		})
	}
}

// Close 发送剩余缓冲并关闭客户端，可重复调用。
func (c *KafkaCollector) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()

		close(c.stopCh)
		c.wg.Wait()
		c.flush()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = c.client.Flush(ctx)
		c.client.Close()
	})
	return err
}
