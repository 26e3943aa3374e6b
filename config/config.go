// Package config defines the store's configuration surface (spec.md §6):
// a Config value with functional-option construction and a YAML loader,
// in the spirit of mebo's internal/options generic Option[T]/Apply
// pattern — re-expressed directly here rather than imported, since a
// handful of concrete fields does not need a generic indirection layer.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ziwon/fx-store-poc/format"
)

// BackpressurePolicy selects what AppendRecord does when the compression
// queue is full (spec.md §4.5/§6).
type BackpressurePolicy string

const (
	BackpressureBlock  BackpressurePolicy = "block"
	BackpressureReject BackpressurePolicy = "reject"
)

// Config holds every recognized store option from spec.md §6.
type Config struct {
	CodecLevel         int                    `yaml:"codec_level"`
	CodecDictionary    []byte                 `yaml:"codec_dictionary,omitempty"`
	Codec              format.CompressionType `yaml:"-"`
	WorkerThreads      int                    `yaml:"worker_threads"`
	QueueCapacity      int                    `yaml:"queue_capacity"`
	AccMaxRecords      int                    `yaml:"acc_max_records"`
	AccMaxAge          time.Duration          `yaml:"acc_max_age"`
	InflatedCapBytes   int64                  `yaml:"inflated_cap_bytes,omitempty"`
	BackpressurePolicy BackpressurePolicy     `yaml:"backpressure_policy"`
}

// Default returns the spec-mandated defaults: codec level 3, LZ4, four
// worker threads with a 64-slot queue, a 2048-record/1s accumulator, and
// blocking backpressure.
func Default() Config {
	return Config{
		CodecLevel:         3,
		Codec:              format.CompressionLZ4,
		WorkerThreads:      4,
		QueueCapacity:      64,
		AccMaxRecords:      2048,
		AccMaxAge:          time.Second,
		BackpressurePolicy: BackpressureBlock,
	}
}

// Option mutates a Config during construction.
type Option func(*Config)

// Apply runs every opt against cfg in order.
func Apply(cfg *Config, opts ...Option) {
	for _, opt := range opts {
		opt(cfg)
	}
}

// WithCodec selects the block compression codec.
func WithCodec(c format.CompressionType) Option {
	return func(cfg *Config) { cfg.Codec = c }
}

// WithCodecLevel sets the compression effort level.
func WithCodecLevel(level int) Option {
	return func(cfg *Config) { cfg.CodecLevel = level }
}

// WithCodecDictionary primes the codec with a trained dictionary.
func WithCodecDictionary(dict []byte) Option {
	return func(cfg *Config) { cfg.CodecDictionary = dict }
}

// WithWorkerThreads sets the compression pool's goroutine count.
func WithWorkerThreads(n int) Option {
	return func(cfg *Config) { cfg.WorkerThreads = n }
}

// WithQueueCapacity sets the compression queue's backpressure threshold.
func WithQueueCapacity(n int) Option {
	return func(cfg *Config) { cfg.QueueCapacity = n }
}

// WithAccumulator sets the ingest accumulator's seal thresholds.
func WithAccumulator(maxRecords int, maxAge time.Duration) Option {
	return func(cfg *Config) {
		cfg.AccMaxRecords = maxRecords
		cfg.AccMaxAge = maxAge
	}
}

// WithInflatedCapBytes enables the soft inflated-bytes cap and its LRU
// eviction loop. A value <= 0 disables eviction (the default).
func WithInflatedCapBytes(n int64) Option {
	return func(cfg *Config) { cfg.InflatedCapBytes = n }
}

// WithBackpressurePolicy selects block (default) or reject.
func WithBackpressurePolicy(p BackpressurePolicy) Option {
	return func(cfg *Config) { cfg.BackpressurePolicy = p }
}

// Load reads a YAML configuration document from path, overlaying its
// fields onto Default().
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	if cfg.Codec == 0 {
		cfg.Codec = format.CompressionLZ4
	}
	return cfg, nil
}
