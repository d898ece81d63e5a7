package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/hotpath/internal/sched"
)

// RuntimeConfig tunes the executor from a YAML file. Zero-valued fields
// keep the executor defaults, so a partial file only overrides what it
// names. Values are fixed at startup; there is no reload.
type RuntimeConfig struct {
	// WorkerCount sets the number of workers. 0 means host parallelism.
	WorkerCount int `yaml:"worker_count"`

	// MaxStealAttempts bounds victim probes before a worker parks.
	MaxStealAttempts int `yaml:"max_steal_attempts"`

	// ParkTimeoutMS is the idle park interval in milliseconds.
	ParkTimeoutMS int `yaml:"park_timeout_ms"`

	// InjectorBatch caps tasks drained from the injector per visit.
	InjectorBatch int `yaml:"injector_batch"`

	// HotPathBudget overrides the tick budget used for the
	// MetHotPathConstraint stamp. Intended for testing only; dispatch
	// entries keep their own per-pattern budgets.
	HotPathBudget uint64 `yaml:"hot_path_budget"`
}

// LoadRuntimeConfig reads and validates a runtime config file. Unknown
// keys are rejected so a typo cannot silently fall back to a default.
func LoadRuntimeConfig(path string) (*RuntimeConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg RuntimeConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *RuntimeConfig) validate() error {
	if c.WorkerCount < 0 || c.WorkerCount > sched.MaxWorkers {
		return fmt.Errorf("worker_count %d out of range [0, %d]", c.WorkerCount, sched.MaxWorkers)
	}
	if c.MaxStealAttempts < 0 {
		return fmt.Errorf("max_steal_attempts must not be negative, got %d", c.MaxStealAttempts)
	}
	if c.ParkTimeoutMS < 0 {
		return fmt.Errorf("park_timeout_ms must not be negative, got %d", c.ParkTimeoutMS)
	}
	if c.InjectorBatch < 0 {
		return fmt.Errorf("injector_batch must not be negative, got %d", c.InjectorBatch)
	}
	return nil
}

// Options translates the config into executor options, skipping
// zero-valued fields so executor defaults stay in effect.
func (c *RuntimeConfig) Options() []sched.Option {
	var opts []sched.Option
	if c.WorkerCount > 0 {
		opts = append(opts, sched.WithWorkers(c.WorkerCount))
	}
	if c.MaxStealAttempts > 0 {
		opts = append(opts, sched.WithMaxStealAttempts(c.MaxStealAttempts))
	}
	if c.ParkTimeoutMS > 0 {
		opts = append(opts, sched.WithParkTimeout(time.Duration(c.ParkTimeoutMS)*time.Millisecond))
	}
	if c.InjectorBatch > 0 {
		opts = append(opts, sched.WithInjectorBatch(c.InjectorBatch))
	}
	if c.HotPathBudget > 0 {
		opts = append(opts, sched.WithHotPathBudget(c.HotPathBudget))
	}
	return opts
}
