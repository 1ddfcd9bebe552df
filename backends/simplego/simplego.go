// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package simplego implements a simple and very portable backends.Queue that runs kernels on the CPU.
//
// The host memory is the shared memory space: Allocate returns pointers to Go allocated slices, and
// kernels are executed by a stream goroutine that splits each kernel into chunks run in parallel.
//
// Configuration (see backends.NewWithConfig), as a comma-separated list of "key=value":
//
//   - parallelism: maximum number of goroutines running chunks of one kernel. 0 runs chunks inline
//     on the stream goroutine, -1 is unlimited. Default is runtime.NumCPU().
//   - chunk: minimum number of elements per chunk. Default is 1024.
//   - depth: number of kernels that can be submitted before Submit blocks. Default is 64.
//   - order: "in" (default) executes kernels one at a time, in submission order. "out" runs them on
//     "streams" concurrent streams, with no ordering guarantees between kernels.
//   - streams: number of streams used with order=out. Default is 2.
//
// Example: GALILEO_BACKEND="go:parallelism=4,order=out,streams=4"
package simplego

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/gomlx/galileo/backends"
	"github.com/gomlx/galileo/internal/workerspool"
	"github.com/gomlx/galileo/pkg/core/status"
	"github.com/pkg/errors"
	"golang.org/x/sys/cpu"
)

// BackendName to be used in GALILEO_BACKEND to specify this backend.
const BackendName = "go"

// Registers New() as the default constructor for "go" backend.
func init() {
	backends.Register(BackendName, New)
}

// Config of a CPU Queue. Use DefaultConfig for the defaults, and ParseConfig to parse a configuration string.
type Config struct {
	// Parallelism is the maximum number of goroutines running chunks of one kernel.
	// 0 runs the chunks inline (in the stream goroutine), -1 means unlimited.
	Parallelism int

	// ChunkSize is the minimum number of elements per chunk.
	ChunkSize int

	// Depth is the number of kernels that can be buffered per stream before Submit blocks.
	Depth int

	// OutOfOrder allows kernels to execute concurrently, on Streams streams.
	OutOfOrder bool

	// Streams is the number of concurrent streams, only used if OutOfOrder is true.
	Streams int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Parallelism: runtime.NumCPU(),
		ChunkSize:   workerspool.DefaultMinChunkSize,
		Depth:       64,
		Streams:     2,
	}
}

// ParseConfig parses the configuration string (see package documentation) on top of the DefaultConfig.
func ParseConfig(config string) (Config, error) {
	cfg := DefaultConfig()
	opts, err := backends.ParseOptions(config)
	if err != nil {
		return cfg, err
	}
	if cfg.Parallelism, err = opts.Int("parallelism", cfg.Parallelism); err != nil {
		return cfg, err
	}
	if cfg.ChunkSize, err = opts.Int("chunk", cfg.ChunkSize); err != nil {
		return cfg, err
	}
	if cfg.Depth, err = opts.Int("depth", cfg.Depth); err != nil {
		return cfg, err
	}
	if cfg.Streams, err = opts.Int("streams", cfg.Streams); err != nil {
		return cfg, err
	}
	switch order := strings.ToLower(opts.String("order", "in")); order {
	case "in":
		cfg.OutOfOrder = false
	case "out":
		cfg.OutOfOrder = true
	default:
		return cfg, errors.Errorf("invalid order %q for backend %q, valid values are \"in\" or \"out\"", order, BackendName)
	}
	if err = opts.CheckAllUsed(BackendName); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate returns an error wrapping status.ErrInvalidParameter if any of the values is out of range.
func (cfg Config) Validate() error {
	if cfg.Parallelism < -1 {
		return status.Errorf(status.InvalidParameter, "parallelism must be >= -1, got %d", cfg.Parallelism)
	}
	if cfg.ChunkSize < 1 {
		return status.Errorf(status.InvalidParameter, "chunk must be >= 1, got %d", cfg.ChunkSize)
	}
	if cfg.Depth < 0 {
		return status.Errorf(status.InvalidParameter, "depth must be >= 0, got %d", cfg.Depth)
	}
	if cfg.Streams < 1 {
		return status.Errorf(status.InvalidParameter, "streams must be >= 1, got %d", cfg.Streams)
	}
	return nil
}

// NumStreams returns the number of streams that will be used: 1 for in-order queues.
func (cfg Config) NumStreams() int {
	if !cfg.OutOfOrder {
		return 1
	}
	return cfg.Streams
}

// String implements fmt.Stringer, in the same format accepted by ParseConfig.
func (cfg Config) String() string {
	order := "in"
	if cfg.OutOfOrder {
		order = "out"
	}
	return fmt.Sprintf("parallelism=%d,chunk=%d,depth=%d,order=%s,streams=%d",
		cfg.Parallelism, cfg.ChunkSize, cfg.Depth, order, cfg.Streams)
}

// New constructs a new CPU Queue from a configuration string. It implements backends.Constructor.
func New(config string) (backends.Queue, error) {
	cfg, err := ParseConfig(config)
	if err != nil {
		return nil, err
	}
	return NewQueue(cfg)
}

// cpuFeatures lists the vector extensions detected, used in Description.
func cpuFeatures() string {
	var features []string
	switch runtime.GOARCH {
	case "amd64", "386":
		if cpu.X86.HasAVX2 {
			features = append(features, "avx2")
		}
		if cpu.X86.HasAVX512F {
			features = append(features, "avx512f")
		}
		if cpu.X86.HasFMA {
			features = append(features, "fma")
		}
	case "arm64":
		if cpu.ARM64.HasASIMD {
			features = append(features, "neon")
		}
		if cpu.ARM64.HasSVE {
			features = append(features, "sve")
		}
	}
	if len(features) == 0 {
		return "none"
	}
	return strings.Join(features, ",")
}
