// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"io"
	"os"
	"strconv"

	"github.com/gomlx/galileo/backends"
	"github.com/gomlx/galileo/backends/simplego"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// queueFlags configure the queue used by the commands.
type queueFlags struct {
	configFile  string
	backend     string
	parallelism int
	chunk       int
	depth       int
	order       string
	streams     int
}

func (f *queueFlags) register(cmd *cobra.Command) {
	defaults := simplego.DefaultConfig()
	flags := cmd.PersistentFlags()
	flags.StringVar(&f.configFile, "config", "", "YAML file with the queue configuration")
	flags.StringVar(&f.backend, "backend", simplego.BackendName, "Name of the backend")
	flags.IntVar(&f.parallelism, "parallelism", defaults.Parallelism, "Maximum number of goroutines per kernel: 0 runs inline, -1 is unlimited")
	flags.IntVar(&f.chunk, "chunk", defaults.ChunkSize, "Minimum number of elements per chunk")
	flags.IntVar(&f.depth, "depth", defaults.Depth, "Number of kernels that can be submitted before blocking")
	flags.StringVar(&f.order, "order", "in", `Execution order of kernels: "in" or "out"`)
	flags.IntVar(&f.streams, "streams", defaults.Streams, "Number of concurrent streams with --order=out")
}

// fileConfig is the contents of the YAML configuration file. Fields not given are left unset.
type fileConfig struct {
	Backend     string `yaml:"backend"`
	Parallelism *int   `yaml:"parallelism"`
	Chunk       *int   `yaml:"chunk"`
	Depth       *int   `yaml:"depth"`
	Order       string `yaml:"order"`
	Streams     *int   `yaml:"streams"`
}

// loadFileConfig reads the YAML configuration file. Unknown fields are an error.
func loadFileConfig(path string) (*fileConfig, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read configuration file %q", path)
	}
	cfg := &fileConfig{}
	decoder := yaml.NewDecoder(bytes.NewReader(contents))
	decoder.KnownFields(true)
	if err = decoder.Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, "failed to parse configuration file %q", path)
	}
	return cfg, nil
}

// queueConfig returns the backend configuration string (see backends.NewWithConfig), merging in order of
// precedence: the flags explicitly set, the configuration file and the GALILEO_BACKEND environment variable.
func queueConfig(cmd *cobra.Command, f *queueFlags) (string, error) {
	backendName, backendConfig := simplego.BackendName, ""
	if env, found := os.LookupEnv(backends.GALILEO_BACKEND); found && env != "" {
		backendName, backendConfig = backends.SplitConfig(env)
	}
	opts, err := backends.ParseOptions(backendConfig)
	if err != nil {
		return "", errors.WithMessagef(err, "invalid %s=%q", backends.GALILEO_BACKEND, os.Getenv(backends.GALILEO_BACKEND))
	}

	if f.configFile != "" {
		fileCfg, err := loadFileConfig(f.configFile)
		if err != nil {
			return "", err
		}
		if fileCfg.Backend != "" {
			backendName = fileCfg.Backend
		}
		setIntOption(opts, "parallelism", fileCfg.Parallelism)
		setIntOption(opts, "chunk", fileCfg.Chunk)
		setIntOption(opts, "depth", fileCfg.Depth)
		setIntOption(opts, "streams", fileCfg.Streams)
		if fileCfg.Order != "" {
			opts.Set("order", fileCfg.Order)
		}
	}

	changed := cmd.Flags().Changed
	if changed("backend") {
		backendName = f.backend
	}
	for _, intFlag := range []struct {
		name  string
		value int
	}{
		{"parallelism", f.parallelism},
		{"chunk", f.chunk},
		{"depth", f.depth},
		{"streams", f.streams},
	} {
		if changed(intFlag.name) {
			opts.Set(intFlag.name, strconv.Itoa(intFlag.value))
		}
	}
	if changed("order") {
		opts.Set("order", f.order)
	}
	return backendName + ":" + opts.Encode(), nil
}

func setIntOption(opts *backends.Options, key string, value *int) {
	if value != nil {
		opts.Set(key, strconv.Itoa(*value))
	}
}

// newQueue creates the queue configured by the flags.
func newQueue(cmd *cobra.Command, f *queueFlags) (backends.Queue, error) {
	config, err := queueConfig(cmd, f)
	if err != nil {
		return nil, err
	}
	return backends.NewWithConfig(config)
}

func describeQueue(cmd *cobra.Command, f *queueFlags) error {
	queue, err := newQueue(cmd, f)
	if err != nil {
		return err
	}
	_, _ = cmd.OutOrStdout().Write([]byte(queue.Description() + "\n"))
	return queue.Finalize()
}
