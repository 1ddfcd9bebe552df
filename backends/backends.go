// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package backends defines the interface to a device queue that the elementwise engine submits work to.
//
// A Queue manages a shared (host and device visible) memory space and executes Kernels asynchronously.
// Backends register a Constructor with Register, and users create queues with New or NewWithConfig.
//
// Import a backend implementation to register it, e.g.:
//
//	import _ "github.com/gomlx/galileo/backends/simplego"
package backends

import (
	"os"
	"slices"
	"strings"
	"sync"
	"unsafe"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/galileo/pkg/core/dtypes"
	"github.com/pkg/errors"
)

// Kernel is a unit of work submitted to a Queue: Body is called for contiguous ranges [start, end)
// that together cover [0, Size) exactly once.
//
// Calls for different ranges may be concurrent, so Body must not have cross-element dependencies.
type Kernel struct {
	// Name of the operation, used for logging and error messages.
	Name string

	// Size is the number of elements (work-items) of the kernel.
	Size int

	// Body computes the elements in [start, end).
	Body func(start, end int)
}

// Queue is the API that needs to be implemented by a device queue backend.
//
// All methods must be safe for concurrent use.
type Queue interface {
	// Name returns the short name of the backend. E.g.: "go" for the portable CPU queue.
	Name() string

	// ID is a unique identifier of this queue instance.
	ID() string

	// Description is a longer description of the Queue that can be used to pretty-print.
	Description() string

	// Allocate returns a pointer to storage for numElements elements of dtype in the queue's shared memory space.
	// The memory is zero-initialized.
	Allocate(dtype dtypes.DType, numElements int) (unsafe.Pointer, error)

	// Free releases memory returned by Allocate. Freeing a pointer not allocated by the queue is an error.
	Free(ptr unsafe.Pointer) error

	// Owns reports whether ptr points inside memory allocated by this queue (and not yet freed).
	Owns(ptr unsafe.Pointer) bool

	// Submit enqueues the kernel for asynchronous execution. It returns as soon as the kernel is accepted.
	Submit(kernel Kernel) error

	// Wait blocks until all submitted kernels completed. It returns (and clears) the first fault
	// raised by a kernel since the previous Wait, if any.
	Wait() error

	// Finalize waits for all pending work, releases all the associated resources, and makes the queue invalid.
	Finalize() error
}

// Constructor takes a config string (optionally empty) and returns a Queue.
type Constructor func(config string) (Queue, error)

var (
	muRegistry             sync.Mutex
	registeredConstructors = make(map[string]Constructor)
	firstRegistered        string
)

// Register backend with the given name, and a default constructor that takes as input a configuration string that is
// passed along to the backend constructor.
//
// To be safe, call Register during initialization of a package.
func Register(name string, constructor Constructor) {
	muRegistry.Lock()
	defer muRegistry.Unlock()
	if len(registeredConstructors) == 0 {
		firstRegistered = name
	}
	registeredConstructors[name] = constructor
}

// List returns the names of the registered backends, sorted.
func List() []string {
	muRegistry.Lock()
	defer muRegistry.Unlock()
	names := make([]string, 0, len(registeredConstructors))
	for name := range registeredConstructors {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// DefaultConfig is the name of the default backend configuration to use if specified.
//
// See NewWithConfig for the format of the configuration string.
var DefaultConfig string

// GALILEO_BACKEND is the environment variable with the default backend configuration to use.
//
// The format of config is "<backend_name>:<backend_configuration>".
// The "<backend_name>" is the name of a registered backend (e.g.: "go") and
// "<backend_configuration>" is backend specific (e.g.: for the "go" backend, "parallelism=4,chunk=2048").
const GALILEO_BACKEND = "GALILEO_BACKEND"

// New returns a new default Queue.
//
// The default is:
//
// 1. The environment GALILEO_BACKEND is used as a configuration if defined.
// 2. Next the variable DefaultConfig is used as a configuration if defined.
// 3. The first registered backend is used with an empty configuration.
func New() (Queue, error) {
	config, found := os.LookupEnv(GALILEO_BACKEND)
	if found {
		return NewWithConfig(config)
	}
	if DefaultConfig != "" {
		return NewWithConfig(DefaultConfig)
	}
	return NewWithConfig("")
}

// MustNew returns a new default Queue or panics with the error.
func MustNew() Queue {
	queue, err := New()
	if err != nil {
		exceptions.Panicf("backends.MustNew(): %+v", err)
	}
	return queue
}

// NewWithConfig takes a configurations string formated as
//
// The format of config is "<backend_name>:<backend_configuration>".
// The "<backend_name>" is the name of a registered backend (e.g.: "go") and
// "<backend_configuration>" is backend specific.
// If config has no ":" and it is the name of a registered backend, it is used with an empty configuration.
// Otherwise, the whole config is passed to the first registered backend.
func NewWithConfig(config string) (Queue, error) {
	if len(List()) == 0 {
		return nil, errors.Errorf(`no registered backends for Galileo -- maybe import the default one with import _ "github.com/gomlx/galileo/backends/simplego"?`)
	}
	backendName, backendConfig := SplitConfig(config)
	muRegistry.Lock()
	constructor, found := registeredConstructors[backendName]
	muRegistry.Unlock()
	if !found {
		return nil, errors.Errorf("can't find backend %q for configuration %q given", backendName, config)
	}
	queue, err := constructor(backendConfig)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to create backend %q with configuration %q", backendName, backendConfig)
	}
	return queue, nil
}

// SplitConfig splits a configuration given in the format "<backend_name>:<backend_configuration>" (see NewWithConfig).
//
// If config has no ":", and it is the name of a registered backend, it returns that name with an empty configuration.
// Otherwise, it returns the name of the first registered backend with the whole config.
func SplitConfig(config string) (backendName, backendConfig string) {
	if name, cfg, found := strings.Cut(config, ":"); found {
		return name, cfg
	}
	muRegistry.Lock()
	defer muRegistry.Unlock()
	if _, found := registeredConstructors[config]; found {
		return config, ""
	}
	return firstRegistered, config
}
