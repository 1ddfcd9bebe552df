// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package backends

import (
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Options are the "key=value" pairs of a backend configuration string, e.g.: "parallelism=4,order=out".
//
// Backends consume the keys they know with the typed getters, and call CheckAllUsed at the end to
// report unknown keys.
type Options struct {
	values map[string]string
	used   map[string]bool
}

// ParseOptions parses a comma-separated list of "key=value" (or "key", meaning "key=true") options.
// Keys are case-insensitive, and surrounding spaces are ignored. Repeated keys are an error.
func ParseOptions(config string) (*Options, error) {
	opts := &Options{
		values: make(map[string]string),
		used:   make(map[string]bool),
	}
	for part := range strings.SplitSeq(config, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, found := strings.Cut(part, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if !found {
			value = "true"
		}
		if key == "" {
			return nil, errors.Errorf("invalid option %q: missing key", part)
		}
		if _, dup := opts.values[key]; dup {
			return nil, errors.Errorf("option %q given more than once", key)
		}
		opts.values[key] = value
	}
	return opts, nil
}

// Has returns whether the key was given.
func (o *Options) Has(key string) bool {
	_, found := o.values[key]
	return found
}

// String returns the value for key, or defaultValue if it was not given.
func (o *Options) String(key, defaultValue string) string {
	value, found := o.values[key]
	if !found {
		return defaultValue
	}
	o.used[key] = true
	return value
}

// Int returns the value for key parsed as an int, or defaultValue if it was not given.
func (o *Options) Int(key string, defaultValue int) (int, error) {
	value, found := o.values[key]
	if !found {
		return defaultValue, nil
	}
	o.used[key] = true
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.Wrapf(err, "option %q requires an integer, got %q", key, value)
	}
	return v, nil
}

// Bool returns the value for key parsed as a bool, or defaultValue if it was not given.
func (o *Options) Bool(key string, defaultValue bool) (bool, error) {
	value, found := o.values[key]
	if !found {
		return defaultValue, nil
	}
	o.used[key] = true
	v, err := strconv.ParseBool(value)
	if err != nil {
		return false, errors.Wrapf(err, "option %q requires a boolean, got %q", key, value)
	}
	return v, nil
}

// CheckAllUsed returns an error listing the keys that were given but never read.
func (o *Options) CheckAllUsed(backendName string) error {
	var unknown []string
	for key := range o.values {
		if !o.used[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	slices.Sort(unknown)
	return errors.Errorf("unknown configuration option(s) %q for backend %q", unknown, backendName)
}

// Set the value of key, replacing any previous value.
func (o *Options) Set(key, value string) {
	o.values[strings.ToLower(key)] = value
}

// Keys returns the keys given, sorted.
func (o *Options) Keys() []string {
	keys := make([]string, 0, len(o.values))
	for key := range o.values {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// Encode returns the options in the format accepted by ParseOptions, with the keys sorted.
func (o *Options) Encode() string {
	parts := make([]string, 0, len(o.values))
	for _, key := range o.Keys() {
		parts = append(parts, key+"="+o.values[key])
	}
	return strings.Join(parts, ",")
}
