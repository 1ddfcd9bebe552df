// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package commandline

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
)

var reDurationNumber = regexp.MustCompile(`^(\d+\.?\d*)([µa-z]+)$`)

// FormatDuration pretty prints duration without a long list of decimal points.
// Durations with more than one unit (e.g. "1m30s") are returned as formatted by time.Duration.
func FormatDuration(d time.Duration) string {
	s := d.String()
	matches := reDurationNumber.FindStringSubmatch(s)
	if len(matches) != 3 {
		return s
	}
	num, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return s
	}
	return fmt.Sprintf("%.2f%s", num, matches[2])
}

// FormatRate returns the number of items per second in SI units (e.g. "2.5 M"), followed by unit if
// it is not empty. It returns "-" if elapsed is not positive.
func FormatRate(items int, elapsed time.Duration, unit string) string {
	if elapsed <= 0 {
		return "-"
	}
	rate := humanize.SIWithDigits(float64(items)/elapsed.Seconds(), 2, "")
	if unit == "" {
		return rate
	}
	return rate + " " + unit
}
