// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package commandline

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"
	"github.com/schollz/progressbar/v3"
)

// ExtraMetricFn is any function that will give extra values to display along the progress bar.
// It is called at each time the progress bar is updated, and it should return a name and the current value when it is called.
type ExtraMetricFn func() (name, value string)

// ProgressbarStyle to use. Defaults to the ASCII version.
// Consider "progressbar.ThemeUnicode" for a prettier version.
// But it requires some of the graphical symbols to be supported.
var ProgressbarStyle = progressbar.ThemeASCII

// maxUpdateFrequency is the time between updates to the commandline display of stats.
var maxUpdateFrequency = time.Millisecond * 200

// ProgressBar displays the progression of a repeated run, with a table of stats above the bar.
//
// Add and Finish must be called from the same goroutine. The display is updated asynchronously, so
// a fast loop is not slowed down by the terminal.
type ProgressBar struct {
	total         int
	itemsPerStep  int
	numDone       int
	start         time.Time
	bar           *progressbar.ProgressBar
	output        io.Writer
	termenv       *termenv.Output
	statsStyle    lipgloss.Style
	statsTable    *lgtable.Table
	isFirstOutput bool

	updates          chan progressBarUpdate
	asyncUpdatesDone sync.WaitGroup
	finished         bool

	extraMetricFns []ExtraMetricFn
}

type progressBarUpdate struct {
	amount  int
	numDone int
	elapsed time.Duration
}

// NewProgressBar creates and displays a progress bar for total steps, written to os.Stdout.
// itemsPerStep is the number of elements processed on each step, used to report the throughput.
//
// Optionally, one can provide extraMetrics: functions that are called at every update of
// the progress bar and should return a name (title) and a value to be included in the
// updated print-out.
func NewProgressBar(description string, total, itemsPerStep int, extraMetrics ...ExtraMetricFn) *ProgressBar {
	return NewProgressBarTo(os.Stdout, description, total, itemsPerStep, extraMetrics...)
}

// NewProgressBarTo is like NewProgressBar, but writes to output.
func NewProgressBarTo(output io.Writer, description string, total, itemsPerStep int, extraMetrics ...ExtraMetricFn) *ProgressBar {
	pBar := &ProgressBar{
		total:          total,
		itemsPerStep:   itemsPerStep,
		start:          time.Now(),
		output:         output,
		isFirstOutput:  true,
		termenv:        termenv.NewOutput(output),
		statsStyle:     lipgloss.NewStyle().PaddingLeft(8),
		statsTable:     newTable(),
		updates:        make(chan progressBarUpdate, 100), // Large buffer so things are not blocked.
		extraMetricFns: extraMetrics,
	}
	pBar.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription(fmt.Sprintf("      [bold]%s[reset]", description)),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("runs"),
		progressbar.OptionSetTheme(ProgressbarStyle),
		progressbar.OptionSetWriter(output),
	)
	pBar.asyncUpdatesDone.Add(1)
	go pBar.drawUpdates()
	return pBar
}

// Add amount steps done.
func (pBar *ProgressBar) Add(amount int) {
	if pBar.finished || amount <= 0 {
		return
	}
	pBar.numDone += amount
	pBar.updates <- progressBarUpdate{amount: amount, numDone: pBar.numDone, elapsed: time.Since(pBar.start)}
}

// NumDone returns the number of steps added so far.
func (pBar *ProgressBar) NumDone() int {
	return pBar.numDone
}

// Finish waits for the pending updates to be displayed. The progress bar can't be used afterward.
func (pBar *ProgressBar) Finish() {
	if pBar.finished {
		return
	}
	pBar.finished = true
	close(pBar.updates)
	pBar.asyncUpdatesDone.Wait()
	pBar.termenv.ShowCursor()
	_, _ = fmt.Fprintln(pBar.output)
}

// drawUpdates asynchronously draws the updates until the channel is closed.
func (pBar *ProgressBar) drawUpdates() {
	defer pBar.asyncUpdatesDone.Done()
	for update := range pBar.updates {
		// Exhaust the updates in the buffer:
		amount := update.amount
	exhaust:
		for {
			select {
			case newUpdate, ok := <-pBar.updates:
				if !ok {
					break exhaust
				}
				amount += newUpdate.amount
				update = newUpdate
			default:
				break exhaust
			}
		}

		// Create the table to be printed.
		pBar.statsTable.Data(lgtable.NewStringData())
		pBar.statsTable.Row("Runs", fmt.Sprintf("%s of %s", humanize.Comma(int64(update.numDone)), humanize.Comma(int64(pBar.total))))
		pBar.statsTable.Row("Elapsed", FormatDuration(update.elapsed))
		pBar.statsTable.Row("Elements/s", FormatRate(update.numDone*pBar.itemsPerStep, update.elapsed, ""))
		numRows := 3
		for _, extraMetric := range pBar.extraMetricFns {
			name, value := extraMetric()
			pBar.statsTable.Row(name, value)
			numRows++
		}

		// Clear the previous lines that will be overwritten: the table rows, its borders and the bar.
		pBar.termenv.HideCursor()
		if !pBar.isFirstOutput {
			pBar.termenv.CursorPrevLine(numRows + 2 + 1)
		}
		pBar.isFirstOutput = false

		_, _ = fmt.Fprintln(pBar.output, pBar.statsStyle.Render(pBar.statsTable.String()))
		_ = pBar.bar.Add(amount) // Prints progress bar line.
		_, _ = fmt.Fprintln(pBar.output)
		pBar.termenv.ShowCursor()
		time.Sleep(maxUpdateFrequency)
	}
}
