// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/exceptions"
	"github.com/gomlx/galileo/backends"
	"github.com/gomlx/galileo/pkg/core/dispatch"
	"github.com/gomlx/galileo/pkg/core/dtypes"
	"github.com/gomlx/galileo/pkg/core/eltwise"
	"github.com/gomlx/galileo/pkg/core/tensors"
	"github.com/gomlx/galileo/ui/commandline"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

type runFlags struct {
	op          string
	in, rhs     string
	out         string
	size        int
	start, step float64
	repeat      int
	show        int
	progress    bool
}

func newRunCmd(qFlags *queueFlags) *cobra.Command {
	rFlags := &runFlags{}
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run an operation on inputs filled with a ramp, and print the first results",
		Long: `Run allocates the inputs on the configured queue, fills them with start + i*step, and runs the operation
--repeat times. Binary operations use the same ramp for both operands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			queue, err := newQueue(cmd, qFlags)
			if err != nil {
				return err
			}
			err = runOp(cmd.OutOrStdout(), queue, rFlags)
			if finalizeErr := queue.Finalize(); err == nil {
				err = finalizeErr
			}
			return err
		},
	}
	flags := runCmd.Flags()
	flags.StringVar(&rFlags.op, "op", "", "Name of the operation (see \"galileo ops\")")
	flags.StringVar(&rFlags.in, "in", "Float32", "DType of the input (lhs for binary operations)")
	flags.StringVar(&rFlags.rhs, "rhs", "", "DType of the rhs input of binary operations. Defaults to --in")
	flags.StringVar(&rFlags.out, "out", "", "DType of the output. Defaults to the input dtype for unary operations, and to the result dtype for binary ones")
	flags.IntVar(&rFlags.size, "size", 1024, "Number of elements")
	flags.Float64Var(&rFlags.start, "start", 0, "First value of the input ramp")
	flags.Float64Var(&rFlags.step, "step", 1, "Increment of the input ramp")
	flags.IntVar(&rFlags.repeat, "repeat", 1, "Number of times to run the operation")
	flags.IntVar(&rFlags.show, "show", 8, "Number of output values to print")
	flags.BoolVar(&rFlags.progress, "progress", true, "Display a progress bar if --repeat > 1")
	_ = runCmd.MarkFlagRequired("op")
	return runCmd
}

// runOp runs the operation configured by rFlags on queue, and prints the results to w.
func runOp(w io.Writer, queue backends.Queue, rFlags *runFlags) error {
	op, inputDTypes, outDType, err := resolveRun(rFlags)
	if err != nil {
		return err
	}
	if rFlags.size <= 0 {
		return errors.Errorf("--size must be > 0, got %d", rFlags.size)
	}
	if rFlags.repeat <= 0 {
		return errors.Errorf("--repeat must be > 0, got %d", rFlags.repeat)
	}

	inputs := make([]*tensors.Tensor, len(inputDTypes))
	for ii, dtype := range inputDTypes {
		inputs[ii], err = tensors.Allocate(queue, dtype, rFlags.size)
		if err != nil {
			return errors.WithMessagef(err, "failed to allocate input #%d", ii)
		}
		defer freeTensor(inputs[ii])
		fillRamp(inputs[ii], rFlags.start, rFlags.step)
	}
	output, err := tensors.Allocate(queue, outDType, rFlags.size)
	if err != nil {
		return errors.WithMessage(err, "failed to allocate output")
	}
	defer freeTensor(output)

	var pBar *commandline.ProgressBar
	if rFlags.repeat > 1 && rFlags.progress {
		pBar = commandline.NewProgressBarTo(w, op.OpName(), rFlags.repeat, rFlags.size,
			func() (string, string) { return "Queue", queue.Name() + ":" + queue.ID() })
	}
	start := time.Now()
	for repetition := range rFlags.repeat {
		err = eltwise.Apply(op.OpName(), inputs, output)
		if err == nil {
			err = queue.Wait()
		}
		if err != nil {
			if pBar != nil {
				pBar.Finish()
			}
			return errors.WithMessagef(err, "%s failed on run #%d", op.OpName(), repetition)
		}
		if pBar != nil {
			pBar.Add(1)
		}
	}
	elapsed := time.Since(start)
	if pBar != nil {
		pBar.Finish()
	}

	_, _ = fmt.Fprintf(w, "%s(%s) -> %s: %s elements x %d runs in %s (%s)\n", op.OpName(), joinDTypes(inputDTypes), outDType,
		humanize.Comma(int64(rFlags.size)), rFlags.repeat, commandline.FormatDuration(elapsed),
		commandline.FormatRate(rFlags.size*rFlags.repeat, elapsed, "elements/s"))
	_, _ = fmt.Fprintf(w, "%s\n", formatValues(output, rFlags.show))
	return nil
}

// freeTensor releases the memory of x back to its queue. Failures are only logged.
func freeTensor(x *tensors.Tensor) {
	if err := x.Free(); err != nil {
		klog.Warningf("galileo: failed to free %s: %v", x, err)
	}
}

// resolveRun finds the operation and the dtypes of its operands.
func resolveRun(rFlags *runFlags) (op eltwise.Operation, inputDTypes []dtypes.DType, outDType dtypes.DType, err error) {
	inDType, err := dtypes.FromName(rFlags.in)
	if err != nil {
		return nil, nil, dtypes.InvalidDType, errors.WithMessage(err, "invalid --in")
	}
	if unary := eltwise.UnaryByName(rFlags.op); unary != nil {
		op, inputDTypes, outDType = unary, []dtypes.DType{inDType}, inDType
	} else if binary := eltwise.BinaryByName(rFlags.op); binary != nil {
		rhsDType := inDType
		if rFlags.rhs != "" {
			if rhsDType, err = dtypes.FromName(rFlags.rhs); err != nil {
				return nil, nil, dtypes.InvalidDType, errors.WithMessage(err, "invalid --rhs")
			}
		}
		op, inputDTypes, outDType = binary, []dtypes.DType{inDType, rhsDType}, dispatch.ResultDType(inDType, rhsDType)
	} else {
		return nil, nil, dtypes.InvalidDType, errors.Errorf("unknown operation %q, see \"galileo ops\" for the list", rFlags.op)
	}
	if rFlags.out != "" {
		if outDType, err = dtypes.FromName(rFlags.out); err != nil {
			return nil, nil, dtypes.InvalidDType, errors.WithMessage(err, "invalid --out")
		}
	}
	return op, inputDTypes, outDType, nil
}

// fillRamp sets x[i] = start + i*step, converted to the dtype of x (with a zero imaginary part for complex dtypes).
func fillRamp(x *tensors.Tensor, start, step float64) {
	out, err := dispatch.NewOutput(dispatch.FloatIntAndComplex, x.DType(), x.Data(), x.Size())
	if err != nil {
		exceptions.Panicf("galileo: failed to fill %s: %+v", x, err)
	}
	write := dispatch.RealWriter[float64](out)
	for i := range x.Size() {
		write(i, start+float64(i)*step)
	}
}

// formatValues returns the first n values of x, as a bracketed list.
func formatValues(x *tensors.Tensor, n int) string {
	n = min(n, x.Size())
	in, err := dispatch.NewInput(dispatch.FloatIntAndComplex, x.DType(), x.Data(), x.Size())
	if err != nil {
		return err.Error()
	}
	var format func(i int) string
	switch dtype := x.DType(); {
	case dtype.IsComplex():
		read := dispatch.ComplexReader[complex128](in)
		format = func(i int) string { return fmt.Sprint(read(i)) }
	case dtype.IsUnsigned():
		read := dispatch.RealReader[uint64](in)
		format = func(i int) string { return fmt.Sprint(read(i)) }
	case dtype.IsSigned():
		read := dispatch.RealReader[int64](in)
		format = func(i int) string { return fmt.Sprint(read(i)) }
	default:
		read := dispatch.RealReader[float64](in)
		format = func(i int) string { return fmt.Sprint(read(i)) }
	}
	parts := make([]string, 0, n+1)
	for i := range n {
		parts = append(parts, format(i))
	}
	if n < x.Size() {
		parts = append(parts, "...")
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func joinDTypes(dts []dtypes.DType) string {
	names := make([]string, len(dts))
	for ii, dtype := range dts {
		names[ii] = dtype.String()
	}
	return strings.Join(names, ", ")
}
