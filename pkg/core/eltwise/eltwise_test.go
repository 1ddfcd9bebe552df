// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package eltwise

import (
	"math"
	"math/cmplx"
	"reflect"
	"sync"
	"testing"
	"unsafe"

	"github.com/gomlx/galileo/backends"
	"github.com/gomlx/galileo/backends/simplego"
	"github.com/gomlx/galileo/pkg/core/dispatch"
	"github.com/gomlx/galileo/pkg/core/dtypes"
	"github.com/gomlx/galileo/pkg/core/dtypes/bfloat16"
	"github.com/gomlx/galileo/pkg/core/dtypes/complex32"
	"github.com/gomlx/galileo/pkg/core/shapes"
	"github.com/gomlx/galileo/pkg/core/status"
	"github.com/gomlx/galileo/pkg/core/tensors"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
	"k8s.io/klog/v2"
)

func init() {
	klog.InitFlags(nil)
}

func newQueue(t *testing.T) *simplego.Queue {
	q := must.M1(simplego.NewQueue(simplego.DefaultConfig()))
	t.Cleanup(func() { must.M(q.Finalize()) })
	return q
}

// fakeQueue records the calls to Owns and Submit, and only runs the kernels on Wait.
type fakeQueue struct {
	mu        sync.Mutex
	id        string
	buffers   map[unsafe.Pointer]any
	ownsCalls int
	kernels   []backends.Kernel
}

var _ backends.Queue = &fakeQueue{}

func newFakeQueue(id string) *fakeQueue {
	return &fakeQueue{id: id, buffers: make(map[unsafe.Pointer]any)}
}

func (q *fakeQueue) Name() string        { return "fake" }
func (q *fakeQueue) ID() string          { return q.id }
func (q *fakeQueue) Description() string { return "fake queue " + q.id }

func (q *fakeQueue) Allocate(dtype dtypes.DType, numElements int) (unsafe.Pointer, error) {
	flat := reflect.MakeSlice(reflect.SliceOf(dtype.GoType()), numElements, numElements)
	ptr := flat.UnsafePointer()
	q.mu.Lock()
	defer q.mu.Unlock()
	q.buffers[ptr] = flat.Interface()
	return ptr, nil
}

func (q *fakeQueue) Free(ptr unsafe.Pointer) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.buffers, ptr)
	return nil
}

func (q *fakeQueue) Owns(ptr unsafe.Pointer) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ownsCalls++
	_, found := q.buffers[ptr]
	return found
}

func (q *fakeQueue) Submit(kernel backends.Kernel) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.kernels = append(q.kernels, kernel)
	return nil
}

func (q *fakeQueue) Wait() error {
	q.mu.Lock()
	kernels := q.kernels
	q.kernels = nil
	q.mu.Unlock()
	for _, kernel := range kernels {
		kernel.Body(0, kernel.Size)
	}
	return nil
}

func (q *fakeQueue) Finalize() error { return q.Wait() }

func (q *fakeQueue) numSubmitted() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.kernels)
}

func fromFlat[T dtypes.Supported](t *testing.T, q backends.Queue, values []T) *tensors.Tensor {
	t.Helper()
	x, err := tensors.Allocate(q, dtypes.FromGenericsType[T](), len(values))
	require.NoError(t, err)
	copy(tensors.Flat[T](x), values)
	return x
}

func zeros(t *testing.T, q backends.Queue, dtype dtypes.DType, n int) *tensors.Tensor {
	t.Helper()
	x, err := tensors.Allocate(q, dtype, n)
	require.NoError(t, err)
	return x
}

func TestNegate(t *testing.T) {
	q := newQueue(t)
	values := make([]float32, 1024)
	for ii := range values {
		values[ii] = 0.75
	}
	x := fromFlat(t, q, values)
	y := zeros(t, q, dtypes.Float32, 1024)
	require.NoError(t, Neg.Apply(x, y))
	require.NoError(t, q.Wait())
	for ii, v := range tensors.Flat[float32](y) {
		require.Equalf(t, float32(-0.75), v, "element #%d", ii)
	}

	// Signed integers.
	xi := fromFlat(t, q, []int8{1, -2, 127, -128})
	yi := zeros(t, q, dtypes.Int8, 4)
	require.NoError(t, Neg.Apply(xi, yi))
	require.NoError(t, q.Wait())
	assert.Equal(t, []int8{-1, 2, -127, -128}, tensors.Flat[int8](yi))
}

func TestAddInt32(t *testing.T) {
	q := newQueue(t)
	lhs, rhs := make([]int32, 16), make([]int32, 16)
	for ii := range lhs {
		lhs[ii] = int32(ii)
		rhs[ii] = int32(100 * ii)
	}
	x, y := fromFlat(t, q, lhs), fromFlat(t, q, rhs)
	z := zeros(t, q, dtypes.Int32, 16)
	require.NoError(t, Add.Apply(x, y, z))
	require.NoError(t, q.Wait())
	for ii, v := range tensors.Flat[int32](z) {
		assert.Equal(t, int32(101*ii), v)
	}
}

func TestAddFloatComplex(t *testing.T) {
	q := newQueue(t)
	x := fromFlat(t, q, []float32{1, 2, 3})
	y := fromFlat(t, q, []complex64{1i, 1 + 1i, -3 - 2i})
	z := zeros(t, q, dtypes.Complex64, 3)
	require.NoError(t, Add.Apply(x, y, z))
	require.NoError(t, q.Wait())
	assert.Equal(t, []complex64{1 + 1i, 3 + 1i, -2i}, tensors.Flat[complex64](z))

	// Float64 with Complex64 results in Complex128.
	x64 := fromFlat(t, q, []float64{0.5, 1, 2})
	z128 := zeros(t, q, dtypes.Complex128, 3)
	require.NoError(t, Mul.Apply(x64, y, z128))
	require.NoError(t, q.Wait())
	assert.Equal(t, []complex128{0.5i, 1 + 1i, -6 - 4i}, tensors.Flat[complex128](z128))

	// Storing it in a Complex64 would be narrowing.
	err := Mul.Apply(x64, y, z)
	assert.ErrorIs(t, err, status.ErrNarrowingConversion)
}

func TestIntegerPromotion(t *testing.T) {
	q := newQueue(t)

	// Int8 + Uint8 is evaluated and returned as Int32.
	x := fromFlat(t, q, []int8{100, -100})
	y := fromFlat(t, q, []uint8{200, 200})
	z := zeros(t, q, dtypes.Int32, 2)
	require.NoError(t, Add.Apply(x, y, z))
	require.NoError(t, q.Wait())
	assert.Equal(t, []int32{300, 100}, tensors.Flat[int32](z))

	// Uint32 with Int32 is Uint32.
	xu := fromFlat(t, q, []uint32{5, 0})
	yi := fromFlat(t, q, []int32{-1, -1})
	zu := zeros(t, q, dtypes.Uint32, 2)
	require.NoError(t, Add.Apply(xu, yi, zu))
	require.NoError(t, q.Wait())
	assert.Equal(t, []uint32{4, math.MaxUint32}, tensors.Flat[uint32](zu))

	// Int8 with Int8 can't be stored in an Int8.
	x8 := fromFlat(t, q, []int8{1, 2})
	z8 := zeros(t, q, dtypes.Int8, 2)
	assert.ErrorIs(t, Add.Apply(x8, x8, z8), status.ErrNarrowingConversion)
}

func TestReducedPrecisionFloats(t *testing.T) {
	q := newQueue(t)
	x := zeros(t, q, dtypes.Float16, 3)
	y := zeros(t, q, dtypes.BFloat16, 3)
	must.M(simpleFill(x, []float64{1, 2.5, -4}))
	must.M(simpleFill(y, []float64{0.5, 0.5, 8}))

	z16 := zeros(t, q, dtypes.Float16, 3)
	require.NoError(t, Add.Apply(x, x, z16))
	z32 := zeros(t, q, dtypes.Float32, 3)
	require.NoError(t, Div.Apply(x, y, z32))
	require.NoError(t, q.Wait())

	got16 := tensors.Flat[float16.Float16](z16)
	assert.Equal(t, []float32{2, 5, -8}, []float32{got16[0].Float32(), got16[1].Float32(), got16[2].Float32()})
	assert.Equal(t, []float32{2, 5, -0.5}, tensors.Flat[float32](z32))
	assert.ErrorIs(t, Div.Apply(x, y, z16), status.ErrNarrowingConversion)

	// Unary operations evaluate them in float32.
	sq := zeros(t, q, dtypes.BFloat16, 3)
	require.NoError(t, Abs.Apply(y, sq))
	require.NoError(t, q.Wait())
	got := tensors.Flat[bfloat16.BFloat16](sq)
	assert.Equal(t, []float32{0.5, 0.5, 8}, []float32{got[0].Float32(), got[1].Float32(), got[2].Float32()})
}

// simpleFill writes values into a Float16 or BFloat16 tensor, using the dispatch writers.
func simpleFill(x *tensors.Tensor, values []float64) error {
	out, err := dispatch.NewOutput(dispatch.OnlyFloat, x.DType(), x.Data(), x.Size())
	if err != nil {
		return err
	}
	write := dispatch.RealWriter[float64](out)
	for ii, v := range values {
		write(ii, v)
	}
	return nil
}

func TestAbsAllDTypes(t *testing.T) {
	q := newQueue(t)
	values := []float64{-3, 2, 0, 7}
	for _, dtype := range dispatch.FloatAndInt.DTypes() {
		t.Run(dtype.String(), func(t *testing.T) {
			x := zeros(t, q, dtype, len(values))
			y := zeros(t, q, dtype, len(values))
			in := values
			if dtype.IsUnsigned() {
				in = []float64{3, 2, 0, 7}
			}
			out := must.M1(dispatch.NewOutput(dispatch.FloatAndInt, dtype, x.Data(), x.Size()))
			write := dispatch.RealWriter[float64](out)
			for ii, v := range in {
				write(ii, v)
			}
			require.NoError(t, Abs.Apply(x, y))
			require.NoError(t, q.Wait())
			read := dispatch.RealReader[float64](must.M1(dispatch.NewInput(dispatch.FloatAndInt, dtype, y.Data(), y.Size())))
			for ii := range values {
				assert.Equal(t, math.Abs(values[ii]), read(ii))
			}
		})
	}
}

func TestQueueMismatchBeforePointerCheck(t *testing.T) {
	q1, q2 := newFakeQueue("q1"), newFakeQueue("q2")
	x := zeros(t, q1, dtypes.Float32, 8)
	y := zeros(t, q2, dtypes.Float32, 8)
	z := zeros(t, q1, dtypes.Float32, 8)
	assert.ErrorIs(t, Neg.Apply(x, y), status.ErrQueueMismatch)
	assert.ErrorIs(t, Add.Apply(x, y, z), status.ErrQueueMismatch)
	assert.ErrorIs(t, Add.Apply(x, z, y), status.ErrQueueMismatch)

	// A foreign pointer described as belonging to q2 still fails with queue mismatch first.
	foreign := make([]float32, 8)
	w := tensors.New1D(q2, unsafe.Pointer(&foreign[0]), dtypes.Float32, 8)
	assert.ErrorIs(t, Add.Apply(x, w, z), status.ErrQueueMismatch)

	assert.Zero(t, q1.ownsCalls)
	assert.Zero(t, q2.ownsCalls)
	assert.Zero(t, q1.numSubmitted())
	assert.Zero(t, q2.numSubmitted())
}

func TestDimensionMismatch(t *testing.T) {
	q := newFakeQueue("q")
	x := zeros(t, q, dtypes.Float32, 8)
	y := zeros(t, q, dtypes.Float32, 9)
	x2d := must.M1(tensors.Allocate(q, dtypes.Float32, 2, 4))
	assert.ErrorIs(t, Neg.Apply(x, y), status.ErrDimensionMismatch)
	assert.ErrorIs(t, Sub.Apply(x, x, y), status.ErrDimensionMismatch)

	// Same number of elements, different shapes.
	assert.ErrorIs(t, Neg.Apply(x, x2d), status.ErrDimensionMismatch)
	assert.Zero(t, q.ownsCalls)
	assert.Zero(t, q.numSubmitted())
}

func TestNonConformingPointer(t *testing.T) {
	q, other := newQueue(t), newQueue(t)
	x := zeros(t, q, dtypes.Float32, 8)
	y := zeros(t, q, dtypes.Float32, 8)

	goSlice := make([]float32, 8)
	fromGo := tensors.New1D(q, unsafe.Pointer(&goSlice[0]), dtypes.Float32, 8)
	assert.ErrorIs(t, Neg.Apply(fromGo, y), status.ErrNonConformingPointer)
	assert.ErrorIs(t, Neg.Apply(x, fromGo), status.ErrNonConformingPointer)

	// Memory of another queue, described as belonging to q.
	otherX := zeros(t, other, dtypes.Float32, 8)
	fromOther := tensors.New1D(q, otherX.Data(), dtypes.Float32, 8)
	assert.ErrorIs(t, Add.Apply(x, fromOther, y), status.ErrNonConformingPointer)

	// Or correctly described: then the queues don't match.
	assert.ErrorIs(t, Add.Apply(x, otherX, y), status.ErrQueueMismatch)

	// Pointer check happens before the dtype check.
	badDType := tensors.New1D(q, unsafe.Pointer(&goSlice[0]), dtypes.DType(99), 8)
	assert.ErrorIs(t, Neg.Apply(badDType, y), status.ErrNonConformingPointer)

	// Freed memory is non-conforming.
	require.NoError(t, x.Free())
	assert.ErrorIs(t, Neg.Apply(x, y), status.ErrNonConformingPointer)
	assert.Zero(t, q.NumKernels())
}

func TestInvalidParameter(t *testing.T) {
	q := newFakeQueue("q")
	x := zeros(t, q, dtypes.Float32, 4)
	assert.ErrorIs(t, Neg.Apply(nil, x), status.ErrInvalidParameter)
	assert.ErrorIs(t, Neg.Apply(x, nil), status.ErrInvalidParameter)
	assert.ErrorIs(t, Add.Apply(x, nil, x), status.ErrInvalidParameter)

	nilData := tensors.New1D(q, nil, dtypes.Float32, 4)
	assert.ErrorIs(t, Neg.Apply(nilData, x), status.ErrInvalidParameter)
	noQueue := tensors.New1D(nil, x.Data(), dtypes.Float32, 4)
	assert.ErrorIs(t, Neg.Apply(x, noQueue), status.ErrInvalidParameter)

	// Invalid parameters are reported before queue mismatches.
	y := zeros(t, newFakeQueue("other"), dtypes.Float32, 4)
	assert.ErrorIs(t, Add.Apply(x, y, nil), status.ErrInvalidParameter)
	assert.Zero(t, q.numSubmitted())

	assert.ErrorIs(t, Apply("Neg", []*tensors.Tensor{x, x}, x), status.ErrInvalidParameter)
	assert.ErrorIs(t, Apply("Add", []*tensors.Tensor{x}, x), status.ErrInvalidParameter)
	assert.ErrorIs(t, Apply("Foo", []*tensors.Tensor{x}, x), status.ErrInvalidParameter)
}

func TestUnexpectedDataType(t *testing.T) {
	q := newFakeQueue("q")
	f32 := zeros(t, q, dtypes.Float32, 4)
	u8 := zeros(t, q, dtypes.Uint8, 4)
	i32 := zeros(t, q, dtypes.Int32, 4)
	c64 := zeros(t, q, dtypes.Complex64, 4)

	assert.ErrorIs(t, Conj.Apply(f32, f32), status.ErrUnexpectedDataType)
	assert.ErrorIs(t, Conj.Apply(c64, f32), status.ErrUnexpectedDataType)
	assert.ErrorIs(t, Neg.Apply(u8, u8), status.ErrUnexpectedDataType)
	assert.ErrorIs(t, Sqrt.Apply(i32, f32), status.ErrUnexpectedDataType)
	assert.ErrorIs(t, Sqrt.Apply(f32, i32), status.ErrUnexpectedDataType)
	assert.ErrorIs(t, Abs.Apply(c64, c64), status.ErrUnexpectedDataType)

	// Tags outside the enumeration.
	bad := tensors.New1D(q, f32.Data(), dtypes.DType(42), 4)
	assert.ErrorIs(t, Exp.Apply(bad, f32), status.ErrUnexpectedDataType)
	assert.ErrorIs(t, Add.Apply(f32, bad, f32), status.ErrUnexpectedDataType)
	assert.ErrorIs(t, Add.Apply(f32, f32, bad), status.ErrUnexpectedDataType)
	assert.Zero(t, q.numSubmitted())
}

func TestNarrowingNotSubmitted(t *testing.T) {
	q := newFakeQueue("q")
	x := fromFlat(t, q, []int32{1, 2, 3})
	y := fromFlat(t, q, []int64{10, 20, 30})
	z := fromFlat(t, q, []int32{-7, -7, -7})
	for _, op := range BinaryOps() {
		assert.ErrorIs(t, op.Apply(x, y, z), status.ErrNarrowingConversion, op.Name)
	}
	xf := fromFlat(t, q, []float64{1, 2, 3})
	zf := fromFlat(t, q, []float32{-7, -7, -7})
	assert.ErrorIs(t, Add.Apply(xf, xf, zf), status.ErrNarrowingConversion)

	// Wider outputs are also rejected: the output must be exactly the result dtype.
	z64 := fromFlat(t, q, []int64{-7, -7, -7})
	assert.ErrorIs(t, Add.Apply(x, x, z64), status.ErrNarrowingConversion)

	assert.Zero(t, q.numSubmitted())
	require.NoError(t, q.Wait())
	assert.Equal(t, []int32{-7, -7, -7}, tensors.Flat[int32](z))
	assert.Equal(t, []float32{-7, -7, -7}, tensors.Flat[float32](zf))
	assert.Equal(t, []int64{-7, -7, -7}, tensors.Flat[int64](z64))
}

func TestComplexIntoRealIsNarrowing(t *testing.T) {
	q := newFakeQueue("q")
	identity := &UnaryOp{
		Name:    "Identity",
		Policy:  dispatch.FloatIntAndComplex,
		Complex: func(x complex128) complex128 { return x },
	}
	x := fromFlat(t, q, []complex64{1 + 1i})
	y := fromFlat(t, q, []float32{3})
	assert.ErrorIs(t, identity.Apply(x, y), status.ErrNarrowingConversion)

	// Real working types have no function defined.
	assert.ErrorIs(t, identity.Apply(y, y), status.ErrUnexpectedDataType)
	assert.Zero(t, q.numSubmitted())
}

func TestSubmitsOnce(t *testing.T) {
	q := newFakeQueue("q")
	x := fromFlat(t, q, []float64{1, 4, 9})
	y := zeros(t, q, dtypes.Float64, 3)
	require.NoError(t, Sqrt.Apply(x, y))
	require.Equal(t, 1, q.numSubmitted())
	assert.Equal(t, 2, q.ownsCalls)
	kernel := q.kernels[0]
	assert.Equal(t, "Sqrt", kernel.Name)
	assert.Equal(t, 3, kernel.Size)

	// Asynchronous: nothing written before the kernel runs.
	assert.Equal(t, []float64{0, 0, 0}, tensors.Flat[float64](y))
	require.NoError(t, q.Wait())
	assert.Equal(t, []float64{1, 2, 3}, tensors.Flat[float64](y))
}

func TestIdempotence(t *testing.T) {
	q := newQueue(t)
	values := make([]float32, 3000)
	for ii := range values {
		values[ii] = float32(ii)/1000 - 1.5
	}
	x := fromFlat(t, q, values)
	y1 := zeros(t, q, dtypes.Float32, len(values))
	y2 := zeros(t, q, dtypes.Float32, len(values))
	require.NoError(t, Tanh.Apply(x, y1))
	require.NoError(t, Tanh.Apply(x, y2))
	require.NoError(t, q.Wait())
	assert.Equal(t, tensors.Flat[float32](y1), tensors.Flat[float32](y2))
	assert.InDelta(t, math.Tanh(-1.5), tensors.Flat[float32](y1)[0], 1e-6)
}

func TestVectorized(t *testing.T) {
	cfg := simplego.DefaultConfig()
	cfg.ChunkSize = 100
	cfg.Parallelism = 4
	q := must.M1(simplego.NewQueue(cfg))
	defer func() { must.M(q.Finalize()) }()

	const n = 1001
	lhs32, rhs32 := make([]float32, n), make([]float32, n)
	lhs64, rhs64 := make([]float64, n), make([]float64, n)
	for ii := range n {
		lhs32[ii], rhs32[ii] = float32(ii)-500, float32(ii%7)+1
		lhs64[ii], rhs64[ii] = float64(lhs32[ii]), float64(rhs32[ii])
	}
	x32, y32 := fromFlat(t, q, lhs32), fromFlat(t, q, rhs32)
	x64, y64 := fromFlat(t, q, lhs64), fromFlat(t, q, rhs64)

	for _, op := range BinaryOps() {
		z32 := zeros(t, q, dtypes.Float32, n)
		z64 := zeros(t, q, dtypes.Float64, n)
		require.NoError(t, op.Apply(x32, y32, z32))
		require.NoError(t, op.Apply(x64, y64, z64))
		require.NoError(t, q.Wait())
		fn := binaryFn[float64](op.kind)
		got32, got64 := tensors.Flat[float32](z32), tensors.Flat[float64](z64)
		for ii := range n {
			want := fn(lhs64[ii], rhs64[ii])
			require.InDeltaf(t, want, got32[ii], 1e-4, "%s(%g, %g) float32", op.Name, lhs64[ii], rhs64[ii])
			require.Equalf(t, want, got64[ii], "%s(%g, %g) float64", op.Name, lhs64[ii], rhs64[ii])
		}
	}

	for _, op := range []*UnaryOp{Neg, Abs, Sqrt} {
		z32 := zeros(t, q, dtypes.Float32, n)
		z64 := zeros(t, q, dtypes.Float64, n)
		require.NoError(t, op.Apply(y32, z32))
		require.NoError(t, op.Apply(y64, z64))
		require.NoError(t, q.Wait())
		got32, got64 := tensors.Flat[float32](z32), tensors.Flat[float64](z64)
		for ii := range n {
			want := op.Float(rhs64[ii])
			require.InDeltaf(t, want, got32[ii], 1e-6, "%s(%g) float32", op.Name, rhs64[ii])
			require.InDeltaf(t, want, got64[ii], 1e-12, "%s(%g) float64", op.Name, rhs64[ii])
		}
	}

	// Mixed dtypes don't use the vectorized path, but give the same results.
	z64 := zeros(t, q, dtypes.Float64, n)
	require.NoError(t, Mul.Apply(x32, y64, z64))
	require.NoError(t, q.Wait())
	for ii, v := range tensors.Flat[float64](z64) {
		require.Equal(t, lhs64[ii]*rhs64[ii], v)
	}
}

func TestSign(t *testing.T) {
	q := newQueue(t)
	negZero := math.Copysign(0, -1)
	x := fromFlat(t, q, []float64{2, -3, 0, negZero, math.NaN(), math.Inf(1), math.Inf(-1), 1e-300})
	y := zeros(t, q, dtypes.Float64, 8)
	require.NoError(t, Sign.Apply(x, y))
	require.NoError(t, q.Wait())
	got := tensors.Flat[float64](y)
	assert.Equal(t, []float64{1, -1, 0, 0, 0, 1, -1, 1}, got)
	assert.False(t, math.Signbit(got[2]))
	assert.True(t, math.Signbit(got[3]))
}

func TestConj(t *testing.T) {
	q := newQueue(t)
	x := fromFlat(t, q, []complex128{1 + 2i, -3i, 4})
	y := zeros(t, q, dtypes.Complex128, 3)
	require.NoError(t, Conj.Apply(x, y))

	x64 := fromFlat(t, q, []complex64{1 + 2i, -3i})
	y32 := zeros(t, q, dtypes.Complex32, 2)
	require.NoError(t, Conj.Apply(x64, y32))
	require.NoError(t, q.Wait())

	assert.Equal(t, []complex128{cmplx.Conj(1 + 2i), 3i, 4}, tensors.Flat[complex128](y))
	got := tensors.Flat[complex32.Complex32](y32)
	assert.Equal(t, complex64(1-2i), got[0].Complex64())
	assert.Equal(t, complex64(3i), got[1].Complex64())
}

func TestIntegerDivisionByZero(t *testing.T) {
	q := newQueue(t)
	x := fromFlat(t, q, []int32{1, 2, 3})
	y := fromFlat(t, q, []int32{1, 0, 1})
	z := zeros(t, q, dtypes.Int32, 3)

	// The failure is only visible through the queue.
	require.NoError(t, Div.Apply(x, y, z))
	err := q.Wait()
	require.Error(t, err)
	assert.ErrorIs(t, err, status.ErrUnknown)
	assert.Contains(t, err.Error(), "runtime error: integer divide by zero")
	assert.NotContains(t, err.Error(), "runtime panic")
	require.NoError(t, q.Wait())

	// Float division by zero is not a fault.
	xf := fromFlat(t, q, []float32{1, -1})
	yf := zeros(t, q, dtypes.Float32, 2)
	zf := zeros(t, q, dtypes.Float32, 2)
	require.NoError(t, Div.Apply(xf, yf, zf))
	require.NoError(t, q.Wait())
	assert.Equal(t, []float32{float32(math.Inf(1)), float32(math.Inf(-1))}, tensors.Flat[float32](zf))
}

func TestZeroSize(t *testing.T) {
	q := newQueue(t)
	storage := zeros(t, q, dtypes.Float32, 1)
	empty := tensors.New(q, storage.Data(), dtypes.Float32, shapes.Make(0))
	require.NoError(t, Exp.Apply(empty, empty))
	require.NoError(t, Add.Apply(empty, empty, empty))
	require.NoError(t, q.Wait())
	assert.Equal(t, []float32{0}, tensors.Flat[float32](storage))
}

func TestMultiDimensional(t *testing.T) {
	q := newQueue(t)
	x := must.M1(tensors.Allocate(q, dtypes.Int64, 2, 3))
	copy(tensors.Flat[int64](x), []int64{1, 2, 3, 4, 5, 6})
	y := must.M1(tensors.Allocate(q, dtypes.Int64, 2, 3))
	require.NoError(t, Mul.Apply(x, x, y))
	require.NoError(t, q.Wait())
	assert.Equal(t, []int64{1, 4, 9, 16, 25, 36}, tensors.Flat[int64](y))
}

func TestCatalog(t *testing.T) {
	assert.Len(t, UnaryOps(), 20)
	assert.Len(t, BinaryOps(), 4)
	assert.Len(t, Ops(), 24)
	assert.Same(t, Sqrt, UnaryByName("sqrt"))
	assert.Same(t, Div, BinaryByName("DIV"))
	assert.Nil(t, UnaryByName("Add"))
	assert.Nil(t, BinaryByName("Neg"))

	names := make(map[string]bool)
	for _, op := range Ops() {
		assert.False(t, names[op.OpName()], "duplicate operation %q", op.OpName())
		names[op.OpName()] = true
		assert.True(t, op.TypePolicy().IsValid())
	}
	assert.Equal(t, dispatch.OnlyComplex, Conj.TypePolicy())
	assert.Equal(t, dispatch.FloatAndSignedInt, Neg.TypePolicy())
	assert.Equal(t, 2, Add.Arity())
	assert.Equal(t, 1, Abs.Arity())

	// Every unary operation has the functions its policy needs.
	for _, op := range UnaryOps() {
		for _, dtype := range op.Policy.DTypes() {
			switch dispatch.UnaryWorkingDType(dtype) {
			case dtypes.Int64:
				assert.NotNil(t, op.Int, "%s(%s)", op.Name, dtype)
			case dtypes.Uint64:
				assert.NotNil(t, op.Uint, "%s(%s)", op.Name, dtype)
			case dtypes.Float32, dtypes.Float64:
				assert.NotNil(t, op.Float, "%s(%s)", op.Name, dtype)
			default:
				assert.NotNil(t, op.Complex, "%s(%s)", op.Name, dtype)
			}
		}
	}
}

func TestApplyByName(t *testing.T) {
	q := newQueue(t)
	x := fromFlat(t, q, []float64{1, 2})
	y := zeros(t, q, dtypes.Float64, 2)
	require.NoError(t, Apply("exp", []*tensors.Tensor{x}, y))
	require.NoError(t, q.Wait())
	assert.InDeltaSlice(t, []float64{math.E, math.E * math.E}, tensors.Flat[float64](y), 1e-12)
	require.NoError(t, Apply("sub", []*tensors.Tensor{x, x}, y))
	require.NoError(t, q.Wait())
	assert.Equal(t, []float64{0, 0}, tensors.Flat[float64](y))
}

func TestCatchUnknown(t *testing.T) {
	err := catchUnknown("Boom", func() error { panic("boom") })
	assert.ErrorIs(t, err, status.ErrUnknown)
	assert.Contains(t, err.Error(), "boom")
	assert.NoError(t, catchUnknown("Fine", func() error { return nil }))
}
