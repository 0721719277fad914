// Package fung composes functions from elementary building blocks and
// evaluates their values together with directional derivatives up to
// third order.
//
// Design goals:
//   - Exact derivatives: sum, Leibniz and Faà di Bruno rules, no differencing
//   - Derivatives that vanish structurally are never computed
//   - Scalars and gonum matrices share one Value interface
//   - Several independent variables, tagged by integer id
//
// A typical expression is assembled from leaves (Const, Var, Ident and the
// cmath/linalg packages) with Add, Mul, Scale, Square and Compose, and then
// wrapped with Finalize, which fills in zeros for derivatives that do not
// exist and rejects inconsistent derivative requests up front.
package fung

import (
	"encoding/json"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// ============================================================
// Value: scalars and matrices
// ============================================================

// Value is the result type of function values and derivatives.
//
// Add requires operands of the same kind and shape. Mul multiplies scalars,
// scales matrices and forms matrix products; operands that cannot be
// combined are a programming error and cause a panic with a *ShapeError.
type Value interface {
	Add(Value) Value
	Mul(Value) Value
	Scale(a float64) Value
	Zero() Value
	String() string
}

// Scalar is a real number.
type Scalar float64

func (s Scalar) Add(v Value) Value     { return s + mustScalar("add", v) }
func (s Scalar) Scale(a float64) Value { return Scalar(a) * s }
func (s Scalar) Zero() Value           { return Scalar(0) }
func (s Scalar) String() string        { return strconv.FormatFloat(float64(s), 'g', -1, 64) }
func (s Scalar) Float64() float64      { return float64(s) }

func (s Scalar) Mul(v Value) Value {
	switch o := v.(type) {
	case Scalar:
		return s * o
	case Matrix:
		return o.Scale(float64(s))
	}
	panic(&ShapeError{Op: "mul", Want: "scalar or matrix", Got: shapeOf(v)})
}

// Matrix is an immutable dense matrix. Every operation returns a new Matrix.
type Matrix struct{ d *mat.Dense }

// NewMatrix returns an r×c matrix backed by a copy of data in row-major order.
func NewMatrix(r, c int, data []float64) Matrix {
	buf := make([]float64, r*c)
	copy(buf, data)
	return Matrix{d: mat.NewDense(r, c, buf)}
}

// MatrixOf copies m.
func MatrixOf(m mat.Matrix) Matrix { return Matrix{d: mat.DenseCopyOf(m)} }

// Rows builds a matrix from nested rows. All rows must have the same length.
func Rows(rows [][]float64) Matrix {
	if len(rows) == 0 {
		panic("fung: empty matrix")
	}
	c := len(rows[0])
	data := make([]float64, 0, len(rows)*c)
	for _, row := range rows {
		if len(row) != c {
			panic("fung: ragged matrix rows")
		}
		data = append(data, row...)
	}
	return Matrix{d: mat.NewDense(len(rows), c, data)}
}

// Eye returns the n×n identity matrix.
func Eye(n int) Matrix {
	d := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		d.Set(i, i, 1)
	}
	return Matrix{d: d}
}

// Zeros returns the r×c zero matrix.
func Zeros(r, c int) Matrix { return Matrix{d: mat.NewDense(r, c, nil)} }

func (m Matrix) Dims() (r, c int) {
	if m.d == nil {
		return 0, 0
	}
	return m.d.Dims()
}

func (m Matrix) At(i, j int) float64 { return m.d.At(i, j) }
func (m Matrix) IsSquare() bool      { r, c := m.Dims(); return r == c && r > 0 }
func (m Matrix) Dense() *mat.Dense   { return mat.DenseCopyOf(m.d) }
func (m Matrix) Zero() Value         { r, c := m.Dims(); return Zeros(r, c) }

// T returns the transpose.
func (m Matrix) T() Matrix { return Matrix{d: mat.DenseCopyOf(m.d.T())} }

// Trace panics for non-square matrices.
func (m Matrix) Trace() float64 { return mat.Trace(m.d) }

func (m Matrix) Det() float64 { return mat.Det(m.d) }

func (m Matrix) Add(v Value) Value {
	o := mustMatrix("add", v)
	if !SameShape(m, o) {
		panic(&ShapeError{Op: "add", Want: shapeOf(m), Got: shapeOf(o)})
	}
	var r mat.Dense
	r.Add(m.d, o.d)
	return Matrix{d: &r}
}

func (m Matrix) Mul(v Value) Value {
	switch o := v.(type) {
	case Scalar:
		return m.Scale(float64(o))
	case Matrix:
		_, c := m.Dims()
		if r, _ := o.Dims(); r != c {
			panic(&ShapeError{Op: "mul", Want: strconv.Itoa(c) + "xN", Got: shapeOf(o)})
		}
		var r mat.Dense
		r.Mul(m.d, o.d)
		return Matrix{d: &r}
	}
	panic(&ShapeError{Op: "mul", Want: "scalar or matrix", Got: shapeOf(v)})
}

func (m Matrix) Scale(a float64) Value {
	var r mat.Dense
	r.Scale(a, m.d)
	return Matrix{d: &r}
}

// Slice returns the entries as nested rows.
func (m Matrix) Slice() [][]float64 {
	r, c := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = make([]float64, c)
		mat.Row(out[i], i, m.d)
	}
	return out
}

func (m Matrix) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, row := range m.Slice() {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte('[')
		for j, x := range row {
			if j > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
		}
		sb.WriteByte(']')
	}
	sb.WriteByte(']')
	return sb.String()
}

// MarshalJSON encodes the matrix as nested rows. Non-finite entries have no
// JSON representation and fail.
func (m Matrix) MarshalJSON() ([]byte, error) { return json.Marshal(m.Slice()) }

// ============================================================
// Helpers
// ============================================================

// Inner is the scalar product of two scalars or the Frobenius inner product
// of two matrices of equal shape.
func Inner(a, b Value) Value {
	switch x := a.(type) {
	case Scalar:
		return x * mustScalar("inner", b)
	case Matrix:
		y := mustMatrix("inner", b)
		if !SameShape(x, y) {
			panic(&ShapeError{Op: "inner", Want: shapeOf(x), Got: shapeOf(y)})
		}
		var r mat.Dense
		r.MulElem(x.d, y.d)
		return Scalar(mat.Sum(&r))
	}
	panic(&ShapeError{Op: "inner", Want: "scalar or matrix", Got: shapeOf(a)})
}

// AsScalar returns v as a float64 or a *ShapeError if v is not a Scalar.
func AsScalar(op string, v Value) (float64, error) {
	s, ok := v.(Scalar)
	if !ok {
		return 0, &ShapeError{Op: op, Want: "scalar", Got: shapeOf(v)}
	}
	return float64(s), nil
}

// AsMatrix returns v as a Matrix or a *ShapeError if v is not a Matrix.
func AsMatrix(op string, v Value) (Matrix, error) {
	m, ok := v.(Matrix)
	if !ok || m.d == nil {
		return Matrix{}, &ShapeError{Op: op, Want: "matrix", Got: shapeOf(v)}
	}
	return m, nil
}

// SameShape reports whether a and b have the same kind and dimensions.
func SameShape(a, b Value) bool {
	switch x := a.(type) {
	case Scalar:
		_, ok := b.(Scalar)
		return ok
	case Matrix:
		y, ok := b.(Matrix)
		if !ok {
			return false
		}
		r1, c1 := x.Dims()
		r2, c2 := y.Dims()
		return r1 == r2 && c1 == c2
	}
	return false
}

func shapeOf(v Value) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case Scalar:
		return "scalar"
	case Matrix:
		r, c := x.Dims()
		return strconv.Itoa(r) + "x" + strconv.Itoa(c)
	}
	return "unknown"
}

func mustScalar(op string, v Value) Scalar {
	s, ok := v.(Scalar)
	if !ok {
		panic(&ShapeError{Op: op, Want: "scalar", Got: shapeOf(v)})
	}
	return s
}

func mustMatrix(op string, v Value) Matrix {
	m, ok := v.(Matrix)
	if !ok {
		panic(&ShapeError{Op: op, Want: "matrix", Got: shapeOf(v)})
	}
	return m
}
