package linalg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"

	fung "github.com/njchilds90/gofung"
	"github.com/njchilds90/gofung/linalg"
)

func scalar(t *testing.T, v fung.Value) float64 {
	t.Helper()
	x, err := fung.AsScalar("test", v)
	require.NoError(t, err)
	return x
}

func along(m fung.Matrix) fung.Direction { return fung.Along(0, m) }

func plus(a, b fung.Matrix, s float64) fung.Matrix {
	return a.Add(b.Scale(s)).(fung.Matrix)
}

func diag(d ...float64) fung.Matrix {
	m := fung.Zeros(len(d), len(d)).Dense()
	for i, x := range d {
		m.Set(i, i, x)
	}
	return fung.MatrixOf(m)
}

// ============================================================
// Determinant
// ============================================================

func TestDet_TwoByTwo(t *testing.T) {
	a := fung.Rows([][]float64{{2, 1}, {0, 3}})
	fn, err := fung.Finalize(linalg.Det(a))
	require.NoError(t, err)

	eye := along(fung.Eye(2))
	assert.InDelta(t, 6, scalar(t, fn.Value()), 1e-12)
	assert.InDelta(t, 5, scalar(t, fn.D1(eye)), 1e-12)
	assert.InDelta(t, 2, scalar(t, fn.D2(eye, eye)), 1e-12)
	assert.False(t, fn.Has(0, 0, 0))
	assert.Equal(t, fung.Scalar(0), fn.D3(eye, eye, eye))
}

func TestDet_AgainstFiniteDifferences(t *testing.T) {
	a := fung.Rows([][]float64{{2, 1, 0}, {1, 3, 1}, {0, 1, 4}})
	b := fung.Rows([][]float64{{0.1, 0.2, 0}, {0, 0.3, 0.1}, {0.2, 0, 0.1}})
	c := fung.Rows([][]float64{{0, 1, 0}, {0, 0, 1}, {1, 0, 0}})
	d := linalg.Det(a)
	require.NoError(t, d.Err())

	line := func(s float64) float64 { return plus(a, b, s).Det() }
	assert.InDelta(t, fd.Derivative(line, 0, &fd.Settings{Formula: fd.Central}), scalar(t, d.D1(along(b))), 1e-7)
	assert.InDelta(t, fd.Derivative(line, 0, &fd.Settings{Formula: fd.Central2nd}),
		scalar(t, d.D2(along(b), along(b))), 1e-4)

	// The cubic coefficient of det(A + sB) is det(B).
	assert.InDelta(t, 6*b.Det(), scalar(t, d.D3(along(b), along(b), along(b))), 1e-12)

	// Mixed derivatives are symmetric.
	bc := scalar(t, d.D2(along(b), along(c)))
	cb := scalar(t, d.D2(along(c), along(b)))
	assert.InDelta(t, bc, cb, 1e-12)
}

func TestDet_Shapes(t *testing.T) {
	assert.ErrorIs(t, linalg.Det(fung.Zeros(2, 3)).Err(), fung.ErrShape)

	d := linalg.Det(fung.Eye(2))
	require.NoError(t, d.Err())
	assert.ErrorIs(t, d.Update(fung.Eye(3)), fung.ErrShape)
	assert.ErrorIs(t, d.Update(fung.Scalar(1)), fung.ErrShape)
	assert.Equal(t, fung.Scalar(1), d.Value())
}

// ============================================================
// Trace and second invariant
// ============================================================

func TestTrace(t *testing.T) {
	a := diag(1, 2, 3)
	tr := linalg.Trace(a)
	assert.Equal(t, fung.Scalar(6), tr.Value())
	assert.Equal(t, fung.Scalar(3), tr.D1(along(fung.Eye(3))))
	assert.True(t, fung.Has(tr, 0))
	assert.False(t, fung.Has(tr, 0, 0))
	assert.ErrorIs(t, linalg.Trace(fung.Zeros(1, 2)).Err(), fung.ErrShape)
}

func TestSecondInvariant(t *testing.T) {
	s := linalg.SecondInvariant(diag(1, 2, 3))
	eye := along(fung.Eye(3))
	assert.InDelta(t, 11, scalar(t, s.Value()), 1e-12)
	assert.InDelta(t, 12, scalar(t, s.D1(eye)), 1e-12)
	assert.InDelta(t, 6, scalar(t, s.D2(eye, eye)), 1e-12)

	b := fung.Rows([][]float64{{0, 1, 0}, {2, 0, 0}, {0, 0, 1}})
	a := diag(1, 2, 3)
	line := func(x float64) float64 {
		require.NoError(t, s.Update(plus(a, b, x)))
		return scalar(t, s.Value())
	}
	want := fd.Derivative(line, 0, &fd.Settings{Formula: fd.Central})
	require.NoError(t, s.Update(a))
	assert.InDelta(t, want, scalar(t, s.D1(along(b))), 1e-7)
}

// ============================================================
// Cauchy-Green and deviator
// ============================================================

func TestCauchyGreen(t *testing.T) {
	f := fung.Rows([][]float64{{1, 2}, {0, 1}})
	c := linalg.CauchyGreen(f)
	require.NoError(t, c.Err())

	assert.Equal(t, "[[1 2] [2 5]]", c.Value().String())
	assert.Equal(t, "[[2 2] [2 2]]", c.D1(along(fung.Eye(2))).String())
	assert.Equal(t, "[[2 0] [0 2]]", c.D2(along(fung.Eye(2)), along(fung.Eye(2))).String())
	assert.False(t, fung.Has(c, 0, 0, 0))

	// Non-square deformation gradients are allowed.
	r := linalg.CauchyGreen(fung.Zeros(3, 2))
	require.NoError(t, r.Err())
	rows, cols := r.Value().(fung.Matrix).Dims()
	assert.Equal(t, [2]int{2, 2}, [2]int{rows, cols})
	assert.Equal(t, "F^T*F", r.String())
}

func TestDeviator(t *testing.T) {
	d := linalg.Deviator(diag(1, 2, 3))
	assert.Equal(t, "[[-1 0 0] [0 0 0] [0 0 1]]", d.Value().String())
	assert.Equal(t, "[[0 0 0] [0 0 0] [0 0 0]]", d.D1(along(fung.Eye(3))).String())

	j2, err := fung.Finalize(linalg.J2(diag(1, 2, 3)))
	require.NoError(t, err)
	assert.InDelta(t, 2, scalar(t, j2.Value()), 1e-12)
	assert.InDelta(t, 0, scalar(t, j2.D1(along(fung.Eye(3)))), 1e-12)
}

// ============================================================
// Invariants
// ============================================================

func TestModifiedInvariants_ScaleInvariant(t *testing.T) {
	eye := fung.Eye(3)
	for _, build := range []func(fung.Matrix) fung.Node{
		func(a fung.Matrix) fung.Node { return linalg.ModifiedFirstInvariant(a) },
		func(a fung.Matrix) fung.Node { return linalg.ModifiedSecondInvariant(a) },
	} {
		fn, err := fung.Finalize(build(eye))
		require.NoError(t, err)
		assert.InDelta(t, 3, scalar(t, fn.Value()), 1e-12)
		assert.InDelta(t, 0, scalar(t, fn.D1(along(eye))), 1e-12)

		require.NoError(t, fn.Update(eye.Scale(2)))
		assert.InDelta(t, 3, scalar(t, fn.Value()), 1e-12)
	}
}

func TestModifiedFirstInvariant_TwoDimensional(t *testing.T) {
	a := diag(4, 1)
	fn, err := fung.Finalize(linalg.ModifiedFirstInvariant(a))
	require.NoError(t, err)
	assert.InDelta(t, 2.5, scalar(t, fn.Value()), 1e-12)
}

func TestShiftedInvariants(t *testing.T) {
	eye := fung.Eye(3)
	fn, err := fung.Finalize(linalg.ShiftedFirstInvariant(eye, 3))
	require.NoError(t, err)
	assert.Equal(t, fung.Scalar(0), fn.Value())

	fn, err = fung.Finalize(linalg.ShiftedModifiedSecondInvariant(eye, 3))
	require.NoError(t, err)
	assert.InDelta(t, 0, scalar(t, fn.Value()), 1e-12)
}

func TestMixedInvariants(t *testing.T) {
	a := diag(1, 2, 3)
	m := diag(1, 0, 0)
	b := fung.Rows([][]float64{{5, 1, 0}, {0, 0, 0}, {0, 0, 0}})

	tests := []struct {
		name  string
		node  fung.Node
		value float64
		d1    float64
	}{
		{"i4", linalg.I4(a, m), 1, 5},
		{"i5", linalg.I5(a, m), 1, 10},
		{"i6", linalg.I6(a, m), 1, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := fung.Finalize(tt.node)
			require.NoError(t, err)
			assert.InDelta(t, tt.value, scalar(t, fn.Value()), 1e-12)
			assert.InDelta(t, tt.d1, scalar(t, fn.D1(along(b))), 1e-12)
		})
	}
}

func TestFrobeniusSquared(t *testing.T) {
	eye := fung.Eye(3)
	fn, err := fung.Finalize(linalg.FrobeniusSquared(eye))
	require.NoError(t, err)
	assert.Equal(t, fung.Scalar(3), fn.Value())
	assert.Equal(t, fung.Scalar(6), fn.D1(along(eye)))
	assert.Equal(t, fung.Scalar(6), fn.D2(along(eye), along(eye)))
}
