package cmath_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/num/dual"
	"gonum.org/v1/gonum/num/hyperdual"

	fung "github.com/njchilds90/gofung"
	"github.com/njchilds90/gofung/cmath"
)

func scalar(t *testing.T, v fung.Value) float64 {
	t.Helper()
	x, err := fung.AsScalar("test", v)
	require.NoError(t, err)
	return x
}

var one = fung.Along(0, fung.Scalar(1))

// ============================================================
// Leaves against hyperdual numbers
// ============================================================

func TestFunc_AgainstHyperdual(t *testing.T) {
	tests := []struct {
		name string
		leaf func(float64) *cmath.Func
		ref  func(hyperdual.Number) hyperdual.Number
		x    float64
	}{
		{"pow 3.5", func(x float64) *cmath.Func { return cmath.Pow(x, 3.5) },
			func(d hyperdual.Number) hyperdual.Number { return hyperdual.PowReal(d, 3.5) }, 1.7},
		{"pow -2", func(x float64) *cmath.Func { return cmath.Pow(x, -2) },
			func(d hyperdual.Number) hyperdual.Number { return hyperdual.PowReal(d, -2) }, 0.6},
		{"sqrt", cmath.Sqrt, hyperdual.Sqrt, 2.5},
		{"cbrt", cmath.Cbrt,
			func(d hyperdual.Number) hyperdual.Number { return hyperdual.PowReal(d, 1.0/3) }, 2.5},
		{"cbrt2", cmath.Cbrt2,
			func(d hyperdual.Number) hyperdual.Number { return hyperdual.PowReal(d, 2.0/3) }, 0.9},
		{"overThirdRoot", cmath.OverThirdRoot,
			func(d hyperdual.Number) hyperdual.Number { return hyperdual.PowReal(d, -1.0/3) }, 1.4},
		{"overThirdRootSquared", cmath.OverThirdRootSquared,
			func(d hyperdual.Number) hyperdual.Number { return hyperdual.PowReal(d, -2.0/3) }, 1.4},
		{"exp", cmath.Exp, hyperdual.Exp, 0.3},
		{"exp2", cmath.Exp2,
			func(d hyperdual.Number) hyperdual.Number { return hyperdual.Exp(hyperdual.Scale(math.Ln2, d)) }, 1.1},
		{"ln", cmath.Log, hyperdual.Log, 3.2},
		{"log10", cmath.Log10,
			func(d hyperdual.Number) hyperdual.Number { return hyperdual.Scale(1/math.Ln10, hyperdual.Log(d)) }, 3.2},
		{"log2", cmath.Log2,
			func(d hyperdual.Number) hyperdual.Number { return hyperdual.Scale(1/math.Ln2, hyperdual.Log(d)) }, 3.2},
		{"sin", cmath.Sin, hyperdual.Sin, 0.4},
		{"cos", cmath.Cos, hyperdual.Cos, 0.4},
		{"tan", cmath.Tan, hyperdual.Tan, 0.4},
		{"asin", cmath.Asin, hyperdual.Asin, 0.35},
		{"acos", cmath.Acos, hyperdual.Acos, -0.35},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.leaf(tt.x)
			require.NoError(t, f.Err())
			want := tt.ref(hyperdual.Number{Real: tt.x, E1mag: 1, E2mag: 1})

			assert.InDelta(t, want.Real, scalar(t, f.Value()), 1e-12)
			assert.InDelta(t, want.E1mag, scalar(t, f.D1(one)), 1e-10)
			assert.InDelta(t, want.E1E2mag, scalar(t, f.D2(one, one)), 1e-9)

			d2 := func(x float64) float64 {
				require.NoError(t, f.Update(fung.Scalar(x)))
				return scalar(t, f.D2(one, one))
			}
			d3 := fd.Derivative(d2, tt.x, &fd.Settings{Formula: fd.Central})
			require.NoError(t, f.Update(fung.Scalar(tt.x)))
			assert.InDelta(t, d3, scalar(t, f.D3(one, one, one)), 1e-5*math.Max(1, math.Abs(d3)))
		})
	}
}

func TestErf_AgainstDual(t *testing.T) {
	// d/dx erf(x) = 2/sqrt(pi) * exp(-x^2)
	for _, x := range []float64{-1.2, 0, 0.5, 2} {
		want := dual.Scale(2/math.SqrtPi, dual.Exp(dual.Scale(-1, dual.Mul(
			dual.Number{Real: x, Emag: 1}, dual.Number{Real: x, Emag: 1}))))

		f := cmath.Erf(x)
		assert.InDelta(t, math.Erf(x), scalar(t, f.Value()), 1e-15)
		assert.InDelta(t, want.Real, scalar(t, f.D1(one)), 1e-14)
		assert.InDelta(t, want.Emag, scalar(t, f.D2(one, one)), 1e-14)
		assert.InDelta(t, (4*x*x-2)*want.Real, scalar(t, f.D3(one, one, one)), 1e-14)
	}
}

func TestFunc_DirectionsScale(t *testing.T) {
	f := cmath.Sin(0.5)
	d := func(x float64) fung.Direction { return fung.Along(0, fung.Scalar(x)) }
	assert.InDelta(t, 2*math.Cos(0.5), scalar(t, f.D1(d(2))), 1e-15)
	assert.InDelta(t, -6*math.Sin(0.5), scalar(t, f.D2(d(2), d(3))), 1e-15)
	assert.InDelta(t, -24*math.Cos(0.5), scalar(t, f.D3(d(2), d(3), d(4))), 1e-14)
	assert.Panics(t, func() { f.D1(fung.Along(0, fung.Eye(2))) })
}

// ============================================================
// Polynomial order
// ============================================================

func TestPow_Order(t *testing.T) {
	tests := []struct {
		k     float64
		order int
	}{
		{0, 0}, {1, 1}, {2, 2}, {3, 3}, {4, 3}, {-1, 3}, {0.5, 3}, {2.5, 3},
	}
	for _, tt := range tests {
		f := cmath.Pow(2, tt.k)
		assert.Equal(t, tt.order, f.Order(), "k=%g", tt.k)
		assert.Equal(t, tt.order >= 1, fung.Has(f, 0), "k=%g", tt.k)
		assert.Equal(t, tt.order >= 3, fung.Has(f, 0, 0, 0), "k=%g", tt.k)
	}
}

func TestPow_ZeroIsExact(t *testing.T) {
	f := cmath.Pow(0, 3)
	require.NoError(t, f.Err())
	assert.Equal(t, fung.Scalar(0), f.Value())
	assert.Equal(t, fung.Scalar(0), f.D1(one))
	assert.Equal(t, fung.Scalar(0), f.D2(one, one))
	assert.Equal(t, fung.Scalar(6), f.D3(one, one, one))
}

// ============================================================
// Domains
// ============================================================

func TestFunc_Domains(t *testing.T) {
	tests := []struct {
		name string
		leaf func(float64) *cmath.Func
		bad  []float64
		good []float64
	}{
		{"sqrt", cmath.Sqrt, []float64{-1e-9, -4}, []float64{0, 4}},
		{"cbrt", cmath.Cbrt, []float64{-1}, []float64{0, 8}},
		{"overThirdRoot", cmath.OverThirdRoot, []float64{0, -1}, []float64{8}},
		{"ln", cmath.Log, []float64{0, -1}, []float64{1e-300, 1}},
		{"log10", cmath.Log10, []float64{0}, []float64{10}},
		{"asin", cmath.Asin, []float64{-1.01, 1.01}, []float64{-1, 0, 1}},
		{"acos", cmath.Acos, []float64{2}, []float64{0.5}},
		{"pow 0.5", func(x float64) *cmath.Func { return cmath.Pow(x, 0.5) }, []float64{0, -1}, []float64{0.1}},
		{"pow 3.5", func(x float64) *cmath.Func { return cmath.Pow(x, 3.5) }, []float64{-1}, []float64{0, 2}},
		{"pow -1", func(x float64) *cmath.Func { return cmath.Pow(x, -1) }, []float64{0}, []float64{-2, 2}},
		{"pow 2", func(x float64) *cmath.Func { return cmath.Pow(x, 2) }, nil, []float64{-3, 0, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, x := range tt.bad {
				f := tt.leaf(x)
				assert.ErrorIs(t, f.Err(), fung.ErrOutOfDomain, "x=%g", x)
			}
			for _, x := range tt.good {
				assert.NoError(t, tt.leaf(x).Err(), "x=%g", x)
			}
		})
	}
}

func TestFunc_UpdateKeepsStateOnError(t *testing.T) {
	f := cmath.Log(2)
	err := f.Update(fung.Scalar(-3))

	var de *fung.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "ln", de.Func)
	assert.Equal(t, -3.0, de.Arg)
	assert.Equal(t, 2.0, f.X())
	assert.InDelta(t, math.Ln2, scalar(t, f.Value()), 1e-15)

	assert.ErrorIs(t, f.Update(fung.Eye(2)), fung.ErrShape)
	assert.Equal(t, 2.0, f.X())
}

func TestFunc_SetDomainChecks(t *testing.T) {
	f := cmath.Log(2)
	f.SetDomainChecks(false)
	require.NoError(t, f.Update(fung.Scalar(-1)))
	assert.True(t, math.IsNaN(scalar(t, f.Value())))
}

func TestFunc_String(t *testing.T) {
	assert.Equal(t, "sin(x)", cmath.Sin(0).String())
	assert.Equal(t, "x^2.5", cmath.Pow(1, 2.5).String())
	assert.Equal(t, "1/cbrt(x)", cmath.OverThirdRoot(1).String())
	assert.Equal(t, "ln(x0)", cmath.LogOf(fung.Var(0, fung.Scalar(1))).String())
}

// ============================================================
// Min and max
// ============================================================

func TestSelector(t *testing.T) {
	build := func(sel func(f, g fung.Node) *cmath.Selector) *fung.Function {
		fn, err := fung.Finalize(sel(
			cmath.SinOf(fung.Var(0, fung.Scalar(1))),
			cmath.CosOf(fung.Var(0, fung.Scalar(1))),
		))
		require.NoError(t, err)
		return fn
	}

	fn := build(cmath.Max)
	assert.InDelta(t, math.Sin(1), scalar(t, fn.Value()), 1e-15)
	assert.InDelta(t, math.Cos(1), scalar(t, fn.D1(one)), 1e-15)

	require.NoError(t, fn.UpdateVariable(0, fung.Scalar(0.2)))
	assert.InDelta(t, math.Cos(0.2), scalar(t, fn.Value()), 1e-15)
	assert.InDelta(t, -math.Sin(0.2), scalar(t, fn.D1(one)), 1e-15)
	assert.InDelta(t, -math.Cos(0.2), scalar(t, fn.D2(one, one)), 1e-15)

	m := build(cmath.Min)
	require.NoError(t, m.UpdateVariable(0, fung.Scalar(0.2)))
	assert.InDelta(t, math.Sin(0.2), scalar(t, m.Value()), 1e-15)
	assert.Equal(t, "min(sin(x0), cos(x0))", m.String())
}

func TestSelector_RollbackPicksAgain(t *testing.T) {
	fn, err := fung.Finalize(fung.Add(
		cmath.Max(cmath.SinOf(fung.Var(0, fung.Scalar(1))), cmath.CosOf(fung.Var(0, fung.Scalar(1)))),
		cmath.LogOf(fung.Var(0, fung.Scalar(1))),
	))
	require.NoError(t, err)
	assert.InDelta(t, math.Cos(1)+1, scalar(t, fn.D1(one)), 1e-15)

	// At -1 the maximum switches to cos before the logarithm fails.
	assert.ErrorIs(t, fn.UpdateVariable(0, fung.Scalar(-1)), fung.ErrOutOfDomain)
	assert.InDelta(t, math.Sin(1), scalar(t, fn.Value()), 1e-15)
	assert.InDelta(t, math.Cos(1)+1, scalar(t, fn.D1(one)), 1e-15)
}

func TestFunc_SetDomainChecksClearsInitialViolation(t *testing.T) {
	f := cmath.Log(-1)
	assert.ErrorIs(t, f.Err(), fung.ErrOutOfDomain)
	f.SetDomainChecks(false)
	assert.NoError(t, f.Err())
	assert.True(t, math.IsNaN(scalar(t, f.Value())))
}

func TestSelector_PresenceNeedsBoth(t *testing.T) {
	x := fung.Var(0, fung.Scalar(3))
	s := cmath.Min(x, fung.Const(fung.Scalar(1)))
	assert.False(t, fung.Has(s, 0))
	assert.Equal(t, fung.Scalar(1), s.Value())
}
