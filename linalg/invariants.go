package linalg

import (
	fung "github.com/njchilds90/gofung"
	"github.com/njchilds90/gofung/cmath"
)

// The invariants below are compositions of the leaves in this package. All
// of them are functions of the un-indexed argument A and follow Update.

// FirstInvariant is i1(A) = tr(A).
func FirstInvariant(a fung.Matrix) *TraceLeaf { return Trace(a) }

// ShiftedFirstInvariant is i1(A) − offset.
func ShiftedFirstInvariant(a fung.Matrix, offset float64) *fung.Sum {
	return shifted(Trace(a), offset)
}

// ShiftedSecondInvariant is i2(A) − offset.
func ShiftedSecondInvariant(a fung.Matrix, offset float64) *fung.Sum {
	return shifted(SecondInvariant(a), offset)
}

// ModifiedFirstInvariant is i1(A)·det(A)^(-1/n) for n×n matrices A.
func ModifiedFirstInvariant(a fung.Matrix) *fung.Product {
	return fung.Mul(Trace(a), detPow(a, -1))
}

// ModifiedSecondInvariant is i2(A)·det(A)^(-2/n).
func ModifiedSecondInvariant(a fung.Matrix) *fung.Product {
	return fung.Mul(SecondInvariant(a), detPow(a, -2))
}

// ShiftedModifiedFirstInvariant is mi1(A) − offset.
func ShiftedModifiedFirstInvariant(a fung.Matrix, offset float64) *fung.Sum {
	return shifted(ModifiedFirstInvariant(a), offset)
}

// ShiftedModifiedSecondInvariant is mi2(A) − offset.
func ShiftedModifiedSecondInvariant(a fung.Matrix, offset float64) *fung.Sum {
	return shifted(ModifiedSecondInvariant(a), offset)
}

// ============================================================
// Mixed invariants with a structural tensor M
// ============================================================

// I4 is tr(A·M).
func I4(a, m fung.Matrix) *fung.Chain {
	return TraceOf(fung.Mul(fung.Ident(a), fung.Const(m)))
}

// I5 is tr(A²·M).
func I5(a, m fung.Matrix) *fung.Chain {
	return TraceOf(fung.Mul(fung.Mul(fung.Ident(a), fung.Ident(a)), fung.Const(m)))
}

// I6 is tr(M²·A).
func I6(a, m fung.Matrix) *fung.Chain {
	return TraceOf(fung.Mul(fung.Const(m.Mul(m)), fung.Ident(a)))
}

// MI4 is i4(A, M)·det(A)^(-1/n).
func MI4(a, m fung.Matrix) *fung.Product { return fung.Mul(I4(a, m), detPow(a, -1)) }

// MI5 is i5(A, M)·det(A)^(-2/n).
func MI5(a, m fung.Matrix) *fung.Product { return fung.Mul(I5(a, m), detPow(a, -2)) }

// MI6 is i6(A, M)·det(A)^(-1/n).
func MI6(a, m fung.Matrix) *fung.Product { return fung.Mul(I6(a, m), detPow(a, -1)) }

// ============================================================
// Deviatoric quantities
// ============================================================

// FrobeniusSquared is A:A, the squared Frobenius norm.
func FrobeniusSquared(a fung.Matrix) *fung.Product { return fung.Dot(fung.Ident(a), fung.Ident(a)) }

// J2 is dev(A):dev(A).
func J2(a fung.Matrix) *fung.Product { return fung.Dot(Deviator(a), Deviator(a)) }

func shifted(f fung.Node, offset float64) *fung.Sum {
	return fung.Sub(f, fung.Const(fung.Scalar(offset)))
}

// detPow is det(A)^(k/n). Three-dimensional arguments use the dedicated
// cube-root leaves.
func detPow(a fung.Matrix, k int) fung.Node {
	n, _ := a.Dims()
	switch {
	case n == 3 && k == -1:
		return cmath.OverThirdRootOf(Det(a))
	case n == 3 && k == -2:
		return cmath.OverThirdRootSquaredOf(Det(a))
	}
	return cmath.PowOf(Det(a), float64(k)/float64(n))
}
