// Package models assembles stored energy functions of hyperelastic
// materials, a yield surface and a nonlinear heat model from the building
// blocks of fung, cmath and linalg.
//
// Material laws are functions of the deformation gradient F, passed as the
// un-indexed argument of the returned function: call Update with a new F
// and D1, D2, D3 with perturbations of F. The direction ids are ignored.
package models

import (
	fung "github.com/njchilds90/gofung"
	"github.com/njchilds90/gofung/cmath"
	"github.com/njchilds90/gofung/linalg"
)

// Penalty selects the volumetric penalty of compressible laws.
type Penalty int

const (
	// QuadAndLog penalizes inflation with det² and compression with ln det.
	QuadAndLog Penalty = iota
	// HartmannNeff uses det⁵ and det⁻⁵.
	HartmannNeff
)

func (p Penalty) String() string {
	if p == HartmannNeff {
		return "hartmann-neff"
	}
	return "quad-and-log"
}

// VolumetricPenalty is (d0·Γ_inflation + d1·Γ_compression)(det F) shifted to
// vanish at the initial F.
func VolumetricPenalty(p Penalty, d0, d1 float64, f fung.Matrix) *fung.Sum {
	var inflation, compression fung.Node
	switch p {
	case HartmannNeff:
		inflation, compression = cmath.Pow(1, 5), cmath.Pow(1, -5)
	default:
		inflation, compression = cmath.Pow(1, 2), cmath.Log(1)
	}
	g := fung.Compose(fung.Add(fung.Scale(d0, inflation), fung.Scale(d1, compression)), linalg.Det(f))
	return fung.Sub(g, fung.Const(g.Value()))
}

// ============================================================
// Rubber
// ============================================================

// IncompressibleNeoHooke is c·(tr(FᵀF) − n).
func IncompressibleNeoHooke(c float64, f fung.Matrix) (*fung.Function, error) {
	return fung.Finalize(neoHooke(c, f, linalg.ShiftedFirstInvariant))
}

// ModifiedIncompressibleNeoHooke is c·(mi1(FᵀF) − n).
func ModifiedIncompressibleNeoHooke(c float64, f fung.Matrix) (*fung.Function, error) {
	return fung.Finalize(neoHooke(c, f, linalg.ShiftedModifiedFirstInvariant))
}

// CompressibleNeoHooke adds a volumetric penalty to the neo-Hooke law.
func CompressibleNeoHooke(c, d0, d1 float64, p Penalty, f fung.Matrix) (*fung.Function, error) {
	return fung.Finalize(fung.Add(neoHooke(c, f, linalg.ShiftedFirstInvariant), VolumetricPenalty(p, d0, d1, f)))
}

// ModifiedCompressibleNeoHooke adds a volumetric penalty to the modified
// neo-Hooke law.
func ModifiedCompressibleNeoHooke(c, d0, d1 float64, p Penalty, f fung.Matrix) (*fung.Function, error) {
	return fung.Finalize(fung.Add(neoHooke(c, f, linalg.ShiftedModifiedFirstInvariant), VolumetricPenalty(p, d0, d1, f)))
}

func neoHooke(c float64, f fung.Matrix, inv func(fung.Matrix, float64) *fung.Sum) *fung.Chain {
	s := linalg.Strain(f)
	return fung.Compose(fung.Scale(c, inv(strain(s), dim(f))), s)
}

// IncompressibleMooneyRivlin is c0·(i1 − n) + c1·(i2 − n) of FᵀF.
func IncompressibleMooneyRivlin(c0, c1 float64, f fung.Matrix) (*fung.Function, error) {
	return fung.Finalize(mooneyRivlin(c0, c1, f))
}

// CompressibleMooneyRivlin adds a volumetric penalty to the Mooney-Rivlin law.
func CompressibleMooneyRivlin(c0, c1, d0, d1 float64, p Penalty, f fung.Matrix) (*fung.Function, error) {
	return fung.Finalize(fung.Add(mooneyRivlin(c0, c1, f), VolumetricPenalty(p, d0, d1, f)))
}

func mooneyRivlin(c0, c1 float64, f fung.Matrix) *fung.Chain {
	s := linalg.Strain(f)
	c, n := strain(s), dim(f)
	return fung.Compose(fung.Add(
		fung.Scale(c0, linalg.ShiftedFirstInvariant(c, n)),
		fung.Scale(c1, linalg.ShiftedSecondInvariant(c, n)),
	), s)
}

// ============================================================
// Biomechanics
// ============================================================

// Default parameters of the soft tissue laws.
const (
	SkinC0 = 9.4
	SkinC1 = 82.0

	MuscleC      = 0.387
	MuscleB      = 23.46
	MuscleFiberA = 0.584
	MuscleFiberB = 12.43

	AdiposeCells = 0.15
	AdiposeK1    = 0.8
	AdiposeK2    = 47.3
	AdiposeKappa = 0.09
)

// IncompressibleSkin is the skin model of Hendriks,
// c0·si1 + c1·si1·si2 with si_k = i_k(FᵀF) − n.
func IncompressibleSkin(c0, c1 float64, f fung.Matrix) (*fung.Function, error) {
	return fung.Finalize(skin(c0, c1, f))
}

// CompressibleSkin adds a volumetric penalty to the skin model.
func CompressibleSkin(c0, c1, d0, d1 float64, p Penalty, f fung.Matrix) (*fung.Function, error) {
	return fung.Finalize(fung.Add(skin(c0, c1, f), VolumetricPenalty(p, d0, d1, f)))
}

func skin(c0, c1 float64, f fung.Matrix) *fung.Chain {
	s := linalg.Strain(f)
	c, n := strain(s), dim(f)
	return fung.Compose(fung.Add(
		fung.Scale(c0, linalg.ShiftedFirstInvariant(c, n)),
		fung.Scale(c1, fung.Mul(linalg.ShiftedFirstInvariant(c, n), linalg.ShiftedSecondInvariant(c, n))),
	), s)
}

// IncompressibleMuscle is the muscle model of Martins,
// c·(exp(b·(mi1 − n)) − 1) + A·(exp(a·(mi6 − 1)²) − 1) of FᵀF with fiber
// tensor M.
func IncompressibleMuscle(c, b, A, a float64, m, f fung.Matrix) (*fung.Function, error) {
	return fung.Finalize(muscle(c, b, A, a, m, f))
}

// CompressibleMuscle adds a volumetric penalty to the muscle model.
func CompressibleMuscle(c, b, A, a, d0, d1 float64, p Penalty, m, f fung.Matrix) (*fung.Function, error) {
	return fung.Finalize(fung.Add(muscle(c, b, A, a, m, f), VolumetricPenalty(p, d0, d1, f)))
}

func muscle(c, b, A, a float64, m, f fung.Matrix) *fung.Chain {
	s := linalg.Strain(f)
	cg, n := strain(s), dim(f)
	si1 := linalg.ShiftedModifiedFirstInvariant(cg, n)
	si6 := fung.Sub(linalg.MI6(cg, m), one())
	return fung.Compose(fung.Add(
		fung.Scale(c, fung.Sub(cmath.ExpOf(fung.Scale(b, si1)), one())),
		fung.Scale(A, fung.Sub(cmath.ExpOf(fung.Scale(a, fung.Square(si6))), one())),
	), s)
}

// IncompressibleAdipose is the adipose tissue model of Sommer and
// Holzapfel, cCells·(i1 − n) + k1/k2·(exp(k2·aniso²) − 1) with
// aniso = κ·i1 + (1 − 3κ)·i4 − 1, of FᵀF with fiber tensor M.
func IncompressibleAdipose(cCells, k1, k2, kappa float64, m, f fung.Matrix) (*fung.Function, error) {
	return fung.Finalize(adipose(cCells, k1, k2, kappa, m, f))
}

// CompressibleAdipose adds a volumetric penalty to the adipose tissue model.
func CompressibleAdipose(cCells, k1, k2, kappa, d0, d1 float64, p Penalty, m, f fung.Matrix) (*fung.Function, error) {
	return fung.Finalize(fung.Add(adipose(cCells, k1, k2, kappa, m, f), VolumetricPenalty(p, d0, d1, f)))
}

func adipose(cCells, k1, k2, kappa float64, m, f fung.Matrix) *fung.Chain {
	s := linalg.Strain(f)
	c, n := strain(s), dim(f)
	aniso := fung.Sub(fung.Add(
		fung.Scale(kappa, linalg.FirstInvariant(c)),
		fung.Scale(1-3*kappa, linalg.I4(c, m)),
	), one())
	return fung.Compose(fung.Add(
		fung.Scale(cCells, linalg.ShiftedFirstInvariant(c, n)),
		fung.Scale(k1/k2, fung.Sub(cmath.ExpOf(fung.Scale(k2, fung.Square(aniso))), one())),
	), s)
}

// ============================================================
// Plasticity and heat
// ============================================================

// YieldSurface is β/n·i1(σ) + j2(σ) − offset for a stress tensor σ.
func YieldSurface(beta, offset float64, sigma fung.Matrix) (*fung.Function, error) {
	f := fung.Sub(fung.Add(
		fung.Scale(beta/dim(sigma), linalg.FirstInvariant(sigma)),
		linalg.J2(sigma),
	), fung.Const(fung.Scalar(offset)))
	return fung.Finalize(f)
}

// Variable ids of the heat model.
const (
	HeatU  fung.VarID = 0
	HeatDU fung.VarID = 1
)

// NonlinearHeat is (c + d·u²)·∇u with the scalar u tagged HeatU and the
// column vector ∇u tagged HeatDU.
func NonlinearHeat(c, d, u float64, du fung.Matrix) (*fung.Function, error) {
	f := fung.Mul(
		fung.Add(fung.Const(fung.Scalar(c)), fung.Scale(d, fung.Square(fung.Var(HeatU, fung.Scalar(u))))),
		fung.Var(HeatDU, du),
	)
	return fung.Finalize(f)
}

func strain(s *linalg.CauchyGreenLeaf) fung.Matrix { return s.Value().(fung.Matrix) }

func dim(f fung.Matrix) float64 { _, c := f.Dims(); return float64(c) }

func one() *fung.Constant { return fung.Const(fung.Scalar(1)) }
