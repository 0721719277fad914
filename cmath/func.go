// Package cmath provides the elementary functions of one real argument as
// leaves for fung expressions: powers and roots, exponentials and
// logarithms, trigonometric functions, their inverses and the error
// function. Each leaf carries its value and first three derivatives in
// closed form.
package cmath

import (
	fung "github.com/njchilds90/gofung"
)

// Func is an elementary function of one scalar argument.
//
// A Func defines derivatives up to its order; a polynomial of degree two,
// for instance, has no third derivative. Domain violations are reported by
// Update and leave the function at its previous point. Err reports a
// domain violation at the initial point given to the constructor.
type Func struct {
	name   string
	order  int
	render func(arg string) string
	eval   func(x float64) [4]float64
	domain func(x float64) error
	checks bool
	x      float64
	d      [4]float64
	err    error
}

func newFunc(name string, order int, x float64, eval func(float64) [4]float64, domain func(float64) error, render func(string) string) *Func {
	f := &Func{name: name, order: order, eval: eval, domain: domain, render: render, checks: true}
	if err := f.check(x); err != nil {
		f.err = err
	}
	f.x, f.d = x, eval(x)
	return f
}

func (f *Func) check(x float64) error {
	if !f.checks || f.domain == nil {
		return nil
	}
	return f.domain(x)
}

func (f *Func) Name() string            { return f.name }
func (f *Func) Order() int              { return f.order }
func (f *Func) X() float64              { return f.x }
func (f *Func) Err() error              { return f.err }
func (f *Func) Value() fung.Value       { return fung.Scalar(f.d[0]) }
func (f *Func) Apply(arg string) string { return f.render(arg) }
func (f *Func) String() string          { return f.render("x") }

// SetDomainChecks turns argument validation on or off. Turning it off also
// drops a violation recorded at the initial point.
func (f *Func) SetDomainChecks(on bool) {
	f.checks = on
	if !on {
		f.err = nil
	}
}

func (f *Func) Snapshot() func() {
	x, d := f.x, f.d
	return func() { f.x, f.d = x, d }
}

// Update moves f to x, which must be a scalar.
func (f *Func) Update(v fung.Value) error {
	x, err := fung.AsScalar(f.name, v)
	if err != nil {
		return err
	}
	if err := f.check(x); err != nil {
		return err
	}
	f.x, f.d = x, f.eval(x)
	return nil
}

// Defines reports presence by order only; the argument is not tagged.
func (f *Func) Defines(ids ...fung.VarID) bool { return len(ids) <= f.order }

func (f *Func) D1(dx fung.Direction) fung.Value {
	return fung.Scalar(f.d[1] * f.scalar(dx))
}

func (f *Func) D2(dx, dy fung.Direction) fung.Value {
	return fung.Scalar(f.d[2] * f.scalar(dx) * f.scalar(dy))
}

func (f *Func) D3(dx, dy, dz fung.Direction) fung.Value {
	return fung.Scalar(f.d[3] * f.scalar(dx) * f.scalar(dy) * f.scalar(dz))
}

func (f *Func) scalar(dx fung.Direction) float64 {
	s, err := fung.AsScalar(f.name+" direction", dx.Delta)
	if err != nil {
		panic(err)
	}
	return s
}

func outside(name, rng string, x float64) error {
	return &fung.DomainError{Func: name, Range: rng, Arg: x}
}
