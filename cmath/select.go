package cmath

import (
	fung "github.com/njchilds90/gofung"
)

// Selector is min(f, g) or max(f, g) of two scalar nodes. Value and
// derivatives are those of the operand selected at the current point, so a
// derivative is only defined if both operands define it.
type Selector struct {
	f, g   fung.Node
	isMax  bool
	pickF  bool
	render string
}

// Min returns min(f, g).
func Min(f, g fung.Node) *Selector { return newSelector(f, g, false) }

// Max returns max(f, g).
func Max(f, g fung.Node) *Selector { return newSelector(f, g, true) }

func newSelector(f, g fung.Node, isMax bool) *Selector {
	s := &Selector{f: f, g: g, isMax: isMax, render: "min"}
	if isMax {
		s.render = "max"
	}
	s.pick()
	return s
}

func (s *Selector) pick() {
	a, b := scalarOf(s.f), scalarOf(s.g)
	if s.isMax {
		s.pickF = a > b
	} else {
		s.pickF = a < b
	}
}

func (s *Selector) chosen() fung.Node {
	if s.pickF {
		return s.f
	}
	return s.g
}

func (s *Selector) Value() fung.Value     { return s.chosen().Value() }
func (s *Selector) Operands() []fung.Node { return []fung.Node{s.f, s.g} }
func (s *Selector) Refresh()              { s.pick() }

func (s *Selector) String() string {
	return s.render + "(" + stringOf(s.f) + ", " + stringOf(s.g) + ")"
}

func (s *Selector) Update(x fung.Value) error {
	for _, n := range []fung.Node{s.f, s.g} {
		if u, ok := n.(fung.Updater); ok {
			if err := u.Update(x); err != nil {
				return err
			}
		}
	}
	s.pick()
	return nil
}

func (s *Selector) UpdateVariable(id fung.VarID, x fung.Value) error {
	for _, n := range []fung.Node{s.f, s.g} {
		if u, ok := n.(fung.VariableUpdater); ok {
			if err := u.UpdateVariable(id, x); err != nil {
				return err
			}
		}
	}
	s.pick()
	return nil
}

func (s *Selector) Defines(ids ...fung.VarID) bool {
	return fung.Has(s.f, ids...) && fung.Has(s.g, ids...)
}

func (s *Selector) D1(dx fung.Direction) fung.Value {
	if n := s.chosen(); fung.Has(n, dx.ID) {
		return n.(fung.FirstDerivative).D1(dx)
	}
	return fung.Scalar(0)
}

func (s *Selector) D2(dx, dy fung.Direction) fung.Value {
	if n := s.chosen(); fung.Has(n, dx.ID, dy.ID) {
		return n.(fung.SecondDerivative).D2(dx, dy)
	}
	return fung.Scalar(0)
}

func (s *Selector) D3(dx, dy, dz fung.Direction) fung.Value {
	if n := s.chosen(); fung.Has(n, dx.ID, dy.ID, dz.ID) {
		return n.(fung.ThirdDerivative).D3(dx, dy, dz)
	}
	return fung.Scalar(0)
}

func scalarOf(n fung.Node) float64 {
	x, err := fung.AsScalar("select", n.Value())
	if err != nil {
		panic(err)
	}
	return x
}

func stringOf(n fung.Node) string {
	if s, ok := n.(interface{ String() string }); ok {
		return s.String()
	}
	return n.Value().String()
}
