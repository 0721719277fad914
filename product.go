package fung

// ============================================================
// Product: f·g and f:g
// ============================================================

// Product is f·g, or the inner product f:g when built with Dot. Derivatives
// follow the general Leibniz rule; a summand is kept only if both of its
// factors are present. f stays on the left of every product, so the
// expansion is valid for matrix products as well.
type Product struct {
	f, g  Node
	mul   func(a, b Value) Value
	op    string
	value Value
}

// Mul returns f·g.
func Mul(f, g Node) *Product {
	mustOperands("mul", f, g)
	p := &Product{f: f, g: g, mul: mul, op: "*"}
	p.Refresh()
	return p
}

// Dot returns the inner product f:g of two scalar or two matrix valued nodes.
func Dot(f, g Node) *Product {
	mustOperands("dot", f, g)
	p := &Product{f: f, g: g, mul: Inner, op: ":"}
	p.Refresh()
	return p
}

// MulOf multiplies any number of nodes from left to right. The empty product
// is the scalar constant 1.
func MulOf(nodes ...Node) Node {
	if len(nodes) == 0 {
		return Const(Scalar(1))
	}
	acc := nodes[0]
	for _, n := range nodes[1:] {
		acc = Mul(acc, n)
	}
	return acc
}

func (p *Product) Refresh() { p.value = p.mul(p.f.Value(), p.g.Value()) }

func (p *Product) Value() Value     { return p.value }
func (p *Product) Operands() []Node { return []Node{p.f, p.g} }
func (p *Product) String() string   { return render(p.f) + p.op + render(p.g) }

func (p *Product) Update(x Value) error {
	if err := update(p.f, x); err != nil {
		return err
	}
	if err := update(p.g, x); err != nil {
		return err
	}
	p.Refresh()
	return nil
}

func (p *Product) UpdateVariable(id VarID, x Value) error {
	if err := updateVariable(p.f, id, x); err != nil {
		return err
	}
	if err := updateVariable(p.g, id, x); err != nil {
		return err
	}
	p.Refresh()
	return nil
}

// expand splits the directions between f and g in every possible way: 2
// terms at order one, 4 at order two and 8 at order three. Each direction
// keeps its relative position within the factor it is assigned to.
func (p *Product) expand(r rule, dirs []Direction) term {
	return r.leibniz(p.f, p.g, dirs, p.mul)
}

func (r rule) leibniz(f, g Node, dirs []Direction, mul func(a, b Value) Value) term {
	n := len(dirs)
	terms := make([]term, 0, 1<<n)
	for mask := 0; mask < 1<<n; mask++ {
		var fd, gd []Direction
		for i, dx := range dirs {
			if mask&(1<<i) != 0 {
				fd = append(fd, dx)
			} else {
				gd = append(gd, dx)
			}
		}
		terms = append(terms, r.times(r.d(f, fd...), r.d(g, gd...), mul))
	}
	return r.sum(terms...)
}

func (p *Product) Defines(ids ...VarID) bool     { return defines(p, ids) }
func (p *Product) D1(dx Direction) Value         { return derive(p, dx) }
func (p *Product) D2(dx, dy Direction) Value     { return derive(p, dx, dy) }
func (p *Product) D3(dx, dy, dz Direction) Value { return derive(p, dx, dy, dz) }

// ============================================================
// Squared: f²
// ============================================================

// Squared is f·f with f updated once per call. The product rule keeps the
// left factor on the left, so matrix valued f is supported as well.
type Squared struct {
	f     Node
	value Value
}

// Square returns f².
func Square(f Node) *Squared {
	mustOperands("square", f)
	s := &Squared{f: f}
	s.Refresh()
	return s
}

func (s *Squared) Refresh() { v := s.f.Value(); s.value = v.Mul(v) }

func (s *Squared) Value() Value     { return s.value }
func (s *Squared) Operands() []Node { return []Node{s.f} }
func (s *Squared) String() string   { return "(" + render(s.f) + ")^2" }

func (s *Squared) Update(x Value) error {
	if err := update(s.f, x); err != nil {
		return err
	}
	s.Refresh()
	return nil
}

func (s *Squared) UpdateVariable(id VarID, x Value) error {
	if err := updateVariable(s.f, id, x); err != nil {
		return err
	}
	s.Refresh()
	return nil
}

func (s *Squared) expand(r rule, dirs []Direction) term {
	return r.leibniz(s.f, s.f, dirs, mul)
}

func (s *Squared) Defines(ids ...VarID) bool     { return defines(s, ids) }
func (s *Squared) D1(dx Direction) Value         { return derive(s, dx) }
func (s *Squared) D2(dx, dy Direction) Value     { return derive(s, dx, dy) }
func (s *Squared) D3(dx, dy, dz Direction) Value { return derive(s, dx, dy, dz) }
