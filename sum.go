package fung

// ============================================================
// Sum: f + g
// ============================================================

// Sum is f + g. A derivative is present if it is present for either side.
type Sum struct {
	f, g  Node
	value Value
}

// Add returns f + g evaluated at the current points of f and g.
func Add(f, g Node) *Sum {
	mustOperands("add", f, g)
	s := &Sum{f: f, g: g}
	s.Refresh()
	return s
}

// Sub returns f - g.
func Sub(f, g Node) *Sum { return Add(f, Scale(-1, g)) }

// AddOf sums any number of nodes from left to right. The empty sum is the
// scalar constant 0.
func AddOf(nodes ...Node) Node {
	if len(nodes) == 0 {
		return Const(Scalar(0))
	}
	acc := nodes[0]
	for _, n := range nodes[1:] {
		acc = Add(acc, n)
	}
	return acc
}

func (s *Sum) Refresh() { s.value = s.f.Value().Add(s.g.Value()) }

func (s *Sum) Value() Value     { return s.value }
func (s *Sum) Operands() []Node { return []Node{s.f, s.g} }
func (s *Sum) String() string   { return "(" + render(s.f) + " + " + render(s.g) + ")" }

func (s *Sum) Update(x Value) error {
	if err := update(s.f, x); err != nil {
		return err
	}
	if err := update(s.g, x); err != nil {
		return err
	}
	s.Refresh()
	return nil
}

func (s *Sum) UpdateVariable(id VarID, x Value) error {
	if err := updateVariable(s.f, id, x); err != nil {
		return err
	}
	if err := updateVariable(s.g, id, x); err != nil {
		return err
	}
	s.Refresh()
	return nil
}

func (s *Sum) expand(r rule, dirs []Direction) term {
	return r.sum(r.d(s.f, dirs...), r.d(s.g, dirs...))
}

func (s *Sum) Defines(ids ...VarID) bool     { return defines(s, ids) }
func (s *Sum) D1(dx Direction) Value         { return derive(s, dx) }
func (s *Sum) D2(dx, dy Direction) Value     { return derive(s, dx, dy) }
func (s *Sum) D3(dx, dy, dz Direction) Value { return derive(s, dx, dy, dz) }

// ============================================================
// Scaled: a·f
// ============================================================

// Scaled is a·f for a constant a. Presence mirrors f.
type Scaled struct {
	a     float64
	f     Node
	value Value
}

// Scale returns a·f.
func Scale(a float64, f Node) *Scaled {
	mustOperands("scale", f)
	s := &Scaled{a: a, f: f}
	s.Refresh()
	return s
}

func (s *Scaled) Refresh() { s.value = s.f.Value().Scale(s.a) }

func (s *Scaled) Factor() float64  { return s.a }
func (s *Scaled) Value() Value     { return s.value }
func (s *Scaled) Operands() []Node { return []Node{s.f} }
func (s *Scaled) String() string   { return Scalar(s.a).String() + "*" + render(s.f) }

func (s *Scaled) Update(x Value) error {
	if err := update(s.f, x); err != nil {
		return err
	}
	s.Refresh()
	return nil
}

func (s *Scaled) UpdateVariable(id VarID, x Value) error {
	if err := updateVariable(s.f, id, x); err != nil {
		return err
	}
	s.Refresh()
	return nil
}

func (s *Scaled) expand(r rule, dirs []Direction) term { return r.scale(s.a, r.d(s.f, dirs...)) }

func (s *Scaled) Defines(ids ...VarID) bool     { return defines(s, ids) }
func (s *Scaled) D1(dx Direction) Value         { return derive(s, dx) }
func (s *Scaled) D2(dx, dy Direction) Value     { return derive(s, dx, dy) }
func (s *Scaled) D3(dx, dy, dz Direction) Value { return derive(s, dx, dy, dz) }

func mustOperands(op string, nodes ...Node) {
	for _, n := range nodes {
		if n == nil {
			panic("fung: " + op + ": nil operand")
		}
	}
}
