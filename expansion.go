package fung

// term is one summand of a derivative expansion. A term that is not ok is
// structurally absent: it is dropped from sums and annihilates products.
type term struct {
	v  Value
	ok bool
}

func some(v Value) term { return term{v: v, ok: true} }

func (t term) or(zero Value) Value {
	if t.ok && t.v != nil {
		return t.v
	}
	return zero
}

// rule drives an expansion. The track rule only follows presence and never
// touches values; the evaluate rule computes them. Combinators describe each
// derivative once and run it under either rule.
type rule struct{ eval bool }

var (
	track    = rule{}
	evaluate = rule{eval: true}
)

var present = term{ok: true}

func (r rule) value(n Node) term {
	if !r.eval {
		return present
	}
	return some(n.Value())
}

// d returns the derivative of n along dirs, len(dirs) being its order.
func (r rule) d(n Node, dirs ...Direction) term {
	ids := make([]VarID, len(dirs))
	for i, dx := range dirs {
		ids[i] = dx.ID
	}
	if !Has(n, ids...) {
		return term{}
	}
	if !r.eval {
		return present
	}
	switch len(dirs) {
	case 0:
		return some(n.Value())
	case 1:
		return some(n.(FirstDerivative).D1(dirs[0]))
	case 2:
		return some(n.(SecondDerivative).D2(dirs[0], dirs[1]))
	default:
		return some(n.(ThirdDerivative).D3(dirs[0], dirs[1], dirs[2]))
	}
}

// apply evaluates derivatives of an outer function along inner derivatives:
// the i-th direction keeps the id of dirs[i] and takes args[i] as its
// perturbation.
func (r rule) apply(f Node, dirs []Direction, args ...term) term {
	fd := make([]Direction, len(args))
	for i, a := range args {
		if !a.ok {
			return term{}
		}
		fd[i] = Direction{ID: dirs[i].ID, Delta: a.v}
	}
	return r.d(f, fd...)
}

func (r rule) times(a, b term, mul func(Value, Value) Value) term {
	if !a.ok || !b.ok {
		return term{}
	}
	if !r.eval {
		return present
	}
	return some(mul(a.v, b.v))
}

func (r rule) sum(ts ...term) term {
	var acc term
	for _, t := range ts {
		switch {
		case !t.ok:
		case !acc.ok:
			acc = t
		case r.eval:
			acc.v = acc.v.Add(t.v)
		}
	}
	return acc
}

func (r rule) scale(a float64, t term) term {
	if !t.ok || !r.eval {
		return t
	}
	return some(t.v.Scale(a))
}

func mul(a, b Value) Value { return a.Mul(b) }

// expander is implemented by every combinator.
type expander interface {
	Node
	expand(r rule, dirs []Direction) term
}

func defines(e expander, ids []VarID) bool {
	if len(ids) == 0 {
		return true
	}
	if len(ids) > 3 {
		return false
	}
	dirs := make([]Direction, len(ids))
	for i, id := range ids {
		dirs[i].ID = id
	}
	return e.expand(track, dirs).ok
}

func derive(e expander, dirs ...Direction) Value {
	return e.expand(evaluate, dirs).or(e.Value().Zero())
}
