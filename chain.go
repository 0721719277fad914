package fung

import (
	"errors"
	"fmt"
)

// ============================================================
// Chain: f∘g
// ============================================================

// Chain is the composition f(g). Every update reaches g first; f is then
// moved to the new value of g. Variables may only appear in g.
type Chain struct {
	f, g Node
	err  error
}

// Compose returns f∘g with f moved to the current value of g. A failure to
// do so, or an f that contains variables, is recorded and reported by Err
// and by Finalize.
func Compose(f, g Node) *Chain {
	mustOperands("compose", f, g)
	c := &Chain{f: f, g: g}
	if ContainsVariable(f) {
		c.err = &ConsistencyError{Reason: fmt.Sprintf("variables cannot appear in the outer function of %s", c)}
		return c
	}
	c.apply()
	return c
}

func (c *Chain) apply() {
	c.err = nil
	if err := update(c.f, c.g.Value()); err != nil {
		c.err = fmt.Errorf("compose %s: %w", c, err)
	}
}

// Refresh moves f to the current value of g. A recorded construction error
// other than a domain violation is kept.
func (c *Chain) Refresh() {
	if c.err == nil || errors.Is(c.err, ErrOutOfDomain) {
		c.apply()
	}
}

func (c *Chain) Err() error       { return c.err }
func (c *Chain) Value() Value     { return c.f.Value() }
func (c *Chain) Operands() []Node { return []Node{c.f, c.g} }

func (c *Chain) String() string {
	if a, ok := c.f.(Applier); ok {
		return a.Apply(render(c.g))
	}
	return render(c.f) + "(" + render(c.g) + ")"
}

func (c *Chain) Update(x Value) error {
	if err := update(c.g, x); err != nil {
		return err
	}
	return update(c.f, c.g.Value())
}

func (c *Chain) UpdateVariable(id VarID, x Value) error {
	if err := updateVariable(c.g, id, x); err != nil {
		return err
	}
	return update(c.f, c.g.Value())
}

// expand applies Faà di Bruno's formula. Every summand needs its own
// combination of derivatives of f and g and is dropped independently.
func (c *Chain) expand(r rule, dirs []Direction) term {
	f, g := c.f, c.g
	switch len(dirs) {
	case 0:
		return r.value(f)
	case 1:
		dx := dirs[0]
		return r.apply(f, dirs, r.d(g, dx))
	case 2:
		dx, dy := dirs[0], dirs[1]
		g1x, g1y := r.d(g, dx), r.d(g, dy)
		return r.sum(
			r.apply(f, dirs, g1x, g1y),
			r.apply(f, dirs, r.d(g, dx, dy)),
		)
	default:
		dx, dy, dz := dirs[0], dirs[1], dirs[2]
		g1x, g1y, g1z := r.d(g, dx), r.d(g, dy), r.d(g, dz)
		xz := []Direction{dx, dz}
		return r.sum(
			r.apply(f, dirs, g1x, g1y, g1z),
			r.apply(f, dirs, r.d(g, dx, dz), g1y),
			r.apply(f, dirs, g1x, r.d(g, dy, dz)),
			r.apply(f, xz, r.d(g, dx, dy), g1z),
			r.apply(f, dirs, r.d(g, dx, dy, dz)),
		)
	}
}

func (c *Chain) Defines(ids ...VarID) bool     { return defines(c, ids) }
func (c *Chain) D1(dx Direction) Value         { return derive(c, dx) }
func (c *Chain) D2(dx, dy Direction) Value     { return derive(c, dx, dy) }
func (c *Chain) D3(dx, dy, dz Direction) Value { return derive(c, dx, dy, dz) }
