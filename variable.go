package fung

import "strconv"

// ============================================================
// Constant
// ============================================================

// Constant has a value and no derivatives.
type Constant struct{ v Value }

func Const(v Value) *Constant { return &Constant{v: v} }

func (c *Constant) Value() Value   { return c.v }
func (c *Constant) String() string { return c.v.String() }

// ============================================================
// Variable
// ============================================================

// Variable is an independent variable tagged by id. Its first derivative
// along a direction for the same id is the direction's perturbation; all
// other derivatives vanish and are reported absent.
type Variable struct {
	id VarID
	v  Value
}

func Var(id VarID, v Value) *Variable { return &Variable{id: id, v: v} }

func (x *Variable) ID() VarID      { return x.id }
func (x *Variable) Value() Value   { return x.v }
func (x *Variable) String() string { return "x" + strconv.Itoa(int(x.id)) }

func (x *Variable) Snapshot() func() {
	v := x.v
	return func() { x.v = v }
}

// UpdateVariable ignores ids other than its own.
func (x *Variable) UpdateVariable(id VarID, v Value) error {
	if id != x.id {
		return nil
	}
	if !SameShape(x.v, v) {
		return &ShapeError{Op: "update " + x.String(), Want: shapeOf(x.v), Got: shapeOf(v)}
	}
	x.v = v
	return nil
}

func (x *Variable) Defines(ids ...VarID) bool { return len(ids) == 1 && ids[0] == x.id }

func (x *Variable) D1(dx Direction) Value {
	if dx.ID != x.id {
		return x.v.Zero()
	}
	return dx.Delta
}

// ============================================================
// Identity
// ============================================================

// Identity returns its argument. Unlike a Variable it follows un-indexed
// updates and its first derivative applies to every direction.
type Identity struct{ v Value }

func Ident(v Value) *Identity { return &Identity{v: v} }

func (i *Identity) Value() Value            { return i.v }
func (i *Identity) D1(dx Direction) Value   { return dx.Delta }
func (i *Identity) String() string          { return "x" }
func (i *Identity) Apply(arg string) string { return arg }

func (i *Identity) Snapshot() func() {
	v := i.v
	return func() { i.v = v }
}

func (i *Identity) Update(x Value) error {
	if i.v != nil && !SameShape(i.v, x) {
		return &ShapeError{Op: "update identity", Want: shapeOf(i.v), Got: shapeOf(x)}
	}
	i.v = x
	return nil
}
