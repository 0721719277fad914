package fung

// ============================================================
// Node protocol
// ============================================================

// VarID tags an independent variable. The same id may appear in several
// leaves of one expression; they all receive the same updates.
type VarID int

// Direction is one perturbation of a directional derivative. ID selects the
// variable for multi-variable expressions and is ignored by functions of a
// single argument.
type Direction struct {
	ID    VarID
	Delta Value
}

// Along returns the direction delta for variable id.
func Along(id VarID, delta Value) Direction { return Direction{ID: id, Delta: delta} }

// Node is anything bound to an evaluation point. Every other capability is
// an optional interface, checked with type assertions.
type Node interface {
	Value() Value
}

// Updater moves a node of a single argument to a new point.
type Updater interface {
	Update(x Value) error
}

// VariableUpdater moves every variable with the given id to a new point.
// Nodes ignore ids they do not contain.
type VariableUpdater interface {
	UpdateVariable(id VarID, x Value) error
}

type FirstDerivative interface {
	D1(dx Direction) Value
}

type SecondDerivative interface {
	D2(dx, dy Direction) Value
}

type ThirdDerivative interface {
	D3(dx, dy, dz Direction) Value
}

// Definer narrows presence for nodes whose derivative accessors do not apply
// to every variable or order, such as variables, combinators and
// polynomials of low degree.
type Definer interface {
	Defines(ids ...VarID) bool
}

// Composite exposes the operands of a combinator.
type Composite interface {
	Operands() []Node
}

// DomainChecker is implemented by leaves that validate their arguments.
type DomainChecker interface {
	SetDomainChecks(on bool)
}

// Snapshotter is implemented by leaves whose state an update changes. The
// returned function puts the leaf back into the state it had when Snapshot
// was called.
type Snapshotter interface {
	Snapshot() (restore func())
}

// Refresher is implemented by combinators that cache results of their
// operands. Refresh recomputes the cache from the operands' current state.
type Refresher interface {
	Refresh()
}

// Applier renders a function of one argument applied to arg, e.g. "sin(x0)".
type Applier interface {
	Apply(arg string) string
}

type errorer interface {
	Err() error
}

// Has reports whether n defines the derivative with respect to the given
// variables. The order of the derivative is len(ids); order zero is the
// value itself and always present.
func Has(n Node, ids ...VarID) bool {
	var ok bool
	switch len(ids) {
	case 0:
		return true
	case 1:
		_, ok = n.(FirstDerivative)
	case 2:
		_, ok = n.(SecondDerivative)
	case 3:
		_, ok = n.(ThirdDerivative)
	}
	if !ok {
		return false
	}
	if d, ok := n.(Definer); ok {
		return d.Defines(ids...)
	}
	return true
}

// Walk calls visit for n and, depth first, for every operand below it.
// Returning false from visit skips the operands of that node.
func Walk(n Node, visit func(Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	if c, ok := n.(Composite); ok {
		for _, op := range c.Operands() {
			Walk(op, visit)
		}
	}
}

// ContainsVariable reports whether any leaf below n is a *Variable.
func ContainsVariable(n Node) bool {
	found := false
	Walk(n, func(m Node) bool {
		if _, ok := m.(*Variable); ok {
			found = true
		}
		return !found
	})
	return found
}

// refreshAll refreshes every combinator below and including n, operands
// before the nodes that use them.
func refreshAll(n Node) {
	if c, ok := n.(Composite); ok {
		for _, op := range c.Operands() {
			refreshAll(op)
		}
	}
	if r, ok := n.(Refresher); ok {
		r.Refresh()
	}
}

func update(n Node, x Value) error {
	if u, ok := n.(Updater); ok {
		return u.Update(x)
	}
	return nil
}

func updateVariable(n Node, id VarID, x Value) error {
	if u, ok := n.(VariableUpdater); ok {
		return u.UpdateVariable(id, x)
	}
	return nil
}

func render(n Node) string {
	if s, ok := n.(interface{ String() string }); ok {
		return s.String()
	}
	return n.Value().String()
}
