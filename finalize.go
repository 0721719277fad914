package fung

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// ============================================================
// Finalize
// ============================================================

// Function is a finalized expression. Its derivative accessors never report
// absence: a derivative that the expression does not define is returned as
// the zero of the function's value.
type Function struct {
	root Node
	ids  []VarID
	vars map[VarID]Value
}

type options struct {
	requests [][]VarID
	noChecks bool
}

// Option configures Finalize.
type Option func(*options)

// WithRequests restricts validation to the given derivative requests. Each
// request lists one variable id per direction.
func WithRequests(reqs ...[]VarID) Option {
	return func(o *options) { o.requests = append(o.requests, reqs...) }
}

// WithoutDomainChecks turns off argument validation in every leaf. Leaves
// built outside their domain are accepted and evaluated where they are.
func WithoutDomainChecks() Option { return func(o *options) { o.noChecks = true } }

// Finalize validates root and wraps it.
//
// Errors recorded while the expression was assembled are returned first.
// Afterwards every derivative request is checked: a derivative of order n
// may only be present if all derivatives of order n-1 obtained by dropping
// one of its directions are present, too. Without WithRequests all requests
// up to third order over the expression's variables are checked.
func Finalize(root Node, opts ...Option) (*Function, error) {
	if root == nil {
		return nil, errors.New("fung: finalize: nil expression")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if o.noChecks {
		Walk(root, func(n Node) bool {
			if d, ok := n.(DomainChecker); ok {
				d.SetDomainChecks(false)
			}
			return true
		})
		refreshAll(root)
	}

	fn := &Function{root: root, vars: map[VarID]Value{}}
	var errs []error
	Walk(root, func(n Node) bool {
		if e, ok := n.(errorer); ok && e.Err() != nil {
			errs = append(errs, e.Err())
		}
		if x, ok := n.(*Variable); ok {
			if prev, seen := fn.vars[x.id]; seen && !SameShape(prev, x.v) {
				errs = append(errs, &ShapeError{Op: "variable " + x.String(), Want: shapeOf(prev), Got: shapeOf(x.v)})
			}
			fn.vars[x.id] = x.v
		}
		return true
	})
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	for id := range fn.vars {
		fn.ids = append(fn.ids, id)
	}
	slices.Sort(fn.ids)

	reqs := o.requests
	if len(reqs) == 0 {
		reqs = fn.allRequests()
	}
	for _, req := range reqs {
		if err := fn.check(req); err != nil {
			return nil, err
		}
	}
	return fn, nil
}

func (fn *Function) allRequests() [][]VarID {
	ids := fn.ids
	if len(ids) == 0 {
		ids = []VarID{0}
	}
	var reqs [][]VarID
	for _, x := range ids {
		reqs = append(reqs, []VarID{x})
		for _, y := range ids {
			reqs = append(reqs, []VarID{x, y})
			for _, z := range ids {
				reqs = append(reqs, []VarID{x, y, z})
			}
		}
	}
	return reqs
}

func (fn *Function) check(req []VarID) error {
	if len(req) < 1 || len(req) > 3 {
		return &ConsistencyError{IDs: req, Reason: fmt.Sprintf("order %d not in 1..3", len(req))}
	}
	for _, id := range req {
		if !fn.known(id) {
			return &ConsistencyError{IDs: req, Reason: fmt.Sprintf("unknown variable x%d", id), Err: ErrUnknownVariable}
		}
	}
	if !Has(fn.root, req...) {
		return nil
	}
	for i := range req {
		lower := slices.Delete(slices.Clone(req), i, i+1)
		if !Has(fn.root, lower...) {
			return &ConsistencyError{IDs: req, Reason: "lower-order derivative " + formatIDs(lower) + " is undefined"}
		}
	}
	return nil
}

// known accepts every id for expressions without variables, which are
// functions of their un-indexed argument.
func (fn *Function) known(id VarID) bool {
	if len(fn.vars) == 0 {
		return true
	}
	_, ok := fn.vars[id]
	return ok
}

func (fn *Function) Root() Node         { return fn.root }
func (fn *Function) Value() Value       { return fn.root.Value() }
func (fn *Function) Variables() []VarID { return slices.Clone(fn.ids) }
func (fn *Function) String() string     { return render(fn.root) }

// Has reports whether the derivative is defined by the expression rather
// than filled in as zero.
func (fn *Function) Has(ids ...VarID) bool { return Has(fn.root, ids...) }

// Update moves the un-indexed argument of every leaf. On failure every leaf
// is put back to its previous point.
func (fn *Function) Update(x Value) error {
	restore := fn.checkpoint()
	if err := update(fn.root, x); err != nil {
		restore()
		return err
	}
	return nil
}

// UpdateVariable moves every variable with the given id. On failure the
// variable is restored to its previous point.
func (fn *Function) UpdateVariable(id VarID, x Value) error {
	prev, ok := fn.vars[id]
	if !ok {
		return fmt.Errorf("%w: x%d", ErrUnknownVariable, id)
	}
	if !SameShape(prev, x) {
		return &ShapeError{Op: fmt.Sprintf("update x%d", id), Want: shapeOf(prev), Got: shapeOf(x)}
	}
	restore := fn.checkpoint()
	if err := updateVariable(fn.root, id, x); err != nil {
		restore()
		return err
	}
	fn.vars[id] = x
	return nil
}

// UpdateVariables applies several updates in increasing id order. If one
// fails, the updates already applied are undone.
func (fn *Function) UpdateVariables(points map[VarID]Value) error {
	ids := make([]VarID, 0, len(points))
	for id := range points {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	restore, vars := fn.checkpoint(), maps.Clone(fn.vars)
	for _, id := range ids {
		if err := fn.UpdateVariable(id, points[id]); err != nil {
			restore()
			fn.vars = vars
			return err
		}
	}
	return nil
}

// checkpoint records the state of every leaf. The returned function puts
// the leaves back and recomputes the combinators above them.
func (fn *Function) checkpoint() (restore func()) {
	var leaves []func()
	Walk(fn.root, func(n Node) bool {
		if s, ok := n.(Snapshotter); ok {
			leaves = append(leaves, s.Snapshot())
		}
		return true
	})
	return func() {
		for _, r := range leaves {
			r()
		}
		refreshAll(fn.root)
	}
}

func (fn *Function) D1(dx Direction) Value {
	fn.mustKnow(dx)
	if !Has(fn.root, dx.ID) {
		return fn.zero()
	}
	return fn.root.(FirstDerivative).D1(dx)
}

func (fn *Function) D2(dx, dy Direction) Value {
	fn.mustKnow(dx, dy)
	if !Has(fn.root, dx.ID, dy.ID) {
		return fn.zero()
	}
	return fn.root.(SecondDerivative).D2(dx, dy)
}

func (fn *Function) D3(dx, dy, dz Direction) Value {
	fn.mustKnow(dx, dy, dz)
	if !Has(fn.root, dx.ID, dy.ID, dz.ID) {
		return fn.zero()
	}
	return fn.root.(ThirdDerivative).D3(dx, dy, dz)
}

func (fn *Function) zero() Value { return fn.root.Value().Zero() }

// mustKnow panics for directions that name foreign variables or do not
// match the shape of their variable.
func (fn *Function) mustKnow(dirs ...Direction) {
	ids := make([]VarID, len(dirs))
	for i, dx := range dirs {
		ids[i] = dx.ID
	}
	for _, dx := range dirs {
		if !fn.known(dx.ID) {
			panic(&ConsistencyError{IDs: ids, Reason: fmt.Sprintf("x%d does not occur in %s", dx.ID, fn), Err: ErrUnknownVariable})
		}
		if v, ok := fn.vars[dx.ID]; ok && !SameShape(v, dx.Delta) {
			panic(&ShapeError{Op: "direction x" + fmt.Sprint(dx.ID), Want: shapeOf(v), Got: shapeOf(dx.Delta)})
		}
	}
}
