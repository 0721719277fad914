// Package linalg provides matrix-valued and matrix-argument building blocks
// for fung expressions: trace, determinant, principal, modified and mixed
// invariants, the Cauchy-Green strain tensor and the deviator.
//
// Leaves take a gonum-backed fung.Matrix as their argument. The ...Of
// helpers compose a leaf with an inner node.
package linalg

import (
	"strconv"

	"gonum.org/v1/gonum/mat"

	fung "github.com/njchilds90/gofung"
)

// leaf holds the argument of a matrix function and the checks it needs.
type leaf struct {
	name   string
	order  int
	square bool
	a      fung.Matrix
	err    error
}

func (l *leaf) accept(v fung.Value) (fung.Matrix, error) {
	a, err := fung.AsMatrix(l.name, v)
	if err != nil {
		return fung.Matrix{}, err
	}
	if l.square && !a.IsSquare() {
		r, c := a.Dims()
		return fung.Matrix{}, &fung.ShapeError{Op: l.name, Want: "square matrix", Got: shape(r, c)}
	}
	if r, _ := l.a.Dims(); r > 0 && !fung.SameShape(l.a, a) {
		r, c := l.a.Dims()
		r2, c2 := a.Dims()
		return fung.Matrix{}, &fung.ShapeError{Op: l.name, Want: shape(r, c), Got: shape(r2, c2)}
	}
	return a, nil
}

func (l *leaf) Err() error                     { return l.err }
func (l *leaf) Arg() fung.Matrix               { return l.a }
func (l *leaf) Defines(ids ...fung.VarID) bool { return len(ids) <= l.order }
func (l *leaf) Apply(arg string) string        { return l.name + "(" + arg + ")" }
func (l *leaf) String() string                 { return l.name + "(A)" }

func shape(r, c int) string { return strconv.Itoa(r) + "x" + strconv.Itoa(c) }

func direction(name string, dx fung.Direction) *mat.Dense {
	m, err := fung.AsMatrix(name+" direction", dx.Delta)
	if err != nil {
		panic(err)
	}
	return m.Dense()
}

// ============================================================
// Trace
// ============================================================

// TraceLeaf is tr(A). It is linear, so only its first derivative exists.
type TraceLeaf struct {
	leaf
	value float64
}

// Trace returns tr(A) for a square matrix A.
func Trace(a fung.Matrix) *TraceLeaf {
	t := &TraceLeaf{leaf: leaf{name: "tr", order: 1, square: true}}
	t.err = t.Update(a)
	return t
}

// TraceOf returns tr(g).
func TraceOf(g fung.Node) *fung.Chain { return fung.Compose(Trace(initial(g)), g) }

func (t *TraceLeaf) Value() fung.Value { return fung.Scalar(t.value) }

func (t *TraceLeaf) Snapshot() func() {
	prev := *t
	return func() { *t = prev }
}

func (t *TraceLeaf) Update(v fung.Value) error {
	a, err := t.accept(v)
	if err != nil {
		return err
	}
	t.a, t.value = a, a.Trace()
	return nil
}

func (t *TraceLeaf) D1(dx fung.Direction) fung.Value {
	return fung.Scalar(mat.Trace(direction(t.name, dx)))
}

// ============================================================
// Determinant
// ============================================================

// DetLeaf is det(A) for square A of any size n. The determinant is
// multilinear in the columns of A, so its k-th directional derivative sums
// the determinants of A with k distinct columns replaced by the
// corresponding columns of the k directions. Derivatives above order n
// vanish.
type DetLeaf struct {
	leaf
	value float64
}

// Det returns det(A).
func Det(a fung.Matrix) *DetLeaf {
	d := &DetLeaf{leaf: leaf{name: "det", order: 3, square: true}}
	d.err = d.Update(a)
	return d
}

// DetOf returns det(g).
func DetOf(g fung.Node) *fung.Chain { return fung.Compose(Det(initial(g)), g) }

func (d *DetLeaf) Value() fung.Value { return fung.Scalar(d.value) }

func (d *DetLeaf) Snapshot() func() {
	prev := *d
	return func() { *d = prev }
}

func (d *DetLeaf) Update(v fung.Value) error {
	a, err := d.accept(v)
	if err != nil {
		return err
	}
	n, _ := a.Dims()
	d.a, d.value, d.order = a, a.Det(), min(n, 3)
	return nil
}

func (d *DetLeaf) D1(dx fung.Direction) fung.Value {
	return fung.Scalar(d.replaced(direction(d.name, dx)))
}

func (d *DetLeaf) D2(dx, dy fung.Direction) fung.Value {
	return fung.Scalar(d.replaced(direction(d.name, dx), direction(d.name, dy)))
}

func (d *DetLeaf) D3(dx, dy, dz fung.Direction) fung.Value {
	return fung.Scalar(d.replaced(direction(d.name, dx), direction(d.name, dy), direction(d.name, dz)))
}

// replaced sums det(A) over all ways of replacing len(dirs) distinct
// columns of A, column cols[i] taken from dirs[i].
func (d *DetLeaf) replaced(dirs ...*mat.Dense) float64 {
	n, _ := d.a.Dims()
	if len(dirs) > n {
		return 0
	}
	base := d.a.Dense()
	work := mat.NewDense(n, n, nil)
	cols := make([]int, 0, len(dirs))
	used := make([]bool, n)
	col := make([]float64, n)
	var sum float64
	var visit func()
	visit = func() {
		if len(cols) == len(dirs) {
			work.Copy(base)
			for i, c := range cols {
				mat.Col(col, c, dirs[i])
				work.SetCol(c, col)
			}
			sum += mat.Det(work)
			return
		}
		for c := 0; c < n; c++ {
			if used[c] {
				continue
			}
			used[c] = true
			cols = append(cols, c)
			visit()
			cols = cols[:len(cols)-1]
			used[c] = false
		}
	}
	visit()
	return sum
}

// ============================================================
// Second principal invariant
// ============================================================

// SecondInvariantLeaf is i2(A) = ½(tr(A)² − tr(A²)), the sum of the
// principal 2×2 minors of A.
type SecondInvariantLeaf struct {
	leaf
	value float64
}

// SecondInvariant returns i2(A).
func SecondInvariant(a fung.Matrix) *SecondInvariantLeaf {
	s := &SecondInvariantLeaf{leaf: leaf{name: "i2", order: 2, square: true}}
	s.err = s.Update(a)
	return s
}

// SecondInvariantOf returns i2(g).
func SecondInvariantOf(g fung.Node) *fung.Chain {
	return fung.Compose(SecondInvariant(initial(g)), g)
}

func (s *SecondInvariantLeaf) Value() fung.Value { return fung.Scalar(s.value) }

func (s *SecondInvariantLeaf) Snapshot() func() {
	prev := *s
	return func() { *s = prev }
}

func (s *SecondInvariantLeaf) Update(v fung.Value) error {
	a, err := s.accept(v)
	if err != nil {
		return err
	}
	tr := a.Trace()
	s.a, s.value = a, 0.5*(tr*tr-traceOfProduct(a.Dense(), a.Dense()))
	return nil
}

func (s *SecondInvariantLeaf) D1(dx fung.Direction) fung.Value {
	da := direction(s.name, dx)
	return fung.Scalar(s.a.Trace()*mat.Trace(da) - traceOfProduct(s.a.Dense(), da))
}

func (s *SecondInvariantLeaf) D2(dx, dy fung.Direction) fung.Value {
	da, db := direction(s.name, dx), direction(s.name, dy)
	return fung.Scalar(mat.Trace(da)*mat.Trace(db) - traceOfProduct(da, db))
}

func traceOfProduct(a, b mat.Matrix) float64 {
	var p mat.Dense
	p.Mul(a, b)
	return mat.Trace(&p)
}

// ============================================================
// Cauchy-Green strain tensor
// ============================================================

// CauchyGreenLeaf is FᵀF.
type CauchyGreenLeaf struct {
	leaf
	value fung.Matrix
}

// CauchyGreen returns FᵀF.
func CauchyGreen(f fung.Matrix) *CauchyGreenLeaf {
	c := &CauchyGreenLeaf{leaf: leaf{name: "C", order: 2}}
	c.err = c.Update(f)
	return c
}

// Strain is the strain tensor material laws are composed with.
func Strain(f fung.Matrix) *CauchyGreenLeaf { return CauchyGreen(f) }

func (c *CauchyGreenLeaf) Value() fung.Value { return c.value }

func (c *CauchyGreenLeaf) Snapshot() func() {
	prev := *c
	return func() { *c = prev }
}

func (c *CauchyGreenLeaf) Apply(arg string) string { return arg + "^T*" + arg }
func (c *CauchyGreenLeaf) String() string          { return "F^T*F" }

func (c *CauchyGreenLeaf) Update(v fung.Value) error {
	f, err := c.accept(v)
	if err != nil {
		return err
	}
	c.a, c.value = f, f.T().Mul(f).(fung.Matrix)
	return nil
}

func (c *CauchyGreenLeaf) D1(dx fung.Direction) fung.Value {
	df, err := fung.AsMatrix(c.name+" direction", dx.Delta)
	if err != nil {
		panic(err)
	}
	p := c.a.T().Mul(df).(fung.Matrix)
	return p.Add(p.T())
}

func (c *CauchyGreenLeaf) D2(dx, dy fung.Direction) fung.Value {
	df1, err := fung.AsMatrix(c.name+" direction", dx.Delta)
	if err != nil {
		panic(err)
	}
	df2, err := fung.AsMatrix(c.name+" direction", dy.Delta)
	if err != nil {
		panic(err)
	}
	p := df2.T().Mul(df1).(fung.Matrix)
	return p.Add(p.T())
}

// ============================================================
// Deviator
// ============================================================

// DeviatorLeaf is dev(A) = A − tr(A)/n·I.
type DeviatorLeaf struct {
	leaf
	value fung.Matrix
}

// Deviator returns dev(A).
func Deviator(a fung.Matrix) *DeviatorLeaf {
	d := &DeviatorLeaf{leaf: leaf{name: "dev", order: 1, square: true}}
	d.err = d.Update(a)
	return d
}

// DeviatorOf returns dev(g).
func DeviatorOf(g fung.Node) *fung.Chain { return fung.Compose(Deviator(initial(g)), g) }

func (d *DeviatorLeaf) Value() fung.Value { return d.value }

func (d *DeviatorLeaf) Snapshot() func() {
	prev := *d
	return func() { *d = prev }
}

func (d *DeviatorLeaf) Update(v fung.Value) error {
	a, err := d.accept(v)
	if err != nil {
		return err
	}
	d.a, d.value = a, deviator(a)
	return nil
}

func (d *DeviatorLeaf) D1(dx fung.Direction) fung.Value {
	da, err := fung.AsMatrix(d.name+" direction", dx.Delta)
	if err != nil {
		panic(err)
	}
	return deviator(da)
}

func deviator(a fung.Matrix) fung.Matrix {
	n, _ := a.Dims()
	return a.Add(fung.Eye(n).Scale(-a.Trace() / float64(n))).(fung.Matrix)
}

// initial is the starting point of a leaf composed with g.
func initial(g fung.Node) fung.Matrix {
	m, _ := g.Value().(fung.Matrix)
	return m
}
