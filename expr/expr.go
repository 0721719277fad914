// Package expr decodes declarative expression documents into fung nodes.
//
// A document is a tree of objects with a "type" field:
//
//	{"type": "mul", "args": [
//	    {"type": "var", "id": 0, "value": 1},
//	    {"type": "sin", "arg": {"type": "var", "id": 1, "value": 2}}
//	]}
//
// Values are numbers (scalars) or arrays of rows (matrices). Elementary and
// matrix functions take either an inner expression "arg", which they are
// composed with, or a point "at" at which they are created as functions of
// the un-indexed argument.
package expr

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	fung "github.com/njchilds90/gofung"
	"github.com/njchilds90/gofung/cmath"
	"github.com/njchilds90/gofung/linalg"
)

// ============================================================
// Parsing
// ============================================================

// ParseJSON decodes a JSON document.
func ParseJSON(data []byte) (fung.Node, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("expr: invalid JSON: %w", err)
	}
	return Decode(doc)
}

// ParseYAML decodes a YAML document.
func ParseYAML(data []byte) (fung.Node, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("expr: invalid YAML: %w", err)
	}
	return Decode(doc)
}

// ParseFile decodes a .json, .yaml or .yml file.
func ParseFile(path string) (fung.Node, error) {
	doc, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(doc)
}

// LoadFile reads a .json, .yaml or .yml file into a generic document.
func LoadFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &doc)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf("expr: unsupported file type %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("expr: %s: %w", path, err)
	}
	return doc, nil
}

// Decode builds a node from a decoded document. Operands of incompatible
// shapes are reported as errors.
func Decode(doc map[string]any) (n fung.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(*fung.ShapeError)
			if !ok {
				panic(r)
			}
			n, err = nil, e
		}
	}()
	return decode(doc)
}

func decode(doc map[string]any) (fung.Node, error) {
	if doc == nil {
		return nil, fmt.Errorf("expression must be an object")
	}
	typ, ok := doc["type"].(string)
	if !ok || typ == "" {
		return nil, fmt.Errorf("field 'type' must be a non-empty string")
	}
	d := decoder{typ: typ, doc: doc}

	switch typ {
	case "const":
		v, err := d.value("value")
		if err != nil {
			return nil, err
		}
		return fung.Const(v), nil

	case "var":
		id, err := d.number("id")
		if err != nil {
			return nil, err
		}
		v, err := d.value("value")
		if err != nil {
			return nil, err
		}
		return fung.Var(fung.VarID(id), v), nil

	case "identity":
		v, err := d.value("value")
		if err != nil {
			return nil, err
		}
		return fung.Ident(v), nil

	case "add", "mul":
		args, err := d.nodes("args")
		if err != nil {
			return nil, err
		}
		if len(args) == 0 {
			return nil, fmt.Errorf("%s: 'args' must not be empty", typ)
		}
		if typ == "add" {
			return fung.AddOf(args...), nil
		}
		return fung.MulOf(args...), nil

	case "sub", "dot":
		args, err := d.nodes("args")
		if err != nil {
			return nil, err
		}
		if len(args) != 2 {
			return nil, fmt.Errorf("%s: 'args' must hold exactly two expressions", typ)
		}
		if typ == "sub" {
			return fung.Sub(args[0], args[1]), nil
		}
		return fung.Dot(args[0], args[1]), nil

	case "scale":
		a, err := d.number("factor")
		if err != nil {
			return nil, err
		}
		f, err := d.node("arg")
		if err != nil {
			return nil, err
		}
		return fung.Scale(a, f), nil

	case "square":
		f, err := d.node("arg")
		if err != nil {
			return nil, err
		}
		return fung.Square(f), nil

	case "compose":
		f, err := d.node("outer")
		if err != nil {
			return nil, err
		}
		g, err := d.node("inner")
		if err != nil {
			return nil, err
		}
		return fung.Compose(f, g), nil

	case "min", "max":
		args, err := d.nodes("args")
		if err != nil {
			return nil, err
		}
		if len(args) != 2 {
			return nil, fmt.Errorf("%s: 'args' must hold exactly two expressions", typ)
		}
		if typ == "min" {
			return cmath.Min(args[0], args[1]), nil
		}
		return cmath.Max(args[0], args[1]), nil
	}

	if build, ok := scalarFuncs[typ]; ok {
		return d.function(func(at fung.Value) (fung.Node, error) {
			x, err := fung.AsScalar(typ, at)
			if err != nil {
				return nil, err
			}
			if typ == "pow" {
				k, err := d.number("k")
				if err != nil {
					return nil, err
				}
				return cmath.Pow(x, k), nil
			}
			return build(x), nil
		})
	}
	if build, ok := matrixFuncs[typ]; ok {
		return d.function(func(at fung.Value) (fung.Node, error) {
			a, err := fung.AsMatrix(typ, at)
			if err != nil {
				return nil, err
			}
			return build(a, d)
		})
	}
	return nil, fmt.Errorf("unknown expression type: %s", typ)
}

// Types lists every supported expression type.
func Types() []string {
	types := []string{"const", "var", "identity", "add", "sub", "mul", "dot", "scale", "square", "compose", "min", "max"}
	for name := range scalarFuncs {
		types = append(types, name)
	}
	for name := range matrixFuncs {
		types = append(types, name)
	}
	sort.Strings(types)
	return types
}

// ============================================================
// Function tables
// ============================================================

var scalarFuncs = map[string]func(float64) *cmath.Func{
	"pow":                  nil,
	"sqrt":                 cmath.Sqrt,
	"cbrt":                 cmath.Cbrt,
	"cbrt2":                cmath.Cbrt2,
	"overThirdRoot":        cmath.OverThirdRoot,
	"overThirdRootSquared": cmath.OverThirdRootSquared,
	"exp":                  cmath.Exp,
	"exp2":                 cmath.Exp2,
	"ln":                   cmath.Log,
	"log10":                cmath.Log10,
	"log2":                 cmath.Log2,
	"sin":                  cmath.Sin,
	"cos":                  cmath.Cos,
	"tan":                  cmath.Tan,
	"asin":                 cmath.Asin,
	"acos":                 cmath.Acos,
	"erf":                  cmath.Erf,
}

var matrixFuncs = map[string]func(fung.Matrix, decoder) (fung.Node, error){
	"trace":        func(a fung.Matrix, _ decoder) (fung.Node, error) { return linalg.Trace(a), nil },
	"det":          func(a fung.Matrix, _ decoder) (fung.Node, error) { return linalg.Det(a), nil },
	"i2":           func(a fung.Matrix, _ decoder) (fung.Node, error) { return linalg.SecondInvariant(a), nil },
	"mi1":          func(a fung.Matrix, _ decoder) (fung.Node, error) { return linalg.ModifiedFirstInvariant(a), nil },
	"mi2":          func(a fung.Matrix, _ decoder) (fung.Node, error) { return linalg.ModifiedSecondInvariant(a), nil },
	"cauchy-green": func(a fung.Matrix, _ decoder) (fung.Node, error) { return linalg.CauchyGreen(a), nil },
	"deviator":     func(a fung.Matrix, _ decoder) (fung.Node, error) { return linalg.Deviator(a), nil },
	"j2":           func(a fung.Matrix, _ decoder) (fung.Node, error) { return linalg.J2(a), nil },
	"frobenius":    func(a fung.Matrix, _ decoder) (fung.Node, error) { return linalg.FrobeniusSquared(a), nil },
	"i4":           mixed(linalg.I4),
	"i5":           mixed(linalg.I5),
	"i6":           mixed(linalg.I6),
}

func mixed[N fung.Node](build func(a, m fung.Matrix) N) func(fung.Matrix, decoder) (fung.Node, error) {
	return func(a fung.Matrix, d decoder) (fung.Node, error) {
		v, err := d.value("m")
		if err != nil {
			return nil, err
		}
		m, err := fung.AsMatrix(d.typ, v)
		if err != nil {
			return nil, err
		}
		return build(a, m), nil
	}
}

// ============================================================
// Field access
// ============================================================

type decoder struct {
	typ string
	doc map[string]any
}

// function creates a named function either composed with "arg" or as a
// leaf at "at".
func (d decoder) function(build func(at fung.Value) (fung.Node, error)) (fung.Node, error) {
	if _, ok := d.doc["arg"]; ok {
		g, err := d.node("arg")
		if err != nil {
			return nil, err
		}
		f, err := build(g.Value())
		if err != nil {
			return nil, err
		}
		return fung.Compose(f, g), nil
	}
	at, err := d.value("at")
	if err != nil {
		return nil, fmt.Errorf("%s: need 'arg' or 'at': %w", d.typ, err)
	}
	return build(at)
}

func (d decoder) raw(field string) (any, error) {
	v, ok := d.doc[field]
	if !ok {
		return nil, fmt.Errorf("%s: missing %q", d.typ, field)
	}
	return v, nil
}

func (d decoder) number(field string) (float64, error) {
	v, err := d.raw(field)
	if err != nil {
		return 0, err
	}
	x, ok := toFloat(v)
	if !ok {
		return 0, fmt.Errorf("%s: %q must be a number", d.typ, field)
	}
	return x, nil
}

func (d decoder) value(field string) (fung.Value, error) {
	v, err := d.raw(field)
	if err != nil {
		return nil, err
	}
	val, err := DecodeValue(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %q: %w", d.typ, field, err)
	}
	return val, nil
}

func (d decoder) node(field string) (fung.Node, error) {
	v, err := d.raw(field)
	if err != nil {
		return nil, err
	}
	m, ok := asObject(v)
	if !ok {
		return nil, fmt.Errorf("%s: %q must be an object", d.typ, field)
	}
	return decode(m)
}

func (d decoder) nodes(field string) ([]fung.Node, error) {
	v, err := d.raw(field)
	if err != nil {
		return nil, err
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%s: %q must be an array", d.typ, field)
	}
	out := make([]fung.Node, len(items))
	for i, it := range items {
		m, ok := asObject(it)
		if !ok {
			return nil, fmt.Errorf("%s: %q[%d] must be an object", d.typ, field, i)
		}
		n, err := decode(m)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// DecodeValue converts a number into a fung.Scalar and an array of rows
// into a fung.Matrix.
func DecodeValue(v any) (fung.Value, error) {
	if x, ok := toFloat(v); ok {
		return fung.Scalar(x), nil
	}
	rows, ok := v.([]any)
	if !ok || len(rows) == 0 {
		return nil, fmt.Errorf("value must be a number or a non-empty array of rows")
	}
	data := make([][]float64, len(rows))
	for i, r := range rows {
		cols, ok := r.([]any)
		if !ok || len(cols) == 0 {
			return nil, fmt.Errorf("row %d must be a non-empty array", i)
		}
		if i > 0 && len(cols) != len(data[0]) {
			return nil, fmt.Errorf("row %d has %d entries, want %d", i, len(cols), len(data[0]))
		}
		data[i] = make([]float64, len(cols))
		for j, c := range cols {
			x, ok := toFloat(c)
			if !ok {
				return nil, fmt.Errorf("entry (%d,%d) must be a number", i, j)
			}
			data[i][j] = x
		}
	}
	return fung.Rows(data), nil
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return 0, false
}

func asObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}
