// Package service dispatches tool calls against expressions and material
// models. It is shared by the command line and the HTTP server.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	fung "github.com/njchilds90/gofung"
	"github.com/njchilds90/gofung/expr"
	"github.com/njchilds90/gofung/models"
)

// ToolRequest names a tool and its parameters.
type ToolRequest struct {
	Tool   string         `json:"tool" validate:"required"`
	Params map[string]any `json:"params"`
}

// ToolResponse carries either a result or an error message.
type ToolResponse struct {
	Result any    `json:"result,omitempty"`
	String string `json:"string,omitempty"`
	Error  string `json:"error,omitempty"`
}

// EvaluateParams are the parameters of the evaluate tool. At maps variable
// ids to their points; Arg is the un-indexed argument. Directions hold one
// entry per derivative order.
type EvaluateParams struct {
	Expr           map[string]any `json:"expr" validate:"required"`
	At             map[string]any `json:"at"`
	Arg            any            `json:"arg"`
	Directions     []DirParam     `json:"directions" validate:"max=3,dive"`
	NoDomainChecks bool           `json:"noDomainChecks"`
}

// DirParam is one direction of a derivative request.
type DirParam struct {
	ID    int `json:"id" validate:"gte=0"`
	Delta any `json:"delta"`
}

// ModelParams are the parameters of the model tool.
type ModelParams struct {
	Name       string             `json:"name" validate:"required"`
	Params     map[string]float64 `json:"params"`
	Penalty    string             `json:"penalty" validate:"omitempty,oneof=quad-and-log hartmann-neff"`
	F          any                `json:"F" validate:"required"`
	M          any                `json:"M"`
	Directions []any              `json:"directions" validate:"max=3"`
}

// Result is the outcome of an evaluation.
type Result struct {
	Expression string     `json:"expression"`
	Value      fung.Value `json:"value"`
	Order      int        `json:"order"`
	Derivative fung.Value `json:"derivative,omitempty"`
	Present    bool       `json:"present"`
}

// Service handles tool calls.
type Service struct {
	log      zerolog.Logger
	validate *validator.Validate
}

// New returns a Service logging to log.
func New(log zerolog.Logger) *Service {
	return &Service{log: log, validate: validator.New()}
}

// Handle runs one tool call. Failures are reported in the response.
func (s *Service) Handle(ctx context.Context, req ToolRequest) ToolResponse {
	start := time.Now()
	resp := s.handle(ctx, req)
	ev := s.log.Debug()
	if resp.Error != "" {
		ev = s.log.Warn().Str("error", resp.Error)
	}
	ev.Str("tool", req.Tool).Dur("elapsed", time.Since(start)).Msg("tool call")
	return resp
}

func (s *Service) handle(ctx context.Context, req ToolRequest) ToolResponse {
	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	if err := s.validate.Struct(req); err != nil {
		return fail(err)
	}
	switch req.Tool {
	case "evaluate":
		var p EvaluateParams
		if err := s.decode(req.Params, &p); err != nil {
			return fail(err)
		}
		res, err := Evaluate(p)
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: res, String: res.Expression}

	case "model":
		var p ModelParams
		if err := s.decode(req.Params, &p); err != nil {
			return fail(err)
		}
		res, err := RunModel(p)
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: res, String: res.Expression}

	case "models":
		return ToolResponse{Result: models.All()}

	case "types":
		return ToolResponse{Result: expr.Types()}

	case "schema":
		return ToolResponse{String: Schema()}
	}
	return fail(fmt.Errorf("unknown tool: %s", req.Tool))
}

// decode copies params into the typed struct dst and validates it.
func (s *Service) decode(params map[string]any, dst any) error {
	b, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	return s.validate.Struct(dst)
}

func fail(err error) ToolResponse { return ToolResponse{Error: err.Error()} }

// ============================================================
// Tools
// ============================================================

// Evaluate decodes an expression, moves it to the requested point and
// evaluates its value and the derivative along p.Directions.
func Evaluate(p EvaluateParams) (*Result, error) {
	n, err := expr.Decode(p.Expr)
	if err != nil {
		return nil, err
	}
	var opts []fung.Option
	if p.NoDomainChecks {
		opts = append(opts, fung.WithoutDomainChecks())
	}
	if len(p.Directions) > 0 {
		ids := make([]fung.VarID, len(p.Directions))
		for i, d := range p.Directions {
			ids[i] = fung.VarID(d.ID)
		}
		opts = append(opts, fung.WithRequests(ids))
	}
	fn, err := fung.Finalize(n, opts...)
	if err != nil {
		return nil, err
	}

	if p.Arg != nil {
		x, err := expr.DecodeValue(p.Arg)
		if err != nil {
			return nil, fmt.Errorf("arg: %w", err)
		}
		if err := fn.Update(x); err != nil {
			return nil, err
		}
	}
	points := make(map[fung.VarID]fung.Value, len(p.At))
	for k, v := range p.At {
		id, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("at: variable id %q is not an integer", k)
		}
		x, err := expr.DecodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("at %s: %w", k, err)
		}
		points[fung.VarID(id)] = x
	}
	if err := fn.UpdateVariables(points); err != nil {
		return nil, err
	}

	dirs := make([]fung.Direction, len(p.Directions))
	for i, d := range p.Directions {
		delta, err := expr.DecodeValue(d.Delta)
		if err != nil {
			return nil, fmt.Errorf("direction %d: %w", i, err)
		}
		dirs[i] = fung.Along(fung.VarID(d.ID), delta)
	}
	return derivative(fn, dirs)
}

// RunModel builds a registered model at F and evaluates its derivative
// along the perturbations of F in p.Directions.
func RunModel(p ModelParams) (*Result, error) {
	m, ok := models.Lookup(p.Name)
	if !ok {
		return nil, fmt.Errorf("unknown model %q, have %v", p.Name, models.Names())
	}
	args := models.Args{Params: p.Params}
	if p.Penalty == "hartmann-neff" {
		args.Penalty = models.HartmannNeff
	}
	var err error
	if args.F, err = matrix("F", p.F); err != nil {
		return nil, err
	}
	if p.M != nil {
		if args.M, err = matrix("M", p.M); err != nil {
			return nil, err
		}
	}
	fn, err := m.Build(args)
	if err != nil {
		return nil, err
	}
	dirs := make([]fung.Direction, len(p.Directions))
	for i, d := range p.Directions {
		delta, err := matrix(fmt.Sprintf("directions[%d]", i), d)
		if err != nil {
			return nil, err
		}
		dirs[i] = fung.Along(0, delta)
	}
	return derivative(fn, dirs)
}

// derivative turns the panics of misdirected derivative calls into errors.
func derivative(fn *fung.Function, dirs []fung.Direction) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(error)
			if !ok {
				panic(r)
			}
			res, err = nil, e
		}
	}()
	res = &Result{Expression: fn.String(), Value: fn.Value(), Order: len(dirs)}
	ids := make([]fung.VarID, len(dirs))
	for i, d := range dirs {
		ids[i] = d.ID
	}
	res.Present = fn.Has(ids...)
	switch len(dirs) {
	case 1:
		res.Derivative = fn.D1(dirs[0])
	case 2:
		res.Derivative = fn.D2(dirs[0], dirs[1])
	case 3:
		res.Derivative = fn.D3(dirs[0], dirs[1], dirs[2])
	}
	if !finite(res.Value) {
		return nil, fmt.Errorf("%s: value %s is not finite", res.Expression, res.Value)
	}
	if res.Derivative != nil && !finite(res.Derivative) {
		return nil, fmt.Errorf("%s: derivative %s is not finite", res.Expression, res.Derivative)
	}
	return res, nil
}

// finite reports whether v can be encoded as JSON.
func finite(v fung.Value) bool {
	ok := func(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }
	switch x := v.(type) {
	case fung.Scalar:
		return ok(float64(x))
	case fung.Matrix:
		for _, row := range x.Slice() {
			for _, e := range row {
				if !ok(e) {
					return false
				}
			}
		}
	}
	return true
}

func matrix(name string, v any) (fung.Matrix, error) {
	val, err := expr.DecodeValue(v)
	if err != nil {
		return fung.Matrix{}, fmt.Errorf("%s: %w", name, err)
	}
	m, err := fung.AsMatrix(name, val)
	if err != nil {
		return fung.Matrix{}, err
	}
	return m, nil
}

// ============================================================
// Schema
// ============================================================

// Schema returns the tool schema for agent registration.
func Schema() string {
	tools := []map[string]any{
		tool("evaluate", "Evaluate an expression and one directional derivative of order len(directions) <= 3",
			[]string{"expr"}, map[string]string{"expr": "object", "at": "object", "arg": "number|matrix", "directions": "array", "noDomainChecks": "boolean"}),
		tool("model", "Evaluate a material model at the deformation gradient F",
			[]string{"name", "F"}, map[string]string{"name": "string", "params": "object", "penalty": "string", "F": "matrix", "M": "matrix", "directions": "array"}),
		tool("models", "List the registered material models", nil, nil),
		tool("types", "List the expression types", nil, nil),
		tool("schema", "Return this tool schema", nil, nil),
	}
	b, _ := json.MarshalIndent(map[string]any{"tools": tools}, "", "  ")
	return string(b)
}

func tool(name, description string, required []string, props map[string]string) map[string]any {
	properties := map[string]any{}
	for k, typ := range props {
		properties[k] = map[string]any{"type": typ}
	}
	if required == nil {
		required = []string{}
	}
	return map[string]any{
		"name":        name,
		"description": description,
		"inputSchema": map[string]any{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
