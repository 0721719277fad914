package expr

import "encoding/json"

// Schema describes every expression type and its fields as JSON, for agents
// that assemble documents.
func Schema() string {
	types := []map[string]any{
		ts("const", "Constant value", []string{"value"}, map[string]string{"value": "number|matrix"}),
		ts("var", "Independent variable tagged by id", []string{"id", "value"}, map[string]string{"id": "integer", "value": "number|matrix"}),
		ts("identity", "Un-indexed argument", []string{"value"}, map[string]string{"value": "number|matrix"}),
		ts("add", "Sum of args", []string{"args"}, map[string]string{"args": "array"}),
		ts("sub", "Difference args[0] - args[1]", []string{"args"}, map[string]string{"args": "array"}),
		ts("mul", "Product of args, matrix products keep their order", []string{"args"}, map[string]string{"args": "array"}),
		ts("dot", "Inner product args[0]:args[1]", []string{"args"}, map[string]string{"args": "array"}),
		ts("scale", "factor*arg", []string{"factor", "arg"}, map[string]string{"factor": "number", "arg": "object"}),
		ts("square", "arg^2", []string{"arg"}, map[string]string{"arg": "object"}),
		ts("compose", "outer(inner)", []string{"outer", "inner"}, map[string]string{"outer": "object", "inner": "object"}),
		ts("min", "Smaller of two scalar args", []string{"args"}, map[string]string{"args": "array"}),
		ts("max", "Larger of two scalar args", []string{"args"}, map[string]string{"args": "array"}),
		ts("pow", "arg^k", []string{"k"}, map[string]string{"k": "number", "arg": "object", "at": "number"}),
	}
	for _, name := range Types() {
		if _, ok := scalarFuncs[name]; ok && name != "pow" {
			types = append(types, ts(name, "Elementary function "+name+" of a scalar", nil,
				map[string]string{"arg": "object", "at": "number"}))
		}
		if _, ok := matrixFuncs[name]; ok {
			props := map[string]string{"arg": "object", "at": "matrix"}
			var required []string
			switch name {
			case "i4", "i5", "i6":
				props["m"] = "matrix"
				required = []string{"m"}
			}
			types = append(types, ts(name, "Matrix function "+name, required, props))
		}
	}
	b, _ := json.MarshalIndent(map[string]any{"types": types}, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]any {
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
