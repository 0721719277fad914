package commands

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/njchilds90/gofung/internal/service"
)

// parseValue reads a number or a matrix written as nested rows, e.g.
// "2" or "[[1, 0], [0, 1]]".
func parseValue(s string) (any, error) {
	var v any
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return nil, fmt.Errorf("invalid value %q: %w", s, err)
	}
	if v == nil {
		return nil, fmt.Errorf("empty value")
	}
	return v, nil
}

// parseAssignment splits "id=value".
func parseAssignment(s string) (int, any, error) {
	k, v, ok := strings.Cut(s, "=")
	if !ok {
		return 0, nil, fmt.Errorf("expected id=value, got %q", s)
	}
	id, err := strconv.Atoi(strings.TrimSpace(k))
	if err != nil || id < 0 {
		return 0, nil, fmt.Errorf("invalid variable id %q", k)
	}
	val, err := parseValue(v)
	if err != nil {
		return 0, nil, err
	}
	return id, val, nil
}

func parsePoints(specs []string) (map[string]any, error) {
	at := make(map[string]any, len(specs))
	for _, s := range specs {
		id, v, err := parseAssignment(s)
		if err != nil {
			return nil, err
		}
		at[strconv.Itoa(id)] = v
	}
	return at, nil
}

func parseDirections(specs []string) ([]service.DirParam, error) {
	dirs := make([]service.DirParam, 0, len(specs))
	for _, s := range specs {
		id, v, err := parseAssignment(s)
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, service.DirParam{ID: id, Delta: v})
	}
	return dirs, nil
}

func parseParams(specs []string) (map[string]float64, error) {
	params := make(map[string]float64, len(specs))
	for _, s := range specs {
		k, v, ok := strings.Cut(s, "=")
		if !ok {
			return nil, fmt.Errorf("expected name=value, got %q", s)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", k, err)
		}
		params[strings.TrimSpace(k)] = x
	}
	return params, nil
}
