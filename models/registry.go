package models

import (
	"fmt"
	"sort"

	fung "github.com/njchilds90/gofung"
)

// Args are the inputs of a registered model. Params holds the scalar
// parameters by name; missing ones take the model's defaults.
type Args struct {
	Params  map[string]float64
	Penalty Penalty
	F       fung.Matrix
	M       fung.Matrix
}

func (a Args) param(name string, def float64) float64 {
	if v, ok := a.Params[name]; ok {
		return v
	}
	return def
}

// Model describes a registered material law.
type Model struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Defaults    map[string]float64 `json:"defaults"`
	NeedsFiber  bool               `json:"needsFiber,omitempty"`
	build       func(Args) (*fung.Function, error)
}

// Build constructs the model at a.F.
func (m Model) Build(a Args) (*fung.Function, error) {
	if r, _ := a.F.Dims(); r == 0 {
		return nil, fmt.Errorf("model %s: missing argument F", m.Name)
	}
	if m.NeedsFiber {
		if r, _ := a.M.Dims(); r == 0 {
			return nil, fmt.Errorf("model %s: missing fiber tensor M", m.Name)
		}
	}
	return m.build(a)
}

var registry = map[string]Model{}

func register(m Model) { registry[m.Name] = m }

// Lookup returns the model registered under name.
func Lookup(name string) (Model, bool) {
	m, ok := registry[name]
	return m, ok
}

// Names lists the registered models in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// All returns the registered models in alphabetical order.
func All() []Model {
	out := make([]Model, 0, len(registry))
	for _, n := range Names() {
		out = append(out, registry[n])
	}
	return out
}

func init() {
	register(Model{
		Name:        "neo-hooke",
		Description: "incompressible neo-Hooke law c*(tr(F^T F) - n)",
		Defaults:    map[string]float64{"c": 1},
		build: func(a Args) (*fung.Function, error) {
			return IncompressibleNeoHooke(a.param("c", 1), a.F)
		},
	})
	register(Model{
		Name:        "modified-neo-hooke",
		Description: "incompressible neo-Hooke law on the modified first invariant",
		Defaults:    map[string]float64{"c": 1},
		build: func(a Args) (*fung.Function, error) {
			return ModifiedIncompressibleNeoHooke(a.param("c", 1), a.F)
		},
	})
	register(Model{
		Name:        "compressible-neo-hooke",
		Description: "neo-Hooke law with volumetric penalty",
		Defaults:    map[string]float64{"c": 1, "d0": 1, "d1": 1},
		build: func(a Args) (*fung.Function, error) {
			return CompressibleNeoHooke(a.param("c", 1), a.param("d0", 1), a.param("d1", 1), a.Penalty, a.F)
		},
	})
	register(Model{
		Name:        "mooney-rivlin",
		Description: "incompressible Mooney-Rivlin law c0*(i1 - n) + c1*(i2 - n)",
		Defaults:    map[string]float64{"c0": 1, "c1": 1},
		build: func(a Args) (*fung.Function, error) {
			return IncompressibleMooneyRivlin(a.param("c0", 1), a.param("c1", 1), a.F)
		},
	})
	register(Model{
		Name:        "compressible-mooney-rivlin",
		Description: "Mooney-Rivlin law with volumetric penalty",
		Defaults:    map[string]float64{"c0": 1, "c1": 1, "d0": 1, "d1": 1},
		build: func(a Args) (*fung.Function, error) {
			return CompressibleMooneyRivlin(a.param("c0", 1), a.param("c1", 1), a.param("d0", 1), a.param("d1", 1), a.Penalty, a.F)
		},
	})
	register(Model{
		Name:        "skin",
		Description: "skin tissue after Hendriks",
		Defaults:    map[string]float64{"c0": SkinC0, "c1": SkinC1},
		build: func(a Args) (*fung.Function, error) {
			return IncompressibleSkin(a.param("c0", SkinC0), a.param("c1", SkinC1), a.F)
		},
	})
	register(Model{
		Name:        "muscle",
		Description: "muscle tissue after Martins",
		Defaults:    map[string]float64{"c": MuscleC, "b": MuscleB, "A": MuscleFiberA, "a": MuscleFiberB},
		NeedsFiber:  true,
		build: func(a Args) (*fung.Function, error) {
			return IncompressibleMuscle(a.param("c", MuscleC), a.param("b", MuscleB),
				a.param("A", MuscleFiberA), a.param("a", MuscleFiberB), a.M, a.F)
		},
	})
	register(Model{
		Name:        "adipose",
		Description: "adipose tissue after Sommer and Holzapfel",
		Defaults:    map[string]float64{"cCells": AdiposeCells, "k1": AdiposeK1, "k2": AdiposeK2, "kappa": AdiposeKappa},
		NeedsFiber:  true,
		build: func(a Args) (*fung.Function, error) {
			return IncompressibleAdipose(a.param("cCells", AdiposeCells), a.param("k1", AdiposeK1),
				a.param("k2", AdiposeK2), a.param("kappa", AdiposeKappa), a.M, a.F)
		},
	})
	register(Model{
		Name:        "yield-surface",
		Description: "yield surface beta/n*i1 + j2 - offset of a stress tensor",
		Defaults:    map[string]float64{"beta": 1, "offset": 0},
		build: func(a Args) (*fung.Function, error) {
			return YieldSurface(a.param("beta", 1), a.param("offset", 0), a.F)
		},
	})
}
