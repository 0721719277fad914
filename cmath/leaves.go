package cmath

import (
	"math"
	"strconv"

	fung "github.com/njchilds90/gofung"
)

// ============================================================
// Powers and roots
// ============================================================

// Pow is x^k. Non-negative integer exponents below three give polynomials
// with fewer than three derivatives. Negative integer exponents exclude
// zero, non-integer exponents require x ≥ 0, and x > 0 if k < 3.
func Pow(x, k float64) *Func {
	return newPow("pow", x, k, powDomain(k), func(arg string) string {
		return arg + "^" + strconv.FormatFloat(k, 'g', -1, 64)
	})
}

// Sqrt is x^(1/2) on [0,∞).
func Sqrt(x float64) *Func {
	return newPow("sqrt", x, 0.5, nonNegative("sqrt"), call("sqrt"))
}

// Cbrt is x^(1/3) on [0,∞).
func Cbrt(x float64) *Func {
	return newPow("cbrt", x, 1.0/3, nonNegative("cbrt"), call("cbrt"))
}

// Cbrt2 is x^(2/3) on [0,∞).
func Cbrt2(x float64) *Func {
	return newPow("cbrt2", x, 2.0/3, nonNegative("cbrt2"), func(arg string) string {
		return "cbrt(" + arg + ")^2"
	})
}

// OverThirdRoot is x^(-1/3) on (0,∞).
func OverThirdRoot(x float64) *Func {
	return newPow("overThirdRoot", x, -1.0/3, positive("overThirdRoot"), func(arg string) string {
		return "1/cbrt(" + arg + ")"
	})
}

// OverThirdRootSquared is x^(-2/3) on (0,∞).
func OverThirdRootSquared(x float64) *Func {
	return newPow("overThirdRootSquared", x, -2.0/3, positive("overThirdRootSquared"), func(arg string) string {
		return "1/cbrt(" + arg + ")^2"
	})
}

func newPow(name string, x, k float64, domain func(float64) error, render func(string) string) *Func {
	order := 3
	if k >= 0 && k < 3 && k == math.Trunc(k) {
		order = int(k)
	}
	eval := func(x float64) [4]float64 {
		return [4]float64{
			math.Pow(x, k),
			monomial(k, x, k-1),
			monomial(k*(k-1), x, k-2),
			monomial(k*(k-1)*(k-2), x, k-3),
		}
	}
	return newFunc(name, order, x, eval, domain, render)
}

// monomial is c·x^e with vanishing coefficients kept exact at x = 0.
func monomial(c, x, e float64) float64 {
	if c == 0 {
		return 0
	}
	return c * math.Pow(x, e)
}

func powDomain(k float64) func(float64) error {
	integer := k == math.Trunc(k)
	return func(x float64) error {
		switch {
		case !integer && k < 3 && x <= 0:
			return outside("pow", "]0,inf[", x)
		case !integer && x < 0:
			return outside("pow", "[0,inf[", x)
		case integer && k < 0 && x == 0:
			return outside("pow", "]-inf,inf[ \\ {0}", x)
		}
		return nil
	}
}

// ============================================================
// Exponentials and logarithms
// ============================================================

// Exp is e^x.
func Exp(x float64) *Func {
	return newFunc("exp", 3, x, func(x float64) [4]float64 {
		e := math.Exp(x)
		return [4]float64{e, e, e, e}
	}, nil, call("exp"))
}

// Exp2 is 2^x.
func Exp2(x float64) *Func {
	return newFunc("exp2", 3, x, func(x float64) [4]float64 {
		e := math.Exp2(x)
		return [4]float64{e, math.Ln2 * e, math.Ln2 * math.Ln2 * e, math.Ln2 * math.Ln2 * math.Ln2 * e}
	}, nil, call("exp2"))
}

// Log is the natural logarithm on (0,∞).
func Log(x float64) *Func { return newLog("ln", x, math.Log, 1) }

// Log10 is the decimal logarithm on (0,∞).
func Log10(x float64) *Func { return newLog("log10", x, math.Log10, 1/math.Ln10) }

// Log2 is the binary logarithm on (0,∞).
func Log2(x float64) *Func { return newLog("log2", x, math.Log2, 1/math.Ln2) }

func newLog(name string, x float64, log func(float64) float64, c float64) *Func {
	eval := func(x float64) [4]float64 {
		inv := 1 / x
		return [4]float64{log(x), c * inv, -c * inv * inv, 2 * c * inv * inv * inv}
	}
	domain := func(x float64) error {
		if x <= 0 {
			return outside(name, "]0,inf[", x)
		}
		return nil
	}
	return newFunc(name, 3, x, eval, domain, call(name))
}

// ============================================================
// Trigonometric functions
// ============================================================

// Sin is the sine.
func Sin(x float64) *Func {
	return newFunc("sin", 3, x, func(x float64) [4]float64 {
		s, c := math.Sincos(x)
		return [4]float64{s, c, -s, -c}
	}, nil, call("sin"))
}

// Cos is the cosine.
func Cos(x float64) *Func {
	return newFunc("cos", 3, x, func(x float64) [4]float64 {
		s, c := math.Sincos(x)
		return [4]float64{c, -s, -c, s}
	}, nil, call("cos"))
}

// Tan is the tangent.
func Tan(x float64) *Func {
	return newFunc("tan", 3, x, func(x float64) [4]float64 {
		t := math.Tan(x)
		t2 := 1 + t*t
		return [4]float64{t, t2, 2 * t * t2, 2 * t2 * (1 + 3*t*t)}
	}, nil, call("tan"))
}

// Asin is the arcsine on [-1,1].
func Asin(x float64) *Func {
	return newFunc("asin", 3, x, func(x float64) [4]float64 {
		d := arcDerivatives(x)
		return [4]float64{math.Asin(x), d[0], d[1], d[2]}
	}, closedUnit("asin"), call("asin"))
}

// Acos is the arccosine on [-1,1].
func Acos(x float64) *Func {
	return newFunc("acos", 3, x, func(x float64) [4]float64 {
		d := arcDerivatives(x)
		return [4]float64{math.Acos(x), -d[0], -d[1], -d[2]}
	}, closedUnit("acos"), call("acos"))
}

// arcDerivatives returns the first three derivatives of the arcsine.
func arcDerivatives(x float64) [3]float64 {
	s := 1 - x*x
	r := 1 / math.Sqrt(s)
	return [3]float64{r, x * r / s, (1 + 2*x*x) * r / (s * s)}
}

// ============================================================
// Error function
// ============================================================

// Erf is the Gauss error function.
func Erf(x float64) *Func {
	return newFunc("erf", 3, x, func(x float64) [4]float64 {
		d1 := 2 / math.SqrtPi * math.Exp(-x*x)
		return [4]float64{math.Erf(x), d1, -2 * x * d1, (4*x*x - 2) * d1}
	}, nil, call("erf"))
}

// ============================================================
// Chaining helpers
// ============================================================

// The ...Of helpers compose a leaf with an inner node g, e.g. SinOf(g) is
// sin(g). The leaf is moved to the value of g right away; a domain error
// there is reported by Err of the returned chain.

func PowOf(g fung.Node, k float64) *fung.Chain { return fung.Compose(Pow(1, k), g) }
func SqrtOf(g fung.Node) *fung.Chain           { return fung.Compose(Sqrt(1), g) }
func CbrtOf(g fung.Node) *fung.Chain           { return fung.Compose(Cbrt(1), g) }
func Cbrt2Of(g fung.Node) *fung.Chain          { return fung.Compose(Cbrt2(1), g) }
func ExpOf(g fung.Node) *fung.Chain            { return fung.Compose(Exp(1), g) }
func Exp2Of(g fung.Node) *fung.Chain           { return fung.Compose(Exp2(1), g) }
func LogOf(g fung.Node) *fung.Chain            { return fung.Compose(Log(1), g) }
func Log10Of(g fung.Node) *fung.Chain          { return fung.Compose(Log10(1), g) }
func Log2Of(g fung.Node) *fung.Chain           { return fung.Compose(Log2(1), g) }
func SinOf(g fung.Node) *fung.Chain            { return fung.Compose(Sin(1), g) }
func CosOf(g fung.Node) *fung.Chain            { return fung.Compose(Cos(1), g) }
func TanOf(g fung.Node) *fung.Chain            { return fung.Compose(Tan(1), g) }
func AsinOf(g fung.Node) *fung.Chain           { return fung.Compose(Asin(0), g) }
func AcosOf(g fung.Node) *fung.Chain           { return fung.Compose(Acos(0), g) }
func ErfOf(g fung.Node) *fung.Chain            { return fung.Compose(Erf(1), g) }

func OverThirdRootOf(g fung.Node) *fung.Chain {
	return fung.Compose(OverThirdRoot(1), g)
}

func OverThirdRootSquaredOf(g fung.Node) *fung.Chain {
	return fung.Compose(OverThirdRootSquared(1), g)
}

// ============================================================
// Domains and rendering
// ============================================================

func nonNegative(name string) func(float64) error {
	return func(x float64) error {
		if x < 0 {
			return outside(name, "[0,inf[", x)
		}
		return nil
	}
}

func positive(name string) func(float64) error {
	return func(x float64) error {
		if x <= 0 {
			return outside(name, "]0,inf[", x)
		}
		return nil
	}
}

func closedUnit(name string) func(float64) error {
	return func(x float64) error {
		if x < -1 || x > 1 {
			return outside(name, "[-1,1]", x)
		}
		return nil
	}
}

func call(name string) func(string) string {
	return func(arg string) string { return name + "(" + arg + ")" }
}
