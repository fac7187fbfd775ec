package value

import "math"

// Float is a 64-bit IEEE float whose N/A sentinel is a specific quiet NaN
// bit pattern (distinct from the NaN Go's math package itself produces),
// so that `math.IsNaN` alone is not sufficient to detect N/A — callers
// must use IsNA, which checks the exact bit pattern. Any other NaN that
// arises from a computation (e.g. 0.0/0.0) is normalized to this sentinel
// before it is ever stored or returned — see DivFloat.
type Float float64

// naFloatBits is a quiet NaN with a distinguishing payload, chosen so it
// differs from the default NaN (0x7FF8000000000000) any arithmetic unit
// produces naturally.
const naFloatBits uint64 = 0x7FF8000000000001

var NAFloat = Float(math.Float64frombits(naFloatBits))

// IsNA reports whether v is exactly the N/A sentinel bit pattern.
func (v Float) IsNA() bool {
	return math.Float64bits(float64(v)) == naFloatBits
}

// normalize converts any NaN (including the sentinel itself) to the
// canonical N/A sentinel, and passes through every other value (including
// +/-Inf, which are valid Floats) unchanged.
func normalize(f float64) Float {
	if math.IsNaN(f) {
		return NAFloat
	}
	return Float(f)
}

// MatchFloat implements match(a,b): same bit pattern, including matching
// N/A to N/A.
func MatchFloat(a, b Float) bool {
	return math.Float64bits(float64(a)) == math.Float64bits(float64(b))
}

// EqualFloat implements equal(a,b): NA if either operand is NA.
func EqualFloat(a, b Float) Bool {
	if a.IsNA() || b.IsNA() {
		return NABool
	}
	return BoolOf(float64(a) == float64(b))
}

// CompareFloat orders two non-NA floats: -1, 0, 1.
func CompareFloat(a, b Float) int {
	return compareOrdered(float64(a), float64(b))
}

func AddFloat(a, b Float) Float {
	if a.IsNA() || b.IsNA() {
		return NAFloat
	}
	return normalize(float64(a) + float64(b))
}

func SubFloat(a, b Float) Float {
	if a.IsNA() || b.IsNA() {
		return NAFloat
	}
	return normalize(float64(a) - float64(b))
}

func MulFloat(a, b Float) Float {
	if a.IsNA() || b.IsNA() {
		return NAFloat
	}
	return normalize(float64(a) * float64(b))
}

// DivFloat follows IEEE semantics for non-N/A operands: x/0 (x != 0)
// produces +/-Inf, a valid Float; 0/0 produces NaN, which normalize
// converts to N/A. N/A propagates from either operand as usual.
func DivFloat(a, b Float) Float {
	if a.IsNA() || b.IsNA() {
		return NAFloat
	}
	return normalize(float64(a) / float64(b))
}

func ModFloat(a, b Float) Float {
	if a.IsNA() || b.IsNA() {
		return NAFloat
	}
	return normalize(math.Mod(float64(a), float64(b)))
}

func NegFloat(a Float) Float {
	if a.IsNA() {
		return NAFloat
	}
	return Float(-float64(a))
}
