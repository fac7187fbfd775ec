package value

import (
	"fmt"
	"math"
	"strconv"
)

// Datum is a tagged union carrying a DataType and one value of that type.
// Its sole purpose is to pass typed payloads across the boundary of
// untyped APIs: Column.Set/Get, Expression.PushConstant, Table.InsertRow's
// key argument.
type Datum struct {
	typ DataType

	b  Bool
	i  Int
	f  Float
	g  GeoPoint
	t  Text
	vb VecBool
	vi VecInt
	vf VecFloat
	vg VecGeoPoint
	vt VecText
}

// Type reports the Datum's DataType.
func (d Datum) Type() DataType { return d.typ }

func FromBool(v Bool) Datum         { return Datum{typ: TypeBool, b: v} }
func FromInt(v Int) Datum           { return Datum{typ: TypeInt, i: v} }
func FromFloat(v Float) Datum       { return Datum{typ: TypeFloat, f: v} }
func FromGeoPoint(v GeoPoint) Datum { return Datum{typ: TypeGeoPoint, g: v} }
func FromText(v Text) Datum         { return Datum{typ: TypeText, t: v} }
func FromVecBool(v VecBool) Datum         { return Datum{typ: TypeVectorBool, vb: v} }
func FromVecInt(v VecInt) Datum           { return Datum{typ: TypeVectorInt, vi: v} }
func FromVecFloat(v VecFloat) Datum       { return Datum{typ: TypeVectorFloat, vf: v} }
func FromVecGeoPoint(v VecGeoPoint) Datum { return Datum{typ: TypeVectorGeoPoint, vg: v} }
func FromVecText(v VecText) Datum         { return Datum{typ: TypeVectorText, vt: v} }

// NA constructs the N/A value of the given DataType.
func NA(t DataType) Datum {
	switch t {
	case TypeBool:
		return FromBool(NABool)
	case TypeInt:
		return FromInt(NAInt)
	case TypeFloat:
		return FromFloat(NAFloat)
	case TypeGeoPoint:
		return FromGeoPoint(NAGeoPoint)
	case TypeText:
		return FromText(NAText)
	case TypeVectorBool:
		return FromVecBool(NAVector[Bool]())
	case TypeVectorInt:
		return FromVecInt(NAVector[Int]())
	case TypeVectorFloat:
		return FromVecFloat(NAVector[Float]())
	case TypeVectorGeoPoint:
		return FromVecGeoPoint(NAVector[GeoPoint]())
	case TypeVectorText:
		return FromVecText(NAVector[Text]())
	default:
		panic(fmt.Sprintf("value: unknown DataType %d", uint8(t)))
	}
}

// IsNA reports whether the Datum holds its type's N/A value.
func (d Datum) IsNA() bool {
	switch d.typ {
	case TypeBool:
		return d.b.IsNA()
	case TypeInt:
		return d.i.IsNA()
	case TypeFloat:
		return d.f.IsNA()
	case TypeGeoPoint:
		return d.g.IsNA()
	case TypeText:
		return d.t.IsNA()
	case TypeVectorBool:
		return d.vb.IsNA()
	case TypeVectorInt:
		return d.vi.IsNA()
	case TypeVectorFloat:
		return d.vf.IsNA()
	case TypeVectorGeoPoint:
		return d.vg.IsNA()
	case TypeVectorText:
		return d.vt.IsNA()
	default:
		return true
	}
}

// AsBool, AsInt, ... assume the tag matches; they panic otherwise. Callers
// that built the Datum through Column.Get or the matching From* function
// know the tag statically.
func (d Datum) AsBool() Bool { d.mustBe(TypeBool); return d.b }
func (d Datum) AsInt() Int   { d.mustBe(TypeInt); return d.i }
func (d Datum) AsFloat() Float { d.mustBe(TypeFloat); return d.f }
func (d Datum) AsGeoPoint() GeoPoint { d.mustBe(TypeGeoPoint); return d.g }
func (d Datum) AsText() Text { d.mustBe(TypeText); return d.t }
func (d Datum) AsVecBool() VecBool { d.mustBe(TypeVectorBool); return d.vb }
func (d Datum) AsVecInt() VecInt { d.mustBe(TypeVectorInt); return d.vi }
func (d Datum) AsVecFloat() VecFloat { d.mustBe(TypeVectorFloat); return d.vf }
func (d Datum) AsVecGeoPoint() VecGeoPoint { d.mustBe(TypeVectorGeoPoint); return d.vg }
func (d Datum) AsVecText() VecText { d.mustBe(TypeVectorText); return d.vt }

func (d Datum) mustBe(t DataType) {
	if d.typ != t {
		panic(fmt.Sprintf("value: Datum holds %s, not %s", d.typ, t))
	}
}

// ForceInt coerces d to Int using the type-defined rules: Bool
// true/false/NA -> 1/0/NA, Float truncates toward zero (NA/Inf -> NA),
// Text parses a base-10 integer (failure -> NA), GeoPoint/vectors have no
// defined coercion and yield NA.
func (d Datum) ForceInt() Int {
	switch d.typ {
	case TypeInt:
		return d.i
	case TypeBool:
		if d.b.IsNA() {
			return NAInt
		}
		if d.b == True {
			return 1
		}
		return 0
	case TypeFloat:
		if d.f.IsNA() || math.IsInf(float64(d.f), 0) {
			return NAInt
		}
		return Int(int64(d.f))
	case TypeText:
		if d.t.IsNA() {
			return NAInt
		}
		n, err := strconv.ParseInt(d.t.String(), 10, 64)
		if err != nil {
			return NAInt
		}
		return Int(n)
	default:
		return NAInt
	}
}

// ForceFloat coerces d to Float: Int converts exactly, Bool -> 1.0/0.0/NA,
// Text parses a float (failure -> NA), everything else -> NA.
func (d Datum) ForceFloat() Float {
	switch d.typ {
	case TypeFloat:
		return d.f
	case TypeInt:
		if d.i.IsNA() {
			return NAFloat
		}
		return Float(float64(d.i))
	case TypeBool:
		if d.b.IsNA() {
			return NAFloat
		}
		if d.b == True {
			return 1.0
		}
		return 0.0
	case TypeText:
		if d.t.IsNA() {
			return NAFloat
		}
		f, err := strconv.ParseFloat(d.t.String(), 64)
		if err != nil {
			return NAFloat
		}
		return normalize(f)
	default:
		return NAFloat
	}
}

// ForceText renders a Bool, Int, Float, or Text d as Text using a
// canonical textual form; NA inputs, GeoPoints, and vectors produce NA
// text.
func (d Datum) ForceText() Text {
	if d.IsNA() {
		return NAText
	}
	switch d.typ {
	case TypeText:
		return d.t
	case TypeBool:
		return NewText(d.b.String())
	case TypeInt:
		return NewText(strconv.FormatInt(int64(d.i), 10))
	case TypeFloat:
		return NewText(strconv.FormatFloat(float64(d.f), 'g', -1, 64))
	default:
		return NAText
	}
}

// ForceBool coerces d to Bool: Int/Float nonzero -> true, zero -> false,
// NA -> NA; Text "true"/"false" in lower, upper, or title case
// ("true", "TRUE", "True"); everything else NA.
func (d Datum) ForceBool() Bool {
	switch d.typ {
	case TypeBool:
		return d.b
	case TypeInt:
		if d.i.IsNA() {
			return NABool
		}
		return BoolOf(d.i != 0)
	case TypeFloat:
		if d.f.IsNA() {
			return NABool
		}
		return BoolOf(d.f != 0)
	case TypeText:
		switch d.t.String() {
		case "true", "TRUE", "True":
			return True
		case "false", "FALSE", "False":
			return False
		default:
			return NABool
		}
	default:
		return NABool
	}
}

// CompareDatum orders two non-NA Datums of the same orderable type (Int,
// Float, GeoPoint, Text — the LESS family's supported operand types).
// It panics on mismatched types or a type with no ordering; it does not
// check IsNA, so callers must exclude N/A operands first.
func CompareDatum(a, b Datum) int {
	if a.typ != b.typ {
		panic(fmt.Sprintf("value: cannot compare %s with %s", a.typ, b.typ))
	}
	switch a.typ {
	case TypeInt:
		return CompareInt(a.i, b.i)
	case TypeFloat:
		return CompareFloat(a.f, b.f)
	case TypeGeoPoint:
		return CompareGeoPoint(a.g, b.g)
	case TypeText:
		return CompareText(a.t, b.t)
	default:
		panic(fmt.Sprintf("value: %s has no defined ordering", a.typ))
	}
}

// EqualDatum implements the EQUAL operator across any matching pair of
// types in the closed universe, dispatching to the type-specific equal
// function. NA propagates per the usual rule.
func EqualDatum(a, b Datum) Bool {
	if a.typ != b.typ {
		return NABool
	}
	switch a.typ {
	case TypeBool:
		return EqualBool(a.b, b.b)
	case TypeInt:
		return EqualInt(a.i, b.i)
	case TypeFloat:
		return EqualFloat(a.f, b.f)
	case TypeGeoPoint:
		return EqualGeoPoint(a.g, b.g)
	case TypeText:
		return EqualText(a.t, b.t)
	case TypeVectorBool:
		return EqualVector(a.vb, b.vb, EqualBool)
	case TypeVectorInt:
		return EqualVector(a.vi, b.vi, EqualInt)
	case TypeVectorFloat:
		return EqualVector(a.vf, b.vf, EqualFloat)
	case TypeVectorGeoPoint:
		return EqualVector(a.vg, b.vg, EqualGeoPoint)
	case TypeVectorText:
		return EqualVector(a.vt, b.vt, EqualText)
	default:
		return NABool
	}
}

// MatchDatum implements match(a,b) across the closed universe.
func MatchDatum(a, b Datum) bool {
	if a.typ != b.typ {
		return false
	}
	switch a.typ {
	case TypeBool:
		return MatchBool(a.b, b.b)
	case TypeInt:
		return MatchInt(a.i, b.i)
	case TypeFloat:
		return MatchFloat(a.f, b.f)
	case TypeGeoPoint:
		return MatchGeoPoint(a.g, b.g)
	case TypeText:
		return MatchText(a.t, b.t)
	case TypeVectorBool:
		return MatchVector(a.vb, b.vb, MatchBool)
	case TypeVectorInt:
		return MatchVector(a.vi, b.vi, MatchInt)
	case TypeVectorFloat:
		return MatchVector(a.vf, b.vf, MatchFloat)
	case TypeVectorGeoPoint:
		return MatchVector(a.vg, b.vg, MatchGeoPoint)
	case TypeVectorText:
		return MatchVector(a.vt, b.vt, MatchText)
	default:
		return false
	}
}
