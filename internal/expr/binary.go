package expr

import "grnxx/internal/value"

// evalBinary dispatches a binary operator's two already-evaluated
// operands. Type correctness was established at PushOperator time, so
// this only needs to route to the right value-package primitive.
func evalBinary(op Op, l, r value.Datum) value.Datum {
	switch op {
	case OpAnd:
		return value.FromBool(value.And(l.AsBool(), r.AsBool()))
	case OpOr:
		return value.FromBool(value.Or(l.AsBool(), r.AsBool()))
	case OpXor:
		return value.FromBool(value.Xor(l.AsBool(), r.AsBool()))
	case OpEqual:
		return value.FromBool(value.EqualDatum(l, r))
	case OpNotEqual:
		return value.FromBool(value.Not(value.EqualDatum(l, r)))
	case OpLess:
		return compareBool(l, r, func(c int) bool { return c < 0 })
	case OpLessEqual:
		return compareBool(l, r, func(c int) bool { return c <= 0 })
	case OpGreater:
		return compareBool(l, r, func(c int) bool { return c > 0 })
	case OpGreaterEqual:
		return compareBool(l, r, func(c int) bool { return c >= 0 })
	case OpBitwiseAnd:
		return bitwise(l, r, value.BitwiseAnd, value.BitwiseAndInt)
	case OpBitwiseOr:
		return bitwise(l, r, value.BitwiseOr, value.BitwiseOrInt)
	case OpBitwiseXor:
		return bitwise(l, r, value.BitwiseXor, value.BitwiseXorInt)
	case OpAdd:
		return arith(l, r, value.AddInt, value.AddFloat)
	case OpSub:
		return arith(l, r, value.SubInt, value.SubFloat)
	case OpMul:
		return arith(l, r, value.MulInt, value.MulFloat)
	case OpDiv:
		return arith(l, r, value.DivInt, value.DivFloat)
	case OpMod:
		return value.FromInt(value.ModInt(l.AsInt(), r.AsInt()))
	case OpSubscript:
		return subscript(l, r)
	case OpStartsWith:
		return value.FromBool(value.StartsWith(l.AsText(), r.AsText()))
	case OpEndsWith:
		return value.FromBool(value.EndsWith(l.AsText(), r.AsText()))
	case OpContains:
		return value.FromBool(value.Contains(l.AsText(), r.AsText()))
	default:
		return value.NA(value.TypeBool)
	}
}

func compareBool(l, r value.Datum, accept func(int) bool) value.Datum {
	if l.IsNA() || r.IsNA() {
		return value.FromBool(value.NABool)
	}
	return value.FromBool(value.BoolOf(accept(value.CompareDatum(l, r))))
}

func bitwise(l, r value.Datum, onBool func(a, b value.Bool) value.Bool, onInt func(a, b value.Int) value.Int) value.Datum {
	if l.Type() == value.TypeBool {
		return value.FromBool(onBool(l.AsBool(), r.AsBool()))
	}
	return value.FromInt(onInt(l.AsInt(), r.AsInt()))
}

func arith(l, r value.Datum, onInt func(a, b value.Int) value.Int, onFloat func(a, b value.Float) value.Float) value.Datum {
	if l.Type() == value.TypeInt {
		return value.FromInt(onInt(l.AsInt(), r.AsInt()))
	}
	return value.FromFloat(onFloat(l.AsFloat(), r.AsFloat()))
}

func subscript(l, r value.Datum) value.Datum {
	idx := r.AsInt()
	switch l.Type() {
	case value.TypeText:
		return value.FromInt(value.ByteAt(l.AsText(), idx))
	case value.TypeVectorBool:
		return value.FromBool(value.At(l.AsVecBool(), idx, value.NABool))
	case value.TypeVectorInt:
		return value.FromInt(value.At(l.AsVecInt(), idx, value.NAInt))
	case value.TypeVectorFloat:
		return value.FromFloat(value.At(l.AsVecFloat(), idx, value.NAFloat))
	case value.TypeVectorGeoPoint:
		return value.FromGeoPoint(value.At(l.AsVecGeoPoint(), idx, value.NAGeoPoint))
	case value.TypeVectorText:
		return value.FromText(value.At(l.AsVecText(), idx, value.NAText))
	default:
		return value.NA(value.TypeInt)
	}
}
