package expr

import (
	"grnxx/internal/errors"
	"grnxx/internal/value"
)

// checkUnary validates a unary operator's operand type and returns the
// node's result type, per §4.7's type rules. Casts accept any operand
// type, since every Datum has a defined force_X coercion.
func checkUnary(op Op, t value.DataType) (value.DataType, error) {
	switch op {
	case OpNot:
		if t == value.TypeBool {
			return value.TypeBool, nil
		}
	case OpBitwiseNot:
		if t == value.TypeInt {
			return value.TypeInt, nil
		}
	case OpPos, OpNeg:
		if t == value.TypeInt || t == value.TypeFloat {
			return t, nil
		}
	case OpCastBool:
		return value.TypeBool, nil
	case OpCastInt:
		return value.TypeInt, nil
	case OpCastFloat:
		return value.TypeFloat, nil
	case OpCastGeoPoint:
		return value.TypeGeoPoint, nil
	case OpCastText:
		return value.TypeText, nil
	}
	return 0, errors.New(errors.InvalidOperand, "operator %s: invalid operand type %s", op, t)
}

// checkBinary validates a binary operator's two operand types and
// returns the node's result type, per the §4.7 type table.
func checkBinary(op Op, lt, rt value.DataType) (value.DataType, error) {
	invalid := func() (value.DataType, error) {
		return 0, errors.New(errors.InvalidOperand, "operator %s: invalid operand types (%s, %s)", op, lt, rt)
	}

	switch op {
	case OpAnd, OpOr, OpXor:
		if lt == value.TypeBool && rt == value.TypeBool {
			return value.TypeBool, nil
		}
		return invalid()

	case OpEqual, OpNotEqual:
		if lt == rt {
			return value.TypeBool, nil
		}
		return invalid()

	case OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
		if lt == rt && isOrderable(lt) {
			return value.TypeBool, nil
		}
		return invalid()

	case OpBitwiseAnd, OpBitwiseOr, OpBitwiseXor:
		if lt == rt && (lt == value.TypeBool || lt == value.TypeInt) {
			return lt, nil
		}
		return invalid()

	case OpAdd, OpSub, OpMul, OpDiv:
		if lt == rt && (lt == value.TypeInt || lt == value.TypeFloat) {
			return lt, nil
		}
		return invalid()

	case OpMod:
		if lt == value.TypeInt && rt == value.TypeInt {
			return value.TypeInt, nil
		}
		return invalid()

	case OpSubscript:
		if lt == value.TypeText && rt == value.TypeInt {
			return value.TypeInt, nil
		}
		if lt.IsVector() && rt == value.TypeInt {
			return lt.Elem(), nil
		}
		return invalid()

	case OpStartsWith, OpEndsWith, OpContains:
		if lt == value.TypeText && rt == value.TypeText {
			return value.TypeBool, nil
		}
		return invalid()
	}
	return invalid()
}

func isOrderable(t value.DataType) bool {
	return t == value.TypeInt || t == value.TypeFloat || t == value.TypeText || t == value.TypeGeoPoint
}
