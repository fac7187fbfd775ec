// Package expr implements the stack-built typed Expression engine: a
// closed set of node kinds (per spec §9's recommendation — one struct per
// kind behind a small unexported-method Node interface, not an open type
// hierarchy),
// three evaluation modes (filter/adjust/evaluate), and subexpression/
// dereference support for reference columns.
package expr

import (
	"grnxx/internal/record"
	"grnxx/internal/store"
	"grnxx/internal/value"
)

// NodeKind identifies one member of the closed set of Expression node
// kinds.
type NodeKind uint8

const (
	NodeConstant NodeKind = iota
	NodeColumn
	NodeRowID
	NodeScore
	NodeUnary
	NodeBinary
	NodeDereference
)

// evalCtx is the per-record evaluation environment: which table the
// current scope resolves columns against (changed by Dereference) and
// which record is being evaluated.
type evalCtx struct {
	table *store.Table
	rec   record.Record
}

// Node is the closed interface every node kind implements; the
// unexported eval method keeps the set of kinds closed to this package.
// Kind() reports which member of the set a node is.
type Node interface {
	Kind() NodeKind
	Type() value.DataType
	eval(ctx evalCtx) value.Datum
}

// --- Constant ---

type constantNode struct {
	val value.Datum
}

func (n *constantNode) Kind() NodeKind          { return NodeConstant }
func (n *constantNode) Type() value.DataType    { return n.val.Type() }
func (n *constantNode) eval(evalCtx) value.Datum { return n.val }

// --- Column ---

type columnNode struct {
	col *store.Column
}

func (n *columnNode) Kind() NodeKind       { return NodeColumn }
func (n *columnNode) Type() value.DataType { return n.col.Type() }
func (n *columnNode) eval(ctx evalCtx) value.Datum {
	return n.col.Get(ctx.rec.RowID)
}

// --- RowId / Score pseudo-columns ---

type rowIDNode struct{}

func (n *rowIDNode) Kind() NodeKind                  { return NodeRowID }
func (n *rowIDNode) Type() value.DataType            { return value.TypeInt }
func (n *rowIDNode) eval(ctx evalCtx) value.Datum    { return value.FromInt(ctx.rec.RowID) }

type scoreNode struct{}

func (n *scoreNode) Kind() NodeKind               { return NodeScore }
func (n *scoreNode) Type() value.DataType         { return value.TypeFloat }
func (n *scoreNode) eval(ctx evalCtx) value.Datum { return value.FromFloat(ctx.rec.Score) }

// --- Unary ---

type unaryNode struct {
	op      Op
	operand Node
	typ     value.DataType
}

func (n *unaryNode) Kind() NodeKind       { return NodeUnary }
func (n *unaryNode) Type() value.DataType { return n.typ }
func (n *unaryNode) eval(ctx evalCtx) value.Datum {
	v := n.operand.eval(ctx)
	switch n.op {
	case OpNot:
		return value.FromBool(value.Not(v.AsBool()))
	case OpBitwiseNot:
		return value.FromInt(value.BitwiseNotInt(v.AsInt()))
	case OpPos:
		return v
	case OpNeg:
		if v.Type() == value.TypeInt {
			return value.FromInt(value.NegInt(v.AsInt()))
		}
		return value.FromFloat(value.NegFloat(v.AsFloat()))
	case OpCastBool:
		return value.FromBool(v.ForceBool())
	case OpCastInt:
		return value.FromInt(v.ForceInt())
	case OpCastFloat:
		return value.FromFloat(v.ForceFloat())
	case OpCastText:
		return value.FromText(v.ForceText())
	case OpCastGeoPoint:
		if v.Type() == value.TypeGeoPoint {
			return v
		}
		return value.NA(value.TypeGeoPoint)
	default:
		return value.NA(n.typ)
	}
}

// --- Binary ---

type binaryNode struct {
	op          Op
	left, right Node
	typ         value.DataType
}

func (n *binaryNode) Kind() NodeKind       { return NodeBinary }
func (n *binaryNode) Type() value.DataType { return n.typ }
func (n *binaryNode) eval(ctx evalCtx) value.Datum {
	l := n.left.eval(ctx)
	r := n.right.eval(ctx)
	return evalBinary(n.op, l, r)
}

// --- Dereference ---

type dereferenceNode struct {
	ref   Node // reference column node, evaluated in the outer scope
	inner Node // root of the subexpression, evaluated in the target scope
	typ   value.DataType
}

func (n *dereferenceNode) Kind() NodeKind       { return NodeDereference }
func (n *dereferenceNode) Type() value.DataType { return n.typ }
func (n *dereferenceNode) eval(ctx evalCtx) value.Datum {
	refVal := n.ref.eval(ctx)
	if refVal.IsNA() {
		return value.NA(n.typ)
	}
	targetTable := columnRefTable(n.ref)
	if targetTable == nil {
		return value.NA(n.typ)
	}
	switch refVal.Type() {
	case value.TypeVectorInt:
		return n.evalVector(targetTable, refVal.AsVecInt())
	default:
		targetRow := refVal.AsInt()
		if !targetTable.TestRow(targetRow) {
			return value.NA(n.typ)
		}
		inner := evalCtx{table: targetTable, rec: record.New(targetRow)}
		return n.inner.eval(inner)
	}
}

// evalVector handles dereference through a Vector<Int> reference column:
// inner is evaluated once per referenced row id, in order, and the
// per-row results are assembled into a Vector of inner's scalar type. A
// row id that is N/A or not live in the target table yields that
// element's N/A, matching the scalar case's N/A-on-missing-row rule.
func (n *dereferenceNode) evalVector(targetTable *store.Table, rows value.VecInt) value.Datum {
	if rows.IsNA() {
		return value.NA(n.typ)
	}
	size := rows.Size()
	at := func(i value.Int) (value.Datum, bool) {
		row := value.At(rows, i, value.NAInt)
		if row.IsNA() || !targetTable.TestRow(row) {
			return value.Datum{}, false
		}
		return n.inner.eval(evalCtx{table: targetTable, rec: record.New(row)}), true
	}

	switch n.inner.Type() {
	case value.TypeBool:
		elems := make([]value.Bool, size)
		for i := value.Int(0); i < size; i++ {
			if d, ok := at(i); ok {
				elems[i] = d.AsBool()
			} else {
				elems[i] = value.NABool
			}
		}
		return value.FromVecBool(value.NewVector(elems))
	case value.TypeInt:
		elems := make([]value.Int, size)
		for i := value.Int(0); i < size; i++ {
			if d, ok := at(i); ok {
				elems[i] = d.AsInt()
			} else {
				elems[i] = value.NAInt
			}
		}
		return value.FromVecInt(value.NewVector(elems))
	case value.TypeFloat:
		elems := make([]value.Float, size)
		for i := value.Int(0); i < size; i++ {
			if d, ok := at(i); ok {
				elems[i] = d.AsFloat()
			} else {
				elems[i] = value.NAFloat
			}
		}
		return value.FromVecFloat(value.NewVector(elems))
	case value.TypeGeoPoint:
		elems := make([]value.GeoPoint, size)
		for i := value.Int(0); i < size; i++ {
			if d, ok := at(i); ok {
				elems[i] = d.AsGeoPoint()
			} else {
				elems[i] = value.NAGeoPoint
			}
		}
		return value.FromVecGeoPoint(value.NewVector(elems))
	case value.TypeText:
		elems := make([]value.Text, size)
		for i := value.Int(0); i < size; i++ {
			if d, ok := at(i); ok {
				elems[i] = d.AsText()
			} else {
				elems[i] = value.NAText
			}
		}
		return value.FromVecText(value.NewVector(elems))
	default:
		return value.NA(n.typ)
	}
}

// columnRefTable recovers the store.Table a reference column node points
// into: the *store.Table the underlying *store.Column holds. It returns
// nil if n is not a column node or the column is not a reference column.
func columnRefTable(n Node) *store.Table {
	cn, ok := n.(*columnNode)
	if !ok {
		return nil
	}
	return cn.col.ResolvedReferenceTable()
}
