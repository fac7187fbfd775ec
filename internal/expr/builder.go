package expr

import (
	"grnxx/internal/errors"
	"grnxx/internal/store"
	"grnxx/internal/value"
)

// Resolver looks up a table by name, used to follow reference columns
// into their target table when a subexpression begins.
type Resolver func(tableName string) (*store.Table, bool)

type scope struct {
	table *store.Table
	stack []Node
	refIn Node // the reference-column node this scope was entered through
}

// Builder is the stack-based, post-order Expression constructor: callers
// PushConstant/PushColumn/PushRowID/PushScore, then PushOperator pops 1
// or 2 operands and pushes the resulting node. BeginSubexpression/
// EndSubexpression nest a scope over a reference column's target table.
type Builder struct {
	resolve Resolver
	scopes  []*scope
}

// NewBuilder starts building an expression rooted at table.
func NewBuilder(table *store.Table, resolve Resolver) *Builder {
	return &Builder{
		resolve: resolve,
		scopes:  []*scope{{table: table}},
	}
}

func (b *Builder) top() *scope { return b.scopes[len(b.scopes)-1] }

func (b *Builder) push(n Node) { s := b.top(); s.stack = append(s.stack, n) }

func (b *Builder) pop() (Node, error) {
	s := b.top()
	if len(s.stack) == 0 {
		return nil, errors.New(errors.InvalidOperation, "expression builder: stack underflow")
	}
	n := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	return n, nil
}

// PushConstant pushes a Constant<T> node yielding d for every record.
func (b *Builder) PushConstant(d value.Datum) {
	b.push(&constantNode{val: d})
}

// PushColumn pushes a Column<T> node reading name from the current
// scope's table.
func (b *Builder) PushColumn(name string) error {
	col, ok := b.top().table.Column(name)
	if !ok {
		return errors.New(errors.NotFound, "expression builder: no column %q", name).WithName(name)
	}
	b.push(&columnNode{col: col})
	return nil
}

// PushRowId pushes a RowId pseudo-column node.
func (b *Builder) PushRowId() { b.push(&rowIDNode{}) }

// PushScore pushes a Score pseudo-column node.
func (b *Builder) PushScore() { b.push(&scoreNode{}) }

// PushOperator pops op's operands (1 or 2) and pushes the resulting
// node, failing INVALID_OPERAND if the popped types don't satisfy op's
// type rule.
func (b *Builder) PushOperator(op Op) error {
	if op.IsUnary() {
		operand, err := b.pop()
		if err != nil {
			return err
		}
		typ, err := checkUnary(op, operand.Type())
		if err != nil {
			return err
		}
		b.push(&unaryNode{op: op, operand: operand, typ: typ})
		return nil
	}

	right, err := b.pop()
	if err != nil {
		return err
	}
	left, err := b.pop()
	if err != nil {
		return err
	}
	typ, err := checkBinary(op, left.Type(), right.Type())
	if err != nil {
		return err
	}
	b.push(&binaryNode{op: op, left: left, right: right, typ: typ})
	return nil
}

// BeginSubexpression pops the top node (which must be a reference
// column, Int or Vector<Int>) and opens a new scope over its target
// table; subsequent PushColumn calls resolve against that table.
func (b *Builder) BeginSubexpression() error {
	refNode, err := b.pop()
	if err != nil {
		return err
	}
	col, ok := refNode.(*columnNode)
	if !ok || !col.col.IsReference() {
		return errors.New(errors.InvalidOperation, "expression builder: begin_subexpression requires a reference column on top of the stack")
	}
	target := col.col.ResolvedReferenceTable()
	if target == nil && b.resolve != nil {
		target, _ = b.resolve(col.col.ReferenceTable())
	}
	if target == nil {
		return errors.New(errors.NotFound, "expression builder: cannot resolve reference table %q", col.col.ReferenceTable())
	}
	b.scopes = append(b.scopes, &scope{table: target, refIn: refNode})
	return nil
}

// EndSubexpression collapses the inner scope's single root node into a
// Dereference node pushed onto the outer scope.
func (b *Builder) EndSubexpression() error {
	if len(b.scopes) < 2 {
		return errors.New(errors.InvalidOperation, "expression builder: end_subexpression with no open subexpression")
	}
	inner := b.scopes[len(b.scopes)-1]
	if len(inner.stack) != 1 {
		return errors.New(errors.InvalidOperation, "expression builder: subexpression must reduce to exactly one node")
	}
	b.scopes = b.scopes[:len(b.scopes)-1]

	innerRoot := inner.stack[0]
	derefType := innerRoot.Type()
	if col, ok := inner.refIn.(*columnNode); ok && col.col.Type() == value.TypeVectorInt {
		derefType = value.VectorOf(innerRoot.Type())
	}
	b.push(&dereferenceNode{ref: inner.refIn, inner: innerRoot, typ: derefType})
	return nil
}

// Release requires the (outermost) stack to hold exactly one node and
// returns it as the finished Expression.
func (b *Builder) Release() (*Expr, error) {
	if len(b.scopes) != 1 {
		return nil, errors.New(errors.InvalidOperation, "expression builder: release with an open subexpression")
	}
	s := b.top()
	if len(s.stack) != 1 {
		return nil, errors.New(errors.InvalidOperation, "expression builder: release requires exactly one node on the stack, got %d", len(s.stack))
	}
	return &Expr{root: s.stack[0], table: s.table}, nil
}
