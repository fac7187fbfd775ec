package pipeline

import (
	"grnxx/internal/cursor"
	"grnxx/internal/expr"
	"grnxx/internal/record"
)

// filterStage pulls up to one block from its child, applies a Bool-typed
// expression, compacts, and applies offset/limit pushdown (offset
// consumed from the front of each block, total output capped at limit).
// It loops until the output block has >= the caller's requested size or
// the child is drained. Records that survive filtering but don't fit in
// the caller's buffer carry over to the next ReadNext call.
type filterStage struct {
	child  Stage
	expr   *expr.Expr
	offset int
	limit  int // -1 means unlimited
	done   bool

	pending []record.Record
}

func newFilterStage(child Stage, ex *expr.Expr, offset, limit int) *filterStage {
	l := -1
	if limit > 0 {
		l = limit
	}
	return &filterStage{child: child, expr: ex, offset: offset, limit: l}
}

func (s *filterStage) ReadNext(out []record.Record) (int, error) {
	n := 0
	buf := make([]record.Record, cursor.ReadBlockSize)

	drain := func() {
		for n < len(out) && len(s.pending) > 0 {
			out[n] = s.pending[0]
			s.pending = s.pending[1:]
			n++
		}
	}

	drain()
	for n < len(out) && !s.done {
		if s.limit == 0 {
			s.done = true
			break
		}
		c, err := s.child.ReadNext(buf)
		if err != nil {
			return n, err
		}
		if c < len(buf) {
			s.done = true
		}
		if c == 0 {
			break
		}
		filtered, err := s.expr.Filter(buf[:c])
		if err != nil {
			return n, err
		}
		for _, rec := range filtered {
			if s.offset > 0 {
				s.offset--
				continue
			}
			if s.limit == 0 {
				break
			}
			s.pending = append(s.pending, rec)
			if s.limit > 0 {
				s.limit--
			}
		}
		drain()
	}
	return n, nil
}
