package pipeline

import (
	"grnxx/internal/expr"
	"grnxx/internal/record"
)

// adjusterStage pulls one block, runs adjust on it (overwriting each
// record's score), and emits it as-is.
type adjusterStage struct {
	child Stage
	expr  *expr.Expr
}

func newAdjusterStage(child Stage, ex *expr.Expr) *adjusterStage {
	return &adjusterStage{child: child, expr: ex}
}

func (s *adjusterStage) ReadNext(out []record.Record) (int, error) {
	n, err := s.child.ReadNext(out)
	if err != nil {
		return n, err
	}
	if n == 0 {
		return 0, nil
	}
	if err := s.expr.Adjust(out[:n]); err != nil {
		return n, err
	}
	return n, nil
}
