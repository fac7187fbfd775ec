package pipeline

import (
	"grnxx/internal/cursor"
	"grnxx/internal/errors"
	"grnxx/internal/expr"
)

// PipelineBuilder assembles Cursor, Filter, Adjuster, Sorter, and Merger
// stages into a tree using a small operand stack, the same shape as
// expr.Builder assembles expression nodes.
type PipelineBuilder struct {
	stack []Stage
}

func NewPipelineBuilder() *PipelineBuilder {
	return &PipelineBuilder{}
}

// PushCursor starts a new pipeline from a cursor.Cursor.
func (b *PipelineBuilder) PushCursor(c cursor.Cursor) {
	b.stack = append(b.stack, &cursorStage{cur: c})
}

// PushFilter pops one stage and wraps it in a filterStage.
func (b *PipelineBuilder) PushFilter(ex *expr.Expr, offset, limit int) error {
	top, err := b.pop()
	if err != nil {
		return err
	}
	b.stack = append(b.stack, newFilterStage(top, ex, offset, limit))
	return nil
}

// PushAdjuster pops one stage and wraps it in an adjusterStage.
func (b *PipelineBuilder) PushAdjuster(ex *expr.Expr) error {
	top, err := b.pop()
	if err != nil {
		return err
	}
	b.stack = append(b.stack, newAdjusterStage(top, ex))
	return nil
}

// PushSorter pops one stage and wraps it in a sorterStage.
func (b *PipelineBuilder) PushSorter(s *Sorter) error {
	top, err := b.pop()
	if err != nil {
		return err
	}
	b.stack = append(b.stack, newSorterStage(top, s))
	return nil
}

// PushMerger pops two stages (right on top, left beneath) and combines
// them with a mergerStage.
func (b *PipelineBuilder) PushMerger(opts MergerOptions) error {
	right, err := b.pop()
	if err != nil {
		return err
	}
	left, err := b.pop()
	if err != nil {
		return err
	}
	b.stack = append(b.stack, newMergerStage(left, right, NewMerger(opts)))
	return nil
}

func (b *PipelineBuilder) pop() (Stage, error) {
	if len(b.stack) == 0 {
		return nil, errors.New(errors.InvalidOperation, "pipeline builder: stack is empty")
	}
	top := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	return top, nil
}

// Release finalizes the pipeline; exactly one stage must remain.
func (b *PipelineBuilder) Release() (Stage, error) {
	if len(b.stack) != 1 {
		return nil, errors.New(errors.InvalidOperation, "pipeline builder: expected exactly one stage, got %d", len(b.stack))
	}
	top := b.stack[0]
	b.stack = nil
	return top, nil
}
