package pipeline

import (
	"sort"

	"grnxx/internal/expr"
	"grnxx/internal/record"
	"grnxx/internal/value"
)

// Order selects ascending ("natural") or descending ("reverse") key
// order for one Sorter key.
type Order uint8

const (
	Natural Order = iota
	Reverse
)

// SortKey is one (expression, order) pair; the first key is primary, the
// rest are tiebreakers in sequence.
type SortKey struct {
	Expr  *expr.Expr
	Order Order
}

// Sorter is the stable multi-key sort kernel. N/A sorts after all valid
// values in natural order, before them in reverse order — uniformly
// across every orderable type. Offset/limit, if set, narrow the output
// to the sorted window [offset, offset+limit).
type Sorter struct {
	keys   []SortKey
	offset int
	limit  int // 0 means unlimited

	buffered []record.Record
}

// NewSorter constructs a Sorter over the given key sequence.
func NewSorter(keys []SortKey, offset, limit int) *Sorter {
	return &Sorter{keys: keys, offset: offset, limit: limit}
}

// Reset begins a new sort pass seeded with the in-progress buffer.
func (s *Sorter) Reset(records []record.Record) {
	s.buffered = append(s.buffered[:0], records...)
}

// Progress appends more records pulled from the child; an implementation
// may do incremental partitioning here, but a full final sort at Finish
// is always correct.
func (s *Sorter) Progress(chunk []record.Record) {
	s.buffered = append(s.buffered, chunk...)
}

// Finish produces the final sorted (and offset/limit-windowed) output.
func (s *Sorter) Finish() ([]record.Record, error) {
	keyed := make([][]value.Datum, len(s.keys))
	for k, key := range s.keys {
		col := make([]value.Datum, len(s.buffered))
		if err := key.Expr.Evaluate(s.buffered, col); err != nil {
			return nil, err
		}
		keyed[k] = col
	}

	order := make([]int, len(s.buffered))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return s.less(keyed, order[a], order[b])
	})

	sorted := make([]record.Record, len(order))
	for i, idx := range order {
		sorted[i] = s.buffered[idx]
	}

	return window(sorted, s.offset, s.limit), nil
}

func (s *Sorter) less(keyed [][]value.Datum, a, b int) bool {
	for k := range s.keys {
		c := compareKey(keyed[k][a], keyed[k][b])
		if c == 0 {
			continue
		}
		if s.keys[k].Order == Reverse {
			return c > 0
		}
		return c < 0
	}
	return false
}

// compareKey orders two Datums with the uniform N/A-last rule: N/A is
// greater than every valid value of its type; two N/As compare equal.
func compareKey(a, b value.Datum) int {
	if a.IsNA() && b.IsNA() {
		return 0
	}
	if a.IsNA() {
		return 1
	}
	if b.IsNA() {
		return -1
	}
	if a.Type() == value.TypeBool {
		av, bv := a.AsBool(), b.AsBool()
		switch {
		case av == bv:
			return 0
		case av == value.False:
			return -1
		default:
			return 1
		}
	}
	return value.CompareDatum(a, b)
}

func window(records []record.Record, offset, limit int) []record.Record {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(records) {
		return nil
	}
	end := len(records)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return records[offset:end]
}

// sorterStage buffers everything from its child, then sorts. Mirrors
// the spec's reset/progress/finish protocol: the first ReadNext call
// drains the child and runs Finish once; subsequent reads serve the
// buffered window incrementally, returning 0 once exhausted.
type sorterStage struct {
	child  Stage
	sorter *Sorter

	ready  bool
	output []record.Record
	pos    int
}

func newSorterStage(child Stage, s *Sorter) *sorterStage {
	return &sorterStage{child: child, sorter: s}
}

func (s *sorterStage) materialize() error {
	if s.ready {
		return nil
	}
	all, err := ReadAll(s.child)
	if err != nil {
		return err
	}
	s.sorter.Reset(nil)
	s.sorter.Progress(all)
	out, err := s.sorter.Finish()
	if err != nil {
		return err
	}
	s.output = out
	s.ready = true
	return nil
}

func (s *sorterStage) ReadNext(out []record.Record) (int, error) {
	if err := s.materialize(); err != nil {
		return 0, err
	}
	n := copy(out, s.output[s.pos:])
	s.pos += n
	return n, nil
}
