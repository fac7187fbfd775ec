package expr

import (
	"grnxx/internal/cursor"
	"grnxx/internal/errors"
	"grnxx/internal/record"
	"grnxx/internal/store"
	"grnxx/internal/value"
)

// BlockSize is the batch size the engine evaluates in; it is a
// latency/throughput tradeoff and has no effect on logical output.
const BlockSize = cursor.ReadBlockSize

// Expr is a finished, typed expression tree: one Release()d Builder's
// root node. It supports all three evaluation modes.
type Expr struct {
	root  Node
	table *store.Table
}

// Type returns the expression's static result type.
func (e *Expr) Type() value.DataType { return e.root.Type() }

func (e *Expr) evalOne(rec record.Record) value.Datum {
	return e.root.eval(evalCtx{table: e.table, rec: rec})
}

// Filter evaluates a Bool-typed expression and retains only the records
// for which it yields true (not false, not N/A), preserving input
// order. It fails INVALID_OPERATION if the expression is not Bool-typed.
// Processes in blocks of BlockSize, though the result is identical
// regardless of block size.
func (e *Expr) Filter(records []record.Record) ([]record.Record, error) {
	if e.Type() != value.TypeBool {
		return nil, errors.New(errors.InvalidOperation, "filter requires a Bool-typed expression, got %s", e.Type())
	}
	out := make([]record.Record, 0, len(records))
	for start := 0; start < len(records); start += BlockSize {
		end := start + BlockSize
		if end > len(records) {
			end = len(records)
		}
		for _, rec := range records[start:end] {
			if e.evalOne(rec).AsBool() == value.True {
				out = append(out, rec)
			}
		}
	}
	return out, nil
}

// Adjust evaluates a Float-typed expression and overwrites each record's
// score in place.
func (e *Expr) Adjust(records []record.Record) error {
	if e.Type() != value.TypeFloat {
		return errors.New(errors.InvalidOperation, "adjust requires a Float-typed expression, got %s", e.Type())
	}
	for start := 0; start < len(records); start += BlockSize {
		end := start + BlockSize
		if end > len(records) {
			end = len(records)
		}
		for i := start; i < end; i++ {
			records[i].Score = e.evalOne(records[i]).AsFloat()
		}
	}
	return nil
}

// Evaluate writes, for every input record (including when the result is
// N/A), the expression's Datum result into out. len(out) must equal
// len(records).
func (e *Expr) Evaluate(records []record.Record, out []value.Datum) error {
	if len(out) != len(records) {
		return errors.New(errors.InvalidArgument, "evaluate: output length %d does not match input length %d", len(out), len(records))
	}
	for start := 0; start < len(records); start += BlockSize {
		end := start + BlockSize
		if end > len(records) {
			end = len(records)
		}
		for i := start; i < end; i++ {
			out[i] = e.evalOne(records[i])
		}
	}
	return nil
}
