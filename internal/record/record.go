// Package record defines the Record type that flows through cursors,
// expressions, and pipeline stages.
package record

import "grnxx/internal/value"

// Record is the pair (row_id, score) that flows through cursors, pipeline
// stages, and expressions. Score is produced by adjusters and consumed by
// sorters/mergers; cursors initialize score to 0.
type Record struct {
	RowID value.Int
	Score value.Float
}

// New constructs a Record with the given row ID and a zero score, matching
// a cursor's initial score.
func New(rowID value.Int) Record {
	return Record{RowID: rowID, Score: 0}
}
