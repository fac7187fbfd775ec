// Package pipeline implements the demand-driven, single-threaded,
// cooperative pipeline executor: a PipelineBuilder assembling Cursor,
// Filter, Adjuster, Sorter, and Merger stages into a tree, pulled to
// completion by Flush.
package pipeline

import (
	"grnxx/internal/cursor"
	"grnxx/internal/record"
)

// Stage is the pull-mode contract every pipeline node implements,
// mirroring cursor.Cursor's fill-the-buffer-return-count convention.
type Stage interface {
	ReadNext(out []record.Record) (n int, err error)
}

// ReadAll repeatedly calls ReadNext in cursor.ReadBlockSize blocks until
// the stage is drained.
func ReadAll(s Stage) ([]record.Record, error) {
	var all []record.Record
	buf := make([]record.Record, cursor.ReadBlockSize)
	for {
		n, err := s.ReadNext(buf)
		if err != nil {
			return nil, err
		}
		all = append(all, buf[:n]...)
		if n < len(buf) {
			return all, nil
		}
	}
}

// Flush reads a stage to completion, matching the spec's
// flush(&mut Vec<Record>) entry point.
func Flush(s Stage) ([]record.Record, error) { return ReadAll(s) }

// cursorStage wraps a cursor.Cursor as a pipeline producer.
type cursorStage struct {
	cur cursor.Cursor
}

func (s *cursorStage) ReadNext(out []record.Record) (int, error) {
	return s.cur.Read(out)
}
