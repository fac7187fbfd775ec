// Package cursor defines the lazy, finite, non-restartable Record
// producer that Table.CreateCursor and the pipeline's Cursor stage both
// build on.
package cursor

import "grnxx/internal/record"

// Order selects the row-id iteration direction.
type Order uint8

const (
	Ascending Order = iota
	Descending
)

// Options configures a cursor at creation time.
type Options struct {
	Offset int
	Limit  int // 0 means unlimited
	Order  Order
}

// DefaultOptions returns the zero-value options: no offset, no limit,
// ascending order.
func DefaultOptions() Options {
	return Options{Offset: 0, Limit: 0, Order: Ascending}
}

// Cursor produces a lazy, finite, non-restartable sequence of Records.
// Its one required operation is Read, fashioned after io.Reader's
// fill-the-buffer-return-count convention.
type Cursor interface {
	// Read fills out with up to len(out) records and returns the number
	// filled. A count smaller than len(out) signals end-of-stream on the
	// next call.
	Read(out []record.Record) (n int, err error)
}

// ReadBlockSize is the block size used by ReadAll and by pipeline stages
// that pull from a Cursor; it is a latency/throughput tradeoff and has no
// effect on logical output.
const ReadBlockSize = 1024

// ReadAll repeatedly reads from c in ReadBlockSize blocks until
// exhausted, returning every record produced.
func ReadAll(c Cursor) ([]record.Record, error) {
	var all []record.Record
	buf := make([]record.Record, ReadBlockSize)
	for {
		n, err := c.Read(buf)
		if err != nil {
			return nil, err
		}
		all = append(all, buf[:n]...)
		if n < len(buf) {
			return all, nil
		}
	}
}
