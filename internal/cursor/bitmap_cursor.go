package cursor

import (
	"github.com/kelindar/bitmap"

	"grnxx/internal/record"
	"grnxx/internal/value"
)

// BitmapCursor walks the live rows of a table's row bitmap in row-id
// order (or reverse), applying offset/limit. It is the concrete cursor
// Table.CreateCursor returns.
type BitmapCursor struct {
	live     bitmap.Bitmap
	maxRowID value.Int
	order    Order

	next     int64 // next row-id to consider
	done     bool
	skipped  int
	produced int
	limit    int // -1 means unlimited
}

// NewBitmapCursor constructs a cursor over live, enumerating rows
// [0, maxRowID] according to opts.
func NewBitmapCursor(live bitmap.Bitmap, maxRowID value.Int, opts Options) *BitmapCursor {
	c := &BitmapCursor{
		live:     live,
		maxRowID: maxRowID,
		order:    opts.Order,
		skipped:  opts.Offset,
		limit:    -1,
	}
	if opts.Limit > 0 {
		c.limit = opts.Limit
	}
	if maxRowID.IsNA() {
		c.done = true
		return c
	}
	if opts.Order == Ascending {
		c.next = 0
	} else {
		c.next = int64(maxRowID)
	}
	return c
}

func (c *BitmapCursor) Read(out []record.Record) (int, error) {
	n := 0
	for n < len(out) {
		if c.limit == 0 {
			c.done = true
			break
		}
		rowID, ok := c.advance()
		if !ok {
			break
		}
		if c.skipped > 0 {
			c.skipped--
			continue
		}
		out[n] = record.New(value.Int(rowID))
		n++
		if c.limit > 0 {
			c.limit--
		}
	}
	return n, nil
}

// advance returns the next live row id, or ok=false when the scan is
// exhausted.
func (c *BitmapCursor) advance() (int64, bool) {
	for {
		if c.done {
			return 0, false
		}
		if c.order == Ascending {
			if c.next > int64(c.maxRowID) {
				c.done = true
				return 0, false
			}
		} else if c.next < 0 {
			c.done = true
			return 0, false
		}

		row := c.next
		if c.order == Ascending {
			c.next++
		} else {
			c.next--
		}
		if c.live.Contains(uint32(row)) {
			return row, true
		}
	}
}
