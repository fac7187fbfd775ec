package cursor

import (
	"testing"

	"github.com/kelindar/bitmap"

	"grnxx/internal/value"
)

func liveBitmapOf(rows ...uint32) bitmap.Bitmap {
	var b bitmap.Bitmap
	for _, r := range rows {
		b.Grow(r)
		b.Set(r)
	}
	return b
}

func TestBitmapCursorAscendingOrder(t *testing.T) {
	live := liveBitmapOf(0, 2, 3, 5)
	c := NewBitmapCursor(live, value.Int(5), DefaultOptions())
	recs, err := ReadAll(c)
	if err != nil {
		t.Fatal(err)
	}
	want := []int64{0, 2, 3, 5}
	if len(recs) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(recs))
	}
	for i, w := range want {
		if int64(recs[i].RowID) != w {
			t.Errorf("row %d: expected %d, got %d", i, w, recs[i].RowID)
		}
	}
}

func TestBitmapCursorDescendingOrder(t *testing.T) {
	live := liveBitmapOf(0, 2, 3, 5)
	c := NewBitmapCursor(live, value.Int(5), Options{Order: Descending})
	recs, err := ReadAll(c)
	if err != nil {
		t.Fatal(err)
	}
	want := []int64{5, 3, 2, 0}
	for i, w := range want {
		if int64(recs[i].RowID) != w {
			t.Errorf("row %d: expected %d, got %d", i, w, recs[i].RowID)
		}
	}
}

func TestBitmapCursorOffsetLimit(t *testing.T) {
	live := liveBitmapOf(0, 1, 2, 3, 4)
	c := NewBitmapCursor(live, value.Int(4), Options{Order: Ascending, Offset: 1, Limit: 2})
	recs, err := ReadAll(c)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(recs))
	}
	if recs[0].RowID != 1 || recs[1].RowID != 2 {
		t.Errorf("expected rows [1, 2], got [%d, %d]", recs[0].RowID, recs[1].RowID)
	}
}

func TestBitmapCursorEmptyTableProducesNothing(t *testing.T) {
	var live bitmap.Bitmap
	c := NewBitmapCursor(live, value.NA(value.TypeInt), DefaultOptions())
	recs, err := ReadAll(c)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected no rows from an empty table, got %d", len(recs))
	}
}
