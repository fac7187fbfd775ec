package store

import (
	"testing"

	"grnxx/internal/index"
	"grnxx/internal/value"
)

func TestColumnSetGetRoundTrip(t *testing.T) {
	tbl := New("t")
	col, err := tbl.CreateColumn("v", value.TypeFloat, nil)
	if err != nil {
		t.Fatal(err)
	}
	tbl.InsertRow(value.NA(value.TypeInt))

	if err := col.Set(0, value.FromFloat(3.5)); err != nil {
		t.Fatal(err)
	}
	if got := col.Get(0).AsFloat(); got != 3.5 {
		t.Errorf("Get(0) = %v, want 3.5", got)
	}
	if !col.Get(1).IsNA() {
		t.Error("never-written row should read N/A")
	}
}

func TestColumnBoolRoundTrip(t *testing.T) {
	tbl := New("t")
	col, _ := tbl.CreateColumn("flag", value.TypeBool, nil)
	tbl.InsertRow(value.NA(value.TypeInt))
	tbl.InsertRow(value.NA(value.TypeInt))

	col.Set(0, value.FromBool(value.True))
	col.Set(1, value.FromBool(value.False))

	if col.Get(0).AsBool() != value.True {
		t.Error("row 0 should be true")
	}
	if col.Get(1).AsBool() != value.False {
		t.Error("row 1 should be false")
	}
}

func TestColumnIndexAttachAndMaintain(t *testing.T) {
	tbl := New("t")
	col, _ := tbl.CreateColumn("v", value.TypeInt, nil)
	tbl.InsertRow(value.NA(value.TypeInt))
	col.Set(0, value.FromInt(42))

	ix, err := col.AttachIndex(index.Tree)
	if err != nil {
		t.Fatal(err)
	}
	if !ix.Contains(value.FromInt(42)) {
		t.Error("attached index should already contain existing data")
	}

	tbl.InsertRow(value.NA(value.TypeInt))
	col.Set(1, value.FromInt(99))
	if got := ix.FindOne(value.FromInt(99)); got != 1 {
		t.Errorf("index should be maintained on Set, got %v", got)
	}

	col.Set(1, value.FromInt(100))
	if ix.Contains(value.FromInt(99)) {
		t.Error("index should drop the old value on overwrite")
	}
	if got := ix.FindOne(value.FromInt(100)); got != 1 {
		t.Errorf("index should reflect the new value, got %v", got)
	}
}

func TestKeyColumnRejectsNAAndDuplicates(t *testing.T) {
	tbl := New("t")
	tbl.CreateColumn("k", value.TypeInt, nil)
	if err := tbl.SetKeyColumn("k"); err != nil {
		t.Fatal(err)
	}

	if _, err := tbl.InsertRow(value.NA(value.TypeInt)); err == nil {
		t.Error("expected N/A key to be rejected")
	}
	if _, err := tbl.InsertRow(value.FromInt(1)); err != nil {
		t.Fatal(err)
	}
	if _, err := tbl.InsertRow(value.FromInt(1)); err == nil {
		t.Error("expected duplicate key to be rejected")
	}
}

func TestReferenceColumnRejectsNonLiveRow(t *testing.T) {
	authors := New("authors")
	posts := New("posts")
	authorCol, err := posts.CreateColumn("author_id", value.TypeInt, authors)
	if err != nil {
		t.Fatal(err)
	}

	a0, err := authors.InsertRow(value.NA(value.TypeInt))
	if err != nil {
		t.Fatal(err)
	}
	p0, err := posts.InsertRow(value.NA(value.TypeInt))
	if err != nil {
		t.Fatal(err)
	}

	if err := authorCol.Set(p0, value.FromInt(a0)); err != nil {
		t.Fatalf("setting a live referenced row should succeed: %v", err)
	}
	if err := authorCol.Set(p0, value.FromInt(999)); err == nil {
		t.Error("expected INVALID_ARGUMENT referencing a row that was never inserted")
	}

	authors.RemoveRow(a0, nil)
	if err := authorCol.Set(p0, value.FromInt(a0)); err == nil {
		t.Error("expected INVALID_ARGUMENT referencing a row that has since been removed")
	}
}

func TestReferenceVectorColumnRejectsNonLiveElement(t *testing.T) {
	target := New("target")
	source := New("source")
	col, err := source.CreateColumn("refs", value.TypeVectorInt, target)
	if err != nil {
		t.Fatal(err)
	}

	t0, err := target.InsertRow(value.NA(value.TypeInt))
	if err != nil {
		t.Fatal(err)
	}
	sRow, err := source.InsertRow(value.NA(value.TypeInt))
	if err != nil {
		t.Fatal(err)
	}

	if err := col.Set(sRow, value.FromVecInt(value.NewVector([]value.Int{t0, 999}))); err == nil {
		t.Error("expected INVALID_ARGUMENT when one element of the vector is not live")
	}
	if !col.Get(sRow).IsNA() {
		t.Error("a rejected Set must not partially write the column")
	}
}

func TestReferenceColumnClearsVectorElement(t *testing.T) {
	target := New("target")
	source := New("source")
	col, _ := source.CreateColumn("refs", value.TypeVectorInt, target)

	t0, _ := target.InsertRow(value.NA(value.TypeInt))
	t1, _ := target.InsertRow(value.NA(value.TypeInt))
	sRow, _ := source.InsertRow(value.NA(value.TypeInt))

	col.Set(sRow, value.FromVecInt(value.NewVector([]value.Int{t0, t1})))

	col.clearReference(t0)
	got := col.Get(sRow).AsVecInt()
	if got.Size() != 1 || got.Elems[0] != t1 {
		t.Errorf("expected vector to compact to [%v], got %v", t1, got.Elems)
	}
}
