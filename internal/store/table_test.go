package store

import (
	"testing"

	"grnxx/internal/cursor"
	"grnxx/internal/value"
)

func TestInsertFindRemoveRow(t *testing.T) {
	tbl := New("users")
	if _, err := tbl.CreateColumn("name", value.TypeText, nil); err != nil {
		t.Fatal(err)
	}
	if err := tbl.SetKeyColumn("name"); err != nil {
		t.Fatal(err)
	}

	id, err := tbl.InsertRow(value.FromText(value.NewText("alice")))
	if err != nil {
		t.Fatal(err)
	}
	if id != 0 {
		t.Errorf("first row id = %v, want 0", id)
	}

	id2, err := tbl.InsertRow(value.FromText(value.NewText("bob")))
	if err != nil {
		t.Fatal(err)
	}
	if id2 != 1 {
		t.Errorf("second row id = %v, want 1", id2)
	}

	if _, err := tbl.InsertRow(value.FromText(value.NewText("alice"))); err == nil {
		t.Error("expected duplicate key to fail")
	}

	if !tbl.TestRow(0) || !tbl.TestRow(1) {
		t.Error("rows 0 and 1 should be live")
	}
	if tbl.TestRow(2) {
		t.Error("row 2 should not be live")
	}

	nameCol, _ := tbl.Column("name")
	if got := nameCol.Get(0).AsText().String(); got != "alice" {
		t.Errorf("row 0 name = %q, want alice", got)
	}

	if err := tbl.RemoveRow(0, nil); err != nil {
		t.Fatal(err)
	}
	if tbl.TestRow(0) {
		t.Error("row 0 should be free after removal")
	}
	if nameCol.Get(0).IsNA() != true {
		t.Error("removed row's column value should read back N/A")
	}

	id3, err := tbl.InsertRow(value.FromText(value.NewText("carol")))
	if err != nil {
		t.Fatal(err)
	}
	if id3 != 0 {
		t.Errorf("freed slot 0 should be reused, got %v", id3)
	}
}

func TestMaxRowIDAndIsFull(t *testing.T) {
	tbl := New("t")
	if !tbl.MaxRowID().IsNA() {
		t.Error("empty table should have N/A max row id")
	}
	if !tbl.IsFull() {
		t.Error("empty table is vacuously full")
	}
	tbl.InsertRow(value.NA(value.TypeInt))
	tbl.InsertRow(value.NA(value.TypeInt))
	if tbl.MaxRowID() != 1 {
		t.Errorf("max row id = %v, want 1", tbl.MaxRowID())
	}
	if !tbl.IsFull() {
		t.Error("two inserts with no gaps should be full")
	}
	tbl.RemoveRow(0, nil)
	if tbl.IsFull() {
		t.Error("table with a freed slot should not be full")
	}
}

func TestReferrerCleanupOnRemove(t *testing.T) {
	tables := map[string]*Table{}
	resolve := func(name string) (*Table, bool) {
		tb, ok := tables[name]
		return tb, ok
	}

	posts := New("posts")
	tables["posts"] = posts

	comments := New("comments")
	tables["comments"] = comments
	if _, err := comments.CreateColumn("post_id", value.TypeInt, posts); err != nil {
		t.Fatal(err)
	}

	postID, _ := posts.InsertRow(value.NA(value.TypeInt))
	commentID, _ := comments.InsertRow(value.NA(value.TypeInt))
	postCol, _ := comments.Column("post_id")
	if err := postCol.Set(commentID, value.FromInt(postID)); err != nil {
		t.Fatal(err)
	}

	refs := posts.ReferrerColumns()
	if len(refs) != 1 || refs[0].Table != "comments" || refs[0].Column != "post_id" {
		t.Fatalf("unexpected referrers: %+v", refs)
	}

	if err := posts.RemoveRow(postID, resolve); err != nil {
		t.Fatal(err)
	}
	if got := postCol.Get(commentID); !got.IsNA() {
		t.Errorf("referrer column should be cleared to N/A, got %v", got)
	}
}

func TestReorderAndRenameColumn(t *testing.T) {
	tbl := New("t")
	tbl.CreateColumn("a", value.TypeInt, nil)
	tbl.CreateColumn("b", value.TypeInt, nil)
	tbl.CreateColumn("c", value.TypeInt, nil)

	if err := tbl.ReorderColumn("c", "a"); err != nil {
		t.Fatal(err)
	}
	want := []string{"a", "c", "b"}
	got := tbl.Columns()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Columns() = %v, want %v", got, want)
		}
	}

	if err := tbl.RenameColumn("b", "renamed"); err != nil {
		t.Fatal(err)
	}
	if _, ok := tbl.Column("renamed"); !ok {
		t.Error("expected renamed column to exist")
	}
}

func TestCreateCursorOrder(t *testing.T) {
	tbl := New("t")
	tbl.CreateColumn("v", value.TypeInt, nil)
	for i := 0; i < 5; i++ {
		tbl.InsertRow(value.NA(value.TypeInt))
	}
	tbl.RemoveRow(2, nil)

	opts := cursor.DefaultOptions()
	c := tbl.CreateCursor(opts)
	recs, err := cursor.ReadAll(c)
	if err != nil {
		t.Fatal(err)
	}
	want := []int64{0, 1, 3, 4}
	if len(recs) != len(want) {
		t.Fatalf("got %d records, want %d", len(recs), len(want))
	}
	for i, r := range recs {
		if int64(r.RowID) != want[i] {
			t.Errorf("record %d row id = %v, want %v", i, r.RowID, want[i])
		}
	}
}
