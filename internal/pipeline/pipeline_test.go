package pipeline

import (
	"testing"

	"grnxx/internal/cursor"
	"grnxx/internal/expr"
	"grnxx/internal/record"
	"grnxx/internal/store"
	"grnxx/internal/value"
)

func newScoresTable(t *testing.T) *store.Table {
	t.Helper()
	tbl := store.New("scores")
	age, err := tbl.CreateColumn("age", value.TypeInt, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, a := range []int64{10, 25, 40, 70, 5} {
		id, err := tbl.InsertRow(value.NA(value.TypeInt))
		if err != nil {
			t.Fatal(err)
		}
		if err := age.Set(id, value.FromInt(value.Int(a))); err != nil {
			t.Fatal(err)
		}
	}
	return tbl
}

func ageExpr(t *testing.T, tbl *store.Table, op expr.Op, constant int64) *expr.Expr {
	t.Helper()
	b := expr.NewBuilder(tbl, nil)
	b.PushColumn("age")
	b.PushConstant(value.FromInt(value.Int(constant)))
	if err := b.PushOperator(op); err != nil {
		t.Fatal(err)
	}
	ex, err := b.Release()
	if err != nil {
		t.Fatal(err)
	}
	return ex
}

func TestCursorStageReadsAllRows(t *testing.T) {
	tbl := newScoresTable(t)
	cur := tbl.CreateCursor(cursor.DefaultOptions())
	recs, err := ReadAll(&cursorStage{cur: cur})
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(recs))
	}
}

func TestFilterStageAppliesPredicate(t *testing.T) {
	tbl := newScoresTable(t)
	cur := tbl.CreateCursor(cursor.DefaultOptions())
	ex := ageExpr(t, tbl, expr.OpGreater, 20)
	stage := newFilterStage(&cursorStage{cur: cur}, ex, 0, 0)
	recs, err := ReadAll(stage)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 rows with age > 20, got %d", len(recs))
	}
}

func TestFilterStageOffsetLimit(t *testing.T) {
	tbl := newScoresTable(t)
	cur := tbl.CreateCursor(cursor.DefaultOptions())
	ex := ageExpr(t, tbl, expr.OpGreaterEqual, 0)
	stage := newFilterStage(&cursorStage{cur: cur}, ex, 1, 2)
	recs, err := ReadAll(stage)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 rows after offset/limit, got %d", len(recs))
	}
}

func TestFilterStageSurvivesBlockBoundary(t *testing.T) {
	tbl := store.New("many")
	v, err := tbl.CreateColumn("v", value.TypeBool, nil)
	if err != nil {
		t.Fatal(err)
	}
	const n = cursor.ReadBlockSize + 200
	for i := 0; i < n; i++ {
		id, err := tbl.InsertRow(value.NA(value.TypeInt))
		if err != nil {
			t.Fatal(err)
		}
		if err := v.Set(id, value.FromBool(value.True)); err != nil {
			t.Fatal(err)
		}
	}
	b := expr.NewBuilder(tbl, nil)
	b.PushColumn("v")
	ex, err := b.Release()
	if err != nil {
		t.Fatal(err)
	}
	cur := tbl.CreateCursor(cursor.DefaultOptions())
	stage := newFilterStage(&cursorStage{cur: cur}, ex, 0, 0)

	out := make([]record.Record, 10)
	total := 0
	for {
		n, err := stage.ReadNext(out)
		if err != nil {
			t.Fatal(err)
		}
		total += n
		if n == 0 {
			break
		}
	}
	if total != n {
		t.Fatalf("expected all %d rows to survive in small-buffer reads, got %d", n, total)
	}
}

func TestAdjusterStageSetsScore(t *testing.T) {
	tbl := newScoresTable(t)
	cur := tbl.CreateCursor(cursor.DefaultOptions())
	b := expr.NewBuilder(tbl, nil)
	b.PushColumn("age")
	b.PushOperator(expr.OpCastFloat)
	ex, err := b.Release()
	if err != nil {
		t.Fatal(err)
	}
	stage := newAdjusterStage(&cursorStage{cur: cur}, ex)
	recs, err := ReadAll(stage)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range recs {
		if r.Score == 0 {
			t.Errorf("row %d: expected nonzero score", r.RowID)
		}
	}
}

func TestSorterStageOrdersByKey(t *testing.T) {
	tbl := newScoresTable(t)
	cur := tbl.CreateCursor(cursor.DefaultOptions())
	b := expr.NewBuilder(tbl, nil)
	b.PushColumn("age")
	ex, err := b.Release()
	if err != nil {
		t.Fatal(err)
	}
	sorter := NewSorter([]SortKey{{Expr: ex, Order: Natural}}, 0, 0)
	stage := newSorterStage(&cursorStage{cur: cur}, sorter)
	recs, err := ReadAll(stage)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(recs))
	}

	out := make([]value.Datum, len(recs))
	if err := ex.Evaluate(recs, out); err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(out); i++ {
		if out[i-1].AsInt() > out[i].AsInt() {
			t.Fatalf("not sorted ascending at %d: %v > %v", i, out[i-1].AsInt(), out[i].AsInt())
		}
	}
	if out[0].AsInt() != 5 {
		t.Errorf("expected smallest age 5 first, got %v", out[0].AsInt())
	}
}

func TestSorterStageDescendingOrder(t *testing.T) {
	tbl := newScoresTable(t)
	cur := tbl.CreateCursor(cursor.DefaultOptions())
	b := expr.NewBuilder(tbl, nil)
	b.PushColumn("age")
	ex, err := b.Release()
	if err != nil {
		t.Fatal(err)
	}
	sorter := NewSorter([]SortKey{{Expr: ex, Order: Reverse}}, 0, 2)
	stage := newSorterStage(&cursorStage{cur: cur}, sorter)
	recs, err := ReadAll(stage)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 rows after limit, got %d", len(recs))
	}
	out := make([]value.Datum, len(recs))
	if err := ex.Evaluate(recs, out); err != nil {
		t.Fatal(err)
	}
	if out[0].AsInt() != 70 || out[1].AsInt() != 40 {
		t.Errorf("expected top two ages [70, 40], got [%v, %v]", out[0].AsInt(), out[1].AsInt())
	}
}

func TestSorterNAOrdersLastInNaturalOrder(t *testing.T) {
	tbl := store.New("t")
	v, err := tbl.CreateColumn("v", value.TypeInt, nil)
	if err != nil {
		t.Fatal(err)
	}
	id0, _ := tbl.InsertRow(value.NA(value.TypeInt))
	id1, _ := tbl.InsertRow(value.NA(value.TypeInt))
	id2, _ := tbl.InsertRow(value.NA(value.TypeInt))
	v.Set(id0, value.FromInt(5))
	// id1 left N/A.
	v.Set(id2, value.FromInt(1))

	b := expr.NewBuilder(tbl, nil)
	b.PushColumn("v")
	ex, err := b.Release()
	if err != nil {
		t.Fatal(err)
	}
	recs := []record.Record{record.New(id0), record.New(id1), record.New(id2)}
	sorter := NewSorter([]SortKey{{Expr: ex, Order: Natural}}, 0, 0)
	sorter.Reset(nil)
	sorter.Progress(recs)
	out, err := sorter.Finish()
	if err != nil {
		t.Fatal(err)
	}
	if out[len(out)-1].RowID != id1 {
		t.Errorf("expected the N/A row last, got order %+v", out)
	}
}

func TestMergerAndIntersectsByRowID(t *testing.T) {
	left := []record.Record{record.New(1), record.New(2), record.New(3)}
	right := []record.Record{record.New(2), record.New(3), record.New(4)}
	m := NewMerger(MergerOptions{Set: SetAnd, Score: ScorePlus})
	out := m.Merge(left, right)
	if len(out) != 2 {
		t.Fatalf("expected 2 rows in intersection, got %d", len(out))
	}
	seen := map[value.Int]bool{}
	for _, r := range out {
		seen[r.RowID] = true
	}
	if !seen[2] || !seen[3] {
		t.Errorf("expected rows 2 and 3, got %+v", out)
	}
}

func TestMergerOrUnionsByRowID(t *testing.T) {
	left := []record.Record{record.New(1), record.New(2)}
	right := []record.Record{record.New(2), record.New(3)}
	m := NewMerger(MergerOptions{Set: SetOr, Score: ScorePlus})
	out := m.Merge(left, right)
	if len(out) != 3 {
		t.Fatalf("expected 3 rows in union, got %d", len(out))
	}
}

func TestMergerMinusKeepsLeftOnly(t *testing.T) {
	left := []record.Record{record.New(1), record.New(2), record.New(3)}
	right := []record.Record{record.New(2)}
	m := NewMerger(MergerOptions{Set: SetMinus, Score: ScorePlus})
	out := m.Merge(left, right)
	if len(out) != 2 {
		t.Fatalf("expected 2 rows (1 and 3), got %d", len(out))
	}
	for _, r := range out {
		if r.RowID == 2 {
			t.Errorf("row 2 should have been excluded by MINUS")
		}
	}
}

func TestMergerScorePlusSumsMatchedScores(t *testing.T) {
	l := record.New(1)
	l.Score = 1.5
	r := record.New(1)
	r.Score = 2.5
	m := NewMerger(MergerOptions{Set: SetAnd, Score: ScorePlus})
	out := m.Merge([]record.Record{l}, []record.Record{r})
	if len(out) != 1 || out[0].Score != 4.0 {
		t.Fatalf("expected summed score 4.0, got %+v", out)
	}
}

func TestMergerRespectsOffsetLimit(t *testing.T) {
	left := []record.Record{record.New(1), record.New(2), record.New(3), record.New(4)}
	right := left
	m := NewMerger(MergerOptions{Set: SetAnd, Score: ScorePlus, Offset: 1, Limit: 2})
	out := m.Merge(left, right)
	if len(out) != 2 {
		t.Fatalf("expected 2 rows after offset/limit, got %d", len(out))
	}
}

func TestPipelineBuilderFilterThenSort(t *testing.T) {
	tbl := newScoresTable(t)
	pb := NewPipelineBuilder()
	pb.PushCursor(tbl.CreateCursor(cursor.DefaultOptions()))

	filterEx := ageExpr(t, tbl, expr.OpGreater, 0)
	if err := pb.PushFilter(filterEx, 0, 0); err != nil {
		t.Fatal(err)
	}

	sortEx, err := func() (*expr.Expr, error) {
		b := expr.NewBuilder(tbl, nil)
		b.PushColumn("age")
		return b.Release()
	}()
	if err != nil {
		t.Fatal(err)
	}
	sorter := NewSorter([]SortKey{{Expr: sortEx, Order: Natural}}, 0, 0)
	if err := pb.PushSorter(sorter); err != nil {
		t.Fatal(err)
	}

	stage, err := pb.Release()
	if err != nil {
		t.Fatal(err)
	}
	recs, err := ReadAll(stage)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(recs))
	}
}

func TestPipelineBuilderReleaseRequiresSingleStage(t *testing.T) {
	pb := NewPipelineBuilder()
	if _, err := pb.Release(); err == nil {
		t.Error("expected error releasing an empty pipeline")
	}
}
