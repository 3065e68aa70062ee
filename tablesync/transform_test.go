package tablesync

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/relloyd/tablesync/constants"
)

func newTestRowSet() *RowSet {
	rs := NewRowSet([]Column{{Name: "Id", DatabaseType: "INT"}, {Name: "first_name", DatabaseType: "NVARCHAR"}})
	_ = rs.Append([]interface{}{int64(1), "alice"})
	_ = rs.Append([]interface{}{int64(2), nil})
	return rs
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestColumnNormaliserTransform(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, loc)
	in := newTestRowSet()
	out, err := (&ColumnNormaliser{Now: fixedNow(now)}).Transform(in)
	if err != nil {
		t.Fatal(err)
	}
	expectedCols := []string{"ID", "FIRST_NAME", constants.LoadedAtColumnName}
	if !reflect.DeepEqual(out.ColumnNames(), expectedCols) {
		t.Fatalf("expected columns %v; got %v", expectedCols, out.ColumnNames())
	}
	if out.Len() != in.Len() {
		t.Fatalf("expected %v rows; got %v", in.Len(), out.Len())
	}
	for idx, row := range out.Rows {
		if !reflect.DeepEqual(row[:2], in.Rows[idx]) {
			t.Fatalf("row %v values changed: expected %v; got %v", idx, in.Rows[idx], row[:2])
		}
		ts, ok := row[2].(time.Time)
		if !ok {
			t.Fatalf("expected time.Time in %v; got %T", constants.LoadedAtColumnName, row[2])
		}
		if ts.Location() != time.UTC || !ts.Equal(now) {
			t.Fatalf("expected %v in UTC; got %v", now, ts)
		}
	}
	// Input is untouched.
	if in.Columns[0].Name != "Id" || len(in.Rows[0]) != 2 {
		t.Fatal("transform modified its input")
	}
	// Metadata is carried over.
	if out.Columns[1].DatabaseType != "NVARCHAR" {
		t.Fatalf("expected column metadata to be kept; got %v", out.Columns[1])
	}
}

func TestColumnNormaliserIsIdempotentOnColumns(t *testing.T) {
	n := &ColumnNormaliser{Now: fixedNow(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))}
	once, err := n.Transform(newTestRowSet())
	if err != nil {
		t.Fatal(err)
	}
	later := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	n.Now = fixedNow(later)
	twice, err := n.Transform(once)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(once.ColumnNames(), twice.ColumnNames()) {
		t.Fatalf("expected the same columns; got %v then %v", once.ColumnNames(), twice.ColumnNames())
	}
	if got := twice.Rows[0][2].(time.Time); !got.Equal(later) {
		t.Fatalf("expected the timestamp to be overwritten with %v; got %v", later, got)
	}
}

func TestColumnNormaliserEmptyRowSet(t *testing.T) {
	out, err := NewColumnNormaliser().Transform(NewRowSet([]Column{{Name: "a"}}))
	if err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected 0 rows; got %v", out.Len())
	}
	if !reflect.DeepEqual(out.ColumnNames(), []string{"A", constants.LoadedAtColumnName}) {
		t.Fatalf("unexpected columns %v", out.ColumnNames())
	}
}

func TestColumnNormaliserCollision(t *testing.T) {
	rs := NewRowSet([]Column{{Name: "code"}, {Name: "Code"}})
	_, err := NewColumnNormaliser().Transform(rs)
	var ce *ColumnCollisionError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ColumnCollisionError; got %v", err)
	}
	if ce.Column != "CODE" || !reflect.DeepEqual(ce.Sources, []string{"code", "Code"}) {
		t.Fatalf("unexpected collision details %+v", ce)
	}
}

func TestColumnNormaliserRejectsRaggedRows(t *testing.T) {
	rs := &RowSet{Columns: []Column{{Name: "a"}}, Rows: [][]interface{}{{1, 2}}}
	if _, err := NewColumnNormaliser().Transform(rs); err == nil {
		t.Fatal("expected error for a row with too many values")
	}
	if _, err := NewColumnNormaliser().Transform(nil); err == nil {
		t.Fatal("expected error for a nil row set")
	}
}

func TestRowSetAppend(t *testing.T) {
	rs := NewRowSet([]Column{{Name: "a"}, {Name: "b"}})
	if err := rs.Append([]interface{}{1}); err == nil {
		t.Fatal("expected error appending a short row")
	}
	if err := rs.Append([]interface{}{1, 2}); err != nil {
		t.Fatal(err)
	}
	if rs.ColumnIndex("B") != 1 || rs.ColumnIndex("missing") != -1 {
		t.Fatal("unexpected ColumnIndex result")
	}
}
