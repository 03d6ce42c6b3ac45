package memdb

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ndishimyeemilien/report-sub001/core"
)

var ctx = context.Background()

func TestGetPutDelete(t *testing.T) {
	db, _ := Open()

	if _, err := db.Get(ctx, "things", "t1"); err != core.ErrDocNotFound {
		t.Errorf("Get() error = %v, want ErrDocNotFound", err)
	}

	doc := core.Doc{ID: "t1", Data: json.RawMessage(`{"name":"one","n":1}`)}
	if err := db.Put(ctx, "things", doc); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}
	got, err := db.Get(ctx, "things", "t1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if string(got.Data) != string(doc.Data) {
		t.Errorf("Get() data = %s, want %s", got.Data, doc.Data)
	}

	if err = db.Delete(ctx, "things", "t1"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err = db.Get(ctx, "things", "t1"); err != core.ErrDocNotFound {
		t.Errorf("Get() after delete error = %v, want ErrDocNotFound", err)
	}
	// deleting a missing doc is a no-op
	if err = db.Delete(ctx, "things", "t1"); err != nil {
		t.Errorf("Delete() of missing doc failed: %v", err)
	}
}

func TestQueryFilter(t *testing.T) {
	db, _ := Open()
	docs := []core.Doc{
		{ID: "s1", Data: json.RawMessage(`{"classId":"c1","name":"A","count":3}`)},
		{ID: "s2", Data: json.RawMessage(`{"classId":"c1","name":"B","count":4}`)},
		{ID: "s3", Data: json.RawMessage(`{"classId":"c2","name":"C","count":3}`)},
	}
	for _, doc := range docs {
		if err := db.Put(ctx, "students", doc); err != nil {
			t.Fatalf("Put() failed: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter core.Filter
		want   int
	}{
		{name: "no filter matches all", filter: nil, want: 3},
		{name: "empty filter matches all", filter: core.Filter{}, want: 3},
		{name: "single field", filter: core.Filter{"classId": "c1"}, want: 2},
		{name: "fields AND together", filter: core.Filter{"classId": "c1", "name": "B"}, want: 1},
		{name: "numeric value normalized", filter: core.Filter{"count": 3}, want: 2},
		{name: "no match", filter: core.Filter{"classId": "c9"}, want: 0},
		{name: "missing field never matches", filter: core.Filter{"nope": "x"}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.Query(ctx, "students", tt.filter)
			if err != nil {
				t.Fatalf("Query() failed: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("Query() returned %d docs, want %d", len(got), tt.want)
			}
		})
	}
}

func TestRunTxCommit(t *testing.T) {
	db, _ := Open()

	err := db.RunTx(ctx, func(ctx context.Context, tx core.Tx) error {
		if err := tx.Put(ctx, "things", core.Doc{ID: "t1", Data: json.RawMessage(`{"n":1}`)}); err != nil {
			return err
		}
		// tx reads see staged writes
		if _, err := tx.Get(ctx, "things", "t1"); err != nil {
			return err
		}
		return tx.Put(ctx, "things", core.Doc{ID: "t2", Data: json.RawMessage(`{"n":2}`)})
	})
	if err != nil {
		t.Fatalf("RunTx() failed: %v", err)
	}

	docs, err := db.Query(ctx, "things", nil)
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("committed docs = %d, want 2", len(docs))
	}
}

func TestRunTxRollback(t *testing.T) {
	db, _ := Open()
	if err := db.Put(ctx, "things", core.Doc{ID: "t1", Data: json.RawMessage(`{"n":1}`)}); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	boom := errors.New("boom")
	err := db.RunTx(ctx, func(ctx context.Context, tx core.Tx) error {
		if err := tx.Delete(ctx, "things", "t1"); err != nil {
			return err
		}
		if err := tx.Put(ctx, "things", core.Doc{ID: "t2", Data: json.RawMessage(`{"n":2}`)}); err != nil {
			return err
		}
		return boom
	})
	if err != boom {
		t.Fatalf("RunTx() error = %v, want boom", err)
	}

	// nothing staged leaked out
	if _, err = db.Get(ctx, "things", "t1"); err != nil {
		t.Errorf("t1 lost after rollback: %v", err)
	}
	if _, err = db.Get(ctx, "things", "t2"); err != core.ErrDocNotFound {
		t.Errorf("t2 visible after rollback: %v", err)
	}
}
