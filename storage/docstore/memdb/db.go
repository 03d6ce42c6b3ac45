// Package memdb is an in-memory document store used in tests and DEV mode.
// Transactions run against a snapshot under one lock and commit by swap, so a
// failed fn leaves the store untouched.
package memdb

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ndishimyeemilien/report-sub001/core"
)

type DB struct {
	mu   sync.RWMutex
	cols map[string]map[string]json.RawMessage
}

var _ core.Store = (*DB)(nil)

func Open() (*DB, error) {
	return &DB{cols: make(map[string]map[string]json.RawMessage)}, nil
}

func (db *DB) Get(ctx context.Context, collection, id string) (core.Doc, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return get(db.cols, collection, id)
}

func (db *DB) Query(ctx context.Context, collection string, filter core.Filter) ([]core.Doc, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return query(db.cols, collection, filter)
}

func (db *DB) Put(ctx context.Context, collection string, doc core.Doc) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	put(db.cols, collection, doc)
	return nil
}

func (db *DB) Delete(ctx context.Context, collection, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if col, ok := db.cols[collection]; ok {
		delete(col, id)
	}
	return nil
}

func (db *DB) RunTx(ctx context.Context, fn func(ctx context.Context, tx core.Tx) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	staged := clone(db.cols)
	if err := fn(ctx, &memTx{cols: staged}); err != nil {
		return err
	}
	db.cols = staged
	return nil
}

func (db *DB) Close(ctx context.Context) error {
	return nil
}

// memTx operates on the staged copy; it is only reachable while the DB lock
// is held.
type memTx struct {
	cols map[string]map[string]json.RawMessage
}

var _ core.Tx = (*memTx)(nil)

func (tx *memTx) Get(ctx context.Context, collection, id string) (core.Doc, error) {
	return get(tx.cols, collection, id)
}

func (tx *memTx) Query(ctx context.Context, collection string, filter core.Filter) ([]core.Doc, error) {
	return query(tx.cols, collection, filter)
}

func (tx *memTx) Put(ctx context.Context, collection string, doc core.Doc) error {
	put(tx.cols, collection, doc)
	return nil
}

func (tx *memTx) Delete(ctx context.Context, collection, id string) error {
	if col, ok := tx.cols[collection]; ok {
		delete(col, id)
	}
	return nil
}

// shared plumbing

func get(cols map[string]map[string]json.RawMessage, collection, id string) (core.Doc, error) {
	if col, ok := cols[collection]; ok {
		if data, ok := col[id]; ok {
			return core.Doc{ID: id, Data: data}, nil
		}
	}
	return core.Doc{}, core.ErrDocNotFound
}

func query(cols map[string]map[string]json.RawMessage, collection string, filter core.Filter) ([]core.Doc, error) {
	col := cols[collection]
	docs := make([]core.Doc, 0, len(col))
	for id, data := range col {
		ok, err := matches(data, filter)
		if err != nil {
			return nil, err
		}
		if ok {
			docs = append(docs, core.Doc{ID: id, Data: data})
		}
	}
	return docs, nil
}

func put(cols map[string]map[string]json.RawMessage, collection string, doc core.Doc) {
	col, ok := cols[collection]
	if !ok {
		col = make(map[string]json.RawMessage)
		cols[collection] = col
	}
	data := make(json.RawMessage, len(doc.Data))
	copy(data, doc.Data)
	col[doc.ID] = data
}

// matches reports whether every filter field equals the document's value.
// Filter values are JSON-normalized first so e.g. ints meet stored floats.
func matches(data json.RawMessage, filter core.Filter) (bool, error) {
	if len(filter) == 0 {
		return true, nil
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return false, err
	}
	for key, want := range filter {
		norm, err := normalize(want)
		if err != nil {
			return false, err
		}
		got, ok := fields[key]
		if !ok || !equal(got, norm) {
			return false, nil
		}
	}
	return true, nil
}

func normalize(v interface{}) (interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var norm interface{}
	if err = json.Unmarshal(data, &norm); err != nil {
		return nil, err
	}
	return norm, nil
}

func equal(a, b interface{}) bool {
	da, err := json.Marshal(a)
	if err != nil {
		return false
	}
	db, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return string(da) == string(db)
}

// clone deep-copies the collection maps; the raw JSON values are never
// mutated in place so sharing them is safe.
func clone(cols map[string]map[string]json.RawMessage) map[string]map[string]json.RawMessage {
	cp := make(map[string]map[string]json.RawMessage, len(cols))
	for name, col := range cols {
		colCp := make(map[string]json.RawMessage, len(col))
		for id, data := range col {
			colCp[id] = data
		}
		cp[name] = colCp
	}
	return cp
}
