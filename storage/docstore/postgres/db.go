// Package postgres backs the document store contract with a single JSONB
// documents table. Transactions run SERIALIZABLE; serialization failures and
// deadlocks surface as transient errors for the retry loop upstream.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/trezcool/goose"

	"github.com/ndishimyeemilien/report-sub001/core"
	appfs "github.com/ndishimyeemilien/report-sub001/fs"
)

const (
	getQry    = `SELECT id, data FROM documents WHERE collection = $1 AND id = $2`
	queryQry  = `SELECT id, data FROM documents WHERE collection = $1 AND data @> $2`
	putQry    = `INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)
                 ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data`
	deleteQry = `DELETE FROM documents WHERE collection = $1 AND id = $2`
)

type DB struct {
	db *sqlx.DB
}

var _ core.Store = (*DB)(nil)

func Open(conf *core.Config) (*DB, error) {
	sslMode := "require"
	if conf.Database.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(conf.Database.User, conf.Database.Password),
		Host:     conf.Database.Address(),
		Path:     conf.Database.Name,
		RawQuery: q.Encode(),
	}

	db, err := sqlx.Open("postgres", u.String())
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if err = ping(db); err != nil {
		return nil, err
	}
	return &DB{db: db}, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// Migrate applies the embedded schema migrations.
func Migrate(db *DB) error {
	if err := goose.RunFS("up", db.db.DB, appfs.FS, "migrations"); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}

func (db *DB) Get(ctx context.Context, collection, id string) (core.Doc, error) {
	return getDoc(ctx, db.db, collection, id)
}

func (db *DB) Query(ctx context.Context, collection string, filter core.Filter) ([]core.Doc, error) {
	return queryDocs(ctx, db.db, collection, filter)
}

func (db *DB) Put(ctx context.Context, collection string, doc core.Doc) error {
	return putDoc(ctx, db.db, collection, doc)
}

func (db *DB) Delete(ctx context.Context, collection, id string) error {
	return deleteDoc(ctx, db.db, collection, id)
}

func (db *DB) RunTx(ctx context.Context, fn func(ctx context.Context, tx core.Tx) error) error {
	tx, err := db.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return wrapPqErr(err, "beginning transaction")
	}

	if err = fn(ctx, &pgTx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err = tx.Commit(); err != nil {
		return wrapPqErr(err, "committing transaction")
	}
	return nil
}

func (db *DB) Close(ctx context.Context) error {
	return db.db.Close()
}

// SQLDB exposes the underlying handle for migration tooling.
func (db *DB) SQLDB() *sql.DB {
	return db.db.DB
}

type pgTx struct {
	tx *sqlx.Tx
}

var _ core.Tx = (*pgTx)(nil)

func (t *pgTx) Get(ctx context.Context, collection, id string) (core.Doc, error) {
	return getDoc(ctx, t.tx, collection, id)
}

func (t *pgTx) Query(ctx context.Context, collection string, filter core.Filter) ([]core.Doc, error) {
	return queryDocs(ctx, t.tx, collection, filter)
}

func (t *pgTx) Put(ctx context.Context, collection string, doc core.Doc) error {
	return putDoc(ctx, t.tx, collection, doc)
}

func (t *pgTx) Delete(ctx context.Context, collection, id string) error {
	return deleteDoc(ctx, t.tx, collection, id)
}

// shared plumbing; sqlx.ExtContext is satisfied by both *sqlx.DB and *sqlx.Tx.

func getDoc(ctx context.Context, q sqlx.ExtContext, collection, id string) (core.Doc, error) {
	var row struct {
		ID   string `db:"id"`
		Data []byte `db:"data"`
	}
	if err := sqlx.GetContext(ctx, q, &row, getQry, collection, id); err != nil {
		if err == sql.ErrNoRows {
			return core.Doc{}, core.ErrDocNotFound
		}
		return core.Doc{}, wrapPqErr(err, "getting document")
	}
	return core.Doc{ID: row.ID, Data: row.Data}, nil
}

func queryDocs(ctx context.Context, q sqlx.ExtContext, collection string, filter core.Filter) ([]core.Doc, error) {
	if filter == nil {
		filter = core.Filter{}
	}
	fdata, err := json.Marshal(filter)
	if err != nil {
		return nil, errors.Wrap(err, "encoding filter")
	}

	var rows []struct {
		ID   string `db:"id"`
		Data []byte `db:"data"`
	}
	if err = sqlx.SelectContext(ctx, q, &rows, queryQry, collection, fdata); err != nil {
		return nil, wrapPqErr(err, "querying documents")
	}

	docs := make([]core.Doc, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, core.Doc{ID: row.ID, Data: row.Data})
	}
	return docs, nil
}

func putDoc(ctx context.Context, q sqlx.ExtContext, collection string, doc core.Doc) error {
	_, err := q.ExecContext(ctx, putQry, collection, doc.ID, []byte(doc.Data))
	return wrapPqErr(err, "putting document")
}

func deleteDoc(ctx context.Context, q sqlx.ExtContext, collection, id string) error {
	_, err := q.ExecContext(ctx, deleteQry, collection, id)
	return wrapPqErr(err, "deleting document")
}

// wrapPqErr tags serialization failures (40001) and deadlocks (40P01) as
// transient so core.RunInTx retries them.
func wrapPqErr(err error, msg string) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01":
			return errors.Wrap(core.NewTransientError(err), msg)
		}
	}
	if err == context.DeadlineExceeded {
		return errors.Wrap(core.NewTransientError(err), msg)
	}
	return errors.Wrap(err, msg)
}
