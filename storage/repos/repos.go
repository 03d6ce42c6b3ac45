// Package docrepos implements the typed entity repositories over the abstract
// document store. It owns shape validation on read and timestamp stamping on
// write; the engines above it never touch raw documents.
package docrepos

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/ndishimyeemilien/report-sub001/core"
)

func newID() string {
	return uuid.New().String()
}

// decode validates the stored shape; a malformed document is a data bug and
// surfaces as a validation error, never as a silent zero value.
func decode(doc core.Doc, v interface{}) error {
	if err := json.Unmarshal(doc.Data, v); err != nil {
		return core.NewValidationError(errors.Wrap(err, "malformed document"))
	}
	return nil
}

func putDoc(ctx context.Context, db core.Tx, collection, id string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "encoding document")
	}
	return db.Put(ctx, collection, core.Doc{ID: id, Data: data})
}

// nonDecreasing keeps per-document timestamps monotonic even if the clock
// steps backwards between writes.
func nonDecreasing(prev, now time.Time) time.Time {
	if now.Before(prev) {
		return prev
	}
	return now
}
