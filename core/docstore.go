package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// Document collections. All backends use these names verbatim.
const (
	ColSchools                = "schools"
	ColUserProfiles           = "userProfiles"
	ColCourses                = "courses"
	ColClasses                = "classes"
	ColStudents               = "students"
	ColClassCourseAssignments = "classCourseAssignments"
	ColEnrollments            = "enrollments"
	ColGrades                 = "grades"
	ColAcademicTerms          = "academicTerms"
	ColTeacherGroups          = "teacherGroups"
	ColFeedback               = "feedback"
)

var ErrDocNotFound = errors.New("document not found")

type (
	// Doc is a raw stored document. Data carries the JSON encoding of the entity;
	// field names in Data double as query keys in every backend.
	Doc struct {
		ID   string
		Data json.RawMessage
	}

	// Filter matches documents whose top-level fields equal every given value (AND).
	Filter map[string]interface{}

	// Tx is the read/write surface of the store. Store itself satisfies it for
	// single-document operations; RunTx binds it to a transaction.
	Tx interface {
		// Get returns ErrDocNotFound for an absent id.
		Get(ctx context.Context, collection, id string) (Doc, error)
		Query(ctx context.Context, collection string, filter Filter) ([]Doc, error)
		// Put creates or replaces the document.
		Put(ctx context.Context, collection string, doc Doc) error
		// Delete is a no-op for an absent id.
		Delete(ctx context.Context, collection, id string) error
	}

	// Store is the document store adapter: CRUD plus a transaction primitive.
	Store interface {
		Tx

		// RunTx executes fn atomically: either all writes apply or none do.
		// Conflict/timeout aborts surface as *TransientError.
		RunTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
		Close(ctx context.Context) error
	}
)

const (
	txMaxAttempts = 3
	txBackoffUnit = 100 * time.Millisecond
)

// RunInTx runs fn in a store transaction, retrying transient aborts with a
// linear backoff before surfacing the failure.
func RunInTx(ctx context.Context, store Store, fn func(ctx context.Context, tx Tx) error) error {
	var err error
	for attempt := 1; attempt <= txMaxAttempts; attempt++ {
		if err = store.RunTx(ctx, fn); err == nil || !IsTransient(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * txBackoffUnit):
		}
	}
	return err
}
