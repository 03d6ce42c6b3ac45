package docrepos

import (
	"context"
	"time"

	"github.com/ndishimyeemilien/report-sub001/core"
	"github.com/ndishimyeemilien/report-sub001/core/grading"
	"github.com/ndishimyeemilien/report-sub001/core/school"
)

type gradingRepository struct {
	store core.Store // nil when tx-bound
	db    core.Tx
}

var _ grading.Repository = (*gradingRepository)(nil)

func NewGradingRepository(store core.Store) grading.Repository {
	return &gradingRepository{store: store, db: store}
}

func (r *gradingRepository) Atomic(ctx context.Context, fn func(grading.Repository) error) error {
	if r.store == nil {
		return fn(r)
	}
	return core.RunInTx(ctx, r.store, func(ctx context.Context, tx core.Tx) error {
		return fn(&gradingRepository{db: tx})
	})
}

func (r *gradingRepository) GetCourse(ctx context.Context, id string) (school.Course, error) {
	return getCourse(ctx, r.db, id)
}

func (r *gradingRepository) GetStudent(ctx context.Context, id string) (school.Student, error) {
	doc, err := r.db.Get(ctx, core.ColStudents, id)
	if err != nil {
		if err == core.ErrDocNotFound {
			return school.Student{}, school.ErrStudentNotFound
		}
		return school.Student{}, err
	}
	var s school.Student
	return s, decode(doc, &s)
}

func (r *gradingRepository) GetGradeByKey(ctx context.Context, studentID, courseID, term string) (grading.Grade, error) {
	docs, err := r.db.Query(ctx, core.ColGrades, core.Filter{
		"studentId": studentID,
		"courseId":  courseID,
		"term":      term,
	})
	if err != nil {
		return grading.Grade{}, err
	}
	if len(docs) == 0 {
		return grading.Grade{}, grading.ErrNotFound
	}
	var g grading.Grade
	return g, decode(docs[0], &g)
}

func (r *gradingRepository) CreateGrade(ctx context.Context, g grading.Grade) (grading.Grade, error) {
	now := time.Now().UTC()
	g.ID, g.CreatedAt, g.UpdatedAt = newID(), now, now
	return g, putDoc(ctx, r.db, core.ColGrades, g.ID, g)
}

func (r *gradingRepository) SaveGrade(ctx context.Context, g grading.Grade) (grading.Grade, error) {
	g.UpdatedAt = nonDecreasing(g.UpdatedAt, time.Now().UTC())
	return g, putDoc(ctx, r.db, core.ColGrades, g.ID, g)
}

func (r *gradingRepository) QueryGradesByStudent(ctx context.Context, studentID string) ([]grading.Grade, error) {
	return decodeGrades(r.db.Query(ctx, core.ColGrades, core.Filter{"studentId": studentID}))
}

func (r *gradingRepository) QueryGradesByCourse(ctx context.Context, courseID string) ([]grading.Grade, error) {
	return decodeGrades(r.db.Query(ctx, core.ColGrades, core.Filter{"courseId": courseID}))
}

func decodeGrades(docs []core.Doc, err error) ([]grading.Grade, error) {
	if err != nil {
		return nil, err
	}
	grades := make([]grading.Grade, 0, len(docs))
	for _, doc := range docs {
		var g grading.Grade
		if err = decode(doc, &g); err != nil {
			return nil, err
		}
		grades = append(grades, g)
	}
	return grades, nil
}
