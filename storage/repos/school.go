package docrepos

import (
	"context"
	"time"

	"github.com/ndishimyeemilien/report-sub001/core"
	"github.com/ndishimyeemilien/report-sub001/core/account"
	"github.com/ndishimyeemilien/report-sub001/core/grading"
	"github.com/ndishimyeemilien/report-sub001/core/school"
)

type schoolRepository struct {
	store core.Store // nil when tx-bound
	db    core.Tx
}

var _ school.Repository = (*schoolRepository)(nil)

func NewSchoolRepository(store core.Store) school.Repository {
	return &schoolRepository{store: store, db: store}
}

func (r *schoolRepository) Atomic(ctx context.Context, fn func(school.Repository) error) error {
	if r.store == nil { // already tx-bound: join the ongoing transaction
		return fn(r)
	}
	return core.RunInTx(ctx, r.store, func(ctx context.Context, tx core.Tx) error {
		return fn(&schoolRepository{db: tx})
	})
}

// Schools

func (r *schoolRepository) CreateSchool(ctx context.Context, s school.School) (school.School, error) {
	now := time.Now().UTC()
	s.ID, s.CreatedAt, s.UpdatedAt = newID(), now, now
	return s, putDoc(ctx, r.db, core.ColSchools, s.ID, s)
}

func (r *schoolRepository) GetSchool(ctx context.Context, id string) (school.School, error) {
	doc, err := r.db.Get(ctx, core.ColSchools, id)
	if err != nil {
		if err == core.ErrDocNotFound {
			return school.School{}, school.ErrSchoolNotFound
		}
		return school.School{}, err
	}
	var s school.School
	return s, decode(doc, &s)
}

func (r *schoolRepository) QuerySchools(ctx context.Context) ([]school.School, error) {
	docs, err := r.db.Query(ctx, core.ColSchools, nil)
	if err != nil {
		return nil, err
	}
	schools := make([]school.School, 0, len(docs))
	for _, doc := range docs {
		var s school.School
		if err = decode(doc, &s); err != nil {
			return nil, err
		}
		schools = append(schools, s)
	}
	return schools, nil
}

// Classes

func (r *schoolRepository) CreateClass(ctx context.Context, c school.Class) (school.Class, error) {
	now := time.Now().UTC()
	c.ID, c.CreatedAt, c.UpdatedAt = newID(), now, now
	return c, putDoc(ctx, r.db, core.ColClasses, c.ID, c)
}

func (r *schoolRepository) GetClass(ctx context.Context, id string) (school.Class, error) {
	doc, err := r.db.Get(ctx, core.ColClasses, id)
	if err != nil {
		if err == core.ErrDocNotFound {
			return school.Class{}, school.ErrClassNotFound
		}
		return school.Class{}, err
	}
	var c school.Class
	return c, decode(doc, &c)
}

func (r *schoolRepository) QueryClasses(ctx context.Context) ([]school.Class, error) {
	return decodeClasses(r.db.Query(ctx, core.ColClasses, nil))
}

func (r *schoolRepository) SaveClass(ctx context.Context, c school.Class) (school.Class, error) {
	c.UpdatedAt = nonDecreasing(c.UpdatedAt, time.Now().UTC())
	return c, putDoc(ctx, r.db, core.ColClasses, c.ID, c)
}

func (r *schoolRepository) DeleteClass(ctx context.Context, id string) error {
	return r.db.Delete(ctx, core.ColClasses, id)
}

// Students

func (r *schoolRepository) CreateStudent(ctx context.Context, s school.Student) (school.Student, error) {
	now := time.Now().UTC()
	s.ID, s.CreatedAt, s.UpdatedAt = newID(), now, now
	return s, putDoc(ctx, r.db, core.ColStudents, s.ID, s)
}

func (r *schoolRepository) GetStudent(ctx context.Context, id string) (school.Student, error) {
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

func (r *schoolRepository) QueryStudents(ctx context.Context) ([]school.Student, error) {
	return decodeStudents(r.db.Query(ctx, core.ColStudents, nil))
}

func (r *schoolRepository) QueryStudentsByClass(ctx context.Context, classID string) ([]school.Student, error) {
	return decodeStudents(r.db.Query(ctx, core.ColStudents, core.Filter{"classId": classID}))
}

func (r *schoolRepository) SaveStudent(ctx context.Context, s school.Student) (school.Student, error) {
	s.UpdatedAt = nonDecreasing(s.UpdatedAt, time.Now().UTC())
	return s, putDoc(ctx, r.db, core.ColStudents, s.ID, s)
}

func (r *schoolRepository) DeleteStudent(ctx context.Context, id string) error {
	return r.db.Delete(ctx, core.ColStudents, id)
}

// Courses

func (r *schoolRepository) CreateCourse(ctx context.Context, c school.Course) (school.Course, error) {
	now := time.Now().UTC()
	c.ID, c.CreatedAt, c.UpdatedAt = newID(), now, now
	return c, putDoc(ctx, r.db, core.ColCourses, c.ID, c)
}

func (r *schoolRepository) GetCourse(ctx context.Context, id string) (school.Course, error) {
	return getCourse(ctx, r.db, id)
}

func (r *schoolRepository) QueryCourses(ctx context.Context) ([]school.Course, error) {
	docs, err := r.db.Query(ctx, core.ColCourses, nil)
	if err != nil {
		return nil, err
	}
	courses := make([]school.Course, 0, len(docs))
	for _, doc := range docs {
		var c school.Course
		if err = decode(doc, &c); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, nil
}

func (r *schoolRepository) SaveCourse(ctx context.Context, c school.Course) (school.Course, error) {
	c.UpdatedAt = nonDecreasing(c.UpdatedAt, time.Now().UTC())
	return c, putDoc(ctx, r.db, core.ColCourses, c.ID, c)
}

func (r *schoolRepository) DeleteCourse(ctx context.Context, id string) error {
	return r.db.Delete(ctx, core.ColCourses, id)
}

// Assignments

func (r *schoolRepository) GetAssignmentByPair(ctx context.Context, classID, courseID string) (school.ClassCourseAssignment, error) {
	docs, err := r.db.Query(ctx, core.ColClassCourseAssignments, core.Filter{"classId": classID, "courseId": courseID})
	if err != nil {
		return school.ClassCourseAssignment{}, err
	}
	if len(docs) == 0 {
		return school.ClassCourseAssignment{}, school.ErrAssignmentNotFound
	}
	var a school.ClassCourseAssignment
	return a, decode(docs[0], &a)
}

func (r *schoolRepository) QueryAssignmentsByClass(ctx context.Context, classID string) ([]school.ClassCourseAssignment, error) {
	return decodeAssignments(r.db.Query(ctx, core.ColClassCourseAssignments, core.Filter{"classId": classID}))
}

func (r *schoolRepository) QueryAssignmentsByCourse(ctx context.Context, courseID string) ([]school.ClassCourseAssignment, error) {
	return decodeAssignments(r.db.Query(ctx, core.ColClassCourseAssignments, core.Filter{"courseId": courseID}))
}

func (r *schoolRepository) CreateAssignment(ctx context.Context, a school.ClassCourseAssignment) (school.ClassCourseAssignment, error) {
	now := time.Now().UTC()
	a.ID, a.CreatedAt, a.UpdatedAt = newID(), now, now
	return a, putDoc(ctx, r.db, core.ColClassCourseAssignments, a.ID, a)
}

func (r *schoolRepository) SaveAssignment(ctx context.Context, a school.ClassCourseAssignment) (school.ClassCourseAssignment, error) {
	a.UpdatedAt = nonDecreasing(a.UpdatedAt, time.Now().UTC())
	return a, putDoc(ctx, r.db, core.ColClassCourseAssignments, a.ID, a)
}

func (r *schoolRepository) DeleteAssignment(ctx context.Context, id string) error {
	return r.db.Delete(ctx, core.ColClassCourseAssignments, id)
}

// Enrollments

func (r *schoolRepository) GetEnrollmentByPair(ctx context.Context, studentID, courseID string) (school.Enrollment, error) {
	docs, err := r.db.Query(ctx, core.ColEnrollments, core.Filter{"studentId": studentID, "courseId": courseID})
	if err != nil {
		return school.Enrollment{}, err
	}
	if len(docs) == 0 {
		return school.Enrollment{}, school.ErrEnrollmentNotFound
	}
	var e school.Enrollment
	return e, decode(docs[0], &e)
}

func (r *schoolRepository) QueryEnrollmentsByStudent(ctx context.Context, studentID string) ([]school.Enrollment, error) {
	return decodeEnrollments(r.db.Query(ctx, core.ColEnrollments, core.Filter{"studentId": studentID}))
}

func (r *schoolRepository) QueryEnrollmentsByCourse(ctx context.Context, courseID string) ([]school.Enrollment, error) {
	return decodeEnrollments(r.db.Query(ctx, core.ColEnrollments, core.Filter{"courseId": courseID}))
}

func (r *schoolRepository) CreateEnrollment(ctx context.Context, e school.Enrollment) (school.Enrollment, error) {
	now := time.Now().UTC()
	e.ID, e.CreatedAt, e.UpdatedAt = newID(), now, now
	return e, putDoc(ctx, r.db, core.ColEnrollments, e.ID, e)
}

func (r *schoolRepository) SaveEnrollment(ctx context.Context, e school.Enrollment) (school.Enrollment, error) {
	e.UpdatedAt = nonDecreasing(e.UpdatedAt, time.Now().UTC())
	return e, putDoc(ctx, r.db, core.ColEnrollments, e.ID, e)
}

func (r *schoolRepository) DeleteEnrollment(ctx context.Context, id string) error {
	return r.db.Delete(ctx, core.ColEnrollments, id)
}

// Terms, groups, feedback

func (r *schoolRepository) CreateTerm(ctx context.Context, t school.AcademicTerm) (school.AcademicTerm, error) {
	now := time.Now().UTC()
	t.ID, t.CreatedAt, t.UpdatedAt = newID(), now, now
	return t, putDoc(ctx, r.db, core.ColAcademicTerms, t.ID, t)
}

func (r *schoolRepository) QueryTerms(ctx context.Context) ([]school.AcademicTerm, error) {
	docs, err := r.db.Query(ctx, core.ColAcademicTerms, nil)
	if err != nil {
		return nil, err
	}
	terms := make([]school.AcademicTerm, 0, len(docs))
	for _, doc := range docs {
		var t school.AcademicTerm
		if err = decode(doc, &t); err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, nil
}

func (r *schoolRepository) DeleteTerm(ctx context.Context, id string) error {
	return r.db.Delete(ctx, core.ColAcademicTerms, id)
}

func (r *schoolRepository) CreateGroup(ctx context.Context, g school.TeacherGroup) (school.TeacherGroup, error) {
	now := time.Now().UTC()
	g.ID, g.CreatedAt, g.UpdatedAt = newID(), now, now
	return g, putDoc(ctx, r.db, core.ColTeacherGroups, g.ID, g)
}

func (r *schoolRepository) QueryGroups(ctx context.Context) ([]school.TeacherGroup, error) {
	docs, err := r.db.Query(ctx, core.ColTeacherGroups, nil)
	if err != nil {
		return nil, err
	}
	groups := make([]school.TeacherGroup, 0, len(docs))
	for _, doc := range docs {
		var g school.TeacherGroup
		if err = decode(doc, &g); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, nil
}

func (r *schoolRepository) CreateFeedback(ctx context.Context, f school.Feedback) (school.Feedback, error) {
	now := time.Now().UTC()
	f.ID, f.CreatedAt, f.UpdatedAt = newID(), now, now
	return f, putDoc(ctx, r.db, core.ColFeedback, f.ID, f)
}

func (r *schoolRepository) QueryFeedback(ctx context.Context) ([]school.Feedback, error) {
	docs, err := r.db.Query(ctx, core.ColFeedback, nil)
	if err != nil {
		return nil, err
	}
	fbs := make([]school.Feedback, 0, len(docs))
	for _, doc := range docs {
		var f school.Feedback
		if err = decode(doc, &f); err != nil {
			return nil, err
		}
		fbs = append(fbs, f)
	}
	return fbs, nil
}

// Profiles (cascade targets)

func (r *schoolRepository) GetProfile(ctx context.Context, uid string) (account.Profile, error) {
	return getProfile(ctx, r.db, uid)
}

func (r *schoolRepository) SaveProfile(ctx context.Context, p account.Profile) (account.Profile, error) {
	return saveProfile(ctx, r.db, p)
}

// Grade name fix-ups

func (r *schoolRepository) UpdateGradeNamesByCourse(ctx context.Context, courseID, courseName string) error {
	docs, err := r.db.Query(ctx, core.ColGrades, core.Filter{"courseId": courseID})
	if err != nil {
		return err
	}
	for _, doc := range docs {
		var g grading.Grade
		if err = decode(doc, &g); err != nil {
			return err
		}
		g.CourseName = courseName
		g.UpdatedAt = nonDecreasing(g.UpdatedAt, time.Now().UTC())
		if err = putDoc(ctx, r.db, core.ColGrades, g.ID, g); err != nil {
			return err
		}
	}
	return nil
}

func (r *schoolRepository) UpdateGradeNamesByStudent(ctx context.Context, studentID, studentName string) error {
	docs, err := r.db.Query(ctx, core.ColGrades, core.Filter{"studentId": studentID})
	if err != nil {
		return err
	}
	for _, doc := range docs {
		var g grading.Grade
		if err = decode(doc, &g); err != nil {
			return err
		}
		g.StudentName = studentName
		g.UpdatedAt = nonDecreasing(g.UpdatedAt, time.Now().UTC())
		if err = putDoc(ctx, r.db, core.ColGrades, g.ID, g); err != nil {
			return err
		}
	}
	return nil
}

// decode helpers

func getCourse(ctx context.Context, db core.Tx, id string) (school.Course, error) {
	doc, err := db.Get(ctx, core.ColCourses, id)
	if err != nil {
		if err == core.ErrDocNotFound {
			return school.Course{}, school.ErrCourseNotFound
		}
		return school.Course{}, err
	}
	var c school.Course
	return c, decode(doc, &c)
}

func decodeClasses(docs []core.Doc, err error) ([]school.Class, error) {
	if err != nil {
		return nil, err
	}
	classes := make([]school.Class, 0, len(docs))
	for _, doc := range docs {
		var c school.Class
		if err = decode(doc, &c); err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	return classes, nil
}

func decodeStudents(docs []core.Doc, err error) ([]school.Student, error) {
	if err != nil {
		return nil, err
	}
	students := make([]school.Student, 0, len(docs))
	for _, doc := range docs {
		var s school.Student
		if err = decode(doc, &s); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, nil
}

func decodeAssignments(docs []core.Doc, err error) ([]school.ClassCourseAssignment, error) {
	if err != nil {
		return nil, err
	}
	asgs := make([]school.ClassCourseAssignment, 0, len(docs))
	for _, doc := range docs {
		var a school.ClassCourseAssignment
		if err = decode(doc, &a); err != nil {
			return nil, err
		}
		asgs = append(asgs, a)
	}
	return asgs, nil
}

func decodeEnrollments(docs []core.Doc, err error) ([]school.Enrollment, error) {
	if err != nil {
		return nil, err
	}
	enrs := make([]school.Enrollment, 0, len(docs))
	for _, doc := range docs {
		var e school.Enrollment
		if err = decode(doc, &e); err != nil {
			return nil, err
		}
		enrs = append(enrs, e)
	}
	return enrs, nil
}
