package school

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ndishimyeemilien/report-sub001/core"
	"github.com/ndishimyeemilien/report-sub001/core/account"
	"github.com/ndishimyeemilien/report-sub001/core/authz"
)

var (
	// errors
	ErrSchoolNotFound     = errors.New("school not found")
	ErrClassNotFound      = errors.New("class not found")
	ErrCourseNotFound     = errors.New("course not found")
	ErrStudentNotFound    = errors.New("student not found")
	ErrAssignmentNotFound = errors.New("class course assignment not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrTermNotFound       = errors.New("academic term not found")
	ErrNotATeacher        = errors.New("profile is not a teacher")
)

type (
	// Repository exposes typed accessors over the document store. Create*
	// methods assign IDs and stamp timestamps; Save* methods replace and
	// re-stamp UpdatedAt.
	Repository interface {
		// Atomic binds the accessors to one store transaction; either every
		// write inside fn applies or none do.
		Atomic(ctx context.Context, fn func(Repository) error) error

		CreateSchool(ctx context.Context, s School) (School, error)
		GetSchool(ctx context.Context, id string) (School, error)
		QuerySchools(ctx context.Context) ([]School, error)

		CreateClass(ctx context.Context, c Class) (Class, error)
		GetClass(ctx context.Context, id string) (Class, error)
		QueryClasses(ctx context.Context) ([]Class, error)
		SaveClass(ctx context.Context, c Class) (Class, error)
		DeleteClass(ctx context.Context, id string) error

		CreateStudent(ctx context.Context, s Student) (Student, error)
		GetStudent(ctx context.Context, id string) (Student, error)
		QueryStudents(ctx context.Context) ([]Student, error)
		QueryStudentsByClass(ctx context.Context, classID string) ([]Student, error)
		SaveStudent(ctx context.Context, s Student) (Student, error)
		DeleteStudent(ctx context.Context, id string) error

		CreateCourse(ctx context.Context, c Course) (Course, error)
		GetCourse(ctx context.Context, id string) (Course, error)
		QueryCourses(ctx context.Context) ([]Course, error)
		SaveCourse(ctx context.Context, c Course) (Course, error)
		DeleteCourse(ctx context.Context, id string) error

		GetAssignmentByPair(ctx context.Context, classID, courseID string) (ClassCourseAssignment, error)
		QueryAssignmentsByClass(ctx context.Context, classID string) ([]ClassCourseAssignment, error)
		QueryAssignmentsByCourse(ctx context.Context, courseID string) ([]ClassCourseAssignment, error)
		CreateAssignment(ctx context.Context, a ClassCourseAssignment) (ClassCourseAssignment, error)
		SaveAssignment(ctx context.Context, a ClassCourseAssignment) (ClassCourseAssignment, error)
		DeleteAssignment(ctx context.Context, id string) error

		GetEnrollmentByPair(ctx context.Context, studentID, courseID string) (Enrollment, error)
		QueryEnrollmentsByStudent(ctx context.Context, studentID string) ([]Enrollment, error)
		QueryEnrollmentsByCourse(ctx context.Context, courseID string) ([]Enrollment, error)
		CreateEnrollment(ctx context.Context, e Enrollment) (Enrollment, error)
		SaveEnrollment(ctx context.Context, e Enrollment) (Enrollment, error)
		DeleteEnrollment(ctx context.Context, id string) error

		CreateTerm(ctx context.Context, t AcademicTerm) (AcademicTerm, error)
		QueryTerms(ctx context.Context) ([]AcademicTerm, error)
		DeleteTerm(ctx context.Context, id string) error

		CreateGroup(ctx context.Context, g TeacherGroup) (TeacherGroup, error)
		QueryGroups(ctx context.Context) ([]TeacherGroup, error)

		CreateFeedback(ctx context.Context, f Feedback) (Feedback, error)
		QueryFeedback(ctx context.Context) ([]Feedback, error)

		GetProfile(ctx context.Context, uid string) (account.Profile, error)
		SaveProfile(ctx context.Context, p account.Profile) (account.Profile, error)

		// bulk denormalized-name fix-ups on grade documents
		UpdateGradeNamesByCourse(ctx context.Context, courseID, courseName string) error
		UpdateGradeNamesByStudent(ctx context.Context, studentID, studentName string) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func gate(caller authz.Caller, kind authz.Kind, op authz.Operation) error {
	return authz.Authorize(caller, authz.Resource{Kind: kind}, op).Err()
}

// Schools

func (svc *Service) CreateSchool(ctx context.Context, caller authz.Caller, ns NewSchool) (School, error) {
	if err := gate(caller, authz.KindSchool, authz.OpWrite); err != nil {
		return School{}, err
	}
	if err := ns.Validate(svc.validate); err != nil {
		return School{}, err
	}
	return svc.repo.CreateSchool(ctx, School{
		Name:      ns.Name,
		Type:      ns.Type,
		AdminUIDs: []string{caller.UID},
	})
}

func (svc *Service) QuerySchools(ctx context.Context, caller authz.Caller) ([]School, error) {
	if err := gate(caller, authz.KindSchool, authz.OpRead); err != nil {
		return nil, err
	}
	return svc.repo.QuerySchools(ctx)
}

// Classes

func (svc *Service) CreateClass(ctx context.Context, caller authz.Caller, nc NewClass) (Class, error) {
	if err := gate(caller, authz.KindClass, authz.OpWrite); err != nil {
		return Class{}, err
	}
	if err := nc.Validate(svc.validate); err != nil {
		return Class{}, err
	}
	return svc.repo.CreateClass(ctx, Class{
		Name:          nc.Name,
		Description:   nc.Description,
		AcademicYear:  nc.AcademicYear,
		SecretaryID:   caller.UID,
		SecretaryName: caller.Email,
	})
}

func (svc *Service) GetClass(ctx context.Context, caller authz.Caller, id string) (Class, error) {
	if err := gate(caller, authz.KindClass, authz.OpRead); err != nil {
		return Class{}, err
	}
	return svc.repo.GetClass(ctx, id)
}

func (svc *Service) QueryClasses(ctx context.Context, caller authz.Caller) ([]Class, error) {
	if err := gate(caller, authz.KindClass, authz.OpRead); err != nil {
		return nil, err
	}
	return svc.repo.QueryClasses(ctx)
}

// RenameClass renames a class and rewrites the denormalized className copies
// on every referencing assignment. Readers must always join by ID; the old
// name may be visible until the fix-up lands.
func (svc *Service) RenameClass(ctx context.Context, caller authz.Caller, id, name string) (Class, error) {
	if err := gate(caller, authz.KindClass, authz.OpWrite); err != nil {
		return Class{}, err
	}
	name = core.CleanString(name)
	if name == "" {
		return Class{}, core.NewValidationError(nil, core.FieldError{Field: "name", Error: "this field is required"})
	}

	var cls Class
	err := svc.repo.Atomic(ctx, func(repo Repository) error {
		var err error
		if cls, err = repo.GetClass(ctx, id); err != nil {
			return err
		}
		cls.Name = name
		if cls, err = repo.SaveClass(ctx, cls); err != nil {
			return err
		}

		asgs, err := repo.QueryAssignmentsByClass(ctx, id)
		if err != nil {
			return err
		}
		for _, asg := range asgs {
			asg.ClassName = name
			if _, err = repo.SaveAssignment(ctx, asg); err != nil {
				return err
			}
		}

		students, err := repo.QueryStudentsByClass(ctx, id)
		if err != nil {
			return err
		}
		for _, st := range students {
			st.ClassName = name
			if _, err = repo.SaveStudent(ctx, st); err != nil {
				return err
			}
		}
		return nil
	})
	return cls, err
}

// DeleteClass removes a class together with its assignments and the
// enrollments they produced. Grades are historical records and are retained.
func (svc *Service) DeleteClass(ctx context.Context, caller authz.Caller, id string) error {
	if err := gate(caller, authz.KindClass, authz.OpWrite); err != nil {
		return err
	}
	return svc.repo.Atomic(ctx, func(repo Repository) error {
		if _, err := repo.GetClass(ctx, id); err != nil {
			return err
		}
		asgs, err := repo.QueryAssignmentsByClass(ctx, id)
		if err != nil {
			return err
		}
		students, err := repo.QueryStudentsByClass(ctx, id)
		if err != nil {
			return err
		}
		for _, asg := range asgs {
			for _, st := range students {
				if err = deleteEnrollmentIfPresent(ctx, repo, st.ID, asg.CourseID); err != nil {
					return err
				}
			}
			if err = repo.DeleteAssignment(ctx, asg.ID); err != nil {
				return err
			}
		}
		for _, st := range students {
			st.ClassID, st.ClassName = "", ""
			if _, err = repo.SaveStudent(ctx, st); err != nil {
				return err
			}
		}
		return repo.DeleteClass(ctx, id)
	})
}

// Students

func (svc *Service) CreateStudent(ctx context.Context, caller authz.Caller, ns NewStudent) (Student, error) {
	if err := gate(caller, authz.KindStudent, authz.OpWrite); err != nil {
		return Student{}, err
	}
	if err := ns.Validate(svc.validate); err != nil {
		return Student{}, err
	}
	return svc.repo.CreateStudent(ctx, Student{
		FullName:        ns.FullName,
		StudentSystemID: ns.StudentSystemID,
		Email:           ns.Email,
		Gender:          ns.Gender,
		DateOfBirth:     ns.DateOfBirth,
		GuardianContact: ns.GuardianContact,
	})
}

func (svc *Service) GetStudent(ctx context.Context, caller authz.Caller, id string) (Student, error) {
	if err := gate(caller, authz.KindStudent, authz.OpRead); err != nil {
		return Student{}, err
	}
	return svc.repo.GetStudent(ctx, id)
}

func (svc *Service) QueryStudents(ctx context.Context, caller authz.Caller) ([]Student, error) {
	if err := gate(caller, authz.KindStudent, authz.OpRead); err != nil {
		return nil, err
	}
	return svc.repo.QueryStudents(ctx)
}

// UpdateStudent applies the patch and propagates a changed full name to the
// denormalized copies on enrollments and grades.
func (svc *Service) UpdateStudent(ctx context.Context, caller authz.Caller, id string, ns NewStudent) (Student, error) {
	if err := gate(caller, authz.KindStudent, authz.OpWrite); err != nil {
		return Student{}, err
	}
	if err := ns.Validate(svc.validate); err != nil {
		return Student{}, err
	}

	var st Student
	err := svc.repo.Atomic(ctx, func(repo Repository) error {
		var err error
		if st, err = repo.GetStudent(ctx, id); err != nil {
			return err
		}
		renamed := st.FullName != ns.FullName
		st.FullName = ns.FullName
		st.StudentSystemID = ns.StudentSystemID
		st.Email = ns.Email
		st.Gender = ns.Gender
		st.DateOfBirth = ns.DateOfBirth
		st.GuardianContact = ns.GuardianContact
		if st, err = repo.SaveStudent(ctx, st); err != nil {
			return err
		}
		if !renamed {
			return nil
		}

		enrs, err := repo.QueryEnrollmentsByStudent(ctx, id)
		if err != nil {
			return err
		}
		for _, enr := range enrs {
			enr.StudentName = st.FullName
			if _, err = repo.SaveEnrollment(ctx, enr); err != nil {
				return err
			}
		}
		return repo.UpdateGradeNamesByStudent(ctx, id, st.FullName)
	})
	return st, err
}

// DeleteStudent removes the student and their enrollments; grades are retained.
func (svc *Service) DeleteStudent(ctx context.Context, caller authz.Caller, id string) error {
	if err := gate(caller, authz.KindStudent, authz.OpWrite); err != nil {
		return err
	}
	return svc.repo.Atomic(ctx, func(repo Repository) error {
		if _, err := repo.GetStudent(ctx, id); err != nil {
			return err
		}
		enrs, err := repo.QueryEnrollmentsByStudent(ctx, id)
		if err != nil {
			return err
		}
		for _, enr := range enrs {
			if err = repo.DeleteEnrollment(ctx, enr.ID); err != nil {
				return err
			}
		}
		return repo.DeleteStudent(ctx, id)
	})
}

// Courses

func (svc *Service) CreateCourse(ctx context.Context, caller authz.Caller, nc NewCourse) (Course, error) {
	if err := gate(caller, authz.KindCourse, authz.OpWrite); err != nil {
		return Course{}, err
	}
	if err := nc.Validate(svc.validate); err != nil {
		return Course{}, err
	}
	return svc.repo.CreateCourse(ctx, Course{
		Name:        nc.Name,
		Code:        nc.Code,
		Description: nc.Description,
		Category:    nc.Category,
		Combination: nc.Combination,
	})
}

func (svc *Service) GetCourse(ctx context.Context, caller authz.Caller, id string) (Course, error) {
	if err := gate(caller, authz.KindCourse, authz.OpRead); err != nil {
		return Course{}, err
	}
	return svc.repo.GetCourse(ctx, id)
}

func (svc *Service) QueryCourses(ctx context.Context, caller authz.Caller) ([]Course, error) {
	if err := gate(caller, authz.KindCourse, authz.OpRead); err != nil {
		return nil, err
	}
	return svc.repo.QueryCourses(ctx)
}

// RenameCourse renames a course and rewrites every denormalized courseName
// copy: assignments, enrollments, grades and the owning teacher's cache.
func (svc *Service) RenameCourse(ctx context.Context, caller authz.Caller, id, name string) (Course, error) {
	if err := gate(caller, authz.KindCourse, authz.OpWrite); err != nil {
		return Course{}, err
	}
	name = core.CleanString(name)
	if name == "" {
		return Course{}, core.NewValidationError(nil, core.FieldError{Field: "name", Error: "this field is required"})
	}

	var crs Course
	err := svc.repo.Atomic(ctx, func(repo Repository) error {
		var err error
		if crs, err = repo.GetCourse(ctx, id); err != nil {
			return err
		}
		oldName := crs.Name
		crs.Name = name
		if crs, err = repo.SaveCourse(ctx, crs); err != nil {
			return err
		}

		asgs, err := repo.QueryAssignmentsByCourse(ctx, id)
		if err != nil {
			return err
		}
		for _, asg := range asgs {
			asg.CourseName = name
			if _, err = repo.SaveAssignment(ctx, asg); err != nil {
				return err
			}
		}

		enrs, err := repo.QueryEnrollmentsByCourse(ctx, id)
		if err != nil {
			return err
		}
		for _, enr := range enrs {
			enr.CourseName = name
			if _, err = repo.SaveEnrollment(ctx, enr); err != nil {
				return err
			}
		}

		if err = repo.UpdateGradeNamesByCourse(ctx, id, name); err != nil {
			return err
		}

		if crs.TeacherID != "" {
			if err = replaceAssignedCourseName(ctx, repo, crs.TeacherID, oldName, name); err != nil {
				return err
			}
		}
		return nil
	})
	return crs, err
}

// SetCourseTeacher hands a course to a teacher: the ownership scope for grade
// writes. Maintains the assignedCourseNames cache on both profiles.
func (svc *Service) SetCourseTeacher(ctx context.Context, caller authz.Caller, courseID, teacherUID string) (Course, error) {
	if err := gate(caller, authz.KindCourse, authz.OpWrite); err != nil {
		return Course{}, err
	}

	var crs Course
	err := svc.repo.Atomic(ctx, func(repo Repository) error {
		var err error
		if crs, err = repo.GetCourse(ctx, courseID); err != nil {
			return err
		}

		var teacher account.Profile
		if teacherUID != "" {
			if teacher, err = repo.GetProfile(ctx, teacherUID); err != nil {
				return err
			}
			if teacher.Role != authz.RoleTeacher {
				return core.NewValidationError(ErrNotATeacher, core.FieldError{Field: "teacherId", Error: ErrNotATeacher.Error()})
			}
		}

		if crs.TeacherID != "" && crs.TeacherID != teacherUID {
			if err = replaceAssignedCourseName(ctx, repo, crs.TeacherID, crs.Name, ""); err != nil {
				return err
			}
		}

		crs.TeacherID = teacherUID
		crs.TeacherName = teacher.Email
		if crs, err = repo.SaveCourse(ctx, crs); err != nil {
			return err
		}

		if teacherUID != "" {
			return replaceAssignedCourseName(ctx, repo, teacherUID, "", crs.Name)
		}
		return nil
	})
	return crs, err
}

// DeleteCourse removes the course, its class assignments and enrollments.
// Grades are retained as historical records.
func (svc *Service) DeleteCourse(ctx context.Context, caller authz.Caller, id string) error {
	if err := gate(caller, authz.KindCourse, authz.OpWrite); err != nil {
		return err
	}
	return svc.repo.Atomic(ctx, func(repo Repository) error {
		crs, err := repo.GetCourse(ctx, id)
		if err != nil {
			return err
		}

		asgs, err := repo.QueryAssignmentsByCourse(ctx, id)
		if err != nil {
			return err
		}
		for _, asg := range asgs {
			if err = repo.DeleteAssignment(ctx, asg.ID); err != nil {
				return err
			}
			if err = recountAssignments(ctx, repo, asg.ClassID); err != nil {
				return err
			}
		}

		enrs, err := repo.QueryEnrollmentsByCourse(ctx, id)
		if err != nil {
			return err
		}
		for _, enr := range enrs {
			if err = repo.DeleteEnrollment(ctx, enr.ID); err != nil {
				return err
			}
		}

		if crs.TeacherID != "" {
			if err = replaceAssignedCourseName(ctx, repo, crs.TeacherID, crs.Name, ""); err != nil {
				return err
			}
		}
		return repo.DeleteCourse(ctx, id)
	})
}

// Consistency fan-outs

// AssignCourseToClass links a course to a class and enrolls every student of
// the class in the course. Idempotent: an existing pair is success and the
// fan-out is re-derived, never duplicated.
func (svc *Service) AssignCourseToClass(ctx context.Context, caller authz.Caller, classID, courseID string) (ClassCourseAssignment, error) {
	if err := gate(caller, authz.KindAssignment, authz.OpWrite); err != nil {
		return ClassCourseAssignment{}, err
	}

	var asg ClassCourseAssignment
	err := svc.repo.Atomic(ctx, func(repo Repository) error {
		cls, err := repo.GetClass(ctx, classID)
		if err != nil {
			return err
		}
		crs, err := repo.GetCourse(ctx, courseID)
		if err != nil {
			return err
		}

		asg, err = repo.GetAssignmentByPair(ctx, classID, courseID)
		switch err {
		case nil: // already assigned; re-derive the fan-out below
		case ErrAssignmentNotFound:
			asg, err = repo.CreateAssignment(ctx, ClassCourseAssignment{
				ClassID:    cls.ID,
				ClassName:  cls.Name,
				CourseID:   crs.ID,
				CourseName: crs.Name,
				AssignedAt: time.Now().UTC(),
			})
			if err != nil {
				return err
			}
		default:
			return err
		}

		if err = recountAssignments(ctx, repo, classID); err != nil {
			return err
		}

		students, err := repo.QueryStudentsByClass(ctx, classID)
		if err != nil {
			return err
		}
		for _, st := range students {
			if err = ensureEnrollment(ctx, repo, st, crs); err != nil {
				return err
			}
		}
		return nil
	})
	return asg, err
}

// UnassignCourseFromClass is the inverse: drops the assignment and the
// enrollments it produced. Grades survive; a grade without a live enrollment
// is a valid, inspectable state.
func (svc *Service) UnassignCourseFromClass(ctx context.Context, caller authz.Caller, classID, courseID string) error {
	if err := gate(caller, authz.KindAssignment, authz.OpWrite); err != nil {
		return err
	}
	return svc.repo.Atomic(ctx, func(repo Repository) error {
		if _, err := repo.GetClass(ctx, classID); err != nil {
			return err
		}

		asg, err := repo.GetAssignmentByPair(ctx, classID, courseID)
		switch err {
		case nil:
			if err = repo.DeleteAssignment(ctx, asg.ID); err != nil {
				return err
			}
		case ErrAssignmentNotFound: // delete-if-present; retry-safe
		default:
			return err
		}

		if err = recountAssignments(ctx, repo, classID); err != nil {
			return err
		}

		students, err := repo.QueryStudentsByClass(ctx, classID)
		if err != nil {
			return err
		}
		for _, st := range students {
			if err = deleteEnrollmentIfPresent(ctx, repo, st.ID, courseID); err != nil {
				return err
			}
		}
		return nil
	})
}

// EnrollStudentInClass links a student to a class and fans out an enrollment
// for every course assigned to that class.
func (svc *Service) EnrollStudentInClass(ctx context.Context, caller authz.Caller, studentID, classID string) (Student, error) {
	if err := gate(caller, authz.KindEnrollment, authz.OpWrite); err != nil {
		return Student{}, err
	}

	var st Student
	err := svc.repo.Atomic(ctx, func(repo Repository) error {
		var err error
		st, err = enrollInClass(ctx, repo, studentID, classID)
		return err
	})
	return st, err
}

// TransferStudent moves a student to a new class: enrollments tied to the old
// class's assignments are dropped and the new class's fan-out applied, in one
// atomic unit. The student is never left enrolled in both.
func (svc *Service) TransferStudent(ctx context.Context, caller authz.Caller, studentID, newClassID string) (Student, error) {
	if err := gate(caller, authz.KindEnrollment, authz.OpWrite); err != nil {
		return Student{}, err
	}

	var st Student
	err := svc.repo.Atomic(ctx, func(repo Repository) error {
		var err error
		if st, err = repo.GetStudent(ctx, studentID); err != nil {
			return err
		}
		if st.ClassID != "" && st.ClassID != newClassID {
			oldAsgs, err := repo.QueryAssignmentsByClass(ctx, st.ClassID)
			if err != nil {
				return err
			}
			for _, asg := range oldAsgs {
				if err = deleteEnrollmentIfPresent(ctx, repo, studentID, asg.CourseID); err != nil {
					return err
				}
			}
		}
		st, err = enrollInClass(ctx, repo, studentID, newClassID)
		return err
	})
	return st, err
}

// Enrollment reads

func (svc *Service) QueryEnrollmentsByStudent(ctx context.Context, caller authz.Caller, studentID string) ([]Enrollment, error) {
	if err := gate(caller, authz.KindEnrollment, authz.OpRead); err != nil {
		return nil, err
	}
	return svc.repo.QueryEnrollmentsByStudent(ctx, studentID)
}

func (svc *Service) QueryEnrollmentsByCourse(ctx context.Context, caller authz.Caller, courseID string) ([]Enrollment, error) {
	if err := gate(caller, authz.KindEnrollment, authz.OpRead); err != nil {
		return nil, err
	}
	return svc.repo.QueryEnrollmentsByCourse(ctx, courseID)
}

// Terms, groups, feedback

func (svc *Service) CreateTerm(ctx context.Context, caller authz.Caller, nt NewTerm) (AcademicTerm, error) {
	if err := gate(caller, authz.KindTerm, authz.OpWrite); err != nil {
		return AcademicTerm{}, err
	}
	if err := nt.Validate(svc.validate); err != nil {
		return AcademicTerm{}, err
	}
	return svc.repo.CreateTerm(ctx, AcademicTerm{
		Name:         nt.Name,
		AcademicYear: nt.AcademicYear,
		Current:      nt.Current,
	})
}

func (svc *Service) QueryTerms(ctx context.Context, caller authz.Caller) ([]AcademicTerm, error) {
	if err := gate(caller, authz.KindTerm, authz.OpRead); err != nil {
		return nil, err
	}
	return svc.repo.QueryTerms(ctx)
}

func (svc *Service) DeleteTerm(ctx context.Context, caller authz.Caller, id string) error {
	if err := gate(caller, authz.KindTerm, authz.OpWrite); err != nil {
		return err
	}
	return svc.repo.DeleteTerm(ctx, id)
}

func (svc *Service) CreateGroup(ctx context.Context, caller authz.Caller, ng NewTeacherGroup) (TeacherGroup, error) {
	if err := gate(caller, authz.KindGroup, authz.OpWrite); err != nil {
		return TeacherGroup{}, err
	}
	if err := ng.Validate(svc.validate); err != nil {
		return TeacherGroup{}, err
	}
	return svc.repo.CreateGroup(ctx, TeacherGroup{Name: ng.Name, Description: ng.Description})
}

func (svc *Service) QueryGroups(ctx context.Context, caller authz.Caller) ([]TeacherGroup, error) {
	if err := gate(caller, authz.KindGroup, authz.OpRead); err != nil {
		return nil, err
	}
	return svc.repo.QueryGroups(ctx)
}

func (svc *Service) SubmitFeedback(ctx context.Context, caller authz.Caller, nf NewFeedback) (Feedback, error) {
	if err := gate(caller, authz.KindFeedback, authz.OpWrite); err != nil {
		return Feedback{}, err
	}
	if err := nf.Validate(svc.validate); err != nil {
		return Feedback{}, err
	}
	return svc.repo.CreateFeedback(ctx, Feedback{
		AuthorUID:   caller.UID,
		AuthorEmail: caller.Email,
		Message:     nf.Message,
	})
}

func (svc *Service) QueryFeedback(ctx context.Context, caller authz.Caller) ([]Feedback, error) {
	if err := gate(caller, authz.KindFeedback, authz.OpRead); err != nil {
		return nil, err
	}
	return svc.repo.QueryFeedback(ctx)
}

// helpers

func enrollInClass(ctx context.Context, repo Repository, studentID, classID string) (Student, error) {
	st, err := repo.GetStudent(ctx, studentID)
	if err != nil {
		return Student{}, err
	}
	cls, err := repo.GetClass(ctx, classID)
	if err != nil {
		return Student{}, err
	}

	st.ClassID = cls.ID
	st.ClassName = cls.Name
	if st, err = repo.SaveStudent(ctx, st); err != nil {
		return Student{}, err
	}

	asgs, err := repo.QueryAssignmentsByClass(ctx, classID)
	if err != nil {
		return Student{}, err
	}
	for _, asg := range asgs {
		crs, err := repo.GetCourse(ctx, asg.CourseID)
		if err != nil {
			return Student{}, err
		}
		if err = ensureEnrollment(ctx, repo, st, crs); err != nil {
			return Student{}, err
		}
	}
	return st, nil
}

// ensureEnrollment is create-if-absent; an existing pair is success.
func ensureEnrollment(ctx context.Context, repo Repository, st Student, crs Course) error {
	_, err := repo.GetEnrollmentByPair(ctx, st.ID, crs.ID)
	if err == nil {
		return nil
	}
	if err != ErrEnrollmentNotFound {
		return err
	}
	_, err = repo.CreateEnrollment(ctx, Enrollment{
		StudentID:   st.ID,
		StudentName: st.FullName,
		CourseID:    crs.ID,
		CourseName:  crs.Name,
		EnrolledAt:  time.Now().UTC(),
	})
	return err
}

// deleteEnrollmentIfPresent is delete-if-present; an absent pair is success.
func deleteEnrollmentIfPresent(ctx context.Context, repo Repository, studentID, courseID string) error {
	enr, err := repo.GetEnrollmentByPair(ctx, studentID, courseID)
	if err == ErrEnrollmentNotFound {
		return nil
	}
	if err != nil {
		return err
	}
	return repo.DeleteEnrollment(ctx, enr.ID)
}

// recountAssignments recomputes the derived assignedCoursesCount from the
// live assignment documents.
func recountAssignments(ctx context.Context, repo Repository, classID string) error {
	cls, err := repo.GetClass(ctx, classID)
	if err != nil {
		return err
	}
	asgs, err := repo.QueryAssignmentsByClass(ctx, classID)
	if err != nil {
		return err
	}
	cls.AssignedCoursesCount = len(asgs)
	_, err = repo.SaveClass(ctx, cls)
	return err
}

// replaceAssignedCourseName updates a teacher profile's assignedCourseNames
// cache: drops oldName if given, appends newName if given and absent.
func replaceAssignedCourseName(ctx context.Context, repo Repository, teacherUID, oldName, newName string) error {
	prof, err := repo.GetProfile(ctx, teacherUID)
	if err != nil {
		if err == account.ErrNotFound {
			return nil // stale teacherId; nothing to fix
		}
		return err
	}

	names := make([]string, 0, len(prof.AssignedCourseNames)+1)
	for _, n := range prof.AssignedCourseNames {
		if oldName != "" && n == oldName {
			continue
		}
		if newName != "" && n == newName {
			continue // avoid duplicate append below
		}
		names = append(names, n)
	}
	if newName != "" {
		names = append(names, newName)
	}
	prof.AssignedCourseNames = names
	_, err = repo.SaveProfile(ctx, prof)
	return err
}
