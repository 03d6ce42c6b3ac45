package school

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ndishimyeemilien/report-sub001/core"
)

// School is the root tenant boundary.
type School struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	AdminUIDs []string  `json:"adminUids,omitempty"`
	CreatedAt time.Time `json:"createdAt"` // UTC
	UpdatedAt time.Time `json:"updatedAt"` // UTC
}

// Course is an admin-owned subject. TeacherID establishes the authorization
// scope for teachers; TeacherName is a denormalized copy, never a join key.
type Course struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Combination string    `json:"combination,omitempty"`
	TeacherID   string    `json:"teacherId,omitempty"`
	TeacherName string    `json:"teacherName,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Class struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	AcademicYear  string `json:"academicYear"`
	SecretaryID   string `json:"secretaryId,omitempty"`
	SecretaryName string `json:"secretaryName,omitempty"`

	// AssignedCoursesCount is derived from live ClassCourseAssignment docs and
	// recomputed inside each mutating transaction.
	AssignedCoursesCount int `json:"assignedCoursesCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Student struct {
	ID              string    `json:"id"`
	FullName        string    `json:"fullName"`
	StudentSystemID string    `json:"studentSystemId"`
	Email           string    `json:"email,omitempty"`
	ClassID         string    `json:"classId,omitempty"`
	ClassName       string    `json:"className,omitempty"`
	Gender          string    `json:"gender,omitempty"`
	DateOfBirth     string    `json:"dateOfBirth,omitempty"`
	GuardianContact string    `json:"guardianContact,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ClassCourseAssignment links one Class to one Course; the (classId, courseId)
// pair is unique. Names are denormalized copies.
type ClassCourseAssignment struct {
	ID         string    `json:"id"`
	ClassID    string    `json:"classId"`
	ClassName  string    `json:"className"`
	CourseID   string    `json:"courseId"`
	CourseName string    `json:"courseName"`
	AssignedAt time.Time `json:"assignedAt"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Enrollment ties a student to a course; the (studentId, courseId) pair is
// unique. Derived in bulk whenever a student is linked to a class with course
// assignments.
type Enrollment struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"studentId"`
	StudentName string    `json:"studentName"`
	CourseID    string    `json:"courseId"`
	CourseName  string    `json:"courseName"`
	EnrolledAt  time.Time `json:"enrolledAt"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type AcademicTerm struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	AcademicYear string    `json:"academicYear"`
	Current      bool      `json:"current"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type TeacherGroup struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Feedback struct {
	ID          string    `json:"id"`
	AuthorUID   string    `json:"authorUid"`
	AuthorEmail string    `json:"authorEmail,omitempty"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Inputs

// NewSchool contains information needed to create a new School.
type NewSchool struct {
	Name string `json:"name" validate:"required"`
	Type string `json:"type" validate:"required"`
}

func (ns *NewSchool) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Type = core.CleanString(ns.Type, true)
	return validate.Struct(ns)
}

type NewCourse struct {
	Name        string `json:"name" validate:"required"`
	Code        string `json:"code" validate:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Combination string `json:"combination"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Code = core.CleanString(nc.Code, true)
	nc.Description = core.CleanString(nc.Description)
	nc.Category = core.CleanString(nc.Category)
	nc.Combination = core.CleanString(nc.Combination)
	return validate.Struct(nc)
}

type NewClass struct {
	Name         string `json:"name" validate:"required"`
	Description  string `json:"description"`
	AcademicYear string `json:"academicYear" validate:"required,academicyear"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
	nc.AcademicYear = core.CleanString(nc.AcademicYear)
	return validate.Struct(nc)
}

type NewStudent struct {
	FullName        string `json:"fullName" validate:"required"`
	StudentSystemID string `json:"studentSystemId" validate:"required"`
	Email           string `json:"email" validate:"omitempty,email"`
	Gender          string `json:"gender"`
	DateOfBirth     string `json:"dateOfBirth"`
	GuardianContact string `json:"guardianContact"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.FullName = core.CleanString(ns.FullName)
	ns.StudentSystemID = core.CleanString(ns.StudentSystemID, true)
	ns.Email = core.CleanString(ns.Email, true)
	ns.Gender = core.CleanString(ns.Gender, true)
	ns.GuardianContact = core.CleanString(ns.GuardianContact)
	return validate.Struct(ns)
}

type NewTerm struct {
	Name         string `json:"name" validate:"required"`
	AcademicYear string `json:"academicYear" validate:"required,academicyear"`
	Current      bool   `json:"current"`
}

func (nt *NewTerm) Validate(validate *validator.Validate) error {
	nt.Name = core.CleanString(nt.Name)
	nt.AcademicYear = core.CleanString(nt.AcademicYear)
	return validate.Struct(nt)
}

type NewTeacherGroup struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (ng *NewTeacherGroup) Validate(validate *validator.Validate) error {
	ng.Name = core.CleanString(ng.Name)
	ng.Description = core.CleanString(ng.Description)
	return validate.Struct(ng)
}

type NewFeedback struct {
	Message string `json:"message" validate:"required"`
}

func (nf *NewFeedback) Validate(validate *validator.Validate) error {
	nf.Message = core.CleanString(nf.Message)
	return validate.Struct(nf)
}
