package grading

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ndishimyeemilien/report-sub001/core"
)

// Status of a grade. Always derived from the score total and the configured
// pass mark; never accepted from callers.
type Status string

const (
	StatusPass Status = "Pass"
	StatusFail Status = "Fail"
)

// Grade is one logical grade row, keyed by (studentId, courseId, term).
// Names are denormalized copies; join by ID only.
type Grade struct {
	ID          string `json:"id"`
	StudentID   string `json:"studentId"`
	StudentName string `json:"studentName"`
	CourseID    string `json:"courseId"`
	CourseName  string `json:"courseName"`
	Term        string `json:"term"`

	CA1  *float64 `json:"ca1,omitempty"`
	CA2  *float64 `json:"ca2,omitempty"`
	Exam *float64 `json:"exam,omitempty"`

	TotalMarks float64 `json:"totalMarks"`
	Status     Status  `json:"status"`
	Remarks    string  `json:"remarks,omitempty"`

	EnteredByTeacherID    string `json:"enteredByTeacherId,omitempty"`
	EnteredByTeacherEmail string `json:"enteredByTeacherEmail,omitempty"`

	CreatedAt time.Time `json:"createdAt"` // UTC
	UpdatedAt time.Time `json:"updatedAt"` // UTC
}

// NewGrade contains the caller-submitted score components. At least one
// component must be present; each must lie within [0, 100].
type NewGrade struct {
	StudentID string   `json:"studentId" validate:"required"`
	CourseID  string   `json:"courseId" validate:"required"`
	Term      string   `json:"term" validate:"required"`
	CA1       *float64 `json:"ca1" validate:"omitempty,gte=0,lte=100"`
	CA2       *float64 `json:"ca2" validate:"omitempty,gte=0,lte=100"`
	Exam      *float64 `json:"exam" validate:"omitempty,gte=0,lte=100"`
	Remarks   string   `json:"remarks"`
}

func (ng *NewGrade) Validate(validate *validator.Validate) error {
	ng.StudentID = core.CleanString(ng.StudentID)
	ng.CourseID = core.CleanString(ng.CourseID)
	ng.Term = core.CleanString(ng.Term)
	ng.Remarks = core.CleanString(ng.Remarks)

	if err := validate.Struct(ng); err != nil {
		return err
	}
	if ng.CA1 == nil && ng.CA2 == nil && ng.Exam == nil {
		return core.NewValidationError(ErrInvalidScore, core.FieldError{
			Field: "ca1",
			Error: ErrInvalidScore.Error(),
		})
	}
	return nil
}

// Total sums the provided components; absent components count as 0.
func (ng NewGrade) Total() float64 {
	var total float64
	for _, c := range []*float64{ng.CA1, ng.CA2, ng.Exam} {
		if c != nil {
			total += *c
		}
	}
	return total
}
