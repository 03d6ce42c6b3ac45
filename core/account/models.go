package account

import (
	"time"

	"github.com/ndishimyeemilien/report-sub001/core/authz"
)

// Profile is the stored record backing an identity-provider user.
// The uid doubles as the document ID.
type Profile struct {
	UID            string     `json:"uid"`
	Email          string     `json:"email"`
	Role           authz.Role `json:"role"`
	SchoolID       string     `json:"schoolId,omitempty"` // optional tenant tag
	TeacherGroupID string     `json:"teacherGroupId,omitempty"`

	// AssignedCourseNames caches the names of courses a teacher teaches.
	// Engine-maintained; never authoritative, never hand-edited.
	AssignedCourseNames []string `json:"assignedCourseNames,omitempty"`

	CreatedAt time.Time `json:"createdAt"` // UTC
	UpdatedAt time.Time `json:"updatedAt"` // UTC
}

func (p Profile) Caller() authz.Caller {
	return authz.Caller{UID: p.UID, Email: p.Email, Role: p.Role}
}
