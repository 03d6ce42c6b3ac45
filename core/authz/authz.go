// Package authz is the stateless authorization gate. It is consulted before
// every engine call and never mutates state itself.
package authz

import "fmt"

// Role of a caller, resolved from the stored UserProfile.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleTeacher   Role = "teacher"
	RoleSecretary Role = "secretary"

	// RolePending is assigned to a profile created on first authentication.
	// A pending profile can do nothing until an admin assigns a real role.
	RolePending Role = "pending"
)

var AllRoles = []Role{RoleAdmin, RoleTeacher, RoleSecretary, RolePending}

func ValidRole(r Role) bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Kind identifies the resource type an operation targets.
type Kind string

const (
	KindSchool     Kind = "school"
	KindProfile    Kind = "userProfile"
	KindCourse     Kind = "course"
	KindClass      Kind = "class"
	KindStudent    Kind = "student"
	KindAssignment Kind = "classCourseAssignment"
	KindEnrollment Kind = "enrollment"
	KindGrade      Kind = "grade"
	KindTerm       Kind = "academicTerm"
	KindGroup      Kind = "teacherGroup"
	KindFeedback   Kind = "feedback"
)

type Operation string

const (
	OpRead  Operation = "read"
	OpWrite Operation = "write"
)

type (
	// Caller is the authenticated identity plus its resolved role.
	Caller struct {
		UID   string
		Email string
		Role  Role
	}

	// Resource describes the target of an operation. CourseTeacherID carries
	// the owning teacher's uid for grade resources; empty means unowned.
	Resource struct {
		Kind            Kind
		CourseTeacherID string
	}

	Decision struct {
		Allowed bool
		Reason  Reason
	}
)

type Reason string

const (
	ReasonNotOwner        Reason = "NotOwner"
	ReasonRoleForbidden   Reason = "RoleForbidden"
	ReasonUnauthenticated Reason = "Unauthenticated"
)

func Allow() Decision        { return Decision{Allowed: true} }
func Deny(r Reason) Decision { return Decision{Reason: r} }

func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return &DeniedError{Reason: d.Reason}
}

// DeniedError carries a stable reason code for caller-visible messaging.
type DeniedError struct {
	Reason Reason
}

func (e DeniedError) Error() string {
	return fmt.Sprintf("permission denied: %s", e.Reason)
}

// Authorize evaluates role rules in precedence order; first match wins.
func Authorize(caller Caller, res Resource, op Operation) Decision {
	if caller.UID == "" {
		return Deny(ReasonUnauthenticated)
	}

	switch caller.Role {
	case RoleAdmin:
		return Allow()

	case RoleTeacher:
		// grades are scoped to courses the teacher owns, reads included
		if res.Kind == KindGrade {
			if res.CourseTeacherID != "" && res.CourseTeacherID == caller.UID {
				return Allow()
			}
			return Deny(ReasonNotOwner)
		}
		if op == OpRead {
			switch res.Kind {
			case KindCourse, KindClass, KindStudent, KindTerm, KindGroup, KindSchool:
				return Allow()
			}
		}
		if res.Kind == KindFeedback && op == OpWrite {
			return Allow()
		}
		return Deny(ReasonRoleForbidden)

	case RoleSecretary:
		switch res.Kind {
		case KindStudent, KindClass, KindEnrollment, KindAssignment, KindFeedback:
			return Allow()
		case KindGrade, KindCourse, KindTerm, KindGroup, KindSchool:
			// oversight reads only
			if op == OpRead {
				return Allow()
			}
		}
		return Deny(ReasonRoleForbidden)
	}

	// unrecognized or pending role
	return Deny(ReasonRoleForbidden)
}
