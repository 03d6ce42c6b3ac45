package authz

import "testing"

func TestAuthorize(t *testing.T) {
	admin := Caller{UID: "a1", Email: "a@test.test", Role: RoleAdmin}
	teacher := Caller{UID: "t1", Email: "t@test.test", Role: RoleTeacher}
	secretary := Caller{UID: "s1", Email: "s@test.test", Role: RoleSecretary}
	pending := Caller{UID: "p1", Email: "p@test.test", Role: RolePending}
	anon := Caller{}

	tests := []struct {
		name       string
		caller     Caller
		res        Resource
		op         Operation
		allowed    bool
		wantReason Reason
	}{
		{name: "anonymous denied", caller: anon, res: Resource{Kind: KindCourse}, op: OpRead, wantReason: ReasonUnauthenticated},
		{name: "anonymous admin role still denied", caller: Caller{Role: RoleAdmin}, res: Resource{Kind: KindCourse}, op: OpRead, wantReason: ReasonUnauthenticated},

		{name: "admin writes anything", caller: admin, res: Resource{Kind: KindCourse}, op: OpWrite, allowed: true},
		{name: "admin writes grades unowned", caller: admin, res: Resource{Kind: KindGrade, CourseTeacherID: "t2"}, op: OpWrite, allowed: true},
		{name: "admin writes profiles", caller: admin, res: Resource{Kind: KindProfile}, op: OpWrite, allowed: true},

		{name: "teacher writes own grade", caller: teacher, res: Resource{Kind: KindGrade, CourseTeacherID: "t1"}, op: OpWrite, allowed: true},
		{name: "teacher reads own grade", caller: teacher, res: Resource{Kind: KindGrade, CourseTeacherID: "t1"}, op: OpRead, allowed: true},
		{name: "teacher writes other teacher's grade", caller: teacher, res: Resource{Kind: KindGrade, CourseTeacherID: "t2"}, op: OpWrite, wantReason: ReasonNotOwner},
		{name: "teacher reads other teacher's grade", caller: teacher, res: Resource{Kind: KindGrade, CourseTeacherID: "t2"}, op: OpRead, wantReason: ReasonNotOwner},
		{name: "teacher writes unowned grade", caller: teacher, res: Resource{Kind: KindGrade}, op: OpWrite, wantReason: ReasonNotOwner},
		{name: "teacher reads course", caller: teacher, res: Resource{Kind: KindCourse}, op: OpRead, allowed: true},
		{name: "teacher reads class", caller: teacher, res: Resource{Kind: KindClass}, op: OpRead, allowed: true},
		{name: "teacher reads student", caller: teacher, res: Resource{Kind: KindStudent}, op: OpRead, allowed: true},
		{name: "teacher writes course", caller: teacher, res: Resource{Kind: KindCourse}, op: OpWrite, wantReason: ReasonRoleForbidden},
		{name: "teacher writes student", caller: teacher, res: Resource{Kind: KindStudent}, op: OpWrite, wantReason: ReasonRoleForbidden},
		{name: "teacher writes feedback", caller: teacher, res: Resource{Kind: KindFeedback}, op: OpWrite, allowed: true},
		{name: "teacher reads profiles", caller: teacher, res: Resource{Kind: KindProfile}, op: OpRead, wantReason: ReasonRoleForbidden},

		{name: "secretary writes student", caller: secretary, res: Resource{Kind: KindStudent}, op: OpWrite, allowed: true},
		{name: "secretary writes class", caller: secretary, res: Resource{Kind: KindClass}, op: OpWrite, allowed: true},
		{name: "secretary writes enrollment", caller: secretary, res: Resource{Kind: KindEnrollment}, op: OpWrite, allowed: true},
		{name: "secretary writes assignment", caller: secretary, res: Resource{Kind: KindAssignment}, op: OpWrite, allowed: true},
		{name: "secretary writes feedback", caller: secretary, res: Resource{Kind: KindFeedback}, op: OpWrite, allowed: true},
		{name: "secretary reads grade", caller: secretary, res: Resource{Kind: KindGrade, CourseTeacherID: "t1"}, op: OpRead, allowed: true},
		{name: "secretary writes grade", caller: secretary, res: Resource{Kind: KindGrade, CourseTeacherID: "t1"}, op: OpWrite, wantReason: ReasonRoleForbidden},
		{name: "secretary reads course", caller: secretary, res: Resource{Kind: KindCourse}, op: OpRead, allowed: true},
		{name: "secretary writes course", caller: secretary, res: Resource{Kind: KindCourse}, op: OpWrite, wantReason: ReasonRoleForbidden},
		{name: "secretary writes profiles", caller: secretary, res: Resource{Kind: KindProfile}, op: OpWrite, wantReason: ReasonRoleForbidden},

		{name: "pending reads nothing", caller: pending, res: Resource{Kind: KindCourse}, op: OpRead, wantReason: ReasonRoleForbidden},
		{name: "pending writes nothing", caller: pending, res: Resource{Kind: KindFeedback}, op: OpWrite, wantReason: ReasonRoleForbidden},
		{name: "unknown role denied", caller: Caller{UID: "x1", Role: "headmaster"}, res: Resource{Kind: KindCourse}, op: OpRead, wantReason: ReasonRoleForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Authorize(tt.caller, tt.res, tt.op)
			if d.Allowed != tt.allowed {
				t.Errorf("Authorize() allowed = %v, want %v", d.Allowed, tt.allowed)
			}
			if !tt.allowed && d.Reason != tt.wantReason {
				t.Errorf("Authorize() reason = %v, want %v", d.Reason, tt.wantReason)
			}
		})
	}
}

func TestDecisionErr(t *testing.T) {
	if err := Allow().Err(); err != nil {
		t.Errorf("Allow().Err() = %v, want nil", err)
	}
	err := Deny(ReasonNotOwner).Err()
	denied, ok := err.(*DeniedError)
	if !ok {
		t.Fatalf("Deny().Err() type = %T, want *DeniedError", err)
	}
	if denied.Reason != ReasonNotOwner {
		t.Errorf("DeniedError.Reason = %v, want %v", denied.Reason, ReasonNotOwner)
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range AllRoles {
		if !ValidRole(role) {
			t.Errorf("ValidRole(%q) = false, want true", role)
		}
	}
	if ValidRole("headmaster") {
		t.Error(`ValidRole("headmaster") = true, want false`)
	}
}
