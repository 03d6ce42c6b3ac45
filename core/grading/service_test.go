package grading_test

import (
	"context"
	"testing"

	"github.com/ndishimyeemilien/report-sub001/core"
	"github.com/ndishimyeemilien/report-sub001/core/authz"
	"github.com/ndishimyeemilien/report-sub001/core/grading"
	testutil "github.com/ndishimyeemilien/report-sub001/tests"
)

var ctx = context.Background()

func fl(v float64) *float64 { return &v }

func TestUpsertGrade_derivation(t *testing.T) {
	tests := []struct {
		name       string
		ca1, ca2   *float64
		exam       *float64
		wantTotal  float64
		wantStatus grading.Status
	}{
		{name: "all components pass", ca1: fl(18), ca2: fl(17), exam: fl(40), wantTotal: 75, wantStatus: grading.StatusPass},
		{name: "all components fail", ca1: fl(10), ca2: fl(10), exam: fl(15), wantTotal: 35, wantStatus: grading.StatusFail},
		{name: "exact pass mark", ca1: fl(20), ca2: fl(10), exam: fl(20), wantTotal: 50, wantStatus: grading.StatusPass},
		{name: "missing components count as zero", exam: fl(45), wantTotal: 45, wantStatus: grading.StatusFail},
		{name: "single passing component", exam: fl(60), wantTotal: 60, wantStatus: grading.StatusPass},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svcs := testutil.NewServices(t)
			crs := testutil.CreateCourse(t, svcs.School, "Math")
			st := testutil.CreateStudent(t, svcs.School, "Alice M")

			grd, err := svcs.Grading.UpsertGrade(ctx, testutil.Admin, grading.NewGrade{
				StudentID: st.ID, CourseID: crs.ID, Term: "Term 1",
				CA1: tt.ca1, CA2: tt.ca2, Exam: tt.exam,
			})
			if err != nil {
				t.Fatalf("UpsertGrade() failed: %v", err)
			}
			if grd.TotalMarks != tt.wantTotal {
				t.Errorf("TotalMarks = %v, want %v", grd.TotalMarks, tt.wantTotal)
			}
			if grd.Status != tt.wantStatus {
				t.Errorf("Status = %v, want %v", grd.Status, tt.wantStatus)
			}
			if grd.StudentName != st.FullName || grd.CourseName != crs.Name {
				t.Errorf("denormalized names = (%q, %q), want (%q, %q)", grd.StudentName, grd.CourseName, st.FullName, crs.Name)
			}
		})
	}
}

func TestUpsertGrade_replacesByKey(t *testing.T) {
	svcs := testutil.NewServices(t)
	crs := testutil.CreateCourse(t, svcs.School, "Math")
	st := testutil.CreateStudent(t, svcs.School, "Bob K")

	first, err := svcs.Grading.UpsertGrade(ctx, testutil.Admin, grading.NewGrade{
		StudentID: st.ID, CourseID: crs.ID, Term: "Term 1", Exam: fl(30),
	})
	if err != nil {
		t.Fatalf("UpsertGrade() failed: %v", err)
	}
	second, err := svcs.Grading.UpsertGrade(ctx, testutil.Admin, grading.NewGrade{
		StudentID: st.ID, CourseID: crs.ID, Term: "Term 1", CA1: fl(15), Exam: fl(40),
	})
	if err != nil {
		t.Fatalf("UpsertGrade() resubmit failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("resubmission created a new grade: %s != %s", second.ID, first.ID)
	}
	if second.TotalMarks != 55 || second.Status != grading.StatusPass {
		t.Errorf("resubmitted grade = (%v, %v), want (55, Pass)", second.TotalMarks, second.Status)
	}

	// a different term is a different grade
	third, err := svcs.Grading.UpsertGrade(ctx, testutil.Admin, grading.NewGrade{
		StudentID: st.ID, CourseID: crs.ID, Term: "Term 2", Exam: fl(20),
	})
	if err != nil {
		t.Fatalf("UpsertGrade() new term failed: %v", err)
	}
	if third.ID == first.ID {
		t.Error("grade for a new term reused the old document")
	}

	grades, err := svcs.Grading.ListByStudent(ctx, testutil.Admin, st.ID)
	if err != nil {
		t.Fatalf("ListByStudent() failed: %v", err)
	}
	if len(grades) != 2 {
		t.Errorf("grades = %d, want 2", len(grades))
	}
}

func TestUpsertGrade_requiresComponent(t *testing.T) {
	svcs := testutil.NewServices(t)
	crs := testutil.CreateCourse(t, svcs.School, "Math")
	st := testutil.CreateStudent(t, svcs.School, "Carol N")

	_, err := svcs.Grading.UpsertGrade(ctx, testutil.Admin, grading.NewGrade{
		StudentID: st.ID, CourseID: crs.ID, Term: "Term 1",
	})
	if _, ok := err.(*core.ValidationError); !ok {
		t.Errorf("UpsertGrade() error = %v, want *core.ValidationError", err)
	}
}

func TestUpsertGrade_ownership(t *testing.T) {
	svcs := testutil.NewServices(t)
	crs := testutil.CreateCourse(t, svcs.School, "Math")
	st := testutil.CreateStudent(t, svcs.School, "Dan O")
	owner := testutil.CreateTeacher(t, svcs.Account, "t-own", "own@test.test")
	other := testutil.CreateTeacher(t, svcs.Account, "t-other", "other@test.test")
	if _, err := svcs.School.SetCourseTeacher(ctx, testutil.Admin, crs.ID, owner.UID); err != nil {
		t.Fatalf("SetCourseTeacher() failed: %v", err)
	}

	grd, err := svcs.Grading.UpsertGrade(ctx, owner.Caller(), grading.NewGrade{
		StudentID: st.ID, CourseID: crs.ID, Term: "Term 1", Exam: fl(65),
	})
	if err != nil {
		t.Fatalf("owner UpsertGrade() failed: %v", err)
	}
	if grd.EnteredByTeacherID != owner.UID {
		t.Errorf("EnteredByTeacherID = %q, want %q", grd.EnteredByTeacherID, owner.UID)
	}

	_, err = svcs.Grading.UpsertGrade(ctx, other.Caller(), grading.NewGrade{
		StudentID: st.ID, CourseID: crs.ID, Term: "Term 1", Exam: fl(10),
	})
	if !isDenied(err, authz.ReasonNotOwner) {
		t.Errorf("non-owner UpsertGrade() error = %v, want NotOwner", err)
	}

	secretary := authz.Caller{UID: "s1", Email: "s@test.test", Role: authz.RoleSecretary}
	_, err = svcs.Grading.UpsertGrade(ctx, secretary, grading.NewGrade{
		StudentID: st.ID, CourseID: crs.ID, Term: "Term 1", Exam: fl(10),
	})
	if !isDenied(err, authz.ReasonRoleForbidden) {
		t.Errorf("secretary UpsertGrade() error = %v, want RoleForbidden", err)
	}

	// the failed attempts did not overwrite the owner's entry
	got, err := svcs.Grading.ListByCourse(ctx, owner.Caller(), crs.ID)
	if err != nil {
		t.Fatalf("ListByCourse() failed: %v", err)
	}
	if len(got) != 1 || got[0].TotalMarks != 65 {
		t.Errorf("grades = %+v, want the single 65-mark entry", got)
	}
}

func TestListByStudent_teacherScope(t *testing.T) {
	svcs := testutil.NewServices(t)
	owned := testutil.CreateCourse(t, svcs.School, "Math")
	foreign := testutil.CreateCourse(t, svcs.School, "Physics")
	st := testutil.CreateStudent(t, svcs.School, "Eve P")
	teacher := testutil.CreateTeacher(t, svcs.Account, "t-scope", "scope@test.test")
	if _, err := svcs.School.SetCourseTeacher(ctx, testutil.Admin, owned.ID, teacher.UID); err != nil {
		t.Fatalf("SetCourseTeacher() failed: %v", err)
	}
	for _, courseID := range []string{owned.ID, foreign.ID} {
		if _, err := svcs.Grading.UpsertGrade(ctx, testutil.Admin, grading.NewGrade{
			StudentID: st.ID, CourseID: courseID, Term: "Term 1", Exam: fl(50),
		}); err != nil {
			t.Fatalf("UpsertGrade() failed: %v", err)
		}
	}

	grades, err := svcs.Grading.ListByStudent(ctx, teacher.Caller(), st.ID)
	if err != nil {
		t.Fatalf("ListByStudent() failed: %v", err)
	}
	if len(grades) != 1 || grades[0].CourseID != owned.ID {
		t.Errorf("teacher sees %+v, want only the owned course's grade", grades)
	}

	all, err := svcs.Grading.ListByStudent(ctx, testutil.Admin, st.ID)
	if err != nil {
		t.Fatalf("ListByStudent() failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("admin sees %d grades, want 2", len(all))
	}

	secretary := authz.Caller{UID: "s2", Email: "s2@test.test", Role: authz.RoleSecretary}
	oversight, err := svcs.Grading.ListByStudent(ctx, secretary, st.ID)
	if err != nil {
		t.Fatalf("ListByStudent() failed: %v", err)
	}
	if len(oversight) != 2 {
		t.Errorf("secretary sees %d grades, want 2", len(oversight))
	}
}

func TestListByCourse_deniedForNonOwner(t *testing.T) {
	svcs := testutil.NewServices(t)
	crs := testutil.CreateCourse(t, svcs.School, "Math")
	owner := testutil.CreateTeacher(t, svcs.Account, "t-a", "a@test.test")
	other := testutil.CreateTeacher(t, svcs.Account, "t-b", "b@test.test")
	if _, err := svcs.School.SetCourseTeacher(ctx, testutil.Admin, crs.ID, owner.UID); err != nil {
		t.Fatalf("SetCourseTeacher() failed: %v", err)
	}

	if _, err := svcs.Grading.ListByCourse(ctx, other.Caller(), crs.ID); !isDenied(err, authz.ReasonNotOwner) {
		t.Errorf("non-owner ListByCourse() error = %v, want NotOwner", err)
	}
}

func isDenied(err error, reason authz.Reason) bool {
	denied, ok := err.(*authz.DeniedError)
	return ok && denied.Reason == reason
}
