package testutil

import (
	"context"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/ndishimyeemilien/report-sub001/core"
	"github.com/ndishimyeemilien/report-sub001/core/account"
	"github.com/ndishimyeemilien/report-sub001/core/authz"
	"github.com/ndishimyeemilien/report-sub001/core/grading"
	"github.com/ndishimyeemilien/report-sub001/core/school"
	"github.com/ndishimyeemilien/report-sub001/storage/docstore/memdb"
	docrepos "github.com/ndishimyeemilien/report-sub001/storage/repos"
)

const PassMark = 50.0

// Admin is a synthetic caller that passes every gate.
var Admin = authz.Caller{UID: "admin-1", Email: "admin@test.test", Role: authz.RoleAdmin}

// NewValidator returns a translating validator wired like the apps do it.
func NewValidator(t *testing.T) (*validator.Validate, ut.Translator) {
	t.Helper()
	validate := validator.New()
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	translator, found := uni.GetTranslator(enLocale.Locale())
	if !found {
		t.Fatal("NewValidator() translator not found")
	}
	core.InitValidators(validate, translator)
	return validate, translator
}

// Services bundles everything needed to exercise the engines against a
// fresh in-memory store.
type Services struct {
	Store      core.Store
	Account    *account.Service
	School     *school.Service
	Grading    *grading.Service
	Validate   *validator.Validate
	Translator ut.Translator
}

func NewServices(t *testing.T) *Services {
	t.Helper()
	db, err := memdb.Open()
	if err != nil {
		t.Fatalf("NewServices() failed: %v", err)
	}
	validate, translator := NewValidator(t)
	return &Services{
		Store:      db,
		Account:    account.NewService(docrepos.NewAccountRepository(db)),
		School:     school.NewService(docrepos.NewSchoolRepository(db), validate),
		Grading:    grading.NewService(docrepos.NewGradingRepository(db), validate, PassMark),
		Validate:   validate,
		Translator: translator,
	}
}

func CreateClass(t *testing.T, svc *school.Service, name, year string) school.Class {
	t.Helper()
	cls, err := svc.CreateClass(context.Background(), Admin, school.NewClass{Name: name, AcademicYear: year})
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return cls
}

func CreateCourse(t *testing.T, svc *school.Service, name string) school.Course {
	t.Helper()
	crs, err := svc.CreateCourse(context.Background(), Admin, school.NewCourse{Name: name, Code: "c-" + name})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

func CreateStudent(t *testing.T, svc *school.Service, name string) school.Student {
	t.Helper()
	st, err := svc.CreateStudent(context.Background(), Admin, school.NewStudent{FullName: name, StudentSystemID: "sys-" + name})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return st
}

// CreateTeacher registers a profile and promotes it to the teacher role.
func CreateTeacher(t *testing.T, svc *account.Service, uid, email string) account.Profile {
	t.Helper()
	ctx := context.Background()
	if _, err := svc.EnsureProfile(ctx, uid, email); err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}
	p, err := svc.SetRole(ctx, Admin, uid, authz.RoleTeacher)
	if err != nil {
		t.Fatalf("CreateTeacher() failed: %v", err)
	}
	return p
}
