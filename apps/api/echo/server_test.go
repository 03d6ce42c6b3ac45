package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/ndishimyeemilien/report-sub001/apps/api/echo"
	"github.com/ndishimyeemilien/report-sub001/core"
	"github.com/ndishimyeemilien/report-sub001/core/account"
	"github.com/ndishimyeemilien/report-sub001/core/authz"
	"github.com/ndishimyeemilien/report-sub001/core/grading"
	"github.com/ndishimyeemilien/report-sub001/core/school"
	logsvc "github.com/ndishimyeemilien/report-sub001/services/logger"
	testutil "github.com/ndishimyeemilien/report-sub001/tests"
)

var testConf = &core.Config{
	Debug:     false,
	TestMode:  true,
	Env:       "TEST",
	AppName:   "Reportify",
	SecretKey: "test-secret",
	PassMark:  testutil.PassMark,
}

func init() {
	testConf.Server.JWTExpirationDelta = 4 * time.Hour
	testConf.Server.RequestTimeout = 5 * time.Second
}

type testApp struct {
	server echoapi.Server
	svcs   *testutil.Services
}

func setup(t *testing.T) *testApp {
	svcs := testutil.NewServices(t)
	server := echoapi.NewServer(&echoapi.Options{
		Addr:           ":0",
		DisableReqLogs: true,
		Conf:           testConf,
		Logger:         logsvc.NewStdLogger(log.New(os.Stdout, "TEST ", log.LstdFlags)),
		Validate:       svcs.Validate,
		Translator:     svcs.Translator,
		AccountSvc:     svcs.Account,
		SchoolSvc:      svcs.School,
		GradingSvc:     svcs.Grading,
	})
	return &testApp{server: server, svcs: svcs}
}

// createProfile registers a profile and assigns it the given role.
func (app *testApp) createProfile(t *testing.T, uid, email string, role authz.Role) account.Profile {
	t.Helper()
	ctx := context.Background()
	if _, err := app.svcs.Account.EnsureProfile(ctx, uid, email); err != nil {
		t.Fatalf("createProfile() failed: %v", err)
	}
	if role == authz.RolePending {
		p, err := app.svcs.Account.Get(ctx, uid)
		if err != nil {
			t.Fatalf("createProfile() failed: %v", err)
		}
		return p
	}
	p, err := app.svcs.Account.SetRole(ctx, testutil.Admin, uid, role)
	if err != nil {
		t.Fatalf("createProfile() failed: %v", err)
	}
	return p
}

func getToken(t *testing.T, p account.Profile) string {
	t.Helper()
	token, err := echoapi.GenerateToken(testConf, echoapi.GetProfileClaims(testConf, p))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func TestAuthRequired(t *testing.T) {
	app := setup(t)

	req, rec := newAuthRequest(http.MethodGet, "/v1/classes", "")
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPendingProfileForbidden(t *testing.T) {
	app := setup(t)
	p := app.createProfile(t, "u-pending", "pending@test.test", authz.RolePending)

	req, rec := newAuthRequest(http.MethodGet, "/v1/classes", getToken(t, p))
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestClassLifecycle(t *testing.T) {
	app := setup(t)
	admin := app.createProfile(t, "u-admin", "admin@test.test", authz.RoleAdmin)
	token := getToken(t, admin)

	body, _ := json.Marshal(school.NewClass{Name: "S1 A", AcademicYear: "2025-2026"})
	req, rec := newAuthRequest(http.MethodPost, "/v1/classes", token, body)
	app.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var cls school.Class
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cls))
	assert.Equal(t, "S1 A", cls.Name)
	assert.NotEmpty(t, cls.ID)

	req, rec = newAuthRequest(http.MethodGet, "/v1/classes/"+cls.ID, token)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// invalid academic year label is a field error
	body, _ = json.Marshal(school.NewClass{Name: "S1 B", AcademicYear: "not-a-year"})
	req, rec = newAuthRequest(http.MethodPost, "/v1/classes", token, body)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "academicYear")
}

func TestGradeUpsertOwnership(t *testing.T) {
	app := setup(t)
	admin := app.createProfile(t, "u-admin", "admin@test.test", authz.RoleAdmin)
	owner := app.createProfile(t, "u-owner", "owner@test.test", authz.RoleTeacher)
	other := app.createProfile(t, "u-other", "other@test.test", authz.RoleTeacher)
	adminToken := getToken(t, admin)

	ctx := context.Background()
	crs := testutil.CreateCourse(t, app.svcs.School, "Math")
	st := testutil.CreateStudent(t, app.svcs.School, "Alice M")
	_, err := app.svcs.School.SetCourseTeacher(ctx, testutil.Admin, crs.ID, owner.UID)
	require.NoError(t, err)

	score := 72.0
	body, _ := json.Marshal(grading.NewGrade{StudentID: st.ID, CourseID: crs.ID, Term: "Term 1", Exam: &score})

	req, rec := newAuthRequest(http.MethodPut, "/v1/grades", getToken(t, owner), body)
	app.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var grd grading.Grade
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &grd))
	assert.Equal(t, grading.StatusPass, grd.Status)
	assert.Equal(t, 72.0, grd.TotalMarks)

	// another teacher cannot touch it
	req, rec = newAuthRequest(http.MethodPut, "/v1/grades", getToken(t, other), body)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// admin reads the course's grades
	req, rec = newAuthRequest(http.MethodGet, "/v1/grades/course/"+crs.ID, adminToken)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var grades []grading.Grade
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &grades))
	assert.Len(t, grades, 1)
}

func TestRoleAssignmentFlow(t *testing.T) {
	app := setup(t)
	admin := app.createProfile(t, "u-admin", "admin@test.test", authz.RoleAdmin)
	newcomer := app.createProfile(t, "u-new", "new@test.test", authz.RolePending)
	adminToken := getToken(t, admin)

	req, rec := newAuthRequest(http.MethodGet, "/v1/account/pending", adminToken)
	app.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var pending []account.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pending))
	require.Len(t, pending, 1)
	assert.Equal(t, newcomer.UID, pending[0].UID)

	body, _ := json.Marshal(map[string]string{"role": "secretary"})
	req, rec = newAuthRequest(http.MethodPut, "/v1/account/profiles/"+newcomer.UID+"/role", adminToken, body)
	app.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// non-admins cannot assign roles
	promoted, err := app.svcs.Account.Get(context.Background(), newcomer.UID)
	require.NoError(t, err)
	req, rec = newAuthRequest(http.MethodPut, "/v1/account/profiles/"+admin.UID+"/role", getToken(t, promoted), body)
	app.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// /me reflects the new role
	req, rec = newAuthRequest(http.MethodGet, "/v1/account/me", getToken(t, promoted))
	app.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var me account.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, authz.RoleSecretary, me.Role)
}
