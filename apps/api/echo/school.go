package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ndishimyeemilien/report-sub001/core"
	"github.com/ndishimyeemilien/report-sub001/core/school"
)

type schoolApi struct {
	svc      *school.Service
	validate *validator.Validate
}

func registerSchoolAPI(g *echo.Group, jwt, caller echo.MiddlewareFunc, svc *school.Service, validate *validator.Validate) {
	api := schoolApi{svc: svc, validate: validate}

	ag := g.Group("", jwt, caller)

	sg := ag.Group("/schools")
	sg.POST("", api.createSchool)
	sg.GET("", api.querySchools)

	cg := ag.Group("/classes")
	cg.POST("", api.createClass)
	cg.GET("", api.queryClasses)
	cg.GET("/:id", api.retrieveClass)
	cg.PUT("/:id/name", api.renameClass)
	cg.DELETE("/:id", api.destroyClass)
	cg.PUT("/:id/courses/:courseId", api.assignCourse)
	cg.DELETE("/:id/courses/:courseId", api.unassignCourse)

	crg := ag.Group("/courses")
	crg.POST("", api.createCourse)
	crg.GET("", api.queryCourses)
	crg.GET("/:id", api.retrieveCourse)
	crg.PUT("/:id/name", api.renameCourse)
	crg.PUT("/:id/teacher", api.setCourseTeacher)
	crg.DELETE("/:id", api.destroyCourse)
	crg.GET("/:id/enrollments", api.queryCourseEnrollments)

	stg := ag.Group("/students")
	stg.POST("", api.createStudent)
	stg.GET("", api.queryStudents)
	stg.GET("/:id", api.retrieveStudent)
	stg.PUT("/:id", api.updateStudent)
	stg.DELETE("/:id", api.destroyStudent)
	stg.POST("/:id/enroll", api.enrollStudent)
	stg.POST("/:id/transfer", api.transferStudent)
	stg.GET("/:id/enrollments", api.queryStudentEnrollments)

	tg := ag.Group("/terms")
	tg.POST("", api.createTerm)
	tg.GET("", api.queryTerms)
	tg.DELETE("/:id", api.destroyTerm)

	gg := ag.Group("/groups")
	gg.POST("", api.createGroup)
	gg.GET("", api.queryGroups)

	fg := ag.Group("/feedback")
	fg.POST("", api.submitFeedback)
	fg.GET("", api.queryFeedback)
}

// bindings

type renameRequest struct {
	Name string `json:"name" validate:"required"`
}

func (r *renameRequest) Validate(validate *validator.Validate) error {
	r.Name = core.CleanString(r.Name)
	return validate.Struct(r)
}

type setTeacherRequest struct {
	TeacherID string `json:"teacherId" validate:"required"`
}

func (r *setTeacherRequest) Validate(validate *validator.Validate) error {
	r.TeacherID = core.CleanString(r.TeacherID)
	return validate.Struct(r)
}

type classRefRequest struct {
	ClassID string `json:"classId" validate:"required"`
}

func (r *classRefRequest) Validate(validate *validator.Validate) error {
	r.ClassID = core.CleanString(r.ClassID)
	return validate.Struct(r)
}

// Handlers

func (api *schoolApi) createSchool(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	var data school.NewSchool
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSchool")
	}
	sch, err := api.svc.CreateSchool(ctx.Request().Context(), caller, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, sch)
}

func (api *schoolApi) querySchools(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	schools, err := api.svc.QuerySchools(ctx.Request().Context(), caller)
	if err != nil {
		return err
	}
	if schools == nil {
		schools = []school.School{}
	}
	return ctx.JSON(http.StatusOK, schools)
}

func (api *schoolApi) createClass(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	var data school.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	cls, err := api.svc.CreateClass(ctx.Request().Context(), caller, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, cls)
}

func (api *schoolApi) queryClasses(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	classes, err := api.svc.QueryClasses(ctx.Request().Context(), caller)
	if err != nil {
		return err
	}
	if classes == nil {
		classes = []school.Class{}
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *schoolApi) retrieveClass(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	cls, err := api.svc.GetClass(ctx.Request().Context(), caller, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *schoolApi) renameClass(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	var data renameRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to renameRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	cls, err := api.svc.RenameClass(ctx.Request().Context(), caller, ctx.Param("id"), data.Name)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *schoolApi) destroyClass(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteClass(ctx.Request().Context(), caller, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *schoolApi) assignCourse(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	asg, err := api.svc.AssignCourseToClass(ctx.Request().Context(), caller, ctx.Param("id"), ctx.Param("courseId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, asg)
}

func (api *schoolApi) unassignCourse(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.UnassignCourseFromClass(ctx.Request().Context(), caller, ctx.Param("id"), ctx.Param("courseId")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *schoolApi) createCourse(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	var data school.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	crs, err := api.svc.CreateCourse(ctx.Request().Context(), caller, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *schoolApi) queryCourses(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	courses, err := api.svc.QueryCourses(ctx.Request().Context(), caller)
	if err != nil {
		return err
	}
	if courses == nil {
		courses = []school.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *schoolApi) retrieveCourse(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	crs, err := api.svc.GetCourse(ctx.Request().Context(), caller, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *schoolApi) renameCourse(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	var data renameRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to renameRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	crs, err := api.svc.RenameCourse(ctx.Request().Context(), caller, ctx.Param("id"), data.Name)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *schoolApi) setCourseTeacher(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	var data setTeacherRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to setTeacherRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	crs, err := api.svc.SetCourseTeacher(ctx.Request().Context(), caller, ctx.Param("id"), data.TeacherID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *schoolApi) destroyCourse(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteCourse(ctx.Request().Context(), caller, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *schoolApi) queryCourseEnrollments(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	enrs, err := api.svc.QueryEnrollmentsByCourse(ctx.Request().Context(), caller, ctx.Param("id"))
	if err != nil {
		return err
	}
	if enrs == nil {
		enrs = []school.Enrollment{}
	}
	return ctx.JSON(http.StatusOK, enrs)
}

func (api *schoolApi) createStudent(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	var data school.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	st, err := api.svc.CreateStudent(ctx.Request().Context(), caller, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, st)
}

func (api *schoolApi) queryStudents(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	students, err := api.svc.QueryStudents(ctx.Request().Context(), caller)
	if err != nil {
		return err
	}
	if students == nil {
		students = []school.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *schoolApi) retrieveStudent(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	st, err := api.svc.GetStudent(ctx.Request().Context(), caller, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *schoolApi) updateStudent(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	var data school.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	st, err := api.svc.UpdateStudent(ctx.Request().Context(), caller, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *schoolApi) destroyStudent(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteStudent(ctx.Request().Context(), caller, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *schoolApi) enrollStudent(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	var data classRefRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to classRefRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	st, err := api.svc.EnrollStudentInClass(ctx.Request().Context(), caller, ctx.Param("id"), data.ClassID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *schoolApi) transferStudent(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	var data classRefRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to classRefRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	st, err := api.svc.TransferStudent(ctx.Request().Context(), caller, ctx.Param("id"), data.ClassID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *schoolApi) queryStudentEnrollments(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	enrs, err := api.svc.QueryEnrollmentsByStudent(ctx.Request().Context(), caller, ctx.Param("id"))
	if err != nil {
		return err
	}
	if enrs == nil {
		enrs = []school.Enrollment{}
	}
	return ctx.JSON(http.StatusOK, enrs)
}

func (api *schoolApi) createTerm(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	var data school.NewTerm
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTerm")
	}
	term, err := api.svc.CreateTerm(ctx.Request().Context(), caller, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, term)
}

func (api *schoolApi) queryTerms(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	terms, err := api.svc.QueryTerms(ctx.Request().Context(), caller)
	if err != nil {
		return err
	}
	if terms == nil {
		terms = []school.AcademicTerm{}
	}
	return ctx.JSON(http.StatusOK, terms)
}

func (api *schoolApi) destroyTerm(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteTerm(ctx.Request().Context(), caller, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *schoolApi) createGroup(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	var data school.NewTeacherGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacherGroup")
	}
	grp, err := api.svc.CreateGroup(ctx.Request().Context(), caller, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, grp)
}

func (api *schoolApi) queryGroups(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	groups, err := api.svc.QueryGroups(ctx.Request().Context(), caller)
	if err != nil {
		return err
	}
	if groups == nil {
		groups = []school.TeacherGroup{}
	}
	return ctx.JSON(http.StatusOK, groups)
}

func (api *schoolApi) submitFeedback(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	var data school.NewFeedback
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFeedback")
	}
	fb, err := api.svc.SubmitFeedback(ctx.Request().Context(), caller, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, fb)
}

func (api *schoolApi) queryFeedback(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	fbs, err := api.svc.QueryFeedback(ctx.Request().Context(), caller)
	if err != nil {
		return err
	}
	if fbs == nil {
		fbs = []school.Feedback{}
	}
	return ctx.JSON(http.StatusOK, fbs)
}
