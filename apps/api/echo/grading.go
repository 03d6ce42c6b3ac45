package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ndishimyeemilien/report-sub001/core/grading"
)

type gradingApi struct {
	svc      *grading.Service
	validate *validator.Validate
}

func registerGradingAPI(g *echo.Group, jwt, caller echo.MiddlewareFunc, svc *grading.Service, validate *validator.Validate) {
	api := gradingApi{svc: svc, validate: validate}

	gg := g.Group("/grades", jwt, caller)
	gg.PUT("", api.upsert)
	gg.GET("/student/:id", api.queryByStudent)
	gg.GET("/course/:id", api.queryByCourse)
}

// Handlers

func (api *gradingApi) upsert(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	var data grading.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}
	grd, err := api.svc.UpsertGrade(ctx.Request().Context(), caller, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grd)
}

func (api *gradingApi) queryByStudent(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	grades, err := api.svc.ListByStudent(ctx.Request().Context(), caller, ctx.Param("id"))
	if err != nil {
		return err
	}
	if grades == nil {
		grades = []grading.Grade{}
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (api *gradingApi) queryByCourse(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	grades, err := api.svc.ListByCourse(ctx.Request().Context(), caller, ctx.Param("id"))
	if err != nil {
		return err
	}
	if grades == nil {
		grades = []grading.Grade{}
	}
	return ctx.JSON(http.StatusOK, grades)
}
