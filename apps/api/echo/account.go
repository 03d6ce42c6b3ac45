package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ndishimyeemilien/report-sub001/core/account"
	"github.com/ndishimyeemilien/report-sub001/core/authz"
)

type accountApi struct {
	svc *account.Service
}

func registerAccountAPI(g *echo.Group, jwt, caller echo.MiddlewareFunc, svc *account.Service) {
	api := accountApi{svc: svc}

	ag := g.Group("/account", jwt, caller)
	ag.GET("/me", api.me)
	ag.GET("/pending", api.queryPending, adminMiddleware())
	ag.PUT("/profiles/:uid/role", api.setRole, adminMiddleware())
}

// setRoleRequest carries the role to assign; validity is checked by the service.
type setRoleRequest struct {
	Role authz.Role `json:"role"`
}

// Handlers

func (api *accountApi) me(ctx echo.Context) error {
	p, err := getContextProfile(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *accountApi) queryPending(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	profiles, err := api.svc.ListPending(ctx.Request().Context(), caller)
	if err != nil {
		return err
	}
	if profiles == nil {
		profiles = []account.Profile{}
	}
	return ctx.JSON(http.StatusOK, profiles)
}

func (api *accountApi) setRole(ctx echo.Context) error {
	caller, err := getContextCaller(ctx)
	if err != nil {
		return err
	}
	var data setRoleRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to setRoleRequest")
	}
	p, err := api.svc.SetRole(ctx.Request().Context(), caller, ctx.Param("uid"), data.Role)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}
