package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/riskwatch/core/risk"
)

type studentApi struct {
	svc *risk.Service
}

func registerStudentAPI(g *echo.Group, svc *risk.Service) {
	api := studentApi{svc: svc}

	sg := g.Group("/students")
	sg.GET("", api.query)
	sg.GET("/:id/risk", api.evaluate)
	// the detail path lists every student, like the collection path
	sg.GET("/:id", api.query)
}

// Handlers

func (api *studentApi) query(ctx echo.Context) error {
	students, err := api.svc.Query(ctx.Request().Context(), bindQueryFilter(ctx))
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSONPretty(http.StatusOK, students, jsonIndent)
}

func (api *studentApi) evaluate(ctx echo.Context) error {
	student, err := api.svc.Evaluate(ctx.Request().Context(), studentIDParam(ctx))
	if err != nil {
		if errors.Cause(err) == risk.ErrNotFound {
			return errHttpStudentNotFound
		}
		return errors.Wrap(err, "evaluating student")
	}
	return ctx.JSONPretty(http.StatusOK, student, jsonIndent)
}
