package echoapi

import (
	"io/ioutil"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/riskwatch/core"
	"github.com/trezcool/riskwatch/core/risk"
)

type configApi struct {
	svc      *risk.Service
	validate *validator.Validate
	logger   core.Logger
}

func registerConfigAPI(g *echo.Group, svc *risk.Service, validate *validator.Validate, logger core.Logger) {
	api := configApi{
		svc:      svc,
		validate: validate,
		logger:   logger,
	}

	cg := g.Group("/config")
	cg.GET("", api.retrieve)
	cg.POST("/thresholds", api.updateThresholds)
}

type UpdateThresholdsResponse struct {
	Config   risk.Configuration `json:"config"`
	Students []risk.Student     `json:"students"`
}

// Handlers

func (api *configApi) retrieve(ctx echo.Context) error {
	conf, err := api.svc.Config(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "retrieving config")
	}
	return ctx.JSONPretty(http.StatusOK, conf, jsonIndent)
}

func (api *configApi) updateThresholds(ctx echo.Context) error {
	body, err := ioutil.ReadAll(ctx.Request().Body)
	if err != nil {
		return errors.Wrap(err, "reading request body")
	}
	// an unreadable body is an empty update
	data, err := risk.ParseThresholdsUpdate(body)
	if err != nil {
		api.logger.Warn("ignoring malformed thresholds body", err)
		data = risk.ThresholdsUpdate{}
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	conf, students, err := api.svc.UpdateThresholds(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "updating thresholds")
	}
	return ctx.JSONPretty(http.StatusOK, UpdateThresholdsResponse{Config: conf, Students: students}, jsonIndent)
}
