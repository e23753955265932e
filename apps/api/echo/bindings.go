package echoapi

import (
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/riskwatch/core/risk"
)

const jsonIndent = "  "

// bindQueryFilter reads the risk filter & sort params; only the first value of a repeated param is used.
func bindQueryFilter(ctx echo.Context) risk.QueryFilter {
	data := ctx.QueryParams()
	filter := risk.QueryFilter{
		Risk:  data.Get("risk"),
		Sort:  data.Get("sort"),
		Order: data.Get("order"),
	}
	filter.Clean()
	return filter
}

// studentIDParam returns the unescaped `:id` path param.
// echo routes on URL.RawPath when it is set (e.g. an escaped "/"), otherwise on the already unescaped URL.Path.
func studentIDParam(ctx echo.Context) string {
	id := ctx.Param("id")
	if ctx.Request().URL.RawPath == "" {
		return id
	}
	if unescaped, err := url.PathUnescape(id); err == nil {
		return unescaped
	}
	return id
}
