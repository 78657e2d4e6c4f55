package adminapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/nexshop/nexshop/internal/app"
	"github.com/nexshop/nexshop/internal/webserver"
)

// InitRouter registers every admin panel endpoint. Authentication is
// enforced by the fronting auth layer, not here.
func InitRouter() {
	registerProductRoutes()
	registerOrderRoutes()
	registerSettingsRoutes()
}

func GetApp(c echo.Context) app.WebContext {
	return webserver.GetAppCtx(c)
}

func ok(c echo.Context, data interface{}) error {
	return webserver.OK(c, data)
}

func fail(c echo.Context, status int, code, message string, details interface{}) error {
	return webserver.Fail(c, status, code, message, details)
}

func paged(c echo.Context, items interface{}, total int64, page, pageSize int) error {
	return webserver.Paged(c, items, total, page, pageSize)
}

// parsePagination accepts both perPage (from the front-end) and the
// legacy pageSize param.
func parsePagination(c echo.Context) (page, pageSize int) {
	page = 1
	pageSize = 20
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	if ps, err := strconv.Atoi(c.QueryParam("perPage")); err == nil && ps > 0 && ps <= 500 {
		pageSize = ps
	} else if ps, err := strconv.Atoi(c.QueryParam("pageSize")); err == nil && ps > 0 && ps <= 500 {
		pageSize = ps
	}
	return page, pageSize
}
