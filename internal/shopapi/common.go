// Package shopapi is the customer-facing REST surface: catalog
// browsing, the session cart and checkout.
package shopapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nexshop/nexshop/internal/app"
	"github.com/nexshop/nexshop/internal/webserver"
)

// SessionHeader identifies the shopper's cart. The frontend generates
// it once per browser session.
const SessionHeader = "X-Session-Id"

func InitRouter() {
	registerShopProductRoutes()
	registerCartRoutes()
	registerCheckoutRoutes()
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

// sessionID extracts the cart session or fails the request.
func sessionID(c echo.Context) (string, error) {
	sid := strings.TrimSpace(c.Request().Header.Get(SessionHeader))
	if sid == "" {
		return "", fail(c, http.StatusBadRequest, "SESSION_REQUIRED", "Missing "+SessionHeader+" header", nil)
	}
	return sid, nil
}
