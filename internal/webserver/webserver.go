// Package webserver owns the echo instance and the registration
// helpers the API packages use. The application context is injected
// into every request, so handlers never reach for globals beyond the
// route table itself.
package webserver

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/nexshop/nexshop/internal/app"
	"go.uber.org/zap"
)

const appCtxKey = "nexshop_appctx"

type WebServer struct {
	root   *echo.Echo
	appCtx app.WebContext
}

var server *WebServer

func Init(appCtx app.WebContext) {
	server = NewWebServer(appCtx)
}

func NewWebServer(appCtx app.WebContext) *WebServer {
	root := echo.New()
	root.HideBanner = true
	root.HidePort = true
	root.Use(middleware.Recover())
	root.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(appCtxKey, appCtx)
			start := time.Now()
			err := next(c)
			zap.L().Debug("http request",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("elapsed", time.Since(start)))
			return err
		}
	})

	// blobs written by blobstore.LocalStore
	root.Static("/public", filepath.Join(appCtx.Config().System.Workdir, "public"))

	root.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return &WebServer{root: root, appCtx: appCtx}
}

// GetAppCtx returns the application context injected by the middleware.
func GetAppCtx(c echo.Context) app.WebContext {
	return c.Get(appCtxKey).(app.WebContext)
}

func (s *WebServer) Echo() *echo.Echo {
	return s.root
}

// Echo exposes the package-level server's echo instance, mainly so API
// packages can drive it with httptest.
func Echo() *echo.Echo {
	return server.root
}

func (s *WebServer) Listen() error {
	cfg := s.appCtx.Config()
	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	zap.S().Infof("Starting web server %s", addr)
	return s.root.Start(addr)
}

// Listen starts the package-level server configured by Init.
func Listen() error {
	return server.Listen()
}

func ApiGET(path string, h echo.HandlerFunc) {
	server.root.GET(path, h)
}

func ApiPOST(path string, h echo.HandlerFunc) {
	server.root.POST(path, h)
}

func ApiPUT(path string, h echo.HandlerFunc) {
	server.root.PUT(path, h)
}

func ApiDELETE(path string, h echo.HandlerFunc) {
	server.root.DELETE(path, h)
}
