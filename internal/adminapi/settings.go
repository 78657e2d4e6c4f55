package adminapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nexshop/nexshop/internal/webserver"
)

type settingPayload struct {
	Category string `json:"category" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Value    string `json:"value"`
}

func registerSettingsRoutes() {
	webserver.ApiGET("/api/admin/settings", listSettings)
	webserver.ApiPUT("/api/admin/settings", updateSetting)
}

func listSettings(c echo.Context) error {
	return ok(c, GetApp(c).ConfigMgr().Dump())
}

func updateSetting(c echo.Context) error {
	var payload settingPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse setting", err.Error())
	}
	payload.Category = strings.TrimSpace(payload.Category)
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Category == "" || payload.Name == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Category and name are required", nil)
	}
	if err := GetApp(c).ConfigMgr().Set(payload.Category, payload.Name, payload.Value); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to save setting", err.Error())
	}
	return ok(c, map[string]string{
		"key":   payload.Category + "." + payload.Name,
		"value": payload.Value,
	})
}
