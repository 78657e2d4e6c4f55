package webserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RestResult is the uniform JSON envelope of every API response.
type RestResult struct {
	Code    int         `json:"code"`
	Msgtype string      `json:"msgtype"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// PagedData wraps list responses with pagination meta.
type PagedData struct {
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Degraded bool        `json:"degraded,omitempty"`
}

func OK(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, RestResult{Code: 0, Msgtype: "info", Data: data})
}

func Fail(c echo.Context, status int, code, message string, details interface{}) error {
	return c.JSON(status, RestResult{
		Code:    1,
		Msgtype: code,
		Message: message,
		Details: details,
	})
}

func Paged(c echo.Context, items interface{}, total int64, page, pageSize int) error {
	return OK(c, PagedData{Items: items, Total: total, Page: page, PageSize: pageSize})
}

// PagedDegraded marks a list that came from a fallback source because
// the upstream store was unavailable.
func PagedDegraded(c echo.Context, items interface{}, total int64, page, pageSize int, degraded bool) error {
	return OK(c, PagedData{Items: items, Total: total, Page: page, PageSize: pageSize, Degraded: degraded})
}
