package adminapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nexshop/nexshop/internal/domain"
	"github.com/nexshop/nexshop/internal/order"
	"github.com/nexshop/nexshop/internal/webserver"
	"github.com/pkg/errors"
)

type statusPayload struct {
	Status string `json:"status" validate:"required"`
}

// registerOrderRoutes registers order management endpoints
func registerOrderRoutes() {
	webserver.ApiGET("/api/admin/orders", listOrders)
	webserver.ApiGET("/api/admin/orders/export", exportOrders)
	webserver.ApiGET("/api/admin/orders/:id", getOrder)
	webserver.ApiPUT("/api/admin/orders/:id/status", updateOrderStatus)
}

func listOrders(c echo.Context) error {
	page, pageSize := parsePagination(c)

	opts := order.ListOptions{Page: page, PageSize: pageSize}
	if status := strings.TrimSpace(c.QueryParam("status")); status != "" {
		s := domain.OrderStatus(status)
		if !s.IsValid() {
			return fail(c, http.StatusBadRequest, "INVALID_STATUS", "Unknown status filter", nil)
		}
		opts.Status = s
	}

	result, err := GetApp(c).Orders().List(c.Request().Context(), opts)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query orders", err.Error())
	}
	return webserver.PagedDegraded(c, result.Orders, result.Total, page, pageSize, result.Degraded)
}

func getOrder(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	o, err := GetApp(c).Orders().Get(c.Request().Context(), id)
	if errors.Is(err, order.ErrNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Order not found", nil)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query order", err.Error())
	}
	return ok(c, o)
}

// updateOrderStatus moves an order to any defined status. The admin
// panel offers all five states for every order.
func updateOrderStatus(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid order ID", nil)
	}
	var payload statusPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse status", err.Error())
	}

	o, err := GetApp(c).Orders().Transition(c.Request().Context(), id, domain.OrderStatus(payload.Status))
	if errors.Is(err, order.ErrInvalidStatus) {
		return fail(c, http.StatusBadRequest, "INVALID_STATUS", "Undefined status value", payload.Status)
	}
	if errors.Is(err, order.ErrNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Order not found", nil)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update order status", err.Error())
	}
	return ok(c, o)
}

func exportOrders(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="orders.csv"`)
	c.Response().WriteHeader(http.StatusOK)
	if err := GetApp(c).Orders().ExportCSV(c.Request().Context(), c.Response()); err != nil {
		// headers are gone already; log through the error return
		return err
	}
	return nil
}
