package shopapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nexshop/nexshop/internal/catalog"
	"github.com/nexshop/nexshop/internal/webserver"
	"github.com/pkg/errors"
)

func registerShopProductRoutes() {
	webserver.ApiGET("/api/shop/products", browseProducts)
	webserver.ApiGET("/api/shop/products/:id", showProduct)
}

// browseProducts lists the catalog name-ordered, the way the shop page
// renders it.
func browseProducts(c echo.Context) error {
	page := 1
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	result, err := GetApp(c).Catalog().List(c.Request().Context(), catalog.ListOptions{
		Page:     page,
		PageSize: 60,
		Sort:     "name",
		Search:   strings.TrimSpace(c.QueryParam("q")),
		Category: strings.TrimSpace(c.QueryParam("category")),
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load products", err.Error())
	}
	return webserver.PagedDegraded(c, result.Products, result.Total, page, 60, result.Degraded)
}

func showProduct(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	p, err := GetApp(c).Catalog().Get(c.Request().Context(), id)
	if errors.Is(err, catalog.ErrNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load product", err.Error())
	}
	return ok(c, p)
}
