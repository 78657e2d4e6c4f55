package adminapi

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"
	"github.com/nexshop/nexshop/internal/catalog"
	"github.com/nexshop/nexshop/internal/domain"
	"github.com/nexshop/nexshop/internal/webserver"
	"github.com/pkg/errors"
)

// 4 MiB is plenty for a product photo
const maxImageSize = 4 << 20

type productPayload struct {
	Name          string   `json:"name" validate:"required,min=1,max=200"`
	Description   string   `json:"description"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"original_price"`
	Category      string   `json:"category"`
	Stock         int      `json:"stock"`
	OnSale        bool     `json:"on_sale"`
	ImageURL      string   `json:"image_url"`
}

func (p *productPayload) toProduct() domain.Product {
	return domain.Product{
		Name:          strings.TrimSpace(p.Name),
		Description:   strings.TrimSpace(p.Description),
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		Category:      strings.TrimSpace(p.Category),
		Stock:         p.Stock,
		OnSale:        p.OnSale,
		ImageURL:      strings.TrimSpace(p.ImageURL),
	}
}

// registerProductRoutes registers product CRUD endpoints
func registerProductRoutes() {
	webserver.ApiGET("/api/admin/products", listProducts)
	webserver.ApiGET("/api/admin/products/export", exportProducts)
	webserver.ApiGET("/api/admin/products/:id", getProduct)
	webserver.ApiPOST("/api/admin/products", createProduct)
	webserver.ApiPUT("/api/admin/products/:id", updateProduct)
	webserver.ApiDELETE("/api/admin/products/:id", deleteProduct)
	webserver.ApiPOST("/api/admin/products/:id/image", uploadProductImage)
}

func listProducts(c echo.Context) error {
	page, pageSize := parsePagination(c)

	order := strings.ToUpper(strings.TrimSpace(c.QueryParam("order")))
	result, err := GetApp(c).Catalog().List(c.Request().Context(), catalog.ListOptions{
		Page:     page,
		PageSize: pageSize,
		Sort:     strings.TrimSpace(c.QueryParam("sort")),
		Desc:     order == "DESC",
		Search:   strings.TrimSpace(c.QueryParam("q")),
		Category: strings.TrimSpace(c.QueryParam("category")),
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}
	return webserver.PagedDegraded(c, result.Products, result.Total, page, pageSize, result.Degraded)
}

func getProduct(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	p, err := GetApp(c).Catalog().Get(c.Request().Context(), id)
	if errors.Is(err, catalog.ErrNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query product", err.Error())
	}
	return ok(c, p)
}

func createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	p, err := GetApp(c).Catalog().Create(c.Request().Context(), payload.toProduct())
	if errors.Is(err, catalog.ErrInvalidProduct) {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create product", err.Error())
	}
	return ok(c, p)
}

func updateProduct(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	p, err := GetApp(c).Catalog().Update(c.Request().Context(), id, payload.toProduct())
	if errors.Is(err, catalog.ErrInvalidProduct) {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	}
	if errors.Is(err, catalog.ErrNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update product", err.Error())
	}
	return ok(c, p)
}

func deleteProduct(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	err = GetApp(c).Catalog().Delete(c.Request().Context(), id)
	if errors.Is(err, catalog.ErrNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete product", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id})
}

func uploadProductImage(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	fh, err := c.FormFile("image")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Image file is required", nil)
	}
	if fh.Size > maxImageSize {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Image too large", nil)
	}
	src, err := fh.Open()
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to read image", err.Error())
	}
	defer src.Close()
	data, err := io.ReadAll(io.LimitReader(src, maxImageSize+1))
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to read image", err.Error())
	}
	if len(data) > maxImageSize {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Image too large", nil)
	}

	url, err := GetApp(c).Catalog().AttachImage(c.Request().Context(), id, data, fh.Filename)
	if errors.Is(err, catalog.ErrNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "UPLOAD_ERROR", "Failed to attach image", err.Error())
	}
	return ok(c, map[string]string{"image_url": url})
}

type productCsvRow struct {
	ID        int64   `csv:"id"`
	Name      string  `csv:"name"`
	Price     float64 `csv:"price"`
	Category  string  `csv:"category"`
	Stock     int     `csv:"stock"`
	OnSale    bool    `csv:"on_sale"`
	CreatedAt string  `csv:"created_at"`
}

func exportProducts(c echo.Context) error {
	products, err := GetApp(c).Catalog().ListAll(c.Request().Context())
	if errors.Is(err, catalog.ErrUnavailable) {
		return fail(c, http.StatusServiceUnavailable, "UPSTREAM_ERROR", "Store unavailable, export refused", nil)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to export products", err.Error())
	}

	rows := make([]productCsvRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, productCsvRow{
			ID:        p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Category:  p.Category,
			Stock:     p.Stock,
			OnSale:    p.OnSale,
			CreatedAt: p.CreatedAt.Format(time.RFC3339),
		})
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="products.csv"`)
	c.Response().WriteHeader(http.StatusOK)
	return gocsv.Marshal(&rows, c.Response())
}
