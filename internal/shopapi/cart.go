package shopapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/nexshop/nexshop/internal/cart"
	"github.com/nexshop/nexshop/internal/catalog"
	"github.com/nexshop/nexshop/internal/webserver"
	"github.com/pkg/errors"
)

type addItemPayload struct {
	ProductID int64 `json:"product_id,string"`
	Quantity  int   `json:"quantity"`
}

type setQuantityPayload struct {
	Quantity int `json:"quantity"`
}

type cartView struct {
	Items []cart.LineItem `json:"items"`
	Total float64         `json:"total"`
}

func registerCartRoutes() {
	webserver.ApiGET("/api/shop/cart", showCart)
	webserver.ApiPOST("/api/shop/cart/items", addCartItem)
	webserver.ApiPUT("/api/shop/cart/items/:productId", setCartItemQuantity)
	webserver.ApiDELETE("/api/shop/cart/items/:productId", removeCartItem)
	webserver.ApiDELETE("/api/shop/cart", clearCart)
}

func viewOf(c *cart.Cart) cartView {
	return cartView{Items: c.Items(), Total: c.Total()}
}

func showCart(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	return ok(c, viewOf(GetApp(c).Carts().Cart(sid)))
}

// addCartItem snapshots the product into the session cart. The line
// keeps its add-time price even if the catalog row changes later.
func addCartItem(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	var payload addItemPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse cart item", err.Error())
	}
	if payload.Quantity == 0 {
		payload.Quantity = 1
	}

	appCtx := GetApp(c)
	p, err := appCtx.Catalog().Get(c.Request().Context(), payload.ProductID)
	if errors.Is(err, catalog.ErrNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Product not found", nil)
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load product", err.Error())
	}

	userCart := appCtx.Carts().Cart(sid)
	if err := userCart.Add(*p, payload.Quantity); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_QUANTITY", "Quantity must be a positive integer", nil)
	}
	return ok(c, viewOf(userCart))
}

func setCartItemQuantity(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var payload setQuantityPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse quantity", err.Error())
	}

	// qty <= 0 removes the line; unknown ids are a silent no-op
	userCart := GetApp(c).Carts().Cart(sid)
	userCart.SetQuantity(productID, payload.Quantity)
	return ok(c, viewOf(userCart))
}

func removeCartItem(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	userCart := GetApp(c).Carts().Cart(sid)
	userCart.Remove(productID)
	return ok(c, viewOf(userCart))
}

func clearCart(c echo.Context) error {
	sid, err := sessionID(c)
	if err != nil {
		return err
	}
	userCart := GetApp(c).Carts().Cart(sid)
	userCart.Clear()
	return ok(c, viewOf(userCart))
}
