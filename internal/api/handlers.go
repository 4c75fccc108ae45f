package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/metric"

	"github.com/suoapvs/alexcoffee/internal/cart"
	"github.com/suoapvs/alexcoffee/internal/errs"
	"github.com/suoapvs/alexcoffee/internal/models"
	"github.com/suoapvs/alexcoffee/internal/services"
	"github.com/suoapvs/alexcoffee/internal/session"
)

// HomeHandler handles GET /
func (a *App) HomeHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := a.categories.List(r.Context())
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"shop":       "AlexCoffee",
		"categories": categories,
	})
}

// HealthHandler handles GET /health
func (a *App) HealthHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// LoginHandler handles POST /api/v1/login
func (a *App) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondError(w, r, errs.E(errs.KindBadRequest, "invalid request body"))
		return
	}
	user, err := a.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	token, err := a.auth.IssueToken(user)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, models.LoginResponse{Token: token, Role: user.Role})
}

// ListCategoriesHandler handles GET /api/v1/categories
func (a *App) ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := a.categories.List(r.Context())
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

// GetCategoryHandler handles GET /api/v1/categories/{url}
func (a *App) GetCategoryHandler(w http.ResponseWriter, r *http.Request) {
	category, err := a.categories.GetByURL(r.Context(), mux.Vars(r)["url"])
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, category)
}

// ListCategoryProductsHandler handles GET /api/v1/categories/{url}/products
func (a *App) ListCategoryProductsHandler(w http.ResponseWriter, r *http.Request) {
	categoryURL := mux.Vars(r)["url"]
	if _, err := a.categories.GetByURL(r.Context(), categoryURL); err != nil {
		a.respondError(w, r, err)
		return
	}
	products, err := a.products.ListByCategoryURL(r.Context(), categoryURL)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

// ListProductsHandler handles GET /api/v1/products
func (a *App) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	limit := 20
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil {
			offset = parsed
		}
	}

	products, err := a.products.List(r.Context(), limit, offset)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

// GetProductHandler handles GET /api/v1/products/{id}
func (a *App) GetProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		a.respondError(w, r, errs.E(errs.KindBadRequest, "invalid product ID"))
		return
	}
	product, err := a.products.Get(r.Context(), id)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// GetProductByURLHandler handles GET /api/v1/products/{url}
func (a *App) GetProductByURLHandler(w http.ResponseWriter, r *http.Request) {
	product, err := a.products.GetByURL(r.Context(), mux.Vars(r)["url"])
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// sessionCart resolves the request's cart from the session store.
func (a *App) sessionCart(r *http.Request) (string, *cart.ShoppingCart, error) {
	sessionID := session.IDFromContext(r.Context())
	if sessionID == "" {
		return "", nil, errs.E(errs.KindBadRequest, "missing session")
	}
	c, err := a.carts.Get(r.Context(), sessionID)
	if err != nil {
		return "", nil, err
	}
	return sessionID, c, nil
}

// saveCart writes the cart back to the store and refreshes the cart
// size gauge.
func (a *App) saveCart(r *http.Request, sessionID string, c *cart.ShoppingCart) error {
	if err := a.carts.Save(r.Context(), sessionID, c); err != nil {
		return err
	}
	a.metrics.CartItemsCount.Record(r.Context(), int64(c.Size()),
		metric.WithAttributes(a.metrics.WithServiceName(nil)...))
	return nil
}

// GetCartHandler handles GET /api/v1/cart
func (a *App) GetCartHandler(w http.ResponseWriter, r *http.Request) {
	_, c, err := a.sessionCart(r)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, models.CartView{
		SalePositions: c.SalePositions(),
		Size:          c.Size(),
		Price:         c.Price(),
	})
}

// AddToCartHandler handles POST /api/v1/cart/add
func (a *App) AddToCartHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondError(w, r, errs.E(errs.KindBadRequest, "invalid request body"))
		return
	}

	product, err := a.products.Get(r.Context(), req.ProductID)
	if err != nil {
		a.respondError(w, r, err)
		return
	}

	sessionID, c, err := a.sessionCart(r)
	if err != nil {
		a.respondError(w, r, err)
		return
	}

	var position models.SalePosition
	position.SetProduct(*product)
	c.AddSalePosition(&position)

	if err := a.saveCart(r, sessionID, c); err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, models.CartView{
		SalePositions: c.SalePositions(),
		Size:          c.Size(),
		Price:         c.Price(),
	})
}

// RemoveFromCartHandler handles POST /api/v1/cart/remove
func (a *App) RemoveFromCartHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondError(w, r, errs.E(errs.KindBadRequest, "invalid request body"))
		return
	}

	sessionID, c, err := a.sessionCart(r)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	c.RemoveProduct(req.ProductID)

	if err := a.saveCart(r, sessionID, c); err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, models.CartView{
		SalePositions: c.SalePositions(),
		Size:          c.Size(),
		Price:         c.Price(),
	})
}

// ClearCartHandler handles POST /api/v1/cart/clear
func (a *App) ClearCartHandler(w http.ResponseWriter, r *http.Request) {
	sessionID, c, err := a.sessionCart(r)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	c.Clear()
	if err := a.saveCart(r, sessionID, c); err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, models.CartView{SalePositions: []models.SalePosition{}})
}

// CheckoutHandler handles POST /api/v1/checkout. The client submits
// name, email and phone as form fields; an empty cart redirects home
// without creating anything.
func (a *App) CheckoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		a.respondError(w, r, errs.E(errs.KindBadRequest, "invalid form data"))
		return
	}

	sessionID, c, err := a.sessionCart(r)
	if err != nil {
		a.respondError(w, r, err)
		return
	}

	order, err := a.checkout.Checkout(r.Context(), c,
		r.FormValue("name"), r.FormValue("email"), r.FormValue("phone"))
	if errors.Is(err, services.ErrEmptyCart) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err != nil {
		a.respondError(w, r, err)
		return
	}

	if err := a.saveCart(r, sessionID, c); err != nil {
		a.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, models.CheckoutResponse{
		Order:         order,
		SalePositions: order.SalePositions,
		Price:         order.Price(),
	})
}
