package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/suoapvs/alexcoffee/internal/auth"
	"github.com/suoapvs/alexcoffee/internal/errs"
	"github.com/suoapvs/alexcoffee/internal/models"
)

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, errs.E(errs.KindBadRequest, "invalid ID")
	}
	return id, nil
}

// ListOrdersHandler handles GET /api/v1/admin/orders
func (a *App) ListOrdersHandler(w http.ResponseWriter, r *http.Request) {
	status := models.OrderStatus(r.URL.Query().Get("status"))
	orders, err := a.orders.List(r.Context(), status)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

// GetOrderHandler handles GET /api/v1/admin/orders/{id}
func (a *App) GetOrderHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	order, err := a.orders.Get(r.Context(), id)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// UpdateOrderHandler handles PUT /api/v1/admin/orders/{id}. A manager
// updating an order without naming a manager takes it over.
func (a *App) UpdateOrderHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	var req models.UpdateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondError(w, r, errs.E(errs.KindBadRequest, "invalid request body"))
		return
	}
	if req.ManagerID == 0 {
		if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
			req.ManagerID = claims.UserID
		}
	}
	order, err := a.orders.Update(r.Context(), id, &req)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// DeleteOrderHandler handles DELETE /api/v1/admin/orders/{id}
func (a *App) DeleteOrderHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	if err := a.orders.Delete(r.Context(), id); err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type productRequest struct {
	Article     string  `json:"article"`
	Title       string  `json:"title"`
	URL         string  `json:"url"`
	Description string  `json:"description"`
	CategoryID  int64   `json:"category_id"`
	PhotoID     int64   `json:"photo_id"`
	Price       float64 `json:"price"`
}

// CreateProductHandler handles POST /api/v1/admin/products
func (a *App) CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondError(w, r, errs.E(errs.KindBadRequest, "invalid request body"))
		return
	}
	if req.Title == "" {
		a.respondError(w, r, errs.E(errs.KindBadRequest, "title is required"))
		return
	}

	product := models.NewProductBuilder().
		WithArticle(req.Article).
		WithTitle(req.Title).
		WithURL(req.URL).
		WithDescription(req.Description).
		WithCategoryID(req.CategoryID).
		WithPhotoID(req.PhotoID).
		WithPrice(req.Price).
		Build()

	if err := a.products.Create(r.Context(), &product); err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

// UpdateProductHandler handles PUT /api/v1/admin/products/{id}
func (a *App) UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondError(w, r, errs.E(errs.KindBadRequest, "invalid request body"))
		return
	}
	if req.Title == "" {
		a.respondError(w, r, errs.E(errs.KindBadRequest, "title is required"))
		return
	}

	product := models.NewProductBuilder().
		WithArticle(req.Article).
		WithTitle(req.Title).
		WithURL(req.URL).
		WithDescription(req.Description).
		WithCategoryID(req.CategoryID).
		WithPhotoID(req.PhotoID).
		WithPrice(req.Price).
		Build()
	product.ID = id

	if err := a.products.Update(r.Context(), &product); err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// DeleteProductHandler handles DELETE /api/v1/admin/products/{id}
func (a *App) DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	if err := a.products.Delete(r.Context(), id); err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type categoryRequest struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	PhotoID     int64  `json:"photo_id"`
}

// CreateCategoryHandler handles POST /api/v1/admin/categories
func (a *App) CreateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondError(w, r, errs.E(errs.KindBadRequest, "invalid request body"))
		return
	}
	if req.Title == "" {
		a.respondError(w, r, errs.E(errs.KindBadRequest, "title is required"))
		return
	}

	category := models.NewCategoryBuilder().
		WithTitle(req.Title).
		WithURL(req.URL).
		WithDescription(req.Description).
		WithPhotoID(req.PhotoID).
		Build()

	if err := a.categories.Create(r.Context(), &category); err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, category)
}

// UpdateCategoryHandler handles PUT /api/v1/admin/categories/{id}
func (a *App) UpdateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondError(w, r, errs.E(errs.KindBadRequest, "invalid request body"))
		return
	}
	if req.Title == "" {
		a.respondError(w, r, errs.E(errs.KindBadRequest, "title is required"))
		return
	}

	category := models.NewCategoryBuilder().
		WithTitle(req.Title).
		WithURL(req.URL).
		WithDescription(req.Description).
		WithPhotoID(req.PhotoID).
		Build()
	category.ID = id

	if err := a.categories.Update(r.Context(), &category); err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, category)
}

// DeleteCategoryHandler handles DELETE /api/v1/admin/categories/{id}
func (a *App) DeleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	if err := a.categories.Delete(r.Context(), id); err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListPhotosHandler handles GET /api/v1/admin/photos
func (a *App) ListPhotosHandler(w http.ResponseWriter, r *http.Request) {
	photos, err := a.photos.List(r.Context())
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, photos)
}

// GetPhotoHandler handles GET /api/v1/admin/photos/{id}
func (a *App) GetPhotoHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	photo, err := a.photos.Get(r.Context(), id)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, photo)
}

type photoRequest struct {
	Title    string `json:"title"`
	SmallURL string `json:"small_url"`
	LargeURL string `json:"large_url"`
}

// CreatePhotoHandler handles POST /api/v1/admin/photos
func (a *App) CreatePhotoHandler(w http.ResponseWriter, r *http.Request) {
	var req photoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondError(w, r, errs.E(errs.KindBadRequest, "invalid request body"))
		return
	}

	photo := models.NewPhotoBuilder().
		WithTitle(req.Title).
		WithSmallURL(req.SmallURL).
		WithLargeURL(req.LargeURL).
		Build()

	if err := a.photos.Create(r.Context(), &photo); err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, photo)
}

// UpdatePhotoHandler handles PUT /api/v1/admin/photos/{id}
func (a *App) UpdatePhotoHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	var req photoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondError(w, r, errs.E(errs.KindBadRequest, "invalid request body"))
		return
	}

	photo := models.NewPhotoBuilder().
		WithTitle(req.Title).
		WithSmallURL(req.SmallURL).
		WithLargeURL(req.LargeURL).
		Build()
	photo.ID = id

	if err := a.photos.Update(r.Context(), &photo); err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, photo)
}

// DeletePhotoHandler handles DELETE /api/v1/admin/photos/{id}
func (a *App) DeletePhotoHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	if err := a.photos.Delete(r.Context(), id); err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListUsersHandler handles GET /api/v1/admin/users
func (a *App) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	role := models.Role(r.URL.Query().Get("role"))
	if role != "" && !role.Valid() {
		a.respondError(w, r, errs.Ef(errs.KindBadRequest, "invalid role: %s", role))
		return
	}
	users, err := a.users.List(r.Context(), role)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// GetUserHandler handles GET /api/v1/admin/users/{id}
func (a *App) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	user, err := a.users.Get(r.Context(), id)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// buildUser validates a user payload and hashes the password if present.
func buildUser(req *models.CreateUserRequest) (models.User, error) {
	if req.Email == "" {
		return models.User{}, errs.E(errs.KindBadRequest, "email is required")
	}
	role := req.Role
	if role != "" && !role.Valid() {
		return models.User{}, errs.Ef(errs.KindBadRequest, "invalid role: %s", role)
	}

	builder := models.NewUserBuilder().
		WithName(req.Name).
		WithEmail(req.Email).
		WithPhone(req.Phone).
		WithRole(role)
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return models.User{}, err
		}
		builder = builder.WithPasswordHash(hash)
	}
	return builder.Build(), nil
}

// CreateUserHandler handles POST /api/v1/admin/users
func (a *App) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondError(w, r, errs.E(errs.KindBadRequest, "invalid request body"))
		return
	}
	user, err := buildUser(&req)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	if user.Role != models.RoleClient && user.PasswordHash == "" {
		a.respondError(w, r, errs.E(errs.KindBadRequest, "staff accounts need a password"))
		return
	}
	if err := a.users.Create(r.Context(), &user); err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, user)
}

// UpdateUserHandler handles PUT /api/v1/admin/users/{id}
func (a *App) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	var req models.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondError(w, r, errs.E(errs.KindBadRequest, "invalid request body"))
		return
	}
	user, err := buildUser(&req)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	user.ID = id
	if err := a.users.Update(r.Context(), &user); err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// DeleteUserHandler handles DELETE /api/v1/admin/users/{id}
func (a *App) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		a.respondError(w, r, err)
		return
	}
	if err := a.users.Delete(r.Context(), id); err != nil {
		a.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
