package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/suoapvs/alexcoffee/internal/auth"
	"github.com/suoapvs/alexcoffee/internal/cart"
	"github.com/suoapvs/alexcoffee/internal/errs"
	"github.com/suoapvs/alexcoffee/internal/metrics"
	"github.com/suoapvs/alexcoffee/internal/middleware"
	"github.com/suoapvs/alexcoffee/internal/models"
	"github.com/suoapvs/alexcoffee/internal/session"
	"github.com/suoapvs/alexcoffee/pkg/config"
	"github.com/suoapvs/alexcoffee/pkg/logging"
)

// ProductService is the catalog surface the handlers depend on.
type ProductService interface {
	List(ctx context.Context, limit, offset int) ([]models.Product, error)
	ListByCategoryURL(ctx context.Context, categoryURL string) ([]models.Product, error)
	Get(ctx context.Context, id int64) (*models.Product, error)
	GetByURL(ctx context.Context, url string) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id int64) error
}

// CategoryService is the category surface the handlers depend on.
type CategoryService interface {
	List(ctx context.Context) ([]models.Category, error)
	Get(ctx context.Context, id int64) (*models.Category, error)
	GetByURL(ctx context.Context, url string) (*models.Category, error)
	Create(ctx context.Context, c *models.Category) error
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id int64) error
}

// PhotoService is the photo surface the handlers depend on.
type PhotoService interface {
	List(ctx context.Context) ([]models.Photo, error)
	Get(ctx context.Context, id int64) (*models.Photo, error)
	Create(ctx context.Context, p *models.Photo) error
	Update(ctx context.Context, p *models.Photo) error
	Delete(ctx context.Context, id int64) error
}

// UserService is the account surface the handlers depend on.
type UserService interface {
	Create(ctx context.Context, u *models.User) error
	Get(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context, role models.Role) ([]models.User, error)
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id int64) error
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

// OrderService is the back-office order surface the handlers depend on.
type OrderService interface {
	Get(ctx context.Context, id int64) (*models.Order, error)
	List(ctx context.Context, status models.OrderStatus) ([]models.Order, error)
	Update(ctx context.Context, id int64, req *models.UpdateOrderRequest) (*models.Order, error)
	Delete(ctx context.Context, id int64) error
}

// CheckoutService turns a session cart into an order.
type CheckoutService interface {
	Checkout(ctx context.Context, c *cart.ShoppingCart, name, email, phone string) (*models.Order, error)
}

// App holds application dependencies
type App struct {
	config     *config.Config
	log        *logging.Logger
	metrics    *metrics.AppMetrics
	sessions   *session.Manager
	carts      session.Store
	auth       *auth.Service
	products   ProductService
	categories CategoryService
	photos     PhotoService
	users      UserService
	orders     OrderService
	checkout   CheckoutService
}

// NewApp creates a new application instance
func NewApp(
	cfg *config.Config,
	log *logging.Logger,
	m *metrics.AppMetrics,
	sessions *session.Manager,
	carts session.Store,
	authSvc *auth.Service,
	products ProductService,
	categories CategoryService,
	photos PhotoService,
	users UserService,
	orders OrderService,
	checkout CheckoutService,
) *App {
	return &App{
		config:     cfg,
		log:        log.With("component", "api"),
		metrics:    m,
		sessions:   sessions,
		carts:      carts,
		auth:       authSvc,
		products:   products,
		categories: categories,
		photos:     photos,
		users:      users,
		orders:     orders,
		checkout:   checkout,
	}
}

// SetupRoutes configures the HTTP routes
func (a *App) SetupRoutes(r *mux.Router) {
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS)
	r.Use(middleware.Recover(a.log))
	r.Use(middleware.Metrics(a.metrics, a.log))

	r.HandleFunc("/", a.HomeHandler).Methods("GET")
	r.HandleFunc("/health", a.HealthHandler).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/login", a.LoginHandler).Methods("POST")

	// Storefront: session-scoped cart and catalog browsing
	store := api.NewRoute().Subrouter()
	store.Use(middleware.Session(a.sessions))

	store.HandleFunc("/categories", a.ListCategoriesHandler).Methods("GET")
	store.HandleFunc("/categories/{url}", a.GetCategoryHandler).Methods("GET")
	store.HandleFunc("/categories/{url}/products", a.ListCategoryProductsHandler).Methods("GET")

	store.HandleFunc("/products", a.ListProductsHandler).Methods("GET")
	store.HandleFunc("/products/{id:[0-9]+}", a.GetProductHandler).Methods("GET")
	store.HandleFunc("/products/{url}", a.GetProductByURLHandler).Methods("GET")

	store.HandleFunc("/cart", a.GetCartHandler).Methods("GET")
	store.HandleFunc("/cart/add", a.AddToCartHandler).Methods("POST")
	store.HandleFunc("/cart/remove", a.RemoveFromCartHandler).Methods("POST")
	store.HandleFunc("/cart/clear", a.ClearCartHandler).Methods("POST")
	store.HandleFunc("/checkout", a.CheckoutHandler).Methods("POST")

	// Back office: bearer token, role-gated
	staff := api.PathPrefix("/admin").Subrouter()
	staff.Use(middleware.Authenticate(a.auth))

	manager := staff.NewRoute().Subrouter()
	manager.Use(middleware.RequireRole(models.RoleManager, models.RoleAdmin))
	manager.HandleFunc("/orders", a.ListOrdersHandler).Methods("GET")
	manager.HandleFunc("/orders/{id:[0-9]+}", a.GetOrderHandler).Methods("GET")
	manager.HandleFunc("/orders/{id:[0-9]+}", a.UpdateOrderHandler).Methods("PUT")

	admin := staff.NewRoute().Subrouter()
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	admin.HandleFunc("/orders/{id:[0-9]+}", a.DeleteOrderHandler).Methods("DELETE")

	admin.HandleFunc("/products", a.CreateProductHandler).Methods("POST")
	admin.HandleFunc("/products/{id:[0-9]+}", a.UpdateProductHandler).Methods("PUT")
	admin.HandleFunc("/products/{id:[0-9]+}", a.DeleteProductHandler).Methods("DELETE")

	admin.HandleFunc("/categories", a.CreateCategoryHandler).Methods("POST")
	admin.HandleFunc("/categories/{id:[0-9]+}", a.UpdateCategoryHandler).Methods("PUT")
	admin.HandleFunc("/categories/{id:[0-9]+}", a.DeleteCategoryHandler).Methods("DELETE")

	admin.HandleFunc("/photos", a.ListPhotosHandler).Methods("GET")
	admin.HandleFunc("/photos", a.CreatePhotoHandler).Methods("POST")
	admin.HandleFunc("/photos/{id:[0-9]+}", a.GetPhotoHandler).Methods("GET")
	admin.HandleFunc("/photos/{id:[0-9]+}", a.UpdatePhotoHandler).Methods("PUT")
	admin.HandleFunc("/photos/{id:[0-9]+}", a.DeletePhotoHandler).Methods("DELETE")

	admin.HandleFunc("/users", a.ListUsersHandler).Methods("GET")
	admin.HandleFunc("/users", a.CreateUserHandler).Methods("POST")
	admin.HandleFunc("/users/{id:[0-9]+}", a.GetUserHandler).Methods("GET")
	admin.HandleFunc("/users/{id:[0-9]+}", a.UpdateUserHandler).Methods("PUT")
	admin.HandleFunc("/users/{id:[0-9]+}", a.DeleteUserHandler).Methods("DELETE")
}

// respondJSON writes v as a JSON response
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respondError maps the error taxonomy to HTTP status codes at the
// transport boundary. Unclassified errors get a generic 500 body.
func (a *App) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch errs.KindOf(err) {
	case errs.KindNotFound:
		status = http.StatusNotFound
	case errs.KindDuplicate:
		status = http.StatusConflict
	case errs.KindForbidden:
		status = http.StatusForbidden
	case errs.KindBadRequest:
		status = http.StatusBadRequest
	default:
		status = http.StatusInternalServerError
	}

	a.log.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"request_id", middleware.RequestIDFromContext(r.Context()),
		"error", err,
	)

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	respondJSON(w, status, map[string]string{"error": message})
}
