package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/suoapvs/alexcoffee/internal/auth"
	"github.com/suoapvs/alexcoffee/internal/errs"
	"github.com/suoapvs/alexcoffee/internal/mail"
	"github.com/suoapvs/alexcoffee/internal/metrics"
	"github.com/suoapvs/alexcoffee/internal/models"
	"github.com/suoapvs/alexcoffee/internal/services"
	"github.com/suoapvs/alexcoffee/internal/session"
	"github.com/suoapvs/alexcoffee/pkg/config"
	"github.com/suoapvs/alexcoffee/pkg/logging"
)

type fakeProducts struct {
	byID map[int64]models.Product
}

func (f *fakeProducts) List(ctx context.Context, limit, offset int) ([]models.Product, error) {
	var out []models.Product
	for _, p := range f.byID {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProducts) ListByCategoryURL(ctx context.Context, categoryURL string) ([]models.Product, error) {
	return nil, nil
}

func (f *fakeProducts) Get(ctx context.Context, id int64) (*models.Product, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, errs.E(errs.KindNotFound, "product not found")
	}
	return &p, nil
}

func (f *fakeProducts) GetByURL(ctx context.Context, u string) (*models.Product, error) {
	for _, p := range f.byID {
		if p.URL == u {
			return &p, nil
		}
	}
	return nil, errs.E(errs.KindNotFound, "product not found")
}

func (f *fakeProducts) Create(ctx context.Context, p *models.Product) error {
	p.ID = int64(len(f.byID) + 1)
	f.byID[p.ID] = *p
	return nil
}

func (f *fakeProducts) Update(ctx context.Context, p *models.Product) error {
	if _, ok := f.byID[p.ID]; !ok {
		return errs.E(errs.KindNotFound, "product not found")
	}
	f.byID[p.ID] = *p
	return nil
}

func (f *fakeProducts) Delete(ctx context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return errs.E(errs.KindNotFound, "product not found")
	}
	delete(f.byID, id)
	return nil
}

type fakeCategories struct {
	items []models.Category
}

func (f *fakeCategories) List(ctx context.Context) ([]models.Category, error) { return f.items, nil }

func (f *fakeCategories) Get(ctx context.Context, id int64) (*models.Category, error) {
	for i := range f.items {
		if f.items[i].ID == id {
			return &f.items[i], nil
		}
	}
	return nil, errs.E(errs.KindNotFound, "category not found")
}

func (f *fakeCategories) GetByURL(ctx context.Context, u string) (*models.Category, error) {
	for i := range f.items {
		if f.items[i].URL == u {
			return &f.items[i], nil
		}
	}
	return nil, errs.E(errs.KindNotFound, "category not found")
}

func (f *fakeCategories) Create(ctx context.Context, c *models.Category) error {
	c.ID = int64(len(f.items) + 1)
	f.items = append(f.items, *c)
	return nil
}

func (f *fakeCategories) Update(ctx context.Context, c *models.Category) error { return nil }
func (f *fakeCategories) Delete(ctx context.Context, id int64) error           { return nil }

type fakePhotos struct{}

func (fakePhotos) List(ctx context.Context) ([]models.Photo, error)       { return nil, nil }
func (fakePhotos) Get(ctx context.Context, id int64) (*models.Photo, error) {
	return nil, errs.E(errs.KindNotFound, "photo not found")
}
func (fakePhotos) Create(ctx context.Context, p *models.Photo) error { return nil }
func (fakePhotos) Update(ctx context.Context, p *models.Photo) error { return nil }
func (fakePhotos) Delete(ctx context.Context, id int64) error        { return nil }

type fakeUsers struct {
	byEmail map[string]models.User
}

func (f *fakeUsers) Create(ctx context.Context, u *models.User) error { return nil }

func (f *fakeUsers) Get(ctx context.Context, id int64) (*models.User, error) {
	return nil, errs.E(errs.KindNotFound, "user not found")
}

func (f *fakeUsers) List(ctx context.Context, role models.Role) ([]models.User, error) {
	return nil, nil
}

func (f *fakeUsers) Update(ctx context.Context, u *models.User) error { return nil }
func (f *fakeUsers) Delete(ctx context.Context, id int64) error       { return nil }

func (f *fakeUsers) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, ok := f.byEmail[email]
	if !ok || !auth.CheckPassword(u.PasswordHash, password) {
		return nil, errs.E(errs.KindForbidden, "invalid credentials")
	}
	return &u, nil
}

type fakeOrders struct {
	byID map[int64]models.Order
}

func (f *fakeOrders) Get(ctx context.Context, id int64) (*models.Order, error) {
	o, ok := f.byID[id]
	if !ok {
		return nil, errs.E(errs.KindNotFound, "order not found")
	}
	return &o, nil
}

func (f *fakeOrders) List(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.byID {
		if status == "" || o.Status == status {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrders) Update(ctx context.Context, id int64, req *models.UpdateOrderRequest) (*models.Order, error) {
	o, ok := f.byID[id]
	if !ok {
		return nil, errs.E(errs.KindNotFound, "order not found")
	}
	if req.Status != "" {
		if !o.Status.CanTransition(req.Status) {
			return nil, errs.Ef(errs.KindBadRequest, "cannot move order from %s to %s", o.Status, req.Status)
		}
		o.Status = req.Status
	}
	o.ManagerID = req.ManagerID
	f.byID[id] = o
	return &o, nil
}

func (f *fakeOrders) Delete(ctx context.Context, id int64) error {
	if _, ok := f.byID[id]; !ok {
		return errs.E(errs.KindNotFound, "order not found")
	}
	delete(f.byID, id)
	return nil
}

// orderSink adapts the checkout service's store dependency.
type orderSink struct {
	saved []models.Order
}

func (s *orderSink) Save(ctx context.Context, order *models.Order) error {
	order.ID = int64(len(s.saved) + 1)
	s.saved = append(s.saved, *order)
	return nil
}

type testEnv struct {
	router   *mux.Router
	authSvc  *auth.Service
	products *fakeProducts
	orders   *fakeOrders
	sink     *orderSink
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := logging.NewNop()
	m := metrics.NewNop()
	cfg := &config.Config{AppPort: "0", SessionTTL: time.Hour}

	carts := session.NewMemoryStore(time.Hour)
	t.Cleanup(func() { carts.Close() })

	hash, err := auth.HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	products := &fakeProducts{byID: map[int64]models.Product{
		1: {ID: 1, Title: "Espresso Blend", URL: "espresso-blend", Price: 40},
		2: {ID: 2, Title: "Cold Brew", URL: "cold-brew", Price: 55},
	}}
	categories := &fakeCategories{items: []models.Category{
		{ID: 1, Title: "Beans", URL: "beans"},
	}}
	users := &fakeUsers{byEmail: map[string]models.User{
		"admin@example.com":   {ID: 1, Email: "admin@example.com", Role: models.RoleAdmin, PasswordHash: hash},
		"manager@example.com": {ID: 2, Email: "manager@example.com", Role: models.RoleManager, PasswordHash: hash},
	}}
	orders := &fakeOrders{byID: map[int64]models.Order{
		10: {ID: 10, Number: "AAAA111111", Status: models.StatusNew},
	}}

	sink := &orderSink{}
	checkout := services.NewCheckoutService(sink, mail.NopSender{}, m, log)

	authSvc := auth.NewService("test-secret", time.Hour)
	sessions := session.NewManager(false, 3600)

	app := NewApp(cfg, log, m, sessions, carts, authSvc,
		products, categories, fakePhotos{}, users, orders, checkout)

	router := mux.NewRouter()
	app.SetupRoutes(router)

	return &testEnv{
		router:   router,
		authSvc:  authSvc,
		products: products,
		orders:   orders,
		sink:     sink,
	}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// withSession replays the session cookie from an earlier response so
// consecutive requests share one cart.
func withSession(req *http.Request, from *httptest.ResponseRecorder) *http.Request {
	for _, c := range from.Result().Cookies() {
		if c.Name == session.CookieName {
			req.AddCookie(c)
		}
	}
	return req
}

func (e *testEnv) bearer(t *testing.T, role models.Role) string {
	t.Helper()
	token, err := e.authSvc.IssueToken(&models.User{ID: 5, Email: "staff@example.com", Role: role})
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	return "Bearer " + token
}

func jsonBody(t *testing.T, v interface{}) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	return bytes.NewReader(data)
}

func TestHealthHandler(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestHomeHandlerListsCategories(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body struct {
		Shop       string            `json:"shop"`
		Categories []models.Category `json:"categories"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body.Shop != "AlexCoffee" {
		t.Errorf("shop = %q, want AlexCoffee", body.Shop)
	}
	if len(body.Categories) != 1 {
		t.Errorf("%d categories, want 1", len(body.Categories))
	}
}

func TestGetCartStartsEmptyAndSetsCookie(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var view models.CartView
	if err := json.NewDecoder(w.Body).Decode(&view); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if view.Size != 0 || view.Price != 0 {
		t.Errorf("new cart Size = %d Price = %f, want zeros", view.Size, view.Price)
	}

	var found bool
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			found = true
		}
	}
	if !found {
		t.Error("no session cookie set")
	}
}

func TestAddToCartMergesRepeatedAdds(t *testing.T) {
	env := newTestEnv(t)

	first := env.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/cart/add",
		jsonBody(t, models.CartItemRequest{ProductID: 1})))
	if first.Code != http.StatusOK {
		t.Fatalf("first add status = %d, want 200", first.Code)
	}

	second := env.do(t, withSession(httptest.NewRequest(http.MethodPost, "/api/v1/cart/add",
		jsonBody(t, models.CartItemRequest{ProductID: 1})), first))
	if second.Code != http.StatusOK {
		t.Fatalf("second add status = %d, want 200", second.Code)
	}

	var view models.CartView
	if err := json.NewDecoder(second.Body).Decode(&view); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(view.SalePositions) != 1 {
		t.Errorf("%d lines after repeat add, want 1", len(view.SalePositions))
	}
	if view.Size != 2 {
		t.Errorf("Size = %d, want 2", view.Size)
	}
	if view.Price != 80 {
		t.Errorf("Price = %f, want 80", view.Price)
	}
}

func TestAddUnknownProductToCart(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/cart/add",
		jsonBody(t, models.CartItemRequest{ProductID: 99})))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestRemoveFromCart(t *testing.T) {
	env := newTestEnv(t)

	added := env.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/cart/add",
		jsonBody(t, models.CartItemRequest{ProductID: 1})))

	removed := env.do(t, withSession(httptest.NewRequest(http.MethodPost, "/api/v1/cart/remove",
		jsonBody(t, models.CartItemRequest{ProductID: 1})), added))
	if removed.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", removed.Code)
	}

	var view models.CartView
	if err := json.NewDecoder(removed.Body).Decode(&view); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if view.Size != 0 {
		t.Errorf("Size = %d after remove, want 0", view.Size)
	}
}

func TestClearCart(t *testing.T) {
	env := newTestEnv(t)

	added := env.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/cart/add",
		jsonBody(t, models.CartItemRequest{ProductID: 1})))

	cleared := env.do(t, withSession(httptest.NewRequest(http.MethodPost, "/api/v1/cart/clear", nil), added))
	if cleared.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", cleared.Code)
	}

	view := env.do(t, withSession(httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil), added))
	var body models.CartView
	if err := json.NewDecoder(view.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body.Size != 0 {
		t.Errorf("Size = %d after clear, want 0", body.Size)
	}
}

func checkoutForm(name, email, phone string) *strings.Reader {
	form := url.Values{}
	form.Set("name", name)
	form.Set("email", email)
	form.Set("phone", phone)
	return strings.NewReader(form.Encode())
}

func TestCheckoutEmptyCartRedirectsHome(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout",
		checkoutForm("Anna", "anna@example.com", "+380501234567"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := env.do(t, req)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}
	if len(env.sink.saved) != 0 {
		t.Error("empty cart checkout persisted an order")
	}
}

func TestCheckoutCreatesOrderAndClearsCart(t *testing.T) {
	env := newTestEnv(t)

	added := env.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/cart/add",
		jsonBody(t, models.CartItemRequest{ProductID: 2})))

	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/checkout",
		checkoutForm("Anna", "anna@example.com", "+380501234567")), added)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := env.do(t, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}

	var resp models.CheckoutResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if resp.Order == nil || resp.Order.Status != models.StatusNew {
		t.Fatal("checkout did not return a NEW order")
	}
	if resp.Price != 55 {
		t.Errorf("Price = %f, want 55", resp.Price)
	}
	if len(env.sink.saved) != 1 {
		t.Fatalf("%d orders persisted, want 1", len(env.sink.saved))
	}

	view := env.do(t, withSession(httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil), added))
	var body models.CartView
	if err := json.NewDecoder(view.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body.Size != 0 {
		t.Errorf("cart Size = %d after checkout, want 0", body.Size)
	}
}

func TestCheckoutMissingContactsIsBadRequest(t *testing.T) {
	env := newTestEnv(t)

	added := env.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/cart/add",
		jsonBody(t, models.CartItemRequest{ProductID: 1})))

	req := withSession(httptest.NewRequest(http.MethodPost, "/api/v1/checkout",
		checkoutForm("Anna", "", "")), added)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := env.do(t, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/login",
		jsonBody(t, models.LoginRequest{Email: "admin@example.com", Password: "s3cret"})))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var resp models.LoginResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if resp.Token == "" {
		t.Error("empty token")
	}
	if resp.Role != models.RoleAdmin {
		t.Errorf("Role = %s, want admin", resp.Role)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/login",
		jsonBody(t, models.LoginRequest{Email: "admin@example.com", Password: "nope"})))
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestOrdersRequireBearerToken(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestManagerCanListOrders(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
	req.Header.Set("Authorization", env.bearer(t, models.RoleManager))

	w := env.do(t, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var orders []models.Order
	if err := json.NewDecoder(w.Body).Decode(&orders); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(orders) != 1 {
		t.Errorf("%d orders, want 1", len(orders))
	}
}

func TestManagerCanAdvanceOrderStatus(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/orders/10",
		jsonBody(t, models.UpdateOrderRequest{Status: models.StatusWork}))
	req.Header.Set("Authorization", env.bearer(t, models.RoleManager))

	w := env.do(t, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var order models.Order
	if err := json.NewDecoder(w.Body).Decode(&order); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if order.Status != models.StatusWork {
		t.Errorf("Status = %s, want WORK", order.Status)
	}
}

func TestInvalidStatusTransitionIsBadRequest(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/orders/10",
		jsonBody(t, models.UpdateOrderRequest{Status: models.StatusClosed}))
	req.Header.Set("Authorization", env.bearer(t, models.RoleManager))

	w := env.do(t, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
}

func TestManagerCannotDeleteOrder(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/orders/10", nil)
	req.Header.Set("Authorization", env.bearer(t, models.RoleManager))

	w := env.do(t, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestAdminCanDeleteOrder(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/orders/10", nil)
	req.Header.Set("Authorization", env.bearer(t, models.RoleAdmin))

	w := env.do(t, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if _, ok := env.orders.byID[10]; ok {
		t.Error("order still present after delete")
	}
}

func TestUnknownCategoryIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/categories/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body["error"] == "" {
		t.Error("error body is empty")
	}
}
