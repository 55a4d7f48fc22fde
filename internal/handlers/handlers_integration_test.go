package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"toko/internal/database"
	"toko/internal/handlers"
	"toko/internal/middleware"
	"toko/internal/repositories"
	"toko/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCookieName = "token"

// setupApp sets up a Fiber app for testing with in-memory SQLite and all handlers/services.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := database.Open("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	userRepo := repositories.NewGORMUserRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)

	authService := services.NewAuthService(userRepo, services.AuthConfig{
		JWTSecret:    "test_jwt_secret",
		TokenTTL:     time.Hour,
		StoreTimeout: 2 * time.Second,
	})
	productService := services.NewProductService(productRepo, 2*time.Second)
	cartService := services.NewCartService(cartRepo, productRepo, nil, 2*time.Second)
	catalogLoader := services.NewCatalogLoader(productRepo, 2*time.Second)

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	api := app.Group("/api")
	requireSession := middleware.SessionRequired(authService, testCookieName)

	handlers.NewAuthHandler(authService, handlers.SessionCookie{Name: testCookieName}).RegisterRoutes(api, requireSession)
	handlers.NewProductHandler(productService).RegisterRoutes(api)
	handlers.NewCartHandler(cartService).RegisterRoutes(api, requireSession)
	handlers.NewCatalogHandler(catalogLoader).RegisterRoutes(api)

	return app
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

type response struct {
	status  int
	body    map[string]any
	cookies []*http.Cookie
}

func (r response) sessionCookie() *http.Cookie {
	for _, c := range r.cookies {
		if c.Name == testCookieName {
			return c
		}
	}
	return nil
}

func (r response) cart(t *testing.T) []map[string]any {
	t.Helper()
	raw, ok := r.body["cart"].([]any)
	require.True(t, ok, "cart is not a list: %v", r.body["cart"])
	items := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		items = append(items, item.(map[string]any))
	}
	return items
}

func do(t *testing.T, app *fiber.App, method, target string, payload any, session *http.Cookie) response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, target, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != nil {
		req.AddCookie(&http.Cookie{Name: session.Name, Value: session.Value})
	}

	resp, err := app.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	defer resp.Body.Close()

	decoded := map[string]any{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return response{status: resp.StatusCode, body: decoded, cookies: resp.Cookies()}
}

func TestAuthRegisterAndLogin(t *testing.T) {
	app := setupApp(t)
	credentials := map[string]string{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "password123",
	}

	resp := do(t, app, http.MethodPost, "/api/auth/register", credentials, nil)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, true, resp.body["success"])
	user := resp.body["user"].(map[string]any)
	assert.NotEmpty(t, user["id"])
	assert.Equal(t, "Alice", user["name"])
	assert.Equal(t, "alice@example.com", user["email"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "passwordHash")

	cookie := resp.sessionCookie()
	require.NotNil(t, cookie)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.False(t, cookie.Secure)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, 3600, cookie.MaxAge)

	// Duplicate registration
	resp = do(t, app, http.MethodPost, "/api/auth/register", credentials, nil)
	assert.Equal(t, http.StatusBadRequest, resp.status)
	assert.Equal(t, false, resp.body["success"])
	assert.Equal(t, "User already exists", resp.body["message"])

	// Wrong password and unknown email fail identically
	wrongPassword := do(t, app, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "alice@example.com", "password": "nope",
	}, nil)
	unknownEmail := do(t, app, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "bob@example.com", "password": "password123",
	}, nil)
	for _, r := range []response{wrongPassword, unknownEmail} {
		assert.Equal(t, http.StatusUnauthorized, r.status)
		assert.Equal(t, "Invalid credentials", r.body["message"])
		assert.Nil(t, r.sessionCookie())
	}

	resp = do(t, app, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "alice@example.com", "password": "password123",
	}, nil)
	require.Equal(t, http.StatusOK, resp.status)
	session := resp.sessionCookie()
	require.NotNil(t, session)

	resp = do(t, app, http.MethodGet, "/api/auth/me", nil, session)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, user["id"], resp.body["user"].(map[string]any)["id"])
}

func TestAuthValidation(t *testing.T) {
	app := setupApp(t)

	resp := do(t, app, http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Alice", "email": "not-an-email", "password": "password123",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.status)
	assert.Equal(t, "Validation failed", resp.body["message"])
	assert.Contains(t, resp.body["errors"], "Email")

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	raw, err := app.Test(req, -1)
	require.NoError(t, err)
	defer raw.Body.Close()
	assert.Equal(t, http.StatusBadRequest, raw.StatusCode)
}

func TestLogoutClearsSession(t *testing.T) {
	app := setupApp(t)

	resp := do(t, app, http.MethodPost, "/api/auth/logout", nil, nil)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, true, resp.body["success"])

	cookie := resp.sessionCookie()
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.True(t, cookie.Expires.Before(time.Now()))
}

func TestBearerTokenIsAccepted(t *testing.T) {
	app := setupApp(t)

	resp := do(t, app, http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Carol", "email": "carol@example.com", "password": "password123",
	}, nil)
	require.Equal(t, http.StatusOK, resp.status)
	token := resp.sessionCookie().Value

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	raw, err := app.Test(req, -1)
	require.NoError(t, err)
	defer raw.Body.Close()
	assert.Equal(t, http.StatusOK, raw.StatusCode)
}

func TestProductFilters(t *testing.T) {
	app := setupApp(t)

	resp := do(t, app, http.MethodPost, "/api/init-data", nil, nil)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "Sample data initialized", resp.body["message"])

	resp = do(t, app, http.MethodPost, "/api/init-data", nil, nil)
	assert.Equal(t, "Data already initialized", resp.body["message"])

	tests := []struct {
		query string
		want  []string
	}{
		{query: "", want: []string{
			"Classic White T-Shirt", "Blue Checkered Dress Shirt", "Casual Outfit Set",
			"Premium Gold Watch", "Designer Jeans", "Kids Cotton T-Shirt",
		}},
		{query: "?gender=men", want: []string{"Classic White T-Shirt", "Blue Checkered Dress Shirt"}},
		{query: "?category=shirts&color=blue", want: []string{"Blue Checkered Dress Shirt", "Kids Cotton T-Shirt"}},
		{query: "?size=XXL", want: []string{"Blue Checkered Dress Shirt"}},
		{query: "?minPrice=59.99&maxPrice=89.99", want: []string{"Blue Checkered Dress Shirt", "Casual Outfit Set", "Designer Jeans"}},
		{query: "?gender=kids&color=black", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp := do(t, app, http.MethodGet, "/api/products"+tt.query, nil, nil)
			require.Equal(t, http.StatusOK, resp.status)
			raw := resp.body["products"].([]any)
			names := make([]string, 0, len(raw))
			for _, p := range raw {
				product := p.(map[string]any)
				assert.NotContains(t, product, "rowId")
				names = append(names, product["name"].(string))
			}
			assert.Equal(t, tt.want, names)
		})
	}

	resp = do(t, app, http.MethodGet, "/api/products?minPrice=cheap", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.status)
	resp = do(t, app, http.MethodGet, "/api/products?minPrice=1e50000000", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.status)
	assert.Equal(t, false, resp.body["success"])
}

func TestCategories(t *testing.T) {
	app := setupApp(t)

	resp := do(t, app, http.MethodGet, "/api/categories", nil, nil)
	require.Equal(t, http.StatusOK, resp.status)
	categories := resp.body["categories"].([]any)
	require.Len(t, categories, 4)
	assert.Equal(t, map[string]any{"id": "accessories", "name": "Accessories", "gender": "unisex"}, categories[3])
}

func TestCartFlow(t *testing.T) {
	app := setupApp(t)
	shirt := services.SampleProducts()[1]

	require.Equal(t, http.StatusOK, do(t, app, http.MethodPost, "/api/init-data", nil, nil).status)

	resp := do(t, app, http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Alice", "email": "alice@example.com", "password": "password123",
	}, nil)
	require.Equal(t, http.StatusOK, resp.status)

	// Login with the wrong password fails, with the right one succeeds.
	resp = do(t, app, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "alice@example.com", "password": "wrong",
	}, nil)
	require.Equal(t, http.StatusUnauthorized, resp.status)
	resp = do(t, app, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "alice@example.com", "password": "password123",
	}, nil)
	require.Equal(t, http.StatusOK, resp.status)
	session := resp.sessionCookie()
	require.NotNil(t, session)

	resp = do(t, app, http.MethodGet, "/api/cart", nil, session)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Empty(t, resp.cart(t))

	add := map[string]any{"productId": shirt.ID, "quantity": 1, "size": "S", "color": "blue"}
	resp = do(t, app, http.MethodPost, "/api/cart/add", add, session)
	require.Equal(t, http.StatusOK, resp.status)
	items := resp.cart(t)
	require.Len(t, items, 1)
	assert.Equal(t, shirt.ID, items[0]["productId"])
	assert.Equal(t, shirt.Name, items[0]["name"])
	assert.Equal(t, 59.99, items[0]["price"])
	assert.Equal(t, float64(1), items[0]["quantity"])
	assert.Equal(t, "S", items[0]["size"])
	assert.Equal(t, "blue", items[0]["color"])

	resp = do(t, app, http.MethodPost, "/api/cart/add", map[string]any{"productId": "no-such-product", "quantity": 1}, session)
	assert.Equal(t, http.StatusNotFound, resp.status)
	assert.Equal(t, "Product not found", resp.body["message"])

	resp = do(t, app, http.MethodGet, "/api/cart", nil, session)
	require.Len(t, resp.cart(t), 1)

	// Same key merges; omitted size makes a distinct line.
	add["quantity"] = 2
	resp = do(t, app, http.MethodPost, "/api/cart/add", add, session)
	require.Len(t, resp.cart(t), 1)
	assert.Equal(t, float64(3), resp.cart(t)[0]["quantity"])

	resp = do(t, app, http.MethodPost, "/api/cart/add", map[string]any{"productId": shirt.ID, "color": "blue"}, session)
	items = resp.cart(t)
	require.Len(t, items, 2)
	assert.Nil(t, items[1]["size"])
	assert.Equal(t, float64(1), items[1]["quantity"])

	resp = do(t, app, http.MethodPost, "/api/cart/add", map[string]any{"productId": shirt.ID, "quantity": 0}, session)
	assert.Equal(t, http.StatusBadRequest, resp.status)
	resp = do(t, app, http.MethodPost, "/api/cart/add", map[string]any{"productId": shirt.ID, "quantity": 10001}, session)
	assert.Equal(t, http.StatusBadRequest, resp.status)

	resp = do(t, app, http.MethodPost, "/api/cart/remove", map[string]any{"productId": shirt.ID, "size": "S", "color": "blue"}, session)
	require.Equal(t, http.StatusOK, resp.status)
	items = resp.cart(t)
	require.Len(t, items, 1)
	assert.Nil(t, items[0]["size"])

	// Another user sees an empty cart.
	resp = do(t, app, http.MethodPost, "/api/auth/register", map[string]string{
		"name": "Bob", "email": "bob@example.com", "password": "password123",
	}, nil)
	require.Equal(t, http.StatusOK, resp.status)
	resp = do(t, app, http.MethodPost, "/api/cart/remove", map[string]any{"productId": shirt.ID}, resp.sessionCookie())
	require.Equal(t, http.StatusOK, resp.status)
	assert.Empty(t, resp.cart(t))
}

func TestCartRequiresSession(t *testing.T) {
	app := setupApp(t)

	resp := do(t, app, http.MethodGet, "/api/cart", nil, &http.Cookie{Name: testCookieName, Value: "forged"})
	assert.Equal(t, http.StatusUnauthorized, resp.status)
	assert.Equal(t, "Not authenticated", resp.body["message"])
}

func TestUnknownEndpoint(t *testing.T) {
	app := setupApp(t)

	resp := do(t, app, http.MethodGet, "/api/orders", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.status)
	assert.Equal(t, "API endpoint not found", resp.body["message"])
}
