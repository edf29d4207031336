package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/quickprintz/storefront/internal/config"
	"github.com/quickprintz/storefront/internal/constants"
	publichandlers "github.com/quickprintz/storefront/internal/http/handlers/public"
	"github.com/quickprintz/storefront/internal/service"

	"github.com/gin-gonic/gin"
)

func TestResolveAllowedOrigin(t *testing.T) {
	got := resolveAllowedOrigin("https://example.com", []string{"*"}, false)
	if got != "*" {
		t.Fatalf("wildcard without credentials should return *, got %s", got)
	}

	got = resolveAllowedOrigin("https://example.com", []string{"*"}, true)
	if got != "https://example.com" {
		t.Fatalf("wildcard with credentials should echo origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://a.example.com", []string{"https://a.example.com", "https://b.example.com"}, false)
	if got != "https://a.example.com" {
		t.Fatalf("allow-list should return matched origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://x.example.com", []string{"https://a.example.com"}, false)
	if got != "" {
		t.Fatalf("unmatched origin should be empty, got %s", got)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if w.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("response request id want req-123 got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-123" {
		t.Fatalf("context request id want req-123 got %s", resp["request_id"])
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w2, req2)
	generated := w2.Header().Get(requestIDHeader)
	if generated == "" {
		t.Fatalf("generated request id should not be empty")
	}
	if resp := strings.TrimSpace(generated); resp == "" {
		t.Fatalf("generated request id should not be blank")
	}
}

func newCartSessionRouter(carts *service.CartService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CartSessionMiddleware(carts))
	r.GET("/cart", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"cart_id": c.GetString(publichandlers.CartIDContextKey)})
	})
	return r
}

func decodeStatusCode(t *testing.T, body []byte) int {
	t.Helper()
	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	return resp.StatusCode
}

func TestCartSessionMiddlewareRejectsMissingAndForeignTokens(t *testing.T) {
	carts := service.NewCartService(config.CartConfig{SessionSecret: "router-secret"}, nil)
	r := newCartSessionRouter(carts)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cart", nil))
	if code := decodeStatusCode(t, w.Body.Bytes()); code != 401 {
		t.Fatalf("missing token want 401 got %d", code)
	}

	other := service.NewCartService(config.CartConfig{SessionSecret: "other-secret"}, nil)
	session, err := other.IssueSession()
	if err != nil {
		t.Fatalf("issue session failed: %v", err)
	}
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set(constants.HeaderCartToken, session.Token)
	r.ServeHTTP(w, req)
	if code := decodeStatusCode(t, w.Body.Bytes()); code != 401 {
		t.Fatalf("foreign token want 401 got %d", code)
	}
}

func TestCartSessionMiddlewareAcceptsHeaderAndBearer(t *testing.T) {
	carts := service.NewCartService(config.CartConfig{SessionSecret: "router-secret"}, nil)
	r := newCartSessionRouter(carts)
	session, err := carts.IssueSession()
	if err != nil {
		t.Fatalf("issue session failed: %v", err)
	}

	for _, setHeader := range []func(*http.Request){
		func(req *http.Request) { req.Header.Set(constants.HeaderCartToken, session.Token) },
		func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+session.Token) },
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/cart", nil)
		setHeader(req)
		r.ServeHTTP(w, req)
		var resp map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal response failed: %v", err)
		}
		if resp["cart_id"] != session.CartID {
			t.Fatalf("cart id want %s got %s", session.CartID, resp["cart_id"])
		}
	}
}

func TestCORSMiddlewareAllowsCartTokenHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware(config.CORSConfig{}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://quickprintz.example")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight want 204 got %d", w.Code)
	}
	if !strings.Contains(w.Header().Get("Access-Control-Allow-Headers"), constants.HeaderCartToken) {
		t.Fatalf("allow headers missing cart token: %s", w.Header().Get("Access-Control-Allow-Headers"))
	}
}
