package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"shop-demo/pkg/config"
	"shop-demo/pkg/diagnostics"
	"shop-demo/pkg/models"
	"shop-demo/pkg/orders"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	return NewRouter(Deps{Config: config.DefaultConfig()})
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestMessage(t *testing.T) {
	rec := do(newTestRouter(t), http.MethodGet, "/api/message", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.JSONEq(t, `{"message":"Hello from the backend!"}`, rec.Body.String())
}

func TestProducts(t *testing.T) {
	rec := do(newTestRouter(t), http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	want := []models.Product{
		{ID: 1, Name: "T-Shirt", Price: 20},
		{ID: 2, Name: "Jeans", Price: 40},
		{ID: 3, Name: "Sneakers", Price: 60},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("products mismatch (-want +got):\n%s", diff)
	}
}

func TestLogin(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantOK     bool
	}{
		{"correct pair", `{"username":"user","password":"pass"}`, http.StatusOK, true},
		{"wrong password", `{"username":"user","password":"nope"}`, http.StatusUnauthorized, false},
		{"wrong user", `{"username":"admin","password":"pass"}`, http.StatusUnauthorized, false},
		{"missing fields", `{}`, http.StatusUnauthorized, false},
		{"empty body", ``, http.StatusUnauthorized, false},
		{"numbers", `{"username":1,"password":2}`, http.StatusUnauthorized, false},
		{"array", `["user","pass"]`, http.StatusUnauthorized, false},
		{"one field mistyped", `{"username":"user","password":true}`, http.StatusUnauthorized, false},
		{"not json", `user=user&password=pass`, http.StatusBadRequest, false},
		{"truncated", `{"username":"user",`, http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(r, http.MethodPost, "/api/login", tt.body)
			require.Equal(t, tt.wantStatus, rec.Code)

			var resp models.LoginResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantOK, resp.Success)
			if tt.wantOK {
				assert.NotEmpty(t, resp.Token)
			} else {
				assert.Empty(t, resp.Token)
				assert.NotEmpty(t, resp.Message)
			}
		})
	}
}

func TestLoginRejectedBody(t *testing.T) {
	rec := do(newTestRouter(t), http.MethodPost, "/api/login", `{"username":"user","password":"x"}`)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Invalid credentials"}`, rec.Body.String())
}

func TestOrders(t *testing.T) {
	r := newTestRouter(t)

	bodies := []string{
		`{"userId":1,"productIds":[1,2]}`,
		`{"userId":1,"productIds":[]}`,
		`{"userId":1,"productIds":"everything"}`,
		`{}`,
		``,
		`not json`,
	}

	for _, body := range bodies {
		rec := do(r, http.MethodPost, "/api/orders", body)
		require.Equal(t, http.StatusOK, rec.Code, body)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), body)
		assert.Equal(t, true, resp["success"], body)

		id, ok := resp["orderId"].(float64)
		require.True(t, ok, body)
		assert.Equal(t, float64(int(id)), id, body)
		assert.True(t, id >= 0 && id < 1000, body)
	}
}

func TestOrdersUseInjectedPlacer(t *testing.T) {
	r := NewRouter(Deps{Config: config.DefaultConfig(), Placer: orders.NewSeededPlacer(1000, 7)})
	want := orders.NewSeededPlacer(1000, 7).Place(models.OrderRequest{}).ID

	rec := do(r, http.MethodPost, "/api/orders", `{"userId":1,"productIds":[1]}`)

	var resp models.OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, want, resp.OrderID)
}

func TestOrderLogsCaller(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := NewRouter(Deps{Config: config.DefaultConfig(), Logger: zap.New(core)})

	rec := do(r, http.MethodPost, "/api/login", `{"username":"user","password":"pass"}`)
	var login models.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{"userId":1,"productIds":[1,2,9]}`))
	req.Header.Set("Authorization", "Bearer "+login.Token)
	r.ServeHTTP(httptest.NewRecorder(), req)

	placed := logs.FilterMessage("order placed").All()
	require.Len(t, placed, 1)
	fields := placed[0].ContextMap()
	assert.Equal(t, "user", fields["username"])
	assert.EqualValues(t, 2, fields["known_products"])
}

func TestFallback(t *testing.T) {
	r := newTestRouter(t)

	cases := []struct{ method, path string }{
		{http.MethodGet, "/"},
		{http.MethodGet, "/random-route"},
		{http.MethodGet, "/api/unknown"},
		{http.MethodPost, "/api/message"},
		{http.MethodGet, "/api/login"},
		{http.MethodDelete, "/api/products"},
		{http.MethodGet, "/api/message/"},
		{http.MethodGet, "/api/products/"},
		{http.MethodPost, "/api/login/"},
		{http.MethodGet, "/API/MESSAGE"},
		{http.MethodGet, "/static"},
		{http.MethodGet, "/static/"},
		{http.MethodGet, "/static/missing.js"},
	}

	for _, tc := range cases {
		rec := do(r, tc.method, tc.path, "")
		assert.Equal(t, http.StatusOK, rec.Code, tc.path)
		assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"), tc.path)
		assert.Contains(t, rec.Body.String(), "Welcome to the Static Page", tc.path)
		assert.Empty(t, rec.Header().Get("Location"), tc.path)
	}
}

func TestStaticAssets(t *testing.T) {
	rec := do(newTestRouter(t), http.MethodGet, "/static/app.js", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "javascript")
	assert.Contains(t, rec.Body.String(), "/api/products")
}

func TestCORS(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/message", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	preflight := httptest.NewRequest(http.MethodOptions, "/api/login", nil)
	preflight.Header.Set("Origin", "http://localhost:5173")
	preflight.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, preflight)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestMetricsAreRecorded(t *testing.T) {
	m := diagnostics.NewMetrics()
	r := NewRouter(Deps{Config: config.DefaultConfig(), Metrics: m})

	do(r, http.MethodPost, "/api/login", `{"username":"user","password":"pass"}`)
	do(r, http.MethodPost, "/api/orders", `{}`)

	metricsRec := httptest.NewRecorder()
	m.Handler().ServeHTTP(metricsRec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := metricsRec.Body.String()

	assert.Contains(t, body, `shop_logins_total{result="success"} 1`)
	assert.Contains(t, body, `shop_orders_total 1`)
	assert.Contains(t, body, `shop_http_requests_total{method="POST",route="/api/orders",status="200"} 1`)
}

func TestRun(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(context.Background())
	s := New(addr, newTestRouter(t), zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/api/message")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
