package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/scancart-backend/internal/cart"
	"github.com/angelmondragon/scancart-backend/internal/catalog"
	"github.com/angelmondragon/scancart-backend/internal/session"
	"github.com/angelmondragon/scancart-backend/pkg/config"
	"github.com/angelmondragon/scancart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/scancart-backend/pkg/errors"
	"github.com/angelmondragon/scancart-backend/pkg/types"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type stubResolver struct {
	product  catalog.Product
	lastCode string
}

func (s *stubResolver) Resolve(ctx context.Context, code string) catalog.Product {
	s.lastCode = code
	return s.product
}

type stubSession struct{ state session.State }

func (s stubSession) State() session.State { return s.state }

type stubCart struct{ snap cart.Snapshot }

func (s stubCart) Snapshot() cart.Snapshot { return s.snap }

func testConfig() *config.Config {
	return &config.Config{App: config.AppConfig{Env: config.AppEnvDev}}
}

func TestHealthLive(t *testing.T) {
	resp := httptest.NewRecorder()
	HealthLive(testConfig()).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "dev", resp.Header().Get("X-ScanCart-Env"))
}

func TestHealthReadyAllHealthy(t *testing.T) {
	deps := map[string]Pinger{
		"db":    pingerFunc(func(context.Context) error { return nil }),
		"redis": nil,
	}
	resp := httptest.NewRecorder()
	HealthReady(testConfig(), nil, deps).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"checks":["db"]`)
}

func TestHealthReadyReportsFailingDependency(t *testing.T) {
	deps := map[string]Pinger{
		"db":    pingerFunc(func(context.Context) error { return nil }),
		"redis": pingerFunc(func(context.Context) error { return errors.New("connection refused") }),
	}
	resp := httptest.NewRecorder()
	HealthReady(testConfig(), nil, deps).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	require.Equal(t, http.StatusServiceUnavailable, resp.Code)
	var body types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, string(pkgerrors.CodeDependency), body.Error.Code)
	assert.Equal(t, map[string]any{"redis": "connection refused"}, body.Error.Details)
}

func TestCatalogLookup(t *testing.T) {
	resolver := &stubResolver{product: catalog.Product{Name: "product not found"}}
	r := chi.NewRouter()
	r.Get("/api/v1/catalog/{code}", CatalogLookup(resolver, nil))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/0000000000000", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "0000000000000", resolver.lastCode)
	assert.JSONEq(t, `{"data":{"name":"product not found","image":null}}`, resp.Body.String())
}

func TestCatalogLookupRejectsOversizedCode(t *testing.T) {
	resolver := &stubResolver{}
	r := chi.NewRouter()
	r.Get("/api/v1/catalog/{code}", CatalogLookup(resolver, nil))

	long := make([]byte, 65)
	for i := range long {
		long[i] = '1'
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/catalog/"+string(long), nil))

	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Empty(t, resolver.lastCode)
}

func TestAppStateCombinesSessionAndCart(t *testing.T) {
	candidate := catalog.Product{Name: "Nutella"}
	sessions := stubSession{state: session.State{SessionID: "s1", Status: enums.ScanStateIdle, PendingCandidate: &candidate}}
	carts := stubCart{snap: cart.Snapshot{
		Lines:     []cart.Line{{Name: "Evian", Quantity: 3}},
		Total:     decimal.NewFromInt(6),
		UnitPrice: decimal.NewFromInt(2),
		Currency:  "EUR",
	}}

	resp := httptest.NewRecorder()
	AppState(sessions, carts, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/state", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	var envelope struct {
		Data AppStateView `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, "Nutella", envelope.Data.Session.PendingCandidate.Name)
	assert.Equal(t, "6.00", envelope.Data.Cart.Total)
	assert.Equal(t, 3, envelope.Data.Cart.ItemCount)
}
