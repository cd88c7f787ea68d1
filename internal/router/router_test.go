package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"pos-inventory/internal/handler"
	"pos-inventory/internal/middleware"
	"pos-inventory/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-key"

type stubProducts struct{}

func (stubProducts) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	return []model.Product{{ID: 12, Name: "Latte"}}, nil
}

func (stubProducts) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	if id != 12 {
		return nil, model.ErrProductNotFound
	}
	return &model.Product{ID: 12, Name: "Latte"}, nil
}

func (stubProducts) GetByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	return nil, nil
}

type stubRestocks struct{}

func (stubRestocks) Restock(ctx context.Context, productID int64, quantity decimal.Decimal) error {
	if productID != 30 {
		return model.ErrProductNotTracked
	}
	return nil
}

type stubOrders struct{}

func (stubOrders) Checkout(ctx context.Context, req *model.CheckoutRequest) (*model.OrderResponse, error) {
	return &model.OrderResponse{ID: uuid.New(), Total: req.Total, CashierID: req.ActorID}, nil
}

func (stubOrders) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	return nil, nil
}

type stubCarts struct{}

func (stubCarts) Quote(ctx context.Context, req *model.QuoteRequest) (*model.QuoteResponse, error) {
	return &model.QuoteResponse{}, nil
}

type stubConversions struct{}

func (stubConversions) List(ctx context.Context) ([]model.ConversionRule, error) {
	return []model.ConversionRule{}, nil
}

func (stubConversions) Create(ctx context.Context, req *model.ConversionRequest) (*model.ConversionRule, error) {
	return &model.ConversionRule{ID: 1, FromUnit: req.FromUnit, ToUnit: req.ToUnit, Factor: req.Factor}, nil
}

func (stubConversions) Update(ctx context.Context, id int64, req *model.ConversionRequest) (*model.ConversionRule, error) {
	return &model.ConversionRule{ID: id}, nil
}

func (stubConversions) Delete(ctx context.Context, id int64) error {
	return model.ErrConversionNotFound
}

func (stubConversions) Resolve(ctx context.Context, fromUnit, toUnit string, ingredientID *int64) (*model.ResolveResponse, error) {
	return &model.ResolveResponse{FromUnit: fromUnit, ToUnit: toUnit, Factor: decimal.NewFromInt(1000)}, nil
}

type stubInventory struct{}

func (stubInventory) ListIngredients(ctx context.Context) ([]model.Ingredient, error) {
	return []model.Ingredient{}, nil
}

func (stubInventory) GetIngredient(ctx context.Context, id int64) (*model.Ingredient, error) {
	return &model.Ingredient{ID: id}, nil
}

type stubPurchases struct{}

func (stubPurchases) LogPurchase(ctx context.Context, req *model.PurchaseRequest) (*model.PurchaseResponse, error) {
	return &model.PurchaseResponse{}, nil
}

func (stubPurchases) ListByIngredient(ctx context.Context, ingredientID int64, limit int) ([]model.PurchaseLogEntry, error) {
	return []model.PurchaseLogEntry{}, nil
}

func newTestRouter() http.Handler {
	logger := zerolog.Nop()
	return New(Handlers{
		Products:    handler.NewProductHandler(stubProducts{}, stubRestocks{}, logger),
		Orders:      handler.NewOrderHandler(stubOrders{}, stubCarts{}, logger),
		Conversions: handler.NewConversionHandler(stubConversions{}, logger),
		Inventory:   handler.NewInventoryHandler(stubInventory{}, stubPurchases{}, logger),
	}, testAPIKey, logger)
}

func TestRouter_Routes(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		expectedStatus int
	}{
		{"Health", http.MethodGet, "/health", "", http.StatusOK},
		{"List products", http.MethodGet, "/api/products", "", http.StatusOK},
		{"Get product", http.MethodGet, "/api/products/12", "", http.StatusOK},
		{"Unknown product", http.MethodGet, "/api/products/99", "", http.StatusNotFound},
		{"Restock", http.MethodPost, "/api/preparations/30/restock", `{"quantity":"2.5"}`, http.StatusNoContent},
		{"Restock untracked", http.MethodPost, "/api/preparations/12/restock", `{"quantity":"1"}`, http.StatusUnprocessableEntity},
		{"Checkout", http.MethodPost, "/api/orders", `{"items":[{"productId":12,"quantity":1,"unitPrice":"4.5"}],"total":"4.5","actorId":"till-1"}`, http.StatusCreated},
		{"Quote", http.MethodPost, "/api/orders/quote", `{"items":[{"productId":12,"quantity":1}]}`, http.StatusOK},
		{"Get missing order", http.MethodGet, "/api/orders/" + uuid.NewString(), "", http.StatusNotFound},
		{"List conversions", http.MethodGet, "/api/conversions", "", http.StatusOK},
		{"Create conversion", http.MethodPost, "/api/conversions", `{"fromUnit":"kilogram","toUnit":"gram","factor":"1000"}`, http.StatusCreated},
		{"Resolve conversion", http.MethodGet, "/api/conversions/resolve?from=kilogram&to=gram", "", http.StatusOK},
		{"Update conversion", http.MethodPut, "/api/conversions/1", `{"fromUnit":"kilogram","toUnit":"gram","factor":"1000"}`, http.StatusOK},
		{"Delete conversion", http.MethodDelete, "/api/conversions/1", "", http.StatusNotFound},
		{"List ingredients", http.MethodGet, "/api/ingredients", "", http.StatusOK},
		{"Get ingredient", http.MethodGet, "/api/ingredients/1", "", http.StatusOK},
		{"List purchases", http.MethodGet, "/api/ingredients/1/purchases", "", http.StatusOK},
		{"Log purchase", http.MethodPost, "/api/purchases", `{"ingredientId":1}`, http.StatusCreated},
		{"Wrong method", http.MethodDelete, "/api/orders", "", http.StatusMethodNotAllowed},
		{"Unknown route", http.MethodGet, "/api/unknown", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			req.Header.Set("X-API-Key", testAPIKey)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.NotEmpty(t, w.Header().Get(middleware.CorrelationIDHeader))
		})
	}
}

func TestRouter_RequiresAPIKey(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set(middleware.CorrelationIDHeader, "req-42")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)

	var body model.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, model.ErrCodeUnauthorised, body.Code)
	assert.Equal(t, "req-42", body.CorrelationID)
	assert.Equal(t, "req-42", w.Header().Get(middleware.CorrelationIDHeader))
}

func TestRouter_HealthWithoutAPIKey(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "healthy"}`, w.Body.String())
}
