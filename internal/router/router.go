package router

import (
	"net/http"

	"pos-inventory/internal/handler"
	"pos-inventory/internal/middleware"

	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers served by the router.
type Handlers struct {
	Products    *handler.ProductHandler
	Orders      *handler.OrderHandler
	Conversions *handler.ConversionHandler
	Inventory   *handler.InventoryHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, apiKey string, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Products and preparations
	mux.HandleFunc("GET /api/products", h.Products.GetAll)
	mux.HandleFunc("GET /api/products/{id}", h.Products.GetByID)
	mux.HandleFunc("POST /api/preparations/{id}/restock", h.Products.Restock)

	// Orders
	mux.HandleFunc("POST /api/orders", h.Orders.Checkout)
	mux.HandleFunc("POST /api/orders/quote", h.Orders.Quote)
	mux.HandleFunc("GET /api/orders/{id}", h.Orders.GetByID)

	// Unit conversions
	mux.HandleFunc("GET /api/conversions", h.Conversions.List)
	mux.HandleFunc("POST /api/conversions", h.Conversions.Create)
	mux.HandleFunc("GET /api/conversions/resolve", h.Conversions.Resolve)
	mux.HandleFunc("PUT /api/conversions/{id}", h.Conversions.Update)
	mux.HandleFunc("DELETE /api/conversions/{id}", h.Conversions.Delete)

	// Ingredients and purchases
	mux.HandleFunc("GET /api/ingredients", h.Inventory.ListIngredients)
	mux.HandleFunc("GET /api/ingredients/{id}", h.Inventory.GetIngredient)
	mux.HandleFunc("GET /api/ingredients/{id}/purchases", h.Inventory.ListPurchases)
	mux.HandleFunc("POST /api/purchases", h.Inventory.LogPurchase)

	// Apply middleware in order: CorrelationID -> Recovery -> Logging -> CORS -> APIKeyAuth
	var handler http.Handler = mux
	handler = middleware.APIKeyAuth(apiKey, logger)(handler)
	handler = middleware.CORS(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Recovery(logger)(handler)
	handler = middleware.CorrelationID(handler)

	return handler
}
