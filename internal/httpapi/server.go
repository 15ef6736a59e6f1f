package httpapi

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mkravets/brewcart/internal/cart"
	catalogsvc "github.com/mkravets/brewcart/internal/catalog/service"
	"github.com/mkravets/brewcart/internal/catalog/store"
	"github.com/mkravets/brewcart/internal/checkout"
	"github.com/mkravets/brewcart/internal/orders"
)

// Server wires the storefront services behind the HTTP API. One checkout
// flow lives per user; a finished flow is discarded so the next checkout
// starts fresh.
type Server struct {
	carts      *cart.Service
	catalog    *catalogsvc.Service
	adminStore store.Store // nil disables the admin catalog endpoints
	orders     orders.Store
	gateway    checkout.Gateway
	pricing    checkout.Pricing
	events     checkout.EventSink
	timeout    time.Duration

	mu    sync.Mutex
	flows map[string]*checkout.Flow
}

func NewServer(
	carts *cart.Service,
	catalog *catalogsvc.Service,
	adminStore store.Store,
	orderStore orders.Store,
	gateway checkout.Gateway,
	pricing checkout.Pricing,
	events checkout.EventSink,
	timeout time.Duration,
) *Server {
	return &Server{
		carts:      carts,
		catalog:    catalog,
		adminStore: adminStore,
		orders:     orderStore,
		gateway:    gateway,
		pricing:    pricing,
		events:     events,
		timeout:    timeout,
		flows:      make(map[string]*checkout.Flow),
	}
}

// Routes builds the chi router with the global middleware stack.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(s.timeout))
	r.Use(middleware.Compress(5))
	r.Use(IdentityMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", s.ListProducts)
		r.Get("/products/{entry_id}", s.GetProduct)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", s.GetCart)
			r.Delete("/", s.ClearCart)
			r.Post("/items", s.AddItem)
			r.Put("/items/{entry_id}", s.UpdateQuantity)
			r.Delete("/items/{entry_id}", s.RemoveItem)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", s.BeginCheckout)
			r.Delete("/", s.AbandonCheckout)
			r.Post("/payment", s.SubmitPayment)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", s.ListOrders)
			r.Get("/{order_id}", s.GetOrder)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Route("/products", func(r chi.Router) {
				r.Post("/", s.AdminCreateProduct)
				r.Put("/{entry_id}", s.AdminUpdateProduct)
				r.Delete("/{entry_id}", s.AdminDeleteProduct)
			})
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", s.ListOrders)
				r.Put("/{order_id}/status", s.AdminUpdateOrderStatus)
				r.Delete("/", s.AdminClearOrders)
			})
		})
	})

	return r
}

// flowFor returns the user's active checkout flow, creating one over the
// user's cart engine when none exists.
func (s *Server) flowFor(ctx context.Context, userID string) (*checkout.Flow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f, ok := s.flows[userID]; ok {
		return f, nil
	}

	engine, err := s.carts.Engine(ctx, userID)
	if err != nil {
		return nil, err
	}

	f := checkout.NewFlow(engine, s.orders, s.gateway, s.pricing, s.events)
	s.flows[userID] = f
	return f, nil
}

// discardFlow drops a finished flow so the next checkout starts from Idle.
func (s *Server) discardFlow(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.flows, userID)
}
