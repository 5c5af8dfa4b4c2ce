// Package api exposes the HTTP surface: call orchestration endpoints,
// Google Maps shop ingestion, and order/shop CRUD.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tablewave/reserve-server/internal/model"
	"github.com/tablewave/reserve-server/internal/store"
	"github.com/tablewave/reserve-server/internal/task"
)

// CallStarter launches an asynchronous call attempt and returns its task ID.
type CallStarter interface {
	Start(orderID int64, firstMessage, systemPrompt string) string
}

// Extractor turns a Google Maps URL into a sanitized shop candidate.
type Extractor interface {
	Extract(ctx context.Context, mapURL string) (*model.ShopCandidate, error)
}

// Server bundles the HTTP handlers and their collaborators.
type Server struct {
	store     store.Store
	registry  *task.Registry
	caller    CallStarter
	extractor Extractor
}

// NewServer wires the API surface to its collaborators.
func NewServer(st store.Store, registry *task.Registry, caller CallStarter, extractor Extractor) *Server {
	return &Server{
		store:     st,
		registry:  registry,
		caller:    caller,
		extractor: extractor,
	}
}

// Router builds the chi router with CORS and request logging.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/ai-call", func(r chi.Router) {
		r.Post("/start", s.handleStartCall)
		r.Get("/status/{taskID}", s.handleCallStatus)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", s.handleCreateOrder)
		r.Get("/", s.handleListOrders)
		r.Get("/{id}", s.handleGetOrder)
		r.Put("/{id}", s.handleUpdateOrder)
		r.Delete("/{id}", s.handleDeleteOrder)
	})

	r.Route("/shops", func(r chi.Router) {
		r.Post("/", s.handleCreateShop)
		r.Get("/", s.handleListShops)
		r.Post("/parse-google-map", s.handleParseGoogleMap)
		r.Get("/{id}", s.handleGetShop)
		r.Put("/{id}", s.handleUpdateShop)
		r.Delete("/{id}", s.handleDeleteShop)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}
