// Package handler implements the HTTP handlers for the tags API.
// All handlers are methods on Server. Methods are split into resource files
// (health.go, tag.go, text.go) but share the same Server struct so they can
// access its dependencies.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/tagstore/internal/domain"
	"github.com/pkordes/tagstore/spec"
)

// TagServicer defines the business operations the tag handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching storage or the service layer.
type TagServicer interface {
	List(ctx context.Context, query, queryType string, offset, limit int) ([]domain.TagText, error)
	Create(ctx context.Context, tag domain.Tag) (domain.Tag, error)
	Read(ctx context.Context, id string) (domain.Tag, error)
	Update(ctx context.Context, id string, tag domain.Tag) (domain.Tag, error)
	Delete(ctx context.Context, id string) error
	ListTexts(ctx context.Context, id string) ([]domain.LocalizedText, error)
	CreateText(ctx context.Context, id string, in domain.LocalizedText) (domain.LocalizedText, error)
	ReadText(ctx context.Context, id, textID string) (domain.LocalizedText, error)
	UpdateText(ctx context.Context, id, textID string, in domain.LocalizedText) (domain.LocalizedText, error)
	DeleteText(ctx context.Context, id, textID string) error
}

// Server holds the dependencies shared by every handler.
type Server struct {
	tags TagServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(tags TagServicer) *Server {
	return &Server{tags: tags}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil)
}

// Routes registers every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/api/tag", func(r chi.Router) {
		r.Get("/", s.ListTags)
		r.Post("/", s.CreateTag)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.ReadTag)
			r.Put("/", s.UpdateTag)
			r.Delete("/", s.DeleteTag)
			r.Route("/lang", func(r chi.Router) {
				r.Get("/", s.ListTexts)
				r.Post("/", s.CreateText)
				r.Get("/{lid}", s.ReadText)
				r.Put("/{lid}", s.UpdateText)
				r.Delete("/{lid}", s.DeleteText)
			})
		})
	})
}

// Handler returns a chi router serving every endpoint, without middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Routes(r)
	return r
}

// GetOpenAPI handles GET /openapi.yaml.
func (s *Server) GetOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(spec.OpenAPI)
}
