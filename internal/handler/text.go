package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/tagstore/internal/domain"
)

// ListTexts handles GET /api/tag/{id}/lang.
func (s *Server) ListTexts(w http.ResponseWriter, r *http.Request) {
	texts, err := s.tags.ListTexts(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, texts)
}

// CreateText handles POST /api/tag/{id}/lang.
func (s *Server) CreateText(w http.ResponseWriter, r *http.Request) {
	var body domain.LocalizedText
	if err := decodeJSON(r, &body); err != nil {
		requestError(w, err)
		return
	}
	lt, err := s.tags.CreateText(r.Context(), chi.URLParam(r, "id"), body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, lt)
}

// ReadText handles GET /api/tag/{id}/lang/{lid}.
func (s *Server) ReadText(w http.ResponseWriter, r *http.Request) {
	lt, err := s.tags.ReadText(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "lid"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lt)
}

// UpdateText handles PUT /api/tag/{id}/lang/{lid}.
func (s *Server) UpdateText(w http.ResponseWriter, r *http.Request) {
	var body domain.LocalizedText
	if err := decodeJSON(r, &body); err != nil {
		requestError(w, err)
		return
	}
	lt, err := s.tags.UpdateText(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "lid"), body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lt)
}

// DeleteText handles DELETE /api/tag/{id}/lang/{lid}.
func (s *Server) DeleteText(w http.ResponseWriter, r *http.Request) {
	if err := s.tags.DeleteText(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "lid")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
