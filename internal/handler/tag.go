package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/tagstore/internal/domain"
)

// ListTagsParams are the query parameters of GET /api/tag/.
type ListTagsParams struct {
	Query     *string `form:"query"`
	QueryType *string `form:"queryType"`
	Position  *int    `form:"position"`
	Size      *int    `form:"size"`
}

// bindListTagsParams binds the optional query parameters the same way
// generated oapi-codegen servers do.
func bindListTagsParams(r *http.Request) (ListTagsParams, error) {
	var p ListTagsParams
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "query", q, &p.Query); err != nil {
		return p, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "queryType", q, &p.QueryType); err != nil {
		return p, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "position", q, &p.Position); err != nil {
		return p, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "size", q, &p.Size); err != nil {
		return p, err
	}
	return p, nil
}

// ListTags handles GET /api/tag/.
// One row is returned per tag text. position counts tags, size counts rows.
func (s *Server) ListTags(w http.ResponseWriter, r *http.Request) {
	params, err := bindListTagsParams(r)
	if err != nil {
		requestError(w, err)
		return
	}
	page := domain.NewListParams(params.Position, params.Size)

	rows, err := s.tags.List(r.Context(), derefString(params.Query), derefString(params.QueryType), page.Offset, page.Limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// CreateTag handles POST /api/tag/.
func (s *Server) CreateTag(w http.ResponseWriter, r *http.Request) {
	var body domain.Tag
	if err := decodeJSON(r, &body); err != nil {
		requestError(w, err)
		return
	}
	tag, err := s.tags.Create(r.Context(), body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

// ReadTag handles GET /api/tag/{id}.
func (s *Server) ReadTag(w http.ResponseWriter, r *http.Request) {
	tag, err := s.tags.Read(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

// UpdateTag handles PUT /api/tag/{id}.
func (s *Server) UpdateTag(w http.ResponseWriter, r *http.Request) {
	var body domain.Tag
	if err := decodeJSON(r, &body); err != nil {
		requestError(w, err)
		return
	}
	tag, err := s.tags.Update(r.Context(), chi.URLParam(r, "id"), body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

// DeleteTag handles DELETE /api/tag/{id}.
func (s *Server) DeleteTag(w http.ResponseWriter, r *http.Request) {
	if err := s.tags.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
