package http

import (
	"errors"
	"net/http"

	"hisab/internal/catalog"
	"hisab/internal/storage"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]any{
		"categories": categoryRecords(s.ledger.Categories()),
	}).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var in categoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := in.category()
	if err != nil {
		writeError(w, r, err)
		return
	}
	saved, err := s.ledger.AddCategory(r.Context(), c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(storage.CategoryRecordOf(saved)).Write(w)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	var in categoryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := in.category()
	if err != nil {
		writeError(w, r, err)
		return
	}
	saved, err := s.ledger.UpdateCategory(r.Context(), name, c)
	if err != nil {
		s.writeCategoryError(w, r, name, err)
		return
	}
	NewJSONResponse().Body(storage.CategoryRecordOf(saved)).Write(w)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if _, err := s.ledger.DeleteCategory(r.Context(), name); err != nil {
		s.writeCategoryError(w, r, name, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// writeCategoryError adds a "did you mean" hint to unknown category names.
func (s *Server) writeCategoryError(w http.ResponseWriter, r *http.Request, name string, err error) {
	if !errors.Is(err, catalog.ErrNotFound) {
		writeError(w, r, err)
		return
	}
	body := errorBody{Error: err.Error()}
	if closest, ok := s.ledger.ClosestCategory(name); ok {
		body.Hint = "did you mean " + closest + "?"
	}
	NewJSONResponse().Status(http.StatusNotFound).Body(body).Write(w)
}
