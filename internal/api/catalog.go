package api

import (
	"net/http"

	"github.com/wareflow/ruleengine/internal/catalog"
)

type catalogResponse struct {
	Fields []catalog.FieldDefinition `json:"fields"`
	Count  int                       `json:"count"`
}

// handleCatalog handles GET /v1/catalog
//
// Serves the current field catalog so builder UIs can offer exactly the
// fields, operators, and enum options the validator will accept.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	cat := s.catalog.Current()
	fields := cat.Fields()
	writeJSON(w, http.StatusOK, catalogResponse{Fields: fields, Count: len(fields)})
}
