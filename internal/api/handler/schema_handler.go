package handler

import (
	"net/http"

	"github.com/clipqa/annotation-service/internal/form"
)

// SchemaHandler exposes the active questionnaire so clients can render it
// and check an answer before submitting.
type SchemaHandler struct {
	schema *form.Schema
}

func NewSchemaHandler(schema *form.Schema) *SchemaHandler {
	return &SchemaHandler{schema: schema}
}

// Get handles GET /api/v1/schema
//
// @Summary  Active annotation form
// @Tags     schema
// @Produce  json
// @Success  200  {object}  form.Schema
// @Router   /api/v1/schema [get]
func (h *SchemaHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.schema)
}

// Validate handles POST /api/v1/schema/validate
//
// Nothing is stored. A complete answer returns 200 with the normalised values;
// otherwise 422 with one message per offending field.
//
// @Summary  Dry-run answer validation
// @Tags     schema
// @Accept   json
// @Produce  json
// @Param    body  body      map[string]any  true  "Answer keyed by field id"
// @Success  200   {object}  map[string]any
// @Failure  422   {object}  map[string]any
// @Router   /api/v1/schema/validate [post]
func (h *SchemaHandler) Validate(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeAnswer(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	answer, err := h.schema.Validate(payload)
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"valid":   true,
		"version": h.schema.Version,
		"answer":  answer,
	})
}
