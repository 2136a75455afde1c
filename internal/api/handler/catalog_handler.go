package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apimw "github.com/clipqa/annotation-service/internal/api/middleware"
	"github.com/clipqa/annotation-service/internal/catalog"
	"github.com/clipqa/annotation-service/internal/domain"
)

const datasetCookieMaxAge = 365 * 24 * time.Hour

// CatalogHandler serves dataset selection and read-only catalog browsing.
type CatalogHandler struct {
	cat *catalog.Catalog
}

func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{cat: cat}
}

type datasetRequest struct {
	Name string `json:"name"`
}

type datasetResponse struct {
	Name      catalog.Variant `json:"name"`
	ItemCount int             `json:"item_count"`
}

// GetDataset handles GET /api/v1/dataset
//
// @Summary  Currently selected dataset variant
// @Tags     catalog
// @Produce  json
// @Success  200  {object}  datasetResponse
// @Router   /api/v1/dataset [get]
func (h *CatalogHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	v := apimw.GetVariant(r.Context())
	respondJSON(w, http.StatusOK, datasetResponse{Name: v, ItemCount: h.cat.Len(v)})
}

// SetDataset handles PUT /api/v1/dataset
//
// @Summary  Select the dataset variant for later requests
// @Tags     catalog
// @Accept   json
// @Produce  json
// @Param    body  body      datasetRequest  true  "Variant name"
// @Success  200   {object}  datasetResponse
// @Failure  422   {object}  map[string]string
// @Router   /api/v1/dataset [put]
func (h *CatalogHandler) SetDataset(w http.ResponseWriter, r *http.Request) {
	var req datasetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	v, err := catalog.ParseVariant(req.Name)
	if err != nil {
		mapError(w, fmt.Errorf("%q: %w", req.Name, err))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     apimw.DatasetCookie,
		Value:    string(v),
		Path:     "/",
		MaxAge:   int(datasetCookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, http.StatusOK, datasetResponse{Name: v, ItemCount: h.cat.Len(v)})
}

// List handles GET /api/v1/catalog
//
// @Summary  All clips of the selected dataset
// @Tags     catalog
// @Produce  json
// @Success  200  {object}  map[string]any
// @Router   /api/v1/catalog [get]
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	v := apimw.GetVariant(r.Context())
	items := h.cat.List(v)
	respondJSON(w, http.StatusOK, map[string]any{
		"dataset": v,
		"data":    items,
		"total":   len(items),
	})
}

// Random handles GET /api/v1/catalog/random
//
// @Summary  A random clip of the selected dataset
// @Tags     catalog
// @Produce  json
// @Success  200  {object}  domain.WorkItem
// @Failure  404  {object}  map[string]string
// @Router   /api/v1/catalog/random [get]
func (h *CatalogHandler) Random(w http.ResponseWriter, r *http.Request) {
	v := apimw.GetVariant(r.Context())
	item, ok := h.cat.Random(v)
	if !ok {
		mapError(w, fmt.Errorf("%s dataset is empty: %w", v, domain.ErrNotFound))
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// Get handles GET /api/v1/catalog/{narrationID}
//
// @Summary  One clip by narration id
// @Tags     catalog
// @Produce  json
// @Param    narrationID  path      string  true  "Narration id"
// @Success  200          {object}  domain.WorkItem
// @Failure  404          {object}  map[string]string
// @Router   /api/v1/catalog/{narrationID} [get]
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	v := apimw.GetVariant(r.Context())
	id := chi.URLParam(r, "narrationID")
	item, ok := h.cat.Get(v, id)
	if !ok {
		mapError(w, fmt.Errorf("narration %s: %w", id, domain.ErrNotFound))
		return
	}
	respondJSON(w, http.StatusOK, item)
}
