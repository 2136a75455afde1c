package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apimw "github.com/clipqa/annotation-service/internal/api/middleware"
	"github.com/clipqa/annotation-service/internal/service"
)

// AssignmentHandler serves the caller's own annotation queue.
type AssignmentHandler struct {
	svc    *service.AnnotationService
	logger *zap.Logger
}

func NewAssignmentHandler(svc *service.AnnotationService, logger *zap.Logger) *AssignmentHandler {
	return &AssignmentHandler{svc: svc, logger: logger}
}

// List handles GET /api/v1/assignments
//
// @Summary  List the caller's assignments with progress
// @Tags     assignments
// @Produce  json
// @Success  200  {object}  map[string]any
// @Failure  401  {object}  map[string]string
// @Router   /api/v1/assignments [get]
func (h *AssignmentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, progress, err := h.svc.ListAssignments(ctx, apimw.GetIdentity(ctx), apimw.GetVariant(ctx))
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"data":           list,
		"complete_count": progress.CompleteCount,
		"all_count":      progress.AllCount,
	})
}

// Random handles GET /api/v1/assignments/random
//
// @Summary  Pick one of the caller's pending assignments at random
// @Tags     assignments
// @Produce  json
// @Success  200  {object}  domain.Assignment
// @Failure  404  {object}  map[string]string  "Nothing pending"
// @Router   /api/v1/assignments/random [get]
func (h *AssignmentHandler) Random(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	a, err := h.svc.RandomPending(ctx, apimw.GetIdentity(ctx))
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, a)
}

// Get handles GET /api/v1/assignments/{narrationID}
//
// @Summary  Get one assignment with its clip and the caller's progress
// @Tags     assignments
// @Produce  json
// @Param    narrationID  path      string  true  "Narration id"
// @Success  200          {object}  domain.AssignmentDetail
// @Failure  404          {object}  map[string]string
// @Router   /api/v1/assignments/{narrationID} [get]
func (h *AssignmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	detail, err := h.svc.GetAssignment(ctx, apimw.GetIdentity(ctx), apimw.GetVariant(ctx), chi.URLParam(r, "narrationID"))
	if err != nil {
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

// Submit handles PUT /api/v1/assignments/{narrationID}/annotation
//
// @Summary     Submit (or overwrite) the caller's answer
// @Tags        assignments
// @Accept      json
// @Produce     json
// @Param       narrationID  path      string          true  "Narration id"
// @Param       body         body      map[string]any  true  "Answer keyed by field id"
// @Success     200          {object}  domain.Progress
// @Failure     409          {object}  map[string]string  "No such assignment for the caller"
// @Failure     422          {object}  map[string]any
// @Failure     429          {object}  map[string]string
// @Router      /api/v1/assignments/{narrationID}/annotation [put]
func (h *AssignmentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeAnswer(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx := r.Context()
	narrationID := chi.URLParam(r, "narrationID")
	progress, err := h.svc.SubmitAnswer(ctx, apimw.GetIdentity(ctx), narrationID, payload)
	if err != nil {
		h.logger.Warn("submit annotation failed",
			zap.String("narration_id", narrationID),
			zap.String("correlation_id", apimw.GetCorrelationID(ctx)),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, progress)
}
