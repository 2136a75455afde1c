package handler

import (
	"net/http"
	"sort"

	"github.com/clipqa/annotation-service/internal/domain"
	"github.com/clipqa/annotation-service/internal/service"
)

// StatsHandler serves the per-user completion aggregate.
type StatsHandler struct {
	svc *service.AnnotationService
}

func NewStatsHandler(svc *service.AnnotationService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

type userStats struct {
	UserID string `json:"user_id"`
	domain.StatusCounts
	Total int `json:"total"`
}

// Stats handles GET /api/v1/stats
//
// @Summary  Complete/pending counts per annotator
// @Tags     stats
// @Produce  json
// @Success  200  {object}  map[string]any
// @Failure  503  {object}  map[string]string
// @Router   /api/v1/stats [get]
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	agg, err := h.svc.AggregateByStatus(r.Context())
	if err != nil {
		mapError(w, err)
		return
	}

	users := make([]userStats, 0, len(agg))
	var totals domain.StatusCounts
	for id, c := range agg {
		users = append(users, userStats{UserID: id, StatusCounts: c, Total: c.Total()})
		totals.Complete += c.Complete
		totals.Pending += c.Pending
	}
	sort.Slice(users, func(i, j int) bool { return users[i].UserID < users[j].UserID })

	respondJSON(w, http.StatusOK, map[string]any{
		"data":     users,
		"complete": totals.Complete,
		"pending":  totals.Pending,
		"total":    totals.Total(),
	})
}
