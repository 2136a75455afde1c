package handler

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	apimw "github.com/clipqa/annotation-service/internal/api/middleware"
	"github.com/clipqa/annotation-service/internal/export"
	"github.com/clipqa/annotation-service/internal/service"
)

// ExportHandler streams every completed annotation as a flat table.
type ExportHandler struct {
	svc    *service.AnnotationService
	logger *zap.Logger
	now    func() time.Time
}

func NewExportHandler(svc *service.AnnotationService, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{svc: svc, logger: logger, now: time.Now}
}

// Export handles GET /api/v1/export
//
// @Summary  Download completed annotations
// @Tags     export
// @Produce  text/csv
// @Param    format  query  string  false  "csv (default) or xlsx"
// @Success  200
// @Failure  400  {object}  map[string]string
// @Router   /api/v1/export [get]
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := h.svc.ExportCompleted(r.Context())
	if err != nil {
		mapError(w, err)
		return
	}
	table := export.Flatten(rows, h.svc.Schema().FieldIDs())

	name := fmt.Sprintf("annotations-%s.%s", h.now().UTC().Format("20060102-150405"), format)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)

	if err := export.Write(w, format, table); err != nil {
		// headers are already sent; all that is left is to log
		h.logger.Error("export write failed",
			zap.String("format", string(format)),
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
	}
}
