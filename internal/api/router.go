package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/clipqa/annotation-service/internal/api/handler"
	apimw "github.com/clipqa/annotation-service/internal/api/middleware"
	"github.com/clipqa/annotation-service/internal/catalog"
	"github.com/clipqa/annotation-service/internal/service"
)

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
func NewRouter(
	svc *service.AnnotationService,
	cat *catalog.Catalog,
	authn apimw.Authenticator,
	db handler.Pinger,
	reg prometheus.Gatherer,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestSize(1 << 20))
	r.Use(apimw.CorrelationID)
	r.Use(apimw.RequestLogger(logger))

	// --- handler instances ---
	ah := handler.NewAssignmentHandler(svc, logger)
	ch := handler.NewCatalogHandler(cat)
	sh := handler.NewSchemaHandler(svc.Schema())
	st := handler.NewStatsHandler(svc)
	eh := handler.NewExportHandler(svc, logger)
	hh := handler.NewHealthHandler(db)

	// --- public routes ---
	r.Get("/health", hh.Health)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apimw.BasicAuth(authn, logger))
		r.Use(apimw.Dataset)

		r.Get("/dataset", ch.GetDataset)
		r.Put("/dataset", ch.SetDataset)

		// /random must be registered before /{narrationID} in both groups
		// so chi does not treat the literal as an id.
		r.Get("/catalog", ch.List)
		r.Get("/catalog/random", ch.Random)
		r.Get("/catalog/{narrationID}", ch.Get)

		r.Get("/assignments", ah.List)
		r.Get("/assignments/random", ah.Random)
		r.Get("/assignments/{narrationID}", ah.Get)
		r.Put("/assignments/{narrationID}/annotation", ah.Submit)

		r.Get("/schema", sh.Get)
		r.Post("/schema/validate", sh.Validate)

		r.Get("/stats", st.Stats)
		r.Get("/export", eh.Export)
	})

	return r
}
