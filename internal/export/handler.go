package export

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jbony2888/entryflow/internal/submissions"
	"github.com/jbony2888/entryflow/pkg/handlers"
	"github.com/jbony2888/entryflow/pkg/routes"
)

// Handler provides HTTP endpoints for export operations.
type Handler struct {
	exporter *Exporter
	logger   *slog.Logger
}

// NewHandler creates a Handler over the exporter.
func NewHandler(exporter *Exporter, logger *slog.Logger) *Handler {
	return &Handler{
		exporter: exporter,
		logger:   logger.With("handler", "export"),
	}
}

// Routes returns the route group definition for export endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/export",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/review-queue", Handler: h.ReviewQueue},
		},
	}
}

// ReviewQueue streams the review-queue workbook. Query parameter
// filters narrow the exported rows the same way the list endpoint does.
func (h *Handler) ReviewQueue(w http.ResponseWriter, r *http.Request) {
	filters := submissions.FiltersFromQuery(r.URL.Query())

	f, err := h.exporter.ReviewQueue(r.Context(), filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("review-queue-%s.xlsx", time.Now().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))

	if err := f.Write(w); err != nil {
		h.logger.Error("workbook write failed", "error", err)
	}
}
