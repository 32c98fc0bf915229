package api

import (
	"net/http"

	"github.com/jbony2888/entryflow/internal/config"
	"github.com/jbony2888/entryflow/internal/export"
	"github.com/jbony2888/entryflow/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	routes.Register(
		mux,
		domain.Submissions.Handler(
			domain.Intake,
			domain.Audit,
			cfg.API.MaxUploadSizeBytes(),
		).Routes(),
	)

	routes.Register(
		mux,
		export.NewHandler(domain.Exporter, runtime.Logger).Routes(),
	)
}
