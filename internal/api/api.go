// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/jbony2888/entryflow/internal/config"
	"github.com/jbony2888/entryflow/internal/infrastructure"
	"github.com/jbony2888/entryflow/pkg/middleware"
	"github.com/jbony2888/entryflow/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// The returned Domain carries the background systems (worker pool, folder
// watcher) the caller registers with the lifecycle coordinator.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, *Domain, error) {
	runtime := NewRuntime(cfg, infra)

	domain, err := NewDomain(runtime)
	if err != nil {
		return nil, nil, err
	}

	mux := http.NewServeMux()
	registerRoutes(mux, domain, cfg, runtime)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	return m, domain, nil
}
