package api

import (
	"fmt"

	"github.com/jbony2888/entryflow/internal/audit"
	"github.com/jbony2888/entryflow/internal/export"
	"github.com/jbony2888/entryflow/internal/extraction"
	"github.com/jbony2888/entryflow/internal/pipeline"
	"github.com/jbony2888/entryflow/internal/signal"
	"github.com/jbony2888/entryflow/internal/submissions"
	"github.com/jbony2888/entryflow/internal/watch"
)

// Domain holds all domain systems that comprise the service.
type Domain struct {
	Submissions submissions.System
	Audit       audit.System
	Intake      *pipeline.Intake
	Pool        *pipeline.Pool
	Watcher     *watch.Watcher
	Exporter    *export.Exporter
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) (*Domain, error) {
	db := runtime.Database.Connection()
	cfg := runtime.Config

	auditSystem := audit.New(db, runtime.Logger)
	recorder := audit.NewRecorder(auditSystem, runtime.Logger)

	subsSystem := submissions.New(db, runtime.Logger, runtime.Pagination)

	queue := pipeline.NewQueue(db, runtime.Logger, cfg.Pipeline.LeaseTimeoutDuration())
	intake := pipeline.NewIntake(subsSystem, queue, recorder, runtime.Logger)

	extractor, err := extraction.New(&cfg.Extraction, runtime.Logger)
	if err != nil {
		return nil, fmt.Errorf("extraction init failed: %w", err)
	}
	signals := signal.New(&cfg.Signal, runtime.Logger)

	orchestrator := pipeline.NewOrchestrator(
		subsSystem,
		recorder,
		extractor,
		signals,
		runtime.Logger,
		cfg.Extraction.Page,
	)

	pool := pipeline.NewPool(queue, orchestrator, subsSystem, recorder, cfg.Pipeline, runtime.Logger)
	watcher := watch.New(intake, cfg.Watch, runtime.Logger)
	exporter := export.New(subsSystem, runtime.Logger)

	return &Domain{
		Submissions: subsSystem,
		Audit:       auditSystem,
		Intake:      intake,
		Pool:        pool,
		Watcher:     watcher,
		Exporter:    exporter,
	}, nil
}
