package submissions

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/jbony2888/entryflow/internal/audit"
	"github.com/jbony2888/entryflow/pkg/handlers"
	"github.com/jbony2888/entryflow/pkg/pagination"
	"github.com/jbony2888/entryflow/pkg/routes"
)

// Handler provides HTTP endpoints for submission operations.
type Handler struct {
	sys           System
	intake        Intake
	audits        *audit.Recorder
	traces        audit.System
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// StatusResponse is the single-submission payload: the record plus its
// most recent processing trace, when one exists.
type StatusResponse struct {
	*Submission
	Trace *audit.Trace `json:"trace,omitempty"`
}

// ApproveRequest carries the human actor performing an approval.
type ApproveRequest struct {
	Actor string `json:"actor"`
}

// EditFieldsRequest carries manual field corrections and the actor
// making them.
type EditFieldsRequest struct {
	Actor  string            `json:"actor"`
	Fields map[string]string `json:"fields"`
}

// NewHandler creates a Handler wired to the submission system, the
// intake service, and the audit trail.
func NewHandler(
	sys System,
	intake Intake,
	audits audit.System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		sys:           sys,
		intake:        intake,
		audits:        audit.NewRecorder(audits, logger),
		traces:        audits,
		logger:        logger.With("handler", "submissions"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for submission endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/submissions",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/{id}/trace", Handler: h.Trace},
			{Method: "GET", Pattern: "/{id}/events", Handler: h.Events},
			{Method: "POST", Pattern: "", Handler: h.Submit},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{Method: "POST", Pattern: "/{id}/approve", Handler: h.Approve},
			{Method: "PUT", Pattern: "/{id}/fields", Handler: h.EditFields},
		},
	}
}

// List returns a paginated list of submissions with optional query
// parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single submission by its UUID path parameter, with the
// latest processing trace embedded.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	sub, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	traces, err := h.traces.TracesFor(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, audit.MapHTTPStatus(err), err)
		return
	}

	resp := StatusResponse{Submission: sub}
	if len(traces) > 0 {
		resp.Trace = &traces[len(traces)-1]
	}

	handlers.RespondJSON(w, http.StatusOK, resp)
}

// Search accepts a JSON body with pagination and filter criteria and
// returns matching submissions.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Submit processes a multipart form upload containing an entry document.
// A document whose fingerprint is already finalized returns the existing
// record with 200 instead of re-running the pipeline; a new or
// reprocessable document returns 201.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}
	if len(data) == 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	sub, enqueued, err := h.intake.Submit(r.Context(), data, header.Filename, r.FormValue("owner"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	status := http.StatusCreated
	if !enqueued {
		status = http.StatusOK
	}
	handlers.RespondJSON(w, status, sub)
}

// Approve marks a submission approved on behalf of a named human actor.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Actor == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	sub, err := h.sys.Approve(r.Context(), id, req.Actor)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	h.audits.Event(r.Context(), sub.ID, audit.EventApproved, req.Actor, map[string]any{
		"status": sub.Status,
	})

	handlers.RespondJSON(w, http.StatusOK, sub)
}

// EditFields applies manual field corrections. Edited fields carry
// manual provenance and survive any later reprocessing.
func (h *Handler) EditFields(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req EditFieldsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Fields) == 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	sub, err := h.sys.EditFields(r.Context(), id, req.Fields)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	keys := editKeys(req.Fields)
	h.audits.Event(r.Context(), sub.ID, audit.EventFieldsEdited, req.Actor, map[string]any{
		"keys": keys,
	})

	handlers.RespondJSON(w, http.StatusOK, sub)
}

// Trace returns every processing attempt trace for a submission.
func (h *Handler) Trace(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if _, err := h.sys.Find(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	traces, err := h.traces.TracesFor(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, audit.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, traces)
}

// Events returns the audited action history for a submission.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if _, err := h.sys.Find(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	events, err := h.traces.EventsFor(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, audit.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, events)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return uuid.Nil, false
	}
	return id, true
}
