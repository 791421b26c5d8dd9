package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/target/jobdispatch/internal/domain/model"
	"github.com/target/jobdispatch/internal/domain/projection"
	"github.com/target/jobdispatch/internal/service"
)

const (
	defaultDispatchListLimit = 50
	maxDispatchListLimit     = 1000
	filterParamPrefix        = "filter."
)

// JobDispatchHandlers provides HTTP handlers for job dispatch records and their views.
type JobDispatchHandlers struct {
	Svc *service.JobDispatchService
}

type assignRefRequest struct {
	Ref string `json:"ref"`
}

// Create records a new dispatch.
func (h *JobDispatchHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateJobDispatchRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	d, err := h.Svc.Create(r.Context(), &req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, projection.BuildView(d, nil))
}

// List returns a page of dispatch views with audit counts.
func (h *JobDispatchHandlers) List(w http.ResponseWriter, r *http.Request) {
	opts, err := parseListOptions(r.URL.Query())
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation", Err: err, Field: "status"})
		return
	}

	views, err := h.Svc.ListViews(r.Context(), opts)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"items": views, "limit": opts.Limit, "offset": opts.Offset})
}

// Stats returns dispatch counts per status.
func (h *JobDispatchHandlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Svc.Stats(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}

// Get returns the view of one dispatch with the derived fields named in ?fields= and
// optional ?filter.<collection>= JMESPath filters.
func (h *JobDispatchHandlers) Get(w http.ResponseWriter, r *http.Request) {
	h.getView(w, r, func(ctx context.Context, fs projection.FieldSet) (*projection.View, error) {
		return h.Svc.GetView(ctx, r.PathValue("id"), fs)
	})
}

// GetByRef is Get keyed by ref.
func (h *JobDispatchHandlers) GetByRef(w http.ResponseWriter, r *http.Request) {
	h.getView(w, r, func(ctx context.Context, fs projection.FieldSet) (*projection.View, error) {
		return h.Svc.GetViewByRef(ctx, r.PathValue("ref"), fs)
	})
}

func (h *JobDispatchHandlers) getView(
	w http.ResponseWriter,
	r *http.Request,
	load func(context.Context, projection.FieldSet) (*projection.View, error),
) {
	fs, err := parseFieldSet(r)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation", Err: err, Field: "filter"})
		return
	}
	v, err := load(r.Context(), fs)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, v)
}

func parseFieldSet(r *http.Request) (projection.FieldSet, error) {
	q := r.URL.Query()
	fs := projection.ParseFields(strings.Join(q["fields"], ","))
	for key, values := range q {
		name, ok := strings.CutPrefix(key, filterParamPrefix)
		if !ok || len(values) == 0 {
			continue
		}
		if err := fs.SetFilter(name, values[len(values)-1]); err != nil {
			return nil, err
		}
	}
	return fs, nil
}

// AssignRef sets the ref of a dispatch; an empty ref assigns a generated one.
func (h *JobDispatchHandlers) AssignRef(w http.ResponseWriter, r *http.Request) {
	var req assignRefRequest
	if !DecodeOptionalJSON(w, r, &req) {
		return
	}
	d, err := h.Svc.AssignRef(r.Context(), r.PathValue("id"), req.Ref)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, d)
}

// Run starts a new attempt.
func (h *JobDispatchHandlers) Run(w http.ResponseWriter, r *http.Request) {
	var req model.MarkRunningRequest
	if !DecodeOptionalJSON(w, r, &req) {
		return
	}
	h.respond(w)(h.Svc.Start(r.Context(), r.PathValue("id"), req))
}

// Complete finishes the running attempt successfully.
func (h *JobDispatchHandlers) Complete(w http.ResponseWriter, r *http.Request) {
	h.respond(w)(h.Svc.Complete(r.Context(), r.PathValue("id")))
}

// Fail finishes the running attempt with an error.
func (h *JobDispatchHandlers) Fail(w http.ResponseWriter, r *http.Request) {
	h.respond(w)(h.Svc.Fail(r.Context(), r.PathValue("id")))
}

// TimeOut records that the running attempt timed out.
func (h *JobDispatchHandlers) TimeOut(w http.ResponseWriter, r *http.Request) {
	h.respond(w)(h.Svc.TimeOut(r.Context(), r.PathValue("id")))
}

// Abort cancels a pending or running dispatch.
func (h *JobDispatchHandlers) Abort(w http.ResponseWriter, r *http.Request) {
	h.respond(w)(h.Svc.Abort(r.Context(), r.PathValue("id")))
}

func (h *JobDispatchHandlers) respond(w http.ResponseWriter) func(*model.JobDispatch, error) {
	return func(d *model.JobDispatch, err error) {
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		if d == nil {
			WriteServiceError(w, errors.New("empty transition result"))
			return
		}
		WriteJSON(w, http.StatusOK, d)
	}
}

func registerJobDispatchRoutes(mux *http.ServeMux, h *JobDispatchHandlers) {
	mux.HandleFunc("POST /api/job-dispatches", h.Create)
	mux.HandleFunc("GET /api/job-dispatches", h.List)
	mux.HandleFunc("GET /api/job-dispatches/stats", h.Stats)
	mux.HandleFunc("GET /api/job-dispatches/by-ref/{ref}", h.GetByRef)
	mux.HandleFunc("GET /api/job-dispatches/{id}", h.Get)
	mux.HandleFunc("PUT /api/job-dispatches/{id}/ref", h.AssignRef)
	mux.HandleFunc("POST /api/job-dispatches/{id}/run", h.Run)
	mux.HandleFunc("POST /api/job-dispatches/{id}/complete", h.Complete)
	mux.HandleFunc("POST /api/job-dispatches/{id}/fail", h.Fail)
	mux.HandleFunc("POST /api/job-dispatches/{id}/timeout", h.TimeOut)
	mux.HandleFunc("POST /api/job-dispatches/{id}/abort", h.Abort)
}
