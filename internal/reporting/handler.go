package reporting

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"

	"github.com/stockbook/stockbook/internal/fiscal"
	"github.com/stockbook/stockbook/internal/platform/httpx"
	"github.com/stockbook/stockbook/internal/shared"
	"github.com/stockbook/stockbook/jobs"
)

// Enqueuer submits export jobs. Satisfied by jobs.Client.
type Enqueuer interface {
	EnqueuePeriodExport(ctx context.Context, payload jobs.PeriodExportPayload) (*asynq.TaskInfo, error)
}

// Handler serves period-close reports.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	enqueuer Enqueuer
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, enqueuer Enqueuer) *Handler {
	return &Handler{logger: logger, service: service, enqueuer: enqueuer}
}

// MountRoutes registers reporting routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/reports/{period}", h.report)
	r.Post("/reports/{period}/export", h.export)
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	label := chi.URLParam(r, "period")

	requested := splitParam(r.URL.Query().Get("locations"))
	scope := shared.ScopeFromHeader(r.Header.Get("X-Allowed-Locations"))
	locations, ok := scope.Restrict(requested)
	if !ok {
		httpx.JSON(w, http.StatusOK, []Row{})
		return
	}
	items := splitParam(r.URL.Query().Get("items"))

	rows, err := h.service.Report(r.Context(), label, locations, items)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if rows == nil {
		rows = []Row{}
	}
	httpx.JSON(w, http.StatusOK, rows)
}

type exportRequest struct {
	Locations   []string `json:"locations"`
	Items       []string `json:"items"`
	RequestedBy string   `json:"requested_by"`
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	label := chi.URLParam(r, "period")

	var req exportRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	scope := shared.ScopeFromHeader(r.Header.Get("X-Allowed-Locations"))
	locations, ok := scope.Restrict(req.Locations)
	if !ok {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}

	// Validate the label up front so a bad period fails the request,
	// not the background job.
	if _, err := h.service.periods.Resolve(r.Context(), label); err != nil {
		h.respondError(w, r, err)
		return
	}

	info, err := h.enqueuer.EnqueuePeriodExport(r.Context(), jobs.PeriodExportPayload{
		PeriodLabel: label,
		Locations:   locations,
		Items:       req.Items,
		RequestedBy: req.RequestedBy,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{
		"task_id": info.ID,
		"queue":   info.Queue,
		"period":  label,
	})
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, fiscal.ErrPeriodNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	default:
		h.logger.Error("reporting handler", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func splitParam(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
