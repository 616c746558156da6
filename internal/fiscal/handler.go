package fiscal

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stockbook/stockbook/internal/platform/httpx"
)

// Handler exposes the closing calendar.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers calendar routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/periods", h.list)
}

type periodResponse struct {
	Period
	Window Window `json:"window"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	periods, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list periods", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	out := make([]periodResponse, 0, len(periods))
	for _, p := range periods {
		window, err := ResolveWindow(periods, p.Label)
		if err != nil && !errors.Is(err, ErrPeriodNotFound) {
			h.logger.Error("resolve window", slog.String("label", p.Label), slog.Any("error", err))
			continue
		}
		out = append(out, periodResponse{Period: p, Window: window})
	}
	httpx.JSON(w, http.StatusOK, out)
}
