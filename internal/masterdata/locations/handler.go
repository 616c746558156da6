package locations

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stockbook/stockbook/internal/platform/httpx"
)

// Handler exposes location reads and creation.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers location routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/locations", h.list)
	r.Post("/locations", h.create)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list locations", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if all == nil {
		all = []Location{}
	}
	httpx.JSON(w, http.StatusOK, all)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var loc Location
	if err := httpx.DecodeJSON(r, &loc); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	created, err := h.service.Create(r.Context(), loc)
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateLocation):
			httpx.RespondError(w, httpx.ErrDuplicate)
		default:
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}
