package items

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stockbook/stockbook/internal/platform/httpx"
)

// Handler exposes item-master reads and creation.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers item routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/items", h.list)
	r.Post("/items", h.create)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	all, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list items", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if all == nil {
		all = []Item{}
	}
	httpx.JSON(w, http.StatusOK, all)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var item Item
	if err := httpx.DecodeJSON(r, &item); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	created, err := h.service.Create(r.Context(), item)
	if err != nil {
		switch {
		case errors.Is(err, ErrDuplicateItem):
			httpx.RespondError(w, httpx.ErrDuplicate)
		default:
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}
