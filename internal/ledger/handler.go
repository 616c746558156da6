package ledger

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/stockbook/stockbook/internal/platform/httpx"
	"github.com/stockbook/stockbook/internal/shared"
)

// Handler exposes the ledger over JSON endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers ledger routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/events", h.postEvent)
	r.Get("/events/{id}/reversal", h.reversal)
	r.Get("/snapshot", h.snapshot)
}

type postEventRequest struct {
	Operation    string  `json:"operation"`
	ItemName     string  `json:"item_name"`
	LocationName string  `json:"location_name"`
	Quantity     int64   `json:"quantity"`
	Counted      *int64  `json:"counted"`
	UnitPrice    float64 `json:"unit_price"`
	Counterparty string  `json:"counterparty"`
	Note         string  `json:"note"`
	Actor        string  `json:"actor"`
}

type eventResponse struct {
	ID           string    `json:"id"`
	OccurredAt   time.Time `json:"occurred_at"`
	ItemName     string    `json:"item_name"`
	LocationName string    `json:"location_name"`
	Operation    Operation `json:"operation"`
	Quantity     string    `json:"quantity"`
	UnitPrice    float64   `json:"unit_price"`
	Amount       float64   `json:"amount"`
}

func (h *Handler) postEvent(w http.ResponseWriter, r *http.Request) {
	var req postEventRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}

	scope := shared.ScopeFromHeader(r.Header.Get("X-Allowed-Locations"))
	if _, ok := scope.Restrict([]string{req.LocationName}); !ok {
		httpx.RespondError(w, httpx.ErrForbidden)
		return
	}

	op := Operation(req.Operation)
	var (
		event Event
		err   error
	)
	if op == OpStocktake {
		if req.Counted == nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "counted is required for a stocktake")
			return
		}
		event, err = h.service.PostStocktake(r.Context(), StocktakeInput{
			ItemName:     req.ItemName,
			LocationName: req.LocationName,
			Counted:      *req.Counted,
			Note:         req.Note,
			Actor:        req.Actor,
		})
	} else {
		event, err = h.service.PostMovement(r.Context(), MovementInput{
			ItemName:     req.ItemName,
			LocationName: req.LocationName,
			Operation:    op,
			Quantity:     req.Quantity,
			UnitPrice:    req.UnitPrice,
			Counterparty: req.Counterparty,
			Note:         req.Note,
			Actor:        req.Actor,
		})
	}
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, eventResponse{
		ID:           event.ID.String(),
		OccurredAt:   event.OccurredAt,
		ItemName:     event.ItemName,
		LocationName: event.LocationName,
		Operation:    event.Operation,
		Quantity:     event.QuantityRaw,
		UnitPrice:    event.UnitPrice,
		Amount:       event.Amount,
	})
}

func (h *Handler) reversal(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid event id")
		return
	}
	advice, err := h.service.ReversalAdvice(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, advice)
}

func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	cutoff := time.Now().UTC()
	if raw := r.URL.Query().Get("cutoff"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "cutoff must be RFC3339")
			return
		}
		cutoff = parsed
	}

	requested := splitParam(r.URL.Query().Get("locations"))
	scope := shared.ScopeFromHeader(r.Header.Get("X-Allowed-Locations"))
	locations, ok := scope.Restrict(requested)
	if !ok {
		httpx.JSON(w, http.StatusOK, []SnapshotRow{})
		return
	}

	rows, err := h.service.Snapshot(r.Context(), cutoff, locations)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if rows == nil {
		rows = []SnapshotRow{}
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var vErrs validator.ValidationErrors
	switch {
	case errors.As(err, &vErrs), errors.Is(err, ErrInvalidOperation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrEventNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	case errors.Is(err, ErrDuplicateEvent):
		httpx.RespondError(w, httpx.ErrDuplicate)
	case errors.Is(err, ErrNotReversible):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Not Reversible", err.Error())
	default:
		h.logger.Error("ledger handler", slog.String("path", r.URL.Path), slog.Any("error", err))
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
