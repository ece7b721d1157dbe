package invoices

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/atlasdash/atlasdash/internal/authz"
	"github.com/atlasdash/atlasdash/internal/platform/httpx"
	"github.com/atlasdash/atlasdash/internal/shared"
)

// Handler manages invoice endpoints.
type Handler struct {
	logger    *slog.Logger
	repo      *Repository
	guard     authz.Middleware
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, repo *Repository, guard authz.Middleware) *Handler {
	return &Handler{logger: logger, repo: repo, guard: guard, validator: validator.New()}
}

// MountRoutes registers invoice routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.guard.Require("invoices", authz.ActionRead)).Get("/", h.list)
	r.With(h.guard.Require("invoices", authz.ActionRead)).Get("/{id}", h.get)
	r.With(h.guard.Require("invoices", authz.ActionCreate)).Post("/", h.create)
	r.With(h.guard.Require("invoices", authz.ActionUpdate)).Put("/{id}", h.update)
	r.With(h.guard.Require("invoices", authz.ActionDelete)).Delete("/{id}", h.remove)
}

type invoicePayload struct {
	CustomerID string `json:"customer_id" validate:"required,uuid"`
	Amount     int64  `json:"amount" validate:"required,gt=0"`
	Status     string `json:"status" validate:"required,oneof=pending paid"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
}

type listResponse struct {
	Invoices   []Row             `json:"invoices"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageFromQuery(r.URL.Query())
	query := r.URL.Query().Get("q")

	total, err := h.repo.Count(r.Context(), query)
	if err != nil {
		h.logger.Error("count invoices", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	pagination := shared.NewPagination(page, perPage, total)
	items, err := h.repo.List(r.Context(), query, pagination.PerPage, pagination.Offset())
	if err != nil {
		h.logger.Error("list invoices", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Row{}
	}
	httpx.JSON(w, http.StatusOK, listResponse{Invoices: items, Pagination: pagination})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid invoice id")
		return
	}
	invoice, err := h.repo.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoice)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	customerID, amount, status, date, ok := h.decode(w, r)
	if !ok {
		return
	}
	invoice, err := h.repo.Create(r.Context(), customerID, amount, status, date)
	if err != nil {
		h.logger.Error("create invoice", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, invoice)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid invoice id")
		return
	}
	customerID, amount, status, date, ok := h.decode(w, r)
	if !ok {
		return
	}
	invoice, err := h.repo.Update(r.Context(), id, customerID, amount, status, date)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoice)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid invoice id")
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (uuid.UUID, int64, Status, time.Time, bool) {
	var payload invoicePayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed json body")
		return uuid.Nil, 0, "", time.Time{}, false
	}
	if err := h.validator.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return uuid.Nil, 0, "", time.Time{}, false
	}
	customerID, err := uuid.Parse(payload.CustomerID)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid customer id")
		return uuid.Nil, 0, "", time.Time{}, false
	}
	date, err := time.Parse("2006-01-02", payload.Date)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid date")
		return uuid.Nil, 0, "", time.Time{}, false
	}
	return customerID, payload.Amount, Status(payload.Status), date, true
}
