package customers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/atlasdash/atlasdash/internal/authz"
	"github.com/atlasdash/atlasdash/internal/platform/httpx"
	"github.com/atlasdash/atlasdash/internal/shared"
)

// Handler manages customer endpoints.
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

// MountRoutes registers customer routes, each gated on its own permission.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.guard.Require("customers", authz.ActionRead)).Get("/", h.list)
	r.With(h.guard.Require("customers", authz.ActionRead)).Get("/{id}", h.get)
	r.With(h.guard.Require("customers", authz.ActionCreate)).Post("/", h.create)
	r.With(h.guard.Require("customers", authz.ActionUpdate)).Put("/{id}", h.update)
	r.With(h.guard.Require("customers", authz.ActionDelete)).Delete("/{id}", h.remove)
}

type customerPayload struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	ImageURL string `json:"image_url" validate:"omitempty,url"`
}

type listResponse struct {
	Customers  []Customer        `json:"customers"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageFromQuery(r.URL.Query())
	query := r.URL.Query().Get("q")

	total, err := h.repo.Count(r.Context(), query)
	if err != nil {
		h.logger.Error("count customers", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	pagination := shared.NewPagination(page, perPage, total)
	items, err := h.repo.List(r.Context(), query, pagination.PerPage, pagination.Offset())
	if err != nil {
		h.logger.Error("list customers", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Customer{}
	}
	httpx.JSON(w, http.StatusOK, listResponse{Customers: items, Pagination: pagination})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid customer id")
		return
	}
	customer, err := h.repo.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, customer)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.decode(w, r)
	if !ok {
		return
	}
	customer, err := h.repo.Create(r.Context(), payload.Name, payload.Email, payload.ImageURL)
	if err != nil {
		h.logger.Error("create customer", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, customer)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid customer id")
		return
	}
	payload, ok := h.decode(w, r)
	if !ok {
		return
	}
	customer, err := h.repo.Update(r.Context(), id, payload.Name, payload.Email, payload.ImageURL)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, customer)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid customer id")
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (customerPayload, bool) {
	var payload customerPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed json body")
		return payload, false
	}
	if err := h.validator.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return payload, false
	}
	return payload, true
}
