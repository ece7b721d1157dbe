package posts

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

// Handler manages blog endpoints.
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

// MountRoutes registers dashboard blog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.guard.Require("posts", authz.ActionRead)).Get("/", h.list)
	r.With(h.guard.Require("posts", authz.ActionRead)).Get("/{id}", h.get)
	r.With(h.guard.Require("posts", authz.ActionCreate)).Post("/", h.create)
	r.With(h.guard.Require("posts", authz.ActionUpdate)).Put("/{id}", h.update)
	r.With(h.guard.Require("posts", authz.ActionDelete)).Delete("/{id}", h.remove)
}

// MountPublicRoutes registers the unauthenticated published-posts listing.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Get("/", h.listPublished)
	r.Get("/{id}", h.getPublished)
}

type postPayload struct {
	Title     string `json:"title" validate:"required"`
	Content   string `json:"content" validate:"required"`
	Excerpt   string `json:"excerpt"`
	Author    string `json:"author"`
	Published bool   `json:"published"`
}

type listResponse struct {
	Posts      []Post            `json:"posts"`
	Pagination shared.Pagination `json:"pagination"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, false)
}

func (h *Handler) listPublished(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, true)
}

func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, publishedOnly bool) {
	page, perPage := shared.PageFromQuery(r.URL.Query())
	total, err := h.repo.Count(r.Context(), publishedOnly)
	if err != nil {
		h.logger.Error("count posts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	pagination := shared.NewPagination(page, perPage, total)
	items, err := h.repo.List(r.Context(), publishedOnly, pagination.PerPage, pagination.Offset())
	if err != nil {
		h.logger.Error("list posts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []Post{}
	}
	httpx.JSON(w, http.StatusOK, listResponse{Posts: items, Pagination: pagination})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	post, ok := h.fetch(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, post)
}

func (h *Handler) getPublished(w http.ResponseWriter, r *http.Request) {
	post, ok := h.fetch(w, r)
	if !ok {
		return
	}
	if !post.Published {
		// Drafts stay invisible on the public surface.
		httpx.Problem(w, http.StatusNotFound, "Not Found", "post not found")
		return
	}
	httpx.JSON(w, http.StatusOK, post)
}

func (h *Handler) fetch(w http.ResponseWriter, r *http.Request) (Post, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid post id")
		return Post{}, false
	}
	post, err := h.repo.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return Post{}, false
	}
	return post, true
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.decode(w, r)
	if !ok {
		return
	}
	post, err := h.repo.Create(r.Context(), payload.Title, payload.Content, payload.Excerpt, payload.Author, payload.Published)
	if err != nil {
		h.logger.Error("create post", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, post)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid post id")
		return
	}
	payload, ok := h.decode(w, r)
	if !ok {
		return
	}
	post, err := h.repo.Update(r.Context(), id, payload.Title, payload.Content, payload.Excerpt, payload.Author, payload.Published)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, post)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid post id")
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (postPayload, bool) {
	var payload postPayload
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
