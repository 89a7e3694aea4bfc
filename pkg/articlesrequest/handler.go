package articlesrequest

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

type Handler struct {
	service *ArticlesRequestService
}

func NewHandler(service *ArticlesRequestService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/articles-requests", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Put("/", h.Update)
			r.Delete("/", h.Delete)
		})
	})
}

func requestID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}

func renderError(w http.ResponseWriter, r *http.Request, err error) {
	var validation ValidationError
	switch {
	case errors.As(err, &validation):
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, map[string][]string{"errors": validation.Details})
	case errors.Is(err, ErrRequestNotFound), errors.Is(err, ErrArticleNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, map[string]string{"error": err.Error()})
	default:
		slog.Error("Failed to handle articles request", "err", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "Internal server error"})
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	requests, err := h.service.List(r.Context())
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, requests)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := requestID(r)
	if err != nil {
		renderError(w, r, ErrRequestNotFound)
		return
	}
	request, err := h.service.Get(r.Context(), id)
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, request)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var input RequestInput
	if err := render.DecodeJSON(r.Body, &input); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "Invalid request body"})
		return
	}
	request, err := h.service.Create(r.Context(), input)
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, request)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := requestID(r)
	if err != nil {
		renderError(w, r, ErrRequestNotFound)
		return
	}
	var input RequestInput
	if err := render.DecodeJSON(r.Body, &input); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "Invalid request body"})
		return
	}
	request, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		renderError(w, r, err)
		return
	}
	render.JSON(w, r, request)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := requestID(r)
	if err != nil {
		renderError(w, r, ErrRequestNotFound)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		renderError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
