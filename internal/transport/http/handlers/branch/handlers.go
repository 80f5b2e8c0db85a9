package branchhandler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"absensi/internal/auth"
	"absensi/internal/domain/branch"
	"absensi/internal/transport/http/api"
	"absensi/internal/transport/http/middleware"
)

type Handler struct {
	Store *branch.Store
}

func NewHandler(store *branch.Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	manage := middleware.RequireRole(auth.RoleOwner, auth.RoleSupervisor)
	r.Route("/branches", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.Get("/{branchID}", h.handleGet)
		r.With(manage).Post("/", h.handleCreate)
		r.With(manage).Put("/{branchID}", h.handleUpdate)
		r.With(manage).Delete("/{branchID}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	sites, err := h.Store.List(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "branch_list_failed", "failed to list branches", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, sites, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	site, err := h.Store.Get(r.Context(), chi.URLParam(r, "branchID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "branch not found", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, site, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload branch.Site
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.Name == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "branch name is required", middleware.GetRequestID(r.Context()))
		return
	}

	id, err := h.Store.Create(r.Context(), payload)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "branch_create_failed", "failed to create branch", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var payload branch.Site
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	payload.ID = chi.URLParam(r, "branchID")

	if err := h.Store.Update(r.Context(), payload); err != nil {
		api.Fail(w, http.StatusInternalServerError, "branch_update_failed", "failed to update branch", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, payload, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Delete(r.Context(), chi.URLParam(r, "branchID")); err != nil {
		api.Fail(w, http.StatusInternalServerError, "branch_delete_failed", "failed to delete branch", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]bool{"deleted": true}, middleware.GetRequestID(r.Context()))
}
