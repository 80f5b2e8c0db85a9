package shifthandler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"absensi/internal/auth"
	"absensi/internal/domain/shift"
	"absensi/internal/transport/http/api"
	"absensi/internal/transport/http/middleware"
)

type Handler struct {
	Store *shift.Store
}

func NewHandler(store *shift.Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	manage := middleware.RequireRole(auth.RoleOwner, auth.RoleSupervisor)
	r.Route("/shifts", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.With(manage).Post("/", h.handleCreate)
		r.With(manage).Put("/{shiftID}", h.handleUpdate)
		r.With(manage).Delete("/{shiftID}", h.handleDelete)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	shifts, err := h.Store.List(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "shift_list_failed", "failed to list shifts", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, shifts, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload shift.Shift
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if _, err := shift.ParseClock(payload.StartHour); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "startHour must be HH:MM", middleware.GetRequestID(r.Context()))
		return
	}
	if _, err := shift.ParseClock(payload.EndHour); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "endHour must be HH:MM", middleware.GetRequestID(r.Context()))
		return
	}

	id, err := h.Store.Create(r.Context(), payload)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "shift_create_failed", "failed to create shift", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, map[string]string{"id": id}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var payload shift.Shift
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	payload.ID = chi.URLParam(r, "shiftID")

	if err := h.Store.Update(r.Context(), payload); err != nil {
		api.Fail(w, http.StatusInternalServerError, "shift_update_failed", "failed to update shift", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, payload, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Delete(r.Context(), chi.URLParam(r, "shiftID")); err != nil {
		api.Fail(w, http.StatusInternalServerError, "shift_delete_failed", "failed to delete shift", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]bool{"deleted": true}, middleware.GetRequestID(r.Context()))
}
