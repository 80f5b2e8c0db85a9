package attendancehandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"absensi/internal/domain/attendance"
	"absensi/internal/transport/http/api"
	"absensi/internal/transport/http/middleware"
)

type Handler struct {
	Service *attendance.Service
}

func NewHandler(service *attendance.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/attendance", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/checkin", h.handleCheckIn)
		r.Post("/checkout", h.handleCheckOut)
		r.Get("/status", h.handleStatus)
		r.Get("/calendar", h.handleCalendar)
		r.Get("/history", h.handleHistory)
		r.Get("/stats", h.handleStats)
		r.Get("/recap", h.handleRecap)
		r.Get("/points", h.handlePoints)
		r.Post("/permit", h.handleSubmitPermit)
		r.Delete("/permit/{date}", h.handleCancelPermit)
	})
}

// fail maps domain errors to the envelope, preserving the structured
// code and details the device keys its recovery logic on.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	var domainErr *attendance.Error
	if errors.As(err, &domainErr) {
		api.FailWith(w, domainErr.HTTPStatus, api.Error{
			Code:    domainErr.Code,
			Message: domainErr.Message,
			Details: domainErr.Details,
		}, middleware.GetRequestID(r.Context()))
		return
	}
	api.Fail(w, http.StatusInternalServerError, "internal_error", "internal error", middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload attendance.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	result, err := h.Service.CheckIn(r.Context(), user.UserID, payload)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Created(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload attendance.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	result, err := h.Service.CheckOut(r.Context(), user.UserID, payload)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Created(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	snap, err := h.Service.Status(r.Context(), user.UserID)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, snap, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCalendar(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	days, err := h.Service.Calendar(r.Context(), user.UserID)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, days, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "days must be a positive integer", middleware.GetRequestID(r.Context()))
			return
		}
		days = parsed
	}

	records, err := h.Service.History(r.Context(), user.UserID, days)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, records, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	stats, err := h.Service.Stats(r.Context(), user.UserID)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, stats, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRecap(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	months, err := h.Service.Recap(r.Context(), user.UserID)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, months, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handlePoints(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	summary, err := h.Service.Points(r.Context(), user.UserID)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSubmitPermit(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload attendance.PermitRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	entry, err := h.Service.SubmitPermit(r.Context(), user.UserID, payload)
	if err != nil {
		fail(w, r, err)
		return
	}
	api.Created(w, entry, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCancelPermit(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	date := chi.URLParam(r, "date")
	if err := h.Service.CancelPermit(r.Context(), user.UserID, date); err != nil {
		fail(w, r, err)
		return
	}
	api.Success(w, map[string]any{"cancelled": date}, middleware.GetRequestID(r.Context()))
}
