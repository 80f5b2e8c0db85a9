package reportshandler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"absensi/internal/auth"
	"absensi/internal/domain/reports"
	"absensi/internal/transport/http/api"
	"absensi/internal/transport/http/middleware"
)

type Handler struct {
	Service *reports.Service
}

func NewHandler(service *reports.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	view := middleware.RequireRole(auth.RoleOwner, auth.RoleSupervisor, auth.RoleHead)
	r.Route("/reports", func(r chi.Router) {
		r.Use(middleware.RequireAuth, view)
		r.Get("/branches/{branchID}/recap", h.handleRecap)
		r.Get("/branches/{branchID}/recap.pdf", h.handleRecapPDF)
		r.Get("/branches/{branchID}/recap.xlsx", h.handleRecapXLSX)
	})
}

func (h *Handler) recapParams(r *http.Request) (string, time.Month, int, error) {
	branchID := chi.URLParam(r, "branchID")
	if branchID == "" {
		return "", 0, 0, fmt.Errorf("branch id is required")
	}

	now := time.Now()
	month := int(now.Month())
	year := now.Year()
	if raw := r.URL.Query().Get("month"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 12 {
			return "", 0, 0, fmt.Errorf("month must be 1-12")
		}
		month = parsed
	}
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 2000 {
			return "", 0, 0, fmt.Errorf("year is invalid")
		}
		year = parsed
	}
	return branchID, time.Month(month), year, nil
}

func (h *Handler) buildRecap(w http.ResponseWriter, r *http.Request) *reports.BranchRecap {
	branchID, month, year, err := h.recapParams(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), middleware.GetRequestID(r.Context()))
		return nil
	}

	recap, err := h.Service.BranchRecap(r.Context(), branchID, month, year)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "recap_failed", "failed to build recap", middleware.GetRequestID(r.Context()))
		return nil
	}
	return recap
}

func (h *Handler) handleRecap(w http.ResponseWriter, r *http.Request) {
	recap := h.buildRecap(w, r)
	if recap == nil {
		return
	}
	api.Success(w, recap, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRecapPDF(w http.ResponseWriter, r *http.Request) {
	recap := h.buildRecap(w, r)
	if recap == nil {
		return
	}

	filePath, err := reports.RenderPDF(recap)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "recap_failed", "failed to render recap pdf", middleware.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=recap-%s.pdf", recap.MonthCode))
	http.ServeFile(w, r, filePath)
}

func (h *Handler) handleRecapXLSX(w http.ResponseWriter, r *http.Request) {
	recap := h.buildRecap(w, r)
	if recap == nil {
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=recap-%s.xlsx", recap.MonthCode))
	if err := reports.RenderXLSX(recap, w); err != nil {
		api.Fail(w, http.StatusInternalServerError, "recap_failed", "failed to render recap workbook", middleware.GetRequestID(r.Context()))
	}
}
