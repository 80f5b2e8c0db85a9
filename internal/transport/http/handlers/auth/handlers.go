package authhandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"absensi/internal/auth"
	"absensi/internal/transport/http/api"
	"absensi/internal/transport/http/middleware"
)

type Handler struct {
	DB       *pgxpool.Pool
	Secret   string
	TokenTTL time.Duration
}

func NewHandler(db *pgxpool.Pool, secret string, ttl time.Duration) *Handler {
	return &Handler{DB: db, Secret: secret, TokenTTL: ttl}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.handleLogin)
		r.With(middleware.RequireAuth).Get("/me", h.handleMe)
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	var id, name, role, hash string
	var branchID *string
	err := h.DB.QueryRow(r.Context(), `
    SELECT id, name, role, password_hash, branch_id
    FROM users
    WHERE email = $1 AND active
  `, payload.Email).Scan(&id, &name, &role, &hash, &branchID)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", middleware.GetRequestID(r.Context()))
		return
	}

	if err := auth.CheckPassword(hash, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", middleware.GetRequestID(r.Context()))
		return
	}

	claims := auth.Claims{UserID: id, Role: role}
	if branchID != nil {
		claims.BranchID = *branchID
	}
	token, err := auth.GenerateToken(h.Secret, claims, h.TokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_failed", "failed to issue token", middleware.GetRequestID(r.Context()))
		return
	}

	api.Success(w, map[string]any{
		"token": token,
		"user": map[string]any{
			"id":       id,
			"name":     name,
			"role":     role,
			"branchId": branchID,
		},
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var name, email string
	err := h.DB.QueryRow(r.Context(), `
    SELECT name, email FROM users WHERE id = $1
  `, user.UserID).Scan(&name, &email)
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "account not found", middleware.GetRequestID(r.Context()))
		return
	}

	api.Success(w, map[string]any{
		"id":       user.UserID,
		"name":     name,
		"email":    email,
		"role":     user.Role,
		"branchId": user.BranchID,
	}, middleware.GetRequestID(r.Context()))
}
