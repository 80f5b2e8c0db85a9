package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// APIError is a structured error returned by the backend envelope.
// Callers branch on Code, never on the human-readable message.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    map[string]any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %s (%s, http %d)", e.Message, e.Code, e.StatusCode)
}

// API is the backend surface the agent consumes.
type API struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewAPI(baseURL string) *API {
	return &API{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func (a *API) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := a.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var payload *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(raw)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.Token != "" {
		req.Header.Set("Authorization", "Bearer "+a.Token)
	}

	resp, err := a.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	if !env.Success || resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Code: "unknown", Message: "request failed"}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
			apiErr.Details = env.Error.Details
		}
		return apiErr
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s %s: decode data: %w", method, path, err)
		}
	}
	return nil
}

// Login exchanges credentials for a bearer token and remembers it for
// subsequent calls.
func (a *API) Login(ctx context.Context, email, password string) error {
	var out struct {
		Token string `json:"token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := a.do(ctx, http.MethodPost, "/api/v1/auth/login", nil, body, &out); err != nil {
		return err
	}
	a.Token = out.Token
	return nil
}

func (a *API) Status(ctx context.Context) (*ServerStatus, error) {
	var out ServerStatus
	if err := a.do(ctx, http.MethodGet, "/api/v1/attendance/status", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// History returns normalized per-day records, newest first.
func (a *API) History(ctx context.Context, days int) ([]Record, error) {
	query := url.Values{}
	if days > 0 {
		query.Set("days", fmt.Sprintf("%d", days))
	}
	var raw []map[string]json.RawMessage
	if err := a.do(ctx, http.MethodGet, "/api/v1/attendance/history", query, nil, &raw); err != nil {
		return nil, err
	}
	return normalizeRecords(raw), nil
}

// Calendar returns the month's calendar entries as records; only the
// date and check-in clock are populated for calendar-only days.
func (a *API) Calendar(ctx context.Context, month, year int) ([]Record, error) {
	query := url.Values{}
	if month > 0 {
		query.Set("month", fmt.Sprintf("%d", month))
	}
	if year > 0 {
		query.Set("year", fmt.Sprintf("%d", year))
	}
	var raw []map[string]json.RawMessage
	if err := a.do(ctx, http.MethodGet, "/api/v1/attendance/calendar", query, nil, &raw); err != nil {
		return nil, err
	}
	return normalizeRecords(raw), nil
}

// Site is a branch as the agent sees it.
type Site struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters float64 `json:"radiusMeters"`
	StartHour    string  `json:"startHour"`
	EndHour      string  `json:"endHour"`
}

func (a *API) Branches(ctx context.Context) ([]Site, error) {
	var out []Site
	if err := a.do(ctx, http.MethodGet, "/api/v1/branches", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SubmitPayload is the body for check-in and check-out.
type SubmitPayload struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	IsMocked   bool    `json:"isMocked,omitempty"`
	DeviceID   string  `json:"deviceId,omitempty"`
	PhotoURL   string  `json:"photoUrl,omitempty"`
	Notes      string  `json:"notes,omitempty"`
	IsOvertime bool    `json:"isOvertime,omitempty"`
}

// SubmitAck is the backend's acknowledgement of a submission.
type SubmitAck struct {
	Entry struct {
		ID    string `json:"id"`
		Notes string `json:"notes"`
	} `json:"entry"`
	ShiftName        string `json:"shiftName"`
	IsLate           bool   `json:"isLate"`
	IsOvertime       bool   `json:"isOvertime"`
	IsHalfDay        bool   `json:"isHalfDay"`
	PunishmentPoints int    `json:"punishmentPoints"`
	Warning          string `json:"warning,omitempty"`
}

func (a *API) CheckIn(ctx context.Context, p SubmitPayload) (*SubmitAck, error) {
	var out SubmitAck
	if err := a.do(ctx, http.MethodPost, "/api/v1/attendance/checkin", nil, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) CheckOut(ctx context.Context, p SubmitPayload) (*SubmitAck, error) {
	var out SubmitAck
	if err := a.do(ctx, http.MethodPost, "/api/v1/attendance/checkout", nil, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// normalizeRecords tolerates the loose key casing older backend
// builds emit (camelCase, snake_case and capitalized variants map to
// the same field).
func normalizeRecords(raw []map[string]json.RawMessage) []Record {
	out := make([]Record, 0, len(raw))
	for _, m := range raw {
		rec := Record{
			Date:         pickString(m, "date"),
			CheckInTime:  pickString(m, "checkInTime", "check_in_time", "time"),
			CheckOutTime: pickString(m, "checkOutTime", "check_out_time"),
			IsLate:       pickBool(m, "isLate", "is_late"),
			IsOvertime:   pickBool(m, "isOvertime", "is_overtime"),
			IsHalfDay:    pickBool(m, "isHalfDay", "is_half_day"),
			Anomalous:    pickBool(m, "anomalous"),
			Notes:        pickString(m, "notes"),
		}
		if rec.Date != "" {
			out = append(out, rec)
		}
	}
	return out
}

func pickRaw(m map[string]json.RawMessage, names ...string) (json.RawMessage, bool) {
	for _, name := range names {
		if v, ok := m[name]; ok {
			return v, true
		}
	}
	for key, v := range m {
		for _, name := range names {
			if strings.EqualFold(key, name) {
				return v, true
			}
		}
	}
	return nil, false
}

func pickString(m map[string]json.RawMessage, names ...string) string {
	raw, ok := pickRaw(m, names...)
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func pickBool(m map[string]json.RawMessage, names ...string) bool {
	raw, ok := pickRaw(m, names...)
	if !ok {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false
	}
	return b
}
