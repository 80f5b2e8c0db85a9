package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"absensi/internal/geo"
)

type Action string

const (
	ActionCheckIn  Action = "CHECK_IN"
	ActionCheckOut Action = "CHECK_OUT"
)

type Outcome string

const (
	// OutcomeSuccess is a submission the backend accepted.
	OutcomeSuccess Outcome = "SUCCESS"
	// OutcomeRecovered means the backend reported the action already
	// done; the device adopts the implied state as a success.
	OutcomeRecovered Outcome = "RECOVERED"
)

// Result is a completed (possibly recovered) submission.
type Result struct {
	Outcome Outcome
	State   State
	At      time.Time
	Ack     *SubmitAck
}

type FailureKind string

const (
	FailureGeoRejected FailureKind = "GEO_REJECTED"
	FailureValidation  FailureKind = "VALIDATION"
	FailurePermission  FailureKind = "PERMISSION"
	FailureServer      FailureKind = "SERVER"
	FailureNetwork     FailureKind = "NETWORK"
)

// Failure is a submission the device must surface to the user. The
// local cache is never touched on a failure.
type Failure struct {
	Kind    FailureKind
	Code    string
	Message string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("submit: %s (%s)", f.Message, f.Kind)
}

// OutOfRangeError reports a geofence rejection with the measured
// distance so the user can see how far off they are.
type OutOfRangeError struct {
	DistanceMeters  int
	MaxRadiusMeters float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("submit: out of range (%dm away, radius %.0fm)", e.DistanceMeters, e.MaxRadiusMeters)
}

// Submission is everything the device has gathered for one attempt.
type Submission struct {
	Sample geo.Sample
	// PhotoVerified must be set before any submission; the backend
	// trusts the device's liveness check.
	PhotoVerified bool
	// OvertimeResolved confirms the overtime prompt was answered (or
	// not required) before a check-out goes out.
	OvertimeResolved bool
	IsOvertime       bool
	DeviceID         string
	PhotoURL         string
	Notes            string
}

// Backend abstracts the API for the submitter.
type Backend interface {
	CheckIn(ctx context.Context, p SubmitPayload) (*SubmitAck, error)
	CheckOut(ctx context.Context, p SubmitPayload) (*SubmitAck, error)
}

// Submitter validates, submits and classifies attendance actions,
// recording every accepted outcome in the local status cache.
type Submitter struct {
	Backend Backend
	Cache   *StatusCache
	Log     *zap.Logger
	Now     func() time.Time
}

func NewSubmitter(backend Backend, cache *StatusCache, log *zap.Logger) *Submitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Submitter{Backend: backend, Cache: cache, Log: log, Now: time.Now}
}

func (s *Submitter) Submit(ctx context.Context, action Action, sub Submission) (*Result, error) {
	if err := geo.ValidateSample(sub.Sample); err != nil {
		return nil, &Failure{Kind: FailureGeoRejected, Message: err.Error()}
	}
	if !sub.PhotoVerified {
		return nil, &Failure{Kind: FailureValidation, Message: "verified photo required before submitting"}
	}
	if action == ActionCheckOut && !sub.OvertimeResolved {
		return nil, &Failure{Kind: FailureValidation, Message: "overtime confirmation pending"}
	}

	payload := SubmitPayload{
		Latitude:   sub.Sample.Latitude,
		Longitude:  sub.Sample.Longitude,
		IsMocked:   sub.Sample.Simulated,
		DeviceID:   sub.DeviceID,
		PhotoURL:   sub.PhotoURL,
		Notes:      sub.Notes,
		IsOvertime: sub.IsOvertime,
	}

	var (
		ack *SubmitAck
		err error
	)
	switch action {
	case ActionCheckIn:
		ack, err = s.Backend.CheckIn(ctx, payload)
	case ActionCheckOut:
		ack, err = s.Backend.CheckOut(ctx, payload)
	default:
		return nil, &Failure{Kind: FailureValidation, Message: fmt.Sprintf("unknown action %q", action)}
	}

	now := s.Now()
	if err == nil {
		state := StateCheckedIn
		if action == ActionCheckOut {
			state = StateCheckedOut
		}
		s.record(state, now)
		return &Result{Outcome: OutcomeSuccess, State: state, At: now, Ack: ack}, nil
	}
	return s.classify(action, now, err)
}

// classify turns a backend error into either a recovered result or a
// typed failure. Duplicate-action codes are recoveries, not errors:
// the device missed an earlier acknowledgement and simply adopts the
// state the backend reports.
func (s *Submitter) classify(action Action, now time.Time, err error) (*Result, error) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return nil, &Failure{Kind: FailureNetwork, Message: err.Error()}
	}

	switch apiErr.Code {
	case "already_checked_in":
		if action == ActionCheckIn {
			return s.recovered(StateCheckedIn, now), nil
		}
	case "already_checked_out":
		if action == ActionCheckOut {
			return s.recovered(StateCheckedOut, now), nil
		}
	case "out_of_range":
		return nil, &OutOfRangeError{
			DistanceMeters:  detailInt(apiErr.Details, "distance"),
			MaxRadiusMeters: detailFloat(apiErr.Details, "maxRadius"),
		}
	}

	kind := FailureServer
	switch {
	case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
		kind = FailurePermission
	case apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
		kind = FailureValidation
	}
	return nil, &Failure{Kind: kind, Code: apiErr.Code, Message: apiErr.Message}
}

func (s *Submitter) recovered(state State, now time.Time) *Result {
	s.Log.Info("submission recovered from duplicate",
		zap.String("state", string(state)))
	s.record(state, now)
	return &Result{Outcome: OutcomeRecovered, State: state, At: now}
}

func (s *Submitter) record(state State, at time.Time) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Store(state, at); err != nil {
		s.Log.Warn("status cache write failed", zap.Error(err))
	}
}

func detailInt(details map[string]any, key string) int {
	switch v := details[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func detailFloat(details map[string]any, key string) float64 {
	switch v := details[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}
