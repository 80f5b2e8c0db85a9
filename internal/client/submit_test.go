package client

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"absensi/internal/geo"
)

type fakeBackend struct {
	ack      *SubmitAck
	err      error
	checkIns int
	outs     int
}

func (f *fakeBackend) CheckIn(ctx context.Context, p SubmitPayload) (*SubmitAck, error) {
	f.checkIns++
	return f.ack, f.err
}

func (f *fakeBackend) CheckOut(ctx context.Context, p SubmitPayload) (*SubmitAck, error) {
	f.outs++
	return f.ack, f.err
}

type memKV map[string]string

func (m memKV) Get(key string) (string, error) { return m[key], nil }
func (m memKV) Set(key, value string) error    { m[key] = value; return nil }

func newTestSubmitter(backend Backend, kv memKV) *Submitter {
	s := NewSubmitter(backend, NewStatusCache(kv), nil)
	s.Now = func() time.Time { return time.Date(2026, time.March, 10, 8, 0, 0, 0, wib) }
	return s
}

func validSubmission() Submission {
	return Submission{
		Sample: geo.Sample{
			Point:      geo.Point{Latitude: -6.2, Longitude: 106.8},
			CapturedAt: time.Now(),
		},
		PhotoVerified:    true,
		OvertimeResolved: true,
	}
}

func TestSubmitCheckInSuccessUpdatesCache(t *testing.T) {
	backend := &fakeBackend{ack: &SubmitAck{ShiftName: "Pagi"}}
	kv := memKV{}
	s := newTestSubmitter(backend, kv)

	res, err := s.Submit(context.Background(), ActionCheckIn, validSubmission())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Outcome != OutcomeSuccess || res.State != StateCheckedIn {
		t.Fatalf("result = %+v", res)
	}
	if kv[keyStatus] != "CHECKED_IN" {
		t.Fatalf("cache status = %q, want CHECKED_IN", kv[keyStatus])
	}
	if _, err := time.Parse(time.RFC3339, kv[keyTime]); err != nil {
		t.Fatalf("cache timestamp not RFC3339: %q", kv[keyTime])
	}
}

func TestSubmitSimulatedSampleNeverReachesBackend(t *testing.T) {
	backend := &fakeBackend{}
	s := newTestSubmitter(backend, memKV{})

	sub := validSubmission()
	sub.Sample.Simulated = true
	_, err := s.Submit(context.Background(), ActionCheckIn, sub)

	var failure *Failure
	if !errors.As(err, &failure) || failure.Kind != FailureGeoRejected {
		t.Fatalf("err = %v, want geo-rejected failure", err)
	}
	if backend.checkIns != 0 {
		t.Fatalf("backend was called for a simulated sample")
	}
}

func TestSubmitRequiresVerifiedPhoto(t *testing.T) {
	for _, action := range []Action{ActionCheckIn, ActionCheckOut} {
		backend := &fakeBackend{}
		s := newTestSubmitter(backend, memKV{})
		sub := validSubmission()
		sub.PhotoVerified = false

		_, err := s.Submit(context.Background(), action, sub)
		var failure *Failure
		if !errors.As(err, &failure) || failure.Kind != FailureValidation {
			t.Fatalf("%s: err = %v, want validation failure", action, err)
		}
		if backend.checkIns+backend.outs != 0 {
			t.Fatalf("%s: backend was called without a verified photo", action)
		}
	}
}

func TestSubmitCheckOutRequiresOvertimeResolution(t *testing.T) {
	s := newTestSubmitter(&fakeBackend{}, memKV{})
	sub := validSubmission()
	sub.OvertimeResolved = false

	_, err := s.Submit(context.Background(), ActionCheckOut, sub)
	var failure *Failure
	if !errors.As(err, &failure) || failure.Kind != FailureValidation {
		t.Fatalf("err = %v, want validation failure", err)
	}
}

func TestSubmitDuplicateCheckInRecovers(t *testing.T) {
	backend := &fakeBackend{err: &APIError{
		StatusCode: http.StatusConflict,
		Code:       "already_checked_in",
		Message:    "already checked in today",
	}}
	kv := memKV{}
	s := newTestSubmitter(backend, kv)

	res, err := s.Submit(context.Background(), ActionCheckIn, validSubmission())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Outcome != OutcomeRecovered || res.State != StateCheckedIn {
		t.Fatalf("result = %+v, want recovered CHECKED_IN", res)
	}
	if kv[keyStatus] != "CHECKED_IN" {
		t.Fatalf("recovery should write the cache, got %q", kv[keyStatus])
	}
}

func TestSubmitDuplicateCheckOutRecovers(t *testing.T) {
	backend := &fakeBackend{err: &APIError{
		StatusCode: http.StatusConflict,
		Code:       "already_checked_out",
		Message:    "already checked out today",
	}}
	s := newTestSubmitter(backend, memKV{})

	res, err := s.Submit(context.Background(), ActionCheckOut, validSubmission())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Outcome != OutcomeRecovered || res.State != StateCheckedOut {
		t.Fatalf("result = %+v, want recovered CHECKED_OUT", res)
	}
}

func TestSubmitOutOfRangeCarriesDistance(t *testing.T) {
	backend := &fakeBackend{err: &APIError{
		StatusCode: http.StatusForbidden,
		Code:       "out_of_range",
		Message:    "outside branch radius",
		Details:    map[string]any{"distance": float64(412), "maxRadius": float64(100)},
	}}
	kv := memKV{}
	s := newTestSubmitter(backend, kv)

	_, err := s.Submit(context.Background(), ActionCheckIn, validSubmission())
	var oor *OutOfRangeError
	if !errors.As(err, &oor) {
		t.Fatalf("err = %v, want OutOfRangeError", err)
	}
	if oor.DistanceMeters != 412 || oor.MaxRadiusMeters != 100 {
		t.Fatalf("distance/radius = %d/%.0f, want 412/100", oor.DistanceMeters, oor.MaxRadiusMeters)
	}
	if len(kv) != 0 {
		t.Fatalf("cache must not change on a rejected submission")
	}
}

func TestSubmitPermissionAndServerFailures(t *testing.T) {
	cases := []struct {
		status int
		want   FailureKind
	}{
		{http.StatusUnauthorized, FailurePermission},
		{http.StatusForbidden, FailurePermission},
		{http.StatusBadRequest, FailureValidation},
		{http.StatusInternalServerError, FailureServer},
	}
	for _, tc := range cases {
		backend := &fakeBackend{err: &APIError{StatusCode: tc.status, Code: "x", Message: "boom"}}
		s := newTestSubmitter(backend, memKV{})

		_, err := s.Submit(context.Background(), ActionCheckIn, validSubmission())
		var failure *Failure
		if !errors.As(err, &failure) || failure.Kind != tc.want {
			t.Errorf("status %d: err = %v, want kind %s", tc.status, err, tc.want)
		}
	}
}

func TestSubmitTransportErrorIsNetworkFailure(t *testing.T) {
	backend := &fakeBackend{err: errors.New("dial tcp: connection refused")}
	kv := memKV{}
	s := newTestSubmitter(backend, kv)

	_, err := s.Submit(context.Background(), ActionCheckOut, validSubmission())
	var failure *Failure
	if !errors.As(err, &failure) || failure.Kind != FailureNetwork {
		t.Fatalf("err = %v, want network failure", err)
	}
	if len(kv) != 0 {
		t.Fatalf("cache must not change on a network failure")
	}
}
