package attendance

import "net/http"

// Business-rule error codes. Clients key recovery decisions off these
// codes, never off message text.
const (
	CodeAlreadyCheckedIn   = "already_checked_in"
	CodeAlreadyCheckedOut  = "already_checked_out"
	CodeOutOfRange         = "out_of_range"
	CodeNoBranch           = "no_branch"
	CodeNoCheckIn          = "no_check_in"
	CodeInvalidCoordinates = "invalid_coordinates"
	CodeFakeLocation       = "fake_location"
	CodeInvalidDate        = "invalid_date"
	CodePermitExists       = "permit_exists"
	CodeNotFound           = "not_found"
)

type Error struct {
	Code       string
	HTTPStatus int
	Message    string
	Details    map[string]any
}

func (e *Error) Error() string {
	return e.Message
}

func errAlreadyCheckedIn() *Error {
	return &Error{Code: CodeAlreadyCheckedIn, HTTPStatus: http.StatusBadRequest, Message: "check-in already recorded for today"}
}

func errAlreadyCheckedOut() *Error {
	return &Error{Code: CodeAlreadyCheckedOut, HTTPStatus: http.StatusBadRequest, Message: "check-out already recorded for today"}
}

func errOutOfRange(distance int, maxRadius float64) *Error {
	return &Error{
		Code:       CodeOutOfRange,
		HTTPStatus: http.StatusBadRequest,
		Message:    "outside the branch acceptance radius",
		Details:    map[string]any{"distance": distance, "maxRadius": maxRadius},
	}
}

func errNoBranch() *Error {
	return &Error{Code: CodeNoBranch, HTTPStatus: http.StatusBadRequest, Message: "user is not assigned to a branch"}
}

func errNoCheckIn() *Error {
	return &Error{Code: CodeNoCheckIn, HTTPStatus: http.StatusBadRequest, Message: "no check-in recorded for today"}
}

func errInvalidCoordinates() *Error {
	return &Error{Code: CodeInvalidCoordinates, HTTPStatus: http.StatusBadRequest, Message: "invalid coordinates provided"}
}

func errFakeLocation() *Error {
	return &Error{Code: CodeFakeLocation, HTTPStatus: http.StatusBadRequest, Message: "mock locations are not accepted"}
}

func errPermitExists() *Error {
	return &Error{Code: CodePermitExists, HTTPStatus: http.StatusBadRequest, Message: "attendance or permit already exists for this date"}
}
