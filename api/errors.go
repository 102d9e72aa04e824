package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/vocdoni/ballotbox/log"
	"github.com/vocdoni/ballotbox/types"
)

// Error is used by handler functions to wrap errors, assigning a unique error code
// and also specifying which HTTP Status should be used.
type Error struct {
	Err        error
	Code       int
	HTTPstatus int
}

// MarshalJSON returns a JSON containing Err.Error() and Code. Field HTTPstatus is ignored.
//
// Example output: {"error":"not found: pool 0x12...","code":40010}
func (e Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(
		struct {
			Err  string `json:"error"`
			Code int    `json:"code"`
		}{
			Err:  e.Err.Error(),
			Code: e.Code,
		})
}

// Error returns the Message contained inside the APIerror
func (e Error) Error() string {
	return e.Err.Error()
}

// Unwrap exposes the wrapped error to errors.Is.
func (e Error) Unwrap() error {
	return e.Err
}

// Write serializes e as JSON with its HTTP status.
func (e Error) Write(w http.ResponseWriter) {
	msg, err := json.Marshal(e)
	if err != nil {
		log.Warn(err)
		http.Error(w, "marshal failed", http.StatusInternalServerError)
		return
	}
	if log.Level() == log.LogLevelDebug {
		log.Debugw("API error response", "error", e.Error(), "code", e.Code, "httpStatus", e.HTTPstatus)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.HTTPstatus)
	if _, err := w.Write(append(msg, '\n')); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
}

// Withf returns a copy of APIerror with the Sprintf formatted string appended at the end of e.Err
func (e Error) Withf(format string, args ...any) Error {
	return e.WithErr(fmt.Errorf(format, args...))
}

// WithErr returns a copy of APIerror with err.Error() appended at the end of e.Err
func (e Error) WithErr(err error) Error {
	return Error{
		Err:        fmt.Errorf("%w: %v", e.Err, err.Error()),
		Code:       e.Code,
		HTTPstatus: e.HTTPstatus,
	}
}

// ledgerErrors maps each ledger sentinel to its API error.
var ledgerErrors = []struct {
	sentinel error
	apiErr   Error
}{
	{types.ErrUnauthorized, ErrUnauthorized},
	{types.ErrInvalidState, ErrInvalidState},
	{types.ErrDuplicateEntry, ErrDuplicateEntry},
	{types.ErrNotFound, ErrEntityNotFound},
	{types.ErrInvalidInput, ErrInvalidInput},
	{types.ErrInsufficientBalance, ErrInsufficientBalance},
}

// ledgerError translates an error returned by the ledger. Anything outside
// the ledger taxonomy is a server fault.
func ledgerError(err error) Error {
	for _, m := range ledgerErrors {
		if errors.Is(err, m.sentinel) {
			return Error{Err: err, Code: m.apiErr.Code, HTTPstatus: m.apiErr.HTTPstatus}
		}
	}
	return ErrGenericInternalServerError.WithErr(err)
}
