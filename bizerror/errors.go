package bizerror

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")

	// ErrConcurrentModification is returned when a versioned write lost the race
	// against another writer of the same record.
	ErrConcurrentModification = errors.New("concurrent modification")
)

type BizError interface {
	Respond() *BizErrorDetail
}

type BizErrorDetail struct {
	Status  int
	Code    string
	Message string

	Data  interface{}
	Cause error
}

// FieldDetail is the data attached to field-aware errors.
type FieldDetail struct {
	Field string `json:"field"`
}

// ErrBadParam reports structurally invalid caller input (HTTP 400).
type ErrBadParam struct {
	Field string
	Cause error
}

func (e *ErrBadParam) Unwrap() error {
	return e.Cause
}
func (e *ErrBadParam) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "common.bad_param"
}
func (e *ErrBadParam) Respond() *BizErrorDetail {
	var data interface{}
	if e.Field != "" {
		data = &FieldDetail{Field: e.Field}
	}
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "common.bad_param", Message: e.Error(), Data: data, Cause: e.Cause}
}

// ErrUnprocessable reports well formed input that does not match the current
// state of the referenced records (HTTP 422).
type ErrUnprocessable struct {
	Code  string
	Field string
	Cause error
}

func (e *ErrUnprocessable) Unwrap() error {
	return e.Cause
}
func (e *ErrUnprocessable) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return e.code()
}
func (e *ErrUnprocessable) code() string {
	if e.Code == "" {
		return "common.unprocessable"
	}
	return e.Code
}
func (e *ErrUnprocessable) Respond() *BizErrorDetail {
	var data interface{}
	if e.Field != "" {
		data = &FieldDetail{Field: e.Field}
	}
	return &BizErrorDetail{Status: http.StatusUnprocessableEntity, Code: e.code(), Message: e.Error(), Data: data, Cause: e.Cause}
}

// ErrConflict reports an operation that is not allowed in the current state (HTTP 409).
type ErrConflict struct {
	Code    string
	Message string
	Data    interface{}
	Cause   error
}

func (e *ErrConflict) Unwrap() error {
	return e.Cause
}
func (e *ErrConflict) Error() string {
	return e.Message
}
func (e *ErrConflict) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: http.StatusConflict, Code: e.Code, Message: e.Message, Data: e.Data, Cause: e.Cause}
}

// ErrPersistence wraps a storage failure that happened after the in-memory
// change was already applied; the change must be treated as not saved.
type ErrPersistence struct {
	Cause error
}

func (e *ErrPersistence) Unwrap() error {
	return e.Cause
}
func (e *ErrPersistence) Error() string {
	if e.Cause != nil {
		return "persistence failure: " + e.Cause.Error()
	}
	return "persistence failure"
}
func (e *ErrPersistence) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: http.StatusInternalServerError, Code: "common.persistence_failure", Message: "failed to persist changes", Cause: e.Cause}
}
