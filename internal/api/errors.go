package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// Kind classifies a failed call.
type Kind int

const (
	KindServer Kind = iota
	KindNetwork
	KindNotFound
	KindUnauthorized
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindNotFound:
		return "not-found"
	case KindUnauthorized:
		return "unauthorized"
	case KindValidation:
		return "validation"
	default:
		return "server"
	}
}

// Error is returned by every Client method on failure.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	// ServerMessage is the "error" field of the response body, empty when the
	// body had none.
	ServerMessage string
	Fields        map[string]string
	Err           error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String() + " error"
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the classification of err. Errors not produced by this
// package count as server failures.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindServer
}

// Message returns the server supplied message carried by err, if any.
func Message(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// IsNotFound reports whether err is a 404.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsUnauthorized reports whether err is a 401 or 403.
func IsUnauthorized(err error) bool { return KindOf(err) == KindUnauthorized }

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// classify builds the error for a non-2xx response.
func classify(status int, body []byte) *Error {
	var parsed errorBody
	_ = json.Unmarshal(body, &parsed)

	msg := strings.TrimSpace(parsed.Error)
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	if msg == "" {
		msg = http.StatusText(status)
	}

	e := &Error{Status: status, Message: msg, ServerMessage: strings.TrimSpace(parsed.Error)}
	switch {
	case status == http.StatusNotFound:
		e.Kind = KindNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Kind = KindUnauthorized
	case status >= 400 && status < 500 && len(parsed.Fields) > 0:
		e.Kind = KindValidation
		e.Fields = parsed.Fields
	default:
		e.Kind = KindServer
	}
	return e
}
