package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnavailable = errors.New("remote api unavailable")
	ErrNotFound    = errors.New("not found")
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.Code)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Code == http.StatusNotFound
}
