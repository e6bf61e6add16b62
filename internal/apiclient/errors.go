// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a failure signalled by the backend, either through the
// response's "error" field or through a non-2xx status.
type APIError struct {
	Op      string // e.g. "GET /category/all"
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api %s: %s (status %d)", e.Op, e.Message, e.Status)
}

// Unauthorized reports whether the backend rejected the caller's token.
func (e *APIError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

// AsAPIError unwraps err into an *APIError if it is one.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsUnauthorized reports whether err is a backend 401.
func IsUnauthorized(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Unauthorized()
}

// UserMessage returns the text to show the user for err. Business errors
// carry the backend's message; anything else gets a generic one.
func UserMessage(err error) string {
	if apiErr, ok := AsAPIError(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Something went wrong, please try again."
}
