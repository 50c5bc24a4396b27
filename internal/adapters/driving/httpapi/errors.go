// Package httpapi serves the career operations over HTTP with echo.
package httpapi

import "errors"

// ErrMissingCareerService is returned when the career service is not provided.
var ErrMissingCareerService = errors.New("httpapi: career service is required")

// ErrMissingResumeDecoder is returned when the resume decoder is not provided.
var ErrMissingResumeDecoder = errors.New("httpapi: resume decoder is required")
