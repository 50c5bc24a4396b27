package tui

import "errors"

// ErrMissingCareerService is returned when the career service is not provided.
var ErrMissingCareerService = errors.New("tui: career service is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")
