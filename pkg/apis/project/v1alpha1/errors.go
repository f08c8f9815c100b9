package v1alpha1

import "errors"

// ErrInvalidConfig wraps every problem found while validating a project.
var ErrInvalidConfig = errors.New("invalid project configuration")

// ErrInvalidCheck is returned when an unknown verify check is requested.
var ErrInvalidCheck = errors.New("invalid check")

// ErrMissingField is returned when a command needs a field the project leaves empty.
var ErrMissingField = errors.New("missing required field")
