package entity

import "errors"

// ErrInvalidTransition marks a status change the workflow does not allow.
var ErrInvalidTransition = errors.New("invalid status transition")
