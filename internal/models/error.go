package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound        = errors.New("resource not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConstraint      = errors.New("constraint violation")
	ErrInternalServer  = errors.New("internal server error")
)
