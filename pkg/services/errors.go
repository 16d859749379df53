package services

import "github.com/huddleworks/huddle-engine/pkg/models"

// ValidationError carries per-field validation messages from a rejected
// payload. It is returned before any persistence access happens.
type ValidationError struct {
	Fields models.FieldErrors
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
