package models

// FieldErrors maps field names to validation error messages.
type FieldErrors map[string]string

// OrNil returns nil when no errors were collected, so callers can use the
// result directly as a validity check.
func (fe FieldErrors) OrNil() FieldErrors {
	if len(fe) == 0 {
		return nil
	}
	return fe
}
