package adcopy

import "fmt"

// ValidationError reports malformed input to the normalizer, such as an
// empty facet list.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// InsufficientContentError reports that fewer compliant assets survived
// normalization than the platform minimum. The caller decides whether to
// abort or to re-request content; this package never pads.
type InsufficientContentError struct {
	Kind string // "headline" or "description"
	Got  int
	Want int
}

func (e *InsufficientContentError) Error() string {
	return fmt.Sprintf("insufficient content: %d %ss after normalization, need at least %d", e.Got, e.Kind, e.Want)
}

// LengthConstraintError reports an over-length candidate that was rejected
// because truncation is disabled and dropping it left too few assets.
type LengthConstraintError struct {
	Kind   string
	Text   string
	Length int
	Limit  int
}

func (e *LengthConstraintError) Error() string {
	return fmt.Sprintf("length constraint: %s %q is %d characters, limit is %d and truncation is disabled", e.Kind, e.Text, e.Length, e.Limit)
}
