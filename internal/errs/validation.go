package errs

import "fmt"

// Validation is the recoverable, user-facing outcome of a rejected login
// attempt. FieldErrors is keyed by input field name. NeedsCaptcha tells the
// caller to render a fresh challenge alongside the errors.
type Validation struct {
	FieldErrors  map[string]string
	NeedsCaptcha bool
}

func (e *Validation) Error() string {
	// field contents stay out of logs
	return fmt.Sprintf("validation failed on %d field(s)", len(e.FieldErrors))
}
