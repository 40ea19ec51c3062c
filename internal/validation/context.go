package validation

import (
	apperrors "taskmanager-core/internal/errors"
)

// ValidationContext collects validation failures so independent checks all
// run even when earlier ones fail. Failures are recorded in invocation order;
// no check is skipped because a previous one failed.
//
// Typical usage:
//
//	ctx := validation.NewContext()
//	ctx.Validate(func() error { _, err := validation.UsernameFormat(username); return err })
//	ctx.Validate(func() error { _, err := validation.EmailFormat(email); return err })
//	if err := ctx.Err(); err != nil {
//	    return err
//	}
type ValidationContext struct {
	errs []*apperrors.Error
}

// NewContext creates an empty validation context.
func NewContext() *ValidationContext {
	return &ValidationContext{}
}

// Validate invokes check. On failure the error is captured and false is
// returned; on success true is returned.
func (c *ValidationContext) Validate(check func() error) bool {
	if err := check(); err != nil {
		c.capture(err)
		return false
	}
	return true
}

// ValidateString invokes a string-producing check, capturing the failure and
// returning the normalized value when the check passes.
func (c *ValidationContext) ValidateString(check func() (string, error)) (string, bool) {
	value, err := check()
	if err != nil {
		c.capture(err)
		return "", false
	}
	return value, true
}

// AddError appends an error to the collected list.
func (c *ValidationContext) AddError(err *apperrors.Error) {
	if err != nil {
		c.errs = append(c.errs, err)
	}
}

// HasErrors reports whether any failures have been collected.
func (c *ValidationContext) HasErrors() bool { return len(c.errs) > 0 }

// Errors returns the collected failures in discovery order.
func (c *ValidationContext) Errors() []*apperrors.Error {
	out := make([]*apperrors.Error, len(c.errs))
	copy(out, c.errs)
	return out
}

// ClearErrors resets the collected list.
func (c *ValidationContext) ClearErrors() { c.errs = nil }

// Err returns nil when every check passed, otherwise a Collection wrapping
// all collected errors in discovery order. Call it once at the end of the
// validation scope.
func (c *ValidationContext) Err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return apperrors.NewCollection(c.errs)
}

func (c *ValidationContext) capture(err error) {
	if e, ok := apperrors.As(err); ok {
		c.errs = append(c.errs, e)
		return
	}
	c.errs = append(c.errs, apperrors.NewValidation(err.Error()))
}
