package calculator

import (
	"errors"
	"fmt"

	"github.com/grouptab/grouptab/internal/money"
)

// ValidationError reports a caller-fixable input problem: empty member
// set, invalid amount, duplicate or unknown member, sum mismatch. It is
// never retried automatically and its Reason is safe to show to the
// caller.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ConsistencyError reports an invariant violation on already-persisted
// data: an expense whose stored obligations do not sum to its amount.
// This indicates upstream corruption. It is surfaced distinctly from a
// ValidationError and the data is never silently corrected.
type ConsistencyError struct {
	ExpenseID string
	Expected  money.Money // the expense amount
	Actual    money.Money // sum of the stored obligations
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("expense %s: obligations sum to %s, expense amount is %s",
		e.ExpenseID, e.Actual, e.Expected)
}

// IsConsistency reports whether err is (or wraps) a ConsistencyError.
func IsConsistency(err error) bool {
	var ce *ConsistencyError
	return errors.As(err, &ce)
}
