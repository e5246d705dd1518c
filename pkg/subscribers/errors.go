package subscribers

import (
	"errors"
	"fmt"
)

// QuotaExceededError reports a rejected usage increment
type QuotaExceededError struct {
	Subscriber string
	Used       float64
	Requested  float64
	Limit      float64
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("data quota exceeded for %s: %g GB used + %g GB requested > %g GB limit",
		e.Subscriber, e.Used, e.Requested, e.Limit)
}

// IsQuotaExceeded checks if an error is a quota exceeded error
func IsQuotaExceeded(err error) bool {
	var qe *QuotaExceededError
	return errors.As(err, &qe)
}
