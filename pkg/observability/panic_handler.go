package observability

import (
	"fmt"
	"runtime/debug"

	"github.com/sirupsen/logrus"
)

// RecoverPanic recovers from a panic and logs it with the stack trace.
//
// Usage in defer statements:
//
//	func riskyOperation() {
//	    defer observability.RecoverPanic(logger, "risky operation")
//	    // ... code that might panic
//	}
//
// The panic is not re-raised.
func RecoverPanic(logger *logrus.Logger, context string) {
	if r := recover(); r != nil {
		logPanic(logger, context, r)
	}
}

// RecoverPanicToError recovers from a panic and stores it in *errp
//
//	func op() (err error) {
//	    defer observability.RecoverPanicToError(logger, "op", &err)
//	    ...
//	}
func RecoverPanicToError(logger *logrus.Logger, context string, errp *error) {
	if r := recover(); r != nil {
		logPanic(logger, context, r)
		if errp != nil {
			*errp = fmt.Errorf("panic in %s: %v", context, r)
		}
	}
}

func logPanic(logger *logrus.Logger, context string, r interface{}) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger.WithFields(logrus.Fields{
		"panic":   r,
		"stack":   string(debug.Stack()),
		"context": context,
	}).Error("PANIC recovered")
}
