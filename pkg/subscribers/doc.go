// Package subscribers models customer records and data usage accounting.
//
// RecordUsage enforces the plan's data quota by rejecting any increment that
// would push usage past it; the increment is never partially applied.
// Rejections notify registered listeners synchronously, in registration order,
// before RecordUsage returns. SetUsage is the administrative override used by
// the edit flow and bypasses both the check and the listeners.
package subscribers
