// Package records manages the ordered subscriber list shown to the operator.
//
// A Registry keeps every subscriber in memory in insertion order and writes
// the whole list back to its RecordStore after each successful create, edit
// or accepted usage increment. Subscribers are addressed by their 1-based
// position in the listing, which is also what the console menu displays.
//
// Usage increments that would exceed a plan's data quota are rejected by the
// subscriber itself. The registry counts the rejection and skips the save, so
// the store never sees a rejected value.
//
//	reg := records.NewRegistry(plans.DefaultCatalog(), store,
//		records.WithLogger(log),
//		records.WithListeners(subscribers.NewLimitNotifier(log)),
//	)
//	if err := reg.Load(ctx); err != nil {
//		return err
//	}
//	_, err := reg.RecordUsage(ctx, 1, 2.5)
//	if subscribers.IsQuotaExceeded(err) {
//		fmt.Println("limit reached")
//	}
package records
