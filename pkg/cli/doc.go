// Package cli provides the subdesk command-line interface.
//
// Running subdesk with no arguments starts the interactive menu:
//
//	--- Menu ---
//	1. View all users
//	2. Add new user
//	3. Edit user
//	4. Exit
//
// The same operations are available as one-shot subcommands for scripting:
//
//	subdesk list
//	subdesk plans
//	subdesk add --name Alice --phone "+38 099 123 4567" --plan 2 --usage 0
//	subdesk edit --user 1 --plan 3
//	subdesk edit --user 1 --usage 0     # administrative reset, no quota check
//	subdesk usage --user 1 --amount 2.5 # rejected when it would exceed the plan's data quota
//	subdesk watch                       # re-list whenever the record file changes
//	subdesk history -n 50               # recent changes, when SUBDESK_AUDIT_DIR is set
//
// While watch runs, metrics are rewritten to SUBDESK_METRICS_FILE on the
// SUBDESK_METRICS_SCHEDULE cron schedule.
//
// Subscriber and plan numbers are 1-based positions as printed by list and plans.
package cli
