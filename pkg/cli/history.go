package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"sort"
	"time"

	"github.com/platinummonkey/subdesk/pkg/audit"
)

// ErrAuditDisabled is returned by history when no audit directory is configured
var ErrAuditDisabled = errors.New("audit trail is not enabled (set SUBDESK_AUDIT_DIR)")

func newHistoryCommand(app *App) *Command {
	cmd := &Command{
		Name:        "history",
		Description: "Show recent record changes from the audit trail",
		Flags:       flag.NewFlagSet("history", flag.ContinueOnError),
	}
	cmd.Flags.SetOutput(app.Out)

	count := cmd.Flags.Int("n", 20, "Number of entries to show; 0 shows all")

	cmd.Run = func(ctx context.Context, args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		if app.AuditDir == "" {
			return ErrAuditDisabled
		}

		events, err := audit.ReadLogs(app.AuditDir, *count)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Fprintln(app.Out, "No history recorded.")
			return nil
		}

		for _, e := range events {
			fmt.Fprintf(app.Out, "%s  %-17s %-7s %s", e.Timestamp.Local().Format(time.DateTime), e.EventType, e.Status, e.Subscriber)
			if e.Changes != nil {
				fields := make([]string, 0, len(e.Changes.After))
				for field := range e.Changes.After {
					fields = append(fields, field)
				}
				sort.Strings(fields)
				for _, field := range fields {
					fmt.Fprintf(app.Out, "  %s: %v -> %v", field, e.Changes.Before[field], e.Changes.After[field])
				}
			}
			if amount, ok := e.Metadata["amount"]; ok {
				fmt.Fprintf(app.Out, "  amount: %v GB", amount)
			}
			fmt.Fprintln(app.Out)
		}
		return nil
	}
	return cmd
}
