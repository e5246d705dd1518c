package cli

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/platinummonkey/subdesk/pkg/plans"
	"github.com/platinummonkey/subdesk/pkg/records"
	"github.com/platinummonkey/subdesk/pkg/subscribers"
)

func newListCommand(app *App) *Command {
	cmd := &Command{
		Name:        "list",
		Description: "List all subscribers",
		Flags:       flag.NewFlagSet("list", flag.ContinueOnError),
	}
	cmd.Flags.SetOutput(app.Out)

	cmd.Run = func(ctx context.Context, args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		printSubscribers(app.Out, app.Registry.ListAll())
		return nil
	}
	return cmd
}

func newPlansCommand(app *App) *Command {
	cmd := &Command{
		Name:        "plans",
		Description: "List available plans",
		Flags:       flag.NewFlagSet("plans", flag.ContinueOnError),
	}
	cmd.Flags.SetOutput(app.Out)

	cmd.Run = func(ctx context.Context, args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		for i, p := range app.Registry.Catalog().Plans() {
			fmt.Fprintf(app.Out, "%d. %s\n", i+1, p)
		}
		return nil
	}
	return cmd
}

func newAddCommand(app *App) *Command {
	cmd := &Command{
		Name:        "add",
		Description: "Add a subscriber",
		Flags:       flag.NewFlagSet("add", flag.ContinueOnError),
	}
	cmd.Flags.SetOutput(app.Out)

	name := cmd.Flags.String("name", "", "Subscriber name")
	phone := cmd.Flags.String("phone", "", "Phone number")
	planIndex := cmd.Flags.Int("plan", 1, "Plan number, as shown by the plans command")
	usage := cmd.Flags.Float64("usage", 0, "Data already used, in GB")

	cmd.Run = func(ctx context.Context, args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		if *name == "" || *phone == "" {
			return fmt.Errorf("name and phone are required")
		}

		plan, err := app.Registry.LookupPlanByIndex(*planIndex)
		if err != nil {
			return err
		}

		sub, err := app.Registry.Create(ctx, subscribers.Params{
			Name:         *name,
			PhoneNumber:  *phone,
			Plan:         plan,
			InitialUsage: *usage,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(app.Out, "Added %s\n", sub)
		return nil
	}
	return cmd
}

func newEditCommand(app *App) *Command {
	cmd := &Command{
		Name:        "edit",
		Description: "Edit a subscriber's phone, plan or data usage",
		Flags:       flag.NewFlagSet("edit", flag.ContinueOnError),
	}
	cmd.Flags.SetOutput(app.Out)

	user := cmd.Flags.Int("user", 0, "Subscriber number, as shown by the list command")
	phone := cmd.Flags.String("phone", "", "New phone number")
	planIndex := cmd.Flags.Int("plan", 0, "New plan number")
	usage := cmd.Flags.Float64("usage", 0, "Data used in GB; overrides the current value without a quota check")

	cmd.Run = func(ctx context.Context, args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}

		var req records.EditRequest
		if isFlagSet(cmd.Flags, "phone") {
			req.PhoneNumber = phone
		}
		if isFlagSet(cmd.Flags, "plan") {
			plan, err := app.Registry.LookupPlanByIndex(*planIndex)
			if err != nil {
				return err
			}
			req.Plan = plan
		}
		if isFlagSet(cmd.Flags, "usage") {
			req.DataUsed = usage
		}

		sub, err := app.Registry.Edit(ctx, *user, req)
		if err != nil {
			return err
		}

		fmt.Fprintf(app.Out, "Updated %s\n", sub)
		return nil
	}
	return cmd
}

func newUsageCommand(app *App) *Command {
	cmd := &Command{
		Name:        "usage",
		Description: "Record data usage against a subscriber's quota",
		Flags:       flag.NewFlagSet("usage", flag.ContinueOnError),
	}
	cmd.Flags.SetOutput(app.Out)

	user := cmd.Flags.Int("user", 0, "Subscriber number, as shown by the list command")
	amount := cmd.Flags.Float64("amount", 0, "Data used, in GB")

	cmd.Run = func(ctx context.Context, args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}

		sub, err := app.Registry.RecordUsage(ctx, *user, *amount)
		if subscribers.IsQuotaExceeded(err) {
			fmt.Fprintf(app.Out, "%s has exceeded the internet limit!\n", sub.Name())
			return err
		}
		if err != nil {
			return err
		}

		if remaining, limited := sub.Remaining(); limited {
			fmt.Fprintf(app.Out, "%s: %g GB used, %g GB remaining\n", sub.Name(), sub.DataUsed(), remaining)
		} else {
			fmt.Fprintf(app.Out, "%s: %g GB used\n", sub.Name(), sub.DataUsed())
		}
		return nil
	}
	return cmd
}

// printSubscribers writes the numbered listing used by list, menu and watch
func printSubscribers(w io.Writer, subs []*subscribers.Subscriber) {
	if len(subs) == 0 {
		fmt.Fprintln(w, "No users found.")
		return
	}
	fmt.Fprintln(w, "All users:")
	for i, s := range subs {
		fmt.Fprintf(w, "%d. %s\n", i+1, s)
	}
}

func printPlanChoices(w io.Writer, catalog *plans.Catalog) {
	for i, p := range catalog.Plans() {
		fmt.Fprintf(w, "%d. %s\n", i+1, p.Name)
	}
}

func isFlagSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
