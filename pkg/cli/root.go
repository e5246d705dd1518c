package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/subdesk/pkg/records"
)

// Command represents a CLI command
type Command struct {
	Name        string
	Description string
	Run         func(ctx context.Context, args []string) error
	Subcommands map[string]*Command
	Flags       *flag.FlagSet
}

// App is the state shared by every subcommand
type App struct {
	Registry *records.Registry
	Log      *logrus.Logger
	In       io.Reader
	Out      io.Writer

	// WatchPath is the record file the watch command follows. Empty when the
	// configured store is not file backed.
	WatchPath string

	// AuditDir is where the audit trail is written; empty when auditing is off
	AuditDir string

	// ExportMetrics, when set, runs on MetricsSchedule while watch is active
	ExportMetrics   func() error
	MetricsSchedule string
}

// NewRootCommand creates the root command
func NewRootCommand(app *App) *Command {
	if app.In == nil {
		app.In = os.Stdin
	}
	if app.Out == nil {
		app.Out = os.Stdout
	}
	if app.Log == nil {
		app.Log = logrus.New()
	}

	root := &Command{
		Name:        "subdesk",
		Description: "Subdesk - subscriber and plan record manager",
		Subcommands: make(map[string]*Command),
		Flags:       flag.NewFlagSet("subdesk", flag.ContinueOnError),
	}

	// Add subcommands
	root.Subcommands["menu"] = newMenuCommand(app)
	root.Subcommands["list"] = newListCommand(app)
	root.Subcommands["plans"] = newPlansCommand(app)
	root.Subcommands["add"] = newAddCommand(app)
	root.Subcommands["edit"] = newEditCommand(app)
	root.Subcommands["usage"] = newUsageCommand(app)
	root.Subcommands["watch"] = newWatchCommand(app)
	root.Subcommands["history"] = newHistoryCommand(app)

	root.Run = root.Subcommands["menu"].Run
	root.Flags.SetOutput(app.Out)

	return root
}

// Execute runs the command with the process arguments
func (c *Command) Execute(ctx context.Context) error {
	return c.ExecuteArgs(ctx, os.Args[1:])
}

// ExecuteArgs runs the command with args. No arguments runs the root
// command's own Run, which is the interactive menu.
func (c *Command) ExecuteArgs(ctx context.Context, args []string) error {
	if len(args) == 0 {
		if c.Run != nil {
			return c.Run(ctx, nil)
		}
		return c.usage()
	}

	// Check for help flag
	if args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		return c.usage()
	}

	// Check for subcommand
	if subcmd, ok := c.Subcommands[args[0]]; ok {
		return subcmd.Run(ctx, args[1:])
	}

	return fmt.Errorf("unknown command: %s", args[0])
}

// usage prints the command usage
func (c *Command) usage() error {
	out := c.Flags.Output()
	fmt.Fprintf(out, "Usage: %s [command] [args]\n\n", c.Name)
	fmt.Fprintf(out, "Commands:\n")

	names := make([]string, 0, len(c.Subcommands))
	for name := range c.Subcommands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %-15s %s\n", name, c.Subcommands[name].Description)
	}
	return nil
}
