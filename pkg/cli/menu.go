package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/platinummonkey/subdesk/pkg/plans"
	"github.com/platinummonkey/subdesk/pkg/records"
	"github.com/platinummonkey/subdesk/pkg/subscribers"
)

const (
	msgInvalidChoice = "Invalid choice. Please enter a valid option."
	msgInvalidUser   = "Invalid user number."
)

func newMenuCommand(app *App) *Command {
	cmd := &Command{
		Name:        "menu",
		Description: "Interactive menu (default)",
		Flags:       flag.NewFlagSet("menu", flag.ContinueOnError),
	}
	cmd.Flags.SetOutput(app.Out)

	cmd.Run = func(ctx context.Context, args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		m := newMenu(ctx, app)
		return m.run(ctx)
	}
	return cmd
}

// menu is one interactive session reading operator input line by line
type menu struct {
	app   *App
	ctx   context.Context
	lines chan string
	done  chan struct{} // closed when the reader exits
	err   error         // valid once lines is closed
}

// newMenu starts reading app.In in the background so a prompt can be
// abandoned when ctx is cancelled. Cancelling ctx also stops the reader once
// the menu is done with it.
func newMenu(ctx context.Context, app *App) *menu {
	m := &menu{app: app, ctx: ctx, lines: make(chan string), done: make(chan struct{})}
	go func() {
		defer close(m.done)
		defer close(m.lines)
		scanner := bufio.NewScanner(app.In)
		for scanner.Scan() {
			select {
			case m.lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		m.err = scanner.Err()
	}()
	return m
}

func (m *menu) run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		m.println("\n--- Menu ---")
		m.println("1. View all users")
		m.println("2. Add new user")
		m.println("3. Edit user")
		m.println("4. Exit")
		m.printf("Enter your choice: ")

		choice, ok := m.readLine()
		if !ok {
			m.println()
			return m.inputErr()
		}

		switch choice {
		case "1":
			printSubscribers(m.app.Out, m.app.Registry.ListAll())
		case "2":
			if !m.addUser(ctx) {
				return m.inputErr()
			}
		case "3":
			if !m.editUser(ctx) {
				return m.inputErr()
			}
		case "4":
			m.println("Exiting program...")
			return nil
		default:
			m.println(msgInvalidChoice)
		}
	}
}

// addUser walks through the add prompts. A bad number aborts the add without
// touching the registry. It returns false when input ran out.
func (m *menu) addUser(ctx context.Context) bool {
	m.println("Enter the name of the new user:")
	name, ok := m.readLine()
	if !ok {
		return false
	}

	m.println("Enter the phone number of the new user (e.g., +38 099 123 4567):")
	phone, ok := m.readLine()
	if !ok {
		return false
	}

	m.println("Enter the number of GB used by the user:")
	usageText, ok := m.readLine()
	if !ok {
		return false
	}
	used, err := parseUsage(usageText)
	if err != nil {
		m.println("Invalid data usage. User not added.")
		return true
	}

	m.println("Choose a tariff plan for the user:")
	printPlanChoices(m.app.Out, m.app.Registry.Catalog())
	planText, ok := m.readLine()
	if !ok {
		return false
	}
	plan, err := m.lookupPlan(planText)
	if err != nil {
		m.println(msgInvalidChoice)
		return true
	}

	_, err = m.app.Registry.Create(ctx, subscribers.Params{
		Name:         name,
		PhoneNumber:  phone,
		Plan:         plan,
		InitialUsage: used,
	})
	if err != nil {
		m.printf("Could not add user: %v\n", err)
		return true
	}

	m.println("New user added successfully.")
	return true
}

// editUser walks through the edit prompts. Blank or unparseable answers keep
// the current value. It returns false when input ran out.
func (m *menu) editUser(ctx context.Context) bool {
	m.println("Enter the number of the user to edit:")
	printSubscribers(m.app.Out, m.app.Registry.ListAll())
	indexText, ok := m.readLine()
	if !ok {
		return false
	}

	index, err := strconv.Atoi(indexText)
	if err != nil {
		m.println(msgInvalidUser)
		return true
	}
	sub, err := m.app.Registry.Subscriber(index)
	if err != nil {
		m.println(msgInvalidUser)
		return true
	}

	m.printf("Editing user: %s\n", sub.Name())

	var req records.EditRequest

	m.printf("Enter new phone number (current: %s):\n", sub.PhoneNumber())
	phone, ok := m.readLine()
	if !ok {
		return false
	}
	if phone != "" {
		req.PhoneNumber = &phone
	}

	m.printf("Choose new tariff plan (current: %s):\n", planLabel(sub.Plan()))
	printPlanChoices(m.app.Out, m.app.Registry.Catalog())
	planText, ok := m.readLine()
	if !ok {
		return false
	}
	if plan, err := m.lookupPlan(planText); err == nil {
		req.Plan = plan
	}

	m.printf("Enter new internet usage in GB (current: %g GB):\n", sub.DataUsed())
	usageText, ok := m.readLine()
	if !ok {
		return false
	}
	if used, err := parseUsage(usageText); err == nil {
		req.DataUsed = &used
	}

	if _, err := m.app.Registry.Edit(ctx, index, req); err != nil {
		m.printf("Could not update user: %v\n", err)
		return true
	}

	m.println("User data updated successfully.")
	return true
}

func (m *menu) lookupPlan(text string) (*plans.Plan, error) {
	i, err := strconv.Atoi(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", plans.ErrInvalidChoice, text)
	}
	return m.app.Registry.LookupPlanByIndex(i)
}

func (m *menu) readLine() (string, bool) {
	select {
	case line, ok := <-m.lines:
		if !ok {
			return "", false
		}
		return strings.TrimSpace(line), true
	case <-m.ctx.Done():
		return "", false
	}
}

// inputErr reports a read failure once input has ended
func (m *menu) inputErr() error {
	select {
	case _, ok := <-m.lines:
		if !ok {
			return m.err
		}
	default:
	}
	return nil
}

func (m *menu) println(a ...any) {
	fmt.Fprintln(m.app.Out, a...)
}

func (m *menu) printf(format string, a ...any) {
	fmt.Fprintf(m.app.Out, format, a...)
}

func parseUsage(text string) (float64, error) {
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid data usage: %s", text)
	}
	if v < 0 {
		return 0, subscribers.ErrNegativeUsage
	}
	return v, nil
}

func planLabel(p *plans.Plan) string {
	if p == nil {
		return "none"
	}
	return p.Name
}
