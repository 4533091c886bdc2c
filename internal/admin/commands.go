// Package admin implements the account maintenance commands of prepaena-admin.
package admin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"prepaena_backend/internal/util"
	"text/tabwriter"
)

const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// Backend is the subset of Store the commands need.
type Backend interface {
	ListProfiles(ctx context.Context) ([]Profile, error)
	FindProfile(ctx context.Context, id string) (*Profile, error)
	FindProfileByEmail(ctx context.Context, email string) (*Profile, error)
	Counts(ctx context.Context, id string) ([]TableCount, error)
	Delete(ctx context.Context, id string, progress io.Writer) error
}

var errUsage = errors.New("usage")

const usage = `usage: prepaena-admin [-config dir] <command> [args]

commands:
  list                  list profiles
  show <id>             show a profile and its row counts
  delete <id>           delete a user and all of their data
  delete-email <email>  delete the user owning email
`

// Command is a parsed command line.
type Command struct {
	Name string
	Arg  string
}

// Parse validates the positional arguments.
func Parse(args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, fmt.Errorf("%w: missing command", errUsage)
	}
	cmd := Command{Name: args[0]}
	switch cmd.Name {
	case "list":
		if len(args) != 1 {
			return Command{}, fmt.Errorf("%w: list takes no arguments", errUsage)
		}
	case "show", "delete", "delete-email":
		if len(args) != 2 || args[1] == "" {
			return Command{}, fmt.Errorf("%w: %s takes exactly one argument", errUsage, cmd.Name)
		}
		cmd.Arg = args[1]
	default:
		return Command{}, fmt.Errorf("%w: unknown command %q", errUsage, cmd.Name)
	}
	return cmd, nil
}

// Run executes args and returns the process exit code.
func Run(ctx context.Context, backend Backend, args []string, stdout, stderr io.Writer) int {
	cmd, err := Parse(args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		fmt.Fprint(stderr, usage)
		return ExitUsage
	}
	if err := Execute(ctx, backend, cmd, stdout); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return ExitFailure
	}
	return ExitOK
}

func Execute(ctx context.Context, backend Backend, cmd Command, stdout io.Writer) error {
	switch cmd.Name {
	case "list":
		profiles, err := backend.ListProfiles(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tEMAIL\tCREATED")
		for _, p := range profiles {
			fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, p.Email, p.CreatedAt.Format(util.TimeFormat))
		}
		return w.Flush()

	case "show":
		p, err := backend.FindProfile(ctx, cmd.Arg)
		if err != nil {
			return err
		}
		counts, err := backend.Counts(ctx, p.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "id:      %s\nemail:   %s\ncreated: %s\n", p.ID, p.Email, p.CreatedAt.Format(util.TimeFormat))
		for _, c := range counts {
			fmt.Fprintf(stdout, "  %-14s %d\n", c.Table, c.Rows)
		}
		return nil

	case "delete":
		p, err := backend.FindProfile(ctx, cmd.Arg)
		if err != nil {
			return err
		}
		return deleteProfile(ctx, backend, p, stdout)

	case "delete-email":
		p, err := backend.FindProfileByEmail(ctx, cmd.Arg)
		if err != nil {
			return err
		}
		return deleteProfile(ctx, backend, p, stdout)
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd.Name)
}

func deleteProfile(ctx context.Context, backend Backend, p *Profile, stdout io.Writer) error {
	fmt.Fprintf(stdout, "deleting %s (%s)\n", p.ID, p.Email)
	if err := backend.Delete(ctx, p.ID, stdout); err != nil {
		return err
	}
	fmt.Fprintln(stdout, "done")
	return nil
}
