// Package cli is the trax command-line dashboard.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/nape-ntsoane/trax/internal/apiclient"
	"github.com/nape-ntsoane/trax/internal/auth"
	"github.com/nape-ntsoane/trax/internal/resource"
	"github.com/nape-ntsoane/trax/internal/session"
)

// Exit codes returned by Run.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

var errUsage = errors.New("usage")

type App struct {
	stdout  io.Writer
	stderr  io.Writer
	session *session.Session
	auth    *auth.Service
	res     *resource.Resources
}

type command struct {
	name    string
	summary string
	public  bool
	run     func(a *App, ctx context.Context, args []string) error
}

var commands = map[string]command{}

func register(cmds ...command) {
	for _, cmd := range cmds {
		commands[cmd.name] = cmd
	}
}

func New(client *apiclient.Client, stdout, stderr io.Writer) *App {
	return &App{
		stdout:  stdout,
		stderr:  stderr,
		session: client.Session(),
		auth:    auth.NewService(client),
		res:     resource.New(client),
	}
}

// Run executes one command and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		a.usage()
		if len(args) == 0 {
			return ExitUsage
		}
		return ExitOK
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(a.stderr, "unknown command %q\n", args[0])
		a.usage()
		return ExitUsage
	}
	if !cmd.public {
		if err := a.session.Require(); err != nil {
			fmt.Fprintln(a.stderr, "not signed in; run `trax login -email <email> -password <password>` first")
			return ExitFailure
		}
	}

	err := cmd.run(a, ctx, args[1:])
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		return ExitUsage
	case apiclient.IsNotified(err):
		return ExitFailure
	default:
		fmt.Fprintf(a.stderr, "%s: %v\n", cmd.name, err)
		return ExitFailure
	}
}

func (a *App) usage() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(a.stderr, "usage: trax <command> [flags]")
	fmt.Fprintln(a.stderr)
	for _, name := range names {
		fmt.Fprintf(a.stderr, "  %-14s %s\n", name, commands[name].summary)
	}
}

func (a *App) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

// parse parses args and reports the names of flags that were set explicitly.
func parse(fs *flag.FlagSet, args []string) (map[string]bool, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(fs.Output(), "%s: unexpected arguments: %s\n", fs.Name(), strings.Join(fs.Args(), " "))
		return nil, errUsage
	}
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set, nil
}

func required(fs *flag.FlagSet, set map[string]bool, names ...string) error {
	for _, name := range names {
		if !set[name] {
			fmt.Fprintf(fs.Output(), "%s: -%s is required\n", fs.Name(), name)
			return errUsage
		}
	}
	return nil
}
