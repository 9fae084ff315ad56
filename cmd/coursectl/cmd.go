package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-course-portal/api"
	ierrors "github.com/jrsteele09/go-course-portal/internal/errors"
	"github.com/jrsteele09/go-course-portal/portal"
	"github.com/jrsteele09/go-course-portal/session"
	"github.com/jrsteele09/go-course-portal/users"
	"golang.org/x/term"
)

const binaryName = "coursectl"

// Version is set at build time with -ldflags "-X main.Version=..."
var Version = "dev"

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	appName string
	client  *api.Client
	manager *session.Manager
	guard   *portal.Guard
	router  *portal.Router

	out    io.Writer
	colour bool
}

func newCommandLine(appName string, client *api.Client, manager *session.Manager) *commandLine {
	return &commandLine{
		appName: appName,
		client:  client,
		manager: manager,
		guard:   portal.NewGuard(),
		router:  portal.NewRouter(),
		out:     os.Stdout,
	}
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  login [-username USERNAME] [-password PASSWORD] - sign in")
	fmt.Fprintln(cli.out, "  register -username USERNAME -email EMAIL -first NAME -last NAME - create an account and sign in")
	fmt.Fprintln(cli.out, "  logout - sign out and forget the stored tokens")
	fmt.Fprintln(cli.out, "  whoami - show the signed in user")
	fmt.Fprintln(cli.out, "  nav [-path PATH] - show the navigation for the signed in user")
	fmt.Fprintln(cli.out, "  passwd - change the password")
	fmt.Fprintln(cli.out, "  profile [-email EMAIL] [-first NAME] [-last NAME] [-phone PHONE] [-dob YYYY-MM-DD] [-address ADDRESS] - show or update the profile")
	fmt.Fprintln(cli.out, "  courses list|active|get|create|update|delete|students|enroll|unenroll|activate|deactivate - manage courses")
	fmt.Fprintln(cli.out, "  students list|active|search|by-course|get|create|update|status|delete|enroll|unenroll|enrollments - manage students")
	fmt.Fprintln(cli.out, "  me show|update|enroll|courses - the signed in student's record")
	fmt.Fprintln(cli.out, "  version - print the version")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	cmd, rest := args[1], args[2:]
	switch cmd {
	case "login":
		return cli.login(ctx, rest)
	case "register":
		return cli.register(ctx, rest)
	case "logout":
		return cli.logout(ctx)
	case "version":
		cli.version()
		return nil
	case "help", "-h", "-help", "--help":
		cli.printUsage()
		return errHelp
	}

	user, surface, err := cli.requireSession(ctx)
	if err != nil {
		return err
	}

	switch cmd {
	case "whoami":
		return cli.whoami(user, surface)
	case "nav":
		return cli.nav(rest, user, surface)
	case "passwd":
		return cli.passwd(ctx)
	case "profile":
		return cli.profile(ctx, rest)
	case "courses":
		return cli.courses(ctx, rest)
	case "students":
		return cli.students(ctx, rest)
	case "me":
		return cli.me(ctx, rest)
	default:
		cli.printUsage()
		return errHelp
	}
}

// requireSession restores the session from the stored tokens and applies
// the route guard before any protected command runs.
func (cli *commandLine) requireSession(ctx context.Context) (*users.User, portal.Surface, error) {
	state := cli.manager.Restore(ctx)
	decision := cli.guard.Evaluate(state)
	if !decision.Render() {
		return nil, portal.Surface{}, fmt.Errorf("%w: run \"%s login\" first", ierrors.ErrNotAuthenticated, binaryName)
	}
	return state.User, cli.router.Surface(state.User), nil
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// parseFlags parses args, turning -h into errHelp after printing the usage
func (cli *commandLine) parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			cli.flagUsage(fs)
			return errHelp
		}
		return err
	}
	return nil
}

func (cli *commandLine) flagUsage(fs *flag.FlagSet) {
	fmt.Fprintf(cli.out, "Usage of %s:\n", fs.Name())
	fs.SetOutput(cli.out)
	fs.PrintDefaults()
	fs.SetOutput(io.Discard)
}

// setFlags returns the names of the flags given on the command line
func setFlags(fs *flag.FlagSet) map[string]bool {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	return set
}

func parseID(kind, s string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s id %q: %w", kind, s, ierrors.ErrInvalidInput)
	}
	return id, nil
}

// positional returns the first n positional arguments of fs or errHelp
func (cli *commandLine) positional(fs *flag.FlagSet, names ...string) ([]string, error) {
	if fs.NArg() < len(names) {
		fmt.Fprintf(cli.out, "Usage: %s %s\n", fs.Name(), strings.ToUpper(strings.Join(names, " ")))
		return nil, errHelp
	}
	return fs.Args()[:len(names)], nil
}

func (cli *commandLine) promptPassword(label string) (string, error) {
	fmt.Fprintf(cli.out, "%s:", label)
	pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}
