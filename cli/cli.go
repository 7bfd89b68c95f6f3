// Package cli provides the command-line interface for managing quotation
// templates and exporting them as PDF.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/lvillar/doclayout/config"
)

// Version information
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// osExit is a variable for os.Exit to allow testing
var osExit = os.Exit

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// App runs commands against an environment.
type App struct {
	Env    *Env
	Prompt Prompter
	Out    io.Writer
	Err    io.Writer
}

type command struct {
	summary string
	run     func(a *App, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"list":      {"List the stored templates", (*App).list},
	"show":      {"Print a template as JSON", (*App).show},
	"create":    {"Create a template from the DEMO layout or blank", (*App).create},
	"duplicate": {"Copy a template under a new name", (*App).duplicate},
	"rename":    {"Rename a template", (*App).rename},
	"delete":    {"Delete a template", (*App).delete},
	"activate":  {"Mark a template as the one used for new documents", (*App).activate},
	"arrange":   {"Move elements to their canonical positions", (*App).arrange},
	"preview":   {"Print the text elements with tokens filled in", (*App).preview},
	"export":    {"Render a template as PDF", (*App).export},
}

// errUsage marks errors caused by bad command-line arguments.
var errUsage = errors.New("usage error")

// Run executes the CLI with the given arguments.
// This is the main entry point for the CLI.
func Run(args []string) {
	global := flag.NewFlagSet("doclayout", flag.ContinueOnError)
	configPath := global.String("config", "", "Path to the YAML configuration file")
	global.Usage = func() { usage(os.Stdout) }
	if err := global.Parse(args[1:]); err != nil {
		osExit(exitUsage)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		osExit(exitError)
		return
	}

	ctx := context.Background()
	env, err := NewEnv(ctx, cfg, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		osExit(exitError)
		return
	}

	app := &App{Env: env, Prompt: SurveyPrompter{}, Out: os.Stdout, Err: os.Stderr}
	if code := app.Execute(ctx, global.Args()); code != exitOK {
		osExit(code)
	}
}

// Execute runs the command named by args[0] and returns the exit code.
func (a *App) Execute(ctx context.Context, args []string) int {
	if len(args) == 0 {
		usage(a.Out)
		return exitUsage
	}

	name := args[0]
	switch name {
	case "version":
		fmt.Fprintf(a.Out, "doclayout version %s\n", Version)
		fmt.Fprintf(a.Out, "Build time: %s\n", BuildTime)
		return exitOK
	case "help", "-h", "--help":
		usage(a.Out)
		return exitOK
	}

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(a.Err, "Unknown command: %s\n\n", name)
		usage(a.Err)
		return exitUsage
	}

	if err := cmd.run(a, ctx, args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(a.Err, "Error: %v\n", err)
		if errors.Is(err, errUsage) {
			return exitUsage
		}
		return exitError
	}
	return exitOK
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "doclayout - quotation template editor and PDF exporter\n\n")
	fmt.Fprintf(w, "Usage: doclayout [-config file.yaml] <command> [options] [args]\n\n")
	fmt.Fprintln(w, "Commands:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-10s %s\n", name, commands[name].summary)
	}
	fmt.Fprintf(w, "  %-10s %s\n", "version", "Show version information")
	fmt.Fprintf(w, "  %-10s %s\n", "help", "Show this help message")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Missing template names are asked for interactively.")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  doclayout create \"Mi Plantilla\"")
	fmt.Fprintln(w, "  doclayout preview -values datos.json \"Mi Plantilla\"")
	fmt.Fprintln(w, "  doclayout export -quote cotizacion.json -o cotizacion.pdf \"Mi Plantilla\"")
}
