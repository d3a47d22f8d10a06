// Package cli implements the bearq command line interface on top of the
// bearquery library.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/calvinalkan/bear-query/pkg/bearquery"
)

const (
	consumedOne  = 1
	consumedTwo  = 2
	consumedNone = 0
	helpFlag     = "--help"
)

var (
	// ErrFlagRequiresArg indicates a global flag was given without its value.
	ErrFlagRequiresArg = errors.New("flag requires an argument")

	// ErrUnknownFlag indicates an unrecognized global flag.
	ErrUnknownFlag = errors.New("unknown flag")
)

// Run is the main entry point. Returns exit code.
func Run(ctx context.Context, stdin io.Reader, out, errOut io.Writer, args []string, env map[string]string) int {
	o := NewIO(out, errOut)

	if len(args) < 2 {
		printUsage(o)

		return 0
	}

	flags, err := parseGlobalFlags(args[1:])
	if err != nil {
		o.ErrPrintln("error:", err)

		return 1
	}

	cfg, err := LoadConfig(flags.configPath, env)
	if err != nil {
		o.ErrPrintln("error:", err)

		return 1
	}

	// CLI overrides win over config files.
	if flags.dbPath != "" {
		cfg.DatabasePath = flags.dbPath
	}

	if len(flags.remaining) == 0 {
		printUsage(o)

		return 0
	}

	name := flags.remaining[0]
	if name == "-h" || name == helpFlag {
		printUsage(o)

		return 0
	}

	a := &app{cfg: cfg, stdin: stdin}

	for _, cmd := range a.commands() {
		if cmd.Name() == name {
			return cmd.Run(ctx, o, flags.remaining[1:])
		}
	}

	o.ErrPrintln("error: unknown command:", name)
	printUsage(o)

	return 1
}

// app carries resolved configuration into command closures.
type app struct {
	cfg   Config
	stdin io.Reader
}

// openDB opens a handle on the configured database.
func (a *app) openDB(ctx context.Context) (*bearquery.DB, error) {
	return bearquery.Open(ctx, bearquery.Config{
		Path:        a.cfg.DatabasePath,
		BusyTimeout: time.Duration(a.cfg.BusyTimeoutMS) * time.Millisecond,
	})
}

func (a *app) commands() []*Command {
	return []*Command{
		a.cmdNotes(),
		a.cmdSearch(),
		a.cmdShow(),
		a.cmdTags(),
		a.cmdLinks(),
		a.cmdQuery(),
		a.cmdPrintConfig(),
	}
}

type globalFlags struct {
	dbPath     string
	configPath string
	remaining  []string
}

func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	idx := 0
	for idx < len(args) {
		consumed, err := parseFlag(args, idx, &flags)
		if err != nil {
			return globalFlags{}, err
		}

		if consumed == 0 {
			// Not a flag, this is the command
			flags.remaining = args[idx:]

			break
		}

		idx += consumed
	}

	return flags, nil
}

// parseFlag tries to parse a flag at args[idx]. Returns number of args consumed (0 if not a flag).
func parseFlag(args []string, idx int, flags *globalFlags) (int, error) {
	arg := args[idx]

	// --db flag (database file)
	if arg == "--db" {
		if idx+1 >= len(args) {
			return consumedNone, fmt.Errorf("%w: %s", ErrFlagRequiresArg, arg)
		}

		flags.dbPath = args[idx+1]

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "--db="); ok {
		flags.dbPath = after

		return consumedOne, nil
	}

	// -c/--config flag
	if arg == "-c" || arg == "--config" {
		if idx+1 >= len(args) {
			return consumedNone, fmt.Errorf("%w: %s", ErrFlagRequiresArg, arg)
		}

		flags.configPath = args[idx+1]

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "--config="); ok {
		flags.configPath = after

		return consumedOne, nil
	}

	// -h/--help flags
	if arg == "-h" || arg == helpFlag {
		flags.remaining = []string{helpFlag}

		return len(args) - idx, nil
	}

	// Unknown flag
	if strings.HasPrefix(arg, "-") && arg != "-" {
		return consumedNone, fmt.Errorf("%w: %s", ErrUnknownFlag, arg)
	}

	// Not a flag
	return consumedNone, nil
}

func printUsage(o *IO) {
	o.Println(`bearq - read-only queries against the Bear notes database

Usage: bearq [options] <command> [args]

Options:
  --db <path>        Database file (default: Bear's standard location)
  -c, --config       Use specified config file

Commands:`)

	a := &app{}
	for _, cmd := range a.commands() {
		o.Println(cmd.HelpLine())
	}
}
