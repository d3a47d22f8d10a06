package cli

import (
	"context"

	flag "github.com/spf13/pflag"
)

func (a *app) cmdPrintConfig() *Command {
	flags := flag.NewFlagSet("print-config", flag.ContinueOnError)

	return &Command{
		Flags: flags,
		Usage: "print-config",
		Short: "Show resolved configuration",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			formatted, err := FormatConfig(a.cfg)
			if err != nil {
				return err
			}

			o.Println(formatted)

			o.Println("")
			o.Println("# Sources:")

			if a.cfg.Sources.Global != "" {
				o.Println("#   global:", a.cfg.Sources.Global)
			}

			if a.cfg.Sources.Explicit != "" {
				o.Println("#   explicit:", a.cfg.Sources.Explicit)
			}

			if a.cfg.Sources.Global == "" && a.cfg.Sources.Explicit == "" {
				o.Println("#   (using defaults only)")
			}

			return nil
		},
	}
}
