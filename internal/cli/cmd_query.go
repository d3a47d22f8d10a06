package cli

import (
	"context"

	flag "github.com/spf13/pflag"
)

func (a *app) cmdQuery() *Command {
	flags := flag.NewFlagSet("query", flag.ContinueOnError)
	asCSV := flags.Bool("csv", false, "emit CSV instead of an aligned table")
	output := flags.String("output", "", "write the result to a file instead of stdout")

	return &Command{
		Flags: flags,
		Usage: "query [sql] [flags]",
		Short: "Run SQL against the logical views",
		Long: `Run a read-only SQL query against the logical views notes, tags,
note_tags and note_links. Without a SQL argument an interactive
shell is started.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) == 0 {
				return a.runShell(ctx, o)
			}

			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}

			table, err := db.Query(ctx, args[0])
			if err != nil {
				return err
			}

			var rendered string

			if *asCSV {
				rendered, err = renderCSV(table)
				if err != nil {
					return err
				}
			} else {
				rendered = renderTable(table)
			}

			if *output != "" {
				err = writeOutputFile(*output, rendered)
				if err != nil {
					return err
				}

				o.Println("wrote", *output)

				return nil
			}

			o.Printf("%s", rendered)

			return nil
		},
	}
}
