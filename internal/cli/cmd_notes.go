package cli

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/bear-query/pkg/bearquery"
)

func (a *app) cmdNotes() *Command {
	flags := flag.NewFlagSet("notes", flag.ContinueOnError)
	limit := flags.Uint("limit", 0, "maximum notes to list (default 10)")
	noLimit := flags.Bool("no-limit", false, "list every note")
	trashed := flags.Bool("trashed", false, "include trashed notes")
	archived := flags.Bool("archived", false, "include archived notes")
	all := flags.Bool("all", false, "include trashed and archived notes")

	return &Command{
		Flags: flags,
		Usage: "notes [flags]",
		Short: "List notes, most recently modified first",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			q := bearquery.NewNotesQuery()

			switch {
			case *noLimit:
				q = q.NoLimit()
			case flags.Changed("limit"):
				q = q.Limit(*limit)
			case a.cfg.Limit != 0:
				q = q.Limit(a.cfg.Limit)
			}

			if *all {
				q = q.IncludeAll()
			}

			if *trashed {
				q = q.IncludeTrashed()
			}

			if *archived {
				q = q.IncludeArchived()
			}

			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}

			notes, err := db.Notes(ctx, q)
			if err != nil {
				return err
			}

			for _, note := range notes {
				o.Println(formatNoteLine(note))
			}

			return nil
		},
	}
}
