package cli

import (
	"context"

	flag "github.com/spf13/pflag"
)

func (a *app) cmdLinks() *Command {
	flags := flag.NewFlagSet("links", flag.ContinueOnError)

	return &Command{
		Flags: flags,
		Usage: "links <id>",
		Short: "List the notes a note links to",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) < 1 {
				return errMissingNoteID
			}

			id, err := parseNoteID(args[0])
			if err != nil {
				return err
			}

			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}

			linked, err := db.NoteLinks(ctx, id)
			if err != nil {
				return err
			}

			for _, note := range linked {
				o.Println(formatNoteLine(note))
			}

			return nil
		},
	}
}
