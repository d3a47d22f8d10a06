package cli

import (
	"context"

	flag "github.com/spf13/pflag"
)

func (a *app) cmdTags() *Command {
	flags := flag.NewFlagSet("tags", flag.ContinueOnError)

	return &Command{
		Flags: flags,
		Usage: "tags",
		Short: "List all tags, sorted by name",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}

			tags, err := db.Tags(ctx)
			if err != nil {
				return err
			}

			for _, tag := range tags.All() {
				o.Printf("%-6s %-16s %s\n", tag.ID, formatTime(tag.Modified), tag.Name)
			}

			return nil
		},
	}
}
