package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/bear-query/pkg/bearquery"
)

var (
	errMissingNoteID = errors.New("missing note id argument")
	errNoteNotFound  = errors.New("note not found")
)

// parseNoteID parses a numeric note id argument.
func parseNoteID(arg string) (bearquery.NoteID, error) {
	pk, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return bearquery.NoteID{}, fmt.Errorf("invalid note id: %s", arg)
	}

	return bearquery.NewNoteID(pk), nil
}

func (a *app) cmdShow() *Command {
	flags := flag.NewFlagSet("show", flag.ContinueOnError)
	metaOnly := flags.Bool("meta", false, "show metadata only, without the note body")

	return &Command{
		Flags: flags,
		Usage: "show <id> [flags]",
		Short: "Show one note with its tags",
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

			note, err := db.Note(ctx, id)
			if err != nil {
				return err
			}

			if note == nil {
				return fmt.Errorf("%w: %s", errNoteNotFound, id)
			}

			tagIDs, err := db.NoteTags(ctx, id)
			if err != nil {
				return err
			}

			tags, err := db.Tags(ctx)
			if err != nil {
				return err
			}

			o.Println("id:      ", note.ID)
			o.Println("uuid:    ", note.UniqueID)
			o.Println("title:   ", note.Title)
			o.Println("created: ", note.Created.Format(timeDisplayLayout))
			o.Println("modified:", note.Modified.Format(timeDisplayLayout))

			if names := tags.Names(tagIDs); len(names) > 0 {
				o.Println("tags:    ", strings.Join(names, ", "))
			}

			if note.Pinned {
				o.Println("pinned:   yes")
			}

			if note.Trashed {
				o.Println("trashed:  yes")
			}

			if note.Archived {
				o.Println("archived: yes")
			}

			if !*metaOnly && note.Content != nil {
				o.Println()
				o.Println(*note.Content)
			}

			return nil
		},
	}
}
