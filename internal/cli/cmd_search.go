package cli

import (
	"context"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/bear-query/pkg/bearquery"
)

var errMissingSearchText = errors.New("search requires a text argument")

func (a *app) cmdSearch() *Command {
	flags := flag.NewFlagSet("search", flag.ContinueOnError)
	titleOnly := flags.Bool("title", false, "match the title only")
	contentOnly := flags.Bool("content", false, "match the content only")
	caseSensitive := flags.Bool("case-sensitive", false, "match case exactly")
	limit := flags.Uint("limit", 0, "maximum notes to return (default 50)")
	noLimit := flags.Bool("no-limit", false, "return every match")
	sortField := flags.String("sort", "modified", "sort field (modified|created|title)")
	asc := flags.Bool("asc", false, "sort ascending instead of descending")
	all := flags.Bool("all", false, "include trashed and archived notes")

	return &Command{
		Flags: flags,
		Usage: "search <text> [flags]",
		Short: "Search notes by title and content",
		Long: `Search notes by substring match. The match is case-insensitive
unless --case-sensitive is given; both title and content are
searched unless --title or --content restricts the scope.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) < 1 {
				return errMissingSearchText
			}

			q := bearquery.NewSearchQuery(args[0])

			switch {
			case *titleOnly && *contentOnly:
				// Both restrictions cancel out into the default scope.
			case *titleOnly:
				q = q.Scope(bearquery.ScopeTitle)
			case *contentOnly:
				q = q.Scope(bearquery.ScopeContent)
			}

			if *caseSensitive {
				q = q.CaseSensitive()
			}

			switch {
			case *noLimit:
				q = q.NoLimit()
			case flags.Changed("limit"):
				q = q.Limit(*limit)
			}

			field, err := parseSortField(*sortField)
			if err != nil {
				return err
			}

			direction := bearquery.SortDesc
			if *asc {
				direction = bearquery.SortAsc
			}

			q = q.SortBy(field, direction)

			if *all {
				q = q.IncludeAll()
			}

			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}

			notes, err := db.Search(ctx, q)
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

func parseSortField(name string) (bearquery.SortField, error) {
	switch name {
	case "modified":
		return bearquery.SortModified, nil
	case "created":
		return bearquery.SortCreated, nil
	case "title":
		return bearquery.SortTitle, nil
	default:
		return 0, fmt.Errorf("invalid --sort value: %s (want modified|created|title)", name)
	}
}
