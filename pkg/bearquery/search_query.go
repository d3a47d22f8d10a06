package bearquery

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// defaultSearchLimit caps a default search result set.
const defaultSearchLimit = 50

// SearchScope selects which note fields a search matches against.
type SearchScope int

const (
	// ScopeBoth matches a note when either title or content contains the
	// search text.
	ScopeBoth SearchScope = iota

	// ScopeTitle matches against the title only.
	ScopeTitle

	// ScopeContent matches against the content only.
	ScopeContent
)

// SortField selects the ordering column for search results.
type SortField int

const (
	// SortModified orders by modification time.
	SortModified SortField = iota

	// SortCreated orders by creation time.
	SortCreated

	// SortTitle orders by title.
	SortTitle
)

// SortDirection selects ascending or descending order.
type SortDirection int

const (
	// SortDesc orders descending.
	SortDesc SortDirection = iota

	// SortAsc orders ascending.
	SortAsc
)

// SearchQuery configures [DB.Search]. It is a pure value: builder methods
// return an updated copy and perform no I/O.
//
// Defaults: both scopes, case-insensitive, limit 50, modified descending,
// trashed and archived notes excluded.
//
// Empty search text is valid and matches every note - the predicate
// degenerates to always-true. Callers wanting "no search" semantics should
// use [DB.Notes] instead.
type SearchQuery struct {
	text            string
	scope           SearchScope
	caseSensitive   bool
	limit           *uint
	sortField       SortField
	sortDirection   SortDirection
	includeTrashed  bool
	includeArchived bool
}

// NewSearchQuery returns the default configuration for the given text.
func NewSearchQuery(text string) SearchQuery {
	limit := uint(defaultSearchLimit)

	return SearchQuery{text: text, limit: &limit}
}

// Scope restricts matching to the given fields.
func (q SearchQuery) Scope(scope SearchScope) SearchQuery {
	q.scope = scope

	return q
}

// CaseSensitive makes the match case-sensitive.
func (q SearchQuery) CaseSensitive() SearchQuery {
	q.caseSensitive = true

	return q
}

// Limit caps the number of returned notes.
func (q SearchQuery) Limit(n uint) SearchQuery {
	q.limit = &n

	return q
}

// NoLimit removes the row cap entirely.
func (q SearchQuery) NoLimit() SearchQuery {
	q.limit = nil

	return q
}

// SortBy sets the ordering of results.
func (q SearchQuery) SortBy(field SortField, direction SortDirection) SearchQuery {
	q.sortField = field
	q.sortDirection = direction

	return q
}

// IncludeTrashed stops filtering out trashed notes.
func (q SearchQuery) IncludeTrashed() SearchQuery {
	q.includeTrashed = true

	return q
}

// IncludeArchived stops filtering out archived notes.
func (q SearchQuery) IncludeArchived() SearchQuery {
	q.includeArchived = true

	return q
}

// IncludeAll includes trashed and archived notes.
func (q SearchQuery) IncludeAll() SearchQuery {
	return q.IncludeTrashed().IncludeArchived()
}

// sqlBody composes the SELECT body over the notes view.
func (q SearchQuery) sqlBody() (string, []any, error) {
	b := sq.Select(noteColumns).
		From("notes").
		OrderBy(q.orderBy())

	switch q.scope {
	case ScopeTitle:
		b = b.Where(q.match("title"))
	case ScopeContent:
		b = b.Where(q.match("content"))
	default:
		b = b.Where(sq.Or{q.match("title"), q.match("content")})
	}

	if !q.includeTrashed {
		b = b.Where("is_trashed = 0")
	}

	if !q.includeArchived {
		b = b.Where("is_archived = 0")
	}

	if q.limit != nil {
		b = b.Limit(uint64(*q.limit))
	}

	return b.ToSql()
}

// match builds the containment predicate for one column. LIKE is SQLite's
// case-insensitive comparison (for ASCII); GLOB is its case-sensitive one.
// Both get their metacharacters escaped so the search text is literal.
func (q SearchQuery) match(column string) sq.Sqlizer {
	if q.caseSensitive {
		return sq.Expr(column+" GLOB ?", "*"+escapeGlob(q.text)+"*")
	}

	return sq.Expr(column+` LIKE ? ESCAPE '\'`, "%"+escapeLike(q.text)+"%")
}

func (q SearchQuery) orderBy() string {
	var column string

	switch q.sortField {
	case SortCreated:
		column = "created"
	case SortTitle:
		column = "title"
	default:
		column = "modified"
	}

	if q.sortDirection == SortAsc {
		return column + " ASC"
	}

	return column + " DESC"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}

// globEscaper neutralizes GLOB metacharacters by wrapping them in character
// classes. "[" must be replaced first.
var globEscaper = strings.NewReplacer(`[`, `[[]`, `*`, `[*]`, `?`, `[?]`)

func escapeGlob(value string) string {
	return globEscaper.Replace(value)
}
