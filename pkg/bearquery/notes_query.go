package bearquery

import (
	sq "github.com/Masterminds/squirrel"
)

// defaultNotesLimit caps a default notes listing, mirroring Bear's own
// "recent notes" behavior.
const defaultNotesLimit = 10

// NotesQuery configures [DB.Notes]. It is a pure value: builder methods
// return an updated copy and perform no I/O.
//
// The zero value of NewNotesQuery lists the 10 most recently modified notes,
// excluding trashed and archived ones.
type NotesQuery struct {
	limit           *uint
	includeTrashed  bool
	includeArchived bool
}

// NewNotesQuery returns the default configuration: limit 10, trashed and
// archived notes excluded.
func NewNotesQuery() NotesQuery {
	limit := uint(defaultNotesLimit)

	return NotesQuery{limit: &limit}
}

// Limit caps the number of returned notes.
func (q NotesQuery) Limit(n uint) NotesQuery {
	q.limit = &n

	return q
}

// NoLimit removes the row cap entirely.
func (q NotesQuery) NoLimit() NotesQuery {
	q.limit = nil

	return q
}

// IncludeTrashed stops filtering out trashed notes.
func (q NotesQuery) IncludeTrashed() NotesQuery {
	q.includeTrashed = true

	return q
}

// IncludeArchived stops filtering out archived notes.
func (q NotesQuery) IncludeArchived() NotesQuery {
	q.includeArchived = true

	return q
}

// IncludeAll includes trashed and archived notes.
func (q NotesQuery) IncludeAll() NotesQuery {
	return q.IncludeTrashed().IncludeArchived()
}

// sqlBody composes the SELECT body over the notes view.
func (q NotesQuery) sqlBody() (string, []any, error) {
	b := sq.Select(noteColumns).
		From("notes").
		OrderBy("modified DESC")

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
