package bearquery

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// viewTimeLayout is the format produced by datetime() in the generated views.
const viewTimeLayout = "2006-01-02 15:04:05"

// noteColumns is the projection every typed note query selects from the
// notes view.
const noteColumns = "id, unique_id, title, content, modified, created, is_pinned, is_trashed, is_archived"

// noteRow mirrors one row of the notes view before normalization.
type noteRow struct {
	ID       int64          `db:"id"`
	UniqueID sql.NullString `db:"unique_id"`
	Title    sql.NullString `db:"title"`
	Content  sql.NullString `db:"content"`
	Modified sql.NullString `db:"modified"`
	Created  sql.NullString `db:"created"`
	Pinned   sql.NullInt64  `db:"is_pinned"`
	Trashed  sql.NullInt64  `db:"is_trashed"`
	Archived sql.NullInt64  `db:"is_archived"`
}

// note converts a scanned row into the normalized snapshot type. Raw epoch
// integers and 0/1 flags never leave this boundary.
func (r noteRow) note() (Note, error) {
	modified, err := parseViewTime(r.Modified)
	if err != nil {
		return Note{}, fmt.Errorf("note %d: modified: %w", r.ID, err)
	}

	created, err := parseViewTime(r.Created)
	if err != nil {
		return Note{}, fmt.Errorf("note %d: created: %w", r.ID, err)
	}

	var content *string
	if r.Content.Valid {
		content = &r.Content.String
	}

	var modifiedAt, createdAt time.Time
	if modified != nil {
		modifiedAt = *modified
	}

	if created != nil {
		createdAt = *created
	}

	return Note{
		ID:       NewNoteID(r.ID),
		UniqueID: r.UniqueID.String,
		Title:    r.Title.String,
		Content:  content,
		Created:  createdAt,
		Modified: modifiedAt,
		Pinned:   r.Pinned.Int64 != 0,
		Trashed:  r.Trashed.Int64 != 0,
		Archived: r.Archived.Int64 != 0,
	}, nil
}

// tagRow mirrors one row of the tags view.
type tagRow struct {
	ID       int64          `db:"id"`
	Name     sql.NullString `db:"name"`
	Modified sql.NullString `db:"modified"`
}

func (r tagRow) tag() (Tag, error) {
	modified, err := parseViewTime(r.Modified)
	if err != nil {
		return Tag{}, fmt.Errorf("tag %d: modified: %w", r.ID, err)
	}

	return Tag{
		ID:       NewTagID(r.ID),
		Name:     r.Name.String,
		Modified: modified,
	}, nil
}

// parseViewTime parses a datetime() result into UTC time. NULL maps to nil.
func parseViewTime(value sql.NullString) (*time.Time, error) {
	if !value.Valid {
		return nil, nil
	}

	t, err := time.ParseInLocation(viewTimeLayout, value.String, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("parse timestamp %q: %w", value.String, err)
	}

	return &t, nil
}

// Tags retrieves all tags as a fresh snapshot.
func (db *DB) Tags(ctx context.Context) (*Tags, error) {
	const body = "SELECT id, name, modified FROM tags ORDER BY name ASC"

	var rows []tagRow

	err := db.withConn(ctx, func(conn *sqlx.DB) error {
		return conn.SelectContext(ctx, &rows, db.preamble+body)
	})
	if err != nil {
		return nil, fmt.Errorf("tags: %w", err)
	}

	byID := make(map[TagID]Tag, len(rows))

	for _, row := range rows {
		tag, tagErr := row.tag()
		if tagErr != nil {
			return nil, fmt.Errorf("tags: %w", tagErr)
		}

		byID[tag.ID] = tag
	}

	return &Tags{byID: byID}, nil
}

// Note retrieves a single note by id.
//
// An absent row is not an error: the result is (nil, nil). Bear may have
// deleted the note between the call that produced the id and this one.
func (db *DB) Note(ctx context.Context, id NoteID) (*Note, error) {
	body := "SELECT " + noteColumns + " FROM notes WHERE id = ?"

	var row noteRow

	err := db.withConn(ctx, func(conn *sqlx.DB) error {
		return conn.GetContext(ctx, &row, db.preamble+body, id.Int64())
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("note %s: %w", id, err)
	}

	note, err := row.note()
	if err != nil {
		return nil, err
	}

	return &note, nil
}

// Notes retrieves notes matching q, fully materialized and ordered by
// modification time descending.
func (db *DB) Notes(ctx context.Context, q NotesQuery) ([]Note, error) {
	body, args, err := q.sqlBody()
	if err != nil {
		return nil, fmt.Errorf("notes: %w", err)
	}

	notes, err := db.selectNotes(ctx, body, args)
	if err != nil {
		return nil, fmt.Errorf("notes: %w", err)
	}

	return notes, nil
}

// Search retrieves notes matching the text search described by q.
func (db *DB) Search(ctx context.Context, q SearchQuery) ([]Note, error) {
	body, args, err := q.sqlBody()
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	notes, err := db.selectNotes(ctx, body, args)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	return notes, nil
}

// NoteLinks retrieves the notes linked from the given note, most recently
// modified first. Trashed and archived link targets are excluded.
func (db *DB) NoteLinks(ctx context.Context, from NoteID) ([]Note, error) {
	const body = `SELECT n.id, n.unique_id, n.title, n.content, n.modified, n.created, n.is_pinned, n.is_trashed, n.is_archived
FROM notes AS n
INNER JOIN note_links AS nl ON nl.to_note_id = n.id
WHERE n.is_trashed = 0 AND n.is_archived = 0 AND nl.from_note_id = ?
ORDER BY n.modified DESC`

	notes, err := db.selectNotes(ctx, body, []any{from.Int64()})
	if err != nil {
		return nil, fmt.Errorf("note links %s: %w", from, err)
	}

	return notes, nil
}

// NoteTags retrieves the set of tag ids attached to the given note. Resolve
// names through a [Tags] snapshot.
func (db *DB) NoteTags(ctx context.Context, id NoteID) (map[TagID]struct{}, error) {
	const body = "SELECT tag_id FROM note_tags WHERE note_id = ?"

	var ids []int64

	err := db.withConn(ctx, func(conn *sqlx.DB) error {
		return conn.SelectContext(ctx, &ids, db.preamble+body, id.Int64())
	})
	if err != nil {
		return nil, fmt.Errorf("note tags %s: %w", id, err)
	}

	set := make(map[TagID]struct{}, len(ids))
	for _, tagID := range ids {
		set[NewTagID(tagID)] = struct{}{}
	}

	return set, nil
}

// selectNotes runs a note-shaped query body through the guard and maps rows.
func (db *DB) selectNotes(ctx context.Context, body string, args []any) ([]Note, error) {
	var rows []noteRow

	err := db.withConn(ctx, func(conn *sqlx.DB) error {
		return conn.SelectContext(ctx, &rows, db.preamble+body, args...)
	})
	if err != nil {
		return nil, err
	}

	notes := make([]Note, 0, len(rows))

	for _, row := range rows {
		note, noteErr := row.note()
		if noteErr != nil {
			return nil, noteErr
		}

		notes = append(notes, note)
	}

	return notes, nil
}

// Query executes a caller-supplied SQL body against the logical views and
// returns the fully materialized result.
//
// The body is trusted to be a read-only SELECT; there is no up-front
// validation. A write attempt fails at execution time because the
// connection runs in query_only mode, surfacing as a [*QueryError] like any
// other engine rejection.
func (db *DB) Query(ctx context.Context, body string, args ...any) (*Table, error) {
	var table *Table

	err := db.withConn(ctx, func(conn *sqlx.DB) error {
		rows, queryErr := conn.QueryContext(ctx, db.preamble+body, args...)
		if queryErr != nil {
			return &QueryError{SQL: body, Err: queryErr}
		}

		defer func() { _ = rows.Close() }()

		var buildErr error

		table, buildErr = buildTable(rows)
		if buildErr != nil {
			return &QueryError{SQL: body, Err: buildErr}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return table, nil
}
