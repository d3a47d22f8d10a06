package bearquery

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// hostEpochOffset is the number of seconds between Bear's timestamp origin
// (Apple Core Data epoch, 2001-01-01T00:00:00Z) and the Unix epoch. Derived
// once; the generated views add it to every stored timestamp.
var hostEpochOffset = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()

// SchemaLayout describes the discovered shape of the notes<->tags junction
// table. Core Data numbers these names per schema version (Z_5TAGS with
// Z_5NOTES/Z_13TAGS in one release, Z_7TAGS with Z_7NOTES/Z_15TAGS in
// another), so they cannot be hard-coded.
//
// A layout is discovered once during [Open] and never changes for the
// lifetime of the handle. If Bear migrates its schema underneath a live
// handle, subsequent queries fail rather than silently remap.
type SchemaLayout struct {
	// Table is the junction table name, e.g. "Z_5TAGS".
	Table string

	// NoteColumn is the junction column referencing ZSFNOTE, e.g. "Z_5NOTES".
	NoteColumn string

	// TagColumn is the junction column referencing ZSFNOTETAG, e.g. "Z_13TAGS".
	TagColumn string
}

// discoverLayout inspects the live database and locates the junction table
// and its two endpoint columns.
//
// Column roles are assigned heuristically: a column whose name ends in
// "NOTES" is the note endpoint and one ending in "TAGS" is the tag endpoint.
// When neither suffix matches, assignment falls back to positional order
// (first column = note, second = tag). The heuristic can misassign roles on
// a naming scheme Core Data has never used so far; no stronger guarantee is
// possible against an uncontrolled schema.
//
// Returns [ErrSchema] when no junction table exists, the table has fewer
// than two columns, or both roles resolve to the same column.
func discoverLayout(ctx context.Context, conn *sqlx.DB) (SchemaLayout, error) {
	table, err := findJunctionTable(ctx, conn)
	if err != nil {
		return SchemaLayout{}, err
	}

	columns, err := junctionColumns(ctx, conn, table)
	if err != nil {
		return SchemaLayout{}, err
	}

	if len(columns) < 2 {
		return SchemaLayout{}, fmt.Errorf("%w: junction table %s has %d columns, need at least 2", ErrSchema, table, len(columns))
	}

	noteCol := columnWithSuffix(columns, "NOTES")
	tagCol := columnWithSuffix(columns, "TAGS")

	// Positional fallback when the expected fragments are absent.
	if noteCol == "" && tagCol == "" {
		noteCol = columns[0]
		tagCol = columns[1]
	}

	if noteCol == "" || tagCol == "" || noteCol == tagCol {
		return SchemaLayout{}, fmt.Errorf("%w: cannot tell note and tag endpoints apart in %s (columns %s)",
			ErrSchema, table, strings.Join(columns, ", "))
	}

	return SchemaLayout{Table: table, NoteColumn: noteCol, TagColumn: tagCol}, nil
}

// findJunctionTable locates the notes<->tags junction table in sqlite_master.
// Core Data names it Z_<digit...>TAGS.
func findJunctionTable(ctx context.Context, conn *sqlx.DB) (string, error) {
	const query = `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name GLOB 'Z_[0-9]*TAGS'
		ORDER BY name
		LIMIT 1`

	var table string

	err := conn.GetContext(ctx, &table, query)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: no junction table matching Z_<n>TAGS", ErrSchema)
		}

		return "", fmt.Errorf("find junction table: %w", err)
	}

	return table, nil
}

// junctionColumns reads the junction table's column names in declaration order.
func junctionColumns(ctx context.Context, conn *sqlx.DB, table string) ([]string, error) {
	// PRAGMA table_info does not accept bound parameters. The table name
	// comes from sqlite_master, not from the caller.
	rows, err := conn.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", table))
	if err != nil {
		return nil, fmt.Errorf("table_info %s: %w", table, err)
	}

	defer func() { _ = rows.Close() }()

	var columns []string

	for rows.Next() {
		var (
			cid     int64
			name    string
			colType sql.NullString
			notNull int64
			dflt    sql.NullString
			pk      int64
		)

		err = rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk)
		if err != nil {
			return nil, fmt.Errorf("table_info %s: scan: %w", table, err)
		}

		columns = append(columns, name)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("table_info %s: rows: %w", table, err)
	}

	return columns, nil
}

// columnWithSuffix returns the first column ending in suffix, or "".
func columnWithSuffix(columns []string, suffix string) string {
	for _, name := range columns {
		if strings.HasSuffix(name, suffix) {
			return name
		}
	}

	return ""
}

// generatePreamble renders the normalizing WITH preamble for a layout.
//
// The preamble defines read-only logical views (notes, tags, note_tags,
// note_links) over Bear's physical tables: timestamps are shifted from the
// Core Data epoch to calendar time, flags come through as 0/1 for the row
// mapper to normalize, and the junction endpoints use the discovered column
// names. Pure text transformation; output is byte-identical for equal
// layouts.
func generatePreamble(layout SchemaLayout) string {
	return fmt.Sprintf(`WITH
  notes AS (
    SELECT
      n.Z_PK as id,
      n.ZUNIQUEIDENTIFIER as unique_id,
      n.ZTITLE as title,
      n.ZTEXT as content,
      datetime(n.ZMODIFICATIONDATE + %[1]d, 'unixepoch') as modified,
      datetime(n.ZCREATIONDATE + %[1]d, 'unixepoch') as created,
      n.ZPINNED as is_pinned,
      n.ZTRASHED as is_trashed,
      n.ZARCHIVED as is_archived
    FROM ZSFNOTE as n
  ),
  tags AS (
    SELECT
      t.Z_PK as id,
      t.ZTITLE as name,
      datetime(t.ZMODIFICATIONDATE + %[1]d, 'unixepoch') as modified
    FROM ZSFNOTETAG as t
  ),
  note_tags AS (
    SELECT
      nt.%[2]s as note_id,
      nt.%[3]s as tag_id
    FROM %[4]s as nt
  ),
  note_links AS (
    SELECT
      nl.ZLINKEDBY as from_note_id,
      nl.ZLINKINGTO as to_note_id
    FROM ZSFNOTEBACKLINK as nl
  )
`, hostEpochOffset, layout.NoteColumn, layout.TagColumn, layout.Table)
}
