package bearquery_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver for fixture seeding

	"github.com/calvinalkan/bear-query/pkg/bearquery"
)

// -----------------------------------------------------------------------------
// Fixtures: a Bear-like Core Data database seeded in a temp file
// -----------------------------------------------------------------------------

// bearSchemaDDL mirrors the physical tables Bear 2.x keeps in
// database.sqlite, including the numbered junction table.
const bearSchemaDDL = `
	CREATE TABLE ZSFNOTE (
		Z_PK INTEGER PRIMARY KEY,
		ZUNIQUEIDENTIFIER TEXT,
		ZTITLE TEXT,
		ZTEXT TEXT,
		ZMODIFICATIONDATE REAL,
		ZCREATIONDATE REAL,
		ZPINNED INTEGER,
		ZTRASHED INTEGER,
		ZARCHIVED INTEGER
	);

	CREATE TABLE ZSFNOTETAG (
		Z_PK INTEGER PRIMARY KEY,
		ZTITLE TEXT,
		ZMODIFICATIONDATE REAL
	);

	CREATE TABLE Z_5TAGS (
		Z_5NOTES INTEGER,
		Z_13TAGS INTEGER
	);

	CREATE TABLE ZSFNOTEBACKLINK (
		ZLINKEDBY INTEGER,
		ZLINKINGTO INTEGER
	);
`

// defaultFixture is the standard dataset: timestamps are seconds after the
// Core Data epoch, so 0 = 2001-01-01T00:00:00Z and 31536000 = one year later.
const defaultFixture = `
	INSERT INTO ZSFNOTE (Z_PK, ZUNIQUEIDENTIFIER, ZTITLE, ZTEXT, ZMODIFICATIONDATE, ZCREATIONDATE, ZPINNED, ZTRASHED, ZARCHIVED)
	VALUES
		(1, 'note-uuid-1', 'First Note', 'Content of first note', 0, 0, 0, 0, 0),
		(2, 'note-uuid-2', 'Second Note', 'Content of second note', 31536000, 31536000, 1, 0, 0),
		(3, 'note-uuid-3', 'Trashed Note', 'This is trashed', 0, 0, 0, 1, 0),
		(4, 'note-uuid-4', 'Archived Note', 'This is archived', 0, 0, 0, 0, 1);

	INSERT INTO ZSFNOTETAG (Z_PK, ZTITLE, ZMODIFICATIONDATE)
	VALUES
		(1, 'work', 0),
		(2, 'personal', 0);

	INSERT INTO Z_5TAGS (Z_5NOTES, Z_13TAGS)
	VALUES
		(1, 1),
		(2, 2);

	INSERT INTO ZSFNOTEBACKLINK (ZLINKEDBY, ZLINKINGTO)
	VALUES
		(1, 2);
`

// createBearFile creates a temp database file and executes the given batches.
func createBearFile(t *testing.T, batches ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "database.sqlite")

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}

	defer func() { _ = db.Close() }()

	for _, batch := range batches {
		_, err = db.Exec(batch)
		if err != nil {
			t.Fatalf("seed fixture: %v", err)
		}
	}

	return path
}

// seedDefault creates the standard fixture database.
func seedDefault(t *testing.T) string {
	t.Helper()

	return createBearFile(t, bearSchemaDDL, defaultFixture)
}

// openTest opens a handle on the given fixture file.
func openTest(t *testing.T, path string) *bearquery.DB {
	t.Helper()

	db, err := bearquery.Open(context.Background(), bearquery.Config{Path: path})
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	return db
}

// insertNote adds one non-trashed, non-archived note row with a generated
// UUID.
func insertNote(t *testing.T, path string, pk int64, title string, modified float64) {
	t.Helper()

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}

	defer func() { _ = db.Close() }()

	_, err = db.Exec(`
		INSERT INTO ZSFNOTE (Z_PK, ZUNIQUEIDENTIFIER, ZTITLE, ZTEXT, ZMODIFICATIONDATE, ZCREATIONDATE, ZPINNED, ZTRASHED, ZARCHIVED)
		VALUES (?, ?, ?, ?, ?, ?, 0, 0, 0)`,
		pk, uuid.NewString(), title, "body of "+title, modified, modified)
	if err != nil {
		t.Fatalf("insert note: %v", err)
	}
}
