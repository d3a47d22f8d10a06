package cli

import (
	"bytes"
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver for fixture seeding
)

// fixtureDDL is a minimal Bear-shaped database: two visible notes, one
// trashed note, two tags, one tagging and one link.
const fixtureDDL = `
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

	INSERT INTO ZSFNOTE VALUES
		(1, 'uuid-1', 'Groceries', 'milk and eggs', 0, 0, 0, 0, 0),
		(2, 'uuid-2', 'Meeting Notes', 'quarterly planning', 86400, 86400, 1, 0, 0),
		(3, 'uuid-3', 'Old Draft', 'discarded', 0, 0, 0, 1, 0);

	INSERT INTO ZSFNOTETAG VALUES
		(1, 'errands', 0),
		(2, 'work', 0);

	INSERT INTO Z_5TAGS VALUES (1, 1), (2, 2);

	INSERT INTO ZSFNOTEBACKLINK VALUES (2, 1);
`

// seedFixture creates a fixture database file and returns its path.
func seedFixture(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "database.sqlite")

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}

	defer func() { _ = db.Close() }()

	_, err = db.Exec(fixtureDDL)
	if err != nil {
		t.Fatalf("seed fixture: %v", err)
	}

	return path
}

// runCLI invokes Run with captured output streams.
func runCLI(t *testing.T, env map[string]string, args ...string) (stdout, stderr string, code int) {
	t.Helper()

	if env == nil {
		env = map[string]string{}
	}

	var out, errOut bytes.Buffer

	code = Run(context.Background(), strings.NewReader(""), &out, &errOut,
		append([]string{"bearq"}, args...), env)

	return out.String(), errOut.String(), code
}
