package bearquery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	sqlite3 "github.com/mattn/go-sqlite3"
)

// mockHandle wires a sqlmock connection into the open seam so lifecycle
// expectations (pragma, close) can be asserted without a real file.
func mockHandle(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}

	db := &DB{path: "/mock/database.sqlite", busyTimeout: defaultBusyTimeout}
	db.open = func(ctx context.Context) (*sqlx.DB, error) {
		return sqlx.NewDb(mockDB, "sqlite3"), nil
	}

	return db, mock
}

func Test_WithConn_Enforces_QueryOnly_Then_Closes(t *testing.T) {
	t.Parallel()

	db, mock := mockHandle(t)

	mock.ExpectExec("PRAGMA query_only = ON").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectClose()

	ran := false

	err := db.withConn(context.Background(), func(conn *sqlx.DB) error {
		ran = true

		return nil
	})
	if err != nil {
		t.Fatalf("withConn: %v", err)
	}

	if !ran {
		t.Fatal("fn was never invoked")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("lifecycle: %v", err)
	}
}

func Test_WithConn_Closes_When_Fn_Fails(t *testing.T) {
	t.Parallel()

	db, mock := mockHandle(t)

	mock.ExpectExec("PRAGMA query_only = ON").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectClose()

	sentinel := errors.New("boom")

	err := db.withConn(context.Background(), func(conn *sqlx.DB) error {
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("err = %v, want %v", err, sentinel)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("connection leaked after fn failure: %v", err)
	}
}

func Test_WithConn_Closes_When_Pragma_Fails(t *testing.T) {
	t.Parallel()

	db, mock := mockHandle(t)

	mock.ExpectExec("PRAGMA query_only = ON").WillReturnError(errors.New("pragma rejected"))
	mock.ExpectClose()

	err := db.withConn(context.Background(), func(conn *sqlx.DB) error {
		t.Fatal("fn must not run when the safeguard cannot be applied")

		return nil
	})
	if err == nil {
		t.Fatal("expected error")
	}

	if !strings.Contains(err.Error(), "enforce query_only") {
		t.Fatalf("err = %v, want query_only context", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("connection leaked after pragma failure: %v", err)
	}
}

func Test_WithConn_Maps_Engine_Busy_To_ErrBusy(t *testing.T) {
	t.Parallel()

	db, mock := mockHandle(t)

	engineErr := sqlite3.Error{Code: sqlite3.ErrBusy}

	mock.ExpectExec("PRAGMA query_only = ON").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectClose()

	err := db.withConn(context.Background(), func(conn *sqlx.DB) error {
		return fmt.Errorf("select notes: %w", engineErr)
	})
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("err = %v, want ErrBusy", err)
	}

	// The engine error must stay reachable behind the sentinel.
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		t.Fatalf("engine error lost from chain: %v", err)
	}
}

func Test_WithConn_Maps_Engine_Locked_To_ErrBusy(t *testing.T) {
	t.Parallel()

	db, mock := mockHandle(t)

	mock.ExpectExec("PRAGMA query_only = ON").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectClose()

	err := db.withConn(context.Background(), func(conn *sqlx.DB) error {
		return sqlite3.Error{Code: sqlite3.ErrLocked}
	})
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("err = %v, want ErrBusy", err)
	}
}

func Test_WithConn_Leaves_Other_Errors_Untagged(t *testing.T) {
	t.Parallel()

	db, mock := mockHandle(t)

	mock.ExpectExec("PRAGMA query_only = ON").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectClose()

	err := db.withConn(context.Background(), func(conn *sqlx.DB) error {
		return sqlite3.Error{Code: sqlite3.ErrError}
	})
	if errors.Is(err, ErrBusy) {
		t.Fatalf("err = %v, must not carry ErrBusy", err)
	}
}

func Test_ReadOnlyDSN_Carries_All_Guard_Flags(t *testing.T) {
	t.Parallel()

	dsn := readOnlyDSN("/Users/x/database.sqlite", 2500*time.Millisecond)

	if !strings.HasPrefix(dsn, "file:/Users/x/database.sqlite?") {
		t.Fatalf("dsn = %s, want file: prefix with raw path", dsn)
	}

	for _, flag := range []string{"mode=ro", "_mutex=no", "_query_only=true", "_busy_timeout=2500"} {
		if !strings.Contains(dsn, flag) {
			t.Fatalf("dsn %s missing %s", dsn, flag)
		}
	}
}

func Test_Open_Defaults_Busy_Timeout_To_Five_Seconds(t *testing.T) {
	t.Parallel()

	if defaultBusyTimeout != 5*time.Second {
		t.Fatalf("defaultBusyTimeout = %v, want 5s", defaultBusyTimeout)
	}

	dsn := readOnlyDSN("/tmp/db.sqlite", defaultBusyTimeout)
	if !strings.Contains(dsn, "_busy_timeout=5000") {
		t.Fatalf("dsn = %s, want _busy_timeout=5000", dsn)
	}
}
