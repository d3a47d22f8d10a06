package bearquery

import "errors"

// Sentinel errors returned by the public API. Check with [errors.Is].
var (
	// ErrNoHomeDir indicates the user's home directory could not be resolved,
	// so the default database location cannot be derived.
	ErrNoHomeDir = errors.New("cannot resolve home directory")

	// ErrDatabaseNotFound indicates the Bear database file does not exist or
	// is not accessible at the configured path.
	ErrDatabaseNotFound = errors.New("bear database not found")

	// ErrBusy indicates the database stayed locked by a concurrent writer for
	// longer than the configured busy timeout.
	ErrBusy = errors.New("database busy")

	// ErrSchema indicates the physical schema does not match any layout this
	// library can normalize (missing junction table, too few columns, or an
	// ambiguous column assignment).
	ErrSchema = errors.New("unsupported bear schema")

	// ErrNoColumn indicates a [Table] column lookup by name found no match.
	ErrNoColumn = errors.New("no such column")
)

// QueryError is returned when the engine rejects a statement: malformed SQL,
// unknown columns, or a write attempted through the generic query surface
// (rejected by query_only mode). The engine's message is preserved verbatim.
//
// Use [errors.As] to extract the offending SQL:
//
//	var qErr *bearquery.QueryError
//	if errors.As(err, &qErr) {
//	    fmt.Println("failed statement:", qErr.SQL)
//	}
type QueryError struct {
	// SQL is the statement body as supplied by the caller, without the
	// normalizing preamble.
	SQL string

	// Err is the underlying engine error.
	Err error
}

// Error formats as "query: <engine message>".
func (e *QueryError) Error() string {
	if e == nil {
		return ""
	}

	return "query: " + e.cause()
}

// Unwrap returns the underlying engine error for [errors.Is] and [errors.As].
func (e *QueryError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.Err
}

func (e *QueryError) cause() string {
	if e.Err == nil {
		return ""
	}

	return e.Err.Error()
}

// busyError tags an engine busy/locked failure with [ErrBusy] while keeping
// the original error chain intact.
type busyError struct {
	err error
}

func (e *busyError) Error() string {
	return "busy timeout exceeded: " + e.err.Error()
}

func (e *busyError) Unwrap() error {
	return e.err
}

func (e *busyError) Is(target error) bool {
	return target == ErrBusy
}
