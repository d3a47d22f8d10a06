package bearquery

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func Test_NotesQuery_Default_Body(t *testing.T) {
	t.Parallel()

	body, args, err := NewNotesQuery().sqlBody()
	if err != nil {
		t.Fatalf("sqlBody: %v", err)
	}

	want := "SELECT " + noteColumns +
		" FROM notes WHERE is_trashed = 0 AND is_archived = 0 ORDER BY modified DESC LIMIT 10"
	if body != want {
		t.Fatalf("body = %s\nwant %s", body, want)
	}

	if len(args) != 0 {
		t.Fatalf("args = %v, want none", args)
	}
}

func Test_NotesQuery_IncludeAll_Drops_Both_Filters(t *testing.T) {
	t.Parallel()

	body, _, err := NewNotesQuery().IncludeAll().sqlBody()
	if err != nil {
		t.Fatalf("sqlBody: %v", err)
	}

	if strings.Contains(body, "is_trashed") || strings.Contains(body, "is_archived") {
		t.Fatalf("body still filters: %s", body)
	}
}

func Test_NotesQuery_NoLimit_Drops_Limit_Clause(t *testing.T) {
	t.Parallel()

	body, _, err := NewNotesQuery().NoLimit().sqlBody()
	if err != nil {
		t.Fatalf("sqlBody: %v", err)
	}

	if strings.Contains(body, "LIMIT") {
		t.Fatalf("body still limits: %s", body)
	}
}

func Test_NotesQuery_Builders_Do_Not_Mutate_Receiver(t *testing.T) {
	t.Parallel()

	base := NewNotesQuery()
	derived := base.IncludeAll().NoLimit()

	baseBody, _, _ := base.sqlBody()
	derivedBody, _, _ := derived.sqlBody()

	if baseBody == derivedBody {
		t.Fatal("derived query did not diverge")
	}

	if !strings.Contains(baseBody, "is_trashed = 0") {
		t.Fatalf("base query mutated: %s", baseBody)
	}
}

func Test_SearchQuery_Default_Body(t *testing.T) {
	t.Parallel()

	body, args, err := NewSearchQuery("hello").sqlBody()
	if err != nil {
		t.Fatalf("sqlBody: %v", err)
	}

	want := "SELECT " + noteColumns +
		` FROM notes WHERE (title LIKE ? ESCAPE '\' OR content LIKE ? ESCAPE '\')` +
		" AND is_trashed = 0 AND is_archived = 0 ORDER BY modified DESC LIMIT 50"
	if body != want {
		t.Fatalf("body = %s\nwant %s", body, want)
	}

	if diff := cmp.Diff([]any{"%hello%", "%hello%"}, args); diff != "" {
		t.Fatalf("args mismatch:\n%s", diff)
	}
}

func Test_SearchQuery_CaseSensitive_Uses_Glob(t *testing.T) {
	t.Parallel()

	body, args, err := NewSearchQuery("Hello").CaseSensitive().Scope(ScopeTitle).sqlBody()
	if err != nil {
		t.Fatalf("sqlBody: %v", err)
	}

	if !strings.Contains(body, "title GLOB ?") {
		t.Fatalf("body = %s, want GLOB predicate", body)
	}

	if diff := cmp.Diff([]any{"*Hello*"}, args); diff != "" {
		t.Fatalf("args mismatch:\n%s", diff)
	}
}

func Test_SearchQuery_Scope_Content_Binds_Single_Predicate(t *testing.T) {
	t.Parallel()

	body, args, err := NewSearchQuery("x").Scope(ScopeContent).sqlBody()
	if err != nil {
		t.Fatalf("sqlBody: %v", err)
	}

	if strings.Contains(body, "title LIKE") {
		t.Fatalf("body = %s, title must not be matched", body)
	}

	if len(args) != 1 {
		t.Fatalf("args = %v, want one", args)
	}
}

func Test_SearchQuery_SortBy_Controls_Order_Clause(t *testing.T) {
	t.Parallel()

	cases := []struct {
		field     SortField
		direction SortDirection
		want      string
	}{
		{SortModified, SortDesc, "ORDER BY modified DESC"},
		{SortModified, SortAsc, "ORDER BY modified ASC"},
		{SortCreated, SortDesc, "ORDER BY created DESC"},
		{SortTitle, SortAsc, "ORDER BY title ASC"},
	}

	for _, tc := range cases {
		body, _, err := NewSearchQuery("").SortBy(tc.field, tc.direction).sqlBody()
		if err != nil {
			t.Fatalf("sqlBody: %v", err)
		}

		if !strings.Contains(body, tc.want) {
			t.Fatalf("body = %s, want %s", body, tc.want)
		}
	}
}

func Test_EscapeLike_Neutralizes_Wildcards(t *testing.T) {
	t.Parallel()

	got := escapeLike(`100%_a\b`)
	want := `100\%\_a\\b`

	if got != want {
		t.Fatalf("escaped = %s, want %s", got, want)
	}
}

func Test_EscapeGlob_Neutralizes_Metacharacters(t *testing.T) {
	t.Parallel()

	got := escapeGlob(`a*b?c[d]`)
	want := `a[*]b[?]c[[]d]`

	if got != want {
		t.Fatalf("escaped = %s, want %s", got, want)
	}
}
