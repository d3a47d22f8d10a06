package bearquery

import (
	"sort"
	"strconv"
	"time"
)

// NoteID identifies a note by its SQLite primary key (Z_PK in Bear's schema).
//
// The zero value is not a valid id. Construct one with [NewNoteID] only to
// round-trip a value previously returned by this library; ids are not stable
// across different databases. NoteID is comparable and usable as a map key.
type NoteID struct {
	pk int64
}

// NewNoteID wraps a primary key value previously obtained from a [Note].
func NewNoteID(pk int64) NoteID {
	return NoteID{pk: pk}
}

// Int64 returns the underlying primary key value.
func (id NoteID) Int64() int64 {
	return id.pk
}

// String implements fmt.Stringer.
func (id NoteID) String() string {
	return strconv.FormatInt(id.pk, 10)
}

// TagID identifies a tag by its SQLite primary key.
//
// Same construction and comparability rules as [NoteID].
type TagID struct {
	pk int64
}

// NewTagID wraps a primary key value previously obtained from a [Tag].
func NewTagID(pk int64) TagID {
	return TagID{pk: pk}
}

// Int64 returns the underlying primary key value.
func (id TagID) Int64() int64 {
	return id.pk
}

// String implements fmt.Stringer.
func (id TagID) String() string {
	return strconv.FormatInt(id.pk, 10)
}

// Note is an immutable snapshot of one note row.
//
// Instances carry no connection and do not observe later writes by Bear.
// Timestamps are UTC calendar time converted from Bear's Core Data epoch;
// flags are normalized to bool regardless of the stored integer form.
type Note struct {
	// ID is the primary key. Stable for the note's lifetime; use it for
	// NoteLinks/NoteTags lookups.
	ID NoteID

	// UniqueID is Bear's UUID for the note, used by Bear's x-callback-url
	// API and sync. Prefer ID for programmatic lookups.
	UniqueID string

	// Title is the note title. Never NULL in practice, but an empty string
	// is possible (untitled note or defensive NULL handling).
	Title string

	// Content is the markdown body. Nil for empty notes.
	Content *string

	// Created is the creation time in UTC.
	Created time.Time

	// Modified is the last-modification time in UTC.
	Modified time.Time

	// Pinned reports whether the note is pinned.
	Pinned bool

	// Trashed reports whether the note is in the trash.
	Trashed bool

	// Archived reports whether the note is archived.
	Archived bool
}

// Tag is an immutable snapshot of one tag row.
//
// Tag names are hierarchical path-like strings ("work/projects").
type Tag struct {
	// ID is the primary key.
	ID TagID

	// Name is the tag name. Empty only for corrupted rows with a NULL title.
	Name string

	// Modified is the last-modification time in UTC, nil for tags that were
	// never explicitly modified.
	Modified *time.Time
}

// Tags is an immutable id-to-tag mapping materialized by one [DB.Tags] call.
//
// It is a snapshot, not a cache: every call builds a fresh instance.
type Tags struct {
	byID map[TagID]Tag
}

// Get returns the tag for id, if present in the snapshot.
func (t *Tags) Get(id TagID) (Tag, bool) {
	tag, ok := t.byID[id]

	return tag, ok
}

// Len returns the number of tags in the snapshot.
func (t *Tags) Len() int {
	return len(t.byID)
}

// All returns every tag, sorted by name.
func (t *Tags) All() []Tag {
	tags := make([]Tag, 0, len(t.byID))
	for _, tag := range t.byID {
		tags = append(tags, tag)
	}

	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Name != tags[j].Name {
			return tags[i].Name < tags[j].Name
		}

		return tags[i].ID.Int64() < tags[j].ID.Int64()
	})

	return tags
}

// Names resolves a set of tag ids (as returned by [DB.NoteTags]) to sorted
// tag names. Ids missing from the snapshot and tags with empty names are
// omitted.
func (t *Tags) Names(ids map[TagID]struct{}) []string {
	names := make([]string, 0, len(ids))

	for id := range ids {
		tag, ok := t.byID[id]
		if ok && tag.Name != "" {
			names = append(names, tag.Name)
		}
	}

	sort.Strings(names)

	return names
}
