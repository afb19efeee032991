// Package schema checks that an existing journal table still has the columns
// and indexes the journal backends read, write and paginate with.
package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTableMissing is returned by Check when the table has no columns at all.
var ErrTableMissing = errors.New("table does not exist")

// maxIdentifierLength is the PostgreSQL identifier limit. Index names are
// shortened to it before the server truncates them.
const maxIdentifierLength = 63

// Column describes one table column as reported by the database.
type Column struct {
	Name    string
	Type    string
	NotNull bool
}

// HistoryIndex names the (created_at, id) index that List pages over.
func HistoryIndex(table string) string {
	return indexName(table, "history")
}

// PathIndex names the index used for path prefix filtering.
func PathIndex(table string) string {
	return indexName(table, "path")
}

func indexName(table, suffix string) string {
	if keep := maxIdentifierLength - len("idx__"+suffix); len(table) > keep {
		table = table[:keep]
	}
	return "idx_" + table + "_" + suffix
}

// Error lists every difference between a journal table and the expected
// schema.
type Error struct {
	Table          string
	Missing        []string
	Mismatched     []string
	MissingIndexes []string
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "table %s does not match the journal schema", e.Table)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, "; missing columns: %s", strings.Join(e.Missing, ", "))
	}
	if len(e.Mismatched) > 0 {
		fmt.Fprintf(&b, "; mismatched columns: %s", strings.Join(e.Mismatched, ", "))
	}
	if len(e.MissingIndexes) > 0 {
		fmt.Fprintf(&b, "; missing indexes: %s", strings.Join(e.MissingIndexes, ", "))
	}
	return b.String()
}

// Check compares the columns and index names found for table against the
// expected ones. Column types are compared case-insensitively; extra columns
// and indexes are allowed.
func Check(table string, want, got []Column, wantIndexes, gotIndexes []string) error {
	if len(got) == 0 {
		return fmt.Errorf("%w: %s", ErrTableMissing, table)
	}

	actual := make(map[string]Column, len(got))
	for _, c := range got {
		actual[c.Name] = c
	}

	e := &Error{Table: table}

	for _, w := range want {
		a, ok := actual[w.Name]
		if !ok {
			e.Missing = append(e.Missing, w.Name)
			continue
		}
		if !strings.EqualFold(a.Type, w.Type) {
			e.Mismatched = append(e.Mismatched, fmt.Sprintf("%s is %s, want %s", w.Name, strings.ToLower(a.Type), w.Type))
		}
		if a.NotNull != w.NotNull {
			e.Mismatched = append(e.Mismatched, fmt.Sprintf("%s not null=%v, want %v", w.Name, a.NotNull, w.NotNull))
		}
	}

	have := make(map[string]bool, len(gotIndexes))
	for _, name := range gotIndexes {
		have[name] = true
	}
	for _, name := range wantIndexes {
		if !have[name] {
			e.MissingIndexes = append(e.MissingIndexes, name)
		}
	}

	if len(e.Missing) == 0 && len(e.Mismatched) == 0 && len(e.MissingIndexes) == 0 {
		return nil
	}
	return e
}
