package ingest

import (
	"strings"

	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/schema"
)

// HeaderSet is the header row in display casing plus a lower-cased parallel
// slice used for matching.
type HeaderSet struct {
	Original   []string
	Normalized []string
}

// Len is the number of header columns.
func (h HeaderSet) Len() int { return len(h.Original) }

// Names lists the named columns in file order. Unnamed cells, such as the
// one a trailing comma leaves, are omitted.
func (h HeaderSet) Names() []string {
	out := make([]string, 0, len(h.Original))
	for _, n := range h.Original {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Extra lists, in file order, the display names of named columns outside
// the contract.
func (h HeaderSet) Extra() []string {
	var out []string
	for i, n := range h.Normalized {
		if n == "" {
			continue
		}
		if _, ok := schema.Property.Lookup(n); !ok {
			out = append(out, h.Original[i])
		}
	}
	return out
}

// ValidateHeaders checks that every required column appears among tokens,
// ignoring case, order and additional columns. A name may appear only once;
// unnamed cells are allowed and carry no data.
func ValidateHeaders(tokens []string) (HeaderSet, error) {
	if len(tokens) == 0 {
		return HeaderSet{}, &EmptyFileError{}
	}

	hs := HeaderSet{
		Original:   make([]string, len(tokens)),
		Normalized: make([]string, len(tokens)),
	}
	seen := make(map[string]struct{}, len(tokens))
	for i, tok := range tokens {
		orig := strings.TrimSpace(tok)
		norm := strings.ToLower(orig)
		hs.Original[i] = orig
		hs.Normalized[i] = norm

		if norm == "" {
			continue
		}
		if _, dup := seen[norm]; dup {
			return HeaderSet{}, &DuplicateHeaderError{Name: orig}
		}
		seen[norm] = struct{}{}
	}

	expected := schema.Property.RequiredColumns()
	var missing []string
	for _, col := range expected {
		if _, ok := seen[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return HeaderSet{}, &MissingHeadersError{Missing: missing, Expected: expected}
	}
	return hs, nil
}
