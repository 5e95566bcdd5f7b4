package parsers

import (
	"strings"
	"unicode"
)

// Record is one normalized roster row.
type Record struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Grade string `json:"grade"`
}

// Header synonyms, matched after trimming, lower-casing and collapsing spaces.
var (
	idSynonyms    = []string{"studentid"}
	firstSynonyms = []string{"first_name", "first name", "first"}
	lastSynonyms  = []string{"last_name", "last name", "last"}
)

// Header records which columns of a roster carry the id and the name parts.
// FirstIndex and LastIndex are -1 when the column was not found.
// The zero value names column 0 for every role; build a Header with
// DetectHeader, DetectHeaderFields or NoHeader.
type Header struct {
	IDIndex    int
	FirstIndex int
	LastIndex  int
}

// NoHeader returns the Header of a roster without name columns: rows
// resolve as triples or positionally, never as named rows.
func NoHeader() Header {
	return Header{IDIndex: 0, FirstIndex: -1, LastIndex: -1}
}

func (h Header) HasFirst() bool { return h.FirstIndex >= 0 }
func (h Header) HasLast() bool  { return h.LastIndex >= 0 }

// DetectHeader reads the header line of a roster.
func DetectHeader(line string) Header {
	return DetectHeaderFields(strings.Split(line, ","))
}

// DetectHeaderFields is DetectHeader for an already split header row.
func DetectHeaderFields(cells []string) Header {
	names := make([]string, len(cells))
	for i, c := range cells {
		names[i] = normalizeHeader(c)
	}

	h := NoHeader()
	h.FirstIndex = indexOfAny(names, firstSynonyms)
	h.LastIndex = indexOfAny(names, lastSynonyms)
	if i := indexOfAny(names, idSynonyms); i >= 0 {
		h.IDIndex = i
	}
	return h
}

func normalizeHeader(s string) string {
	return strings.ToLower(strings.Join(strings.FieldsFunc(s, isBlank), " "))
}

// isBlank reports white space plus U+FEFF, which spreadsheet exports
// leave in front of the first header cell.
func isBlank(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// TrimField strips leading and trailing white space and byte order marks.
func TrimField(s string) string {
	return strings.TrimFunc(s, isBlank)
}

func indexOfAny(names, synonyms []string) int {
	for i, n := range names {
		for _, s := range synonyms {
			if n == s {
				return i
			}
		}
	}
	return -1
}

// SplitFields splits a data line on commas and trims every field.
func SplitFields(line string) []string {
	parts := strings.Split(line, ",")
	for i := range parts {
		parts[i] = TrimField(parts[i])
	}
	return parts
}

// Kind tags which rule produced a Resolution.
type Kind int

const (
	// KindNamed: first and last name columns were found in the header.
	KindNamed Kind = iota
	// KindTriple: a three-field row read as id,name,grade or id,first,last.
	KindTriple
	// KindPositional: id and name by position, grade from the rest.
	KindPositional
)

func (k Kind) String() string {
	switch k {
	case KindNamed:
		return "named"
	case KindTriple:
		return "triple"
	case KindPositional:
		return "positional"
	}
	return "unknown"
}

// Resolution is the outcome of resolving one data row.
type Resolution struct {
	Kind   Kind
	Record Record
}

// Resolve turns the trimmed fields of one data row into a Record.
// It never fails; missing fields become empty strings.
func (h Header) Resolve(fields []string) Resolution {
	if r, ok := h.resolveNamed(fields); ok {
		return r
	}
	if r, ok := resolveTriple(fields); ok {
		return r
	}
	return resolvePositional(fields)
}

func (h Header) resolveNamed(fields []string) (Resolution, bool) {
	if !h.HasFirst() || !h.HasLast() {
		return Resolution{}, false
	}
	first, last := field(fields, h.FirstIndex), field(fields, h.LastIndex)
	if first == "" || last == "" {
		return Resolution{}, false
	}

	id := field(fields, h.IDIndex)
	if id == "" {
		id = field(fields, 0)
	}
	return Resolution{
		Kind: KindNamed,
		Record: Record{
			ID:    id,
			Name:  first + " " + last,
			Grade: Average(tail(fields, max(h.LastIndex+1, 2))),
		},
	}, true
}

func resolveTriple(fields []string) (Resolution, bool) {
	if len(fields) != 3 || IsNumeric(fields[1]) {
		return Resolution{}, false
	}
	rec := Record{ID: fields[0]}
	if IsNumeric(fields[2]) {
		rec.Name = fields[1]
		rec.Grade = fields[2]
	} else {
		rec.Name = fields[1] + " " + fields[2]
	}
	return Resolution{Kind: KindTriple, Record: rec}, true
}

func resolvePositional(fields []string) Resolution {
	return Resolution{
		Kind: KindPositional,
		Record: Record{
			ID:    field(fields, 0),
			Name:  field(fields, 1),
			Grade: Average(tail(fields, 2)),
		},
	}
}

func field(fields []string, i int) string {
	if i < 0 || i >= len(fields) {
		return ""
	}
	return fields[i]
}

func tail(fields []string, start int) []string {
	if start >= len(fields) {
		return nil
	}
	return fields[start:]
}
