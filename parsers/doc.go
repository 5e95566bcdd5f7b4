// Package parsers turns roster files into normalized (id, name, grade) records.
//
// Column roles are inferred from the header row: a "StudentID" column, and
// first/last name columns ("first_name", "first name", "first" and the
// matching "last" forms). Each data row is then resolved by the first rule
// that applies:
//
//   - named: both name columns exist and are filled; the name is
//     "first last" and the grade is the rounded mean of the numeric columns
//     that follow the last name (never before column 2).
//   - triple: exactly three fields whose second is not a number; read as
//     id,name,grade when the third is numeric, otherwise id,first,last.
//   - positional: id and name by position, grade from column 2 onward.
//
// Parsing never fails on irregular rows; short rows give empty fields and
// rows without numeric columns give an empty grade.
//
// Example usage:
//
//	for _, r := range parsers.ParseRoster(raw) {
//	    fmt.Println(r.ID, r.Name, r.Grade)
//	}
//
// StreamRoster and ParseNDJSON return two channels, records and errors.
// Callers must consume both channels to avoid goroutine leaks:
//
//	records, errs := parsers.StreamRoster(file)
//	go func() {
//	    for err := range errs {
//	        log.Printf("roster error: %v", err)
//	    }
//	}()
//	for r := range records {
//	    store.Add(ctx, r)
//	}
//
// ParseXLSX applies the same rules to the first sheet of a workbook.
package parsers
