package parsers

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// looseString accepts a JSON string, number or null.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*s = looseString(n.String())
	return nil
}

type ndjsonRecord struct {
	ID    looseString `json:"id"`
	Name  looseString `json:"name"`
	Grade looseString `json:"grade"`
}

// ParseNDJSON reads one roster object per line ({"id","name","grade"}).
// Lines that are not valid objects are reported on the error channel and
// skipped. Every bad line is reported; the producer blocks until the
// caller receives it, so both channels must be drained concurrently.
func ParseNDJSON(reader io.Reader) (<-chan Record, <-chan error) {
	records := make(chan Record, recordBuffer)
	errors := make(chan error, errorBuffer)

	go func() {
		defer close(records)
		defer close(errors)

		scanner := bufio.NewScanner(reader)
		scanner.Buffer(make([]byte, 64*1024), maxLineSize)

		lineNum := 0
		for scanner.Scan() {
			lineNum++
			line := bytes.TrimFunc(scanner.Bytes(), isBlank)
			if len(line) == 0 {
				continue
			}

			var rec ndjsonRecord
			if err := json.Unmarshal(line, &rec); err != nil {
				errors <- fmt.Errorf("line %d: %w", lineNum, err)
				continue
			}

			records <- Record{
				ID:    TrimField(string(rec.ID)),
				Name:  TrimField(string(rec.Name)),
				Grade: TrimField(string(rec.Grade)),
			}
		}

		if err := scanner.Err(); err != nil {
			errors <- err
		}
	}()

	return records, errors
}
