package parsers

import (
	"bufio"
	"io"
	"strings"
)

const (
	recordBuffer = 100
	errorBuffer  = 16
	// maxLineSize caps a single roster or NDJSON line (1MB).
	maxLineSize = 1024 * 1024
)

// ParseRoster parses a whole roster held in memory: the first non-empty
// line is the header, every following non-empty line yields one Record.
// Irregular rows degrade to best-effort records; it never fails.
func ParseRoster(raw string) []Record {
	var lines []string
	for _, l := range strings.Split(raw, "\n") {
		if l = TrimField(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return []Record{}
	}

	header := DetectHeader(lines[0])
	out := make([]Record, 0, len(lines)-1)
	for _, l := range lines[1:] {
		out = append(out, header.Resolve(SplitFields(l)).Record)
	}
	return out
}

// StreamRoster is ParseRoster over a reader. Records arrive on the first
// channel in input order; the second only carries read errors.
// Caller must consume both channels to avoid goroutine leak.
func StreamRoster(reader io.Reader) (<-chan Record, <-chan error) {
	records := make(chan Record, recordBuffer)
	errors := make(chan error, errorBuffer)

	go func() {
		defer close(records)
		defer close(errors)

		scanner := bufio.NewScanner(reader)
		scanner.Buffer(make([]byte, 64*1024), maxLineSize)

		var header *Header
		for scanner.Scan() {
			line := TrimField(scanner.Text())
			if line == "" {
				continue
			}
			if header == nil {
				h := DetectHeader(line)
				header = &h
				continue
			}
			records <- header.Resolve(SplitFields(line)).Record
		}

		if err := scanner.Err(); err != nil {
			errors <- err
		}
	}()

	return records, errors
}
