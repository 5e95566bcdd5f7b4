package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"class-records/parsers"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var parseJSON bool

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a roster file and print the resolved records",
	Long: `Parse a roster with the same rules the server uses.

.csv files go through the header heuristics, .xlsx reads the first sheet
and .ndjson/.json reads one object per line. Use "-" to read CSV from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recs, err := parseFile(args[0], cmd.InOrStdin())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if parseJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(recs)
		}
		_, err = io.WriteString(out, renderTable(recs))
		return err
	},
}

func init() {
	parseCmd.Flags().BoolVar(&parseJSON, "json", false, "Print records as JSON")
}

func parseFile(path string, stdin io.Reader) ([]parsers.Record, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open roster: %w", err)
		}
		defer f.Close()
		r = f
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return parsers.ParseXLSX(r)
	case ".ndjson", ".json":
		recs, errs := parsers.ParseNDJSON(r)
		out := []parsers.Record{}
		for recs != nil || errs != nil {
			select {
			case rec, ok := <-recs:
				if !ok {
					recs = nil
					continue
				}
				out = append(out, rec)
			case err, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				fmt.Fprintln(os.Stderr, "skipped:", err)
			}
		}
		return out, nil
	default:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read roster: %w", err)
		}
		return parsers.ParseRoster(string(data)), nil
	}
}

var headerStyle = lipgloss.NewStyle().Bold(true)

// renderTable lays records out in padded columns.
func renderTable(recs []parsers.Record) string {
	headers := []string{"ID", "NAME", "GRADE"}
	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, []string{r.ID, r.Name, r.Grade})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	line := func(cells []string, style *lipgloss.Style) string {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			padded := cell + strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
			if style != nil {
				padded = style.Render(padded)
			}
			parts[i] = padded
		}
		return strings.TrimRight(strings.Join(parts, "  "), " ") + "\n"
	}

	var sb strings.Builder
	sb.WriteString(line(headers, &headerStyle))
	for _, row := range rows {
		sb.WriteString(line(row, nil))
	}
	fmt.Fprintf(&sb, "%d record(s)\n", len(recs))
	return sb.String()
}
