package records

import (
	"strconv"
	"strings"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// EscapeHTML replaces the five markup-significant characters with entities.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// RenderRows projects the whole roster into table body rows. Every call
// renders everything; the delete control of each row carries its position.
func RenderRows(recs []RecordModel) string {
	var b strings.Builder
	for idx, r := range recs {
		b.WriteString("<tr>")
		b.WriteString("<td>" + EscapeHTML(r.StudentID) + "</td>")
		b.WriteString("<td>" + EscapeHTML(r.Name) + "</td>")
		b.WriteString("<td>" + EscapeHTML(r.Grade) + "</td>")
		b.WriteString(`<td><button class="action-btn" type="submit" formaction="/records/` +
			strconv.Itoa(idx) + `/delete" data-index="` + strconv.Itoa(idx) + `">Delete</button></td>`)
		b.WriteString("</tr>\n")
	}
	return b.String()
}
