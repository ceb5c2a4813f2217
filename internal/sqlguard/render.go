package sqlguard

import (
	"fmt"
	"strings"
)

// maxRenderRows caps how many rows are rendered into conversation text.
// Large result sets would otherwise crowd out the model's context.
const maxRenderRows = 50

// Render formats a result set as a markdown table for the hidden feedback
// turn. Rows beyond the cap are summarized, not shown.
func (rs *ResultSet) Render() string {
	if len(rs.Columns) == 0 {
		return "(no columns)"
	}

	var b strings.Builder

	headers := make([]string, len(rs.Columns))
	for i, c := range rs.Columns {
		headers[i] = c.Name
	}
	b.WriteString("| " + strings.Join(headers, " | ") + " |\n")

	seps := make([]string, len(rs.Columns))
	for i := range seps {
		seps[i] = "---"
	}
	b.WriteString("| " + strings.Join(seps, " | ") + " |\n")

	shown := len(rs.Rows)
	if shown > maxRenderRows {
		shown = maxRenderRows
	}
	for _, row := range rs.Rows[:shown] {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = renderValue(v)
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}

	if len(rs.Rows) > shown {
		fmt.Fprintf(&b, "\n(%d rows total, showing first %d)", len(rs.Rows), shown)
	} else {
		fmt.Fprintf(&b, "\n(%d rows)", len(rs.Rows))
	}
	return b.String()
}

func renderValue(v any) string {
	if v == nil {
		return "NULL"
	}
	s := fmt.Sprintf("%v", v)
	// Pipes would break the table layout.
	return strings.ReplaceAll(s, "|", "\\|")
}
