package formatter

import (
	"strings"

	"charm.land/lipgloss/v2"
	ltable "charm.land/lipgloss/v2/table"

	"github.com/oakwood-commons/dumpx/pkg/table"
)

// Render draws t and its nested tables. Marker rows are drawn dimmed and
// nested tables are rendered recursively into their cells.
func Render(t *table.Table, opts Options) string {
	if t == nil {
		return ""
	}

	styles := make([][]table.Style, len(t.Rows))
	rows := make([][]string, len(t.Rows))
	nested := opts
	nested.Width = nil
	for i, r := range t.Rows {
		styles[i] = make([]table.Style, len(r.Cells))
		rows[i] = make([]string, len(r.Cells))
		for j, c := range r.Cells {
			styles[i][j] = c.Style
			if r.Marker && c.Style == table.StyleNone && j == 0 {
				styles[i][j] = table.StyleMarker
			}
			if c.IsNested() {
				rows[i][j] = strings.TrimRight(Render(c.Table, nested), "\n")
				continue
			}
			rows[i][j] = truncate(c.Text, opts.stringLimit())
		}
	}

	headers := t.ColumnNames()
	columnStyles := make([]table.Style, len(t.Columns))
	for i, c := range t.Columns {
		columnStyles[i] = c.Style
	}

	lt := ltable.New().
		Border(borderFor(opts.Border)).
		BorderRow(t.RowSeparators).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if opts.colorDisabled() {
				return base
			}
			if row == ltable.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			if row < 0 || row >= len(styles) || col >= len(styles[row]) {
				return base
			}
			s := styles[row][col]
			if s == table.StyleNone && col < len(columnStyles) && columnStyles[col] == table.StyleIndex {
				s = table.StyleIndex
			}
			return styleFor(s).Padding(0, 1)
		})
	if !opts.colorDisabled() {
		lt = lt.BorderStyle(separatorStyle)
	}
	if t.HideHeaders || len(headers) == 0 {
		lt = lt.BorderHeader(false)
	} else {
		lt = lt.Headers(headers...)
	}
	if w := opts.tableWidth(); w > 0 {
		lt = lt.Width(w)
	}

	out := lt.String()
	if t.Title != "" {
		title := t.Title
		if !opts.colorDisabled() {
			title = titleStyle.Render(title)
		}
		out = title + "\n" + out
	}
	return out
}

func styleFor(s table.Style) lipgloss.Style {
	switch s {
	case table.StyleKey, table.StyleIndex:
		return keyStyle
	case table.StyleNull, table.StyleType:
		return nullStyle
	case table.StyleMarker, table.StylePlaceholder:
		return markerStyle
	case table.StyleHeader:
		return headerStyle
	default:
		return valueStyle
	}
}
