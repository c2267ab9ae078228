package output

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
)

// TableData представляет данные для табличного вывода
type TableData struct {
	Headers []string
	Rows    []*TableRow
	Empty   string
}

// TableRow представляет строку таблицы
type TableRow struct {
	Cells []string
	Style RowStyle
}

// RowStyle определяет стиль строки
type RowStyle int

const (
	StyleDefault RowStyle = iota
	StyleHeader
	StyleSeparator
	StyleSuccess
	StyleError
	StyleWarning
	StyleInfo
)

var styleColors = map[RowStyle][]color.Attribute{
	StyleHeader:    {color.FgBlue, color.Bold},
	StyleSeparator: {color.FgHiBlack},
	StyleSuccess:   {color.FgGreen},
	StyleError:     {color.FgRed},
	StyleWarning:   {color.FgYellow},
	StyleInfo:      {color.FgCyan},
}

// NewTableData создает новые табличные данные
func NewTableData(headers ...string) *TableData {
	return &TableData{
		Headers: headers,
		Rows:    make([]*TableRow, 0),
		Empty:   "Нет данных",
	}
}

// AddRow добавляет строку
func (td *TableData) AddRow(cells ...string) {
	td.Rows = append(td.Rows, &TableRow{Cells: cells})
}

// AddRowWithStyle добавляет строку с указанием стиля
func (td *TableData) AddRowWithStyle(style RowStyle, cells ...string) {
	td.Rows = append(td.Rows, &TableRow{Cells: cells, Style: style})
}

// String возвращает таблицу без цветов
func (td *TableData) String() string {
	return td.Render(false)
}

// Render выравнивает колонки и красит строки по стилю.
// Цвет накладывается после выравнивания, escape коды не влияют на ширину колонок.
func (td *TableData) Render(useColors bool) string {
	if len(td.Rows) == 0 {
		return td.Empty
	}

	styles := make([]RowStyle, 0, len(td.Rows)+2)
	var builder strings.Builder
	w := tabwriter.NewWriter(&builder, 0, 0, 2, ' ', 0)

	if len(td.Headers) > 0 {
		fmt.Fprintln(w, strings.Join(td.Headers, "\t"))
		separators := make([]string, len(td.Headers))
		for i := range separators {
			separators[i] = strings.Repeat("-", len([]rune(td.Headers[i])))
		}
		fmt.Fprintln(w, strings.Join(separators, "\t"))
		styles = append(styles, StyleHeader, StyleSeparator)
	}

	for _, row := range td.Rows {
		fmt.Fprintln(w, strings.Join(sanitize(row.Cells), "\t"))
		styles = append(styles, row.Style)
	}
	w.Flush()

	lines := strings.Split(strings.TrimRight(builder.String(), "\n"), "\n")
	for i, line := range lines {
		line = strings.TrimRight(line, " ")
		if useColors && i < len(styles) {
			line = paint(line, styles[i])
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

func paint(line string, style RowStyle) string {
	attrs, ok := styleColors[style]
	if !ok {
		return line
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(line)
}

// sanitize убирает из ячеек символы, ломающие выравнивание
func sanitize(cells []string) []string {
	out := make([]string, len(cells))
	for i, cell := range cells {
		out[i] = strings.NewReplacer("\t", " ", "\n", " ", "\r", "").Replace(cell)
	}
	return out
}

// StatusIcon возвращает иконку для статуса
func StatusIcon(status string) string {
	switch strings.ToLower(status) {
	case "active", "approved", "success", "ok", "true", "delivered":
		return "✓"
	case "inactive", "rejected", "error", "failed", "false":
		return "✗"
	case "pending", "warning", "unknown":
		return "⚠"
	default:
		return "?"
	}
}

// FormatTime время в локальной зоне или прочерк
func FormatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// Truncate обрезает строку до n символов
func Truncate(s string, n int) string {
	runes := []rune(s)
	if n <= 0 || len(runes) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(runes[:n-1]) + "…"
}

// OrDash возвращает прочерк вместо пустой строки
func OrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
