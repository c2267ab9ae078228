package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"AssistantHubPlatform/pkg/errors"
)

// FormatType представляет тип форматирования вывода
type FormatType string

const (
	FormatTable FormatType = "table"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
)

// ParseFormat разбирает значение флага --output
func ParseFormat(value string) (FormatType, error) {
	switch FormatType(strings.ToLower(strings.TrimSpace(value))) {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", errors.New(errors.ErrValidation, fmt.Sprintf("неизвестный формат вывода: %s (table, json, yaml)", value))
	}
}

// Printer печатает результат команды в выбранном формате.
// Таблица строится из TableData, json и yaml сериализуют сами данные.
type Printer struct {
	w         io.Writer
	format    FormatType
	useColors bool
}

// NewPrinter создает принтер
func NewPrinter(w io.Writer, format FormatType, useColors bool) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{w: w, format: format, useColors: useColors}
}

// Format текущий формат
func (p *Printer) Format() FormatType {
	return p.format
}

// Print выводит data; для табличного формата используется table
func (p *Printer) Print(table *TableData, data interface{}) error {
	var (
		out string
		err error
	)
	switch p.format {
	case FormatJSON:
		out, err = NewJSONOutput(data, nil).Render()
	case FormatYAML:
		out, err = NewYAMLOutput(data, nil).Render()
	default:
		if table == nil {
			out = fmt.Sprintf("%v", data)
		} else {
			out = table.Render(p.useColors)
		}
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(p.w, strings.TrimRight(out, "\n"))
	return err
}

// PrintMessage выводит сообщение об успешном действии.
// В json и yaml это конверт с полем message.
func (p *Printer) PrintMessage(message string) error {
	switch p.format {
	case FormatJSON:
		out, err := NewJSONOutput(map[string]string{"message": message}, nil).Render()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(p.w, out)
		return err
	case FormatYAML:
		out, err := NewYAMLOutput(map[string]string{"message": message}, nil).Render()
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(p.w, out)
		return err
	default:
		_, err := fmt.Fprintln(p.w, message)
		return err
	}
}

// PrintError выводит ошибку в формате принтера
func (p *Printer) PrintError(w io.Writer, failure error) {
	if w == nil {
		w = os.Stderr
	}
	switch p.format {
	case FormatJSON:
		out, err := NewJSONOutput(nil, failure).Render()
		if err == nil {
			fmt.Fprintln(w, out)
			return
		}
	case FormatYAML:
		out, err := NewYAMLOutput(nil, failure).Render()
		if err == nil {
			fmt.Fprint(w, out)
			return
		}
	}
	fmt.Fprintf(w, "Ошибка: %s\n", errors.Failure(failure).Error)
}

// DetectColors определяет нужно ли использовать цвета
func DetectColors() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if colors := os.Getenv("ASSISTANTHUB_COLORS"); colors != "" {
		return strings.ToLower(colors) == "true"
	}

	// Проверяем, что вывод идет в терминал
	return os.Stdout != nil && isTerminal()
}

// isTerminal проверяет, что вывод идет в терминал
func isTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
