package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gosuri/uitable"
	"gopkg.in/yaml.v3"
)

// Format selects how list results are rendered
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Formats lists the accepted --output values
var Formats = []string{string(FormatTable), string(FormatJSON), string(FormatYAML)}

// ParseFormat validates an --output value
func ParseFormat(value string) (Format, error) {
	switch f := Format(strings.ToLower(value)); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (choose from %s)", value, strings.Join(Formats, ", "))
	}
}

// Tabular is a result set that can be printed as rows
type Tabular interface {
	Headers() []string
	Rows() [][]string
	Len() int
}

// Write renders v to w. Table output is preceded by title, or replaced by
// empty when there are no rows; json and yaml output is the bare value.
func Write(w io.Writer, format Format, title, empty string, v Tabular) error {
	var value interface{} = v
	if v.Len() == 0 {
		// an empty list, not null
		value = []struct{}{}
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(value)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(value); err != nil {
			return err
		}
		return enc.Close()
	}

	if v.Len() == 0 {
		_, err := fmt.Fprintln(w, empty)
		return err
	}
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, Table(v.Headers(), v.Rows()))
	return err
}

// Table lays out headers and rows in aligned columns
func Table(headers []string, rows [][]string) *uitable.Table {
	table := uitable.New()
	table.MaxColWidth = 80
	table.AddRow(cells(headers)...)
	for _, row := range rows {
		table.AddRow(cells(row)...)
	}
	return table
}

func cells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
