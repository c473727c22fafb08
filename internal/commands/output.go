package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/MikeMC777/catalog-browser/internal/item"
)

type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json or yaml)", s)
	}
}

// render writes v as JSON or YAML. For tables it hands a tabwriter to table.
func render(w io.Writer, f Format, v any, table func(w io.Writer)) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)

	case FormatYAML:
		// go through JSON so item extras and null prices come out the same
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	table(tw)
	return tw.Flush()
}

func itemsTable(w io.Writer, items []item.Item) {
	_, _ = fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE")
	for _, it := range items {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", it.ID, text(it.Name), text(it.Category), price(it.Price))
	}
}

func itemTable(w io.Writer, it item.Item) {
	_, _ = fmt.Fprintf(w, "ID\t%d\n", it.ID)
	_, _ = fmt.Fprintf(w, "NAME\t%s\n", text(it.Name))
	_, _ = fmt.Fprintf(w, "CATEGORY\t%s\n", text(it.Category))
	_, _ = fmt.Fprintf(w, "PRICE\t%s\n", price(it.Price))
	_, _ = fmt.Fprintf(w, "CREATED\t%s\n", text(it.CreatedAt))
	if it.Description != nil {
		_, _ = fmt.Fprintf(w, "DESCRIPTION\t%s\n", *it.Description)
	}
	if len(it.Tags) > 0 {
		_, _ = fmt.Fprintf(w, "TAGS\t%s\n", strings.Join(it.Tags, ", "))
	}
}

func text(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func price(p *float64) string {
	if p == nil {
		return "-"
	}
	return strconv.FormatFloat(*p, 'f', 2, 64)
}
