// Package export writes study data to CSV, JSON and YAML files.
package export

import (
	"fmt"
	"strings"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists the supported formats in menu order.
var Formats = []Format{FormatCSV, FormatJSON, FormatYAML}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv, json or yaml)", s)
}

// Ext is the file extension for f, including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// Write exports doc to path in format f. CSV carries the daily rollup only.
func Write(f Format, doc Document, path string) error {
	switch f {
	case FormatCSV:
		return ToCSV(doc.Daily, path)
	case FormatJSON:
		return ToJSON(doc, path)
	case FormatYAML:
		return ToYAML(doc, path)
	}
	return fmt.Errorf("unknown export format %q", f)
}
